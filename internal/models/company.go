package models

import "time"

// Company is a tracked employer career page.
type Company struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	CareerURL     string     `json:"career_url"`
	CreatedAt     time.Time  `json:"created_at"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
}

// Resume is the single uploaded resume.
type Resume struct {
	Filename   string    `json:"filename,omitempty"`
	Content    string    `json:"content"`
	UploadedAt time.Time `json:"uploaded_at"`
}
