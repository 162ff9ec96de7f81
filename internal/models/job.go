package models

import "time"

// Listing is a job posting extracted from a career page.
type Listing struct {
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	ExternalID  string     `json:"external_id,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	Description string     `json:"description,omitempty"`
}

// StoredJob is a listing persisted under a tracked company.
type StoredJob struct {
	ID          int64      `json:"id"`
	CompanyID   int64      `json:"company_id"`
	CompanyName string     `json:"company,omitempty"`
	ExternalID  string     `json:"external_id,omitempty"`
	Title       string     `json:"title"`
	URL         string     `json:"url,omitempty"`
	Description string     `json:"description,omitempty"`
	PostedAt    *time.Time `json:"posted_at,omitempty"`
	FirstSeenAt time.Time  `json:"first_seen_at"`
	IsNew       bool       `json:"is_new"`
}

// NewJob is a posting discovered by a surveillance scan.
type NewJob struct {
	Company  string     `json:"company"`
	Title    string     `json:"title"`
	URL      string     `json:"url,omitempty"`
	PostedAt *time.Time `json:"posted_at,omitempty"`
}

// JobSummary is the ranker's view of a stored job.
type JobSummary struct {
	ID          int64
	Title       string
	Company     string
	URL         string
	Description string
	PostedAt    *time.Time
}

// RankedResult is a job scored against the resume.
type RankedResult struct {
	JobID          int64      `json:"job_id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	URL            string     `json:"url,omitempty"`
	RelevanceScore float64    `json:"score"`
	Reason         string     `json:"reason"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	CombinedScore  float64    `json:"combined_score"`
}

// Summary converts a stored job for ranking.
func (j StoredJob) Summary() JobSummary {
	return JobSummary{
		ID:          j.ID,
		Title:       j.Title,
		Company:     j.CompanyName,
		URL:         j.URL,
		Description: j.Description,
		PostedAt:    j.PostedAt,
	}
}
