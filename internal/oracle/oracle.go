// Package oracle scores job postings against a resume with an external
// language model.
package oracle

import (
	"context"
	"errors"
)

// ErrUnparseable means the model answered but no score array could be
// recovered from the text.
var ErrUnparseable = errors.New("unparseable model response")

// Oracle rates how well each job fits a resume.
type Oracle interface {
	Score(ctx context.Context, req Request) ([]Score, error)
}

type Request struct {
	Resume string
	Jobs   []Job
}

// Job is the truncated view of a posting that is sent to the model.
type Job struct {
	ID          int64  `json:"job_id"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description"`
}

// Score is one model verdict. Jobs missing from the answer get none.
type Score struct {
	JobID  int64
	Score  float64
	Reason string
}

// Generator sends a prompt to a model backend and returns its text answer.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}
