package oracle

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

//go:embed rank_prompt.md
var rankPrompt string

const defaultMaxLogLength = 200

// LLM is an Oracle backed by a text generator.
type LLM struct {
	generator Generator
	logger    zerolog.Logger
	maxLogLen int
}

func NewLLM(generator Generator, logger zerolog.Logger) *LLM {
	return &LLM{
		generator: generator,
		logger:    logger,
		maxLogLen: defaultMaxLogLength,
	}
}

// Score sends every job in one prompt. Answers that cannot be decoded yield
// ErrUnparseable; generator failures are returned unchanged.
func (o *LLM) Score(ctx context.Context, req Request) ([]Score, error) {
	jobs := req.Jobs
	if jobs == nil {
		jobs = []Job{}
	}
	jobsJSON, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal jobs: %w", err)
	}

	prompt := strings.ReplaceAll(rankPrompt, "{{RESUME}}", req.Resume)
	prompt = strings.ReplaceAll(prompt, "{{JOBS_JSON}}", string(jobsJSON))

	o.logger.Debug().
		Int("jobs", len(jobs)).
		Int("prompt_length", utf8.RuneCountInString(prompt)).
		Str("prompt_preview", truncateForLog(prompt, o.maxLogLen)).
		Msg("oracle request")

	raw, err := o.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	o.logger.Debug().
		Int("response_length", utf8.RuneCountInString(raw)).
		Str("response_preview", truncateForLog(raw, o.maxLogLen)).
		Msg("oracle response")

	return parseScores(raw)
}

func parseScores(raw string) ([]Score, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	scores := make([]Score, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		id, ok := coerceID(entry["job_id"])
		if !ok {
			continue
		}
		score := coerceFloat(entry["score"])
		if math.IsNaN(score) {
			continue
		}
		scores = append(scores, Score{
			JobID:  id,
			Score:  score,
			Reason: coerceString(entry["reason"]),
		})
	}
	return scores, nil
}
