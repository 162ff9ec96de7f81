// Package rank orders stored jobs by model relevance plus a recency bonus.
package rank

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/jimezsa/jobwatch/internal/oracle"
	"github.com/rs/zerolog"
)

const (
	DefaultLimit = 20

	maxResumeRunes      = 3000
	maxDescriptionRunes = 500

	ReasonParseFailure = "Failed to parse LLM response"
	ReasonNotScored    = "Not scored"
)

type Ranker struct {
	oracle oracle.Oracle
	logger zerolog.Logger
	now    func() time.Time
}

func New(o oracle.Oracle, logger zerolog.Logger) *Ranker {
	return &Ranker{oracle: o, logger: logger, now: time.Now}
}

// WithClock replaces the time source used for recency bonuses.
func (r *Ranker) WithClock(now func() time.Time) *Ranker {
	r.now = now
	return r
}

// Rank scores every job in a single oracle call and returns all of them,
// best first. An unreadable oracle answer zeroes every job instead of
// failing; other oracle errors are returned.
func (r *Ranker) Rank(ctx context.Context, resume string, jobs []models.JobSummary) ([]models.RankedResult, error) {
	if len(jobs) == 0 {
		return []models.RankedResult{}, nil
	}

	req := oracle.Request{
		Resume: truncateRunes(resume, maxResumeRunes),
		Jobs:   make([]oracle.Job, 0, len(jobs)),
	}
	for _, job := range jobs {
		req.Jobs = append(req.Jobs, oracle.Job{
			ID:          job.ID,
			Title:       job.Title,
			Company:     job.Company,
			Description: truncateRunes(job.Description, maxDescriptionRunes),
		})
	}

	scores, err := r.oracle.Score(ctx, req)
	if errors.Is(err, oracle.ErrUnparseable) {
		r.logger.Warn().Err(err).Int("jobs", len(jobs)).Msg("oracle response unparseable, zeroing scores")
		return parseFailure(jobs), nil
	}
	if err != nil {
		return nil, fmt.Errorf("score jobs: %w", err)
	}

	byID := make(map[int64]oracle.Score, len(scores))
	for _, s := range scores {
		byID[s.JobID] = s
	}

	now := r.now()
	results := make([]models.RankedResult, 0, len(jobs))
	for _, job := range jobs {
		verdict, ok := byID[job.ID]
		if !ok {
			verdict = oracle.Score{JobID: job.ID, Reason: ReasonNotScored}
		}
		results = append(results, models.RankedResult{
			JobID:          job.ID,
			Title:          job.Title,
			Company:        job.Company,
			URL:            job.URL,
			RelevanceScore: verdict.Score,
			Reason:         verdict.Reason,
			PostedAt:       job.PostedAt,
			CombinedScore:  round1(verdict.Score + RecencyBonus(job.PostedAt, now)),
		})
	}

	sortByCombined(results)
	return results, nil
}

// RecencyBonus is 2.0 for jobs posted today, 0.1 less per whole day of age,
// and never negative. Future dates earn more than 2.0.
func RecencyBonus(postedAt *time.Time, now time.Time) float64 {
	if postedAt == nil {
		return 0
	}
	days := math.Floor(now.Sub(*postedAt).Hours() / 24)
	return math.Max(0, 2.0-0.1*days)
}

// Top returns the first k results; k <= 0 means DefaultLimit.
func Top(results []models.RankedResult, k int) []models.RankedResult {
	if k <= 0 {
		k = DefaultLimit
	}
	if len(results) <= k {
		return results
	}
	return results[:k]
}

func parseFailure(jobs []models.JobSummary) []models.RankedResult {
	results := make([]models.RankedResult, 0, len(jobs))
	for _, job := range jobs {
		results = append(results, models.RankedResult{
			JobID:    job.ID,
			Title:    job.Title,
			Company:  job.Company,
			URL:      job.URL,
			Reason:   ReasonParseFailure,
			PostedAt: job.PostedAt,
		})
	}
	return results
}

func sortByCombined(results []models.RankedResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CombinedScore > results[j].CombinedScore
	})
}

// round1 rounds the exact binary value to one decimal with ties to even,
// so 1.25 becomes 1.2 and 0.35 (stored just below) becomes 0.3.
func round1(v float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 1, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
