package oracle

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/rs/zerolog"
)

//go:embed titles_prompt.md
var titlesPrompt string

// RelevanceUnknown marks listings returned without a model verdict.
const RelevanceUnknown = "unknown"

// TitleMatch is a listing the model considers the same or an adjacent role.
type TitleMatch struct {
	Title     string `json:"title"`
	URL       string `json:"url,omitempty"`
	Relevance string `json:"relevance"`
}

// TitleMatcher fuzzy-matches listing titles against desired job titles.
type TitleMatcher struct {
	generator Generator
	logger    zerolog.Logger
}

func NewTitleMatcher(generator Generator, logger zerolog.Logger) *TitleMatcher {
	return &TitleMatcher{generator: generator, logger: logger}
}

// Match returns the listings whose titles match. An unreadable answer falls
// back to every listing with relevance "unknown".
func (m *TitleMatcher) Match(ctx context.Context, titles []string, listings []models.Listing) ([]TitleMatch, error) {
	if len(listings) == 0 {
		return []TitleMatch{}, nil
	}

	lines := make([]string, 0, len(listings))
	for _, l := range listings {
		url := l.URL
		if url == "" {
			url = "no url"
		}
		lines = append(lines, "- "+l.Title+" ("+url+")")
	}

	prompt := strings.ReplaceAll(titlesPrompt, "{{TITLES}}", strings.Join(titles, ", "))
	prompt = strings.ReplaceAll(prompt, "{{LISTINGS}}", strings.Join(lines, "\n"))

	raw, err := m.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	matches, err := parseTitleMatches(raw)
	if errors.Is(err, ErrUnparseable) {
		m.logger.Warn().Err(err).Int("listings", len(listings)).Msg("title match fallback")
		return unknownMatches(listings), nil
	}
	return matches, err
}

func parseTitleMatches(raw string) ([]TitleMatch, error) {
	items, err := decodeArray(raw)
	if err != nil {
		return nil, err
	}

	matches := make([]TitleMatch, 0, len(items))
	for _, item := range items {
		entry, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title := coerceString(entry["title"])
		if title == "" {
			continue
		}
		matches = append(matches, TitleMatch{
			Title:     title,
			URL:       coerceString(entry["url"]),
			Relevance: coerceString(entry["relevance"]),
		})
	}
	return matches, nil
}

func unknownMatches(listings []models.Listing) []TitleMatch {
	out := make([]TitleMatch, 0, len(listings))
	for _, l := range listings {
		out = append(out, TitleMatch{Title: l.Title, URL: l.URL, Relevance: RelevanceUnknown})
	}
	return out
}
