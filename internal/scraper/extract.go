package scraper

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobwatch/internal/models"
)

// Extractor runs its strategies over one document and merges the results.
type Extractor struct {
	strategies []Strategy
}

func NewExtractor(strategies ...Strategy) *Extractor {
	return &Extractor{strategies: strategies}
}

// DefaultExtractor runs the JSON-LD pass first, then the anchor heuristic.
func DefaultExtractor() *Extractor {
	return NewExtractor(StructuredData{}, LinkHeuristic{})
}

// Extract parses html and returns de-duplicated listings in first-seen order.
// It never fails: unparseable fragments are skipped.
func Extract(html string, baseURL string) []models.Listing {
	return DefaultExtractor().Extract(html, baseURL)
}

func (e *Extractor) Extract(html string, baseURL string) []models.Listing {
	if strings.TrimSpace(html) == "" {
		return []models.Listing{}
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []models.Listing{}
	}

	base := parseBase(baseURL)
	var listings []models.Listing
	for _, strategy := range e.strategies {
		listings = append(listings, strategy.Extract(doc, base)...)
	}
	return dedupeListings(listings)
}

// dedupeListings collapses listings sharing (title, url). This is coarser
// than the storage identity key: external ids are ignored here.
func dedupeListings(listings []models.Listing) []models.Listing {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Listing, 0, len(listings))
	for _, listing := range listings {
		key := listing.Title + "\x00" + listing.URL
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, listing)
	}
	return out
}

func parseBase(raw string) *url.URL {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil
	}
	return u
}
