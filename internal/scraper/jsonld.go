package scraper

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/jimezsa/jobwatch/internal/models"
)

// StructuredData reads schema.org JobPosting objects from JSON-LD blocks.
// Titles are taken as declared; no length filter is applied here.
type StructuredData struct{}

func (StructuredData) Name() string {
	return "json-ld"
}

func (StructuredData) Extract(doc *goquery.Document, base *url.URL) []models.Listing {
	var listings []models.Listing

	doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return
		}
		data, err := decodeJSONLD(raw)
		if err != nil {
			return
		}
		listings = append(listings, listingsFromJSONLD(data, base)...)
	})

	return listings
}

func decodeJSONLD(raw string) (any, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<!--")
	raw = strings.TrimSuffix(raw, "-->")
	raw = strings.ReplaceAll(raw, "\u2028", "")
	raw = strings.ReplaceAll(raw, "\u2029", "")

	var data any
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func listingsFromJSONLD(data any, base *url.URL) []models.Listing {
	var listings []models.Listing
	switch value := data.(type) {
	case []any:
		for _, item := range value {
			if obj, ok := item.(map[string]any); ok {
				listings = append(listings, listingsFromObject(obj, base)...)
			}
		}
	case map[string]any:
		listings = append(listings, listingsFromObject(value, base)...)
	}
	return listings
}

func listingsFromObject(obj map[string]any, base *url.URL) []models.Listing {
	if isJobPosting(obj["@type"]) {
		return []models.Listing{listingFromJobPosting(obj, base)}
	}

	graph, ok := obj["@graph"].([]any)
	if !ok {
		return nil
	}
	var listings []models.Listing
	for _, item := range graph {
		node, ok := item.(map[string]any)
		if !ok || !isJobPosting(node["@type"]) {
			continue
		}
		listings = append(listings, listingFromJobPosting(node, base))
	}
	return listings
}

func isJobPosting(value any) bool {
	switch typ := value.(type) {
	case string:
		return strings.EqualFold(strings.TrimSpace(typ), "JobPosting")
	case []any:
		for _, item := range typ {
			if isJobPosting(item) {
				return true
			}
		}
	}
	return false
}

func listingFromJobPosting(obj map[string]any, base *url.URL) models.Listing {
	listing := models.Listing{
		Title:       stringValue(obj["title"]),
		URL:         resolveRootRelative(base, stringValue(obj["url"])),
		ExternalID:  stringValue(mapValue(obj["identifier"], "value")),
		Description: descriptionText(stringValue(obj["description"])),
	}
	if ts, err := parsePostedAt(stringValue(obj["datePosted"])); err == nil {
		listing.PostedAt = &ts
	}
	return listing
}
