package scraper

import (
	"errors"
	"fmt"
	"html"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

func cleanText(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// descriptionText turns a possibly HTML (and possibly entity-escaped)
// description into plain text.
func descriptionText(value string) string {
	if strings.TrimSpace(value) == "" {
		return ""
	}
	value = textPolicy.Sanitize(html.UnescapeString(value))
	return cleanText(html.UnescapeString(value))
}

// resolveRootRelative joins root-relative hrefs ("/jobs/1") with the base
// scheme and host. Protocol-relative hrefs ("//cdn.host/x") and anything
// else are returned unchanged.
func resolveRootRelative(base *url.URL, href string) string {
	if base == nil || !strings.HasPrefix(href, "/") || strings.HasPrefix(href, "//") {
		return href
	}
	return base.Scheme + "://" + base.Host + href
}

// BaseURL reduces a page URL to scheme://host.
func BaseURL(raw string) string {
	u := parseBase(raw)
	if u == nil {
		return ""
	}
	return u.Scheme + "://" + u.Host
}

func parsePostedAt(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	layouts := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05-0700",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %s", value)
}

func stringValue(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	}
	return ""
}

func mapValue(value any, key string) any {
	m, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return m[key]
}
