package scraper

import (
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func TestParsePostedAt(t *testing.T) {
	cases := []struct {
		value string
		want  time.Time
	}{
		{"2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"2024-01-02T15:04:05", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02T15:04:05Z", time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)},
		{"2024-01-02T15:04:05-0700", time.Date(2024, 1, 2, 22, 4, 5, 0, time.UTC)},
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC).Format(time.RFC3339), time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	for _, tc := range cases {
		parsed, err := parsePostedAt(tc.value)
		if err != nil {
			t.Fatalf("expected parse success for %s: %v", tc.value, err)
		}
		if !parsed.Equal(tc.want) {
			t.Fatalf("parsePostedAt(%q) = %s, want %s", tc.value, parsed, tc.want)
		}
	}

	for _, bad := range []string{"", "yesterday", "15/01/2024"} {
		if _, err := parsePostedAt(bad); err == nil {
			t.Fatalf("expected parse failure for %q", bad)
		}
	}
}

func TestResolveRootRelative(t *testing.T) {
	base, _ := url.Parse("https://acme.example/careers/list?page=2")
	cases := []struct {
		href string
		want string
	}{
		{"/jobs/1", "https://acme.example/jobs/1"},
		{"https://other.example/a", "https://other.example/a"},
		{"//cdn.example/asset", "//cdn.example/asset"},
		{"jobs/2", "jobs/2"},
		{"", ""},
	}

	for _, tc := range cases {
		if got := resolveRootRelative(base, tc.href); got != tc.want {
			t.Fatalf("resolveRootRelative(%q) = %q, want %q", tc.href, got, tc.want)
		}
	}

	if got := resolveRootRelative(nil, "/jobs/1"); got != "/jobs/1" {
		t.Fatalf("expected href unchanged without base, got %q", got)
	}
}

func TestBaseURL(t *testing.T) {
	cases := map[string]string{
		"https://acme.example/careers?x=1": "https://acme.example",
		"http://acme.example:8080/a/b":     "http://acme.example:8080",
		"not a url":                        "",
		"":                                 "",
	}
	for input, want := range cases {
		if got := BaseURL(input); got != want {
			t.Fatalf("BaseURL(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestDescriptionText(t *testing.T) {
	got := descriptionText("&lt;p&gt;Build&lt;/p&gt;&lt;ul&gt;&lt;li&gt;APIs &amp; tools&lt;/li&gt;&lt;/ul&gt;")
	if got != "Build APIs & tools" {
		t.Fatalf("unexpected description: %q", got)
	}
	if got := descriptionText("   "); got != "" {
		t.Fatalf("expected empty description, got %q", got)
	}
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse document: %v", err)
	}
	return doc
}

func mustBase(t *testing.T, raw string) *url.URL {
	t.Helper()
	u := parseBase(raw)
	if u == nil {
		t.Fatalf("invalid base url %q", raw)
	}
	return u
}
