package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/jimezsa/jobwatch/internal/oracle"
)

func TestWriteRankedCSV(t *testing.T) {
	results := []models.RankedResult{
		{JobID: 4, Title: "Backend Engineer", Company: "Acme", URL: "https://acme/jobs/4", RelevanceScore: 9, Reason: "Go, SQL", CombinedScore: 11},
		{JobID: 2, Title: "Analyst", Company: "Beta", RelevanceScore: 0, Reason: "Not scored", CombinedScore: 1.5},
	}

	var buf bytes.Buffer
	if err := WriteRanked(&buf, results, FormatCSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteRanked() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header + 2 rows, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "rank,combined_score,score,title,company,url,reason,posted_at,job_id" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if lines[1] != `1,11.0,9,Backend Engineer,Acme,https://acme/jobs/4,"Go, SQL",,4` {
		t.Fatalf("unexpected first row %q", lines[1])
	}
	if lines[2] != "2,1.5,0,Analyst,Beta,,Not scored,,2" {
		t.Fatalf("unexpected second row %q", lines[2])
	}
}

func TestWriteListingsJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteListings(&buf, nil, FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("WriteListings() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Fatalf("expected empty array, got %q", buf.String())
	}
}

func TestWriteNewJobsJSON(t *testing.T) {
	posted := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	jobs := []models.NewJob{{Company: "Acme", Title: "SRE", URL: "https://acme/jobs/1", PostedAt: &posted}}

	var buf bytes.Buffer
	if err := WriteNewJobs(&buf, jobs, FormatJSON, WriteOptions{}); err != nil {
		t.Fatalf("WriteNewJobs() error = %v", err)
	}
	var decoded []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if decoded[0]["company"] != "Acme" || decoded[0]["posted_at"] != "2024-01-15T00:00:00Z" {
		t.Fatalf("unexpected json: %v", decoded)
	}
}

func TestWriteStoredJobsTableHidesWideColumns(t *testing.T) {
	jobs := []models.StoredJob{{ID: 1, CompanyName: "Acme", Title: "SRE", IsNew: true, ExternalID: "secret-id", FirstSeenAt: time.Now()}}

	var buf bytes.Buffer
	if err := WriteStoredJobs(&buf, jobs, FormatTable, WriteOptions{}); err != nil {
		t.Fatalf("WriteStoredJobs() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "external_id") || strings.Contains(out, "secret-id") {
		t.Fatalf("wide columns should be hidden in table output: %q", out)
	}
	if !strings.Contains(out, "true") || !strings.Contains(out, "Acme") {
		t.Fatalf("unexpected table output: %q", out)
	}
	if !strings.Contains(out, "-") {
		t.Fatalf("expected placeholder for empty url: %q", out)
	}
}

func TestWriteTitleMatchesMarkdown(t *testing.T) {
	matches := []oracle.TitleMatch{
		{Title: "Backend Engineer", URL: "https://acme/jobs/1", Relevance: "adjacent"},
		{Title: "SWE II", Relevance: "exact"},
	}

	var buf bytes.Buffer
	if err := WriteTitleMatches(&buf, matches, FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("WriteTitleMatches() error = %v", err)
	}
	want := strings.Join([]string{
		"- **Backend Engineer** (adjacent)",
		"  Url: [Open](<https://acme/jobs/1>)",
		"- **SWE II** (exact)",
		"  Url: -",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected markdown:\n%s", buf.String())
	}
}

func TestWriteMarkdownEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCompanies(&buf, nil, FormatMarkdown, WriteOptions{}); err != nil {
		t.Fatalf("WriteCompanies() error = %v", err)
	}
	if buf.String() != "No results.\n" {
		t.Fatalf("unexpected output %q", buf.String())
	}
}

func TestCompaniesTSV(t *testing.T) {
	checked := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	companies := []models.Company{{ID: 3, Name: "Acme", CareerURL: "https://acme/careers", LastCheckedAt: &checked}}

	var buf bytes.Buffer
	if err := WriteCompanies(&buf, companies, FormatTSV, WriteOptions{}); err != nil {
		t.Fatalf("WriteCompanies() error = %v", err)
	}
	lines := strings.Split(buf.String(), "\n")
	if lines[1] != "3\tAcme\thttps://acme/careers\t2024-03-01T12:00:00Z\t" {
		t.Fatalf("unexpected row %q", lines[1])
	}
}

func TestParseFormat(t *testing.T) {
	cases := map[string]Format{"": FormatTable, "CSV": FormatCSV, "markdown": FormatMarkdown, "tsv": FormatTSV, "json": FormatJSON}
	for in, want := range cases {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestShortURLLabelAndHyperlink(t *testing.T) {
	if got := shortURLLabel("https://www.acme.example/jobs/1?x=y"); got != "acme.example/jobs/1" {
		t.Fatalf("shortURLLabel() = %q", got)
	}
	cell := linkCell("https://acme/jobs/1", nil, WriteOptions{Hyperlinks: true, LinkStyle: LinkStyleFull})
	if !strings.HasPrefix(cell, "\x1b]8;;https://acme/jobs/1") {
		t.Fatalf("expected OSC 8 hyperlink, got %q", cell)
	}
}
