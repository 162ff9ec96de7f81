package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jimezsa/jobwatch/internal/config"
	"github.com/jimezsa/jobwatch/internal/export"
	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/jimezsa/jobwatch/internal/oracle"
	"github.com/jimezsa/jobwatch/internal/scraper"
	"github.com/jimezsa/jobwatch/internal/seen"
	"github.com/jimezsa/jobwatch/internal/store"
	"github.com/jimezsa/jobwatch/internal/tracker"
	"github.com/jimezsa/jobwatch/internal/ui"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	pages    map[string][]models.Listing
	failures map[string]error
	html     map[string]string
	calls    []string
	onFetch  func()
}

func (f *stubFetcher) FetchListings(_ context.Context, url string) ([]models.Listing, error) {
	f.calls = append(f.calls, url)
	if f.onFetch != nil {
		f.onFetch()
	}
	if err := f.failures[url]; err != nil {
		return nil, err
	}
	return f.pages[url], nil
}

func (f *stubFetcher) Fetch(_ context.Context, url string) (*scraper.Page, error) {
	f.calls = append(f.calls, url)
	if err := f.failures[url]; err != nil {
		return nil, err
	}
	return &scraper.Page{URL: url, HTML: f.html[url]}, nil
}

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

type harness struct {
	ctx       *Context
	out       *bytes.Buffer
	errOut    *bytes.Buffer
	fetcher   *stubFetcher
	generator *stubGenerator
	storePath string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("JOBWATCH_CONFIG_DIR", dir)
	t.Setenv("JOBWATCH_PROXIES", "")

	h := &harness{
		out:       &bytes.Buffer{},
		errOut:    &bytes.Buffer{},
		fetcher:   &stubFetcher{pages: map[string][]models.Listing{}, failures: map[string]error{}, html: map[string]string{}},
		generator: &stubGenerator{},
		storePath: filepath.Join(dir, config.StoreFileName),
	}
	h.ctx = &Context{
		Out:        h.out,
		Err:        h.errOut,
		UI:         ui.New(h.out, h.errOut, ui.ColorNever, true),
		Config:     config.DefaultConfig(),
		ConfigDir:  dir,
		Logger:     zerolog.Nop(),
		JSONOutput: true,
		Background: context.Background(),
		OpenStore: func(context.Context) (store.Store, error) {
			return store.OpenFile(h.storePath)
		},
		NewFetcher: func(*scraper.Extractor) (PageFetcher, error) {
			return h.fetcher, nil
		},
		NewGenerator: func(context.Context, oracle.Settings) (oracle.Generator, error) {
			return h.generator, nil
		},
		Now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) },
	}
	t.Cleanup(func() { _ = h.ctx.Close() })
	return h
}

func (h *harness) reset() {
	h.out.Reset()
	h.errOut.Reset()
}

func decodeJSON[T any](t *testing.T, buf *bytes.Buffer) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(buf.Bytes(), &v), buf.String())
	return v
}

func TestCompaniesAddAndList(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, (&CompaniesAddCmd{Name: "Zeta", URL: "https://zeta.example/careers"}).Run(h.ctx))
	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))
	h.reset()

	require.NoError(t, (&CompaniesListCmd{}).Run(h.ctx))
	companies := decodeJSON[[]models.Company](t, h.out)
	require.Len(t, companies, 2)
	assert.Equal(t, "Acme", companies[0].Name)
	assert.Equal(t, "Zeta", companies[1].Name)
}

func TestCompaniesAddRejectsDuplicateAndInvalid(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))

	err := (&CompaniesAddCmd{Name: "Acme again", URL: "https://acme.example/jobs"}).Run(h.ctx)
	assert.ErrorIs(t, err, store.ErrDuplicateURL)

	err = (&CompaniesAddCmd{Name: "Broken", URL: "not a url"}).Run(h.ctx)
	assert.ErrorIs(t, err, tracker.ErrInvalidInput)
}

func TestCompaniesRemoveUnknown(t *testing.T) {
	h := newHarness(t)
	err := (&CompaniesRemoveCmd{ID: 42}).Run(h.ctx)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestScanReportsNewJobsOnce(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))
	h.fetcher.pages["https://acme.example/jobs"] = []models.Listing{
		{Title: "Backend Engineer", URL: "https://acme.example/jobs/1", ExternalID: "1"},
		{Title: "Data Analyst", URL: "https://acme.example/jobs/2", ExternalID: "2"},
	}
	h.reset()

	require.NoError(t, (&ScanCmd{}).Run(h.ctx))
	first := decodeJSON[[]models.NewJob](t, h.out)
	require.Len(t, first, 2)
	assert.Equal(t, "Acme", first[0].Company)
	assert.Equal(t, "Backend Engineer", first[0].Title)
	assert.Contains(t, h.errOut.String(), "summary: companies=1 failed=0 new_jobs=2 by_company=Acme:2")

	h.reset()
	require.NoError(t, (&ScanCmd{}).Run(h.ctx))
	second := decodeJSON[[]models.NewJob](t, h.out)
	assert.Empty(t, second)
	assert.Contains(t, h.errOut.String(), "new_jobs=0 by_company=none")
}

func TestScanWarnsAndContinuesOnFetchFailure(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))
	require.NoError(t, (&CompaniesAddCmd{Name: "Beta", URL: "https://beta.example/jobs"}).Run(h.ctx))
	h.fetcher.failures["https://acme.example/jobs"] = &scraper.FetchError{URL: "https://acme.example/jobs", StatusCode: 503}
	h.fetcher.pages["https://beta.example/jobs"] = []models.Listing{{Title: "SRE", URL: "https://beta.example/jobs/9"}}
	h.reset()

	require.NoError(t, (&ScanCmd{}).Run(h.ctx))
	jobs := decodeJSON[[]models.NewJob](t, h.out)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Beta", jobs[0].Company)
	assert.Contains(t, h.errOut.String(), "Acme:")
	assert.Contains(t, h.errOut.String(), "failed=1")
}

func TestScanRejectsUnknownStrategy(t *testing.T) {
	h := newHarness(t)
	err := (&ScanCmd{Strategy: "xpath"}).Run(h.ctx)
	require.Error(t, err)
	assert.Empty(t, h.fetcher.calls)
}

func TestJobsListAndAck(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))
	h.fetcher.pages["https://acme.example/jobs"] = []models.Listing{
		{Title: "Backend Engineer", URL: "https://acme.example/jobs/1"},
		{Title: "Data Analyst", URL: "https://acme.example/jobs/2"},
	}
	require.NoError(t, (&ScanCmd{}).Run(h.ctx))
	h.reset()

	require.NoError(t, (&JobsListCmd{New: true}).Run(h.ctx))
	fresh := decodeJSON[[]models.StoredJob](t, h.out)
	require.Len(t, fresh, 2)

	h.reset()
	require.NoError(t, (&JobsAckCmd{IDs: []int64{fresh[0].ID}}).Run(h.ctx))
	assert.Contains(t, h.out.String(), "Acknowledged 1 job(s)")

	h.reset()
	require.NoError(t, (&JobsListCmd{New: true}).Run(h.ctx))
	remaining := decodeJSON[[]models.StoredJob](t, h.out)
	require.Len(t, remaining, 1)
	assert.Equal(t, fresh[1].ID, remaining[0].ID)

	h.reset()
	require.NoError(t, (&JobsAckCmd{}).Run(h.ctx))
	h.reset()
	require.NoError(t, (&JobsListCmd{New: true}).Run(h.ctx))
	assert.Empty(t, decodeJSON[[]models.StoredJob](t, h.out))

	h.reset()
	require.NoError(t, (&JobsListCmd{}).Run(h.ctx))
	assert.Len(t, decodeJSON[[]models.StoredJob](t, h.out), 2)
}

func TestRankRequiresResume(t *testing.T) {
	h := newHarness(t)
	err := (&RankCmd{}).Run(h.ctx)
	assert.ErrorIs(t, err, tracker.ErrNoResume)
	assert.Empty(t, h.generator.prompts)
}

func TestResumeUploadThenRank(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))
	h.fetcher.pages["https://acme.example/jobs"] = []models.Listing{
		{Title: "Backend Engineer", URL: "https://acme.example/jobs/1"},
		{Title: "Data Analyst", URL: "https://acme.example/jobs/2"},
	}
	require.NoError(t, (&ScanCmd{}).Run(h.ctx))

	resumePath := filepath.Join(t.TempDir(), "resume.md")
	require.NoError(t, os.WriteFile(resumePath, []byte("# Jane\nGo, Postgres, Kubernetes"), 0o644))
	require.NoError(t, (&ResumeUploadCmd{File: resumePath}).Run(h.ctx))

	h.generator.response = "Here you go:\n" +
		`[{"job_id": 1, "score": 5, "reason": "some overlap"}, {"job_id": 2, "score": 8, "reason": "strong SQL"}]`
	h.reset()

	require.NoError(t, (&RankCmd{Limit: 1}).Run(h.ctx))
	results := decodeJSON[[]models.RankedResult](t, h.out)
	require.Len(t, results, 1)
	assert.Equal(t, "Data Analyst", results[0].Title)
	assert.Equal(t, 8.0, results[0].CombinedScore)
	assert.Equal(t, "strong SQL", results[0].Reason)

	require.Len(t, h.generator.prompts, 1)
	assert.Contains(t, h.generator.prompts[0], "Go, Postgres, Kubernetes")
}

func TestResumeShow(t *testing.T) {
	h := newHarness(t)
	err := (&ResumeShowCmd{}).Run(h.ctx)
	assert.ErrorIs(t, err, tracker.ErrNoResume)

	resumePath := filepath.Join(t.TempDir(), "cv.html")
	require.NoError(t, os.WriteFile(resumePath, []byte("<p>Go &amp; SQL</p>"), 0o644))
	require.NoError(t, (&ResumeUploadCmd{File: resumePath}).Run(h.ctx))
	h.reset()

	require.NoError(t, (&ResumeShowCmd{Full: true}).Run(h.ctx))
	assert.Equal(t, "Go & SQL\n", h.out.String())
}

const extractFixture = `<html><body>
<script type="application/ld+json">{"@type":"JobPosting","title":"Platform Engineer","url":"/jobs/pe-1","identifier":{"value":"pe-1"}}</script>
<a href="/jobs/backend-42">Senior Backend Engineer</a>
</body></html>`

func TestExtractFromFile(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "careers.html")
	require.NoError(t, os.WriteFile(path, []byte(extractFixture), 0o644))

	require.NoError(t, (&ExtractCmd{File: path, BaseURL: "https://acme.example"}).Run(h.ctx))
	listings := decodeJSON[[]models.Listing](t, h.out)
	require.NotEmpty(t, listings)
	assert.Equal(t, "Platform Engineer", listings[0].Title)
	for _, l := range listings {
		assert.True(t, strings.HasPrefix(l.URL, "https://acme.example/"), l.URL)
	}
	assert.Empty(t, h.fetcher.calls)
}

func TestExtractFromURLUsesFinalOrigin(t *testing.T) {
	h := newHarness(t)
	h.fetcher.html["https://acme.example/careers"] = extractFixture

	require.NoError(t, (&ExtractCmd{URL: "https://acme.example/careers"}).Run(h.ctx))
	listings := decodeJSON[[]models.Listing](t, h.out)
	require.NotEmpty(t, listings)
	assert.Equal(t, "https://acme.example/jobs/pe-1", listings[0].URL)
}

func TestExtractWithTitles(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "careers.html")
	require.NoError(t, os.WriteFile(path, []byte(extractFixture), 0o644))
	h.generator.response = `[{"title": "Senior Backend Engineer", "url": "https://acme.example/jobs/backend-42", "relevance": "adjacent"}]`

	require.NoError(t, (&ExtractCmd{File: path, BaseURL: "https://acme.example", Titles: "Software Engineer, "}).Run(h.ctx))
	matches := decodeJSON[[]oracle.TitleMatch](t, h.out)
	require.Len(t, matches, 1)
	assert.Equal(t, "adjacent", matches[0].Relevance)
	require.Len(t, h.generator.prompts, 1)
	assert.Contains(t, h.generator.prompts[0], "Software Engineer")
}

func TestExtractRequiresExactlyOneSource(t *testing.T) {
	h := newHarness(t)
	assert.Error(t, (&ExtractCmd{}).Run(h.ctx))
	assert.Error(t, (&ExtractCmd{URL: "https://a", File: "b.html"}).Run(h.ctx))
}

func TestWatchScansImmediatelyAndStopsWhenCancelled(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))
	h.fetcher.pages["https://acme.example/jobs"] = []models.Listing{{Title: "SRE", URL: "https://acme.example/jobs/1"}}
	h.reset()

	background, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.ctx.Background = background
	h.fetcher.onFetch = cancel

	require.NoError(t, (&WatchCmd{Every: "@every 1h"}).Run(h.ctx))
	assert.Equal(t, []string{"https://acme.example/jobs"}, h.fetcher.calls)
}

func TestWatchRejectsBadSchedule(t *testing.T) {
	h := newHarness(t)
	err := (&WatchCmd{Every: "whenever"}).Run(h.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid schedule")
}

func TestConfigSetApply(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.LLMModel = "llama3"

	err := (&SetConfigCmd{Provider: "Gemini", APIKey: " key "}).apply(&cfg)
	require.NoError(t, err)
	assert.Equal(t, oracle.ProviderGemini, cfg.LLMProvider)
	assert.Empty(t, cfg.LLMModel)
	assert.Equal(t, "key", cfg.LLMAPIKey)

	require.NoError(t, (&SetConfigCmd{ClearAPIKey: true, OllamaURL: "http://gpu:11434/", Interval: "0 9 * * *"}).apply(&cfg))
	assert.Empty(t, cfg.LLMAPIKey)
	assert.Equal(t, "http://gpu:11434", cfg.OllamaBaseURL)
	assert.Equal(t, "0 9 * * *", cfg.ScanInterval)

	assert.Error(t, (&SetConfigCmd{Provider: "mistral"}).apply(&cfg))
	assert.Error(t, (&SetConfigCmd{Interval: "every tuesday"}).apply(&cfg))
	assert.Error(t, (&SetConfigCmd{Limit: -1}).apply(&cfg))
}

func TestConfigSetPersists(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, (&SetConfigCmd{Provider: "gemini", Model: "gemini-1.5-pro", Limit: 5}).Run(h.ctx))

	cfg, err := config.LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.Equal(t, "gemini-1.5-pro", cfg.LLMModel)
	assert.Equal(t, 5, cfg.DefaultLimit)
}

func TestConfigShowRedactsSecrets(t *testing.T) {
	h := newHarness(t)
	h.ctx.JSONOutput = false
	h.ctx.Config.LLMAPIKey = "super-secret"

	require.NoError(t, (&ShowConfigCmd{}).Run(h.ctx))
	out := h.out.String()
	assert.NotContains(t, out, "super-secret")
	assert.Contains(t, out, "llm_provider")
	assert.Contains(t, out, "llama3")
}

func TestSeenDiffAndUpdate(t *testing.T) {
	h := newHarness(t)
	h.ctx.JSONOutput = false
	dir := t.TempDir()
	newPath := filepath.Join(dir, "new.json")
	seenPath := filepath.Join(dir, "seen.json")
	outPath := filepath.Join(dir, "unseen.json")

	require.NoError(t, seen.WriteListings(newPath, []models.Listing{
		{Title: "SRE", URL: "https://acme/jobs/1", ExternalID: "1"},
		{Title: "Analyst", URL: "https://acme/jobs/2"},
	}))
	require.NoError(t, seen.WriteListings(seenPath, []models.Listing{
		{Title: "Site Reliability Engineer", URL: "https://acme/jobs/one", ExternalID: "1"},
	}))

	require.NoError(t, (&SeenDiffCmd{New: newPath, Seen: seenPath, Out: outPath, Stats: true}).Run(h.ctx))
	unseen, err := seen.ReadListings(outPath)
	require.NoError(t, err)
	require.Len(t, unseen, 1)
	assert.Equal(t, "Analyst", unseen[0].Title)
	assert.Contains(t, h.out.String(), "unseen_emitted=1")

	h.reset()
	mergedPath := filepath.Join(dir, "merged.json")
	require.NoError(t, (&SeenUpdateCmd{Seen: seenPath, Input: newPath, Out: mergedPath, Stats: true}).Run(h.ctx))
	merged, err := seen.ReadListings(mergedPath)
	require.NoError(t, err)
	assert.Len(t, merged, 2)
	assert.Contains(t, h.out.String(), "added=1 total_out=2")
}

func TestSeenDiffMissingHistory(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	newPath := filepath.Join(dir, "new.json")
	outPath := filepath.Join(dir, "unseen.json")
	require.NoError(t, seen.WriteListings(newPath, []models.Listing{{Title: "SRE", URL: "https://acme/jobs/1"}}))

	require.NoError(t, (&SeenDiffCmd{New: newPath, Seen: filepath.Join(dir, "missing.json"), Out: outPath}).Run(h.ctx))
	unseen, err := seen.ReadListings(outPath)
	require.NoError(t, err)
	assert.Len(t, unseen, 1)
}

func TestResolveFormat(t *testing.T) {
	var out bytes.Buffer
	cases := []struct {
		name   string
		ctx    Context
		output string
		want   export.Format
	}{
		{name: "json flag", ctx: Context{Out: &out, JSONOutput: true}, want: export.FormatJSON},
		{name: "plain flag", ctx: Context{Out: &out, PlainText: true}, output: "jobs.tsv", want: export.FormatTSV},
		{name: "explicit format", ctx: Context{Out: &out, Format: "markdown"}, want: export.FormatMarkdown},
		{name: "non tty", ctx: Context{Out: &out}, want: export.FormatCSV},
		{name: "file output", ctx: Context{Out: &out}, output: "jobs.csv", want: export.FormatCSV},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := resolveFormat(&tc.ctx, tc.output)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := resolveFormat(&Context{Out: &out, Format: "yaml"}, "")
	assert.Error(t, err)
}

func TestEmitWritesOutputFile(t *testing.T) {
	h := newHarness(t)
	h.ctx.JSONOutput = false
	h.ctx.Output = filepath.Join(t.TempDir(), "companies.csv")
	require.NoError(t, (&CompaniesAddCmd{Name: "Acme", URL: "https://acme.example/jobs"}).Run(h.ctx))
	h.reset()

	require.NoError(t, (&CompaniesListCmd{}).Run(h.ctx))
	assert.Empty(t, h.out.String())
	data, err := os.ReadFile(h.ctx.Output)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "id,name,career_url"))
	assert.Contains(t, string(data), "Acme")
}

func TestGeneratorErrorsPropagate(t *testing.T) {
	h := newHarness(t)
	h.ctx.NewGenerator = func(context.Context, oracle.Settings) (oracle.Generator, error) {
		return nil, errors.New("gemini api key is required")
	}
	err := (&RankCmd{}).Run(h.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key")
}

func TestFormatScanSummary(t *testing.T) {
	report := &tracker.ScanReport{
		NewJobs: []models.NewJob{{Company: "Beta"}, {Company: "Acme"}, {Company: "Beta"}},
		Companies: []tracker.CompanyResult{
			{Company: models.Company{Name: "Acme"}},
			{Company: models.Company{Name: "Beta"}},
		},
		Failures: []tracker.ScanFailure{{Company: models.Company{Name: "Gamma"}, Err: errors.New("503")}},
	}
	assert.Equal(t, "summary: companies=3 failed=1 new_jobs=3 by_company=Acme:1, Beta:2", formatScanSummary(report))
}

func TestProxyCheckWithoutProxies(t *testing.T) {
	h := newHarness(t)
	err := (&ProxyCheckCmd{Target: "https://example.com", Timeout: 1}).Run(h.ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no proxies configured")
}

func TestProxyCheckReportsInvalidProxy(t *testing.T) {
	h := newHarness(t)
	h.ctx.Proxies = "://not-a-proxy"

	require.NoError(t, (&ProxyCheckCmd{Target: "https://example.com", Timeout: 1}).Run(h.ctx))
	results := decodeJSON[[]export.ProxyCheck](t, h.out)
	require.Len(t, results, 1)
	assert.Equal(t, "error", results[0].Status)
	assert.NotEmpty(t, results[0].Error)
}
