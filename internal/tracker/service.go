// Package tracker ties the extractor, the novelty detector, the ranker and
// the store together into the operations the CLI exposes.
package tracker

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/jimezsa/jobwatch/internal/oracle"
	"github.com/jimezsa/jobwatch/internal/rank"
	"github.com/jimezsa/jobwatch/internal/scraper"
	"github.com/jimezsa/jobwatch/internal/seen"
	"github.com/jimezsa/jobwatch/internal/store"
	"github.com/ledongthuc/pdf"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
)

var (
	ErrNoResume     = errors.New("no resume uploaded")
	ErrNoJobs       = errors.New("no jobs in database, run a scan first")
	ErrInvalidInput = errors.New("invalid input")
)

// ListingFetcher retrieves and extracts the listings of one career page.
type ListingFetcher interface {
	FetchListings(ctx context.Context, url string) ([]models.Listing, error)
}

type Ranker interface {
	Rank(ctx context.Context, resume string, jobs []models.JobSummary) ([]models.RankedResult, error)
}

type TitleMatcher interface {
	Match(ctx context.Context, titles []string, listings []models.Listing) ([]oracle.TitleMatch, error)
}

type Options struct {
	Store     store.Store
	Fetcher   ListingFetcher
	Ranker    Ranker
	Matcher   TitleMatcher
	// Extractor is used by MatchTitles; nil means the default strategies.
	Extractor *scraper.Extractor
	Logger    zerolog.Logger
	Now       func() time.Time
}

type Service struct {
	store    store.Store
	fetcher  ListingFetcher
	ranker   Ranker
	matcher  TitleMatcher
	extract  *scraper.Extractor
	logger   zerolog.Logger
	now      func() time.Time
	validate *validator.Validate
}

func New(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	extractor := opts.Extractor
	if extractor == nil {
		extractor = scraper.DefaultExtractor()
	}
	return &Service{
		store:    opts.Store,
		fetcher:  opts.Fetcher,
		ranker:   opts.Ranker,
		matcher:  opts.Matcher,
		extract:  extractor,
		logger:   opts.Logger,
		now:      now,
		validate: validator.New(),
	}
}

// CompanyInput is a company to start tracking.
type CompanyInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	CareerURL string `json:"career_url" validate:"required,url"`
}

func (s *Service) AddCompany(ctx context.Context, input CompanyInput) (*models.Company, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.CareerURL = strings.TrimSpace(input.CareerURL)
	if err := s.validate.Struct(input); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return s.store.AddCompany(ctx, input.Name, input.CareerURL)
}

func (s *Service) RemoveCompany(ctx context.Context, id int64) error {
	return s.store.RemoveCompany(ctx, id)
}

// ListCompanies returns tracked companies ordered by name.
func (s *Service) ListCompanies(ctx context.Context) ([]models.Company, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(companies, func(i, j int) bool {
		return companies[i].Name < companies[j].Name
	})
	return companies, nil
}

// ScanReport is the outcome of one surveillance pass.
type ScanReport struct {
	CheckedAt time.Time
	NewJobs   []models.NewJob
	Companies []CompanyResult
	Failures  []ScanFailure
	Inserted  int
}

type CompanyResult struct {
	Company models.Company
	Stats   seen.Stats
}

type ScanFailure struct {
	Company models.Company
	Err     error
}

// Scan fetches every tracked career page in turn and records postings not
// seen before. A company whose page cannot be fetched is reported and
// skipped, keeping its last check time. Everything else is committed in a
// single step at the end.
func (s *Service) Scan(ctx context.Context) (*ScanReport, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}

	report := &ScanReport{
		CheckedAt: s.now().UTC(),
		NewJobs:   []models.NewJob{},
	}
	batch := store.ScanBatch{CheckedAt: report.CheckedAt}

	for _, company := range companies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		listings, err := s.fetcher.FetchListings(ctx, company.CareerURL)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("company", company.Name).
				Str("url", company.CareerURL).
				Msg("failed to scrape company")
			report.Failures = append(report.Failures, ScanFailure{Company: company, Err: err})
			continue
		}

		existing, err := s.store.JobsForCompany(ctx, company.ID)
		if err != nil {
			return nil, fmt.Errorf("load jobs for %s: %w", company.Name, err)
		}

		fresh, stats := seen.DetectNew(existing, listings)
		s.logger.Debug().
			Str("company", company.Name).
			Int("scraped", stats.Scraped).
			Int("known", stats.Known).
			Int("new", stats.New).
			Msg("company scanned")

		batch.Companies = append(batch.Companies, store.CompanyScan{CompanyID: company.ID, Listings: fresh})
		report.Companies = append(report.Companies, CompanyResult{Company: company, Stats: stats})
		for _, l := range fresh {
			report.NewJobs = append(report.NewJobs, models.NewJob{
				Company:  company.Name,
				Title:    l.Title,
				URL:      l.URL,
				PostedAt: l.PostedAt,
			})
		}
	}

	if len(batch.Companies) == 0 {
		return report, nil
	}
	inserted, err := s.store.CommitScan(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("commit scan: %w", err)
	}
	report.Inserted = inserted
	return report, nil
}

var resumePolicy = bluemonday.StrictPolicy().AddSpaceWhenStrippingTag(true)

// UploadResume stores the text of a resume file, replacing any previous one.
func (s *Service) UploadResume(ctx context.Context, filename string, data []byte) (*models.Resume, error) {
	text := strings.ToValidUTF8(string(data), "")
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		extracted, err := pdfText(data)
		if err != nil {
			return nil, fmt.Errorf("%w: read pdf: %v", ErrInvalidInput, err)
		}
		text = strings.ToValidUTF8(extracted, "")
	case ".html", ".htm":
		text = html.UnescapeString(resumePolicy.Sanitize(text))
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: resume is empty", ErrInvalidInput)
	}

	resume := models.Resume{
		Filename:   filepath.Base(filename),
		Content:    text,
		UploadedAt: s.now().UTC(),
	}
	if err := s.store.SaveResume(ctx, resume); err != nil {
		return nil, err
	}
	return &resume, nil
}

// pdfText concatenates the plain text of every page. The parser panics on
// some malformed files, so panics are turned into errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Rank scores every stored job against the resume and returns the best
// limit results.
func (s *Service) Rank(ctx context.Context, limit int) ([]models.RankedResult, error) {
	if s.ranker == nil {
		return nil, errors.New("ranker is not configured")
	}

	resume, err := s.store.Resume(ctx)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoResume
	}
	if err != nil {
		return nil, err
	}

	jobs, err := s.store.ListJobs(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	summaries := make([]models.JobSummary, 0, len(jobs))
	for _, job := range jobs {
		summaries = append(summaries, job.Summary())
	}

	results, err := s.ranker.Rank(ctx, resume.Content, summaries)
	if err != nil {
		return nil, err
	}
	return rank.Top(results, limit), nil
}

// MatchTitles extracts listings from page and keeps those the model sees as
// the same or an adjacent role to one of titles.
func (s *Service) MatchTitles(ctx context.Context, page, baseURL string, titles []string) ([]oracle.TitleMatch, error) {
	if s.matcher == nil {
		return nil, errors.New("title matcher is not configured")
	}

	cleaned := make([]string, 0, len(titles))
	for _, t := range titles {
		if t = strings.TrimSpace(t); t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("%w: at least one title is required", ErrInvalidInput)
	}

	listings := s.extract.Extract(page, baseURL)
	if len(listings) == 0 {
		return []oracle.TitleMatch{}, nil
	}
	return s.matcher.Match(ctx, cleaned, listings)
}

func (s *Service) Jobs(ctx context.Context, onlyNew bool) ([]models.StoredJob, error) {
	return s.store.ListJobs(ctx, onlyNew)
}

// Acknowledge clears the new flag on the given jobs, or on every new job
// when ids is empty.
func (s *Service) Acknowledge(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		fresh, err := s.store.ListJobs(ctx, true)
		if err != nil {
			return 0, err
		}
		for _, job := range fresh {
			ids = append(ids, job.ID)
		}
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return s.store.MarkJobsSeen(ctx, ids)
}
