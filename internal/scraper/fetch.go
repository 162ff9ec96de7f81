package scraper

import (
	"context"
	"fmt"
	"io"

	fhttp "github.com/bogdanfinn/fhttp"
	"github.com/jimezsa/jobwatch/internal/models"
)

// FetchError is returned when a career page cannot be retrieved.
type FetchError struct {
	URL        string
	StatusCode int
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: http %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Cause)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// Page is a fetched document. URL is the final URL after redirects.
type Page struct {
	URL  string
	HTML string
}

type getter interface {
	Get(ctx context.Context, target string) (*fhttp.Response, error)
}

// Fetcher retrieves career pages and runs the extractor over them.
type Fetcher struct {
	client    getter
	extractor *Extractor
}

// NewFetcher accepts a *network.Client or anything else with the same Get.
// A nil extractor means DefaultExtractor.
func NewFetcher(client getter, extractor *Extractor) *Fetcher {
	if extractor == nil {
		extractor = DefaultExtractor()
	}
	return &Fetcher{client: client, extractor: extractor}
}

func (f *Fetcher) Fetch(ctx context.Context, target string) (*Page, error) {
	resp, err := f.client.Get(ctx, target)
	if err != nil {
		return nil, &FetchError{URL: target, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, &FetchError{URL: target, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{URL: target, Cause: err}
	}

	final := target
	if resp.Request != nil && resp.Request.URL != nil {
		final = resp.Request.URL.String()
	}
	return &Page{URL: final, HTML: string(body)}, nil
}

// FetchListings fetches target and extracts listings, resolving relative
// links against the scheme and host the request finally landed on.
func (f *Fetcher) FetchListings(ctx context.Context, target string) ([]models.Listing, error) {
	page, err := f.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	return f.extractor.Extract(page.HTML, BaseURL(page.URL)), nil
}
