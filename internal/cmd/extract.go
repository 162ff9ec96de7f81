package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jimezsa/jobwatch/internal/export"
	"github.com/jimezsa/jobwatch/internal/oracle"
	"github.com/jimezsa/jobwatch/internal/scraper"
	"github.com/jimezsa/jobwatch/internal/tracker"
)

type ExtractCmd struct {
	URL      string `name:"url" help:"Fetch and extract this page."`
	File     string `name:"file" type:"existingfile" help:"Extract a saved HTML file."`
	BaseURL  string `name:"base-url" help:"Resolve root-relative links against this origin. Defaults to the fetched page's origin."`
	Titles   string `help:"Comma-separated job titles; keep only listings the model sees as matching."`
	Strategy string `help:"Comma-separated extraction strategies (json-ld, links). Default: all."`
}

func (e *ExtractCmd) Run(ctx *Context) error {
	url := strings.TrimSpace(e.URL)
	file := strings.TrimSpace(e.File)
	if (url == "") == (file == "") {
		return errors.New("exactly one of --url or --file is required")
	}

	extractor, err := scraper.ExtractorFor(splitList(e.Strategy))
	if err != nil {
		return err
	}

	var html, base string
	if url != "" {
		fetcher, err := ctx.fetcher(extractor)
		if err != nil {
			return err
		}
		page, err := fetcher.Fetch(ctx.ctx(), url)
		if err != nil {
			return err
		}
		html, base = page.HTML, scraper.BaseURL(page.URL)
	} else {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read --file: %w", err)
		}
		html = string(data)
	}
	if b := strings.TrimSpace(e.BaseURL); b != "" {
		base = b
	}

	titles := splitList(e.Titles)
	if len(titles) == 0 {
		listings := extractor.Extract(html, base)
		return emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
			return export.WriteListings(w, listings, format, opts)
		})
	}

	gen, err := ctx.generator()
	if err != nil {
		return err
	}
	svc := tracker.New(tracker.Options{
		Matcher:   oracle.NewTitleMatcher(gen, ctx.Logger),
		Extractor: extractor,
		Logger:    ctx.Logger,
	})

	stop := ctx.UI.StartIndicator("Matching titles")
	matches, err := svc.MatchTitles(ctx.ctx(), html, base, titles)
	stop()
	if err != nil {
		return err
	}
	return emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteTitleMatches(w, matches, format, opts)
	})
}
