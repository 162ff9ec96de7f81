package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jimezsa/jobwatch/internal/export"
	"github.com/jimezsa/jobwatch/internal/models"
	"github.com/jimezsa/jobwatch/internal/scraper"
	"github.com/jimezsa/jobwatch/internal/tracker"
)

type ScanCmd struct {
	Strategy string `help:"Comma-separated extraction strategies (json-ld, links). Default: all."`
}

func (s *ScanCmd) Run(ctx *Context) error {
	svc, err := scanService(ctx, s.Strategy)
	if err != nil {
		return err
	}

	stop := ctx.UI.StartIndicator("Scanning")
	report, err := svc.Scan(ctx.ctx())
	stop()
	if err != nil {
		return err
	}
	return writeScanReport(ctx, report)
}

func scanService(ctx *Context, strategies string) (*tracker.Service, error) {
	extractor, err := scraper.ExtractorFor(splitList(strategies))
	if err != nil {
		return nil, err
	}
	return ctx.service(serviceNeeds{fetch: true, extractor: extractor})
}

func writeScanReport(ctx *Context, report *tracker.ScanReport) error {
	for _, failure := range report.Failures {
		ctx.UI.Warnf("%s: %v", failure.Company.Name, failure.Err)
	}
	if err := emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteNewJobs(w, report.NewJobs, format, opts)
	}); err != nil {
		return err
	}
	if ctx.Err != nil {
		_, _ = fmt.Fprintln(ctx.Err, formatScanSummary(report))
	}
	return nil
}

func formatScanSummary(report *tracker.ScanReport) string {
	scanned := len(report.Companies) + len(report.Failures)
	head := fmt.Sprintf("summary: companies=%d failed=%d new_jobs=%d", scanned, len(report.Failures), len(report.NewJobs))

	counts := countJobsByCompany(report.NewJobs)
	if len(counts) == 0 {
		return head + " by_company=none"
	}
	parts := make([]string, 0, len(counts))
	for _, count := range counts {
		parts = append(parts, fmt.Sprintf("%s:%d", count.company, count.total))
	}
	return head + " by_company=" + strings.Join(parts, ", ")
}

type companyCount struct {
	company string
	total   int
}

func countJobsByCompany(jobs []models.NewJob) []companyCount {
	totals := make(map[string]int, len(jobs))
	for _, job := range jobs {
		totals[job.Company]++
	}

	counts := make([]companyCount, 0, len(totals))
	for company, total := range totals {
		counts = append(counts, companyCount{company: company, total: total})
	}
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].company < counts[j].company
	})
	return counts
}
