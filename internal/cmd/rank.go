package cmd

import (
	"fmt"
	"io"

	"github.com/jimezsa/jobwatch/internal/export"
)

type RankCmd struct {
	Limit int `short:"n" help:"Number of results. Defaults to default_limit."`
}

func (r *RankCmd) Run(ctx *Context) error {
	limit := r.Limit
	if limit < 0 {
		return fmt.Errorf("--limit must be positive")
	}
	if limit == 0 {
		limit = ctx.Config.DefaultLimit
	}

	svc, err := ctx.service(serviceNeeds{llm: true})
	if err != nil {
		return err
	}

	stop := ctx.UI.StartIndicator("Ranking")
	results, err := svc.Rank(ctx.ctx(), limit)
	stop()
	if err != nil {
		return err
	}
	return emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteRanked(w, results, format, opts)
	})
}
