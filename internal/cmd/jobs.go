package cmd

import (
	"io"

	"github.com/jimezsa/jobwatch/internal/export"
)

type JobsCmd struct {
	List JobsListCmd `cmd:"" default:"withargs" help:"List stored jobs."`
	Ack  JobsAckCmd  `cmd:"" help:"Clear the new flag on jobs; all new jobs when no ids are given."`
}

type JobsListCmd struct {
	New bool `help:"Only jobs not yet acknowledged."`
}

type JobsAckCmd struct {
	IDs []int64 `arg:"" optional:"" name:"id" help:"Job ids."`
}

func (c *JobsListCmd) Run(ctx *Context) error {
	svc, err := ctx.service(serviceNeeds{})
	if err != nil {
		return err
	}
	jobs, err := svc.Jobs(ctx.ctx(), c.New)
	if err != nil {
		return err
	}
	return emit(ctx, func(w io.Writer, format export.Format, opts export.WriteOptions) error {
		return export.WriteStoredJobs(w, jobs, format, opts)
	})
}

func (c *JobsAckCmd) Run(ctx *Context) error {
	svc, err := ctx.service(serviceNeeds{})
	if err != nil {
		return err
	}
	n, err := svc.Acknowledge(ctx.ctx(), c.IDs)
	if err != nil {
		return err
	}
	ctx.UI.Successf("Acknowledged %d job(s)", n)
	return nil
}
