package cmd

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type WatchCmd struct {
	Every    string `help:"Cron schedule, e.g. '@every 6h' or '0 9 * * *'. Defaults to scan_interval."`
	Strategy string `help:"Comma-separated extraction strategies (json-ld, links). Default: all."`
}

func (c *WatchCmd) Run(ctx *Context) error {
	spec := strings.TrimSpace(c.Every)
	if spec == "" {
		spec = ctx.Config.ScanInterval
	}

	svc, err := scanService(ctx, c.Strategy)
	if err != nil {
		return err
	}

	runCtx := ctx.ctx()
	scan := func() {
		report, err := svc.Scan(runCtx)
		if err != nil {
			if runCtx.Err() == nil {
				ctx.UI.Errorf("scan: %v", err)
			}
			return
		}
		if err := writeScanReport(ctx, report); err != nil {
			ctx.UI.Errorf("write report: %v", err)
		}
	}

	scheduler := cron.New(
		cron.WithLogger(cronLogger{logger: ctx.Logger}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{logger: ctx.Logger})),
	)
	if _, err := scheduler.AddFunc(spec, scan); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}

	ctx.Logger.Info().Str("schedule", spec).Msg("watching career pages")
	scan()

	scheduler.Start()
	<-runCtx.Done()
	<-scheduler.Stop().Done()
	ctx.Logger.Info().Msg("watch stopped")
	return nil
}

// cronLogger routes scheduler events to zerolog.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
