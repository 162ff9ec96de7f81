package cmd

import (
	"fmt"

	"github.com/jimezsa/jobwatch/internal/seen"
)

type SeenCmd struct {
	Diff   SeenDiffCmd   `cmd:"" help:"Write unseen listings (A-B) to JSON."`
	Update SeenUpdateCmd `cmd:"" help:"Merge listings into a seen history JSON file."`
}

type SeenDiffCmd struct {
	New   string `name:"new" required:"" help:"Path to new listings JSON file (A), e.g. from extract --json."`
	Seen  string `name:"seen" required:"" help:"Path to seen listings JSON file (B). Missing file is treated as empty."`
	Out   string `name:"out" required:"" help:"Output path for unseen listings JSON file (C)."`
	Stats bool   `name:"stats" help:"Print comparison stats."`
}

type SeenUpdateCmd struct {
	Seen  string `name:"seen" required:"" help:"Path to seen listings JSON file (B). Missing file is treated as empty."`
	Input string `name:"input" required:"" help:"Path to listings JSON file to merge into seen history."`
	Out   string `name:"out" required:"" help:"Output path for updated seen listings JSON."`
	Stats bool   `name:"stats" help:"Print merge stats."`
}

func (c *SeenDiffCmd) Run(ctx *Context) error {
	newListings, err := seen.ReadListings(c.New)
	if err != nil {
		return fmt.Errorf("read --new: %w", err)
	}
	history, err := seen.ReadListingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}

	unseen, stats := seen.DetectNew(seen.AsStored(history), newListings)
	if err := seen.WriteListings(c.Out, unseen); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if c.Stats {
		_, err := fmt.Fprintf(
			ctx.Out,
			"total_new=%d total_seen=%d known=%d duplicates=%d unseen_emitted=%d\n",
			stats.Scraped,
			len(history),
			stats.Known,
			stats.Duplicates,
			stats.New,
		)
		return err
	}

	return nil
}

func (c *SeenUpdateCmd) Run(ctx *Context) error {
	history, err := seen.ReadListingsAllowMissing(c.Seen)
	if err != nil {
		return fmt.Errorf("read --seen: %w", err)
	}
	input, err := seen.ReadListings(c.Input)
	if err != nil {
		return fmt.Errorf("read --input: %w", err)
	}

	merged, stats := seen.Merge(history, input)
	if err := seen.WriteListings(c.Out, merged); err != nil {
		return fmt.Errorf("write --out: %w", err)
	}

	if c.Stats {
		_, err := fmt.Fprintf(
			ctx.Out,
			"total_seen=%d total_input=%d added=%d total_out=%d\n",
			stats.TotalSeen,
			stats.TotalInput,
			stats.Added,
			stats.TotalOut,
		)
		return err
	}

	return nil
}
