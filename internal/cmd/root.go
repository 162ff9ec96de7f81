package cmd

import (
	"github.com/alecthomas/kong"
)

type CLI struct {
	Color   string `help:"Color output: auto, always, never." enum:"auto,always,never" default:"auto"`
	JSON    bool   `help:"JSON output to stdout; disables colors."`
	Plain   bool   `help:"TSV output to stdout; disables colors."`
	Format  string `help:"Output format: table, csv, tsv, json, md."`
	Output  string `short:"o" help:"Write results to this file instead of stdout."`
	Proxy   string `name:"proxies" help:"Comma-separated proxies (overrides JOBWATCH_PROXIES and proxies.txt)."`
	Verbose bool   `help:"Enable debug logging."`

	VersionFlag kong.VersionFlag `name:"version" help:"Print version."`

	Version   VersionCmd   `cmd:"" help:"Print version."`
	Config    ConfigCmd    `cmd:"" help:"Manage configuration."`
	Companies CompaniesCmd `cmd:"" help:"Manage tracked companies."`
	Scan      ScanCmd      `cmd:"" help:"Check every career page once and report new jobs."`
	Watch     WatchCmd     `cmd:"" help:"Scan on a schedule until interrupted."`
	Extract   ExtractCmd   `cmd:"" help:"Extract job listings from one page."`
	Jobs      JobsCmd      `cmd:"" help:"List stored jobs."`
	Resume    ResumeCmd    `cmd:"" help:"Manage the resume used for ranking."`
	Rank      RankCmd      `cmd:"" help:"Rank stored jobs against the resume."`
	Seen      SeenCmd      `cmd:"" help:"Offline seen-history utilities for listing files."`
	Proxies   ProxiesCmd   `cmd:"" help:"Proxy utilities."`
}

func NewCLI() *CLI {
	return &CLI{}
}
