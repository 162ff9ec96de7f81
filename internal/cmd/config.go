package cmd

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/jimezsa/jobwatch/internal/config"
	"github.com/jimezsa/jobwatch/internal/oracle"
	"github.com/robfig/cron/v3"
)

type ConfigCmd struct {
	Init InitConfigCmd `cmd:"" help:"Write default config and proxies files."`
	Path PathConfigCmd `cmd:"" help:"Print config directory."`
	Show ShowConfigCmd `cmd:"" help:"Print effective settings with secrets redacted."`
	Set  SetConfigCmd  `cmd:"" help:"Update and persist settings."`
}

type InitConfigCmd struct{}

type PathConfigCmd struct{}

type ShowConfigCmd struct{}

type SetConfigCmd struct {
	Provider    string `help:"LLM provider: ollama, gemini, claude or openai."`
	Model       string `help:"LLM model name."`
	APIKey      string `name:"api-key" help:"API key for hosted providers."`
	ClearAPIKey bool   `name:"clear-api-key" help:"Remove the stored API key."`
	OllamaURL   string `name:"ollama-url" help:"Ollama base URL."`
	DatabaseURL string `name:"database-url" help:"Postgres connection string; empty keeps the JSON store."`
	StorePath   string `name:"store-path" help:"JSON store file."`
	Limit       int    `help:"Default number of ranked results."`
	Interval    string `help:"Scan schedule for watch, e.g. '@every 6h' or '0 9 * * *'."`
	UserAgent   string `name:"user-agent" help:"User-Agent header for page fetches."`
}

func (c *InitConfigCmd) Run(ctx *Context) error {
	paths, err := config.Init()
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		ctx.UI.Infof("Config already initialized at %s", ctx.ConfigDir)
		return nil
	}
	ctx.UI.Infof("Created: %s", strings.Join(paths, ", "))
	return nil
}

func (c *PathConfigCmd) Run(ctx *Context) error {
	_, err := fmt.Fprintln(ctx.Out, ctx.ConfigDir)
	return err
}

func (c *ShowConfigCmd) Run(ctx *Context) error {
	cfg := ctx.Config.Redacted()
	if ctx.JSONOutput {
		enc := json.NewEncoder(ctx.Out)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	}

	settings := ctx.oracleSettings()
	rows := [][2]string{
		{"llm_provider", oracle.NormalizeProvider(cfg.LLMProvider)},
		{"llm_model", settings.ModelFor()},
		{"llm_api_key", cfg.LLMAPIKey},
		{"ollama_base_url", cfg.OllamaBaseURL},
		{"database_url", cfg.DatabaseURL},
		{"store_path", cfg.StorePath},
		{"default_limit", strconv.Itoa(cfg.DefaultLimit)},
		{"scan_interval", cfg.ScanInterval},
		{"user_agent", cfg.UserAgent},
	}

	tw := tabwriter.NewWriter(ctx.Out, 0, 4, 2, ' ', 0)
	for _, row := range rows {
		value := row[1]
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\n", row[0], value)
	}
	return tw.Flush()
}

func (c *SetConfigCmd) Run(ctx *Context) error {
	cfg, err := config.LoadFile()
	if err != nil {
		return err
	}
	if err := c.apply(&cfg); err != nil {
		return err
	}

	path, err := config.Save(cfg)
	if err != nil {
		return err
	}
	ctx.UI.Successf("Saved %s", path)
	return nil
}

func (c *SetConfigCmd) apply(cfg *config.Config) error {
	if c.Provider != "" {
		provider := oracle.NormalizeProvider(c.Provider)
		if !validProvider(provider) {
			return fmt.Errorf("unknown llm provider %q (use %s)", c.Provider, strings.Join(oracle.Providers(), "/"))
		}
		if provider != oracle.NormalizeProvider(cfg.LLMProvider) && c.Model == "" {
			// switching provider falls back to its default model
			cfg.LLMModel = ""
		}
		cfg.LLMProvider = provider
	}
	if c.Model != "" {
		cfg.LLMModel = strings.TrimSpace(c.Model)
	}
	if c.ClearAPIKey {
		cfg.LLMAPIKey = ""
	}
	if c.APIKey != "" {
		cfg.LLMAPIKey = strings.TrimSpace(c.APIKey)
	}
	if c.OllamaURL != "" {
		cfg.OllamaBaseURL = strings.TrimRight(strings.TrimSpace(c.OllamaURL), "/")
	}
	if c.DatabaseURL != "" {
		cfg.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	}
	if c.StorePath != "" {
		cfg.StorePath = strings.TrimSpace(c.StorePath)
	}
	if c.Limit < 0 {
		return fmt.Errorf("--limit must be positive")
	}
	if c.Limit > 0 {
		cfg.DefaultLimit = c.Limit
	}
	if c.Interval != "" {
		if _, err := cron.ParseStandard(c.Interval); err != nil {
			return fmt.Errorf("invalid --interval: %w", err)
		}
		cfg.ScanInterval = c.Interval
	}
	if c.UserAgent != "" {
		cfg.UserAgent = c.UserAgent
	}
	return nil
}

func validProvider(name string) bool {
	for _, p := range oracle.Providers() {
		if p == name {
			return true
		}
	}
	return false
}
