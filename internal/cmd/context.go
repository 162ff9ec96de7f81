package cmd

import (
	"context"
	"io"
	"time"

	"github.com/jimezsa/jobwatch/internal/config"
	"github.com/jimezsa/jobwatch/internal/network"
	"github.com/jimezsa/jobwatch/internal/oracle"
	"github.com/jimezsa/jobwatch/internal/rank"
	"github.com/jimezsa/jobwatch/internal/scraper"
	"github.com/jimezsa/jobwatch/internal/store"
	"github.com/jimezsa/jobwatch/internal/tracker"
	"github.com/jimezsa/jobwatch/internal/ui"
	"github.com/rs/zerolog"
)

// PageFetcher is the remote side of the scan and extract commands.
type PageFetcher interface {
	tracker.ListingFetcher
	Fetch(ctx context.Context, url string) (*scraper.Page, error)
}

type Context struct {
	Out        io.Writer
	Err        io.Writer
	UI         *ui.UI
	Config     config.Config
	ConfigDir  string
	Logger     zerolog.Logger
	Verbose    bool
	JSONOutput bool
	PlainText  bool
	Format     string
	Output     string
	Proxies    string
	Version    string
	ColorMode  ui.ColorMode

	// Background is cancelled on SIGINT/SIGTERM.
	Background context.Context

	// Overridable constructors; nil selects the real implementation.
	OpenStore    func(ctx context.Context) (store.Store, error)
	NewFetcher   func(extractor *scraper.Extractor) (PageFetcher, error)
	NewGenerator func(ctx context.Context, settings oracle.Settings) (oracle.Generator, error)
	Now          func() time.Time

	store store.Store
}

func (c *Context) ctx() context.Context {
	if c.Background != nil {
		return c.Background
	}
	return context.Background()
}

// Store opens the configured store on first use.
func (c *Context) Store() (store.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	open := c.OpenStore
	if open == nil {
		open = c.openConfiguredStore
	}
	st, err := open(c.ctx())
	if err != nil {
		return nil, err
	}
	c.store = st
	return st, nil
}

func (c *Context) openConfiguredStore(ctx context.Context) (store.Store, error) {
	path, err := c.Config.ResolvedStorePath()
	if err != nil {
		return nil, err
	}
	return store.Open(ctx, store.Options{DatabaseURL: c.Config.DatabaseURL, Path: path})
}

// Close releases the store if one was opened.
func (c *Context) Close() error {
	if c.store == nil {
		return nil
	}
	err := c.store.Close()
	c.store = nil
	return err
}

func (c *Context) fetcher(extractor *scraper.Extractor) (PageFetcher, error) {
	if c.NewFetcher != nil {
		return c.NewFetcher(extractor)
	}

	proxies, err := config.LoadProxies(c.Proxies)
	if err != nil {
		return nil, err
	}
	var rotator *network.Rotator
	if len(proxies) > 0 {
		rotator, err = network.NewRotator(proxies, 10*time.Minute)
		if err != nil {
			return nil, err
		}
	}
	client, err := network.NewClient(network.Options{
		UserAgent: c.Config.UserAgent,
		Rotator:   rotator,
	})
	if err != nil {
		return nil, err
	}
	return scraper.NewFetcher(client, extractor), nil
}

func (c *Context) oracleSettings() oracle.Settings {
	return oracle.Settings{
		Provider:      c.Config.LLMProvider,
		Model:         c.Config.LLMModel,
		APIKey:        c.Config.LLMAPIKey,
		OllamaBaseURL: c.Config.OllamaBaseURL,
	}
}

func (c *Context) generator() (oracle.Generator, error) {
	build := c.NewGenerator
	if build == nil {
		build = oracle.NewGenerator
	}
	return build(c.ctx(), c.oracleSettings())
}

type serviceNeeds struct {
	fetch     bool
	llm       bool
	extractor *scraper.Extractor
}

// service wires a tracker.Service with only the collaborators a command uses,
// so offline commands never dial the network or the model.
func (c *Context) service(needs serviceNeeds) (*tracker.Service, error) {
	st, err := c.Store()
	if err != nil {
		return nil, err
	}
	opts := tracker.Options{
		Store:     st,
		Extractor: needs.extractor,
		Logger:    c.Logger,
		Now:       c.Now,
	}
	if needs.fetch {
		f, err := c.fetcher(needs.extractor)
		if err != nil {
			return nil, err
		}
		opts.Fetcher = f
	}
	if needs.llm {
		gen, err := c.generator()
		if err != nil {
			return nil, err
		}
		opts.Ranker = rank.New(oracle.NewLLM(gen, c.Logger), c.Logger)
		opts.Matcher = oracle.NewTitleMatcher(gen, c.Logger)
	}
	return tracker.New(opts), nil
}
