// Package cli implements the lineagekit command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/internal/config"
	"github.com/lineagekit/lineagekit/pkg/buildinfo"
	"github.com/lineagekit/lineagekit/pkg/cache"
	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/integrations"
	"github.com/lineagekit/lineagekit/pkg/integrations/backend"
	"github.com/lineagekit/lineagekit/pkg/integrations/mock"
	"github.com/lineagekit/lineagekit/pkg/normalize"
	"github.com/lineagekit/lineagekit/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "lineagekit"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfgFile string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "lineagekit fetches, normalizes and renders data lineage graphs",
		Long:          `lineagekit fetches data lineage from a lineage backend (or a built-in mock catalog), normalizes either payload shape into one canonical graph, lays it out, and serves it to the CLI and an HTTP API with freshness-aware caching.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.cfgFile, "config", "", "config file (default: ./lineagekit.yaml, .yml or .toml)")
	pf.String("mode", "", "lineage source: backend (default) or mock")
	pf.String("backend-url", "", "lineage backend base URL")
	pf.String("cache", "", "cache backend: file (default), memory, redis, mongo, none")
	pf.String("cache-dir", "", "directory for the file cache")
	pf.String("namespace", "", "cache key namespace for shared redis/mongo backends")

	// Register all subcommands
	root.AddCommand(c.getCommand())
	root.AddCommand(c.normalizeCommand())
	root.AddCommand(c.validateCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.mockCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Runner Factory
// =============================================================================

// loadConfig layers defaults, config file, env vars and the flags set on
// cmd. A verbose setting from the file or env raises the log level too.
func (c *CLI) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(c.cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	if cfg.Verbose {
		c.SetLogLevel(LogDebug)
	}
	if cfg.File != "" {
		c.Logger.Debug("loaded config", "file", cfg.File)
	}
	return cfg, nil
}

// newRunner creates a pipeline runner from cfg.
func (c *CLI) newRunner(ctx context.Context, cfg *config.Config) (*pipeline.Runner, error) {
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		return nil, lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "open %s cache", cfg.Cache.Backend)
	}

	r := pipeline.NewRunner(store, cfg.CacheOptions().Keyer(), src, c.Logger)
	r.Freshness = cfg.Cache.Freshness
	r.Retention = cfg.Cache.Retention
	r.Attempts = cfg.Backend.Attempts
	r.RetryDelay = cfg.Backend.RetryDelay
	c.Logger.Debug("runner ready", "source", src.Name(), "cache", cfg.Cache.Backend, "namespace", cfg.Cache.Namespace)
	return r, nil
}

// newSource builds the lineage source selected by cfg.Mode.
func newSource(cfg *config.Config) (integrations.Source, error) {
	if cfg.Mode == config.ModeMock {
		return newMockSource(cfg)
	}
	if cfg.Backend.URL == "" {
		return nil, lkerr.New(lkerr.ErrCodeInvalidConfig,
			"backend.url is not set (use --backend-url, LINEAGEKIT_BACKEND__URL, or --mode mock)")
	}
	return backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Token:   cfg.Backend.Token,
		Timeout: cfg.Backend.Timeout,
		Headers: cfg.Backend.Headers,
	})
}

func newMockSource(cfg *config.Config) (*mock.Source, error) {
	var catalog *mock.Catalog
	if cfg.Mock.Catalog != "" {
		c, err := mock.LoadCatalog(cfg.Mock.Catalog)
		if err != nil {
			return nil, err
		}
		catalog = c
	}
	return mock.New(mock.Options{
		Catalog: catalog,
		Shape:   normalize.Shape(cfg.Mock.Shape),
		Latency: cfg.Mock.Latency,
	})
}
