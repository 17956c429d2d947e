// Package cli implements the orbitgraph command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/buildinfo"
	"github.com/matzehuels/orbitgraph/pkg/cache"
	"github.com/matzehuels/orbitgraph/pkg/config"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
	"github.com/matzehuels/orbitgraph/pkg/render"
	"github.com/matzehuels/orbitgraph/pkg/source/jsonfile"
	"github.com/matzehuels/orbitgraph/pkg/source/mongostore"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "orbitgraph"
)

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

	// configPath is set by --config; empty means config.Path().
	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Orbitgraph lays out time-evolving social networks in 3D",
		Long: `Orbitgraph clusters the entities of a relationship network by role,
places the clusters on a sphere and relaxes them with a force-directed pass.
Layouts can be explored in the terminal, rendered to SVG/PNG/PDF or served
over HTTP.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: "+config.Path()+")")

	root.AddCommand(c.snapshotCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file once.
func (c *CLI) loadConfig() error {
	if c.cfg != nil {
		return nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// settings returns the loaded configuration, or the defaults before loading.
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return c.cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cfg := c.settings()
	ch, err := newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	// Redis prefixes keys itself; files share a directory and are scoped here.
	var keyer cache.Keyer
	if cfg.Cache.Backend != config.CacheRedis && cfg.Cache.Prefix != "" {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	runner := pipeline.NewRunner(ch, keyer, c.Logger)
	runner.TTL = cfg.CacheTTL()
	return runner, nil
}

// newCache opens the configured cache backend. An unusable file cache
// directory disables caching rather than failing the command.
func newCache(ctx context.Context, cfg config.CacheConfig, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cfg.RedisURL, cfg.Prefix)
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		return cache.NewFileCache(dir)
	}
}

// =============================================================================
// Source Factory
// =============================================================================

// closer releases a source.
type closer func()

// openSource opens the network source. A non-empty file overrides the
// configured source with a JSON file.
func (c *CLI) openSource(ctx context.Context, file string) (network.Source, closer, error) {
	cfg := c.settings().Source
	if file != "" {
		cfg = config.SourceConfig{Kind: config.SourceJSON, Path: file}
	}

	switch cfg.Kind {
	case config.SourceMongo:
		store, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		c.Logger.Debug("connected to mongo", "database", cfg.Database)
		return store, func() { _ = store.Close(context.Background()) }, nil
	default:
		if cfg.Path == "" {
			return nil, nil, fmt.Errorf("no source: pass --file or set source.path in %s", c.configFile())
		}
		store, err := jsonfile.Open(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return store, func() {}, nil
	}
}

func (c *CLI) configFile() string {
	if c.configPath != "" {
		return c.configPath
	}
	return config.Path()
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/orbitgraph/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// parseWindowFlags builds a window from --start/--end. Both empty means the
// source's full range.
func parseWindowFlags(start, end string) (*network.Window, error) {
	if end == "" {
		if start != "" {
			return nil, fmt.Errorf("--start requires --end")
		}
		return nil, nil
	}
	e, err := network.ParseTime(end)
	if err != nil {
		return nil, fmt.Errorf("--end: %w", err)
	}
	w := network.AsOf(e)
	if start != "" {
		s, err := network.ParseTime(start)
		if err != nil {
			return nil, fmt.Errorf("--start: %w", err)
		}
		w = network.Between(s, e)
	}
	return &w, nil
}
