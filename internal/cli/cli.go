// Package cli implements the cardgrid command-line interface.
//
// This package provides commands for inspecting and transforming grid
// layouts, serving the layout engine over HTTP, rendering layouts as
// diagrams, and managing the named-layout store. The CLI is built using
// cobra and supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - demo: Interactive terminal playground for the layout engine
//   - compact: Eliminate gaps in a layout file
//   - transform: Rescale a layout to a different column count
//   - render: Generate DOT, SVG, or PNG diagrams of a layout
//   - serve: Run the HTTP API around a live engine
//   - store: Manage the named-layout store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context to allow structured progress tracking.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/cardgrid/pkg/buildinfo"
	"github.com/matzehuels/cardgrid/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "cardgrid"

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
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "cardgrid",
		Short:        "Cardgrid manages dashboard grid layouts",
		Long:         `Cardgrid is a layout engine for card dashboards: it validates and compacts grid layouts, tracks undo history, adapts layouts across responsive breakpoints, and serves the whole thing over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.compactCommand())
	root.AddCommand(c.transformCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Store Factory
// =============================================================================

// storeFlags are the persistence backend flags shared by serve and store.
type storeFlags struct {
	backend   string // memory, file, redis, mongo, none
	dir       string // file backend base directory
	redisAddr string
	mongoURI  string
}

func (f *storeFlags) register(cmd *cobra.Command) {
	f.registerOn(cmd.Flags())
}

// registerPersistent registers the flags on a command group so subcommands
// inherit them.
func (f *storeFlags) registerPersistent(cmd *cobra.Command) {
	f.registerOn(cmd.PersistentFlags())
}

func (f *storeFlags) registerOn(fs *pflag.FlagSet) {
	fs.StringVar(&f.backend, "store", "file", "layout store backend: file, memory, redis, mongo, none")
	fs.StringVar(&f.dir, "store-dir", "", "base directory for the file backend (default ~/.config/cardgrid/layouts)")
	fs.StringVar(&f.redisAddr, "redis-addr", "localhost:6379", "redis address for the redis backend")
	fs.StringVar(&f.mongoURI, "mongo-uri", "mongodb://localhost:27017", "mongo URI for the mongo backend")
}

// newStore builds the layout store selected by the backend flag. The "none"
// backend returns nil, which disables persistence endpoints.
func (c *CLI) newStore(cmd *cobra.Command, f *storeFlags) (store.Store, error) {
	switch f.backend {
	case "none":
		return nil, nil
	case "memory":
		return store.NewMemoryStore(), nil
	case "file", "":
		return store.NewFileStore(f.dir)
	case "redis":
		return store.NewRedisStore(cmd.Context(), store.RedisConfig{Addr: f.redisAddr})
	case "mongo":
		return store.NewMongoStore(cmd.Context(), store.MongoConfig{URI: f.mongoURI})
	default:
		return nil, fmt.Errorf("unknown store backend: %s (must be 'file', 'memory', 'redis', 'mongo', or 'none')", f.backend)
	}
}

// =============================================================================
// Paths
// =============================================================================

// configDir returns the config directory using XDG standard (~/.config/cardgrid/).
func configDir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}
