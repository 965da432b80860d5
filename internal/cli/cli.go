// Package cli implements the blockpack command-line interface.
//
// Commands:
//   - pack: search for the best layout of one problem and write its outputs
//   - batch: pack every problem file in a directory (C1_1 … C7_3 by default)
//   - compare: run search variants and fixed-order baselines side by side
//   - history: list, show and delete recorded runs
//   - config, profiles: manage preferences and GCode profiles
//
// All commands accept --verbose (-v) for debug logging, which includes the
// per-generation efficiencies reported by the engine.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/piwi3910/BlockPack/internal/model"
	"github.com/piwi3910/BlockPack/internal/project"
)

const appName = "blockpack"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Out    io.Writer

	// ConfigPath overrides project.DefaultConfigPath when set.
	ConfigPath string
}

// New creates a CLI that logs to w and prints results to stdout.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
		Out: os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "BlockPack packs rectangular blocks into a grid with a genetic search",
		Long:         `BlockPack searches for block placement orders whose bottom-left-fill layout covers as much of a rectangular space as possible, and exports the best layout as images, reports and GCode.`,
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default ~/.blockpack/config.json)")

	root.AddCommand(c.packCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.compareCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.profilesCommand())

	return root
}

func (c *CLI) configPath() string {
	if c.ConfigPath != "" {
		return c.ConfigPath
	}
	return project.DefaultConfigPath()
}

// loadConfig reads preferences and registers custom GCode profiles. A broken
// profiles file is logged and ignored.
func (c *CLI) loadConfig() (model.AppConfig, error) {
	cfg, err := project.LoadAppConfig(c.configPath())
	if err != nil {
		return model.AppConfig{}, err
	}
	if _, err := project.RegisterCustomProfiles(project.DefaultProfilesPath()); err != nil {
		c.Logger.Warn("ignoring custom profiles", "err", err)
	}
	return cfg, nil
}

// openStore opens the run history configured in cfg.
func (c *CLI) openStore(ctx context.Context, cfg model.AppConfig) (project.Store, error) {
	store, err := project.OpenStore(ctx, cfg.HistoryBackend, cfg.HistoryPath)
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("history opened", "backend", cfg.HistoryBackend)
	return store, nil
}
