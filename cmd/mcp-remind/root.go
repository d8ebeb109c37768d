// SPDX-License-Identifier: AGPL-3.0-only
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jolks/mcp-remind/internal/config"
	"github.com/jolks/mcp-remind/internal/logging"
)

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	configPath string
	taskFile   string
	logLevel   string
	logFile    string
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           config.DefaultName,
		Short:         "Same-day task reminders for the terminal and MCP clients",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a TOML config file (default: ~/.mcp-remind/config.toml if present)")
	flags.StringVarP(&opts.taskFile, "file", "f", "", "Task file (default: ~/.mcp-remind/tasks.json)")
	flags.StringVar(&opts.logLevel, "log-level", "", "Logging level: debug, info, warn, error, fatal")
	flags.StringVar(&opts.logFile, "log-file", "", "Write logs to this file instead of stderr")

	rootCmd.AddCommand(
		addCmd(opts),
		removeCmd(opts),
		listCmd(opts),
		remindCmd(opts),
		checkCmd(opts),
		runCmd(opts),
		tuiCmd(opts),
		serveCmd(opts),
		versionCmd(),
	)
	return rootCmd
}

// loadConfig layers defaults, the config file, environment variables and
// command-line flags, then validates the result
func loadConfig(opts *globalOptions, overrides ...func(*config.Config)) (*config.Config, error) {
	// Start with defaults
	cfg := config.DefaultConfig()

	path := opts.configPath
	if path == "" {
		path = os.Getenv(config.EnvPrefix + "CONFIG")
	}
	if path != "" {
		if err := config.LoadFile(cfg, path); err != nil {
			return nil, err
		}
	} else if def := filepath.Join(config.DefaultWorkDir(), config.DefaultConfigFile); fileExists(def) {
		if err := config.LoadFile(cfg, def); err != nil {
			return nil, err
		}
	}

	// Override with environment variables
	config.FromEnv(cfg)

	// Override with command-line flags
	applyCommandLineFlagsToConfig(cfg, opts)
	for _, override := range overrides {
		override(cfg)
	}

	// Fill in build version from ldflags if available
	if buildVersion != "" {
		cfg.Server.Version = buildVersion
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyCommandLineFlagsToConfig applies the persistent flags to the configuration
func applyCommandLineFlagsToConfig(cfg *config.Config, opts *globalOptions) {
	if opts.taskFile != "" {
		cfg.Store.Path = opts.taskFile
	}
	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}
	if opts.logFile != "" {
		cfg.Logging.FilePath = opts.logFile
	}
}

// setupLogging installs the default logger described by cfg
func setupLogging(cfg *config.Config) (*logging.Logger, error) {
	level := logging.ParseLevel(cfg.Logging.Level)

	var logger *logging.Logger
	if cfg.Logging.FilePath != "" {
		var err error
		logger, err = logging.FileLogger(cfg.Logging.FilePath, level)
		if err != nil {
			return nil, fmt.Errorf("failed to create file logger: %w", err)
		}
	} else {
		logger = logging.New(logging.Options{
			Level:  level,
			Format: cfg.Logging.Format,
		})
	}

	logging.SetDefaultLogger(logger)
	return logger, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func defaultLogPath() string {
	return filepath.Join(config.DefaultWorkDir(), config.DefaultLogFile)
}
