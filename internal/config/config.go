// SPDX-License-Identifier: AGPL-3.0-only

// Package config holds the application configuration. Values are layered:
// defaults, then an optional TOML file, then MCP_REMIND_* environment
// variables, then command-line flags.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/jolks/mcp-remind/internal/model"
)

// Default values
const (
	DefaultName          = "mcp-remind"
	DefaultVersion       = "dev"
	DefaultTaskFile      = "tasks.json"
	DefaultLogFile       = "mcp-remind.log"
	DefaultConfigFile    = "config.toml"
	DefaultInterval      = time.Second
	DefaultSummaryCutoff = "17:00"
	DefaultAddress       = "localhost"
	DefaultPort          = 8080
)

// Duration is a time.Duration that reads from TOML strings like "2s"
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Config is the full application configuration
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Scheduler SchedulerConfig `toml:"scheduler"`
	Notify    NotifyConfig    `toml:"notify"`
	Logging   LoggingConfig   `toml:"logging"`
	Server    ServerConfig    `toml:"server"`
}

// StoreConfig configures task persistence
type StoreConfig struct {
	// Path is the task file
	Path string `toml:"path"`
	// Watch reloads the task file when another process changes it
	Watch bool `toml:"watch"`
}

// SchedulerConfig configures reminder checking
type SchedulerConfig struct {
	// Interval between reminder checks
	Interval Duration `toml:"interval"`
	// SummaryCutoff is the default HH:MM for the on-demand pending summary
	SummaryCutoff string `toml:"summary_cutoff"`
	// Sound is the audio resource played when a reminder fires
	Sound string `toml:"sound"`
}

// NotifyConfig selects how reminders reach the user
type NotifyConfig struct {
	Desktop      bool          `toml:"desktop"`
	Bell         bool          `toml:"bell"`
	SoundCommand string        `toml:"sound_command"`
	Webhook      WebhookConfig `toml:"webhook"`
}

// WebhookConfig configures the local chat server notifier
type WebhookConfig struct {
	Enabled bool   `toml:"enabled"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	Room    string `toml:"room"`
	Sender  string `toml:"sender"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	Level    string `toml:"level"`
	Format   string `toml:"format"`
	FilePath string `toml:"file"`
}

// ServerConfig configures the MCP tool server
type ServerConfig struct {
	Name          string `toml:"name"`
	Version       string `toml:"-"`
	TransportMode string `toml:"transport"`
	Address       string `toml:"address"`
	Port          int    `toml:"port"`
}

// DefaultWorkDir returns ~/.mcp-remind, or ./.mcp-remind when HOME is unset
func DefaultWorkDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		// Fallback to current directory if HOME is unset
		home, _ = os.Getwd()
	}
	return filepath.Join(home, "."+DefaultName)
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	wd := DefaultWorkDir()
	return &Config{
		Store: StoreConfig{
			Path:  filepath.Join(wd, DefaultTaskFile),
			Watch: true,
		},
		Scheduler: SchedulerConfig{
			Interval:      Duration{DefaultInterval},
			SummaryCutoff: DefaultSummaryCutoff,
		},
		Notify: NotifyConfig{
			Desktop: true,
			Bell:    true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Name:          DefaultName,
			Version:       DefaultVersion,
			TransportMode: "stdio",
			Address:       DefaultAddress,
			Port:          DefaultPort,
		},
	}
}

// LoadFile overlays the TOML file at path onto cfg. Keys absent from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// Validate checks the configuration for values the application cannot use
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Path) == "" {
		return fmt.Errorf("store path is required")
	}
	if c.Scheduler.Interval.Duration <= 0 {
		return fmt.Errorf("scheduler interval must be positive, got %s", c.Scheduler.Interval)
	}
	if c.Scheduler.Interval.Duration > time.Hour {
		return fmt.Errorf("scheduler interval must be at most 1h, got %s", c.Scheduler.Interval)
	}
	if _, err := model.ParseTimeOfDay(c.Scheduler.SummaryCutoff); err != nil {
		return fmt.Errorf("invalid summary cutoff %q: %w", c.Scheduler.SummaryCutoff, err)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "warning", "error", "fatal":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "text", "json", "logfmt":
	default:
		return fmt.Errorf("invalid log format %q", c.Logging.Format)
	}
	switch c.Server.TransportMode {
	case "stdio":
	case "sse":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			return fmt.Errorf("invalid server port %d", c.Server.Port)
		}
	default:
		return fmt.Errorf("unsupported transport mode: %s", c.Server.TransportMode)
	}
	if c.Notify.Webhook.Enabled && strings.TrimSpace(c.Notify.Webhook.Room) == "" {
		return fmt.Errorf("webhook notifier enabled without a room")
	}
	return nil
}

// SummaryCutoff returns the parsed default summary cutoff. Call after Validate.
func (c *Config) SummaryCutoff() model.TimeOfDay {
	tod, _ := model.ParseTimeOfDay(c.Scheduler.SummaryCutoff)
	return tod
}
