// SPDX-License-Identifier: AGPL-3.0-only
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix prefixes every environment variable the application reads
const EnvPrefix = "MCP_REMIND_"

// FromEnv overrides cfg with MCP_REMIND_* environment variables. Malformed
// numbers, booleans and durations are ignored.
func FromEnv(cfg *Config) {
	setString("STORE_PATH", &cfg.Store.Path)
	setBool("STORE_WATCH", &cfg.Store.Watch)

	setDuration("SCHEDULER_INTERVAL", &cfg.Scheduler.Interval)
	setString("SCHEDULER_SUMMARY_CUTOFF", &cfg.Scheduler.SummaryCutoff)
	setString("SCHEDULER_SOUND", &cfg.Scheduler.Sound)

	setBool("NOTIFY_DESKTOP", &cfg.Notify.Desktop)
	setBool("NOTIFY_BELL", &cfg.Notify.Bell)
	setString("NOTIFY_SOUND_COMMAND", &cfg.Notify.SoundCommand)
	setBool("WEBHOOK_ENABLED", &cfg.Notify.Webhook.Enabled)
	setString("WEBHOOK_HOST", &cfg.Notify.Webhook.Host)
	setInt("WEBHOOK_PORT", &cfg.Notify.Webhook.Port)
	setString("WEBHOOK_ROOM", &cfg.Notify.Webhook.Room)
	setString("WEBHOOK_SENDER", &cfg.Notify.Webhook.Sender)

	setString("LOGGING_LEVEL", &cfg.Logging.Level)
	setString("LOGGING_FORMAT", &cfg.Logging.Format)
	setString("LOGGING_FILE", &cfg.Logging.FilePath)

	setString("SERVER_TRANSPORT", &cfg.Server.TransportMode)
	setString("SERVER_ADDRESS", &cfg.Server.Address)
	setInt("SERVER_PORT", &cfg.Server.Port)
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(key string, dst *string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

func setBool(key string, dst *bool) {
	if v, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setInt(key string, dst *int) {
	if v, ok := lookup(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setDuration(key string, dst *Duration) {
	if v, ok := lookup(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}
