// SPDX-License-Identifier: AGPL-3.0-only

// Package notify delivers reminders to the user: a visible message through a
// Notifier and an audible cue through an AudioAlert.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/jolks/mcp-remind/internal/logging"
)

// Notifier displays a message to the user
type Notifier interface {
	Notify(ctx context.Context, title, message string) error
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(ctx context.Context, title, message string) error

// Notify calls f
func (f NotifierFunc) Notify(ctx context.Context, title, message string) error {
	return f(ctx, title, message)
}

// LogNotifier writes reminders to a logger
type LogNotifier struct {
	Logger *logging.Logger
}

// Notify implements Notifier
func (n LogNotifier) Notify(ctx context.Context, title, message string) error {
	logger := n.Logger
	if logger == nil {
		logger = logging.GetDefaultLogger()
	}
	logger.Warnf("%s: %s", title, message)
	return nil
}

// Multi delivers to every notifier in order. All of them run even when one
// fails; the failures are joined.
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, title, message string) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, title, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// commandRunner runs an external program; replaced in tests
type commandRunner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("%s: %w: %s", name, err, out)
		}
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}

// DesktopNotifier shows a native desktop notification: notify-send on Linux
// and the BSDs, osascript on macOS
type DesktopNotifier struct {
	goos string
	run  commandRunner
}

// NewDesktopNotifier returns a notifier for the current platform
func NewDesktopNotifier() *DesktopNotifier {
	return &DesktopNotifier{goos: runtime.GOOS, run: runCommand}
}

// Notify implements Notifier
func (d *DesktopNotifier) Notify(ctx context.Context, title, message string) error {
	switch d.goos {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", message, title)
		return d.run(ctx, "osascript", "-e", script)
	case "windows":
		return fmt.Errorf("desktop notifications are not supported on %s", d.goos)
	default:
		return d.run(ctx, "notify-send", "--urgency=critical", title, message)
	}
}
