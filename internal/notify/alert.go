// SPDX-License-Identifier: AGPL-3.0-only
package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
)

// AudioAlert plays a short audible cue
type AudioAlert interface {
	Play(ctx context.Context, sound string) error
}

// NopAlert plays nothing
type NopAlert struct{}

// Play implements AudioAlert
func (NopAlert) Play(ctx context.Context, sound string) error {
	return nil
}

// BellAlert rings the terminal bell. The sound resource is ignored.
type BellAlert struct {
	mu sync.Mutex
	W  io.Writer
}

// NewBellAlert returns a bell writing to stderr
func NewBellAlert() *BellAlert {
	return &BellAlert{W: os.Stderr}
}

// Play implements AudioAlert
func (b *BellAlert) Play(ctx context.Context, sound string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.W, "\a")
	return err
}

// CommandAlert plays a sound file through an external player
type CommandAlert struct {
	// Command is the player and its leading arguments, e.g. "paplay" or
	// "afplay -v 2". The sound file is appended as the last argument.
	Command string
	stat    func(string) (os.FileInfo, error)
	run     commandRunner
}

// DefaultPlayer returns the stock sound player for the current platform
func DefaultPlayer() string {
	switch runtime.GOOS {
	case "darwin":
		return "afplay"
	default:
		return "paplay"
	}
}

// NewCommandAlert returns a CommandAlert; an empty command selects DefaultPlayer
func NewCommandAlert(command string) *CommandAlert {
	if strings.TrimSpace(command) == "" {
		command = DefaultPlayer()
	}
	return &CommandAlert{Command: command, stat: os.Stat, run: runCommand}
}

// Play implements AudioAlert. A missing sound resource is reported as an
// error without invoking the player.
func (c *CommandAlert) Play(ctx context.Context, sound string) error {
	if sound == "" {
		return fmt.Errorf("no sound resource configured")
	}
	if _, err := c.stat(sound); err != nil {
		return fmt.Errorf("sound resource: %w", err)
	}
	fields := strings.Fields(c.Command)
	if len(fields) == 0 {
		return fmt.Errorf("no sound player configured")
	}
	args := append(fields[1:], sound)
	return c.run(ctx, fields[0], args...)
}

// MultiAlert plays every alert in order; a failure in one does not stop the rest
type MultiAlert []AudioAlert

// Play implements AudioAlert
func (m MultiAlert) Play(ctx context.Context, sound string) error {
	var errs []error
	for _, a := range m {
		if a == nil {
			continue
		}
		if err := a.Play(ctx, sound); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
