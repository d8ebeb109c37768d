// SPDX-License-Identifier: AGPL-3.0-only
package ui

import (
	"context"
	"sync"
)

// Popup is a modal message shown over the task list
type Popup struct {
	Title string
	Body  string
}

// Banner is a notifier that queues reminders for display in the TUI. Safe
// for concurrent use.
type Banner struct {
	mu      sync.Mutex
	pending []Popup
}

// NewBanner returns an empty banner
func NewBanner() *Banner {
	return &Banner{}
}

// Notify implements notify.Notifier.
func (b *Banner) Notify(ctx context.Context, title, message string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, Popup{Title: title, Body: message})
	return nil
}

// Drain returns and clears the queued popups
func (b *Banner) Drain() []Popup {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.pending
	b.pending = nil
	return out
}
