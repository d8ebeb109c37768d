// SPDX-License-Identifier: AGPL-3.0-only

// Package clock supplies the current local time to the scheduler.
package clock

import (
	"sync"
	"time"

	"github.com/jolks/mcp-remind/internal/model"
)

// Clock reports the current time
type Clock interface {
	Now() time.Time
}

// System is the host's local wall clock
type System struct{}

// Now returns time.Now in the local zone
func (System) Now() time.Time {
	return time.Now()
}

// Manual is a clock that only moves when told to. Safe for concurrent use.
type Manual struct {
	mu  sync.Mutex
	now time.Time
}

// NewManual returns a manual clock set to t
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

// At returns a manual clock set to hh:mm today in the local zone
func At(hour, minute int) *Manual {
	y, m, d := time.Now().Date()
	return NewManual(time.Date(y, m, d, hour, minute, 0, 0, time.Local))
}

// Now returns the current manual time
func (c *Manual) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t
func (c *Manual) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d
func (c *Manual) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// TimeOfDay returns the clock's current time-of-day
func TimeOfDay(c Clock) model.TimeOfDay {
	return model.TimeOfDayOf(c.Now())
}
