// SPDX-License-Identifier: AGPL-3.0-only
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TaskStatus represents where a task is in its reminder lifecycle
type TaskStatus string

// Task status constants
const (
	// StatusPending indicates the reminder has not been sent yet
	StatusPending TaskStatus = "pending"
	// StatusFired indicates the reminder was sent; tasks never leave this state
	StatusFired TaskStatus = "fired"
)

// String returns the string representation of the status, making it easier to use in string contexts
func (s TaskStatus) String() string {
	return string(s)
}

// TimeOfDay is a wall-clock time with no date component
type TimeOfDay struct {
	Hour   int
	Minute int
	Second int
}

// ParseTimeOfDay parses a 24-hour "HH:MM" string. Hours and minutes may be
// one or two digits; surrounding whitespace is ignored.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return TimeOfDay{}, fmt.Errorf("missing ':' separator")
	}
	h, err := parseField(hh, 23)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("hour: %w", err)
	}
	m, err := parseField(mm, 59)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("minute: %w", err)
	}
	return TimeOfDay{Hour: h, Minute: m}, nil
}

func parseField(s string, max int) (int, error) {
	if len(s) < 1 || len(s) > 2 {
		return 0, fmt.Errorf("%q must be one or two digits", s)
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("%q is not a number", s)
		}
	}
	n, _ := strconv.Atoi(s)
	if n > max {
		return 0, fmt.Errorf("%d out of range 0-%d", n, max)
	}
	return n, nil
}

// TimeOfDayOf extracts the local time-of-day from t
func TimeOfDayOf(t time.Time) TimeOfDay {
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}

func (t TimeOfDay) seconds() int {
	return t.Hour*3600 + t.Minute*60 + t.Second
}

// Compare returns -1, 0 or +1 depending on whether t is before, equal to or after u
func (t TimeOfDay) Compare(u TimeOfDay) int {
	switch a, b := t.seconds(), u.seconds(); {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Before reports whether t is strictly earlier in the day than u
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.Compare(u) < 0
}

// Valid reports whether every field is in range
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 &&
		t.Minute >= 0 && t.Minute <= 59 &&
		t.Second >= 0 && t.Second <= 59
}

// String formats the time as HH:MM
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// persistedDate is the date written alongside a bare time of day. It is
// ignored on read.
const persistedDate = "1900-01-01"

// ISO formats the time as a local ISO-8601 date-time on a fixed date
func (t TimeOfDay) ISO() string {
	return fmt.Sprintf("%sT%02d:%02d:%02d", persistedDate, t.Hour, t.Minute, t.Second)
}

var isoLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"15:04:05",
	"15:04",
}

// ParseISOTimeOfDay reads the time-of-day out of a persisted deadline string,
// discarding any date component
func ParseISOTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return TimeOfDayOf(t), nil
		}
	}
	return TimeOfDay{}, fmt.Errorf("unrecognised deadline %q", s)
}

// Task is a named deadline with its reminder state
type Task struct {
	Name         string    `json:"name"`
	Deadline     TimeOfDay `json:"deadline"`
	ReminderSent bool      `json:"reminder_sent"`
}

// Status derives the lifecycle state from ReminderSent
func (t Task) Status() TaskStatus {
	if t.ReminderSent {
		return StatusFired
	}
	return StatusPending
}

// DueAt reports whether the deadline has been reached at the given time of day
func (t Task) DueAt(now TimeOfDay) bool {
	return now.Compare(t.Deadline) >= 0
}

// MarshalJSON renders the deadline as HH:MM for API consumers
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON accepts either HH:MM or a persisted ISO date-time
func (t *TimeOfDay) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseISOTimeOfDay(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Record is the persisted shape of a task, keyed by name in the task file
type Record struct {
	Deadline     string `json:"deadline"`
	ReminderSent bool   `json:"reminder_sent"`
}

// ToRecord converts a task to its persisted shape
func (t Task) ToRecord() Record {
	return Record{Deadline: t.Deadline.ISO(), ReminderSent: t.ReminderSent}
}

// FromRecord rebuilds a task from its persisted shape
func FromRecord(name string, r Record) (*Task, error) {
	deadline, err := ParseISOTimeOfDay(r.Deadline)
	if err != nil {
		return nil, fmt.Errorf("task %q: %w", name, err)
	}
	return &Task{Name: name, Deadline: deadline, ReminderSent: r.ReminderSent}, nil
}
