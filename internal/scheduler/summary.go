// SPDX-License-Identifier: AGPL-3.0-only
package scheduler

import (
	"fmt"
	"strings"

	"github.com/jolks/mcp-remind/internal/clock"
	"github.com/jolks/mcp-remind/internal/model"
)

// SummaryKind says which of the three summary outcomes applies
type SummaryKind string

// Summary outcomes
const (
	SummaryCutoffPassed   SummaryKind = "cutoff_passed"
	SummaryNothingPending SummaryKind = "nothing_pending"
	SummaryListing        SummaryKind = "listing"
)

// SummaryTitle is the title used when the summary is shown as a notification
const SummaryTitle = "Reminders"

// Summary is the result of an on-demand "remind me" request
type Summary struct {
	Kind    SummaryKind  `json:"kind"`
	Cutoff  string       `json:"cutoff"`
	Tasks   []model.Task `json:"tasks,omitempty"`
	Message string       `json:"message"`
}

// SummarizePendingBefore reports the tasks to deal with before cutoff. It
// only reads the store.
func (s *ReminderScheduler) SummarizePendingBefore(cutoff model.TimeOfDay) Summary {
	return Summarize(s.store.List(), clock.TimeOfDay(s.clock), cutoff)
}

// Summarize builds a summary from a task snapshot and the current time of day
func Summarize(tasks []model.Task, now, cutoff model.TimeOfDay) Summary {
	sum := Summary{Cutoff: cutoff.String()}
	switch {
	case now.Compare(cutoff) >= 0:
		sum.Kind = SummaryCutoffPassed
		sum.Message = fmt.Sprintf("It's already past %s. Check your tasks!", cutoff)
	case len(tasks) == 0:
		sum.Kind = SummaryNothingPending
		sum.Message = "No tasks to remind you about."
	default:
		sum.Kind = SummaryListing
		sum.Tasks = tasks
		lines := make([]string, 0, len(tasks))
		for _, t := range tasks {
			lines = append(lines, fmt.Sprintf("%s (%s)", t.Name, t.Deadline))
		}
		sum.Message = "Tasks for today:\n\n" + strings.Join(lines, "\n")
	}
	return sum
}
