// SPDX-License-Identifier: AGPL-3.0-only
package scheduler

import (
	"context"

	"github.com/jolks/mcp-remind/internal/model"
)

// Scheduler is the interface for the reminder scheduler
type Scheduler interface {
	// Tick fires every pending reminder whose deadline has been reached and
	// returns a fresh snapshot of all tasks.
	Tick(ctx context.Context) []model.Task
	// SummarizePendingBefore builds the on-demand summary for cutoff.
	SummarizePendingBefore(cutoff model.TimeOfDay) Summary
	Start(ctx context.Context) error
	Stop() error
}
