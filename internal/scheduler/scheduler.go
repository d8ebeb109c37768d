// SPDX-License-Identifier: AGPL-3.0-only
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jolks/mcp-remind/internal/clock"
	"github.com/jolks/mcp-remind/internal/errors"
	"github.com/jolks/mcp-remind/internal/logging"
	"github.com/jolks/mcp-remind/internal/model"
	"github.com/jolks/mcp-remind/internal/notify"
	"github.com/jolks/mcp-remind/internal/store"
)

// ReminderTitle is the title of every reminder notification
const ReminderTitle = "Task Reminder"

// ReminderMessage is the notification body for a task that is due
func ReminderMessage(name string) string {
	return fmt.Sprintf("Reminder: Task '%s' is due now!", name)
}

// ReminderScheduler polls the task store and fires each task's reminder
// once, the first time its deadline has been reached.
type ReminderScheduler struct {
	store    *store.TaskStore
	notifier notify.Notifier
	alert    notify.AudioAlert
	clock    clock.Clock
	logger   *logging.Logger

	interval time.Duration
	sound    string
	watch    bool
	onTick   func([]model.Task)

	// tickMu serializes ticks so a due task is seen as pending by one tick only
	tickMu sync.Mutex

	mu          sync.Mutex
	cron        *cron.Cron
	cancelWatch context.CancelFunc
}

// Option configures a ReminderScheduler
type Option func(*ReminderScheduler)

// WithInterval sets how often Start ticks
func WithInterval(d time.Duration) Option {
	return func(s *ReminderScheduler) {
		s.interval = d
	}
}

// WithSound sets the sound resource passed to the audio alert
func WithSound(sound string) Option {
	return func(s *ReminderScheduler) {
		s.sound = sound
	}
}

// WithLogger sets the logger
func WithLogger(l *logging.Logger) Option {
	return func(s *ReminderScheduler) {
		s.logger = l
	}
}

// WithWatch makes Start reload the store whenever its backing storage changes
func WithWatch(enabled bool) Option {
	return func(s *ReminderScheduler) {
		s.watch = enabled
	}
}

// WithOnTick registers a callback that receives the snapshot after every tick
func WithOnTick(fn func([]model.Task)) Option {
	return func(s *ReminderScheduler) {
		s.onTick = fn
	}
}

// NewScheduler creates a new scheduler instance. A nil notifier, alert or
// clock is replaced by a log notifier, a silent alert and the system clock.
func NewScheduler(ts *store.TaskStore, notifier notify.Notifier, alert notify.AudioAlert, clk clock.Clock, opts ...Option) *ReminderScheduler {
	s := &ReminderScheduler{
		store:    ts,
		notifier: notifier,
		alert:    alert,
		clock:    clk,
		logger:   logging.GetDefaultLogger(),
		interval: time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = notify.LogNotifier{Logger: s.logger}
	}
	if s.alert == nil {
		s.alert = notify.NopAlert{}
	}
	if s.clock == nil {
		s.clock = clock.System{}
	}
	return s
}

// Tick fires the reminder of every pending task whose deadline is at or
// before the current time of day, then returns a snapshot of all tasks.
//
// For each due task the notifier runs, then the audio alert, then the task is
// marked sent. Notifier, audio and save failures are logged and never stop
// the transition or later ticks: the in-memory flag is set even when the save
// fails, so a task cannot fire twice. Only the deadline that fired is marked,
// so a task re-added with a new deadline during delivery stays pending.
func (s *ReminderScheduler) Tick(ctx context.Context) []model.Task {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	now := clock.TimeOfDay(s.clock)
	for _, task := range s.store.List() {
		if task.ReminderSent || !task.DueAt(now) {
			continue
		}
		s.fire(ctx, task)
	}

	snapshot := s.store.List()
	if s.onTick != nil {
		s.onTick(snapshot)
	}
	return snapshot
}

func (s *ReminderScheduler) fire(ctx context.Context, task model.Task) {
	logger := s.logger.With("task", task.Name, "deadline", task.Deadline.String())
	logger.Infof("Reminder due")

	if err := s.notifier.Notify(ctx, ReminderTitle, ReminderMessage(task.Name)); err != nil {
		logger.Warnf("Notifier failed: %v", err)
	}
	if err := s.alert.Play(ctx, s.sound); err != nil {
		logger.Warnf("Audio alert failed: %v", err)
	}
	if err := s.store.MarkSent(ctx, task.Name, task.Deadline); err != nil {
		if errors.IsNotFound(err) {
			// removed while the reminder was being delivered
			logger.Debugf("Task removed before it could be marked sent")
			return
		}
		logger.Errorf("Failed to persist reminder state: %v", err)
	}
}

// Start ticks every interval on a cron entry until ctx is cancelled or Stop
// is called. With watching enabled it also reloads the store when the
// backing storage changes.
func (s *ReminderScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	c := cron.New(
		cron.WithParser(cron.NewParser(
			cron.SecondOptional|cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
		cron.WithLogger(cron.PrintfLogger(s.logger)),
		cron.WithChain(
			cron.Recover(cron.PrintfLogger(s.logger)),
			cron.SkipIfStillRunning(cron.PrintfLogger(s.logger)),
		),
	)

	every := fmt.Sprintf("@every %s", s.interval)
	if _, err := c.AddFunc(every, func() { s.Tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule reminder checks: %w", err)
	}

	s.cron = c
	c.Start()
	s.logger.Infof("Checking reminders every %s", s.interval)

	if s.watch {
		s.startWatchLocked(ctx)
	}

	// Listen for context cancellation to stop the scheduler
	go func() {
		<-ctx.Done()
		if err := s.Stop(); err != nil {
			s.logger.Errorf("Error stopping scheduler: %v", err)
		}
	}()

	return nil
}

// Stop halts ticking and storage watching. A tick already in progress is
// allowed to finish. Safe to call more than once.
func (s *ReminderScheduler) Stop() error {
	s.mu.Lock()
	c := s.cron
	cancel := s.cancelWatch
	s.cron = nil
	s.cancelWatch = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if c != nil {
		<-c.Stop().Done()
	}
	return nil
}

// startWatchLocked reloads the store on every storage change event. Caller must hold s.mu.
func (s *ReminderScheduler) startWatchLocked(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	ch, err := s.store.Backend().Watch(ctx)
	if err != nil {
		cancel()
		// if watcher cannot start, just ignore watching.
		s.logger.Warnf("Failed to start storage watcher: %v", err)
		return
	}
	s.cancelWatch = cancel
	go func() {
		for range ch {
			if err := s.store.Reload(ctx); err != nil {
				s.logger.Warnf("Ignoring unreadable task file change: %v", err)
				continue
			}
			s.logger.Debugf("Reloaded tasks after storage change")
		}
	}()
}
