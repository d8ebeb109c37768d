// SPDX-License-Identifier: AGPL-3.0-only

// Package store owns the authoritative set of tasks and keeps the backing
// storage in step with it.
package store

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jolks/mcp-remind/internal/errors"
	"github.com/jolks/mcp-remind/internal/logging"
	"github.com/jolks/mcp-remind/internal/model"
	"github.com/jolks/mcp-remind/internal/storage"
)

// TaskStore maps task names to tasks in insertion order and persists the
// whole mapping synchronously after every mutation. All methods are safe for
// concurrent use.
//
// When a save fails the in-memory mutation is kept and the error is returned;
// the next successful save writes the full state again.
type TaskStore struct {
	mu      sync.Mutex
	backend storage.Storage
	order   []string
	tasks   map[string]*model.Task
	logger  *logging.Logger

	// unsaved is set while the last save failed, so storage lags memory
	unsaved bool
}

// Option configures a TaskStore
type Option func(*TaskStore)

// WithLogger sets the logger used for load and save diagnostics
func WithLogger(l *logging.Logger) Option {
	return func(s *TaskStore) {
		s.logger = l
	}
}

// New creates an empty store backed by the given storage. Call Load to
// populate it from persisted state.
func New(backend storage.Storage, opts ...Option) *TaskStore {
	s := &TaskStore{
		backend: backend,
		tasks:   make(map[string]*model.Task),
		logger:  logging.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the store's contents with the persisted state. A missing or
// empty file yields an empty store. If the persisted state cannot be read the
// store is left empty and the error (DataCorruption for malformed files) is
// returned.
func (s *TaskStore) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.unsaved = false
	tasks, err := s.backend.Load(ctx)
	if err != nil {
		s.resetLocked(nil)
		return err
	}
	s.resetLocked(tasks)
	s.logger.Debugf("Loaded %d tasks", len(s.order))
	return nil
}

// Reload re-reads persisted state after an external change. Unlike Load, a
// failed read keeps the current in-memory tasks. The read happens under the
// store lock so it cannot interleave with a mutation and its save.
//
// While the last save has failed, storage is behind memory: a task that is
// sent in memory stays sent when storage still holds it with the same
// deadline, and the merged state is written back.
func (s *TaskStore) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	if !s.unsaved {
		s.resetLocked(tasks)
		s.logger.Debugf("Reloaded %d tasks", len(s.order))
		return nil
	}

	for _, t := range tasks {
		if t == nil {
			continue
		}
		if cur, ok := s.tasks[t.Name]; ok && cur.ReminderSent && cur.Deadline == t.Deadline {
			t.ReminderSent = true
		}
	}
	s.resetLocked(tasks)
	s.logger.Debugf("Reloaded %d tasks over unsaved state", len(s.order))
	if err := s.persistLocked(ctx); err != nil {
		s.logger.Warnf("Reminder state still unsaved after reload: %v", err)
	}
	return nil
}

func (s *TaskStore) resetLocked(tasks []*model.Task) {
	s.order = s.order[:0]
	s.tasks = make(map[string]*model.Task, len(tasks))
	for _, t := range tasks {
		if t == nil || t.Name == "" {
			continue
		}
		if _, seen := s.tasks[t.Name]; !seen {
			s.order = append(s.order, t.Name)
		}
		tt := *t
		s.tasks[t.Name] = &tt
	}
}

// Save writes the whole mapping to storage, overwriting what was there
func (s *TaskStore) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistLocked(ctx)
}

// Add inserts a task, or overwrites the task with the same name, with its
// reminder re-armed. An overwritten task keeps its position. Invalid input
// leaves the store and the file untouched.
func (s *TaskStore) Add(ctx context.Context, name, deadline string) (model.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Task{}, errors.InvalidInput("task name is required")
	}
	tod, err := model.ParseTimeOfDay(deadline)
	if err != nil {
		return model.Task{}, errors.InvalidDeadlineFormat(deadline, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := &model.Task{Name: name, Deadline: tod}
	if _, exists := s.tasks[name]; !exists {
		s.order = append(s.order, name)
	}
	s.tasks[name] = task

	return *task, s.persistLocked(ctx)
}

// Remove deletes the named task
func (s *TaskStore) Remove(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tasks[name]; !exists {
		return errors.NotFound("task", name)
	}
	delete(s.tasks, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return s.persistLocked(ctx)
}

// MarkSent records that the reminder of the named task with the given
// deadline has fired. It is a no-op, with no write, when the flag is already
// set or when the task was re-added with another deadline since it was read,
// so a re-armed reminder is never marked by a stale caller.
func (s *TaskStore) MarkSent(ctx context.Context, name string, deadline model.TimeOfDay) error {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[name]
	if !exists {
		return errors.NotFound("task", name)
	}
	if task.ReminderSent {
		return nil
	}
	if task.Deadline != deadline {
		s.logger.Debugf("Task %q now due at %s, not marking the %s reminder", name, task.Deadline, deadline)
		return nil
	}
	task.ReminderSent = true
	return s.persistLocked(ctx)
}

// Get returns a copy of the named task
func (s *TaskStore) Get(name string) (model.Task, error) {
	name = strings.TrimSpace(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	task, exists := s.tasks[name]
	if !exists {
		return model.Task{}, errors.NotFound("task", name)
	}
	return *task, nil
}

// List returns copies of all tasks in insertion order
func (s *TaskStore) List() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Task, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, *s.tasks[name])
	}
	return out
}

// Len returns the number of tasks
func (s *TaskStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Backend returns the storage the store persists to
func (s *TaskStore) Backend() storage.Storage {
	return s.backend
}

// persistLocked saves a snapshot of the tasks. Caller must hold s.mu.
func (s *TaskStore) persistLocked(ctx context.Context) error {
	snapshot := make([]*model.Task, 0, len(s.order))
	for _, name := range s.order {
		tt := *s.tasks[name]
		snapshot = append(snapshot, &tt)
	}
	if err := s.backend.Save(ctx, snapshot); err != nil {
		s.unsaved = true
		s.logger.Errorf("Failed to save %d tasks: %v", len(snapshot), err)
		return fmt.Errorf("save tasks: %w", err)
	}
	s.unsaved = false
	return nil
}
