// SPDX-License-Identifier: AGPL-3.0-only
package storage

import (
	"context"
	"sync"

	"github.com/jolks/mcp-remind/internal/model"
)

// MemoryStorage keeps tasks in process memory. It backs ephemeral runs and
// tests, and counts saves so callers can assert on write behaviour.
type MemoryStorage struct {
	mu      sync.Mutex
	tasks   []*model.Task
	saves   int
	saveErr error
	loadErr error
}

// NewMemoryStorage returns a memory storage pre-populated with copies of tasks
func NewMemoryStorage(tasks ...*model.Task) *MemoryStorage {
	return &MemoryStorage{tasks: cloneTasks(tasks)}
}

// Load implements Storage.Load.
func (m *MemoryStorage) Load(ctx context.Context) ([]*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return cloneTasks(m.tasks), nil
}

// Save implements Storage.Save.
func (m *MemoryStorage) Save(ctx context.Context, tasks []*model.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.tasks = cloneTasks(tasks)
	m.saves++
	return nil
}

// Watch implements Storage.Watch. Memory storage has no external writers,
// so the channel only closes when ctx is done.
func (m *MemoryStorage) Watch(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

// Close implements Storage.Close.
func (m *MemoryStorage) Close() error {
	return nil
}

// Saves returns how many successful saves have happened
func (m *MemoryStorage) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// FailSaves makes every following Save return err; nil restores normal saves
func (m *MemoryStorage) FailSaves(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// FailLoads makes every following Load return err; nil restores normal loads
func (m *MemoryStorage) FailLoads(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

func cloneTasks(tasks []*model.Task) []*model.Task {
	out := make([]*model.Task, 0, len(tasks))
	for _, t := range tasks {
		if t == nil {
			continue
		}
		tt := *t
		out = append(out, &tt)
	}
	return out
}
