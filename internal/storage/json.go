// SPDX-License-Identifier: AGPL-3.0-only
package storage

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	apperrors "github.com/jolks/mcp-remind/internal/errors"
	"github.com/jolks/mcp-remind/internal/model"
)

//go:embed tasks.schema.json
var taskFileSchemaSource string

var taskFileSchema = jsonschema.MustCompileString("tasks.schema.json", taskFileSchemaSource)

// watchDebounce coalesces the burst of events produced by one atomic save
const watchDebounce = 200 * time.Millisecond

// JSONStorage persists tasks to a single JSON object keyed by task name and
// watches it for changes. Key order in the file is the task order.
type JSONStorage struct {
	path    string
	mu      sync.RWMutex
	watcher *fsnotify.Watcher
}

// NewJSONStorage creates a new JSON storage backed by the given file path.
func NewJSONStorage(path string) (*JSONStorage, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return &JSONStorage{path: abs}, nil
}

// Path returns the absolute path of the task file
func (s *JSONStorage) Path() string {
	return s.path
}

// Load implements Storage.Load.
func (s *JSONStorage) Load(ctx context.Context) ([]*model.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*model.Task{}, nil
		}
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.Task{}, nil
	}

	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperrors.DataCorruption(s.path, err)
	}
	if err := taskFileSchema.Validate(doc); err != nil {
		return nil, apperrors.DataCorruption(s.path, err)
	}

	tasks, err := decodeOrdered(data)
	if err != nil {
		return nil, apperrors.DataCorruption(s.path, err)
	}
	return tasks, nil
}

// decodeOrdered walks the top-level object token by token so that the
// file's key order becomes the task order. A repeated key keeps the
// position of its first occurrence and the value of its last.
func decodeOrdered(data []byte) ([]*model.Task, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var tasks []*model.Task
	index := make(map[string]int)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var rec model.Record
		if err := dec.Decode(&rec); err != nil {
			return nil, fmt.Errorf("task %q: %w", name, err)
		}
		task, err := model.FromRecord(name, rec)
		if err != nil {
			return nil, err
		}
		if i, seen := index[name]; seen {
			tasks[i] = task
			continue
		}
		index[name] = len(tasks)
		tasks = append(tasks, task)
	}
	if tasks == nil {
		tasks = []*model.Task{}
	}
	return tasks, nil
}

// encodeOrdered renders tasks as a JSON object in slice order.
func encodeOrdered(tasks []*model.Task) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("{")
	for i, t := range tasks {
		if i > 0 {
			buf.WriteString(",")
		}
		key, err := json.Marshal(t.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(t.ToRecord())
		if err != nil {
			return nil, err
		}
		buf.WriteString("\n  ")
		buf.Write(key)
		buf.WriteString(": ")
		buf.Write(val)
	}
	if len(tasks) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// Save implements Storage.Save.
func (s *JSONStorage) Save(ctx context.Context, tasks []*model.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := encodeOrdered(tasks)
	if err != nil {
		return fmt.Errorf("encode tasks: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir storage dir: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil { // ensure contents flushed for atomic rename
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Watch implements Storage.Watch.
func (s *JSONStorage) Watch(ctx context.Context) (<-chan Event, error) {
	// Ensure directory exists to watch
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir storage dir: %w", err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch dir: %w", err)
	}
	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()

	ch := make(chan Event)
	go s.watchLoop(ctx, w, ch)
	return ch, nil
}

func (s *JSONStorage) watchLoop(ctx context.Context, w *fsnotify.Watcher, ch chan<- Event) {
	defer close(ch)
	defer w.Close()

	d := newDebouncer(watchDebounce)
	defer d.stop()

	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(evt.Name) != s.path {
				continue
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				d.trigger()
			}
		case <-d.C():
			d.stop()
			select {
			case ch <- Event{}:
			case <-ctx.Done():
				return
			}
		case _, ok := <-w.Errors:
			if !ok {
				return
			}
			// ignore error
		}
	}
}

// debouncer fires once after the last trigger in a burst
type debouncer struct {
	wait  time.Duration
	timer *time.Timer
}

func newDebouncer(wait time.Duration) *debouncer {
	return &debouncer{wait: wait}
}

func (d *debouncer) trigger() {
	if d.timer == nil {
		d.timer = time.NewTimer(d.wait)
		return
	}
	if !d.timer.Stop() {
		select {
		case <-d.timer.C:
		default:
		}
	}
	d.timer.Reset(d.wait)
}

// C returns the pending fire channel, or nil (blocks forever in select) when idle
func (d *debouncer) C() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C
}

func (d *debouncer) stop() {
	if d.timer == nil {
		return
	}
	if !d.timer.Stop() {
		select {
		case <-d.timer.C:
		default:
		}
	}
	d.timer = nil
}

// Close implements Storage.Close.
func (s *JSONStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher != nil {
		err := s.watcher.Close()
		s.watcher = nil
		return err
	}
	return nil
}
