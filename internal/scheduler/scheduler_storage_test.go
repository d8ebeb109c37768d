// SPDX-License-Identifier: AGPL-3.0-only
package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jolks/mcp-remind/internal/clock"
	"github.com/jolks/mcp-remind/internal/storage"
	"github.com/jolks/mcp-remind/internal/store"
)

func TestScheduler_PersistsFiredReminder(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "tasks.json")

	js, err := storage.NewJSONStorage(path)
	require.NoError(t, err)
	ts := store.New(js)
	require.NoError(t, ts.Load(ctx))
	_, err = ts.Add(ctx, "Pay bills", "09:00")
	require.NoError(t, err)

	s := NewScheduler(ts, nil, nil, clock.At(9, 0))
	s.Tick(ctx)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Pay bills":{"deadline":"1900-01-01T09:00:00","reminder_sent":true}}`, string(b))

	// a fresh process sees the flag and does not fire again
	reloaded := store.New(js)
	require.NoError(t, reloaded.Load(ctx))
	notifier := new(MockNotifier)
	NewScheduler(reloaded, notifier, nil, clock.At(9, 5)).Tick(ctx)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestScheduler_ReloadsOnExternalEdit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	path := filepath.Join(t.TempDir(), "tasks.json")

	js, err := storage.NewJSONStorage(path)
	require.NoError(t, err)
	defer js.Close()
	ts := store.New(js)
	require.NoError(t, ts.Load(ctx))

	s := NewScheduler(ts, nil, nil, clock.At(8, 0), WithWatch(true), WithInterval(time.Hour))
	require.NoError(t, s.Start(ctx))
	defer s.Stop()

	require.NoError(t, os.WriteFile(path,
		[]byte(`{"Water plants":{"deadline":"1900-01-01T12:00:00","reminder_sent":false}}`), 0o644))

	assert.Eventually(t, func() bool {
		_, err := ts.Get("Water plants")
		return err == nil
	}, 5*time.Second, 50*time.Millisecond)
}
