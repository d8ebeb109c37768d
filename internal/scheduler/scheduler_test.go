// SPDX-License-Identifier: AGPL-3.0-only
package scheduler

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jolks/mcp-remind/internal/clock"
	"github.com/jolks/mcp-remind/internal/model"
	"github.com/jolks/mcp-remind/internal/notify"
	"github.com/jolks/mcp-remind/internal/storage"
	"github.com/jolks/mcp-remind/internal/store"
)

// MockNotifier is a mock implementation of notify.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, title, message string) error {
	args := m.Called(ctx, title, message)
	return args.Error(0)
}

// MockAlert is a mock implementation of notify.AudioAlert
type MockAlert struct {
	mock.Mock
}

func (m *MockAlert) Play(ctx context.Context, sound string) error {
	args := m.Called(ctx, sound)
	return args.Error(0)
}

func newStore(t *testing.T, backend storage.Storage) *store.TaskStore {
	t.Helper()
	ts := store.New(backend)
	require.NoError(t, ts.Load(context.Background()))
	return ts
}

func TestTickFiresOnceAtDeadline(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	ts := newStore(t, mem)
	_, err := ts.Add(ctx, "Pay bills", "09:00")
	require.NoError(t, err)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, ReminderTitle, "Reminder: Task 'Pay bills' is due now!").Return(nil).Once()
	alert := new(MockAlert)
	alert.On("Play", mock.Anything, "ding.wav").Return(nil).Once()

	clk := clock.At(8, 59)
	s := NewScheduler(ts, notifier, alert, clk, WithSound("ding.wav"))

	tasks := s.Tick(ctx)
	require.Len(t, tasks, 1)
	assert.False(t, tasks[0].ReminderSent)
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)

	clk.Advance(time.Minute)
	tasks = s.Tick(ctx)
	assert.True(t, tasks[0].ReminderSent)

	clk.Advance(time.Minute)
	tasks = s.Tick(ctx)
	assert.True(t, tasks[0].ReminderSent)

	notifier.AssertExpectations(t)
	alert.AssertExpectations(t)
	assert.Equal(t, 2, mem.Saves(), "one save for add, one for the fired reminder")
}

func TestTickFiresOverdueTasksInOrder(t *testing.T) {
	ctx := context.Background()
	ts := newStore(t, storage.NewMemoryStorage())
	_, err := ts.Add(ctx, "first", "07:00")
	require.NoError(t, err)
	_, err = ts.Add(ctx, "later", "23:59")
	require.NoError(t, err)
	_, err = ts.Add(ctx, "second", "08:30")
	require.NoError(t, err)

	var fired []string
	notifier := notify.NotifierFunc(func(ctx context.Context, title, message string) error {
		fired = append(fired, message)
		return nil
	})

	s := NewScheduler(ts, notifier, nil, clock.At(12, 0))
	tasks := s.Tick(ctx)

	assert.Equal(t, []string{ReminderMessage("first"), ReminderMessage("second")}, fired)
	assert.True(t, tasks[0].ReminderSent)
	assert.False(t, tasks[1].ReminderSent)
	assert.True(t, tasks[2].ReminderSent)
}

func TestTickSkipsRemovedTask(t *testing.T) {
	ctx := context.Background()
	ts := newStore(t, storage.NewMemoryStorage())
	_, err := ts.Add(ctx, "Pay bills", "09:00")
	require.NoError(t, err)
	require.NoError(t, ts.Remove(ctx, "Pay bills"))

	notifier := new(MockNotifier)
	s := NewScheduler(ts, notifier, nil, clock.At(9, 30))

	assert.Empty(t, s.Tick(ctx))
	notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything)
}

func TestTickRearmedTaskFiresAgain(t *testing.T) {
	ctx := context.Background()
	ts := newStore(t, storage.NewMemoryStorage())
	_, err := ts.Add(ctx, "standup", "09:00")
	require.NoError(t, err)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, ReminderTitle, ReminderMessage("standup")).Return(nil).Twice()
	s := NewScheduler(ts, notifier, nil, clock.At(10, 0))

	s.Tick(ctx)
	_, err = ts.Add(ctx, "standup", "09:45")
	require.NoError(t, err)
	tasks := s.Tick(ctx)

	assert.True(t, tasks[0].ReminderSent)
	notifier.AssertExpectations(t)
}

func TestTickKeepsTaskReaddedDuringDeliveryArmed(t *testing.T) {
	ctx := context.Background()
	ts := newStore(t, storage.NewMemoryStorage())
	_, err := ts.Add(ctx, "standup", "09:00")
	require.NoError(t, err)

	clk := clock.At(9, 30)
	fires := 0
	notifier := notify.NotifierFunc(func(ctx context.Context, title, message string) error {
		fires++
		if fires == 1 {
			_, err := ts.Add(ctx, "standup", "18:00")
			require.NoError(t, err)
		}
		return nil
	})
	s := NewScheduler(ts, notifier, nil, clk)

	tasks := s.Tick(ctx)
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TimeOfDay{Hour: 18}, tasks[0].Deadline)
	assert.False(t, tasks[0].ReminderSent)

	clk.Advance(9 * time.Hour)
	tasks = s.Tick(ctx)
	assert.Equal(t, 2, fires)
	assert.True(t, tasks[0].ReminderSent)
}

func TestTickDoesNotRefireAfterUnsavedMarkIsReloaded(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	ts := newStore(t, mem)
	_, err := ts.Add(ctx, "a", "08:00")
	require.NoError(t, err)
	_, err = ts.Add(ctx, "b", "08:30")
	require.NoError(t, err)

	fires := map[string]int{}
	notifier := notify.NotifierFunc(func(ctx context.Context, title, message string) error {
		fires[message]++
		if message == ReminderMessage("a") {
			mem.FailSaves(stderrors.New("disk full"))
		}
		return nil
	})
	s := NewScheduler(ts, notifier, nil, clock.At(9, 0))

	s.Tick(ctx)
	mem.FailSaves(nil)
	require.NoError(t, ts.Reload(ctx))
	s.Tick(ctx)

	assert.Equal(t, 1, fires[ReminderMessage("a")])
	assert.Equal(t, 1, fires[ReminderMessage("b")])
}

func TestTickMarksSentWhenDeliveryFails(t *testing.T) {
	ctx := context.Background()
	ts := newStore(t, storage.NewMemoryStorage())
	_, err := ts.Add(ctx, "Pay bills", "09:00")
	require.NoError(t, err)

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, mock.Anything, mock.Anything).Return(stderrors.New("no display")).Once()
	alert := new(MockAlert)
	alert.On("Play", mock.Anything, "").Return(stderrors.New("no player")).Once()

	s := NewScheduler(ts, notifier, alert, clock.At(9, 0))
	tasks := s.Tick(ctx)
	assert.True(t, tasks[0].ReminderSent)

	// a second tick must not retry delivery
	s.Tick(ctx)
	notifier.AssertExpectations(t)
	alert.AssertExpectations(t)
}

func TestTickContinuesWhenSaveFails(t *testing.T) {
	ctx := context.Background()
	mem := storage.NewMemoryStorage()
	ts := newStore(t, mem)
	_, err := ts.Add(ctx, "a", "09:00")
	require.NoError(t, err)
	_, err = ts.Add(ctx, "b", "09:00")
	require.NoError(t, err)
	mem.FailSaves(stderrors.New("disk full"))

	notifier := new(MockNotifier)
	notifier.On("Notify", mock.Anything, ReminderTitle, mock.Anything).Return(nil).Twice()
	s := NewScheduler(ts, notifier, nil, clock.At(9, 1))

	tasks := s.Tick(ctx)
	require.Len(t, tasks, 2)
	assert.True(t, tasks[0].ReminderSent)
	assert.True(t, tasks[1].ReminderSent)

	s.Tick(ctx)
	notifier.AssertExpectations(t)

	mem.FailSaves(nil)
	require.NoError(t, ts.Save(ctx))
	persisted, err := mem.Load(ctx)
	require.NoError(t, err)
	assert.True(t, persisted[0].ReminderSent)
}

func TestTickCallsOnTick(t *testing.T) {
	ctx := context.Background()
	ts := newStore(t, storage.NewMemoryStorage())
	_, err := ts.Add(ctx, "x", "20:00")
	require.NoError(t, err)

	var got []model.Task
	s := NewScheduler(ts, nil, nil, clock.At(8, 0), WithOnTick(func(tasks []model.Task) {
		got = tasks
	}))
	s.Tick(ctx)

	require.Len(t, got, 1)
	assert.Equal(t, "x", got[0].Name)
}

func TestSummarizePendingBefore(t *testing.T) {
	ctx := context.Background()
	cutoff := model.TimeOfDay{Hour: 17}

	t.Run("nothing pending", func(t *testing.T) {
		s := NewScheduler(newStore(t, storage.NewMemoryStorage()), nil, nil, clock.At(10, 0))
		sum := s.SummarizePendingBefore(cutoff)
		assert.Equal(t, SummaryNothingPending, sum.Kind)
		assert.Equal(t, "No tasks to remind you about.", sum.Message)
	})

	t.Run("cutoff passed", func(t *testing.T) {
		ts := newStore(t, storage.NewMemoryStorage())
		_, err := ts.Add(ctx, "Pay bills", "09:00")
		require.NoError(t, err)
		s := NewScheduler(ts, nil, nil, clock.At(18, 0))
		sum := s.SummarizePendingBefore(cutoff)
		assert.Equal(t, SummaryCutoffPassed, sum.Kind)
		assert.Equal(t, "It's already past 17:00. Check your tasks!", sum.Message)
		assert.Empty(t, sum.Tasks)
	})

	t.Run("exactly at cutoff", func(t *testing.T) {
		s := NewScheduler(newStore(t, storage.NewMemoryStorage()), nil, nil, clock.At(17, 0))
		assert.Equal(t, SummaryCutoffPassed, s.SummarizePendingBefore(cutoff).Kind)
	})

	t.Run("listing includes sent tasks", func(t *testing.T) {
		ts := newStore(t, storage.NewMemoryStorage())
		_, err := ts.Add(ctx, "Pay bills", "09:00")
		require.NoError(t, err)
		_, err = ts.Add(ctx, "Call mom", "16:30")
		require.NoError(t, err)
		require.NoError(t, ts.MarkSent(ctx, "Pay bills", model.TimeOfDay{Hour: 9}))

		s := NewScheduler(ts, nil, nil, clock.At(10, 0))
		sum := s.SummarizePendingBefore(cutoff)
		assert.Equal(t, SummaryListing, sum.Kind)
		assert.Equal(t, "Tasks for today:\n\nPay bills (09:00)\nCall mom (16:30)", sum.Message)
		assert.Len(t, sum.Tasks, 2)
		assert.Equal(t, "17:00", sum.Cutoff)
	})
}

func TestStartTicksUntilStopped(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ts := newStore(t, storage.NewMemoryStorage())
	_, err := ts.Add(ctx, "Pay bills", "09:00")
	require.NoError(t, err)

	s := NewScheduler(ts, nil, nil, clock.At(9, 0), WithInterval(time.Second))
	require.NoError(t, s.Start(ctx))
	assert.Error(t, s.Start(ctx), "second start is rejected")

	assert.Eventually(t, func() bool {
		task, err := ts.Get("Pay bills")
		return err == nil && task.ReminderSent
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
}

func TestStartStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(newStore(t, storage.NewMemoryStorage()), nil, nil, clock.At(9, 0))
	require.NoError(t, s.Start(ctx))
	cancel()

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.cron == nil
	}, 2*time.Second, 10*time.Millisecond)
}

