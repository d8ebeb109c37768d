package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jolks/mcp-remind/internal/model"
)

func TestMemoryStorageCopiesOnSaveAndLoad(t *testing.T) {
	m := NewMemoryStorage()
	task := &model.Task{Name: "a", Deadline: model.TimeOfDay{Hour: 1}}
	require.NoError(t, m.Save(context.Background(), []*model.Task{task}))

	task.ReminderSent = true
	loaded, err := m.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.False(t, loaded[0].ReminderSent)
	assert.Equal(t, 1, m.Saves())
}

func TestMemoryStorageInjectedFailures(t *testing.T) {
	m := NewMemoryStorage()
	boom := errors.New("disk full")

	m.FailSaves(boom)
	assert.ErrorIs(t, m.Save(context.Background(), nil), boom)
	assert.Equal(t, 0, m.Saves())

	m.FailLoads(boom)
	_, err := m.Load(context.Background())
	assert.ErrorIs(t, err, boom)
}
