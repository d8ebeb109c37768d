// SPDX-License-Identifier: AGPL-3.0-only
package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "09:00", want: TimeOfDay{Hour: 9}},
		{in: "9:5", want: TimeOfDay{Hour: 9, Minute: 5}},
		{in: " 23:59 ", want: TimeOfDay{Hour: 23, Minute: 59}},
		{in: "00:00", want: TimeOfDay{}},
		{in: "25:99", wantErr: true},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "1200", wantErr: true},
		{in: "12:345", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "-1:30", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeOfDayCompare(t *testing.T) {
	nine := TimeOfDay{Hour: 9}
	assert.Equal(t, 0, nine.Compare(TimeOfDay{Hour: 9}))
	assert.Equal(t, -1, TimeOfDay{Hour: 8, Minute: 59, Second: 59}.Compare(nine))
	assert.Equal(t, 1, TimeOfDay{Hour: 9, Second: 1}.Compare(nine))
	assert.True(t, TimeOfDay{Hour: 8}.Before(nine))
	assert.False(t, nine.Before(nine))
}

func TestTaskDueAtUsesGreaterOrEqual(t *testing.T) {
	task := Task{Name: "Pay bills", Deadline: TimeOfDay{Hour: 9}}
	assert.False(t, task.DueAt(TimeOfDay{Hour: 8, Minute: 59}))
	assert.True(t, task.DueAt(TimeOfDay{Hour: 9}))
	assert.True(t, task.DueAt(TimeOfDay{Hour: 9, Minute: 1}))
}

func TestTaskStatus(t *testing.T) {
	assert.Equal(t, StatusPending, Task{}.Status())
	assert.Equal(t, StatusFired, Task{ReminderSent: true}.Status())
}

func TestTimeOfDayOfIgnoresDate(t *testing.T) {
	a := time.Date(2026, 10, 17, 14, 30, 12, 0, time.Local)
	b := time.Date(1999, 1, 1, 14, 30, 12, 0, time.Local)
	assert.Equal(t, TimeOfDayOf(a), TimeOfDayOf(b))
}

func TestParseISOTimeOfDay(t *testing.T) {
	for _, in := range []string{
		"1900-01-01T17:05:00",
		"2026-10-17T17:05:00",
		"2026-10-17T17:05:00+02:00",
		"2026-10-17 17:05:00",
		"17:05:00",
		"17:05",
	} {
		got, err := ParseISOTimeOfDay(in)
		require.NoError(t, err, in)
		assert.Equal(t, TimeOfDay{Hour: 17, Minute: 5}, got, in)
	}

	_, err := ParseISOTimeOfDay("tomorrow")
	assert.Error(t, err)
}

func TestRecordConversion(t *testing.T) {
	task := Task{Name: "Stand-up", Deadline: TimeOfDay{Hour: 10, Minute: 15}, ReminderSent: true}
	rec := task.ToRecord()
	assert.Equal(t, "1900-01-01T10:15:00", rec.Deadline)
	assert.True(t, rec.ReminderSent)

	back, err := FromRecord("Stand-up", rec)
	require.NoError(t, err)
	assert.Equal(t, task, *back)

	_, err = FromRecord("broken", Record{Deadline: "soon"})
	assert.ErrorContains(t, err, `task "broken"`)
}

func TestTaskJSONUsesClockTime(t *testing.T) {
	b, err := json.Marshal(Task{Name: "Call mum", Deadline: TimeOfDay{Hour: 18, Minute: 30}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Call mum","deadline":"18:30","reminder_sent":false}`, string(b))

	var back Task
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, TimeOfDay{Hour: 18, Minute: 30}, back.Deadline)
}
