// SPDX-License-Identifier: AGPL-3.0-only
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCodesSurviveWrapping(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"not found", NotFound("task", "Pay bills"), IsNotFound},
		{"invalid input", InvalidInput("task name is required"), IsInvalidInput},
		{"invalid deadline", InvalidDeadlineFormat("25:99", nil), IsInvalidDeadlineFormat},
		{"data corruption", DataCorruption("/tmp/tasks.json", stderrors.New("bad json")), IsDataCorruption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tt.err)
			assert.True(t, tt.check(tt.err))
			assert.True(t, tt.check(wrapped))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, `task "x" not found`, NotFound("task", "x").Error())
	assert.Equal(t, `invalid deadline "9h": expected HH:MM (24-hour)`, InvalidDeadlineFormat("9h", nil).Error())

	cause := stderrors.New("unexpected EOF")
	err := DataCorruption("tasks.json", cause)
	assert.Equal(t, "task file tasks.json is corrupt: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(stderrors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
