package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jolks/mcp-remind/internal/model"
)

func TestManualClock(t *testing.T) {
	c := At(8, 59)
	assert.Equal(t, model.TimeOfDay{Hour: 8, Minute: 59}, TimeOfDay(c))

	c.Advance(time.Minute)
	assert.Equal(t, model.TimeOfDay{Hour: 9}, TimeOfDay(c))

	c.Set(time.Date(2000, 1, 1, 18, 0, 30, 0, time.Local))
	assert.Equal(t, model.TimeOfDay{Hour: 18, Second: 30}, TimeOfDay(c))
}

func TestSystemClockIsLocal(t *testing.T) {
	assert.Equal(t, time.Local, System{}.Now().Location())
}
