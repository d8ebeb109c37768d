// SPDX-License-Identifier: AGPL-3.0-only
package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, Debug, ParseLevel("debug"))
	assert.Equal(t, Warn, ParseLevel("WARNING"))
	assert.Equal(t, Error, ParseLevel(" error "))
	assert.Equal(t, Info, ParseLevel("bogus"))
	assert.Equal(t, "fatal", Fatal.String())
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Warn, Output: &buf})

	l.Infof("hidden %d", 1)
	l.Warnf("shown %d", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown 2")

	buf.Reset()
	l.SetLevel(Debug)
	l.Debugf("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestLoggerWithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Options{Level: Info, Output: &buf, Format: "logfmt"})

	l.With("task", "Pay bills").Infof("reminder fired")

	assert.Contains(t, buf.String(), "task=\"Pay bills\"")
	assert.Contains(t, buf.String(), "reminder fired")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "remind.log")
	l, err := FileLogger(path, Info)
	require.NoError(t, err)

	l.Errorf("disk says %s", "no")
	require.NoError(t, l.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "disk says no")
}

func TestDefaultLogger(t *testing.T) {
	prev := GetDefaultLogger()
	t.Cleanup(func() { SetDefaultLogger(prev) })

	var buf bytes.Buffer
	SetDefaultLogger(New(Options{Level: Info, Output: &buf}))
	GetDefaultLogger().Printf("via printf")
	assert.Contains(t, buf.String(), "via printf")

	SetDefaultLogger(nil)
	assert.NotNil(t, GetDefaultLogger())
}
