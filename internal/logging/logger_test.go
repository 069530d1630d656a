package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]log.Lvl{
		"debug":   log.DEBUG,
		"INFO":    log.INFO,
		" warn ":  log.WARN,
		"ERROR":   log.ERROR,
		"off":     log.OFF,
		"verbose": log.INFO,
		"":        log.INFO,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), "level %q", in)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := New("recover-test", "WARN")
	logger.SetOutput(&buf)

	logger.Infof("hidden %d", 1)
	logger.Warnf("shown %d", 2)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.False(t, strings.Contains(out, "hidden"))
	assert.True(t, strings.Contains(out, "shown 2"))
}

func TestDiscardWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	logger := Discard()
	logger.SetOutput(&buf)
	logger.Errorf("nothing")
	assert.Empty(t, buf.String())
}
