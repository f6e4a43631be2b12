package logger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	log := New()
	assert.NotNil(t, log)
}

func TestNewWithWriter(t *testing.T) {
	var buf strings.Builder
	log := NewWithWriter(&buf)

	log.Info().Str("stage", "extract").Msg("row skipped")

	out := buf.String()
	assert.Contains(t, out, "row skipped")
	assert.Contains(t, out, `"stage":"extract"`)
}
