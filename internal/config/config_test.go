package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("COMPLETION_RPM", "")
	t.Setenv("PIPELINE_MAX_CHUNKS", "")
	t.Setenv("REQUEST_TIMEOUT", "")

	cfg := Load()

	assert.Equal(t, 500, cfg.Completion.RequestsPerMinute)
	assert.Equal(t, 100, cfg.Pipeline.MaxChunks)
	assert.Equal(t, 11200, cfg.Pipeline.PreferredChunkSize)
	assert.Equal(t, 5600, cfg.Pipeline.MinChunkSize)
	assert.Equal(t, 30*time.Second, cfg.Completion.CacheTTL)
	assert.Equal(t, 1.2, cfg.Pipeline.DuplicateFactor)
	assert.Equal(t, 15*time.Minute, cfg.App.RequestTimeout)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION_GO", "1500ms")
	t.Setenv("TEST_DURATION_MS", "250")
	t.Setenv("TEST_DURATION_BAD", "soon")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_FLOAT", "0.25")

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"go duration", getEnvAsDuration("TEST_DURATION_GO", 0), 1500 * time.Millisecond},
		{"millis", getEnvAsDuration("TEST_DURATION_MS", 0), 250 * time.Millisecond},
		{"bad duration falls back", getEnvAsDuration("TEST_DURATION_BAD", time.Second), time.Second},
		{"bool", getEnvAsBool("TEST_BOOL", false), true},
		{"missing bool", getEnvAsBool("TEST_BOOL_MISSING", true), true},
		{"float", getEnvAsFloat("TEST_FLOAT", 1), 0.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
