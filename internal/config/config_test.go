package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BREAKPOINT_MARKER", "")
	t.Setenv("WORKER_COUNT", "")
	t.Setenv("SCRIPT_EXTENSIONS", "")

	cfg := Load()
	assert.Equal(t, "#@breakpoint", cfg.BreakpointMarker)
	assert.Equal(t, 8, cfg.WorkerCount)
	assert.Equal(t, []string{".rpy"}, cfg.ScriptExtensions)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("BREAKPOINT_MARKER", "## bp")
	t.Setenv("WORKER_COUNT", "3")
	t.Setenv("SCRIPT_EXTENSIONS", "rpy, .RPYM ,")

	cfg := Load()
	assert.Equal(t, "## bp", cfg.BreakpointMarker)
	assert.Equal(t, 3, cfg.WorkerCount)
	assert.Equal(t, []string{".rpy", ".rpym"}, cfg.ScriptExtensions)
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "many")
	assert.Equal(t, 8, getEnvInt("WORKER_COUNT", 8))
}
