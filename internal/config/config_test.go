package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogDev)
	assert.Equal(t, 1024, cfg.MaxEvaluations)
	assert.Equal(t, 1, cfg.Ticks)
}

func TestLoadEnv(t *testing.T) {
	t.Setenv("GRIDSIM_LOG_LEVEL", "debug")
	t.Setenv("GRIDSIM_LOG_DEV", "true")
	t.Setenv("GRIDSIM_MAX_EVALUATIONS", "16")
	t.Setenv("GRIDSIM_TICKS", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Config{LogLevel: "debug", LogDev: true, MaxEvaluations: 16, Ticks: 8}, cfg)

	l, err := cfg.Logger()
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(zapcore.DebugLevel))
}

func TestLoadErrors(t *testing.T) {
	td := []struct {
		name, key, value, msg string
	}{
		{"parse", "GRIDSIM_TICKS", "many", "parse env"},
		{"level", "GRIDSIM_LOG_LEVEL", "loud", "log level"},
		{"evals", "GRIDSIM_MAX_EVALUATIONS", "0", "max evaluations"},
		{"ticks", "GRIDSIM_TICKS", "-1", "tick count"},
	}
	for _, d := range td {
		t.Run(d.name, func(t *testing.T) {
			t.Setenv(d.key, d.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), d.msg)
		})
	}
}
