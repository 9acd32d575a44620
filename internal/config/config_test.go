package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insightflow/internal/errors"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"INSIGHT_BIN_SIZE", "INSIGHT_NOISE_MODE", "INSIGHT_THRESHOLD", "PORT"} {
		t.Setenv(key, "")
	}
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("INSIGHT_BIN_SIZE", "8")
	t.Setenv("INSIGHT_NOISE_MODE", "pure")
	t.Setenv("INSIGHT_THRESHOLD", "0.5")
	t.Setenv("PORT", "9090")
	t.Setenv("INSIGHT_NEIGHBORS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Engine.BinSize)
	assert.Equal(t, "pure", cfg.Engine.NoiseMode)
	assert.Equal(t, 0.5, cfg.Engine.Threshold)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Engine.Neighbors, "unparsable values fall back to the default")
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("INSIGHT_NOISE_MODE", "loud")
	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
