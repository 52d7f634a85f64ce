package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DatabaseURLFlowsThrough(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://app:secret@db:5432/dropthecode")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app:secret@db:5432/dropthecode", cfg.DatabaseURL)
}

func TestLoad_MeiliSearchDisabledWhenUnset(t *testing.T) {
	t.Setenv("MEILISEARCH_HOST", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.MeiliSearchHost)
}

func TestLoad_MeiliSearchHost(t *testing.T) {
	t.Setenv("MEILISEARCH_HOST", "http://search:7700")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://search:7700", cfg.MeiliSearchHost)
}
