package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: /tmp/test.db
matching:
  value_tolerance: "0.25"
  similarity_threshold: 85
  single_candidate_policy: require_threshold
  document_downgrade: honor_incoming
api:
  port: 9090
observability:
  logging:
    level: debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.DatabasePath)
	assert.Equal(t, "0.25", cfg.Matching.ValueTolerance)
	assert.Equal(t, 85, cfg.Matching.SimilarityThreshold)
	assert.Equal(t, "require_threshold", cfg.Matching.SingleCandidatePolicy)
	assert.Equal(t, "honor_incoming", cfg.Matching.DocumentDowngrade)
	assert.Equal(t, 9090, cfg.API.Port)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	require.NoError(t, cfg.Validate())
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_DB_DIR", "/var/data")
	path := writeConfig(t, `
storage:
  database_path: ${TEST_DB_DIR}/reconcile.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/data/reconcile.db", cfg.Storage.DatabasePath)
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
storage:
  database_path: test.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.10", cfg.Matching.ValueTolerance)
	assert.Equal(t, 70, cfg.Matching.SimilarityThreshold)
	assert.Equal(t, "accept", cfg.Matching.SingleCandidatePolicy)
	assert.Equal(t, "preserve", cfg.Matching.DocumentDowngrade)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("RECONCILE_DB_PATH", "env.db")
	t.Setenv("RECONCILE_SIMILARITY_THRESHOLD", "65")

	cfg := LoadFromEnv()
	assert.Equal(t, "env.db", cfg.Storage.DatabasePath)
	assert.Equal(t, 65, cfg.Matching.SimilarityThreshold)
	assert.Equal(t, "accept", cfg.Matching.SingleCandidatePolicy)
}

func TestLoadOrEnvWithPath_FallsBack(t *testing.T) {
	cfg := LoadOrEnvWithPath(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Equal(t, "reconcile.db", cfg.Storage.DatabasePath)
}

func TestValidate(t *testing.T) {
	cfg := LoadFromEnv()
	require.NoError(t, cfg.Validate())

	cfg.Matching.SingleCandidatePolicy = "sometimes"
	assert.Error(t, cfg.Validate())

	cfg = LoadFromEnv()
	cfg.Matching.DocumentDowngrade = "maybe"
	assert.Error(t, cfg.Validate())

	cfg = LoadFromEnv()
	cfg.Matching.SimilarityThreshold = 150
	assert.Error(t, cfg.Validate())
}
