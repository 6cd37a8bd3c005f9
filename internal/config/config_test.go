package config

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "repsig/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"LOG_LEVEL", "REPSIG_PROFILE", "REPSIG_PROFILES_FILE", "REPSIG_FORMAT", "REPSIG_REPLICATES", "REPSIG_STRICT"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "INFO", cfg.Log.Level)
	assert.Equal(t, "consensus", cfg.Report.Profile)
	assert.Equal(t, "", cfg.Report.Format)
	assert.Equal(t, 0, cfg.Report.Replicates)
	assert.False(t, cfg.Report.Strict)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("REPSIG_PROFILE", "sps")
	t.Setenv("REPSIG_FORMAT", "CSV")
	t.Setenv("REPSIG_REPLICATES", "10")
	t.Setenv("REPSIG_STRICT", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sps", cfg.Report.Profile)
	assert.Equal(t, "csv", cfg.Report.Format)
	assert.Equal(t, 10, cfg.Report.Replicates)
	assert.True(t, cfg.Report.Strict)
}

func TestLoadRejectsUnknownFormat(t *testing.T) {
	t.Setenv("REPSIG_FORMAT", "html")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeConfigInvalid, apperrors.GetCode(err))
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("REPSIG_PROFILE", "")
	os.Unsetenv("REPSIG_PROFILE")
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("REPSIG_PROFILE=sps\n"), 0o644))

	cfg, err := Load(path, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "sps", cfg.Report.Profile)
}
