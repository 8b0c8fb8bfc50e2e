package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/marmos91/mdcatalog/pkg/catalog/store"
)

func TestApplyDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, "INFO", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "stderr", cfg.Logging.Output)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, store.DatabaseTypeSQLite, cfg.Database.Type)
	assert.NotEmpty(t, cfg.Database.SQLite.Path)
	assert.Equal(t, DraftBackendDatabase, cfg.Drafts.Backend)
	assert.Empty(t, cfg.Drafts.Badger.Path)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "us-east-1", cfg.Backup.S3.Region)
}

func TestApplyDefaults_BadgerPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfg := &Config{Drafts: DraftsConfig{Backend: "BADGER"}}
	ApplyDefaults(cfg)

	assert.Equal(t, DraftBackendBadger, cfg.Drafts.Backend)
	assert.Equal(t, filepath.Join(dir, "mdcatalog", "drafts"), cfg.Drafts.Badger.Path)

	inMemory := &Config{Drafts: DraftsConfig{Backend: DraftBackendBadger}}
	inMemory.Drafts.Badger.InMemory = true
	ApplyDefaults(inMemory)
	assert.Empty(t, inMemory.Drafts.Badger.Path)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		Logging:         LoggingConfig{Level: "warn", Format: "json", Output: "/tmp/x.log"},
		ShutdownTimeout: time.Minute,
	}
	cfg.Server.Port = 9000

	ApplyDefaults(cfg)

	assert.Equal(t, "WARN", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "/tmp/x.log", cfg.Logging.Output)
	assert.Equal(t, time.Minute, cfg.ShutdownTimeout)
	assert.Equal(t, 9000, cfg.Server.Port)
}

func TestGetDefaultConfig_IsValid(t *testing.T) {
	require.NoError(t, Validate(GetDefaultConfig()))
}

func TestApplyDefaults_Telemetry(t *testing.T) {
	cfg := GetDefaultConfig()

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.Equal(t, 1.0, cfg.Telemetry.SampleRate)
	assert.False(t, cfg.Telemetry.Profiling.Enabled)
	assert.Contains(t, cfg.Telemetry.Profiling.ProfileTypes, "mutex_duration")
}
