// File: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -- Constructor and Defaults Tests --

func TestNewDefaultConfig(t *testing.T) {
	cfg := NewDefaultConfig()

	// Verify a few key defaults to ensure the mechanism works.
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "handrail", cfg.Logger.ServiceName)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, 30*time.Second, cfg.Interaction.DefaultTimeout)
	assert.Equal(t, 400*time.Millisecond, cfg.Interaction.PollInterval)
	assert.Equal(t, 3, cfg.Interaction.RetryAttempts)
	assert.Equal(t, 5*time.Second, cfg.Interaction.RetryInterval)
}

func TestCustomTimeoutOverride(t *testing.T) {
	t.Run("valid override replaces the default", func(t *testing.T) {
		t.Setenv(CustomTimeoutEnv, "90")
		cfg := NewDefaultConfig()
		assert.Equal(t, 90*time.Second, cfg.Interaction.DefaultTimeout)
	})

	t.Run("whitespace is tolerated", func(t *testing.T) {
		t.Setenv(CustomTimeoutEnv, " 12 ")
		cfg := NewDefaultConfig()
		assert.Equal(t, 12*time.Second, cfg.Interaction.DefaultTimeout)
	})

	t.Run("malformed override is ignored", func(t *testing.T) {
		t.Setenv(CustomTimeoutEnv, "ninety")
		cfg := NewDefaultConfig()
		assert.Equal(t, 30*time.Second, cfg.Interaction.DefaultTimeout)
	})

	t.Run("non positive override is ignored", func(t *testing.T) {
		t.Setenv(CustomTimeoutEnv, "-5")
		cfg := NewDefaultConfig()
		assert.Equal(t, 30*time.Second, cfg.Interaction.DefaultTimeout)
	})
}

// -- Loader Tests --

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "handrail.yaml")
	content := []byte(`
logger:
  level: debug
browser:
  headless: false
  devtools_url: "ws://127.0.0.1:9222"
interaction:
  default_timeout: 45s
  retry_attempts: 5
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, "ws://127.0.0.1:9222", cfg.Browser.DevToolsURL)
	assert.Equal(t, 45*time.Second, cfg.Interaction.DefaultTimeout)
	assert.Equal(t, 5, cfg.Interaction.RetryAttempts)
	// Untouched values keep their defaults.
	assert.Equal(t, 400*time.Millisecond, cfg.Interaction.PollInterval)
}

func TestLoadMissingFileFallsBackToDefaults(t *testing.T) {
	// Point discovery at an empty directory so no config file is found.
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(cwd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, cfg.Interaction.DefaultTimeout)
}

// -- Validation Logic Tests --

func TestConfigValidation(t *testing.T) {
	base := NewDefaultConfig()

	err := base.Validate()
	assert.NoError(t, err, "default config must validate")

	badTimeout := *base
	badTimeout.Interaction.DefaultTimeout = 0
	err = badTimeout.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "default_timeout")

	badPoll := *base
	badPoll.Interaction.PollInterval = time.Minute
	err = badPoll.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "poll_interval")

	badAttempts := *base
	badAttempts.Interaction.RetryAttempts = 0
	err = badAttempts.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retry_attempts")

	badRate := *base
	badRate.Browser.CommandsPerSecond = -1
	err = badRate.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "commands_per_second")
}
