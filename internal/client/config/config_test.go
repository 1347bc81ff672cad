package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_Validate_NormalizesAndDefaults(t *testing.T) {
	tmp := t.TempDir()
	cfg := &Config{
		DataDir:  tmp,
		APIToken: "tok",
		Path:     filepath.Join(tmp, "config.json"),
	}

	require.NoError(t, cfg.Validate())
	assert.True(t, filepath.IsAbs(cfg.DataDir))
	assert.Equal(t, DefaultServerURL, cfg.ServerURL)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, DefaultPollInterval, cfg.PollInterval())
}

func TestConfig_Validate_ErrorsOnInvalidInputs(t *testing.T) {
	tmp := t.TempDir()

	t.Run("bad server url", func(t *testing.T) {
		cfg := &Config{
			DataDir:   tmp,
			ServerURL: "ftp://bad.example.com",
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "server url")
	})

	t.Run("negative poll interval", func(t *testing.T) {
		cfg := &Config{
			DataDir:        tmp,
			ServerURL:      "http://127.0.0.1:8080",
			PollIntervalMs: -1,
		}
		err := cfg.Validate()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "poll interval")
	})
}

func TestConfig_PollInterval_Override(t *testing.T) {
	cfg := &Config{PollIntervalMs: 500}
	assert.Equal(t, 500*time.Millisecond, cfg.PollInterval())
}

func TestConfig_SaveAndLoad_Roundtrip(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.json")

	cfg := &Config{
		DataDir:        tmp,
		ServerURL:      "http://127.0.0.1:8080",
		APIToken:       "tok",
		HTTPAddr:       "localhost:9999",
		HTTPToken:      "ctl-tok",
		PollIntervalMs: 1500,
		Path:           path,
	}

	require.NoError(t, cfg.Validate())
	require.NoError(t, cfg.Save())

	loaded, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, cfg.DataDir, loaded.DataDir)
	assert.Equal(t, cfg.ServerURL, loaded.ServerURL)
	assert.Equal(t, cfg.APIToken, loaded.APIToken)
	assert.Equal(t, cfg.HTTPAddr, loaded.HTTPAddr)
	assert.Equal(t, cfg.HTTPToken, loaded.HTTPToken)
	assert.Equal(t, 1500*time.Millisecond, loaded.PollInterval())
	assert.Equal(t, path, loaded.Path)
	assert.Equal(t, filepath.Join(tmp, "history.db"), loaded.HistoryDBPath())
}
