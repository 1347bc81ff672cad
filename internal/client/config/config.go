// Package config holds the on-disk client configuration.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/sharesync/sharesync/internal/utils"
)

var (
	home, _             = os.UserHomeDir()
	DefaultDataDir      = filepath.Join(home, ".sharesync")
	DefaultConfigPath   = filepath.Join(home, ".sharesync", "config.json")
	DefaultLogFilePath  = filepath.Join(home, ".sharesync", "logs", "sharesync.log")
	DefaultServerURL    = "http://localhost:8080"
	DefaultHTTPAddr     = "localhost:7438"
	DefaultPollInterval = 3 * time.Second
)

type Config struct {
	DataDir   string `json:"data_dir"`
	ServerURL string `json:"server_url"`
	APIToken  string `json:"api_token"`

	// HTTPAddr is the local control plane listen address.
	HTTPAddr string `json:"http_addr"`
	// HTTPToken guards the local control plane. Empty disables auth.
	HTTPToken string `json:"http_token,omitempty"`

	// PollIntervalMs overrides the status poll cadence. Zero means default.
	PollIntervalMs int `json:"poll_interval_ms,omitempty"`

	Path string `json:"-"`
}

// Validate normalizes paths and fills defaults. Must be called before the
// config is handed to the daemon.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
	dataDir, err := utils.ResolvePath(c.DataDir)
	if err != nil {
		return fmt.Errorf("data dir: %w", err)
	}
	c.DataDir = dataDir

	if c.Path != "" {
		path, err := utils.ResolvePath(c.Path)
		if err != nil {
			return fmt.Errorf("config path: %w", err)
		}
		c.Path = path
	}

	if c.ServerURL == "" {
		c.ServerURL = DefaultServerURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerURL)
	}

	if c.HTTPAddr == "" {
		c.HTTPAddr = DefaultHTTPAddr
	}
	if c.PollIntervalMs < 0 {
		return fmt.Errorf("invalid poll interval %dms", c.PollIntervalMs)
	}
	return nil
}

// PollInterval returns the configured poll cadence.
func (c *Config) PollInterval() time.Duration {
	if c.PollIntervalMs > 0 {
		return time.Duration(c.PollIntervalMs) * time.Millisecond
	}
	return DefaultPollInterval
}

// HistoryDBPath is where the local sync history journal lives.
func (c *Config) HistoryDBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// LockFilePath is the single-instance lock for the daemon.
func (c *Config) LockFilePath() string {
	return filepath.Join(c.DataDir, "sharesync.lock")
}

func (c *Config) Save() error {
	if c.Path == "" {
		c.Path = DefaultConfigPath
	}
	if err := utils.EnsureParent(c.Path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(c.Path, data, 0644)
}

func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
