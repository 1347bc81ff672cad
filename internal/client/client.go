package client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sharesync/sharesync/internal/client/config"
	"github.com/sharesync/sharesync/internal/client/history"
	"github.com/sharesync/sharesync/internal/client/notify"
	"github.com/sharesync/sharesync/internal/client/tracker"
	"github.com/sharesync/sharesync/internal/sdk"
)

// Client owns the backend session and the sync tracking state for one user.
type Client struct {
	config  *config.Config
	sdk     *sdk.Client
	center  *notify.Center
	journal *history.Journal
	tracker *tracker.Tracker
}

func New(cfg *config.Config) (*Client, error) {
	api, err := sdk.New(cfg.ServerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create sdk: %w", err)
	}
	if cfg.APIToken != "" {
		api.SetToken(cfg.APIToken)
	}

	journal, err := history.Open(cfg.HistoryDBPath())
	if err != nil {
		return nil, fmt.Errorf("failed to open history journal: %w", err)
	}

	center := notify.NewCenter()
	trk := tracker.New(api.Sync, center,
		tracker.WithInterval(cfg.PollInterval()),
		tracker.WithHistory(journal),
	)

	return &Client{
		config:  cfg,
		sdk:     api,
		center:  center,
		journal: journal,
		tracker: trk,
	}, nil
}

// Start loads the server's sync list, resumes polling for anything already
// in flight, and blocks until the context is cancelled.
func (c *Client) Start(ctx context.Context) error {
	slog.Info("sharesync client start", "datadir", c.config.DataDir, "server", c.config.ServerURL)

	records, err := c.sdk.Sync.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sync list: %w", err)
	}
	slog.Info("loaded sync list", "count", len(records))
	c.tracker.ResumeOnLoad(records)

	<-ctx.Done()

	c.tracker.Stop()
	c.sdk.Close()
	if err := c.journal.Close(); err != nil {
		slog.Error("failed to close history journal", "error", err)
	}
	slog.Info("sharesync client stop")
	return nil
}

func (c *Client) Tracker() *tracker.Tracker {
	return c.tracker
}

func (c *Client) Notifications() *notify.Center {
	return c.center
}

func (c *Client) Journal() *history.Journal {
	return c.journal
}

func (c *Client) SDK() *sdk.Client {
	return c.sdk
}

func (c *Client) Config() *config.Config {
	return c.config
}
