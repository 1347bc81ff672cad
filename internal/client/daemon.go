package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/sharesync/sharesync/internal/client/config"
	"github.com/sharesync/sharesync/internal/utils"
)

var ErrAlreadyRunning = errors.New("another sharesync daemon is already running")

// Daemon runs the sync client and its local control plane as one unit,
// guarded by a file lock so only one instance tracks a data dir at a time.
type Daemon struct {
	client *Client
	cps    *ControlPlaneServer
	lock   *flock.Flock
}

func NewDaemon(cfg *config.Config, cpConfig *ControlPlaneConfig) (*Daemon, error) {
	client, err := New(cfg)
	if err != nil {
		return nil, err
	}

	cps, err := NewControlPlaneServer(cpConfig, client)
	if err != nil {
		return nil, err
	}

	return &Daemon{
		client: client,
		cps:    cps,
		lock:   flock.New(cfg.LockFilePath()),
	}, nil
}

func (d *Daemon) Start(ctx context.Context) error {
	slog.Info("daemon start")

	if err := utils.EnsureParent(d.lock.Path()); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}
	locked, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire daemon lock: %w", err)
	}
	if !locked {
		return ErrAlreadyRunning
	}
	defer d.releaseLock()

	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		if err := d.client.Start(egCtx); err != nil {
			return fmt.Errorf("failed to start client: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		if err := d.cps.Start(egCtx); err != nil {
			return fmt.Errorf("failed to start control plane: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egCtx.Done()
		slog.Info("received interrupt signal, stopping daemon")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return d.cps.Stop(shutdownCtx)
	})

	if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("daemon failure", "error", err)
		return err
	}

	slog.Info("daemon stopped")
	return nil
}

func (d *Daemon) releaseLock() {
	if !d.lock.Locked() {
		return
	}
	if err := d.lock.Unlock(); err != nil {
		slog.Error("failed to release daemon lock", "error", err)
	}
}
