// Package tracker maintains a near-real-time view of in-flight sync jobs by
// polling the backend status endpoint, and notifies the user exactly once
// per terminal transition.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/dustin/go-humanize"

	"github.com/sharesync/sharesync/internal/client/history"
	"github.com/sharesync/sharesync/internal/client/notify"
	"github.com/sharesync/sharesync/internal/sdk"
)

const DefaultPollInterval = 3 * time.Second

var (
	ErrAlreadySyncing = errors.New("tracker: sync already in progress")
	ErrUnknownJob     = errors.New("tracker: unknown sync id")
	ErrStopped        = errors.New("tracker: stopped")
)

// Backend is the slice of the sync API the tracker needs.
type Backend interface {
	Status(ctx context.Context, id string) (*sdk.SyncRecord, error)
	Execute(ctx context.Context, id string, accessToken string) (*sdk.ExecuteSyncResponse, error)
	Cancel(ctx context.Context, id string) (*sdk.CancelSyncResponse, error)
}

// pollHandle is the live timer for one job id. At most one exists per id;
// gen distinguishes it from earlier handles for the same id so a response
// that resolves after StopPolling can be dropped.
type pollHandle struct {
	gen    uint64
	cancel context.CancelFunc
}

type Tracker struct {
	api      Backend
	notifier notify.Notifier
	journal  *history.Journal
	interval time.Duration

	rootCtx context.Context
	stop    context.CancelFunc

	mu      sync.Mutex
	jobs    map[string]*SyncJob
	handles map[string]*pollHandle
	syncing mapset.Set[string]
	gen     uint64

	wg sync.WaitGroup
}

type Option func(*Tracker)

// WithInterval overrides the poll interval.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithHistory records terminal transitions to a local journal.
func WithHistory(journal *history.Journal) Option {
	return func(t *Tracker) {
		t.journal = journal
	}
}

func New(api Backend, notifier notify.Notifier, opts ...Option) *Tracker {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Tracker{
		api:      api,
		notifier: notifier,
		interval: DefaultPollInterval,
		rootCtx:  ctx,
		stop:     cancel,
		jobs:     make(map[string]*SyncJob),
		handles:  make(map[string]*pollHandle),
		syncing:  mapset.NewSet[string](),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ResumeOnLoad seeds the tracker with the server's job list and immediately
// begins polling every job the server already reports as syncing, so a
// reload can never leave a stale "syncing" badge behind.
func (t *Tracker) ResumeOnLoad(records []*sdk.SyncRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, record := range records {
		job := JobFromRecord(record)
		t.jobs[job.ID] = job
		if job.Status == StatusSyncing {
			slog.Info("resuming sync poll", "sync_id", job.ID, "name", job.Name)
			t.syncing.Add(job.ID)
			t.startPollingLocked(job.ID)
		}
	}
}

// StartPolling registers a recurring status check for the job. Idempotent:
// a job that already has a live handle is left alone.
func (t *Tracker) StartPolling(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.startPollingLocked(id)
}

func (t *Tracker) startPollingLocked(id string) {
	if _, ok := t.handles[id]; ok {
		return
	}

	t.gen++
	gen := t.gen
	ctx, cancel := context.WithCancel(t.rootCtx)
	t.handles[id] = &pollHandle{gen: gen, cancel: cancel}

	t.wg.Add(1)
	go t.pollLoop(ctx, id, gen)
}

// StopPolling cancels and removes the job's poll handle. No-op if none
// exists.
func (t *Tracker) StopPolling(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopPollingLocked(id)
}

func (t *Tracker) stopPollingLocked(id string) {
	if handle, ok := t.handles[id]; ok {
		handle.cancel()
		delete(t.handles, id)
	}
}

// pollLoop drives the status checks for one handle. A timer (not a ticker)
// is reset only after each tick completes, so a slow fetch can never
// overlap the next tick for the same id.
func (t *Tracker) pollLoop(ctx context.Context, id string, gen uint64) {
	defer t.wg.Done()

	timer := time.NewTimer(t.interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			if done := t.pollOnce(ctx, id, gen); done {
				return
			}
			timer.Reset(t.interval)
		}
	}
}

// pollOnce fetches the job's status and reconciles it. Returns true when
// polling for this handle should stop.
func (t *Tracker) pollOnce(ctx context.Context, id string, gen uint64) bool {
	record, err := t.api.Status(ctx, id)
	if err != nil {
		if ctx.Err() != nil {
			return true
		}
		// transient: keep the job's state, retry on the next tick
		slog.Warn("sync status poll failed", "sync_id", id, "error", err)
		return false
	}

	return t.applyStatus(id, gen, record)
}

// applyStatus merges a status response into local state. Responses that
// arrive after the handle was released (or replaced by a newer one) are
// dropped, so a stopped timer's stale update cannot resurrect a job.
func (t *Tracker) applyStatus(id string, gen uint64, record *sdk.SyncRecord) bool {
	t.mu.Lock()

	handle, ok := t.handles[id]
	if !ok || handle.gen != gen {
		t.mu.Unlock()
		return true
	}

	job, ok := t.jobs[id]
	if !ok {
		job = JobFromRecord(record)
		t.jobs[id] = job
	} else {
		job.apply(record)
	}

	if !job.Status.Terminal() {
		t.mu.Unlock()
		return false
	}

	// Terminal transition. Handle release, syncing-set removal, and the
	// snapshot for the toast all happen in one critical section so a racing
	// response cannot emit a second notification.
	delete(t.handles, id)
	handle.cancel()
	t.syncing.Remove(id)
	final := job.clone()
	t.mu.Unlock()

	t.notifyTerminal(final)
	t.recordTerminal(final)
	return true
}

func (t *Tracker) notifyTerminal(job *SyncJob) {
	switch job.Status {
	case StatusSynced:
		t.notifier.Notify(notify.NewToast(notify.LevelSuccess,
			fmt.Sprintf("%s: sync complete, %s files", job.Name, humanize.Comma(job.FileCount))))
	case StatusCancelled:
		t.notifier.Notify(notify.NewToast(notify.LevelWarning,
			fmt.Sprintf("%s: sync cancelled", job.Name)))
	case StatusTokenExpired:
		t.notifier.Notify(notify.NewToast(notify.LevelError,
			fmt.Sprintf("%s: SharePoint session expired, sign in again and retry", job.Name)))
	default:
		t.notifier.Notify(notify.NewToast(notify.LevelError,
			fmt.Sprintf("%s: sync failed: %s", job.Name, errorMessage(job))))
	}
}

func (t *Tracker) recordTerminal(job *SyncJob) {
	if t.journal == nil {
		return
	}
	err := t.journal.Record(&history.Entry{
		SyncID:    job.ID,
		Name:      job.Name,
		Status:    string(job.Status),
		FileCount: job.FileCount,
		Error:     job.Error,
	})
	if err != nil {
		slog.Error("failed to record sync history", "sync_id", job.ID, "error", err)
	}
}

// ExecuteSync triggers a new run and starts polling on acceptance. The
// local "syncing" mark is optimistic; the next poll is authoritative.
func (t *Tracker) ExecuteSync(ctx context.Context, id string, accessToken string) error {
	if err := t.rootCtx.Err(); err != nil {
		return ErrStopped
	}

	t.mu.Lock()
	job, ok := t.jobs[id]
	if !ok {
		t.mu.Unlock()
		return ErrUnknownJob
	}
	if _, polling := t.handles[id]; polling {
		t.mu.Unlock()
		return ErrAlreadySyncing
	}
	name := job.Name
	t.mu.Unlock()

	resp, err := t.api.Execute(ctx, id, accessToken)
	if err != nil {
		t.notifier.Notify(notify.NewToast(notify.LevelError,
			fmt.Sprintf("%s: failed to start sync: %s", name, err)))
		return err
	}
	if !resp.Status {
		message := resp.Message
		if message == "" {
			message = "Unknown error"
		}
		t.notifier.Notify(notify.NewToast(notify.LevelError,
			fmt.Sprintf("%s: failed to start sync: %s", name, message)))
		return fmt.Errorf("tracker: execute rejected: %s", message)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if job, ok := t.jobs[id]; ok {
		job.Status = StatusSyncing
		job.Error = ""
		job.Progress = 0
		job.Total = 0
	}
	t.syncing.Add(id)
	t.startPollingLocked(id)
	return nil
}

// CancelSync asks the server to cancel a running sync. Polling continues
// until a status response reports the terminal state.
func (t *Tracker) CancelSync(ctx context.Context, id string) error {
	resp, err := t.api.Cancel(ctx, id)
	if err != nil {
		return err
	}
	if !resp.Status {
		message := resp.Message
		if message == "" {
			message = "Unknown error"
		}
		return fmt.Errorf("tracker: cancel rejected: %s", message)
	}
	return nil
}

// AddJob registers (or replaces) a job in the local cache without starting
// a poll. Used after a create call.
func (t *Tracker) AddJob(record *sdk.SyncRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.jobs[record.ID] = JobFromRecord(record)
}

// RemoveJob stops any poll for the id and drops it from the cache.
func (t *Tracker) RemoveJob(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopPollingLocked(id)
	t.syncing.Remove(id)
	delete(t.jobs, id)
}

// Job returns a copy of the cached job.
func (t *Tracker) Job(id string) (*SyncJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[id]
	if !ok {
		return nil, false
	}
	return job.clone(), true
}

// Jobs returns copies of all cached jobs.
func (t *Tracker) Jobs() []*SyncJob {
	t.mu.Lock()
	defer t.mu.Unlock()
	jobs := make([]*SyncJob, 0, len(t.jobs))
	for _, job := range t.jobs {
		jobs = append(jobs, job.clone())
	}
	return jobs
}

// IsPolling reports whether the job has a live poll handle.
func (t *Tracker) IsPolling(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.handles[id]
	return ok
}

// SyncingCount returns the number of jobs currently marked syncing.
func (t *Tracker) SyncingCount() int {
	return t.syncing.Cardinality()
}

// Stop cancels every active poll handle and waits for the loops to exit.
// Must be called when the tracking context is torn down.
func (t *Tracker) Stop() {
	t.stop()

	t.mu.Lock()
	for id, handle := range t.handles {
		handle.cancel()
		delete(t.handles, id)
	}
	t.mu.Unlock()

	t.wg.Wait()
	slog.Debug("tracker stopped")
}

func errorMessage(job *SyncJob) string {
	if job.Error != "" {
		return job.Error
	}
	return "Unknown error"
}
