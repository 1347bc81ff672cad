package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sharesync/sharesync/internal/client/notify"
	"github.com/sharesync/sharesync/internal/sdk"
)

const testInterval = 5 * time.Millisecond

type fakeBackend struct {
	mu          sync.Mutex
	statusCalls map[string]int

	statusFn  func(id string, call int) (*sdk.SyncRecord, error)
	executeFn func(id, token string) (*sdk.ExecuteSyncResponse, error)
	cancelFn  func(id string) (*sdk.CancelSyncResponse, error)
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{statusCalls: make(map[string]int)}
}

func (f *fakeBackend) Status(ctx context.Context, id string) (*sdk.SyncRecord, error) {
	f.mu.Lock()
	f.statusCalls[id]++
	call := f.statusCalls[id]
	fn := f.statusFn
	f.mu.Unlock()

	if fn == nil {
		return syncingRecord(id), nil
	}
	return fn(id, call)
}

func (f *fakeBackend) Execute(ctx context.Context, id string, accessToken string) (*sdk.ExecuteSyncResponse, error) {
	if f.executeFn == nil {
		return &sdk.ExecuteSyncResponse{Status: true, SyncStatus: sdk.SyncStatusSyncing}, nil
	}
	return f.executeFn(id, accessToken)
}

func (f *fakeBackend) Cancel(ctx context.Context, id string) (*sdk.CancelSyncResponse, error) {
	if f.cancelFn == nil {
		return &sdk.CancelSyncResponse{Status: true, Message: "Sync cancelled"}, nil
	}
	return f.cancelFn(id)
}

func (f *fakeBackend) calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.statusCalls[id]
}

type fakeNotifier struct {
	mu     sync.Mutex
	toasts []notify.Toast
}

func (n *fakeNotifier) Notify(toast notify.Toast) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.toasts = append(n.toasts, toast)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.toasts)
}

func (n *fakeNotifier) all() []notify.Toast {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notify.Toast, len(n.toasts))
	copy(out, n.toasts)
	return out
}

func syncingRecord(id string) *sdk.SyncRecord {
	return &sdk.SyncRecord{ID: id, Name: "job-" + id, SyncStatus: sdk.SyncStatusSyncing}
}

func terminalRecord(id, status string, fileCount int64, syncError string) *sdk.SyncRecord {
	return &sdk.SyncRecord{
		ID:         id,
		Name:       "job-" + id,
		SyncStatus: status,
		FileCount:  fileCount,
		SyncError:  syncError,
	}
}

func newTestTracker(t *testing.T, api Backend) (*Tracker, *fakeNotifier) {
	t.Helper()
	notifier := &fakeNotifier{}
	tr := New(api, notifier, WithInterval(testInterval))
	t.Cleanup(tr.Stop)
	return tr, notifier
}

func TestStartPollingIdempotent(t *testing.T) {
	backend := newFakeBackend()
	tr, _ := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("a")})

	tr.StartPolling("a")
	tr.StartPolling("a")

	tr.mu.Lock()
	handles := len(tr.handles)
	gen := tr.handles["a"].gen
	tr.mu.Unlock()

	assert.Equal(t, 1, handles)
	assert.Equal(t, uint64(1), gen, "repeat starts must not replace the handle")
}

func TestPollStopsOnSynced(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		if call == 1 {
			return syncingRecord(id), nil
		}
		return terminalRecord(id, sdk.SyncStatusSynced, 42, ""), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("a")})

	require.Eventually(t, func() bool {
		job, ok := tr.Job("a")
		return ok && job.Status == StatusSynced
	}, 2*time.Second, time.Millisecond)

	job, _ := tr.Job("a")
	assert.Equal(t, int64(42), job.FileCount)
	assert.False(t, tr.IsPolling("a"))
	assert.Equal(t, 0, tr.SyncingCount())

	require.Equal(t, 1, notifier.count())
	toast := notifier.all()[0]
	assert.Equal(t, notify.LevelSuccess, toast.Level)
	assert.Contains(t, toast.Message, "42")

	// no further network calls once terminal
	calls := backend.calls("a")
	time.Sleep(10 * testInterval)
	assert.Equal(t, calls, backend.calls("a"))
	assert.Equal(t, 1, notifier.count(), "exactly one toast per terminal transition")
}

func TestPollStopsOnError(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		return terminalRecord(id, sdk.SyncStatusError, 0, "quota exceeded"), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("b")})

	require.Eventually(t, func() bool { return notifier.count() == 1 }, 2*time.Second, time.Millisecond)

	toast := notifier.all()[0]
	assert.Equal(t, notify.LevelError, toast.Level)
	assert.Contains(t, toast.Message, "quota exceeded")
	assert.False(t, tr.IsPolling("b"))

	job, _ := tr.Job("b")
	assert.Equal(t, StatusError, job.Status)
}

func TestErrorToastFallbackMessage(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		return terminalRecord(id, sdk.SyncStatusError, 0, ""), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("b")})

	require.Eventually(t, func() bool { return notifier.count() == 1 }, 2*time.Second, time.Millisecond)
	assert.Contains(t, notifier.all()[0].Message, "Unknown error")
}

func TestTransientFailureKeepsPolling(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		if call <= 2 {
			return nil, errors.New("connection refused")
		}
		return terminalRecord(id, sdk.SyncStatusSynced, 7, ""), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("c")})

	require.Eventually(t, func() bool {
		job, ok := tr.Job("c")
		return ok && job.Status == StatusSynced
	}, 2*time.Second, time.Millisecond)

	assert.GreaterOrEqual(t, backend.calls("c"), 3, "failed ticks must be retried")
	assert.Equal(t, 1, notifier.count(), "transient failures emit no toast")
}

func TestResumeOnLoadOnlyPollsSyncing(t *testing.T) {
	backend := newFakeBackend()
	tr, _ := newTestTracker(t, backend)

	idle := &sdk.SyncRecord{ID: "idle", Name: "job-idle", SyncStatus: sdk.SyncStatusIdle}
	tr.ResumeOnLoad([]*sdk.SyncRecord{idle, syncingRecord("live")})

	assert.False(t, tr.IsPolling("idle"))
	assert.True(t, tr.IsPolling("live"))

	time.Sleep(5 * testInterval)
	assert.Zero(t, backend.calls("idle"))
	assert.Greater(t, backend.calls("live"), 0)
}

func TestExecuteSyncOptimisticUpdate(t *testing.T) {
	backend := newFakeBackend()
	tr, _ := newTestTracker(t, backend)

	tr.AddJob(&sdk.SyncRecord{ID: "x", Name: "job-x", SyncStatus: sdk.SyncStatusIdle})

	require.NoError(t, tr.ExecuteSync(context.Background(), "x", "token"))

	// marked syncing before any poll confirms it
	job, ok := tr.Job("x")
	require.True(t, ok)
	assert.Equal(t, StatusSyncing, job.Status)
	assert.True(t, tr.IsPolling("x"))
	assert.Equal(t, 1, tr.SyncingCount())

	assert.ErrorIs(t, tr.ExecuteSync(context.Background(), "x", "token"), ErrAlreadySyncing)
}

func TestExecuteSyncRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.executeFn = func(id, token string) (*sdk.ExecuteSyncResponse, error) {
		return &sdk.ExecuteSyncResponse{Status: false, Message: "knowledge base not found"}, nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.AddJob(&sdk.SyncRecord{ID: "x", Name: "job-x", SyncStatus: sdk.SyncStatusIdle})

	err := tr.ExecuteSync(context.Background(), "x", "token")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "knowledge base not found")

	job, _ := tr.Job("x")
	assert.Equal(t, StatusIdle, job.Status, "rejected execute must not mark the job syncing")
	assert.False(t, tr.IsPolling("x"))
	require.Equal(t, 1, notifier.count())
	assert.Equal(t, notify.LevelError, notifier.all()[0].Level)
}

func TestExecuteSyncTransportError(t *testing.T) {
	backend := newFakeBackend()
	backend.executeFn = func(id, token string) (*sdk.ExecuteSyncResponse, error) {
		return nil, errors.New("dial tcp: connection refused")
	}
	tr, notifier := newTestTracker(t, backend)

	tr.AddJob(&sdk.SyncRecord{ID: "x", Name: "job-x", SyncStatus: sdk.SyncStatusIdle})

	require.Error(t, tr.ExecuteSync(context.Background(), "x", "token"))
	assert.False(t, tr.IsPolling("x"))
	assert.Equal(t, 1, notifier.count())
}

func TestExecuteSyncUnknownJob(t *testing.T) {
	tr, _ := newTestTracker(t, newFakeBackend())
	assert.ErrorIs(t, tr.ExecuteSync(context.Background(), "nope", "token"), ErrUnknownJob)
}

func TestStaleResponseDropped(t *testing.T) {
	backend := newFakeBackend()
	// never reach a tick on our own; drive applyStatus by hand
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		return syncingRecord(id), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("a")})

	tr.mu.Lock()
	gen := tr.handles["a"].gen
	tr.mu.Unlock()

	// response from an older handle generation is ignored
	done := tr.applyStatus("a", gen+1, terminalRecord("a", sdk.SyncStatusSynced, 9, ""))
	assert.True(t, done)
	job, _ := tr.Job("a")
	assert.Equal(t, StatusSyncing, job.Status)
	assert.Equal(t, 0, notifier.count())

	// response arriving after StopPolling is ignored too
	tr.StopPolling("a")
	done = tr.applyStatus("a", gen, terminalRecord("a", sdk.SyncStatusSynced, 9, ""))
	assert.True(t, done)
	assert.Equal(t, 0, notifier.count())
}

func TestSingleToastWhenResponsesRace(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		return syncingRecord(id), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("a")})

	tr.mu.Lock()
	gen := tr.handles["a"].gen
	tr.mu.Unlock()

	record := terminalRecord("a", sdk.SyncStatusSynced, 3, "")
	assert.True(t, tr.applyStatus("a", gen, record))
	assert.True(t, tr.applyStatus("a", gen, record))

	assert.Equal(t, 1, notifier.count())
}

func TestCancelledStatusStopsPollingWithWarning(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		if call == 1 {
			return syncingRecord(id), nil
		}
		return terminalRecord(id, sdk.SyncStatusCancelled, 0, "Sync was cancelled by user"), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("a")})

	require.Eventually(t, func() bool { return notifier.count() == 1 }, 2*time.Second, time.Millisecond)
	assert.Equal(t, notify.LevelWarning, notifier.all()[0].Level)
	assert.False(t, tr.IsPolling("a"))
}

func TestTokenExpiredStopsPollingWithReauthToast(t *testing.T) {
	backend := newFakeBackend()
	backend.statusFn = func(id string, call int) (*sdk.SyncRecord, error) {
		return terminalRecord(id, sdk.SyncStatusTokenExpired, 0, ""), nil
	}
	tr, notifier := newTestTracker(t, backend)

	tr.ResumeOnLoad([]*sdk.SyncRecord{syncingRecord("a")})

	require.Eventually(t, func() bool { return notifier.count() == 1 }, 2*time.Second, time.Millisecond)
	toast := notifier.all()[0]
	assert.Equal(t, notify.LevelError, toast.Level)
	assert.Contains(t, toast.Message, "expired")
	assert.False(t, tr.IsPolling("a"))
}

func TestCancelSyncRejected(t *testing.T) {
	backend := newFakeBackend()
	backend.cancelFn = func(id string) (*sdk.CancelSyncResponse, error) {
		return &sdk.CancelSyncResponse{Status: false, Message: "Sync is not running"}, nil
	}
	tr, _ := newTestTracker(t, backend)

	err := tr.CancelSync(context.Background(), "a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Sync is not running")
}

func TestStopCancelsAllHandles(t *testing.T) {
	backend := newFakeBackend()
	notifier := &fakeNotifier{}
	tr := New(backend, notifier, WithInterval(testInterval))

	tr.ResumeOnLoad([]*sdk.SyncRecord{
		syncingRecord("a"),
		syncingRecord("b"),
		syncingRecord("c"),
	})

	require.Eventually(t, func() bool {
		return backend.calls("a") > 0 && backend.calls("b") > 0 && backend.calls("c") > 0
	}, 2*time.Second, time.Millisecond)

	tr.Stop()

	tr.mu.Lock()
	handles := len(tr.handles)
	tr.mu.Unlock()
	assert.Zero(t, handles)

	a, b, c := backend.calls("a"), backend.calls("b"), backend.calls("c")
	time.Sleep(10 * testInterval)
	assert.Equal(t, a, backend.calls("a"))
	assert.Equal(t, b, backend.calls("b"))
	assert.Equal(t, c, backend.calls("c"))

	assert.ErrorIs(t, tr.ExecuteSync(context.Background(), "a", "token"), ErrStopped)
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusSyncing.Terminal())
	for _, s := range []Status{StatusIdle, StatusSynced, StatusError, StatusCancelled, StatusTokenExpired} {
		assert.True(t, s.Terminal(), string(s))
	}
}

func TestApplyReplacesLogsWholesale(t *testing.T) {
	job := JobFromRecord(&sdk.SyncRecord{
		ID:         "a",
		SyncStatus: sdk.SyncStatusSyncing,
		SyncLogs: []sdk.LogEntry{
			{Timestamp: 1, Level: sdk.LogLevelInfo, Message: "Sync started"},
			{Timestamp: 2, Level: sdk.LogLevelSkip, Message: "Skipped (unchanged)", FileName: "a.pdf"},
		},
	})
	require.Len(t, job.Logs, 2)

	job.apply(&sdk.SyncRecord{
		SyncStatus: sdk.SyncStatusSynced,
		FileCount:  1,
		SyncLogs: []sdk.LogEntry{
			{Timestamp: 3, Level: sdk.LogLevelSuccess, Message: "Synced successfully", FileName: "b.pdf"},
		},
	})

	require.Len(t, job.Logs, 1, "poll replaces the full log list, no partial merge")
	assert.Equal(t, "b.pdf", job.Logs[0].FileName)
	assert.Equal(t, StatusSynced, job.Status)
}
