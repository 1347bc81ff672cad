package tracker

import "github.com/sharesync/sharesync/internal/sdk"

// Status of a sync job as reported by the server.
type Status string

const (
	StatusIdle         Status = sdk.SyncStatusIdle
	StatusSyncing      Status = sdk.SyncStatusSyncing
	StatusSynced       Status = sdk.SyncStatusSynced
	StatusError        Status = sdk.SyncStatusError
	StatusCancelled    Status = sdk.SyncStatusCancelled
	StatusTokenExpired Status = sdk.SyncStatusTokenExpired
)

// Terminal reports whether polling stops at this status. Any status other
// than "syncing" halts the poll loop until the job is re-executed.
func (s Status) Terminal() bool {
	return s != StatusSyncing
}

// SyncJob is the tracker's cached view of a server-side sync record.
// The server is authoritative; every poll replaces these fields wholesale.
type SyncJob struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	KnowledgeID string `json:"knowledge_id"`

	DriveID    string `json:"drive_id"`
	ItemID     string `json:"item_id"`
	FolderPath string `json:"folder_path"`
	Endpoint   string `json:"endpoint"`

	Status     Status         `json:"status"`
	FileCount  int64          `json:"file_count"`
	LastSyncAt *int64         `json:"last_sync_at"`
	Error      string         `json:"error,omitempty"`
	Progress   int64          `json:"progress"`
	Total      int64          `json:"total"`
	Logs       []sdk.LogEntry `json:"logs,omitempty"`
}

// JobFromRecord builds a tracker job from a server record.
func JobFromRecord(record *sdk.SyncRecord) *SyncJob {
	job := &SyncJob{
		ID:          record.ID,
		Name:        record.Name,
		KnowledgeID: record.KnowledgeID,
		DriveID:     record.DriveID,
		ItemID:      record.ItemID,
		FolderPath:  record.FolderPath,
		Endpoint:    record.Endpoint,
	}
	job.apply(record)
	return job
}

// apply merges a status response into the job. Last write wins; the log
// list is replaced, never appended to.
func (j *SyncJob) apply(record *sdk.SyncRecord) {
	j.Status = Status(record.SyncStatus)
	j.FileCount = record.FileCount
	j.LastSyncAt = record.LastSyncAt
	j.Error = record.SyncError
	j.Progress = record.SyncProgress
	j.Total = record.SyncTotal
	j.Logs = record.SyncLogs
}

func (j *SyncJob) clone() *SyncJob {
	c := *j
	if j.Logs != nil {
		c.Logs = make([]sdk.LogEntry, len(j.Logs))
		copy(c.Logs, j.Logs)
	}
	return &c
}
