package sdk

// Sync status values reported by the server. The client treats anything
// other than "syncing" as terminal.
const (
	SyncStatusIdle         = "idle"
	SyncStatusSyncing      = "syncing"
	SyncStatusSynced       = "synced"
	SyncStatusError        = "error"
	SyncStatusCancelled    = "cancelled"
	SyncStatusTokenExpired = "token_expired"
)

// Log levels emitted by the server-side sync worker.
const (
	LogLevelInfo    = "info"
	LogLevelSuccess = "success"
	LogLevelError   = "error"
	LogLevelSkip    = "skip"
	LogLevelWarning = "warning"
)

// LogEntry is one line of a sync run's log. Entries are immutable and
// appended only by the server; the server returns the full list (capped at
// 100) with every status response.
type LogEntry struct {
	Timestamp int64  `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	FileName  string `json:"file_name,omitempty"`
}

// SyncRecord mirrors the server-side sync job record. The server is the
// source of truth; the client holds an eventually-consistent copy.
type SyncRecord struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name"`
	KnowledgeID string `json:"knowledge_id"`

	DriveID    string `json:"drive_id"`
	ItemID     string `json:"item_id"`
	FolderPath string `json:"folder_path"`
	Endpoint   string `json:"sharepoint_endpoint"`

	LastSyncAt   *int64     `json:"last_sync_at"`
	FileCount    int64      `json:"file_count"`
	SyncStatus   string     `json:"sync_status"`
	SyncError    string     `json:"sync_error,omitempty"`
	SyncLogs     []LogEntry `json:"sync_logs,omitempty"`
	SyncProgress int64      `json:"sync_progress"`
	SyncTotal    int64      `json:"sync_total"`

	CreatedAt int64 `json:"created_at,omitempty"`
	UpdatedAt int64 `json:"updated_at,omitempty"`
}

type CreateSyncRequest struct {
	Name        string `json:"name"`
	KnowledgeID string `json:"knowledge_id"`
	DriveID     string `json:"drive_id"`
	ItemID      string `json:"item_id"`
	FolderPath  string `json:"folder_path"`
	Endpoint    string `json:"endpoint"`
}

type UpdateSyncRequest struct {
	Name          *string        `json:"name,omitempty"`
	AccessControl map[string]any `json:"access_control,omitempty"`
}

type ExecuteSyncRequest struct {
	AccessToken string `json:"access_token"`
}

type ExecuteSyncResponse struct {
	Status     bool   `json:"status"`
	Message    string `json:"message"`
	SyncStatus string `json:"sync_status"`
}

type CancelSyncResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

type DeleteSyncResponse struct {
	Status bool `json:"status"`
}

type ListFolderRequest struct {
	AccessToken string `json:"access_token"`
	Endpoint    string `json:"endpoint"`
	DriveID     string `json:"drive_id"`
	ItemID      string `json:"item_id"`
}

// FolderFile is one file in a SharePoint folder preview.
type FolderFile struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModifiedDateTime"`
	MimeType     string `json:"mimeType"`
	ParentPath   string `json:"parentPath"`
}

type ListFolderResponse struct {
	Files []FolderFile `json:"files"`
	Count int          `json:"count"`
}
