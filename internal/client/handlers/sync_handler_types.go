package handlers

import (
	"github.com/sharesync/sharesync/internal/client/tracker"
	"github.com/sharesync/sharesync/internal/sdk"
)

type SyncListResponse struct {
	Syncs []*tracker.SyncJob `json:"syncs"`
}

type SyncStatusResponse struct {
	Sync    *tracker.SyncJob `json:"sync"`
	Polling bool             `json:"polling"`
}

type ExecuteSyncRequest struct {
	AccessToken string `json:"access_token" binding:"required"`
}

type ExecuteSyncResponse struct {
	Code       string `json:"code"`
	SyncStatus string `json:"sync_status"`
	Message    string `json:"message,omitempty"`
}

type SyncLogsResponse struct {
	Logs []sdk.LogEntry `json:"logs"`
}

type ListFolderRequest struct {
	DriveID     string `json:"drive_id" binding:"required"`
	ItemID      string `json:"item_id" binding:"required"`
	Endpoint    string `json:"endpoint"`
	AccessToken string `json:"access_token" binding:"required"`
}

type ListFolderResponse struct {
	Files []sdk.FolderFile `json:"files"`
}
