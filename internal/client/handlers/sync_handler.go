package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharesync/sharesync/internal/client/tracker"
	"github.com/sharesync/sharesync/internal/sdk"
)

// SyncHandler exposes the sync job lifecycle over the control plane. Reads
// come from the tracker's cache; mutations go to the backend and the cache
// is reconciled afterwards.
type SyncHandler struct {
	api     *sdk.SyncAPI
	tracker *tracker.Tracker
}

func NewSyncHandler(api *sdk.SyncAPI, trk *tracker.Tracker) *SyncHandler {
	return &SyncHandler{api: api, tracker: trk}
}

// List returns all known sync jobs from the local cache.
func (h *SyncHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, SyncListResponse{Syncs: h.tracker.Jobs()})
}

// Get returns a single cached sync job.
func (h *SyncHandler) Get(c *gin.Context) {
	id := c.Param("id")
	job, ok := h.tracker.Job(id)
	if !ok {
		AbortWithError(c, http.StatusNotFound, ErrCodeSyncNotFound, errors.New("unknown sync id"))
		return
	}
	c.JSON(http.StatusOK, SyncStatusResponse{Sync: job, Polling: h.tracker.IsPolling(id)})
}

// Create registers a new sync configuration on the backend and caches it.
func (h *SyncHandler) Create(c *gin.Context) {
	var req sdk.CreateSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	record, err := h.api.Create(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, sdk.ErrMissingField) {
			AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
			return
		}
		h.abortUpstream(c, err)
		return
	}

	h.tracker.AddJob(record)
	c.JSON(http.StatusOK, tracker.JobFromRecord(record))
}

// Update changes a sync's mutable settings and refreshes the cache.
func (h *SyncHandler) Update(c *gin.Context) {
	id := c.Param("id")
	var req sdk.UpdateSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	record, err := h.api.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.abortUpstream(c, err)
		return
	}

	h.tracker.AddJob(record)
	c.JSON(http.StatusOK, tracker.JobFromRecord(record))
}

// Delete removes the sync on the backend, then stops any poll and drops the
// cached job.
func (h *SyncHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	ok, err := h.api.Delete(c.Request.Context(), id)
	if err != nil {
		h.abortUpstream(c, err)
		return
	}
	if !ok {
		AbortWithError(c, http.StatusBadGateway, ErrCodeUpstream, errors.New("delete rejected by server"))
		return
	}

	h.tracker.RemoveJob(id)
	c.JSON(http.StatusOK, ControlPlaneResponse{Code: CodeOk})
}

// Execute starts a sync run and begins polling its status.
func (h *SyncHandler) Execute(c *gin.Context) {
	id := c.Param("id")
	var req ExecuteSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	err := h.tracker.ExecuteSync(c.Request.Context(), id, req.AccessToken)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, ExecuteSyncResponse{
			Code:       CodeOk,
			SyncStatus: sdk.SyncStatusSyncing,
		})
	case errors.Is(err, tracker.ErrUnknownJob):
		AbortWithError(c, http.StatusNotFound, ErrCodeSyncNotFound, err)
	case errors.Is(err, tracker.ErrAlreadySyncing):
		AbortWithError(c, http.StatusConflict, ErrCodeSyncInProgress, err)
	case errors.Is(err, tracker.ErrStopped):
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeClientNotReady, err)
	default:
		h.abortUpstream(c, err)
	}
}

// Cancel asks the backend to stop a running sync. The terminal status lands
// through the regular polls.
func (h *SyncHandler) Cancel(c *gin.Context) {
	id := c.Param("id")
	if err := h.tracker.CancelSync(c.Request.Context(), id); err != nil {
		h.abortUpstream(c, err)
		return
	}
	c.JSON(http.StatusOK, ControlPlaneResponse{Code: CodeOk})
}

// Status returns the cached job state plus whether a poll is live.
func (h *SyncHandler) Status(c *gin.Context) {
	id := c.Param("id")
	job, ok := h.tracker.Job(id)
	if !ok {
		AbortWithError(c, http.StatusNotFound, ErrCodeSyncNotFound, errors.New("unknown sync id"))
		return
	}
	c.JSON(http.StatusOK, SyncStatusResponse{Sync: job, Polling: h.tracker.IsPolling(id)})
}

// Logs returns the last run's log lines for a sync job.
func (h *SyncHandler) Logs(c *gin.Context) {
	id := c.Param("id")
	job, ok := h.tracker.Job(id)
	if !ok {
		AbortWithError(c, http.StatusNotFound, ErrCodeSyncNotFound, errors.New("unknown sync id"))
		return
	}
	logs := job.Logs
	if logs == nil {
		logs = []sdk.LogEntry{}
	}
	c.JSON(http.StatusOK, SyncLogsResponse{Logs: logs})
}

// ListFolder previews a SharePoint folder before a sync is created.
func (h *SyncHandler) ListFolder(c *gin.Context) {
	var req ListFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, err)
		return
	}

	resp, err := h.api.ListFolder(c.Request.Context(), &sdk.ListFolderRequest{
		AccessToken: req.AccessToken,
		Endpoint:    req.Endpoint,
		DriveID:     req.DriveID,
		ItemID:      req.ItemID,
	})
	if err != nil {
		h.abortUpstream(c, err)
		return
	}

	c.JSON(http.StatusOK, ListFolderResponse{Files: resp.Files})
}

// abortUpstream maps backend failures onto the control plane error shape,
// preserving the upstream HTTP status when one exists.
func (h *SyncHandler) abortUpstream(c *gin.Context, err error) {
	var apiErr *sdk.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode != 0 {
		AbortWithError(c, apiErr.StatusCode, ErrCodeUpstream, err)
		return
	}
	AbortWithError(c, http.StatusBadGateway, ErrCodeUpstream, err)
}
