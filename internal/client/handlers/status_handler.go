package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sharesync/sharesync/internal/client/tracker"
	"github.com/sharesync/sharesync/internal/version"
)

// StatusHandler handles status-related endpoints
type StatusHandler struct {
	tracker *tracker.Tracker
}

func NewStatusHandler(trk *tracker.Tracker) *StatusHandler {
	return &StatusHandler{tracker: trk}
}

// Status returns daemon health plus the number of in-flight syncs.
func (h *StatusHandler) Status(c *gin.Context) {
	syncing := 0
	if h.tracker != nil {
		syncing = h.tracker.SyncingCount()
	}

	c.PureJSON(http.StatusOK, &StatusResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   version.Version,
		Revision:  version.Revision,
		BuildDate: version.BuildDate,
		Syncing:   syncing,
	})
}
