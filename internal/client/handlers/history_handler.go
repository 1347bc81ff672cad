package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sharesync/sharesync/internal/client/history"
)

// HistoryHandler serves the local journal of finished sync runs.
type HistoryHandler struct {
	journal *history.Journal
}

func NewHistoryHandler(journal *history.Journal) *HistoryHandler {
	return &HistoryHandler{journal: journal}
}

func (h *HistoryHandler) List(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusOK, HistoryResponse{Entries: []history.Entry{}})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			AbortWithError(c, http.StatusBadRequest, ErrCodeBadRequest, errInvalidLimit)
			return
		}
		limit = parsed
	}

	var entries []history.Entry
	var err error
	if syncID := c.Query("sync_id"); syncID != "" {
		entries, err = h.journal.LatestForSync(syncID, limit)
	} else {
		entries, err = h.journal.Latest(limit)
	}
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeUnknownError, err)
		return
	}

	if entries == nil {
		entries = []history.Entry{}
	}
	c.JSON(http.StatusOK, HistoryResponse{Entries: entries})
}
