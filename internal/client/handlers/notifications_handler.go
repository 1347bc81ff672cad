package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sharesync/sharesync/internal/client/notify"
)

// NotificationsHandler delivers pending toasts to the UI. Draining is
// destructive: each toast is handed out once.
type NotificationsHandler struct {
	center *notify.Center
}

func NewNotificationsHandler(center *notify.Center) *NotificationsHandler {
	return &NotificationsHandler{center: center}
}

func (h *NotificationsHandler) Drain(c *gin.Context) {
	toasts := h.center.Drain()
	if toasts == nil {
		toasts = []notify.Toast{}
	}
	c.JSON(http.StatusOK, NotificationsResponse{Toasts: toasts})
}

func (h *NotificationsHandler) Pending(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pending": h.center.Pending()})
}
