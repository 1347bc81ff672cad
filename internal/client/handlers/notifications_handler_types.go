package handlers

import "github.com/sharesync/sharesync/internal/client/notify"

type NotificationsResponse struct {
	Toasts []notify.Toast `json:"toasts"`
}
