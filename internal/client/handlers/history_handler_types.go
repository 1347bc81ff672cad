package handlers

import (
	"errors"

	"github.com/sharesync/sharesync/internal/client/history"
)

var errInvalidLimit = errors.New("limit must be a non-negative integer")

type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}
