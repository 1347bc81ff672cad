// Package notify carries user-facing toast notifications from the tracker to
// the web UI. The UI collects pending toasts over the control plane.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Toast is a single user-facing notification.
type Toast struct {
	ID        string    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

func NewToast(level Level, message string) Toast {
	return Toast{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
}

type Notifier interface {
	Notify(toast Toast)
}

// The UI polls infrequently; anything older than the last maxPending toasts
// is stale and dropped.
const defaultMaxPending = 100

// Center buffers toasts until the UI drains them. Every toast is also
// mirrored to the log.
type Center struct {
	mu      sync.Mutex
	pending []Toast
	max     int
}

func NewCenter() *Center {
	return &Center{max: defaultMaxPending}
}

func (c *Center) Notify(toast Toast) {
	slog.Log(context.Background(), slogLevel(toast.Level), "toast", "level", toast.Level, "message", toast.Message)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, toast)
	if len(c.pending) > c.max {
		c.pending = c.pending[len(c.pending)-c.max:]
	}
}

// Drain returns all pending toasts and clears the buffer.
func (c *Center) Drain() []Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	drained := c.pending
	c.pending = nil
	return drained
}

// Pending returns the number of undelivered toasts.
func (c *Center) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func slogLevel(level Level) slog.Level {
	switch level {
	case LevelError:
		return slog.LevelError
	case LevelWarning:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

var _ Notifier = (*Center)(nil)
