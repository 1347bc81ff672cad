package handlers

type DaemonLogLevel string

const (
	DaemonLogDebug DaemonLogLevel = "debug"
	DaemonLogInfo  DaemonLogLevel = "info"
	DaemonLogWarn  DaemonLogLevel = "warn"
	DaemonLogError DaemonLogLevel = "error"
)

// DaemonLogEntry is one parsed line of the daemon's own log file. Distinct
// from the per-sync logs the server attaches to a job.
type DaemonLogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     DaemonLogLevel `json:"level"`
	Message   string         `json:"message"`
}

type LogsRequest struct {
	StartingToken int64 `form:"startingToken"`
	MaxResults    int   `form:"maxResults"`
}

type LogsResponse struct {
	Logs      []DaemonLogEntry `json:"logs"`
	NextToken int64            `json:"nextToken"`
	HasMore   bool             `json:"hasMore"`
}
