package handlers

import (
	"bufio"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sharesync/sharesync/internal/client/config"
)

// LogsHandler serves the daemon's own log file to the UI with byte-offset
// pagination.
type LogsHandler struct {
	logFilePath string
}

func NewLogsHandler() *LogsHandler {
	return &LogsHandler{
		logFilePath: config.DefaultLogFilePath,
	}
}

func (h *LogsHandler) GetLogs(c *gin.Context) {
	var params LogsRequest
	if err := c.ShouldBindQuery(&params); err != nil {
		AbortWithError(c, http.StatusBadRequest, ErrCodeLogsRetrievalFailed, err)
		return
	}

	if params.MaxResults == 0 {
		params.MaxResults = 100
	}

	logs, nextToken, hasMore, err := h.readLogsFromFile(params.StartingToken, params.MaxResults)
	if err != nil {
		AbortWithError(c, http.StatusInternalServerError, ErrCodeLogsRetrievalFailed, err)
		return
	}

	c.PureJSON(http.StatusOK, &LogsResponse{
		Logs:      logs,
		NextToken: nextToken,
		HasMore:   hasMore,
	})
}

var (
	logTimeRegex  = regexp.MustCompile(`time=([^\s]+)`)
	logLevelRegex = regexp.MustCompile(`level=([^\s]+)`)
	logMsgRegex   = regexp.MustCompile(`msg="([^"]+)"`)
)

// readLogsFromFile reads slog text-format lines starting at a byte offset.
// A missing file is not an error; the daemon may not have logged yet.
func (h *LogsHandler) readLogsFromFile(startingToken int64, maxResults int) ([]DaemonLogEntry, int64, bool, error) {
	file, err := os.Open(h.logFilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []DaemonLogEntry{}, 0, false, nil
		}
		return nil, 0, false, err
	}
	defer file.Close()

	if startingToken > 0 {
		if _, err := file.Seek(startingToken, 0); err != nil {
			return nil, 0, false, err
		}
	}

	var logs []DaemonLogEntry
	scanner := bufio.NewScanner(file)
	bytesRead := startingToken

	for scanner.Scan() {
		line := scanner.Text()
		bytesRead += int64(len(line) + 1)

		timeMatch := logTimeRegex.FindStringSubmatch(line)
		levelMatch := logLevelRegex.FindStringSubmatch(line)
		msgMatch := logMsgRegex.FindStringSubmatch(line)
		if len(timeMatch) < 2 || len(levelMatch) < 2 || len(msgMatch) < 2 {
			continue
		}

		message := msgMatch[1]
		restIndex := strings.Index(line, msgMatch[0]) + len(msgMatch[0])
		if restIndex < len(line) {
			if rest := strings.TrimSpace(line[restIndex:]); rest != "" {
				message += " " + rest
			}
		}

		logs = append(logs, DaemonLogEntry{
			Timestamp: timeMatch[1],
			Level:     normalizeLogLevel(levelMatch[1]),
			Message:   message,
		})

		if len(logs) >= maxResults+1 {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, 0, false, err
	}

	hasMore := false
	if len(logs) > maxResults {
		hasMore = true
		logs = logs[:maxResults]
	}

	if len(logs) == 0 {
		return []DaemonLogEntry{}, bytesRead, false, nil
	}

	return logs, bytesRead, hasMore, nil
}

func normalizeLogLevel(raw string) DaemonLogLevel {
	switch strings.ToLower(raw) {
	case "debug":
		return DaemonLogDebug
	case "warn", "warning":
		return DaemonLogWarn
	case "error":
		return DaemonLogError
	default:
		return DaemonLogInfo
	}
}
