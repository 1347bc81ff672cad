// Package history keeps a local journal of finished sync runs so the
// dashboard can show past outcomes without a round trip to the backend.
// The server remains the source of truth for live job state.
package history

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sharesync/sharesync/internal/utils"
)

const schema = `
CREATE TABLE IF NOT EXISTS sync_history (
    id TEXT PRIMARY KEY,
    sync_id TEXT NOT NULL,
    name TEXT NOT NULL,
    status TEXT NOT NULL,
    file_count INTEGER NOT NULL DEFAULT 0,
    error TEXT NOT NULL DEFAULT '',
    finished_at TEXT NOT NULL -- RFC3339
);

CREATE INDEX IF NOT EXISTS idx_history_sync_id ON sync_history(sync_id);
CREATE INDEX IF NOT EXISTS idx_history_finished_at ON sync_history(finished_at);
`

const defaultLimit = 50

// Entry is one terminal transition of a sync job.
type Entry struct {
	ID         string `db:"id" json:"id"`
	SyncID     string `db:"sync_id" json:"sync_id"`
	Name       string `db:"name" json:"name"`
	Status     string `db:"status" json:"status"`
	FileCount  int64  `db:"file_count" json:"file_count"`
	Error      string `db:"error" json:"error,omitempty"`
	FinishedAt string `db:"finished_at" json:"finished_at"`
}

// Journal is an append-mostly SQLite store of sync outcomes.
type Journal struct {
	db     *sqlx.DB
	dbPath string
}

// Open creates or opens the journal at dbPath.
func Open(dbPath string) (*Journal, error) {
	if err := utils.EnsureParent(dbPath); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL", dbPath)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db at %s: %w", dbPath, err)
	}

	// SQLite in WAL mode works best with a single writer connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &Journal{db: db, dbPath: dbPath}, nil
}

// Record appends a terminal transition to the journal.
func (j *Journal) Record(entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("cannot record nil entry")
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.FinishedAt == "" {
		entry.FinishedAt = time.Now().UTC().Format(time.RFC3339)
	}

	_, err := j.db.NamedExec(
		`INSERT INTO sync_history (id, sync_id, name, status, file_count, error, finished_at)
		 VALUES (:id, :sync_id, :name, :status, :file_count, :error, :finished_at)`,
		entry,
	)
	if err != nil {
		return fmt.Errorf("record history entry: %w", err)
	}
	return nil
}

// Latest returns the most recent entries, newest first.
func (j *Journal) Latest(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var entries []Entry
	err := j.db.Select(&entries,
		`SELECT id, sync_id, name, status, file_count, error, finished_at
		 FROM sync_history ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return entries, nil
}

// LatestForSync returns the most recent entries for one sync id.
func (j *Journal) LatestForSync(syncID string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	var entries []Entry
	err := j.db.Select(&entries,
		`SELECT id, sync_id, name, status, file_count, error, finished_at
		 FROM sync_history WHERE sync_id = ? ORDER BY finished_at DESC, id DESC LIMIT ?`, syncID, limit)
	if err != nil {
		return nil, fmt.Errorf("query history for %s: %w", syncID, err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}
