package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder writes the journal to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// NewSQLiteRecorder opens (or creates) the database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *slog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read the journal while the cache writes to it.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger.With(slog.String("component", "recorder"))}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.logger.Info("sqlite recorder opened", slog.String("path", dbPath))
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dataset_loads (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			path        TEXT NOT NULL,
			fingerprint TEXT,
			rows        INTEGER,
			tickers     INTEGER,
			changed     INTEGER,
			duration_ms REAL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_loads_ts ON dataset_loads(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordLoad appends evt. A zero At is stamped with the current time.
func (r *SQLiteRecorder) RecordLoad(ctx context.Context, evt *LoadEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	at := evt.At
	if at.IsZero() {
		at = time.Now()
	}

	res, err := r.db.ExecContext(ctx, `INSERT INTO dataset_loads
		(timestamp, path, fingerprint, rows, tickers, changed, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		at.UnixMilli(), evt.Path, evt.Fingerprint, evt.Rows, evt.Tickers,
		boolToInt(evt.Changed), evt.DurationMS, evt.Error,
	)
	if err != nil {
		return fmt.Errorf("insert load: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		evt.ID = id
	}
	return nil
}

// Recent returns the last n loads, newest first.
func (r *SQLiteRecorder) Recent(ctx context.Context, n int) ([]LoadEvent, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, timestamp, path, fingerprint, rows, tickers, changed, duration_ms, error
		FROM dataset_loads ORDER BY timestamp DESC, id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	events := make([]LoadEvent, 0, n)
	for rows.Next() {
		var (
			evt     LoadEvent
			ts      int64
			changed int
			fp, msg sql.NullString
		)
		if err := rows.Scan(&evt.ID, &ts, &evt.Path, &fp, &evt.Rows, &evt.Tickers, &changed, &evt.DurationMS, &msg); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		evt.At = time.UnixMilli(ts).UTC()
		evt.Fingerprint = fp.String
		evt.Changed = changed != 0
		evt.Error = msg.String
		events = append(events, evt)
	}
	return events, rows.Err()
}

// Close closes the database.
func (r *SQLiteRecorder) Close() error {
	return r.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
