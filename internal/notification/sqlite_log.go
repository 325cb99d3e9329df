package notification

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteLog appends entries as rows; nothing is rewritten.
type SQLiteLog struct {
	db *sql.DB
}

func OpenSQLiteLog(path string) (*SQLiteLog, error) {
	if path == "" {
		path = "audit.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create audit log dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS audit_log (
		seq          INTEGER PRIMARY KEY AUTOINCREMENT,
		id           TEXT NOT NULL UNIQUE,
		channel      TEXT NOT NULL,
		event        TEXT NOT NULL,
		details      TEXT NOT NULL,
		processed_at TEXT NOT NULL,
		status       TEXT NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create audit_log table: %w", err)
	}

	return &SQLiteLog{db: db}, nil
}

func (l *SQLiteLog) Append(ctx context.Context, entry AuditLogEntry) error {
	_, err := l.db.ExecContext(ctx, `
		INSERT INTO audit_log (id, channel, event, details, processed_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.ID.String(), entry.Channel, entry.Event, string(entry.Details),
		entry.ProcessedAt.UTC().Format(time.RFC3339Nano), entry.Status)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (l *SQLiteLog) Entries(ctx context.Context) ([]AuditLogEntry, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, channel, event, details, processed_at, status
		FROM audit_log
		ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("select audit log: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []AuditLogEntry{}
	for rows.Next() {
		var (
			e           AuditLogEntry
			id, details string
			processedAt string
		)
		if err := rows.Scan(&id, &e.Channel, &e.Event, &details, &processedAt, &e.Status); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse audit entry id: %w", err)
		}
		if e.ProcessedAt, err = time.Parse(time.RFC3339Nano, processedAt); err != nil {
			return nil, fmt.Errorf("parse audit entry time: %w", err)
		}
		e.Details = []byte(details)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit log: %w", err)
	}
	return entries, nil
}

func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
