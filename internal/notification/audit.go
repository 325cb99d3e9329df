// Package notification consumes booking events and records a simulated
// delivery for each one in an audit log.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// StatusEmailSent marks an entry whose email was simulated, not sent.
const StatusEmailSent = "EMAIL_SENT_SIMULATION"

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// AuditLogEntry is one processed notification.
type AuditLogEntry struct {
	ID          uuid.UUID       `json:"id"`
	Channel     string          `json:"channel"`
	Event       string          `json:"event"`
	Details     json.RawMessage `json:"details"`
	ProcessedAt time.Time       `json:"processedAt"`
	Status      string          `json:"status"`
}

// AuditLog is an append-only record of processed notifications. Entries
// come back in append order.
type AuditLog interface {
	Append(ctx context.Context, entry AuditLogEntry) error
	Entries(ctx context.Context) ([]AuditLogEntry, error)
	Close() error
}

// OpenAuditLog opens the log for the named backend at path.
func OpenAuditLog(backend, path string) (AuditLog, error) {
	switch backend {
	case BackendFile, "":
		return OpenFileLog(path)
	case BackendSQLite:
		return OpenSQLiteLog(path)
	default:
		return nil, fmt.Errorf("unknown audit log backend %q", backend)
	}
}
