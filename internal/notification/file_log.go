package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileLog keeps the whole audit log as one JSON array. Every append
// rewrites the file, so only one process may write to it.
type FileLog struct {
	mu   sync.Mutex
	path string
}

const fileLogMode os.FileMode = 0o640

// OpenFileLog creates path as an empty array if it does not exist yet.
func OpenFileLog(path string) (*FileLog, error) {
	if path == "" {
		path = "logs.json"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create audit log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, fileLogMode)
	switch {
	case err == nil:
		_, werr := f.Write([]byte("[]"))
		cerr := f.Close()
		if werr != nil {
			return nil, fmt.Errorf("initialise audit log: %w", werr)
		}
		if cerr != nil {
			return nil, fmt.Errorf("initialise audit log: %w", cerr)
		}
	case !errors.Is(err, os.ErrExist):
		return nil, fmt.Errorf("open audit log: %w", err)
	}

	return &FileLog{path: path}, nil
}

func (l *FileLog) Append(_ context.Context, entry AuditLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries, err := l.read()
	if err != nil {
		return err
	}
	entries = append(entries, entry)

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode audit log: %w", err)
	}
	return l.replace(data)
}

func (l *FileLog) Entries(_ context.Context) ([]AuditLogEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.read()
}

func (l *FileLog) Close() error {
	return nil
}

func (l *FileLog) read() ([]AuditLogEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}

	entries := []AuditLogEntry{}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries, nil
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decode audit log: %w", err)
	}
	return entries, nil
}

// replace swaps in the new content with a rename so readers never see a
// half-written array.
func (l *FileLog) replace(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".audit-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp audit log: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp audit log: %w", err)
	}
	if err := tmp.Chmod(fileLogMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp audit log: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp audit log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp audit log: %w", err)
	}
	if err := os.Rename(tmp.Name(), l.path); err != nil {
		return fmt.Errorf("replace audit log: %w", err)
	}
	return nil
}
