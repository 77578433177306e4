package history

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
)

// PersistenceError reports a failed read, parse or write of the ledger file.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s ledger %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Ledger is the append-only JSON history file. The whole array is read before and
// rewritten after every append; the read-modify-write runs under <Path>.lock.
type Ledger struct {
	Path string

	mu sync.Mutex
}

// NewLedger returns a ledger stored at path.
func NewLedger(path string) *Ledger {
	return &Ledger{Path: filepath.Clean(path)}
}

// Load returns all records in run order, or an empty slice before the first append.
func (l *Ledger) Load() ([]Record, error) {
	data, err := os.ReadFile(l.Path) // #nosec G304 - ledger path comes from configuration
	if errors.Is(err, os.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, &PersistenceError{Op: "read", Path: l.Path, Err: err}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []Record{}, nil
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &PersistenceError{Op: "parse", Path: l.Path, Err: err}
	}
	if records == nil {
		records = []Record{}
	}
	return records, nil
}

// Append adds rec after the existing records and rewrites the file.
func (l *Ledger) Append(rec Record) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(l.Path), 0o755); err != nil {
		return &PersistenceError{Op: "create dir for", Path: l.Path, Err: err}
	}
	lock := flock.New(l.Path + ".lock")
	if err := lock.Lock(); err != nil {
		return &PersistenceError{Op: "lock", Path: l.Path, Err: err}
	}
	defer func() { _ = lock.Unlock() }()

	records, err := l.Load()
	if err != nil {
		return err
	}
	records = append(records, rec)
	return l.write(records)
}

func (l *Ledger) write(records []Record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return &PersistenceError{Op: "encode", Path: l.Path, Err: err}
	}
	tmp, err := os.CreateTemp(filepath.Dir(l.Path), filepath.Base(l.Path)+".*.tmp")
	if err != nil {
		return &PersistenceError{Op: "write", Path: l.Path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return &PersistenceError{Op: "write", Path: l.Path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &PersistenceError{Op: "write", Path: l.Path, Err: err}
	}
	if err := os.Rename(tmpName, l.Path); err != nil {
		return &PersistenceError{Op: "replace", Path: l.Path, Err: err}
	}
	return nil
}
