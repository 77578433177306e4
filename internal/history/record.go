package history

import (
	"errors"
	"fmt"
	"time"
)

const (
	StatusSuccess = "Success"
	StatusClean   = "Clean"

	dateLayout = "2006-01-02"
)

// ErrInvalidRecord is returned when a record breaks the ledger invariants.
var ErrInvalidRecord = errors.New("invalid history record")

// Record is one cleanup run.
type Record struct {
	Date    string `json:"date"`
	Days    int    `json:"days"`
	Deleted int    `json:"deleted"`
	Scanned int    `json:"scanned"`
	Status  string `json:"status"`
}

// NewRecord builds a record dated at (local calendar day) with its status derived from deleted.
func NewRecord(at time.Time, days, scanned, deleted int) Record {
	return Record{
		Date:    at.Format(dateLayout),
		Days:    days,
		Deleted: deleted,
		Scanned: scanned,
		Status:  statusFor(deleted),
	}
}

func statusFor(deleted int) string {
	if deleted > 0 {
		return StatusSuccess
	}
	return StatusClean
}

// Validate checks deleted <= scanned and that the status matches the deleted count.
func (r Record) Validate() error {
	switch {
	case r.Scanned < 0 || r.Deleted < 0:
		return fmt.Errorf("%w: negative counts", ErrInvalidRecord)
	case r.Deleted > r.Scanned:
		return fmt.Errorf("%w: deleted %d exceeds scanned %d", ErrInvalidRecord, r.Deleted, r.Scanned)
	case r.Status != statusFor(r.Deleted):
		return fmt.Errorf("%w: status %q with %d deleted", ErrInvalidRecord, r.Status, r.Deleted)
	}
	return nil
}
