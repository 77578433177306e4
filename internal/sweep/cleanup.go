package sweep

import (
	"context"
	"fmt"
	"time"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
	"github.com/joshsymonds/labelsweep/internal/history"
)

// Outcome separates a run that trashed mail from one that found nothing.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeEmpty
)

func (o Outcome) String() string {
	if o == OutcomeEmpty {
		return "empty"
	}
	return "success"
}

// Result reports a cleanup run.
type Result struct {
	Outcome Outcome
	Label   gc.LabelID
	Days    int
	Scanned int
	Deleted int
	Message string
}

// Record converts the result into a history entry dated at.
func (r Result) Record(at time.Time) history.Record {
	return history.NewRecord(at, r.Days, r.Scanned, r.Deleted)
}

// Execute moves every message under label older than days to the trash.
// The first failed trash call aborts the run; nothing is retried.
func (s *Service) Execute(ctx context.Context, client gc.Client, label gc.LabelID, days int) (Result, error) {
	ids, err := s.Messages(ctx, client, label, days)
	if err != nil {
		return Result{}, err
	}
	res := Result{Label: label, Days: days, Scanned: len(ids)}
	if len(ids) == 0 {
		s.Logger.InfoContext(ctx, "no messages to trash", "label", label, "days", days)
		res.Outcome = OutcomeEmpty
		res.Message = fmt.Sprintf("No emails older than %d days", days)
		return res, nil
	}
	for _, id := range ids {
		if err := s.wait(ctx); err != nil {
			return Result{}, err
		}
		if err := client.Trash(ctx, id); err != nil {
			return Result{}, fmt.Errorf("trash message %s: %w", id, err)
		}
	}
	res.Outcome = OutcomeSuccess
	res.Deleted = len(ids)
	res.Message = fmt.Sprintf("Deleted %d emails successfully", res.Deleted)
	s.Logger.InfoContext(ctx, "trashed", "label", label, "days", days, "count", res.Deleted)
	return res, nil
}

// Preview counts the threads a cleanup would touch.
type Preview struct {
	Label       gc.LabelID
	Days        int
	WouldAffect int
}

func (p Preview) Message() string {
	return fmt.Sprintf("Dry run: %d threads would be moved to Trash", p.WouldAffect)
}

// Preview is the dry-run path; it never mutates mail or history.
func (s *Service) Preview(ctx context.Context, client gc.Client, label gc.LabelID, days int) (Preview, error) {
	ids, err := s.Threads(ctx, client, label, days)
	if err != nil {
		return Preview{}, err
	}
	s.Logger.InfoContext(ctx, "dry-run", "label", label, "days", days, "count", len(ids))
	return Preview{Label: label, Days: days, WouldAffect: len(ids)}, nil
}

// ListingHeaders are the headers fetched for display.
var ListingHeaders = []string{"Subject", "From", "Date"}

// Listing holds the display metadata of matching messages.
type Listing struct {
	Label    gc.LabelID
	Days     int
	Messages []gc.MessageMeta
}

func (l Listing) Empty() bool { return len(l.Messages) == 0 }

func (l Listing) Message() string {
	if l.Empty() {
		return fmt.Sprintf("No emails older than %d days for label: %s", l.Days, l.Label)
	}
	return fmt.Sprintf("%d emails older than %d days for label: %s", len(l.Messages), l.Days, l.Label)
}

// List fetches Subject, From and Date for every matching message.
func (s *Service) List(ctx context.Context, client gc.Client, label gc.LabelID, days int) (Listing, error) {
	ids, err := s.Messages(ctx, client, label, days)
	if err != nil {
		return Listing{}, err
	}
	listing := Listing{Label: label, Days: days, Messages: make([]gc.MessageMeta, 0, len(ids))}
	for _, id := range ids {
		if err := s.wait(ctx); err != nil {
			return Listing{}, err
		}
		meta, err := client.GetMetadata(ctx, id, ListingHeaders)
		if err != nil {
			return Listing{}, fmt.Errorf("get metadata %s: %w", id, err)
		}
		listing.Messages = append(listing.Messages, meta)
	}
	return listing, nil
}
