package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshsymonds/labelsweep/internal/audit"
	"github.com/joshsymonds/labelsweep/internal/history"
	"github.com/joshsymonds/labelsweep/internal/sweep"
)

const subjectDisplayLimit = 60

// PrintListing writes one block per message.
func PrintListing(listing sweep.Listing, w io.Writer) error {
	var builder strings.Builder
	builder.WriteString(listing.Message())
	builder.WriteString("\n")
	for _, m := range listing.Messages {
		fmt.Fprintf(&builder, "\nSubject: %s\nFrom:    %s\nDate:    %s\n",
			truncate(m.Headers["Subject"], subjectDisplayLimit),
			m.Headers["From"],
			m.Headers["Date"],
		)
	}
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write listing: %w", err)
	}
	return nil
}

// PrintSenders writes the sender ranking of a listing.
func PrintSenders(rep audit.Report, w io.Writer) error {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Messages: %d (unknown sender: %d)\n", rep.Total, rep.Unknown)
	for _, st := range rep.TopSenders {
		fmt.Fprintf(&builder, "%5d  %-30s  %s\n", st.Count, st.Domain, truncate(st.PreviewSubject, subjectDisplayLimit))
	}
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write senders: %w", err)
	}
	return nil
}

// PrintHistory writes the dashboard summary followed by runs, newest first.
func PrintHistory(records []history.Record, w io.Writer) error {
	sum := history.Summarize(records)
	var builder strings.Builder
	fmt.Fprintf(&builder, "Total deleted: %d\nLast cleanup:  %s\nStatus:        %s\n",
		sum.TotalDeleted, sum.LastCleanup, sum.Status)
	if len(sum.Recent) > 0 {
		builder.WriteString("\nDate        Days  Scanned  Deleted  Status\n")
		for _, rec := range sum.Recent {
			fmt.Fprintf(&builder, "%-10s  %4d  %7d  %7d  %s\n",
				rec.Date, rec.Days, rec.Scanned, rec.Deleted, rec.Status)
		}
	}
	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	return nil
}

// WriteJSON serializes the summary of records to path, relative to the working directory.
func WriteJSON(records []history.Record, path string) error {
	clean := strings.TrimSpace(path)
	if clean == "" {
		return fmt.Errorf("path must not be empty")
	}
	clean = filepath.Clean(clean)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("output path must be relative, got %s", clean)
	}
	if strings.HasPrefix(clean, "..") {
		return fmt.Errorf("output path %s escapes working directory", clean)
	}
	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	abs := filepath.Join(wd, clean)
	f, err := os.OpenFile(abs, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("create %s: %w", abs, err)
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if encodeErr := enc.Encode(history.Summarize(records)); encodeErr != nil {
		return fmt.Errorf("encode summary: %w", encodeErr)
	}
	return nil
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-1]) + "…"
}
