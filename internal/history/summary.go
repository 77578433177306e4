package history

const (
	StatusHealthy = "Healthy"
	StatusIdle    = "Idle"

	// NeverCleaned is shown as the last cleanup date of an empty ledger.
	NeverCleaned = "Never"
)

// Summary is the dashboard view of the ledger.
type Summary struct {
	TotalDeleted int      `json:"total_deleted"`
	LastCleanup  string   `json:"last_cleanup"`
	Status       string   `json:"status"`
	Recent       []Record `json:"history"` // newest first
}

// Summarize derives the dashboard view; records is not modified.
func Summarize(records []Record) Summary {
	sum := Summary{LastCleanup: NeverCleaned, Status: StatusIdle, Recent: make([]Record, len(records))}
	for i, rec := range records {
		sum.TotalDeleted += rec.Deleted
		sum.Recent[len(records)-1-i] = rec
	}
	if len(records) > 0 {
		sum.LastCleanup = records[len(records)-1].Date
	}
	if sum.TotalDeleted > 0 {
		sum.Status = StatusHealthy
	}
	return sum
}
