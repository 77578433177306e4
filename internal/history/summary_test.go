package history

import (
	"reflect"
	"testing"
)

func TestSummarize(t *testing.T) {
	r1 := Record{Date: "2024-01-01", Days: 30, Deleted: 2, Scanned: 2, Status: StatusSuccess}
	r2 := Record{Date: "2024-01-02", Days: 30, Deleted: 0, Scanned: 0, Status: StatusClean}
	r3 := Record{Date: "2024-01-03", Days: 30, Deleted: 5, Scanned: 5, Status: StatusSuccess}
	records := []Record{r1, r2, r3}

	sum := Summarize(records)
	if sum.TotalDeleted != 7 {
		t.Fatalf("total deleted %d", sum.TotalDeleted)
	}
	if sum.LastCleanup != "2024-01-03" {
		t.Fatalf("last cleanup %q", sum.LastCleanup)
	}
	if sum.Status != StatusHealthy {
		t.Fatalf("status %q", sum.Status)
	}
	if !reflect.DeepEqual(sum.Recent, []Record{r3, r2, r1}) {
		t.Fatalf("unexpected display order %+v", sum.Recent)
	}
	if !reflect.DeepEqual(records, []Record{r1, r2, r3}) {
		t.Fatalf("input order mutated: %+v", records)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	sum := Summarize(nil)
	if sum.TotalDeleted != 0 || sum.LastCleanup != NeverCleaned || sum.Status != StatusIdle {
		t.Fatalf("unexpected empty summary %+v", sum)
	}
	if len(sum.Recent) != 0 {
		t.Fatalf("expected no recent records")
	}
}

func TestSummarizeOnlyCleanRuns(t *testing.T) {
	sum := Summarize([]Record{{Date: "2024-05-01", Status: StatusClean}})
	if sum.Status != StatusIdle || sum.LastCleanup != "2024-05-01" {
		t.Fatalf("unexpected summary %+v", sum)
	}
}
