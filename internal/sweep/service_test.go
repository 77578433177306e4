package sweep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/joshsymonds/labelsweep/internal/gmail"
	"github.com/joshsymonds/labelsweep/internal/history"
)

type fakeClient struct {
	messagePages []gmail.MessagePage
	threadPages  []gmail.ThreadPage
	requests     []gmail.ListRequest
	metaCalls    []gmail.MessageID
	trashed      []gmail.MessageID
	trashErr     map[gmail.MessageID]error
	listErr      error
}

func (f *fakeClient) ListMessages(ctx context.Context, req gmail.ListRequest) (gmail.MessagePage, error) {
	_ = ctx
	f.requests = append(f.requests, req)
	if f.listErr != nil {
		return gmail.MessagePage{}, f.listErr
	}
	if len(f.messagePages) == 0 {
		return gmail.MessagePage{}, nil
	}
	page := f.messagePages[0]
	f.messagePages = f.messagePages[1:]
	return page, nil
}

func (f *fakeClient) ListThreads(ctx context.Context, req gmail.ListRequest) (gmail.ThreadPage, error) {
	_ = ctx
	f.requests = append(f.requests, req)
	if len(f.threadPages) == 0 {
		return gmail.ThreadPage{}, nil
	}
	page := f.threadPages[0]
	f.threadPages = f.threadPages[1:]
	return page, nil
}

func (f *fakeClient) GetMetadata(ctx context.Context, id gmail.MessageID, headers []string) (gmail.MessageMeta, error) {
	_ = ctx
	_ = headers
	f.metaCalls = append(f.metaCalls, id)
	return gmail.MessageMeta{ID: id, Headers: map[string]string{"Subject": "subject " + string(id)}}, nil
}

func (f *fakeClient) Trash(ctx context.Context, id gmail.MessageID) error {
	_ = ctx
	if err := f.trashErr[id]; err != nil {
		return err
	}
	f.trashed = append(f.trashed, id)
	return nil
}

type countingLimiter struct{ calls int }

func (c *countingLimiter) Wait(ctx context.Context) error {
	_ = ctx
	c.calls++
	return nil
}

func newTestService() *Service {
	svc := NewService(nil, slogDiscard())
	svc.Clock = func() time.Time { return time.Date(2024, time.March, 9, 23, 30, 0, 0, time.UTC) }
	return svc
}

func TestCutoff(t *testing.T) {
	now := time.Date(2024, time.March, 9, 23, 30, 0, 0, time.UTC)
	tests := []struct {
		days int
		want string
	}{
		{0, "2024/03/09"},
		{1, "2024/03/08"},
		{9, "2024/02/29"},
		{30, "2024/02/08"},
		{365, "2023/03/10"},
	}
	for _, tt := range tests {
		tc := tt
		t.Run(fmt.Sprint(tc.days), func(t *testing.T) {
			if got := Cutoff(now, tc.days); got != tc.want {
				t.Fatalf("Cutoff(%d) = %s want %s", tc.days, got, tc.want)
			}
		})
	}
}

func TestCutoffUsesUTC(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)
	now := time.Date(2024, time.March, 10, 1, 0, 0, 0, tokyo) // 2024-03-09 16:00 UTC
	if got := Cutoff(now, 0); got != "2024/03/09" {
		t.Fatalf("expected UTC day, got %s", got)
	}
}

func TestMessagesPaginatesUntilNoToken(t *testing.T) {
	fake := &fakeClient{messagePages: []gmail.MessagePage{
		{IDs: []gmail.MessageID{"a", "b"}, NextPageToken: "p2"},
		{IDs: []gmail.MessageID{}, NextPageToken: "p3"},
		{IDs: []gmail.MessageID{"c"}},
	}}
	limiter := &countingLimiter{}
	svc := newTestService()
	svc.Limiter = limiter

	ids, err := svc.Messages(context.Background(), fake, gmail.LabelPromotions, 30)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if !reflect.DeepEqual(ids, []gmail.MessageID{"a", "b", "c"}) {
		t.Fatalf("unexpected ids %v", ids)
	}
	if len(fake.requests) != 3 || limiter.calls != 3 {
		t.Fatalf("expected 3 requests and waits, got %d/%d", len(fake.requests), limiter.calls)
	}
	wantTokens := []string{"", "p2", "p3"}
	for i, req := range fake.requests {
		if req.PageToken != wantTokens[i] {
			t.Fatalf("request %d token %q want %q", i, req.PageToken, wantTokens[i])
		}
		if req.Label != gmail.LabelPromotions || req.Query.Raw != "before:2024/02/08" || req.PageSize != 100 {
			t.Fatalf("unexpected request %+v", req)
		}
	}
}

func TestPageSizeClamped(t *testing.T) {
	for _, size := range []int{0, -5, 500} {
		fake := &fakeClient{}
		svc := newTestService()
		svc.PageSize = size
		if _, err := svc.Threads(context.Background(), fake, gmail.LabelSpam, 1); err != nil {
			t.Fatalf("threads: %v", err)
		}
		if fake.requests[0].PageSize != gmail.MaxPageSize {
			t.Fatalf("page size %d not clamped: %d", size, fake.requests[0].PageSize)
		}
	}
	fake := &fakeClient{}
	svc := newTestService()
	svc.PageSize = 25
	if _, err := svc.Threads(context.Background(), fake, gmail.LabelSpam, 1); err != nil {
		t.Fatalf("threads: %v", err)
	}
	if fake.requests[0].PageSize != 25 {
		t.Fatalf("page size = %d", fake.requests[0].PageSize)
	}
}

func TestEnumerationGuards(t *testing.T) {
	svc := newTestService()
	if _, err := svc.Messages(context.Background(), nil, gmail.LabelSpam, 30); !errors.Is(err, gmail.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated, got %v", err)
	}
	if _, err := svc.Execute(context.Background(), nil, gmail.LabelSpam, 30); !errors.Is(err, gmail.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated from Execute, got %v", err)
	}
	if _, err := svc.Preview(context.Background(), nil, gmail.LabelSpam, 30); !errors.Is(err, gmail.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated from Preview, got %v", err)
	}
	fake := &fakeClient{}
	if _, err := svc.Threads(context.Background(), fake, gmail.LabelSpam, -1); !errors.Is(err, ErrInvalidAge) {
		t.Fatalf("expected ErrInvalidAge, got %v", err)
	}
	if len(fake.requests) != 0 {
		t.Fatalf("no request expected for invalid age")
	}
}

func TestExecuteEmptyShortCircuits(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService()

	ids, err := svc.Messages(context.Background(), fake, gmail.LabelSocial, 30)
	if err != nil {
		t.Fatalf("messages: %v", err)
	}
	if ids == nil || len(ids) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", ids)
	}

	res, err := svc.Execute(context.Background(), fake, gmail.LabelSocial, 30)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if res.Outcome != OutcomeEmpty || res.Scanned != 0 || res.Deleted != 0 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Message != "No emails older than 30 days" {
		t.Fatalf("unexpected message %q", res.Message)
	}
	if len(fake.trashed) != 0 {
		t.Fatalf("expected no trash calls, got %d", len(fake.trashed))
	}
}

func TestExecuteSpamScenario(t *testing.T) {
	fake := &fakeClient{messagePages: []gmail.MessagePage{
		{IDs: []gmail.MessageID{"m1", "m2"}, NextPageToken: "next"},
		{IDs: []gmail.MessageID{"m3"}},
	}}
	svc := newTestService()
	ledger := history.NewLedger(filepath.Join(t.TempDir(), "history.json"))

	res, err := svc.Execute(context.Background(), fake, gmail.LabelSpam, 30)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !reflect.DeepEqual(fake.trashed, []gmail.MessageID{"m1", "m2", "m3"}) {
		t.Fatalf("unexpected trash calls %v", fake.trashed)
	}
	if res.Outcome != OutcomeSuccess || res.Scanned != 3 || res.Deleted != 3 {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.Message != "Deleted 3 emails successfully" {
		t.Fatalf("unexpected message %q", res.Message)
	}

	if err := ledger.Append(res.Record(svc.Clock())); err != nil {
		t.Fatalf("append: %v", err)
	}
	records, err := ledger.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	got := records[0]
	if got.Deleted != 3 || got.Scanned != 3 || got.Days != 30 || got.Status != history.StatusSuccess {
		t.Fatalf("unexpected record %+v", got)
	}
}

func TestExecuteAbortsOnTrashFailure(t *testing.T) {
	boom := errors.New("backend error")
	fake := &fakeClient{
		messagePages: []gmail.MessagePage{{IDs: []gmail.MessageID{"m1", "m2", "m3"}}},
		trashErr:     map[gmail.MessageID]error{"m2": boom},
	}
	svc := newTestService()

	res, err := svc.Execute(context.Background(), fake, gmail.LabelSpam, 30)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped trash error, got %v", err)
	}
	if res != (Result{}) {
		t.Fatalf("expected zero result on failure, got %+v", res)
	}
	if !reflect.DeepEqual(fake.trashed, []gmail.MessageID{"m1"}) {
		t.Fatalf("expected run to stop after failure, trashed %v", fake.trashed)
	}
}

func TestListErrorPropagates(t *testing.T) {
	boom := &gmail.APIError{Op: "messages.list", Code: 500, Err: errors.New("backend")}
	fake := &fakeClient{listErr: boom}
	svc := newTestService()
	_, err := svc.Execute(context.Background(), fake, gmail.LabelSpam, 30)
	var apiErr *gmail.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 500 {
		t.Fatalf("expected APIError, got %v", err)
	}
}

func TestPreviewNeverMutates(t *testing.T) {
	svc := newTestService()
	for i := 0; i < 3; i++ {
		fake := &fakeClient{threadPages: []gmail.ThreadPage{
			{IDs: []gmail.ThreadID{"t1", "t2"}, NextPageToken: "x"},
			{IDs: []gmail.ThreadID{"t3"}},
		}}
		p, err := svc.Preview(context.Background(), fake, gmail.LabelSpam, 14)
		if err != nil {
			t.Fatalf("preview: %v", err)
		}
		if p.WouldAffect != 3 {
			t.Fatalf("would affect %d", p.WouldAffect)
		}
		if p.Message() != "Dry run: 3 threads would be moved to Trash" {
			t.Fatalf("unexpected message %q", p.Message())
		}
		if len(fake.trashed) != 0 || len(fake.metaCalls) != 0 {
			t.Fatalf("preview must not call trash or metadata")
		}
	}
}

func TestListFetchesMetadata(t *testing.T) {
	fake := &fakeClient{messagePages: []gmail.MessagePage{{IDs: []gmail.MessageID{"m1", "m2"}}}}
	svc := newTestService()

	listing, err := svc.List(context.Background(), fake, gmail.LabelPromotions, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listing.Messages) != 2 || listing.Messages[1].Headers["Subject"] != "subject m2" {
		t.Fatalf("unexpected listing %+v", listing)
	}
	if listing.Empty() {
		t.Fatalf("listing should not be empty")
	}

	empty, err := svc.List(context.Background(), &fakeClient{}, gmail.LabelPromotions, 7)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !empty.Empty() {
		t.Fatalf("expected empty listing")
	}
	if empty.Message() != "No emails older than 7 days for label: CATEGORY_PROMOTIONS" {
		t.Fatalf("unexpected message %q", empty.Message())
	}
}

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
