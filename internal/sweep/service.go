package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	gc "github.com/joshsymonds/labelsweep/internal/gmail"
	"github.com/joshsymonds/labelsweep/internal/rate"
)

const cutoffLayout = "2006/01/02"

// ErrInvalidAge is returned for a negative days-old parameter.
var ErrInvalidAge = errors.New("days must not be negative")

// Service enumerates and cleans label-scoped messages older than a cutoff.
// Every operation takes the Gmail client explicitly; a nil client means the
// caller has no session.
type Service struct {
	Limiter  rate.Limiter
	Logger   *slog.Logger
	Clock    func() time.Time
	PageSize int
}

// NewService constructs a Service with sane defaults.
func NewService(limiter rate.Limiter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	}
	return &Service{
		Limiter:  limiter,
		Logger:   logger,
		Clock:    time.Now,
		PageSize: gc.MaxPageSize,
	}
}

// Cutoff formats the "before:" date for messages older than days, truncated to the day.
func Cutoff(now time.Time, days int) string {
	return now.UTC().AddDate(0, 0, -days).Format(cutoffLayout)
}

// BuildQuery returns the Gmail search predicate for messages older than days.
func BuildQuery(now time.Time, days int) gc.Query {
	return gc.Query{Raw: "before:" + Cutoff(now, days)}
}

// Messages returns every message id under label older than days, in page order.
func (s *Service) Messages(ctx context.Context, client gc.Client, label gc.LabelID, days int) ([]gc.MessageID, error) {
	req, err := s.request(client, label, days)
	if err != nil {
		return nil, err
	}
	ids, err := paginate(ctx, s, func(token string) ([]gc.MessageID, string, error) {
		req.PageToken = token
		page, err := client.ListMessages(ctx, req)
		return page.IDs, page.NextPageToken, err
	})
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	s.Logger.DebugContext(ctx, "enumerated messages", "label", label, "days", days, "count", len(ids))
	return ids, nil
}

// Threads returns every thread id under label older than days, in page order.
func (s *Service) Threads(ctx context.Context, client gc.Client, label gc.LabelID, days int) ([]gc.ThreadID, error) {
	req, err := s.request(client, label, days)
	if err != nil {
		return nil, err
	}
	ids, err := paginate(ctx, s, func(token string) ([]gc.ThreadID, string, error) {
		req.PageToken = token
		page, err := client.ListThreads(ctx, req)
		return page.IDs, page.NextPageToken, err
	})
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	s.Logger.DebugContext(ctx, "enumerated threads", "label", label, "days", days, "count", len(ids))
	return ids, nil
}

func (s *Service) request(client gc.Client, label gc.LabelID, days int) (gc.ListRequest, error) {
	if client == nil {
		return gc.ListRequest{}, gc.ErrNotAuthenticated
	}
	if days < 0 {
		return gc.ListRequest{}, fmt.Errorf("%w: %d", ErrInvalidAge, days)
	}
	return gc.ListRequest{
		Label:    label,
		Query:    BuildQuery(s.Clock(), days),
		PageSize: s.pageSize(),
	}, nil
}

func (s *Service) pageSize() int {
	if s.PageSize <= 0 || s.PageSize > gc.MaxPageSize {
		return gc.MaxPageSize
	}
	return s.PageSize
}

// paginate follows continuation tokens until a page comes back without one.
func paginate[ID any](ctx context.Context, s *Service, fetch func(token string) ([]ID, string, error)) ([]ID, error) {
	var (
		all   []ID
		token string
	)
	for {
		if err := s.wait(ctx); err != nil {
			return nil, err
		}
		ids, next, err := fetch(token)
		if err != nil {
			return nil, err
		}
		all = append(all, ids...)
		if next == "" {
			break
		}
		token = next
	}
	if all == nil {
		all = []ID{}
	}
	return all, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.Limiter == nil {
		return nil
	}
	return s.Limiter.Wait(ctx)
}
