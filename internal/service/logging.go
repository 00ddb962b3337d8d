package service

import (
	"context"
	"errors"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/repository"
)

const (
	defaultLogQueryLimit = 50
	maxLogQueryLimit     = 500
)

// ErrInvalidLogWindow is returned when a query's end time precedes its start time.
var ErrInvalidLogWindow = errors.New("log query window ends before it starts")

// LoggingService persists request logs and configuration audit records and
// answers audit trail queries.
type LoggingService interface {
	// CreateLog stores a single entry. A nil entry is ignored.
	CreateLog(ctx context.Context, entry *model.LogEntry) error

	// CreateLogs stores entries in one batch.
	CreateLogs(ctx context.Context, entries []*model.LogEntry) error

	// QueryLogs returns matching entries, newest first. The page size defaults
	// to 50 and is capped at 500.
	QueryLogs(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error)

	// CountLogs returns the number of matching entries.
	CountLogs(ctx context.Context, opts model.LogQueryOptions) (int64, error)
}

// LoggingServiceImpl implements the LoggingService interface.
type LoggingServiceImpl struct {
	repo repository.LogsRepositoryInterface
}

// NewLoggingService creates a new logging service implementation.
func NewLoggingService(repo repository.LogsRepositoryInterface) LoggingService {
	return &LoggingServiceImpl{repo: repo}
}

// CreateLog stores a single entry.
func (s *LoggingServiceImpl) CreateLog(ctx context.Context, entry *model.LogEntry) error {
	if entry == nil {
		return nil
	}
	return s.repo.Insert(ctx, entry)
}

// CreateLogs stores entries in one batch, skipping nils.
func (s *LoggingServiceImpl) CreateLogs(ctx context.Context, entries []*model.LogEntry) error {
	batch := make([]*model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if e != nil {
			batch = append(batch, e)
		}
	}
	if len(batch) == 0 {
		return nil
	}
	return s.repo.Insert(ctx, batch...)
}

// QueryLogs returns matching entries, newest first.
func (s *LoggingServiceImpl) QueryLogs(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	opts, err := normalizeLogQuery(opts)
	if err != nil {
		return nil, err
	}
	return s.repo.Find(ctx, opts)
}

// CountLogs returns the number of matching entries.
func (s *LoggingServiceImpl) CountLogs(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	opts, err := normalizeLogQuery(opts)
	if err != nil {
		return 0, err
	}
	return s.repo.Count(ctx, opts)
}

func normalizeLogQuery(opts model.LogQueryOptions) (model.LogQueryOptions, error) {
	if opts.StartTime != nil && opts.EndTime != nil && opts.EndTime.Before(*opts.StartTime) {
		return opts, ErrInvalidLogWindow
	}
	switch {
	case opts.Limit <= 0:
		opts.Limit = defaultLogQueryLimit
	case opts.Limit > maxLogQueryLimit:
		opts.Limit = maxLogQueryLimit
	}
	if opts.Skip < 0 {
		opts.Skip = 0
	}
	return opts, nil
}
