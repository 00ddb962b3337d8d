//go:build !integration

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/mocks"
)

func TestNewLoggingService(t *testing.T) {
	svc := NewLoggingService(new(mocks.MockLogsRepository))

	assert.NotNil(t, svc)
	assert.IsType(t, &LoggingServiceImpl{}, svc)
}

func TestLoggingService_CreateLog(t *testing.T) {
	audit := &model.LogEntry{Level: "info", Message: "Configuration saved", QuoteID: "Q1", ActionType: "configuration.save"}

	tests := []struct {
		name      string
		entry     *model.LogEntry
		setupMock func(*mocks.MockLogsRepository)
		wantErr   bool
	}{
		{
			name:  "stores the entry",
			entry: audit,
			setupMock: func(m *mocks.MockLogsRepository) {
				m.On("Insert", mock.Anything, []*model.LogEntry{audit}).Return(nil).Once()
			},
		},
		{
			name:  "repository error",
			entry: audit,
			setupMock: func(m *mocks.MockLogsRepository) {
				m.On("Insert", mock.Anything, []*model.LogEntry{audit}).Return(errors.New("write failed")).Once()
			},
			wantErr: true,
		},
		{
			name:      "nil entry is ignored",
			setupMock: func(*mocks.MockLogsRepository) {},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockLogsRepository)
			tt.setupMock(repo)

			err := NewLoggingService(repo).CreateLog(context.Background(), tt.entry)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLoggingService_CreateLogs(t *testing.T) {
	first := &model.LogEntry{Message: "Request completed", RequestID: "req-1"}
	second := &model.LogEntry{Message: "Annex downloaded", ActionType: "annex.download"}

	tests := []struct {
		name      string
		entries   []*model.LogEntry
		setupMock func(*mocks.MockLogsRepository)
		wantErr   bool
	}{
		{
			name:    "one batch",
			entries: []*model.LogEntry{first, second},
			setupMock: func(m *mocks.MockLogsRepository) {
				m.On("Insert", mock.Anything, []*model.LogEntry{first, second}).Return(nil).Once()
			},
		},
		{
			name:    "nil entries are skipped",
			entries: []*model.LogEntry{nil, second, nil},
			setupMock: func(m *mocks.MockLogsRepository) {
				m.On("Insert", mock.Anything, []*model.LogEntry{second}).Return(nil).Once()
			},
		},
		{
			name:      "empty batch",
			entries:   []*model.LogEntry{nil},
			setupMock: func(*mocks.MockLogsRepository) {},
		},
		{
			name:    "repository error",
			entries: []*model.LogEntry{first},
			setupMock: func(m *mocks.MockLogsRepository) {
				m.On("Insert", mock.Anything, []*model.LogEntry{first}).Return(errors.New("write failed")).Once()
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockLogsRepository)
			tt.setupMock(repo)

			err := NewLoggingService(repo).CreateLogs(context.Background(), tt.entries)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestLoggingService_QueryLogs(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	trail := []model.LogEntry{
		{Message: "Annex downloaded", QuoteID: "Q1", ActionType: "annex.download"},
		{Message: "Configuration saved", QuoteID: "Q1", ActionType: "configuration.save"},
	}

	tests := []struct {
		name      string
		opts      model.LogQueryOptions
		setupMock func(*mocks.MockLogsRepository)
		want      []model.LogEntry
		wantErr   error
	}{
		{
			name: "default page size",
			opts: model.LogQueryOptions{QuoteID: "Q1", AuditOnly: true},
			setupMock: func(m *mocks.MockLogsRepository) {
				m.On("Find", mock.Anything, model.LogQueryOptions{QuoteID: "Q1", AuditOnly: true, Limit: 50}).Return(trail, nil).Once()
			},
			want: trail,
		},
		{
			name: "page size is capped and skip floored",
			opts: model.LogQueryOptions{Limit: 10000, Skip: -3},
			setupMock: func(m *mocks.MockLogsRepository) {
				m.On("Find", mock.Anything, model.LogQueryOptions{Limit: 500}).Return([]model.LogEntry{}, nil).Once()
			},
			want: []model.LogEntry{},
		},
		{
			name:      "window ending before it starts",
			opts:      model.LogQueryOptions{StartTime: &end, EndTime: &start},
			setupMock: func(*mocks.MockLogsRepository) {},
			wantErr:   ErrInvalidLogWindow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mocks.MockLogsRepository)
			tt.setupMock(repo)

			got, err := NewLoggingService(repo).QueryLogs(context.Background(), tt.opts)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			repo.AssertExpectations(t)
		})
	}

	t.Run("repository error", func(t *testing.T) {
		repo := new(mocks.MockLogsRepository)
		repo.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("query failed")).Once()

		got, err := NewLoggingService(repo).QueryLogs(context.Background(), model.LogQueryOptions{})

		assert.Error(t, err)
		assert.Nil(t, got)
	})
}

func TestLoggingService_CountLogs(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	t.Run("counts matching entries", func(t *testing.T) {
		repo := new(mocks.MockLogsRepository)
		repo.On("Count", mock.Anything, mock.MatchedBy(func(o model.LogQueryOptions) bool {
			return o.Action == "configuration.save"
		})).Return(int64(7), nil).Once()

		count, err := NewLoggingService(repo).CountLogs(context.Background(), model.LogQueryOptions{Action: "configuration.save"})

		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		repo.AssertExpectations(t)
	})

	t.Run("invalid window", func(t *testing.T) {
		count, err := NewLoggingService(new(mocks.MockLogsRepository)).CountLogs(context.Background(), model.LogQueryOptions{StartTime: &end, EndTime: &start})

		assert.ErrorIs(t, err, ErrInvalidLogWindow)
		assert.Zero(t, count)
	})

	t.Run("repository error", func(t *testing.T) {
		repo := new(mocks.MockLogsRepository)
		repo.On("Count", mock.Anything, mock.Anything).Return(int64(0), errors.New("count failed")).Once()

		_, err := NewLoggingService(repo).CountLogs(context.Background(), model.LogQueryOptions{})

		assert.Error(t, err)
	})
}
