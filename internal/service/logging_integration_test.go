//go:build integration

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-configurator/internal/circuitbreaker"
	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/repository"
	"github.com/guttosm/quote-configurator/internal/testutil"
)

func TestLoggingService_Integration(t *testing.T) {
	ctx := context.Background()

	container, err := testutil.SetupMongoDB(ctx)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Cleanup(ctx)
	})

	db, err := repository.NewMongoDB(container.URI, testutil.SanitizeDBName(t.Name()))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = db.Close(ctx)
	})
	require.NoError(t, db.SetLogsTTL(ctx, 30*24*time.Hour))

	cb := circuitbreaker.New(circuitbreaker.Config{
		FailureThreshold: 2,
		SuccessThreshold: 1,
		Timeout:          100 * time.Millisecond,
		Name:             "test-logs",
		IsFailure:        repository.IsStoreFailure,
	})
	svc := NewLoggingService(repository.NewLogsRepositoryWithCircuitBreaker(repository.NewLogsRepository(db), cb))

	saved := &model.LogEntry{
		Level:      "info",
		Message:    "Configuration saved",
		RequestID:  "req-1",
		QuoteID:    "Q1",
		SessionID:  "S1",
		ActionType: "configuration.save",
	}
	saved.WithFields(map[string]any{"parents": 1, "children": 2})
	require.NoError(t, svc.CreateLog(ctx, saved))
	assert.False(t, saved.ID.IsZero())

	require.NoError(t, svc.CreateLogs(ctx, []*model.LogEntry{
		{Level: "info", Message: "Request completed", RequestID: "req-1", Method: "POST", Path: "/api/configurations/S1/save", StatusCode: 200},
		{Level: "warn", Message: "Annex downloaded", QuoteID: "Q1", ActionType: "annex.download", Timestamp: time.Now().Add(time.Second)},
	}))

	t.Run("quote audit trail", func(t *testing.T) {
		entries, err := svc.QueryLogs(ctx, model.LogQueryOptions{QuoteID: "Q1", AuditOnly: true})
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "annex.download", entries[0].ActionType)
		assert.Equal(t, "S1", entries[1].SessionID)
		assert.EqualValues(t, 2, entries[1].Fields["children"])
	})

	t.Run("count by request", func(t *testing.T) {
		count, err := svc.CountLogs(ctx, model.LogQueryOptions{RequestID: "req-1"})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("breaker stays closed", func(t *testing.T) {
		assert.Equal(t, circuitbreaker.StateClosed, cb.State())
	})
}
