//go:build !integration

package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

func TestLogFilter(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name string
		opts model.LogQueryOptions
		want bson.M
	}{
		{
			name: "no filter",
			want: bson.M{},
		},
		{
			name: "quote audit trail",
			opts: model.LogQueryOptions{QuoteID: "Q1", AuditOnly: true},
			want: bson.M{
				"quote_id":    "Q1",
				"action_type": bson.M{"$exists": true, "$ne": ""},
			},
		},
		{
			name: "explicit action wins over audit only",
			opts: model.LogQueryOptions{Action: "annex.download", AuditOnly: true},
			want: bson.M{"action_type": "annex.download"},
		},
		{
			name: "request, session and level",
			opts: model.LogQueryOptions{RequestID: "req-1", SessionID: "S1", Level: "error"},
			want: bson.M{"request_id": "req-1", "session_id": "S1", "level": "error"},
		},
		{
			name: "time window",
			opts: model.LogQueryOptions{StartTime: &start, EndTime: &end},
			want: bson.M{"timestamp": bson.M{"$gte": start, "$lte": end}},
		},
		{
			name: "open ended window",
			opts: model.LogQueryOptions{StartTime: &start},
			want: bson.M{"timestamp": bson.M{"$gte": start}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, logFilter(tt.opts))
		})
	}
}
