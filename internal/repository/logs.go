package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// LogsRepository stores request logs and configuration audit records in the
// logs collection. Documents expire through the TTL index on timestamp.
type LogsRepository struct {
	collection *mongo.Collection
}

// NewLogsRepository creates a new logs repository.
func NewLogsRepository(db *MongoDB) *LogsRepository {
	return &LogsRepository{collection: db.Logs}
}

// Insert stores entries, stamping any without an identity or timestamp.
func (r *LogsRepository) Insert(ctx context.Context, entries ...*model.LogEntry) error {
	now := time.Now()
	switch len(entries) {
	case 0:
		return nil
	case 1:
		entries[0].Stamp(now)
		_, err := r.collection.InsertOne(ctx, entries[0])
		return err
	}

	docs := make([]any, len(entries))
	for i, entry := range entries {
		entry.Stamp(now)
		docs[i] = entry
	}
	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	return err
}

// Find returns the entries matching opts, newest first.
func (r *LogsRepository) Find(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if opts.Limit > 0 {
		findOptions.SetLimit(int64(opts.Limit))
	}
	if opts.Skip > 0 {
		findOptions.SetSkip(int64(opts.Skip))
	}

	cursor, err := r.collection.Find(ctx, logFilter(opts), findOptions)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	entries := []model.LogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Count returns the number of entries matching opts. Limit and Skip are ignored.
func (r *LogsRepository) Count(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	return r.collection.CountDocuments(ctx, logFilter(opts))
}

func logFilter(opts model.LogQueryOptions) bson.M {
	filter := bson.M{}
	if opts.RequestID != "" {
		filter["request_id"] = opts.RequestID
	}
	if opts.QuoteID != "" {
		filter["quote_id"] = opts.QuoteID
	}
	if opts.SessionID != "" {
		filter["session_id"] = opts.SessionID
	}
	switch {
	case opts.Action != "":
		filter["action_type"] = opts.Action
	case opts.AuditOnly:
		filter["action_type"] = bson.M{"$exists": true, "$ne": ""}
	}
	if opts.Level != "" {
		filter["level"] = opts.Level
	}
	if opts.StartTime != nil || opts.EndTime != nil {
		window := bson.M{}
		if opts.StartTime != nil {
			window["$gte"] = *opts.StartTime
		}
		if opts.EndTime != nil {
			window["$lte"] = *opts.EndTime
		}
		filter["timestamp"] = window
	}
	return filter
}
