// Package repository provides the MongoDB record store, catalog and document template access.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names of the record store.
const (
	CollectionProducts     = "products"
	CollectionPriceEntries = "price_entries"
	CollectionPricebooks   = "pricebooks"
	CollectionQuotes       = "quotes"
	CollectionQuoteLines   = "quote_lines"
	CollectionTemplates    = "document_templates"
	CollectionLogs         = "logs"
)

const (
	logsTTLIndexName   = "timestamp_ttl"
	healthCheckTimeout = 2 * time.Second

	// Server error codes returned when an index exists with other options.
	codeIndexOptionsConflict = 85
	codeIndexKeySpecConflict = 86
)

// PoolSettings tunes the driver's connection pool and timeouts.
type PoolSettings struct {
	MaxPoolSize            uint64
	MinPoolSize            uint64
	MaxConnIdleTime        time.Duration
	ConnectTimeout         time.Duration
	ServerSelectionTimeout time.Duration
	SocketTimeout          time.Duration
	Compressors            []string
}

// DefaultPoolSettings sizes the pool for a single API instance that holds
// a few dozen concurrent configuration sessions.
func DefaultPoolSettings() PoolSettings {
	return PoolSettings{
		MaxPoolSize:            50,
		MinPoolSize:            5,
		MaxConnIdleTime:        10 * time.Minute,
		ConnectTimeout:         10 * time.Second,
		ServerSelectionTimeout: 5 * time.Second,
		SocketTimeout:          30 * time.Second,
		Compressors:            []string{"zstd", "snappy", "zlib"},
	}
}

func (p PoolSettings) clientOptions(uri string) *options.ClientOptions {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(p.MaxPoolSize).
		SetMinPoolSize(p.MinPoolSize).
		SetMaxConnIdleTime(p.MaxConnIdleTime).
		SetConnectTimeout(p.ConnectTimeout).
		SetServerSelectionTimeout(p.ServerSelectionTimeout).
		SetSocketTimeout(p.SocketTimeout).
		SetRetryReads(true).
		SetRetryWrites(true)
	if len(p.Compressors) > 0 {
		opts.SetCompressors(p.Compressors)
	}
	return opts
}

// MongoDB holds the client and one handle per record collection.
type MongoDB struct {
	Client       *mongo.Client
	Database     *mongo.Database
	Products     *mongo.Collection
	PriceEntries *mongo.Collection
	Pricebooks   *mongo.Collection
	Quotes       *mongo.Collection
	QuoteLines   *mongo.Collection
	Templates    *mongo.Collection
	Logs         *mongo.Collection
}

// NewMongoDB connects with DefaultPoolSettings.
func NewMongoDB(uri, databaseName string) (*MongoDB, error) {
	return Connect(uri, databaseName, DefaultPoolSettings())
}

// Connect opens a client, verifies the primary answers and ensures the
// lookup indexes exist.
func Connect(uri, databaseName string, pool PoolSettings) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), pool.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, pool.clientOptions(uri))
	if err != nil {
		return nil, fmt.Errorf("mongodb: connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	m := bind(client, databaseName)
	if err := m.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return m, nil
}

func bind(client *mongo.Client, databaseName string) *MongoDB {
	db := client.Database(databaseName)
	return &MongoDB{
		Client:       client,
		Database:     db,
		Products:     db.Collection(CollectionProducts),
		PriceEntries: db.Collection(CollectionPriceEntries),
		Pricebooks:   db.Collection(CollectionPricebooks),
		Quotes:       db.Collection(CollectionQuotes),
		QuoteLines:   db.Collection(CollectionQuoteLines),
		Templates:    db.Collection(CollectionTemplates),
		Logs:         db.Collection(CollectionLogs),
	}
}

type indexSpec struct {
	collection *mongo.Collection
	model      mongo.IndexModel
	// optional indexes only speed up audit queries; a failure is ignored.
	optional bool
}

func (m *MongoDB) indexSpecs() []indexSpec {
	return []indexSpec{
		{
			collection: m.PriceEntries,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "pricebook_id", Value: 1}, {Key: "product_id", Value: 1}},
				Options: options.Index().SetUnique(true).SetName("pricebook_product"),
			},
		},
		{
			collection: m.QuoteLines,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "quote_id", Value: 1}, {Key: "configured_product", Value: 1}},
				Options: options.Index().SetName("quote_configured_product"),
			},
		},
		{
			collection: m.Logs,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "request_id", Value: 1}},
				Options: options.Index().SetName("request_id"),
			},
			optional: true,
		},
		{
			collection: m.Logs,
			model: mongo.IndexModel{
				Keys:    bson.D{{Key: "quote_id", Value: 1}, {Key: "action_type", Value: 1}},
				Options: options.Index().SetName("quote_action"),
			},
			optional: true,
		},
	}
}

func (m *MongoDB) ensureIndexes(ctx context.Context) error {
	for _, spec := range m.indexSpecs() {
		if _, err := spec.collection.Indexes().CreateOne(ctx, spec.model); err != nil && !spec.optional {
			return fmt.Errorf("mongodb: index on %s: %w", spec.collection.Name(), err)
		}
	}
	return nil
}

// SetLogsTTL makes audit entries expire ttl after their timestamp. An
// existing TTL index with another expiry is modified in place. A
// non-positive ttl leaves the collection untouched.
func (m *MongoDB) SetLogsTTL(ctx context.Context, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	seconds := int32(ttl / time.Second)

	_, err := m.Logs.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: 1}},
		Options: options.Index().SetName(logsTTLIndexName).SetExpireAfterSeconds(seconds),
	})
	if err == nil || !isIndexConflict(err) {
		return err
	}

	cmd := bson.D{
		{Key: "collMod", Value: CollectionLogs},
		{Key: "index", Value: bson.D{
			{Key: "name", Value: logsTTLIndexName},
			{Key: "expireAfterSeconds", Value: seconds},
		}},
	}
	if err := m.Database.RunCommand(ctx, cmd).Err(); err != nil {
		return fmt.Errorf("mongodb: update logs ttl: %w", err)
	}
	return nil
}

func isIndexConflict(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.Code == codeIndexOptionsConflict || cmdErr.Code == codeIndexKeySpecConflict
	}
	return false
}

// Close disconnects the client.
func (m *MongoDB) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// HealthCheck pings the primary.
func (m *MongoDB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return m.Client.Ping(ctx, readpref.Primary())
}
