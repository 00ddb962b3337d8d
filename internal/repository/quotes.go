package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

func replaceUpsert() *options.ReplaceOptions {
	return options.Replace().SetUpsert(true)
}

// QuotesRepository provides read access to quote headers.
type QuotesRepository struct {
	collection *mongo.Collection
}

// NewQuotesRepository creates a new quotes repository.
func NewQuotesRepository(db *MongoDB) *QuotesRepository {
	return &QuotesRepository{
		collection: db.Quotes,
	}
}

// FindByID returns the quote or ErrRecordNotFound.
func (r *QuotesRepository) FindByID(ctx context.Context, id string) (*model.Quote, error) {
	var quote model.Quote
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&quote)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// Upsert stores a quote header.
func (r *QuotesRepository) Upsert(ctx context.Context, quote model.Quote) error {
	return upsertByID(ctx, r.collection, quote.ID, quote)
}

// PricebooksRepository provides access to pricebooks.
type PricebooksRepository struct {
	collection *mongo.Collection
}

// NewPricebooksRepository creates a new pricebooks repository.
func NewPricebooksRepository(db *MongoDB) *PricebooksRepository {
	return &PricebooksRepository{
		collection: db.Pricebooks,
	}
}

// ListActive returns active pricebooks sorted by name. Date validity is
// checked by the caller against the quote date.
func (r *PricebooksRepository) ListActive(ctx context.Context) ([]model.Pricebook, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"active": true}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var pricebooks []model.Pricebook
	if err := cursor.All(ctx, &pricebooks); err != nil {
		return nil, err
	}
	return pricebooks, nil
}

// Upsert stores a pricebook.
func (r *PricebooksRepository) Upsert(ctx context.Context, pb model.Pricebook) error {
	return upsertByID(ctx, r.collection, pb.ID, pb)
}

// TemplatesRepository stores named PDF sections.
type TemplatesRepository struct {
	collection *mongo.Collection
}

// NewTemplatesRepository creates a new document templates repository.
func NewTemplatesRepository(db *MongoDB) *TemplatesRepository {
	return &TemplatesRepository{
		collection: db.Templates,
	}
}

// FindByName returns the named template, or nil when none is stored.
func (r *TemplatesRepository) FindByName(ctx context.Context, name string) (*model.DocumentTemplate, error) {
	var tmpl model.DocumentTemplate
	err := r.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&tmpl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil // Missing sections are skipped by the annex
	}
	if err != nil {
		return nil, err
	}
	return &tmpl, nil
}

// Upsert stores a template under its name.
func (r *TemplatesRepository) Upsert(ctx context.Context, tmpl model.DocumentTemplate) error {
	return upsertByID(ctx, r.collection, tmpl.Name, tmpl)
}
