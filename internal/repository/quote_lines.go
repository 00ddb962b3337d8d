package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// ErrRecordNotFound is returned when a looked-up document does not exist.
var ErrRecordNotFound = errors.New("record not found")

// QuoteLineDocument is a persisted quote line. Child option lines reference
// their parent line through ConfiguredProduct.
type QuoteLineDocument struct {
	ID                string         `bson:"_id"`
	QuoteID           string         `bson:"quote_id"`
	ProductID         string         `bson:"product_id"`
	PriceEntryID      string         `bson:"price_entry_id"`
	Quantity          float64        `bson:"quantity"`
	UnitPrice         float64        `bson:"unit_price"`
	ListPrice         float64        `bson:"list_price"`
	Discount          float64        `bson:"discount,omitempty"`
	ConfiguredProduct string         `bson:"configured_product,omitempty"`
	Fields            map[string]any `bson:"fields,omitempty"`
	CreatedAt         time.Time      `bson:"created_at"`
}

// QuoteLinesRepository stores quote lines and answers the save protocol.
type QuoteLinesRepository struct {
	collection *mongo.Collection
	products   *mongo.Collection
}

// NewQuoteLinesRepository creates a new quote lines repository.
func NewQuoteLinesRepository(db *MongoDB) *QuoteLinesRepository {
	return &QuoteLinesRepository{
		collection: db.QuoteLines,
		products:   db.Products,
	}
}

// SaveLines validates and inserts one batch. Unless SkipDeletion is set, the
// quote's previous lines are removed first. Row problems are reported in the
// response and nothing is written for that batch.
func (r *QuoteLinesRepository) SaveLines(ctx context.Context, req model.SaveRequest) (model.SaveResponse, error) {
	var resp model.SaveResponse
	if req.QuoteID == "" {
		resp.Errors = append(resp.Errors, "quote id is required")
		return resp, nil
	}

	for i, rec := range req.Records {
		row := rec.Sequence
		if row == "" {
			row = fmt.Sprintf("%d", i+1)
		}
		if rec.PriceEntryID == "" {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %s: price entry is required", row))
		}
		if rec.ProductID == "" {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %s: product is required", row))
		}
		if rec.BelongsTo != "" && rec.ConfiguredProduct == "" {
			resp.Errors = append(resp.Errors, fmt.Sprintf("row %s: parent line is required", row))
		}
	}
	if len(resp.Errors) > 0 {
		return resp, nil
	}

	if !req.SkipDeletion {
		if _, err := r.collection.DeleteMany(ctx, bson.M{"quote_id": req.QuoteID}); err != nil {
			return resp, fmt.Errorf("delete quote lines: %w", err)
		}
	}
	if len(req.Records) == 0 {
		return resp, nil
	}

	now := time.Now()
	docs := make([]interface{}, len(req.Records))
	resp.Records = make([]model.SavedRecord, len(req.Records))
	for i, rec := range req.Records {
		id := primitive.NewObjectID().Hex()
		discount, _ := model.ToFloat(rec.Fields[model.FieldDiscount])
		docs[i] = QuoteLineDocument{
			ID:                id,
			QuoteID:           req.QuoteID,
			ProductID:         rec.ProductID,
			PriceEntryID:      rec.PriceEntryID,
			Quantity:          rec.Quantity,
			UnitPrice:         rec.UnitPrice,
			ListPrice:         rec.ListPrice,
			Discount:          discount,
			ConfiguredProduct: rec.ConfiguredProduct,
			Fields:            withoutKey(rec.Fields, model.FieldDiscount),
			CreatedAt:         now,
		}
		resp.Records[i] = model.SavedRecord{ID: id, Sequence: rec.Sequence}
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return model.SaveResponse{}, fmt.Errorf("insert quote lines: %w", err)
	}
	return resp, nil
}

func withoutKey(m map[string]any, key string) map[string]any {
	if _, ok := m[key]; !ok {
		return m
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if k != key {
			out[k] = v
		}
	}
	return out
}

// FindByQuote returns every line of the quote, parents and options, with
// their products loaded, in insertion order.
func (r *QuoteLinesRepository) FindByQuote(ctx context.Context, quoteID string) ([]model.Line, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"quote_id": quoteID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var docs []QuoteLineDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, nil
	}

	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ProductID)
	}
	products, err := findProducts(ctx, r.products, ids)
	if err != nil {
		return nil, err
	}

	lines := make([]model.Line, 0, len(docs))
	for _, d := range docs {
		product, ok := products[d.ProductID]
		if !ok {
			product = model.Product{ID: d.ProductID}
		}
		line := model.Line{
			ID:                d.ID,
			QuoteID:           d.QuoteID,
			Product:           product,
			PriceEntryID:      d.PriceEntryID,
			UnitPrice:         d.UnitPrice,
			ListPrice:         d.ListPrice,
			Discount:          d.Discount,
			Quantity:          d.Quantity,
			ConfiguredProduct: d.ConfiguredProduct,
		}
		for k, v := range d.Fields {
			_ = line.SetField(k, v)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// findProducts loads products by id.
func findProducts(ctx context.Context, collection *mongo.Collection, ids []string) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	cursor, err := collection.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var products []model.Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = p
	}
	return out, nil
}
