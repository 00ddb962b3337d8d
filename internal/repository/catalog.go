package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

// CatalogRepository answers the catalog and pricing query of the product wizard.
type CatalogRepository struct {
	products   *mongo.Collection
	prices     *mongo.Collection
	quoteLines *QuoteLinesRepository
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *MongoDB) *CatalogRepository {
	return &CatalogRepository{
		products:   db.Products,
		prices:     db.PriceEntries,
		quoteLines: NewQuoteLinesRepository(db),
	}
}

// Query returns the quote's parent lines, the bundles for the selected
// products and for already quoted bundles, and the active prices of every
// product involved in the given pricebook.
func (r *CatalogRepository) Query(ctx context.Context, quoteID, pricebookID string, productIDs []string) (model.CatalogResult, error) {
	var result model.CatalogResult

	existing, err := r.quoteLines.FindByQuote(ctx, quoteID)
	if err != nil {
		return result, fmt.Errorf("load quote lines: %w", err)
	}
	result.ExistingLines = existing

	bundleIDs := make([]string, 0, len(productIDs)+len(existing))
	seen := make(map[string]struct{})
	addBundle := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		bundleIDs = append(bundleIDs, id)
	}

	for i := range existing {
		if existing[i].ConfiguredProduct != "" {
			continue
		}
		line := existing[i]
		result.Records = append(result.Records, model.CatalogRecord{QuoteLine: &line})
		if len(line.Product.Options) > 0 {
			addBundle(line.ProductID())
		}
	}
	for _, id := range productIDs {
		addBundle(id)
	}

	products, err := findProducts(ctx, r.products, bundleIDs)
	if err != nil {
		return result, fmt.Errorf("load products: %w", err)
	}
	for _, id := range bundleIDs {
		p, ok := products[id]
		if !ok {
			continue
		}
		result.Records = append(result.Records, model.CatalogRecord{Bundle: &p})
	}

	priced := make(map[string]struct{})
	for _, rec := range result.Records {
		if rec.QuoteLine != nil {
			priced[rec.QuoteLine.ProductID()] = struct{}{}
		}
		if rec.Bundle != nil {
			priced[rec.Bundle.ID] = struct{}{}
			for _, opt := range rec.Bundle.Options {
				priced[opt.OptionProductID] = struct{}{}
			}
		}
	}
	ids := make([]string, 0, len(priced))
	for id := range priced {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result.Prices, err = r.findPrices(ctx, pricebookID, ids)
	if err != nil {
		return result, fmt.Errorf("load prices: %w", err)
	}
	return result, nil
}

func (r *CatalogRepository) findPrices(ctx context.Context, pricebookID string, productIDs []string) ([]model.PriceEntry, error) {
	if len(productIDs) == 0 {
		return nil, nil
	}

	cursor, err := r.prices.Find(ctx, bson.M{
		"pricebook_id": pricebookID,
		"product_id":   bson.M{"$in": productIDs},
		"active":       true,
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var prices []model.PriceEntry
	if err := cursor.All(ctx, &prices); err != nil {
		return nil, err
	}
	return prices, nil
}

// searchLimit caps the rows of one product search.
const searchLimit = 100

// SearchEntries lists the active price entries of a pricebook whose active
// product matches term by name or code, case-insensitively, ordered by
// product name. A blank term matches nothing.
func (r *CatalogRepository) SearchEntries(ctx context.Context, pricebookID, term string) ([]model.CatalogEntry, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, nil
	}
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"pricebook_id": pricebookID, "active": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         CollectionProducts,
			"localField":   "product_id",
			"foreignField": "_id",
			"as":           "product",
		}}},
		{{Key: "$unwind", Value: "$product"}},
		{{Key: "$match", Value: bson.M{
			"product.active": true,
			"$or": bson.A{
				bson.M{"product.name": pattern},
				bson.M{"product.code": pattern},
			},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "product.name", Value: 1}, {Key: "_id", Value: 1}}}},
		{{Key: "$limit", Value: searchLimit}},
		{{Key: "$project", Value: bson.M{
			"product_id": 1,
			"unit_price": 1,
			"name":       "$product.name",
			"code":       "$product.code",
			"type":       "$product.type",
			"bundle": bson.M{"$gt": bson.A{
				bson.M{"$size": bson.M{"$ifNull": bson.A{"$product.options", bson.A{}}}},
				0,
			}},
		}}},
	}

	cursor, err := r.prices.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("search price entries: %w", err)
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	entries := []model.CatalogEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode price entries: %w", err)
	}
	return entries, nil
}

// UpsertProduct stores a product definition, replacing any previous one.
func (r *CatalogRepository) UpsertProduct(ctx context.Context, p model.Product) error {
	return upsertByID(ctx, r.products, p.ID, p)
}

// UpsertPrice stores a price entry, replacing any previous one.
func (r *CatalogRepository) UpsertPrice(ctx context.Context, p model.PriceEntry) error {
	return upsertByID(ctx, r.prices, p.ID, p)
}

func upsertByID(ctx context.Context, collection *mongo.Collection, id string, doc interface{}) error {
	if id == "" {
		return errors.New("document id is required")
	}
	_, err := collection.ReplaceOne(ctx, bson.M{"_id": id}, doc, replaceUpsert())
	return err
}
