package service

import (
	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/rs/zerolog/log"
)

type priceRef struct {
	entryID string
	price   float64
}

// MapProducts turns a catalog query result into the parent/child tree edited
// by a configuration session. Existing quote lines without a price in the
// active pricebook are dropped; bundle options without a price are omitted.
// Previously saved option lines found in result.ExistingLines are restored
// as pre-selected children carrying their saved field values. optionFields
// lists the columns copied on restore; related-record paths are skipped.
//
// The mapping performs no I/O and never fails: malformed records are logged
// and left out of the tree.
func MapProducts(result model.CatalogResult, optionFields []model.FieldDescriptor) []model.Line {
	pricing := make(map[string]priceRef, len(result.Prices))
	for _, p := range result.Prices {
		pricing[p.ProductID] = priceRef{entryID: p.ID, price: p.UnitPrice}
	}

	var (
		lines   []model.Line
		bundles []model.Product
	)
	for i, rec := range result.Records {
		switch {
		case rec.QuoteLine != nil:
			line := rec.QuoteLine.Clone()
			ref, ok := pricing[line.ProductID()]
			if !ok {
				log.Debug().
					Str("product_id", line.ProductID()).
					Msg("Dropping quote line without price in pricebook")
				continue
			}
			line.PriceEntryID = ref.entryID
			lines = append(lines, line)
		case rec.Bundle != nil:
			bundles = append(bundles, *rec.Bundle)
		default:
			log.Warn().Int("index", i).Msg("Catalog record carries neither a quote line nor a product")
		}
	}

	for _, bundle := range bundles {
		children := mapOptions(bundle, pricing, result.ExistingLines, optionFields)

		found := false
		for i := range lines {
			if lines[i].ProductID() != bundle.ID {
				continue
			}
			lines[i].Product = bundle
			lines[i].Children = model.CloneLines(children)
			found = true
		}
		if found {
			continue
		}

		ref, ok := pricing[bundle.ID]
		if !ok {
			log.Warn().
				Str("product_id", bundle.ID).
				Str("product_name", bundle.Name).
				Msg("Skipping bundle without price in pricebook")
			continue
		}
		lines = append(lines, model.Line{
			PriceEntryID: ref.entryID,
			Product:      bundle,
			Children:     children,
			UnitPrice:    ref.price,
			ListPrice:    ref.price,
			Quantity:     1,
		})
	}

	return lines
}

func mapOptions(bundle model.Product, pricing map[string]priceRef, existing []model.Line, optionFields []model.FieldDescriptor) []model.Line {
	var children []model.Line
	for _, opt := range bundle.Options {
		product := opt.Option
		if product.ID == "" {
			product.ID = opt.OptionProductID
		}
		ref, ok := pricing[product.ID]
		if !ok {
			continue
		}
		child := model.Line{
			PriceEntryID:      ref.entryID,
			Product:           product,
			UnitPrice:         ref.price,
			ListPrice:         ref.price,
			Quantity:          1,
			ConfiguredProduct: opt.ConfiguredProduct,
			Mandatory:         opt.Mandatory,
		}
		restoreOption(&child, existing, optionFields)
		children = append(children, child)
	}
	return children
}

// restoreOption copies saved values onto child when the quote already holds
// a line for the same option under the same bundle. child.ConfiguredProduct
// is the bundle product; saved option lines reference the bundle's quote line.
func restoreOption(child *model.Line, existing []model.Line, optionFields []model.FieldDescriptor) {
	if child.ConfiguredProduct == "" {
		return
	}

	var bundleLineID string
	for _, l := range existing {
		if l.ProductID() == child.ConfiguredProduct {
			bundleLineID = l.ID
			break
		}
	}
	if bundleLineID == "" {
		return
	}

	for _, saved := range existing {
		if saved.ProductID() != child.ProductID() || saved.ConfiguredProduct != bundleLineID {
			continue
		}
		for _, fd := range optionFields {
			if fd.Nested() {
				continue
			}
			value, ok := saved.Field(fd.Path)
			if !ok {
				continue
			}
			if err := child.SetField(fd.Path, value); err != nil {
				log.Warn().Err(err).
					Str("product_id", child.ProductID()).
					Str("field", fd.Path).
					Msg("Could not restore option field")
			}
		}
		child.SelectedOption = true
		return
	}
}
