package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/logger"
	"github.com/guttosm/quote-configurator/internal/metrics"
)

const (
	phaseParents  = "parents"
	phaseChildren = "children"
)

var (
	// ErrSaveRejected is returned when the record store reports row errors in phase one.
	ErrSaveRejected = errors.New("save rejected by record store")
	// ErrPartialSave is returned when parents were persisted but children were not.
	// Phase one is not compensated; the quote needs manual correction.
	ErrPartialSave = errors.New("configuration partially saved")
)

// fixedSaveKeys are carried by named record fields and never copied from the field set.
var fixedSaveKeys = map[string]struct{}{
	"PricebookEntryId":    {},
	"QuoteId":             {},
	"Product2Id":          {},
	model.FieldUnitPrice:  {},
	model.FieldListPrice:  {},
	model.FieldQuantity:   {},
}

// QuoteLineStore persists a batch of quote line records.
type QuoteLineStore interface {
	SaveLines(ctx context.Context, req model.SaveRequest) (model.SaveResponse, error)
}

// SaveError describes a failed save attempt. Messages are the row errors
// reported by the record store, if any.
type SaveError struct {
	Phase    string
	Messages []string
	Kind     error
	Cause    error
}

func (e *SaveError) Error() string {
	var b strings.Builder
	b.WriteString(e.Phase)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	if len(e.Messages) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(e.Messages, "; "))
	}
	return b.String()
}

// Unwrap exposes both the failure kind and the underlying cause to errors.Is.
func (e *SaveError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// SavePayload holds both phases of a save before submission.
type SavePayload struct {
	Parents  []model.SaveRecord
	Children []model.SaveRecord
}

// SaveOutcome reports what a save persisted.
type SaveOutcome struct {
	Parents       []model.SavedRecord
	ChildrenSaved int
	// Dropped lists product ids of children whose parent could not be resolved.
	Dropped []string
}

// BuildSavePayload flattens the working copy. Parents get sequences "1".."n"
// in row order; children that are mandatory or selected reference their
// parent's sequence through BelongsTo. Only updateable field-set columns known
// to fieldsInfo are copied; columns the object does not declare are left out.
func BuildSavePayload(quoteID string, lines []model.Line, selection Selection, fieldsInfo model.FieldsInfo) SavePayload {
	payload := SavePayload{
		Parents: make([]model.SaveRecord, 0, len(lines)),
	}

	for i, parent := range lines {
		seq := strconv.Itoa(i + 1)
		payload.Parents = append(payload.Parents, model.SaveRecord{
			Sequence:     seq,
			PriceEntryID: parent.PriceEntryID,
			QuoteID:      quoteID,
			ProductID:    parent.ProductID(),
			Quantity:     parent.Quantity,
			UnitPrice:    parent.UnitPrice,
			ListPrice:    parent.ListPrice,
			Fields:       saveFields(parent, fieldsInfo),
		})

		for _, child := range parent.Children {
			if !included(parent, child, selection) {
				continue
			}
			quantity := child.Quantity
			if quantity <= 0 {
				quantity = 1
			}
			payload.Children = append(payload.Children, model.SaveRecord{
				BelongsTo:    seq,
				PriceEntryID: child.PriceEntryID,
				QuoteID:      quoteID,
				ProductID:    child.ProductID(),
				Quantity:     quantity,
				UnitPrice:    finiteOrZero(child.UnitPrice),
				ListPrice:    finiteOrZero(child.ListPrice),
				Fields:       saveFields(child, fieldsInfo),
			})
		}
	}

	return payload
}

func saveFields(line model.Line, fieldsInfo model.FieldsInfo) map[string]any {
	var fields map[string]any
	for path, fd := range fieldsInfo {
		if !fd.Updateable || fd.Nested() {
			continue
		}
		if _, fixed := fixedSaveKeys[path]; fixed {
			continue
		}
		value, ok := line.Field(path)
		if !ok {
			continue
		}
		if fields == nil {
			fields = make(map[string]any)
		}
		fields[path] = value
	}
	return fields
}

// SaveProtocol persists parents first and then children, which reference
// identities that only exist after phase one.
type SaveProtocol struct {
	store QuoteLineStore
}

// NewSaveProtocol creates a protocol writing through store.
func NewSaveProtocol(store QuoteLineStore) *SaveProtocol {
	return &SaveProtocol{store: store}
}

// Execute runs both phases. Phase one replaces the quote's lines; any error
// there aborts before phase two. Children whose BelongsTo sequence has no
// generated identity are dropped. Phase two never deletes.
func (p *SaveProtocol) Execute(ctx context.Context, quoteID, pricebookID string, payload SavePayload) (SaveOutcome, error) {
	var outcome SaveOutcome

	start := time.Now()
	resp, err := p.store.SaveLines(ctx, model.SaveRequest{
		QuoteID:     quoteID,
		PricebookID: pricebookID,
		Records:     payload.Parents,
	})
	metrics.RecordSavePhase(phaseParents, time.Since(start))
	if err != nil {
		metrics.RecordSave("failed")
		return outcome, &SaveError{Phase: phaseParents, Kind: ErrSaveRejected, Cause: err}
	}
	if len(resp.Errors) > 0 {
		metrics.RecordSave("rejected")
		return outcome, &SaveError{Phase: phaseParents, Kind: ErrSaveRejected, Messages: resp.Errors}
	}
	outcome.Parents = resp.Records

	ids := make(map[string]string, len(resp.Records))
	for _, rec := range resp.Records {
		if rec.Sequence != "" && rec.ID != "" {
			ids[rec.Sequence] = rec.ID
		}
	}

	children := make([]model.SaveRecord, 0, len(payload.Children))
	for _, child := range payload.Children {
		parentID, ok := ids[child.BelongsTo]
		if !ok {
			logger.Ctx(ctx).Warn().
				Str("quote_id", quoteID).
				Str("product_id", child.ProductID).
				Str("belongs_to", child.BelongsTo).
				Msg("Dropping option line with unresolved parent")
			outcome.Dropped = append(outcome.Dropped, child.ProductID)
			continue
		}
		child.ConfiguredProduct = parentID
		children = append(children, child)
	}

	if len(children) == 0 {
		metrics.RecordSave("saved")
		return outcome, nil
	}

	start = time.Now()
	resp, err = p.store.SaveLines(ctx, model.SaveRequest{
		QuoteID:      quoteID,
		PricebookID:  pricebookID,
		Records:      children,
		SkipDeletion: true,
	})
	metrics.RecordSavePhase(phaseChildren, time.Since(start))
	if err != nil {
		metrics.RecordSave("partial")
		return outcome, &SaveError{Phase: phaseChildren, Kind: ErrPartialSave, Cause: err}
	}
	if len(resp.Errors) > 0 {
		metrics.RecordSave("partial")
		return outcome, &SaveError{Phase: phaseChildren, Kind: ErrPartialSave, Messages: resp.Errors}
	}

	outcome.ChildrenSaved = len(children)
	metrics.RecordSave("saved")
	logger.Ctx(ctx).Info().
		Str("quote_id", quoteID).
		Int("parents", len(outcome.Parents)).
		Int("children", outcome.ChildrenSaved).
		Msg("Configuration saved")
	return outcome, nil
}

// String renders the phase sizes for logs.
func (p SavePayload) String() string {
	return fmt.Sprintf("parents=%d children=%d", len(p.Parents), len(p.Children))
}
