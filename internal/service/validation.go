package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
)

// FieldIssue pinpoints one invalid cell.
type FieldIssue struct {
	Row     string `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult is the outcome of validating a configuration. Message
// accumulates user-facing lines joined by newlines.
type ValidationResult struct {
	Valid   bool         `json:"valid"`
	Message string       `json:"message,omitempty"`
	Issues  []FieldIssue `json:"issues,omitempty"`
}

func (r *ValidationResult) addMessage(msg string) {
	if r.Message != "" {
		r.Message += "\n"
	}
	r.Message += msg
}

// Validator checks editable cells row by row and asset uniqueness across the
// whole configuration.
type Validator struct {
	translator *i18n.Translator
}

// NewValidator creates a validator that renders messages with translator.
func NewValidator(translator *i18n.Translator) *Validator {
	if translator == nil {
		translator = i18n.GetTranslator()
	}
	return &Validator{translator: translator}
}

// Validate runs row checks on parents and on children that are mandatory or
// selected, stopping at the first invalid row, then scans every included line
// for duplicate asset products. It never returns an error.
func (v *Validator) Validate(lines []model.Line, selection Selection, fields []model.FieldDescriptor, locale string) ValidationResult {
	result := ValidationResult{Valid: true}

	for i, parent := range lines {
		if !result.Valid {
			break
		}
		if issues := v.checkRow(rowKey(i, -1), parent, fields, locale); len(issues) > 0 {
			result.Valid = false
			result.Issues = issues
			result.addMessage(v.translator.Translate(i18n.ValKeyPleaseCorrect, locale))
			break
		}
		for j, child := range parent.Children {
			if !included(parent, child, selection) {
				continue
			}
			if issues := v.checkRow(rowKey(i, j), child, fields, locale); len(issues) > 0 {
				result.Valid = false
				result.Issues = issues
				result.addMessage(v.translator.Translate(i18n.ValKeyPleaseCorrect, locale))
				break
			}
		}
	}

	seen := make(map[string]struct{})
	checkAsset := func(p model.Product) {
		if !p.IsAsset() {
			return
		}
		if _, dup := seen[p.ID]; dup {
			result.Valid = false
			result.addMessage(v.translator.Format(i18n.ValKeyDuplicateAsset, locale, p.Name, p.ID))
			return
		}
		seen[p.ID] = struct{}{}
	}
	for _, parent := range lines {
		checkAsset(parent.Product)
		for _, child := range parent.Children {
			if included(parent, child, selection) {
				checkAsset(child.Product)
			}
		}
	}

	return result
}

// included reports whether a child contributes to totals, validation and the save payload.
func included(parent, child model.Line, selection Selection) bool {
	return child.Mandatory || selection.Has(parent.ProductID(), child.ProductID())
}

func rowKey(parent, child int) string {
	if child < 0 {
		return fmt.Sprintf("%d", parent)
	}
	return fmt.Sprintf("%d.%d", parent, child)
}

func (v *Validator) checkRow(row string, line model.Line, fields []model.FieldDescriptor, locale string) []FieldIssue {
	var issues []FieldIssue
	for _, fd := range fields {
		if !fd.Editable() {
			continue
		}
		value, _ := line.Field(fd.Path)
		if key := checkValue(fd, value); key != "" {
			label := fd.Label
			if label == "" {
				label = fd.Path
			}
			issues = append(issues, FieldIssue{
				Row:     row,
				Field:   fd.Path,
				Message: v.translator.Format(key, locale, label),
			})
		}
	}
	return issues
}

// checkValue returns the message key describing why value is invalid for fd,
// or "" when it is valid.
func checkValue(fd model.FieldDescriptor, value any) string {
	if isBlank(value) {
		if fd.Required {
			return i18n.ValKeyRequired
		}
		return ""
	}

	switch fd.Type {
	case model.FieldTypeNumber, model.FieldTypeCurrency, model.FieldTypePercent:
		f, err := model.ToFloat(value)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return i18n.ValKeyNumber
		}
		if f < 0 {
			return i18n.ValKeyNegative
		}
		if fd.Type == model.FieldTypePercent && f > 100 {
			return i18n.ValKeyPercentRange
		}
		if fd.Path == model.FieldQuantity && f < 1 {
			return i18n.ValKeyQuantityMin
		}
	case model.FieldTypeDate:
		s, ok := value.(string)
		if !ok {
			return i18n.ValKeyDate
		}
		if _, err := time.Parse(time.DateOnly, s); err != nil {
			return i18n.ValKeyDate
		}
	case model.FieldTypeDateTime:
		s, ok := value.(string)
		if !ok {
			return i18n.ValKeyDateTime
		}
		if _, err := time.Parse(time.RFC3339, s); err != nil {
			return i18n.ValKeyDateTime
		}
	case model.FieldTypeBoolean:
		if _, ok := value.(bool); !ok {
			return i18n.ValKeyBoolean
		}
	}
	return ""
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	}
	return false
}
