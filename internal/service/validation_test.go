package service

import (
	"strings"
	"testing"

	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testFields = []model.FieldDescriptor{
	{Path: "Product2.Name", Label: "Product", Type: model.FieldTypeText, ReadOnly: true},
	{Path: model.FieldQuantity, Label: "Quantity", Type: model.FieldTypeNumber, Updateable: true, Required: true},
	{Path: model.FieldUnitPrice, Label: "Sales Price", Type: model.FieldTypeCurrency, Updateable: true},
	{Path: model.FieldDiscount, Label: "Discount", Type: model.FieldTypePercent, Updateable: true},
	{Path: model.FieldListPrice, Label: "List Price", Type: model.FieldTypeCurrency},
	{Path: "DeliveryDate__c", Label: "Delivery", Type: model.FieldTypeDate, Updateable: true},
}

func asset(id, name string) model.Product {
	return model.Product{ID: id, Name: name, Type: model.ProductTypeAsset}
}

func TestValidator_AssetUniqueness(t *testing.T) {
	v := NewValidator(i18n.NewTranslator())

	tests := []struct {
		name          string
		lines         []model.Line
		selection     func() Selection
		expectValid   bool
		expectMessage []string
	}{
		{
			name: "no duplicates",
			lines: []model.Line{
				{Product: asset("A1", "Apartment 1"), Quantity: 1},
				{Product: asset("A2", "Apartment 2"), Quantity: 1},
			},
			expectValid: true,
		},
		{
			name: "duplicate asset parents",
			lines: []model.Line{
				{Product: asset("A1", "Apartment 1"), Quantity: 1},
				{Product: asset("A1", "Apartment 1"), Quantity: 1},
			},
			expectValid:   false,
			expectMessage: []string{"The product Apartment 1 (A1) can be added only once, either as an option or as a standalone product."},
		},
		{
			name: "non asset duplicates are allowed",
			lines: []model.Line{
				{Product: model.Product{ID: "S1", Name: "Service"}, Quantity: 1},
				{Product: model.Product{ID: "S1", Name: "Service"}, Quantity: 1},
			},
			expectValid: true,
		},
		{
			name: "selected asset option duplicates a standalone parent",
			lines: []model.Line{
				{Product: asset("P1", "Parking 1"), Quantity: 1},
				{
					Product:  model.Product{ID: "B1", Name: "Bundle"},
					Quantity: 1,
					Children: []model.Line{{Product: asset("P1", "Parking 1"), Quantity: 1}},
				},
			},
			selection: func() Selection {
				s := NewSelection()
				s.Toggle("B1", "P1", true)
				return s
			},
			expectValid:   false,
			expectMessage: []string{"Parking 1 (P1)"},
		},
		{
			name: "unselected asset option is ignored",
			lines: []model.Line{
				{Product: asset("P1", "Parking 1"), Quantity: 1},
				{
					Product:  model.Product{ID: "B1", Name: "Bundle"},
					Quantity: 1,
					Children: []model.Line{{Product: asset("P1", "Parking 1"), Quantity: 1}},
				},
			},
			expectValid: true,
		},
		{
			name: "mandatory asset option counts without selection",
			lines: []model.Line{
				{
					Product:  model.Product{ID: "B1", Name: "Bundle"},
					Quantity: 1,
					Children: []model.Line{{Product: asset("S1", "Storage"), Quantity: 1, Mandatory: true}},
				},
				{
					Product:  model.Product{ID: "B2", Name: "Bundle 2"},
					Quantity: 1,
					Children: []model.Line{{Product: asset("S1", "Storage"), Quantity: 1, Mandatory: true}},
				},
			},
			expectValid:   false,
			expectMessage: []string{"Storage (S1)"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selection := NewSelection()
			if tt.selection != nil {
				selection = tt.selection()
			}

			result := v.Validate(tt.lines, selection, testFields, "en")

			assert.Equal(t, tt.expectValid, result.Valid)
			for _, msg := range tt.expectMessage {
				assert.Contains(t, result.Message, msg)
			}
			if tt.expectValid {
				assert.Empty(t, result.Message)
			}
		})
	}
}

func TestValidator_RowChecks(t *testing.T) {
	v := NewValidator(i18n.NewTranslator())

	tests := []struct {
		name        string
		line        model.Line
		expectValid bool
		expectField string
	}{
		{
			name:        "valid row",
			line:        model.Line{Product: model.Product{ID: "X"}, Quantity: 2, UnitPrice: 10, Discount: 5},
			expectValid: true,
		},
		{
			name:        "quantity below one",
			line:        model.Line{Product: model.Product{ID: "X"}, Quantity: 0},
			expectField: model.FieldQuantity,
		},
		{
			name:        "discount above hundred",
			line:        model.Line{Product: model.Product{ID: "X"}, Quantity: 1, Discount: 120},
			expectField: model.FieldDiscount,
		},
		{
			name:        "negative price",
			line:        model.Line{Product: model.Product{ID: "X"}, Quantity: 1, UnitPrice: -1},
			expectField: model.FieldUnitPrice,
		},
		{
			name:        "bad date",
			line:        model.Line{Product: model.Product{ID: "X"}, Quantity: 1, Attributes: map[string]any{"DeliveryDate__c": "31/12/2026"}},
			expectField: "DeliveryDate__c",
		},
		{
			name:        "valid date",
			line:        model.Line{Product: model.Product{ID: "X"}, Quantity: 1, Attributes: map[string]any{"DeliveryDate__c": "2026-12-31"}},
			expectValid: true,
		},
		{
			name:        "read-only list price is never checked",
			line:        model.Line{Product: model.Product{ID: "X"}, Quantity: 1, ListPrice: -5},
			expectValid: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate([]model.Line{tt.line}, NewSelection(), testFields, "en")

			assert.Equal(t, tt.expectValid, result.Valid)
			if !tt.expectValid {
				require.NotEmpty(t, result.Issues)
				assert.Equal(t, tt.expectField, result.Issues[0].Field)
				assert.Equal(t, "Please correct the issues in the table before saving.", result.Message)
			}
		})
	}
}

func TestValidator_ShortCircuitsRowsButScansAllAssets(t *testing.T) {
	v := NewValidator(i18n.NewTranslator())
	lines := []model.Line{
		{Product: model.Product{ID: "X1"}, Quantity: 0},
		{Product: model.Product{ID: "X2"}, Quantity: 0},
		{Product: asset("A1", "Apartment 1"), Quantity: 1},
		{Product: asset("A1", "Apartment 1"), Quantity: 1},
	}

	result := v.Validate(lines, NewSelection(), testFields, "en")

	assert.False(t, result.Valid)
	assert.Len(t, result.Issues, 1, "only the first invalid row is reported")
	assert.Equal(t, "0", result.Issues[0].Row)
	assert.Equal(t, 1, strings.Count(result.Message, "Please correct"))
	assert.Contains(t, result.Message, "Apartment 1 (A1)")
	assert.Len(t, strings.Split(result.Message, "\n"), 2)
}

func TestValidator_ChildRowsOnlyWhenIncluded(t *testing.T) {
	v := NewValidator(i18n.NewTranslator())
	lines := []model.Line{
		{
			Product:  model.Product{ID: "B1"},
			Quantity: 1,
			Children: []model.Line{{Product: model.Product{ID: "C1"}, Quantity: 0}},
		},
	}

	result := v.Validate(lines, NewSelection(), testFields, "en")
	assert.True(t, result.Valid, "unselected child is not validated")

	selection := NewSelection()
	selection.Toggle("B1", "C1", true)
	result = v.Validate(lines, selection, testFields, "en")
	assert.False(t, result.Valid)
	assert.Equal(t, "0.0", result.Issues[0].Row)
}

func TestValidator_LocalizedMessages(t *testing.T) {
	v := NewValidator(nil)
	lines := []model.Line{
		{Product: asset("A1", "Apartament 1"), Quantity: 1},
		{Product: asset("A1", "Apartament 1"), Quantity: 1},
	}

	result := v.Validate(lines, NewSelection(), testFields, "ro")

	assert.Equal(t, "Produsul Apartament 1 (A1) poate fi adăugat o singură dată, fie ca opțiune, fie ca produs separat.", result.Message)
}
