package dto

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestCellEditRequest_Validate(t *testing.T) {
	tests := []struct {
		name          string
		request       CellEditRequest
		expectedError error
	}{
		{
			name:    "valid parent edit",
			request: CellEditRequest{Edits: []CellEdit{{ParentIndex: 0, Field: "Quantity", Value: 2}}},
		},
		{
			name:    "valid child edit",
			request: CellEditRequest{Edits: []CellEdit{{ParentIndex: 1, ChildIndex: intPtr(0), Field: "Discount", Value: 5}}},
		},
		{
			name:          "negative parent index",
			request:       CellEditRequest{Edits: []CellEdit{{ParentIndex: -1, Field: "Quantity"}}},
			expectedError: ErrInvalidParentIndex,
		},
		{
			name:          "negative child index",
			request:       CellEditRequest{Edits: []CellEdit{{ParentIndex: 0, ChildIndex: intPtr(-2), Field: "Quantity"}}},
			expectedError: ErrInvalidChildIndex,
		},
		{
			name:          "missing field",
			request:       CellEditRequest{Edits: []CellEdit{{ParentIndex: 0}}},
			expectedError: ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	tests := []struct {
		name          string
		validationErr *ValidationError
		expected      string
	}{
		{
			name:          "parent index message",
			validationErr: ErrInvalidParentIndex,
			expected:      "parent_index: must be zero or greater",
		},
		{
			name: "custom field",
			validationErr: &ValidationError{
				Field:   "field",
				Message: "is required",
			},
			expected: "field: is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.validationErr.Error())
		})
	}
}

func TestProductSearchQuery_ExcludedIDs(t *testing.T) {
	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{name: "none", exclude: nil, want: nil},
		{name: "repeated", exclude: []string{"P1", "P2"}, want: []string{"P1", "P2"}},
		{name: "comma separated", exclude: []string{"P1, P2,,P3"}, want: []string{"P1", "P2", "P3"}},
		{name: "blank values", exclude: []string{" ", ","}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProductSearchQuery{Exclude: tt.exclude}.ExcludedIDs())
		})
	}
}
