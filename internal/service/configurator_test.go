package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-configurator/internal/domain/dto"
	"github.com/guttosm/quote-configurator/internal/domain/model"
	"github.com/guttosm/quote-configurator/internal/i18n"
	"github.com/guttosm/quote-configurator/internal/mocks"
)

func bundleLines() []model.Line {
	return []model.Line{
		{
			PriceEntryID: "PE-B1",
			Product:      model.Product{ID: "B1", Name: "Apartment"},
			UnitPrice:    100,
			Discount:     10,
			Quantity:     2,
			Children: []model.Line{
				{PriceEntryID: "PE-M", Product: model.Product{ID: "M1"}, UnitPrice: 20, Quantity: 1, Mandatory: true},
				{PriceEntryID: "PE-O", Product: model.Product{ID: "O1"}, UnitPrice: 50, Quantity: 1},
			},
		},
	}
}

func readySession(t *testing.T, store QuoteLineStore, lines []model.Line) *Session {
	t.Helper()
	s := NewSession("S1", "Q1", "PB1", WithSaveProtocol(NewSaveProtocol(store)), WithTranslator(i18n.NewTranslator()))
	require.NoError(t, s.SetFieldSet(testFields))
	require.NoError(t, s.SetFieldsInfo(testFieldsInfo))
	require.NoError(t, s.SetRecords(lines))
	require.Equal(t, StateReady, s.State())
	return s
}

func intPtr(i int) *int { return &i }

func TestSession_InitializesOnceAllInputsArePresent(t *testing.T) {
	s := NewSession("S1", "Q1", "PB1")

	require.NoError(t, s.SetRecords(bundleLines()))
	assert.Equal(t, StateUninitialized, s.State())

	require.NoError(t, s.SetFieldsInfo(testFieldsInfo))
	assert.Equal(t, StateUninitialized, s.State())

	require.NoError(t, s.SetFieldSet(testFields))
	assert.Equal(t, StateReady, s.State())

	view := s.View("en")
	assert.Equal(t, 200.0, view.GrandTotal)
	assert.Equal(t, 180.0, view.Lines[0].Total)
}

func TestSession_NormalizesParentQuantity(t *testing.T) {
	lines := []model.Line{{Product: model.Product{ID: "L1"}, UnitPrice: 10}}

	s := readySession(t, new(mocks.MockQuoteLineStore), lines)

	view := s.View("en")
	assert.Equal(t, 1.0, view.Lines[0].Quantity)
	assert.Zero(t, lines[0].Quantity, "input is not modified")
}

func TestSession_SeedsRestoredOptionsOnce(t *testing.T) {
	lines := bundleLines()
	lines[0].Children[1].SelectedOption = true

	s := readySession(t, new(mocks.MockQuoteLineStore), lines)
	assert.Equal(t, map[string][]string{"B1": {"O1"}}, s.View("en").Selection)
	assert.Equal(t, 250.0, s.View("en").GrandTotal)

	require.NoError(t, s.Toggle("B1", "O1", false))
	require.NoError(t, s.SetRecords(lines))

	view := s.View("en")
	assert.Empty(t, view.Selection["B1"], "re-initialization keeps the user's selection")
	assert.Equal(t, 200.0, view.GrandTotal)
}

func TestSession_Toggle(t *testing.T) {
	tests := []struct {
		name          string
		parent, child string
		on            bool
		expectErr     error
		expectTotal   float64
	}{
		{name: "select optional child", parent: "B1", child: "O1", on: true, expectTotal: 250},
		{name: "deselect mandatory child is ignored", parent: "B1", child: "M1", on: false, expectTotal: 200},
		{name: "unknown child", parent: "B1", child: "X", on: true, expectErr: ErrLineNotFound},
		{name: "unknown parent", parent: "B9", child: "O1", on: true, expectErr: ErrLineNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := readySession(t, new(mocks.MockQuoteLineStore), bundleLines())

			err := s.Toggle(tt.parent, tt.child, tt.on)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectTotal, s.View("en").GrandTotal)
		})
	}
}

func TestSession_ToggleTwiceIsIdempotent(t *testing.T) {
	s := readySession(t, new(mocks.MockQuoteLineStore), bundleLines())

	require.NoError(t, s.Toggle("B1", "O1", true))
	require.NoError(t, s.Toggle("B1", "O1", true))

	assert.Equal(t, []string{"O1"}, s.View("en").Selection["B1"])
	assert.Equal(t, 250.0, s.View("en").GrandTotal)
}

func TestSession_EditCell(t *testing.T) {
	tests := []struct {
		name        string
		edits       []dto.CellEdit
		expectErr   error
		expectTotal float64
	}{
		{
			name:        "parent quantity",
			edits:       []dto.CellEdit{{ParentIndex: 0, Field: model.FieldQuantity, Value: 3}},
			expectTotal: 290,
		},
		{
			name:        "child price",
			edits:       []dto.CellEdit{{ParentIndex: 0, ChildIndex: intPtr(0), Field: model.FieldUnitPrice, Value: "40"}},
			expectTotal: 220,
		},
		{
			name:      "list price is read only",
			edits:     []dto.CellEdit{{ParentIndex: 0, Field: model.FieldListPrice, Value: 1}},
			expectErr: ErrFieldNotEditable,
		},
		{
			name:      "unknown column",
			edits:     []dto.CellEdit{{ParentIndex: 0, Field: "Secret__c", Value: 1}},
			expectErr: ErrFieldNotEditable,
		},
		{
			name:      "row out of range",
			edits:     []dto.CellEdit{{ParentIndex: 4, Field: model.FieldQuantity, Value: 1}},
			expectErr: ErrLineNotFound,
		},
		{
			name: "batch is atomic",
			edits: []dto.CellEdit{
				{ParentIndex: 0, Field: model.FieldQuantity, Value: 5},
				{ParentIndex: 0, ChildIndex: intPtr(7), Field: model.FieldQuantity, Value: 1},
			},
			expectErr:   ErrLineNotFound,
			expectTotal: 200,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := readySession(t, new(mocks.MockQuoteLineStore), bundleLines())

			err := s.EditCell(tt.edits)

			if tt.expectErr != nil {
				assert.ErrorIs(t, err, tt.expectErr)
				if tt.expectTotal != 0 {
					assert.Equal(t, tt.expectTotal, s.View("en").GrandTotal)
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectTotal, s.View("en").GrandTotal)
		})
	}
}

func TestSession_SaveValidationFailureStaysReady(t *testing.T) {
	store := new(mocks.MockQuoteLineStore)
	lines := []model.Line{
		{Product: model.Product{ID: "A1", Name: "Apartment 1", Type: model.ProductTypeAsset}, Quantity: 1},
		{Product: model.Product{ID: "A1", Name: "Apartment 1", Type: model.ProductTypeAsset}, Quantity: 1},
	}
	s := readySession(t, store, lines)

	summary, err := s.Save(context.Background(), "en")

	require.NoError(t, err)
	assert.False(t, summary.Validation.Valid)
	assert.Equal(t, StateReady, summary.State)
	assert.Contains(t, s.View("en").Errors[0], "Apartment 1 (A1)")
	store.AssertNotCalled(t, "SaveLines", mock.Anything, mock.Anything)
}

func TestSession_SaveSuccessQuits(t *testing.T) {
	store := new(mocks.MockQuoteLineStore)
	store.On("SaveLines", mock.Anything, mock.MatchedBy(func(req model.SaveRequest) bool { return !req.SkipDeletion })).
		Return(model.SaveResponse{Records: []model.SavedRecord{{ID: "QL-1", Sequence: "1"}}}, nil)
	store.On("SaveLines", mock.Anything, mock.MatchedBy(func(req model.SaveRequest) bool {
		return req.SkipDeletion && len(req.Records) == 1 && req.Records[0].ConfiguredProduct == "QL-1"
	})).Return(model.SaveResponse{}, nil)
	s := readySession(t, store, bundleLines())

	summary, err := s.Save(context.Background(), "en")

	require.NoError(t, err)
	assert.Equal(t, StateQuit, summary.State)
	assert.Equal(t, 1, summary.Outcome.ChildrenSaved)
	assert.ErrorIs(t, s.Toggle("B1", "O1", true), ErrInvalidTransition)
	store.AssertExpectations(t)
}

func TestSession_SaveFailureMovesToErrorAndAllowsRetry(t *testing.T) {
	store := new(mocks.MockQuoteLineStore)
	store.On("SaveLines", mock.Anything, mock.Anything).
		Return(model.SaveResponse{Errors: []string{"Price entry is inactive"}}, nil).Once()
	store.On("SaveLines", mock.Anything, mock.Anything).
		Return(model.SaveResponse{Records: []model.SavedRecord{{ID: "QL-1", Sequence: "1"}}}, nil)
	s := readySession(t, store, []model.Line{{PriceEntryID: "PE", Product: model.Product{ID: "L1"}, Quantity: 1}})

	summary, err := s.Save(context.Background(), "ro")

	assert.ErrorIs(t, err, ErrSaveRejected)
	assert.Equal(t, StateError, summary.State)
	view := s.View("ro")
	assert.Equal(t, []string{"Liniile ofertei nu au putut fi salvate", "Price entry is inactive"}, view.Errors)
	assert.False(t, view.Fatal)

	summary, err = s.Save(context.Background(), "ro")
	require.NoError(t, err)
	assert.Equal(t, StateQuit, summary.State)
}

func TestSession_PartialSaveMessage(t *testing.T) {
	store := new(mocks.MockQuoteLineStore)
	store.On("SaveLines", mock.Anything, mock.MatchedBy(func(req model.SaveRequest) bool { return !req.SkipDeletion })).
		Return(model.SaveResponse{Records: []model.SavedRecord{{ID: "QL-1", Sequence: "1"}}}, nil)
	store.On("SaveLines", mock.Anything, mock.MatchedBy(func(req model.SaveRequest) bool { return req.SkipDeletion })).
		Return(model.SaveResponse{}, errors.New("timeout"))
	s := readySession(t, store, bundleLines())

	_, err := s.Save(context.Background(), "en")

	assert.ErrorIs(t, err, ErrPartialSave)
	assert.Equal(t, []string{"The products were saved but some options could not be saved"}, s.View("en").Errors)
}

func TestSession_Back(t *testing.T) {
	lines := bundleLines()
	lines[0].Children[1].SelectedOption = true
	s := readySession(t, new(mocks.MockQuoteLineStore), lines)
	require.NoError(t, s.Toggle("B1", "O1", false))

	require.NoError(t, s.Back())

	view := s.View("en")
	assert.Equal(t, string(StateUninitialized), view.State)
	assert.Empty(t, view.Lines)
	assert.Empty(t, view.Selection)
	assert.Zero(t, view.GrandTotal)

	require.NoError(t, s.SetRecords(lines))
	assert.Equal(t, StateReady, s.State())
	assert.Equal(t, []string{"O1"}, s.View("en").Selection["B1"], "selection is seeded again after Back")
}

func TestSession_Fatal(t *testing.T) {
	s := NewSession("S1", "", "")

	assert.True(t, s.Fatal())
	assert.ErrorIs(t, s.SetRecords(bundleLines()), ErrSessionFatal)
	assert.ErrorIs(t, s.Toggle("B1", "O1", true), ErrSessionFatal)
	assert.ErrorIs(t, s.Back(), ErrSessionFatal)
	_, err := s.Save(context.Background(), "en")
	assert.ErrorIs(t, err, ErrSessionFatal)

	view := s.View("en")
	assert.True(t, view.Fatal)
	assert.Equal(t, []string{"The product wizard must be opened from a quote"}, view.Errors)
}

func TestSession_ViewDoesNotAlias(t *testing.T) {
	s := readySession(t, new(mocks.MockQuoteLineStore), bundleLines())

	view := s.View("en")
	view.Lines[0].Quantity = 99
	view.Lines[0].Children[0].UnitPrice = 99
	view.Selection["B1"] = []string{"O1"}

	again := s.View("en")
	assert.Equal(t, 2.0, again.Lines[0].Quantity)
	assert.Equal(t, 20.0, again.Lines[0].Children[0].UnitPrice)
	assert.Equal(t, 200.0, again.GrandTotal)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(NewSaveProtocol(new(mocks.MockQuoteLineStore)), nil, 10, time.Minute)
	defer store.Stop()

	s := store.Create("Q1", "PB1")
	assert.NotEmpty(t, s.ID())
	assert.Equal(t, 1, store.Len())

	got, err := store.Get(s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	store.Delete(s.ID())
	_, err = store.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Zero(t, store.Len())
}

func TestSessionStore_Expiry(t *testing.T) {
	store := NewSessionStore(nil, nil, 10, 20*time.Millisecond)
	defer store.Stop()

	s := store.Create("Q1", "PB1")
	time.Sleep(40 * time.Millisecond)

	_, err := store.Get(s.ID())
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
