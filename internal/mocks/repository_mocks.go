// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

type MockQuotesRepository struct {
	mock.Mock
}

func (m *MockQuotesRepository) FindByID(ctx context.Context, id string) (*model.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

type MockPricebooksRepository struct {
	mock.Mock
}

func (m *MockPricebooksRepository) ListActive(ctx context.Context) ([]model.Pricebook, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Pricebook), args.Error(1)
}

type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Query(ctx context.Context, quoteID, pricebookID string, productIDs []string) (model.CatalogResult, error) {
	args := m.Called(ctx, quoteID, pricebookID, productIDs)
	return args.Get(0).(model.CatalogResult), args.Error(1)
}

func (m *MockCatalogRepository) SearchEntries(ctx context.Context, pricebookID, term string) ([]model.CatalogEntry, error) {
	args := m.Called(ctx, pricebookID, term)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CatalogEntry), args.Error(1)
}

type MockTemplatesRepository struct {
	mock.Mock
}

func (m *MockTemplatesRepository) FindByName(ctx context.Context, name string) (*model.DocumentTemplate, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DocumentTemplate), args.Error(1)
}

type MockQuoteLinesRepository struct {
	mock.Mock
}

func (m *MockQuoteLinesRepository) SaveLines(ctx context.Context, req model.SaveRequest) (model.SaveResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.SaveResponse), args.Error(1)
}

func (m *MockQuoteLinesRepository) FindByQuote(ctx context.Context, quoteID string) ([]model.Line, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Line), args.Error(1)
}

type MockFieldSetProvider struct {
	mock.Mock
}

func (m *MockFieldSetProvider) FieldSet(object, name string) ([]model.FieldDescriptor, error) {
	args := m.Called(object, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FieldDescriptor), args.Error(1)
}

func (m *MockFieldSetProvider) FieldsInfo(object string) (model.FieldsInfo, error) {
	args := m.Called(object)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(model.FieldsInfo), args.Error(1)
}

type MockLogsRepository struct {
	mock.Mock
}

func (m *MockLogsRepository) Insert(ctx context.Context, entries ...*model.LogEntry) error {
	args := m.Called(ctx, entries)
	return args.Error(0)
}

func (m *MockLogsRepository) Find(ctx context.Context, opts model.LogQueryOptions) ([]model.LogEntry, error) {
	args := m.Called(ctx, opts)
	if v := args.Get(0); v != nil {
		return v.([]model.LogEntry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLogsRepository) Count(ctx context.Context, opts model.LogQueryOptions) (int64, error) {
	args := m.Called(ctx, opts)
	return args.Get(0).(int64), args.Error(1)
}
