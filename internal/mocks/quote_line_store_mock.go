// Code generated manually. DO NOT EDIT.

package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/guttosm/quote-configurator/internal/domain/model"
)

type MockQuoteLineStore struct {
	mock.Mock
}

func (m *MockQuoteLineStore) SaveLines(ctx context.Context, req model.SaveRequest) (model.SaveResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(model.SaveResponse), args.Error(1)
}
