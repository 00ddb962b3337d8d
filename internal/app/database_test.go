//go:build !integration

package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guttosm/quote-configurator/config"
	"github.com/guttosm/quote-configurator/internal/repository"
)

func testDatabaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		CircuitBreakerFailureThreshold: 5,
		CircuitBreakerSuccessThreshold: 2,
		CircuitBreakerTimeout:          30 * time.Second,
	}
}

func TestInitializeDatabase_Disabled(t *testing.T) {
	components, err := InitializeDatabase(config.DatabaseConfig{Enabled: false})

	assert.ErrorIs(t, err, ErrDatabaseDisabled)
	assert.Nil(t, components)
}

func TestNewDatabaseComponents(t *testing.T) {
	components := newDatabaseComponents(&repository.MongoDB{}, testDatabaseConfig())

	require.NotNil(t, components)
	assert.NotNil(t, components.Quotes)
	assert.NotNil(t, components.Pricebooks)
	assert.NotNil(t, components.Catalog)
	assert.NotNil(t, components.Templates)
	assert.NotNil(t, components.QuoteLines)
	assert.NotNil(t, components.LoggingService)
	assert.NotSame(t, components.StoreCircuitBreaker, components.LogsCircuitBreaker)

	tests := []struct {
		name  string
		stats func() string
	}{
		{name: "store breaker", stats: func() string { return components.StoreCircuitBreaker.GetStats().State }},
		{name: "logs breaker", stats: func() string { return components.LogsCircuitBreaker.GetStats().State }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, "closed", tt.stats())
		})
	}
}

func TestDatabaseComponents_Close(t *testing.T) {
	tests := []struct {
		name       string
		components *DatabaseComponents
	}{
		{name: "nil components"},
		{name: "not connected", components: &DatabaseComponents{DB: &repository.MongoDB{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NoError(t, tt.components.Close(context.Background()))
		})
	}
}
