package warehouse

import (
	"testing"

	"github.com/peptidestore/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func productWithOptions(overseasAvail, usAvail bool) *models.Product {
	return &models.Product{
		ID:   "bpc-157",
		Slug: "bpc-157",
		WarehouseOptions: &models.WarehouseOptions{
			Overseas: models.WarehouseOption{PriceMultiplier: 1.0, Available: overseasAvail},
			US:       models.WarehouseOption{PriceMultiplier: 1.25, Available: usAvail},
		},
	}
}

func TestPriceForAppliesMultiplier(t *testing.T) {
	p := productWithOptions(true, true)

	tests := []struct {
		name      string
		basePrice float64
		warehouse models.Warehouse
		want      float64
	}{
		{"overseas baseline", 100.00, models.WarehouseOverseas, 100.00},
		{"us premium", 100.00, models.WarehouseUS, 125.00},
		{"us premium fractional", 89.99, models.WarehouseUS, 89.99 * 1.25},
		{"zero base", 0, models.WarehouseUS, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, PriceFor(tt.basePrice, p, tt.warehouse), 1e-9)
		})
	}
}

func TestPriceForMissingConfigDegradesToIdentity(t *testing.T) {
	p := &models.Product{ID: "x", Slug: "x"} // no warehouse options

	assert.InDelta(t, 42.50, PriceFor(42.50, p, models.WarehouseUS), 1e-9)
	assert.InDelta(t, 42.50, PriceFor(42.50, p, models.Warehouse("unknown")), 1e-9)
	assert.InDelta(t, 42.50, PriceFor(42.50, nil, models.WarehouseUS), 1e-9)
}

func TestAvailable(t *testing.T) {
	p := productWithOptions(true, false)

	assert.True(t, Available(p, models.WarehouseOverseas))
	assert.False(t, Available(p, models.WarehouseUS))
	assert.False(t, Available(&models.Product{}, models.WarehouseOverseas))
	assert.False(t, Available(nil, models.WarehouseOverseas))
}

func TestSelectionStoreDefaults(t *testing.T) {
	backend := newMemBackend()
	store := NewSelectionStore(backend, testLogger())

	// No selection saved yet
	require.Equal(t, DefaultWarehouse, store.Get("s1"))

	require.NoError(t, store.Set("s1", models.WarehouseUS))
	require.Equal(t, models.WarehouseUS, store.Get("s1"))

	// Selections are per session
	require.Equal(t, DefaultWarehouse, store.Get("s2"))
}

func TestSelectionStoreIgnoresGarbage(t *testing.T) {
	backend := newMemBackend()
	store := NewSelectionStore(backend, testLogger())

	require.NoError(t, backend.Put("selectedWarehouse:s1", "sideways"))
	require.Equal(t, DefaultWarehouse, store.Get("s1"))
}
