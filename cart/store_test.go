package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/peptidestore/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddItemMergesOnIdentityTriple(t *testing.T) {
	store, _ := newTestStore(&fakeSource{})
	p := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})

	store.AddItem(p, 2, "5mg", models.WarehouseOverseas, 0)
	store.AddItem(p, 3, "5mg", models.WarehouseOverseas, 0)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
}

func TestAddItemDifferentTriplesStaySeparate(t *testing.T) {
	store, _ := newTestStore(&fakeSource{})
	p := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true},
		models.Variant{Strength: "10mg", QuantityPerOrder: 1, Price: 159.99, InStock: true})

	store.AddItem(p, 1, "5mg", models.WarehouseOverseas, 0)
	store.AddItem(p, 1, "10mg", models.WarehouseOverseas, 0)
	store.AddItem(p, 1, "5mg", models.WarehouseUS, 0)

	assert.Len(t, store.Items(), 3)
}

func TestAddItemMergeKeepsExistingPriceAndSnapshot(t *testing.T) {
	store, _ := newTestStore(&fakeSource{})
	p := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})

	store.AddItem(p, 1, "5mg", models.WarehouseOverseas, 0)

	// Catalog price changed between the two adds
	updated := p
	updated.Variants = []models.Variant{{Strength: "5mg", QuantityPerOrder: 1, Price: 99.99, InStock: true}}
	store.AddItem(updated, 1, "5mg", models.WarehouseOverseas, 0)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	// Merge only touches quantity
	assert.InDelta(t, 89.99, items[0].CalculatedPrice, 1e-9)
	assert.InDelta(t, 89.99, items[0].Product.Variants[0].Price, 1e-9)
}

func TestAddItemPriceCascade(t *testing.T) {
	withVariants := variantProduct("px", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 50, InStock: true},
		models.Variant{Strength: "10mg", QuantityPerOrder: 1, Price: 90, InStock: true})
	legacy := legacyProduct("legacy", 30, true)

	tests := []struct {
		name     string
		product  models.Product
		strength string
		wh       models.Warehouse
		explicit float64
		want     float64
	}{
		{"explicit price wins", withVariants, "5mg", models.WarehouseOverseas, 77.77, 77.77},
		{"matching variant", withVariants, "10mg", models.WarehouseOverseas, 0, 90},
		{"matching variant with us multiplier", withVariants, "10mg", models.WarehouseUS, 0, 112.5},
		{"no matching variant falls back to first", withVariants, "25mg", models.WarehouseOverseas, 0, 50},
		{"legacy scalar price", legacy, "", models.WarehouseUS, 0, 37.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(&fakeSource{})
			store.AddItem(tt.product, 1, tt.strength, tt.wh, tt.explicit)

			items := store.Items()
			require.Len(t, items, 1)
			assert.InDelta(t, tt.want, items[0].CalculatedPrice, 1e-9)
		})
	}
}

func TestAddItemAllowsNonPositivePrice(t *testing.T) {
	// Price integrity is checked but not enforced at add time
	store, _ := newTestStore(&fakeSource{})
	p := variantProduct("broken", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 0, InStock: true})

	store.AddItem(p, 1, "5mg", models.WarehouseOverseas, 0)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Zero(t, items[0].CalculatedPrice)
}

func TestUpdateQuantity(t *testing.T) {
	p := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})

	tests := []struct {
		name     string
		quantity int
		wantGone bool
		want     int
	}{
		{"zero removes", 0, true, 0},
		{"negative removes", -5, true, 0},
		{"one sets exactly", 1, false, 1},
		{"large sets exactly", 40, false, 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestStore(&fakeSource{})
			store.AddItem(p, 2, "5mg", models.WarehouseOverseas, 0)

			store.UpdateQuantity("bpc-157", "5mg", tt.quantity)

			items := store.Items()
			if tt.wantGone {
				assert.Empty(t, items)
				return
			}
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].Quantity)
		})
	}
}

func TestRemoveItemExactVariantMatch(t *testing.T) {
	store, _ := newTestStore(&fakeSource{})
	withVariant := variantProduct("mix", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 10, InStock: true})
	bare := legacyProduct("mix", 20, true)

	store.AddItem(withVariant, 1, "5mg", models.WarehouseOverseas, 0)
	store.AddItem(bare, 1, "", models.WarehouseOverseas, 0)
	require.Len(t, store.Items(), 2)

	// Removing the strength-less line must not touch the 5mg line
	store.RemoveItem("mix", "")
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "5mg", items[0].VariantStrength)
}

func TestTotalSumsCachedPrices(t *testing.T) {
	store, _ := newTestStore(&fakeSource{})
	p := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})

	store.AddItem(p, 2, "5mg", models.WarehouseOverseas, 0)

	assert.InDelta(t, 179.98, store.Total(), 1e-9)
	assert.Equal(t, 2, store.ItemCount())
}

func TestCartPersistsAcrossLoads(t *testing.T) {
	source := &fakeSource{}
	backend := newMemBackend()
	store := NewStore("s1", backend, source, testLogger())

	p := legacyProduct("epitalon", 64.99, true)
	store.AddItem(p, 3, "", models.WarehouseOverseas, 0)

	reloaded := NewStore("s1", backend, source, testLogger())
	items := reloaded.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
	assert.InDelta(t, 64.99, items[0].CalculatedPrice, 1e-9)

	// Sessions do not share carts
	other := NewStore("s2", backend, source, testLogger())
	assert.Empty(t, other.Items())
}

func TestUpdateWarehouseFreshCatalog(t *testing.T) {
	source := &fakeSource{}
	source.set([]models.VariantRecord{
		record("bpc-157", "BPC-157", "5mg", 95.00, true, models.LocationBoth),
	}, nil)
	store, _ := newTestStore(source)

	stale := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})
	store.AddItem(stale, 1, "5mg", models.WarehouseOverseas, 0)

	err := store.UpdateWarehouse(context.Background(), "bpc-157", "5mg", models.WarehouseUS)
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.WarehouseUS, items[0].Warehouse)
	// Fresh catalog price, not the stale snapshot price
	assert.InDelta(t, 95.00*1.25, items[0].CalculatedPrice, 1e-9)
	assert.InDelta(t, 95.00, items[0].Product.Variants[0].Price, 1e-9)
	assert.False(t, items[0].LastVerifiedAt.IsZero())
}

func TestUpdateWarehouseFetchFailureUsesStaleData(t *testing.T) {
	source := &fakeSource{}
	source.set(nil, errors.New("network down"))
	store, _ := newTestStore(source)

	stale := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})
	store.AddItem(stale, 2, "5mg", models.WarehouseOverseas, 0)

	err := store.UpdateWarehouse(context.Background(), "bpc-157", "5mg", models.WarehouseUS)
	require.NoError(t, err)

	items := store.Items()
	require.Len(t, items, 1)
	// The switch still applies, priced from the cart's own data
	assert.Equal(t, models.WarehouseUS, items[0].Warehouse)
	assert.InDelta(t, 89.99*1.25, items[0].CalculatedPrice, 1e-9)
}

func TestUpdateWarehouseProductGoneUsesStaleData(t *testing.T) {
	source := &fakeSource{}
	source.set([]models.VariantRecord{
		record("other", "Other", "5mg", 10, true, models.LocationBoth),
	}, nil)
	store, _ := newTestStore(source)

	stale := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})
	store.AddItem(stale, 1, "5mg", models.WarehouseOverseas, 0)

	require.NoError(t, store.UpdateWarehouse(context.Background(), "bpc-157", "5mg", models.WarehouseUS))

	items := store.Items()
	assert.Equal(t, models.WarehouseUS, items[0].Warehouse)
	assert.InDelta(t, 89.99*1.25, items[0].CalculatedPrice, 1e-9)
}

func TestUpdateWarehouseVetoOnUnresolvedPrice(t *testing.T) {
	source := &fakeSource{}
	// Fresh catalog knows the product but its price is broken, and the
	// stale line can't price it either
	source.set([]models.VariantRecord{
		record("ghost", "Ghost", "5mg", 0, true, models.LocationBoth),
	}, nil)
	store, _ := newTestStore(source)

	stale := variantProduct("ghost", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 0, InStock: true})
	store.AddItem(stale, 1, "5mg", models.WarehouseOverseas, 0)

	err := store.UpdateWarehouse(context.Background(), "ghost", "5mg", models.WarehouseUS)
	require.ErrorIs(t, err, ErrPriceUnresolved)

	// Line completely unchanged, warehouse not switched
	items := store.Items()
	require.Len(t, items, 1)
	assert.Equal(t, models.WarehouseOverseas, items[0].Warehouse)
	assert.Zero(t, items[0].CalculatedPrice)
}

func TestUpdateWarehouseVetoIsAllOrNothing(t *testing.T) {
	source := &fakeSource{}
	// The fresh catalog knows the product but its variant price is broken
	source.set([]models.VariantRecord{
		record("dup", "Dup", "5mg", 0, true, models.LocationBoth),
	}, nil)

	backend := newMemBackend()
	store := NewStore("test-session", backend, source, testLogger())

	// Two lines share (product, strength) across warehouses. The first
	// can still be priced from its own snapshot, the second cannot.
	priceable := variantProduct("dup", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 50, InStock: true})
	broken := variantProduct("dup", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 0, InStock: true})
	store.AddItem(priceable, 1, "5mg", models.WarehouseOverseas, 0)
	store.AddItem(broken, 1, "5mg", models.WarehouseUS, 0)

	err := store.UpdateWarehouse(context.Background(), "dup", "5mg", models.WarehouseUS)
	require.ErrorIs(t, err, ErrPriceUnresolved)

	// Neither line moved, including the one that could have been priced
	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, models.WarehouseOverseas, items[0].Warehouse)
	assert.InDelta(t, 50, items[0].CalculatedPrice, 1e-9)
	assert.Equal(t, models.WarehouseUS, items[1].Warehouse)

	// The in-memory cart still matches what is on disk
	reloaded := NewStore("test-session", backend, source, testLogger())
	persisted := reloaded.Items()
	require.Len(t, persisted, 2)
	for i := range items {
		assert.Equal(t, items[i].Warehouse, persisted[i].Warehouse)
		assert.InDelta(t, items[i].CalculatedPrice, persisted[i].CalculatedPrice, 1e-9)
	}
}

func TestUpdateItemPriceAndProduct(t *testing.T) {
	store, _ := newTestStore(&fakeSource{})
	p := variantProduct("bpc-157", bothAvailable(),
		models.Variant{Strength: "5mg", QuantityPerOrder: 1, Price: 89.99, InStock: true})
	store.AddItem(p, 1, "5mg", models.WarehouseOverseas, 0)

	corrected := p
	corrected.Variants = []models.Variant{{Strength: "5mg", QuantityPerOrder: 1, Price: 94.99, InStock: true}}
	store.UpdateItemProduct("bpc-157", "5mg", models.WarehouseOverseas, corrected)
	store.UpdateItemPrice("bpc-157", "5mg", models.WarehouseOverseas, 94.99)

	items := store.Items()
	require.Len(t, items, 1)
	assert.InDelta(t, 94.99, items[0].CalculatedPrice, 1e-9)
	assert.InDelta(t, 94.99, items[0].Product.Variants[0].Price, 1e-9)
	assert.False(t, items[0].LastVerifiedAt.IsZero())
}

func TestClear(t *testing.T) {
	store, backend := newTestStore(&fakeSource{})
	store.AddItem(legacyProduct("x", 10, true), 1, "", models.WarehouseOverseas, 0)
	require.NotEmpty(t, store.Items())

	store.Clear()
	assert.Empty(t, store.Items())
	assert.Zero(t, store.Total())

	// The empty cart is what's on disk now
	reloaded := NewStore("test-session", backend, &fakeSource{}, testLogger())
	assert.Empty(t, reloaded.Items())
}
