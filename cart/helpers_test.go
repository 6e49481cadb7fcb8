package cart

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.LevelError, Output: "stderr"})
}

// memBackend is an in-memory stand-in for the durable store
type memBackend struct {
	mu   sync.Mutex
	data map[string][]byte
	puts int
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string][]byte)}
}

func (m *memBackend) Get(key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (m *memBackend) Put(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = raw
	m.puts++
	m.mu.Unlock()
	return nil
}

func (m *memBackend) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// fakeSource is a scriptable catalog source
type fakeSource struct {
	mu      sync.Mutex
	records []models.VariantRecord
	err     error
	calls   int
	block   chan struct{}
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]models.VariantRecord, error) {
	f.mu.Lock()
	f.calls++
	records := make([]models.VariantRecord, len(f.records))
	copy(records, f.records)
	err := f.err
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeSource) set(records []models.VariantRecord, err error) {
	f.mu.Lock()
	f.records = records
	f.err = err
	f.mu.Unlock()
}

func record(slug, name, strength string, price float64, inStock bool, location string) models.VariantRecord {
	return models.VariantRecord{
		ProductSlug:       slug,
		ProductName:       name,
		VariantStrength:   strength,
		PriceUSD:          price,
		InStock:           inStock,
		WarehouseLocation: location,
		Category:          "Peptides",
		SKUCode:           slug + "-" + strength,
	}
}

func variantProduct(id string, available models.WarehouseOptions, variants ...models.Variant) models.Product {
	return models.Product{
		ID:               id,
		Slug:             id,
		Name:             id,
		Variants:         variants,
		WarehouseOptions: &available,
	}
}

func bothAvailable() models.WarehouseOptions {
	return models.WarehouseOptions{
		Overseas: models.WarehouseOption{PriceMultiplier: 1.0, Available: true},
		US:       models.WarehouseOption{PriceMultiplier: 1.25, Available: true},
	}
}

func legacyProduct(id string, price float64, inStock bool) models.Product {
	opts := bothAvailable()
	return models.Product{
		ID:               id,
		Slug:             id,
		Name:             id,
		Price:            &price,
		InStock:          &inStock,
		WarehouseOptions: &opts,
	}
}

func newTestStore(source *fakeSource) (*Store, *memBackend) {
	backend := newMemBackend()
	return NewStore("test-session", backend, source, testLogger()), backend
}
