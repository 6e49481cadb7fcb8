package warehouse

import (
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

// DefaultWarehouse is the tier new sessions and new cart additions use
const DefaultWarehouse = models.WarehouseOverseas

const storageKeyPrefix = "selectedWarehouse:"

// Backend is the durable store the selection is persisted to
type Backend interface {
	Get(key string, out any) (bool, error)
	Put(key string, value any) error
}

// SelectionStore persists each session's globally selected warehouse.
// The selection defaults new cart additions; existing cart lines keep
// their own warehouse and are switched independently.
type SelectionStore struct {
	backend Backend
	log     *logger.Logger
}

// NewSelectionStore creates a selection store over the given backend
func NewSelectionStore(backend Backend, log *logger.Logger) *SelectionStore {
	return &SelectionStore{
		backend: backend,
		log:     log.WithComponent("warehouse"),
	}
}

// Get returns the session's selected warehouse, defaulting to overseas
func (s *SelectionStore) Get(sessionID string) models.Warehouse {
	var selected models.Warehouse
	found, err := s.backend.Get(storageKeyPrefix+sessionID, &selected)
	if err != nil {
		s.log.Error("failed to load warehouse selection", "error", err, "session", sessionID)
		return DefaultWarehouse
	}
	if !found || !selected.Valid() {
		return DefaultWarehouse
	}
	return selected
}

// Set persists the session's selected warehouse
func (s *SelectionStore) Set(sessionID string, w models.Warehouse) error {
	return s.backend.Put(storageKeyPrefix+sessionID, w)
}
