package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/peptidestore/catalog"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
	"github.com/peptidestore/warehouse"
)

// ErrPriceUnresolved is returned when a warehouse switch is vetoed
// because no positive price could be recomputed for the line. The line
// is left completely unchanged.
var ErrPriceUnresolved = errors.New("cart: could not resolve a positive price")

// Backend is the durable store cart contents are persisted to. Writes
// happen synchronously on every mutation.
type Backend interface {
	Get(key string, out any) (bool, error)
	Put(key string, value any) error
	Delete(key string) error
}

// Store holds the authoritative line-item list of one cart. All
// mutations persist before returning and then notify the change hook,
// which drives the reconciliation trigger policy.
type Store struct {
	mu       sync.Mutex
	items    []models.CartItem
	backend  Backend
	key      string
	source   catalog.Source
	log      *logger.Logger
	onChange func()
}

// NewStore loads the cart persisted under the session's key. A corrupt
// or missing value starts an empty cart rather than failing the session.
func NewStore(sessionID string, backend Backend, source catalog.Source, log *logger.Logger) *Store {
	s := &Store{
		backend: backend,
		key:     "cart:" + sessionID,
		source:  source,
		log:     log.WithComponent("cart"),
	}
	var items []models.CartItem
	if found, err := backend.Get(s.key, &items); err != nil {
		s.log.Error("failed to load cart, starting empty", "error", err, "key", s.key)
	} else if found {
		s.items = items
	}
	return s
}

// OnChange registers the hook invoked after every mutation
func (s *Store) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Items returns a copy of the current line items
func (s *Store) Items() []models.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.CartItem, len(s.items))
	copy(out, s.items)
	return out
}

// AddItem adds a product to the cart. The effective unit price is
// resolved by cascade: an explicit positive caller price, then the
// matching variant, then the first variant, then the legacy scalar
// price, each multiplied by the warehouse multiplier. A resolved price
// of zero or less does not reject the add; it is logged loudly and the
// reconciliation pass plus checkout gating keep it from becoming an
// order. Adding the same (product, strength, warehouse) triple again
// only increments the existing line's quantity.
func (s *Store) AddItem(product models.Product, quantity int, variantStrength string, wh models.Warehouse, explicitPrice float64) {
	if quantity < 1 {
		quantity = 1
	}
	if !wh.Valid() {
		wh = warehouse.DefaultWarehouse
	}

	price := explicitPrice
	if price <= 0 {
		base, strategy, ok := ResolveBasePrice(&product, variantStrength)
		price = warehouse.PriceFor(base, &product, wh)
		if !ok || price <= 0 {
			// Known soft failure: price integrity is checked but not
			// enforced at add time
			s.log.Error("adding cart item with non-positive price",
				"product", product.ID, "strength", variantStrength,
				"warehouse", wh, "price", price, "strategy", strategy)
		}
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Matches(product.ID, variantStrength, wh) {
			// Only quantity changes; the existing snapshot and price
			// stay untouched
			s.items[i].Quantity += quantity
			s.persistLocked()
			s.notifyLocked()
			s.mu.Unlock()
			return
		}
	}
	s.items = append(s.items, models.CartItem{
		Product:         product,
		VariantStrength: variantStrength,
		Quantity:        quantity,
		Warehouse:       wh,
		CalculatedPrice: price,
	})
	s.persistLocked()
	s.notifyLocked()
	s.mu.Unlock()
}

// RemoveItem deletes every line matching (productID, variantStrength).
// The match on strength is exact, including the both-empty case: a
// remove with no strength never touches lines that have one.
func (s *Store) RemoveItem(productID, variantStrength string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, item := range s.items {
		if item.Product.ID == productID && item.VariantStrength == variantStrength {
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	s.persistLocked()
	s.notifyLocked()
}

// UpdateQuantity sets the quantity of every line matching (productID,
// variantStrength). Quantities of zero or less remove the line.
func (s *Store) UpdateQuantity(productID, variantStrength string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(productID, variantStrength)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Product.ID == productID && s.items[i].VariantStrength == variantStrength {
			s.items[i].Quantity = quantity
		}
	}
	s.persistLocked()
	s.notifyLocked()
}

// UpdateWarehouse switches matching lines to a new warehouse,
// best-effort. It re-fetches the catalog to price the switch against
// fresh data; when the fetch fails or the product is gone from the
// catalog, it recomputes from the line's own (possibly stale) snapshot
// so the cart stays usable offline. On the fresh path a recomputed
// price of zero or less vetoes the switch and returns
// ErrPriceUnresolved; the veto is all-or-nothing: every matching line
// is priced before any of them is touched.
func (s *Store) UpdateWarehouse(ctx context.Context, productID, variantStrength string, newWarehouse models.Warehouse) error {
	var fresh *models.Product
	records, err := s.source.FetchAll(ctx)
	if err != nil {
		s.log.Warn("warehouse switch falling back to cart data",
			"product", productID, "error", err)
	} else {
		products := catalog.GroupRecords(records)
		for i := range products {
			if products[i].ID == productID || products[i].Slug == productID {
				fresh = &products[i]
				break
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []int
	for i := range s.items {
		if s.items[i].Product.ID == productID && s.items[i].VariantStrength == variantStrength {
			matches = append(matches, i)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	// Price every matching line up front so a veto can never leave a
	// half-switched cart behind
	prices := make(map[int]float64, len(matches))
	if fresh != nil {
		for _, i := range matches {
			price := s.freshSwitchPrice(fresh, &s.items[i], newWarehouse)
			if price <= 0 {
				s.log.Error("warehouse switch vetoed by unresolved price",
					"product", productID, "strength", variantStrength,
					"warehouse", newWarehouse)
				return ErrPriceUnresolved
			}
			prices[i] = price
		}
	}

	now := time.Now()
	for _, i := range matches {
		item := &s.items[i]
		if fresh != nil {
			item.Product = *fresh
			item.Warehouse = newWarehouse
			item.CalculatedPrice = prices[i]
			item.LastVerifiedAt = now
			continue
		}

		// Stale fallback: availability wins over price correctness
		// here; the next reconciliation pass corrects the number
		base, _, _ := ResolveBasePrice(&item.Product, variantStrength)
		item.Warehouse = newWarehouse
		item.CalculatedPrice = warehouse.PriceFor(base, &item.Product, newWarehouse)
	}

	s.persistLocked()
	s.notifyLocked()
	return nil
}

// freshSwitchPrice prices a warehouse switch against fresh catalog
// data: fresh variant price, then fresh base price, then the stale
// line's own resolution as a last resort.
func (s *Store) freshSwitchPrice(fresh *models.Product, item *models.CartItem, wh models.Warehouse) float64 {
	base := 0.0
	if item.VariantStrength != "" {
		if v := fresh.FindVariant(item.VariantStrength); v != nil {
			base = v.Price
		}
	}
	if base <= 0 {
		base = fresh.BasePrice()
	}
	if base <= 0 {
		base, _, _ = ResolveBasePrice(&item.Product, item.VariantStrength)
		return warehouse.PriceFor(base, &item.Product, wh)
	}
	return warehouse.PriceFor(base, fresh, wh)
}

// UpdateItemPrice overwrites the cached price of the exact line. Used
// by the reconciliation engine to push corrections; no validation.
func (s *Store) UpdateItemPrice(productID, variantStrength string, wh models.Warehouse, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Matches(productID, variantStrength, wh) {
			s.items[i].CalculatedPrice = price
			s.items[i].LastVerifiedAt = time.Now()
		}
	}
	s.persistLocked()
	s.notifyLocked()
}

// UpdateItemProduct overwrites the product snapshot of the exact line.
// Used by the reconciliation engine to push corrections; no validation.
func (s *Store) UpdateItemProduct(productID, variantStrength string, wh models.Warehouse, product models.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].Matches(productID, variantStrength, wh) {
			s.items[i].Product = product
			s.items[i].LastVerifiedAt = time.Now()
		}
	}
	s.persistLocked()
	s.notifyLocked()
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persistLocked()
	s.notifyLocked()
}

// Total sums cached price × quantity over all lines. This deliberately
// sums the cached snapshot prices: stale values propagate into the
// displayed total until a reconciliation pass corrects them.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0.0
	for _, item := range s.items {
		total += item.CalculatedPrice * float64(item.Quantity)
	}
	return total
}

// ItemCount sums quantities over all lines
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// persistLocked writes the cart to the durable store. Persistence
// failures are logged, never propagated: the in-memory cart stays
// authoritative for the session.
func (s *Store) persistLocked() {
	if err := s.backend.Put(s.key, s.items); err != nil {
		s.log.Error("failed to persist cart", "error", err, "key", s.key)
	}
}

func (s *Store) notifyLocked() {
	if s.onChange != nil {
		// Fired outside the lock so the hook can read the store
		go s.onChange()
	}
}
