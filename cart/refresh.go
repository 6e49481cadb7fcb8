package cart

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
)

// Refresher owns the reconciliation trigger policy for one cart. A pass
// is scheduled only when the set of (product, strength, warehouse)
// triples changes; quantity and price edits alone never trigger one, so
// a run of +/- clicks cannot cause a refresh storm. Rapid changes are
// batched behind a short debounce.
type Refresher struct {
	store      *Store
	reconciler *Reconciler
	debounce   time.Duration
	log        *logger.Logger

	mu      sync.Mutex
	lastKey string
	timer   *time.Timer
	// applied dedupes price corrections pushed back into the store.
	// Without it, applying a correction mutates the cart, which fires
	// the change hook, which could re-apply the same correction
	// forever. The key includes the proposed price so a genuinely new
	// correction for the same line still goes through.
	applied map[string]struct{}
}

// NewRefresher wires a refresher to the store's change hook
func NewRefresher(store *Store, reconciler *Reconciler, debounce time.Duration, log *logger.Logger) *Refresher {
	f := &Refresher{
		store:      store,
		reconciler: reconciler,
		debounce:   debounce,
		log:        log.WithComponent("cart-refresh"),
		applied:    make(map[string]struct{}),
	}
	store.OnChange(f.CartChanged)
	return f
}

// CartChanged is the store's change hook. It compares the serialized
// triple set against the previous run and schedules a debounced pass
// only when it differs.
func (f *Refresher) CartChanged() {
	items := f.store.Items()
	key := tripleKey(items)

	f.mu.Lock()
	defer f.mu.Unlock()
	if key == f.lastKey {
		return
	}
	f.lastKey = key
	f.pruneAppliedLocked(items)

	if f.timer != nil {
		f.timer.Stop()
	}
	f.timer = time.AfterFunc(f.debounce, func() {
		f.RefreshNow(context.Background())
	})
}

// RefreshNow runs a reconciliation pass immediately and applies any
// corrected prices and product snapshots back into the store. Checkout
// uses this to gate submission on fresh data.
func (f *Refresher) RefreshNow(ctx context.Context) []models.CartItemValidation {
	validations := f.reconciler.Refresh(ctx, f.store.Items())
	f.applyCorrections(validations)
	return validations
}

// applyCorrections heals stale cached prices: any validation carrying a
// resolved product and a positive updated price is written back into
// the store, valid or not, under the dedupe guard.
func (f *Refresher) applyCorrections(validations []models.CartItemValidation) {
	for i := range validations {
		v := &validations[i]
		if v.UpdatedProduct == nil || v.UpdatedPrice <= 0 {
			continue
		}

		key := fmt.Sprintf("%s|%s|%.4f", v.Item.Product.ID, v.Item.VariantStrength, v.UpdatedPrice)
		f.mu.Lock()
		if _, done := f.applied[key]; done {
			f.mu.Unlock()
			continue
		}
		f.applied[key] = struct{}{}
		f.mu.Unlock()

		f.store.UpdateItemProduct(v.Item.Product.ID, v.Item.VariantStrength, v.Item.Warehouse, *v.UpdatedProduct)
		f.store.UpdateItemPrice(v.Item.Product.ID, v.Item.VariantStrength, v.Item.Warehouse, v.UpdatedPrice)
	}
}

// pruneAppliedLocked drops dedupe entries for lines no longer in the
// cart, keeping the map bounded over a long-lived session
func (f *Refresher) pruneAppliedLocked(items []models.CartItem) {
	live := make(map[string]struct{}, len(items))
	for i := range items {
		live[items[i].Product.ID+"|"+items[i].VariantStrength] = struct{}{}
	}
	for key := range f.applied {
		// key is id|strength|price; the line identity is the part
		// before the last separator
		line := key[:strings.LastIndex(key, "|")]
		if _, ok := live[line]; !ok {
			delete(f.applied, key)
		}
	}
}

// tripleKey serializes the identity triples of the cart, order-independent
func tripleKey(items []models.CartItem) string {
	keys := make([]string, 0, len(items))
	for i := range items {
		keys = append(keys, fmt.Sprintf("%s|%s|%s",
			items[i].Product.ID, items[i].VariantStrength, items[i].Warehouse))
	}
	sort.Strings(keys)
	return strings.Join(keys, ";")
}
