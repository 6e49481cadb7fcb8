package cart

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/peptidestore/catalog"
	"github.com/peptidestore/models"
	"github.com/peptidestore/pkg/logger"
	"github.com/peptidestore/warehouse"
)

// Validation error strings surfaced to the user
const (
	errProductGone      = "Product no longer available"
	errDiscontinued     = "Product has been discontinued"
	errVariantGone      = "Variant no longer available"
	errVariantStockout  = "Variant is out of stock"
	errProductStockout  = "Product is out of stock"
	errInvalidPrice     = "Invalid price"
	errWarehouseClosedF = "%s warehouse not available for this product"
)

// Reconciler revalidates cart lines against the live catalog. At most
// one pass runs at a time; a trigger while one is in flight is a no-op
// that returns the previous result set. Each pass carries a generation
// number and only the newest pass may publish results, so a slow stale
// response can never overwrite a fresher one.
type Reconciler struct {
	source       catalog.Source
	log          *logger.Logger
	fetchTimeout time.Duration
	passTimeout  time.Duration

	mu          sync.Mutex
	validations []models.CartItemValidation
	lastError   string

	inFlight atomic.Bool
	gen      atomic.Uint64
}

// NewReconciler creates a reconciler over the given catalog source
func NewReconciler(source catalog.Source, log *logger.Logger, fetchTimeout, passTimeout time.Duration) *Reconciler {
	return &Reconciler{
		source:       source,
		log:          log.WithComponent("reconciler"),
		fetchTimeout: fetchTimeout,
		passTimeout:  passTimeout,
	}
}

// Refresh runs one reconciliation pass over the given lines and
// returns the resulting validation set. It never returns an error:
// transport failures publish an empty set, which consumers must read
// as "assume existing cart prices, do not block".
func (r *Reconciler) Refresh(ctx context.Context, items []models.CartItem) []models.CartItemValidation {
	if len(items) == 0 {
		r.mu.Lock()
		r.validations = []models.CartItemValidation{}
		r.lastError = ""
		r.mu.Unlock()
		return []models.CartItemValidation{}
	}

	if !r.inFlight.CompareAndSwap(false, true) {
		// A pass is already running; drop, don't queue
		return r.Validations()
	}
	gen := r.gen.Add(1)

	// Outer safety net: even if the fetch hangs past its own timeout,
	// the in-flight flag is force-cleared so the caller's "verifying"
	// state can never stick
	safety := time.AfterFunc(r.passTimeout, func() {
		r.finish(gen)
	})
	defer safety.Stop()
	defer r.finish(gen)

	fetchCtx, cancel := context.WithTimeout(ctx, r.fetchTimeout)
	defer cancel()

	records, err := r.source.FetchAll(fetchCtx)
	if err != nil {
		r.log.Warn("reconciliation fetch failed", "error", err)
		r.publish(gen, []models.CartItemValidation{}, err.Error())
		return r.Validations()
	}

	products := catalog.GroupRecords(records)
	validations := make([]models.CartItemValidation, 0, len(items))
	for i := range items {
		validations = append(validations, r.validateItem(&items[i], products, records))
	}

	r.publish(gen, validations, "")
	return validations
}

// validateItem produces the validation entry for one line
func (r *Reconciler) validateItem(item *models.CartItem, products []models.Product, records []models.VariantRecord) models.CartItemValidation {
	errs := []string{}

	fresh := ResolveProduct(products, item)
	if fresh == nil {
		return models.CartItemValidation{
			Item:    *item,
			IsValid: false,
			Errors:  []string{errProductGone},
		}
	}

	if discontinued(records, fresh.Slug) {
		errs = append(errs, errDiscontinued)
	}

	var updatedPrice float64
	if item.VariantStrength != "" {
		variant, fellBack := ResolveVariant(fresh, item.VariantStrength)
		if variant == nil {
			errs = append(errs, errVariantGone)
			return models.CartItemValidation{
				Item:           *item,
				IsValid:        false,
				Errors:         errs,
				UpdatedProduct: fresh,
			}
		}
		if fellBack {
			r.log.Warn("variant strength gone, using first variant",
				"product", fresh.Slug, "strength", item.VariantStrength,
				"fallback", variant.Strength)
		}
		if !variant.InStock {
			errs = append(errs, errVariantStockout)
		}
		updatedPrice = warehouse.PriceFor(variant.Price, fresh, item.Warehouse)
		if updatedPrice <= 0 || variant.Price <= 0 {
			errs = append(errs, errInvalidPrice)
		}
	} else {
		if fresh.InStock != nil && !*fresh.InStock {
			errs = append(errs, errProductStockout)
		}
		base := fresh.BasePrice()
		if base <= 0 && len(fresh.Variants) > 0 {
			base = fresh.Variants[0].Price
		}
		updatedPrice = warehouse.PriceFor(base, fresh, item.Warehouse)
		if updatedPrice <= 0 || base <= 0 {
			errs = append(errs, errInvalidPrice)
		}
	}

	// Warehouse availability is checked independently of the above
	if !warehouse.Available(fresh, item.Warehouse) {
		errs = append(errs, fmt.Sprintf(errWarehouseClosedF, item.Warehouse.Label()))
	}

	return models.CartItemValidation{
		Item:           *item,
		IsValid:        len(errs) == 0,
		Errors:         errs,
		UpdatedProduct: fresh,
		UpdatedPrice:   updatedPrice,
	}
}

// Validations returns the current validation set
func (r *Reconciler) Validations() []models.CartItemValidation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.CartItemValidation, len(r.validations))
	copy(out, r.validations)
	return out
}

// LastError returns the transport error of the latest pass, if any
func (r *Reconciler) LastError() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastError
}

// Loading reports whether a pass is currently in flight
func (r *Reconciler) Loading() bool {
	return r.inFlight.Load()
}

// publish installs results only if gen is still the newest pass
func (r *Reconciler) publish(gen uint64, validations []models.CartItemValidation, errMsg string) {
	if r.gen.Load() != gen {
		r.log.Debug("discarding superseded reconciliation pass", "gen", gen)
		return
	}
	r.mu.Lock()
	r.validations = validations
	r.lastError = errMsg
	r.mu.Unlock()
}

// finish clears the in-flight flag unless a newer pass owns it
func (r *Reconciler) finish(gen uint64) {
	if r.gen.Load() == gen {
		r.inFlight.Store(false)
	}
}

func discontinued(records []models.VariantRecord, slug string) bool {
	for i := range records {
		if records[i].ProductSlug == slug && records[i].IsDiscontinued {
			return true
		}
	}
	return false
}
