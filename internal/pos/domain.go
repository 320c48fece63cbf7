// Package pos implements the point-of-sale transaction engine: loyalty-aware
// pricing, stock enforcement, and the atomic commit of a purchase.
package pos

import (
	"fmt"

	"github.com/officina-pos/officina/internal/platform/httpx"
)

// bonusRate is the extra reduction applied once the loyalty threshold is met.
const bonusRate = 0.85

// OutOfStockError reports a purchase against exhausted stock.
type OutOfStockError struct {
	Item      string
	Available int
	Requested int
}

func (e *OutOfStockError) Error() string {
	return fmt.Sprintf("out of stock: %s (available %d, requested %d)", e.Item, e.Available, e.Requested)
}

// Unwrap lets callers match on the generic out-of-stock kind.
func (e *OutOfStockError) Unwrap() error {
	return httpx.ErrOutOfStock
}

// ErrItemNotFound indicates an unknown sellable during purchase lookup.
var ErrItemNotFound = fmt.Errorf("item: %w", httpx.ErrNotFound)

// ErrCustomerNotFound indicates an unknown loyalty customer.
var ErrCustomerNotFound = fmt.Errorf("customer: %w", httpx.ErrNotFound)

// MedicamentPurchaseInput buys one unit of a medicament, looked up by name.
type MedicamentPurchaseInput struct {
	Name      string
	CIN       int64
	RequestID string
}

// DevicePurchaseInput buys one unit of a device, looked up by code.
type DevicePurchaseInput struct {
	Code      int64
	CIN       int64
	RequestID string
}

// PurchaseResult reports the outcome of a committed purchase.
type PurchaseResult struct {
	Item           string  `json:"item"`
	PricePaid      float64 `json:"price_paid"`
	BonusApplied   bool    `json:"bonus_applied"`
	RemainingStock int     `json:"remaining_stock"`
	CustomerTotal  float64 `json:"customer_total"`
	RequestID      string  `json:"request_id,omitempty"`
}

// QuoteLine names one sellable in a basket quote.
type QuoteLine struct {
	Kind string `json:"kind"` // medicament | device
	Name string `json:"name,omitempty"`
	Code int64  `json:"code,omitempty"`
}

// Quote is the loyal-customer total of a basket. Nothing is mutated.
type Quote struct {
	Lines []QuoteLinePrice `json:"lines"`
	Total float64          `json:"total"`
}

// QuoteLinePrice is the priced counterpart of a QuoteLine.
type QuoteLinePrice struct {
	Item  string  `json:"item"`
	Price float64 `json:"price"`
}
