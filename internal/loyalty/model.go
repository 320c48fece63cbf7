package loyalty

import "time"

// BonusThreshold is the cumulative-purchase total at which the periodic 15%
// bonus discount unlocks.
const BonusThreshold = 100.0

// Customer is a registered loyalty customer keyed by national identity number.
type Customer struct {
	CIN            int64     `json:"cin"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Credit         float64   `json:"credit"`
	TotalPurchases float64   `json:"total_purchases"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName returns the customer's display name.
func (c *Customer) FullName() string {
	return c.FirstName + " " + c.LastName
}

// AddPurchase accumulates a paid amount toward the next bonus.
func (c *Customer) AddPurchase(amount float64) {
	c.TotalPurchases += amount
}

// EligibleForBonus reports whether the accumulator has reached the threshold.
func (c *Customer) EligibleForBonus() bool {
	return c.TotalPurchases >= BonusThreshold
}

// ResetPurchases zeroes the accumulator after a bonus has been consumed.
func (c *Customer) ResetPurchases() {
	c.TotalPurchases = 0
}

// AdjustCredit applies a signed delta to the credit balance.
func (c *Customer) AdjustCredit(delta float64) {
	c.Credit += delta
}
