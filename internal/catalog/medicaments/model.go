package medicaments

import (
	"time"

	"github.com/officina-pos/officina/internal/catalog"
)

// Kind tags the two pharmaceutical variants.
type Kind string

const (
	// KindChemical marks synthesised medicaments carrying an active compound.
	KindChemical Kind = "CHEMICAL"
	// KindHerbal marks plant-based medicaments.
	KindHerbal Kind = "HERBAL"
)

// Loyalty discount rates per variant.
const (
	chemicalLoyalRate = 0.80
	herbalLoyalRate   = 0.90
)

// Medicament models a pharmaceutical item. The code is assigned by storage
// on insert and never changes afterwards.
type Medicament struct {
	Code     int64      `json:"code"`
	SerialNo int64      `json:"serial_no"`
	Name     string     `json:"name"`
	Category string     `json:"category"`
	Kind     Kind       `json:"kind"`
	Price    float64    `json:"price"`
	Expiry   *time.Time `json:"expiry,omitempty"`
	Stock    int        `json:"stock"`

	// Chemical-only attributes.
	ActiveCompound string `json:"active_compound,omitempty"`
	MinimumAge     int    `json:"minimum_age,omitempty"`
	// Herbal-only attribute.
	PlantSource string `json:"plant_source,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var _ catalog.Sellable = Medicament{}

// DisplayName implements catalog.Sellable.
func (m Medicament) DisplayName() string {
	return m.Name
}

// BasePrice implements catalog.Sellable.
func (m Medicament) BasePrice() float64 {
	return m.Price
}

// Tranche returns the unit price for the given loyalty status: 20% off the
// base price for chemical items, 10% off for herbal ones, full price otherwise.
func (m Medicament) Tranche(loyal bool) float64 {
	if !loyal {
		return m.Price
	}
	switch m.Kind {
	case KindChemical:
		return m.Price * chemicalLoyalRate
	case KindHerbal:
		return m.Price * herbalLoyalRate
	default:
		return m.Price
	}
}

// ExpiresWithin reports whether the item expires within the given number of
// months from now. Items without an expiry date never expire.
func (m Medicament) ExpiresWithin(months int) bool {
	if m.Expiry == nil {
		return false
	}
	limit := time.Now().AddDate(0, months, 0)
	return !m.Expiry.After(limit)
}

// ApplyMarkdown reduces the price by the given percentage.
func (m *Medicament) ApplyMarkdown(percent float64) {
	m.Price = m.Price * (1 - percent/100)
}
