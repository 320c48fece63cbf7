package devices

import (
	"time"

	"github.com/officina-pos/officina/internal/catalog"
)

// Installments a loyal customer may split a device price into.
const installmentCount = 3

// Device models a medical device. Storage assigns the code on insert.
type Device struct {
	Code      int64     `json:"code"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	Stock     int       `json:"stock"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var _ catalog.Sellable = Device{}

// DisplayName implements catalog.Sellable.
func (d Device) DisplayName() string {
	return d.Name
}

// BasePrice implements catalog.Sellable.
func (d Device) BasePrice() float64 {
	return d.Price
}

// Tranche returns one installment of three for loyal customers and the full
// price otherwise.
func (d Device) Tranche(loyal bool) float64 {
	if loyal {
		return d.Price / installmentCount
	}
	return d.Price
}
