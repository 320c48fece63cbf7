package medicaments

import "github.com/officina-pos/officina/internal/catalog"

type CreateMedicamentRequest struct {
	SerialNo       int64   `json:"serial_no" validate:"gte=0"`
	Name           string  `json:"name" validate:"required,max=200"`
	Category       string  `json:"category" validate:"required,max=100"`
	Kind           string  `json:"kind" validate:"required,oneof=CHEMICAL HERBAL"`
	Price          float64 `json:"price" validate:"gte=0"`
	Expiry         *string `json:"expiry,omitempty"`
	Stock          int     `json:"stock" validate:"gte=0"`
	ActiveCompound string  `json:"active_compound,omitempty" validate:"omitempty,max=200"`
	MinimumAge     int     `json:"minimum_age,omitempty" validate:"gte=0,lte=120"`
	PlantSource    string  `json:"plant_source,omitempty" validate:"omitempty,max=200"`
}

type UpdateMedicamentRequest struct {
	Name           *string  `json:"name,omitempty" validate:"omitempty,max=200"`
	Category       *string  `json:"category,omitempty" validate:"omitempty,max=100"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gte=0"`
	Expiry         *string  `json:"expiry,omitempty"`
	ActiveCompound *string  `json:"active_compound,omitempty" validate:"omitempty,max=200"`
	MinimumAge     *int     `json:"minimum_age,omitempty" validate:"omitempty,gte=0,lte=120"`
	PlantSource    *string  `json:"plant_source,omitempty" validate:"omitempty,max=200"`
}

type UpdateStockRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

// ListFilters extends the catalog filters with medicament specifics.
type ListFilters struct {
	catalog.ListFilters
	Kind     Kind
	Category string
}

// Stats summarises catalog pricing.
type Stats struct {
	Count      int          `json:"count"`
	AvgPrice   float64      `json:"avg_price"`
	MinPrice   float64      `json:"min_price"`
	MaxPrice   float64      `json:"max_price"`
	TotalPrice float64      `json:"total_price"`
	ByKind     map[Kind]int `json:"by_kind"`
}
