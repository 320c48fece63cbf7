// Package catalog holds types shared by the product families the pharmacy sells.
package catalog

// Sellable is the pricing contract every product family implements.
// Tranche returns the unit price a customer actually pays given their loyalty
// status; it is a pure function of the product's own state and the flag.
type Sellable interface {
	DisplayName() string
	BasePrice() float64
	Tranche(loyal bool) float64
}

// ListFilters narrows catalog listings.
type ListFilters struct {
	// Prefix matches names starting with the given text.
	Prefix string
	// Search matches names containing the given text.
	Search  string
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}
