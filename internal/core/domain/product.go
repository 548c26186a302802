package domain

import "github.com/shopspring/decimal"

// A Product is an immutable snapshot fetched from the catalog service.
// The cart stores a denormalized copy of it, so later catalog changes
// never alter items already in the cart.
type Product struct {
	Code     string
	Name     string
	Price    decimal.Decimal
	ImageURL string
}
