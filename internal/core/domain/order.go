package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// A Registration carries the customer profile used to finalize an
// order. Only required-field validation, the form layer owns the rest.
type Registration struct {
	Name       string
	Email      string
	Phone      string
	Address    string
	Complement string
	District   string
	City       string
	State      string
	PostalCode string
}

func (r Registration) Validate() error {
	var ve ValidationError

	required := []struct {
		field, value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"phone", r.Phone},
		{"address", r.Address},
		{"district", r.District},
		{"city", r.City},
		{"state", r.State},
		{"postalCode", r.PostalCode},
	}
	for _, f := range required {
		if f.value == "" {
			ve.Add(f.field, "required")
		}
	}
	return ve.OrNil()
}

type (
	OrderItem struct {
		ProductCode string
		ProductName string
		UnitPrice   decimal.Decimal
		Quantity    int
	}

	Order struct {
		OrderID      string
		CustomerID   string
		Registration Registration
		Items        []OrderItem
		Total        decimal.Decimal
		CreatedAt    time.Time
	}

	OrderConfirmation struct {
		OrderID   string
		Email     string
		Total     decimal.Decimal
		ItemCount int
		PlacedAt  time.Time
	}
)

// NewOrder snapshots the cart into an immutable order.
func NewOrder(cart Cart, reg Registration, now time.Time) Order {
	items := make([]OrderItem, 0, len(cart.Items))
	for _, it := range cart.Items {
		items = append(items, OrderItem{
			ProductCode: it.ProductCode,
			ProductName: it.ProductName,
			UnitPrice:   it.UnitPrice,
			Quantity:    it.Quantity,
		})
	}
	return Order{
		OrderID:      uuid.NewString(),
		CustomerID:   cart.CustomerID,
		Registration: reg,
		Items:        items,
		Total:        cart.Total(),
		CreatedAt:    now.UTC(),
	}
}

func (o Order) Confirmation() OrderConfirmation {
	return OrderConfirmation{
		OrderID:   o.OrderID,
		Email:     o.Registration.Email,
		Total:     o.Total,
		ItemCount: len(o.Items),
		PlacedAt:  o.CreatedAt,
	}
}
