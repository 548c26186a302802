package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type (
	// A CartItem is a denormalized product snapshot plus quantity.
	// Quantity is always >= 1; an item is removed instead of being
	// stored with quantity 0.
	CartItem struct {
		ItemID      string
		ProductCode string
		ProductName string
		UnitPrice   decimal.Decimal
		Quantity    int
		ImageURL    string
	}

	// A Cart holds the customer's in-progress selection.
	// Items keep insertion order and hold at most one entry
	// per product code.
	Cart struct {
		CustomerID string
		Items      []CartItem
	}
)

func (i CartItem) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func NewCart(customerID string) Cart {
	return Cart{CustomerID: customerID}
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Subtotal())
	}
	return total
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Item(productCode string) (CartItem, bool) {
	for _, it := range c.Items {
		if it.ProductCode == productCode {
			return it, true
		}
	}
	return CartItem{}, false
}

// AddProduct merges the product into the cart: an existing item's
// quantity is incremented, otherwise a new item is appended.
// Quantities below one count as one.
func (c *Cart) AddProduct(p Product, quantity int) CartItem {
	if quantity < 1 {
		quantity = 1
	}

	for i := range c.Items {
		if c.Items[i].ProductCode == p.Code {
			c.Items[i].Quantity += quantity
			return c.Items[i]
		}
	}

	item := CartItem{
		ItemID:      uuid.NewString(),
		ProductCode: p.Code,
		ProductName: p.Name,
		UnitPrice:   p.Price,
		Quantity:    quantity,
		ImageURL:    p.ImageURL,
	}
	c.Items = append(c.Items, item)
	return item
}

// SetQuantity mutates the matching item in place.
// The reported bool is false when the product is not in the cart.
func (c *Cart) SetQuantity(productCode string, quantity int) (CartItem, bool) {
	for i := range c.Items {
		if c.Items[i].ProductCode == productCode {
			c.Items[i].Quantity = quantity
			return c.Items[i], true
		}
	}
	return CartItem{}, false
}

// RemoveProduct is idempotent: removing an absent code is a no-op.
func (c *Cart) RemoveProduct(productCode string) bool {
	for i := range c.Items {
		if c.Items[i].ProductCode == productCode {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

type (
	UpdateQuantityRequest struct {
		ProductID   string
		NewQuantity int
	}

	UpdateQuantityResult struct {
		Item CartItem
		Cart Cart
	}
)

func (r UpdateQuantityRequest) Validate() error {
	var ve ValidationError
	if r.ProductID == "" {
		ve.Add("productId", "required")
	}
	if r.NewQuantity < 1 {
		ve.Add("newQuantity", "must be at least 1")
	}
	return ve.OrNil()
}
