package httphandler

import (
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	CartItem struct {
		ItemID      string          `json:"item_id"`
		ProductCode string          `json:"product_code"`
		ProductName string          `json:"product_name"`
		UnitPrice   decimal.Decimal `json:"unit_price"`
		Quantity    int             `json:"quantity"`
		ImageURL    string          `json:"image_url"`
		Subtotal    decimal.Decimal `json:"subtotal"`
	}

	Cart struct {
		CustomerID string          `json:"customer_id"`
		Items      []CartItem      `json:"items"`
		Total      decimal.Decimal `json:"total"`
	}

	AddItemRequest struct {
		ProductCode string `json:"product_code"`
		Quantity    int    `json:"quantity"`
	}

	UpdateQuantityRequest struct {
		ProductID   string `json:"product_id"`
		NewQuantity int    `json:"new_quantity"`
	}

	UpdateQuantityResponse struct {
		Item CartItem `json:"item"`
		Cart Cart     `json:"cart"`
	}

	Registration struct {
		Name       string `json:"name"`
		Email      string `json:"email"`
		Phone      string `json:"phone"`
		Address    string `json:"address"`
		Complement string `json:"complement"`
		District   string `json:"district"`
		City       string `json:"city"`
		State      string `json:"state"`
		PostalCode string `json:"postal_code"`
	}

	OrderConfirmation struct {
		OrderID   string          `json:"order_id"`
		Email     string          `json:"email"`
		Total     decimal.Decimal `json:"total"`
		ItemCount int             `json:"item_count"`
		PlacedAt  time.Time       `json:"placed_at"`
	}

	ErrorResponse struct {
		Error       string              `json:"error"`
		ProductCode string              `json:"product_code,omitempty"`
		Fields      []domain.FieldError `json:"fields,omitempty"`
	}
)

func toCartView(c domain.Cart) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		items = append(items, toItemView(it))
	}
	return Cart{
		CustomerID: c.CustomerID,
		Items:      items,
		Total:      c.Total(),
	}
}

func toItemView(it domain.CartItem) CartItem {
	return CartItem{
		ItemID:      it.ItemID,
		ProductCode: it.ProductCode,
		ProductName: it.ProductName,
		UnitPrice:   it.UnitPrice,
		Quantity:    it.Quantity,
		ImageURL:    it.ImageURL,
		Subtotal:    it.Subtotal(),
	}
}

func (r Registration) toDomain() domain.Registration {
	return domain.Registration{
		Name:       r.Name,
		Email:      r.Email,
		Phone:      r.Phone,
		Address:    r.Address,
		Complement: r.Complement,
		District:   r.District,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
	}
}

func toConfirmationView(c domain.OrderConfirmation) OrderConfirmation {
	return OrderConfirmation{
		OrderID:   c.OrderID,
		Email:     c.Email,
		Total:     c.Total,
		ItemCount: c.ItemCount,
		PlacedAt:  c.PlacedAt,
	}
}
