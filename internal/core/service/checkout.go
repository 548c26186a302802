package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
	"github.com/sampaiobrenner/bookstore/pkg/breaker"
)

var _ port.CheckoutOperator = (*CheckoutService)(nil)

// CheckoutService validates registration data and finalizes an order
// from the current cart. Order placement goes through its own breaker,
// separate from the catalog one, so a failing order pipeline does not
// block cart browsing.
type CheckoutService struct {
	carts  port.CartProvider
	orders port.OrdersStorage
	events port.OrderEventsProducer
	gate   *breaker.Breaker
	now    func() time.Time
}

func NewCheckoutService(
	carts port.CartProvider,
	orders port.OrdersStorage,
	events port.OrderEventsProducer,
	gate *breaker.Breaker,
) *CheckoutService {
	return &CheckoutService{carts, orders, events, gate, time.Now}
}

// Checkout places an order and clears the cart on success. Incomplete
// registration data fails before the cart is touched.
func (s *CheckoutService) Checkout(
	ctx context.Context, customerID string, reg domain.Registration,
) (domain.OrderConfirmation, error) {
	const op = "CheckoutService.Checkout"
	log := slog.With("op", op, "customerID", customerID)

	var zero domain.OrderConfirmation

	if err := reg.Validate(); err != nil {
		return zero, err
	}

	cart, err := s.carts.Cart(ctx, customerID)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", op, err)
	}
	if cart.IsEmpty() {
		var ve domain.ValidationError
		ve.Add("cart", "cart is empty")
		return zero, &ve
	}

	order := domain.NewOrder(cart, reg, s.now())

	_, err = breaker.Do(ctx, s.gate,
		func(ctx context.Context) (struct{}, error) {
			if err := s.orders.StoreOrder(ctx, order); err != nil {
				return struct{}{}, err
			}
			return struct{}{}, s.events.ProduceOrderPlaced(ctx, order)
		})
	if err != nil {
		if errors.Is(err, breaker.ErrOpen) {
			log.Warn("orders circuit is open")
			return zero, fmt.Errorf("%s: %w", op, domain.ErrCircuitOpen)
		}
		log.Error("order placement failed", "orderID", order.OrderID, "err", err)
		return zero, fmt.Errorf("%s: %w", op, domain.ErrServiceUnavailable)
	}

	// The order is the point of no return. A cart that refuses to
	// clear is logged and left to its TTL, failing the checkout here
	// would invite a duplicate order on retry.
	if err := s.carts.ClearCart(ctx, customerID); err != nil {
		log.Error("failed to clear cart after checkout",
			"orderID", order.OrderID, "err", err)
	}

	log.Info("order placed", "orderID", order.OrderID,
		"total", order.Total.String(), "items", len(order.Items))
	return order.Confirmation(), nil
}
