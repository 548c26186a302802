package port

import (
	"context"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
)

// Driving ports, consumed by the presentation adapter.

type CartOperator interface {
	Cart(ctx context.Context, customerID string) (domain.Cart, error)
	AddItem(ctx context.Context, customerID, productCode string, quantity int) (domain.Cart, error)
	UpdateQuantity(ctx context.Context, customerID string, req domain.UpdateQuantityRequest) (domain.UpdateQuantityResult, error)
	RemoveItem(ctx context.Context, customerID, productCode string) (domain.Cart, error)
}

type CheckoutOperator interface {
	Checkout(ctx context.Context, customerID string, reg domain.Registration) (domain.OrderConfirmation, error)
}

type PresenceOperator interface {
	Touch(ctx context.Context, customerID string) error
	Leave(ctx context.Context, customerID string) error
	Count(ctx context.Context) (int64, error)
	Subscribe(ctx context.Context) (<-chan int64, error)
}

// CartProvider is the checkout hand-off: the orchestrator reads the
// current cart and clears it after the order is placed, but never
// mutates items.
type CartProvider interface {
	Cart(ctx context.Context, customerID string) (domain.Cart, error)
	ClearCart(ctx context.Context, customerID string) error
}

// Driven ports, implemented by adapters.

// UpdateFunc transforms the currently stored value into the next one.
// It may run more than once under optimistic concurrency and must be
// free of side effects.
type UpdateFunc func(old []byte, exists bool) ([]byte, error)

type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// SetNX stores the value only when the key is absent and
	// reports whether it did.
	SetNX(ctx context.Context, key string, value []byte, ttl time.Duration) (bool, error)

	// Update performs an atomic read-modify-write of one key.
	Update(ctx context.Context, key string, ttl time.Duration, fn UpdateFunc) error

	// Delete reports whether the key existed.
	Delete(ctx context.Context, key string) (bool, error)

	IncrBy(ctx context.Context, key string, delta int64) (int64, error)
	Keys(ctx context.Context, pattern string) ([]string, error)

	Publish(ctx context.Context, channel string, payload []byte) error
	Subscribe(ctx context.Context, channel string) (<-chan []byte, error)
}

type CatalogGateway interface {
	// FetchProduct reports absence with a false bool and a nil
	// error: an unknown product is not a catalog failure.
	FetchProduct(ctx context.Context, code string) (domain.Product, bool, error)
}

type OrdersStorage interface {
	StoreOrder(ctx context.Context, order domain.Order) error
}

type OrderEventsProducer interface {
	ProduceOrderPlaced(ctx context.Context, order domain.Order) error
}
