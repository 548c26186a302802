package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
	"github.com/sampaiobrenner/bookstore/pkg/breaker"
)

var _ port.CartOperator = (*CartService)(nil)
var _ port.CartProvider = (*CartService)(nil)

// errNoop aborts a cache update whose outcome is already the stored
// state, so idempotent operations skip the write entirely.
var errNoop = errors.New("no changes")

func cartKey(customerID string) string {
	return "cart:" + customerID
}

// CartService owns cart state per customer. The cache entry is the
// durable form; any in-memory cart is a transient read. All mutations
// are atomic read-modify-writes against the store, never guarded by
// in-process locks, because many stateless instances share the keys.
type CartService struct {
	cache   port.CacheStore
	catalog port.CatalogGateway
	gate    *breaker.Breaker
	cartTTL time.Duration
}

func NewCartService(
	cache port.CacheStore,
	catalog port.CatalogGateway,
	gate *breaker.Breaker,
	cartTTL time.Duration,
) *CartService {
	return &CartService{cache, catalog, gate, cartTTL}
}

// Cart returns the stored cart, or a new empty one when the customer
// has none. Absence is not an error.
func (s *CartService) Cart(
	ctx context.Context, customerID string,
) (domain.Cart, error) {
	const op = "CartService.Cart"

	b, ok, err := s.cache.Get(ctx, cartKey(customerID))
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	if !ok {
		return domain.NewCart(customerID), nil
	}

	var cart domain.Cart
	if err := json.Unmarshal(b, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	return cart, nil
}

type catalogHit struct {
	product domain.Product
	found   bool
}

// AddItem resolves the product through the catalog breaker and merges
// it into the cart. Adding the same product twice increments quantity,
// the cart never holds two items for one code.
func (s *CartService) AddItem(
	ctx context.Context, customerID, productCode string, quantity int,
) (domain.Cart, error) {
	const op = "CartService.AddItem"
	log := slog.With("op", op, "customerID", customerID, "productCode", productCode)

	hit, err := breaker.Do(ctx, s.gate,
		func(ctx context.Context) (catalogHit, error) {
			p, found, err := s.catalog.FetchProduct(ctx, productCode)
			if err != nil {
				return catalogHit{}, err
			}
			return catalogHit{p, found}, nil
		})
	if err != nil {
		if errors.Is(err, breaker.ErrOpen) {
			log.Warn("catalog circuit is open")
			return domain.Cart{}, fmt.Errorf("%s: %w", op, domain.ErrCircuitOpen)
		}
		log.Error("catalog call failed", "err", err)
		return domain.Cart{}, fmt.Errorf("%s: %w", op, domain.ErrCatalogUnavailable)
	}
	if !hit.found {
		return domain.Cart{}, fmt.Errorf(
			"%s: %q: %w", op, productCode, domain.ErrProductNotFound,
		)
	}

	var updated domain.Cart
	err = s.updateCart(ctx, customerID, func(cart *domain.Cart) error {
		cart.AddProduct(hit.product, quantity)
		updated = *cart
		return nil
	})
	if err != nil {
		return domain.Cart{}, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	return updated, nil
}

// UpdateQuantity mutates one item's quantity in place.
func (s *CartService) UpdateQuantity(
	ctx context.Context, customerID string, req domain.UpdateQuantityRequest,
) (domain.UpdateQuantityResult, error) {
	const op = "CartService.UpdateQuantity"

	var zero domain.UpdateQuantityResult

	if err := req.Validate(); err != nil {
		return zero, err
	}

	var result domain.UpdateQuantityResult
	err := s.updateCart(ctx, customerID, func(cart *domain.Cart) error {
		item, ok := cart.SetQuantity(req.ProductID, req.NewQuantity)
		if !ok {
			return domain.ErrItemNotFound
		}
		result = domain.UpdateQuantityResult{Item: item, Cart: *cart}
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrItemNotFound) {
			return zero, fmt.Errorf(
				"%s: %q: %w", op, req.ProductID, domain.ErrItemNotFound,
			)
		}
		return zero, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	return result, nil
}

// RemoveItem is idempotent: removing an absent item returns the cart
// unchanged and skips the write.
func (s *CartService) RemoveItem(
	ctx context.Context, customerID, productCode string,
) (domain.Cart, error) {
	const op = "CartService.RemoveItem"

	var updated domain.Cart
	err := s.updateCart(ctx, customerID, func(cart *domain.Cart) error {
		removed := cart.RemoveProduct(productCode)
		updated = *cart
		if !removed {
			return errNoop
		}
		return nil
	})
	if err != nil && !errors.Is(err, errNoop) {
		return domain.Cart{}, fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	return updated, nil
}

// ClearCart drops the stored cart entirely, used by checkout after an
// order is placed.
func (s *CartService) ClearCart(ctx context.Context, customerID string) error {
	const op = "CartService.ClearCart"

	if _, err := s.cache.Delete(ctx, cartKey(customerID)); err != nil {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStore, err)
	}
	return nil
}

// updateCart runs mutate inside the store's atomic read-modify-write.
// Every successful mutation rewrites the full cart and renews the
// sliding session TTL.
func (s *CartService) updateCart(
	ctx context.Context, customerID string, mutate func(*domain.Cart) error,
) error {
	key := cartKey(customerID)
	return s.cache.Update(ctx, key, s.cartTTL,
		func(old []byte, exists bool) ([]byte, error) {
			cart := domain.NewCart(customerID)
			if exists {
				if err := json.Unmarshal(old, &cart); err != nil {
					return nil, err
				}
			}
			if err := mutate(&cart); err != nil {
				return nil, err
			}
			return json.Marshal(cart)
		})
}
