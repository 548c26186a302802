package service_test

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
	"github.com/stretchr/testify/mock"
)

// memCache is an in-process CacheStore honoring the same atomicity
// contract as the redis adapter. TTLs are recorded but not enforced,
// tests expire keys explicitly with drop().
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]time.Duration
	subs map[string][]chan []byte

	failWith error
}

func newMemCache() *memCache {
	return &memCache{
		data: make(map[string][]byte),
		ttls: make(map[string]time.Duration),
		subs: make(map[string][]chan []byte),
	}
}

func (c *memCache) drop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	delete(c.ttls, key)
}

func (c *memCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.data[key]
	return ok
}

func (c *memCache) ttl(key string) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttls[key]
}

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return nil, false, c.failWith
	}
	b, ok := c.data[key]
	return b, ok, nil
}

func (c *memCache) Set(
	_ context.Context, key string, value []byte, ttl time.Duration,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) SetNX(
	_ context.Context, key string, value []byte, ttl time.Duration,
) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return false, c.failWith
	}
	if _, ok := c.data[key]; ok {
		return false, nil
	}
	c.data[key] = value
	c.ttls[key] = ttl
	return true, nil
}

func (c *memCache) Update(
	_ context.Context, key string, ttl time.Duration, fn port.UpdateFunc,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	old, exists := c.data[key]
	next, err := fn(old, exists)
	if err != nil {
		return err
	}
	c.data[key] = next
	c.ttls[key] = ttl
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return false, c.failWith
	}
	_, ok := c.data[key]
	delete(c.data, key)
	delete(c.ttls, key)
	return ok, nil
}

func (c *memCache) IncrBy(
	_ context.Context, key string, delta int64,
) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return 0, c.failWith
	}
	n, _ := strconv.ParseInt(string(c.data[key]), 10, 64)
	n += delta
	c.data[key] = strconv.AppendInt(nil, n, 10)
	return n, nil
}

func (c *memCache) Keys(_ context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return nil, c.failWith
	}
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (c *memCache) Publish(
	_ context.Context, channel string, payload []byte,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	for _, sub := range c.subs[channel] {
		select {
		case sub <- payload:
		default:
		}
	}
	return nil
}

func (c *memCache) Subscribe(
	_ context.Context, channel string,
) (<-chan []byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return nil, c.failWith
	}
	ch := make(chan []byte, 16)
	c.subs[channel] = append(c.subs[channel], ch)
	return ch, nil
}

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchProduct(
	ctx context.Context, code string,
) (domain.Product, bool, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(domain.Product), args.Bool(1), args.Error(2)
}

type MockCartProvider struct {
	mock.Mock
}

func (m *MockCartProvider) Cart(
	ctx context.Context, customerID string,
) (domain.Cart, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartProvider) ClearCart(
	ctx context.Context, customerID string,
) error {
	args := m.Called(ctx, customerID)
	return args.Error(0)
}

type MockOrdersStorage struct {
	mock.Mock
}

func (m *MockOrdersStorage) StoreOrder(
	ctx context.Context, order domain.Order,
) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type MockOrderEvents struct {
	mock.Mock
}

func (m *MockOrderEvents) ProduceOrderPlaced(
	ctx context.Context, order domain.Order,
) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}
