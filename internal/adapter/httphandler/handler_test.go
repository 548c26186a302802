package httphandler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sampaiobrenner/bookstore/internal/adapter/httphandler"
	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCartOperator struct {
	mock.Mock
}

func (m *MockCartOperator) Cart(
	ctx context.Context, customerID string,
) (domain.Cart, error) {
	args := m.Called(ctx, customerID)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartOperator) AddItem(
	ctx context.Context, customerID, productCode string, quantity int,
) (domain.Cart, error) {
	args := m.Called(ctx, customerID, productCode, quantity)
	return args.Get(0).(domain.Cart), args.Error(1)
}

func (m *MockCartOperator) UpdateQuantity(
	ctx context.Context, customerID string, req domain.UpdateQuantityRequest,
) (domain.UpdateQuantityResult, error) {
	args := m.Called(ctx, customerID, req)
	return args.Get(0).(domain.UpdateQuantityResult), args.Error(1)
}

func (m *MockCartOperator) RemoveItem(
	ctx context.Context, customerID, productCode string,
) (domain.Cart, error) {
	args := m.Called(ctx, customerID, productCode)
	return args.Get(0).(domain.Cart), args.Error(1)
}

type MockCheckoutOperator struct {
	mock.Mock
}

func (m *MockCheckoutOperator) Checkout(
	ctx context.Context, customerID string, reg domain.Registration,
) (domain.OrderConfirmation, error) {
	args := m.Called(ctx, customerID, reg)
	return args.Get(0).(domain.OrderConfirmation), args.Error(1)
}

type MockPresenceOperator struct {
	mock.Mock
}

func (m *MockPresenceOperator) Touch(
	ctx context.Context, customerID string,
) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockPresenceOperator) Leave(
	ctx context.Context, customerID string,
) error {
	return m.Called(ctx, customerID).Error(0)
}

func (m *MockPresenceOperator) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockPresenceOperator) Subscribe(
	ctx context.Context,
) (<-chan int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(<-chan int64), args.Error(1)
}

type testMocks struct {
	cart     *MockCartOperator
	checkout *MockCheckoutOperator
	presence *MockPresenceOperator
}

func newTestMux() (*http.ServeMux, testMocks) {
	m := testMocks{
		cart:     new(MockCartOperator),
		checkout: new(MockCheckoutOperator),
		presence: new(MockPresenceOperator),
	}
	m.presence.On("Touch", mock.Anything, mock.Anything).Return(nil).Maybe()

	mux := http.NewServeMux()
	httphandler.RegisterShop(mux, m.cart, m.checkout, m.presence)
	return mux, m
}

func doRequest(
	mux *http.ServeMux, method, target, body string,
) *httptest.ResponseRecorder {
	var r *http.Request
	if body == "" {
		r = httptest.NewRequest(method, target, nil)
	} else {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	r.Header.Set(httphandler.CustomerIDHeader, "c1")
	r.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)
	return w
}

func cartWithBook() domain.Cart {
	cart := domain.NewCart("c1")
	cart.AddProduct(domain.Product{
		Code:  "BOOK-1",
		Name:  "Go in Action",
		Price: decimal.RequireFromString("49.90"),
	}, 2)
	return cart
}

func TestAddItem(t *testing.T) {
	t.Run("ReturnsUpdatedCart", func(t *testing.T) {
		mux, m := newTestMux()
		m.cart.On("AddItem", mock.Anything, "c1", "BOOK-1", 1).
			Return(cartWithBook(), nil)

		w := doRequest(mux, http.MethodPost, "/v1/cart/items",
			`{"product_code":"BOOK-1","quantity":1}`)

		require.Equal(t, http.StatusOK, w.Code)
		var cart httphandler.Cart
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Quantity)
		assert.True(t, cart.Total.Equal(decimal.RequireFromString("99.80")))
	})

	t.Run("UnknownProductCarriesCode", func(t *testing.T) {
		mux, m := newTestMux()
		m.cart.On("AddItem", mock.Anything, "c1", "NOPE", 1).
			Return(domain.Cart{}, fmt.Errorf("%w", domain.ErrProductNotFound))

		w := doRequest(mux, http.MethodPost, "/v1/cart/items",
			`{"product_code":"NOPE","quantity":1}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		var res httphandler.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, "NOPE", res.ProductCode)
	})

	t.Run("DegradedCatalogIs503", func(t *testing.T) {
		mux, m := newTestMux()
		m.cart.On("AddItem", mock.Anything, "c1", "BOOK-1", 1).
			Return(domain.Cart{}, domain.ErrCircuitOpen)

		w := doRequest(mux, http.MethodPost, "/v1/cart/items",
			`{"product_code":"BOOK-1","quantity":1}`)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("MissingCustomerIs401", func(t *testing.T) {
		mux, m := newTestMux()
		_ = m

		handler := httphandler.RequireCustomer(mux)
		r := httptest.NewRequest(http.MethodGet, "/v1/cart", nil)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("ValidationFailureListsFields", func(t *testing.T) {
		mux, m := newTestMux()
		var ve domain.ValidationError
		ve.Add("productId", "required")
		m.cart.On("UpdateQuantity", mock.Anything, "c1",
			domain.UpdateQuantityRequest{ProductID: "", NewQuantity: 5}).
			Return(domain.UpdateQuantityResult{}, &ve)

		w := doRequest(mux, http.MethodPut, "/v1/cart/items",
			`{"product_id":"","new_quantity":5}`)

		require.Equal(t, http.StatusBadRequest, w.Code)
		var res httphandler.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		require.Len(t, res.Fields, 1)
		assert.Equal(t, "productId", res.Fields[0].Field)
	})

	t.Run("MissingItemEchoesRequest", func(t *testing.T) {
		mux, m := newTestMux()
		m.cart.On("UpdateQuantity", mock.Anything, "c1", mock.Anything).
			Return(domain.UpdateQuantityResult{}, domain.ErrItemNotFound)

		w := doRequest(mux, http.MethodPut, "/v1/cart/items",
			`{"product_id":"BOOK-9","new_quantity":2}`)

		require.Equal(t, http.StatusNotFound, w.Code)
		var req httphandler.UpdateQuantityRequest
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &req))
		assert.Equal(t, "BOOK-9", req.ProductID)
	})
}

func TestCheckout(t *testing.T) {
	t.Run("ConfirmsOrder", func(t *testing.T) {
		mux, m := newTestMux()
		m.checkout.On("Checkout", mock.Anything, "c1", mock.Anything).
			Return(domain.OrderConfirmation{
				OrderID:   "ord-1",
				Email:     "jose@example.com",
				Total:     decimal.RequireFromString("99.80"),
				ItemCount: 1,
			}, nil)

		w := doRequest(mux, http.MethodPost, "/v1/checkout",
			`{"name":"Jose","email":"jose@example.com"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var conf httphandler.OrderConfirmation
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &conf))
		assert.Equal(t, "ord-1", conf.OrderID)
	})

	t.Run("DegradedOrdersIs503", func(t *testing.T) {
		mux, m := newTestMux()
		m.checkout.On("Checkout", mock.Anything, "c1", mock.Anything).
			Return(domain.OrderConfirmation{}, domain.ErrServiceUnavailable)

		w := doRequest(mux, http.MethodPost, "/v1/checkout", `{}`)

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestRemoveItem(t *testing.T) {
	mux, m := newTestMux()
	m.cart.On("RemoveItem", mock.Anything, "c1", "BOOK-1").
		Return(domain.NewCart("c1"), nil)

	w := doRequest(mux, http.MethodDelete, "/v1/cart/items/BOOK-1", "")

	require.Equal(t, http.StatusOK, w.Code)
	var cart httphandler.Cart
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	assert.Empty(t, cart.Items)
}
