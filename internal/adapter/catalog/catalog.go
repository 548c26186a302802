// Package catalog is the HTTP client for the remote catalog service.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sampaiobrenner/bookstore/internal/core/domain"
	"github.com/sampaiobrenner/bookstore/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.CatalogGateway = (*Client)(nil)

type product struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	ImageURL string          `json:"image_url"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) Client {
	return Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// FetchProduct resolves one product by code. A clean 404 from the
// catalog is a normal absent result, not a failure: unknown products
// must never trip the circuit.
func (c Client) FetchProduct(
	ctx context.Context, code string,
) (domain.Product, bool, error) {
	const op = "catalog.Client.FetchProduct"

	var zero domain.Product

	reqURL := c.baseURL + "/v1/products/" + url.PathEscape(code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return zero, false, fmt.Errorf("%s: %w", op, err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return zero, false, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return zero, false, nil
	default:
		return zero, false, fmt.Errorf(
			"%s: unexpected status %d", op, res.StatusCode,
		)
	}

	var p product
	if err := json.NewDecoder(res.Body).Decode(&p); err != nil {
		return zero, false, fmt.Errorf("%s: %w", op, err)
	}

	return domain.Product{
		Code:     p.Code,
		Name:     p.Name,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}, true, nil
}
