package commerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// HTTPCatalog talks to the external catalog service.
// GET /api/products?q=...&max_price=...&dietary=...&vendor=... returns
// a JSON array of products.
type HTTPCatalog struct {
	BaseURL string
	Client  *http.Client // inject; default if nil
	Timeout time.Duration
}

func NewHTTPCatalog(baseURL string, timeout time.Duration) *HTTPCatalog {
	return &HTTPCatalog{BaseURL: baseURL, Timeout: timeout}
}

// LookupProducts implements Catalog.
func (h *HTTPCatalog) LookupProducts(ctx context.Context, query string, f Filters) ([]Product, error) {
	u, err := url.Parse(h.BaseURL + "/api/products")
	if err != nil {
		return nil, err
	}
	q := u.Query()
	if query != "" {
		q.Set("q", query)
	}
	if f.MaxPrice > 0 {
		q.Set("max_price", strconv.Itoa(f.MaxPrice))
	}
	if len(f.Dietary) > 0 {
		q.Set("dietary", strings.Join(f.Dietary, ","))
	}
	if f.Vendor != "" {
		q.Set("vendor", f.Vendor)
	}
	u.RawQuery = q.Encode()

	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx2, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	hc := h.Client
	if hc == nil {
		hc = &http.Client{}
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w (url=%s)", err, u.String())
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("catalog http %d: %s", resp.StatusCode, string(b))
	}

	var products []Product
	if err := json.NewDecoder(resp.Body).Decode(&products); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	return products, nil
}
