package commerce

import (
	"context"
	"errors"
)

// ErrUnknownProduct is returned by cart operations on an id the cart
// cannot resolve.
var ErrUnknownProduct = errors.New("commerce: unknown product")

// Product is the catalog's view of an item. The catalog itself is an
// external capability; this core never persists products.
type Product struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Price   float64  `json:"price"`
	Vendor  string   `json:"vendor,omitempty"`
	Dietary []string `json:"dietary,omitempty"`
}

// Filters narrow a catalog lookup. Zero values mean "no constraint".
type Filters struct {
	MaxPrice int
	Dietary  []string
	Vendor   string
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

// Catalog is the product-lookup capability boundary.
type Catalog interface {
	LookupProducts(ctx context.Context, query string, f Filters) ([]Product, error)
}

// ProductObserver is implemented by carts that resolve product ids
// locally instead of against a remote store. The dispatcher feeds it
// every lookup result.
type ProductObserver interface {
	Observe(products []Product)
}

// Cart is the cart-mutation capability boundary.
type Cart interface {
	Add(ctx context.Context, productID string, quantity int) error
	Remove(ctx context.Context, productID string, quantity int) error
	Items(ctx context.Context) ([]CartItem, error)
	Total(ctx context.Context) (float64, error)
}
