package commerce

import (
	"context"
	"sync"
)

// MemoryCart is the per-session cart. Carts live and die with the
// session; checkout hands the contents to an external order system,
// so nothing here is persisted.
type MemoryCart struct {
	mu    sync.Mutex
	items []CartItem
	index map[string]int // product id -> position in items
	known map[string]Product
}

func NewMemoryCart() *MemoryCart {
	return &MemoryCart{
		index: make(map[string]int),
		known: make(map[string]Product),
	}
}

// Observe teaches the cart about a product so Add can resolve it by id
// later. The dispatcher calls this for every lookup result.
func (c *MemoryCart) Observe(products []Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, p := range products {
		c.known[p.ID] = p
	}
}

// Add implements Cart.
func (c *MemoryCart) Add(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		quantity = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, ok := c.index[productID]; ok {
		c.items[i].Quantity += quantity
		return nil
	}
	product, ok := c.known[productID]
	if !ok {
		return ErrUnknownProduct
	}
	c.items = append(c.items, CartItem{Product: product, Quantity: quantity})
	c.index[productID] = len(c.items) - 1
	return nil
}

// Remove implements Cart. Removing more than is held clears the line.
func (c *MemoryCart) Remove(ctx context.Context, productID string, quantity int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, ok := c.index[productID]
	if !ok {
		return ErrUnknownProduct
	}
	if quantity <= 0 || quantity >= c.items[i].Quantity {
		c.items = append(c.items[:i], c.items[i+1:]...)
		c.reindex()
		return nil
	}
	c.items[i].Quantity -= quantity
	return nil
}

// Items implements Cart.
func (c *MemoryCart) Items(ctx context.Context) ([]CartItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartItem, len(c.items))
	copy(out, c.items)
	return out, nil
}

// Total implements Cart.
func (c *MemoryCart) Total(ctx context.Context) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var total float64
	for _, item := range c.items {
		total += item.Product.Price * float64(item.Quantity)
	}
	return total, nil
}

func (c *MemoryCart) reindex() {
	c.index = make(map[string]int, len(c.items))
	for i := range c.items {
		c.index[c.items[i].Product.ID] = i
	}
}
