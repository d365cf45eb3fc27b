package commerce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kolshuk/kolshuk/pkg/Logger"
	"github.com/kolshuk/kolshuk/pkg/intent"
)

var (
	ErrNilCatalog = errors.New("commerce: catalog capability is required")
	ErrNilCart    = errors.New("commerce: cart capability is required")
)

// Result is the dispatcher's answer for one command. Handled=false
// means the intent is not deterministic and belongs to the assistant.
type Result struct {
	Handled  bool
	Reply    string
	Products []Product
}

// Dispatcher maps deterministic commands onto the injected catalog and
// cart capabilities. One per session: it remembers the last lookup so
// "add to cart" without a product name resolves against it.
type Dispatcher struct {
	catalog Catalog
	cart    Cart
	logger  *Logger.Logger

	mu          sync.Mutex
	lastResults []Product
	lastQuery   string
}

// New fails fast on a missing capability; a nil catalog or cart is a
// wiring bug, not a condition to paper over at dispatch time.
func New(catalog Catalog, cart Cart, logger *Logger.Logger) (*Dispatcher, error) {
	if catalog == nil {
		return nil, ErrNilCatalog
	}
	if cart == nil {
		return nil, ErrNilCart
	}
	return &Dispatcher{catalog: catalog, cart: cart, logger: logger}, nil
}

// Dispatch executes cmd when it is deterministic. Capability failures
// come back as errors; the caller decides how to phrase them.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd intent.ParsedCommand, language string) (*Result, error) {
	set := repliesFor(language)

	switch cmd.Intent {
	case intent.SearchProduct:
		return d.search(ctx, cmd, set)
	case intent.FilterPrice, intent.DietaryFilter:
		return d.filter(ctx, cmd, set)
	case intent.AddToCart:
		return d.add(ctx, cmd, set)
	case intent.RemoveFromCart:
		return d.remove(ctx, cmd, set)
	case intent.ShowCart:
		return d.showCart(ctx, set)
	case intent.Checkout:
		return d.checkout(ctx, set)
	case intent.Help:
		return &Result{Handled: true, Reply: set.help}, nil
	}
	return &Result{Handled: false}, nil
}

func (d *Dispatcher) search(ctx context.Context, cmd intent.ParsedCommand, set replySet) (*Result, error) {
	query := cmd.Entities.Product
	filters := Filters{
		MaxPrice: cmd.Entities.Price,
		Dietary:  cmd.Entities.Dietary,
		Vendor:   cmd.Entities.Vendor,
	}

	products, err := d.catalog.LookupProducts(ctx, query, filters)
	if err != nil {
		return nil, fmt.Errorf("lookup %q: %w", query, err)
	}

	if obs, ok := d.cart.(ProductObserver); ok {
		obs.Observe(products)
	}

	d.mu.Lock()
	d.lastResults = products
	d.lastQuery = query
	d.mu.Unlock()

	if len(products) == 0 {
		return &Result{Handled: true, Reply: fmt.Sprintf(set.searchEmpty, query)}, nil
	}
	return &Result{
		Handled:  true,
		Reply:    fmt.Sprintf(set.searchSummary, len(products), query),
		Products: products,
	}, nil
}

// filter re-runs the last query with the new constraints; with no
// prior query it filters the whole catalog.
func (d *Dispatcher) filter(ctx context.Context, cmd intent.ParsedCommand, set replySet) (*Result, error) {
	d.mu.Lock()
	query := d.lastQuery
	d.mu.Unlock()

	filters := Filters{
		MaxPrice: cmd.Entities.Price,
		Dietary:  cmd.Entities.Dietary,
		Vendor:   cmd.Entities.Vendor,
	}

	products, err := d.catalog.LookupProducts(ctx, query, filters)
	if err != nil {
		return nil, fmt.Errorf("filtered lookup %q: %w", query, err)
	}

	if obs, ok := d.cart.(ProductObserver); ok {
		obs.Observe(products)
	}

	d.mu.Lock()
	d.lastResults = products
	d.mu.Unlock()

	return &Result{
		Handled:  true,
		Reply:    fmt.Sprintf(set.filterSummary, len(products)),
		Products: products,
	}, nil
}

func (d *Dispatcher) add(ctx context.Context, cmd intent.ParsedCommand, set replySet) (*Result, error) {
	product, reply := d.resolve(cmd.Entities.Product, set)
	if product == nil {
		return &Result{Handled: true, Reply: reply}, nil
	}

	qty := cmd.Entities.Quantity
	if qty <= 0 {
		qty = 1
	}

	if err := d.cart.Add(ctx, product.ID, qty); err != nil {
		return nil, fmt.Errorf("cart add %s: %w", product.ID, err)
	}
	return &Result{Handled: true, Reply: fmt.Sprintf(set.added, qty, product.Name)}, nil
}

func (d *Dispatcher) remove(ctx context.Context, cmd intent.ParsedCommand, set replySet) (*Result, error) {
	product, reply := d.resolve(cmd.Entities.Product, set)
	if product == nil {
		return &Result{Handled: true, Reply: reply}, nil
	}

	qty := cmd.Entities.Quantity
	if qty <= 0 {
		qty = 1
	}

	if err := d.cart.Remove(ctx, product.ID, qty); err != nil {
		return nil, fmt.Errorf("cart remove %s: %w", product.ID, err)
	}
	return &Result{Handled: true, Reply: fmt.Sprintf(set.removed, product.Name)}, nil
}

func (d *Dispatcher) showCart(ctx context.Context, set replySet) (*Result, error) {
	items, err := d.cart.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart items: %w", err)
	}
	if len(items) == 0 {
		return &Result{Handled: true, Reply: set.cartEmpty}, nil
	}
	total, err := d.cart.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart total: %w", err)
	}

	count := 0
	for _, it := range items {
		count += it.Quantity
	}
	return &Result{Handled: true, Reply: fmt.Sprintf(set.cartSummary, count, total)}, nil
}

func (d *Dispatcher) checkout(ctx context.Context, set replySet) (*Result, error) {
	items, err := d.cart.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart items: %w", err)
	}
	if len(items) == 0 {
		return &Result{Handled: true, Reply: set.checkoutEmpty}, nil
	}
	total, err := d.cart.Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("cart total: %w", err)
	}
	return &Result{Handled: true, Reply: fmt.Sprintf(set.checkout, total)}, nil
}

// resolve picks a product from the last lookup. Bare "add to cart"
// takes the first result; a named product must match one of them.
func (d *Dispatcher) resolve(name string, set replySet) (*Product, string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.lastResults) == 0 {
		return nil, set.noLastResults
	}
	if name == "" {
		p := d.lastResults[0]
		return &p, ""
	}

	lowered := strings.ToLower(name)
	for _, p := range d.lastResults {
		if strings.Contains(strings.ToLower(p.Name), lowered) {
			match := p
			return &match, ""
		}
	}
	return nil, fmt.Sprintf(set.productUnknown, name)
}
