package commerce

import (
	"context"
	"strings"
	"testing"

	"github.com/kolshuk/kolshuk/pkg/intent"
)

type fakeCatalog struct {
	products    []Product
	lastQuery   string
	lastFilters Filters
	calls       int
}

func (f *fakeCatalog) LookupProducts(ctx context.Context, query string, filters Filters) ([]Product, error) {
	f.calls++
	f.lastQuery = query
	f.lastFilters = filters

	var out []Product
	for _, p := range f.products {
		if query != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(query)) {
			continue
		}
		if filters.MaxPrice > 0 && p.Price > float64(filters.MaxPrice) {
			continue
		}
		if !hasAllTags(p.Dietary, filters.Dietary) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func hasAllTags(have, want []string) bool {
	for _, w := range want {
		found := false
		for _, h := range have {
			if h == w {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

type addCall struct {
	productID string
	quantity  int
}

type fakeCart struct {
	adds    []addCall
	removes []addCall
	items   []CartItem
	total   float64
}

func (f *fakeCart) Add(ctx context.Context, productID string, quantity int) error {
	f.adds = append(f.adds, addCall{productID, quantity})
	return nil
}

func (f *fakeCart) Remove(ctx context.Context, productID string, quantity int) error {
	f.removes = append(f.removes, addCall{productID, quantity})
	return nil
}

func (f *fakeCart) Items(ctx context.Context) ([]CartItem, error) { return f.items, nil }
func (f *fakeCart) Total(ctx context.Context) (float64, error)    { return f.total, nil }

func testProducts() []Product {
	return []Product{
		{ID: "p1", Name: "Vegan Hummus", Price: 18, Dietary: []string{"vegan"}},
		{ID: "p2", Name: "Organic Apples", Price: 25, Dietary: []string{"organic", "vegan"}},
		{ID: "p3", Name: "Vegan Chocolate", Price: 75, Dietary: []string{"vegan"}},
	}
}

func newDispatcher(t *testing.T, catalog Catalog, cart Cart) *Dispatcher {
	t.Helper()
	d, err := New(catalog, cart, nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return d
}

func TestNewFailsFastOnMissingCapability(t *testing.T) {
	if _, err := New(nil, &fakeCart{}, nil); err != ErrNilCatalog {
		t.Errorf("expected ErrNilCatalog, got %v", err)
	}
	if _, err := New(&fakeCatalog{}, nil, nil); err != ErrNilCart {
		t.Errorf("expected ErrNilCart, got %v", err)
	}
}

func TestAddToCartAfterLookupDefaultsQuantityOne(t *testing.T) {
	catalog := &fakeCatalog{products: testProducts()}
	cart := &fakeCart{}
	d := newDispatcher(t, catalog, cart)
	ctx := context.Background()

	parser := intent.Default()
	if _, err := d.Dispatch(ctx, parser.Parse("search for hummus", "en"), "en"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	res, err := d.Dispatch(ctx, parser.Parse("add to cart", "en"), "en")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !res.Handled {
		t.Fatal("add to cart should be handled deterministically")
	}

	if len(cart.adds) != 1 {
		t.Fatalf("expected exactly one cart add, got %d", len(cart.adds))
	}
	if cart.adds[0].productID != "p1" {
		t.Errorf("expected first lookup result added, got %s", cart.adds[0].productID)
	}
	if cart.adds[0].quantity != 1 {
		t.Errorf("expected default quantity 1, got %d", cart.adds[0].quantity)
	}
}

func TestAddToCartWithoutLookupExplains(t *testing.T) {
	cart := &fakeCart{}
	d := newDispatcher(t, &fakeCatalog{}, cart)

	res, err := d.Dispatch(context.Background(), intent.Default().Parse("add to cart", "en"), "en")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !res.Handled || res.Reply == "" {
		t.Error("expected a spoken explanation, not a silent no-op")
	}
	if len(cart.adds) != 0 {
		t.Errorf("no cart mutation expected, got %d", len(cart.adds))
	}
}

func TestVeganUnderFiftyFlow(t *testing.T) {
	catalog := &fakeCatalog{products: testProducts()}
	d := newDispatcher(t, catalog, &fakeCart{})
	ctx := context.Background()

	cmd := intent.Default().Parse("show me vegan products under 50", "en")
	res, err := d.Dispatch(ctx, cmd, "en")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !res.Handled {
		t.Fatal("filter command should be handled")
	}

	if catalog.lastFilters.MaxPrice != 50 {
		t.Errorf("expected price ceiling 50, got %d", catalog.lastFilters.MaxPrice)
	}
	if len(catalog.lastFilters.Dietary) != 1 || catalog.lastFilters.Dietary[0] != "vegan" {
		t.Errorf("expected dietary filter [vegan], got %v", catalog.lastFilters.Dietary)
	}

	// p3 is vegan but priced over the ceiling
	if len(res.Products) != 2 {
		t.Fatalf("expected 2 products after filtering, got %d", len(res.Products))
	}
	for _, p := range res.Products {
		if p.Price > 50 {
			t.Errorf("product %s exceeds the price ceiling", p.Name)
		}
	}
	if res.Reply == "" || !strings.Contains(res.Reply, "2") {
		t.Errorf("expected one-sentence summary with the count, got %q", res.Reply)
	}
}

func TestNamedAddMatchesLastResults(t *testing.T) {
	catalog := &fakeCatalog{products: testProducts()}
	cart := &fakeCart{}
	d := newDispatcher(t, catalog, cart)
	ctx := context.Background()
	parser := intent.Default()

	if _, err := d.Dispatch(ctx, parser.Parse("search for vegan", "en"), "en"); err != nil {
		t.Fatalf("search failed: %v", err)
	}

	res, err := d.Dispatch(ctx, parser.Parse("add 3 chocolate to the cart", "en"), "en")
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !res.Handled {
		t.Fatal("expected handled result")
	}
	if len(cart.adds) != 1 || cart.adds[0].productID != "p3" {
		t.Fatalf("expected chocolate (p3) added, got %+v", cart.adds)
	}
	if cart.adds[0].quantity != 3 {
		t.Errorf("expected quantity 3, got %d", cart.adds[0].quantity)
	}
}

func TestShowCartSummarizesItems(t *testing.T) {
	cart := &fakeCart{
		items: []CartItem{
			{Product: Product{ID: "p1", Name: "Vegan Hummus", Price: 18}, Quantity: 2},
			{Product: Product{ID: "p2", Name: "Organic Apples", Price: 25}, Quantity: 1},
		},
		total: 61,
	}
	d := newDispatcher(t, &fakeCatalog{}, cart)

	res, err := d.Dispatch(context.Background(), intent.Default().Parse("show my cart", "en"), "en")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !res.Handled {
		t.Fatal("show cart should be handled")
	}
	if !strings.Contains(res.Reply, "3") || !strings.Contains(res.Reply, "61.00") {
		t.Errorf("expected item count and total in reply, got %q", res.Reply)
	}
}

func TestCheckoutOnEmptyCart(t *testing.T) {
	d := newDispatcher(t, &fakeCatalog{}, &fakeCart{})

	res, err := d.Dispatch(context.Background(), intent.Default().Parse("checkout", "en"), "en")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if !res.Handled || res.Reply == "" {
		t.Error("empty-cart checkout should still produce a spoken reply")
	}
}

func TestUnknownIntentIsNotHandled(t *testing.T) {
	d := newDispatcher(t, &fakeCatalog{}, &fakeCart{})

	cmd := intent.ParsedCommand{Intent: intent.Unknown}
	res, err := d.Dispatch(context.Background(), cmd, "en")
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if res.Handled {
		t.Error("unknown intent must fall through to the assistant")
	}
}
