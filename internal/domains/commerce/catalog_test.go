package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTPCatalogLookup(t *testing.T) {
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		gotQuery = map[string]string{
			"q":         q.Get("q"),
			"max_price": q.Get("max_price"),
			"dietary":   q.Get("dietary"),
		}
		json.NewEncoder(w).Encode([]Product{
			{ID: "p1", Name: "Vegan Hummus", Price: 18, Dietary: []string{"vegan"}},
		})
	}))
	defer srv.Close()

	catalog := NewHTTPCatalog(srv.URL, 2*time.Second)
	products, err := catalog.LookupProducts(context.Background(), "hummus", Filters{
		MaxPrice: 50,
		Dietary:  []string{"vegan"},
	})
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if len(products) != 1 || products[0].ID != "p1" {
		t.Fatalf("unexpected products %+v", products)
	}
	if gotQuery["q"] != "hummus" || gotQuery["max_price"] != "50" || gotQuery["dietary"] != "vegan" {
		t.Fatalf("unexpected query %+v", gotQuery)
	}
}

func TestHTTPCatalogErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "catalog down", http.StatusBadGateway)
	}))
	defer srv.Close()

	catalog := NewHTTPCatalog(srv.URL, 2*time.Second)
	if _, err := catalog.LookupProducts(context.Background(), "milk", Filters{}); err == nil {
		t.Fatal("expected error on non-200 response")
	}
}
