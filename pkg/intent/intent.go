package intent

// Intent is the closed set of commands the pipeline understands.
type Intent string

const (
	SearchProduct  Intent = "search_product"
	AddToCart      Intent = "add_to_cart"
	RemoveFromCart Intent = "remove_from_cart"
	ShowCart       Intent = "show_cart"
	Checkout       Intent = "checkout"
	FilterPrice    Intent = "filter_price"
	DietaryFilter  Intent = "dietary_filter"
	Help           Intent = "help"
	Greeting       Intent = "greeting"
	Farewell       Intent = "farewell"
	Unknown        Intent = "unknown"
)

// Entities extracted from an utterance. Zero values mean "not present".
type Entities struct {
	Product  string   `json:"product,omitempty"`
	Quantity int      `json:"quantity,omitempty"`
	Price    int      `json:"price,omitempty"`
	Dietary  []string `json:"dietary,omitempty"`
	Vendor   string   `json:"vendor,omitempty"`
}

// ParsedCommand is a value object; it is discarded after dispatch and
// never persisted.
type ParsedCommand struct {
	Intent     Intent   `json:"intent"`
	Entities   Entities `json:"entities"`
	Confidence float64  `json:"confidence"`
	Text       string   `json:"text"`
}
