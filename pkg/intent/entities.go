package intent

import (
	"regexp"
	"strconv"
)

var intRe = regexp.MustCompile(`\d+`)

// firstInt returns the first integer appearing in text. Quantities and
// price ceilings both use this rule.
func firstInt(text string) (int, bool) {
	m := intRe.FindString(text)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func stripDigits(text string) string {
	return collapseSpaces(intRe.ReplaceAllString(text, " "))
}

func extractEntities(pack *Pack, in Intent, text, remainder string) Entities {
	var e Entities
	switch in {
	case AddToCart, RemoveFromCart:
		if n, ok := firstInt(text); ok {
			e.Quantity = n
		}
		e.Product = stripDigits(remainder)
		e.Vendor = pack.Vendor(text)
	case FilterPrice, DietaryFilter:
		if n, ok := firstInt(text); ok {
			e.Price = n
		}
		e.Dietary = pack.DietaryTags(text)
	case SearchProduct:
		e.Product = remainder
		e.Dietary = pack.DietaryTags(text)
		e.Vendor = pack.Vendor(text)
	}
	return e
}
