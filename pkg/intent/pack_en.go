package intent

import "regexp"

// English returns the English language pack.
func English() *Pack {
	return &Pack{
		Language: "en",
		// Declaration order is the documented tie-break priority.
		Matchers: []Matcher{
			NewRegexMatcher(Greeting, `^(hi|hello|hey|good (morning|afternoon|evening))\b`, 0.95),
			NewRegexMatcher(Farewell, `\b(goodbye|bye|see you( later)?|that('| i)s all( for now)?)\b`, 0.95),
			NewRegexMatcher(Help, `\b(help|what can you do|how does this work)\b`, 0.9),
			NewRegexMatcher(ShowCart, `\b((show|open|view)( me)?|what('| i)s in)( my| the)? (cart|basket)\b`, 0.9),
			NewRegexMatcher(Checkout, `\b(check ?out|proceed to payment|pay now|complete( my| the)? order)\b`, 0.9),
			NewRegexMatcher(AddToCart, `\b(add|put)\b|\b(in)?to( my| the)? (cart|basket)\b`, 0.9),
			NewRegexMatcher(RemoveFromCart, `\b(remove|delete|take out)\b|\bfrom( my| the)? (cart|basket)\b`, 0.9),
			NewRegexMatcher(DietaryFilter, `\b(vegan|vegetarian|gluten[ -]?free|dairy[ -]?free|sugar[ -]?free|kosher|halal|organic)\b`, 0.9),
			NewRegexMatcher(FilterPrice, `\b(under|below|up to|cheaper than|less than)\s+\d+`, 0.9),
			NewRegexMatcher(SearchProduct, `\b(search( for)?|find( me)?|show me|look(ing)? for|do you have|i('| a)m looking for|i want( to buy)?)\b`, 0.85),
		},
		dietary: []dietaryEntry{
			{"vegan", "vegan"},
			{"vegetarian", "vegetarian"},
			{"gluten-free", "gluten-free"},
			{"gluten free", "gluten-free"},
			{"dairy-free", "dairy-free"},
			{"dairy free", "dairy-free"},
			{"sugar-free", "sugar-free"},
			{"sugar free", "sugar-free"},
			{"kosher", "kosher"},
			{"halal", "halal"},
			{"organic", "organic"},
		},
		greetingRe: regexp.MustCompile(`^(hi|hello|hey|good (morning|afternoon|evening)|welcome)\b`),
		farewellRe: regexp.MustCompile(`\b(goodbye|bye|see you( later)?|that('| i)s all( for now)?)\b`),
		vendorRe:   regexp.MustCompile(`\bfrom ([a-z][a-z0-9' ]*)$`),
	}
}
