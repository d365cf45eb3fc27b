package intent

import "regexp"

// Hebrew returns the Hebrew language pack. Go's \b is ASCII-only, so
// these patterns use explicit whitespace guards instead.
func Hebrew() *Pack {
	return &Pack{
		Language: "he",
		Matchers: []Matcher{
			NewRegexMatcher(Greeting, `^(שלום|היי|הי|בוקר טוב|ערב טוב|צהריים טובים)`, 0.95),
			NewRegexMatcher(Farewell, `(להתראות|ביי|יום טוב|זה הכל)`, 0.95),
			NewRegexMatcher(Help, `(עזרה|מה אתה יודע לעשות|איך זה עובד)`, 0.9),
			NewRegexMatcher(ShowCart, `(הצג|תציג|תראה|מה יש ב)( לי)?( את)?( ה)?(סל|עגלה)`, 0.9),
			NewRegexMatcher(Checkout, `(לשלם|תשלום|קופה|לסיים( את)? ההזמנה|צ'ק אאוט)`, 0.9),
			NewRegexMatcher(AddToCart, `(הוסף|תוסיף|שים|תשים)|ל(סל|עגלה)`, 0.9),
			NewRegexMatcher(RemoveFromCart, `(הסר|תסיר|תוריד|מחק|תמחק)|מה(סל|עגלה)`, 0.9),
			NewRegexMatcher(DietaryFilter, `(טבעוני|צמחוני|ללא גלוטן|בלי גלוטן|ללא סוכר|בלי סוכר|כשר|אורגני)`, 0.9),
			NewRegexMatcher(FilterPrice, `(מתחת ל|פחות מ|עד )\s*-?\d+`, 0.9),
			NewRegexMatcher(SearchProduct, `(חפש|תחפש|מצא|תמצא|תראה לי|אני מחפש|אני מחפשת|יש לכם|אני רוצה)`, 0.85),
		},
		dietary: []dietaryEntry{
			{"טבעוני", "vegan"},
			{"צמחוני", "vegetarian"},
			{"ללא גלוטן", "gluten-free"},
			{"בלי גלוטן", "gluten-free"},
			{"ללא סוכר", "sugar-free"},
			{"בלי סוכר", "sugar-free"},
			{"כשר", "kosher"},
			{"אורגני", "organic"},
		},
		greetingRe: regexp.MustCompile(`^(שלום|היי|הי|בוקר טוב|ערב טוב|צהריים טובים|ברוך הבא|ברוכה הבאה)`),
		farewellRe: regexp.MustCompile(`(להתראות|ביי|יום טוב|זה הכל)`),
		vendorRe:   regexp.MustCompile(`(?:מהחנות של|של) ([\p{Hebrew}0-9' ]+)$`),
	}
}
