package intent

import "regexp"

// Arabic returns the Arabic language pack.
func Arabic() *Pack {
	return &Pack{
		Language: "ar",
		Matchers: []Matcher{
			NewRegexMatcher(Greeting, `^(مرحبا|أهلا|اهلا|السلام عليكم|صباح الخير|مساء الخير)`, 0.95),
			NewRegexMatcher(Farewell, `(مع السلامة|وداعا|إلى اللقاء|الى اللقاء|هذا كل شيء)`, 0.95),
			NewRegexMatcher(Help, `(مساعدة|ساعدني|ماذا يمكنك أن تفعل|كيف يعمل هذا)`, 0.9),
			NewRegexMatcher(ShowCart, `(أرني|اعرض|ماذا يوجد في)( لي)?( ال)?(سلة|عربة)`, 0.9),
			NewRegexMatcher(Checkout, `(الدفع|ادفع|إتمام الطلب|اتمام الطلب)`, 0.9),
			NewRegexMatcher(AddToCart, `(أضف|اضف|ضع)|إلى السلة|الى السلة`, 0.9),
			NewRegexMatcher(RemoveFromCart, `(احذف|أزل|ازل)|من السلة`, 0.9),
			NewRegexMatcher(DietaryFilter, `(نباتي|خالي من الغلوتين|بدون غلوتين|خالي من السكر|بدون سكر|حلال|كوشر|عضوي)`, 0.9),
			NewRegexMatcher(FilterPrice, `(أقل من|اقل من|تحت|حتى)\s*\d+`, 0.9),
			NewRegexMatcher(SearchProduct, `(ابحث عن|ابحث|أبحث عن|ابحث لي|أريد|اريد|هل لديكم|أرني|اعرض لي)`, 0.85),
		},
		dietary: []dietaryEntry{
			{"نباتي", "vegan"},
			{"خالي من الغلوتين", "gluten-free"},
			{"بدون غلوتين", "gluten-free"},
			{"خالي من السكر", "sugar-free"},
			{"بدون سكر", "sugar-free"},
			{"حلال", "halal"},
			{"كوشر", "kosher"},
			{"عضوي", "organic"},
		},
		greetingRe: regexp.MustCompile(`^(مرحبا|أهلا|اهلا|السلام عليكم|صباح الخير|مساء الخير)`),
		farewellRe: regexp.MustCompile(`(مع السلامة|وداعا|إلى اللقاء|الى اللقاء|هذا كل شيء)`),
		vendorRe:   regexp.MustCompile(`من متجر ([\p{Arabic}0-9 ]+)$`),
	}
}
