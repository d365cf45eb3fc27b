package commerce

// Speakable reply templates per language. Kept to one short sentence
// each; the orchestrator may speak them verbatim.
type replySet struct {
	searchSummary  string // count, query
	searchEmpty    string // query
	filterSummary  string // count
	added          string // quantity, product
	removed        string // product
	cartSummary    string // count, total
	cartEmpty      string
	checkout       string // total
	checkoutEmpty  string
	help           string
	noLastResults  string
	productUnknown string // product
}

var replies = map[string]replySet{
	"en": {
		searchSummary:  "I found %d products for %s.",
		searchEmpty:    "I could not find anything for %s.",
		filterSummary:  "There are %d products matching your filters.",
		added:          "Added %d of %s to your cart.",
		removed:        "Removed %s from your cart.",
		cartSummary:    "Your cart has %d items, %.2f in total.",
		cartEmpty:      "Your cart is empty.",
		checkout:       "Your total is %.2f, taking you to checkout.",
		checkoutEmpty:  "Your cart is empty, nothing to check out.",
		help:           "You can search products, add them to your cart, review the cart or check out.",
		noLastResults:  "Search for a product first, then ask me to add it.",
		productUnknown: "I could not find %s in the last results.",
	},
	"he": {
		searchSummary:  "מצאתי %d מוצרים עבור %s.",
		searchEmpty:    "לא מצאתי כלום עבור %s.",
		filterSummary:  "יש %d מוצרים שמתאימים לסינון שלך.",
		added:          "הוספתי %d יחידות של %s לסל.",
		removed:        "הסרתי את %s מהסל.",
		cartSummary:    "בסל שלך %d פריטים, %.2f בסך הכל.",
		cartEmpty:      "הסל שלך ריק.",
		checkout:       "הסכום לתשלום הוא %.2f, עוברים לקופה.",
		checkoutEmpty:  "הסל ריק, אין מה לשלם.",
		help:           "אפשר לחפש מוצרים, להוסיף לסל, לראות את הסל או לשלם.",
		noLastResults:  "קודם חפש מוצר, ואז בקש להוסיף אותו.",
		productUnknown: "לא מצאתי את %s בתוצאות האחרונות.",
	},
	"ar": {
		searchSummary:  "وجدت %d منتجات لـ %s.",
		searchEmpty:    "لم أجد شيئا لـ %s.",
		filterSummary:  "هناك %d منتجات تطابق التصفية.",
		added:          "أضفت %d من %s إلى سلتك.",
		removed:        "أزلت %s من سلتك.",
		cartSummary:    "في سلتك %d عناصر، %.2f إجمالا.",
		cartEmpty:      "سلتك فارغة.",
		checkout:       "المجموع %.2f، ننتقل إلى الدفع.",
		checkoutEmpty:  "السلة فارغة، لا يوجد ما تدفعه.",
		help:           "يمكنك البحث عن منتجات، إضافتها إلى السلة، عرض السلة أو الدفع.",
		noLastResults:  "ابحث عن منتج أولا ثم اطلب إضافته.",
		productUnknown: "لم أجد %s في النتائج الأخيرة.",
	},
}

func repliesFor(language string) replySet {
	if set, ok := replies[language]; ok {
		return set
	}
	return replies["en"]
}
