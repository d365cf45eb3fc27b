package conversation

// Pipeline-level spoken replies, per language. Command results carry
// their own wording; these cover the turns the pipeline answers
// itself.
type replySet struct {
	greeting    string // full self-introduction, spoken at most once
	greetingAck string // later hellos get this instead
	farewell    string
	clarify     string // parse confidence below threshold
	reprompt    string // empty transcript
	turnFailed  string // capability error mid-turn
}

var replies = map[string]replySet{
	"en": {
		greeting:    "Hello! I am your market assistant. You can ask me to find products, manage your cart or check out.",
		greetingAck: "Yes, I am listening.",
		farewell:    "Goodbye, happy shopping!",
		clarify:     "I am not sure I understood. Could you say that differently?",
		reprompt:    "I did not catch that, please try again.",
		turnFailed:  "Something went wrong with that request, please try again.",
	},
	"he": {
		greeting:    "שלום! אני העוזר של השוק. אפשר לבקש ממני למצוא מוצרים, לנהל את הסל או לשלם.",
		greetingAck: "כן, אני מקשיב.",
		farewell:    "להתראות, קניות נעימות!",
		clarify:     "לא בטוח שהבנתי. אפשר לנסח אחרת?",
		reprompt:    "לא שמעתי, אפשר לנסות שוב?",
		turnFailed:  "משהו השתבש בבקשה הזאת, נסה שוב.",
	},
	"ar": {
		greeting:    "مرحبا! أنا مساعد السوق. يمكنك أن تطلب مني إيجاد منتجات، إدارة السلة أو الدفع.",
		greetingAck: "نعم، أنا أسمعك.",
		farewell:    "مع السلامة، تسوقا سعيدا!",
		clarify:     "لست متأكدا أنني فهمت. هل يمكنك إعادة الصياغة؟",
		reprompt:    "لم أسمع ذلك، حاول مرة أخرى.",
		turnFailed:  "حدث خطأ في هذا الطلب، حاول مرة أخرى.",
	},
}

func repliesFor(language string) replySet {
	if set, ok := replies[language]; ok {
		return set
	}
	return replies["en"]
}
