package homework

// Verdict is a review outcome reported by the homework API.
type Verdict string

const (
	VerdictApproved  Verdict = "approved"
	VerdictReviewing Verdict = "reviewing"
	VerdictRejected  Verdict = "rejected"
)

var verdictTexts = map[Verdict]string{
	VerdictApproved:  "Работа проверена: ревьюеру всё понравилось. Ура!",
	VerdictReviewing: "Работа взята на проверку ревьюером.",
	VerdictRejected:  "Работа проверена: у ревьюера есть замечания.",
}

// ParseVerdict reports whether s is one of the known verdicts.
func ParseVerdict(s string) (Verdict, bool) {
	v := Verdict(s)
	_, ok := verdictTexts[v]
	return v, ok
}

// Text returns the human readable verdict, or "" for an unknown value.
func (v Verdict) Text() string {
	return verdictTexts[v]
}
