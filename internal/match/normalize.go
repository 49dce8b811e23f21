package match

import (
	"strings"
	"unicode"
)

// NormalizeIdent lower-cases an identifier and drops separators
// ("Order_ID", "orderId" -> "orderid").
func NormalizeIdent(s string) string {
	return strings.Join(TokenizeIdent(s), "")
}

// TokenizeIdent splits an identifier into lower-case words on separators,
// case transitions and acronym boundaries:
//
//	"OrderID"    -> [order id]
//	"XMLParser"  -> [xml parser]
//	"try_into"   -> [try into]
func TokenizeIdent(s string) []string {
	var (
		words   []string
		current []rune
	)

	flush := func() {
		if len(current) > 0 {
			words = append(words, strings.ToLower(string(current)))
			current = current[:0]
		}
	}

	runes := []rune(s)
	for i, r := range runes {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			flush()

			continue
		}

		if i > 0 && len(current) > 0 && wordBoundary(runes, i) {
			flush()
		}

		current = append(current, r)
	}

	flush()

	return words
}

func wordBoundary(runes []rune, i int) bool {
	r, prev := runes[i], runes[i-1]
	if !unicode.IsUpper(r) {
		return false
	}

	if !unicode.IsUpper(prev) {
		return true
	}

	// End of an acronym: "XMLParser" splits before 'P'.
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
