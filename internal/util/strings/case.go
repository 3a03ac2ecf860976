// Package strings holds identifier case conversions used for table and column naming.
package strings

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts camelCase or PascalCase identifiers to snake_case.
// Acronyms stay together (HTTPRequest -> http_request, userID -> user_id) and
// a digit ends a word like a lowercase letter (oauth2ID -> oauth2_id).
func ToSnakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)

	for i, r := range runes {
		if !unicode.IsUpper(r) {
			b.WriteRune(r)
			continue
		}
		if i > 0 && runes[i-1] != '_' && wordStart(runes, i) {
			b.WriteRune('_')
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// wordStart reports whether the uppercase rune at i begins a new word
func wordStart(runes []rune, i int) bool {
	prev := runes[i-1]
	if unicode.IsLower(prev) || unicode.IsDigit(prev) {
		return true
	}
	return i+1 < len(runes) && unicode.IsLower(runes[i+1])
}
