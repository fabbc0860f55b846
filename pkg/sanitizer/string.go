package sanitizer

import (
	"strings"
	"unicode"
)

// MaxSearchTermRunes caps calendar search terms.
const MaxSearchTermRunes = 100

func TrimAndNormalize(s string) string {
	s = strings.TrimSpace(s)

	if s == "" {
		return ""
	}

	var result strings.Builder
	var lastWasSpace bool

	for _, r := range s {
		if unicode.IsSpace(r) {
			if !lastWasSpace {
				result.WriteRune(' ')
				lastWasSpace = true
			}
		} else if unicode.IsControl(r) {
			continue
		} else {
			result.WriteRune(r)
			lastWasSpace = false
		}
	}

	return result.String()
}

func NormalizeTitle(title string) string {
	return TrimAndNormalize(title)
}

// NormalizeID trims and lowercases an identifier.
func NormalizeID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}

func NormalizeSearchTerm(term string) string {
	term = TrimAndNormalize(term)
	runes := []rune(term)
	if len(runes) > MaxSearchTermRunes {
		term = strings.TrimSpace(string(runes[:MaxSearchTermRunes]))
	}
	return term
}
