package statement

import "strings"

// Blacklist drops statement lines whose description contains any of
// the configured terms. Matching is case-insensitive unless
// CaseSensitive is set.
type Blacklist struct {
	Terms         []string
	CaseSensitive bool
}

// Matches reports whether text contains any blacklisted term.
func (b Blacklist) Matches(text string) bool {
	if !b.CaseSensitive {
		text = strings.ToLower(text)
	}
	for _, term := range b.Terms {
		if !b.CaseSensitive {
			term = strings.ToLower(term)
		}
		if term != "" && strings.Contains(text, term) {
			return true
		}
	}
	return false
}
