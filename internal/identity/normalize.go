package identity

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeEmail lowercases s and strips every whitespace and every
// control, format or other non-printing rune. Applying it twice yields
// the same result as applying it once.
func NormalizeEmail(s string) string {
	s = cases.Lower(language.Und).String(strings.TrimSpace(s))
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || unicode.In(r, unicode.C) {
			return -1
		}
		return r
	}, s)
}

// AllowList is a set of normalized admin e-mails.
type AllowList map[string]struct{}

func NewAllowList(emails []string) AllowList {
	list := make(AllowList, len(emails))
	for _, e := range emails {
		if n := NormalizeEmail(e); n != "" {
			list[n] = struct{}{}
		}
	}
	return list
}

func (a AllowList) Contains(email string) bool {
	n := NormalizeEmail(email)
	if n == "" {
		return false
	}
	_, ok := a[n]
	return ok
}
