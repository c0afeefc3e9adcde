// Package textnorm turns marked-up question text into the plain, folded
// form used for display and substring search.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// tagPattern matches any angle bracket span, shortest first. It is not
// attribute aware: "<a title='x>y'>" leaves "y'>" behind.
var tagPattern = regexp.MustCompile(`<.*?>`)

// StripMarkup removes every <...> span from s.
func StripMarkup(s string) string {
	if s == "" {
		return s
	}
	return tagPattern.ReplaceAllString(s, "")
}

// Normalize strips markup, composes to NFC and lower-cases.
func Normalize(s string) string {
	return FoldQuery(StripMarkup(s))
}

// FoldQuery brings a filter query into the same form as a search index
// without touching angle brackets the user typed.
func FoldQuery(q string) string {
	if q == "" {
		return q
	}
	return strings.ToLower(norm.NFC.String(q))
}

// Join concatenates parts with single spaces. Empty parts are kept.
func Join(parts ...string) string {
	return strings.Join(parts, " ")
}
