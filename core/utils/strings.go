package utils

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Ellipsis is appended by Truncate.
const Ellipsis = "..."

// emailRegex accepts the classic local@domain.tld shape only; it is not an RFC 5322 parser.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail reports whether s looks like local@domain.tld.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// Truncate returns s unchanged when it has at most n runes. Longer strings are cut to n runes and
// Ellipsis is appended, so the result is n+3 runes long.
func Truncate(s string, n int) string {
	if n < 0 {
		n = 0
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + Ellipsis
}

// Capitalize upper-cases the first rune and lower-cases the rest ("nASA" -> "Nasa").
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
