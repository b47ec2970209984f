package auth

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// NormalizeEmail trims surrounding whitespace and lower-cases the address.
// Storage and lookups both go through it, so uniqueness is case-insensitive.
func NormalizeEmail(email string) string {
	// Casers carry state and are not safe for concurrent use.
	return cases.Lower(language.Und).String(strings.TrimSpace(email))
}
