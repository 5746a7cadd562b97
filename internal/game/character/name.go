package character

import (
	"errors"
	"strings"
)

// ErrInvalidName is returned when a character name violates the name policy.
var ErrInvalidName = errors.New("invalid character name")

// CanonicalName trims, validates, and canonicalizes a character name:
// ASCII letters only, length within [minLen, maxLen], initial upper-case
// and remainder lower-case.
//
// Postcondition: On success the result is idempotent under CanonicalName
// with the same bounds; two names differing only in case canonicalize
// identically.
func CanonicalName(raw string, minLen, maxLen int) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) < minLen || len(name) > maxLen {
		return "", ErrInvalidName
	}
	for i := 0; i < len(name); i++ {
		ch := name[i]
		if (ch < 'a' || ch > 'z') && (ch < 'A' || ch > 'Z') {
			return "", ErrInvalidName
		}
	}
	return strings.ToUpper(name[:1]) + strings.ToLower(name[1:]), nil
}
