package validate

import (
	"fmt"
	"strings"
	"unicode"
)

// MaxIDLength bounds story ids stored in the ledger.
const MaxIDLength = 256

// ID validates a story id used as a ledger key and returns it trimmed.
//
// Validation rules:
//   - Empty ids rejected (a story must be addressable)
//   - Control characters rejected (null bytes in particular)
//   - Slashes rejected (ids appear in resource URIs and file names)
//   - Max length enforced
func ID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrInvalidID)
	}
	if len(id) > MaxIDLength {
		return "", ErrIDTooLong
	}
	for _, r := range id {
		switch {
		case unicode.IsControl(r):
			return "", fmt.Errorf("%w: control character in %q", ErrInvalidID, id)
		case r == '/' || r == '\\':
			return "", fmt.Errorf("%w: slash in %q", ErrInvalidID, id)
		}
	}
	return id, nil
}
