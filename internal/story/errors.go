package story

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is the sentinel wrapped by every MalformedDocumentError.
var ErrMalformed = errors.New("malformed story document")

// MalformedDocumentError reports input that cannot be modelled at all.
// Either Missing lists absent required top-level keys, or Field names the
// offending field and Reason says what was wrong with it.
type MalformedDocumentError struct {
	Missing []string
	Field   string
	Reason  string
}

func (e *MalformedDocumentError) Error() string {
	switch {
	case len(e.Missing) > 0:
		return "missing top-level key: " + strings.Join(e.Missing, ", ")
	case e.Field != "":
		return fmt.Sprintf("field %s: %s", e.Field, e.Reason)
	default:
		return e.Reason
	}
}

func (e *MalformedDocumentError) Unwrap() error {
	return ErrMalformed
}

// IsMalformed reports whether err is or wraps a MalformedDocumentError.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

type expectedError string

func (e expectedError) Error() string { return "expected " + string(e) }

func errExpected(kind string) error { return expectedError(kind) }

func fieldError(field string, err error) error {
	return &MalformedDocumentError{Field: field, Reason: err.Error()}
}
