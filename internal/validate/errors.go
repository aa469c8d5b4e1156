// errors.go defines sentinel errors for ledger boundary validation.
//
// Separated to centralise error definitions. These errors are used with
// errors.Is() for type-safe error checking.
//
// Design: Sentinel errors (not error types) because boundary failures
// don't carry additional context beyond the category. Detailed messages
// are provided by wrapping these with fmt.Errorf in the validation functions.
// Document defects are not errors at all; they are collected in a Report.

package validate

import "errors"

var (
	ErrInvalidID       = errors.New("invalid story id")
	ErrIDTooLong       = errors.New("story id too long")
	ErrContentTooLarge = errors.New("content too large")
	ErrNotPublishable  = errors.New("story has validation errors")
)
