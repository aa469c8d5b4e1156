// Package validate certifies story documents and checks the inputs that
// cross into the publication ledger.
//
// # Document validation
//
// A Validator walks a decoded document and produces a Report: errors for
// defects that break navigation (empty or duplicate step ids, a missing
// start step, dangling transitions, a missing primary image) and warnings
// for defects that leave the document usable (corrupted text, missing
// supplementary content, unreachable steps when enabled). Every defect is
// reported in one pass so an operator can fix a document in one sitting.
//
//	r := validate.New(validate.Options{Checker: exists.Dir{}, ImageRoot: "outputs/players"}).
//	    Validate(ctx, doc)
//	if !r.OK() {
//	    // reject
//	}
//
// Documents that cannot be modelled at all never reach the Validator; Source
// and Structural turn the decode failure into a structural report instead.
//
// # Ledger boundary
//
// ID and Content validate arguments before they reach the store. These
// return errors wrapping the sentinels in errors.go:
//
//	if errors.Is(err, validate.ErrInvalidID) {
//	    // handle invalid story id
//	}
package validate
