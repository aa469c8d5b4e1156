// content.go implements stored content size validation.
//
// Separated because the ledger stores the encoded document as an opaque
// blob. Shape is the Validator's concern; here only size matters.

package validate

// Content validates encoded document size.
//
// Validation rules:
//   - Max length enforced if maxLen > 0 (0 means no limit)
func Content(content []byte, maxLen int64) error {
	if maxLen > 0 && int64(len(content)) > maxLen {
		return ErrContentTooLarge
	}
	return nil
}
