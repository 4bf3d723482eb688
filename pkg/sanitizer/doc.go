// Package sanitizer normalizes user-supplied strings before validation and
// storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input is never rejected here; it is normalized as far as possible
// and left for the validator to report.
//
// Normalization includes:
//   - Names and free text: collapse whitespace, trim, drop control characters
//   - Emails: trim and lowercase
//   - National IDs: keep digits only ("111.222.333-44" becomes "11122233344")
//   - Int slices: drop non-positive values and duplicates, keep order
package sanitizer
