// Package sanitizer normalizes guest-supplied input before validation and storage.
//
// All functions are idempotent. Invalid input is returned trimmed rather than
// dropped, so the validator can still report the offending field.
package sanitizer
