// Package sanitizer normalizes user supplied registration data before it is
// validated and stored.
//
// All functions are idempotent and never fail: invalid input yields an empty
// string, which the validators then reject.
//
// Normalization includes:
//   - Phone numbers: E.164 via libphonenumber, with a default region for numbers
//     written without a country code
//   - Names: collapse whitespace, trim leading/trailing spaces
//   - Digit codes (pincode, Aadhaar): strip spaces and dashes
package sanitizer
