// Package diagnostic provides structured, position-carrying findings for the
// conversion generator.
//
// Key capabilities:
//   - Errors, warnings and infos collected per run and reported together
//   - Categories separating field-local failures from type-fatal ones
//   - "Did you mean" suggestions attached to unknown names
package diagnostic
