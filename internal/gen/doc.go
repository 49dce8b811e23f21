// Package gen emits Go conversion functions from resolved conversion plans.
//
// Generation uses text/template for the file skeleton and
// golang.org/x/tools/imports for formatting. Field expressions are chosen
// from the checked types on both sides of a conversion:
//   - Direct assignment for identical or assignable types
//   - T(x) for convertible types
//   - Calls to other conversions generated in the same run
//   - Nil-preserving pointer, slice and map copies with per-element conversion
//   - Nil checks for unwrapped optional values
//   - Calls to user functions named by with_func
//   - Type switches for sum types
//
// One file is written per annotated type, next to the type's package sources.
package gen
