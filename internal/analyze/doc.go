// Package analyze loads Go packages and extracts the schemas of annotated
// types.
//
// It uses golang.org/x/tools/go/packages with AST and go/types. A type is
// annotated when its doc comment carries at least one method directive
// ("//convert:into", "//convert:try_into", "//convert:from",
// "//convert:try_from").
//
// Key types:
//   - TypeSchema: an annotated record or sum type with raw directive text
//   - FieldSchema: field identifier, declared type expression, field directives
//   - VariantSchema: one implementation of a sealed interface
//   - TypeGraph: schemas plus go/types lookup for the emitter
package analyze
