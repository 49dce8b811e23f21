// Package plan resolves annotated type schemas into conversion plans.
//
// Resolution of one annotated type:
//  1. Check the type's structure (supported kind, non-empty sum, known
//     variant styles, no default-fill on defined non-struct types).
//  2. Parse the type-level conversion directives, dropping duplicates.
//  3. Parse every field and variant directive into scoped layers.
//  4. For each conversion, merge the layers visible to its method and
//     target, build one FieldPlan per field (or one VariantPlan per kept
//     variant) and assemble them in emission order.
//
// A conversion is emitted only when all of its parts resolved; every failure
// is recorded in the result's diagnostics with the type and field it concerns.
package plan
