// Package runner drives one generator run: it loads packages, resolves the
// conversion directives of their annotated types, emits the conversion code
// and writes it next to the annotated types.
//
// Files are only written when the run produced no error diagnostics, so a
// broken annotation never leaves a half-updated package behind. Check runs
// the same pipeline in memory and reports generated files that are missing
// or out of date. Watch repeats the run whenever a source file changes.
package runner
