// Package match provides name similarity and go/types compatibility helpers.
//
// Name similarity drives the "did you mean" hints attached to diagnostics.
// Type compatibility lets the emitter choose between a plain assignment, a Go
// conversion and a call to another generated converter.
package match
