// Package shape classifies declared field types into the container shapes the
// conversion planner understands.
//
// Classification is purely syntactic: a type expression is inspected as
// written, without resolving aliases, shadowed names or imports. Anything the
// classifier does not recognise is Plain, so classification never fails.
package shape

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/parser"
	"go/printer"
	"go/token"

	"convert-generator/internal/common"
)

// Shape is the container category of a declared type.
type Shape int

const (
	// Plain is any type that is not a recognised container.
	Plain Shape = iota
	// Optional is a possibly absent value (*T or a configured optional wrapper).
	Optional
	// Sequence is an ordered collection ([]T or a configured sequence wrapper).
	Sequence
	// AssociativeMap is a key/value collection (map[K]V or a configured map wrapper).
	AssociativeMap
)

// String returns a human-readable shape name.
func (s Shape) String() string {
	switch s {
	case Plain:
		return "plain"
	case Optional:
		return "optional"
	case Sequence:
		return "sequence"
	case AssociativeMap:
		return "map"
	default:
		return common.UnknownStr
	}
}

// Descriptor is the declared type expression of a field, kept as written in
// source. Only the classifier looks inside it; everything else treats it as
// opaque text.
type Descriptor struct {
	expr ast.Expr
	text string
}

// FromExpr wraps a parsed type expression.
func FromExpr(expr ast.Expr) Descriptor {
	var buf bytes.Buffer
	if expr != nil {
		_ = printer.Fprint(&buf, token.NewFileSet(), expr)
	}

	return Descriptor{expr: expr, text: buf.String()}
}

// Parse parses a type expression from source text.
func Parse(src string) (Descriptor, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return Descriptor{}, fmt.Errorf("parsing type expression %q: %w", src, err)
	}

	return FromExpr(expr), nil
}

// MustParse is like Parse but panics on error. Intended for fixtures.
func MustParse(src string) Descriptor {
	d, err := Parse(src)
	if err != nil {
		panic(err)
	}

	return d
}

// String returns the type expression as written.
func (d Descriptor) String() string {
	return d.text
}

// IsZero reports whether the descriptor carries no expression.
func (d Descriptor) IsZero() bool {
	return d.expr == nil
}
