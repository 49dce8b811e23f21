package shape

import "go/ast"

// Classifier maps a type descriptor to its shape.
//
// The default implementation is syntactic; a resolver backed by type
// information can be substituted without touching the planner.
type Classifier interface {
	Classify(d Descriptor) Shape
}

// Wrappers lists the single-segment generic type names recognised as
// containers in addition to Go's built-in spellings.
type Wrappers struct {
	Optional []string `yaml:"optional,omitempty"`
	Sequence []string `yaml:"sequence,omitempty"`
	Map      []string `yaml:"map,omitempty"`
}

// DefaultWrappers returns the wrapper names recognised out of the box.
func DefaultWrappers() Wrappers {
	return Wrappers{
		Optional: []string{"Option", "Optional"},
		Sequence: []string{"List"},
		Map:      []string{"Dict"},
	}
}

// SyntacticClassifier classifies type expressions by their written form.
type SyntacticClassifier struct {
	generic map[string]Shape
}

// NewClassifier creates a SyntacticClassifier recognising the given wrappers.
// When a name is listed under several shapes, the first of optional,
// sequence, map wins.
func NewClassifier(w Wrappers) *SyntacticClassifier {
	generic := make(map[string]Shape)

	register := func(names []string, s Shape) {
		for _, n := range names {
			if _, exists := generic[n]; !exists {
				generic[n] = s
			}
		}
	}

	register(w.Optional, Optional)
	register(w.Sequence, Sequence)
	register(w.Map, AssociativeMap)

	return &SyntacticClassifier{generic: generic}
}

// Classify implements Classifier.
func (c *SyntacticClassifier) Classify(d Descriptor) Shape {
	switch e := d.expr.(type) {
	case *ast.StarExpr:
		return Optional
	case *ast.ArrayType:
		if e.Len == nil {
			return Sequence
		}

		return Plain
	case *ast.MapType:
		return AssociativeMap
	case *ast.IndexExpr:
		return c.genericShape(e.X)
	case *ast.IndexListExpr:
		return c.genericShape(e.X)
	default:
		return Plain
	}
}

// genericShape only accepts a bare identifier; qualified names such as
// opt.Option[T] are multi-segment and stay Plain.
func (c *SyntacticClassifier) genericShape(x ast.Expr) Shape {
	ident, ok := x.(*ast.Ident)
	if !ok {
		return Plain
	}

	if s, ok := c.generic[ident.Name]; ok {
		return s
	}

	return Plain
}
