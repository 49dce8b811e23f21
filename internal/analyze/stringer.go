package analyze

import "strings"

// TypePath builds the dotted location used in diagnostics, such as
// "Shape.Circle.Radius" or "Celsius.0".
type TypePath struct {
	parts []string
}

// NewTypePath creates a new TypePath from a root name. An empty root yields
// an empty path.
func NewTypePath(root string) TypePath {
	if root == "" {
		return TypePath{}
	}

	return TypePath{parts: []string{root}}
}

// Field appends a field identifier.
func (p TypePath) Field(f FieldIdent) TypePath {
	return p.append(f.String())
}

// Variant appends a variant name.
func (p TypePath) Variant(name string) TypePath {
	return p.append(name)
}

func (p TypePath) append(part string) TypePath {
	parts := make([]string, len(p.parts), len(p.parts)+1)
	copy(parts, p.parts)

	return TypePath{parts: append(parts, part)}
}

// String returns the full path string.
func (p TypePath) String() string {
	return strings.Join(p.parts, ".")
}
