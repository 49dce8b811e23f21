package plan

import (
	"go/token"

	"convert-generator/internal/analyze"
	"convert-generator/internal/common"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/directive"
	"convert-generator/internal/shape"
)

// Method is how one field value is carried from source to target.
type Method int

const (
	// MethodPlain converts the value directly.
	MethodPlain Method = iota
	// MethodUnwrapOption extracts the value from an optional source; the
	// conversion fails or panics when it is absent.
	MethodUnwrapOption
	// MethodSomeOption wraps a present value into an optional target.
	MethodSomeOption
	// MethodOption maps an optional value, keeping absence as absence.
	MethodOption
	// MethodSequence converts every element of a sequence.
	MethodSequence
	// MethodMap converts every key and value of an associative map.
	MethodMap
	// MethodDefault leaves the target at its zero value.
	MethodDefault
	// MethodCustom calls a user function with the whole source value.
	MethodCustom
)

// String returns a human-readable method name.
func (m Method) String() string {
	switch m {
	case MethodPlain:
		return "plain"
	case MethodUnwrapOption:
		return "unwrap_option"
	case MethodSomeOption:
		return "some_option"
	case MethodOption:
		return "option"
	case MethodSequence:
		return "sequence"
	case MethodMap:
		return "map"
	case MethodDefault:
		return "default"
	case MethodCustom:
		return "custom_func"
	default:
		return common.UnknownStr
	}
}

// ReadsWholeSource reports whether the plan consumes the complete source
// value rather than one of its fields.
func (m Method) ReadsWholeSource() bool {
	return m == MethodCustom
}

// FieldPlan is the resolved conversion of one field.
type FieldPlan struct {
	// Source and Target are the field identifiers on each side of the
	// conversion; they differ only through rename.
	Source analyze.FieldIdent
	Target analyze.FieldIdent
	Method Method
	// Skip marks a field excluded from this conversion. Skipped plans only
	// survive assembly when Default is also set.
	Skip     bool
	Default  bool
	WithFunc directive.Path
	// Shape of the annotated field; Plain when the method does not look at it.
	Shape shape.Shape
	// Field is the annotated-side field the plan was built from.
	Field *analyze.FieldSchema
	Pos   token.Position
}

// VariantPlan is the resolved conversion of one sum type variant.
type VariantPlan struct {
	Source  string
	Target  string
	Style   analyze.Style
	Pointer bool
	Fields  []FieldPlan
	Variant *analyze.VariantSchema
}

// ConversionPlan is everything the emitter needs for one conversion of one
// annotated type.
type ConversionPlan struct {
	Conversion directive.Conversion
	Schema     *analyze.TypeSchema
	// Fields is set for records, Variants for sum types.
	Fields   []FieldPlan
	Variants []VariantPlan
}

// Kind returns the kind of the annotated type.
func (p *ConversionPlan) Kind() analyze.Kind {
	return p.Schema.Kind
}

// Style returns the record style of the annotated type.
func (p *ConversionPlan) Style() analyze.Style {
	return p.Schema.Style
}

// Fallible reports whether the conversion can fail.
func (p *ConversionPlan) Fallible() bool {
	return p.Conversion.Method.Fallible()
}

// DefaultFill reports whether unproduced target fields take their zero value.
func (p *ConversionPlan) DefaultFill() bool {
	return p.Conversion.DefaultFill
}

// Other returns the non-annotated type of the conversion.
func (p *ConversionPlan) Other() analyze.TypeID {
	return analyze.TypeID{PkgPath: p.Conversion.Target.PkgPath, Name: p.Conversion.Target.Name}
}

// Source returns the type converted from.
func (p *ConversionPlan) Source() analyze.TypeID {
	if p.Conversion.Method.Reverse() {
		return p.Other()
	}

	return p.Schema.ID
}

// Target returns the type converted to.
func (p *ConversionPlan) Target() analyze.TypeID {
	if p.Conversion.Method.Reverse() {
		return p.Schema.ID
	}

	return p.Other()
}

// Result is the outcome of resolving one or more annotated types.
type Result struct {
	Plans       []*ConversionPlan
	Diagnostics diagnostic.Diagnostics
}

// Merge appends the plans and diagnostics of other.
func (r *Result) Merge(other *Result) {
	r.Plans = append(r.Plans, other.Plans...)
	r.Diagnostics.Merge(other.Diagnostics)
}
