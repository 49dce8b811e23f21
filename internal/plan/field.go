package plan

import (
	"errors"

	"convert-generator/internal/analyze"
	"convert-generator/internal/directive"
	"convert-generator/internal/shape"
)

var (
	// ErrUnwrapNonOptional is returned when unwrap is requested on a forward
	// conversion of a field that is not optional.
	ErrUnwrapNonOptional = errors.New("cannot unwrap a non-optional field")
	// ErrRenamePositional is returned when a positional field is renamed.
	ErrRenamePositional = errors.New("positional fields cannot be renamed")
)

// BuildField derives the plan for one field from its effective directive.
//
// Precedence is skip, then default, then a custom function, then unwrap,
// then the field's shape. Skipped, defaulted and custom fields never have
// their shape classified.
func BuildField(
	field *analyze.FieldSchema,
	eff directive.Effective,
	method directive.Method,
	classifier shape.Classifier,
) (FieldPlan, error) {
	fp := FieldPlan{
		Source: field.Ident,
		Target: field.Ident,
		Field:  field,
		Pos:    field.Pos,
	}

	if eff.Skip {
		fp.Skip = true
		if eff.Default {
			fp.Default = true
			fp.Method = MethodDefault
		}

		return fp, nil
	}

	if eff.Rename != "" {
		if field.Ident.IsPositional() {
			return FieldPlan{}, ErrRenamePositional
		}

		other := analyze.Named(eff.Rename)
		if method.Reverse() {
			fp.Source = other
		} else {
			fp.Target = other
		}
	}

	switch {
	case eff.Default:
		fp.Default = true
		fp.Method = MethodDefault

		return fp, nil
	case !eff.WithFunc.IsZero():
		fp.WithFunc = eff.WithFunc
		fp.Method = MethodCustom

		return fp, nil
	}

	fp.Shape = classifier.Classify(field.Type)

	if eff.Unwrap {
		m, err := unwrapMethod(fp.Shape == shape.Optional, method.Reverse())
		if err != nil {
			return FieldPlan{}, err
		}

		fp.Method = m

		return fp, nil
	}

	switch fp.Shape {
	case shape.Optional:
		fp.Method = MethodOption
	case shape.Sequence:
		fp.Method = MethodSequence
	case shape.AssociativeMap:
		fp.Method = MethodMap
	default:
		fp.Method = MethodPlain
	}

	return fp, nil
}

// unwrapMethod decides which side of the conversion is optional. The
// annotated field is the target of reverse conversions, so an optional
// annotated field receives a wrapped value there, and a plain annotated field
// implies the other side is the optional one.
func unwrapMethod(optional, reverse bool) (Method, error) {
	switch {
	case optional && !reverse:
		return MethodUnwrapOption, nil
	case optional && reverse:
		return MethodSomeOption, nil
	case reverse:
		return MethodUnwrapOption, nil
	default:
		return 0, ErrUnwrapNonOptional
	}
}
