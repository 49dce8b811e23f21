package match

import (
	"go/types"

	"convert-generator/internal/common"
)

// TypeCompatibility represents how a source value can reach a target type.
type TypeCompatibility int

const (
	// TypeIncompatible means no direct Go expression converts the value.
	TypeIncompatible TypeCompatibility = iota
	// TypeNeedsConverter means both sides are composite types that need a
	// generated or user-supplied converter.
	TypeNeedsConverter
	// TypeConvertible means a Go conversion T(x) is enough.
	TypeConvertible
	// TypeAssignable means the value can be assigned as is.
	TypeAssignable
	// TypeIdentical means the types are exactly the same.
	TypeIdentical
)

// String returns a human-readable name for the compatibility level.
func (c TypeCompatibility) String() string {
	switch c {
	case TypeIdentical:
		return "identical"
	case TypeAssignable:
		return "assignable"
	case TypeConvertible:
		return "convertible"
	case TypeNeedsConverter:
		return "needs_converter"
	case TypeIncompatible:
		return "incompatible"
	default:
		return common.UnknownStr
	}
}

// Direct reports whether no conversion expression is needed at all.
func (c TypeCompatibility) Direct() bool {
	return c >= TypeAssignable
}

// Compatibility determines how a source type relates to a target type.
func Compatibility(source, target types.Type) TypeCompatibility {
	switch {
	case source == nil || target == nil:
		return TypeIncompatible
	case types.Identical(source, target):
		return TypeIdentical
	case types.AssignableTo(source, target):
		return TypeAssignable
	case types.ConvertibleTo(source, target):
		return TypeConvertible
	case composite(source) && composite(target):
		return TypeNeedsConverter
	default:
		return TypeIncompatible
	}
}

// composite reports whether t is a named struct or interface, i.e. something
// a generated converter can exist for.
func composite(t types.Type) bool {
	if _, ok := types.Unalias(t).(*types.Named); !ok {
		return false
	}

	switch t.Underlying().(type) {
	case *types.Struct, *types.Interface:
		return true
	default:
		return false
	}
}
