package directive

import "convert-generator/internal/common"

// Method is one of the four conversion directions.
type Method int

const (
	// Into converts the annotated type to the other type and cannot fail.
	Into Method = iota
	// TryInto converts the annotated type to the other type and may fail.
	TryInto
	// From converts the other type to the annotated type and cannot fail.
	From
	// TryFrom converts the other type to the annotated type and may fail.
	TryFrom
)

// Methods lists every method in declaration order.
var Methods = []Method{Into, TryInto, From, TryFrom}

// String returns the directive keyword of the method.
func (m Method) String() string {
	switch m {
	case Into:
		return "into"
	case TryInto:
		return "try_into"
	case From:
		return "from"
	case TryFrom:
		return "try_from"
	default:
		return common.UnknownStr
	}
}

// Reverse reports whether the other type is the source of the conversion.
func (m Method) Reverse() bool {
	return m == From || m == TryFrom
}

// Fallible reports whether the generated conversion returns an error.
func (m Method) Fallible() bool {
	return m == TryInto || m == TryFrom
}

// ParseMethod parses a directive keyword.
func ParseMethod(s string) (Method, bool) {
	for _, m := range Methods {
		if m.String() == s {
			return m, true
		}
	}

	return 0, false
}

func methodNames() []string {
	names := make([]string, len(Methods))
	for i, m := range Methods {
		names[i] = m.String()
	}

	return names
}
