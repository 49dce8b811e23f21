package directive

import (
	"errors"
	"go/token"
	"strconv"

	"convert-generator/internal/diagnostic"
	"convert-generator/internal/match"
)

var conversionKeys = []string{"default", "path"}

// Conversion is one type-level request to generate a conversion, e.g.
// "//convert:try_from path=dto.Order default".
type Conversion struct {
	Method Method
	// Target is the other type of the conversion.
	Target Path
	// DefaultFill leaves target fields not produced by any field plan at
	// their zero value instead of reporting them.
	DefaultFill bool
	Pos         token.Position
}

// Key identifies the conversion for duplicate detection.
func (c Conversion) Key() string {
	return c.Method.String() + " " + c.Target.String()
}

// ParseConversion parses the arguments of a method directive. It returns
// false when the directive is unusable; the reason is in diags.
func ParseConversion(method Method, raw Raw, src Source, diags *diagnostic.Diagnostics) (Conversion, bool) {
	conv := Conversion{Method: method, Pos: raw.Pos}

	errorAt := func(off int, code, msg string, suggestions ...string) {
		diags.AddErrorAt(raw.at(off), diagnostic.CategoryResolution, code, msg,
			src.TypeName, "", suggestions...)
	}

	nodes, err := parse(raw.Text)
	if err != nil {
		var off int
		var se *SyntaxError
		if errors.As(err, &se) {
			off = se.Offset
		}

		errorAt(off, diagnostic.CodeMalformedDirective,
			"malformed "+method.String()+" directive: "+err.Error())

		return Conversion{}, false
	}

	var hasPath, hasDefault bool

	for _, n := range nodes {
		switch {
		case n.scope:
			errorAt(n.off, diagnostic.CodeMalformedDirective,
				"scopes are not allowed in a "+method.String()+" directive")

			return Conversion{}, false
		case n.key == "path":
			if hasPath {
				errorAt(n.off, diagnostic.CodeDuplicateKey, `key "path" given twice`)

				return Conversion{}, false
			}

			if !n.hasValue {
				errorAt(n.off, diagnostic.CodeMalformedDirective, "path needs a value")

				return Conversion{}, false
			}

			target, err := src.Qualifier.Qualify(n.value)
			if err != nil {
				errorAt(n.off, diagnostic.CodeUnresolvedPath, err.Error())

				return Conversion{}, false
			}

			conv.Target = target
			hasPath = true
		case n.key == "default":
			if hasDefault {
				errorAt(n.off, diagnostic.CodeDuplicateKey, `key "default" given twice`)

				return Conversion{}, false
			}

			v, ok := flagValue(n)
			if !ok {
				errorAt(n.off, diagnostic.CodeMalformedDirective, `flag "default" takes no value or true/false`)

				return Conversion{}, false
			}

			conv.DefaultFill = v
			hasDefault = true
		default:
			errorAt(n.off, diagnostic.CodeUnknownKey, "unknown key "+strconv.Quote(n.key),
				match.Suggest(n.key, conversionKeys, 1)...)

			return Conversion{}, false
		}
	}

	if !hasPath {
		errorAt(0, diagnostic.CodeMalformedDirective, method.String()+" directive needs path=<type>")

		return Conversion{}, false
	}

	return conv, true
}
