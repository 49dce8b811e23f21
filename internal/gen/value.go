package gen

import (
	"go/types"

	"convert-generator/internal/match"
)

// maxChainDepth bounds the search for nested generated conversions through
// recursive container types.
const maxChainDepth = 8

// value returns an expression of type dt holding x converted from st,
// writing any statements it needs first.
func (e *funcEmitter) value(label, x string, st, dt types.Type) string {
	if types.Identical(st, dt) {
		return x
	}

	if c, ok := e.g.registry.lookup(st, dt, e.fallible); ok {
		return e.call(c, label, x)
	}

	if !e.chained(st, dt, 0) {
		switch match.Compatibility(st, dt) {
		case match.TypeIdentical, match.TypeAssignable:
			return x
		case match.TypeConvertible:
			if !stringFromInteger(st, dt) {
				return conversion(e.typeString(dt), x)
			}
		}
	}

	switch s := st.Underlying().(type) {
	case *types.Pointer:
		if d, ok := dt.Underlying().(*types.Pointer); ok {
			return e.pointer(label, x, s.Elem(), d.Elem(), dt)
		}
	case *types.Slice:
		if d, ok := dt.Underlying().(*types.Slice); ok {
			return e.slice(label, x, s.Elem(), d.Elem(), dt)
		}
	case *types.Array:
		if d, ok := dt.Underlying().(*types.Array); ok && d.Len() == s.Len() {
			return e.array(label, x, s.Elem(), d.Elem(), dt)
		}
	case *types.Map:
		if d, ok := dt.Underlying().(*types.Map); ok {
			return e.mapping(label, x, s, d, dt)
		}
	}

	e.unconvertible(label, st, dt)

	return conversion(e.typeString(dt), x)
}

// chained reports whether converting st to dt goes through a conversion
// generated in this run, possibly inside containers.
func (e *funcEmitter) chained(st, dt types.Type, depth int) bool {
	if depth > maxChainDepth {
		return false
	}

	if _, ok := e.g.registry.lookup(st, dt, e.fallible); ok {
		return true
	}

	switch s := st.Underlying().(type) {
	case *types.Pointer:
		if d, ok := dt.Underlying().(*types.Pointer); ok {
			return e.chained(s.Elem(), d.Elem(), depth+1)
		}
	case *types.Slice:
		if d, ok := dt.Underlying().(*types.Slice); ok {
			return e.chained(s.Elem(), d.Elem(), depth+1)
		}
	case *types.Array:
		if d, ok := dt.Underlying().(*types.Array); ok {
			return e.chained(s.Elem(), d.Elem(), depth+1)
		}
	case *types.Map:
		if d, ok := dt.Underlying().(*types.Map); ok {
			return e.chained(s.Key(), d.Key(), depth+1) || e.chained(s.Elem(), d.Elem(), depth+1)
		}
	}

	return false
}

// call converts x with another generated conversion.
func (e *funcEmitter) call(c converter, label, x string) string {
	fn := c.Name
	if c.PkgPath != e.local {
		fn = e.refs.add(c.PkgPath, c.PkgName) + "." + c.Name
	}

	if !c.Fallible {
		return fn + "(" + x + ")"
	}

	v := e.temp("val")
	e.w.line("%s, err := %s(%s)", v, fn, x)
	e.failOnErr(label)

	return v
}

// pointer copies a pointer, keeping nil as nil.
func (e *funcEmitter) pointer(label, x string, se, de, dt types.Type) string {
	out := e.temp("ptr")
	e.w.line("var %s %s", out, e.typeString(dt))
	e.w.open("if %s != nil {", x)

	v := e.temp("val")
	e.w.line("%s := %s", v, e.value(label, "*"+operand(x), se, de))
	e.w.line("%s = &%s", out, v)
	e.w.close()

	return out
}

// slice copies a slice element by element, keeping nil as nil.
func (e *funcEmitter) slice(label, x string, se, de, dt types.Type) string {
	out := e.temp("seq")
	x = operand(x)

	e.w.line("var %s %s", out, e.typeString(dt))
	e.w.open("if %s != nil {", x)
	e.w.line("%s = make(%s, len(%s))", out, e.typeString(dt), x)

	i := e.temp("i")
	e.w.open("for %s := range %s {", i, x)
	e.w.line("%s[%s] = %s", out, i, e.value(label+"[]", x+"["+i+"]", se, de))
	e.w.close()
	e.w.close()

	return out
}

// array copies a fixed-size array element by element.
func (e *funcEmitter) array(label, x string, se, de, dt types.Type) string {
	out := e.temp("arr")
	x = operand(x)

	e.w.line("var %s %s", out, e.typeString(dt))

	i := e.temp("i")
	e.w.open("for %s := range %s {", i, x)
	e.w.line("%s[%s] = %s", out, i, e.value(label+"[]", x+"["+i+"]", se, de))
	e.w.close()

	return out
}

// mapping copies a map converting keys and values, keeping nil as nil.
func (e *funcEmitter) mapping(label, x string, s, d *types.Map, dt types.Type) string {
	out := e.temp("dict")
	x = operand(x)

	e.w.line("var %s %s", out, e.typeString(dt))
	e.w.open("if %s != nil {", x)
	e.w.line("%s = make(%s, len(%s))", out, e.typeString(dt), x)

	k, el := e.temp("k"), e.temp("el")
	e.w.open("for %s, %s := range %s {", k, el, x)

	key := e.value(label+"[key]", k, s.Key(), d.Key())
	val := e.value(label+"[]", el, s.Elem(), d.Elem())
	e.w.line("%s[%s] = %s", out, key, val)
	e.w.close()
	e.w.close()

	return out
}

// stringFromInteger reports whether a Go conversion from st to dt would
// turn an integer into a one-rune string.
func stringFromInteger(st, dt types.Type) bool {
	s, ok := st.Underlying().(*types.Basic)
	if !ok || s.Info()&types.IsInteger == 0 {
		return false
	}

	d, ok := dt.Underlying().(*types.Basic)

	return ok && d.Info()&types.IsString != 0
}
