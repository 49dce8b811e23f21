package gen

import (
	"go/token"
	"go/types"
	"strconv"

	"convert-generator/internal/analyze"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/match"
)

// sum writes a type switch converting every kept variant. Values of
// variants without a conversion reach the end of the function, which
// panics or returns ErrUnknownVariant.
func (e *funcEmitter) sum() {
	outer := e.w
	cases := &codeWriter{depth: outer.depth}
	e.w = cases

	used := false
	reverse := e.p.Conversion.Method.Reverse()
	root := analyze.NewTypePath(e.p.Schema.ID.Name)

	for i := range e.p.Variants {
		vp := &e.p.Variants[i]

		annotatedName := vp.Source
		if reverse {
			annotatedName = vp.Target
		}

		pos := e.p.Schema.Pos
		if vp.Variant != nil {
			pos = vp.Variant.Pos
			annotatedName = vp.Variant.Name
		}

		e.pos = pos
		path := root.Variant(annotatedName)

		srcT, srcPtr, ok := e.variantType(e.src, vp.Source, path.String(), pos)
		if !ok {
			continue
		}

		dstT, dstPtr, ok := e.variantType(e.dst, vp.Target, path.String(), pos)
		if !ok {
			continue
		}

		caseType := e.typeString(srcT)
		if srcPtr {
			caseType = "*" + caseType
		}

		e.w.line("case %s:", caseType)
		e.w.depth++

		e.inputUsed = false

		out := e.build("v", srcPtr, srcT, dstT, vp.Fields,
			e.p.DefaultFill() && vp.Style == analyze.StyleNamed, path, pos)
		if dstPtr {
			out = "&" + out
		}

		e.ret(out)
		e.w.depth--

		used = used || e.inputUsed
	}

	e.w = outer

	if used {
		e.w.line("switch v := in.(type) {")
	} else {
		e.w.line("switch in.(type) {")
	}

	e.w.line("case nil:")
	e.w.depth++
	e.ret("nil")
	e.w.depth--
	e.w.sb.WriteString(cases.String())
	e.w.line("}")
	e.w.line("")

	e.useFmt()

	if e.fallible {
		e.sentinels = true
		e.w.line("return nil, fmt.Errorf(%s, in, %s)",
			strconv.Quote(e.name+": variant %T: %w"), errUnknownVariant)

		return
	}

	e.w.line("panic(fmt.Sprintf(%s, in))", strconv.Quote(e.name+": unexpected variant %T"))
}

// variantType finds the variant type name in the package of the sum type
// iface and tells whether only its pointer implements the interface.
func (e *funcEmitter) variantType(
	iface types.Type,
	name, fieldPath string,
	pos token.Position,
) (types.Type, bool, bool) {
	named, ok := types.Unalias(iface).(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		e.errorf(pos, diagnostic.CodeUnknownTargetVariant, fieldPath, nil,
			"%s is not a named interface", e.typeString(iface))

		return nil, false, false
	}

	it, ok := named.Underlying().(*types.Interface)
	if !ok {
		return nil, false, false
	}

	scope := named.Obj().Pkg().Scope()

	if tn, ok := scope.Lookup(name).(*types.TypeName); ok {
		switch t := tn.Type(); {
		case types.Implements(t, it):
			return t, false, true
		case types.Implements(types.NewPointer(t), it):
			return t, true, true
		}
	}

	e.errorf(pos, diagnostic.CodeUnknownTargetVariant, fieldPath,
		match.Suggest(name, implementers(scope, it), 1),
		"%s has no variant %s", e.typeString(iface), name)

	return nil, false, false
}

// implementers lists the exported named types of scope implementing it.
func implementers(scope *types.Scope, it *types.Interface) []string {
	var out []string

	for _, n := range scope.Names() {
		tn, ok := scope.Lookup(n).(*types.TypeName)
		if !ok || !tn.Exported() {
			continue
		}

		if _, isIface := tn.Type().Underlying().(*types.Interface); isIface {
			continue
		}

		if types.Implements(tn.Type(), it) || types.Implements(types.NewPointer(tn.Type()), it) {
			out = append(out, n)
		}
	}

	return out
}
