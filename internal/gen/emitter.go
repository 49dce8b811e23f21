package gen

import (
	"fmt"
	"go/token"
	"go/types"
	"strconv"
	"strings"

	"convert-generator/internal/analyze"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/match"
	"convert-generator/internal/plan"
)

// Sentinel errors declared by the support file of packages with fallible
// conversions that need them.
const (
	errMissingValue   = "ErrMissingValue"
	errUnknownVariant = "ErrUnknownVariant"
)

// codeWriter accumulates tab-indented statements.
type codeWriter struct {
	sb    strings.Builder
	depth int
}

func (w *codeWriter) line(format string, args ...any) {
	for range w.depth {
		w.sb.WriteByte('\t')
	}

	fmt.Fprintf(&w.sb, format, args...)
	w.sb.WriteByte('\n')
}

func (w *codeWriter) open(format string, args ...any) {
	w.line(format, args...)
	w.depth++
}

func (w *codeWriter) close() {
	w.depth--
	w.line("}")
}

func (w *codeWriter) String() string {
	return w.sb.String()
}

// funcEmitter renders the body of one conversion function.
type funcEmitter struct {
	g    *Generator
	p    *plan.ConversionPlan
	refs *importSet
	w    *codeWriter

	name     string
	local    string
	fallible bool
	src, dst types.Type
	zero     string

	tmp       int
	pos       token.Position
	failed    bool
	inputUsed bool
	sentinels bool
}

func (g *Generator) newFuncEmitter(p *plan.ConversionPlan, refs *importSet) *funcEmitter {
	return &funcEmitter{
		g:        g,
		p:        p,
		refs:     refs,
		name:     FunctionName(p, g.config.FalliblePrefix),
		local:    p.Schema.ID.PkgPath,
		fallible: p.Fallible(),
		pos:      p.Conversion.Pos,
	}
}

// funcData is one rendered function of a generated file.
type funcData struct {
	Name      string
	Source    string
	Result    string
	SourceDoc string
	TargetDoc string
	Body      string
}

// emit renders the function. It returns false when the conversion cannot be
// emitted; the reasons are recorded as deferred diagnostics.
func (e *funcEmitter) emit() (funcData, bool) {
	if !e.resolveTypes() {
		return funcData{}, false
	}

	e.w = &codeWriter{depth: 1}

	switch e.p.Kind() {
	case analyze.KindRecord:
		e.zero = e.zeroValue(e.dst)
		out := e.build("in", false, e.src, e.dst, e.p.Fields, e.p.DefaultFill(),
			analyze.NewTypePath(e.p.Schema.ID.Name), e.p.Schema.Pos)
		e.ret(out)
	case analyze.KindSum:
		e.zero = "nil"
		e.sum()
	}

	if e.failed {
		return funcData{}, false
	}

	fd := funcData{
		Name:      e.name,
		Source:    e.typeString(e.src),
		Result:    e.typeString(e.dst),
		SourceDoc: e.typeString(e.src),
		TargetDoc: e.typeString(e.dst),
		Body:      e.w.String(),
	}

	if e.fallible {
		fd.Result = "(" + fd.Result + ", error)"
	}

	return fd, true
}

// resolveTypes finds the checked types of both sides of the conversion.
func (e *funcEmitter) resolveTypes() bool {
	schema := e.p.Schema

	annotated := schema.GoType
	if annotated == nil {
		if tn := e.g.graph.Lookup(schema.ID); tn != nil {
			annotated = tn.Type()
		}
	}

	if annotated == nil {
		e.errorf(schema.Pos, diagnostic.CodeUnknownTargetType, "", nil,
			"type information for %s is not available", schema.ID)

		return false
	}

	other := e.lookupOther()
	if other == nil {
		return false
	}

	_, annotatedSum := annotated.Underlying().(*types.Interface)

	_, otherSum := other.Underlying().(*types.Interface)
	if annotatedSum != otherSum {
		want := "a struct or defined non-struct type"
		if annotatedSum {
			want = "an interface"
		}

		e.errorf(e.pos, diagnostic.CodeUnknownTargetType, "", nil,
			"%s must be %s to convert with %s", e.p.Other(), want, schema.ID.Short())

		return false
	}

	e.src, e.dst = annotated, other
	if e.p.Conversion.Method.Reverse() {
		e.src, e.dst = other, annotated
	}

	return true
}

func (e *funcEmitter) lookupOther() types.Type {
	id := e.p.Other()

	pkg := e.g.graph.LookupPackage(id.PkgPath)
	if pkg == nil {
		e.errorf(e.pos, diagnostic.CodeUnknownTargetType, "", nil,
			"package %s is neither loaded nor imported by a loaded package", id.PkgPath)

		return nil
	}

	if tn, ok := pkg.Scope().Lookup(id.Name).(*types.TypeName); ok {
		return tn.Type()
	}

	var names []string

	for _, n := range pkg.Scope().Names() {
		if tn, ok := pkg.Scope().Lookup(n).(*types.TypeName); ok && tn.Exported() {
			names = append(names, n)
		}
	}

	e.errorf(e.pos, diagnostic.CodeUnknownTargetType, "", match.Suggest(id.Name, names, 2),
		"package %s has no type %s", id.PkgPath, id.Name)

	return nil
}

// build writes the construction of outT from in and returns the variable
// holding the result. inPtr is set when in holds a pointer to inT.
func (e *funcEmitter) build(
	in string,
	inPtr bool,
	inT, outT types.Type,
	fields []plan.FieldPlan,
	defaultFill bool,
	path analyze.TypePath,
	pos token.Position,
) string {
	const out = "out"

	e.w.line("var %s %s", out, e.typeString(outT))

	produced := make(map[string]bool)
	consumed := make(map[string]bool)

	for i := range fields {
		fp := &fields[i]
		e.pos = fp.Pos

		label := fp.Target.String()
		if fp.Field != nil {
			label = path.Field(fp.Field.Ident).String()
		}

		assign, dstFT, ok := e.target(out, outT, fp.Target, label)
		if !ok {
			continue
		}

		produced[fp.Target.String()] = true

		if e.g.config.GenerateComments {
			e.w.line("// %s -> %s: %s", fp.Source, fp.Target, fp.Method)
		}

		switch fp.Method {
		case plan.MethodDefault:
			continue
		case plan.MethodCustom:
			e.custom(fp, in, assign, label)

			continue
		}

		x, srcFT, ok := e.source(in, inPtr, inT, fp.Source, label)
		if !ok {
			continue
		}

		consumed[fp.Source.String()] = true

		e.field(fp, x, srcFT, assign, dstFT, label)
	}

	e.checkUnmapped(inT, outT, produced, consumed, defaultFill, path, pos)

	return out
}

// target returns how to store a value into the field of out, and the
// type that value must have.
func (e *funcEmitter) target(
	out string,
	outT types.Type,
	ident analyze.FieldIdent,
	label string,
) (func(string), types.Type, bool) {
	if styleOf(outT) == analyze.StylePositional {
		if !ident.IsPositional() {
			e.errorf(e.pos, diagnostic.CodeUnknownTargetField, label, nil,
				"%s is a defined non-struct type and has no field %s", e.typeString(outT), ident)

			return nil, nil, false
		}

		ts := e.typeString(outT)

		return func(x string) { e.w.line("%s = %s", out, conversion(ts, x)) }, outT.Underlying(), true
	}

	if ident.IsPositional() {
		e.errorf(e.pos, diagnostic.CodeUnknownTargetField, label, nil,
			"%s is a struct; only defined non-struct types have a positional field", e.typeString(outT))

		return nil, nil, false
	}

	f := e.structField(outT, ident.Name)
	if f == nil {
		e.errorf(e.pos, diagnostic.CodeUnknownTargetField, label,
			match.Suggest(ident.Name, e.fieldNames(outT), 1),
			"%s has no field %s", e.typeString(outT), ident.Name)

		return nil, nil, false
	}

	return func(x string) { e.w.line("%s.%s = %s", out, ident.Name, x) }, f.Type(), true
}

// source returns the expression reading a field of in, and its type.
func (e *funcEmitter) source(
	in string,
	inPtr bool,
	inT types.Type,
	ident analyze.FieldIdent,
	label string,
) (string, types.Type, bool) {
	e.inputUsed = true

	if styleOf(inT) == analyze.StylePositional {
		if !ident.IsPositional() {
			e.errorf(e.pos, diagnostic.CodeUnknownTargetField, label, nil,
				"%s is a defined non-struct type and has no field %s", e.typeString(inT), ident)

			return "", nil, false
		}

		x := in
		if inPtr {
			x = "*" + in
		}

		return conversion(e.typeString(inT.Underlying()), x), inT.Underlying(), true
	}

	if ident.IsPositional() {
		e.errorf(e.pos, diagnostic.CodeUnknownTargetField, label, nil,
			"%s is a struct; only defined non-struct types have a positional field", e.typeString(inT))

		return "", nil, false
	}

	f := e.structField(inT, ident.Name)
	if f == nil {
		e.errorf(e.pos, diagnostic.CodeUnknownTargetField, label,
			match.Suggest(ident.Name, e.fieldNames(inT), 1),
			"%s has no field %s", e.typeString(inT), ident.Name)

		return "", nil, false
	}

	return in + "." + ident.Name, f.Type(), true
}

// field writes the conversion of one field value according to its method.
func (e *funcEmitter) field(
	fp *plan.FieldPlan,
	x string,
	srcFT types.Type,
	assign func(string),
	dstFT types.Type,
	label string,
) {
	switch fp.Method {
	case plan.MethodUnwrapOption:
		elem, ok := pointerElem(srcFT)
		if !ok {
			e.unconvertible(label, srcFT, dstFT)
			assign(conversion(e.typeString(dstFT), x))

			return
		}

		e.w.open("if %s == nil {", x)
		e.missing(label)
		e.w.close()
		assign(e.value(label, "*"+x, elem, dstFT))
	case plan.MethodSomeOption:
		elem, ok := pointerElem(dstFT)
		if !ok {
			e.unconvertible(label, srcFT, dstFT)
			assign(conversion(e.typeString(dstFT), x))

			return
		}

		v := e.temp("val")
		e.w.line("%s := %s", v, e.value(label, x, srcFT, elem))
		assign("&" + v)
	default:
		assign(e.value(label, x, srcFT, dstFT))
	}
}

// custom writes a call of the user function named by with_func. The
// function receives the whole source value.
func (e *funcEmitter) custom(fp *plan.FieldPlan, in string, assign func(string), label string) {
	e.inputUsed = true

	fn := e.funcRef(fp.WithFunc.PkgPath, fp.WithFunc.Name)

	if !e.fallible {
		assign(fmt.Sprintf("%s(%s)", fn, in))

		return
	}

	v := e.temp("val")
	e.w.line("%s, err := %s(%s)", v, fn, in)
	e.failOnErr(label)
	assign(v)
}

// checkUnmapped reports target fields no plan produces.
func (e *funcEmitter) checkUnmapped(
	inT, outT types.Type,
	produced, consumed map[string]bool,
	defaultFill bool,
	path analyze.TypePath,
	pos token.Position,
) {
	switch styleOf(outT) {
	case analyze.StyleUnit:
		return
	case analyze.StylePositional:
		if !produced["0"] {
			e.errorf(pos, diagnostic.CodeUnmappedTargetField, path.Field(analyze.Positional(0)).String(), nil,
				"the value of %s is never set", e.typeString(outT))
		}

		return
	}

	if defaultFill {
		return
	}

	var unused []string

	if styleOf(inT) == analyze.StyleNamed {
		for _, n := range e.fieldNames(inT) {
			if !consumed[n] {
				unused = append(unused, n)
			}
		}
	}

	for _, n := range e.fieldNames(outT) {
		if produced[n] {
			continue
		}

		e.errorf(pos, diagnostic.CodeUnmappedTargetField, path.Field(analyze.Named(n)).String(),
			match.Suggest(n, unused, 1),
			"field %s of %s is not set by the conversion; map a source field to it, or add default to the conversion",
			n, e.typeString(outT))
	}
}

// missing writes the failure for an absent optional value.
func (e *funcEmitter) missing(label string) {
	if !e.fallible {
		e.w.line("panic(%s)", strconv.Quote(e.name+": "+label+" is nil"))

		return
	}

	e.sentinels = true
	e.useFmt()
	e.w.line("return %s, fmt.Errorf(%s, %s)", e.zero, strconv.Quote(label+": %w"), errMissingValue)
}

// failOnErr writes the check of err after a fallible call.
func (e *funcEmitter) failOnErr(label string) {
	e.useFmt()
	e.w.open("if err != nil {")
	e.w.line("return %s, fmt.Errorf(%s, err)", e.zero, strconv.Quote(label+": %w"))
	e.w.close()
}

func (e *funcEmitter) ret(x string) {
	if e.fallible {
		e.w.line("return %s, nil", x)

		return
	}

	e.w.line("return %s", x)
}

func (e *funcEmitter) useFmt() {
	e.refs.add("fmt", "fmt")
}

func (e *funcEmitter) temp(prefix string) string {
	e.tmp++

	return prefix + strconv.Itoa(e.tmp)
}

func (e *funcEmitter) typeString(t types.Type) string {
	return types.TypeString(t, e.refs.qualifier)
}

// funcRef returns the expression naming a package-level function.
func (e *funcEmitter) funcRef(pkgPath, name string) string {
	if pkgPath == "" || pkgPath == e.local {
		return name
	}

	var pkgName string
	if pkg := e.g.graph.LookupPackage(pkgPath); pkg != nil {
		pkgName = pkg.Name()
	}

	return e.refs.add(pkgPath, pkgName) + "." + name
}

// structField finds a field of a struct type reachable from the generated
// code.
func (e *funcEmitter) structField(t types.Type, name string) *types.Var {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	for f := range st.Fields() {
		if f.Name() == name && e.accessible(f) {
			return f
		}
	}

	return nil
}

func (e *funcEmitter) fieldNames(t types.Type) []string {
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		return nil
	}

	var names []string

	for f := range st.Fields() {
		if e.accessible(f) {
			names = append(names, f.Name())
		}
	}

	return names
}

func (e *funcEmitter) accessible(f *types.Var) bool {
	return f.Exported() || (f.Pkg() != nil && f.Pkg().Path() == e.local)
}

func (e *funcEmitter) zeroValue(t types.Type) string {
	switch u := t.Underlying().(type) {
	case *types.Basic:
		switch {
		case u.Info()&types.IsBoolean != 0:
			return "false"
		case u.Info()&types.IsString != 0:
			return `""`
		default:
			return "0"
		}
	case *types.Struct, *types.Array:
		return e.typeString(t) + "{}"
	default:
		return "nil"
	}
}

func (e *funcEmitter) errorf(
	pos token.Position,
	code, fieldPath string,
	suggestions []string,
	format string,
	args ...any,
) {
	e.failed = true
	e.g.diags.AddErrorAt(pos, diagnostic.CategoryDeferred, code, fmt.Sprintf(format, args...),
		e.p.Schema.ID.Short(), fieldPath, suggestions...)
}

func (e *funcEmitter) incompatible(label string, st, dt types.Type) {
	e.g.diags.Add(diagnostic.Diagnostic{
		Severity: diagnostic.DiagnosticWarning,
		Category: diagnostic.CategoryDeferred,
		Code:     diagnostic.CodeIncompatibleTypes,
		Message: fmt.Sprintf("%s: no conversion from %s to %s is known; the emitted conversion will not compile",
			e.name, e.typeString(st), e.typeString(dt)),
		TypeName:  e.p.Schema.ID.Short(),
		FieldPath: label,
		Pos:       e.pos,
	})
}

// unconvertible reports a value the emitter has no conversion for. Generic
// wrapper types are an error since their construction is unknown; anything
// else is left for the compiler to reject.
func (e *funcEmitter) unconvertible(label string, st, dt types.Type) {
	w := genericType(st)
	if w == nil {
		w = genericType(dt)
	}

	if w == nil {
		e.incompatible(label, st, dt)

		return
	}

	e.errorf(e.pos, diagnostic.CodeUnsupportedWrapper, label, nil,
		"%s: cannot convert %s to %s: generic type %s has no known constructor or accessor; use with_func",
		e.name, e.typeString(st), e.typeString(dt), e.typeString(w))
}

// genericType returns t when it is an instantiated generic named type.
func genericType(t types.Type) *types.Named {
	named, ok := types.Unalias(t).(*types.Named)
	if !ok || named.TypeArgs().Len() == 0 {
		return nil
	}

	return named
}

// styleOf tells how values of t are built.
func styleOf(t types.Type) analyze.Style {
	st, ok := t.Underlying().(*types.Struct)
	switch {
	case !ok:
		return analyze.StylePositional
	case st.NumFields() == 0:
		return analyze.StyleUnit
	default:
		return analyze.StyleNamed
	}
}

func pointerElem(t types.Type) (types.Type, bool) {
	p, ok := t.Underlying().(*types.Pointer)
	if !ok {
		return nil, false
	}

	return p.Elem(), true
}

// conversion renders T(x), parenthesising type expressions that need it.
func conversion(typeStr, x string) string {
	if strings.HasPrefix(typeStr, "*") || strings.HasPrefix(typeStr, "func") || strings.HasPrefix(typeStr, "<-") {
		return "(" + typeStr + ")(" + x + ")"
	}

	return typeStr + "(" + x + ")"
}

// operand parenthesises x when it starts with a unary operator, so that it
// can be indexed or ranged over.
func operand(x string) string {
	if strings.HasPrefix(x, "*") || strings.HasPrefix(x, "&") {
		return "(" + x + ")"
	}

	return x
}
