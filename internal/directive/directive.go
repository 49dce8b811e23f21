package directive

import (
	"errors"
	"go/token"
	"sort"
	"strconv"
	"strings"

	"convert-generator/internal/diagnostic"
	"convert-generator/internal/match"
)

// Directive comment kinds recognised after the "//convert:" prefix, besides
// the four method names.
const (
	KindField   = "field"
	KindVariant = "variant"
)

// Raw is directive text as found in source, with the position of its first
// character.
type Raw struct {
	Text string
	Pos  token.Position
}

// at returns the position off bytes into the text, on the same line.
// Columns of token.Position count bytes too.
func (r Raw) at(off int) token.Position {
	pos := r.Pos
	if pos.IsValid() {
		pos.Column += off
		pos.Offset += off
	}

	return pos
}

// Source locates the directives being parsed, for diagnostics and for
// qualifying type and function references.
type Source struct {
	TypeName  string
	FieldPath string
	Qualifier Qualifier
}

type keyKind int

const (
	flagKey keyKind = iota
	identKey
	refKey
)

var (
	fieldKeys = map[string]keyKind{
		"rename":    identKey,
		"skip":      flagKey,
		"default":   flagKey,
		"unwrap":    flagKey,
		"with_func": refKey,
	}
	variantKeys = map[string]keyKind{
		"rename": identKey,
		"skip":   flagKey,
	}
)

// Layer holds the attributes set at one scope. Nil pointers are unset, so a
// narrower scope can explicitly turn off a flag set at a broader one. Skip
// is a plain bool because it can only be added, never withdrawn.
type Layer struct {
	Rename   *string
	Skip     bool
	Default  *bool
	Unwrap   *bool
	WithFunc *Path
}

// ScopedLayer is a Layer that applies to one method, and optionally to one
// target path of that method.
type ScopedLayer struct {
	Method Method
	Path   Path
	Layer  Layer
}

// Directives are the parsed field or variant directives of one declaration.
type Directives struct {
	Global Layer
	Scoped []ScopedLayer
	// Faults records the scopes holding a directive that could not be used.
	Faults []Fault
}

// Fault marks a scope in which a directive was dropped. An unscoped fault
// covers every conversion; a method fault without a path covers every target
// of that method.
type Fault struct {
	Scoped bool
	Method Method
	Path   Path
}

// Faulty reports whether a dropped directive could have applied to the given
// method and target.
func (d Directives) Faulty(method Method, target Path) bool {
	for _, f := range d.Faults {
		if !f.Scoped {
			return true
		}

		if f.Method == method && (f.Path.IsZero() || f.Path == target) {
			return true
		}
	}

	return false
}

// Effective is the single set of attributes in force for one declaration in
// one conversion.
type Effective struct {
	Rename   string
	Skip     bool
	Default  bool
	Unwrap   bool
	WithFunc Path
}

// Merge collapses layers ordered narrowest first into one Effective value.
// Every attribute takes the value of the first layer that sets it, except
// Skip, which is true if any layer sets it.
func Merge(layers ...Layer) Effective {
	var eff Effective

	var renamed, defaulted, unwrapped, withFunc bool

	for _, l := range layers {
		eff.Skip = eff.Skip || l.Skip

		if !renamed && l.Rename != nil {
			eff.Rename, renamed = *l.Rename, true
		}

		if !defaulted && l.Default != nil {
			eff.Default, defaulted = *l.Default, true
		}

		if !unwrapped && l.Unwrap != nil {
			eff.Unwrap, unwrapped = *l.Unwrap, true
		}

		if !withFunc && l.WithFunc != nil {
			eff.WithFunc, withFunc = *l.WithFunc, true
		}
	}

	return eff
}

// Effective resolves the attributes in force for the given method and target.
// Priority is path-scoped, then method-scoped, then global. A path-scoped
// layer naming a different target is ignored entirely.
func (d Directives) Effective(method Method, target Path) Effective {
	var pathLayer, methodLayer Layer

	for _, s := range d.Scoped {
		if s.Method != method {
			continue
		}

		switch {
		case s.Path.IsZero():
			methodLayer = s.Layer
		case s.Path == target:
			pathLayer = s.Layer
		}
	}

	return Merge(pathLayer, methodLayer, d.Global)
}

// ParseField parses the directives attached to a field. Problems are
// reported to diags and the offending item is dropped; the rest still apply.
func ParseField(raws []Raw, src Source, diags *diagnostic.Diagnostics) Directives {
	return parseDirectives(raws, src, fieldKeys, diags)
}

// ParseVariant parses the directives attached to a sum type variant.
func ParseVariant(raws []Raw, src Source, diags *diagnostic.Diagnostics) Directives {
	return parseDirectives(raws, src, variantKeys, diags)
}

type scopeKey struct {
	method Method
	global bool
	path   Path
}

type directiveParser struct {
	src   Source
	keys  map[string]keyKind
	diags *diagnostic.Diagnostics
	seen  map[scopeKey]map[string]bool
	out   Directives
}

func parseDirectives(raws []Raw, src Source, keys map[string]keyKind, diags *diagnostic.Diagnostics) Directives {
	p := &directiveParser{
		src:   src,
		keys:  keys,
		diags: diags,
		seen:  make(map[scopeKey]map[string]bool),
	}

	for _, raw := range raws {
		nodes, err := parse(raw.Text)
		if err != nil {
			p.syntaxError(raw, err)
			p.fault(scopeKey{global: true})

			continue
		}

		for _, n := range nodes {
			if n.scope {
				p.scope(raw, n)
			} else {
				p.apply(raw, scopeKey{global: true}, &p.out.Global, n)
			}
		}
	}

	return p.out
}

func (p *directiveParser) scope(raw Raw, n node) {
	method, ok := ParseMethod(n.key)
	if !ok {
		p.errorAt(raw.at(n.off), diagnostic.CodeUnknownScope,
			"unknown scope "+strconv.Quote(n.key), match.Suggest(n.key, methodNames(), 1)...)
		p.fault(scopeKey{global: true})

		return
	}

	key := scopeKey{method: method}

	var (
		items   []node
		pathSet bool
	)

	for _, c := range n.children {
		switch {
		case c.scope:
			p.errorAt(raw.at(c.off), diagnostic.CodeMalformedDirective,
				"scope "+strconv.Quote(c.key)+" cannot be nested inside "+strconv.Quote(n.key))
			p.fault(scopeKey{method: method})

			return
		case c.key == "path":
			if pathSet {
				p.errorAt(raw.at(c.off), diagnostic.CodeDuplicateKey,
					"key \"path\" given twice in the same scope")
				p.fault(scopeKey{method: method})

				return
			}

			pathSet = true

			if !c.hasValue {
				p.errorAt(raw.at(c.off), diagnostic.CodeMalformedDirective, "path needs a value")
				p.fault(scopeKey{method: method})

				return
			}

			target, err := p.src.Qualifier.Qualify(c.value)
			if err != nil {
				p.errorAt(raw.at(c.off), diagnostic.CodeUnresolvedPath, err.Error())
				p.fault(scopeKey{method: method})

				return
			}

			key.path = target
		default:
			items = append(items, c)
		}
	}

	layer := p.layer(key)
	for _, c := range items {
		p.apply(raw, key, layer, c)
	}
}

// layer returns the Layer for key, creating it on first use.
func (p *directiveParser) layer(key scopeKey) *Layer {
	for i := range p.out.Scoped {
		s := &p.out.Scoped[i]
		if s.Method == key.method && s.Path == key.path {
			return &s.Layer
		}
	}

	p.out.Scoped = append(p.out.Scoped, ScopedLayer{Method: key.method, Path: key.path})

	return &p.out.Scoped[len(p.out.Scoped)-1].Layer
}

func (p *directiveParser) apply(raw Raw, key scopeKey, l *Layer, n node) {
	if !p.applyItem(raw, key, l, n) {
		p.fault(key)
	}
}

// fault records that a directive in the scope of key was dropped.
func (p *directiveParser) fault(key scopeKey) {
	f := Fault{Scoped: !key.global, Method: key.method, Path: key.path}
	for _, existing := range p.out.Faults {
		if existing == f {
			return
		}
	}

	p.out.Faults = append(p.out.Faults, f)
}

// applyItem sets one key on l and reports false when the item is dropped.
func (p *directiveParser) applyItem(raw Raw, key scopeKey, l *Layer, n node) bool {
	pos := raw.at(n.off)

	if n.key == "path" && key.global {
		p.errorAt(pos, diagnostic.CodeMalformedDirective,
			"path is only allowed inside a method scope such as into(path=...)")

		return false
	}

	kind, ok := p.keys[n.key]
	if !ok {
		p.errorAt(pos, diagnostic.CodeUnknownKey, "unknown key "+strconv.Quote(n.key),
			match.Suggest(n.key, sortedKeys(p.keys), 1)...)

		return false
	}

	if p.seen[key] == nil {
		p.seen[key] = make(map[string]bool)
	}

	if p.seen[key][n.key] {
		p.errorAt(pos, diagnostic.CodeDuplicateKey, "key "+strconv.Quote(n.key)+" given twice in the same scope")

		return false
	}

	p.seen[key][n.key] = true

	switch kind {
	case flagKey:
		v, ok := flagValue(n)
		if !ok {
			p.errorAt(pos, diagnostic.CodeMalformedDirective,
				"flag "+strconv.Quote(n.key)+" takes no value or true/false")

			return false
		}

		setFlag(l, n.key, v)
	case identKey:
		if !n.hasValue || !token.IsIdentifier(n.value) {
			p.errorAt(pos, diagnostic.CodeMalformedDirective,
				strconv.Quote(n.key)+" needs an identifier value")

			return false
		}

		name := n.value
		l.Rename = &name
	case refKey:
		if !n.hasValue {
			p.errorAt(pos, diagnostic.CodeMalformedDirective, strconv.Quote(n.key)+" needs a function name")

			return false
		}

		ref, err := p.src.Qualifier.Qualify(n.value)
		if err != nil {
			p.errorAt(pos, diagnostic.CodeUnresolvedPath, err.Error())

			return false
		}

		l.WithFunc = &ref
	}

	return true
}

func flagValue(n node) (bool, bool) {
	if !n.hasValue {
		return true, true
	}

	v, err := strconv.ParseBool(n.value)
	if err != nil {
		return false, false
	}

	return v, true
}

func setFlag(l *Layer, key string, v bool) {
	switch key {
	case "skip":
		l.Skip = l.Skip || v
	case "default":
		l.Default = &v
	case "unwrap":
		l.Unwrap = &v
	}
}

func (p *directiveParser) syntaxError(raw Raw, err error) {
	pos := raw.Pos

	msg := err.Error()
	var se *SyntaxError
	if errors.As(err, &se) {
		pos = raw.at(se.Offset)
		msg = se.Msg
	}

	p.errorAt(pos, diagnostic.CodeMalformedDirective,
		"malformed directive "+strconv.Quote(raw.Text)+": "+msg)
}

func (p *directiveParser) errorAt(pos token.Position, code, msg string, suggestions ...string) {
	p.diags.AddErrorAt(pos, diagnostic.CategoryResolution, code, msg,
		p.src.TypeName, p.src.FieldPath, suggestions...)
}

func sortedKeys(keys map[string]keyKind) []string {
	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

// UnknownKind reports a "//convert:<kind>" comment whose kind is not
// recognised.
func UnknownKind(kind string, raw Raw, src Source, diags *diagnostic.Diagnostics) {
	known := append(methodNames(), KindField, KindVariant)
	diags.AddErrorAt(raw.Pos, diagnostic.CategoryResolution, diagnostic.CodeUnknownKey,
		"unknown directive "+strconv.Quote("convert:"+kind), src.TypeName, src.FieldPath,
		match.Suggest(kind, known, 1)...)
}

// String renders the effective attributes for logs and plan dumps.
func (e Effective) String() string {
	var parts []string
	if e.Rename != "" {
		parts = append(parts, "rename="+e.Rename)
	}

	if e.Skip {
		parts = append(parts, "skip")
	}

	if e.Default {
		parts = append(parts, "default")
	}

	if e.Unwrap {
		parts = append(parts, "unwrap")
	}

	if !e.WithFunc.IsZero() {
		parts = append(parts, "with_func="+e.WithFunc.String())
	}

	return strings.Join(parts, ",")
}
