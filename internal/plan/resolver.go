package plan

import (
	"errors"
	"fmt"

	"convert-generator/internal/analyze"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/directive"
	"convert-generator/internal/shape"
)

// ResolutionConfig holds configuration for the resolution process.
type ResolutionConfig struct {
	// Classifier decides the shape of declared field types.
	Classifier shape.Classifier
}

// DefaultConfig returns the default resolution configuration.
func DefaultConfig() ResolutionConfig {
	return ResolutionConfig{
		Classifier: shape.NewClassifier(shape.DefaultWrappers()),
	}
}

// Resolver turns annotated type schemas into conversion plans. It keeps no
// state between calls.
type Resolver struct {
	config ResolutionConfig
}

// NewResolver creates a new Resolver.
func NewResolver(config ResolutionConfig) *Resolver {
	if config.Classifier == nil {
		config.Classifier = DefaultConfig().Classifier
	}

	return &Resolver{config: config}
}

// Resolve resolves a single annotated type with the given configuration.
func Resolve(schema *analyze.TypeSchema, config ResolutionConfig) *Result {
	return NewResolver(config).Resolve(schema)
}

// ResolveGraph resolves every annotated type of the graph, in graph order.
func (r *Resolver) ResolveGraph(graph *analyze.TypeGraph) *Result {
	res := &Result{}
	for _, s := range graph.Schemas {
		res.Merge(r.Resolve(s))
	}

	return res
}

// Resolve produces one ConversionPlan per valid conversion directive of the
// schema. A conversion is left out when any of its fields or variants failed
// to resolve, or when the directives of the type could not be parsed; the
// reasons are in the result's diagnostics.
func (r *Resolver) Resolve(schema *analyze.TypeSchema) *Result {
	res := &Result{}

	tr := &typeResolution{
		schema:     schema,
		classifier: r.config.Classifier,
		diags:      &res.Diagnostics,
		reported:   make(map[string]bool),
	}

	if !tr.checkStructure() {
		return res
	}

	convs := tr.conversions()
	if !tr.checkDefaultFill(convs) {
		return res
	}

	tr.parseDirectives()

	for _, conv := range convs {
		p, ok := tr.resolve(conv)
		if ok && !tr.faulty(conv) {
			res.Plans = append(res.Plans, p)
		}
	}

	return res
}

// typeResolution carries the per-type state of one Resolve call.
type typeResolution struct {
	schema     *analyze.TypeSchema
	classifier shape.Classifier
	diags      *diagnostic.Diagnostics
	reported   map[string]bool

	fieldDirs        []directive.Directives
	variantDirs      []directive.Directives
	variantFieldDirs [][]directive.Directives
}

func (tr *typeResolution) source(fieldPath string) directive.Source {
	return directive.Source{
		TypeName:  tr.schema.ID.Short(),
		FieldPath: fieldPath,
		Qualifier: tr.schema.Qualifier(),
	}
}

func (tr *typeResolution) structural(code, msg string) {
	tr.diags.AddErrorAt(tr.schema.Pos, diagnostic.CategoryStructural, code, msg, tr.schema.ID.Short(), "")
}

func (tr *typeResolution) checkStructure() bool {
	s := tr.schema

	switch s.Kind {
	case analyze.KindRecord:
		return true
	case analyze.KindSum:
		if len(s.Variants) == 0 {
			tr.structural(diagnostic.CodeEmptySum,
				"sum type has no variants: declare named types in the same package implementing "+s.ID.Name)

			return false
		}

		ok := true

		for _, v := range s.Variants {
			if v.Style == analyze.StyleUnknown {
				tr.structural(diagnostic.CodeUnknownVariantStyle,
					fmt.Sprintf("variant %s is neither a struct nor a defined non-struct type", v.Name))

				ok = false
			}
		}

		return ok
	default:
		tr.structural(diagnostic.CodeUnsupportedKind,
			"only structs, defined non-struct types and interfaces can be converted; generic types and aliases are not supported")

		return false
	}
}

// conversions parses the type-level method directives, dropping invalid and
// duplicated ones.
func (tr *typeResolution) conversions() []directive.Conversion {
	var out []directive.Conversion

	seen := make(map[string]bool)
	src := tr.source("")

	for _, td := range tr.schema.Directives {
		method, ok := directive.ParseMethod(td.Kind)
		if !ok {
			tr.misplaced(td, src)

			continue
		}

		conv, ok := directive.ParseConversion(method, td.Raw, src, tr.diags)
		if !ok {
			continue
		}

		if seen[conv.Key()] {
			tr.once(conv.Key(), func() {
				tr.diags.AddErrorAt(conv.Pos, diagnostic.CategoryResolution, diagnostic.CodeDuplicateConversion,
					fmt.Sprintf("%s conversion to %s is declared more than once", method, conv.Target),
					src.TypeName, "")
			})

			continue
		}

		seen[conv.Key()] = true
		out = append(out, conv)
	}

	return out
}

func (tr *typeResolution) misplaced(td analyze.TypeDirective, src directive.Source) {
	switch td.Kind {
	case directive.KindField:
		tr.diags.AddErrorAt(td.Raw.Pos, diagnostic.CategoryResolution, diagnostic.CodeMalformedDirective,
			"convert:field is only allowed on defined non-struct types; use the struct tag on named fields",
			src.TypeName, "")
	case directive.KindVariant:
		tr.diags.AddErrorAt(td.Raw.Pos, diagnostic.CategoryResolution, diagnostic.CodeMalformedDirective,
			"convert:variant is only allowed on types implementing an annotated interface",
			src.TypeName, "")
	default:
		directive.UnknownKind(td.Kind, td.Raw, src, tr.diags)
	}
}

func (tr *typeResolution) checkDefaultFill(convs []directive.Conversion) bool {
	if tr.schema.Kind != analyze.KindRecord || tr.schema.Style != analyze.StylePositional {
		return true
	}

	ok := true

	for _, conv := range convs {
		if conv.DefaultFill {
			tr.diags.AddErrorAt(conv.Pos, diagnostic.CategoryStructural, diagnostic.CodeDefaultFillPosition,
				"default cannot be used on a defined non-struct type: its only field is always converted",
				tr.schema.ID.Short(), "")

			ok = false
		}
	}

	return ok
}

func (tr *typeResolution) parseDirectives() {
	s := tr.schema
	root := analyze.NewTypePath("")

	tr.fieldDirs = make([]directive.Directives, len(s.Fields))
	for i := range s.Fields {
		f := &s.Fields[i]
		tr.fieldDirs[i] = directive.ParseField(f.Directives, tr.source(root.Field(f.Ident).String()), tr.diags)
	}

	tr.variantDirs = make([]directive.Directives, len(s.Variants))
	tr.variantFieldDirs = make([][]directive.Directives, len(s.Variants))

	for i := range s.Variants {
		v := &s.Variants[i]
		path := root.Variant(v.Name)

		tr.variantDirs[i] = directive.ParseVariant(v.Directives, tr.source(path.String()), tr.diags)
		tr.variantFieldDirs[i] = make([]directive.Directives, len(v.Fields))

		for j := range v.Fields {
			f := &v.Fields[j]
			tr.variantFieldDirs[i][j] = directive.ParseField(f.Directives, tr.source(path.Field(f.Ident).String()), tr.diags)
		}
	}
}

// faulty reports whether a dropped field or variant directive could have
// applied to conv. Such conversions are reported but not planned.
func (tr *typeResolution) faulty(conv directive.Conversion) bool {
	dirs := append(append([]directive.Directives(nil), tr.fieldDirs...), tr.variantDirs...)
	for _, fields := range tr.variantFieldDirs {
		dirs = append(dirs, fields...)
	}

	for _, d := range dirs {
		if d.Faulty(conv.Method, conv.Target) {
			return true
		}
	}

	return false
}

func (tr *typeResolution) resolve(conv directive.Conversion) (*ConversionPlan, bool) {
	var (
		fields   []FieldPlan
		variants []VariantPlan
		ok       bool
	)

	switch tr.schema.Kind {
	case analyze.KindRecord:
		fields, ok = tr.buildFields(conv, tr.schema.Fields, tr.fieldDirs, analyze.NewTypePath(""))
	case analyze.KindSum:
		variants, ok = tr.resolveVariants(conv)
	}

	if !ok {
		return nil, false
	}

	p, err := Assemble(conv, tr.schema, fields, variants)
	if err != nil {
		tr.diags.AddErrorAt(conv.Pos, diagnostic.CategoryStructural, diagnostic.CodeUnsupportedKind,
			err.Error(), tr.schema.ID.Short(), "")

		return nil, false
	}

	return p, true
}

// buildFields builds the plan of every field, reporting each failing field
// and carrying on with the others.
func (tr *typeResolution) buildFields(
	conv directive.Conversion,
	fields []analyze.FieldSchema,
	dirs []directive.Directives,
	path analyze.TypePath,
) ([]FieldPlan, bool) {
	ok := true

	plans := make([]FieldPlan, 0, len(fields))

	for i := range fields {
		f := &fields[i]

		eff := dirs[i].Effective(conv.Method, conv.Target)

		fp, err := BuildField(f, eff, conv.Method, tr.classifier)
		if err != nil {
			ok = false

			tr.fieldError(f, path.Field(f.Ident).String(), conv, err)

			continue
		}

		plans = append(plans, fp)
	}

	return plans, ok
}

func (tr *typeResolution) fieldError(f *analyze.FieldSchema, fieldPath string, conv directive.Conversion, err error) {
	code := diagnostic.CodeMalformedDirective
	msg := err.Error()

	switch {
	case errors.Is(err, ErrUnwrapNonOptional):
		code = diagnostic.CodeUnwrapNonOptional
		msg = fmt.Sprintf("%s: unwrap in %s to %s needs an optional field, found %s",
			err, conv.Method, conv.Target, f.Type)
	case errors.Is(err, ErrRenamePositional):
		code = diagnostic.CodeRenamePositional
	}

	tr.once(fmt.Sprint(f.Pos, code, msg), func() {
		tr.diags.AddErrorAt(f.Pos, diagnostic.CategoryResolution, code, msg, tr.schema.ID.Short(), fieldPath)
	})
}

// once runs report the first time key is seen in this resolution.
func (tr *typeResolution) once(key string, report func()) {
	if tr.reported[key] {
		return
	}

	tr.reported[key] = true
	report()
}
