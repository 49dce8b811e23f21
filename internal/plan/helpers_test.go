package plan

import (
	"go/token"

	"convert-generator/internal/analyze"
	"convert-generator/internal/directive"
	"convert-generator/internal/shape"
)

const testPkg = "example.com/store"

var testImports = map[string]string{"dto": "example.com/dto"}

func field(name, typ string, tags ...string) analyze.FieldSchema {
	return analyze.FieldSchema{
		Ident:      analyze.Named(name),
		Type:       shape.MustParse(typ),
		Directives: raws(tags...),
		Pos:        token.Position{Filename: "store.go", Line: 10, Column: 2},
	}
}

func positionalField(typ string, tags ...string) analyze.FieldSchema {
	f := field("", typ, tags...)
	f.Ident = analyze.Positional(0)

	return f
}

func raws(texts ...string) []directive.Raw {
	out := make([]directive.Raw, 0, len(texts))
	for _, t := range texts {
		out = append(out, directive.Raw{Text: t})
	}

	return out
}

func conv(kind, text string) analyze.TypeDirective {
	return analyze.TypeDirective{Kind: kind, Raw: directive.Raw{Text: text}}
}

func record(name string, directives []analyze.TypeDirective, fields ...analyze.FieldSchema) *analyze.TypeSchema {
	return &analyze.TypeSchema{
		ID:         analyze.TypeID{PkgPath: testPkg, Name: name},
		PkgName:    "store",
		Kind:       analyze.KindRecord,
		Style:      analyze.StyleNamed,
		Fields:     fields,
		Directives: directives,
		Imports:    testImports,
	}
}

func sum(name string, directives []analyze.TypeDirective, variants ...analyze.VariantSchema) *analyze.TypeSchema {
	return &analyze.TypeSchema{
		ID:         analyze.TypeID{PkgPath: testPkg, Name: name},
		PkgName:    "store",
		Kind:       analyze.KindSum,
		Variants:   variants,
		Directives: directives,
		Imports:    testImports,
	}
}

func targets(plans []FieldPlan) []string {
	out := make([]string, len(plans))
	for i, p := range plans {
		out[i] = p.Target.String()
	}

	return out
}

func dtoPath(name string) directive.Path {
	return directive.Path{PkgPath: "example.com/dto", Name: name}
}
