package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"path"
	"path/filepath"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"

	"convert-generator/internal/diagnostic"
	"convert-generator/internal/directive"
	"convert-generator/internal/shape"
)

// LoadMode specifies what information to load from packages.
const LoadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedSyntax |
	packages.NeedTypes |
	packages.NeedTypesInfo |
	packages.NeedImports |
	packages.NeedDeps

const (
	// DefaultTagKey is the struct tag key holding field directives.
	DefaultTagKey = "convert"
	// DirectivePrefix starts every directive comment line.
	DirectivePrefix = "//convert:"
	// GeneratedMarker is the header line of files written by the generator.
	GeneratedMarker = "// Code generated by convert-generator. DO NOT EDIT."
)

// Analyzer loads Go packages and extracts the schemas of annotated types.
type Analyzer struct {
	graph  *TypeGraph
	tagKey string
	dir    string
	diags  diagnostic.Diagnostics
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithTagKey sets the struct tag key holding field directives.
func WithTagKey(key string) Option {
	return func(a *Analyzer) {
		if key != "" {
			a.tagKey = key
		}
	}
}

// WithDir sets the directory patterns are resolved from.
func WithDir(dir string) Option {
	return func(a *Analyzer) {
		a.dir = dir
	}
}

// NewAnalyzer creates a new Analyzer.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		graph:  NewTypeGraph(),
		tagKey: DefaultTagKey,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Graph returns the current type graph.
func (a *Analyzer) Graph() *TypeGraph {
	return a.graph
}

// Diagnostics returns findings collected while loading, such as type errors
// that did not prevent extraction.
func (a *Analyzer) Diagnostics() diagnostic.Diagnostics {
	return a.diags
}

// LoadPackages loads the specified packages and extracts annotated types.
// Patterns are standard Go package patterns (e.g., "./...", "example.com/app/store").
//
// Files previously written by the generator are parsed as empty so that a
// stale conversion never blocks its own regeneration. Type errors are kept
// as warnings; list and parse errors abort the load.
func (a *Analyzer) LoadPackages(ctx context.Context, patterns ...string) (*TypeGraph, error) {
	cfg := &packages.Config{
		Context:   ctx,
		Mode:      LoadMode,
		Dir:       a.dir,
		ParseFile: parseSkippingGenerated,
	}

	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}

	var errs []error

	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			if e.Kind == packages.TypeError {
				a.diags.Add(diagnostic.Diagnostic{
					Severity: diagnostic.DiagnosticWarning,
					Category: diagnostic.CategoryLoad,
					Code:     diagnostic.CodePackageLoad,
					Message:  e.Msg,
					TypeName: pkg.PkgPath,
				})

				continue
			}

			errs = append(errs, e)
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("package errors: %w", errors.Join(errs...))
	}

	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].PkgPath < pkgs[j].PkgPath })

	for _, pkg := range pkgs {
		if err := a.AddPackage(pkg); err != nil {
			return nil, err
		}
	}

	return a.graph, nil
}

// AddPackage extracts the annotated types of an already loaded and
// type-checked package into the graph.
func (a *Analyzer) AddPackage(pkg *packages.Package) error {
	if err := a.processPackage(pkg); err != nil {
		return fmt.Errorf("failed to process package %s: %w", pkg.PkgPath, err)
	}

	return nil
}

func parseSkippingGenerated(fset *token.FileSet, filename string, src []byte) (*ast.File, error) {
	mode := parser.AllErrors | parser.ParseComments
	if bytes.HasPrefix(src, []byte(GeneratedMarker)) {
		mode = parser.PackageClauseOnly
	}

	return parser.ParseFile(fset, filename, src, mode)
}

// declared is a type declaration with its directive comments, kept in
// source order.
type declared struct {
	spec       *ast.TypeSpec
	obj        *types.TypeName
	directives []TypeDirective
	imports    map[string]string
	pkgImports map[string]string
}

func (a *Analyzer) processPackage(pkg *packages.Package) error {
	if pkg.Types == nil || pkg.TypesInfo == nil {
		return errors.New("missing type information")
	}

	info := &PackageInfo{
		Path:  pkg.PkgPath,
		Name:  pkg.Name,
		Types: pkg.Types,
	}

	if len(pkg.GoFiles) > 0 {
		info.Dir = filepath.Dir(pkg.GoFiles[0])
	}

	a.graph.Packages[pkg.PkgPath] = info

	var decls []declared

	pkgImports := packageImports(pkg)

	for _, file := range pkg.Syntax {
		imports := fileImports(pkg, file)

		for _, d := range file.Decls {
			gd, ok := d.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}

			for _, s := range gd.Specs {
				spec, ok := s.(*ast.TypeSpec)
				if !ok {
					continue
				}

				doc := spec.Doc
				if doc == nil && len(gd.Specs) == 1 {
					doc = gd.Doc
				}

				obj, _ := pkg.TypesInfo.Defs[spec.Name].(*types.TypeName)
				decls = append(decls, declared{
					spec:       spec,
					obj:        obj,
					directives: a.commentDirectives(pkg.Fset, doc),
					imports:    imports,
					pkgImports: pkgImports,
				})
			}
		}
	}

	for i := range decls {
		d := &decls[i]
		if !hasMethodDirective(d.directives) {
			continue
		}

		a.graph.Schemas = append(a.graph.Schemas, a.buildSchema(pkg, info, d, decls))
	}

	return nil
}

func (a *Analyzer) buildSchema(pkg *packages.Package, info *PackageInfo, d *declared, all []declared) *TypeSchema {
	schema := &TypeSchema{
		ID:             TypeID{PkgPath: pkg.PkgPath, Name: d.spec.Name.Name},
		PkgName:        pkg.Name,
		Dir:            info.Dir,
		Imports:        d.imports,
		PackageImports: d.pkgImports,
		Pos:            pkg.Fset.Position(d.spec.Name.Pos()),
	}

	schema.Directives = d.directives

	if d.obj != nil {
		schema.GoType = d.obj.Type()
	}

	if d.spec.TypeParams != nil || d.spec.Assign.IsValid() || d.obj == nil {
		schema.Kind = KindUnsupported

		return schema
	}

	switch t := d.spec.Type.(type) {
	case *ast.InterfaceType:
		schema.Kind = KindSum
		schema.Variants = a.variants(pkg, d, all)
	case *ast.StructType:
		schema.Kind = KindRecord
		schema.Fields = a.structFields(pkg, t)
		schema.Style = StyleNamed

		if len(t.Fields.List) == 0 {
			schema.Style = StyleUnit
		}
	default:
		// Field directives of a positional record belong to its only field.
		var fieldDirectives []directive.Raw

		schema.Directives = nil

		for _, td := range d.directives {
			if td.Kind == directive.KindField {
				fieldDirectives = append(fieldDirectives, td.Raw)
			} else {
				schema.Directives = append(schema.Directives, td)
			}
		}

		schema.Kind = KindRecord
		schema.Style = StylePositional
		schema.Fields = []FieldSchema{a.positionalField(pkg, d.spec, fieldDirectives)}
	}

	return schema
}

// variants collects the named types of the package implementing the sum
// interface, in declaration order.
func (a *Analyzer) variants(pkg *packages.Package, sum *declared, all []declared) []VariantSchema {
	iface, ok := sum.obj.Type().Underlying().(*types.Interface)
	if !ok || iface.NumMethods() == 0 {
		return nil
	}

	var out []VariantSchema

	for i := range all {
		d := &all[i]
		if d.obj == nil || d.obj == sum.obj || d.spec.TypeParams != nil || d.spec.Assign.IsValid() {
			continue
		}

		if !d.obj.Exported() {
			continue
		}

		if _, isIface := d.obj.Type().Underlying().(*types.Interface); isIface {
			continue
		}

		v := VariantSchema{
			Name:   d.obj.Name(),
			Pos:    pkg.Fset.Position(d.spec.Name.Pos()),
			GoType: d.obj.Type(),
		}

		switch {
		case types.Implements(d.obj.Type(), iface):
		case types.Implements(types.NewPointer(d.obj.Type()), iface):
			v.Pointer = true
		default:
			continue
		}

		var fieldDirectives []directive.Raw

		for _, td := range d.directives {
			switch td.Kind {
			case directive.KindVariant:
				v.Directives = append(v.Directives, td.Raw)
			case directive.KindField:
				fieldDirectives = append(fieldDirectives, td.Raw)
			}
		}

		switch t := d.spec.Type.(type) {
		case *ast.StructType:
			v.Style = StyleNamed
			v.Fields = a.structFields(pkg, t)

			if len(t.Fields.List) == 0 {
				v.Style = StyleUnit
			}
		default:
			v.Style = StylePositional
			v.Fields = []FieldSchema{a.positionalField(pkg, d.spec, fieldDirectives)}
		}

		out = append(out, v)
	}

	return out
}

func (a *Analyzer) structFields(pkg *packages.Package, st *ast.StructType) []FieldSchema {
	var out []FieldSchema

	for _, f := range st.Fields.List {
		names := make([]string, 0, len(f.Names))
		for _, n := range f.Names {
			names = append(names, n.Name)
		}

		if len(names) == 0 {
			names = append(names, embeddedName(f.Type))
		}

		raws := a.tagDirectives(pkg.Fset, f.Tag)

		for _, name := range names {
			// Unexported fields are unreachable from the other package.
			if !token.IsExported(name) {
				continue
			}

			out = append(out, FieldSchema{
				Ident:      Named(name),
				Type:       shape.FromExpr(f.Type),
				GoType:     pkg.TypesInfo.TypeOf(f.Type),
				Directives: raws,
				Pos:        pkg.Fset.Position(f.Pos()),
			})
		}
	}

	return out
}

func (a *Analyzer) positionalField(pkg *packages.Package, spec *ast.TypeSpec, raws []directive.Raw) FieldSchema {
	return FieldSchema{
		Ident:      Positional(0),
		Type:       shape.FromExpr(spec.Type),
		GoType:     pkg.TypesInfo.TypeOf(spec.Type),
		Directives: raws,
		Pos:        pkg.Fset.Position(spec.Type.Pos()),
	}
}

// tagDirectives extracts the directive text from a struct tag literal.
func (a *Analyzer) tagDirectives(fset *token.FileSet, tag *ast.BasicLit) []directive.Raw {
	if tag == nil {
		return nil
	}

	value, err := strconv.Unquote(tag.Value)
	if err != nil {
		return nil
	}

	text, ok := reflect.StructTag(value).Lookup(a.tagKey)
	if !ok {
		return nil
	}

	pos := fset.Position(tag.Pos())
	if i := strings.Index(tag.Value, a.tagKey+`:"`); i >= 0 {
		pos.Column += i + len(a.tagKey) + 2
		pos.Offset += i + len(a.tagKey) + 2
	}

	return []directive.Raw{{Text: text, Pos: pos}}
}

// commentDirectives extracts "//convert:<kind> <text>" lines from a doc comment.
func (a *Analyzer) commentDirectives(fset *token.FileSet, doc *ast.CommentGroup) []TypeDirective {
	if doc == nil {
		return nil
	}

	var out []TypeDirective

	for _, c := range doc.List {
		rest, ok := strings.CutPrefix(c.Text, DirectivePrefix)
		if !ok {
			continue
		}

		kind, text, _ := strings.Cut(rest, " ")

		pos := fset.Position(c.Slash)
		skip := len(DirectivePrefix) + len(kind)

		trimmed := strings.TrimLeft(text, " \t")
		if text != "" {
			skip += 1 + len(text) - len(trimmed)
		}

		pos.Column += skip
		pos.Offset += skip

		out = append(out, TypeDirective{
			Kind: kind,
			Raw:  directive.Raw{Text: trimmed, Pos: pos},
		})
	}

	return out
}

func hasMethodDirective(ds []TypeDirective) bool {
	for _, d := range ds {
		if _, ok := directive.ParseMethod(d.Kind); ok {
			return true
		}
	}

	return false
}

// packageImports maps the name of every package imported by pkg to its path.
// Names shared by several imports are ambiguous and left out.
func packageImports(pkg *packages.Package) map[string]string {
	imports := make(map[string]string)
	ambiguous := make(map[string]bool)

	for _, imp := range pkg.Types.Imports() {
		name := imp.Name()
		if prev, ok := imports[name]; ok && prev != imp.Path() {
			ambiguous[name] = true
		}

		imports[name] = imp.Path()
	}

	for name := range ambiguous {
		delete(imports, name)
	}

	return imports
}

// fileImports maps the local name of every import in file to its path.
func fileImports(pkg *packages.Package, file *ast.File) map[string]string {
	names := make(map[string]string)
	for _, imp := range pkg.Types.Imports() {
		names[imp.Path()] = imp.Name()
	}

	imports := make(map[string]string, len(file.Imports))

	for _, spec := range file.Imports {
		importPath, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		name := names[importPath]

		switch {
		case spec.Name != nil:
			name = spec.Name.Name
		case name == "":
			name = path.Base(importPath)
		}

		if name == "_" || name == "." {
			continue
		}

		imports[name] = importPath
	}

	return imports
}

func embeddedName(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.StarExpr:
		return embeddedName(e.X)
	case *ast.SelectorExpr:
		return e.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(e.X)
	case *ast.IndexListExpr:
		return embeddedName(e.X)
	default:
		return ""
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
