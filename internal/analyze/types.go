package analyze

import (
	"go/token"
	"go/types"
	"strconv"

	"convert-generator/internal/common"
	"convert-generator/internal/directive"
	"convert-generator/internal/shape"
)

// TypeID uniquely identifies a type by its package path and name.
type TypeID struct {
	PkgPath string // e.g., "convert-generator/examples/store"
	Name    string // e.g., "Order"
}

// String returns a human-readable representation of the TypeID.
func (t TypeID) String() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return t.PkgPath + "." + t.Name
}

// Path returns the TypeID as a directive path.
func (t TypeID) Path() directive.Path {
	return directive.Path{PkgPath: t.PkgPath, Name: t.Name}
}

// Short returns "pkg.Name" using the last element of the package path.
func (t TypeID) Short() string {
	if t.PkgPath == "" {
		return t.Name
	}

	return common.PkgAlias(t.PkgPath) + "." + t.Name
}

// Kind is the structural kind of an annotated type.
type Kind int

const (
	KindUnsupported Kind = iota
	KindRecord           // struct or defined non-struct type
	KindSum              // sealed interface with implementing variants
)

// String returns a human-readable representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindUnsupported:
		return "unsupported"
	case KindRecord:
		return "record"
	case KindSum:
		return "sum"
	default:
		return common.UnknownStr
	}
}

// Style is how the fields of a record or variant are addressed.
type Style int

const (
	StyleNamed      Style = iota // struct with named fields
	StylePositional              // defined type over a non-struct, one field at index 0
	StyleUnit                    // struct{}
	StyleUnknown                 // not representable as a variant
)

// String returns a human-readable representation of the Style.
func (s Style) String() string {
	switch s {
	case StyleNamed:
		return "named"
	case StylePositional:
		return "positional"
	case StyleUnit:
		return "unit"
	case StyleUnknown:
		return "unknown"
	default:
		return common.UnknownStr
	}
}

// FieldIdent names a field, or gives its position when it has no name.
type FieldIdent struct {
	Name  string
	Index int
}

// Positional returns the identifier of an unnamed field.
func Positional(index int) FieldIdent {
	return FieldIdent{Index: index}
}

// Named returns the identifier of a named field.
func Named(name string) FieldIdent {
	return FieldIdent{Name: name}
}

// IsPositional reports whether the field is addressed by index.
func (f FieldIdent) IsPositional() bool {
	return f.Name == ""
}

// String returns the name, or the index for positional fields.
func (f FieldIdent) String() string {
	if f.IsPositional() {
		return strconv.Itoa(f.Index)
	}

	return f.Name
}

// FieldSchema describes one field of a record or variant.
type FieldSchema struct {
	Ident FieldIdent
	// Type is the declared type expression as written.
	Type shape.Descriptor
	// GoType is the checked type; nil when the schema is built by hand.
	GoType     types.Type
	Directives []directive.Raw
	Pos        token.Position
}

// VariantSchema describes one variant of a sum type.
type VariantSchema struct {
	Name  string
	Style Style
	// Pointer is set when only *Variant implements the sum interface.
	Pointer    bool
	Fields     []FieldSchema
	Directives []directive.Raw
	Pos        token.Position
	GoType     types.Type
}

// TypeDirective is a "//convert:<kind> <text>" comment on a type.
type TypeDirective struct {
	Kind string
	Raw  directive.Raw
}

// TypeSchema describes an annotated type. Schemas are built once by the
// Analyzer and never modified afterwards.
type TypeSchema struct {
	ID      TypeID
	PkgName string
	Kind    Kind
	// Style applies to records.
	Style      Style
	Fields     []FieldSchema
	Variants   []VariantSchema
	Directives []TypeDirective
	// Imports maps local import names of the declaring file to import paths.
	Imports map[string]string
	// PackageImports maps package names imported by any file of the declaring
	// package to import paths.
	PackageImports map[string]string
	// Dir is the directory of the declaring package.
	Dir    string
	Pos    token.Position
	GoType types.Type
}

// Qualifier returns the qualifier for references written in the schema's
// directives.
func (t *TypeSchema) Qualifier() directive.Qualifier {
	return directive.Qualifier{
		PkgPath:        t.ID.PkgPath,
		PkgName:        t.PkgName,
		Imports:        t.Imports,
		PackageImports: t.PackageImports,
	}
}

// TypeGraph holds the annotated types found in loaded packages together with
// the type information needed to emit their conversions.
type TypeGraph struct {
	// Schemas lists annotated types in package, file and declaration order.
	Schemas []*TypeSchema
	// Packages maps package paths to their package info.
	Packages map[string]*PackageInfo
}

// NewTypeGraph creates a new empty TypeGraph.
func NewTypeGraph() *TypeGraph {
	return &TypeGraph{
		Packages: make(map[string]*PackageInfo),
	}
}

// PackageInfo holds information about a loaded package.
type PackageInfo struct {
	Path  string // Import path
	Name  string // Package name
	Dir   string
	Types *types.Package
}

// LookupPackage returns the type information of a loaded package or of a
// package one of them imports.
func (g *TypeGraph) LookupPackage(pkgPath string) *types.Package {
	if pkg, ok := g.Packages[pkgPath]; ok && pkg.Types != nil {
		return pkg.Types
	}

	for _, path := range sortedKeys(g.Packages) {
		pkg := g.Packages[path]
		if pkg.Types == nil {
			continue
		}

		for _, imp := range pkg.Types.Imports() {
			if imp.Path() == pkgPath {
				return imp
			}
		}
	}

	return nil
}

// Lookup finds a named type in a loaded package or in any package they
// import.
func (g *TypeGraph) Lookup(id TypeID) *types.TypeName {
	pkg := g.LookupPackage(id.PkgPath)
	if pkg == nil {
		return nil
	}

	tn, _ := pkg.Scope().Lookup(id.Name).(*types.TypeName)

	return tn
}

// Schema returns the annotated type with the given ID, or nil.
func (g *TypeGraph) Schema(id TypeID) *TypeSchema {
	for _, s := range g.Schemas {
		if s.ID == id {
			return s
		}
	}

	return nil
}
