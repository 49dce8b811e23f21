package gen

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/go/packages"

	"convert-generator/internal/analyze"
	"convert-generator/internal/plan"
)

// source is one in-memory package of a test fixture.
type source struct {
	path string
	code string
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }

// loadGraph type-checks the sources in order and extracts their annotated
// types, the way the analyzer does for packages loaded from disk.
func loadGraph(t *testing.T, sources ...source) *analyze.TypeGraph {
	t.Helper()

	fset := token.NewFileSet()
	checked := make(map[string]*types.Package)

	conf := types.Config{
		Importer: importerFunc(func(path string) (*types.Package, error) {
			if p, ok := checked[path]; ok {
				return p, nil
			}

			return nil, fmt.Errorf("package %s not in fixture", path)
		}),
	}

	a := analyze.NewAnalyzer()

	for _, src := range sources {
		filename := "/src/" + src.path + "/fixture.go"

		file, err := parser.ParseFile(fset, filename, src.code, parser.ParseComments)
		require.NoError(t, err)

		info := &types.Info{
			Types: make(map[ast.Expr]types.TypeAndValue),
			Defs:  make(map[*ast.Ident]types.Object),
			Uses:  make(map[*ast.Ident]types.Object),
		}

		pkg, err := conf.Check(src.path, fset, []*ast.File{file}, info)
		require.NoError(t, err)

		checked[src.path] = pkg

		require.NoError(t, a.AddPackage(&packages.Package{
			PkgPath:   src.path,
			Name:      pkg.Name(),
			Fset:      fset,
			GoFiles:   []string{filename},
			Syntax:    []*ast.File{file},
			Types:     pkg,
			TypesInfo: info,
		}))
	}

	return a.Graph()
}

// resolve loads the fixture and resolves all of its conversions, failing on
// any resolution error.
func resolve(t *testing.T, sources ...source) (*analyze.TypeGraph, []*plan.ConversionPlan) {
	t.Helper()

	graph := loadGraph(t, sources...)

	res := plan.NewResolver(plan.DefaultConfig()).ResolveGraph(graph)
	require.True(t, res.Diagnostics.IsValid(), res.Diagnostics.Error())

	return graph, res.Plans
}

func generate(t *testing.T, sources ...source) ([]GeneratedFile, *Generator) {
	t.Helper()

	graph, plans := resolve(t, sources...)

	g := NewGenerator(DefaultGeneratorConfig())

	files, err := g.Generate(graph, plans)
	require.NoError(t, err)

	return files, g
}

func fileNamed(t *testing.T, files []GeneratedFile, name string) string {
	t.Helper()

	for _, f := range files {
		if f.Filename == name {
			return string(f.Content)
		}
	}

	require.Failf(t, "file not generated", "%s", name)

	return ""
}

const dtoSource = `package dto

type Record struct {
	Normal       uint8
	Opt          *uint16
	Vec          []uint32
	RenamedField uint16
}

type Item struct {
	Name string
	Qty  int
}

type Order struct {
	ID    int64
	Items []Item
	Index map[string]*Item
	Title string
	Total int
}

type Celsius float64

type Shape interface{ isShape() }

type Circle struct {
	R float64
}

type Box []float64

type Empty struct{}

func (Circle) isShape() {}
func (*Box) isShape()   {}
func (Empty) isShape()  {}
`

var dto = source{path: "example.com/dto", code: dtoSource}
