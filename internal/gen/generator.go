package gen

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"text/template"

	"golang.org/x/tools/imports"

	"convert-generator/internal/analyze"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/plan"
)

// SupportFilename is the file declaring the sentinel errors returned by
// fallible conversions.
const SupportFilename = "convert_errors.go"

// GeneratorConfig holds configuration for code generation.
type GeneratorConfig struct {
	// FileSuffix is appended to the snake_case type name to form file names.
	FileSuffix string
	// FalliblePrefix starts the names of functions returning an error.
	FalliblePrefix string
	// GenerateComments emits a comment above every field conversion.
	GenerateComments bool
}

// DefaultGeneratorConfig returns the default generator configuration.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		FileSuffix:     "_convert.go",
		FalliblePrefix: "Try",
	}
}

// Generator generates Go code from conversion plans.
type Generator struct {
	config   GeneratorConfig
	graph    *analyze.TypeGraph
	registry *registry
	diags    diagnostic.Diagnostics
}

// NewGenerator creates a new Generator with the given configuration.
func NewGenerator(config GeneratorConfig) *Generator {
	defaults := DefaultGeneratorConfig()
	if config.FileSuffix == "" {
		config.FileSuffix = defaults.FileSuffix
	}

	if config.FalliblePrefix == "" {
		config.FalliblePrefix = defaults.FalliblePrefix
	}

	return &Generator{config: config}
}

// GeneratedFile represents a generated Go source file.
type GeneratedFile struct {
	// Dir is the directory of the package the file belongs to.
	Dir string
	// Filename is the name of the file (e.g., "order_convert.go").
	Filename string
	// Content is the formatted Go source code.
	Content []byte
}

// Path returns the location of the file on disk.
func (f GeneratedFile) Path() string {
	return filepath.Join(f.Dir, f.Filename)
}

// Diagnostics returns the deferred findings of the last Generate call, such
// as unmapped target fields.
func (g *Generator) Diagnostics() diagnostic.Diagnostics {
	return g.diags
}

// Generate emits one file per annotated type of plans, into the type's own
// package. Conversions that cannot be emitted are left out and reported in
// Diagnostics; the returned error is reserved for rendering failures.
func (g *Generator) Generate(graph *analyze.TypeGraph, plans []*plan.ConversionPlan) ([]GeneratedFile, error) {
	g.graph = graph
	g.diags = diagnostic.Diagnostics{}
	g.registry = newRegistry(plans, g.config.FalliblePrefix)

	var files []GeneratedFile

	declared := make(map[string]map[string]bool)
	support := make(map[string]*analyze.TypeSchema)

	for _, group := range groupBySchema(plans) {
		schema := group[0].Schema

		refs := newImportSet(schema.ID.PkgPath)
		data := &templateData{
			Header:      analyze.GeneratedMarker,
			PackageName: schema.PkgName,
		}

		names := declared[schema.ID.PkgPath]
		if names == nil {
			names = make(map[string]bool)
			declared[schema.ID.PkgPath] = names
		}

		for _, p := range group {
			fnRefs := refs.fork()

			e := g.newFuncEmitter(p, fnRefs)

			fd, ok := e.emit()
			if !ok {
				continue
			}

			if names[fd.Name] {
				g.diags.AddErrorAt(p.Conversion.Pos, diagnostic.CategoryDeferred, diagnostic.CodeDuplicateConversion,
					fmt.Sprintf("function %s is generated twice in package %s", fd.Name, schema.PkgName),
					schema.ID.Short(), "")

				continue
			}

			names[fd.Name] = true
			refs = fnRefs
			data.Funcs = append(data.Funcs, fd)

			if e.sentinels {
				support[schema.ID.PkgPath] = schema
			}
		}

		if len(data.Funcs) == 0 {
			continue
		}

		data.Imports = refs.specs()

		file, err := render(fileTemplate, schema.Dir, filename(schema, g.config.FileSuffix), data)
		if err != nil {
			return nil, fmt.Errorf("generating %s: %w", schema.ID, err)
		}

		files = append(files, file)
	}

	supportFiles, err := g.supportFiles(support)
	if err != nil {
		return nil, err
	}

	return append(files, supportFiles...), nil
}

func (g *Generator) supportFiles(pkgs map[string]*analyze.TypeSchema) ([]GeneratedFile, error) {
	paths := make([]string, 0, len(pkgs))
	for p := range pkgs {
		paths = append(paths, p)
	}

	sort.Strings(paths)

	files := make([]GeneratedFile, 0, len(paths))

	for _, p := range paths {
		schema := pkgs[p]

		file, err := render(supportTemplate, schema.Dir, SupportFilename, &templateData{
			Header:      analyze.GeneratedMarker,
			PackageName: schema.PkgName,
		})
		if err != nil {
			return nil, fmt.Errorf("generating support file for %s: %w", p, err)
		}

		files = append(files, file)
	}

	return files, nil
}

// groupBySchema groups plans by annotated type, keeping first-seen order.
func groupBySchema(plans []*plan.ConversionPlan) [][]*plan.ConversionPlan {
	index := make(map[*analyze.TypeSchema]int)

	var groups [][]*plan.ConversionPlan

	for _, p := range plans {
		i, ok := index[p.Schema]
		if !ok {
			i = len(groups)
			index[p.Schema] = i
			groups = append(groups, nil)
		}

		groups[i] = append(groups[i], p)
	}

	return groups
}

// render executes tmpl and formats the result. On a formatting failure the
// unformatted source is returned together with the error.
func render(tmpl *template.Template, dir, name string, data *templateData) (GeneratedFile, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return GeneratedFile{}, fmt.Errorf("executing template: %w", err)
	}

	file := GeneratedFile{Dir: dir, Filename: name}

	formatted, err := imports.Process(name, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		file.Content = buf.Bytes()

		return file, fmt.Errorf("formatting %s: %w", name, err)
	}

	file.Content = formatted

	return file, nil
}
