package runner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"convert-generator/internal/analyze"
	"convert-generator/internal/config"
	"convert-generator/internal/diagnostic"
	"convert-generator/internal/gen"
	"convert-generator/internal/plan"
	"convert-generator/internal/shape"
)

var (
	// ErrDiagnostics is returned when a run reported error diagnostics.
	ErrDiagnostics = errors.New("conversion diagnostics reported errors")
	// ErrStale is returned by Check when generated files are missing or out
	// of date.
	ErrStale = errors.New("generated files are out of date")
)

// Runner executes generator runs with one configuration.
type Runner struct {
	cfg    *config.Config
	log    zerolog.Logger
	dir    string
	dryRun bool
}

// Option configures a Runner.
type Option func(*Runner)

// WithDir sets the directory package patterns are resolved from.
func WithDir(dir string) Option {
	return func(r *Runner) {
		r.dir = dir
	}
}

// WithDryRun makes Generate skip writing files.
func WithDryRun(dryRun bool) Option {
	return func(r *Runner) {
		r.dryRun = dryRun
	}
}

// New creates a Runner. A nil cfg uses the defaults.
func New(cfg *config.Config, log zerolog.Logger, opts ...Option) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}

	r := &Runner{cfg: cfg, log: log}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Result is the outcome of one run.
type Result struct {
	// Plans are the resolved conversions, in type declaration order.
	Plans []*plan.ConversionPlan
	// Files are the generated files, whether written or not.
	Files []gen.GeneratedFile
	// Written are the files written to disk by Generate, or the stale files
	// found by Check.
	Written []gen.GeneratedFile
	// Diagnostics collects the findings of every stage.
	Diagnostics diagnostic.Diagnostics
	// Dirs are the directories of the loaded packages.
	Dirs []string
}

// Plan loads and resolves the packages without emitting code.
func (r *Runner) Plan(ctx context.Context, patterns ...string) (*Result, error) {
	res, _, err := r.resolve(ctx, patterns)
	if err != nil {
		return res, err
	}

	if res.Diagnostics.HasErrors() {
		return res, ErrDiagnostics
	}

	return res, nil
}

// Generate runs the whole pipeline and writes the generated files, unless
// the Runner is in dry-run mode or errors were reported.
func (r *Runner) Generate(ctx context.Context, patterns ...string) (*Result, error) {
	res, err := r.emit(ctx, patterns)
	if err != nil {
		return res, err
	}

	if res.Diagnostics.HasErrors() {
		r.log.Error().Int("errors", len(res.Diagnostics.Errors)).Msg("not writing files")

		return res, ErrDiagnostics
	}

	if r.dryRun {
		r.log.Info().Int("files", len(res.Files)).Msg("dry run, not writing files")

		return res, nil
	}

	changed, err := gen.Changed(res.Files)
	if err != nil {
		return res, err
	}

	if err := gen.WriteFiles(changed, r.dir); err != nil {
		return res, err
	}

	for _, f := range changed {
		r.log.Info().Str("file", f.Path()).Msg("wrote")
	}

	res.Written = changed

	return res, nil
}

// Check runs the pipeline in memory and reports generated files whose
// content differs from the disk with ErrStale.
func (r *Runner) Check(ctx context.Context, patterns ...string) (*Result, error) {
	res, err := r.emit(ctx, patterns)
	if err != nil {
		return res, err
	}

	if res.Diagnostics.HasErrors() {
		return res, ErrDiagnostics
	}

	stale, err := gen.Changed(res.Files)
	if err != nil {
		return res, err
	}

	res.Written = stale

	for _, f := range stale {
		r.log.Warn().Str("file", f.Path()).Msg("stale")
	}

	if len(stale) > 0 {
		return res, fmt.Errorf("%w: %d file(s)", ErrStale, len(stale))
	}

	return res, nil
}

func (r *Runner) emit(ctx context.Context, patterns []string) (*Result, error) {
	res, graph, err := r.resolve(ctx, patterns)
	if err != nil {
		return res, err
	}

	g := gen.NewGenerator(gen.GeneratorConfig{
		FileSuffix:       r.cfg.FileSuffix,
		FalliblePrefix:   r.cfg.FalliblePrefix,
		GenerateComments: r.cfg.Comments,
	})

	files, err := g.Generate(graph, res.Plans)
	if err != nil {
		return res, fmt.Errorf("generating code: %w", err)
	}

	res.Files = files
	res.Diagnostics.Merge(g.Diagnostics())

	r.log.Debug().Int("files", len(files)).Msg("generated")

	return res, nil
}

func (r *Runner) resolve(ctx context.Context, patterns []string) (*Result, *analyze.TypeGraph, error) {
	if len(patterns) == 0 {
		patterns = r.cfg.Patterns
	}

	r.log.Debug().Strs("patterns", patterns).Str("dir", r.dir).Msg("loading packages")

	a := analyze.NewAnalyzer(analyze.WithTagKey(r.cfg.Tag), analyze.WithDir(r.dir))

	graph, err := a.LoadPackages(ctx, patterns...)
	if err != nil {
		return &Result{}, nil, err
	}

	res := &Result{Diagnostics: a.Diagnostics(), Dirs: packageDirs(graph)}

	if len(graph.Schemas) == 0 {
		res.Diagnostics.AddWarning(diagnostic.CodeNoConversions,
			fmt.Sprintf("no type with a %s directive found in %s",
				analyze.DirectivePrefix, strings.Join(patterns, " ")), "", "")
	}

	resolver := plan.NewResolver(plan.ResolutionConfig{
		Classifier: shape.NewClassifier(r.cfg.Wrappers),
	})

	for _, schema := range graph.Schemas {
		if err := ctx.Err(); err != nil {
			return res, nil, err
		}

		out := resolver.Resolve(schema)

		if out.Diagnostics.HasStructural() {
			r.log.Warn().Str("type", schema.ID.String()).Msg("type cannot be converted")
		}

		r.log.Debug().
			Str("type", schema.ID.String()).
			Int("plans", len(out.Plans)).
			Int("errors", len(out.Diagnostics.Errors)).
			Msg("resolved")

		res.Plans = append(res.Plans, out.Plans...)
		res.Diagnostics.Merge(out.Diagnostics)
	}

	return res, graph, nil
}

func packageDirs(graph *analyze.TypeGraph) []string {
	seen := make(map[string]bool)

	var dirs []string

	for _, pkg := range graph.Packages {
		if pkg.Dir == "" || seen[pkg.Dir] {
			continue
		}

		seen[pkg.Dir] = true
		dirs = append(dirs, pkg.Dir)
	}

	sort.Strings(dirs)

	return dirs
}
