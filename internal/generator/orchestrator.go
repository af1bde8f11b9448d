package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/buildit/internal/analyzer"
	"github.com/origadmin/buildit/internal/model"
	"github.com/origadmin/buildit/internal/planner"
	"github.com/origadmin/buildit/internal/sink"
	"github.com/origadmin/buildit/internal/template"
	"github.com/origadmin/buildit/internal/types"
)

// Status is the outcome of processing one package.
type Status int

const (
	// StatusSkipped: the package has no selected structs and no generated file.
	StatusSkipped Status = iota
	// StatusUnchanged: the generated file is up to date.
	StatusUnchanged
	// StatusWritten: the generated file was created or replaced.
	StatusWritten
	// StatusRemoved: a stale generated file was removed.
	StatusRemoved
	// StatusStale: check mode found the generated file out of date.
	StatusStale
)

func (s Status) String() string {
	switch s {
	case StatusSkipped:
		return "skipped"
	case StatusUnchanged:
		return "unchanged"
	case StatusWritten:
		return "written"
	case StatusRemoved:
		return "removed"
	case StatusStale:
		return "stale"
	default:
		return "unknown"
	}
}

// Result describes one processed package. Status tells what happened to the
// generated file, which may have been written even when the package has
// diagnostics.
type Result struct {
	Path        string
	Dir         string
	File        string
	Status      Status
	Methods     int
	Diagnostics model.Diagnostics
	// Content is the rendered file, nil when nothing was rendered.
	Content []byte
}

// Failed reports whether the package has diagnostics.
func (r *Result) Failed() bool {
	return len(r.Diagnostics) > 0
}

// Report is the outcome of a run, with results in load order.
type Report struct {
	Results     []*Result
	Diagnostics model.Diagnostics
}

// Err returns the diagnostics of the run as an error, nil when there are none.
func (r *Report) Err() error {
	return r.Diagnostics.Err()
}

// Stale returns the files check mode found out of date.
func (r *Report) Stale() []string {
	var files []string
	for _, res := range r.Results {
		if res.Status == StatusStale {
			files = append(files, res.File)
		}
	}
	return files
}

// Dirs returns the directories of the processed packages.
func (r *Report) Dirs() []string {
	dirs := make([]string, 0, len(r.Results))
	for _, res := range r.Results {
		if res.Dir != "" {
			dirs = append(dirs, res.Dir)
		}
	}
	return dirs
}

// Options configures an Orchestrator.
type Options struct {
	Walker analyzer.Options
	// Planner configures naming; the zero value uses planner.DefaultOptions.
	Planner planner.Options
	// Header is the template of the generated file header.
	Header string
	// Version is passed to the header template.
	Version string
	// Concurrency bounds the packages processed at once; 0 uses GOMAXPROCS.
	Concurrency int
	// Check renders without writing and reports stale files.
	Check bool
}

// Orchestrator runs the load, walk, plan, render and write phases.
type Orchestrator struct {
	opts    Options
	loader  analyzer.Loader
	walker  *analyzer.Walker
	planner model.Planner
	sink    sink.Sink
}

// NewOrchestrator creates an orchestrator loading packages with loader and
// writing files to out.
func NewOrchestrator(loader analyzer.Loader, out sink.Sink, opts Options) *Orchestrator {
	if opts.Walker.OutputFile == "" {
		opts.Walker.OutputFile = types.DefaultOutputFile
	}
	if opts.Header == "" {
		opts.Header = types.DefaultHeader
	}
	if opts.Planner == (planner.Options{}) {
		opts.Planner = planner.DefaultOptions()
	}
	return &Orchestrator{
		opts:    opts,
		loader:  loader,
		walker:  analyzer.NewWalker(opts.Walker),
		planner: planner.NewPlanner(opts.Planner),
		sink:    out,
	}
}

// Run processes the packages matching patterns. A field or struct with a
// diagnostic gets no methods but does not stop its siblings or the other
// packages; the diagnostics are collected in the report. The returned error is reserved for operational failures.
func (o *Orchestrator) Run(ctx context.Context, patterns ...string) (*Report, error) {
	pkgs, err := o.loader.Load(ctx, patterns...)
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(pkgs))
	g, gctx := errgroup.WithContext(ctx)
	limit := o.opts.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, pkg := range pkgs {
		g.Go(func() error {
			res, err := o.Process(gctx, pkg)
			if err != nil {
				return fmt.Errorf("failed to process %s: %w", pkg.PkgPath, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{Results: results}
	for _, res := range results {
		report.Diagnostics = append(report.Diagnostics, res.Diagnostics...)
	}
	slog.Info("Generation finished", "packages", len(results), "diagnostics", len(report.Diagnostics))
	return report, nil
}

// Process generates the builder file of a single loaded package.
func (o *Orchestrator) Process(ctx context.Context, pkg *packages.Package) (*Result, error) {
	return o.ProcessPackage(ctx, o.walker.Walk(pkg))
}

// ProcessPackage plans, renders and writes an analysed package.
func (o *Orchestrator) ProcessPackage(ctx context.Context, pkg *model.Package) (*Result, error) {
	res := &Result{Path: pkg.Path, Dir: pkg.Dir}
	if pkg.Dir == "" {
		return nil, fmt.Errorf("package %s has no directory", pkg.Path)
	}
	res.File = filepath.Join(pkg.Dir, o.opts.Walker.OutputFile)

	plan := o.planner.Plan(pkg)
	res.Diagnostics = plan.Diagnostics
	res.Methods = plan.MethodCount()
	if res.Failed() {
		slog.Warn("Package has diagnostics, generating the remaining methods",
			"pkg", pkg.Path, "diagnostics", len(plan.Diagnostics), "methods", res.Methods)
	}

	existing, err := o.sink.ReadFile(ctx, res.File)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", res.File, err)
	}
	exists := err == nil

	if len(plan.Structs) == 0 {
		return o.clean(ctx, res, existing, exists)
	}

	header, err := template.Header(o.opts.Header, template.HeaderData{
		Application: types.Application,
		Version:     o.opts.Version,
		Package:     plan.Name,
		Path:        plan.Path,
		File:        o.opts.Walker.OutputFile,
	})
	if err != nil {
		return nil, err
	}
	content, err := NewGenerator(header).Generate(plan)
	if err != nil {
		return nil, err
	}
	res.Content = content

	switch {
	case exists && bytes.Equal(existing, content):
		res.Status = StatusUnchanged
	case o.opts.Check:
		res.Status = StatusStale
	default:
		if err := o.sink.WriteFile(ctx, res.File, content); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", res.File, err)
		}
		res.Status = StatusWritten
		slog.Info("Wrote builder methods", "file", res.File, "methods", res.Methods)
	}
	return res, nil
}

// clean removes the output file of a package without selected structs when
// it is a generated file.
func (o *Orchestrator) clean(ctx context.Context, res *Result, existing []byte, exists bool) (*Result, error) {
	res.Status = StatusSkipped
	if !exists || !isGenerated(res.File, existing) {
		return res, nil
	}
	if o.opts.Check {
		res.Status = StatusStale
		return res, nil
	}
	if err := o.sink.Remove(ctx, res.File); err != nil {
		return nil, err
	}
	res.Status = StatusRemoved
	slog.Info("Removed stale generated file", "file", res.File)
	return res, nil
}

// isGenerated reports whether content carries a "Code generated ... DO NOT
// EDIT." comment before its package clause.
func isGenerated(filename string, content []byte) bool {
	f, err := parser.ParseFile(token.NewFileSet(), filename, content, parser.PackageClauseOnly|parser.ParseComments)
	if err != nil {
		return false
	}
	return ast.IsGenerated(f)
}
