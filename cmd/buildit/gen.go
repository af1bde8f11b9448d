package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/origadmin/buildit/internal/analyzer"
	"github.com/origadmin/buildit/internal/config"
	"github.com/origadmin/buildit/internal/generator"
	"github.com/origadmin/buildit/internal/logger"
	"github.com/origadmin/buildit/internal/planner"
	"github.com/origadmin/buildit/internal/sink"
	"github.com/origadmin/buildit/internal/types"
	"github.com/origadmin/buildit/internal/watch"
)

// SourceFlags select the packages and structs to process.
type SourceFlags struct {
	Patterns []string `arg:"" optional:"" help:"Package patterns." default:"."`
	Type     []string `help:"Generate for the named struct even without a builder directive. Repeatable." short:"t" placeholder:"NAME"`
	Output   string   `help:"Base name of the generated file." short:"o" placeholder:"FILE"`
	Tags     []string `help:"Build tags used to load packages." placeholder:"TAG"`
}

// overrides maps the flags that were set to configuration keys.
func (f *SourceFlags) overrides(g *Globals) map[string]any {
	out := make(map[string]any)
	if f.Output != "" {
		out["output.file"] = f.Output
	}
	if len(f.Tags) > 0 {
		out["build_tags"] = f.Tags
	}
	if g.LogLevel != "" {
		out["log.level"] = g.LogLevel
	}
	if g.LogJSON {
		out["log.json"] = true
	}
	return out
}

// GenCmd generates builder methods.
type GenCmd struct {
	SourceFlags
	Watch bool `help:"Regenerate when sources change." short:"w"`
}

func (c *GenCmd) Run(g *Globals, ctx *Context) error {
	cfg, err := setup(g, c.SourceFlags.overrides(g))
	if err != nil {
		return err
	}
	o := newOrchestrator(cfg, g.Dir, &c.SourceFlags, false)

	report, err := o.Run(ctx, c.Patterns...)
	if err != nil {
		return err
	}
	failed := printReport(ctx.Stderr, report)
	if !c.Watch {
		return failed
	}

	w, err := watch.New(watch.Options{OutputFile: cfg.Output.File}, report.Dirs()...)
	if err != nil {
		return err
	}
	return w.Run(ctx, func(rctx context.Context) error {
		report, err := o.Run(rctx, c.Patterns...)
		if err != nil {
			return err
		}
		if err := printReport(ctx.Stderr, report); err != nil {
			slog.Warn("Generation finished with diagnostics", "error", err)
		}
		return nil
	})
}

// CheckCmd reports what gen would change.
type CheckCmd struct {
	SourceFlags
}

func (c *CheckCmd) Run(g *Globals, ctx *Context) error {
	cfg, err := setup(g, c.SourceFlags.overrides(g))
	if err != nil {
		return err
	}
	report, err := newOrchestrator(cfg, g.Dir, &c.SourceFlags, true).Run(ctx, c.Patterns...)
	if err != nil {
		return err
	}
	failed := printReport(ctx.Stderr, report)
	stale := report.Stale()
	for _, file := range stale {
		fmt.Fprintf(ctx.Stderr, "%s: out of date, run %s gen\n", file, types.Application)
	}
	if failed != nil {
		return failed
	}
	if len(stale) > 0 {
		return fmt.Errorf("%d generated files are out of date", len(stale))
	}
	return nil
}

// setup loads the configuration and installs the logger.
func setup(g *Globals, overrides map[string]any) (*config.Config, error) {
	cfg, err := config.NewLoader(afero.NewOsFs()).Load(g.Dir, g.Config, overrides)
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.Log.Level, cfg.Log.JSON)
	return cfg, nil
}

func newOrchestrator(cfg *config.Config, dir string, f *SourceFlags, check bool) *generator.Orchestrator {
	return generator.NewOrchestrator(
		analyzer.NewPackagesLoader(dir, cfg.BuildTags),
		sink.NewOsSink(),
		generator.Options{
			Walker: analyzer.Options{
				OutputFile: cfg.Output.File,
				Exclude:    cfg.Exclude,
				Types:      f.Type,
			},
			Planner: planner.Options{
				Wrapper:     cfg.Wrapper.Type,
				Constructor: cfg.Wrapper.Constructor,
				Prefix:      cfg.Naming.Prefix,
				Receiver:    cfg.Naming.Receiver,
			},
			Header:      cfg.Output.Header,
			Version:     buildVersion(version, commit, date, builtBy, treeState).GitVersion,
			Concurrency: cfg.Concurrency,
			Check:       check,
		},
	)
}

// printReport writes the diagnostics of a run like the Go compiler does and
// returns an error when there are any.
func printReport(w io.Writer, report *generator.Report) error {
	for _, d := range report.Diagnostics {
		fmt.Fprintln(w, d.Error())
	}
	for _, res := range report.Results {
		slog.Debug("Processed package", "pkg", res.Path, "status", res.Status.String(), "methods", res.Methods)
	}
	if n := len(report.Diagnostics); n > 0 {
		return fmt.Errorf("generation failed with %d diagnostics", n)
	}
	return nil
}
