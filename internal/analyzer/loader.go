package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/tools/go/packages"
)

// LoadMode is the information needed to walk struct declarations and resolve
// the types of their fields.
const LoadMode = packages.NeedName | packages.NeedFiles | packages.NeedSyntax |
	packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports

// Loader loads the Go packages matching a set of patterns.
type Loader interface {
	Load(ctx context.Context, patterns ...string) ([]*packages.Package, error)
}

// PackagesLoader loads packages with golang.org/x/tools/go/packages.
type PackagesLoader struct {
	// Dir is the working directory patterns are resolved in.
	Dir string
	// Tags are the build tags passed to the build system.
	Tags []string
}

// NewPackagesLoader creates a loader resolving patterns in dir.
func NewPackagesLoader(dir string, tags []string) *PackagesLoader {
	return &PackagesLoader{Dir: dir, Tags: tags}
}

// Load loads the packages matching patterns. Type errors are tolerated: the
// package may call builder methods that have not been generated yet. Errors
// that leave a package without syntax are reported.
func (l *PackagesLoader) Load(ctx context.Context, patterns ...string) ([]*packages.Package, error) {
	if len(patterns) == 0 {
		patterns = []string{"."}
	}
	cfg := &packages.Config{
		Context: ctx,
		Mode:    LoadMode,
		Dir:     l.Dir,
		Tests:   false,
	}
	if len(l.Tags) > 0 {
		cfg.BuildFlags = []string{"-tags=" + strings.Join(l.Tags, ",")}
	}
	slog.Debug("Loading packages", "patterns", patterns, "dir", l.Dir, "tags", l.Tags)
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("failed to load packages: %w", err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found for patterns %v", patterns)
	}

	var failed []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			switch e.Kind {
			case packages.TypeError:
				slog.Debug("Ignoring type error", "pkg", pkg.PkgPath, "error", e.Msg, "pos", e.Pos)
			default:
				slog.Warn("Package error", "pkg", pkg.PkgPath, "error", e.Error())
				if len(pkg.Syntax) == 0 {
					failed = append(failed, e.Error())
				}
			}
		}
	}
	if len(failed) > 0 {
		return nil, fmt.Errorf("failed to load packages:\n%s", strings.Join(failed, "\n"))
	}
	return pkgs, nil
}
