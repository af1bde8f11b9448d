package analyzer

import (
	"go/ast"
	"go/token"
	gotypes "go/types"
	"log/slog"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/tools/go/packages"

	"github.com/origadmin/buildit/internal/directive"
	"github.com/origadmin/buildit/internal/model"
	"github.com/origadmin/buildit/internal/types"
)

// Options controls which declarations the walker selects.
type Options struct {
	// OutputFile is the base name of the generated file, which is never walked.
	OutputFile string
	// Exclude holds doublestar patterns of source files to ignore. Patterns
	// are matched against the path relative to the package directory.
	Exclude []string
	// Types selects structs by name in addition to the builder directive.
	Types []string
}

// Walker builds struct descriptors from loaded packages.
type Walker struct {
	opts  Options
	types map[string]bool
}

// NewWalker creates a new Walker.
func NewWalker(opts Options) *Walker {
	if opts.OutputFile == "" {
		opts.OutputFile = types.DefaultOutputFile
	}
	selected := make(map[string]bool, len(opts.Types))
	for _, name := range opts.Types {
		selected[name] = true
	}
	return &Walker{opts: opts, types: selected}
}

// SourceFile is one parsed file of a package.
type SourceFile struct {
	Name string
	File *ast.File
}

// Walk analyses a package loaded by go/packages.
func (w *Walker) Walk(pkg *packages.Package) *model.Package {
	files := make([]SourceFile, 0, len(pkg.Syntax))
	for _, f := range pkg.Syntax {
		files = append(files, SourceFile{Name: pkg.Fset.File(f.Pos()).Name(), File: f})
	}
	imported := make(map[string]string, len(pkg.Imports))
	for p, dep := range pkg.Imports {
		if dep != nil && dep.Name != "" {
			imported[p] = dep.Name
		}
	}
	return w.WalkFiles(WalkInput{
		Name:     pkg.Name,
		Path:     pkg.PkgPath,
		Dir:      packageDir(pkg),
		Fset:     pkg.Fset,
		Files:    files,
		Info:     pkg.TypesInfo,
		PkgNames: imported,
	})
}

// WalkInput holds the parsed sources of one package.
type WalkInput struct {
	Name  string
	Path  string
	Dir   string
	Fset  *token.FileSet
	Files []SourceFile
	// Info is optional; without it field types are unknown.
	Info *gotypes.Info
	// PkgNames maps import paths to package names when they are known.
	PkgNames map[string]string
}

// WalkFiles analyses a set of parsed files forming one package.
func (w *Walker) WalkFiles(in WalkInput) *model.Package {
	out := &model.Package{Name: in.Name, Path: in.Path, Dir: in.Dir}

	var files, others []SourceFile
	for _, sf := range in.Files {
		if filepath.Base(sf.Name) == w.opts.OutputFile {
			continue
		}
		// Methods of files that are not walked still take part in collisions.
		others = append(others, sf)
		if w.ignored(in.Dir, sf) {
			slog.Debug("Skipping file", "file", sf.Name)
			continue
		}
		files = append(files, sf)
	}
	sort.SliceStable(files, func(i, j int) bool { return files[i].Name < files[j].Name })

	methods := collectMethods(others)
	for _, sf := range files {
		imports, aliases := fileImports(sf.File, in.PkgNames)
		for _, decl := range sf.File.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts := spec.(*ast.TypeSpec)
				s := w.walkType(in, out, gd, ts)
				if s == nil {
					continue
				}
				s.Filename = sf.Name
				s.Imports = imports
				s.Aliases = aliases
				s.Methods = methods[s.Name]
				if s.Methods == nil {
					s.Methods = map[string]bool{}
				}
				out.Structs = append(out.Structs, s)
			}
		}
	}
	slog.Debug("Walked package", "pkg", in.Path, "structs", len(out.Structs), "diagnostics", len(out.Diagnostics))
	return out
}

func (w *Walker) walkType(in WalkInput, out *model.Package, gd *ast.GenDecl, ts *ast.TypeSpec) *model.Struct {
	doc := ts.Doc
	if doc == nil && !gd.Lparen.IsValid() {
		doc = gd.Doc
	}
	global, dirPos, marked, err := directive.FindStructDirective(doc)
	if !marked && !w.types[ts.Name.Name] {
		return nil
	}
	if err != nil {
		out.Diagnostics = append(out.Diagnostics,
			model.NewDiagnostic(model.MalformedDirective, in.Fset.Position(dirPos), "%s: %v", ts.Name.Name, err))
		return nil
	}
	st, ok := ts.Type.(*ast.StructType)
	if !ok || ts.Assign.IsValid() {
		out.Diagnostics = append(out.Diagnostics,
			model.NewDiagnostic(model.UnsupportedShape, in.Fset.Position(ts.Name.Pos()),
				"%s: builder generation does not work on %s", ts.Name.Name, ShapeOf(ts)))
		return nil
	}

	s := &model.Struct{
		Name:    ts.Name.Name,
		Global:  global,
		Pos:     in.Fset.Position(ts.Name.Pos()),
		PkgPath: in.Path,
		Info:    in.Info,
	}
	if ts.TypeParams != nil {
		for _, f := range ts.TypeParams.List {
			for _, n := range f.Names {
				s.TypeParams = append(s.TypeParams, &model.TypeParam{Name: n.Name, Constraint: f.Type})
			}
		}
	}
	for _, f := range st.Fields.List {
		s.Fields = append(s.Fields, w.walkField(in, s, f)...)
	}
	return s
}

func (w *Walker) walkField(in WalkInput, s *model.Struct, f *ast.Field) []*model.Field {
	base := model.Field{
		Type:       f.Type,
		Docs:       directive.DocLines(f.Doc),
		LegacySkip: directive.HasLegacySkip(f.Doc, f.Comment),
	}
	if f.Tag != nil {
		base.TagPos = in.Fset.Position(f.Tag.Pos())
		base.Directives, base.DirectiveErr = directive.ParseFieldTag(f.Tag.Value)
	}
	if base.LegacySkip {
		slog.Warn("The bare skip marker is deprecated, use the struct tag instead",
			"struct", s.Name, "pos", in.Fset.Position(f.Pos()).String(),
			"marker", types.SkipDirective, "replacement", `buildit:"skip"`)
	}
	if base.DirectiveErr == nil && !base.TagPos.IsValid() {
		base.TagPos = in.Fset.Position(f.Pos())
	}

	if len(f.Names) == 0 {
		field := base
		field.Name = embeddedName(f.Type)
		field.Embedded = true
		field.Exported = token.IsExported(field.Name)
		field.Pos = in.Fset.Position(f.Type.Pos())
		if in.Info != nil {
			field.TypeOf = in.Info.TypeOf(f.Type)
		}
		return []*model.Field{&field}
	}

	fields := make([]*model.Field, 0, len(f.Names))
	for _, name := range f.Names {
		field := base
		field.Name = name.Name
		field.Exported = name.IsExported()
		field.Pos = in.Fset.Position(name.Pos())
		if in.Info != nil {
			if obj := in.Info.Defs[name]; obj != nil {
				field.TypeOf = obj.Type()
			}
		}
		fields = append(fields, &field)
	}
	return fields
}

func (w *Walker) ignored(dir string, sf SourceFile) bool {
	base := filepath.Base(sf.Name)
	if ast.IsGenerated(sf.File) {
		return true
	}
	rel := sf.Name
	if dir != "" {
		if r, err := filepath.Rel(dir, sf.Name); err == nil {
			rel = r
		}
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.opts.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// collectMethods returns the method names declared per receiver type.
func collectMethods(files []SourceFile) map[string]map[string]bool {
	methods := make(map[string]map[string]bool)
	for _, sf := range files {
		for _, decl := range sf.File.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Recv == nil || len(fd.Recv.List) == 0 {
				continue
			}
			recv := receiverName(fd.Recv.List[0].Type)
			if recv == "" {
				continue
			}
			if methods[recv] == nil {
				methods[recv] = make(map[string]bool)
			}
			methods[recv][fd.Name.Name] = true
		}
	}
	return methods
}

func receiverName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverName(t.X)
	case *ast.ParenExpr:
		return receiverName(t.X)
	case *ast.IndexExpr:
		return receiverName(t.X)
	case *ast.IndexListExpr:
		return receiverName(t.X)
	}
	return ""
}

func embeddedName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return embeddedName(t.X)
	case *ast.SelectorExpr:
		return t.Sel.Name
	case *ast.IndexExpr:
		return embeddedName(t.X)
	case *ast.IndexListExpr:
		return embeddedName(t.X)
	}
	return ""
}

// fileImports maps the names under which a file refers to its imports and
// reports which of them are explicit aliases. Blank and dot imports are not
// addressable by a qualifier and are left out.
func fileImports(f *ast.File, names map[string]string) (map[string]string, map[string]bool) {
	imports := make(map[string]string, len(f.Imports))
	aliases := make(map[string]bool)
	for _, spec := range f.Imports {
		p, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}
		var name string
		switch n, ok := names[p]; {
		case spec.Name != nil:
			name = spec.Name.Name
			if name != "_" && name != "." {
				aliases[name] = true
			}
		case ok:
			name = n
		default:
			name = guessPackageName(p)
		}
		if name == "_" || name == "." {
			continue
		}
		imports[name] = p
	}
	return imports, aliases
}

// guessPackageName derives a package name from an import path following the
// common conventions: major version suffixes and go- prefixes are dropped.
func guessPackageName(importPath string) string {
	base := path.Base(importPath)
	if strings.HasPrefix(base, "v") && len(base) > 1 {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			base = path.Base(path.Dir(importPath))
		}
	}
	if i := strings.Index(base, ".v"); i > 0 {
		base = base[:i]
	}
	base = strings.TrimPrefix(base, "go-")
	base = strings.TrimSuffix(base, "-go")
	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}
		return r
	}, base)
}

func packageDir(pkg *packages.Package) string {
	switch {
	case len(pkg.GoFiles) > 0:
		return filepath.Dir(pkg.GoFiles[0])
	case len(pkg.CompiledGoFiles) > 0:
		return filepath.Dir(pkg.CompiledGoFiles[0])
	}
	return ""
}
