package planner

import (
	"go/ast"
	"go/types"
	"log/slog"

	"github.com/origadmin/buildit/internal/analyzer"
	"github.com/origadmin/buildit/internal/model"
	bt "github.com/origadmin/buildit/internal/types"
)

// Options controls naming and wrapper recognition.
type Options struct {
	// Wrapper is the optional type name, e.g. "Option".
	Wrapper string
	// Constructor wraps a value into the optional type, e.g. "Some".
	Constructor string
	// Prefix is prepended to the exported field name. It may be empty.
	Prefix string
	// Receiver is the receiver name. Derived from the type name when empty.
	Receiver string
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Wrapper:     bt.DefaultWrapperType,
		Constructor: bt.DefaultConstructor,
		Prefix:      bt.DefaultPrefix,
	}
}

// Planner implements the model.Planner interface.
type Planner struct {
	opts Options
}

var _ model.Planner = (*Planner)(nil)

// NewPlanner creates a new planner.
func NewPlanner(opts Options) *Planner {
	if opts.Wrapper == "" {
		opts.Wrapper = bt.DefaultWrapperType
	}
	if opts.Constructor == "" {
		opts.Constructor = bt.DefaultConstructor
	}
	return &Planner{opts: opts}
}

// Plan creates the generation plan of a package. Diagnostics found while
// walking are carried over; fields that cannot be planned are reported and
// left out without affecting their siblings.
func (p *Planner) Plan(pkg *model.Package) *model.PackagePlan {
	plan := &model.PackagePlan{
		Name: pkg.Name,
		Path: pkg.Path,
		Dir:  pkg.Dir,
	}
	plan.Diagnostics = append(plan.Diagnostics, pkg.Diagnostics...)
	for _, s := range pkg.Structs {
		sp, diags := p.planStruct(s)
		plan.Structs = append(plan.Structs, sp)
		plan.Diagnostics = append(plan.Diagnostics, diags...)
	}
	plan.Diagnostics.Sort()
	slog.Debug("Planned package", "pkg", pkg.Path, "structs", len(plan.Structs),
		"methods", plan.MethodCount(), "diagnostics", len(plan.Diagnostics))
	return plan
}

func (p *Planner) planStruct(s *model.Struct) (*model.StructPlan, model.Diagnostics) {
	reserved := reservedNames(s)
	receiver := p.opts.Receiver
	if receiver == "" {
		receiver = ReceiverName(s.Name)
	}
	receiver = freeName(receiver, reserved)

	sp := &model.StructPlan{Struct: s, Receiver: receiver}
	var diags model.Diagnostics
	generated := make(map[string]*model.Field)

	for _, f := range s.Fields {
		m, d := p.planField(s, f)
		if d != nil {
			diags = append(diags, d)
			continue
		}
		if m == nil {
			continue
		}
		if d := collision(s, f, m.Name, generated); d != nil {
			diags = append(diags, d)
			continue
		}
		generated[m.Name] = f

		taken := map[string]bool{receiver: true}
		for name := range reserved {
			taken[name] = true
		}
		for _, name := range packageNames(m.Source) {
			taken[name] = true
		}
		m.Param = freeName(ParamName(f.Name), taken)
		slog.Debug("Planned method", "struct", s.Name, "field", f.Name, "method", m.Name, "convert", m.Convert)
		sp.Methods = append(sp.Methods, m)
	}
	return sp, diags
}

// planField returns the method of a field, nil for skipped fields, or the
// diagnostic explaining why the field cannot get one.
func (p *Planner) planField(s *model.Struct, f *model.Field) (*model.MethodPlan, *model.Diagnostic) {
	if f.DirectiveErr != nil {
		return nil, model.NewDiagnostic(model.MalformedDirective, f.TagPos, "%s.%s: %v", s.Name, f.Name, f.DirectiveErr)
	}
	if f.Skipped() {
		slog.Debug("Skipping field", "struct", s.Name, "field", f.Name)
		return nil, nil
	}
	if f.Name == "_" {
		slog.Debug("Skipping blank field", "struct", s.Name)
		return nil, nil
	}
	if f.Embedded {
		return nil, model.NewDiagnostic(model.UnsupportedShape, f.Pos,
			"%s: embedded field %s is not supported; give it a name or tag it `%s:\"skip\"`",
			s.Name, f.Name, bt.TagKey)
	}

	inner, ok := analyzer.InnerType(f.Type, p.opts.Wrapper)
	if !ok {
		return nil, model.NewDiagnostic(model.InvalidFieldType, f.Pos,
			"%s.%s: builder methods require %s[T] fields, found %s; change the field type or tag it `%s:\"skip\"`",
			s.Name, f.Name, p.opts.Wrapper, types.ExprString(f.Type), bt.TagKey)
	}

	m := &model.MethodPlan{
		Name:    MethodName(p.opts.Prefix, f.Name),
		Field:   f,
		Inner:   inner,
		Wrapper: analyzer.ResolveWrapper(f.Type, s, p.opts.Constructor),
		Convert: f.Directives.Into || s.Global.Into,
		Docs:    f.Docs,
	}
	if f.Directives.Rename != nil {
		m.Name = *f.Directives.Rename
	}
	if m.Convert {
		m.Source = analyzer.ConversionSource(innerTypeOf(s, f, inner), s.PkgPath)
		if m.Source == nil {
			slog.Debug("Accepting the inner type as is", "struct", s.Name, "field", f.Name,
				"type", types.ExprString(inner))
		}
	}
	return m, nil
}

func innerTypeOf(s *model.Struct, f *model.Field, inner ast.Expr) types.Type {
	if t := analyzer.InnerTypeOf(f.TypeOf); t != nil {
		return t
	}
	if s.Info != nil {
		return s.Info.TypeOf(inner)
	}
	return nil
}

func collision(s *model.Struct, f *model.Field, name string, generated map[string]*model.Field) *model.Diagnostic {
	switch {
	case s.HasField(name):
		return model.NewDiagnostic(model.NameCollision, f.Pos,
			"%s.%s: method %s collides with field %s", s.Name, f.Name, name, name)
	case s.Methods[name]:
		return model.NewDiagnostic(model.NameCollision, f.Pos,
			"%s.%s: method %s is already declared", s.Name, f.Name, name)
	case generated[name] != nil:
		return model.NewDiagnostic(model.NameCollision, f.Pos,
			"%s.%s: method %s is already generated for field %s", s.Name, f.Name, name, generated[name].Name)
	}
	return nil
}

// reservedNames collects the identifiers a receiver or parameter must not
// shadow in a method body: import names, type parameters and every
// identifier used in field types.
func reservedNames(s *model.Struct) map[string]bool {
	names := make(map[string]bool)
	for name := range s.Imports {
		names[name] = true
	}
	for _, tp := range s.TypeParams {
		names[tp.Name] = true
	}
	for _, f := range s.Fields {
		if f.Type == nil {
			continue
		}
		ast.Inspect(f.Type, func(n ast.Node) bool {
			if id, ok := n.(*ast.Ident); ok {
				names[id.Name] = true
			}
			return true
		})
	}
	return names
}

// packageNames returns the names of the packages referenced by t.
func packageNames(t types.Type) []string {
	if t == nil {
		return nil
	}
	var names []string
	seen := make(map[types.Type]bool)
	var visit func(types.Type)
	visit = func(t types.Type) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		switch t := t.(type) {
		case *types.Alias:
			visit(types.Unalias(t))
		case *types.Named:
			if pkg := t.Obj().Pkg(); pkg != nil {
				names = append(names, pkg.Name())
			}
			if args := t.TypeArgs(); args != nil {
				for i := 0; i < args.Len(); i++ {
					visit(args.At(i))
				}
			}
		case *types.Slice:
			visit(t.Elem())
		case *types.Array:
			visit(t.Elem())
		case *types.Pointer:
			visit(t.Elem())
		case *types.Chan:
			visit(t.Elem())
		case *types.Map:
			visit(t.Key())
			visit(t.Elem())
		case *types.Signature:
			for _, tuple := range []*types.Tuple{t.Params(), t.Results()} {
				for i := 0; i < tuple.Len(); i++ {
					visit(tuple.At(i).Type())
				}
			}
		case *types.Struct:
			for i := 0; i < t.NumFields(); i++ {
				visit(t.Field(i).Type())
			}
		}
	}
	visit(t)
	return names
}
