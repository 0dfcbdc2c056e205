package comp

import (
	"svelab/internal/diag"
	"svelab/internal/elab"
	"svelab/internal/numeric"
	"svelab/internal/sema"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// Options configure a compilation.
type Options struct {
	// MaxDiagnostics bounds the diagnostic bag; zero uses the default.
	MaxDiagnostics int
	// TopModules names the designs to elaborate under the root; empty means
	// every module definition not instantiated elsewhere.
	TopModules []string
	// Groups controls warning group filtering.
	Groups *diag.GroupControl
}

// Compilation owns every symbol, type, and constant produced during
// elaboration: the type store with its dedup caches, the definition and
// package registries, and the diagnostic sink. It is mutable during
// elaboration and read-only afterwards.
type Compilation struct {
	opts  Options
	store *types.Store
	bag   *diag.Bag
	rep   *diag.BagReporter

	units       []*symbols.CompilationUnitSymbol
	definitions map[string]*symbols.DefinitionSymbol
	packages    map[string]*symbols.PackageSymbol
	defOrder    []*symbols.DefinitionSymbol
	pkgOrder    []*symbols.PackageSymbol
	instantiated map[string]bool

	constants map[string]numeric.Value
	netTypes  map[string]*types.NetType

	root *symbols.RootSymbol
}

// New creates an empty compilation.
func New(opts Options) *Compilation {
	bag := diag.NewBag(opts.MaxDiagnostics)
	rep := diag.NewBagReporter(bag)
	rep.Groups = opts.Groups
	return &Compilation{
		opts:         opts,
		store:        types.NewStore(),
		bag:          bag,
		rep:          rep,
		definitions:  make(map[string]*symbols.DefinitionSymbol),
		packages:     make(map[string]*symbols.PackageSymbol),
		instantiated: make(map[string]bool),
		constants:    make(map[string]numeric.Value),
		netTypes:     make(map[string]*types.NetType),
	}
}

// RegisterNetType installs a user-defined net type; the first definition of
// a name wins and the duplicate is reported by the caller.
func (c *Compilation) RegisterNetType(nt *types.NetType) bool {
	if _, exists := c.netTypes[nt.Name]; exists {
		return false
	}
	c.netTypes[nt.Name] = nt
	return true
}

// NetTypeByName returns a registered user net type or nil.
func (c *Compilation) NetTypeByName(name string) *types.NetType {
	return c.netTypes[name]
}

// Types returns the type store.
func (c *Compilation) Types() *types.Store { return c.store }

// Report adds a diagnostic to the compilation's bag.
func (c *Compilation) Report(d diag.Diagnostic) { c.rep.Report(d) }

// Diagnostics returns the accumulated diagnostic bag.
func (c *Compilation) Diagnostics() *diag.Bag { return c.bag }

// Reporter exposes the group-filtering reporter for front-end phases.
func (c *Compilation) Reporter() diag.Reporter { return c.rep }

// PackageByName implements symbols.Compilation.
func (c *Compilation) PackageByName(name string) *symbols.PackageSymbol {
	return c.packages[name]
}

// DefinitionByName implements symbols.Compilation.
func (c *Compilation) DefinitionByName(name string) *symbols.DefinitionSymbol {
	return c.definitions[name]
}

// Definitions lists registered definitions in declaration order.
func (c *Compilation) Definitions() []*symbols.DefinitionSymbol { return c.defOrder }

// UnitScopes implements symbols.Compilation: the $unit scopes consulted at
// the end of unqualified lookup.
func (c *Compilation) UnitScopes() []*symbols.Scope {
	out := make([]*symbols.Scope, 0, len(c.units))
	for _, u := range c.units {
		out = append(out, u.AsScope())
	}
	return out
}

// AddSyntaxTree installs a parsed tree: a fresh compilation unit scope is
// created, definitions and packages register globally, and other top-level
// items land in the unit scope.
func (c *Compilation) AddSyntaxTree(tree *syntax.Tree) *symbols.CompilationUnitSymbol {
	unit := symbols.NewCompilationUnitSymbol(c)
	c.units = append(c.units, unit)

	for _, member := range tree.Members {
		switch m := member.(type) {
		case *syntax.ModuleDeclSyntax:
			def := elab.CreateDefinition(c, m)
			unit.AsScope().Adopt(def)
			if _, dup := c.definitions[m.Name]; dup {
				c.Report(diag.New(diag.DeclDuplicate, m.NameSpan, m.Name))
				continue
			}
			c.definitions[m.Name] = def
			c.defOrder = append(c.defOrder, def)
			c.noteInstantiations(m.Items)

		case *syntax.PackageDeclSyntax:
			pkg := symbols.NewPackageSymbol(c, m.Name, m.NameSpan, m)
			unit.AsScope().Adopt(pkg)
			if _, dup := c.packages[m.Name]; dup {
				c.Report(diag.New(diag.DeclDuplicate, m.NameSpan, m.Name))
				continue
			}
			c.packages[m.Name] = pkg
			c.pkgOrder = append(c.pkgOrder, pkg)
			elab.AddMembers(c, pkg.AsScope(), m.Items, elab.MemberOptions())

		default:
			elab.AddMembers(c, unit.AsScope(), []syntax.MemberSyntax{member}, elab.MemberOptions())
		}
	}
	return unit
}

// noteInstantiations records which definitions are instantiated somewhere,
// so GetRoot can pick the uninstantiated ones as tops.
func (c *Compilation) noteInstantiations(items []syntax.MemberSyntax) {
	for _, item := range items {
		switch m := item.(type) {
		case *syntax.InstantiationSyntax:
			c.instantiated[m.ModuleName] = true
		case *syntax.GenerateRegionSyntax:
			c.noteInstantiations(m.Items)
		case *syntax.GenerateBlockSyntax:
			c.noteInstantiations(m.Items)
		case *syntax.IfGenerateSyntax:
			if m.Then != nil {
				c.noteInstantiations([]syntax.MemberSyntax{m.Then})
			}
			if m.Else != nil {
				c.noteInstantiations([]syntax.MemberSyntax{m.Else})
			}
		case *syntax.CaseGenerateSyntax:
			for _, item := range m.Items {
				c.noteInstantiations([]syntax.MemberSyntax{item.Member})
			}
		case *syntax.LoopGenerateSyntax:
			if m.Body != nil {
				c.noteInstantiations([]syntax.MemberSyntax{m.Body})
			}
		}
	}
}

// GetRoot elaborates (once) and returns the design root holding the tree of
// top-level instances.
func (c *Compilation) GetRoot() *symbols.RootSymbol {
	if c.root != nil {
		return c.root
	}
	c.root = symbols.NewRootSymbol(c)

	tops := c.pickTops()
	for _, def := range tops {
		elab.InstantiateTop(c, def, c.root)
	}
	return c.root
}

func (c *Compilation) pickTops() []*symbols.DefinitionSymbol {
	if len(c.opts.TopModules) > 0 {
		var out []*symbols.DefinitionSymbol
		for _, name := range c.opts.TopModules {
			def := c.definitions[name]
			if def == nil {
				c.Report(diag.New(diag.DeclUnknownDefinition, source.Span{}, name))
				continue
			}
			out = append(out, def)
		}
		return out
	}
	var out []*symbols.DefinitionSymbol
	for _, def := range c.defOrder {
		if def.DefKind == syntax.DefModule && !c.instantiated[def.Name()] {
			out = append(out, def)
		}
	}
	return out
}

// Elaborate drives the whole design to completion so every lazily-deferred
// construction runs and all diagnostics surface.
func (c *Compilation) Elaborate() {
	root := c.GetRoot()
	for _, pkg := range c.pkgOrder {
		elab.ForceElaborate(c, pkg.AsScope())
	}
	for _, unit := range c.units {
		elab.ForceElaborate(c, unit.AsScope())
	}
	elab.ForceElaborate(c, root.AsScope())
}

// InternVector returns the canonical integral vector for (width, flags).
func (c *Compilation) InternVector(width uint32, flags types.IntegralFlags) types.Type {
	return c.store.Vector(width, flags)
}

// InternConstant caches constant values by their rendered form, so repeated
// identical constants share storage.
func (c *Compilation) InternConstant(v numeric.Value) numeric.Value {
	key := v.String()
	if cached, ok := c.constants[key]; ok {
		return cached
	}
	c.constants[key] = v
	return v
}

// CreateScriptScope builds a detached scope for incremental/REPL binding:
// names resolve against it and every compilation-unit scope.
func (c *Compilation) CreateScriptScope() *ScriptScope {
	unit := symbols.NewCompilationUnitSymbol(c)
	c.units = append(c.units, unit)
	return &ScriptScope{comp: c, unit: unit}
}

// ScriptScope supports binding and evaluating expressions typed at a REPL.
type ScriptScope struct {
	comp *Compilation
	unit *symbols.CompilationUnitSymbol
}

// AddMembers parses additional declarations into the script scope.
func (s *ScriptScope) AddMembers(items []syntax.MemberSyntax) {
	elab.AddMembers(s.comp, s.unit.AsScope(), items, elab.MemberOptions())
}

// EvalExpression binds and evaluates one expression with constant-function
// restrictions relaxed.
func (s *ScriptScope) EvalExpression(e syntax.ExprSyntax) numeric.Value {
	ctx := sema.NewContext(s.comp, s.unit.AsScope())
	bound := ctx.BindExpression(e)
	ev := sema.NewEvalContext(s.comp)
	ev.ScriptEval = true
	return ev.Eval(bound)
}
