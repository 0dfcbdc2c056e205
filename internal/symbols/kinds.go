package symbols

import (
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// scopedBase embeds a scope into symbols that own one.
type scopedBase struct {
	symbolBase
	scope *Scope
}

func (s *scopedBase) AsScope() *Scope { return s.scope }

func makeScoped(kind SymbolKind, name string, loc source.Span, stx syntax.Node) scopedBase {
	return scopedBase{symbolBase: makeSymbol(kind, name, loc, stx)}
}

func initScope(comp Compilation, s *scopedBase, self Symbol) {
	s.scope = NewScope(comp, self)
}

// RootSymbol is the design root holding top-level instances.
type RootSymbol struct {
	scopedBase
	TopInstances []*InstanceSymbol
}

func NewRootSymbol(comp Compilation) *RootSymbol {
	r := &RootSymbol{scopedBase: makeScoped(SymbolRoot, "$root", source.Span{}, nil)}
	initScope(comp, &r.scopedBase, r)
	return r
}

// CompilationUnitSymbol is one $unit scope per syntax tree.
type CompilationUnitSymbol struct {
	scopedBase
}

func NewCompilationUnitSymbol(comp Compilation) *CompilationUnitSymbol {
	u := &CompilationUnitSymbol{scopedBase: makeScoped(SymbolCompilationUnit, "$unit", source.Span{}, nil)}
	initScope(comp, &u.scopedBase, u)
	return u
}

// PackageSymbol is a package declaration.
type PackageSymbol struct {
	scopedBase
}

func NewPackageSymbol(comp Compilation, name string, loc source.Span, stx syntax.Node) *PackageSymbol {
	p := &PackageSymbol{scopedBase: makeScoped(SymbolPackage, name, loc, stx)}
	initScope(comp, &p.scopedBase, p)
	return p
}

// DefinitionSymbol is a module/interface/program template. Its scope holds
// the parameter declarations; the body syntax is kept for instantiation.
type DefinitionSymbol struct {
	scopedBase
	DefKind    syntax.DefinitionKind
	Decl       *syntax.ModuleDeclSyntax
	Parameters []*ParameterSymbol
	TypeParams []*TypeParameterSymbol
}

func NewDefinitionSymbol(comp Compilation, decl *syntax.ModuleDeclSyntax) *DefinitionSymbol {
	d := &DefinitionSymbol{
		scopedBase: makeScoped(SymbolDefinition, decl.Name, decl.NameSpan, decl),
		DefKind:    decl.DefKind,
		Decl:       decl,
	}
	initScope(comp, &d.scopedBase, d)
	return d
}

// InstanceSymbol is an elaborated module or interface instance.
type InstanceSymbol struct {
	scopedBase
	Definition *DefinitionSymbol
	Parameters []*ParameterSymbol
	Ports      []Symbol // *PortSymbol or *InterfacePortSymbol in port order
	ArrayIndex []int32  // path of indexes when inside instance arrays
}

func NewInstanceSymbol(comp Compilation, kind SymbolKind, name string, loc source.Span, def *DefinitionSymbol, stx syntax.Node) *InstanceSymbol {
	i := &InstanceSymbol{
		scopedBase: makeScoped(kind, name, loc, stx),
		Definition: def,
	}
	initScope(comp, &i.scopedBase, i)
	return i
}

// InstanceArraySymbol groups instances expanded from array dimensions.
type InstanceArraySymbol struct {
	scopedBase
	Range    types.ConstantRange
	Elements []Symbol // *InstanceSymbol or nested *InstanceArraySymbol
}

func NewInstanceArraySymbol(comp Compilation, name string, loc source.Span, rng types.ConstantRange) *InstanceArraySymbol {
	a := &InstanceArraySymbol{scopedBase: makeScoped(SymbolInstanceArray, name, loc, nil), Range: rng}
	initScope(comp, &a.scopedBase, a)
	return a
}

// ElementAt returns the element for a declared index.
func (a *InstanceArraySymbol) ElementAt(index int64) Symbol {
	if !a.Range.Contains(index) {
		return nil
	}
	off := a.Range.Offset(index)
	if off < 0 || off >= int64(len(a.Elements)) {
		return nil
	}
	return a.Elements[off]
}

// GenerateBlockSymbol is one elaborated generate block. Uninstantiated
// blocks are kept but marked so their contents bind without reporting.
type GenerateBlockSymbol struct {
	scopedBase
	Uninstantiated bool
	// GenvarValue is the loop value that produced this block, for blocks
	// inside a generate block array.
	GenvarValue int64
}

func NewGenerateBlockSymbol(comp Compilation, name string, loc source.Span, stx syntax.Node) *GenerateBlockSymbol {
	g := &GenerateBlockSymbol{scopedBase: makeScoped(SymbolGenerateBlock, name, loc, stx)}
	initScope(comp, &g.scopedBase, g)
	return g
}

// GenerateBlockArraySymbol groups the blocks produced by a loop generate.
type GenerateBlockArraySymbol struct {
	scopedBase
	Blocks []*GenerateBlockSymbol
}

func NewGenerateBlockArraySymbol(comp Compilation, name string, loc source.Span, stx syntax.Node) *GenerateBlockArraySymbol {
	g := &GenerateBlockArraySymbol{scopedBase: makeScoped(SymbolGenerateBlockArray, name, loc, stx)}
	initScope(comp, &g.scopedBase, g)
	return g
}

// BlockAt returns the block generated for a genvar value.
func (g *GenerateBlockArraySymbol) BlockAt(index int64) *GenerateBlockSymbol {
	for _, b := range g.Blocks {
		if b.GenvarValue == index {
			return b
		}
	}
	return nil
}

// SequentialBlockSymbol is a begin/end block inside behavioral code.
type SequentialBlockSymbol struct {
	scopedBase
}

func NewSequentialBlockSymbol(comp Compilation, name string, loc source.Span, stx syntax.Node) *SequentialBlockSymbol {
	b := &SequentialBlockSymbol{scopedBase: makeScoped(SymbolSequentialBlock, name, loc, stx)}
	initScope(comp, &b.scopedBase, b)
	return b
}

// ProceduralBlockSymbol is an initial/always block.
type ProceduralBlockSymbol struct {
	scopedBase
	ProcKind syntax.ProceduralBlockKind

	bound any // *sema.Statement body, cached by the binder
}

// Bound returns the cached bound body.
func (p *ProceduralBlockSymbol) Bound() any { return p.bound }

// SetBound caches the bound body.
func (p *ProceduralBlockSymbol) SetBound(body any) { p.bound = body }

func NewProceduralBlockSymbol(comp Compilation, loc source.Span, kind syntax.ProceduralBlockKind, stx syntax.Node) *ProceduralBlockSymbol {
	b := &ProceduralBlockSymbol{scopedBase: makeScoped(SymbolProceduralBlock, "", loc, stx), ProcKind: kind}
	initScope(comp, &b.scopedBase, b)
	return b
}

// ParameterSymbol is a parameter or localparam. Values exist only on
// parameters cloned into a specific instance; the authoritative declaration
// inside a definition stays unevaluated.
type ParameterSymbol struct {
	symbolBase
	declared DeclaredType
	IsLocal  bool
	IsPort   bool
}

func NewParameterSymbol(name string, loc source.Span, stx syntax.Node, isLocal, isPort bool) *ParameterSymbol {
	return &ParameterSymbol{
		symbolBase: makeSymbol(SymbolParameter, name, loc, stx),
		IsLocal:    isLocal,
		IsPort:     isPort,
	}
}

func (p *ParameterSymbol) Declared() *DeclaredType { return &p.declared }

// Clone builds a fresh parameter reusing the declaration's type and
// initializer syntax with an empty declared-type record, per the
// declaration/instance/evaluation split.
func (p *ParameterSymbol) Clone() *ParameterSymbol {
	c := NewParameterSymbol(p.name, p.loc, p.syntax, p.IsLocal, p.IsPort)
	c.declared.CopySyntaxFrom(&p.declared)
	return c
}

// TypeParameterSymbol is `parameter type T = ...`.
type TypeParameterSymbol struct {
	symbolBase
	declared DeclaredType
	IsLocal  bool
	Target   types.Type
}

func NewTypeParameterSymbol(name string, loc source.Span, stx syntax.Node, isLocal bool) *TypeParameterSymbol {
	return &TypeParameterSymbol{
		symbolBase: makeSymbol(SymbolTypeParameter, name, loc, stx),
		IsLocal:    isLocal,
	}
}

func (p *TypeParameterSymbol) Declared() *DeclaredType { return &p.declared }

// PortSymbol is the public face of an ANSI or non-ANSI port; Internal is the
// net or variable body code references.
type PortSymbol struct {
	symbolBase
	declared DeclaredType
	Dir      syntax.Direction
	Internal Symbol
	DefaultValue numeric.Value
	// Connection is the bound connection expression (*sema.Expression)
	// attached at the instantiation site; nil for unconnected ports.
	Connection any
}

func NewPortSymbol(name string, loc source.Span, stx syntax.Node, dir syntax.Direction) *PortSymbol {
	return &PortSymbol{symbolBase: makeSymbol(SymbolPort, name, loc, stx), Dir: dir}
}

func (p *PortSymbol) Declared() *DeclaredType { return &p.declared }

// InterfacePortSymbol is a port whose type is an interface definition.
type InterfacePortSymbol struct {
	symbolBase
	InterfaceDef *DefinitionSymbol
	ModportName  string
	// Connected is the interface instance (or array) wired at the
	// instantiation site.
	Connected Symbol
}

func NewInterfacePortSymbol(name string, loc source.Span, stx syntax.Node, def *DefinitionSymbol, modport string) *InterfacePortSymbol {
	return &InterfacePortSymbol{
		symbolBase:   makeSymbol(SymbolInterfacePort, name, loc, stx),
		InterfaceDef: def,
		ModportName:  modport,
	}
}

// NetSymbol is a net declaration.
type NetSymbol struct {
	symbolBase
	declared DeclaredType
	NetType  *types.NetType
}

func NewNetSymbol(name string, loc source.Span, stx syntax.Node, netType *types.NetType) *NetSymbol {
	return &NetSymbol{symbolBase: makeSymbol(SymbolNet, name, loc, stx), NetType: netType}
}

func (n *NetSymbol) Declared() *DeclaredType { return &n.declared }

// VariableSymbol is a variable declaration (module level or block local).
type VariableSymbol struct {
	symbolBase
	declared DeclaredType
	IsConst  bool
}

func NewVariableSymbol(name string, loc source.Span, stx syntax.Node) *VariableSymbol {
	return &VariableSymbol{symbolBase: makeSymbol(SymbolVariable, name, loc, stx)}
}

func (v *VariableSymbol) Declared() *DeclaredType { return &v.declared }

// FormalArgumentSymbol is a subroutine formal.
type FormalArgumentSymbol struct {
	symbolBase
	declared DeclaredType
	Dir      syntax.Direction
}

func NewFormalArgumentSymbol(name string, loc source.Span, stx syntax.Node, dir syntax.Direction) *FormalArgumentSymbol {
	return &FormalArgumentSymbol{symbolBase: makeSymbol(SymbolFormalArgument, name, loc, stx), Dir: dir}
}

func (f *FormalArgumentSymbol) Declared() *DeclaredType { return &f.declared }

// SubroutineSymbol is a function or task. Its scope holds the formals and
// locals; the body binds lazily.
type SubroutineSymbol struct {
	scopedBase
	declared   DeclaredType // return type
	IsTask     bool
	Args       []*FormalArgumentSymbol
	DeclSyntax *syntax.FunctionDeclSyntax

	boundBody any // *sema.Statement, cached by the binder
	bindingBody bool
	verified  bool
}

func NewSubroutineSymbol(comp Compilation, decl *syntax.FunctionDeclSyntax) *SubroutineSymbol {
	s := &SubroutineSymbol{
		scopedBase: makeScoped(SymbolSubroutine, decl.Name, decl.NameSpan, decl),
		IsTask:     decl.IsTask,
		DeclSyntax: decl,
	}
	initScope(comp, &s.scopedBase, s)
	return s
}

func (s *SubroutineSymbol) Declared() *DeclaredType { return &s.declared }

// BoundBody returns the cached bound body installed by the binder.
func (s *SubroutineSymbol) BoundBody() any { return s.boundBody }

// SetBoundBody caches the bound body.
func (s *SubroutineSymbol) SetBoundBody(body any) { s.boundBody = body }

// BeginBodyBinding guards against recursive body binding; returns false when
// already in progress.
func (s *SubroutineSymbol) BeginBodyBinding() bool {
	if s.bindingBody {
		return false
	}
	s.bindingBody = true
	return true
}

// EndBodyBinding clears the re-entry guard.
func (s *SubroutineSymbol) EndBodyBinding() { s.bindingBody = false }

// MarkVerified remembers a completed constant-function verification.
func (s *SubroutineSymbol) MarkVerified() { s.verified = true }

// Verified reports a previous successful verification.
func (s *SubroutineSymbol) Verified() bool { return s.verified }

// ModportSymbol is a named view into an interface.
type ModportSymbol struct {
	scopedBase
}

func NewModportSymbol(comp Compilation, name string, loc source.Span, stx syntax.Node) *ModportSymbol {
	m := &ModportSymbol{scopedBase: makeScoped(SymbolModport, name, loc, stx)}
	initScope(comp, &m.scopedBase, m)
	return m
}

// ModportPortSymbol is one signal exposed through a modport.
type ModportPortSymbol struct {
	symbolBase
	Dir    syntax.Direction
	Target Symbol
}

func NewModportPortSymbol(name string, loc source.Span, dir syntax.Direction) *ModportPortSymbol {
	return &ModportPortSymbol{symbolBase: makeSymbol(SymbolTransparentMember, name, loc, nil), Dir: dir}
}

// ContinuousAssignSymbol is one assignment of a continuous assign item.
type ContinuousAssignSymbol struct {
	symbolBase
	AssignSyntax syntax.ExprSyntax
	bound        any // *sema expression, cached by the binder
}

func NewContinuousAssignSymbol(loc source.Span, assign syntax.ExprSyntax) *ContinuousAssignSymbol {
	return &ContinuousAssignSymbol{
		symbolBase:   makeSymbol(SymbolContinuousAssign, "", loc, nil),
		AssignSyntax: assign,
	}
}

// Bound returns the cached bound assignment installed by the binder.
func (c *ContinuousAssignSymbol) Bound() any        { return c.bound }
func (c *ContinuousAssignSymbol) SetBound(expr any) { c.bound = expr }

// EnumValueSymbol is one enumerand injected into the enclosing scope.
type EnumValueSymbol struct {
	symbolBase
	declared DeclaredType
	EnumType types.Type
	Value    numeric.Value
}

func NewEnumValueSymbol(name string, loc source.Span, stx syntax.Node, enumType types.Type, value numeric.Value) *EnumValueSymbol {
	return &EnumValueSymbol{
		symbolBase: makeSymbol(SymbolEnumValue, name, loc, stx),
		EnumType:   enumType,
		Value:      value,
	}
}

func (e *EnumValueSymbol) Declared() *DeclaredType { return &e.declared }

// TypeAliasSymbol is a typedef.
type TypeAliasSymbol struct {
	symbolBase
	declared DeclaredType
	resolved types.Type
}

func NewTypeAliasSymbol(name string, loc source.Span, stx syntax.Node) *TypeAliasSymbol {
	return &TypeAliasSymbol{symbolBase: makeSymbol(SymbolTypeAlias, name, loc, stx)}
}

func (t *TypeAliasSymbol) Declared() *DeclaredType { return &t.declared }

// Resolved returns the alias type once the binder installed it.
func (t *TypeAliasSymbol) Resolved() types.Type        { return t.resolved }
func (t *TypeAliasSymbol) SetResolved(typ types.Type) { t.resolved = typ }

// ForwardingTypedefSymbol is `typedef name;`.
type ForwardingTypedefSymbol struct {
	symbolBase
}

func NewForwardingTypedefSymbol(name string, loc source.Span, stx syntax.Node) *ForwardingTypedefSymbol {
	return &ForwardingTypedefSymbol{symbolBase: makeSymbol(SymbolForwardingTypedef, name, loc, stx)}
}

// EmptyMemberSymbol is a stray semicolon kept for fidelity.
type EmptyMemberSymbol struct {
	symbolBase
}

func NewEmptyMemberSymbol(loc source.Span) *EmptyMemberSymbol {
	return &EmptyMemberSymbol{symbolBase: makeSymbol(SymbolEmptyMember, "", loc, nil)}
}

// ExplicitImportSymbol is `import pkg::name;`.
type ExplicitImportSymbol struct {
	symbolBase
	PackageName string
	ImportName  string
}

func NewExplicitImportSymbol(pkg, name string, loc source.Span, stx syntax.Node) *ExplicitImportSymbol {
	return &ExplicitImportSymbol{
		symbolBase:  makeSymbol(SymbolExplicitImport, name, loc, stx),
		PackageName: pkg,
		ImportName:  name,
	}
}

// Imported resolves the target symbol inside the package, or nil.
func (e *ExplicitImportSymbol) Imported(comp Compilation) Symbol {
	pkg := comp.PackageByName(e.PackageName)
	if pkg == nil {
		return nil
	}
	return pkg.AsScope().Find(e.ImportName)
}

// WildcardImportSymbol is `import pkg::*;`.
type WildcardImportSymbol struct {
	symbolBase
	PackageName string
}

func NewWildcardImportSymbol(pkg string, loc source.Span, stx syntax.Node) *WildcardImportSymbol {
	return &WildcardImportSymbol{
		symbolBase:  makeSymbol(SymbolWildcardImport, "", loc, stx),
		PackageName: pkg,
	}
}

// GenvarSymbol is a genvar declaration.
type GenvarSymbol struct {
	symbolBase
}

func NewGenvarSymbol(name string, loc source.Span, stx syntax.Node) *GenvarSymbol {
	return &GenvarSymbol{symbolBase: makeSymbol(SymbolGenvar, name, loc, stx)}
}

// TransparentMemberSymbol forwards lookup to a wrapped symbol; used for enum
// values surfaced through typedefs of imported enums.
type TransparentMemberSymbol struct {
	symbolBase
	Wrapped Symbol
}

func NewTransparentMemberSymbol(wrapped Symbol) *TransparentMemberSymbol {
	return &TransparentMemberSymbol{
		symbolBase: makeSymbol(SymbolTransparentMember, wrapped.Name(), wrapped.Location(), wrapped.Syntax()),
		Wrapped:    wrapped,
	}
}
