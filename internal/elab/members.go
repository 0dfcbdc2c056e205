package elab

import (
	"svelab/internal/diag"
	"svelab/internal/sema"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// memberOpts threads instance-specific state through member creation.
type memberOpts struct {
	// uninstantiated marks untaken generate branches: members are still
	// created but diagnostics are suppressed and no values are produced.
	uninstantiated bool
	// paramClones maps parameter names to the per-instance clones that get
	// installed in place of body parameter declarations.
	paramClones map[string]*symbols.ParameterSymbol
}

// MemberOptions returns the default member-creation options for package and
// compilation-unit scopes.
func MemberOptions() memberOpts { return memberOpts{} }

// AddMembers populates a scope from syntax items in source order. Generate
// constructs and instantiations become deferred members so their expansion
// happens on first lookup, once the enclosing scope is complete.
func AddMembers(comp symbols.Compilation, scope *symbols.Scope, items []syntax.MemberSyntax, opts memberOpts) {
	for _, item := range items {
		addMember(comp, scope, item, opts)
	}
}

func addMember(comp symbols.Compilation, scope *symbols.Scope, item syntax.MemberSyntax, opts memberOpts) {
	switch m := item.(type) {
	case *syntax.EmptyMemberSyntax:
		scope.AddMember(symbols.NewEmptyMemberSymbol(m.Span()))

	case *syntax.ImportDeclSyntax:
		for _, imp := range m.Items {
			if imp.Wildcard {
				scope.AddMember(symbols.NewWildcardImportSymbol(imp.Package, imp.Span(), imp))
			} else {
				scope.AddMember(symbols.NewExplicitImportSymbol(imp.Package, imp.Name, imp.Span(), imp))
			}
		}

	case *syntax.ParamDeclSyntax:
		addParamDecl(comp, scope, m, opts)

	case *syntax.TypedefDeclSyntax:
		alias := symbols.NewTypeAliasSymbol(m.Name, m.NameSpan, m)
		dt := alias.Declared()
		dt.SetTypeSyntax(m.Type)
		dt.SetDimensionSyntax(m.Dims)
		scope.AddMember(alias)

	case *syntax.ForwardTypedefDeclSyntax:
		scope.AddMember(symbols.NewForwardingTypedefSymbol(m.Name, m.Span(), m))

	case *syntax.NetDeclSyntax:
		netType := netTypeFor(comp, m.NetType)
		for _, d := range m.Decls {
			net := symbols.NewNetSymbol(d.Name, d.Span(), m, netType)
			dt := net.Declared()
			dt.SetTypeSyntax(m.Type)
			dt.SetDimensionSyntax(d.Dims)
			if d.Init != nil {
				dt.SetInitializerSyntax(d.Init, d.EqSpan)
			}
			scope.AddMember(net)
		}

	case *syntax.VarDeclMemberSyntax:
		for _, d := range m.Decls {
			v := symbols.NewVariableSymbol(d.Name, d.Span(), m)
			v.IsConst = m.IsConst
			dt := v.Declared()
			dt.SetTypeSyntax(m.Type)
			dt.SetDimensionSyntax(d.Dims)
			if d.Init != nil {
				dt.SetInitializerSyntax(d.Init, d.EqSpan)
			}
			scope.AddMember(v)
		}

	case *syntax.ContinuousAssignSyntax:
		for _, a := range m.Assignments {
			scope.AddMember(symbols.NewContinuousAssignSymbol(a.Span(), a))
		}

	case *syntax.FunctionDeclSyntax:
		addFunctionDecl(comp, scope, m)

	case *syntax.GenvarDeclSyntax:
		for i, name := range m.Names {
			scope.AddMember(symbols.NewGenvarSymbol(name, m.NameSpans[i], m))
		}

	case *syntax.GenerateRegionSyntax:
		AddMembers(comp, scope, m.Items, opts)

	case *syntax.GenerateBlockSyntax:
		block := symbols.NewGenerateBlockSymbol(comp, m.Label, m.Span(), m)
		block.Uninstantiated = opts.uninstantiated
		scope.AddMember(block)
		AddMembers(comp, block.AsScope(), m.Items, opts)

	case *syntax.IfGenerateSyntax:
		gen := m
		scope.AddDeferredMember(m, func() []symbols.Symbol {
			return expandIfGenerate(comp, scope, gen, opts)
		})

	case *syntax.CaseGenerateSyntax:
		gen := m
		scope.AddDeferredMember(m, func() []symbols.Symbol {
			return expandCaseGenerate(comp, scope, gen, opts)
		})

	case *syntax.LoopGenerateSyntax:
		gen := m
		scope.AddDeferredMember(m, func() []symbols.Symbol {
			return expandLoopGenerate(comp, scope, gen, opts)
		})

	case *syntax.InstantiationSyntax:
		inst := m
		scope.AddDeferredMember(m, func() []symbols.Symbol {
			return expandInstantiation(comp, scope, inst, opts)
		})

	case *syntax.ModportDeclSyntax:
		for _, mpItem := range m.Items {
			mp := symbols.NewModportSymbol(comp, mpItem.Name, mpItem.NameSpan, m)
			scope.AddMember(mp)
			item := mpItem
			mp.AsScope().AddDeferredMember(m, func() []symbols.Symbol {
				return expandModportPorts(comp, scope, item)
			})
		}

	case *syntax.PortIODeclSyntax:
		// consumed by the non-ANSI port builder

	case *syntax.ProceduralBlockSyntax:
		scope.AddMember(symbols.NewProceduralBlockSymbol(comp, m.Span(), m.ProcKind, m))

	case *syntax.ModuleDeclSyntax:
		if !opts.uninstantiated {
			comp.Report(diag.New(diag.NotYetSupported, m.NameSpan, "nested module declarations"))
		}

	case *syntax.UnsupportedMemberSyntax:
		if !opts.uninstantiated {
			comp.Report(diag.New(diag.NotYetSupported, m.Span(), m.What))
		}
	}
}

// addParamDecl installs either the instance's pre-resolved clone or a fresh
// parameter (packages and compilation units).
func addParamDecl(comp symbols.Compilation, scope *symbols.Scope, m *syntax.ParamDeclSyntax, opts memberOpts) {
	for _, d := range m.Decls {
		if m.IsTypeParam {
			tp := symbols.NewTypeParameterSymbol(d.Name, d.Span(), m, m.IsLocal)
			if d.Init != nil {
				tp.Declared().SetTypeSyntax(typeFromExprSyntax(d.Init))
			}
			scope.AddMember(tp)
			continue
		}
		if clone, ok := opts.paramClones[d.Name]; ok {
			scope.AddMember(clone)
			continue
		}
		p := symbols.NewParameterSymbol(d.Name, d.Span(), m, m.IsLocal, false)
		dt := p.Declared()
		dt.SetFlags(symbols.DeclRequireConstant | symbols.DeclInferImplicit)
		dt.SetTypeSyntax(m.Type)
		dt.SetDimensionSyntax(d.Dims)
		if d.Init != nil {
			dt.SetInitializerSyntax(d.Init, d.EqSpan)
		}
		scope.AddMember(p)
	}
}

func addFunctionDecl(comp symbols.Compilation, scope *symbols.Scope, m *syntax.FunctionDeclSyntax) {
	sub := symbols.NewSubroutineSymbol(comp, m)
	dt := sub.Declared()
	if m.ReturnType != nil {
		dt.SetTypeSyntax(m.ReturnType)
	}
	scope.AddMember(sub)

	for _, arg := range m.Args {
		formal := symbols.NewFormalArgumentSymbol(arg.Name, arg.NameSpan, arg, arg.Dir)
		fdt := formal.Declared()
		fdt.SetTypeSyntax(arg.Type)
		fdt.SetDimensionSyntax(arg.Dims)
		if arg.Default != nil {
			fdt.SetInitializerSyntax(arg.Default, arg.Default.Span())
		}
		sub.AsScope().AddMember(formal)
		sub.Args = append(sub.Args, formal)
	}
}

// netTypeFor maps a net keyword token to the shared built-in net type.
func netTypeFor(comp symbols.Compilation, kw syntax.TokenKind) *types.NetType {
	store := comp.Types()
	switch kw {
	case syntax.KwWand:
		return store.BuiltinNet(types.NetWAnd)
	case syntax.KwWor:
		return store.BuiltinNet(types.NetWOr)
	case syntax.KwTri:
		return store.BuiltinNet(types.NetTri)
	case syntax.KwTri0:
		return store.BuiltinNet(types.NetTri0)
	case syntax.KwTri1:
		return store.BuiltinNet(types.NetTri1)
	case syntax.KwTriand:
		return store.BuiltinNet(types.NetTriAnd)
	case syntax.KwTrior:
		return store.BuiltinNet(types.NetTriOr)
	case syntax.KwTrireg:
		return store.BuiltinNet(types.NetTriReg)
	case syntax.KwSupply0:
		return store.BuiltinNet(types.NetSupply0)
	case syntax.KwSupply1:
		return store.BuiltinNet(types.NetSupply1)
	case syntax.KwUwire:
		return store.BuiltinNet(types.NetUWire)
	default:
		return store.BuiltinNet(types.NetWire)
	}
}

// expandModportPorts resolves modport entries against the enclosing
// interface scope.
func expandModportPorts(comp symbols.Compilation, enclosing *symbols.Scope, item *syntax.ModportItemSyntax) []symbols.Symbol {
	var out []symbols.Symbol
	for _, p := range item.Ports {
		mp := symbols.NewModportPortSymbol(p.Name, p.Span(), p.Dir)
		if target := enclosing.Find(p.Name); target != nil {
			mp.Target = target
		} else {
			comp.Report(diag.New(diag.UndeclaredIdentifier, p.Span(), p.Name))
		}
		out = append(out, mp)
	}
	return out
}

// BindScopeSemantics binds the members of one scope that do not resolve
// through name lookup: continuous assignments, procedural block bodies, and
// subroutine bodies. ForceElaborate handles recursion into child scopes.
func BindScopeSemantics(comp symbols.Compilation, scope *symbols.Scope) {
	for _, member := range scope.Members() {
		switch sym := member.(type) {
		case *symbols.ContinuousAssignSymbol:
			if sym.Bound() == nil {
				ctx := sema.NewContext(comp, scope)
				sym.SetBound(ctx.BindExpression(sym.AssignSyntax))
			}
		case *symbols.ProceduralBlockSymbol:
			bindProceduralBlock(comp, sym)
		case *symbols.SubroutineSymbol:
			sema.BindSubroutineBody(comp, sym)
		}
	}
}

func bindProceduralBlock(comp symbols.Compilation, block *symbols.ProceduralBlockSymbol) {
	if block.Bound() != nil {
		return
	}
	stx, ok := block.Syntax().(*syntax.ProceduralBlockSyntax)
	if !ok {
		return
	}
	ctx := sema.NewContext(comp, block.AsScope())
	block.SetBound(ctx.BindProceduralBody(stx.Body))
}

// forceValue resolves a value symbol's declared type and initializer so the
// full elaboration pass surfaces every diagnostic.
func forceValue(comp symbols.Compilation, sym symbols.ValueSymbol) {
	sema.TypeOf(comp, sym)
	if sym.Declared().InitializerSyntax() != nil {
		sema.InitializerOf(comp, sym)
	}
}
