package elab

import (
	"svelab/internal/diag"
	"svelab/internal/sema"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// expandInstantiation turns one instantiation item into instance symbols
// (or instance arrays), resolving parameter overrides once and cloning the
// prepared list into every created instance.
func expandInstantiation(comp symbols.Compilation, scope *symbols.Scope,
	m *syntax.InstantiationSyntax, opts memberOpts) []symbols.Symbol {

	def := comp.DefinitionByName(m.ModuleName)
	if def == nil {
		if !opts.uninstantiated {
			comp.Report(diag.New(diag.DeclUnknownDefinition, m.NameSpan, m.ModuleName))
		}
		return nil
	}

	prepared := resolveParameters(comp, def, m.Params, scope)

	var out []symbols.Symbol
	for _, hier := range m.Instances {
		if len(hier.Dims) > 0 {
			out = append(out, buildInstanceArray(comp, scope, def, prepared, hier, hier.Dims, nil, opts))
			continue
		}
		out = append(out, buildInstance(comp, scope, def, prepared, hier, nil, opts))
	}
	return out
}

// buildInstanceArray expands one array dimension, recursing for nested
// dimensions. A dimension that fails to evaluate produces an empty array so
// downstream references do not cascade.
func buildInstanceArray(comp symbols.Compilation, scope *symbols.Scope,
	def *symbols.DefinitionSymbol, prepared []*symbols.ParameterSymbol,
	hier *syntax.HierarchicalInstanceSyntax, dims []*syntax.DimensionSyntax,
	path []int32, opts memberOpts) symbols.Symbol {

	ctx := sema.NewContext(comp, scope)
	rng, ok := ctx.EvalDimension(dims[0])
	if !ok {
		comp.Report(diag.New(diag.InstanceArrayRangeInvalid, dims[0].Span()))
		return symbols.NewInstanceArraySymbol(comp, hier.Name, hier.NameSpan, types.ConstantRange{})
	}

	array := symbols.NewInstanceArraySymbol(comp, hier.Name, hier.NameSpan, rng)
	for off := int64(0); off < int64(rng.Width()); off++ {
		var index int32
		if rng.IsLittleEndian() {
			index = rng.Right + int32(off)
		} else {
			index = rng.Right - int32(off)
		}
		childPath := append(append([]int32{}, path...), index)
		var child symbols.Symbol
		if len(dims) > 1 {
			child = buildInstanceArray(comp, scope, def, prepared, hier, dims[1:], childPath, opts)
		} else {
			child = buildInstance(comp, scope, def, prepared, hier, childPath, opts)
		}
		array.AsScope().AddMember(child)
		array.Elements = append(array.Elements, child)
	}
	return array
}

// buildInstance constructs one module or interface instance: header imports
// first, then cloned port parameters, then ports, then body members with
// body-parameter clones installed in place.
func buildInstance(comp symbols.Compilation, scope *symbols.Scope,
	def *symbols.DefinitionSymbol, prepared []*symbols.ParameterSymbol,
	hier *syntax.HierarchicalInstanceSyntax, path []int32, opts memberOpts) *symbols.InstanceSymbol {

	kind := symbols.SymbolModuleInstance
	if def.DefKind == syntax.DefInterface {
		kind = symbols.SymbolInterfaceInstance
	}

	name := hier.Name
	var loc = hier.NameSpan
	inst := symbols.NewInstanceSymbol(comp, kind, name, loc, def, hier)
	inst.ArrayIndex = path
	instScope := inst.AsScope()
	decl := def.Decl

	// header package imports
	for _, imp := range decl.HeaderImports {
		addMember(comp, instScope, imp, opts)
	}

	// clone the prepared parameters; port parameters install immediately,
	// body parameters install at their declaration position
	clones := make(map[string]*symbols.ParameterSymbol, len(prepared))
	inst.Parameters = make([]*symbols.ParameterSymbol, 0, len(prepared))
	for _, p := range prepared {
		clone := p.Clone()
		inst.Parameters = append(inst.Parameters, clone)
		if _, fromHeader := p.Syntax().(*syntax.ParamPortSyntax); fromHeader {
			instScope.AddMember(clone)
		} else {
			clones[p.Name()] = clone
		}
	}
	for _, tp := range def.TypeParams {
		fresh := symbols.NewTypeParameterSymbol(tp.Name(), tp.Location(), tp.Syntax(), tp.IsLocal)
		fresh.Declared().CopySyntaxFrom(tp.Declared())
		instScope.AddMember(fresh)
	}

	// ports
	buildPorts(comp, inst, decl)

	// port connections from the instantiation site
	connectPorts(comp, scope, inst, hier.Connections, opts)

	// body members in source order
	bodyOpts := opts
	bodyOpts.paramClones = clones
	AddMembers(comp, instScope, decl.Items, bodyOpts)

	return inst
}

// InstantiateTop creates a top-level instance of a definition with default
// parameters, used by the root elaboration.
func InstantiateTop(comp symbols.Compilation, def *symbols.DefinitionSymbol, root *symbols.RootSymbol) *symbols.InstanceSymbol {
	prepared := resolveParameters(comp, def, nil, root.AsScope())
	hier := &syntax.HierarchicalInstanceSyntax{Name: def.Name(), NameSpan: def.Location()}
	inst := buildInstance(comp, root.AsScope(), def, prepared, hier, nil, memberOpts{})
	root.AsScope().AddMember(inst)
	root.TopInstances = append(root.TopInstances, inst)
	return inst
}

// ForceElaborate drives the full construction of an instance tree and binds
// every lazy member, so all diagnostics surface.
func ForceElaborate(comp symbols.Compilation, scope *symbols.Scope) {
	scope.EnsureElaborated()
	for _, member := range scope.Members() {
		if block, ok := member.(*symbols.GenerateBlockSymbol); ok && block.Uninstantiated {
			// members exist for navigation but produce no values or
			// diagnostics
			block.AsScope().EnsureElaborated()
			continue
		}
		if vs, ok := member.(symbols.ValueSymbol); ok {
			if member.Kind() != symbols.SymbolEnumValue {
				forceValue(comp, vs)
			}
		}
		if scoped, ok := member.(symbols.ScopedSymbol); ok {
			ForceElaborate(comp, scoped.AsScope())
		}
	}
	BindScopeSemantics(comp, scope)
}
