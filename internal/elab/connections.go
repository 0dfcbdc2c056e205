package elab

import (
	"svelab/internal/diag"
	"svelab/internal/sema"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// connectPorts matches an instantiation's connection list against the
// instance's ports: ordered, named, or wildcard forms, with the implicit
// named forms, with implicit named resolution.
func connectPorts(comp symbols.Compilation, instScope *symbols.Scope,
	inst *symbols.InstanceSymbol, conns []*syntax.PortConnectionSyntax, opts memberOpts) {

	report := func(d diag.Diagnostic) {
		if !opts.uninstantiated {
			comp.Report(d)
		}
	}

	var ordered []*syntax.PortConnectionSyntax
	named := make(map[string]*syntax.PortConnectionSyntax)
	hasWildcard := false
	hasNamed := false

	for _, conn := range conns {
		switch conn.ConnKind {
		case syntax.ConnOrdered:
			if hasNamed || hasWildcard {
				report(diag.New(diag.MixingOrderedAndNamedPorts, conn.Span()))
				return
			}
			ordered = append(ordered, conn)
		case syntax.ConnNamed:
			if len(ordered) > 0 {
				report(diag.New(diag.MixingOrderedAndNamedPorts, conn.Span()))
				return
			}
			hasNamed = true
			if _, dup := named[conn.Name]; dup {
				report(diag.New(diag.DuplicatePortConnection, conn.Span(), conn.Name))
				continue
			}
			named[conn.Name] = conn
		case syntax.ConnWildcard:
			if len(ordered) > 0 {
				report(diag.New(diag.MixingOrderedAndNamedPorts, conn.Span()))
				return
			}
			hasWildcard = true
		}
	}

	if len(ordered) > len(inst.Ports) {
		report(diag.New(diag.TooManyPortConnections, ordered[len(inst.Ports)].Span(), len(inst.Ports)))
		ordered = ordered[:len(inst.Ports)]
	}

	used := make(map[string]bool)
	ctx := sema.NewContext(comp, instScope)
	if opts.uninstantiated {
		ctx = ctx.WithFlags(sema.FlagUninstantiated)
	}

	for i, portSym := range inst.Ports {
		switch port := portSym.(type) {
		case *symbols.PortSymbol:
			var conn *syntax.PortConnectionSyntax
			switch {
			case i < len(ordered):
				conn = ordered[i]
			case named[port.Name()] != nil:
				conn = named[port.Name()]
				used[port.Name()] = true
			}

			switch {
			case conn == nil && hasWildcard:
				connectImplicitNamed(comp, ctx, instScope, port, port.Location(), opts)
			case conn == nil:
				connectUnconnected(comp, port, report)
			case conn.ConnKind == syntax.ConnNamed && conn.Expr == nil && conn.HasParen:
				// .name() is an explicit no-connection
			case conn.ConnKind == syntax.ConnNamed && conn.Expr == nil:
				// .name resolves name in the instantiating scope
				connectImplicitNamed(comp, ctx, instScope, port, conn.Span(), opts)
			case conn.Expr == nil:
				connectUnconnected(comp, port, report)
			default:
				target := sema.TypeOf(comp, port)
				port.Connection = ctx.BindAssignment(target, conn.Expr, conn.Span())
			}

		case *symbols.InterfacePortSymbol:
			var conn *syntax.PortConnectionSyntax
			switch {
			case i < len(ordered):
				conn = ordered[i]
			case named[port.Name()] != nil:
				conn = named[port.Name()]
				used[port.Name()] = true
			}
			connectInterfacePort(comp, instScope, inst, port, conn, report)
		}
	}

	for name, conn := range named {
		if !used[name] {
			report(diag.New(diag.PortDoesNotExist, conn.Span(), name))
		}
	}
}

// connectImplicitNamed resolves a same-named signal in the instantiating
// scope; the resolved type must be equivalent (stricter than
// assignment-compatible) to the port type.
func connectImplicitNamed(comp symbols.Compilation, ctx sema.Context, instScope *symbols.Scope,
	port *symbols.PortSymbol, span source.Span, opts memberOpts) {

	result := symbols.Unqualified(instScope, port.Name(), symbols.LookupMax)
	if result.Symbol == nil {
		if !opts.uninstantiated {
			comp.Report(diag.New(diag.ImplicitNamedPortNotFound, span, port.Name()))
		}
		return
	}
	vs, ok := result.Symbol.(symbols.ValueSymbol)
	if !ok {
		if !opts.uninstantiated {
			comp.Report(diag.New(diag.ImplicitNamedPortNotFound, span, port.Name()))
		}
		return
	}
	portType := sema.TypeOf(comp, port)
	connType := sema.TypeOf(comp, vs)
	if !types.Equivalent(portType, connType) {
		if !opts.uninstantiated {
			comp.Report(diag.New(diag.ImplicitNamedPortTypeMismatch, span,
				port.Name(), portType.String(), connType.String()))
		}
		return
	}
	port.Connection = ctx.BindRef(result.Symbol, span)
}

// connectUnconnected warns unless the port declared a default value.
func connectUnconnected(comp symbols.Compilation, port *symbols.PortSymbol, report func(diag.Diagnostic)) {
	if port.Declared().InitializerSyntax() != nil {
		_, port.DefaultValue = sema.InitializerOf(comp, port)
		return
	}
	report(diag.New(diag.UnconnectedPort, port.Location(), port.Name()))
}

// connectInterfacePort resolves an interface port's connection to an
// interface instance (or a slice of an interface array).
func connectInterfacePort(comp symbols.Compilation, instScope *symbols.Scope,
	inst *symbols.InstanceSymbol, port *symbols.InterfacePortSymbol,
	conn *syntax.PortConnectionSyntax, report func(diag.Diagnostic)) {

	defName := "interface"
	if port.InterfaceDef != nil {
		defName = port.InterfaceDef.Name()
	}

	var target symbols.Symbol
	switch {
	case conn == nil:
		report(diag.New(diag.InterfacePortInvalidConnection, port.Location(), port.Name(), defName))
		return
	case conn.Expr == nil:
		// .name or wildcard style: resolve by port name
		result := symbols.Unqualified(instScope, port.Name(), symbols.LookupMax)
		target = result.Symbol
	default:
		target = resolveInstanceRef(instScope, conn.Expr)
	}

	resolved := resolveInterfaceTarget(target, inst)
	if resolved == nil || !interfaceMatches(resolved, port.InterfaceDef) {
		report(diag.New(diag.InterfacePortInvalidConnection, conn.Span(), port.Name(), defName))
		return
	}
	port.Connected = resolved
}

// resolveInstanceRef resolves a connection expression shaped like a
// hierarchical instance reference (name, possibly with element selects).
func resolveInstanceRef(scope *symbols.Scope, e syntax.ExprSyntax) symbols.Symbol {
	switch s := e.(type) {
	case *syntax.NameExprSyntax:
		return symbols.Unqualified(scope, s.Name, symbols.LookupMax).Symbol
	case *syntax.ElementSelectExprSyntax:
		base := resolveInstanceRef(scope, s.Base)
		arr, ok := base.(*symbols.InstanceArraySymbol)
		if !ok {
			return nil
		}
		ctx := sema.NewContext(scope.Compilation(), scope)
		idx, okIdx := ctx.EvalInt(s.Index)
		if !okIdx {
			return nil
		}
		return arr.ElementAt(idx)
	default:
		return nil
	}
}

// resolveInterfaceTarget maps the connected symbol to the instance wired for
// this particular array element: when an interface array's dimensions line
// up with the enclosing instance array, the array is sliced per index.
func resolveInterfaceTarget(target symbols.Symbol, inst *symbols.InstanceSymbol) symbols.Symbol {
	if target == nil {
		return nil
	}
	if arr, ok := target.(*symbols.InstanceArraySymbol); ok && len(inst.ArrayIndex) > 0 {
		sliced := arr.ElementAt(int64(inst.ArrayIndex[len(inst.ArrayIndex)-1]))
		if sliced != nil {
			return sliced
		}
	}
	return target
}

func interfaceMatches(target symbols.Symbol, def *symbols.DefinitionSymbol) bool {
	if def == nil {
		return false
	}
	switch t := target.(type) {
	case *symbols.InstanceSymbol:
		return t.Kind() == symbols.SymbolInterfaceInstance && t.Definition == def
	case *symbols.InstanceArraySymbol:
		for _, e := range t.Elements {
			if !interfaceMatches(e, def) {
				return false
			}
		}
		return len(t.Elements) > 0
	case *symbols.InterfacePortSymbol:
		return t.InterfaceDef == def
	}
	return false
}
