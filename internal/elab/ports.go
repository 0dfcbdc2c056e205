package elab

import (
	"svelab/internal/diag"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
)

// buildPorts wires an instance's ports: ANSI lists walk the header,
// non-ANSI lists index the body I/O declarations first and match header
// names against them.
func buildPorts(comp symbols.Compilation, inst *symbols.InstanceSymbol, decl *syntax.ModuleDeclSyntax) {
	switch {
	case len(decl.AnsiPorts) > 0:
		buildAnsiPorts(comp, inst, decl)
	case len(decl.NonAnsiPorts) > 0:
		buildNonAnsiPorts(comp, inst, decl)
	}
}

func buildAnsiPorts(comp symbols.Compilation, inst *symbols.InstanceSymbol, decl *syntax.ModuleDeclSyntax) {
	scope := inst.AsScope()

	// direction, type, and net-type default from the previous port
	lastDir := syntax.DirInput
	var lastNetType syntax.TokenKind
	lastVar := false

	for _, p := range decl.AnsiPorts {
		dir := p.Dir
		if dir == syntax.DirNone {
			dir = lastDir
		} else {
			// an explicit direction resets the inherited port kind
			lastNetType = 0
			lastVar = false
		}
		netKw := p.NetType
		if netKw == 0 && !p.IsVar {
			netKw = lastNetType
		}
		isVar := p.IsVar || lastVar

		// interface ports: explicit modport form or a named type resolving
		// to an interface definition
		if ifPort := tryInterfacePort(comp, scope, p); ifPort != nil {
			scope.AddMember(ifPort)
			inst.Ports = append(inst.Ports, ifPort)
			lastDir = dir
			continue
		}

		port := symbols.NewPortSymbol(p.Name, p.NameSpan, p, dir)

		// the internal symbol is a net unless the port is explicitly a
		// variable, or an output with a declared data type
		internalIsVar := isVar || dir == syntax.DirRef
		if dir == syntax.DirOutput && !isNetHeader(netKw) {
			if _, implicit := p.Type.(*syntax.ImplicitTypeSyntax); !implicit {
				internalIsVar = true
			}
		}
		if dir == syntax.DirInout && internalIsVar {
			comp.Report(diag.New(diag.InOutPortRequiresNet, p.NameSpan, p.Name))
			internalIsVar = false
		}
		if dir == syntax.DirRef && !internalIsVar {
			comp.Report(diag.New(diag.RefPortRequiresVariable, p.NameSpan, p.Name))
		}

		var internal symbols.Symbol
		if internalIsVar {
			v := symbols.NewVariableSymbol(p.Name, p.NameSpan, p)
			configureDeclared(v.Declared(), p.Type, p.Dims, nil)
			internal = v
		} else {
			net := symbols.NewNetSymbol(p.Name, p.NameSpan, p, netTypeFor(comp, netKw))
			configureDeclared(net.Declared(), p.Type, p.Dims, nil)
			internal = net
		}
		port.Internal = internal
		configureDeclared(port.Declared(), p.Type, p.Dims, nil)
		if p.Default != nil {
			port.Declared().SetInitializerSyntax(p.Default, p.Default.Span())
		}

		scope.AddMember(port)
		scope.Adopt(internal)
		inst.Ports = append(inst.Ports, port)

		lastDir = dir
		if p.NetType != 0 {
			lastNetType = p.NetType
		}
		if p.IsVar {
			lastVar = true
		}
	}
}

func isNetHeader(kw syntax.TokenKind) bool { return kw != 0 }

func configureDeclared(dt *symbols.DeclaredType, ts syntax.TypeSyntax, dims []*syntax.DimensionSyntax, init syntax.ExprSyntax) {
	if ts != nil {
		dt.SetTypeSyntax(ts)
	} else {
		dt.SetTypeSyntax(&syntax.ImplicitTypeSyntax{})
	}
	dt.SetDimensionSyntax(dims)
	if init != nil {
		dt.SetInitializerSyntax(init, init.Span())
	}
}

// tryInterfacePort recognizes interface ports and builds their symbol, or
// returns nil for ordinary data ports.
func tryInterfacePort(comp symbols.Compilation, scope *symbols.Scope, p *syntax.AnsiPortSyntax) *symbols.InterfacePortSymbol {
	if p.InterfaceName == "interface" {
		comp.Report(diag.New(diag.NotYetSupported, p.Span(), "generic interface ports"))
		return symbols.NewInterfacePortSymbol(p.Name, p.NameSpan, p, nil, p.ModportName)
	}
	if p.InterfaceName != "" {
		def := comp.DefinitionByName(p.InterfaceName)
		if def == nil || def.DefKind != syntax.DefInterface {
			comp.Report(diag.New(diag.DeclUnknownDefinition, p.NameSpan, p.InterfaceName))
			return symbols.NewInterfacePortSymbol(p.Name, p.NameSpan, p, nil, p.ModportName)
		}
		return symbols.NewInterfacePortSymbol(p.Name, p.NameSpan, p, def, p.ModportName)
	}
	if named, ok := p.Type.(*syntax.NamedTypeSyntax); ok && named.Package == "" {
		if def := comp.DefinitionByName(named.Name); def != nil && def.DefKind == syntax.DefInterface {
			return symbols.NewInterfacePortSymbol(p.Name, p.NameSpan, p, def, "")
		}
	}
	return nil
}

// buildNonAnsiPorts runs the two-pass construction: index every port I/O
// declaration by name, then match each header name against the index. Port
// types are finalized only after all I/O declarations are scanned, so
// signedness from the declaration applies without late mutation.
func buildNonAnsiPorts(comp symbols.Compilation, inst *symbols.InstanceSymbol, decl *syntax.ModuleDeclSyntax) {
	scope := inst.AsScope()

	type ioInfo struct {
		decl *syntax.PortIODeclSyntax
		d    *syntax.DeclaratorSyntax
	}
	ioIndex := make(map[string]ioInfo)
	var walk func(items []syntax.MemberSyntax)
	walk = func(items []syntax.MemberSyntax) {
		for _, item := range items {
			switch m := item.(type) {
			case *syntax.PortIODeclSyntax:
				for _, d := range m.Decls {
					if _, exists := ioIndex[d.Name]; !exists {
						ioIndex[d.Name] = ioInfo{decl: m, d: d}
					}
				}
			case *syntax.GenerateRegionSyntax:
				walk(m.Items)
			}
		}
	}
	walk(decl.Items)

	for _, hp := range decl.NonAnsiPorts {
		io, ok := ioIndex[hp.Name]
		if !ok {
			comp.Report(diag.New(diag.MissingPortIODeclaration, hp.Span(), hp.Name))
			continue
		}

		port := symbols.NewPortSymbol(hp.Name, hp.Span(), hp, io.decl.Dir)
		forceSigned := typeSyntaxIsSigned(io.decl.Type)

		internalIsVar := io.decl.IsVar || io.decl.Dir == syntax.DirRef
		if io.decl.Dir == syntax.DirInout && internalIsVar {
			comp.Report(diag.New(diag.InOutPortRequiresNet, hp.Span(), hp.Name))
			internalIsVar = false
		}

		var internal symbols.Symbol
		if internalIsVar {
			v := symbols.NewVariableSymbol(hp.Name, hp.Span(), io.d)
			configureDeclared(v.Declared(), io.decl.Type, io.d.Dims, nil)
			if forceSigned {
				v.Declared().SetFlags(symbols.DeclForceSigned)
			}
			internal = v
		} else {
			net := symbols.NewNetSymbol(hp.Name, hp.Span(), io.d, netTypeFor(comp, io.decl.NetType))
			configureDeclared(net.Declared(), io.decl.Type, io.d.Dims, nil)
			if forceSigned {
				net.Declared().SetFlags(symbols.DeclForceSigned)
			}
			internal = net
		}
		port.Internal = internal
		configureDeclared(port.Declared(), io.decl.Type, io.d.Dims, nil)
		if forceSigned {
			port.Declared().SetFlags(symbols.DeclForceSigned)
		}

		scope.AddMember(port)
		scope.Adopt(internal)
		inst.Ports = append(inst.Ports, port)
	}
}

func typeSyntaxIsSigned(ts syntax.TypeSyntax) bool {
	switch t := ts.(type) {
	case *syntax.ImplicitTypeSyntax:
		return t.Signing == syntax.SignSigned
	case *syntax.IntegerTypeSyntax:
		return t.Signing == syntax.SignSigned
	}
	return false
}
