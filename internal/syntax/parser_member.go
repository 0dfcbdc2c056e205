package syntax

import (
	"svelab/internal/diag"
)

// parseSourceText parses a whole compilation unit.
func (p *parser) parseSourceText() []MemberSyntax {
	var members []MemberSyntax
	for !p.at(EOF) {
		member := p.parseMember(true)
		if member != nil {
			members = append(members, member)
		}
	}
	return members
}

// parseMember parses one item; topLevel selects which items are legal.
func (p *parser) parseMember(topLevel bool) MemberSyntax {
	tok := p.tok()
	start := tok.Span

	switch tok.Kind {
	case Semicolon:
		p.advance()
		return &EmptyMemberSyntax{node: node{start}}

	case KwModule, KwMacromodule, KwInterface, KwProgram:
		return p.parseModuleDecl()

	case KwPackage:
		return p.parsePackageDecl()

	case KwImport:
		return p.parseImportDecl()

	case KwParameter, KwLocalparam:
		return p.parseParamDecl()

	case KwTypedef:
		return p.parseTypedef()

	case KwWire, KwWand, KwWor, KwTri, KwTri0, KwTri1, KwTriand, KwTrior,
		KwTrireg, KwSupply0, KwSupply1, KwUwire:
		return p.parseNetDecl()

	case KwAssign:
		return p.parseContinuousAssign()

	case KwFunction, KwTask:
		return p.parseFunctionDecl()

	case KwGenvar:
		return p.parseGenvarDecl()

	case KwGenerate:
		p.advance()
		var items []MemberSyntax
		for !p.at(KwEndGenerate) && !p.at(EOF) {
			if item := p.parseMember(false); item != nil {
				items = append(items, item)
			}
		}
		p.expect(KwEndGenerate, "endgenerate")
		return &GenerateRegionSyntax{node: node{p.spanFrom(start)}, Items: items}

	case KwIf:
		return p.parseIfGenerate()

	case KwCase:
		return p.parseCaseGenerate()

	case KwFor:
		return p.parseLoopGenerate()

	case KwBegin:
		return p.parseGenerateBlock()

	case KwModport:
		return p.parseModportDecl()

	case KwInput, KwOutput, KwInout, KwRef:
		return p.parsePortIODecl()

	case KwInitial, KwAlways, KwAlwaysComb, KwAlwaysFF, KwAlwaysLatch:
		return p.parseProceduralBlock()

	case KwVar, KwConst, KwLogic, KwReg, KwBit, KwByte, KwShortint, KwInt,
		KwLongint, KwInteger, KwTime, KwReal, KwShortreal, KwRealtime,
		KwString, KwEvent, KwChandle, KwEnum, KwStruct, KwUnion:
		return p.parseVarDeclMember()

	case KwClass:
		p.advance()
		p.skipToMatching(KwClass, Identifier) // consume through endclass
		return &UnsupportedMemberSyntax{node: node{p.spanFrom(start)}, What: "class declaration"}

	case KwNettype:
		p.advance()
		p.skipPast(Semicolon)
		return &UnsupportedMemberSyntax{node: node{p.spanFrom(start)}, What: "nettype declaration"}

	case KwDefparam:
		p.advance()
		p.skipPast(Semicolon)
		return &UnsupportedMemberSyntax{node: node{p.spanFrom(start)}, What: "defparam"}

	case Identifier:
		if !topLevel {
			return p.parseInstantiationOrVarDecl()
		}
		p.report(diag.SynExpectMember, tok.Span)
		p.skipPast(Semicolon)
		return nil

	default:
		p.report(diag.SynExpectMember, tok.Span)
		p.advance()
		return nil
	}
}

// skipToMatching consumes tokens until the matching end keyword of an
// unsupported construct; crude but enough to keep parsing afterwards.
func (p *parser) skipToMatching(_ TokenKind, _ TokenKind) {
	hasEnd := false
	for i := 0; p.peek(i).Kind != EOF; i++ {
		if t := p.peek(i); t.Kind == Identifier && t.Text == "endclass" {
			hasEnd = true
			break
		}
	}
	for !p.at(EOF) {
		if p.at(Identifier) && p.tok().Text == "endclass" {
			p.advance()
			return
		}
		if p.at(Semicolon) && !hasEnd {
			// class without body support: stop at first semicolon if no
			// endclass follows
			p.advance()
			return
		}
		p.advance()
	}
}

func (p *parser) parseModuleDecl() MemberSyntax {
	tok := p.advance()
	start := tok.Span

	kind := DefModule
	endKw, endText := KwEndModule, "endmodule"
	switch tok.Kind {
	case KwInterface:
		kind = DefInterface
		endKw, endText = KwEndInterface, "endinterface"
	case KwProgram:
		kind = DefProgram
		endKw, endText = KwEndProgram, "endprogram"
	}

	name := p.expectIdent()
	decl := &ModuleDeclSyntax{DefKind: kind, Name: name.Text, NameSpan: name.Span}

	// header package imports
	for p.at(KwImport) {
		if imp, ok := p.parseImportDecl().(*ImportDeclSyntax); ok {
			decl.HeaderImports = append(decl.HeaderImports, imp)
		}
	}

	// parameter port list
	if p.at(Hash) {
		p.advance()
		p.expect(LParen, "(")
		decl.ParamPorts = p.parseParamPortList()
		p.expect(RParen, ")")
	}

	// port list
	if p.at(LParen) {
		p.advance()
		decl.HasPortList = true
		if !p.at(RParen) {
			p.parsePortList(decl)
		}
		p.expect(RParen, ")")
	}
	p.expect(Semicolon, ";")

	for !p.at(endKw) && !p.at(EOF) {
		if item := p.parseMember(false); item != nil {
			decl.Items = append(decl.Items, item)
		}
	}
	p.expect(endKw, endText)
	if _, ok := p.accept(Colon); ok {
		p.expectIdent()
	}
	decl.node = node{p.spanFrom(start)}
	return decl
}

func (p *parser) parseParamPortList() []*ParamPortSyntax {
	var params []*ParamPortSyntax
	isLocal := false
	var lastType TypeSyntax = &ImplicitTypeSyntax{}
	isTypeParam := false

	for {
		start := p.tok().Span
		switch p.tok().Kind {
		case KwParameter:
			p.advance()
			isLocal = false
			isTypeParam = false
			lastType = p.parseParamTypeIntro(&isTypeParam)
		case KwLocalparam:
			p.advance()
			isLocal = true
			isTypeParam = false
			lastType = p.parseParamTypeIntro(&isTypeParam)
		default:
			// continuation: a new name reusing the previous keyword/type, or
			// a fresh leading data type
			if p.startsDataTypeNotName() {
				lastType = p.parseDataType(true)
			}
		}

		decl := p.parseDeclarator()
		params = append(params, &ParamPortSyntax{
			node:        node{start.Cover(p.last)},
			IsLocal:     isLocal,
			IsTypeParam: isTypeParam,
			Type:        lastType,
			Decl:        decl,
		})
		if _, ok := p.accept(Comma); !ok {
			return params
		}
	}
}

// parseParamTypeIntro handles the token after parameter/localparam: either
// `type` (a type parameter) or a data type (possibly implicit).
func (p *parser) parseParamTypeIntro(isTypeParam *bool) TypeSyntax {
	if p.at(KwType) {
		p.advance()
		*isTypeParam = true
		return nil
	}
	return p.parseDataType(true)
}

// startsDataTypeNotName reports whether the cursor begins a data type rather
// than a bare declarator name.
func (p *parser) startsDataTypeNotName() bool {
	tok := p.tok()
	if tok.IsIntegerTypeKeyword() || tok.IsFloatTypeKeyword() ||
		tok.Kind == KwString || tok.Kind == KwEnum || tok.Kind == KwStruct ||
		tok.Kind == KwUnion || tok.Kind == KwSigned || tok.Kind == KwUnsigned ||
		tok.Kind == LBracket {
		return true
	}
	// `T name`: identifier followed by identifier is a named type
	return tok.Kind == Identifier && p.peek(1).Kind == Identifier
}

func (p *parser) parseDeclarator() *DeclaratorSyntax {
	name := p.expectIdent()
	decl := &DeclaratorSyntax{node: node{name.Span}, Name: name.Text}
	for p.at(LBracket) {
		decl.Dims = append(decl.Dims, p.parseDimension())
	}
	if eq, ok := p.accept(Eq); ok {
		decl.EqSpan = eq.Span
		decl.Init = p.parseExpr()
	}
	decl.node = node{name.Span.Cover(p.last)}
	return decl
}

// parsePortList fills either AnsiPorts or NonAnsiPorts depending on what the
// first port looks like.
func (p *parser) parsePortList(decl *ModuleDeclSyntax) {
	if p.at(Identifier) && (p.peek(1).Kind == Comma || p.peek(1).Kind == RParen) {
		// non-ANSI: bare name list
		for {
			name := p.expectIdent()
			decl.NonAnsiPorts = append(decl.NonAnsiPorts,
				&NonAnsiPortSyntax{node: node{name.Span}, Name: name.Text})
			if _, ok := p.accept(Comma); !ok {
				return
			}
		}
	}
	for {
		decl.AnsiPorts = append(decl.AnsiPorts, p.parseAnsiPort())
		if _, ok := p.accept(Comma); !ok {
			return
		}
	}
}

func (p *parser) parseAnsiPort() *AnsiPortSyntax {
	start := p.tok().Span
	port := &AnsiPortSyntax{}

	switch p.tok().Kind {
	case KwInput:
		p.advance()
		port.Dir = DirInput
	case KwOutput:
		p.advance()
		port.Dir = DirOutput
	case KwInout:
		p.advance()
		port.Dir = DirInout
	case KwRef:
		p.advance()
		port.Dir = DirRef
	}

	if p.tok().IsNetType() {
		port.NetType = p.advance().Kind
	} else if _, ok := p.accept(KwVar); ok {
		port.IsVar = true
	}

	// interface port with modport: Ident.Ident Ident
	if p.at(Identifier) && p.peek(1).Kind == Dot && p.peek(2).Kind == Identifier &&
		p.peek(3).Kind == Identifier {
		ifTok := p.advance()
		p.advance() // dot
		mpTok := p.advance()
		port.InterfaceName = ifTok.Text
		port.ModportName = mpTok.Text
	} else if p.at(KwInterface) {
		p.advance()
		port.InterfaceName = "interface" // generic interface header
		if _, ok := p.accept(Dot); ok {
			port.ModportName = p.expectIdent().Text
		}
	} else {
		port.Type = p.parseDataType(true)
		// `T name` where T could be an interface definition is resolved at
		// elaboration time via the named type.
	}

	name := p.expectIdent()
	port.Name = name.Text
	port.NameSpan = name.Span
	for p.at(LBracket) {
		port.Dims = append(port.Dims, p.parseDimension())
	}
	if _, ok := p.accept(Eq); ok {
		port.Default = p.parseExpr()
	}
	port.node = node{start.Cover(p.last)}
	return port
}

func (p *parser) parsePackageDecl() MemberSyntax {
	start := p.expect(KwPackage, "package").Span
	name := p.expectIdent()
	p.expect(Semicolon, ";")

	decl := &PackageDeclSyntax{Name: name.Text, NameSpan: name.Span}
	for !p.at(KwEndPackage) && !p.at(EOF) {
		if item := p.parseMember(false); item != nil {
			decl.Items = append(decl.Items, item)
		}
	}
	p.expect(KwEndPackage, "endpackage")
	if _, ok := p.accept(Colon); ok {
		p.expectIdent()
	}
	decl.node = node{p.spanFrom(start)}
	return decl
}

func (p *parser) parseImportDecl() MemberSyntax {
	start := p.expect(KwImport, "import").Span
	decl := &ImportDeclSyntax{}
	for {
		itemStart := p.tok().Span
		pkg := p.expectIdent()
		p.expect(ColonColon, "::")
		item := &ImportItemSyntax{Package: pkg.Text}
		if _, ok := p.accept(Star); ok {
			item.Wildcard = true
		} else {
			item.Name = p.expectIdent().Text
		}
		item.node = node{itemStart.Cover(p.last)}
		decl.Items = append(decl.Items, item)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(Semicolon, ";")
	decl.node = node{p.spanFrom(start)}
	return decl
}

func (p *parser) parseParamDecl() MemberSyntax {
	tok := p.advance()
	start := tok.Span
	isLocal := tok.Kind == KwLocalparam

	if p.at(KwType) {
		p.advance()
		decls := p.parseDeclarators()
		p.expect(Semicolon, ";")
		return &ParamDeclSyntax{node: node{p.spanFrom(start)},
			IsLocal: isLocal, IsTypeParam: true, Decls: decls}
	}

	declType := p.parseDataType(true)
	decls := p.parseDeclarators()
	p.expect(Semicolon, ";")
	return &ParamDeclSyntax{node: node{p.spanFrom(start)},
		IsLocal: isLocal, Type: declType, Decls: decls}
}

func (p *parser) parseTypedef() MemberSyntax {
	start := p.expect(KwTypedef, "typedef").Span

	// forward typedef: `typedef name;`
	if p.at(Identifier) && p.peek(1).Kind == Semicolon {
		name := p.advance()
		p.advance()
		return &ForwardTypedefDeclSyntax{node: node{p.spanFrom(start)}, Name: name.Text}
	}

	declType := p.parseDataType(false)
	name := p.expectIdent()
	var dims []*DimensionSyntax
	for p.at(LBracket) {
		dims = append(dims, p.parseDimension())
	}
	p.expect(Semicolon, ";")
	return &TypedefDeclSyntax{node: node{p.spanFrom(start)},
		Type: declType, Name: name.Text, NameSpan: name.Span, Dims: dims}
}

func (p *parser) parseNetDecl() MemberSyntax {
	netTok := p.advance()
	start := netTok.Span
	declType := p.parseDataType(true)
	decls := p.parseDeclarators()
	p.expect(Semicolon, ";")
	return &NetDeclSyntax{node: node{p.spanFrom(start)},
		NetType: netTok.Kind, Type: declType, Decls: decls}
}

func (p *parser) parseVarDeclMember() MemberSyntax {
	start := p.tok().Span
	isConst := false
	if _, ok := p.accept(KwConst); ok {
		isConst = true
	}
	p.accept(KwVar)
	declType := p.parseDataType(true)
	decls := p.parseDeclarators()
	p.expect(Semicolon, ";")
	return &VarDeclMemberSyntax{node: node{p.spanFrom(start)},
		IsConst: isConst, Type: declType, Decls: decls}
}

func (p *parser) parseContinuousAssign() MemberSyntax {
	start := p.expect(KwAssign, "assign").Span
	// optional drive strength / delay skipped structurally
	if p.at(Hash) {
		p.advance()
		p.advance()
	}
	var assigns []ExprSyntax
	for {
		assigns = append(assigns, p.parseAssignOrExpr(false))
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(Semicolon, ";")
	return &ContinuousAssignSyntax{node: node{p.spanFrom(start)}, Assignments: assigns}
}

func (p *parser) parseFunctionDecl() MemberSyntax {
	tok := p.advance()
	start := tok.Span
	isTask := tok.Kind == KwTask
	endKw, endText := KwEndFunction, "endfunction"
	if isTask {
		endKw, endText = KwEndTask, "endtask"
	}

	automatic := false
	if _, ok := p.accept(KwAutomatic); ok {
		automatic = true
	}
	p.accept(KwStatic)

	var returnType TypeSyntax
	if !isTask {
		if p.at(Identifier) && p.peek(1).Kind == LParen {
			// no return type: function name(...)
			returnType = &ImplicitTypeSyntax{node: node{p.tok().Span}}
		} else {
			returnType = p.parseDataType(true)
		}
	}

	name := p.expectIdent()
	decl := &FunctionDeclSyntax{IsTask: isTask, Automatic: automatic,
		ReturnType: returnType, Name: name.Text, NameSpan: name.Span}

	if p.at(LParen) {
		p.advance()
		if !p.at(RParen) {
			dir := DirInput
			for {
				argStart := p.tok().Span
				switch p.tok().Kind {
				case KwInput:
					p.advance()
					dir = DirInput
				case KwOutput:
					p.advance()
					dir = DirOutput
				case KwInout:
					p.advance()
					dir = DirInout
				case KwRef:
					p.advance()
					dir = DirRef
				}
				argType := p.parseDataType(true)
				argName := p.expectIdent()
				arg := &FunctionArgSyntax{Dir: dir, Type: argType,
					Name: argName.Text, NameSpan: argName.Span}
				for p.at(LBracket) {
					arg.Dims = append(arg.Dims, p.parseDimension())
				}
				if _, ok := p.accept(Eq); ok {
					arg.Default = p.parseExpr()
				}
				arg.node = node{argStart.Cover(p.last)}
				decl.Args = append(decl.Args, arg)
				if _, ok := p.accept(Comma); !ok {
					break
				}
			}
		}
		p.expect(RParen, ")")
	}
	p.expect(Semicolon, ";")

	for !p.at(endKw) && !p.at(EOF) {
		decl.Body = append(decl.Body, p.parseStatement())
	}
	p.expect(endKw, endText)
	if _, ok := p.accept(Colon); ok {
		p.expectIdent()
	}
	decl.node = node{p.spanFrom(start)}
	return decl
}

func (p *parser) parseGenvarDecl() MemberSyntax {
	start := p.expect(KwGenvar, "genvar").Span
	decl := &GenvarDeclSyntax{}
	for {
		name := p.expectIdent()
		decl.Names = append(decl.Names, name.Text)
		decl.NameSpans = append(decl.NameSpans, name.Span)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(Semicolon, ";")
	decl.node = node{p.spanFrom(start)}
	return decl
}

func (p *parser) parseIfGenerate() MemberSyntax {
	start := p.expect(KwIf, "if").Span
	p.expect(LParen, "(")
	cond := p.parseExpr()
	p.expect(RParen, ")")
	thenMember := p.parseGenerateBody()
	var elseMember MemberSyntax
	if _, ok := p.accept(KwElse); ok {
		elseMember = p.parseGenerateBody()
	}
	return &IfGenerateSyntax{node: node{p.spanFrom(start)},
		Cond: cond, Then: thenMember, Else: elseMember}
}

func (p *parser) parseCaseGenerate() MemberSyntax {
	start := p.expect(KwCase, "case").Span
	p.expect(LParen, "(")
	expr := p.parseExpr()
	p.expect(RParen, ")")

	gen := &CaseGenerateSyntax{Expr: expr}
	for !p.at(KwEndCase) && !p.at(EOF) {
		itemStart := p.tok().Span
		var exprs []ExprSyntax
		if _, ok := p.accept(KwDefault); ok {
			p.accept(Colon)
		} else {
			for {
				exprs = append(exprs, p.parseExpr())
				if _, ok := p.accept(Comma); !ok {
					break
				}
			}
			p.expect(Colon, ":")
		}
		member := p.parseGenerateBody()
		gen.Items = append(gen.Items, &CaseGenerateItemSyntax{
			node: node{itemStart.Cover(p.last)}, Exprs: exprs, Member: member})
	}
	p.expect(KwEndCase, "endcase")
	gen.node = node{p.spanFrom(start)}
	return gen
}

func (p *parser) parseLoopGenerate() MemberSyntax {
	start := p.expect(KwFor, "for").Span
	p.expect(LParen, "(")

	gen := &LoopGenerateSyntax{}
	if _, ok := p.accept(KwGenvar); ok {
		gen.DeclaresGenvar = true
	}
	name := p.expectIdent()
	gen.GenvarName = name.Text
	gen.GenvarSpan = name.Span
	p.expect(Eq, "=")
	gen.Init = p.parseExpr()
	p.expect(Semicolon, ";")
	gen.Stop = p.parseExpr()
	p.expect(Semicolon, ";")
	gen.Iter = p.parseAssignOrExpr(false)
	p.expect(RParen, ")")
	gen.Body = p.parseGenerateBody()
	gen.node = node{p.spanFrom(start)}
	return gen
}

// parseGenerateBody parses the member after a generate condition: either a
// begin/end block or a single item.
func (p *parser) parseGenerateBody() MemberSyntax {
	if p.at(KwBegin) {
		return p.parseGenerateBlock()
	}
	return p.parseMember(false)
}

func (p *parser) parseGenerateBlock() MemberSyntax {
	start := p.expect(KwBegin, "begin").Span
	block := &GenerateBlockSyntax{}
	if _, ok := p.accept(Colon); ok {
		block.Label = p.expectIdent().Text
	}
	for !p.at(KwEnd) && !p.at(EOF) {
		if item := p.parseMember(false); item != nil {
			block.Items = append(block.Items, item)
		}
	}
	p.expect(KwEnd, "end")
	if _, ok := p.accept(Colon); ok {
		p.expectIdent()
	}
	block.node = node{p.spanFrom(start)}
	return block
}

func (p *parser) parseModportDecl() MemberSyntax {
	start := p.expect(KwModport, "modport").Span
	decl := &ModportDeclSyntax{}
	for {
		itemStart := p.tok().Span
		name := p.expectIdent()
		item := &ModportItemSyntax{Name: name.Text, NameSpan: name.Span}
		p.expect(LParen, "(")
		dir := DirInput
		for !p.at(RParen) && !p.at(EOF) {
			switch p.tok().Kind {
			case KwInput:
				p.advance()
				dir = DirInput
			case KwOutput:
				p.advance()
				dir = DirOutput
			case KwInout:
				p.advance()
				dir = DirInout
			case KwRef:
				p.advance()
				dir = DirRef
			}
			portName := p.expectIdent()
			item.Ports = append(item.Ports, &ModportPortSyntax{
				node: node{portName.Span}, Dir: dir, Name: portName.Text})
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
		p.expect(RParen, ")")
		item.node = node{itemStart.Cover(p.last)}
		decl.Items = append(decl.Items, item)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(Semicolon, ";")
	decl.node = node{p.spanFrom(start)}
	return decl
}

func (p *parser) parsePortIODecl() MemberSyntax {
	start := p.tok().Span
	dir := DirInput
	switch p.advance().Kind {
	case KwOutput:
		dir = DirOutput
	case KwInout:
		dir = DirInout
	case KwRef:
		dir = DirRef
	}

	decl := &PortIODeclSyntax{Dir: dir}
	if p.tok().IsNetType() {
		decl.NetType = p.advance().Kind
	} else if _, ok := p.accept(KwVar); ok {
		decl.IsVar = true
	}
	decl.Type = p.parseDataType(true)
	decl.Decls = p.parseDeclarators()
	p.expect(Semicolon, ";")
	decl.node = node{p.spanFrom(start)}
	return decl
}

func (p *parser) parseProceduralBlock() MemberSyntax {
	tok := p.advance()
	start := tok.Span
	kind := ProcInitial
	switch tok.Kind {
	case KwAlways:
		kind = ProcAlways
	case KwAlwaysComb:
		kind = ProcAlwaysComb
	case KwAlwaysFF:
		kind = ProcAlwaysFF
	case KwAlwaysLatch:
		kind = ProcAlwaysLatch
	}
	body := p.parseStatement()
	return &ProceduralBlockSyntax{node: node{p.spanFrom(start)}, ProcKind: kind, Body: body}
}

// parseInstantiationOrVarDecl disambiguates `mod inst(...)` from `T v;`.
func (p *parser) parseInstantiationOrVarDecl() MemberSyntax {
	// instantiation: Ident [#(...)] Ident [dims] ( ... )
	if p.peek(1).Kind == Hash {
		return p.parseInstantiation()
	}
	if p.peek(1).Kind == Identifier {
		// scan past instance name and dimensions for a paren
		i := 2
		depth := 0
		for {
			k := p.peek(i).Kind
			if k == LBracket {
				depth++
			} else if k == RBracket {
				depth--
			} else if depth == 0 {
				break
			}
			i++
		}
		if p.peek(i).Kind == LParen {
			return p.parseInstantiation()
		}
	}
	if p.peek(1).Kind == ColonColon || p.peek(1).Kind == Identifier {
		return p.parseVarDeclOfNamedType()
	}
	tok := p.tok()
	p.report(diag.SynExpectMember, tok.Span)
	p.skipPast(Semicolon)
	return nil
}

func (p *parser) parseVarDeclOfNamedType() MemberSyntax {
	start := p.tok().Span
	declType := p.parseDataType(false)
	decls := p.parseDeclarators()
	p.expect(Semicolon, ";")
	return &VarDeclMemberSyntax{node: node{p.spanFrom(start)}, Type: declType, Decls: decls}
}

func (p *parser) parseInstantiation() MemberSyntax {
	modName := p.expectIdent()
	inst := &InstantiationSyntax{ModuleName: modName.Text, NameSpan: modName.Span}

	if p.at(Hash) {
		p.advance()
		p.expect(LParen, "(")
		inst.Params = p.parseParamAssignments()
		p.expect(RParen, ")")
	}

	for {
		name := p.expectIdent()
		hier := &HierarchicalInstanceSyntax{Name: name.Text, NameSpan: name.Span}
		for p.at(LBracket) {
			hier.Dims = append(hier.Dims, p.parseDimension())
		}
		p.expect(LParen, "(")
		if !p.at(RParen) {
			for {
				hier.Connections = append(hier.Connections, p.parsePortConnection())
				if _, ok := p.accept(Comma); !ok {
					break
				}
			}
		}
		close := p.expect(RParen, ")")
		hier.node = node{name.Span.Cover(close.Span)}
		inst.Instances = append(inst.Instances, hier)
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	p.expect(Semicolon, ";")
	inst.node = node{modName.Span.Cover(p.last)}
	return inst
}

func (p *parser) parseParamAssignments() *ParamAssignmentsSyntax {
	start := p.tok().Span
	assigns := &ParamAssignmentsSyntax{node: node{start}}
	if p.at(RParen) {
		return assigns
	}
	for {
		if p.at(Dot) {
			p.advance()
			name := p.expectIdent()
			named := &NamedParamAssignSyntax{Name: name.Text, NameSpan: name.Span}
			if _, ok := p.accept(LParen); ok {
				named.HasParen = true
				if !p.at(RParen) {
					named.Expr = p.parseExpr()
				}
				p.expect(RParen, ")")
			}
			named.node = node{name.Span.Cover(p.last)}
			assigns.Named = append(assigns.Named, named)
		} else {
			assigns.Ordered = append(assigns.Ordered, p.parseExpr())
		}
		if _, ok := p.accept(Comma); !ok {
			break
		}
	}
	assigns.node = node{start.Cover(p.last)}
	return assigns
}

func (p *parser) parsePortConnection() *PortConnectionSyntax {
	start := p.tok().Span
	conn := &PortConnectionSyntax{}

	if p.at(Dot) {
		p.advance()
		if _, ok := p.accept(Star); ok {
			conn.ConnKind = ConnWildcard
			conn.node = node{start.Cover(p.last)}
			return conn
		}
		name := p.expectIdent()
		conn.ConnKind = ConnNamed
		conn.Name = name.Text
		if _, ok := p.accept(LParen); ok {
			conn.HasParen = true
			if !p.at(RParen) {
				conn.Expr = p.parseExpr()
			}
			p.expect(RParen, ")")
		}
		conn.node = node{start.Cover(p.last)}
		return conn
	}

	conn.ConnKind = ConnOrdered
	if !p.at(Comma) && !p.at(RParen) {
		conn.Expr = p.parseExpr()
	}
	conn.node = node{start.Cover(p.last)}
	return conn
}
