package syntax

import (
	"svelab/internal/diag"
)

// binaryOpInfo maps operator tokens to precedence levels; higher binds
// tighter. Power is right-associative.
type binaryOpInfo struct {
	op         BinaryOp
	precedence int
	rightAssoc bool
}

var binaryOps = map[TokenKind]binaryOpInfo{
	PipePipe:       {BinaryLogicalOr, 2, false},
	AmpAmp:         {BinaryLogicalAnd, 3, false},
	Pipe:           {BinaryBitwiseOr, 4, false},
	Caret:          {BinaryBitwiseXor, 5, false},
	TildeCaret:     {BinaryBitwiseXnor, 5, false},
	Amp:            {BinaryBitwiseAnd, 6, false},
	EqEq:           {BinaryEquality, 7, false},
	BangEq:         {BinaryInequality, 7, false},
	EqEqEq:         {BinaryCaseEquality, 7, false},
	BangEqEq:       {BinaryCaseInequality, 7, false},
	EqEqQuestion:   {BinaryWildcardEquality, 7, false},
	BangEqQuestion: {BinaryWildcardInequality, 7, false},
	Lt:             {BinaryLessThan, 8, false},
	LtEq:           {BinaryLessThanEqual, 8, false},
	Gt:             {BinaryGreaterThan, 8, false},
	GtEq:           {BinaryGreaterThanEqual, 8, false},
	Shl:            {BinaryLogicalShiftLeft, 9, false},
	Shr:            {BinaryLogicalShiftRight, 9, false},
	AShl:           {BinaryArithmeticShiftLeft, 9, false},
	AShr:           {BinaryArithmeticShiftRight, 9, false},
	Plus:           {BinaryAdd, 10, false},
	Minus:          {BinarySubtract, 10, false},
	Star:           {BinaryMultiply, 11, false},
	Slash:          {BinaryDivide, 11, false},
	Percent:        {BinaryMod, 11, false},
	StarStar:       {BinaryPower, 12, true},
}

var compoundAssignOps = map[TokenKind]AssignOp{
	PlusEq:    AssignAdd,
	MinusEq:   AssignSubtract,
	StarEq:    AssignMultiply,
	SlashEq:   AssignDivide,
	PercentEq: AssignMod,
	AmpEq:     AssignAnd,
	PipeEq:    AssignOr,
	CaretEq:   AssignXor,
	ShlEq:     AssignShiftLeft,
	ShrEq:     AssignShiftRight,
	AShlEq:    AssignAShiftLeft,
	AShrEq:    AssignAShiftRight,
}

// parseExpr parses a full expression without assignment operators.
func (p *parser) parseExpr() ExprSyntax {
	return p.parseTernary()
}

// parseAssignOrExpr additionally allows = and compound assignment at the top
// level (continuous assigns, for steps). allowNonBlocking reinterprets a
// top-level <= comparison as a non-blocking assignment.
func (p *parser) parseAssignOrExpr(allowNonBlocking bool) ExprSyntax {
	lhs := p.parseTernary()
	tok := p.tok()
	if tok.Kind == Eq {
		opTok := p.advance()
		rhs := p.parseAssignOrExpr(false)
		return &AssignExprSyntax{node: node{lhs.Span().Cover(rhs.Span())},
			Op: AssignPlain, Left: lhs, Right: rhs, OpSpan: opTok.Span}
	}
	if op, ok := compoundAssignOps[tok.Kind]; ok {
		opTok := p.advance()
		rhs := p.parseExpr()
		return &AssignExprSyntax{node: node{lhs.Span().Cover(rhs.Span())},
			Op: op, Left: lhs, Right: rhs, OpSpan: opTok.Span}
	}
	if allowNonBlocking {
		if bin, ok := lhs.(*BinaryExprSyntax); ok && bin.Op == BinaryLessThanEqual {
			// `a <= b` in statement position is a non-blocking assignment
			return &AssignExprSyntax{node: node{bin.Span()},
				Op: AssignPlain, NonBlocking: true, Left: bin.Left, Right: bin.Right}
		}
	}
	return lhs
}

func (p *parser) parseTernary() ExprSyntax {
	cond := p.parseBinary(0)
	if !p.at(Question) {
		return cond
	}
	p.advance()
	thenExpr := p.parseTernary()
	p.expect(Colon, ":")
	elseExpr := p.parseTernary()
	return &CondExprSyntax{node: node{cond.Span().Cover(elseExpr.Span())},
		Pred: cond, Then: thenExpr, Else: elseExpr}
}

func (p *parser) parseBinary(minPrec int) ExprSyntax {
	lhs := p.parseUnary()
	for {
		info, ok := binaryOps[p.tok().Kind]
		if !ok || info.precedence < minPrec {
			return lhs
		}
		p.advance()
		next := info.precedence + 1
		if info.rightAssoc {
			next = info.precedence
		}
		rhs := p.parseBinary(next)
		lhs = &BinaryExprSyntax{node: node{lhs.Span().Cover(rhs.Span())},
			Op: info.op, Left: lhs, Right: rhs}
	}
}

var prefixOps = map[TokenKind]UnaryOp{
	Plus:       UnaryPlus,
	Minus:      UnaryMinus,
	Bang:       UnaryLogicalNot,
	Tilde:      UnaryBitwiseNot,
	Amp:        UnaryReductionAnd,
	Pipe:       UnaryReductionOr,
	Caret:      UnaryReductionXor,
	TildeAmp:   UnaryReductionNand,
	TildePipe:  UnaryReductionNor,
	TildeCaret: UnaryReductionXnor,
}

func (p *parser) parseUnary() ExprSyntax {
	if op, ok := prefixOps[p.tok().Kind]; ok {
		tok := p.advance()
		operand := p.parseUnary()
		return &UnaryExprSyntax{node: node{tok.Span.Cover(operand.Span())}, Op: op, Operand: operand}
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *parser) parsePostfix(expr ExprSyntax) ExprSyntax {
	for {
		switch p.tok().Kind {
		case LBracket:
			expr = p.parseSelect(expr)
		case Dot:
			p.advance()
			name := p.expectIdent()
			expr = &MemberAccessExprSyntax{node: node{expr.Span().Cover(name.Span)},
				Base: expr, Member: name.Text, MemberSpan: name.Span}
		case LParen:
			// calls only chain off names and member accesses
			switch expr.(type) {
			case *NameExprSyntax, *ScopedNameExprSyntax, *MemberAccessExprSyntax:
				expr = p.parseCallTail(expr, "")
			default:
				return expr
			}
		case Apostrophe:
			// name'(x) is a cast to a named type
			if name, ok := expr.(*NameExprSyntax); ok {
				p.advance()
				target := &NamedTypeSyntax{node: node{name.Span()}, Name: name.Name, NameSpan: name.Span()}
				return p.parseCastTail(target)
			}
			if scoped, ok := expr.(*ScopedNameExprSyntax); ok {
				p.advance()
				target := &NamedTypeSyntax{node: node{scoped.Span()},
					Package: scoped.Scope, Name: scoped.Name, NameSpan: scoped.Span()}
				return p.parseCastTail(target)
			}
			return expr
		default:
			return expr
		}
	}
}

func (p *parser) parseSelect(base ExprSyntax) ExprSyntax {
	open := p.expect(LBracket, "[")
	first := p.parseExpr()
	switch p.tok().Kind {
	case Colon:
		p.advance()
		right := p.parseExpr()
		close := p.expect(RBracket, "]")
		return &RangeSelectExprSyntax{node: node{base.Span().Cover(close.Span)},
			SelKind: RangeSimple, Base: base, Left: first, Right: right}
	case PlusColon:
		p.advance()
		right := p.parseExpr()
		close := p.expect(RBracket, "]")
		return &RangeSelectExprSyntax{node: node{base.Span().Cover(close.Span)},
			SelKind: RangeIndexedUp, Base: base, Left: first, Right: right}
	case MinusColon:
		p.advance()
		right := p.parseExpr()
		close := p.expect(RBracket, "]")
		return &RangeSelectExprSyntax{node: node{base.Span().Cover(close.Span)},
			SelKind: RangeIndexedDown, Base: base, Left: first, Right: right}
	default:
		close := p.expect(RBracket, "]")
		_ = open
		return &ElementSelectExprSyntax{node: node{base.Span().Cover(close.Span)},
			Base: base, Index: first}
	}
}

func (p *parser) parseCallTail(callee ExprSyntax, systemName string) ExprSyntax {
	open := p.expect(LParen, "(")
	var args []ExprSyntax
	if !p.at(RParen) {
		for {
			args = append(args, p.parseCallArg())
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
	}
	close := p.expect(RParen, ")")
	start := open.Span
	if callee != nil {
		start = callee.Span()
	}
	return &CallExprSyntax{node: node{start.Cover(close.Span)},
		Callee: callee, SystemName: systemName, Args: args}
}

// parseCallArg allows a bare data type in argument position ($bits(logic
// [7:0])); a type keyword followed by an apostrophe is still a cast.
func (p *parser) parseCallArg() ExprSyntax {
	tok := p.tok()
	if tok.IsIntegerTypeKeyword() || tok.IsFloatTypeKeyword() ||
		tok.Kind == KwString || tok.Kind == KwEnum || tok.Kind == KwStruct || tok.Kind == KwUnion {
		start := tok.Span
		dt := p.parseDataType(false)
		if p.at(Apostrophe) {
			p.advance()
			return p.parseCastTail(dt)
		}
		return &DataTypeExprSyntax{node: node{p.spanFrom(start)}, Type: dt}
	}
	return p.parseExpr()
}

func (p *parser) parseCastTail(target TypeSyntax) ExprSyntax {
	p.expect(LParen, "(")
	operand := p.parseExpr()
	close := p.expect(RParen, ")")
	return &CastExprSyntax{node: node{target.Span().Cover(close.Span)},
		Target: target, Operand: operand}
}

func (p *parser) parsePrimary() ExprSyntax {
	tok := p.tok()
	switch tok.Kind {
	case Number, UnbasedUnsized, RealLiteral, TimeLiteral, StringLiteral, KwNull:
		p.advance()
		return &LiteralExprSyntax{node: node{tok.Span}, Token: tok}

	case Identifier:
		p.advance()
		if p.at(ColonColon) {
			p.advance()
			name := p.expectIdent()
			return &ScopedNameExprSyntax{node: node{tok.Span.Cover(name.Span)},
				Scope: tok.Text, Name: name.Text}
		}
		return &NameExprSyntax{node: node{tok.Span}, Name: tok.Text}

	case SystemName:
		p.advance()
		if p.at(LParen) {
			return p.parseCallTail(nil, tok.Text)
		}
		return &CallExprSyntax{node: node{tok.Span}, SystemName: tok.Text}

	case LParen:
		p.advance()
		inner := p.parseAssignOrExpr(false)
		p.expect(RParen, ")")
		return inner

	case LBrace:
		return p.parseConcatOrReplication()

	case ApostropheBrace:
		return p.parseAssignmentPattern()

	case KwSigned, KwUnsigned:
		p.advance()
		p.expect(Apostrophe, "'")
		p.expect(LParen, "(")
		operand := p.parseExpr()
		close := p.expect(RParen, ")")
		return &SignCastExprSyntax{node: node{tok.Span.Cover(close.Span)},
			Signed: tok.Kind == KwSigned, Operand: operand}

	default:
		if tok.IsIntegerTypeKeyword() || tok.IsFloatTypeKeyword() || tok.Kind == KwString {
			dt := p.parseDataType(false)
			if p.at(Apostrophe) {
				p.advance()
				return p.parseCastTail(dt)
			}
			return &DataTypeExprSyntax{node: node{dt.Span()}, Type: dt}
		}
		p.report(diag.SynExpectExpression, tok.Span)
		p.advance()
		return &LiteralExprSyntax{node: node{tok.Span}, Token: Token{Kind: Error, Span: tok.Span}}
	}
}

func (p *parser) parseConcatOrReplication() ExprSyntax {
	open := p.expect(LBrace, "{")
	if p.at(RBrace) {
		// {} is an error; recover with an empty concat
		close := p.advance()
		p.report(diag.SynExpectExpression, close.Span)
		return &ConcatExprSyntax{node: node{open.Span.Cover(close.Span)}}
	}
	first := p.parseExpr()
	if p.at(LBrace) {
		// {N{a, b}}
		innerOpen := p.advance()
		var elems []ExprSyntax
		for {
			elems = append(elems, p.parseExpr())
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
		innerClose := p.expect(RBrace, "}")
		close := p.expect(RBrace, "}")
		inner := &ConcatExprSyntax{node: node{innerOpen.Span.Cover(innerClose.Span)}, Elems: elems}
		return &ReplicationExprSyntax{node: node{open.Span.Cover(close.Span)},
			Count: first, Inner: inner}
	}
	elems := []ExprSyntax{first}
	for {
		if _, ok := p.accept(Comma); !ok {
			break
		}
		elems = append(elems, p.parseExpr())
	}
	close := p.expect(RBrace, "}")
	return &ConcatExprSyntax{node: node{open.Span.Cover(close.Span)}, Elems: elems}
}

func (p *parser) parseAssignmentPattern() ExprSyntax {
	open := p.expect(ApostropheBrace, "'{")
	pattern := &AssignmentPatternExprSyntax{}

	if p.at(RBrace) {
		close := p.advance()
		p.report(diag.SynExpectExpression, close.Span)
		pattern.node = node{open.Span.Cover(close.Span)}
		return pattern
	}

	first := p.parsePatternItem()
	if !first.Keyed && p.at(LBrace) {
		// replicated form '{N{...}}
		p.advance()
		var elems []ExprSyntax
		for {
			elems = append(elems, p.parseExpr())
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
		p.expect(RBrace, "}")
		close := p.expect(RBrace, "}")
		pattern.Replicated = true
		pattern.Count = first.Value
		pattern.RepElems = elems
		pattern.node = node{open.Span.Cover(close.Span)}
		return pattern
	}

	pattern.Items = append(pattern.Items, first)
	for {
		if _, ok := p.accept(Comma); !ok {
			break
		}
		pattern.Items = append(pattern.Items, p.parsePatternItem())
	}
	close := p.expect(RBrace, "}")
	pattern.node = node{open.Span.Cover(close.Span)}
	return pattern
}

func (p *parser) parsePatternItem() *PatternItemSyntax {
	start := p.tok().Span
	item := &PatternItemSyntax{}

	switch {
	case p.at(KwDefault):
		p.advance()
		p.expect(Colon, ":")
		item.Keyed = true
		item.KeyKind = PatternKeyDefault
		item.Value = p.parseExpr()
	case p.at(Identifier) && p.peek(1).Kind == Colon:
		name := p.advance()
		p.advance() // colon
		item.Keyed = true
		item.KeyKind = PatternKeyName
		item.KeyName = name.Text
		item.Value = p.parseExpr()
	case p.at(Number) && p.peek(1).Kind == Colon:
		key := p.advance()
		p.advance() // colon
		item.Keyed = true
		item.KeyKind = PatternKeyExpr
		item.KeyExpr = &LiteralExprSyntax{node: node{key.Span}, Token: key}
		item.Value = p.parseExpr()
	case (p.tok().IsIntegerTypeKeyword() || p.tok().IsFloatTypeKeyword()) && p.peek(1).Kind == Colon:
		dt := p.parseDataType(false)
		p.advance() // colon
		item.Keyed = true
		item.KeyKind = PatternKeyType
		item.KeyType = dt
		item.Value = p.parseExpr()
	default:
		item.Value = p.parseExpr()
	}
	item.node = node{start.Cover(p.last)}
	return item
}
