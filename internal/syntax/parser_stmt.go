package syntax

import (
	"svelab/internal/diag"
)

// parseStatement parses a single behavioral statement.
func (p *parser) parseStatement() StmtSyntax {
	tok := p.tok()
	start := tok.Span

	switch tok.Kind {
	case Semicolon:
		p.advance()
		return &EmptyStmtSyntax{node: node{start}}

	case KwBegin:
		return p.parseBlockStmt()

	case KwReturn:
		p.advance()
		var expr ExprSyntax
		if !p.at(Semicolon) {
			expr = p.parseExpr()
		}
		p.expect(Semicolon, ";")
		return &ReturnStmtSyntax{node: node{p.spanFrom(start)}, Expr: expr}

	case KwBreak:
		p.advance()
		p.expect(Semicolon, ";")
		return &BreakStmtSyntax{node: node{p.spanFrom(start)}}

	case KwContinue:
		p.advance()
		p.expect(Semicolon, ";")
		return &ContinueStmtSyntax{node: node{p.spanFrom(start)}}

	case KwIf:
		p.advance()
		p.expect(LParen, "(")
		cond := p.parseExpr()
		p.expect(RParen, ")")
		thenStmt := p.parseStatement()
		var elseStmt StmtSyntax
		if _, ok := p.accept(KwElse); ok {
			elseStmt = p.parseStatement()
		}
		return &IfStmtSyntax{node: node{p.spanFrom(start)}, Cond: cond, Then: thenStmt, Else: elseStmt}

	case KwCase, KwCasez, KwCasex:
		return p.parseCaseStmt()

	case KwFor:
		return p.parseForStmt()

	case KwRepeat:
		p.advance()
		p.expect(LParen, "(")
		count := p.parseExpr()
		p.expect(RParen, ")")
		body := p.parseStatement()
		return &RepeatStmtSyntax{node: node{p.spanFrom(start)}, Count: count, Body: body}

	case KwWhile:
		p.advance()
		p.expect(LParen, "(")
		cond := p.parseExpr()
		p.expect(RParen, ")")
		body := p.parseStatement()
		return &WhileStmtSyntax{node: node{p.spanFrom(start)}, Cond: cond, Body: body}

	case KwDo:
		p.advance()
		body := p.parseStatement()
		p.expect(KwWhile, "while")
		p.expect(LParen, "(")
		cond := p.parseExpr()
		p.expect(RParen, ")")
		p.expect(Semicolon, ";")
		return &DoWhileStmtSyntax{node: node{p.spanFrom(start)}, Body: body, Cond: cond}

	case KwForever:
		p.advance()
		body := p.parseStatement()
		return &ForeverStmtSyntax{node: node{p.spanFrom(start)}, Body: body}

	case Hash:
		p.advance()
		// delay value: number or identifier or (expr)
		switch p.tok().Kind {
		case Number, RealLiteral, TimeLiteral, Identifier:
			p.advance()
		case LParen:
			p.advance()
			p.parseExpr()
			p.expect(RParen, ")")
		}
		body := p.parseStatement()
		return &TimedStmtSyntax{node: node{p.spanFrom(start)}, TimedKind: TimedDelay, Body: body}

	case At:
		p.advance()
		if _, ok := p.accept(Star); !ok {
			p.expect(LParen, "(")
			p.parseEventExpression()
			p.expect(RParen, ")")
		}
		body := p.parseStatement()
		return &TimedStmtSyntax{node: node{p.spanFrom(start)}, TimedKind: TimedEvent, Body: body}

	default:
		if p.atVarDeclStart() {
			declType := p.parseDataType(false)
			decls := p.parseDeclarators()
			p.expect(Semicolon, ";")
			return &VarDeclStmtSyntax{node: node{p.spanFrom(start)}, Type: declType, Decls: decls}
		}
		expr := p.parseAssignOrExpr(true)
		p.expect(Semicolon, ";")
		return &ExprStmtSyntax{node: node{p.spanFrom(start)}, Expr: expr}
	}
}

// atVarDeclStart distinguishes a local variable declaration from an
// expression statement.
func (p *parser) atVarDeclStart() bool {
	tok := p.tok()
	if tok.IsIntegerTypeKeyword() || tok.IsFloatTypeKeyword() ||
		tok.Kind == KwString || tok.Kind == KwEnum || tok.Kind == KwStruct ||
		tok.Kind == KwUnion || tok.Kind == KwVar || tok.Kind == KwEvent || tok.Kind == KwChandle {
		// `int'(x)` is a cast expression, not a declaration
		return !(p.peek(1).Kind == Apostrophe)
	}
	if tok.Kind == Identifier {
		// `T x;` or `T x = ...;` or `T x[...];`
		next := p.peek(1)
		if next.Kind == Identifier {
			after := p.peek(2)
			return after.Kind == Semicolon || after.Kind == Eq || after.Kind == LBracket || after.Kind == Comma
		}
	}
	return false
}

func (p *parser) parseBlockStmt() StmtSyntax {
	start := p.expect(KwBegin, "begin").Span
	label := ""
	if _, ok := p.accept(Colon); ok {
		label = p.expectIdent().Text
	}
	var items []StmtSyntax
	for !p.at(KwEnd) && !p.at(EOF) {
		items = append(items, p.parseStatement())
	}
	p.expect(KwEnd, "end")
	if _, ok := p.accept(Colon); ok {
		p.expectIdent() // trailing label
	}
	return &BlockStmtSyntax{node: node{p.spanFrom(start)}, Label: label, Items: items}
}

func (p *parser) parseCaseStmt() StmtSyntax {
	tok := p.advance()
	start := tok.Span
	cond := CaseNormal
	switch tok.Kind {
	case KwCasez:
		cond = CaseWildcardZ
	case KwCasex:
		cond = CaseWildcardXZ
	}
	p.expect(LParen, "(")
	expr := p.parseExpr()
	p.expect(RParen, ")")

	var items []*CaseItemSyntax
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
		stmt := p.parseStatement()
		items = append(items, &CaseItemSyntax{node: node{itemStart.Cover(p.last)}, Exprs: exprs, Stmt: stmt})
	}
	p.expect(KwEndCase, "endcase")
	if len(items) == 0 {
		p.report(diag.CaseStatementEmpty, p.spanFrom(start))
	}
	return &CaseStmtSyntax{node: node{p.spanFrom(start)}, Condition: cond, Expr: expr, Items: items}
}

func (p *parser) parseForStmt() StmtSyntax {
	start := p.expect(KwFor, "for").Span
	p.expect(LParen, "(")

	stmt := &ForStmtSyntax{}
	if !p.at(Semicolon) {
		if p.atVarDeclStart() {
			declStart := p.tok().Span
			declType := p.parseDataType(false)
			decls := p.parseDeclarators()
			stmt.InitDecl = &VarDeclStmtSyntax{node: node{declStart.Cover(p.last)}, Type: declType, Decls: decls}
		} else {
			for {
				stmt.InitExprs = append(stmt.InitExprs, p.parseAssignOrExpr(false))
				if _, ok := p.accept(Comma); !ok {
					break
				}
			}
		}
	}
	p.expect(Semicolon, ";")
	if !p.at(Semicolon) {
		stmt.Cond = p.parseExpr()
	}
	p.expect(Semicolon, ";")
	if !p.at(RParen) {
		for {
			stmt.Steps = append(stmt.Steps, p.parseAssignOrExpr(false))
			if _, ok := p.accept(Comma); !ok {
				break
			}
		}
	}
	p.expect(RParen, ")")
	stmt.Body = p.parseStatement()
	stmt.node = node{p.spanFrom(start)}
	return stmt
}

// parseEventExpression consumes a sensitivity list; the elaborator never
// evaluates it, so the contents are skipped structurally.
func (p *parser) parseEventExpression() {
	for {
		p.accept(KwPosedge)
		p.accept(KwNegedge)
		p.parseExpr()
		if _, ok := p.accept(Comma); ok {
			continue
		}
		// `or` separators arrive as identifiers
		if p.at(Identifier) && p.tok().Text == "or" {
			p.advance()
			continue
		}
		return
	}
}
