package sema

import (
	"svelab/internal/diag"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
)

// BindSubroutineBody binds (and caches) a subroutine's body statement list.
func BindSubroutineBody(comp symbols.Compilation, sub *symbols.SubroutineSymbol) Statement {
	if body, ok := sub.BoundBody().(Statement); ok {
		return body
	}
	if !sub.BeginBodyBinding() {
		comp.Report(diag.New(diag.DeclRecursiveDefinition, sub.Location(), sub.Name()))
		return nil
	}
	defer sub.EndBodyBinding()

	ctx := NewContext(comp, sub.AsScope())
	ctx.Subroutine = sub

	items := make([]Statement, 0, len(sub.DeclSyntax.Body))
	for _, s := range sub.DeclSyntax.Body {
		items = append(items, ctx.BindStatement(s, bindStmtState{inSubroutine: true}))
	}
	var body Statement = &ListStmt{stmtBase: makeStmt(StmtList, sub.Location()), Items: items}
	sub.SetBoundBody(body)
	return body
}

// BindProceduralBody binds a statement outside any subroutine or loop
// (procedural block bodies).
func (c Context) BindProceduralBody(s syntax.StmtSyntax) Statement {
	return c.BindStatement(s, bindStmtState{})
}

// bindStmtState tracks statement nesting for break/continue/return checks.
type bindStmtState struct {
	inLoop       bool
	inSubroutine bool
}

// BindStatement binds one behavioral statement in this context.
func (c Context) BindStatement(s syntax.StmtSyntax, st bindStmtState) Statement {
	switch n := s.(type) {
	case *syntax.EmptyStmtSyntax:
		return &EmptyStmt{stmtBase: makeStmt(StmtEmpty, n.Span())}

	case *syntax.BlockStmtSyntax:
		block := symbols.NewSequentialBlockSymbol(c.Comp, n.Label, n.Span(), n)
		c.Scope.AddMember(block)
		inner := c.In(block.AsScope())
		items := make([]Statement, 0, len(n.Items))
		for _, item := range n.Items {
			items = append(items, inner.BindStatement(item, st))
		}
		body := &ListStmt{stmtBase: makeStmt(StmtList, n.Span()), Items: items}
		return &BlockStmt{stmtBase: makeStmt(StmtBlock, n.Span()), Block: block, Body: body}

	case *syntax.ExprStmtSyntax:
		expr := c.BindExpression(n.Expr)
		return &ExpressionStmt{stmtBase: makeStmt(StmtExpression, n.Span()), Expr: expr}

	case *syntax.VarDeclStmtSyntax:
		return c.bindLocalVarDecl(n)

	case *syntax.ReturnStmtSyntax:
		if !st.inSubroutine {
			c.report(diag.ReturnNotInSubroutine, n.Span())
			return &InvalidStmt{stmtBase: makeStmt(StmtInvalid, n.Span())}
		}
		var expr Expression
		if n.Expr != nil && c.Subroutine != nil {
			expr = c.BindAssignment(TypeOf(c.Comp, c.Subroutine), n.Expr, n.Span())
		} else if n.Expr != nil {
			expr = c.BindExpression(n.Expr)
		}
		return &ReturnStmt{stmtBase: makeStmt(StmtReturn, n.Span()), Expr: expr}

	case *syntax.BreakStmtSyntax:
		if !st.inLoop {
			c.report(diag.StatementNotInLoop, n.Span(), "break")
			return &InvalidStmt{stmtBase: makeStmt(StmtInvalid, n.Span())}
		}
		return &BreakStmt{stmtBase: makeStmt(StmtBreak, n.Span())}

	case *syntax.ContinueStmtSyntax:
		if !st.inLoop {
			c.report(diag.StatementNotInLoop, n.Span(), "continue")
			return &InvalidStmt{stmtBase: makeStmt(StmtInvalid, n.Span())}
		}
		return &ContinueStmt{stmtBase: makeStmt(StmtContinue, n.Span())}

	case *syntax.IfStmtSyntax:
		cond := c.BindExpression(n.Cond)
		thenStmt := c.BindStatement(n.Then, st)
		var elseStmt Statement
		if n.Else != nil {
			elseStmt = c.BindStatement(n.Else, st)
		}
		return &ConditionalStmt{stmtBase: makeStmt(StmtConditional, n.Span()),
			Cond: cond, Then: thenStmt, Else: elseStmt}

	case *syntax.CaseStmtSyntax:
		return c.bindCaseStmt(n, st)

	case *syntax.ForStmtSyntax:
		return c.bindForStmt(n, st)

	case *syntax.RepeatStmtSyntax:
		count := c.BindExpression(n.Count)
		loop := st
		loop.inLoop = true
		return &RepeatStmt{stmtBase: makeStmt(StmtRepeat, n.Span()),
			Count: count, Body: c.BindStatement(n.Body, loop)}

	case *syntax.WhileStmtSyntax:
		cond := c.BindExpression(n.Cond)
		loop := st
		loop.inLoop = true
		return &WhileStmt{stmtBase: makeStmt(StmtWhile, n.Span()),
			Cond: cond, Body: c.BindStatement(n.Body, loop)}

	case *syntax.DoWhileStmtSyntax:
		loop := st
		loop.inLoop = true
		body := c.BindStatement(n.Body, loop)
		cond := c.BindExpression(n.Cond)
		return &DoWhileStmt{stmtBase: makeStmt(StmtDoWhile, n.Span()), Body: body, Cond: cond}

	case *syntax.ForeverStmtSyntax:
		loop := st
		loop.inLoop = true
		return &ForeverStmt{stmtBase: makeStmt(StmtForever, n.Span()),
			Body: c.BindStatement(n.Body, loop)}

	case *syntax.TimedStmtSyntax:
		body := c.BindStatement(n.Body, st)
		return &TimedStmt{stmtBase: makeStmt(StmtTimed, n.Span()), TimedKind: n.TimedKind, Body: body}

	default:
		return &InvalidStmt{stmtBase: makeStmt(StmtInvalid, s.Span())}
	}
}

// bindLocalVarDecl creates block-local variables; several declarators expand
// into a statement list.
func (c Context) bindLocalVarDecl(n *syntax.VarDeclStmtSyntax) Statement {
	var decls []Statement
	for _, d := range n.Decls {
		v := symbols.NewVariableSymbol(d.Name, d.Span(), n)
		dt := v.Declared()
		dt.SetTypeSyntax(n.Type)
		dt.SetDimensionSyntax(d.Dims)
		if d.Init != nil {
			dt.SetInitializerSyntax(d.Init, d.EqSpan)
		}
		c.Scope.AddMember(v)
		// force binding now so constant evaluation can use the initializer
		InitializerOf(c.Comp, v)
		decls = append(decls, &VarDeclStmt{stmtBase: makeStmt(StmtVarDecl, d.Span()), Variable: v})
	}
	if len(decls) == 1 {
		return decls[0]
	}
	return &ListStmt{stmtBase: makeStmt(StmtList, n.Span()), Items: decls}
}

func (c Context) bindCaseStmt(n *syntax.CaseStmtSyntax, st bindStmtState) Statement {
	expr := c.BindExpression(n.Expr)
	stmt := &CaseStmt{stmtBase: makeStmt(StmtCase, n.Span()), Condition: n.Condition, Expr: expr}
	for _, item := range n.Items {
		var exprs []Expression
		for _, e := range item.Exprs {
			exprs = append(exprs, c.BindExpression(e))
		}
		stmt.Items = append(stmt.Items, CaseItem{Exprs: exprs, Stmt: c.BindStatement(item.Stmt, st)})
	}
	return stmt
}

func (c Context) bindForStmt(n *syntax.ForStmtSyntax, st bindStmtState) Statement {
	stmt := &ForStmt{stmtBase: makeStmt(StmtFor, n.Span())}

	inner := c
	if n.InitDecl != nil {
		// loop variables live in an implicit block scope
		block := symbols.NewSequentialBlockSymbol(c.Comp, "", n.Span(), n)
		c.Scope.AddMember(block)
		inner = c.In(block.AsScope())
		decl := inner.bindLocalVarDecl(n.InitDecl)
		switch d := decl.(type) {
		case *VarDeclStmt:
			stmt.InitDecls = append(stmt.InitDecls, d)
		case *ListStmt:
			for _, item := range d.Items {
				if vd, ok := item.(*VarDeclStmt); ok {
					stmt.InitDecls = append(stmt.InitDecls, vd)
				}
			}
		}
	}
	for _, e := range n.InitExprs {
		stmt.InitExprs = append(stmt.InitExprs, inner.BindExpression(e))
	}
	if n.Cond != nil {
		stmt.Cond = inner.BindExpression(n.Cond)
	}
	for _, e := range n.Steps {
		stmt.Steps = append(stmt.Steps, inner.BindExpression(e))
	}
	loop := st
	loop.inLoop = true
	stmt.Body = inner.BindStatement(n.Body, loop)
	return stmt
}
