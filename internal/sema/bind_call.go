package sema

import (
	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

func (c Context) bindCall(s *syntax.CallExprSyntax) Expression {
	if s.SystemName != "" {
		return c.bindSystemCall(s)
	}

	// resolve the callee
	var sub *symbols.SubroutineSymbol
	switch callee := s.Callee.(type) {
	case *syntax.NameExprSyntax:
		sym := c.lookup(callee.Name, callee.Span())
		if sym == nil {
			return badExpr(c.errType(), s.Span())
		}
		var ok bool
		sub, ok = sym.(*symbols.SubroutineSymbol)
		if !ok {
			c.report(diag.ExpressionNotCallable, callee.Span(), callee.Name)
			return badExpr(c.errType(), s.Span())
		}
	case *syntax.ScopedNameExprSyntax:
		pkg := c.Comp.PackageByName(callee.Scope)
		if pkg == nil {
			c.report(diag.UnknownPackage, callee.Span(), callee.Scope)
			return badExpr(c.errType(), s.Span())
		}
		sym := pkg.AsScope().Find(callee.Name)
		var ok bool
		sub, ok = sym.(*symbols.SubroutineSymbol)
		if !ok {
			c.report(diag.ExpressionNotCallable, callee.Span(), callee.Name)
			return badExpr(c.errType(), s.Span())
		}
	default:
		c.report(diag.ExpressionNotCallable, s.Span(), "expression")
		return badExpr(c.errType(), s.Span())
	}

	return c.bindSubroutineCall(sub, s.Args, s.Span())
}

// bindSubroutineCall checks argument count and binds each argument against
// its formal's type.
func (c Context) bindSubroutineCall(sub *symbols.SubroutineSymbol, args []syntax.ExprSyntax, span source.Span) Expression {
	formals := sub.Args

	required := 0
	for _, f := range formals {
		if f.Declared().InitializerSyntax() == nil {
			required++
		}
	}
	if len(args) > len(formals) {
		c.report(diag.TooManyArguments, span, sub.Name(), len(formals), len(args))
		return badExpr(c.errType(), span)
	}
	if len(args) < required {
		c.report(diag.TooFewArguments, span, sub.Name(), required, len(args))
		return badExpr(c.errType(), span)
	}

	bound := make([]Expression, 0, len(args))
	for i, arg := range args {
		formalType := TypeOf(c.Comp, formals[i])
		bound = append(bound, c.BindAssignment(formalType, arg, arg.Span()))
	}

	var returnType types.Type = c.Comp.Types().Void
	if !sub.IsTask {
		returnType = TypeOf(c.Comp, sub)
	}

	expr := &CallExpr{
		exprBase:   makeExpr(ExprCall, returnType, span),
		Subroutine: sub,
		Args:       bound,
	}
	if c.InConstant() {
		if !VerifyConstantFunction(c.Comp, sub, c.Location) {
			return badExpr(c.errType(), span)
		}
		return c.fold(expr)
	}
	return expr
}

func (c Context) bindSystemCall(s *syntax.CallExprSyntax) Expression {
	sys := LookupSystemSubroutine(s.SystemName)
	if sys == nil {
		c.report(diag.UnknownSystemName, s.Span(), s.SystemName)
		return badExpr(c.errType(), s.Span())
	}
	if c.InConstant() && !sys.AllowedInConstant {
		c.report(diag.SysFuncNotConst, s.Span(), s.SystemName)
		return badExpr(c.errType(), s.Span())
	}

	// each argument binds per the handler's choice: data types bind as type
	// references, everything else self-determined
	var args []Expression
	var typeArg types.Type
	for _, a := range s.Args {
		if dt, ok := a.(*syntax.DataTypeExprSyntax); ok {
			t := c.BindType(dt.Type, false)
			typeArg = t
			args = append(args, &TypeReferenceExpr{exprBase: makeExpr(ExprTypeReference, t, a.Span()), Target: t})
			continue
		}
		args = append(args, c.BindExpression(a))
	}

	resultType := sys.Check(c, args, s.Span())
	if types.IsError(resultType) {
		return badExpr(resultType, s.Span())
	}
	expr := &CallExpr{
		exprBase: makeExpr(ExprCall, resultType, s.Span()),
		SysFunc:  sys,
		Args:     args,
		TypeArg:  typeArg,
	}
	return c.fold(expr)
}
