package sema

import (
	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// BindExpression binds an expression in self-determined context.
func (c Context) BindExpression(e syntax.ExprSyntax) Expression {
	if e == nil {
		return badExpr(c.errType(), source.Span{})
	}

	switch s := e.(type) {
	case *syntax.LiteralExprSyntax:
		return c.bindLiteral(s)
	case *syntax.NameExprSyntax:
		return c.bindName(s)
	case *syntax.ScopedNameExprSyntax:
		return c.bindScopedName(s)
	case *syntax.UnaryExprSyntax:
		return c.bindUnary(s)
	case *syntax.BinaryExprSyntax:
		return c.bindBinary(s)
	case *syntax.CondExprSyntax:
		return c.bindConditional(s)
	case *syntax.AssignExprSyntax:
		return c.bindAssignExpr(s)
	case *syntax.ConcatExprSyntax:
		return c.bindConcat(s)
	case *syntax.ReplicationExprSyntax:
		return c.bindReplication(s)
	case *syntax.ElementSelectExprSyntax:
		return c.bindElementSelect(s)
	case *syntax.RangeSelectExprSyntax:
		return c.bindRangeSelect(s)
	case *syntax.MemberAccessExprSyntax:
		return c.bindMemberAccess(s)
	case *syntax.CallExprSyntax:
		return c.bindCall(s)
	case *syntax.CastExprSyntax:
		return c.bindCast(s)
	case *syntax.SignCastExprSyntax:
		return c.bindSignCast(s)
	case *syntax.AssignmentPatternExprSyntax:
		c.report(diag.AssignmentPatternBadType, s.Span(), "a self-determined context")
		return badExpr(c.errType(), s.Span())
	case *syntax.DataTypeExprSyntax:
		t := c.BindType(s.Type, false)
		expr := &TypeReferenceExpr{exprBase: makeExpr(ExprTypeReference, t, s.Span()), Target: t}
		return expr
	default:
		return badExpr(c.errType(), e.Span())
	}
}

// BindAssignment binds an expression against a target type, inserting an
// assignment conversion when widths or types differ.
func (c Context) BindAssignment(target types.Type, e syntax.ExprSyntax, opSpan source.Span) Expression {
	if pattern, ok := e.(*syntax.AssignmentPatternExprSyntax); ok {
		return c.bindAssignmentPattern(target, pattern)
	}

	bound := c.BindExpression(e)
	return c.convertAssignment(target, bound, opSpan)
}

// convertAssignment checks assignment compatibility and injects the
// conversion.
func (c Context) convertAssignment(target types.Type, bound Expression, opSpan source.Span) Expression {
	if bound.ExprKind() == ExprInvalid || types.IsError(target) || types.IsError(bound.Type()) {
		return bound
	}

	// unbased unsized literals stretch to any integral target
	if u, ok := bound.(*UnbasedUnsizedLiteralExpr); ok && types.IsIntegral(target) {
		c.propagate(u, target)
		return c.fold(u)
	}

	if types.Matching(target, bound.Type()) {
		return c.fold(bound)
	}

	// string literals convert to both string and integral targets
	if lit, ok := bound.(*StringLiteralExpr); ok && types.IsIntegral(target) {
		conv := &ConversionExpr{exprBase: makeExpr(ExprConversion, target, lit.Span()), Operand: lit, Implicit: true}
		return c.fold(conv)
	}

	if !types.AssignmentCompatible(target, bound.Type()) {
		// enum initializers bind against the base without narrowing checks
		if c.Flags&FlagEnumInit == 0 || !types.IsIntegral(bound.Type()) {
			c.reportDiag(diag.New(diag.TypesNotAssignable, opSpanOr(bound, opSpan),
				bound.Type().String(), target.String()).WithHighlight(bound.Span()))
			return badExpr(c.errType(), bound.Span())
		}
	}

	if types.IsIntegral(target) && types.IsIntegral(bound.Type()) {
		// context-determined propagation into the RHS
		return c.fold(c.propagate(bound, target))
	}

	conv := &ConversionExpr{exprBase: makeExpr(ExprConversion, target, bound.Span()), Operand: bound, Implicit: true}
	return c.fold(conv)
}

func opSpanOr(e Expression, opSpan source.Span) source.Span {
	if opSpan.Empty() {
		return e.Span()
	}
	return opSpan
}

// propagate pushes a context-determined type down the expression tree,
// retyping width-transparent operators and wrapping everything else in an
// implicit conversion. It returns the (possibly wrapped) expression.
func (c Context) propagate(e Expression, target types.Type) Expression {
	if e == nil || types.IsError(target) {
		return e
	}
	if !types.IsIntegral(target) || !types.IsIntegral(e.Type()) {
		return e
	}
	if types.Matching(e.Type(), target) {
		return e
	}

	switch n := e.(type) {
	case *IntegerLiteralExpr:
		retype(n, target)
		n.Value = n.Value.Resize(target.BitWidth()).AsSigned(target.IsSigned())
		n.constant = numeric.IntegerValue(n.Value)
		return n

	case *UnbasedUnsizedLiteralExpr:
		retype(n, target)
		w := target.BitWidth()
		v := numeric.FromLogic(n.Bit).Replicate(w).AsSigned(target.IsSigned())
		n.constant = numeric.IntegerValue(v)
		return n

	case *UnaryExpr:
		switch n.Op {
		case syntax.UnaryPlus, syntax.UnaryMinus, syntax.UnaryBitwiseNot:
			retype(n, target)
			n.Operand = c.propagate(n.Operand, target)
			n.constant = numeric.Invalid
			return n
		}

	case *BinaryExpr:
		switch opFamily(n.Op) {
		case famArith, famBitwise:
			retype(n, target)
			n.Left = c.propagate(n.Left, target)
			n.Right = c.propagate(n.Right, target)
			n.constant = numeric.Invalid
			return n
		case famShift, famPower:
			// result width follows the LHS only
			retype(n, target)
			n.Left = c.propagate(n.Left, target)
			n.constant = numeric.Invalid
			return n
		}

	case *ConditionalExpr:
		retype(n, target)
		n.Left = c.propagate(n.Left, target)
		n.Right = c.propagate(n.Right, target)
		n.constant = numeric.Invalid
		return n
	}

	conv := &ConversionExpr{exprBase: makeExpr(ExprConversion, target, e.Span()), Operand: e, Implicit: true}
	return conv
}

func (c Context) bindLiteral(s *syntax.LiteralExprSyntax) Expression {
	store := c.Comp.Types()
	tok := s.Token

	switch tok.Kind {
	case syntax.Number:
		v := tok.IntVal
		var t types.Type
		if tok.Sized {
			// sized literals keep four-state typing even when fully known
			flags := types.IntegralFlags(types.FlagFourState)
			if v.IsSigned() {
				flags |= types.FlagSigned
			}
			t = store.Vector(v.Width(), flags)
		} else if v.IsSigned() {
			t = store.Int
		} else {
			t = store.Vector(32, types.FlagFourState)
		}
		expr := &IntegerLiteralExpr{exprBase: makeExpr(ExprIntegerLiteral, t, s.Span()), Value: v}
		expr.constant = numeric.IntegerValue(v)
		return expr

	case syntax.UnbasedUnsized:
		expr := &UnbasedUnsizedLiteralExpr{
			exprBase: makeExpr(ExprUnbasedUnsizedLiteral, store.Logic, s.Span()),
			Bit:      tok.IntVal.Bit(0),
		}
		expr.constant = numeric.IntegerValue(tok.IntVal)
		return expr

	case syntax.RealLiteral:
		expr := &RealLiteralExpr{exprBase: makeExpr(ExprRealLiteral, store.Real, s.Span()), Value: tok.RealVal}
		expr.constant = numeric.RealValue(tok.RealVal)
		return expr

	case syntax.TimeLiteral:
		// time literals scale to seconds and land in realtime
		expr := &RealLiteralExpr{
			exprBase: makeExpr(ExprRealLiteral, store.RealTime, s.Span()),
			Value:    tok.RealVal * timeScale(tok.TimeUnit),
		}
		expr.constant = numeric.RealValue(expr.Value)
		return expr

	case syntax.StringLiteral:
		expr := &StringLiteralExpr{exprBase: makeExpr(ExprStringLiteral, store.Str, s.Span()), Value: tok.Text}
		expr.constant = numeric.StringValue(tok.Text)
		return expr

	case syntax.KwNull:
		expr := &NullLiteralExpr{exprBase: makeExpr(ExprNullLiteral, store.Null, s.Span())}
		expr.constant = numeric.NullValue()
		return expr

	default:
		return badExpr(store.Error, s.Span())
	}
}

func timeScale(unit string) float64 {
	switch unit {
	case "fs":
		return 1e-15
	case "ps":
		return 1e-12
	case "ns":
		return 1e-9
	case "us":
		return 1e-6
	case "ms":
		return 1e-3
	default:
		return 1
	}
}

func (c Context) bindName(s *syntax.NameExprSyntax) Expression {
	sym := c.lookup(s.Name, s.Span())
	if sym == nil {
		return badExpr(c.errType(), s.Span())
	}
	return c.bindSymbolRef(sym, s.Span(), false)
}

func (c Context) bindScopedName(s *syntax.ScopedNameExprSyntax) Expression {
	pkg := c.Comp.PackageByName(s.Scope)
	if pkg == nil {
		// fall back to an ordinary symbol used as a scope (class scopes are
		// unsupported)
		if sym := c.lookup(s.Scope, s.Span()); sym != nil {
			c.report(diag.NotAHierarchicalScope, s.Span(), s.Scope)
		}
		return badExpr(c.errType(), s.Span())
	}
	sym := pkg.AsScope().Find(s.Name)
	if sym == nil {
		c.report(diag.UndeclaredIdentifier, s.Span(), s.Name)
		return badExpr(c.errType(), s.Span())
	}
	return c.bindSymbolRef(sym, s.Span(), false)
}

// bindSymbolRef wraps a resolved symbol into a typed expression node.
func (c Context) bindSymbolRef(sym symbols.Symbol, span source.Span, hierarchical bool) Expression {
	store := c.Comp.Types()

	switch s := sym.(type) {
	case *symbols.ParameterSymbol:
		t := TypeOf(c.Comp, s)
		expr := &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, t, span), Symbol: s, IsHierarchical: hierarchical}
		expr.constant = ParameterValue(c.Comp, s)
		return expr

	case *symbols.EnumValueSymbol:
		expr := &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, s.EnumType, span), Symbol: s, IsHierarchical: hierarchical}
		expr.constant = s.Value
		return expr

	case *symbols.VariableSymbol, *symbols.NetSymbol, *symbols.FormalArgumentSymbol:
		vs := s.(symbols.ValueSymbol)
		if hierarchical && c.InConstant() {
			c.report(diag.ConstEvalHierarchical, span)
			return badExpr(store.Error, span)
		}
		return &NamedValueExpr{
			exprBase:       makeExpr(ExprNamedValue, TypeOf(c.Comp, vs), span),
			Symbol:         sym,
			IsHierarchical: hierarchical,
		}

	case *symbols.PortSymbol:
		// references to a port resolve through its internal symbol
		if s.Internal != nil {
			return c.bindSymbolRef(s.Internal, span, hierarchical)
		}
		return &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, TypeOf(c.Comp, s), span), Symbol: sym}

	case *symbols.GenvarSymbol:
		// a bare genvar outside its loop has no value
		c.report(diag.NotAValue, span, sym.Name())
		return badExpr(store.Error, span)

	case *symbols.TypeAliasSymbol:
		t := AliasTypeOf(c.Comp, s)
		return &TypeReferenceExpr{exprBase: makeExpr(ExprTypeReference, t, span), Target: t}

	case *symbols.TypeParameterSymbol:
		t := TypeParameterTarget(c.Comp, s)
		return &TypeReferenceExpr{exprBase: makeExpr(ExprTypeReference, t, span), Target: t}

	case *symbols.SubroutineSymbol:
		// a call with no parens
		return c.bindSubroutineCall(s, nil, span)

	case *symbols.InstanceSymbol, *symbols.InstanceArraySymbol,
		*symbols.GenerateBlockSymbol, *symbols.GenerateBlockArraySymbol,
		*symbols.ModportSymbol, *symbols.InterfacePortSymbol:
		// scope references are only useful as the base of a hierarchical
		// name; type is void until a member access lands on a value
		if c.InConstant() {
			c.report(diag.ConstEvalHierarchical, span)
			return badExpr(store.Error, span)
		}
		return &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, store.Void, span), Symbol: sym, IsHierarchical: true}

	default:
		c.report(diag.NotAValue, span, sym.Name())
		return badExpr(store.Error, span)
	}
}

func (c Context) bindMemberAccess(s *syntax.MemberAccessExprSyntax) Expression {
	base := c.BindExpression(s.Base)
	if base.ExprKind() == ExprInvalid {
		return base
	}

	// hierarchical path: base names a scope symbol
	if nv, ok := base.(*NamedValueExpr); ok && nv.IsHierarchical {
		scope := hierarchicalScope(nv.Symbol)
		if scope == nil {
			c.report(diag.NotAHierarchicalScope, s.MemberSpan, nv.Symbol.Name())
			return badExpr(c.errType(), s.Span())
		}
		member := scope.Find(s.Member)
		if member == nil {
			c.report(diag.UndeclaredIdentifier, s.MemberSpan, s.Member)
			return badExpr(c.errType(), s.Span())
		}
		if mp, ok := member.(*symbols.ModportPortSymbol); ok && mp.Target != nil {
			member = mp.Target
		}
		return c.bindSymbolRef(member, s.Span(), true)
	}

	// value path: struct/union field access
	fields, ok := types.FieldsOf(base.Type())
	if !ok {
		c.report(diag.NotAHierarchicalScope, s.MemberSpan, base.Type().String())
		return badExpr(c.errType(), s.Span())
	}
	field, ok := types.FieldByName(fields, s.Member)
	if !ok {
		c.report(diag.UndeclaredIdentifier, s.MemberSpan, s.Member)
		return badExpr(c.errType(), s.Span())
	}
	return &MemberAccessExpr{
		exprBase: makeExpr(ExprMemberAccess, field.Type, s.Span()),
		Value:    base,
		Field:    field,
	}
}

// hierarchicalScope maps a scope-like symbol to the scope lookup descends
// into.
func hierarchicalScope(sym symbols.Symbol) *symbols.Scope {
	switch s := sym.(type) {
	case *symbols.InterfacePortSymbol:
		if s.Connected != nil {
			return hierarchicalScope(s.Connected)
		}
		return nil
	default:
		return symbols.AsScopeOf(sym)
	}
}

func (c Context) bindConcat(s *syntax.ConcatExprSyntax) Expression {
	store := c.Comp.Types()
	var ops []Expression
	totalWidth := uint32(0)
	fourState := false
	anyString := false
	anyIntegral := false
	bad := false

	for _, elem := range s.Elems {
		op := c.BindExpression(elem)
		if op.ExprKind() == ExprInvalid || types.IsError(op.Type()) {
			bad = true
			ops = append(ops, op)
			continue
		}
		t := op.Type().Canonical()
		switch {
		case types.IsString(t):
			anyString = true
		case types.IsIntegral(t):
			anyIntegral = true
			totalWidth += t.BitWidth()
			if t.IsFourState() {
				fourState = true
			}
		default:
			c.report(diag.BadUnaryExpression, op.Span(), op.Type().String())
			bad = true
		}
		ops = append(ops, op)
	}

	if anyString && anyIntegral {
		c.report(diag.ConcatWithStringInt, s.Span())
		bad = true
	}
	if bad {
		return badExpr(store.Error, s.Span())
	}

	var t types.Type
	if anyString {
		t = store.Str
	} else {
		flags := types.IntegralFlags(0)
		if fourState {
			flags |= types.FlagFourState
		}
		t = store.Vector(totalWidth, flags)
	}
	expr := &ConcatExpr{exprBase: makeExpr(ExprConcat, t, s.Span()), Operands: ops}
	return c.fold(expr)
}

func (c Context) bindReplication(s *syntax.ReplicationExprSyntax) Expression {
	store := c.Comp.Types()
	count, ok := c.evalInt(s.Count)
	if !ok || count < 0 {
		c.report(diag.ReplicationCountInvalid, s.Count.Span())
		return badExpr(store.Error, s.Span())
	}
	inner := c.bindConcat(s.Inner)
	if inner.ExprKind() == ExprInvalid {
		return inner
	}
	if types.IsString(inner.Type()) {
		expr := &ReplicationExpr{exprBase: makeExpr(ExprReplication, store.Str, s.Span()),
			Count: uint32(count), Operand: inner}
		return c.fold(expr)
	}
	flags := types.IntegralFlags(0)
	if inner.Type().IsFourState() {
		flags |= types.FlagFourState
	}
	t := store.Vector(inner.Type().BitWidth()*uint32(count), flags)
	expr := &ReplicationExpr{exprBase: makeExpr(ExprReplication, t, s.Span()),
		Count: uint32(count), Operand: inner}
	return c.fold(expr)
}

func (c Context) bindCast(s *syntax.CastExprSyntax) Expression {
	target := c.BindType(s.Target, false)
	operand := c.BindExpression(s.Operand)
	if types.IsError(target) || operand.ExprKind() == ExprInvalid {
		return badExpr(c.errType(), s.Span())
	}
	if !types.CastCompatible(target, operand.Type()) {
		c.report(diag.BadConversion, s.Span(), operand.Type().String(), target.String())
		return badExpr(c.errType(), s.Span())
	}
	conv := &ConversionExpr{exprBase: makeExpr(ExprConversion, target, s.Span()), Operand: operand}
	return c.fold(conv)
}

func (c Context) bindSignCast(s *syntax.SignCastExprSyntax) Expression {
	store := c.Comp.Types()
	operand := c.BindExpression(s.Operand)
	if operand.ExprKind() == ExprInvalid {
		return operand
	}
	ct := operand.Type().Canonical()
	if !types.IsIntegral(ct) {
		c.report(diag.BadConversion, s.Span(), operand.Type().String(), "signed")
		return badExpr(store.Error, s.Span())
	}
	flags := types.IntegralFlags(0)
	if ct.IsFourState() {
		flags |= types.FlagFourState
	}
	if s.Signed {
		flags |= types.FlagSigned
	}
	t := store.Vector(ct.BitWidth(), flags)
	conv := &ConversionExpr{exprBase: makeExpr(ExprConversion, t, s.Span()), Operand: operand}
	return c.fold(conv)
}

func (c Context) bindAssignExpr(s *syntax.AssignExprSyntax) Expression {
	lhs := c.BindExpression(s.Left)
	if lhs.ExprKind() != ExprInvalid && !IsLValue(lhs) {
		c.report(diag.ExprNotAssignable, s.Left.Span())
		lhs = badExpr(c.errType(), s.Left.Span())
	}

	var rhs Expression
	compound := s.Op != syntax.AssignPlain
	if compound {
		rhs = c.BindExpression(s.Right)
		if types.IsIntegral(lhs.Type()) && types.IsIntegral(rhs.Type()) {
			rhs = c.propagate(rhs, lhs.Type())
		}
	} else {
		rhs = c.BindAssignment(lhs.Type(), s.Right, s.OpSpan)
	}

	expr := &AssignmentExpr{
		exprBase:    makeExpr(ExprAssignment, lhs.Type(), s.Span()),
		Compound:    compound,
		Op:          compoundBaseOp(s.Op),
		NonBlocking: s.NonBlocking,
		Left:        lhs,
		Right:       rhs,
	}
	return expr
}

func compoundBaseOp(op syntax.AssignOp) syntax.BinaryOp {
	switch op {
	case syntax.AssignAdd:
		return syntax.BinaryAdd
	case syntax.AssignSubtract:
		return syntax.BinarySubtract
	case syntax.AssignMultiply:
		return syntax.BinaryMultiply
	case syntax.AssignDivide:
		return syntax.BinaryDivide
	case syntax.AssignMod:
		return syntax.BinaryMod
	case syntax.AssignAnd:
		return syntax.BinaryBitwiseAnd
	case syntax.AssignOr:
		return syntax.BinaryBitwiseOr
	case syntax.AssignXor:
		return syntax.BinaryBitwiseXor
	case syntax.AssignShiftLeft:
		return syntax.BinaryLogicalShiftLeft
	case syntax.AssignShiftRight:
		return syntax.BinaryLogicalShiftRight
	case syntax.AssignAShiftLeft:
		return syntax.BinaryArithmeticShiftLeft
	case syntax.AssignAShiftRight:
		return syntax.BinaryArithmeticShiftRight
	default:
		return syntax.BinaryAdd
	}
}
