package sema

import (
	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// opFamily groups binary operators by their width-propagation behavior.
type family uint8

const (
	famArith family = iota
	famBitwise
	famEquality
	famRelational
	famLogical
	famShift
	famPower
)

func opFamily(op syntax.BinaryOp) family {
	switch op {
	case syntax.BinaryAdd, syntax.BinarySubtract, syntax.BinaryMultiply,
		syntax.BinaryDivide, syntax.BinaryMod:
		return famArith
	case syntax.BinaryBitwiseAnd, syntax.BinaryBitwiseOr,
		syntax.BinaryBitwiseXor, syntax.BinaryBitwiseXnor:
		return famBitwise
	case syntax.BinaryEquality, syntax.BinaryInequality,
		syntax.BinaryCaseEquality, syntax.BinaryCaseInequality,
		syntax.BinaryWildcardEquality, syntax.BinaryWildcardInequality:
		return famEquality
	case syntax.BinaryLessThan, syntax.BinaryLessThanEqual,
		syntax.BinaryGreaterThan, syntax.BinaryGreaterThanEqual:
		return famRelational
	case syntax.BinaryLogicalAnd, syntax.BinaryLogicalOr:
		return famLogical
	case syntax.BinaryLogicalShiftLeft, syntax.BinaryLogicalShiftRight,
		syntax.BinaryArithmeticShiftLeft, syntax.BinaryArithmeticShiftRight:
		return famShift
	case syntax.BinaryPower:
		return famPower
	default:
		return famArith
	}
}

func (c Context) bindUnary(s *syntax.UnaryExprSyntax) Expression {
	store := c.Comp.Types()
	operand := c.BindExpression(s.Operand)
	if operand.ExprKind() == ExprInvalid {
		return operand
	}
	t := operand.Type()

	switch s.Op {
	case syntax.UnaryPlus, syntax.UnaryMinus:
		if !types.IsNumeric(t) {
			c.report(diag.BadUnaryExpression, s.Span(), t.String())
			return badExpr(store.Error, s.Span())
		}
		expr := &UnaryExpr{exprBase: makeExpr(ExprUnary, selfDetermined(store, t), s.Span()), Op: s.Op, Operand: operand}
		return c.fold(expr)

	case syntax.UnaryBitwiseNot:
		if !types.IsIntegral(t) {
			c.report(diag.BadUnaryExpression, s.Span(), t.String())
			return badExpr(store.Error, s.Span())
		}
		expr := &UnaryExpr{exprBase: makeExpr(ExprUnary, selfDetermined(store, t), s.Span()), Op: s.Op, Operand: operand}
		return c.fold(expr)

	case syntax.UnaryLogicalNot:
		if !types.IsNumeric(t) && !types.IsString(t) {
			c.report(diag.NotBooleanConvertible, s.Span(), t.String())
			return badExpr(store.Error, s.Span())
		}
		expr := &UnaryExpr{exprBase: makeExpr(ExprUnary, predicateType(store, t), s.Span()), Op: s.Op, Operand: operand}
		return c.fold(expr)

	default: // reductions
		if !types.IsIntegral(t) {
			c.report(diag.BadUnaryExpression, s.Span(), t.String())
			return badExpr(store.Error, s.Span())
		}
		expr := &UnaryExpr{exprBase: makeExpr(ExprUnary, predicateType(store, t), s.Span()), Op: s.Op, Operand: operand}
		return c.fold(expr)
	}
}

// selfDetermined maps an operand type to the operator result type in
// self-determined context (its canonical integral shape).
func selfDetermined(store *types.Store, t types.Type) types.Type {
	c := t.Canonical()
	if types.IsIntegral(c) {
		flags := types.IntegralFlags(0)
		if c.IsSigned() {
			flags |= types.FlagSigned
		}
		if c.IsFourState() {
			flags |= types.FlagFourState
		}
		return store.Vector(c.BitWidth(), flags)
	}
	return t
}

// predicateType is the 1-bit result of comparisons and reductions:
// four-state iff any operand is.
func predicateType(store *types.Store, operands ...types.Type) types.Type {
	for _, t := range operands {
		if t.Canonical().IsFourState() {
			return store.Logic
		}
	}
	return store.Bit
}

func (c Context) bindBinary(s *syntax.BinaryExprSyntax) Expression {
	store := c.Comp.Types()
	lhs := c.BindExpression(s.Left)
	rhs := c.BindExpression(s.Right)
	if lhs.ExprKind() == ExprInvalid || rhs.ExprKind() == ExprInvalid {
		return badExpr(store.Error, s.Span())
	}
	lt, rt := lhs.Type().Canonical(), rhs.Type().Canonical()

	fam := opFamily(s.Op)
	bothIntegral := types.IsIntegral(lt) && types.IsIntegral(rt)
	bothString := types.IsString(lt) && types.IsString(rt)
	anyReal := types.IsFloating(lt) || types.IsFloating(rt)
	numericOK := types.IsNumeric(lt) && types.IsNumeric(rt)

	reject := func() Expression {
		c.report(diag.BadBinaryExpression, s.Span(), lhs.Type().String(), rhs.Type().String())
		return badExpr(store.Error, s.Span())
	}

	switch fam {
	case famArith:
		if !numericOK {
			return reject()
		}
		var t types.Type
		if anyReal {
			t = realCommonType(store, lt, rt)
			lhs = c.convertToReal(lhs, t)
			rhs = c.convertToReal(rhs, t)
		} else {
			t = c.integralResult(s.Op, lt, rt)
			lhs = c.propagate(lhs, t)
			rhs = c.propagate(rhs, t)
		}
		expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, t, s.Span()), Op: s.Op, Left: lhs, Right: rhs}
		return c.fold(expr)

	case famBitwise:
		if !bothIntegral {
			return reject()
		}
		t := c.integralResult(s.Op, lt, rt)
		lhs = c.propagate(lhs, t)
		rhs = c.propagate(rhs, t)
		expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, t, s.Span()), Op: s.Op, Left: lhs, Right: rhs}
		return c.fold(expr)

	case famEquality, famRelational:
		if bothString || (types.IsString(lt) && rhs.ExprKind() == ExprStringLiteral) {
			expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, store.Bit, s.Span()), Op: s.Op, Left: lhs, Right: rhs}
			return c.fold(expr)
		}
		if lt.TypeKind() == types.KindNull || rt.TypeKind() == types.KindNull {
			expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, store.Bit, s.Span()), Op: s.Op, Left: lhs, Right: rhs}
			return c.fold(expr)
		}
		if !numericOK {
			return reject()
		}
		var result types.Type
		if anyReal {
			t := realCommonType(store, lt, rt)
			lhs = c.convertToReal(lhs, t)
			rhs = c.convertToReal(rhs, t)
			result = store.Bit
		} else {
			// operands sized to their max common width
			t := c.integralResult(syntax.BinaryAdd, lt, rt)
			lhs = c.propagate(lhs, t)
			rhs = c.propagate(rhs, t)
			result = predicateType(store, lt, rt)
		}
		expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, result, s.Span()), Op: s.Op, Left: lhs, Right: rhs}
		return c.fold(expr)

	case famLogical:
		if (!types.IsNumeric(lt) && !types.IsString(lt)) || (!types.IsNumeric(rt) && !types.IsString(rt)) {
			return reject()
		}
		expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, predicateType(store, lt, rt), s.Span()),
			Op: s.Op, Left: lhs, Right: rhs}
		return c.fold(expr)

	case famShift, famPower:
		if !bothIntegral {
			if fam == famPower && numericOK {
				t := realCommonType(store, lt, rt)
				lhs = c.convertToReal(lhs, t)
				rhs = c.convertToReal(rhs, t)
				expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, t, s.Span()), Op: s.Op, Left: lhs, Right: rhs}
				return c.fold(expr)
			}
			return reject()
		}
		// result width follows the LHS; the RHS stays self-determined
		t := selfDetermined(store, lt)
		expr := &BinaryExpr{exprBase: makeExpr(ExprBinary, t, s.Span()), Op: s.Op, Left: lhs, Right: rhs}
		return c.fold(expr)
	}
	return reject()
}

// integralResult computes the context-determined result type of an integral
// binary operator: max width, signed only when both are, four-state when
// either is (always for divide and modulo).
func (c Context) integralResult(op syntax.BinaryOp, lt, rt types.Type) types.Type {
	store := c.Comp.Types()
	w := lt.BitWidth()
	if rt.BitWidth() > w {
		w = rt.BitWidth()
	}
	flags := types.IntegralFlags(0)
	if lt.IsSigned() && rt.IsSigned() {
		flags |= types.FlagSigned
	}
	if lt.IsFourState() || rt.IsFourState() {
		flags |= types.FlagFourState
	}
	if op == syntax.BinaryDivide || op == syntax.BinaryMod {
		flags |= types.FlagFourState
	}
	return store.Vector(w, flags)
}

// realCommonType picks shortreal only when both sides are shortreal.
func realCommonType(store *types.Store, lt, rt types.Type) types.Type {
	lf, lok := lt.Canonical().(*types.FloatType)
	rf, rok := rt.Canonical().(*types.FloatType)
	if lok && rok && lf.IsShortReal() && rf.IsShortReal() {
		return store.ShortReal
	}
	return store.Real
}

func (c Context) convertToReal(e Expression, t types.Type) Expression {
	if types.Matching(e.Type(), t) {
		return e
	}
	return &ConversionExpr{exprBase: makeExpr(ExprConversion, t, e.Span()), Operand: e, Implicit: true}
}

func (c Context) bindConditional(s *syntax.CondExprSyntax) Expression {
	store := c.Comp.Types()
	pred := c.BindExpression(s.Pred)
	lhs := c.BindExpression(s.Then)
	rhs := c.BindExpression(s.Else)
	if pred.ExprKind() == ExprInvalid || lhs.ExprKind() == ExprInvalid || rhs.ExprKind() == ExprInvalid {
		return badExpr(store.Error, s.Span())
	}
	if !types.IsNumeric(pred.Type()) && !types.IsString(pred.Type()) {
		c.report(diag.NotBooleanConvertible, s.Pred.Span(), pred.Type().String())
		return badExpr(store.Error, s.Span())
	}

	lt, rt := lhs.Type().Canonical(), rhs.Type().Canonical()
	var t types.Type
	switch {
	case types.IsIntegral(lt) && types.IsIntegral(rt):
		t = c.integralResult(syntax.BinaryAdd, lt, rt)
		// the predicate can carry unknown bits at constant time, which
		// merges the arms bitwise; the result is four-state then
		if pred.Type().IsFourState() {
			flags := types.IntegralFlags(types.FlagFourState)
			if t.IsSigned() {
				flags |= types.FlagSigned
			}
			t = store.Vector(t.BitWidth(), flags)
		}
		lhs = c.propagate(lhs, t)
		rhs = c.propagate(rhs, t)
	case types.IsNumeric(lt) && types.IsNumeric(rt):
		t = realCommonType(store, lt, rt)
		lhs = c.convertToReal(lhs, t)
		rhs = c.convertToReal(rhs, t)
	case types.Equivalent(lt, rt):
		t = lhs.Type()
	case lt.TypeKind() == types.KindNull:
		t = rhs.Type()
	case rt.TypeKind() == types.KindNull:
		t = lhs.Type()
	default:
		c.report(diag.BadBinaryExpression, s.Span(), lhs.Type().String(), rhs.Type().String())
		return badExpr(store.Error, s.Span())
	}

	expr := &ConditionalExpr{exprBase: makeExpr(ExprConditional, t, s.Span()), Pred: pred, Left: lhs, Right: rhs}
	return c.fold(expr)
}

func (c Context) bindElementSelect(s *syntax.ElementSelectExprSyntax) Expression {
	store := c.Comp.Types()
	base := c.BindExpression(s.Base)
	if base.ExprKind() == ExprInvalid {
		return base
	}

	// selecting into an instance array or generate array navigates the
	// hierarchy
	if nv, ok := base.(*NamedValueExpr); ok && nv.IsHierarchical {
		return c.bindHierarchicalSelect(nv, s)
	}

	index := c.BindExpression(s.Index)
	bt := base.Type().Canonical()

	var elemType types.Type
	switch t := bt.(type) {
	case *types.UnpackedArrayType:
		elemType = t.Elem
	case *types.PackedArrayType:
		elemType = t.Elem
	case *types.IntegralType:
		elemType = store.Scalar(t.Flags() &^ types.FlagSigned)
	case *types.EnumType:
		elemType = store.Scalar(flagsOf(t.Base))
	default:
		if types.IsIntegral(bt) {
			elemType = store.Scalar(flagsOf(bt))
		} else {
			c.report(diag.BadUnaryExpression, s.Span(), base.Type().String())
			return badExpr(store.Error, s.Span())
		}
	}

	expr := &ElementSelectExpr{exprBase: makeExpr(ExprElementSelect, elemType, s.Span()), Value: base, Index: index}
	return c.fold(expr)
}

func flagsOf(t types.Type) types.IntegralFlags {
	flags := types.IntegralFlags(0)
	if t.Canonical().IsFourState() {
		flags |= types.FlagFourState
	}
	return flags
}

func (c Context) bindHierarchicalSelect(nv *NamedValueExpr, s *syntax.ElementSelectExprSyntax) Expression {
	idx, ok := c.evalInt(s.Index)
	if !ok {
		c.report(diag.BadRangeExpression, s.Index.Span())
		return badExpr(c.errType(), s.Span())
	}
	switch sym := nv.Symbol.(type) {
	case *symbols.InstanceArraySymbol:
		elem := sym.ElementAt(idx)
		if elem == nil {
			c.report(diag.ScopeIndexOutOfRange, s.Index.Span(),
				numeric.NewSVInt(32, true, uint64(idx)).String(), sym.Name())
			return badExpr(c.errType(), s.Span())
		}
		return c.bindSymbolRef(elem, s.Span(), true)
	case *symbols.GenerateBlockArraySymbol:
		block := sym.BlockAt(idx)
		if block == nil {
			c.report(diag.ScopeIndexOutOfRange, s.Index.Span(),
				numeric.NewSVInt(32, true, uint64(idx)).String(), sym.Name())
			return badExpr(c.errType(), s.Span())
		}
		return c.bindSymbolRef(block, s.Span(), true)
	default:
		c.report(diag.NotAHierarchicalScope, s.Span(), nv.Symbol.Name())
		return badExpr(c.errType(), s.Span())
	}
}

// rangeOf returns the declared range of a selectable base type.
func rangeOf(t types.Type) (types.ConstantRange, bool) {
	switch ct := t.Canonical().(type) {
	case *types.IntegralType:
		return ct.Range(), true
	case *types.PackedArrayType:
		return ct.Rng, true
	case *types.UnpackedArrayType:
		return ct.Rng, true
	case *types.EnumType:
		if it, ok := ct.Base.Canonical().(*types.IntegralType); ok {
			return it.Range(), true
		}
	case *types.PackedStructType:
		return types.ConstantRange{Left: int32(ct.BitWidth()) - 1, Right: 0}, true
	case *types.PackedUnionType:
		return types.ConstantRange{Left: int32(ct.BitWidth()) - 1, Right: 0}, true
	}
	return types.ConstantRange{}, false
}

func (c Context) bindRangeSelect(s *syntax.RangeSelectExprSyntax) Expression {
	store := c.Comp.Types()
	base := c.BindExpression(s.Base)
	if base.ExprKind() == ExprInvalid {
		return base
	}

	declared, ok := rangeOf(base.Type())
	if !ok {
		c.report(diag.BadUnaryExpression, s.Span(), base.Type().String())
		return badExpr(store.Error, s.Span())
	}

	var elemType types.Type
	unpacked := false
	switch t := base.Type().Canonical().(type) {
	case *types.UnpackedArrayType:
		elemType = t.Elem
		unpacked = true
	case *types.PackedArrayType:
		elemType = t.Elem
	default:
		elemType = store.Scalar(flagsOf(base.Type()))
	}

	var resultRange types.ConstantRange
	var left, right Expression

	switch s.SelKind {
	case syntax.RangeSimple:
		l, ok1 := c.evalInt(s.Left)
		r, ok2 := c.evalInt(s.Right)
		if !ok1 || !ok2 {
			c.report(diag.BadRangeExpression, s.Span())
			return badExpr(store.Error, s.Span())
		}
		if (l >= r) != declared.IsLittleEndian() && l != r {
			c.report(diag.SelectEndianMismatch, s.Span())
			return badExpr(store.Error, s.Span())
		}
		if !declared.Contains(l) || !declared.Contains(r) {
			c.reportDiag(diag.New(diag.RangeOOB, s.Span(),
				intStr(l), intStr(r)))
			return badExpr(store.Error, s.Span())
		}
		resultRange = types.ConstantRange{Left: int32(l), Right: int32(r)}

	case syntax.RangeIndexedUp, syntax.RangeIndexedDown:
		width, ok := c.evalInt(s.Right)
		if !ok || width <= 0 {
			c.report(diag.RangeWidthNotPositive, s.Right.Span())
			return badExpr(store.Error, s.Span())
		}
		left = c.BindExpression(s.Left)
		if start, ok := c.evalInt(s.Left); ok {
			// concrete range computed with the base's endianness
			var lo, hi int64
			if s.SelKind == syntax.RangeIndexedUp {
				lo, hi = start, start+width-1
			} else {
				lo, hi = start-width+1, start
			}
			if !declared.Contains(lo) || !declared.Contains(hi) {
				c.reportDiag(diag.New(diag.RangeOOB, s.Span(), intStr(lo), intStr(hi)))
				return badExpr(store.Error, s.Span())
			}
			if declared.IsLittleEndian() {
				resultRange = types.ConstantRange{Left: int32(hi), Right: int32(lo)}
			} else {
				resultRange = types.ConstantRange{Left: int32(lo), Right: int32(hi)}
			}
		} else {
			// dynamic start: result type still has the constant width
			resultRange = types.ConstantRange{Left: int32(width) - 1, Right: 0}
			expr := &RangeSelectExpr{
				exprBase: makeExpr(ExprRangeSelect, c.rangeResultType(elemType, resultRange, unpacked), s.Span()),
				SelKind:  s.SelKind, Value: base, Left: left, Right: c.BindExpression(s.Right),
			}
			return expr
		}
	}

	expr := &RangeSelectExpr{
		exprBase:      makeExpr(ExprRangeSelect, c.rangeResultType(elemType, resultRange, unpacked), s.Span()),
		SelKind:       s.SelKind,
		Value:         base,
		Left:          left,
		Right:         right,
		HasConstRange: true,
		ConstRange:    resultRange,
	}
	return c.fold(expr)
}

func (c Context) rangeResultType(elem types.Type, rng types.ConstantRange, unpacked bool) types.Type {
	if unpacked {
		return types.NewUnpackedArray(elem, rng)
	}
	store := c.Comp.Types()
	if elem.BitWidth() == 1 && elem.Canonical().TypeKind() == types.KindScalar {
		return store.VectorWithRange(rng, flagsOf(elem))
	}
	return types.NewPackedArray(elem, rng)
}

func intStr(v int64) string {
	return numeric.FromInt64(32, true, v).String()
}
