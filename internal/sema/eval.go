package sema

import (
	"math"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// evalStepLimit bounds total loop iterations during constant evaluation.
const evalStepLimit = 1 << 20

// Frame is one constant-evaluation activation record.
type Frame struct {
	Subroutine   *symbols.SubroutineSymbol
	CallLocation symbols.LookupLocation
	locals       map[symbols.Symbol]*numeric.Value
}

// EvalContext drives constant evaluation: a stack of frames with local
// storage, collected diagnostics, and mode flags.
type EvalContext struct {
	comp   symbols.Compilation
	frames []*Frame

	diags []diag.Diagnostic
	// silent suppresses diagnostics entirely (opportunistic folding).
	silent bool
	// ScriptEval relaxes constant-function restrictions for REPL contexts.
	ScriptEval bool
	// Verifying collects diagnostics without halting on the first failure.
	Verifying bool

	steps int
}

// NewEvalContext creates an evaluator with no active frames.
func NewEvalContext(comp symbols.Compilation) *EvalContext {
	return &EvalContext{comp: comp}
}

// PushFrame enters a subroutine activation.
func (ev *EvalContext) PushFrame(sub *symbols.SubroutineSymbol, callLoc symbols.LookupLocation) {
	ev.frames = append(ev.frames, &Frame{
		Subroutine:   sub,
		CallLocation: callLoc,
		locals:       make(map[symbols.Symbol]*numeric.Value),
	})
}

// PopFrame exits the innermost activation.
func (ev *EvalContext) PopFrame() {
	ev.frames = ev.frames[:len(ev.frames)-1]
}

// topFrame returns the innermost frame or nil at top level.
func (ev *EvalContext) topFrame() *Frame {
	if len(ev.frames) == 0 {
		return nil
	}
	return ev.frames[len(ev.frames)-1]
}

// CreateLocal allocates storage for a symbol in the current frame.
func (ev *EvalContext) CreateLocal(sym symbols.Symbol, initial numeric.Value) *numeric.Value {
	frame := ev.topFrame()
	if frame == nil {
		return nil
	}
	slot := new(numeric.Value)
	*slot = initial.Clone()
	frame.locals[sym] = slot
	return slot
}

// Local finds a symbol's storage slot in the current frame.
func (ev *EvalContext) Local(sym symbols.Symbol) *numeric.Value {
	frame := ev.topFrame()
	if frame == nil {
		return nil
	}
	return frame.locals[sym]
}

// Diags returns the diagnostics collected during evaluation.
func (ev *EvalContext) Diags() []diag.Diagnostic { return ev.diags }

func (ev *EvalContext) note(code diag.Code, span source.Span, args ...any) {
	if ev.silent {
		return
	}
	ev.diags = append(ev.diags, diag.New(code, span, args...))
}

func (ev *EvalContext) budget(span source.Span) bool {
	ev.steps++
	if ev.steps > evalStepLimit {
		ev.note(diag.ConstEvalLoopLimit, span, evalStepLimit)
		return false
	}
	return true
}

// EvalConstant evaluates a bound expression in a constant context; failures
// report an "expression is not constant" diagnostic carrying the evaluator's
// notes.
func (c Context) EvalConstant(e Expression) numeric.Value {
	if e == nil || e.ExprKind() == ExprInvalid {
		return numeric.Invalid
	}
	if v := e.Constant(); !v.IsInvalid() {
		return v
	}
	ev := NewEvalContext(c.Comp)
	v := ev.Eval(e)
	if v.IsInvalid() {
		d := diag.New(diag.ExpressionNotConstant, e.Span())
		for _, n := range ev.diags {
			d.Notes = append(d.Notes, diag.Note{Code: n.Code, Span: n.Primary, Msg: n.Message})
		}
		c.reportDiag(d)
		return numeric.Invalid
	}
	setConst(e, v)
	return v
}

// Eval interprets a bound expression, returning Invalid on failure.
func (ev *EvalContext) Eval(e Expression) numeric.Value {
	if e == nil {
		return numeric.Invalid
	}

	switch n := e.(type) {
	case *InvalidExpr:
		return numeric.Invalid

	case *IntegerLiteralExpr, *RealLiteralExpr, *StringLiteralExpr,
		*NullLiteralExpr, *UnbasedUnsizedLiteralExpr:
		return e.Constant()

	case *NamedValueExpr:
		return ev.evalNamedValue(n)

	case *TypeReferenceExpr:
		return numeric.Invalid

	case *UnaryExpr:
		return ev.evalUnary(n)

	case *BinaryExpr:
		return ev.evalBinary(n)

	case *ConditionalExpr:
		return ev.evalConditional(n)

	case *AssignmentExpr:
		return ev.evalAssignment(n)

	case *ConcatExpr:
		return ev.evalConcat(n)

	case *ReplicationExpr:
		inner := ev.Eval(n.Operand)
		if inner.IsInvalid() {
			return numeric.Invalid
		}
		if inner.Kind() == numeric.KindString {
			s := ""
			for i := uint32(0); i < n.Count; i++ {
				s += inner.Str()
			}
			return numeric.StringValue(s)
		}
		if n.Count == 0 {
			return numeric.IntegerValue(numeric.NewSVInt(1, false, 0))
		}
		return numeric.IntegerValue(inner.Integer().Replicate(n.Count))

	case *ElementSelectExpr:
		return ev.evalElementSelect(n)

	case *RangeSelectExpr:
		return ev.evalRangeSelect(n)

	case *MemberAccessExpr:
		return ev.evalMemberAccess(n)

	case *CallExpr:
		return ev.evalCall(n)

	case *ConversionExpr:
		v := ev.Eval(n.Operand)
		if v.IsInvalid() {
			return numeric.Invalid
		}
		return convertValue(v, n.Operand.Type(), n.Type())

	case *AssignmentPatternExpr:
		return ev.evalPattern(n)

	default:
		return numeric.Invalid
	}
}

func (ev *EvalContext) evalNamedValue(n *NamedValueExpr) numeric.Value {
	if !n.Constant().IsInvalid() {
		return n.Constant()
	}

	switch sym := n.Symbol.(type) {
	case *symbols.ParameterSymbol:
		return ParameterValue(ev.comp, sym)

	case *symbols.EnumValueSymbol:
		return sym.Value

	default:
		if slot := ev.Local(n.Symbol); slot != nil {
			return slot.Clone()
		}
		ev.note(diag.ConstEvalIdentifierNotLocal, n.Span(), n.Symbol.Name())
		return numeric.Invalid
	}
}

func (ev *EvalContext) evalUnary(n *UnaryExpr) numeric.Value {
	v := ev.Eval(n.Operand)
	if v.IsInvalid() {
		return numeric.Invalid
	}

	if v.Kind() == numeric.KindReal || v.Kind() == numeric.KindShortReal {
		f, _ := v.AsReal()
		switch n.Op {
		case syntax.UnaryPlus:
			return numeric.RealValue(f)
		case syntax.UnaryMinus:
			return numeric.RealValue(-f)
		case syntax.UnaryLogicalNot:
			return boolValue(f == 0)
		}
		return numeric.Invalid
	}
	if v.Kind() != numeric.KindInteger {
		if n.Op == syntax.UnaryLogicalNot {
			return logicValue(notTruth(v.Truth()))
		}
		return numeric.Invalid
	}

	iv := v.Integer()
	switch n.Op {
	case syntax.UnaryPlus:
		return numeric.IntegerValue(iv)
	case syntax.UnaryMinus:
		return numeric.IntegerValue(iv.Neg())
	case syntax.UnaryBitwiseNot:
		return numeric.IntegerValue(iv.Not())
	case syntax.UnaryLogicalNot:
		return logicValue(notTruth(iv.Truth()))
	case syntax.UnaryReductionAnd:
		return logicValue(iv.ReduceAnd())
	case syntax.UnaryReductionOr:
		return logicValue(iv.ReduceOr())
	case syntax.UnaryReductionXor:
		return logicValue(iv.ReduceXor())
	case syntax.UnaryReductionNand:
		return logicValue(notTruth(iv.ReduceAnd()))
	case syntax.UnaryReductionNor:
		return logicValue(notTruth(iv.ReduceOr()))
	case syntax.UnaryReductionXnor:
		return logicValue(notTruth(iv.ReduceXor()))
	}
	return numeric.Invalid
}

func notTruth(l numeric.Logic) numeric.Logic {
	switch l {
	case numeric.L0:
		return numeric.L1
	case numeric.L1:
		return numeric.L0
	default:
		return numeric.LX
	}
}

func logicValue(l numeric.Logic) numeric.Value {
	return numeric.IntegerValue(numeric.FromLogic(l))
}

func boolValue(b bool) numeric.Value {
	if b {
		return numeric.IntegerValue(numeric.NewSVInt(1, false, 1))
	}
	return numeric.IntegerValue(numeric.NewSVInt(1, false, 0))
}

func (ev *EvalContext) evalBinary(n *BinaryExpr) numeric.Value {
	// short-circuit forms first
	switch n.Op {
	case syntax.BinaryLogicalAnd:
		lhs := ev.Eval(n.Left)
		if lhs.IsInvalid() {
			return numeric.Invalid
		}
		if lhs.IsFalse() {
			return boolValue(false)
		}
		rhs := ev.Eval(n.Right)
		if rhs.IsInvalid() {
			return numeric.Invalid
		}
		return logicValue(andTruth(lhs.Truth(), rhs.Truth()))

	case syntax.BinaryLogicalOr:
		lhs := ev.Eval(n.Left)
		if lhs.IsInvalid() {
			return numeric.Invalid
		}
		if lhs.IsTrue() {
			return boolValue(true)
		}
		rhs := ev.Eval(n.Right)
		if rhs.IsInvalid() {
			return numeric.Invalid
		}
		return logicValue(orTruth(lhs.Truth(), rhs.Truth()))
	}

	lhs := ev.Eval(n.Left)
	if lhs.IsInvalid() {
		return numeric.Invalid
	}
	rhs := ev.Eval(n.Right)
	if rhs.IsInvalid() {
		return numeric.Invalid
	}

	// string operations
	if lhs.Kind() == numeric.KindString && rhs.Kind() == numeric.KindString {
		return evalStringBinary(n.Op, lhs.Str(), rhs.Str())
	}

	// real operations
	if lhs.Kind() == numeric.KindReal || lhs.Kind() == numeric.KindShortReal ||
		rhs.Kind() == numeric.KindReal || rhs.Kind() == numeric.KindShortReal {
		lf, ok1 := lhs.AsReal()
		rf, ok2 := rhs.AsReal()
		if !ok1 || !ok2 {
			return numeric.Invalid
		}
		return evalRealBinary(n.Op, lf, rf)
	}

	if lhs.Kind() != numeric.KindInteger || rhs.Kind() != numeric.KindInteger {
		// null comparisons
		if n.Op == syntax.BinaryEquality || n.Op == syntax.BinaryCaseEquality {
			return boolValue(lhs.Equivalent(rhs))
		}
		if n.Op == syntax.BinaryInequality || n.Op == syntax.BinaryCaseInequality {
			return boolValue(!lhs.Equivalent(rhs))
		}
		return numeric.Invalid
	}

	a, b := lhs.Integer(), rhs.Integer()
	switch n.Op {
	case syntax.BinaryAdd:
		return numeric.IntegerValue(a.Add(b))
	case syntax.BinarySubtract:
		return numeric.IntegerValue(a.Sub(b))
	case syntax.BinaryMultiply:
		return numeric.IntegerValue(a.Mul(b))
	case syntax.BinaryDivide:
		return numeric.IntegerValue(a.Div(b))
	case syntax.BinaryMod:
		return numeric.IntegerValue(a.Mod(b))
	case syntax.BinaryPower:
		return numeric.IntegerValue(a.Pow(b))
	case syntax.BinaryBitwiseAnd:
		return numeric.IntegerValue(a.And(b))
	case syntax.BinaryBitwiseOr:
		return numeric.IntegerValue(a.Or(b))
	case syntax.BinaryBitwiseXor:
		return numeric.IntegerValue(a.Xor(b))
	case syntax.BinaryBitwiseXnor:
		return numeric.IntegerValue(a.Xnor(b))
	case syntax.BinaryEquality:
		return logicValue(a.Eq(b))
	case syntax.BinaryInequality:
		return logicValue(a.Ne(b))
	case syntax.BinaryCaseEquality:
		return logicValue(a.CaseEq(b))
	case syntax.BinaryCaseInequality:
		return logicValue(a.CaseNe(b))
	case syntax.BinaryWildcardEquality:
		return logicValue(a.WildcardEq(b))
	case syntax.BinaryWildcardInequality:
		return logicValue(a.WildcardNe(b))
	case syntax.BinaryLessThan:
		return logicValue(a.Lt(b))
	case syntax.BinaryLessThanEqual:
		return logicValue(a.Le(b))
	case syntax.BinaryGreaterThan:
		return logicValue(a.Gt(b))
	case syntax.BinaryGreaterThanEqual:
		return logicValue(a.Ge(b))
	case syntax.BinaryLogicalShiftLeft, syntax.BinaryArithmeticShiftLeft:
		return numeric.IntegerValue(a.Shl(b))
	case syntax.BinaryLogicalShiftRight:
		return numeric.IntegerValue(a.LShr(b))
	case syntax.BinaryArithmeticShiftRight:
		return numeric.IntegerValue(a.AShr(b))
	}
	return numeric.Invalid
}

func andTruth(a, b numeric.Logic) numeric.Logic {
	if a == numeric.L0 || b == numeric.L0 {
		return numeric.L0
	}
	if a == numeric.L1 && b == numeric.L1 {
		return numeric.L1
	}
	return numeric.LX
}

func orTruth(a, b numeric.Logic) numeric.Logic {
	if a == numeric.L1 || b == numeric.L1 {
		return numeric.L1
	}
	if a == numeric.L0 && b == numeric.L0 {
		return numeric.L0
	}
	return numeric.LX
}

func evalStringBinary(op syntax.BinaryOp, a, b string) numeric.Value {
	switch op {
	case syntax.BinaryEquality, syntax.BinaryCaseEquality:
		return boolValue(a == b)
	case syntax.BinaryInequality, syntax.BinaryCaseInequality:
		return boolValue(a != b)
	case syntax.BinaryLessThan:
		return boolValue(a < b)
	case syntax.BinaryLessThanEqual:
		return boolValue(a <= b)
	case syntax.BinaryGreaterThan:
		return boolValue(a > b)
	case syntax.BinaryGreaterThanEqual:
		return boolValue(a >= b)
	default:
		// the binder rejects every other string operator
		return numeric.Invalid
	}
}

func evalRealBinary(op syntax.BinaryOp, a, b float64) numeric.Value {
	switch op {
	case syntax.BinaryAdd:
		return numeric.RealValue(a + b)
	case syntax.BinarySubtract:
		return numeric.RealValue(a - b)
	case syntax.BinaryMultiply:
		return numeric.RealValue(a * b)
	case syntax.BinaryDivide:
		return numeric.RealValue(a / b)
	case syntax.BinaryPower:
		return numeric.RealValue(math.Pow(a, b))
	case syntax.BinaryEquality:
		return boolValue(a == b)
	case syntax.BinaryInequality:
		return boolValue(a != b)
	case syntax.BinaryLessThan:
		return boolValue(a < b)
	case syntax.BinaryLessThanEqual:
		return boolValue(a <= b)
	case syntax.BinaryGreaterThan:
		return boolValue(a > b)
	case syntax.BinaryGreaterThanEqual:
		return boolValue(a >= b)
	case syntax.BinaryLogicalAnd:
		return boolValue(a != 0 && b != 0)
	case syntax.BinaryLogicalOr:
		return boolValue(a != 0 || b != 0)
	default:
		return numeric.Invalid
	}
}

func (ev *EvalContext) evalConditional(n *ConditionalExpr) numeric.Value {
	pred := ev.Eval(n.Pred)
	if pred.IsInvalid() {
		return numeric.Invalid
	}
	switch pred.Truth() {
	case numeric.L1:
		return ev.convertBranch(n, ev.Eval(n.Left), n.Left)
	case numeric.L0:
		return ev.convertBranch(n, ev.Eval(n.Right), n.Right)
	default:
		// unknown predicate bits: evaluate both arms and merge bitwise,
		// keeping agreeing bits and X-ing the rest
		lhs := ev.Eval(n.Left)
		rhs := ev.Eval(n.Right)
		if lhs.IsInvalid() || rhs.IsInvalid() {
			return numeric.Invalid
		}
		if lhs.Kind() == numeric.KindInteger && rhs.Kind() == numeric.KindInteger {
			return numeric.IntegerValue(mergeUnknown(lhs.Integer(), rhs.Integer()))
		}
		if lhs.Equivalent(rhs) {
			return lhs
		}
		return numeric.Invalid
	}
}

func (ev *EvalContext) convertBranch(n *ConditionalExpr, v numeric.Value, branch Expression) numeric.Value {
	if v.IsInvalid() {
		return numeric.Invalid
	}
	return convertValue(v, branch.Type(), n.Type())
}

// mergeUnknown combines the two arms of an unknown-predicate conditional.
func mergeUnknown(a, b numeric.SVInt) numeric.SVInt {
	w := a.Width()
	if b.Width() > w {
		w = b.Width()
	}
	out := numeric.AllX(w, a.IsSigned() && b.IsSigned())
	for i := uint32(0); i < w; i++ {
		ba, bb := a.Bit(i), b.Bit(i)
		if ba == bb && !ba.IsUnknown() {
			out = out.SetSlice(int64(i), int64(i), numeric.FromLogic(ba))
		}
	}
	return out
}

func (ev *EvalContext) evalConcat(n *ConcatExpr) numeric.Value {
	if types.IsString(n.Type()) {
		s := ""
		for _, op := range n.Operands {
			v := ev.Eval(op)
			if v.IsInvalid() {
				return numeric.Invalid
			}
			s += v.Str()
		}
		return numeric.StringValue(s)
	}

	var parts []numeric.SVInt
	for _, op := range n.Operands {
		v := ev.Eval(op)
		if v.IsInvalid() || v.Kind() != numeric.KindInteger {
			return numeric.Invalid
		}
		parts = append(parts, v.Integer())
	}
	if len(parts) == 0 {
		return numeric.Invalid
	}
	result := parts[0]
	if len(parts) > 1 {
		result = parts[0].Concat(parts[1:]...)
	}
	return numeric.IntegerValue(result)
}

func (ev *EvalContext) evalElementSelect(n *ElementSelectExpr) numeric.Value {
	base := ev.Eval(n.Value)
	if base.IsInvalid() {
		return numeric.Invalid
	}
	idxVal := ev.Eval(n.Index)
	if idxVal.IsInvalid() || idxVal.Kind() != numeric.KindInteger {
		return numeric.Invalid
	}
	if idxVal.Integer().HasUnknown() {
		return ev.outOfBoundsElement(n, idxVal)
	}
	idx, ok := idxVal.Integer().AsInt64()
	if !ok {
		return ev.outOfBoundsElement(n, idxVal)
	}

	rng, ok := rangeOf(n.Value.Type())
	if !ok || !rng.Contains(idx) {
		return ev.outOfBoundsElement(n, idxVal)
	}

	if base.Kind() == numeric.KindElements {
		return base.ElementAt(int(rng.SlotOffset(idx))).Clone()
	}
	if base.Kind() != numeric.KindInteger {
		return numeric.Invalid
	}
	elemWidth := int64(n.Type().BitWidth())
	lo := rng.Offset(idx) * elemWidth
	return numeric.IntegerValue(base.Integer().Slice(lo+elemWidth-1, lo))
}

func (ev *EvalContext) outOfBoundsElement(n *ElementSelectExpr, idx numeric.Value) numeric.Value {
	rng, _ := rangeOf(n.Value.Type())
	ev.note(diag.NoteArrayIndexInvalid, n.Index.Span(), idx.String(), rng.String())
	return numeric.Invalid
}

func (ev *EvalContext) evalRangeSelect(n *RangeSelectExpr) numeric.Value {
	base := ev.Eval(n.Value)
	if base.IsInvalid() {
		return numeric.Invalid
	}

	declared, ok := rangeOf(n.Value.Type())
	if !ok {
		return numeric.Invalid
	}

	sel := n.ConstRange
	if !n.HasConstRange {
		// dynamic indexed select: compute the concrete range now
		startVal := ev.Eval(n.Left)
		if startVal.IsInvalid() || startVal.Kind() != numeric.KindInteger {
			return numeric.Invalid
		}
		start, ok := startVal.Integer().AsInt64()
		if !ok {
			ev.note(diag.NotePartSelectInvalid, n.Span(), startVal.String(), startVal.String())
			return numeric.Invalid
		}
		width := int64(n.Type().Canonical().BitWidth())
		if ua, isU := n.Value.Type().Canonical().(*types.UnpackedArrayType); isU {
			_ = ua
			width = int64(rangeOfWidth(n.Type()))
		}
		var lo, hi int64
		if n.SelKind == syntax.RangeIndexedUp {
			lo, hi = start, start+width-1
		} else {
			lo, hi = start-width+1, start
		}
		if !declared.Contains(lo) || !declared.Contains(hi) {
			ev.note(diag.NotePartSelectInvalid, n.Span(), intStr(lo), intStr(hi))
			return numeric.Invalid
		}
		if declared.IsLittleEndian() {
			sel = types.ConstantRange{Left: int32(hi), Right: int32(lo)}
		} else {
			sel = types.ConstantRange{Left: int32(lo), Right: int32(hi)}
		}
	}

	if base.Kind() == numeric.KindElements {
		// keep the slice in the select's left-to-right order
		var elems []numeric.Value
		for k := int64(0); k < int64(sel.Width()); k++ {
			idx := int64(sel.Left) + k
			if sel.IsLittleEndian() {
				idx = int64(sel.Left) - k
			}
			elems = append(elems, base.ElementAt(int(declared.SlotOffset(idx))).Clone())
		}
		return numeric.ElementsValue(elems)
	}
	if base.Kind() != numeric.KindInteger {
		return numeric.Invalid
	}

	elemWidth := int64(1)
	if pa, ok := n.Value.Type().Canonical().(*types.PackedArrayType); ok {
		elemWidth = int64(pa.Elem.BitWidth())
	}
	lowOff := declared.Offset(int64(sel.Lower()))
	highOff := declared.Offset(int64(sel.Upper()))
	if highOff < lowOff {
		lowOff, highOff = highOff, lowOff
	}
	lo := lowOff * elemWidth
	hi := (highOff+1)*elemWidth - 1
	return numeric.IntegerValue(base.Integer().Slice(hi, lo))
}

func rangeOfWidth(t types.Type) uint32 {
	if r, ok := rangeOf(t); ok {
		return r.Width()
	}
	return t.BitWidth()
}

func (ev *EvalContext) evalMemberAccess(n *MemberAccessExpr) numeric.Value {
	base := ev.Eval(n.Value)
	if base.IsInvalid() {
		return numeric.Invalid
	}
	switch base.Kind() {
	case numeric.KindElements:
		ct := n.Value.Type().Canonical()
		if _, isUnion := ct.(*types.UnpackedUnionType); isUnion {
			return base.ElementAt(0).Clone()
		}
		return base.ElementAt(n.Field.Index).Clone()
	case numeric.KindInteger:
		w := int64(n.Field.Type.BitWidth())
		lo := int64(n.Field.BitOffset)
		return numeric.IntegerValue(base.Integer().Slice(lo+w-1, lo))
	default:
		return numeric.Invalid
	}
}

func (ev *EvalContext) evalPattern(n *AssignmentPatternExpr) numeric.Value {
	ct := n.Type().Canonical()
	if types.IsIntegral(ct) {
		// packed target: elements concatenate MSB-first
		var parts []numeric.SVInt
		for _, e := range n.Elements {
			v := ev.Eval(e)
			if v.IsInvalid() || v.Kind() != numeric.KindInteger {
				return numeric.Invalid
			}
			parts = append(parts, v.Integer())
		}
		if len(parts) == 0 {
			return numeric.Invalid
		}
		result := parts[0]
		if len(parts) > 1 {
			result = parts[0].Concat(parts[1:]...)
		}
		return numeric.IntegerValue(result.Resize(ct.BitWidth()).AsSigned(ct.IsSigned()))
	}

	elems := make([]numeric.Value, 0, len(n.Elements))
	for _, e := range n.Elements {
		v := ev.Eval(e)
		if v.IsInvalid() {
			return numeric.Invalid
		}
		elems = append(elems, v)
	}
	return numeric.ElementsValue(elems)
}

// convertValue adapts a value from one type to another per conversion
// semantics.
func convertValue(v numeric.Value, from, to types.Type) numeric.Value {
	cf, ct := from.Canonical(), to.Canonical()

	switch {
	case types.IsIntegral(ct) && v.Kind() == numeric.KindInteger:
		return numeric.IntegerValue(v.Integer().Resize(ct.BitWidth()).AsSigned(ct.IsSigned()))

	case types.IsIntegral(ct) && (v.Kind() == numeric.KindReal || v.Kind() == numeric.KindShortReal):
		f, _ := v.AsReal()
		return numeric.IntegerValue(numeric.FromInt64(ct.BitWidth(), ct.IsSigned(), int64(math.Round(f))))

	case types.IsIntegral(ct) && v.Kind() == numeric.KindString:
		// string to integral: character bits, last char in the low byte
		s := v.Str()
		w := ct.BitWidth()
		result := numeric.NewSVInt(w, ct.IsSigned(), 0)
		for i := 0; i < len(s); i++ {
			shift := uint64((len(s) - 1 - i) * 8)
			ch := numeric.NewSVInt(w, false, uint64(s[i])).Shl(numeric.NewSVInt(32, false, shift))
			result = result.Or(ch)
		}
		return numeric.IntegerValue(result.AsSigned(ct.IsSigned()))

	case types.IsFloating(ct):
		f, ok := v.AsReal()
		if !ok {
			return numeric.Invalid
		}
		if ct.(*types.FloatType).IsShortReal() {
			return numeric.ShortRealValue(float32(f))
		}
		return numeric.RealValue(f)

	case types.IsString(ct) && v.Kind() == numeric.KindInteger:
		iv := v.Integer()
		var buf []byte
		for i := int64(iv.Width()) - 8; i >= -7; i -= 8 {
			lo := i
			if lo < 0 {
				lo = 0
			}
			b := iv.Slice(i+7, lo)
			if u, ok := b.AsUint64(); ok && u != 0 {
				buf = append(buf, byte(u))
			}
		}
		return numeric.StringValue(string(buf))

	case types.IsString(ct):
		return v

	default:
		_ = cf
		return v
	}
}
