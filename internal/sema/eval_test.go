package sema

import (
	"testing"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

type evalComp struct {
	store *types.Store
	bag   *diag.Bag
}

func newEvalComp() *evalComp {
	return &evalComp{store: types.NewStore(), bag: diag.NewBag(0)}
}

func (f *evalComp) Types() *types.Store                                { return f.store }
func (f *evalComp) Report(d diag.Diagnostic)                           { f.bag.Add(d) }
func (f *evalComp) PackageByName(string) *symbols.PackageSymbol       { return nil }
func (f *evalComp) DefinitionByName(string) *symbols.DefinitionSymbol { return nil }
func (f *evalComp) UnitScopes() []*symbols.Scope                       { return nil }

func intLit(store *types.Store, width uint32, signed bool, v int64) *IntegerLiteralExpr {
	flags := types.IntegralFlags(0)
	if signed {
		flags |= types.FlagSigned
	}
	sv := numeric.FromInt64(width, signed, v)
	e := &IntegerLiteralExpr{
		exprBase: makeExpr(ExprIntegerLiteral, store.Vector(width, flags), source.Span{}),
		Value:    sv,
	}
	e.constant = numeric.IntegerValue(sv)
	return e
}

func TestEvalBinaryShortCircuit(t *testing.T) {
	comp := newEvalComp()
	store := comp.store
	ev := NewEvalContext(comp)

	// 0 && <invalid> must short-circuit to false
	bad := badExpr(store.Error, source.Span{})
	expr := &BinaryExpr{
		exprBase: makeExpr(ExprBinary, store.Bit, source.Span{}),
		Op:       syntax.BinaryLogicalAnd,
		Left:     intLit(store, 1, false, 0),
		Right:    bad,
	}
	v := ev.Eval(expr)
	if !v.IsFalse() {
		t.Fatalf("0 && x = %v", v)
	}

	// 1 || <invalid> short-circuits to true
	expr.Op = syntax.BinaryLogicalOr
	expr.Left = intLit(store, 1, false, 1)
	if v := ev.Eval(expr); !v.IsTrue() {
		t.Fatalf("1 || x = %v", v)
	}

	// 1 && <invalid> must fail
	expr.Op = syntax.BinaryLogicalAnd
	if v := ev.Eval(expr); !v.IsInvalid() {
		t.Fatalf("1 && <invalid> must be invalid")
	}
}

func TestEvalOutOfBoundsIndexProducesNote(t *testing.T) {
	comp := newEvalComp()
	store := comp.store
	ev := NewEvalContext(comp)

	arr := intLit(store, 8, false, 0xFF)
	sel := &ElementSelectExpr{
		exprBase: makeExpr(ExprElementSelect, store.Logic, source.Span{}),
		Value:    arr,
		Index:    intLit(store, 32, true, 42),
	}
	v := ev.Eval(sel)
	if !v.IsInvalid() {
		t.Fatalf("out-of-bounds select must be invalid")
	}
	found := false
	for _, d := range ev.Diags() {
		if d.Code == diag.NoteArrayIndexInvalid {
			found = true
		}
	}
	if !found {
		t.Fatalf("NoteArrayIndexInvalid expected, got %+v", ev.Diags())
	}
}

func TestLValueStoreAndLoad(t *testing.T) {
	comp := newEvalComp()
	store := comp.store
	ev := NewEvalContext(comp)

	sub := symbols.NewSubroutineSymbol(comp, &syntax.FunctionDeclSyntax{})
	ev.PushFrame(sub, symbols.LookupMax)
	v := symbols.NewVariableSymbol("v", source.Span{}, nil)
	ev.CreateLocal(v, numeric.IntegerValue(numeric.NewSVInt(8, false, 0)))

	named := &NamedValueExpr{
		exprBase: makeExpr(ExprNamedValue, store.Vector(8, 0), source.Span{}),
		Symbol:   v,
	}
	lv := ev.EvalLValue(named)
	if lv == nil {
		t.Fatalf("lvalue construction failed")
	}
	lv.Store(numeric.IntegerValue(numeric.NewSVInt(8, false, 0xA5)))
	if got, _ := lv.Load().Integer().AsUint64(); got != 0xA5 {
		t.Fatalf("load after store = %x", got)
	}

	// bit-range cursor writes through to the same storage
	sel := &RangeSelectExpr{
		exprBase:      makeExpr(ExprRangeSelect, store.Vector(4, 0), source.Span{}),
		SelKind:       syntax.RangeSimple,
		Value:         named,
		HasConstRange: true,
		ConstRange:    types.ConstantRange{Left: 7, Right: 4},
	}
	rangeLV := ev.EvalLValue(sel)
	rangeLV.Store(numeric.IntegerValue(numeric.NewSVInt(4, false, 0xF)))
	if got, _ := ev.Local(v).Integer().AsUint64(); got != 0xF5 {
		t.Fatalf("after range store = %x", got)
	}
}

func TestConcatLValueScatterGather(t *testing.T) {
	comp := newEvalComp()
	store := comp.store
	ev := NewEvalContext(comp)

	sub := symbols.NewSubroutineSymbol(comp, &syntax.FunctionDeclSyntax{})
	ev.PushFrame(sub, symbols.LookupMax)
	hi := symbols.NewVariableSymbol("hi", source.Span{}, nil)
	lo := symbols.NewVariableSymbol("lo", source.Span{}, nil)
	ev.CreateLocal(hi, numeric.IntegerValue(numeric.NewSVInt(4, false, 0)))
	ev.CreateLocal(lo, numeric.IntegerValue(numeric.NewSVInt(4, false, 0)))

	hiRef := &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, store.Vector(4, 0), source.Span{}), Symbol: hi}
	loRef := &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, store.Vector(4, 0), source.Span{}), Symbol: lo}
	concat := &ConcatExpr{
		exprBase: makeExpr(ExprConcat, store.Vector(8, 0), source.Span{}),
		Operands: []Expression{hiRef, loRef},
	}

	lv := ev.EvalLValue(concat)
	lv.Store(numeric.IntegerValue(numeric.NewSVInt(8, false, 0xC3)))
	if got, _ := ev.Local(hi).Integer().AsUint64(); got != 0xC {
		t.Fatalf("hi after scatter = %x", got)
	}
	if got, _ := ev.Local(lo).Integer().AsUint64(); got != 0x3 {
		t.Fatalf("lo after scatter = %x", got)
	}
	if got, _ := lv.Load().Integer().AsUint64(); got != 0xC3 {
		t.Fatalf("gather = %x", got)
	}
}

func TestConvertValue(t *testing.T) {
	store := types.NewStore()

	// integral resize and sign change
	v := convertValue(numeric.IntegerValue(numeric.FromInt64(8, true, -1)), store.Byte, store.Vector(4, 0))
	if got, _ := v.Integer().AsUint64(); got != 0xF {
		t.Fatalf("truncate -1 to 4 bits = %x", got)
	}

	// real to integral rounds
	v = convertValue(numeric.RealValue(2.6), store.Real, store.Int)
	if got, _ := v.Integer().AsInt64(); got != 3 {
		t.Fatalf("round(2.6) = %d", got)
	}

	// integral to real
	v = convertValue(numeric.IntegerValue(numeric.FromInt64(32, true, -7)), store.Int, store.Real)
	if v.Real() != -7 {
		t.Fatalf("int to real = %v", v)
	}

	// string/integral bit bridging
	v = convertValue(numeric.StringValue("AB"), store.Str, store.Vector(16, 0))
	if got, _ := v.Integer().AsUint64(); got != 0x4142 {
		t.Fatalf("string to bits = %x", got)
	}
	v = convertValue(numeric.IntegerValue(numeric.NewSVInt(16, false, 0x4142)), store.Vector(16, 0), store.Str)
	if v.Str() != "AB" {
		t.Fatalf("bits to string = %q", v.Str())
	}
}

func TestMergeUnknownConditional(t *testing.T) {
	a, _ := numeric.ParseVector(4, false, 'b', "1100")
	b, _ := numeric.ParseVector(4, false, 'b', "1010")
	m := mergeUnknown(a, b)
	if m.Bit(3) != numeric.L1 || m.Bit(0) != numeric.L0 {
		t.Fatalf("agreeing bits wrong: %v", m)
	}
	if m.Bit(2) != numeric.LX || m.Bit(1) != numeric.LX {
		t.Fatalf("disagreeing bits must be x: %v", m)
	}
}

func TestIsLValueClassification(t *testing.T) {
	store := types.NewStore()
	v := symbols.NewVariableSymbol("v", source.Span{}, nil)
	named := &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, store.Int, source.Span{}), Symbol: v}
	if !IsLValue(named) {
		t.Fatalf("variables are lvalues")
	}

	lit := intLit(store, 8, false, 1)
	if IsLValue(lit) {
		t.Fatalf("literals are not lvalues")
	}

	sel := &ElementSelectExpr{exprBase: makeExpr(ExprElementSelect, store.Bit, source.Span{}), Value: named, Index: lit}
	if !IsLValue(sel) {
		t.Fatalf("selects of lvalues are lvalues")
	}

	goodConcat := &ConcatExpr{exprBase: makeExpr(ExprConcat, store.Int, source.Span{}), Operands: []Expression{named, sel}}
	if !IsLValue(goodConcat) {
		t.Fatalf("concatenations of lvalues are lvalues")
	}
	badConcat := &ConcatExpr{exprBase: makeExpr(ExprConcat, store.Int, source.Span{}), Operands: []Expression{named, lit}}
	if IsLValue(badConcat) {
		t.Fatalf("a concat containing an rvalue is not an lvalue")
	}

	p := symbols.NewParameterSymbol("p", source.Span{}, nil, false, true)
	paramRef := &NamedValueExpr{exprBase: makeExpr(ExprNamedValue, store.Int, source.Span{}), Symbol: p}
	if IsLValue(paramRef) {
		t.Fatalf("parameters are not lvalues")
	}
}

func TestEvalStepBudget(t *testing.T) {
	comp := newEvalComp()
	store := comp.store
	ev := NewEvalContext(comp)
	sub := symbols.NewSubroutineSymbol(comp, &syntax.FunctionDeclSyntax{})
	ev.PushFrame(sub, symbols.LookupMax)

	// forever loop with no break must trip the iteration limit
	loop := &ForeverStmt{
		stmtBase: makeStmt(StmtForever, source.Span{}),
		Body:     &EmptyStmt{stmtBase: makeStmt(StmtEmpty, source.Span{})},
	}
	if res := ev.ExecStatement(loop); res != EvalFail {
		t.Fatalf("runaway loop must fail, got %v", res)
	}
	found := false
	for _, d := range ev.Diags() {
		if d.Code == diag.ConstEvalLoopLimit {
			found = true
		}
	}
	if !found {
		t.Fatalf("ConstEvalLoopLimit expected")
	}
	_ = store
}
