package sema

import (
	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// EvalResult is the statement-evaluation status.
type EvalResult uint8

const (
	EvalOK EvalResult = iota
	EvalReturn
	EvalBreak
	EvalContinue
	EvalFail
)

// evalAssignment executes an assignment during constant evaluation.
func (ev *EvalContext) evalAssignment(n *AssignmentExpr) numeric.Value {
	lv := ev.EvalLValue(n.Left)
	if lv == nil {
		return numeric.Invalid
	}

	rhs := ev.Eval(n.Right)
	if rhs.IsInvalid() {
		return numeric.Invalid
	}

	if n.Compound {
		current := lv.Load()
		if current.IsInvalid() || current.Kind() != numeric.KindInteger || rhs.Kind() != numeric.KindInteger {
			return numeric.Invalid
		}
		combined := ev.evalBinary(&BinaryExpr{
			exprBase: makeExpr(ExprBinary, n.Type(), n.Span()),
			Op:       n.Op,
			Left:     constWrap(current, n.Left),
			Right:    constWrap(rhs, n.Right),
		})
		if combined.IsInvalid() {
			return numeric.Invalid
		}
		rhs = combined
	}

	rhs = convertValue(rhs, n.Right.Type(), n.Left.Type())
	lv.Store(rhs)
	return rhs
}

// constWrap builds a literal node carrying an already-computed value so the
// binary evaluator can reuse its dispatch.
func constWrap(v numeric.Value, like Expression) Expression {
	e := &IntegerLiteralExpr{exprBase: makeExpr(ExprIntegerLiteral, like.Type(), like.Span())}
	if v.Kind() == numeric.KindInteger {
		e.Value = v.Integer()
	}
	e.constant = v
	return e
}

// evalCall interprets a user function call: arguments evaluate in the
// caller's frame, formals and the return slot become locals, then the body
// runs.
func (ev *EvalContext) evalCall(n *CallExpr) numeric.Value {
	if n.SysFunc != nil {
		return n.SysFunc.Eval(ev, n.Args, n.TypeArg)
	}
	sub := n.Subroutine
	if sub == nil || sub.IsTask {
		return numeric.Invalid
	}

	// arguments evaluate before the new frame is pushed
	argValues := make([]numeric.Value, len(sub.Args))
	for i := range sub.Args {
		if i < len(n.Args) {
			v := ev.Eval(n.Args[i])
			if v.IsInvalid() {
				ev.note(diag.NoteInCalledFunction, n.Span(), sub.Name())
				return numeric.Invalid
			}
			argValues[i] = v
		} else {
			_, v := InitializerOf(ev.comp, sub.Args[i])
			argValues[i] = v
		}
	}

	body := BindSubroutineBody(ev.comp, sub)
	if body == nil {
		return numeric.Invalid
	}

	ev.PushFrame(sub, symbols.LookupMax)
	defer ev.PopFrame()

	for i, formal := range sub.Args {
		ev.CreateLocal(formal, argValues[i])
	}
	// the return value slot is addressed by the subroutine symbol itself
	returnType := TypeOf(ev.comp, sub)
	ev.CreateLocal(sub, types.DefaultValue(returnType))

	result := ev.ExecStatement(body)
	switch result {
	case EvalOK, EvalReturn:
		slot := ev.Local(sub)
		if slot == nil {
			return numeric.Invalid
		}
		return slot.Clone()
	default:
		ev.note(diag.NoteInCalledFunction, n.Span(), sub.Name())
		return numeric.Invalid
	}
}

// ExecStatement interprets one bound statement.
func (ev *EvalContext) ExecStatement(s Statement) EvalResult {
	if s == nil {
		return EvalOK
	}
	if !ev.budget(s.Span()) {
		return EvalFail
	}

	switch n := s.(type) {
	case *InvalidStmt:
		return EvalFail

	case *EmptyStmt:
		return EvalOK

	case *ListStmt:
		for _, item := range n.Items {
			if r := ev.ExecStatement(item); r != EvalOK {
				return r
			}
		}
		return EvalOK

	case *BlockStmt:
		return ev.ExecStatement(n.Body)

	case *ExpressionStmt:
		if ev.Eval(n.Expr).IsInvalid() {
			return EvalFail
		}
		return EvalOK

	case *VarDeclStmt:
		initial := types.DefaultValue(TypeOf(ev.comp, n.Variable))
		if init, _ := n.Variable.Declared().BoundInitializer().(Expression); init != nil {
			v := ev.Eval(init)
			if v.IsInvalid() {
				return EvalFail
			}
			initial = convertValue(v, init.Type(), TypeOf(ev.comp, n.Variable))
		}
		ev.CreateLocal(n.Variable, initial)
		return EvalOK

	case *ReturnStmt:
		frame := ev.topFrame()
		if frame == nil || frame.Subroutine == nil {
			return EvalFail
		}
		if n.Expr != nil {
			v := ev.Eval(n.Expr)
			if v.IsInvalid() {
				return EvalFail
			}
			slot := ev.Local(frame.Subroutine)
			if slot != nil {
				*slot = convertValue(v, n.Expr.Type(), TypeOf(ev.comp, frame.Subroutine))
			}
		}
		return EvalReturn

	case *BreakStmt:
		return EvalBreak

	case *ContinueStmt:
		return EvalContinue

	case *ConditionalStmt:
		pred := ev.Eval(n.Cond)
		if pred.IsInvalid() {
			return EvalFail
		}
		if pred.IsTrue() {
			return ev.ExecStatement(n.Then)
		}
		if n.Else != nil {
			return ev.ExecStatement(n.Else)
		}
		return EvalOK

	case *CaseStmt:
		return ev.execCase(n)

	case *ForStmt:
		return ev.execFor(n)

	case *RepeatStmt:
		count := ev.Eval(n.Count)
		if count.IsInvalid() || count.Kind() != numeric.KindInteger {
			return EvalFail
		}
		times, ok := count.Integer().AsInt64()
		if !ok {
			return EvalFail
		}
		for i := int64(0); i < times; i++ {
			if !ev.budget(n.Span()) {
				return EvalFail
			}
			switch ev.ExecStatement(n.Body) {
			case EvalBreak:
				return EvalOK
			case EvalReturn:
				return EvalReturn
			case EvalFail:
				return EvalFail
			}
		}
		return EvalOK

	case *WhileStmt:
		for {
			if !ev.budget(n.Span()) {
				return EvalFail
			}
			pred := ev.Eval(n.Cond)
			if pred.IsInvalid() {
				return EvalFail
			}
			if !pred.IsTrue() {
				return EvalOK
			}
			switch ev.ExecStatement(n.Body) {
			case EvalBreak:
				return EvalOK
			case EvalReturn:
				return EvalReturn
			case EvalFail:
				return EvalFail
			}
		}

	case *DoWhileStmt:
		for {
			if !ev.budget(n.Span()) {
				return EvalFail
			}
			switch ev.ExecStatement(n.Body) {
			case EvalBreak:
				return EvalOK
			case EvalReturn:
				return EvalReturn
			case EvalFail:
				return EvalFail
			}
			pred := ev.Eval(n.Cond)
			if pred.IsInvalid() {
				return EvalFail
			}
			if !pred.IsTrue() {
				return EvalOK
			}
		}

	case *ForeverStmt:
		for {
			if !ev.budget(n.Span()) {
				return EvalFail
			}
			switch ev.ExecStatement(n.Body) {
			case EvalBreak:
				return EvalOK
			case EvalReturn:
				return EvalReturn
			case EvalFail:
				return EvalFail
			}
		}

	case *TimedStmt:
		ev.note(diag.ConstEvalTimingControl, n.Span())
		return EvalFail

	default:
		return EvalFail
	}
}

func (ev *EvalContext) execCase(n *CaseStmt) EvalResult {
	cond := ev.Eval(n.Expr)
	if cond.IsInvalid() {
		return EvalFail
	}

	var defaultItem Statement
	for _, item := range n.Items {
		if item.Exprs == nil {
			defaultItem = item.Stmt
			continue
		}
		for _, e := range item.Exprs {
			v := ev.Eval(e)
			if v.IsInvalid() {
				return EvalFail
			}
			if caseMatches(n, cond, v) {
				return ev.ExecStatement(item.Stmt)
			}
		}
	}
	if defaultItem != nil {
		return ev.ExecStatement(defaultItem)
	}
	return EvalOK
}

// caseMatches applies case/casez/casex comparison semantics.
func caseMatches(n *CaseStmt, cond, item numeric.Value) bool {
	if cond.Kind() != numeric.KindInteger || item.Kind() != numeric.KindInteger {
		return cond.Equivalent(item)
	}
	a, b := cond.Integer(), item.Integer()
	switch n.Condition {
	case syntax.CaseWildcardZ:
		// Z is don't-care on either side
		return a.WildcardEq(b) == numeric.L1 || b.WildcardEq(a) == numeric.L1
	case syntax.CaseWildcardXZ:
		return a.WildcardEq(b) != numeric.L0 || b.WildcardEq(a) != numeric.L0
	default:
		return a.CaseEq(b) == numeric.L1
	}
}

func (ev *EvalContext) execFor(n *ForStmt) EvalResult {
	for _, d := range n.InitDecls {
		if r := ev.ExecStatement(d); r != EvalOK {
			return r
		}
	}
	for _, e := range n.InitExprs {
		if ev.Eval(e).IsInvalid() {
			return EvalFail
		}
	}
	for {
		if !ev.budget(n.Span()) {
			return EvalFail
		}
		if n.Cond != nil {
			pred := ev.Eval(n.Cond)
			if pred.IsInvalid() {
				return EvalFail
			}
			if !pred.IsTrue() {
				return EvalOK
			}
		}
		switch ev.ExecStatement(n.Body) {
		case EvalBreak:
			return EvalOK
		case EvalReturn:
			return EvalReturn
		case EvalFail:
			return EvalFail
		}
		for _, e := range n.Steps {
			if ev.Eval(e).IsInvalid() {
				return EvalFail
			}
		}
	}
}
