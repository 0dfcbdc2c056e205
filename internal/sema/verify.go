package sema

import (
	"svelab/internal/diag"
	"svelab/internal/symbols"
)

// VerifyConstantFunction walks a subroutine's bound body once in verifying
// mode, checking the constant-function rules: no hierarchical names, no
// timing controls, every non-parameter identifier local to the function, and
// every referenced parameter declared before the call site. It fails closed:
// any rule violation (or an unbindable body) reports diagnostics and returns
// false.
func VerifyConstantFunction(comp symbols.Compilation, sub *symbols.SubroutineSymbol, callLocation symbols.LookupLocation) bool {
	if sub.Verified() {
		return true
	}
	body := BindSubroutineBody(comp, sub)
	if body == nil {
		return false
	}

	v := &verifier{comp: comp, sub: sub, callLocation: callLocation, ok: true}
	v.statement(body)
	if v.ok {
		sub.MarkVerified()
	}
	return v.ok
}

type verifier struct {
	comp         symbols.Compilation
	sub          *symbols.SubroutineSymbol
	callLocation symbols.LookupLocation
	ok           bool
}

func (v *verifier) fail(d diag.Diagnostic) {
	v.comp.Report(d)
	v.ok = false
}

func (v *verifier) statement(s Statement) {
	switch n := s.(type) {
	case nil:
	case *ListStmt:
		for _, item := range n.Items {
			v.statement(item)
		}
	case *BlockStmt:
		v.statement(n.Body)
	case *ExpressionStmt:
		v.expression(n.Expr)
	case *VarDeclStmt:
		if init, _ := n.Variable.Declared().BoundInitializer().(Expression); init != nil {
			v.expression(init)
		}
	case *ReturnStmt:
		v.expression(n.Expr)
	case *ConditionalStmt:
		v.expression(n.Cond)
		v.statement(n.Then)
		v.statement(n.Else)
	case *CaseStmt:
		v.expression(n.Expr)
		for _, item := range n.Items {
			for _, e := range item.Exprs {
				v.expression(e)
			}
			v.statement(item.Stmt)
		}
	case *ForStmt:
		for _, d := range n.InitDecls {
			v.statement(d)
		}
		for _, e := range n.InitExprs {
			v.expression(e)
		}
		v.expression(n.Cond)
		for _, e := range n.Steps {
			v.expression(e)
		}
		v.statement(n.Body)
	case *RepeatStmt:
		v.expression(n.Count)
		v.statement(n.Body)
	case *WhileStmt:
		v.expression(n.Cond)
		v.statement(n.Body)
	case *DoWhileStmt:
		v.statement(n.Body)
		v.expression(n.Cond)
	case *ForeverStmt:
		v.statement(n.Body)
	case *TimedStmt:
		v.fail(diag.New(diag.ConstEvalTimingControl, n.Span()))
		v.statement(n.Body)
	case *InvalidStmt:
		v.ok = false
	}
}

func (v *verifier) expression(e Expression) {
	switch n := e.(type) {
	case nil:
	case *NamedValueExpr:
		v.namedValue(n)
	case *UnaryExpr:
		v.expression(n.Operand)
	case *BinaryExpr:
		v.expression(n.Left)
		v.expression(n.Right)
	case *ConditionalExpr:
		v.expression(n.Pred)
		v.expression(n.Left)
		v.expression(n.Right)
	case *AssignmentExpr:
		v.expression(n.Left)
		v.expression(n.Right)
	case *ConcatExpr:
		for _, op := range n.Operands {
			v.expression(op)
		}
	case *ReplicationExpr:
		v.expression(n.Operand)
	case *ElementSelectExpr:
		v.expression(n.Value)
		v.expression(n.Index)
	case *RangeSelectExpr:
		v.expression(n.Value)
		v.expression(n.Left)
		v.expression(n.Right)
	case *MemberAccessExpr:
		v.expression(n.Value)
	case *CallExpr:
		for _, a := range n.Args {
			v.expression(a)
		}
		if n.Subroutine != nil && n.Subroutine != v.sub {
			VerifyConstantFunction(v.comp, n.Subroutine, v.callLocation)
		}
	case *ConversionExpr:
		v.expression(n.Operand)
	case *AssignmentPatternExpr:
		for _, el := range n.Elements {
			v.expression(el)
		}
	case *InvalidExpr:
		v.ok = false
	}
}

func (v *verifier) namedValue(n *NamedValueExpr) {
	if n.IsHierarchical {
		v.fail(diag.New(diag.ConstEvalHierarchical, n.Span()))
		return
	}

	switch sym := n.Symbol.(type) {
	case *symbols.ParameterSymbol:
		// parameters must be declared before the call site when they share
		// its scope
		if v.callLocation.Scope != nil && sym.Parent() == v.callLocation.Scope &&
			sym.Index() >= v.callLocation.Index {
			v.fail(diag.New(diag.ConstEvalParamAfterCall, n.Span(), sym.Name()).
				WithNote(diag.NoteDeclaredHere, sym.Location(), sym.Name()))
		}
	case *symbols.EnumValueSymbol:
		// always fine
	default:
		if !v.isLocalTo(n.Symbol) {
			v.fail(diag.New(diag.ConstEvalIdentifierNotLocal, n.Span(), n.Symbol.Name()).
				WithNote(diag.NoteDeclaredHere, n.Symbol.Location(), n.Symbol.Name()))
		}
	}
}

// isLocalTo walks parent scopes checking the symbol lives inside the
// subroutine (formals, locals, nested blocks).
func (v *verifier) isLocalTo(sym symbols.Symbol) bool {
	for scope := sym.Parent(); scope != nil; scope = scope.Parent() {
		if scope.Owner() == symbols.Symbol(v.sub) {
			return true
		}
	}
	return false
}
