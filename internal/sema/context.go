package sema

import (
	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// Flags adjust binding behavior for special contexts.
type Flags uint8

const (
	// FlagConstant marks a constant-expression context: hierarchical names
	// are rejected and evaluation failures are diagnosed.
	FlagConstant Flags = 1 << iota
	// FlagEnumInit skips enum narrowing checks when binding an enumerand
	// initializer against the base type.
	FlagEnumInit
	// FlagUninstantiated suppresses diagnostics inside untaken generate
	// branches.
	FlagUninstantiated
)

// Context carries everything expression binding needs: the compilation, the
// scope and lookup location names resolve against, and behavior flags.
type Context struct {
	Comp     symbols.Compilation
	Scope    *symbols.Scope
	Location symbols.LookupLocation
	Flags    Flags
	// Subroutine is set while binding a function body.
	Subroutine *symbols.SubroutineSymbol
}

// NewContext builds a context looking up at the end of the scope.
func NewContext(comp symbols.Compilation, scope *symbols.Scope) Context {
	return Context{Comp: comp, Scope: scope, Location: symbols.LookupMax}
}

// At returns a copy positioned at the given lookup location.
func (c Context) At(loc symbols.LookupLocation) Context {
	c.Location = loc
	return c
}

// In returns a copy rebased into another scope.
func (c Context) In(scope *symbols.Scope) Context {
	c.Scope = scope
	return c
}

// WithFlags returns a copy with extra flags set.
func (c Context) WithFlags(flags Flags) Context {
	c.Flags |= flags
	return c
}

// InConstant reports a constant-expression context.
func (c Context) InConstant() bool { return c.Flags&FlagConstant != 0 }

func (c Context) errType() types.Type { return c.Comp.Types().Error }

func (c Context) report(code diag.Code, span source.Span, args ...any) {
	if c.Flags&FlagUninstantiated != 0 {
		return
	}
	c.Comp.Report(diag.New(code, span, args...))
}

func (c Context) reportDiag(d diag.Diagnostic) {
	if c.Flags&FlagUninstantiated != 0 {
		return
	}
	c.Comp.Report(d)
}

// lookup resolves an unqualified name, reporting undeclared/out-of-order
// misses.
func (c Context) lookup(name string, span source.Span) symbols.Symbol {
	result := symbols.Unqualified(c.Scope, name, c.Location)
	if result.Symbol != nil {
		return result.Symbol
	}
	// distinguish "declared later" from "nowhere"
	late := symbols.Unqualified(c.Scope, name, symbols.LookupMax)
	if late.Symbol != nil {
		c.reportDiag(diag.New(diag.UsedBeforeDeclared, span, name).
			WithNote(diag.NoteDeclaredHere, late.Symbol.Location(), name))
	} else {
		c.report(diag.UndeclaredIdentifier, span, name)
	}
	return nil
}

// BindRef wraps an already-resolved symbol into a typed expression node.
func (c Context) BindRef(sym symbols.Symbol, span source.Span) Expression {
	return c.bindSymbolRef(sym, span, false)
}

// EvalInt binds and constant-evaluates expression syntax to a known
// integer.
func (c Context) EvalInt(e syntax.ExprSyntax) (int64, bool) {
	return c.evalInt(e)
}

// setConst caches a constant on a bound node.
func setConst(e Expression, v numeric.Value) {
	switch n := e.(type) {
	case *InvalidExpr:
	case *IntegerLiteralExpr:
		n.constant = v
	case *RealLiteralExpr:
		n.constant = v
	case *UnbasedUnsizedLiteralExpr:
		n.constant = v
	case *StringLiteralExpr:
		n.constant = v
	case *NullLiteralExpr:
		n.constant = v
	case *NamedValueExpr:
		n.constant = v
	case *TypeReferenceExpr:
		n.constant = v
	case *UnaryExpr:
		n.constant = v
	case *BinaryExpr:
		n.constant = v
	case *ConditionalExpr:
		n.constant = v
	case *AssignmentExpr:
		n.constant = v
	case *ConcatExpr:
		n.constant = v
	case *ReplicationExpr:
		n.constant = v
	case *ElementSelectExpr:
		n.constant = v
	case *RangeSelectExpr:
		n.constant = v
	case *MemberAccessExpr:
		n.constant = v
	case *CallExpr:
		n.constant = v
	case *ConversionExpr:
		n.constant = v
	case *AssignmentPatternExpr:
		n.constant = v
	}
}

// retype rewrites a bound node's type during context-determined propagation.
func retype(e Expression, t types.Type) {
	switch n := e.(type) {
	case *IntegerLiteralExpr:
		n.typ = t
	case *UnbasedUnsizedLiteralExpr:
		n.typ = t
	case *UnaryExpr:
		n.typ = t
	case *BinaryExpr:
		n.typ = t
	case *ConditionalExpr:
		n.typ = t
	case *ConversionExpr:
		n.typ = t
	}
}

// fold opportunistically evaluates a bound expression in a pure context and
// caches the value on success.
func (c Context) fold(e Expression) Expression {
	if e == nil || e.ExprKind() == ExprInvalid {
		return e
	}
	if !e.Constant().IsInvalid() {
		return e
	}
	ev := NewEvalContext(c.Comp)
	ev.silent = true
	if v := ev.Eval(e); !v.IsInvalid() {
		setConst(e, v)
	}
	return e
}
