package sema

import (
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// ExprKind tags bound expression nodes.
type ExprKind uint8

const (
	ExprInvalid ExprKind = iota
	ExprIntegerLiteral
	ExprRealLiteral
	ExprUnbasedUnsizedLiteral
	ExprStringLiteral
	ExprNullLiteral
	ExprNamedValue
	ExprTypeReference
	ExprUnary
	ExprBinary
	ExprConditional
	ExprAssignment
	ExprConcat
	ExprReplication
	ExprElementSelect
	ExprRangeSelect
	ExprMemberAccess
	ExprCall
	ExprConversion
	ExprSimplePattern
	ExprStructuredPattern
	ExprReplicatedPattern
)

// Expression is a bound, typed expression node. The constant value is cached
// when binding-time evaluation succeeds in a pure context.
type Expression interface {
	ExprKind() ExprKind
	Type() types.Type
	Span() source.Span
	// Constant returns the precomputed value (Invalid when absent).
	Constant() numeric.Value
}

type exprBase struct {
	kind     ExprKind
	typ      types.Type
	span     source.Span
	constant numeric.Value
}

func (e *exprBase) ExprKind() ExprKind       { return e.kind }
func (e *exprBase) Type() types.Type         { return e.typ }
func (e *exprBase) Span() source.Span        { return e.span }
func (e *exprBase) Constant() numeric.Value  { return e.constant }

func makeExpr(kind ExprKind, typ types.Type, span source.Span) exprBase {
	return exprBase{kind: kind, typ: typ, span: span}
}

// InvalidExpr is the recovery node; it always carries the error type.
type InvalidExpr struct {
	exprBase
}

// IntegerLiteralExpr is a sized or unsized integral literal.
type IntegerLiteralExpr struct {
	exprBase
	Value numeric.SVInt
}

// RealLiteralExpr is a real or shortreal literal (time literals scale into
// these).
type RealLiteralExpr struct {
	exprBase
	Value float64
}

// UnbasedUnsizedLiteralExpr is '0 / '1 / 'x / 'z, sized by context.
type UnbasedUnsizedLiteralExpr struct {
	exprBase
	Bit numeric.Logic
}

// StringLiteralExpr is a string literal.
type StringLiteralExpr struct {
	exprBase
	Value string
}

// NullLiteralExpr is the null keyword.
type NullLiteralExpr struct {
	exprBase
}

// NamedValueExpr references a value symbol.
type NamedValueExpr struct {
	exprBase
	Symbol       symbols.Symbol
	IsHierarchical bool
}

// TypeReferenceExpr is a data type used in expression position.
type TypeReferenceExpr struct {
	exprBase
	Target types.Type
}

// UnaryExpr applies a unary operator.
type UnaryExpr struct {
	exprBase
	Op      syntax.UnaryOp
	Operand Expression
}

// BinaryExpr applies a binary operator.
type BinaryExpr struct {
	exprBase
	Op    syntax.BinaryOp
	Left  Expression
	Right Expression
}

// ConditionalExpr is pred ? left : right.
type ConditionalExpr struct {
	exprBase
	Pred  Expression
	Left  Expression
	Right Expression
}

// AssignmentExpr covers blocking, non-blocking, and compound assignment. For
// compound forms Op holds the base binary operator.
type AssignmentExpr struct {
	exprBase
	Compound    bool
	Op          syntax.BinaryOp
	NonBlocking bool
	Left        Expression
	Right       Expression
}

// ConcatExpr is {a, b, ...}.
type ConcatExpr struct {
	exprBase
	Operands []Expression
}

// ReplicationExpr is {N{...}} with a constant count.
type ReplicationExpr struct {
	exprBase
	Count   uint32
	Operand Expression
}

// ElementSelectExpr selects one element or bit.
type ElementSelectExpr struct {
	exprBase
	Value Expression
	Index Expression
}

// RangeSelectExpr selects a part; for constant selects the resolved bounds
// in declared index space are cached.
type RangeSelectExpr struct {
	exprBase
	SelKind  syntax.RangeSelectKind
	Value    Expression
	Left     Expression
	Right    Expression
	// HasConstRange marks Left/Right resolved to ConstRange at bind time.
	HasConstRange bool
	ConstRange    types.ConstantRange
}

// MemberAccessExpr reads a struct/union field.
type MemberAccessExpr struct {
	exprBase
	Value Expression
	Field types.Field
}

// CallExpr invokes a user subroutine or a system subroutine.
type CallExpr struct {
	exprBase
	Subroutine *symbols.SubroutineSymbol // nil for system calls
	SysFunc    *SystemSubroutine
	Args       []Expression
	TypeArg    types.Type // for $bits(type) style calls
}

// ConversionExpr changes width, signedness, or type; Implicit marks
// binder-inserted conversions.
type ConversionExpr struct {
	exprBase
	Operand  Expression
	Implicit bool
}

// AssignmentPatternExpr covers the three pattern forms with elements already
// flattened into canonical order.
type AssignmentPatternExpr struct {
	exprBase
	Elements []Expression
}

func newPattern(kind ExprKind, typ types.Type, span source.Span, elems []Expression) *AssignmentPatternExpr {
	return &AssignmentPatternExpr{exprBase: makeExpr(kind, typ, span), Elements: elems}
}

// badExpr builds the recovery node.
func badExpr(errType types.Type, span source.Span) Expression {
	return &InvalidExpr{exprBase: makeExpr(ExprInvalid, errType, span)}
}

// IsLValue classifies storage-denoting expressions: named variables/nets,
// selects and member accesses of lvalues, and concatenations of lvalues.
func IsLValue(e Expression) bool {
	switch v := e.(type) {
	case *NamedValueExpr:
		switch v.Symbol.Kind() {
		case symbols.SymbolVariable, symbols.SymbolNet, symbols.SymbolFormalArgument, symbols.SymbolPort:
			return true
		}
		return false
	case *ElementSelectExpr:
		return IsLValue(v.Value)
	case *RangeSelectExpr:
		return IsLValue(v.Value)
	case *MemberAccessExpr:
		return IsLValue(v.Value)
	case *ConcatExpr:
		for _, op := range v.Operands {
			if !IsLValue(op) {
				return false
			}
		}
		return len(v.Operands) > 0
	default:
		return false
	}
}
