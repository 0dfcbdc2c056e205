package syntax

import (
	"svelab/internal/source"
)

// ImplicitTypeSyntax is the absent type in declarations like `parameter x =
// 1` or `input [7:0] a`.
type ImplicitTypeSyntax struct {
	node
	Signing Signing
	Dims    []*DimensionSyntax
}

func (t *ImplicitTypeSyntax) Kind() NodeKind { return KindImplicitType }
func (t *ImplicitTypeSyntax) typeNode()      {}

// IsEmpty reports a fully absent implicit type (no signing, no dims).
func (t *ImplicitTypeSyntax) IsEmpty() bool {
	return t.Signing == SignNone && len(t.Dims) == 0
}

// IntegerTypeSyntax covers the integer vector and atom keywords: logic, reg,
// bit, byte, shortint, int, longint, integer, time.
type IntegerTypeSyntax struct {
	node
	Keyword TokenKind
	Signing Signing
	Dims    []*DimensionSyntax
}

func (t *IntegerTypeSyntax) Kind() NodeKind { return KindIntegerType }
func (t *IntegerTypeSyntax) typeNode()      {}

// FloatTypeSyntax covers real, shortreal, realtime.
type FloatTypeSyntax struct {
	node
	Keyword TokenKind
}

func (t *FloatTypeSyntax) Kind() NodeKind { return KindFloatType }
func (t *FloatTypeSyntax) typeNode()      {}

// StringTypeSyntax is the string keyword.
type StringTypeSyntax struct{ node }

func (t *StringTypeSyntax) Kind() NodeKind { return KindStringType }
func (t *StringTypeSyntax) typeNode()      {}

// EventTypeSyntax is the event keyword.
type EventTypeSyntax struct{ node }

func (t *EventTypeSyntax) Kind() NodeKind { return KindEventType }
func (t *EventTypeSyntax) typeNode()      {}

// CHandleTypeSyntax is the chandle keyword.
type CHandleTypeSyntax struct{ node }

func (t *CHandleTypeSyntax) Kind() NodeKind { return KindCHandleType }
func (t *CHandleTypeSyntax) typeNode()      {}

// VoidTypeSyntax is the void keyword.
type VoidTypeSyntax struct{ node }

func (t *VoidTypeSyntax) Kind() NodeKind { return KindVoidType }
func (t *VoidTypeSyntax) typeNode()      {}

// NamedTypeSyntax references a typedef/enum/struct name, optionally package
// qualified, with optional packed dimensions applied on top.
type NamedTypeSyntax struct {
	node
	Package  string
	Name     string
	NameSpan source.Span
	Dims     []*DimensionSyntax
}

func (t *NamedTypeSyntax) Kind() NodeKind { return KindNamedType }
func (t *NamedTypeSyntax) typeNode()      {}

// EnumMemberSyntax is one enumerand: NAME, NAME = expr, or NAME[a:b] (= expr).
type EnumMemberSyntax struct {
	node
	Name      string
	RangeDim  *DimensionSyntax
	Init      ExprSyntax
}

func (t *EnumMemberSyntax) Kind() NodeKind { return KindInvalid }

// EnumTypeSyntax is enum [base] { members } with optional packed dims after.
type EnumTypeSyntax struct {
	node
	Base    TypeSyntax // nil means the default int base
	Members []*EnumMemberSyntax
	Dims    []*DimensionSyntax
}

func (t *EnumTypeSyntax) Kind() NodeKind { return KindEnumType }
func (t *EnumTypeSyntax) typeNode()      {}

// StructMemberSyntax is one field declaration inside a struct or union.
type StructMemberSyntax struct {
	node
	Type  TypeSyntax
	Decls []*DeclaratorSyntax
}

func (t *StructMemberSyntax) Kind() NodeKind { return KindInvalid }

// StructTypeSyntax covers struct and union, packed or unpacked.
type StructTypeSyntax struct {
	node
	IsUnion bool
	Packed  bool
	Signing Signing
	Members []*StructMemberSyntax
	Dims    []*DimensionSyntax
}

func (t *StructTypeSyntax) Kind() NodeKind { return KindStructType }
func (t *StructTypeSyntax) typeNode()      {}

// UnsupportedTypeSyntax records a recognized-but-unsupported type form
// (class, virtual interface) so the binder can emit NotYetSupported.
type UnsupportedTypeSyntax struct {
	node
	What string
}

func (t *UnsupportedTypeSyntax) Kind() NodeKind { return KindUnsupportedType }
func (t *UnsupportedTypeSyntax) typeNode()      {}
