package types

import (
	"fmt"
)

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindError Kind = iota
	KindVoid
	KindNull
	KindCHandle
	KindString
	KindEvent
	KindScalar            // bit, logic, reg
	KindPredefinedInteger // byte, shortint, int, longint, integer, time
	KindVector            // packed simple bit vector
	KindFloat             // real, shortreal, realtime
	KindEnum
	KindPackedArray
	KindUnpackedArray
	KindPackedStruct
	KindUnpackedStruct
	KindPackedUnion
	KindUnpackedUnion
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindVoid:
		return "void"
	case KindNull:
		return "null"
	case KindCHandle:
		return "chandle"
	case KindString:
		return "string"
	case KindEvent:
		return "event"
	case KindScalar:
		return "scalar"
	case KindPredefinedInteger:
		return "predefined integer"
	case KindVector:
		return "vector"
	case KindFloat:
		return "float"
	case KindEnum:
		return "enum"
	case KindPackedArray:
		return "packed array"
	case KindUnpackedArray:
		return "unpacked array"
	case KindPackedStruct:
		return "packed struct"
	case KindUnpackedStruct:
		return "unpacked struct"
	case KindPackedUnion:
		return "packed union"
	case KindUnpackedUnion:
		return "unpacked union"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Type is the common contract of every data type. Types are immutable after
// construction; shared types are identified by pointer.
type Type interface {
	TypeKind() Kind
	// BitWidth is 0 for types without a statically known packed width.
	BitWidth() uint32
	IsSigned() bool
	IsFourState() bool
	// Canonical unwraps type aliases; for every other type it returns the
	// receiver.
	Canonical() Type
	String() string
}

// IntegralFlags carries the orthogonal integral type bits. Reg is purely
// informational: it never changes type relations but is kept for diagnostics.
type IntegralFlags uint8

const (
	FlagSigned IntegralFlags = 1 << iota
	FlagFourState
	FlagReg
)

// ConstantRange is a declared [left:right] bounds pair. Left is the index
// written first; for [7:0] Left is 7 and Right is 0.
type ConstantRange struct {
	Left  int32
	Right int32
}

// Width is the number of elements spanned.
func (r ConstantRange) Width() uint32 {
	d := int64(r.Left) - int64(r.Right)
	if d < 0 {
		d = -d
	}
	return uint32(d + 1)
}

// IsLittleEndian reports a descending [hi:lo] range.
func (r ConstantRange) IsLittleEndian() bool { return r.Left >= r.Right }

// Lower returns the smaller bound.
func (r ConstantRange) Lower() int32 {
	if r.Left < r.Right {
		return r.Left
	}
	return r.Right
}

// Upper returns the larger bound.
func (r ConstantRange) Upper() int32 {
	if r.Left > r.Right {
		return r.Left
	}
	return r.Right
}

// Contains reports whether the index lies inside the declared bounds.
func (r ConstantRange) Contains(index int64) bool {
	return index >= int64(r.Lower()) && index <= int64(r.Upper())
}

// Offset translates a declared index into a zero-based offset from the
// low-order (right bound) element; packed selects use this for bit
// positions.
func (r ConstantRange) Offset(index int64) int64 {
	if r.IsLittleEndian() {
		return index - int64(r.Right)
	}
	return int64(r.Right) - index
}

// SlotOffset translates a declared index into its position in left-to-right
// declaration order; unpacked element sequences are stored this way.
func (r ConstantRange) SlotOffset(index int64) int64 {
	if r.IsLittleEndian() {
		return int64(r.Left) - index
	}
	return index - int64(r.Left)
}

func (r ConstantRange) String() string {
	return fmt.Sprintf("[%d:%d]", r.Left, r.Right)
}

// IsIntegral reports whether the canonical type participates in integer
// arithmetic (packed bits).
func IsIntegral(t Type) bool {
	switch t.Canonical().TypeKind() {
	case KindScalar, KindPredefinedInteger, KindVector, KindEnum,
		KindPackedArray, KindPackedStruct, KindPackedUnion:
		return true
	}
	return false
}

// IsFloating reports real/shortreal/realtime.
func IsFloating(t Type) bool {
	return t.Canonical().TypeKind() == KindFloat
}

// IsNumeric reports integral or floating.
func IsNumeric(t Type) bool { return IsIntegral(t) || IsFloating(t) }

// IsString reports the string type.
func IsString(t Type) bool { return t.Canonical().TypeKind() == KindString }

// IsError reports the error type.
func IsError(t Type) bool { return t.Canonical().TypeKind() == KindError }

// IsUnpackedAggregate reports unpacked arrays, structs, and unions.
func IsUnpackedAggregate(t Type) bool {
	switch t.Canonical().TypeKind() {
	case KindUnpackedArray, KindUnpackedStruct, KindUnpackedUnion:
		return true
	}
	return false
}

// IsEnum reports enum types.
func IsEnum(t Type) bool { return t.Canonical().TypeKind() == KindEnum }
