package types

import (
	"fmt"
)

// IntegralType models scalars (bit, logic, reg), the predefined integer
// atoms, and simple packed bit vectors. Simple vectors with a single LSB-0
// dimension are uniquified in the Store so pointer equality implies a
// matching type.
type IntegralType struct {
	kind    Kind
	keyword string // declared keyword for diagnostics ("int", "logic", ...)
	width   uint32
	flags   IntegralFlags
	rng     ConstantRange
	hasRng  bool
}

func (t *IntegralType) TypeKind() Kind      { return t.kind }
func (t *IntegralType) BitWidth() uint32    { return t.width }
func (t *IntegralType) IsSigned() bool      { return t.flags&FlagSigned != 0 }
func (t *IntegralType) IsFourState() bool   { return t.flags&FlagFourState != 0 }
func (t *IntegralType) Canonical() Type     { return t }
func (t *IntegralType) Flags() IntegralFlags { return t.flags }

// Range returns the declared range; simple vectors default to [width-1:0].
func (t *IntegralType) Range() ConstantRange {
	if t.hasRng {
		return t.rng
	}
	return ConstantRange{Left: int32(t.width) - 1, Right: 0}
}

func (t *IntegralType) String() string {
	if t.kind == KindVector {
		base := "logic"
		if !t.IsFourState() {
			base = "bit"
		}
		if t.flags&FlagReg != 0 {
			base = "reg"
		}
		s := base
		if t.IsSigned() {
			s += " signed"
		}
		return fmt.Sprintf("%s%s", s, t.Range().String())
	}
	if t.keyword != "" {
		return t.keyword
	}
	return t.kind.String()
}

// FloatType is real, shortreal, or realtime.
type FloatType struct {
	keyword string
	width   uint32 // 64 for real/realtime, 32 for shortreal
}

func (t *FloatType) TypeKind() Kind    { return KindFloat }
func (t *FloatType) BitWidth() uint32  { return t.width }
func (t *FloatType) IsSigned() bool    { return true }
func (t *FloatType) IsFourState() bool { return false }
func (t *FloatType) Canonical() Type   { return t }
func (t *FloatType) String() string    { return t.keyword }

// IsShortReal reports the 32-bit float.
func (t *FloatType) IsShortReal() bool { return t.width == 32 }

// simpleType covers string, chandle, event, void, null, and error.
type simpleType struct {
	kind Kind
}

func (t *simpleType) TypeKind() Kind    { return t.kind }
func (t *simpleType) BitWidth() uint32  { return 0 }
func (t *simpleType) IsSigned() bool    { return false }
func (t *simpleType) IsFourState() bool { return false }
func (t *simpleType) Canonical() Type   { return t }
func (t *simpleType) String() string    { return t.kind.String() }

// TypeAlias is a typedef; all relations see through it via Canonical.
type TypeAlias struct {
	Name   string
	Target Type
}

func (t *TypeAlias) TypeKind() Kind    { return KindAlias }
func (t *TypeAlias) BitWidth() uint32  { return t.Target.BitWidth() }
func (t *TypeAlias) IsSigned() bool    { return t.Target.IsSigned() }
func (t *TypeAlias) IsFourState() bool { return t.Target.IsFourState() }

func (t *TypeAlias) Canonical() Type {
	// alias chains are acyclic by construction; the forward-typedef resolver
	// breaks cycles with the error type before an alias is installed
	return t.Target.Canonical()
}

func (t *TypeAlias) String() string { return t.Name }

// PackedArrayType is a packed array of a packed element type.
type PackedArrayType struct {
	Elem  Type
	Rng   ConstantRange
	width uint32
	flags IntegralFlags
}

func (t *PackedArrayType) TypeKind() Kind    { return KindPackedArray }
func (t *PackedArrayType) BitWidth() uint32  { return t.width }
func (t *PackedArrayType) IsSigned() bool    { return t.flags&FlagSigned != 0 }
func (t *PackedArrayType) IsFourState() bool { return t.flags&FlagFourState != 0 }
func (t *PackedArrayType) Canonical() Type   { return t }

func (t *PackedArrayType) String() string {
	return fmt.Sprintf("%s%s", t.Elem.String(), t.Rng.String())
}

// UnpackedArrayType is a fixed-size unpacked array.
type UnpackedArrayType struct {
	Elem Type
	Rng  ConstantRange
}

func (t *UnpackedArrayType) TypeKind() Kind    { return KindUnpackedArray }
func (t *UnpackedArrayType) BitWidth() uint32  { return 0 }
func (t *UnpackedArrayType) IsSigned() bool    { return false }
func (t *UnpackedArrayType) IsFourState() bool { return false }
func (t *UnpackedArrayType) Canonical() Type   { return t }

func (t *UnpackedArrayType) String() string {
	return fmt.Sprintf("%s$%s", t.Elem.String(), t.Rng.String())
}

// Field is a struct or union member. BitOffset is the offset of the field's
// LSB inside a packed aggregate, counted from bit zero of the whole value.
type Field struct {
	Name      string
	Type      Type
	Index     int
	BitOffset uint32
}

// PackedStructType is a packed struct; width is the sum of field widths.
type PackedStructType struct {
	Fields []Field
	width  uint32
	flags  IntegralFlags
}

func (t *PackedStructType) TypeKind() Kind    { return KindPackedStruct }
func (t *PackedStructType) BitWidth() uint32  { return t.width }
func (t *PackedStructType) IsSigned() bool    { return t.flags&FlagSigned != 0 }
func (t *PackedStructType) IsFourState() bool { return t.flags&FlagFourState != 0 }
func (t *PackedStructType) Canonical() Type   { return t }
func (t *PackedStructType) String() string    { return structString("struct packed", t.Fields) }

// PackedUnionType is a packed union; every member has the same width.
type PackedUnionType struct {
	Fields []Field
	width  uint32
	flags  IntegralFlags
}

func (t *PackedUnionType) TypeKind() Kind    { return KindPackedUnion }
func (t *PackedUnionType) BitWidth() uint32  { return t.width }
func (t *PackedUnionType) IsSigned() bool    { return t.flags&FlagSigned != 0 }
func (t *PackedUnionType) IsFourState() bool { return t.flags&FlagFourState != 0 }
func (t *PackedUnionType) Canonical() Type   { return t }
func (t *PackedUnionType) String() string    { return structString("union packed", t.Fields) }

// UnpackedStructType is an unpacked struct.
type UnpackedStructType struct {
	Fields []Field
}

func (t *UnpackedStructType) TypeKind() Kind    { return KindUnpackedStruct }
func (t *UnpackedStructType) BitWidth() uint32  { return 0 }
func (t *UnpackedStructType) IsSigned() bool    { return false }
func (t *UnpackedStructType) IsFourState() bool { return false }
func (t *UnpackedStructType) Canonical() Type   { return t }
func (t *UnpackedStructType) String() string    { return structString("struct", t.Fields) }

// UnpackedUnionType is an unpacked union.
type UnpackedUnionType struct {
	Fields []Field
}

func (t *UnpackedUnionType) TypeKind() Kind    { return KindUnpackedUnion }
func (t *UnpackedUnionType) BitWidth() uint32  { return 0 }
func (t *UnpackedUnionType) IsSigned() bool    { return false }
func (t *UnpackedUnionType) IsFourState() bool { return false }
func (t *UnpackedUnionType) Canonical() Type   { return t }
func (t *UnpackedUnionType) String() string    { return structString("union", t.Fields) }

func structString(prefix string, fields []Field) string {
	s := prefix + "{"
	for i, f := range fields {
		if i > 0 {
			s += ";"
		}
		s += f.Type.String() + " " + f.Name
	}
	return s + "}"
}

// FieldByName finds a field in any aggregate's field slice.
func FieldByName(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// FieldsOf returns the field slice of any struct or union canonical type.
func FieldsOf(t Type) ([]Field, bool) {
	switch c := t.Canonical().(type) {
	case *PackedStructType:
		return c.Fields, true
	case *PackedUnionType:
		return c.Fields, true
	case *UnpackedStructType:
		return c.Fields, true
	case *UnpackedUnionType:
		return c.Fields, true
	}
	return nil, false
}
