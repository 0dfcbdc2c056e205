package types

import (
	"svelab/internal/numeric"
)

// DefaultValue builds the default (uninitialized) value of a type: all-X for
// four-state integrals, zero for two-state, 0.0 for floats, empty string,
// null for handles and events, and elementwise defaults for unpacked
// aggregates.
func DefaultValue(t Type) numeric.Value {
	c := t.Canonical()
	switch c.TypeKind() {
	case KindScalar, KindPredefinedInteger, KindVector, KindPackedArray,
		KindPackedStruct, KindPackedUnion:
		if c.IsFourState() {
			return numeric.IntegerValue(numeric.AllX(c.BitWidth(), c.IsSigned()))
		}
		return numeric.IntegerValue(numeric.NewSVInt(c.BitWidth(), c.IsSigned(), 0))

	case KindEnum:
		return DefaultValue(c.(*EnumType).Base)

	case KindFloat:
		if c.(*FloatType).IsShortReal() {
			return numeric.ShortRealValue(0)
		}
		return numeric.RealValue(0)

	case KindString:
		return numeric.StringValue("")

	case KindCHandle, KindEvent, KindNull:
		return numeric.NullValue()

	case KindUnpackedArray:
		arr := c.(*UnpackedArrayType)
		n := int(arr.Rng.Width())
		elems := make([]numeric.Value, n)
		for i := range elems {
			elems[i] = DefaultValue(arr.Elem)
		}
		return numeric.ElementsValue(elems)

	case KindUnpackedStruct:
		st := c.(*UnpackedStructType)
		elems := make([]numeric.Value, len(st.Fields))
		for i, f := range st.Fields {
			elems[i] = DefaultValue(f.Type)
		}
		return numeric.ElementsValue(elems)

	case KindUnpackedUnion:
		un := c.(*UnpackedUnionType)
		if len(un.Fields) == 0 {
			return numeric.Invalid
		}
		return numeric.ElementsValue([]numeric.Value{DefaultValue(un.Fields[0].Type)})

	default:
		return numeric.Invalid
	}
}
