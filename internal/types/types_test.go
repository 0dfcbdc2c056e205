package types

import (
	"testing"

	"svelab/internal/numeric"
)

func TestVectorInterning(t *testing.T) {
	s := NewStore()
	a := s.Vector(8, FlagFourState)
	b := s.Vector(8, FlagFourState)
	if a != b {
		t.Fatalf("identical vectors must share one object")
	}
	if s.Vector(8, 0) == a || s.Vector(9, FlagFourState) == a {
		t.Fatalf("different width or flags must not share")
	}
	if s.VectorWithRange(ConstantRange{Left: 7, Right: 0}, FlagFourState) != a {
		t.Fatalf("[7:0] must canonicalize to the shared 8-bit vector")
	}
	odd := s.VectorWithRange(ConstantRange{Left: 8, Right: 1}, FlagFourState)
	if odd == a || odd.Range() != (ConstantRange{Left: 8, Right: 1}) {
		t.Fatalf("non-LSB-zero range must stay distinct")
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	s := NewStore()
	inner := s.Vector(16, FlagFourState|FlagSigned)
	alias := &TypeAlias{Name: "word_t", Target: inner}
	outer := &TypeAlias{Name: "data_t", Target: alias}
	if outer.Canonical() != inner {
		t.Fatalf("alias chain must unwrap fully")
	}
	if outer.Canonical().Canonical() != outer.Canonical() {
		t.Fatalf("canonical must be idempotent")
	}
	if outer.BitWidth() != 16 || !outer.IsSigned() {
		t.Fatalf("alias must delegate width and flags")
	}
}

func TestRelationLattice(t *testing.T) {
	s := NewStore()
	pairs := []struct{ a, b Type }{
		{s.Vector(8, FlagFourState), s.Vector(8, FlagFourState)},
		{s.Logic, s.Reg},
		{s.Int, s.Vector(32, FlagSigned)},
		{s.Real, s.Int},
		{s.Str, s.Vector(16, 0)},
	}
	for _, p := range pairs {
		if Matching(p.a, p.b) && !Equivalent(p.a, p.b) {
			t.Fatalf("matching must imply equivalent: %s vs %s", p.a, p.b)
		}
		if Equivalent(p.a, p.b) && !AssignmentCompatible(p.a, p.b) {
			t.Fatalf("equivalent must imply assignment-compatible: %s vs %s", p.a, p.b)
		}
		if AssignmentCompatible(p.a, p.b) && !CastCompatible(p.a, p.b) {
			t.Fatalf("assignment-compatible must imply cast-compatible: %s vs %s", p.a, p.b)
		}
	}
}

func TestMatchingRules(t *testing.T) {
	s := NewStore()
	if !Matching(s.Logic, s.Reg) {
		t.Fatalf("logic and reg scalars must match")
	}
	if Matching(s.Logic, s.Bit) {
		t.Fatalf("logic and bit must not match")
	}
	if !Matching(s.Real, s.RealTime) {
		t.Fatalf("real and realtime must match")
	}
	if Matching(s.Real, s.ShortReal) {
		t.Fatalf("real and shortreal must not match")
	}
	if !Matching(s.Vector(8, 0), s.Vector(8, 0)) {
		t.Fatalf("same simple vectors must match")
	}
	if Matching(s.Vector(8, 0), s.Vector(8, FlagSigned)) {
		t.Fatalf("signedness must break matching")
	}
	// symmetry
	a, b := s.Vector(4, FlagFourState), s.Vector(4, FlagFourState)
	if Matching(a, b) != Matching(b, a) {
		t.Fatalf("matching must be symmetric")
	}
}

func TestEquivalence(t *testing.T) {
	s := NewStore()
	// int vs 32-bit signed two-state vector: equal width/sign/state
	if !Equivalent(s.Int, s.Vector(32, FlagSigned)) {
		t.Fatalf("int must be equivalent to bit signed [31:0]")
	}
	if Equivalent(s.Int, s.Integer) {
		t.Fatalf("int (two-state) vs integer (four-state) must differ")
	}
	// enums are not equivalent to their base
	enum := &EnumType{Base: s.Int}
	if Equivalent(enum, s.Int) {
		t.Fatalf("enum must not be equivalent to a plain integral")
	}
	if !AssignmentCompatible(s.Int, enum) {
		t.Fatalf("enum must assign into int")
	}
	if AssignmentCompatible(enum, s.Int) {
		t.Fatalf("int must not implicitly assign into enum")
	}
	if !CastCompatible(enum, s.Int) {
		t.Fatalf("int must cast into enum")
	}
	// unpacked arrays by element count
	ua := NewUnpackedArray(s.Int, ConstantRange{Left: 0, Right: 3})
	ub := NewUnpackedArray(s.Vector(32, FlagSigned), ConstantRange{Left: 3, Right: 0})
	if !Equivalent(ua, ub) {
		t.Fatalf("unpacked arrays of equal count and equivalent elements must be equivalent")
	}
}

func TestStringCastRules(t *testing.T) {
	s := NewStore()
	if AssignmentCompatible(s.Str, s.Int) {
		t.Fatalf("string must not be assignment-compatible with int")
	}
	if !CastCompatible(s.Str, s.Int) || !CastCompatible(s.Int, s.Str) {
		t.Fatalf("string/integral casts must be allowed")
	}
	if CastCompatible(s.Str, s.Real) {
		t.Fatalf("string/real casts must be rejected")
	}
}

func TestPackedWidths(t *testing.T) {
	s := NewStore()
	elem := s.Vector(8, FlagFourState)
	arr := NewPackedArray(elem, ConstantRange{Left: 3, Right: 0})
	if arr.BitWidth() != 32 {
		t.Fatalf("packed array width = %d", arr.BitWidth())
	}
	if !arr.IsFourState() {
		t.Fatalf("four-state must propagate")
	}

	st := NewPackedStruct([]Field{
		{Name: "hi", Type: s.Vector(4, FlagFourState)},
		{Name: "lo", Type: s.Vector(4, 0)},
	}, false)
	if st.BitWidth() != 8 {
		t.Fatalf("struct width = %d", st.BitWidth())
	}
	if !st.IsFourState() {
		t.Fatalf("struct four-state must be the OR of members")
	}
	// first field sits in the MSBs
	if st.Fields[0].BitOffset != 4 || st.Fields[1].BitOffset != 0 {
		t.Fatalf("field offsets: %+v", st.Fields)
	}

	un := NewPackedUnion([]Field{
		{Name: "a", Type: s.Vector(8, 0)},
		{Name: "b", Type: s.Vector(8, FlagFourState)},
	}, false)
	if un.BitWidth() != 8 {
		t.Fatalf("union width = %d", un.BitWidth())
	}
}

func TestDefaultValues(t *testing.T) {
	s := NewStore()
	fourState := DefaultValue(s.Vector(8, FlagFourState))
	if !fourState.Integer().HasUnknown() {
		t.Fatalf("four-state default must be all X")
	}
	if fourState.Integer().Width() != 8 {
		t.Fatalf("default width = %d", fourState.Integer().Width())
	}
	twoState := DefaultValue(s.Vector(8, 0))
	if !twoState.Integer().IsZero() {
		t.Fatalf("two-state default must be zero")
	}
	if DefaultValue(s.Real).Real() != 0 {
		t.Fatalf("real default must be 0.0")
	}
	if DefaultValue(s.Str).Str() != "" {
		t.Fatalf("string default must be empty")
	}
	if DefaultValue(s.CHandle).Kind() != numeric.KindNull {
		t.Fatalf("chandle default must be null")
	}

	arr := NewUnpackedArray(s.Int, ConstantRange{Left: 2, Right: 0})
	dv := DefaultValue(arr)
	if len(dv.Elements()) != 3 {
		t.Fatalf("unpacked default arity = %d", len(dv.Elements()))
	}

	st := NewUnpackedStruct([]Field{
		{Name: "a", Type: s.Int},
		{Name: "b", Type: s.Str},
	})
	sv := DefaultValue(st)
	if len(sv.Elements()) != 2 || sv.ElementAt(1).Kind() != numeric.KindString {
		t.Fatalf("unpacked struct default shape wrong: %v", sv)
	}
}

func TestNetTypeResolution(t *testing.T) {
	s := NewStore()
	wire := s.BuiltinNet(NetWire)
	if wire.Resolve() != wire || wire.DataType != s.Logic {
		t.Fatalf("builtin net resolution")
	}

	base := NewUserNetType("base_t")
	base.SetDataType(s.Vector(8, FlagFourState))
	alias := NewUserNetType("alias_t")
	alias.SetAlias(base)
	if alias.Resolve() != base {
		t.Fatalf("alias must resolve to its target")
	}

	a := NewUserNetType("a")
	b := NewUserNetType("b")
	a.SetAlias(b)
	b.SetAlias(a)
	if a.Resolve() != nil {
		t.Fatalf("cyclic net alias must resolve to nil")
	}
}

func TestConstantRange(t *testing.T) {
	r := ConstantRange{Left: 7, Right: 0}
	if r.Width() != 8 || !r.IsLittleEndian() {
		t.Fatalf("range basics: %+v", r)
	}
	if r.Offset(3) != 3 {
		t.Fatalf("offset of 3 in [7:0] = %d", r.Offset(3))
	}
	asc := ConstantRange{Left: 0, Right: 7}
	if asc.IsLittleEndian() {
		t.Fatalf("[0:7] must be big endian")
	}
	if asc.Offset(3) != 4 {
		t.Fatalf("offset of 3 in [0:7] = %d", asc.Offset(3))
	}
	if !asc.Contains(7) || asc.Contains(8) {
		t.Fatalf("contains check wrong")
	}
}
