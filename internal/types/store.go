package types

// vectorKey identifies a canonical simple bit vector.
type vectorKey struct {
	width uint32
	flags IntegralFlags
}

// Store owns the shared type singletons and the dedup cache for canonical
// integral vectors. One Store lives inside each compilation.
type Store struct {
	vectors map[vectorKey]*IntegralType

	Error   Type
	Void    Type
	Null    Type
	CHandle Type
	Str     Type
	Event   Type

	Bit   *IntegralType
	Logic *IntegralType
	Reg   *IntegralType

	Byte     *IntegralType
	ShortInt *IntegralType
	Int      *IntegralType
	LongInt  *IntegralType
	Integer  *IntegralType
	Time     *IntegralType

	Real      *FloatType
	ShortReal *FloatType
	RealTime  *FloatType

	// built-in net types keyed by kind
	nets map[NetKind]*NetType
}

// NewStore seeds the singletons.
func NewStore() *Store {
	s := &Store{
		vectors: make(map[vectorKey]*IntegralType, 64),
		nets:    make(map[NetKind]*NetType, 12),
	}
	s.Error = &simpleType{kind: KindError}
	s.Void = &simpleType{kind: KindVoid}
	s.Null = &simpleType{kind: KindNull}
	s.CHandle = &simpleType{kind: KindCHandle}
	s.Str = &simpleType{kind: KindString}
	s.Event = &simpleType{kind: KindEvent}

	s.Bit = &IntegralType{kind: KindScalar, keyword: "bit", width: 1}
	s.Logic = &IntegralType{kind: KindScalar, keyword: "logic", width: 1, flags: FlagFourState}
	s.Reg = &IntegralType{kind: KindScalar, keyword: "reg", width: 1, flags: FlagFourState | FlagReg}

	s.Byte = &IntegralType{kind: KindPredefinedInteger, keyword: "byte", width: 8, flags: FlagSigned}
	s.ShortInt = &IntegralType{kind: KindPredefinedInteger, keyword: "shortint", width: 16, flags: FlagSigned}
	s.Int = &IntegralType{kind: KindPredefinedInteger, keyword: "int", width: 32, flags: FlagSigned}
	s.LongInt = &IntegralType{kind: KindPredefinedInteger, keyword: "longint", width: 64, flags: FlagSigned}
	s.Integer = &IntegralType{kind: KindPredefinedInteger, keyword: "integer", width: 32, flags: FlagSigned | FlagFourState}
	s.Time = &IntegralType{kind: KindPredefinedInteger, keyword: "time", width: 64, flags: FlagFourState}

	s.Real = &FloatType{keyword: "real", width: 64}
	s.ShortReal = &FloatType{keyword: "shortreal", width: 32}
	s.RealTime = &FloatType{keyword: "realtime", width: 64}

	for kind := NetWire; kind <= NetUWire; kind++ {
		s.nets[kind] = NewBuiltinNetType(kind, s.Logic)
	}
	return s
}

// Vector interns the canonical simple bit vector with the given width and
// flags (the Reg flag participates in interning so the diagnostic-preserving
// variant stays distinct, though relations ignore it).
func (s *Store) Vector(width uint32, flags IntegralFlags) *IntegralType {
	if width == 0 {
		width = 1
	}
	key := vectorKey{width: width, flags: flags}
	if t, ok := s.vectors[key]; ok {
		return t
	}
	t := &IntegralType{kind: KindVector, width: width, flags: flags}
	s.vectors[key] = t
	return t
}

// VectorWithRange builds a vector with a declared range; LSB-zero descending
// ranges canonicalize to the shared representation.
func (s *Store) VectorWithRange(rng ConstantRange, flags IntegralFlags) *IntegralType {
	if rng.Right == 0 && rng.Left >= 0 {
		return s.Vector(rng.Width(), flags)
	}
	return &IntegralType{kind: KindVector, width: rng.Width(), flags: flags, rng: rng, hasRng: true}
}

// Scalar returns the one-bit type for the flag combination.
func (s *Store) Scalar(flags IntegralFlags) *IntegralType {
	switch flags {
	case 0:
		return s.Bit
	case FlagFourState:
		return s.Logic
	case FlagFourState | FlagReg:
		return s.Reg
	}
	return &IntegralType{kind: KindScalar, keyword: "logic", width: 1, flags: flags}
}

// BuiltinNet returns the shared net type for a built-in kind.
func (s *Store) BuiltinNet(kind NetKind) *NetType { return s.nets[kind] }

// NewPackedArray builds a packed array; the element must already be packed.
func NewPackedArray(elem Type, rng ConstantRange) *PackedArrayType {
	flags := IntegralFlags(0)
	if elem.IsFourState() {
		flags |= FlagFourState
	}
	return &PackedArrayType{
		Elem:  elem,
		Rng:   rng,
		width: elem.BitWidth() * rng.Width(),
		flags: flags,
	}
}

// NewUnpackedArray builds a fixed-size unpacked array.
func NewUnpackedArray(elem Type, rng ConstantRange) *UnpackedArrayType {
	return &UnpackedArrayType{Elem: elem, Rng: rng}
}

// NewPackedStruct builds a packed struct from fields in declaration order.
// The first field occupies the most significant bits. Callers validate that
// every field is integral before construction.
func NewPackedStruct(fields []Field, signed bool) *PackedStructType {
	total := uint32(0)
	flags := IntegralFlags(0)
	if signed {
		flags |= FlagSigned
	}
	for _, f := range fields {
		total += f.Type.BitWidth()
		if f.Type.IsFourState() {
			flags |= FlagFourState
		}
	}
	offset := total
	for i := range fields {
		offset -= fields[i].Type.BitWidth()
		fields[i].Index = i
		fields[i].BitOffset = offset
	}
	return &PackedStructType{Fields: fields, width: total, flags: flags}
}

// NewPackedUnion builds a packed union; callers have already checked that
// all member widths agree.
func NewPackedUnion(fields []Field, signed bool) *PackedUnionType {
	width := uint32(0)
	flags := IntegralFlags(0)
	if signed {
		flags |= FlagSigned
	}
	for i := range fields {
		fields[i].Index = i
		fields[i].BitOffset = 0
		if fields[i].Type.BitWidth() > width {
			width = fields[i].Type.BitWidth()
		}
		if fields[i].Type.IsFourState() {
			flags |= FlagFourState
		}
	}
	return &PackedUnionType{Fields: fields, width: width, flags: flags}
}

// NewUnpackedStruct builds an unpacked struct.
func NewUnpackedStruct(fields []Field) *UnpackedStructType {
	for i := range fields {
		fields[i].Index = i
	}
	return &UnpackedStructType{Fields: fields}
}

// NewUnpackedUnion builds an unpacked union.
func NewUnpackedUnion(fields []Field) *UnpackedUnionType {
	for i := range fields {
		fields[i].Index = i
	}
	return &UnpackedUnionType{Fields: fields}
}
