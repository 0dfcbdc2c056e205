package types

// Matching implements the strictest type relation: pointer equality, scalar
// {logic, reg} interchange, float {real, realtime} interchange, simple bit
// vectors with identical width/sign/state/range, and arrays with matching
// element types and identical ranges.
func Matching(a, b Type) bool {
	ca, cb := a.Canonical(), b.Canonical()
	if ca == cb {
		return true
	}
	ka, kb := ca.TypeKind(), cb.TypeKind()

	switch {
	case ka == KindScalar && kb == KindScalar:
		// logic and reg are interchangeable; bit (two-state) is not
		ia, ib := ca.(*IntegralType), cb.(*IntegralType)
		return ia.IsFourState() == ib.IsFourState() && ia.IsSigned() == ib.IsSigned()

	case ka == KindFloat && kb == KindFloat:
		// real and realtime are interchangeable; shortreal is not
		fa, fb := ca.(*FloatType), cb.(*FloatType)
		return fa.width == fb.width

	case ka == KindVector && kb == KindVector:
		ia, ib := ca.(*IntegralType), cb.(*IntegralType)
		return ia.width == ib.width &&
			ia.IsSigned() == ib.IsSigned() &&
			ia.IsFourState() == ib.IsFourState() &&
			ia.Range() == ib.Range()

	case ka == KindPackedArray && kb == KindPackedArray:
		pa, pb := ca.(*PackedArrayType), cb.(*PackedArrayType)
		return pa.Rng == pb.Rng && Matching(pa.Elem, pb.Elem)

	case ka == KindUnpackedArray && kb == KindUnpackedArray:
		ua, ub := ca.(*UnpackedArrayType), cb.(*UnpackedArrayType)
		return ua.Rng == ub.Rng && Matching(ua.Elem, ub.Elem)
	}
	return false
}

// Equivalent widens matching with integral value compatibility: two non-enum
// integrals of equal width/sign/state are equivalent, as are unpacked arrays
// of equal element count with equivalent elements.
func Equivalent(a, b Type) bool {
	if Matching(a, b) {
		return true
	}
	ca, cb := a.Canonical(), b.Canonical()

	if IsIntegral(ca) && IsIntegral(cb) &&
		ca.TypeKind() != KindEnum && cb.TypeKind() != KindEnum {
		return ca.BitWidth() == cb.BitWidth() &&
			ca.IsSigned() == cb.IsSigned() &&
			ca.IsFourState() == cb.IsFourState()
	}

	if ua, ok := ca.(*UnpackedArrayType); ok {
		if ub, ok := cb.(*UnpackedArrayType); ok {
			return ua.Rng.Width() == ub.Rng.Width() && Equivalent(ua.Elem, ub.Elem)
		}
	}
	return false
}

// AssignmentCompatible additionally allows implicit numeric conversions into
// a non-enum integral or floating left-hand side.
func AssignmentCompatible(lhs, rhs Type) bool {
	if Equivalent(lhs, rhs) {
		return true
	}
	cl := lhs.Canonical()
	lhsOK := (IsIntegral(cl) && cl.TypeKind() != KindEnum) || IsFloating(cl)
	return lhsOK && IsNumeric(rhs)
}

// CastCompatible additionally allows explicit casts: numeric into enum, and
// string/integral interchange.
func CastCompatible(lhs, rhs Type) bool {
	if AssignmentCompatible(lhs, rhs) {
		return true
	}
	cl, cr := lhs.Canonical(), rhs.Canonical()
	if cl.TypeKind() == KindEnum && IsNumeric(cr) {
		return true
	}
	if IsString(cl) != IsString(cr) {
		other := cr
		if IsString(cr) {
			other = cl
		}
		return IsIntegral(other)
	}
	return false
}
