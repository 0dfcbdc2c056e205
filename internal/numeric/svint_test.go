package numeric

import (
	"testing"
)

func TestArithmeticBasics(t *testing.T) {
	a := NewSVInt(32, true, 4)
	b := NewSVInt(32, true, 5)
	sum := a.Add(b)
	if got, _ := sum.AsInt64(); got != 9 {
		t.Fatalf("4+5 = %d", got)
	}
	if sum.Width() != 32 || !sum.IsSigned() {
		t.Fatalf("result shape wrong: %v", sum)
	}
	if got, _ := a.Sub(b).AsInt64(); got != -1 {
		t.Fatalf("4-5 = %d", got)
	}
	if got, _ := a.Mul(b).AsInt64(); got != 20 {
		t.Fatalf("4*5 = %d", got)
	}
}

func TestDivModTruncateTowardZero(t *testing.T) {
	a := FromInt64(32, true, -7)
	b := FromInt64(32, true, 2)
	if got, _ := a.Div(b).AsInt64(); got != -3 {
		t.Fatalf("-7/2 = %d", got)
	}
	if got, _ := a.Mod(b).AsInt64(); got != -1 {
		t.Fatalf("-7%%2 = %d", got)
	}
}

func TestDivisionByZeroIsAllX(t *testing.T) {
	a := NewSVInt(8, false, 10)
	z := NewSVInt(8, false, 0)
	q := a.Div(z)
	if !q.HasUnknown() {
		t.Fatalf("x/0 must be unknown, got %v", q)
	}
	for i := uint32(0); i < 8; i++ {
		if q.Bit(i) != LX {
			t.Fatalf("bit %d is %v, want x", i, q.Bit(i))
		}
	}
}

func TestUnknownPropagationInArith(t *testing.T) {
	a, err := ParseVector(8, false, 'b', "1010x01z")
	if err != nil {
		t.Fatal(err)
	}
	b := NewSVInt(8, false, 1)
	if sum := a.Add(b); !sum.HasUnknown() {
		t.Fatalf("arith with unknowns must yield X")
	}
}

func TestTwosComplementWrap(t *testing.T) {
	a := NewSVInt(4, false, 12)
	b := NewSVInt(4, false, 12)
	if got, _ := a.Add(b).AsUint64(); got != 8 {
		t.Fatalf("12+12 mod 16 = %d", got)
	}
}

func TestFourStateBitwise(t *testing.T) {
	a, _ := ParseVector(4, false, 'b', "01xz")
	b, _ := ParseVector(4, false, 'b', "0x1x")

	and := a.And(b)
	// bit3: 0&0=0, bit2: 1&x=x, bit1: x&1=x, bit0: z&x=x
	want := []Logic{LX, LX, LX, L0}
	for i, w := range []Logic{want[0], want[1], want[2], want[3]} {
		if got := and.Bit(uint32(i)); got != w {
			t.Fatalf("and bit %d = %v, want %v", i, got, w)
		}
	}

	or := a.Or(b)
	// bit3: 0|0=0, bit2: 1|x=1, bit1: x|1=1, bit0: z|x=x
	wantOr := []Logic{LX, L1, L1, L0}
	for i, w := range wantOr {
		if got := or.Bit(uint32(i)); got != w {
			t.Fatalf("or bit %d = %v, want %v", i, got, w)
		}
	}

	// 0 AND anything is 0 even when the other side is unknown
	zero := NewSVInt(4, false, 0)
	if res := a.And(zero); res.HasUnknown() || !res.IsZero() {
		t.Fatalf("x&0 must be 0, got %v", res)
	}
}

func TestShifts(t *testing.T) {
	a := NewSVInt(8, false, 0b0110)
	if got, _ := a.Shl(NewSVInt(32, false, 2)).AsUint64(); got != 0b011000 {
		t.Fatalf("shl got %b", got)
	}
	if got, _ := a.LShr(NewSVInt(32, false, 1)).AsUint64(); got != 0b011 {
		t.Fatalf("lshr got %b", got)
	}
	neg := FromInt64(8, true, -8)
	ashr := neg.AShr(NewSVInt(32, false, 2))
	if got, _ := ashr.AsInt64(); got != -2 {
		t.Fatalf("-8>>>2 = %d", got)
	}
	if res := a.Shl(AllX(8, false)); !res.HasUnknown() {
		t.Fatalf("unknown shift amount must yield X")
	}
	if got, _ := a.Shl(NewSVInt(32, false, 200)).AsUint64(); got != 0 {
		t.Fatalf("oversized shift must clear, got %b", got)
	}
}

func TestReductions(t *testing.T) {
	v, _ := ParseVector(4, false, 'b', "1111")
	if v.ReduceAnd() != L1 || v.ReduceOr() != L1 || v.ReduceXor() != L0 {
		t.Fatalf("reduction on 1111 wrong")
	}
	v, _ = ParseVector(4, false, 'b', "1x11")
	if v.ReduceAnd() != LX {
		t.Fatalf("&1x11 must be x")
	}
	if v.ReduceOr() != L1 {
		t.Fatalf("|1x11 must be 1")
	}
	v, _ = ParseVector(4, false, 'b', "0x11")
	if v.ReduceAnd() != L0 {
		t.Fatalf("&0x11 must be 0")
	}
}

func TestComparisons(t *testing.T) {
	a := FromInt64(8, true, -1)
	b := NewSVInt(8, true, 1)
	if a.Lt(b) != L1 || a.Ge(b) != L0 {
		t.Fatalf("-1 < 1 must hold for signed")
	}
	// same bits, unsigned: 255 > 1
	ua := a.AsSigned(false)
	if ua.Lt(b.AsSigned(false)) != L0 {
		t.Fatalf("255 < 1 must be false for unsigned")
	}
	x := AllX(8, false)
	if a.Eq(x) != LX || a.Lt(x) != LX {
		t.Fatalf("comparisons against x must be x")
	}
}

func TestCaseAndWildcardEquality(t *testing.T) {
	a, _ := ParseVector(4, false, 'b', "1x0z")
	b, _ := ParseVector(4, false, 'b', "1x0z")
	c, _ := ParseVector(4, false, 'b', "1x00")
	if a.CaseEq(b) != L1 {
		t.Fatalf("=== must treat x/z as ordinary values")
	}
	if a.CaseEq(c) != L0 {
		t.Fatalf("=== must distinguish z from 0")
	}

	lhs, _ := ParseVector(4, false, 'b', "1010")
	pat, _ := ParseVector(4, false, 'b', "1?1?")
	if lhs.WildcardEq(pat) != L1 {
		t.Fatalf("1010 ==? 1?1? must be 1 (bits 2 and 0 are wildcards)")
	}
	pat2, _ := ParseVector(4, false, 'b', "10?0")
	if lhs.WildcardEq(pat2) != L1 {
		t.Fatalf("1010 ==? 10?0 must be 1")
	}
}

func TestConcatReplicate(t *testing.T) {
	a := NewSVInt(4, false, 0xA)
	b := NewSVInt(4, false, 0x5)
	cat := a.Concat(b)
	if cat.Width() != 8 {
		t.Fatalf("concat width = %d", cat.Width())
	}
	if got, _ := cat.AsUint64(); got != 0xA5 {
		t.Fatalf("concat = %x", got)
	}
	rep := b.Replicate(3)
	if rep.Width() != 12 {
		t.Fatalf("replicate width = %d", rep.Width())
	}
	if got, _ := rep.AsUint64(); got != 0x555 {
		t.Fatalf("replicate = %x", got)
	}
}

func TestResizeSignExtension(t *testing.T) {
	neg := FromInt64(4, true, -3)
	wide := neg.Resize(8)
	if got, _ := wide.AsInt64(); got != -3 {
		t.Fatalf("sign extension lost value: %d", got)
	}
	pos := NewSVInt(4, false, 0xF)
	if got, _ := pos.Resize(8).AsUint64(); got != 0xF {
		t.Fatalf("zero extension wrong: %x", got)
	}
	xv := AllX(4, true)
	if ext := xv.Resize(8); !ext.HasUnknown() || ext.Bit(7) != LX {
		t.Fatalf("unknown sign bit must extend as x")
	}
	if got, _ := FromInt64(8, true, -1).Resize(4).AsInt64(); got != -1 {
		t.Fatalf("truncation wrong: %d", got)
	}
}

func TestSliceAndSetSlice(t *testing.T) {
	v := NewSVInt(8, false, 0b10110100)
	s := v.Slice(5, 2)
	if got, _ := s.AsUint64(); got != 0b1101 {
		t.Fatalf("slice = %b", got)
	}
	oob := v.Slice(9, 6)
	if oob.Bit(3) != LX || oob.Bit(2) != LX {
		t.Fatalf("bits past the width must read as x")
	}
	w := v.SetSlice(3, 0, NewSVInt(4, false, 0xF))
	if got, _ := w.AsUint64(); got != 0b10111111 {
		t.Fatalf("setslice = %b", got)
	}
}

func TestParseVector(t *testing.T) {
	v, err := ParseVector(12, false, 'h', "a_5f")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.AsUint64(); got != 0xA5F {
		t.Fatalf("parsed %x", got)
	}
	v, err = ParseVector(4, false, 'b', "10xz")
	if err != nil {
		t.Fatal(err)
	}
	if v.Bit(3) != L1 || v.Bit(2) != L0 || v.Bit(1) != LX || v.Bit(0) != LZ {
		t.Fatalf("four-state parse wrong: %v", v)
	}
	if _, err = ParseVector(4, false, 'b', "12"); err == nil {
		t.Fatalf("digit 2 invalid in binary")
	}
	v, err = ParseVector(8, false, 'd', "x")
	if err != nil || !v.HasUnknown() {
		t.Fatalf("8'dx must be all x")
	}
	v, err = ParseUnsizedDecimal("1_000")
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := v.AsInt64(); got != 1000 || v.Width() != 32 || !v.IsSigned() {
		t.Fatalf("unsized decimal shape wrong: %v", v)
	}
}

func TestStringRendering(t *testing.T) {
	if s := NewSVInt(32, true, 9).String(); s != "32'sd9" {
		t.Fatalf("got %q", s)
	}
	v, _ := ParseVector(4, false, 'b', "1x0z")
	if s := v.String(); s != "4'b1x0z" {
		t.Fatalf("got %q", s)
	}
}

func TestPow(t *testing.T) {
	if got, _ := NewSVInt(32, true, 2).Pow(NewSVInt(32, true, 10)).AsInt64(); got != 1024 {
		t.Fatalf("2**10 = %d", got)
	}
	if got, _ := FromInt64(32, true, -1).Pow(FromInt64(32, true, -3)).AsInt64(); got != -1 {
		t.Fatalf("(-1)**-3 = %d", got)
	}
	if res := NewSVInt(32, true, 0).Pow(FromInt64(32, true, -1)); !res.HasUnknown() {
		t.Fatalf("0**-1 must be x")
	}
}
