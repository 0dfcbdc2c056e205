package numeric

import (
	"errors"
	"math/big"
	"strings"
)

// Errors surfaced while parsing vector literals; the lexer maps them onto
// diagnostic codes.
var (
	ErrNoDigits  = errors.New("literal has no digits")
	ErrBadDigit  = errors.New("invalid digit for base")
	ErrZeroWidth = errors.New("literal size cannot be zero")
)

// ParseVector parses the digits of a based literal like 4'b10x1. size is the
// declared bit width, or 0 when the literal is unsized (defaults to 32).
// base is one of 'b', 'o', 'd', 'h'.
func ParseVector(size uint32, signed bool, base byte, digits string) (SVInt, error) {
	if size == 0 {
		size = 32
	}
	if size > MaxWidth {
		size = MaxWidth
	}
	digits = strings.ReplaceAll(digits, "_", "")
	if digits == "" {
		return SVInt{}, ErrNoDigits
	}

	var bitsPerDigit uint
	switch base {
	case 'b':
		bitsPerDigit = 1
	case 'o':
		bitsPerDigit = 3
	case 'h':
		bitsPerDigit = 4
	case 'd':
		return parseDecimal(size, signed, digits)
	default:
		return SVInt{}, ErrBadDigit
	}

	val := new(big.Int)
	unk := new(big.Int)
	for _, c := range strings.ToLower(digits) {
		val.Lsh(val, bitsPerDigit)
		unk.Lsh(unk, bitsPerDigit)
		digitMask := widthMaskUint(bitsPerDigit)
		switch {
		case c == 'x':
			unk.Or(unk, digitMask)
		case c == 'z' || c == '?':
			unk.Or(unk, digitMask)
			val.Or(val, digitMask)
		default:
			d := digitValue(byte(c))
			if d < 0 || uint(d) >= 1<<bitsPerDigit {
				return SVInt{}, ErrBadDigit
			}
			val.Or(val, big.NewInt(int64(d)))
		}
	}

	out := SVInt{width: size, signed: signed, val: val}
	if unk.Sign() != 0 {
		out.unk = unk
	}
	out.maskToWidth()
	return out, nil
}

// ParseUnsizedDecimal parses a bare decimal literal, which has the default
// 32-bit signed integer type.
func ParseUnsizedDecimal(digits string) (SVInt, error) {
	return parseDecimal(32, true, strings.ReplaceAll(digits, "_", ""))
}

func parseDecimal(size uint32, signed bool, digits string) (SVInt, error) {
	if digits == "" {
		return SVInt{}, ErrNoDigits
	}
	lower := strings.ToLower(digits)
	if lower == "x" {
		return AllX(size, signed), nil
	}
	if lower == "z" || lower == "?" {
		return AllZ(size, signed), nil
	}
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok {
		return SVInt{}, ErrBadDigit
	}
	return FromBig(size, signed, v), nil
}

func digitValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}

func widthMaskUint(bits uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), bits)
	return m.Sub(m, big.NewInt(1))
}
