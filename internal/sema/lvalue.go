package sema

import (
	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/types"
)

// LValue is a cursor into a constant-evaluation storage slot. Loads gather
// and stores scatter through the access path that produced the cursor.
type LValue struct {
	load  func() numeric.Value
	store func(numeric.Value)
}

// Load reads the current value.
func (l *LValue) Load() numeric.Value { return l.load() }

// Store writes a new value through the cursor.
func (l *LValue) Store(v numeric.Value) { l.store(v) }

// EvalLValue builds a storage cursor for an assignable expression, or nil
// when the expression does not denote constant-evaluation storage.
func (ev *EvalContext) EvalLValue(e Expression) *LValue {
	switch n := e.(type) {
	case *NamedValueExpr:
		slot := ev.Local(n.Symbol)
		if slot == nil {
			ev.note(diag.ConstEvalIdentifierNotLocal, n.Span(), n.Symbol.Name())
			return nil
		}
		return &LValue{
			load:  func() numeric.Value { return slot.Clone() },
			store: func(v numeric.Value) { *slot = v.Clone() },
		}

	case *ElementSelectExpr:
		parent := ev.EvalLValue(n.Value)
		if parent == nil {
			return nil
		}
		idxVal := ev.Eval(n.Index)
		if idxVal.IsInvalid() || idxVal.Kind() != numeric.KindInteger {
			return nil
		}
		idx, ok := idxVal.Integer().AsInt64()
		rng, rok := rangeOf(n.Value.Type())
		if !ok || !rok || !rng.Contains(idx) {
			ev.note(diag.NoteArrayIndexInvalid, n.Index.Span(), idxVal.String(), rng.String())
			return nil
		}
		if n.Value.Type().Canonical().TypeKind() == types.KindUnpackedArray {
			return selectIndexLValue(parent, rng.SlotOffset(idx), n.Type())
		}
		elemWidth := int64(n.Type().BitWidth())
		lo := rng.Offset(idx) * elemWidth
		return selectBitRangeLValue(parent, lo, lo+elemWidth-1)

	case *RangeSelectExpr:
		parent := ev.EvalLValue(n.Value)
		if parent == nil || !n.HasConstRange {
			return nil
		}
		declared, ok := rangeOf(n.Value.Type())
		if !ok {
			return nil
		}
		elemWidth := int64(1)
		if pa, isPA := n.Value.Type().Canonical().(*types.PackedArrayType); isPA {
			elemWidth = int64(pa.Elem.BitWidth())
		}
		unpacked := n.Value.Type().Canonical().TypeKind() == types.KindUnpackedArray
		if unpacked {
			lowSlot := declared.SlotOffset(int64(n.ConstRange.Lower()))
			highSlot := declared.SlotOffset(int64(n.ConstRange.Upper()))
			if highSlot < lowSlot {
				lowSlot, highSlot = highSlot, lowSlot
			}
			return selectElemRangeLValue(parent, lowSlot, highSlot)
		}
		lowOff := declared.Offset(int64(n.ConstRange.Lower()))
		highOff := declared.Offset(int64(n.ConstRange.Upper()))
		if highOff < lowOff {
			lowOff, highOff = highOff, lowOff
		}
		return selectBitRangeLValue(parent, lowOff*elemWidth, (highOff+1)*elemWidth-1)

	case *MemberAccessExpr:
		parent := ev.EvalLValue(n.Value)
		if parent == nil {
			return nil
		}
		ct := n.Value.Type().Canonical()
		if types.IsIntegral(ct) {
			lo := int64(n.Field.BitOffset)
			return selectBitRangeLValue(parent, lo, lo+int64(n.Field.Type.BitWidth())-1)
		}
		if _, isUnion := ct.(*types.UnpackedUnionType); isUnion {
			return selectIndexLValue(parent, 0, n.Type())
		}
		return selectIndexLValue(parent, int64(n.Field.Index), n.Type())

	case *ConcatExpr:
		// concatenation lvalue: stores scatter MSB-first, loads gather
		var parts []*LValue
		var widths []uint32
		for _, op := range n.Operands {
			lv := ev.EvalLValue(op)
			if lv == nil {
				return nil
			}
			parts = append(parts, lv)
			widths = append(widths, op.Type().BitWidth())
		}
		return concatLValue(parts, widths)

	default:
		ev.note(diag.ExpressionNotConstant, e.Span())
		return nil
	}
}

// selectIndexLValue drills into one element of an unpacked aggregate value.
func selectIndexLValue(parent *LValue, index int64, elemType types.Type) *LValue {
	return &LValue{
		load: func() numeric.Value {
			v := parent.Load()
			return v.ElementAt(int(index)).Clone()
		},
		store: func(v numeric.Value) {
			whole := parent.Load()
			elems := whole.Elements()
			if int(index) >= len(elems) {
				return
			}
			updated := make([]numeric.Value, len(elems))
			copy(updated, elems)
			updated[index] = v.Clone()
			parent.Store(numeric.ElementsValue(updated))
		},
	}
}

// selectElemRangeLValue covers a slice of an unpacked array.
func selectElemRangeLValue(parent *LValue, lo, hi int64) *LValue {
	return &LValue{
		load: func() numeric.Value {
			whole := parent.Load()
			var out []numeric.Value
			for i := lo; i <= hi; i++ {
				out = append(out, whole.ElementAt(int(i)).Clone())
			}
			return numeric.ElementsValue(out)
		},
		store: func(v numeric.Value) {
			whole := parent.Load()
			elems := whole.Elements()
			updated := make([]numeric.Value, len(elems))
			copy(updated, elems)
			src := v.Elements()
			for i := lo; i <= hi && int(i-lo) < len(src); i++ {
				if int(i) < len(updated) {
					updated[i] = src[i-lo].Clone()
				}
			}
			parent.Store(numeric.ElementsValue(updated))
		},
	}
}

// selectBitRangeLValue covers bits [hi:lo] of a packed value.
func selectBitRangeLValue(parent *LValue, lo, hi int64) *LValue {
	return &LValue{
		load: func() numeric.Value {
			whole := parent.Load()
			if whole.Kind() != numeric.KindInteger {
				return numeric.Invalid
			}
			return numeric.IntegerValue(whole.Integer().Slice(hi, lo))
		},
		store: func(v numeric.Value) {
			whole := parent.Load()
			if whole.Kind() != numeric.KindInteger || v.Kind() != numeric.KindInteger {
				return
			}
			parent.Store(numeric.IntegerValue(whole.Integer().SetSlice(hi, lo, v.Integer())))
		},
	}
}

// concatLValue distributes across sub-lvalues, first part most significant.
func concatLValue(parts []*LValue, widths []uint32) *LValue {
	return &LValue{
		load: func() numeric.Value {
			var ints []numeric.SVInt
			for _, p := range parts {
				v := p.Load()
				if v.Kind() != numeric.KindInteger {
					return numeric.Invalid
				}
				ints = append(ints, v.Integer())
			}
			if len(ints) == 0 {
				return numeric.Invalid
			}
			result := ints[0]
			if len(ints) > 1 {
				result = ints[0].Concat(ints[1:]...)
			}
			return numeric.IntegerValue(result)
		},
		store: func(v numeric.Value) {
			if v.Kind() != numeric.KindInteger {
				return
			}
			iv := v.Integer()
			total := int64(0)
			for _, w := range widths {
				total += int64(w)
			}
			pos := total
			for i, p := range parts {
				w := int64(widths[i])
				pos -= w
				p.Store(numeric.IntegerValue(iv.Slice(pos+w-1, pos)))
			}
		},
	}
}
