package sema

import (
	"math/bits"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/types"
)

// SystemSubroutine is a registered $-function: a type checker returning the
// result type and a constant evaluator.
type SystemSubroutine struct {
	Name              string
	AllowedInConstant bool
	Check             func(c Context, args []Expression, span source.Span) types.Type
	Eval              func(ev *EvalContext, args []Expression, typeArg types.Type) numeric.Value
}

var systemSubroutines = map[string]*SystemSubroutine{}

func registerSystem(s *SystemSubroutine) { systemSubroutines[s.Name] = s }

// LookupSystemSubroutine dispatches by name, or nil.
func LookupSystemSubroutine(name string) *SystemSubroutine {
	return systemSubroutines[name]
}

// argType returns the queried type of the sole argument: the type reference
// target or the expression's own type.
func argType(args []Expression) types.Type {
	if len(args) == 0 {
		return nil
	}
	if tr, ok := args[0].(*TypeReferenceExpr); ok {
		return tr.Target
	}
	return args[0].Type()
}

func checkOneArg(c Context, args []Expression, span source.Span, integralOnly bool) types.Type {
	store := c.Comp.Types()
	if len(args) != 1 {
		if len(args) < 1 {
			c.report(diag.TooFewArguments, span, "system subroutine", 1, len(args))
		} else {
			c.report(diag.TooManyArguments, span, "system subroutine", 1, len(args))
		}
		return store.Error
	}
	t := argType(args)
	if types.IsError(t) {
		return store.Error
	}
	if integralOnly && !types.IsIntegral(t) {
		c.report(diag.BadSystemSubroutineArg, args[0].Span(), t.String())
		return store.Error
	}
	return store.Int
}

// queriedRange finds the range a dimension query operates on.
func queriedRange(t types.Type) (types.ConstantRange, bool) {
	return rangeOf(t)
}

func init() {
	registerSystem(&SystemSubroutine{
		Name:              "$clog2",
		AllowedInConstant: true,
		Check: func(c Context, args []Expression, span source.Span) types.Type {
			return checkOneArg(c, args, span, true)
		},
		Eval: func(ev *EvalContext, args []Expression, _ types.Type) numeric.Value {
			v := ev.Eval(args[0])
			if v.IsInvalid() || v.Kind() != numeric.KindInteger {
				return numeric.Invalid
			}
			n, ok := v.Integer().AsUint64()
			if !ok {
				return numeric.Invalid
			}
			result := uint64(0)
			if n > 1 {
				result = uint64(bits.Len64(n - 1))
			}
			return numeric.IntegerValue(numeric.NewSVInt(32, true, result))
		},
	})

	registerSystem(&SystemSubroutine{
		Name:              "$bits",
		AllowedInConstant: true,
		Check: func(c Context, args []Expression, span source.Span) types.Type {
			store := c.Comp.Types()
			if len(args) != 1 {
				c.report(diag.TooFewArguments, span, "$bits", 1, len(args))
				return store.Error
			}
			t := argType(args)
			if types.IsError(t) {
				return store.Error
			}
			if !types.IsIntegral(t) && !types.IsString(t) && !types.IsUnpackedAggregate(t) {
				c.report(diag.BadSystemSubroutineArg, args[0].Span(), t.String())
				return store.Error
			}
			return store.Int
		},
		Eval: func(ev *EvalContext, args []Expression, _ types.Type) numeric.Value {
			t := argType(args)
			w := bitsOf(t)
			if w == 0 {
				return numeric.Invalid
			}
			return numeric.IntegerValue(numeric.NewSVInt(32, true, uint64(w)))
		},
	})

	type dimQuery struct {
		name string
		eval func(rng types.ConstantRange) int64
	}
	for _, q := range []dimQuery{
		{"$left", func(r types.ConstantRange) int64 { return int64(r.Left) }},
		{"$right", func(r types.ConstantRange) int64 { return int64(r.Right) }},
		{"$high", func(r types.ConstantRange) int64 { return int64(r.Upper()) }},
		{"$low", func(r types.ConstantRange) int64 { return int64(r.Lower()) }},
		{"$size", func(r types.ConstantRange) int64 { return int64(r.Width()) }},
		{"$increment", func(r types.ConstantRange) int64 {
			if r.IsLittleEndian() {
				return 1
			}
			return -1
		}},
	} {
		eval := q.eval
		registerSystem(&SystemSubroutine{
			Name:              q.name,
			AllowedInConstant: true,
			Check: func(c Context, args []Expression, span source.Span) types.Type {
				return checkOneArg(c, args, span, false)
			},
			Eval: func(ev *EvalContext, args []Expression, _ types.Type) numeric.Value {
				rng, ok := queriedRange(argType(args))
				if !ok {
					return numeric.Invalid
				}
				return numeric.IntegerValue(numeric.FromInt64(32, true, eval(rng)))
			},
		})
	}
}

// bitsOf computes the packed width of a type, descending into unpacked
// aggregates elementwise.
func bitsOf(t types.Type) uint32 {
	c := t.Canonical()
	if types.IsIntegral(c) {
		return c.BitWidth()
	}
	switch ct := c.(type) {
	case *types.UnpackedArrayType:
		return ct.Rng.Width() * bitsOf(ct.Elem)
	case *types.UnpackedStructType:
		total := uint32(0)
		for _, f := range ct.Fields {
			total += bitsOf(f.Type)
		}
		return total
	}
	return 0
}
