package sema

import (
	"fmt"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/symbols"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// TypeOf resolves the declared type of a value symbol, memoizing the result
// and guarding against cycles.
func TypeOf(comp symbols.Compilation, sym symbols.ValueSymbol) types.Type {
	d := sym.Declared()
	proceed, cycle := d.BeginTypeResolution()
	if cycle {
		comp.Report(diag.New(diag.DeclRecursiveDefinition, sym.Location(), sym.Name()))
		d.FinishTypeResolution(comp.Types().Error)
		return comp.Types().Error
	}
	if !proceed {
		if t := d.ResolvedType(); t != nil {
			return t
		}
		return comp.Types().Error
	}

	ctx := declContext(comp, sym, d)
	var result types.Type

	ts := d.TypeSyntax()
	implicit, isImplicit := ts.(*syntax.ImplicitTypeSyntax)
	if isImplicit && implicit.IsEmpty() && d.Flags()&symbols.DeclInferImplicit != 0 {
		// adopt the initializer's self-determined type
		if init := d.InitializerSyntax(); init != nil {
			bound := ctx.BindExpression(init)
			result = bound.Type()
		} else {
			result = comp.Types().Logic
		}
		d.FinishTypeResolution(result)
		return result
	}

	forceSigned := d.Flags()&symbols.DeclForceSigned != 0
	result = ctx.BindType(ts, forceSigned)
	result = ctx.wrapUnpackedDims(result, d.DimensionSyntax())
	d.FinishTypeResolution(result)
	return result
}

// declContext builds the binding context a declared type resolves in.
func declContext(comp symbols.Compilation, sym symbols.Symbol, d *symbols.DeclaredType) Context {
	scope := sym.Parent()
	if d.OverrideScope() != nil {
		scope = d.OverrideScope()
	}
	ctx := NewContext(comp, scope)
	if d.Flags()&symbols.DeclLookupMax == 0 {
		ctx.Location = symbols.Before(sym)
	}
	return ctx
}

// InitializerOf resolves and memoizes a value symbol's initializer. The
// returned value is Invalid when there is no initializer or it is not
// constant in a context that requires it.
func InitializerOf(comp symbols.Compilation, sym symbols.ValueSymbol) (Expression, numeric.Value) {
	d := sym.Declared()
	proceed, cycle := d.BeginInitResolution()
	if cycle {
		comp.Report(diag.New(diag.DeclRecursiveDefinition, sym.Location(), sym.Name()))
		d.FinishInitResolution(nil, numeric.Invalid)
		return nil, numeric.Invalid
	}
	if !proceed {
		bound, _ := d.BoundInitializer().(Expression)
		return bound, d.Value()
	}

	init := d.InitializerSyntax()
	if init == nil {
		d.FinishInitResolution(nil, numeric.Invalid)
		return nil, numeric.Invalid
	}

	target := TypeOf(comp, sym)
	ctx := declContext(comp, sym, d)
	if d.Flags()&symbols.DeclEnumInitializer != 0 {
		ctx = ctx.WithFlags(FlagEnumInit)
		if enum, ok := target.Canonical().(*types.EnumType); ok {
			target = enum.Base
		}
	}
	if d.Flags()&symbols.DeclRequireConstant != 0 {
		ctx = ctx.WithFlags(FlagConstant)
	}

	bound := ctx.BindAssignment(target, init, d.EqSpan())

	var value numeric.Value
	if d.Flags()&symbols.DeclRequireConstant != 0 {
		value = ctx.EvalConstant(bound)
	} else {
		ctx.fold(bound)
		value = bound.Constant()
	}
	d.FinishInitResolution(bound, value)
	return bound, value
}

// ParameterValue returns a parameter's resolved constant.
func ParameterValue(comp symbols.Compilation, p *symbols.ParameterSymbol) numeric.Value {
	p.Declared().SetFlags(symbols.DeclRequireConstant | symbols.DeclInferImplicit)
	_, v := InitializerOf(comp, p)
	return v
}

// AliasTypeOf resolves a typedef symbol into its (cached) alias type.
func AliasTypeOf(comp symbols.Compilation, alias *symbols.TypeAliasSymbol) types.Type {
	if t := alias.Resolved(); t != nil {
		return t
	}
	target := TypeOf(comp, alias)
	t := &types.TypeAlias{Name: alias.Name(), Target: target}
	alias.SetResolved(t)
	return t
}

// BindType maps a data-type syntax node to a type in this context.
func (c Context) BindType(ts syntax.TypeSyntax, forceSigned bool) types.Type {
	store := c.Comp.Types()
	if ts == nil {
		return store.Error
	}

	switch t := ts.(type) {
	case *syntax.ImplicitTypeSyntax:
		flags := types.FlagFourState
		if t.Signing == syntax.SignSigned || forceSigned {
			flags |= types.FlagSigned
		}
		return c.packedFromDims(store.Scalar(flags&^types.FlagSigned), t.Dims, flags)

	case *syntax.IntegerTypeSyntax:
		return c.bindIntegerType(t, forceSigned)

	case *syntax.FloatTypeSyntax:
		switch t.Keyword {
		case syntax.KwShortreal:
			return store.ShortReal
		case syntax.KwRealtime:
			return store.RealTime
		default:
			return store.Real
		}

	case *syntax.StringTypeSyntax:
		return store.Str
	case *syntax.EventTypeSyntax:
		return store.Event
	case *syntax.CHandleTypeSyntax:
		return store.CHandle
	case *syntax.VoidTypeSyntax:
		return store.Void

	case *syntax.NamedTypeSyntax:
		return c.bindNamedType(t)

	case *syntax.EnumTypeSyntax:
		return c.bindEnumType(t)

	case *syntax.StructTypeSyntax:
		return c.bindStructType(t)

	case *syntax.UnsupportedTypeSyntax:
		c.report(diag.NotYetSupported, t.Span(), t.What)
		return store.Error

	default:
		c.report(diag.SynExpectType, ts.Span())
		return store.Error
	}
}

func (c Context) bindIntegerType(t *syntax.IntegerTypeSyntax, forceSigned bool) types.Type {
	store := c.Comp.Types()

	var base *types.IntegralType
	flags := types.IntegralFlags(0)
	switch t.Keyword {
	case syntax.KwBit:
		base = store.Bit
	case syntax.KwLogic:
		base = store.Logic
		flags = types.FlagFourState
	case syntax.KwReg:
		base = store.Reg
		flags = types.FlagFourState | types.FlagReg
	case syntax.KwByte:
		base = store.Byte
	case syntax.KwShortint:
		base = store.ShortInt
	case syntax.KwInt:
		base = store.Int
	case syntax.KwLongint:
		base = store.LongInt
	case syntax.KwInteger:
		base = store.Integer
	case syntax.KwTime:
		base = store.Time
	default:
		return store.Error
	}

	signed := base.IsSigned()
	switch t.Signing {
	case syntax.SignSigned:
		signed = true
	case syntax.SignUnsigned:
		signed = false
	}
	if forceSigned {
		signed = true
	}

	isScalarKeyword := t.Keyword == syntax.KwBit || t.Keyword == syntax.KwLogic || t.Keyword == syntax.KwReg
	if len(t.Dims) == 0 {
		if isScalarKeyword {
			if signed {
				flags |= types.FlagSigned
				return store.Vector(1, flags)
			}
			return base
		}
		if signed == base.IsSigned() {
			return base
		}
		// signing override on a predefined atom produces the equivalent
		// vector
		vflags := base.Flags() &^ types.FlagSigned
		if signed {
			vflags |= types.FlagSigned
		}
		return store.Vector(base.BitWidth(), vflags)
	}

	elemFlags := types.IntegralFlags(0)
	if base.IsFourState() {
		elemFlags |= types.FlagFourState
	}
	if base.Flags()&types.FlagReg != 0 {
		elemFlags |= types.FlagReg
	}
	if signed {
		elemFlags |= types.FlagSigned
	}
	if !isScalarKeyword {
		c.report(diag.PackedDimsOnAggregate, t.Span())
		return store.Error
	}
	return c.packedFromDims(base, t.Dims, elemFlags)
}

// packedFromDims builds packed vectors/arrays right-to-left from the
// dimension list.
func (c Context) packedFromDims(scalar *types.IntegralType, dims []*syntax.DimensionSyntax, flags types.IntegralFlags) types.Type {
	store := c.Comp.Types()
	if len(dims) == 0 {
		if flags&types.FlagSigned != 0 {
			return store.Vector(1, flags)
		}
		return scalar
	}

	// rightmost dimension forms the base vector
	last := dims[len(dims)-1]
	rng, ok := c.EvalDimension(last)
	if !ok {
		return store.Error
	}
	var result types.Type = store.VectorWithRange(rng, flags)

	for i := len(dims) - 2; i >= 0; i-- {
		rng, ok := c.EvalDimension(dims[i])
		if !ok {
			return store.Error
		}
		result = types.NewPackedArray(result, rng)
	}
	return result
}

func (c Context) bindNamedType(t *syntax.NamedTypeSyntax) types.Type {
	store := c.Comp.Types()

	var sym symbols.Symbol
	if t.Package != "" {
		pkg := c.Comp.PackageByName(t.Package)
		if pkg == nil {
			c.report(diag.UnknownPackage, t.NameSpan, t.Package)
			return store.Error
		}
		sym = pkg.AsScope().Find(t.Name)
		if sym == nil {
			c.report(diag.UndeclaredIdentifier, t.NameSpan, t.Name)
			return store.Error
		}
	} else {
		sym = c.lookup(t.Name, t.NameSpan)
		if sym == nil {
			return store.Error
		}
	}

	var result types.Type
	switch s := sym.(type) {
	case *symbols.TypeAliasSymbol:
		result = AliasTypeOf(c.Comp, s)
	case *symbols.TypeParameterSymbol:
		result = TypeParameterTarget(c.Comp, s)
	case *symbols.ForwardingTypedefSymbol:
		// forward declaration without a definition in scope
		c.report(diag.TypeIsNotAType, t.NameSpan, t.Name)
		return store.Error
	case *symbols.DefinitionSymbol:
		// interface used as a data type is only legal in ports; the port
		// builder intercepts before binding gets here
		c.report(diag.TypeIsNotAType, t.NameSpan, t.Name)
		return store.Error
	default:
		c.report(diag.TypeIsNotAType, t.NameSpan, t.Name)
		return store.Error
	}

	if len(t.Dims) > 0 {
		if !types.IsIntegral(result) {
			c.report(diag.PackedDimsOnAggregate, t.Span())
			return store.Error
		}
		for i := len(t.Dims) - 1; i >= 0; i-- {
			rng, ok := c.EvalDimension(t.Dims[i])
			if !ok {
				return store.Error
			}
			result = types.NewPackedArray(result, rng)
		}
	}
	return result
}

// TypeParameterTarget resolves a type parameter to its assigned type.
func TypeParameterTarget(comp symbols.Compilation, p *symbols.TypeParameterSymbol) types.Type {
	if p.Target != nil {
		return p.Target
	}
	d := p.Declared()
	ts := d.TypeSyntax()
	if ts == nil {
		comp.Report(diag.New(diag.ParamHasNoValue, p.Location(), p.Name()))
		p.Target = comp.Types().Error
		return p.Target
	}
	ctx := declContext(comp, p, d)
	p.Target = ctx.BindType(ts, false)
	return p.Target
}

func (c Context) bindEnumType(t *syntax.EnumTypeSyntax) types.Type {
	store := c.Comp.Types()

	// base defaults to int
	var base types.Type = store.Int
	if t.Base != nil {
		base = c.BindType(t.Base, false)
	}
	if types.IsError(base) {
		return store.Error
	}
	if !types.IsIntegral(base) {
		c.report(diag.BadEnumBase, t.Base.Span())
		return store.Error
	}

	enum := &types.EnumType{Base: base}
	width := base.BitWidth()
	signed := base.IsSigned()

	seen := make(map[string]string) // value text -> first member name
	var prev numeric.SVInt
	havePrev := false

	addMember := func(name string, loc syntax.Node, value numeric.SVInt) {
		key := value.String()
		if first, dup := seen[key]; dup {
			c.report(diag.EnumValueDuplicate, loc.Span(), value.String(), first)
		} else {
			seen[key] = name
		}
		enum.Members = append(enum.Members, types.EnumMember{Name: name, Value: value})
		sym := symbols.NewEnumValueSymbol(name, loc.Span(), loc, enum, numeric.IntegerValue(value))
		c.Scope.AddMember(sym)
		prev = value
		havePrev = true
	}

	nextValue := func(loc syntax.Node) (numeric.SVInt, bool) {
		if !havePrev {
			return numeric.NewSVInt(width, signed, 0), true
		}
		if prev.HasUnknown() {
			c.report(diag.EnumIncrementUnknown, loc.Span())
			return numeric.SVInt{}, false
		}
		wide := prev.Resize(width + 1)
		inc := wide.Add(numeric.NewSVInt(width+1, signed, 1))
		if enumOverflows(inc, width, signed) {
			c.report(diag.EnumValueOverflow, loc.Span())
			return numeric.SVInt{}, false
		}
		return inc.Resize(width).AsSigned(signed), true
	}

	for _, m := range t.Members {
		count := int64(1)
		startIdx := int64(0)
		step := int64(1)
		ranged := false
		if m.RangeDim != nil {
			ranged = true
			switch m.RangeDim.DimKind {
			case syntax.DimSize:
				n, ok := c.evalInt(m.RangeDim.Left)
				if !ok || n <= 0 {
					c.report(diag.InvalidDimensionRange, m.RangeDim.Span())
					continue
				}
				count = n
			case syntax.DimRange:
				lo, ok1 := c.evalInt(m.RangeDim.Left)
				hi, ok2 := c.evalInt(m.RangeDim.Right)
				if !ok1 || !ok2 {
					c.report(diag.InvalidDimensionRange, m.RangeDim.Span())
					continue
				}
				startIdx = lo
				if hi < lo {
					step = -1
					count = lo - hi + 1
				} else {
					count = hi - lo + 1
				}
			default:
				c.report(diag.InvalidDimensionRange, m.RangeDim.Span())
				continue
			}
		}

		for i := int64(0); i < count; i++ {
			name := m.Name
			if ranged {
				name = fmt.Sprintf("%s%d", m.Name, startIdx+i*step)
			}
			var value numeric.SVInt
			if i == 0 && m.Init != nil {
				v, ok := c.evalEnumInit(m, base)
				if !ok {
					continue
				}
				value = v
			} else {
				v, ok := nextValue(m)
				if !ok {
					continue
				}
				value = v
			}
			addMember(name, m, value)
		}
	}

	result := c.wrapPackedDims(enum, t.Dims)
	return result
}

// evalEnumInit binds and evaluates an explicit enumerand initializer.
func (c Context) evalEnumInit(m *syntax.EnumMemberSyntax, base types.Type) (numeric.SVInt, bool) {
	ctx := c.WithFlags(FlagConstant | FlagEnumInit)
	bound := ctx.BindAssignment(base, m.Init, m.Span())
	v := ctx.EvalConstant(bound)
	if v.IsInvalid() || v.Kind() != numeric.KindInteger {
		return numeric.SVInt{}, false
	}
	iv := v.Integer()
	if iv.HasUnknown() {
		c.report(diag.EnumValueUnknownBits, m.Span())
		return numeric.SVInt{}, false
	}
	return iv.Resize(base.BitWidth()).AsSigned(base.IsSigned()), true
}

func enumOverflows(inc numeric.SVInt, width uint32, signed bool) bool {
	v, ok := inc.BigInt()
	if !ok {
		return true
	}
	limit := numeric.NewSVInt(width, signed, 0).Not() // all ones
	if signed {
		// max positive is 0111...1
		limit = limit.LShr(numeric.NewSVInt(32, false, 1))
	}
	max, _ := limit.AsSigned(false).BigInt()
	return v.Cmp(max) > 0
}

func (c Context) bindStructType(t *syntax.StructTypeSyntax) types.Type {
	store := c.Comp.Types()
	signed := t.Signing == syntax.SignSigned

	var fields []types.Field
	bad := false
	for _, member := range t.Members {
		memberType := c.BindType(member.Type, false)
		for _, decl := range member.Decls {
			fieldType := memberType
			if len(decl.Dims) > 0 {
				if t.Packed {
					fieldType = c.wrapPackedDeclDims(fieldType, decl.Dims)
				} else {
					fieldType = c.wrapUnpackedDims(fieldType, decl.Dims)
				}
			}
			if t.Packed && !types.IsIntegral(fieldType) && !types.IsError(fieldType) {
				c.report(diag.PackedMemberNotIntegral, decl.Span())
				bad = true
			}
			if types.IsError(fieldType) {
				bad = true
			}
			fields = append(fields, types.Field{Name: decl.Name, Type: fieldType})
		}
	}
	if bad {
		return store.Error
	}

	if t.Packed && t.IsUnion && len(fields) > 1 {
		w := fields[0].Type.BitWidth()
		for _, f := range fields[1:] {
			if f.Type.BitWidth() != w {
				c.report(diag.PackedUnionWidthMismatch, t.Span())
				return store.Error
			}
		}
	}

	var result types.Type
	switch {
	case t.Packed && t.IsUnion:
		result = types.NewPackedUnion(fields, signed)
	case t.Packed:
		result = types.NewPackedStruct(fields, signed)
	case t.IsUnion:
		result = types.NewUnpackedUnion(fields)
	default:
		result = types.NewUnpackedStruct(fields)
	}
	return c.wrapPackedDims(result, t.Dims)
}

// wrapPackedDims wraps packed dimensions around an integral type.
func (c Context) wrapPackedDims(base types.Type, dims []*syntax.DimensionSyntax) types.Type {
	if len(dims) == 0 {
		return base
	}
	if !types.IsIntegral(base) {
		c.report(diag.PackedDimsOnAggregate, dims[0].Span())
		return c.errType()
	}
	result := base
	for i := len(dims) - 1; i >= 0; i-- {
		rng, ok := c.EvalDimension(dims[i])
		if !ok {
			return c.errType()
		}
		result = types.NewPackedArray(result, rng)
	}
	return result
}

func (c Context) wrapPackedDeclDims(base types.Type, dims []*syntax.DimensionSyntax) types.Type {
	return c.wrapPackedDims(base, dims)
}

// wrapUnpackedDims wraps unpacked dimensions (outermost first) around a
// type. [N] means [0:N-1].
func (c Context) wrapUnpackedDims(base types.Type, dims []*syntax.DimensionSyntax) types.Type {
	if len(dims) == 0 {
		return base
	}
	result := base
	for i := len(dims) - 1; i >= 0; i-- {
		d := dims[i]
		switch d.DimKind {
		case syntax.DimRange:
			rng, ok := c.EvalDimension(d)
			if !ok {
				return c.errType()
			}
			result = types.NewUnpackedArray(result, rng)
		case syntax.DimSize:
			n, ok := c.evalInt(d.Left)
			if !ok || n <= 0 {
				c.report(diag.InvalidDimensionRange, d.Span())
				return c.errType()
			}
			result = types.NewUnpackedArray(result, types.ConstantRange{Left: 0, Right: int32(n - 1)})
		case syntax.DimUnsized:
			c.report(diag.NotYetSupported, d.Span(), "dynamic arrays")
			return c.errType()
		case syntax.DimStar:
			c.report(diag.NotYetSupported, d.Span(), "associative arrays")
			return c.errType()
		}
	}
	return result
}

// EvalDimension evaluates a [msb:lsb] or [N] dimension into a constant
// range.
func (c Context) EvalDimension(d *syntax.DimensionSyntax) (types.ConstantRange, bool) {
	switch d.DimKind {
	case syntax.DimRange:
		left, ok1 := c.evalInt(d.Left)
		right, ok2 := c.evalInt(d.Right)
		if !ok1 || !ok2 || !fitsInt32(left) || !fitsInt32(right) {
			c.report(diag.InvalidDimensionRange, d.Span())
			return types.ConstantRange{}, false
		}
		return types.ConstantRange{Left: int32(left), Right: int32(right)}, true
	case syntax.DimSize:
		n, ok := c.evalInt(d.Left)
		if !ok || n <= 0 || !fitsInt32(n-1) {
			c.report(diag.InvalidDimensionRange, d.Span())
			return types.ConstantRange{}, false
		}
		return types.ConstantRange{Left: int32(n - 1), Right: 0}, true
	default:
		c.report(diag.InvalidDimensionRange, d.Span())
		return types.ConstantRange{}, false
	}
}

// evalInt binds and constant-evaluates an expression to a known integer.
func (c Context) evalInt(e syntax.ExprSyntax) (int64, bool) {
	if e == nil {
		return 0, false
	}
	ctx := c.WithFlags(FlagConstant)
	bound := ctx.BindExpression(e)
	v := ctx.EvalConstant(bound)
	if v.IsInvalid() || v.Kind() != numeric.KindInteger {
		return 0, false
	}
	n, ok := v.Integer().AsInt64()
	return n, ok
}

func fitsInt32(v int64) bool { return v >= -(1<<31) && v < 1<<31 }
