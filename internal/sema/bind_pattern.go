package sema

import (
	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// bindAssignmentPattern validates one of the three pattern forms against the
// target type and produces a flattened element list in canonical order.
func (c Context) bindAssignmentPattern(target types.Type, s *syntax.AssignmentPatternExprSyntax) Expression {
	store := c.Comp.Types()
	ct := target.Canonical()

	// figure out the element shape of the target
	var elemTypes []types.Type
	var fields []types.Field
	structured := false
	switch t := ct.(type) {
	case *types.UnpackedArrayType:
		n := int(t.Rng.Width())
		for i := 0; i < n; i++ {
			elemTypes = append(elemTypes, t.Elem)
		}
	case *types.PackedArrayType:
		n := int(t.Rng.Width())
		for i := 0; i < n; i++ {
			elemTypes = append(elemTypes, t.Elem)
		}
	case *types.UnpackedStructType:
		fields = t.Fields
		structured = true
	case *types.UnpackedUnionType:
		fields = t.Fields
		structured = true
	case *types.PackedStructType:
		fields = t.Fields
		structured = true
	case *types.PackedUnionType:
		fields = t.Fields
		structured = true
	default:
		if it, ok := ct.(*types.IntegralType); ok && it.TypeKind() == types.KindVector {
			n := int(it.BitWidth())
			bit := store.Scalar(flagsOf(it))
			for i := 0; i < n; i++ {
				elemTypes = append(elemTypes, bit)
			}
		} else {
			c.report(diag.AssignmentPatternBadType, s.Span(), target.String())
			return badExpr(store.Error, s.Span())
		}
	}
	if structured {
		for _, f := range fields {
			elemTypes = append(elemTypes, f.Type)
		}
	}

	switch {
	case s.Replicated:
		return c.bindReplicatedPattern(target, elemTypes, s)
	case len(s.Items) > 0 && s.Items[0].Keyed:
		if !structured {
			// keyed form against arrays supports index keys
			return c.bindKeyedArrayPattern(target, elemTypes, s)
		}
		return c.bindKeyedStructPattern(target, fields, s)
	default:
		return c.bindPositionalPattern(target, elemTypes, s, ExprSimplePattern)
	}
}

func (c Context) bindPositionalPattern(target types.Type, elemTypes []types.Type, s *syntax.AssignmentPatternExprSyntax, kind ExprKind) Expression {
	if len(s.Items) != len(elemTypes) {
		c.report(diag.WrongNumberAssignmentPatterns, s.Span(), len(s.Items), len(elemTypes))
		return badExpr(c.errType(), s.Span())
	}
	elems := make([]Expression, 0, len(s.Items))
	for i, item := range s.Items {
		if item.Keyed {
			c.report(diag.AssignmentPatternBadType, item.Span(), target.String())
			return badExpr(c.errType(), s.Span())
		}
		elems = append(elems, c.BindAssignment(elemTypes[i], item.Value, item.Span()))
	}
	pattern := newPattern(kind, target, s.Span(), elems)
	return c.fold(pattern)
}

// bindKeyedStructPattern matches field names, a type key, and default
// against struct/union members, producing elements in declaration order.
func (c Context) bindKeyedStructPattern(target types.Type, fields []types.Field, s *syntax.AssignmentPatternExprSyntax) Expression {
	byName := make(map[string]syntax.ExprSyntax)
	byType := make(map[types.Type]syntax.ExprSyntax)
	var defaultExpr syntax.ExprSyntax

	bad := false
	for _, item := range s.Items {
		switch item.KeyKind {
		case syntax.PatternKeyDefault:
			defaultExpr = item.Value
		case syntax.PatternKeyName:
			if _, ok := types.FieldByName(fields, item.KeyName); !ok {
				c.report(diag.AssignmentPatternNoMember, item.Span(), item.KeyName)
				bad = true
				continue
			}
			byName[item.KeyName] = item.Value
		case syntax.PatternKeyType:
			keyType := c.BindType(item.KeyType, false)
			byType[keyType.Canonical()] = item.Value
		default:
			c.report(diag.AssignmentPatternBadType, item.Span(), target.String())
			bad = true
		}
	}
	if bad {
		return badExpr(c.errType(), s.Span())
	}

	elems := make([]Expression, 0, len(fields))
	for _, f := range fields {
		var init syntax.ExprSyntax
		if e, ok := byName[f.Name]; ok {
			init = e
		} else if e, ok := typeKeyFor(byType, f.Type); ok {
			init = e
		} else if defaultExpr != nil {
			init = defaultExpr
		} else {
			c.report(diag.AssignmentPatternMissingElements, s.Span(), f.Name)
			return badExpr(c.errType(), s.Span())
		}
		elems = append(elems, c.BindAssignment(f.Type, init, s.Span()))
	}
	pattern := newPattern(ExprStructuredPattern, target, s.Span(), elems)
	return c.fold(pattern)
}

func typeKeyFor(byType map[types.Type]syntax.ExprSyntax, fieldType types.Type) (syntax.ExprSyntax, bool) {
	for key, e := range byType {
		if types.Matching(key, fieldType) {
			return e, true
		}
	}
	return nil, false
}

// bindKeyedArrayPattern handles '{0: x, default: y} against array targets.
func (c Context) bindKeyedArrayPattern(target types.Type, elemTypes []types.Type, s *syntax.AssignmentPatternExprSyntax) Expression {
	rng, ok := rangeOf(target)
	if !ok || len(elemTypes) == 0 {
		c.report(diag.AssignmentPatternBadType, s.Span(), target.String())
		return badExpr(c.errType(), s.Span())
	}

	byOffset := make(map[int64]syntax.ExprSyntax)
	var defaultExpr syntax.ExprSyntax
	for _, item := range s.Items {
		switch item.KeyKind {
		case syntax.PatternKeyDefault:
			defaultExpr = item.Value
		case syntax.PatternKeyExpr, syntax.PatternKeyName:
			var idx int64
			var ok bool
			if item.KeyKind == syntax.PatternKeyExpr {
				idx, ok = c.evalInt(item.KeyExpr)
			} else {
				// a name key against an array is an index expression
				idx, ok = c.evalIntName(item)
			}
			if !ok || !rng.Contains(idx) {
				c.report(diag.AssignmentPatternNoMember, item.Span(), item.KeyName)
				return badExpr(c.errType(), s.Span())
			}
			byOffset[rng.SlotOffset(idx)] = item.Value
		default:
			c.report(diag.AssignmentPatternBadType, item.Span(), target.String())
			return badExpr(c.errType(), s.Span())
		}
	}

	elems := make([]Expression, 0, len(elemTypes))
	for i := range elemTypes {
		init := byOffset[int64(i)]
		if init == nil {
			init = defaultExpr
		}
		if init == nil {
			c.report(diag.WrongNumberAssignmentPatterns, s.Span(), len(byOffset), len(elemTypes))
			return badExpr(c.errType(), s.Span())
		}
		elems = append(elems, c.BindAssignment(elemTypes[i], init, s.Span()))
	}
	pattern := newPattern(ExprStructuredPattern, target, s.Span(), elems)
	return c.fold(pattern)
}

// evalIntName treats a bare name key as a constant index.
func (c Context) evalIntName(item *syntax.PatternItemSyntax) (int64, bool) {
	sym := c.lookup(item.KeyName, item.Span())
	if sym == nil {
		return 0, false
	}
	bound := c.bindSymbolRef(sym, item.Span(), false)
	v := c.WithFlags(FlagConstant).EvalConstant(bound)
	if v.Kind() != numeric.KindInteger {
		return 0, false
	}
	return v.Integer().AsInt64()
}

// bindReplicatedPattern expands '{N{...}} into N copies of the element
// list.
func (c Context) bindReplicatedPattern(target types.Type, elemTypes []types.Type, s *syntax.AssignmentPatternExprSyntax) Expression {
	count, ok := c.evalInt(s.Count)
	if !ok || count <= 0 {
		c.report(diag.ReplicationCountInvalid, s.Count.Span())
		return badExpr(c.errType(), s.Span())
	}
	total := int(count) * len(s.RepElems)
	if total != len(elemTypes) {
		c.report(diag.WrongNumberAssignmentPatterns, s.Span(), total, len(elemTypes))
		return badExpr(c.errType(), s.Span())
	}
	elems := make([]Expression, 0, total)
	idx := 0
	for rep := int64(0); rep < count; rep++ {
		for _, e := range s.RepElems {
			elems = append(elems, c.BindAssignment(elemTypes[idx], e, e.Span()))
			idx++
		}
	}
	pattern := newPattern(ExprReplicatedPattern, target, s.Span(), elems)
	return c.fold(pattern)
}
