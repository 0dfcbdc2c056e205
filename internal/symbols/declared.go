package symbols

import (
	"svelab/internal/numeric"
	"svelab/internal/source"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// DeclaredTypeFlags modify how a declared type resolves.
type DeclaredTypeFlags uint8

const (
	// DeclInferImplicit adopts the initializer's type when the type syntax
	// is implicit.
	DeclInferImplicit DeclaredTypeFlags = 1 << iota
	// DeclRequireConstant forces the initializer to be a constant
	// expression.
	DeclRequireConstant
	// DeclForceSigned signs the resolved type (non-ANSI port signedness).
	DeclForceSigned
	// DeclLookupMax resolves names as if after all declarations.
	DeclLookupMax
	// DeclEnumInitializer binds the initializer against the enum base type.
	DeclEnumInitializer
)

// resolutionState is the declared-type state machine: unresolved ->
// resolving -> resolved, where resolving doubles as the re-entry guard.
type resolutionState uint8

const (
	stateUnresolved resolutionState = iota
	stateResolving
	stateResolved
)

// DeclaredType ties a value symbol to its type syntax, optional dimension
// list, and optional initializer. Resolution is performed lazily by the
// binder; the record memoizes the results and guards against re-entry.
type DeclaredType struct {
	typeSyntax syntax.TypeSyntax
	dims       []*syntax.DimensionSyntax
	initSyntax syntax.ExprSyntax
	eqSpan     source.Span
	flags      DeclaredTypeFlags

	// overrideScope rebinds the initializer in a different scope (parameter
	// overrides evaluate at the instantiation site).
	overrideScope *Scope

	typ       types.Type
	typeState resolutionState

	value      numeric.Value
	boundInit  any // *sema.Expression, opaque at this layer
	initState  resolutionState
}

// SetTypeSyntax installs the syntactic type, clearing any memoized type.
func (d *DeclaredType) SetTypeSyntax(t syntax.TypeSyntax) {
	d.typeSyntax = t
	d.typ = nil
	d.typeState = stateUnresolved
}

// SetDimensionSyntax installs unpacked dimensions.
func (d *DeclaredType) SetDimensionSyntax(dims []*syntax.DimensionSyntax) {
	d.dims = dims
	d.typ = nil
	d.typeState = stateUnresolved
}

// SetInitializerSyntax installs the initializer, clearing memoized values.
// This is the reset mechanism a parameter override uses.
func (d *DeclaredType) SetInitializerSyntax(init syntax.ExprSyntax, eqSpan source.Span) {
	d.initSyntax = init
	d.eqSpan = eqSpan
	d.value = numeric.Invalid
	d.boundInit = nil
	d.initState = stateUnresolved
	if d.flags&DeclInferImplicit != 0 {
		d.typ = nil
		d.typeState = stateUnresolved
	}
}

// SetOverrideScope makes initializer binding happen in the given scope
// instead of the owner's.
func (d *DeclaredType) SetOverrideScope(scope *Scope) { d.overrideScope = scope }

// OverrideScope returns the override binding scope, or nil.
func (d *DeclaredType) OverrideScope() *Scope { return d.overrideScope }

// SetFlags adds resolver flags.
func (d *DeclaredType) SetFlags(flags DeclaredTypeFlags) { d.flags |= flags }

// Flags returns the resolver flags.
func (d *DeclaredType) Flags() DeclaredTypeFlags { return d.flags }

// TypeSyntax returns the stored type syntax, possibly nil.
func (d *DeclaredType) TypeSyntax() syntax.TypeSyntax { return d.typeSyntax }

// DimensionSyntax returns the stored unpacked dimensions.
func (d *DeclaredType) DimensionSyntax() []*syntax.DimensionSyntax { return d.dims }

// InitializerSyntax returns the stored initializer syntax, possibly nil.
func (d *DeclaredType) InitializerSyntax() syntax.ExprSyntax { return d.initSyntax }

// EqSpan is the location of the = token, for initializer diagnostics.
func (d *DeclaredType) EqSpan() source.Span { return d.eqSpan }

// CopySyntaxFrom duplicates syntax references (not memoized state) from
// another record; used by parameter cloning.
func (d *DeclaredType) CopySyntaxFrom(other *DeclaredType) {
	d.typeSyntax = other.typeSyntax
	d.dims = other.dims
	d.initSyntax = other.initSyntax
	d.eqSpan = other.eqSpan
	d.flags = other.flags
	d.overrideScope = other.overrideScope
}

// BeginTypeResolution transitions to resolving; returns false when already
// resolved or when re-entered (a cycle).
func (d *DeclaredType) BeginTypeResolution() (proceed, cycle bool) {
	switch d.typeState {
	case stateResolved:
		return false, false
	case stateResolving:
		return false, true
	}
	d.typeState = stateResolving
	return true, false
}

// FinishTypeResolution memoizes the resolved type.
func (d *DeclaredType) FinishTypeResolution(t types.Type) {
	d.typ = t
	d.typeState = stateResolved
}

// ResolvedType returns the memoized type, nil before resolution.
func (d *DeclaredType) ResolvedType() types.Type { return d.typ }

// BeginInitResolution mirrors BeginTypeResolution for the initializer.
func (d *DeclaredType) BeginInitResolution() (proceed, cycle bool) {
	switch d.initState {
	case stateResolved:
		return false, false
	case stateResolving:
		return false, true
	}
	d.initState = stateResolving
	return true, false
}

// FinishInitResolution memoizes the bound initializer and its constant
// value.
func (d *DeclaredType) FinishInitResolution(bound any, value numeric.Value) {
	d.boundInit = bound
	d.value = value
	d.initState = stateResolved
}

// Value returns the memoized constant value (Invalid before resolution or on
// failure).
func (d *DeclaredType) Value() numeric.Value { return d.value }

// BoundInitializer returns the opaque bound initializer expression.
func (d *DeclaredType) BoundInitializer() any { return d.boundInit }

// HasResolvedValue reports a completed initializer resolution.
func (d *DeclaredType) HasResolvedValue() bool { return d.initState == stateResolved }
