package symbols

import (
	"svelab/internal/diag"
	"svelab/internal/source"
)

// LookupLocation is a (scope, index) pair enforcing "declared before use". A
// member is visible when its scope encloses the location's scope, or when it
// shares the scope and was declared at a smaller index.
type LookupLocation struct {
	Scope *Scope
	Index SymbolIndex
}

// LookupMax sees every declaration; LookupMin sees none.
var (
	LookupMax = LookupLocation{Index: ^SymbolIndex(0)}
	LookupMin = LookupLocation{Index: 0}
)

// Before positions the location just before a symbol's declaration.
func Before(sym Symbol) LookupLocation {
	return LookupLocation{Scope: sym.Parent(), Index: sym.Index()}
}

// After positions the location just after a symbol's declaration.
func After(sym Symbol) LookupLocation {
	return LookupLocation{Scope: sym.Parent(), Index: sym.Index() + 1}
}

// visibleAt checks whether a member is visible at the lookup location.
func visibleAt(sym Symbol, loc LookupLocation) bool {
	if loc.Scope == nil || sym.Parent() != loc.Scope {
		// members of ancestor scopes are visible from nested scopes; the
		// caller already walks outward scope by scope
		return true
	}
	return sym.Index() < loc.Index
}

// enforcesDeclOrder reports scopes where "declared before use" applies.
func enforcesDeclOrder(s *Scope) bool {
	if s.owner == nil {
		return false
	}
	switch s.owner.Kind() {
	case SymbolCompilationUnit, SymbolSubroutine:
		return true
	}
	return false
}

// LookupResult carries the outcome of an unqualified lookup.
type LookupResult struct {
	Symbol     Symbol
	WasImported bool
}

// Unqualified resolves a name: the starting
// scope, its wildcard imports, then enclosing scopes, and finally the
// compilation unit chain. Reports nothing; callers decide how to diagnose a
// miss.
func Unqualified(scope *Scope, name string, loc LookupLocation) LookupResult {
	var comp Compilation
	for s := scope; s != nil; {
		comp = s.Compilation()
		if sym := s.Find(name); sym != nil {
			checkLoc := loc
			if !enforcesDeclOrder(s) {
				checkLoc = LookupLocation{}
			}
			if s != loc.Scope {
				checkLoc = LookupLocation{}
			}
			if visibleAt(sym, checkLoc) {
				return LookupResult{Symbol: unwrapTransparent(sym)}
			}
		}

		if found, ambiguous := lookupWildcard(s, name, loc); found != nil {
			if ambiguous {
				s.Compilation().Report(diag.New(diag.AmbiguousWildcardImport, loc.sourceSpan(), name))
			}
			return LookupResult{Symbol: unwrapTransparent(found), WasImported: true}
		}

		// module and interface instances bound the lexical search; names
		// beyond them come from the compilation-unit scopes
		if owner := s.Owner(); owner != nil {
			switch owner.Kind() {
			case SymbolModuleInstance, SymbolInterfaceInstance:
				s = nil
				continue
			}
		}
		s = s.Parent()
	}

	if comp != nil {
		for _, unit := range comp.UnitScopes() {
			if unit == scope {
				continue
			}
			if sym := unit.Find(name); sym != nil {
				return LookupResult{Symbol: unwrapTransparent(sym)}
			}
		}
	}
	return LookupResult{}
}

// lookupWildcard scans a scope's wildcard imports for the name; more than
// one exporting package is an ambiguity.
func lookupWildcard(s *Scope, name string, loc LookupLocation) (Symbol, bool) {
	var found Symbol
	ambiguous := false
	for _, w := range s.WildcardImports() {
		pkg := s.Compilation().PackageByName(w.PackageName)
		if pkg == nil {
			continue
		}
		if sym := pkg.AsScope().Find(name); sym != nil {
			if found != nil && sym != found {
				ambiguous = true
				continue
			}
			found = sym
		}
	}
	_ = loc
	return found, ambiguous
}

func unwrapTransparent(sym Symbol) Symbol {
	if t, ok := sym.(*TransparentMemberSymbol); ok {
		return t.Wrapped
	}
	if e, ok := sym.(*ExplicitImportSymbol); ok {
		if imported := e.Imported(sym.Parent().Compilation()); imported != nil {
			return imported
		}
	}
	return sym
}

func (loc LookupLocation) sourceSpan() source.Span {
	if loc.Scope != nil && loc.Scope.Owner() != nil {
		return loc.Scope.Owner().Location()
	}
	return source.Span{}
}

// AsScopeOf returns the scope a symbol exposes for qualified lookup, or nil
// when dotting into it is invalid.
func AsScopeOf(sym Symbol) *Scope {
	if scoped, ok := sym.(ScopedSymbol); ok {
		return scoped.AsScope()
	}
	return nil
}
