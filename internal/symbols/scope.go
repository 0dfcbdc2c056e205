package symbols

import (
	"svelab/internal/source"
	"svelab/internal/syntax"
)

// DeferredCallback produces the real members for a deferred member when a
// lookup first touches its scope.
type DeferredCallback func() []Symbol

// DeferredMemberSymbol is a placeholder occupying a member slot until late
// construction runs (generate expansion, port wiring).
type DeferredMemberSymbol struct {
	symbolBase
	callback DeferredCallback
}

// Scope owns an ordered member list, a name index, wildcard imports, and
// pending deferred members. Every scope knows its compilation and the symbol
// it belongs to.
type Scope struct {
	comp  Compilation
	owner Symbol

	members   []Symbol
	nameMap   map[string]Symbol
	wildcards []*WildcardImportSymbol
	nextIndex SymbolIndex

	hasDeferred bool
	elaborating bool
}

// NewScope creates an empty scope owned by the given symbol.
func NewScope(comp Compilation, owner Symbol) *Scope {
	return &Scope{
		comp:    comp,
		owner:   owner,
		nameMap: make(map[string]Symbol),
	}
}

// Compilation returns the owning compilation.
func (s *Scope) Compilation() Compilation { return s.comp }

// Owner returns the symbol this scope belongs to.
func (s *Scope) Owner() Symbol { return s.owner }

// Parent returns the scope enclosing this one, nil at the root.
func (s *Scope) Parent() *Scope {
	if s.owner == nil {
		return nil
	}
	return s.owner.Parent()
}

// AddMember appends a symbol, assigning its index. Named, non-transparent
// members land in the name index; the first of a name wins.
func (s *Scope) AddMember(sym Symbol) {
	s.nextIndex += indexGap
	s.insert(sym, s.nextIndex)
}

func (s *Scope) insert(sym Symbol, index SymbolIndex) {
	sym.setParent(s, index)
	s.members = append(s.members, sym)
	s.indexName(sym)
}

func (s *Scope) indexName(sym Symbol) {
	switch sym.Kind() {
	case SymbolDeferredMember, SymbolEmptyMember, SymbolContinuousAssign,
		SymbolProceduralBlock, SymbolWildcardImport:
		// unnamed or transparent for lookup purposes
	case SymbolTransparentMember:
		// members of a transparent symbol surface through lookup directly
	default:
		if name := sym.Name(); name != "" {
			if _, exists := s.nameMap[name]; !exists {
				s.nameMap[name] = sym
			}
		}
	}
	if w, ok := sym.(*WildcardImportSymbol); ok {
		s.wildcards = append(s.wildcards, w)
	}
}

// Adopt parents a symbol to this scope without installing it as a member;
// used for detached parameter-evaluation scopes.
func (s *Scope) Adopt(sym Symbol) {
	s.nextIndex += indexGap
	sym.setParent(s, s.nextIndex)
}

// AddDeferredMember installs a placeholder whose callback runs on the first
// name query against this scope.
func (s *Scope) AddDeferredMember(node syntax.Node, callback DeferredCallback) {
	d := &DeferredMemberSymbol{
		symbolBase: makeSymbol(SymbolDeferredMember, "", spanOf(node), node),
		callback:   callback,
	}
	s.nextIndex += indexGap
	d.setParent(s, s.nextIndex)
	s.members = append(s.members, d)
	s.hasDeferred = true
}

func spanOf(node syntax.Node) source.Span {
	if node != nil {
		return node.Span()
	}
	return source.Span{}
}

// EnsureElaborated forces all pending deferred members in declaration order
// so subsequent lookups are deterministic.
func (s *Scope) EnsureElaborated() {
	if !s.hasDeferred || s.elaborating {
		return
	}
	s.elaborating = true
	defer func() { s.elaborating = false }()

	for {
		idx := -1
		for i, m := range s.members {
			if m.Kind() == SymbolDeferredMember {
				idx = i
				break
			}
		}
		if idx < 0 {
			break
		}
		d := s.members[idx].(*DeferredMemberSymbol)
		produced := d.callback()

		// splice produced members into the deferred slot, assigning indexes
		// inside the gap the placeholder reserved
		rest := make([]Symbol, len(s.members)-idx-1)
		copy(rest, s.members[idx+1:])
		s.members = s.members[:idx]

		base := d.Index() - indexGap
		step := indexGap / SymbolIndex(len(produced)+1)
		if step == 0 {
			step = 1
		}
		for i, sym := range produced {
			s.insert(sym, base+step*SymbolIndex(i+1))
		}
		s.members = append(s.members, rest...)
	}
	s.hasDeferred = false
}

// Members returns members in declaration order, forcing deferred
// elaboration.
func (s *Scope) Members() []Symbol {
	s.EnsureElaborated()
	return s.members
}

// MembersNoElaborate peeks at the current member list without triggering
// deferred construction; used by dump tooling.
func (s *Scope) MembersNoElaborate() []Symbol { return s.members }

// Find returns the first member of the given name, or nil. Deferred members
// are forced first.
func (s *Scope) Find(name string) Symbol {
	s.EnsureElaborated()
	return s.nameMap[name]
}

// WildcardImports lists the wildcard imports declared in this scope.
func (s *Scope) WildcardImports() []*WildcardImportSymbol { return s.wildcards }
