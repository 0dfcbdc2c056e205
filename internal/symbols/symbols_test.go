package symbols_test

import (
	"testing"

	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/symbols"
	"svelab/internal/types"
)

// fakeComp is a minimal compilation for scope-level tests.
type fakeComp struct {
	store *types.Store
	bag   *diag.Bag
	pkgs  map[string]*symbols.PackageSymbol
}

func newFakeComp() *fakeComp {
	return &fakeComp{
		store: types.NewStore(),
		bag:   diag.NewBag(0),
		pkgs:  make(map[string]*symbols.PackageSymbol),
	}
}

func (f *fakeComp) Types() *types.Store                                  { return f.store }
func (f *fakeComp) Report(d diag.Diagnostic)                             { f.bag.Add(d) }
func (f *fakeComp) PackageByName(name string) *symbols.PackageSymbol    { return f.pkgs[name] }
func (f *fakeComp) DefinitionByName(string) *symbols.DefinitionSymbol   { return nil }
func (f *fakeComp) UnitScopes() []*symbols.Scope                         { return nil }

func span(start uint32) source.Span {
	return source.Span{File: 1, Start: start, End: start + 1}
}

func TestScopeOrderingAndFind(t *testing.T) {
	comp := newFakeComp()
	unit := symbols.NewCompilationUnitSymbol(comp)
	scope := unit.AsScope()

	a := symbols.NewVariableSymbol("a", span(0), nil)
	b := symbols.NewVariableSymbol("b", span(10), nil)
	a2 := symbols.NewVariableSymbol("a", span(20), nil)
	scope.AddMember(a)
	scope.AddMember(b)
	scope.AddMember(a2)

	members := scope.Members()
	if len(members) != 3 {
		t.Fatalf("member count %d", len(members))
	}
	for i, want := range []symbols.Symbol{a, b, a2} {
		if members[i] != want {
			t.Fatalf("member %d out of declaration order", i)
		}
	}
	if !(a.Index() < b.Index() && b.Index() < a2.Index()) {
		t.Fatalf("indexes must strictly increase: %d %d %d", a.Index(), b.Index(), a2.Index())
	}
	// find returns the earliest of a name
	if scope.Find("a") != a {
		t.Fatalf("find must return the first declaration")
	}
}

func TestLookupVisibility(t *testing.T) {
	comp := newFakeComp()
	unit := symbols.NewCompilationUnitSymbol(comp)
	scope := unit.AsScope()

	v := symbols.NewVariableSymbol("v", span(0), nil)
	scope.AddMember(v)

	// before the declaration the lookup fails; after, it succeeds
	if got := symbols.Unqualified(scope, "v", symbols.Before(v)); got.Symbol != nil {
		t.Fatalf("lookup before declaration must fail in a unit scope")
	}
	if got := symbols.Unqualified(scope, "v", symbols.After(v)); got.Symbol != v {
		t.Fatalf("lookup after declaration must find the symbol")
	}
	if got := symbols.Unqualified(scope, "v", symbols.LookupMax); got.Symbol != v {
		t.Fatalf("LookupMax must see every declaration")
	}
}

func TestLookupAscendsParentScopes(t *testing.T) {
	comp := newFakeComp()
	unit := symbols.NewCompilationUnitSymbol(comp)
	outer := symbols.NewVariableSymbol("x", span(0), nil)
	unit.AsScope().AddMember(outer)

	block := symbols.NewSequentialBlockSymbol(comp, "blk", span(5), nil)
	unit.AsScope().AddMember(block)

	if got := symbols.Unqualified(block.AsScope(), "x", symbols.LookupMax); got.Symbol != outer {
		t.Fatalf("nested lookup must find ancestors")
	}

	// shadowing: a same-named inner member wins
	inner := symbols.NewVariableSymbol("x", span(7), nil)
	block.AsScope().AddMember(inner)
	if got := symbols.Unqualified(block.AsScope(), "x", symbols.LookupMax); got.Symbol != inner {
		t.Fatalf("inner member must shadow the outer one")
	}
}

func TestWildcardImportLookup(t *testing.T) {
	comp := newFakeComp()
	pkg := symbols.NewPackageSymbol(comp, "p", span(0), nil)
	comp.pkgs["p"] = pkg
	exported := symbols.NewVariableSymbol("w", span(1), nil)
	pkg.AsScope().AddMember(exported)

	unit := symbols.NewCompilationUnitSymbol(comp)
	unit.AsScope().AddMember(symbols.NewWildcardImportSymbol("p", span(2), nil))

	result := symbols.Unqualified(unit.AsScope(), "w", symbols.LookupMax)
	if result.Symbol != exported || !result.WasImported {
		t.Fatalf("wildcard import lookup failed: %+v", result)
	}

	// a local declaration beats the import
	local := symbols.NewVariableSymbol("w", span(3), nil)
	unit.AsScope().AddMember(local)
	if got := symbols.Unqualified(unit.AsScope(), "w", symbols.LookupMax); got.Symbol != local {
		t.Fatalf("explicit declaration must win over wildcard import")
	}
}

func TestAmbiguousWildcardImport(t *testing.T) {
	comp := newFakeComp()
	for _, name := range []string{"p1", "p2"} {
		pkg := symbols.NewPackageSymbol(comp, name, span(0), nil)
		comp.pkgs[name] = pkg
		pkg.AsScope().AddMember(symbols.NewVariableSymbol("dup", span(1), nil))
	}
	unit := symbols.NewCompilationUnitSymbol(comp)
	unit.AsScope().AddMember(symbols.NewWildcardImportSymbol("p1", span(2), nil))
	unit.AsScope().AddMember(symbols.NewWildcardImportSymbol("p2", span(3), nil))

	symbols.Unqualified(unit.AsScope(), "dup", symbols.LookupMax)
	found := false
	for _, d := range comp.bag.Items() {
		if d.Code == diag.AmbiguousWildcardImport {
			found = true
		}
	}
	if !found {
		t.Fatalf("ambiguous wildcard import must be diagnosed")
	}
}

func TestDeferredMembers(t *testing.T) {
	comp := newFakeComp()
	unit := symbols.NewCompilationUnitSymbol(comp)
	scope := unit.AsScope()

	scope.AddMember(symbols.NewVariableSymbol("first", span(0), nil))
	calls := 0
	scope.AddDeferredMember(nil, func() []symbols.Symbol {
		calls++
		return []symbols.Symbol{
			symbols.NewVariableSymbol("late1", span(5), nil),
			symbols.NewVariableSymbol("late2", span(6), nil),
		}
	})
	scope.AddMember(symbols.NewVariableSymbol("last", span(9), nil))

	// first lookup of any name forces all deferred members
	if scope.Find("late2") == nil {
		t.Fatalf("deferred member must materialize on first lookup")
	}
	if calls != 1 {
		t.Fatalf("callback must run exactly once, ran %d", calls)
	}

	names := []string{}
	for _, m := range scope.Members() {
		names = append(names, m.Name())
	}
	want := []string{"first", "late1", "late2", "last"}
	if len(names) != len(want) {
		t.Fatalf("members after expansion: %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("declaration order lost: %v", names)
		}
	}

	// expanded members keep ordered indexes
	members := scope.Members()
	for i := 1; i < len(members); i++ {
		if members[i-1].Index() >= members[i].Index() {
			t.Fatalf("indexes must stay ordered after expansion")
		}
	}
}

func TestExplicitImportResolution(t *testing.T) {
	comp := newFakeComp()
	pkg := symbols.NewPackageSymbol(comp, "p", span(0), nil)
	comp.pkgs["p"] = pkg
	target := symbols.NewVariableSymbol("t", span(1), nil)
	pkg.AsScope().AddMember(target)

	unit := symbols.NewCompilationUnitSymbol(comp)
	unit.AsScope().AddMember(symbols.NewExplicitImportSymbol("p", "t", span(2), nil))

	if got := symbols.Unqualified(unit.AsScope(), "t", symbols.LookupMax); got.Symbol != target {
		t.Fatalf("explicit import must resolve through the package, got %v", got.Symbol)
	}
}

func TestDeclaredTypeStateMachine(t *testing.T) {
	v := symbols.NewVariableSymbol("v", span(0), nil)
	d := v.Declared()

	proceed, cycle := d.BeginTypeResolution()
	if !proceed || cycle {
		t.Fatalf("first begin must proceed")
	}
	// re-entry while resolving is the cycle signal
	proceed, cycle = d.BeginTypeResolution()
	if proceed || !cycle {
		t.Fatalf("re-entry must flag a cycle")
	}
	store := types.NewStore()
	d.FinishTypeResolution(store.Int)
	proceed, cycle = d.BeginTypeResolution()
	if proceed || cycle {
		t.Fatalf("resolved state must neither proceed nor cycle")
	}
	if d.ResolvedType() != store.Int {
		t.Fatalf("memoized type lost")
	}
}
