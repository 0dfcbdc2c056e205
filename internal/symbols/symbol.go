package symbols

import (
	"svelab/internal/diag"
	"svelab/internal/source"
	"svelab/internal/syntax"
	"svelab/internal/types"
)

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolRoot
	SymbolCompilationUnit
	SymbolPackage
	SymbolDefinition
	SymbolModuleInstance
	SymbolInterfaceInstance
	SymbolInstanceArray
	SymbolGenerateBlock
	SymbolGenerateBlockArray
	SymbolSequentialBlock
	SymbolProceduralBlock
	SymbolParameter
	SymbolTypeParameter
	SymbolPort
	SymbolInterfacePort
	SymbolNet
	SymbolVariable
	SymbolFormalArgument
	SymbolSubroutine
	SymbolModport
	SymbolContinuousAssign
	SymbolEnumValue
	SymbolTypeAlias
	SymbolForwardingTypedef
	SymbolEmptyMember
	SymbolTransparentMember
	SymbolExplicitImport
	SymbolWildcardImport
	SymbolGenvar
	SymbolDeferredMember
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolRoot:
		return "root"
	case SymbolCompilationUnit:
		return "compilation unit"
	case SymbolPackage:
		return "package"
	case SymbolDefinition:
		return "definition"
	case SymbolModuleInstance:
		return "module instance"
	case SymbolInterfaceInstance:
		return "interface instance"
	case SymbolInstanceArray:
		return "instance array"
	case SymbolGenerateBlock:
		return "generate block"
	case SymbolGenerateBlockArray:
		return "generate block array"
	case SymbolSequentialBlock:
		return "sequential block"
	case SymbolProceduralBlock:
		return "procedural block"
	case SymbolParameter:
		return "parameter"
	case SymbolTypeParameter:
		return "type parameter"
	case SymbolPort:
		return "port"
	case SymbolInterfacePort:
		return "interface port"
	case SymbolNet:
		return "net"
	case SymbolVariable:
		return "variable"
	case SymbolFormalArgument:
		return "formal argument"
	case SymbolSubroutine:
		return "subroutine"
	case SymbolModport:
		return "modport"
	case SymbolContinuousAssign:
		return "continuous assign"
	case SymbolEnumValue:
		return "enum value"
	case SymbolTypeAlias:
		return "type alias"
	case SymbolForwardingTypedef:
		return "forwarding typedef"
	case SymbolEmptyMember:
		return "empty member"
	case SymbolTransparentMember:
		return "transparent member"
	case SymbolExplicitImport:
		return "explicit import"
	case SymbolWildcardImport:
		return "wildcard import"
	case SymbolGenvar:
		return "genvar"
	case SymbolDeferredMember:
		return "deferred member"
	default:
		return "invalid"
	}
}

// SymbolIndex orders members within a scope; indexes are assigned with gaps
// so deferred expansion can slot produced members between existing ones.
type SymbolIndex uint32

const indexGap SymbolIndex = 16

// Symbol is the common contract of everything installed in a scope. Symbols
// are identified by address and never copied once installed.
type Symbol interface {
	Kind() SymbolKind
	Name() string
	Location() source.Span
	// Parent is the scope the symbol was installed into, nil for the root.
	Parent() *Scope
	Index() SymbolIndex
	// Syntax is the originating syntax node, possibly nil.
	Syntax() syntax.Node

	setParent(scope *Scope, index SymbolIndex)
}

// Compilation is the narrow view of the compilation store that scope and
// lookup machinery needs; the concrete implementation lives in the comp
// package.
type Compilation interface {
	Types() *types.Store
	Report(d diag.Diagnostic)
	// PackageByName returns the named package or nil.
	PackageByName(name string) *PackageSymbol
	// DefinitionByName returns the named module/interface/program or nil.
	DefinitionByName(name string) *DefinitionSymbol
	// UnitScopes lists compilation-unit scopes consulted when lexical
	// lookup exhausts the parent chain.
	UnitScopes() []*Scope
}

// symbolBase carries the fields every symbol shares.
type symbolBase struct {
	kind   SymbolKind
	name   string
	loc    source.Span
	parent *Scope
	index  SymbolIndex
	syntax syntax.Node
}

func makeSymbol(kind SymbolKind, name string, loc source.Span, stx syntax.Node) symbolBase {
	return symbolBase{kind: kind, name: name, loc: loc, syntax: stx}
}

func (s *symbolBase) Kind() SymbolKind      { return s.kind }
func (s *symbolBase) Name() string          { return s.name }
func (s *symbolBase) Location() source.Span { return s.loc }
func (s *symbolBase) Parent() *Scope        { return s.parent }
func (s *symbolBase) Index() SymbolIndex    { return s.index }
func (s *symbolBase) Syntax() syntax.Node   { return s.syntax }

func (s *symbolBase) setParent(scope *Scope, index SymbolIndex) {
	s.parent = scope
	s.index = index
}

// ValueSymbol is implemented by symbols that carry a declared type: nets,
// variables, parameters, ports, formal arguments, enum values.
type ValueSymbol interface {
	Symbol
	Declared() *DeclaredType
}

// ScopedSymbol is implemented by symbols that own a scope.
type ScopedSymbol interface {
	Symbol
	AsScope() *Scope
}
