package syntax

import (
	"svelab/internal/source"
)

// DefinitionKind distinguishes module, interface, and program definitions.
type DefinitionKind uint8

const (
	DefModule DefinitionKind = iota
	DefInterface
	DefProgram
)

func (k DefinitionKind) String() string {
	switch k {
	case DefInterface:
		return "interface"
	case DefProgram:
		return "program"
	default:
		return "module"
	}
}

// ImportItemSyntax is one pkg::name or pkg::* element of an import.
type ImportItemSyntax struct {
	node
	Package  string
	Name     string // empty for wildcard
	Wildcard bool
}

func (m *ImportItemSyntax) Kind() NodeKind { return KindInvalid }

// ImportDeclSyntax is import item {, item};
type ImportDeclSyntax struct {
	node
	Items []*ImportItemSyntax
}

func (m *ImportDeclSyntax) Kind() NodeKind { return KindImportDecl }
func (m *ImportDeclSyntax) memberNode()    {}

// ParamPortSyntax is one parameter in a #(...) parameter port list.
type ParamPortSyntax struct {
	node
	IsLocal     bool
	IsTypeParam bool
	Type        TypeSyntax // nil for type parameters
	Decl        *DeclaratorSyntax
}

func (m *ParamPortSyntax) Kind() NodeKind { return KindInvalid }

// AnsiPortSyntax is one port in an ANSI port list.
type AnsiPortSyntax struct {
	node
	Dir           Direction // DirNone inherits from the previous port
	NetType       TokenKind // 0 when absent
	UserNetType   string
	IsVar         bool
	Type          TypeSyntax // implicit when absent
	InterfaceName string     // set for interface ports
	ModportName   string
	Name          string
	NameSpan      source.Span
	Dims          []*DimensionSyntax
	Default       ExprSyntax
}

func (m *AnsiPortSyntax) Kind() NodeKind { return KindInvalid }

// NonAnsiPortSyntax is one name in a non-ANSI header port list.
type NonAnsiPortSyntax struct {
	node
	Name string
}

func (m *NonAnsiPortSyntax) Kind() NodeKind { return KindInvalid }

// ModuleDeclSyntax is a module/interface/program definition.
type ModuleDeclSyntax struct {
	node
	DefKind       DefinitionKind
	Name          string
	NameSpan      source.Span
	HeaderImports []*ImportDeclSyntax
	ParamPorts    []*ParamPortSyntax
	AnsiPorts     []*AnsiPortSyntax
	NonAnsiPorts  []*NonAnsiPortSyntax
	HasPortList   bool
	Items         []MemberSyntax
}

func (m *ModuleDeclSyntax) Kind() NodeKind { return KindModuleDecl }
func (m *ModuleDeclSyntax) memberNode()    {}

// PackageDeclSyntax is package name; items endpackage.
type PackageDeclSyntax struct {
	node
	Name     string
	NameSpan source.Span
	Items    []MemberSyntax
}

func (m *PackageDeclSyntax) Kind() NodeKind { return KindPackageDecl }
func (m *PackageDeclSyntax) memberNode()    {}

// ParamDeclSyntax is parameter/localparam declarations outside a parameter
// port list.
type ParamDeclSyntax struct {
	node
	IsLocal     bool
	IsTypeParam bool
	Type        TypeSyntax
	Decls       []*DeclaratorSyntax
}

func (m *ParamDeclSyntax) Kind() NodeKind { return KindParamDecl }
func (m *ParamDeclSyntax) memberNode()    {}

// TypedefDeclSyntax is typedef type name [dims];
type TypedefDeclSyntax struct {
	node
	Type     TypeSyntax
	Name     string
	NameSpan source.Span
	Dims     []*DimensionSyntax
}

func (m *TypedefDeclSyntax) Kind() NodeKind { return KindTypedefDecl }
func (m *TypedefDeclSyntax) memberNode()    {}

// ForwardTypedefDeclSyntax is typedef name; (forward declaration).
type ForwardTypedefDeclSyntax struct {
	node
	Name string
}

func (m *ForwardTypedefDeclSyntax) Kind() NodeKind { return KindForwardTypedefDecl }
func (m *ForwardTypedefDeclSyntax) memberNode()    {}

// NetDeclSyntax is wire/wand/... declarations, possibly with a data type.
type NetDeclSyntax struct {
	node
	NetType     TokenKind
	UserNetType string
	Type        TypeSyntax
	Decls       []*DeclaratorSyntax
}

func (m *NetDeclSyntax) Kind() NodeKind { return KindNetDecl }
func (m *NetDeclSyntax) memberNode()    {}

// VarDeclMemberSyntax is a variable declaration item (var keyword optional).
type VarDeclMemberSyntax struct {
	node
	IsConst bool
	Type    TypeSyntax
	Decls   []*DeclaratorSyntax
}

func (m *VarDeclMemberSyntax) Kind() NodeKind { return KindVarDeclMember }
func (m *VarDeclMemberSyntax) memberNode()    {}

// ContinuousAssignSyntax is assign a = b, c = d;
type ContinuousAssignSyntax struct {
	node
	Assignments []ExprSyntax
}

func (m *ContinuousAssignSyntax) Kind() NodeKind { return KindContinuousAssign }
func (m *ContinuousAssignSyntax) memberNode()    {}

// FunctionArgSyntax is one formal argument of a function.
type FunctionArgSyntax struct {
	node
	Dir      Direction
	Type     TypeSyntax
	Name     string
	NameSpan source.Span
	Dims     []*DimensionSyntax
	Default  ExprSyntax
}

func (m *FunctionArgSyntax) Kind() NodeKind { return KindInvalid }

// FunctionDeclSyntax is function [automatic] rettype name(args); body
// endfunction.
type FunctionDeclSyntax struct {
	node
	IsTask     bool
	Automatic  bool
	ReturnType TypeSyntax // nil for tasks
	Name       string
	NameSpan   source.Span
	Args       []*FunctionArgSyntax
	Body       []StmtSyntax
}

func (m *FunctionDeclSyntax) Kind() NodeKind { return KindFunctionDecl }
func (m *FunctionDeclSyntax) memberNode()    {}

// GenvarDeclSyntax is genvar i, j;
type GenvarDeclSyntax struct {
	node
	Names     []string
	NameSpans []source.Span
}

func (m *GenvarDeclSyntax) Kind() NodeKind { return KindGenvarDecl }
func (m *GenvarDeclSyntax) memberNode()    {}

// GenerateRegionSyntax is generate ... endgenerate.
type GenerateRegionSyntax struct {
	node
	Items []MemberSyntax
}

func (m *GenerateRegionSyntax) Kind() NodeKind { return KindGenerateRegion }
func (m *GenerateRegionSyntax) memberNode()    {}

// GenerateBlockSyntax is begin [: label] items end, inside generate
// constructs.
type GenerateBlockSyntax struct {
	node
	Label string
	Items []MemberSyntax
}

func (m *GenerateBlockSyntax) Kind() NodeKind { return KindGenerateBlock }
func (m *GenerateBlockSyntax) memberNode()    {}

// IfGenerateSyntax is if (cond) member [else member].
type IfGenerateSyntax struct {
	node
	Cond ExprSyntax
	Then MemberSyntax
	Else MemberSyntax // may be nil
}

func (m *IfGenerateSyntax) Kind() NodeKind { return KindIfGenerate }
func (m *IfGenerateSyntax) memberNode()    {}

// CaseGenerateItemSyntax is one arm of a case generate; nil Exprs marks
// default.
type CaseGenerateItemSyntax struct {
	node
	Exprs  []ExprSyntax
	Member MemberSyntax
}

func (m *CaseGenerateItemSyntax) Kind() NodeKind { return KindInvalid }

// CaseGenerateSyntax is case (expr) items endcase at generate level.
type CaseGenerateSyntax struct {
	node
	Expr  ExprSyntax
	Items []*CaseGenerateItemSyntax
}

func (m *CaseGenerateSyntax) Kind() NodeKind { return KindCaseGenerate }
func (m *CaseGenerateSyntax) memberNode()    {}

// LoopGenerateSyntax is for (genvar? i = init; stop; iter) body.
type LoopGenerateSyntax struct {
	node
	DeclaresGenvar bool
	GenvarName     string
	GenvarSpan     source.Span
	Init           ExprSyntax
	Stop           ExprSyntax
	Iter           ExprSyntax
	Body           MemberSyntax
}

func (m *LoopGenerateSyntax) Kind() NodeKind { return KindLoopGenerate }
func (m *LoopGenerateSyntax) memberNode()    {}

// PortConnectionKind discriminates connection forms at an instantiation.
type PortConnectionKind uint8

const (
	ConnOrdered PortConnectionKind = iota
	ConnNamed                      // .name(expr) or .name
	ConnWildcard                   // .*
)

// PortConnectionSyntax is one connection in an instance's port list.
type PortConnectionSyntax struct {
	node
	ConnKind PortConnectionKind
	Name     string
	HasParen bool       // .name() means explicit no-connect
	Expr     ExprSyntax // nil for .name and .*
}

func (m *PortConnectionSyntax) Kind() NodeKind { return KindInvalid }

// NamedParamAssignSyntax is .name(expr) in a parameter override list.
type NamedParamAssignSyntax struct {
	node
	Name     string
	NameSpan source.Span
	HasParen bool
	Expr     ExprSyntax // nil for .name()
}

func (m *NamedParamAssignSyntax) Kind() NodeKind { return KindInvalid }

// ParamAssignmentsSyntax is the #(...) override list at an instantiation.
type ParamAssignmentsSyntax struct {
	node
	Ordered []ExprSyntax
	Named   []*NamedParamAssignSyntax
}

func (m *ParamAssignmentsSyntax) Kind() NodeKind { return KindInvalid }

// HierarchicalInstanceSyntax is one name(..connections..) in an
// instantiation, optionally with array dimensions.
type HierarchicalInstanceSyntax struct {
	node
	Name        string
	NameSpan    source.Span
	Dims        []*DimensionSyntax
	Connections []*PortConnectionSyntax
}

func (m *HierarchicalInstanceSyntax) Kind() NodeKind { return KindInvalid }

// InstantiationSyntax is modname #(params) inst1(...), inst2(...);
type InstantiationSyntax struct {
	node
	ModuleName string
	NameSpan   source.Span
	Params     *ParamAssignmentsSyntax
	Instances  []*HierarchicalInstanceSyntax
}

func (m *InstantiationSyntax) Kind() NodeKind { return KindInstantiation }
func (m *InstantiationSyntax) memberNode()    {}

// ModportPortSyntax is one dir name entry in a modport item.
type ModportPortSyntax struct {
	node
	Dir  Direction
	Name string
}

func (m *ModportPortSyntax) Kind() NodeKind { return KindInvalid }

// ModportItemSyntax is name (ports) inside a modport declaration.
type ModportItemSyntax struct {
	node
	Name     string
	NameSpan source.Span
	Ports    []*ModportPortSyntax
}

func (m *ModportItemSyntax) Kind() NodeKind { return KindInvalid }

// ModportDeclSyntax is modport item {, item};
type ModportDeclSyntax struct {
	node
	Items []*ModportItemSyntax
}

func (m *ModportDeclSyntax) Kind() NodeKind { return KindModportDecl }
func (m *ModportDeclSyntax) memberNode()    {}

// PortIODeclSyntax is a non-ANSI I/O declaration in a module body: input
// [7:0] a;
type PortIODeclSyntax struct {
	node
	Dir     Direction
	NetType TokenKind
	IsVar   bool
	Type    TypeSyntax
	Decls   []*DeclaratorSyntax
}

func (m *PortIODeclSyntax) Kind() NodeKind { return KindPortIODecl }
func (m *PortIODeclSyntax) memberNode()    {}

// EmptyMemberSyntax is a stray semicolon.
type EmptyMemberSyntax struct{ node }

func (m *EmptyMemberSyntax) Kind() NodeKind { return KindEmptyMember }
func (m *EmptyMemberSyntax) memberNode()    {}

// ProceduralBlockKind tags initial/always variants.
type ProceduralBlockKind uint8

const (
	ProcInitial ProceduralBlockKind = iota
	ProcAlways
	ProcAlwaysComb
	ProcAlwaysFF
	ProcAlwaysLatch
)

// ProceduralBlockSyntax is initial/always ... with a single statement body.
type ProceduralBlockSyntax struct {
	node
	ProcKind ProceduralBlockKind
	Body     StmtSyntax
}

func (m *ProceduralBlockSyntax) Kind() NodeKind { return KindProceduralBlock }
func (m *ProceduralBlockSyntax) memberNode()    {}

// UnsupportedMemberSyntax records recognized-but-unsupported items (class
// declarations, DPI imports) so elaboration can report NotYetSupported.
type UnsupportedMemberSyntax struct {
	node
	What string
}

func (m *UnsupportedMemberSyntax) Kind() NodeKind { return KindUnsupportedMember }
func (m *UnsupportedMemberSyntax) memberNode()    {}
