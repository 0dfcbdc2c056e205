package syntax

import (
	"testing"

	"svelab/internal/diag"
	"svelab/internal/source"
)

func parseSource(t *testing.T, text string) (*Tree, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	bag := diag.NewBag(0)
	tree := ParseText(fs, "test.sv", text, diag.NewBagReporter(bag))
	return tree, bag
}

func parseClean(t *testing.T, text string) *Tree {
	t.Helper()
	tree, bag := parseSource(t, text)
	if bag.HasErrors() {
		t.Fatalf("unexpected parse errors: %+v", bag.Items())
	}
	return tree
}

func TestParseEmptyModule(t *testing.T) {
	tree := parseClean(t, "module top; endmodule")
	if len(tree.Members) != 1 {
		t.Fatalf("got %d members", len(tree.Members))
	}
	mod, ok := tree.Members[0].(*ModuleDeclSyntax)
	if !ok || mod.Name != "top" || mod.DefKind != DefModule {
		t.Fatalf("got %+v", tree.Members[0])
	}
}

func TestParseParameterPorts(t *testing.T) {
	tree := parseClean(t, `
module m #(parameter int W = 8, D = 4, localparam L = W*2)();
endmodule`)
	mod := tree.Members[0].(*ModuleDeclSyntax)
	if len(mod.ParamPorts) != 3 {
		t.Fatalf("got %d param ports", len(mod.ParamPorts))
	}
	if mod.ParamPorts[0].Decl.Name != "W" || mod.ParamPorts[0].IsLocal {
		t.Fatalf("port 0: %+v", mod.ParamPorts[0])
	}
	if mod.ParamPorts[1].Decl.Name != "D" {
		t.Fatalf("port 1: %+v", mod.ParamPorts[1])
	}
	if !mod.ParamPorts[2].IsLocal {
		t.Fatalf("port 2 must be local")
	}
}

func TestParseAnsiPorts(t *testing.T) {
	tree := parseClean(t, `
module m(input logic clk, input [7:0] data, output wire logic [3:0] q, inout w);
endmodule`)
	mod := tree.Members[0].(*ModuleDeclSyntax)
	if len(mod.AnsiPorts) != 4 {
		t.Fatalf("got %d ports", len(mod.AnsiPorts))
	}
	if mod.AnsiPorts[0].Dir != DirInput || mod.AnsiPorts[0].Name != "clk" {
		t.Fatalf("port 0: %+v", mod.AnsiPorts[0])
	}
	if mod.AnsiPorts[1].Dir != DirInput {
		t.Fatalf("port 1 direction")
	}
	if _, ok := mod.AnsiPorts[1].Type.(*ImplicitTypeSyntax); !ok {
		t.Fatalf("port 1 must have implicit type")
	}
	if mod.AnsiPorts[2].NetType != KwWire {
		t.Fatalf("port 2 net type")
	}
	if mod.AnsiPorts[3].Dir != DirInout {
		t.Fatalf("port 3 direction")
	}
}

func TestParseNonAnsiPorts(t *testing.T) {
	tree := parseClean(t, `
module m(a, b);
  input a;
  output [3:0] b;
endmodule`)
	mod := tree.Members[0].(*ModuleDeclSyntax)
	if len(mod.NonAnsiPorts) != 2 || len(mod.AnsiPorts) != 0 {
		t.Fatalf("port shape wrong: %+v", mod)
	}
	ioDecls := 0
	for _, item := range mod.Items {
		if _, ok := item.(*PortIODeclSyntax); ok {
			ioDecls++
		}
	}
	if ioDecls != 2 {
		t.Fatalf("got %d IO decls", ioDecls)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	tree := parseClean(t, "module m; parameter p = 1 + 2 * 3; endmodule")
	mod := tree.Members[0].(*ModuleDeclSyntax)
	param := mod.Items[0].(*ParamDeclSyntax)
	bin := param.Decls[0].Init.(*BinaryExprSyntax)
	if bin.Op != BinaryAdd {
		t.Fatalf("top op %v", bin.Op)
	}
	if inner, ok := bin.Right.(*BinaryExprSyntax); !ok || inner.Op != BinaryMultiply {
		t.Fatalf("rhs %+v", bin.Right)
	}
}

func TestParsePowerRightAssociative(t *testing.T) {
	tree := parseClean(t, "module m; parameter p = 2 ** 3 ** 2; endmodule")
	param := tree.Members[0].(*ModuleDeclSyntax).Items[0].(*ParamDeclSyntax)
	bin := param.Decls[0].Init.(*BinaryExprSyntax)
	if inner, ok := bin.Right.(*BinaryExprSyntax); !ok || inner.Op != BinaryPower {
		t.Fatalf("power must nest right: %+v", bin.Right)
	}
}

func TestParseConcatAndReplication(t *testing.T) {
	tree := parseClean(t, "module m; assign x = {a, b, {2{c}}}; endmodule")
	assign := tree.Members[0].(*ModuleDeclSyntax).Items[0].(*ContinuousAssignSyntax)
	rhs := assign.Assignments[0].(*AssignExprSyntax).Right.(*ConcatExprSyntax)
	if len(rhs.Elems) != 3 {
		t.Fatalf("got %d concat elems", len(rhs.Elems))
	}
	if _, ok := rhs.Elems[2].(*ReplicationExprSyntax); !ok {
		t.Fatalf("third elem %+v", rhs.Elems[2])
	}
}

func TestParseSelects(t *testing.T) {
	tree := parseClean(t, "module m; assign x = v[3], y = v[7:4], z = v[i+:2], w = v[i-:2]; endmodule")
	assigns := tree.Members[0].(*ModuleDeclSyntax).Items[0].(*ContinuousAssignSyntax).Assignments
	if _, ok := assigns[0].(*AssignExprSyntax).Right.(*ElementSelectExprSyntax); !ok {
		t.Fatalf("v[3] not an element select")
	}
	r1 := assigns[1].(*AssignExprSyntax).Right.(*RangeSelectExprSyntax)
	if r1.SelKind != RangeSimple {
		t.Fatalf("v[7:4] kind %v", r1.SelKind)
	}
	if assigns[2].(*AssignExprSyntax).Right.(*RangeSelectExprSyntax).SelKind != RangeIndexedUp {
		t.Fatalf("+: kind wrong")
	}
	if assigns[3].(*AssignExprSyntax).Right.(*RangeSelectExprSyntax).SelKind != RangeIndexedDown {
		t.Fatalf("-: kind wrong")
	}
}

func TestParseEnumTypedef(t *testing.T) {
	tree := parseClean(t, "module m; typedef enum bit[1:0] { A=3, B, C[2] } e_t; endmodule")
	td := tree.Members[0].(*ModuleDeclSyntax).Items[0].(*TypedefDeclSyntax)
	enum := td.Type.(*EnumTypeSyntax)
	if len(enum.Members) != 3 {
		t.Fatalf("got %d enum members", len(enum.Members))
	}
	if enum.Members[0].Init == nil || enum.Members[1].Init != nil {
		t.Fatalf("initializer placement wrong")
	}
	if enum.Members[2].RangeDim == nil {
		t.Fatalf("C[2] must carry a range dim")
	}
}

func TestParseStructUnion(t *testing.T) {
	tree := parseClean(t, `
module m;
  typedef struct packed { logic [3:0] hi; logic [3:0] lo; } pair_t;
  typedef union packed { pair_t p; logic [7:0] raw; } u_t;
endmodule`)
	items := tree.Members[0].(*ModuleDeclSyntax).Items
	st := items[0].(*TypedefDeclSyntax).Type.(*StructTypeSyntax)
	if st.IsUnion || !st.Packed || len(st.Members) != 2 {
		t.Fatalf("struct shape: %+v", st)
	}
	un := items[1].(*TypedefDeclSyntax).Type.(*StructTypeSyntax)
	if !un.IsUnion {
		t.Fatalf("union flag missing")
	}
}

func TestParseGenerateFor(t *testing.T) {
	tree := parseClean(t, `
module m;
  genvar i;
  for (i = 0; i < 3; i = i + 1) begin : g
    logic [i:0] x;
  end
endmodule`)
	items := tree.Members[0].(*ModuleDeclSyntax).Items
	if _, ok := items[0].(*GenvarDeclSyntax); !ok {
		t.Fatalf("genvar missing")
	}
	loop := items[1].(*LoopGenerateSyntax)
	if loop.GenvarName != "i" || loop.DeclaresGenvar {
		t.Fatalf("loop genvar: %+v", loop)
	}
	block := loop.Body.(*GenerateBlockSyntax)
	if block.Label != "g" || len(block.Items) != 1 {
		t.Fatalf("block: %+v", block)
	}
}

func TestParseInstantiation(t *testing.T) {
	tree := parseClean(t, `
module top;
  sub #(.W(8), .D(2)) u1 (.clk(clk), .q(), .*);
  sub u2 [3:0] (a, b);
  other_t v1;
endmodule`)
	items := tree.Members[0].(*ModuleDeclSyntax).Items
	inst := items[0].(*InstantiationSyntax)
	if inst.ModuleName != "sub" || len(inst.Params.Named) != 2 {
		t.Fatalf("inst: %+v", inst)
	}
	conns := inst.Instances[0].Connections
	if len(conns) != 3 || conns[0].ConnKind != ConnNamed || conns[2].ConnKind != ConnWildcard {
		t.Fatalf("connections: %+v", conns)
	}
	if !conns[1].HasParen || conns[1].Expr != nil {
		t.Fatalf("q() must be explicit no-connect")
	}
	arr := items[1].(*InstantiationSyntax)
	if len(arr.Instances[0].Dims) != 1 {
		t.Fatalf("array dims missing")
	}
	if _, ok := items[2].(*VarDeclMemberSyntax); !ok {
		t.Fatalf("named-type variable parsed as %+v", items[2])
	}
}

func TestParseFunction(t *testing.T) {
	tree := parseClean(t, `
module m;
  function automatic int sum(input int n);
    int total;
    total = 0;
    for (int i = 0; i <= n; i = i + 1) begin
      total = total + i;
    end
    return total;
  endfunction
endmodule`)
	fn := tree.Members[0].(*ModuleDeclSyntax).Items[0].(*FunctionDeclSyntax)
	if fn.Name != "sum" || !fn.Automatic || len(fn.Args) != 1 {
		t.Fatalf("function header: %+v", fn)
	}
	if len(fn.Body) != 4 {
		t.Fatalf("got %d body statements", len(fn.Body))
	}
}

func TestParseAssignmentPattern(t *testing.T) {
	tree := parseClean(t, "module m; parameter p_t p = '{a: 1, default: 0}; parameter q_t q = '{1, 2, 3}; endmodule")
	items := tree.Members[0].(*ModuleDeclSyntax).Items
	pat := items[0].(*ParamDeclSyntax).Decls[0].Init.(*AssignmentPatternExprSyntax)
	if len(pat.Items) != 2 || !pat.Items[0].Keyed || pat.Items[1].KeyKind != PatternKeyDefault {
		t.Fatalf("keyed pattern: %+v", pat)
	}
	pos := items[1].(*ParamDeclSyntax).Decls[0].Init.(*AssignmentPatternExprSyntax)
	if len(pos.Items) != 3 || pos.Items[0].Keyed {
		t.Fatalf("positional pattern: %+v", pos)
	}
}

func TestParsePackageAndImport(t *testing.T) {
	tree := parseClean(t, `
package p;
  parameter W = 4;
endpackage
module m;
  import p::*;
  import p::W;
endmodule`)
	if _, ok := tree.Members[0].(*PackageDeclSyntax); !ok {
		t.Fatalf("package missing")
	}
	items := tree.Members[1].(*ModuleDeclSyntax).Items
	imp := items[0].(*ImportDeclSyntax)
	if !imp.Items[0].Wildcard {
		t.Fatalf("wildcard import flag missing")
	}
	if tree.Members[1].(*ModuleDeclSyntax).Items[1].(*ImportDeclSyntax).Items[0].Name != "W" {
		t.Fatalf("explicit import name missing")
	}
}

func TestParseCast(t *testing.T) {
	tree := parseClean(t, "module m; parameter p = int'(4.2), q = signed'(x), r = mytype'(y); endmodule")
	decls := tree.Members[0].(*ModuleDeclSyntax).Items[0].(*ParamDeclSyntax).Decls
	if _, ok := decls[0].Init.(*CastExprSyntax); !ok {
		t.Fatalf("int' cast: %+v", decls[0].Init)
	}
	sc, ok := decls[1].Init.(*SignCastExprSyntax)
	if !ok || !sc.Signed {
		t.Fatalf("signed' cast: %+v", decls[1].Init)
	}
	named, ok := decls[2].Init.(*CastExprSyntax)
	if !ok {
		t.Fatalf("named cast: %+v", decls[2].Init)
	}
	if nt, ok := named.Target.(*NamedTypeSyntax); !ok || nt.Name != "mytype" {
		t.Fatalf("named cast target: %+v", named.Target)
	}
}

func TestParseNonBlockingStatement(t *testing.T) {
	tree := parseClean(t, `
module m;
  always_ff @(posedge clk) begin
    q <= d;
  end
endmodule`)
	proc := tree.Members[0].(*ModuleDeclSyntax).Items[0].(*ProceduralBlockSyntax)
	timed := proc.Body.(*TimedStmtSyntax)
	block := timed.Body.(*BlockStmtSyntax)
	assign := block.Items[0].(*ExprStmtSyntax).Expr.(*AssignExprSyntax)
	if !assign.NonBlocking {
		t.Fatalf("q <= d must parse as a non-blocking assignment")
	}
}

func TestParseErrorRecovery(t *testing.T) {
	tree, bag := parseSource(t, `
module m;
  parameter p = ;
  wire w;
endmodule`)
	if !bag.HasErrors() {
		t.Fatalf("expected parse errors")
	}
	mod := tree.Members[0].(*ModuleDeclSyntax)
	found := false
	for _, item := range mod.Items {
		if _, ok := item.(*NetDeclSyntax); ok {
			found = true
		}
	}
	if !found {
		t.Fatalf("parser must recover and see the wire declaration")
	}
}
