package syntax

import (
	"testing"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/source"
)

func lexAll(t *testing.T, text string) []Token {
	t.Helper()
	fs := source.NewFileSet()
	id := fs.AddVirtual("test.sv", []byte(text))
	lx := NewLexer(fs.Get(id), nil, diag.NewBagReporter(diag.NewBag(0)))
	var toks []Token
	for {
		tok := lx.Next()
		if tok.Kind == EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

func TestLexKeywordsAndIdents(t *testing.T) {
	toks := lexAll(t, "module foo_1; endmodule")
	kinds := []TokenKind{KwModule, Identifier, Semicolon, KwEndModule}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens", len(toks))
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v", i, toks[i].Kind)
		}
	}
	if toks[1].Text != "foo_1" {
		t.Fatalf("ident text %q", toks[1].Text)
	}
}

func TestLexSizedLiteral(t *testing.T) {
	toks := lexAll(t, "5'b01011 4'hC 8'sd255 16 'd42")
	if len(toks) != 4 {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
	v := toks[0].IntVal
	if v.Width() != 5 || v.IsSigned() {
		t.Fatalf("5'b01011 shape wrong: %v", v)
	}
	if got, _ := v.AsUint64(); got != 0b01011 {
		t.Fatalf("5'b01011 = %b", got)
	}
	if got, _ := toks[1].IntVal.AsUint64(); got != 0xC {
		t.Fatalf("4'hC = %x", got)
	}
	if !toks[2].IntVal.IsSigned() {
		t.Fatalf("8'sd255 must be signed")
	}
	// whitespace between size and base is legal
	if got, _ := toks[3].IntVal.AsUint64(); got != 42 || toks[3].IntVal.Width() != 16 {
		t.Fatalf("16 'd42 parsed as %v", toks[3].IntVal)
	}
}

func TestLexFourStateLiteral(t *testing.T) {
	toks := lexAll(t, "4'b1x0z")
	v := toks[0].IntVal
	if v.Bit(2) != numeric.LX || v.Bit(0) != numeric.LZ {
		t.Fatalf("four-state bits wrong: %v", v)
	}
}

func TestLexUnbasedUnsized(t *testing.T) {
	toks := lexAll(t, "'0 '1 'x 'z")
	if len(toks) != 4 {
		t.Fatalf("got %d tokens", len(toks))
	}
	for i, want := range []numeric.Logic{numeric.L0, numeric.L1, numeric.LX, numeric.LZ} {
		if toks[i].Kind != UnbasedUnsized {
			t.Fatalf("token %d kind %v", i, toks[i].Kind)
		}
		if toks[i].IntVal.Bit(0) != want {
			t.Fatalf("token %d bit %v", i, toks[i].IntVal.Bit(0))
		}
	}
}

func TestLexRealAndTime(t *testing.T) {
	toks := lexAll(t, "1.5 2e3 10ns 3.2us")
	if toks[0].Kind != RealLiteral || toks[0].RealVal != 1.5 {
		t.Fatalf("1.5 lexed as %+v", toks[0])
	}
	if toks[1].Kind != RealLiteral || toks[1].RealVal != 2000 {
		t.Fatalf("2e3 lexed as %+v", toks[1])
	}
	if toks[2].Kind != TimeLiteral || toks[2].TimeUnit != "ns" || toks[2].RealVal != 10 {
		t.Fatalf("10ns lexed as %+v", toks[2])
	}
	if toks[3].Kind != TimeLiteral || toks[3].TimeUnit != "us" {
		t.Fatalf("3.2us lexed as %+v", toks[3])
	}
}

func TestLexOperatorsMaximalMunch(t *testing.T) {
	toks := lexAll(t, "<<< << < <= === == = ==? '{ :: +: ~^")
	kinds := []TokenKind{AShl, Shl, Lt, LtEq, EqEqEq, EqEq, Eq, EqEqQuestion,
		ApostropheBrace, ColonColon, PlusColon, TildeCaret}
	if len(toks) != len(kinds) {
		t.Fatalf("got %d tokens", len(toks))
	}
	for i, k := range kinds {
		if toks[i].Kind != k {
			t.Fatalf("token %d: got %v want %v", i, toks[i].Kind, k)
		}
	}
}

func TestLexCommentsAndStrings(t *testing.T) {
	toks := lexAll(t, "a // line\n/* block\n */ \"he\\\"llo\" b")
	if len(toks) != 3 {
		t.Fatalf("got %d tokens", len(toks))
	}
	if toks[1].Kind != StringLiteral || toks[1].Text != `he"llo` {
		t.Fatalf("string lexed as %+v", toks[1])
	}
}

func TestLexSystemName(t *testing.T) {
	toks := lexAll(t, "$clog2(16)")
	if toks[0].Kind != SystemName || toks[0].Text != "$clog2" {
		t.Fatalf("system name lexed as %+v", toks[0])
	}
}

func TestLexUnterminatedString(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("t.sv", []byte("\"abc\n"))
	bag := diag.NewBag(0)
	lx := NewLexer(fs.Get(id), nil, diag.NewBagReporter(bag))
	lx.Next()
	if bag.Len() != 1 || bag.Items()[0].Code != diag.LexUnterminatedString {
		t.Fatalf("expected LexUnterminatedString, got %+v", bag.Items())
	}
}
