package source

import (
	"bytes"
	"testing"
)

func TestFileSetPosition(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.sv", []byte("module m;\n  wire w;\nendmodule\n"))

	cases := []struct {
		offset uint32
		line   uint32
		col    uint32
	}{
		{0, 1, 1},
		{7, 1, 8},
		{10, 2, 1},
		{12, 2, 3},
		{20, 3, 1},
	}
	for _, c := range cases {
		pos := fs.Position(id, c.offset)
		if pos.Line != c.line || pos.Col != c.col {
			t.Fatalf("offset %d: got %d:%d, want %d:%d", c.offset, pos.Line, pos.Col, c.line, c.col)
		}
	}
}

func TestFileSetLineText(t *testing.T) {
	fs := NewFileSet()
	id := fs.AddVirtual("test.sv", []byte("first\nsecond\nthird"))
	if got := fs.LineText(id, 2); !bytes.Equal(got, []byte("second")) {
		t.Fatalf("line 2: got %q", got)
	}
	if got := fs.LineText(id, 3); !bytes.Equal(got, []byte("third")) {
		t.Fatalf("line 3: got %q", got)
	}
}

func TestNormalizeCRLF(t *testing.T) {
	out, changed := normalizeCRLF([]byte("a\r\nb\rc\r\n"))
	if !changed {
		t.Fatalf("expected change")
	}
	if string(out) != "a\nb\rc\n" {
		t.Fatalf("got %q", out)
	}
}

func TestSpanCover(t *testing.T) {
	a := Span{File: 1, Start: 10, End: 20}
	b := Span{File: 1, Start: 5, End: 15}
	c := a.Cover(b)
	if c.Start != 5 || c.End != 20 {
		t.Fatalf("got %v", c)
	}
	other := Span{File: 2, Start: 0, End: 100}
	if got := a.Cover(other); got != a {
		t.Fatalf("cross-file cover must be a no-op, got %v", got)
	}
}

func TestInternerDedup(t *testing.T) {
	in := NewInterner()
	a := in.Intern("clk")
	b := in.Intern("clk")
	if a != b {
		t.Fatalf("expected same ID, got %d and %d", a, b)
	}
	if s := in.MustLookup(a); s != "clk" {
		t.Fatalf("lookup returned %q", s)
	}
	if in.Intern("rst") == a {
		t.Fatalf("distinct strings must get distinct IDs")
	}
}
