package diagfmt

import (
	"strings"
	"testing"

	"svelab/internal/diag"
	"svelab/internal/source"
)

func TestPrettyPlain(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("top.sv", []byte("module top;\n  wire bad bad;\nendmodule\n"))

	bag := diag.NewBag(0)
	bag.Add(diag.New(diag.UndeclaredIdentifier, source.Span{File: id, Start: 19, End: 22}, "bad"))

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{Context: true})
	out := sb.String()

	if !strings.Contains(out, "top.sv:2:8: error:") {
		t.Fatalf("location missing: %q", out)
	}
	if !strings.Contains(out, "[UndeclaredIdentifier]") {
		t.Fatalf("code missing: %q", out)
	}
	if !strings.Contains(out, "^~~") {
		t.Fatalf("caret underline missing: %q", out)
	}
}

func TestPrettyNotes(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.sv", []byte("parameter x = y;\n"))

	bag := diag.NewBag(0)
	d := diag.New(diag.UsedBeforeDeclared, source.Span{File: id, Start: 14, End: 15}, "y").
		WithNote(diag.NoteDeclaredHere, source.Span{File: id, Start: 10, End: 11}, "y")
	bag.Add(d)

	var sb strings.Builder
	Pretty(&sb, bag, fs, PrettyOpts{})
	out := sb.String()
	if !strings.Contains(out, "note:") {
		t.Fatalf("note missing: %q", out)
	}
}
