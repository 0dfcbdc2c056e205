package diag

import (
	"testing"

	"svelab/internal/source"
)

func TestCodeTableCoversSeverity(t *testing.T) {
	if EnumValueOverflow.DefaultSeverity() != SevError {
		t.Fatalf("EnumValueOverflow must be an error")
	}
	if UnconnectedPort.DefaultSeverity() != SevWarning {
		t.Fatalf("UnconnectedPort must be a warning")
	}
	if NoteArrayIndexInvalid.DefaultSeverity() != SevNote {
		t.Fatalf("NoteArrayIndexInvalid must be a note")
	}
}

func TestDiagnosticFormatting(t *testing.T) {
	d := New(UndeclaredIdentifier, source.Span{File: 1, Start: 4, End: 7}, "foo")
	if d.Message != `use of undeclared identifier "foo"` {
		t.Fatalf("got message %q", d.Message)
	}
	if d.Severity != SevError {
		t.Fatalf("got severity %v", d.Severity)
	}
	d = d.WithNote(NoteDeclaredHere, source.Span{File: 1, Start: 10, End: 13}, "foo")
	if len(d.Notes) != 1 || d.Notes[0].Code != NoteDeclaredHere {
		t.Fatalf("note not attached: %+v", d.Notes)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	bag := NewBag(0)
	spanA := source.Span{File: 1, Start: 20, End: 22}
	spanB := source.Span{File: 1, Start: 5, End: 8}
	bag.Add(New(UndeclaredIdentifier, spanA, "a"))
	bag.Add(New(UndeclaredIdentifier, spanB, "b"))
	bag.Add(New(UndeclaredIdentifier, spanA, "a"))
	bag.Sort()
	bag.Dedup()
	if bag.Len() != 2 {
		t.Fatalf("expected 2 after dedup, got %d", bag.Len())
	}
	if bag.Items()[0].Primary.Start != 5 {
		t.Fatalf("expected sorted order, got %+v", bag.Items()[0].Primary)
	}
}

func TestBagLimit(t *testing.T) {
	bag := NewBag(2)
	sp := source.Span{File: 1}
	if !bag.Add(New(UndeclaredIdentifier, sp, "a")) || !bag.Add(New(UndeclaredIdentifier, sp, "b")) {
		t.Fatalf("first two adds must succeed")
	}
	if bag.Add(New(UndeclaredIdentifier, sp, "c")) {
		t.Fatalf("third add must be dropped")
	}
}

func TestGroupControl(t *testing.T) {
	groups := NewGroupControl()
	if !groups.Enabled(UnconnectedPort) {
		t.Fatalf("group enabled by default")
	}
	groups.Disable("unconnected-port")
	if groups.Enabled(UnconnectedPort) {
		t.Fatalf("group must be disabled")
	}
	if !groups.Enabled(UndeclaredIdentifier) {
		t.Fatalf("errors are never filtered")
	}
	groups.Enable("unconnected-port")
	if !groups.Enabled(UnconnectedPort) {
		t.Fatalf("group must be re-enabled")
	}

	reporter := NewBagReporter(NewBag(0))
	reporter.Groups = groups
	groups.Disable("unconnected-port")
	reporter.Report(New(UnconnectedPort, source.Span{}, "p"))
	if reporter.Bag.Len() != 0 {
		t.Fatalf("filtered warning must not land in the bag")
	}
}
