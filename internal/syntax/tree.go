package syntax

import (
	"svelab/internal/diag"
	"svelab/internal/source"
)

// Tree is the parse result for one source file.
type Tree struct {
	File    *source.File
	Members []MemberSyntax
}

// Parse lexes and parses one file into a syntax tree, reporting problems to
// the reporter.
func Parse(file *source.File, interner *source.Interner, reporter diag.Reporter) *Tree {
	lx := NewLexer(file, interner, reporter)
	p := newParser(lx, reporter)
	members := p.parseSourceText()
	return &Tree{File: file, Members: members}
}

// ParseText is a convenience used heavily by tests: it registers the text as
// a virtual file in the set and parses it.
func ParseText(fs *source.FileSet, name, text string, reporter diag.Reporter) *Tree {
	id := fs.AddVirtual(name, []byte(text))
	return Parse(fs.Get(id), nil, reporter)
}
