package diag

import (
	"svelab/internal/source"
)

// Note attaches secondary information to a diagnostic.
type Note struct {
	Code Code
	Span source.Span
	Msg  string
}

// Diagnostic is a single reported condition. Message is the fully formatted
// text; Args keeps the typed arguments (strings, type names, integers,
// constant values rendered by the reporter) for programmatic inspection.
type Diagnostic struct {
	Severity  Severity
	Code      Code
	Message   string
	Primary   source.Span
	Highlights []source.Span
	Args      []any
	Notes     []Note
}

// New builds a diagnostic with the severity and message taken from the code
// table.
func New(code Code, primary source.Span, args ...any) Diagnostic {
	return Diagnostic{
		Severity: code.DefaultSeverity(),
		Code:     code,
		Message:  code.Format(args...),
		Primary:  primary,
		Args:     args,
	}
}

// WithNote appends a note rendered from the note code's message table entry.
func (d Diagnostic) WithNote(code Code, sp source.Span, args ...any) Diagnostic {
	d.Notes = append(d.Notes, Note{Code: code, Span: sp, Msg: code.Format(args...)})
	return d
}

// WithHighlight adds a secondary highlighted range.
func (d Diagnostic) WithHighlight(sp source.Span) Diagnostic {
	d.Highlights = append(d.Highlights, sp)
	return d
}
