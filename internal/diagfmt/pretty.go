package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"svelab/internal/diag"
	"svelab/internal/source"
)

// PrettyOpts control diagnostic rendering.
type PrettyOpts struct {
	Color   bool
	Context bool // print the source line with a caret underline
}

// Pretty renders diagnostics in a human-readable form. Callers are expected
// to Sort() the bag first. Each diagnostic prints as
//
//	<path>:<line>:<col>: <severity>: <message> [Code]
//
// followed by the source line with a ^~~~ underline, then its notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	for _, d := range bag.Items() {
		writeRecord(w, fs, d.Severity, d.Code, d.Primary, d.Message, opts)
		for _, note := range d.Notes {
			writeRecord(w, fs, diag.SevNote, note.Code, note.Span, note.Msg, opts)
		}
	}
}

func writeRecord(w io.Writer, fs *source.FileSet, sev diag.Severity, code diag.Code,
	span source.Span, msg string, opts PrettyOpts) {

	loc := "<unknown>"
	if f := fs.Get(span.File); f != nil {
		pos := fs.Position(span.File, span.Start)
		loc = fmt.Sprintf("%s:%d:%d", f.Path, pos.Line, pos.Col)
	}

	sevText := sev.String()
	if opts.Color {
		switch sev {
		case diag.SevError:
			sevText = color.New(color.FgRed, color.Bold).Sprint(sevText)
		case diag.SevWarning:
			sevText = color.New(color.FgYellow, color.Bold).Sprint(sevText)
		default:
			sevText = color.New(color.FgCyan).Sprint(sevText)
		}
	}

	fmt.Fprintf(w, "%s: %s: %s [%s]\n", loc, sevText, msg, code.String())
	if opts.Context {
		writeContext(w, fs, span, opts)
	}
}

// writeContext prints the offending line and a caret underline sized by
// display width, so wide runes underline correctly.
func writeContext(w io.Writer, fs *source.FileSet, span source.Span, opts PrettyOpts) {
	f := fs.Get(span.File)
	if f == nil {
		return
	}
	pos := fs.Position(span.File, span.Start)
	line := fs.LineText(span.File, pos.Line)
	if line == nil {
		return
	}
	text := strings.ReplaceAll(string(line), "\t", "    ")
	fmt.Fprintf(w, "  %s\n", text)

	prefix := string(line[:min(int(pos.Col)-1, len(line))])
	prefix = strings.ReplaceAll(prefix, "\t", "    ")
	pad := strings.Repeat(" ", runewidth.StringWidth(prefix))

	width := int(span.Len())
	if width < 1 {
		width = 1
	}
	if rest := len(line) - int(pos.Col) + 1; width > rest && rest > 0 {
		width = rest
	}
	marker := "^"
	if width > 1 {
		marker += strings.Repeat("~", width-1)
	}
	if opts.Color {
		marker = color.New(color.FgGreen, color.Bold).Sprint(marker)
	}
	fmt.Fprintf(w, "  %s%s\n", pad, marker)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
