package syntax

import (
	"strconv"
	"strings"

	"svelab/internal/diag"
	"svelab/internal/numeric"
	"svelab/internal/source"
)

// Lexer produces significant tokens from a source file, skipping whitespace
// and comments.
type Lexer struct {
	file     *source.File
	pos      uint32
	reporter diag.Reporter
	interner *source.Interner
	look     *Token
}

// NewLexer creates a lexer over the file. The interner deduplicates
// identifier text; pass nil to skip interning.
func NewLexer(file *source.File, interner *source.Interner, reporter diag.Reporter) *Lexer {
	if reporter == nil {
		reporter = diag.NopReporter{}
	}
	return &Lexer{file: file, interner: interner, reporter: reporter}
}

// Peek returns the next token without consuming it.
func (lx *Lexer) Peek() Token {
	if lx.look == nil {
		tok := lx.scan()
		lx.look = &tok
	}
	return *lx.look
}

// Next consumes and returns the next token.
func (lx *Lexer) Next() Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}
	return lx.scan()
}

func (lx *Lexer) content() []byte { return lx.file.Content }

func (lx *Lexer) eof() bool { return int(lx.pos) >= len(lx.content()) }

func (lx *Lexer) peekByte() byte {
	if lx.eof() {
		return 0
	}
	return lx.content()[lx.pos]
}

func (lx *Lexer) peekAt(offset uint32) byte {
	idx := lx.pos + offset
	if int(idx) >= len(lx.content()) {
		return 0
	}
	return lx.content()[idx]
}

func (lx *Lexer) span(start uint32) source.Span {
	return source.Span{File: lx.file.ID, Start: start, End: lx.pos}
}

func (lx *Lexer) text(start uint32) string {
	return string(lx.content()[start:lx.pos])
}

func (lx *Lexer) report(code diag.Code, start uint32, args ...any) {
	lx.reporter.Report(diag.New(code, lx.span(start), args...))
}

func (lx *Lexer) skipTrivia() {
	for !lx.eof() {
		ch := lx.peekByte()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			lx.pos++
		case ch == '/' && lx.peekAt(1) == '/':
			for !lx.eof() && lx.peekByte() != '\n' {
				lx.pos++
			}
		case ch == '/' && lx.peekAt(1) == '*':
			start := lx.pos
			lx.pos += 2
			closed := false
			for !lx.eof() {
				if lx.peekByte() == '*' && lx.peekAt(1) == '/' {
					lx.pos += 2
					closed = true
					break
				}
				lx.pos++
			}
			if !closed {
				lx.report(diag.LexUnterminatedBlockComment, start)
			}
		default:
			return
		}
	}
}

func (lx *Lexer) scan() Token {
	lx.skipTrivia()
	start := lx.pos
	if lx.eof() {
		return Token{Kind: EOF, Span: lx.span(start)}
	}

	ch := lx.peekByte()
	switch {
	case isIdentStart(ch):
		return lx.scanIdentOrKeyword(start)
	case ch == '$' && isIdentStart(lx.peekAt(1)):
		lx.pos++
		for isIdentContinue(lx.peekByte()) {
			lx.pos++
		}
		return Token{Kind: SystemName, Text: lx.text(start), Span: lx.span(start)}
	case isDigit(ch):
		return lx.scanNumber(start)
	case ch == '"':
		return lx.scanString(start)
	case ch == '\'':
		return lx.scanApostrophe(start)
	default:
		return lx.scanOperator(start)
	}
}

func (lx *Lexer) scanIdentOrKeyword(start uint32) Token {
	for isIdentContinue(lx.peekByte()) {
		lx.pos++
	}
	text := lx.text(start)
	if kind, ok := keywords[text]; ok {
		return Token{Kind: kind, Text: text, Span: lx.span(start)}
	}
	if lx.interner != nil {
		lx.interner.Intern(text)
	}
	return Token{Kind: Identifier, Text: text, Span: lx.span(start)}
}

// scanNumber handles decimal, sized/based vectors, reals, and time literals.
func (lx *Lexer) scanNumber(start uint32) Token {
	for isDigit(lx.peekByte()) || lx.peekByte() == '_' {
		lx.pos++
	}
	digits := lx.text(start)

	// real literal: 1.5, 2e10, 1.5e-3
	if (lx.peekByte() == '.' && isDigit(lx.peekAt(1))) || lx.peekByte() == 'e' || lx.peekByte() == 'E' {
		return lx.scanReal(start)
	}

	// time literal: 10ns
	if unit, n := timeUnitAt(lx.content(), lx.pos); n > 0 {
		lx.pos += n
		v, _ := strconv.ParseFloat(strings.ReplaceAll(digits, "_", ""), 64)
		return Token{Kind: TimeLiteral, Text: lx.text(start), Span: lx.span(start), RealVal: v, TimeUnit: unit}
	}

	// sized based literal: whitespace may separate size and base
	mark := lx.pos
	lx.skipTrivia()
	if lx.peekByte() == '\'' && isBaseIntro(lx.peekAt(1), lx.peekAt(2)) {
		size := parseSize(digits)
		if size == 0 {
			lx.report(diag.NumLiteralSizeZero, start)
			size = 1
		}
		return lx.scanBasedTail(start, size, true)
	}
	lx.pos = mark

	v, err := numeric.ParseUnsizedDecimal(digits)
	if err != nil {
		lx.report(diag.NumMissingBaseDigits, start)
		v = numeric.NewSVInt(32, true, 0)
	}
	return Token{Kind: Number, Text: digits, Span: lx.span(start), IntVal: v}
}

func (lx *Lexer) scanReal(start uint32) Token {
	if lx.peekByte() == '.' {
		lx.pos++
		for isDigit(lx.peekByte()) || lx.peekByte() == '_' {
			lx.pos++
		}
	}
	if lx.peekByte() == 'e' || lx.peekByte() == 'E' {
		lx.pos++
		if lx.peekByte() == '+' || lx.peekByte() == '-' {
			lx.pos++
		}
		if !isDigit(lx.peekByte()) {
			lx.report(diag.NumRealExponent, start)
		}
		for isDigit(lx.peekByte()) || lx.peekByte() == '_' {
			lx.pos++
		}
	}
	text := lx.text(start)
	if unit, n := timeUnitAt(lx.content(), lx.pos); n > 0 {
		lx.pos += n
		v, _ := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
		return Token{Kind: TimeLiteral, Text: lx.text(start), Span: lx.span(start), RealVal: v, TimeUnit: unit}
	}
	v, _ := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64)
	return Token{Kind: RealLiteral, Text: text, Span: lx.span(start), RealVal: v}
}

// scanBasedTail consumes 'sb1010 style tails. The cursor sits on the
// apostrophe.
func (lx *Lexer) scanBasedTail(start uint32, size uint32, sized bool) Token {
	lx.pos++ // '
	signed := false
	if lx.peekByte() == 's' || lx.peekByte() == 'S' {
		signed = true
		lx.pos++
	}
	base := lowerByte(lx.peekByte())
	lx.pos++
	digitStart := lx.pos
	for isBaseDigit(lx.peekByte()) {
		lx.pos++
	}
	digits := lx.text(digitStart)
	if digits == "" {
		lx.report(diag.NumMissingBaseDigits, start)
		return Token{Kind: Number, Text: lx.text(start), Span: lx.span(start),
			IntVal: numeric.NewSVInt(size, signed, 0), Sized: sized}
	}
	v, err := numeric.ParseVector(size, signed, base, digits)
	if err != nil {
		lx.report(diag.NumVectorLiteralDigit, start, digits, baseRadix(base))
		v = numeric.NewSVInt(size, signed, 0)
	}
	return Token{Kind: Number, Text: lx.text(start), Span: lx.span(start), IntVal: v, Sized: sized}
}

func (lx *Lexer) scanString(start uint32) Token {
	lx.pos++ // opening quote
	var sb strings.Builder
	for {
		if lx.eof() || lx.peekByte() == '\n' {
			lx.report(diag.LexUnterminatedString, start)
			break
		}
		ch := lx.peekByte()
		if ch == '"' {
			lx.pos++
			break
		}
		if ch == '\\' {
			lx.pos++
			esc := lx.peekByte()
			lx.pos++
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\':
				sb.WriteByte('\\')
			case '"':
				sb.WriteByte('"')
			case '0':
				sb.WriteByte(0)
			default:
				lx.report(diag.LexEscapeSequence, lx.pos-2)
				sb.WriteByte(esc)
			}
			continue
		}
		sb.WriteByte(ch)
		lx.pos++
	}
	return Token{Kind: StringLiteral, Text: sb.String(), Span: lx.span(start)}
}

func (lx *Lexer) scanApostrophe(start uint32) Token {
	next := lx.peekAt(1)
	switch {
	case next == '{':
		lx.pos += 2
		return Token{Kind: ApostropheBrace, Text: "'{", Span: lx.span(start)}
	case (next == '0' || next == '1' || lowerByte(next) == 'x' || lowerByte(next) == 'z') &&
		!isIdentContinue(lx.peekAt(2)) && !isDigit(lx.peekAt(2)):
		lx.pos += 2
		var l numeric.Logic
		switch lowerByte(next) {
		case '0':
			l = numeric.L0
		case '1':
			l = numeric.L1
		case 'x':
			l = numeric.LX
		default:
			l = numeric.LZ
		}
		return Token{Kind: UnbasedUnsized, Text: lx.text(start), Span: lx.span(start), IntVal: numeric.FromLogic(l)}
	case isBaseIntro(next, lx.peekAt(2)):
		return lx.scanBasedTail(start, 32, false)
	default:
		lx.pos++
		return Token{Kind: Apostrophe, Text: "'", Span: lx.span(start)}
	}
}

var operatorTable = []struct {
	text string
	kind TokenKind
}{
	{"<<<=", AShlEq},
	{">>>=", AShrEq},
	{"===", EqEqEq},
	{"!==", BangEqEq},
	{"==?", EqEqQuestion},
	{"!=?", BangEqQuestion},
	{"<<<", AShl},
	{">>>", AShr},
	{"<<=", ShlEq},
	{">>=", ShrEq},
	{"**", StarStar},
	{"==", EqEq},
	{"!=", BangEq},
	{"<=", LtEq},
	{">=", GtEq},
	{"<<", Shl},
	{">>", Shr},
	{"&&", AmpAmp},
	{"||", PipePipe},
	{"~^", TildeCaret},
	{"^~", TildeCaret},
	{"~&", TildeAmp},
	{"~|", TildePipe},
	{"::", ColonColon},
	{"+:", PlusColon},
	{"-:", MinusColon},
	{"+=", PlusEq},
	{"-=", MinusEq},
	{"*=", StarEq},
	{"/=", SlashEq},
	{"%=", PercentEq},
	{"&=", AmpEq},
	{"|=", PipeEq},
	{"^=", CaretEq},
	{"(", LParen},
	{")", RParen},
	{"[", LBracket},
	{"]", RBracket},
	{"{", LBrace},
	{"}", RBrace},
	{";", Semicolon},
	{",", Comma},
	{".", Dot},
	{":", Colon},
	{"?", Question},
	{"@", At},
	{"#", Hash},
	{"*", Star},
	{"+", Plus},
	{"-", Minus},
	{"/", Slash},
	{"%", Percent},
	{"=", Eq},
	{"<", Lt},
	{">", Gt},
	{"&", Amp},
	{"|", Pipe},
	{"^", Caret},
	{"~", Tilde},
	{"!", Bang},
}

func (lx *Lexer) scanOperator(start uint32) Token {
	rest := lx.content()[lx.pos:]
	for _, op := range operatorTable {
		if len(rest) >= len(op.text) && string(rest[:len(op.text)]) == op.text {
			lx.pos += uint32(len(op.text))
			return Token{Kind: op.kind, Text: op.text, Span: lx.span(start)}
		}
	}
	ch := lx.peekByte()
	lx.pos++
	lx.report(diag.LexUnknownChar, start, string(rune(ch)))
	return Token{Kind: Error, Text: lx.text(start), Span: lx.span(start)}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch) || ch == '$'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isBaseDigit(ch byte) bool {
	c := lowerByte(ch)
	return isDigit(ch) || (c >= 'a' && c <= 'f') || c == 'x' || c == 'z' || c == '?' || c == '_'
}

func lowerByte(ch byte) byte {
	if ch >= 'A' && ch <= 'Z' {
		return ch + ('a' - 'A')
	}
	return ch
}

// isBaseIntro recognizes the start of a base specifier after an apostrophe:
// optional s then one of bodh.
func isBaseIntro(first, second byte) bool {
	f := lowerByte(first)
	if f == 's' {
		f = lowerByte(second)
	}
	return f == 'b' || f == 'o' || f == 'd' || f == 'h'
}

func parseSize(digits string) uint32 {
	v, err := strconv.ParseUint(strings.ReplaceAll(digits, "_", ""), 10, 32)
	if err != nil || v > numeric.MaxWidth {
		return numeric.MaxWidth
	}
	return uint32(v)
}

func baseRadix(base byte) int {
	switch base {
	case 'b':
		return 2
	case 'o':
		return 8
	case 'h':
		return 16
	default:
		return 10
	}
}

func timeUnitAt(content []byte, pos uint32) (string, uint32) {
	rest := content[pos:]
	for _, unit := range []string{"fs", "ps", "ns", "us", "ms", "s"} {
		if len(rest) >= len(unit) && string(rest[:len(unit)]) == unit {
			end := len(unit)
			if end < len(rest) && isIdentContinue(rest[end]) {
				continue
			}
			return unit, uint32(len(unit))
		}
	}
	return "", 0
}
