// Package lexer implements THE CORE's lexical scanner (spec.md §4.1): a
// hand-written, buffered, non-restartable byte-to-token scanner.
//
// Style is grounded on the teacher's lang/ylex/lexer.go: a two-character
// lookahead over a bufio.Reader with peek/peekN/advance helpers, a linear
// keyword table, and inline scanning of numbers/strings/escapes.
package lexer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/luchiel/smallc/internal/diag"
	"github.com/luchiel/smallc/internal/token"
)

// Lexer scans a byte stream into a non-restartable token sequence terminated
// by EOS. It holds cur/next characters and tracks line/column for
// diagnostics, per spec.md §4.1.
type Lexer struct {
	r    *bufio.Reader
	sink diag.Sink
	unit string

	line, col int
	halted    bool
}

// New creates a Lexer reading from r. unit names the source for diagnostics
// (spec.md §7: "<unit>:<line>:<column>: error: ").
func New(r io.Reader, unit string, sink diag.Sink) *Lexer {
	return &Lexer{
		r:    bufio.NewReaderSize(r, 4096),
		sink: sink,
		unit: unit,
		line: 1,
		col:  1,
	}
}

func (l *Lexer) peek() byte {
	b, err := l.r.Peek(1)
	if err != nil || len(b) == 0 {
		return 0
	}
	return b[0]
}

func (l *Lexer) peekN(n int) byte {
	b, err := l.r.Peek(n + 1)
	if err != nil || len(b) <= n {
		return 0
	}
	return b[n]
}

func (l *Lexer) advance() byte {
	ch, err := l.r.ReadByte()
	if err != nil {
		return 0
	}
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func (l *Lexer) errorf(pos token.Pos, format string, args ...interface{}) token.Token {
	l.sink.Errorf(l.unit, pos.Line, pos.Col, format, args...)
	l.halted = true
	return token.Token{Kind: token.ERROR, Pos: pos, Text: fmt.Sprintf(format, args...)}
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isOctalDigit(ch byte) bool { return ch >= '0' && ch <= '7' }

func (l *Lexer) skipWhitespaceAndComments() token.Token {
	for {
		ch := l.peek()
		switch {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\v' || ch == '\f':
			l.advance()
		case ch == '/' && l.peekN(1) == '/':
			return l.scanLineComment()
		case ch == '/' && l.peekN(1) == '*':
			return l.scanBlockComment()
		default:
			return token.Token{}
		}
	}
}

func (l *Lexer) scanLineComment() token.Token {
	pos := token.Pos{Line: l.line, Col: l.col}
	var b strings.Builder
	l.advance()
	l.advance()
	for l.peek() != '\n' && l.peek() != 0 {
		b.WriteByte(l.advance())
	}
	return token.Token{Kind: token.COMMENT, Pos: pos, Text: "//" + b.String(), Value: b.String()}
}

func (l *Lexer) scanBlockComment() token.Token {
	pos := token.Pos{Line: l.line, Col: l.col}
	var b strings.Builder
	l.advance()
	l.advance()
	for {
		if l.peek() == 0 {
			return l.errorf(pos, "unterminated block comment")
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advance()
			l.advance()
			break
		}
		b.WriteByte(l.advance())
	}
	return token.Token{Kind: token.COMMENT, Pos: pos, Text: "/*" + b.String() + "*/", Value: b.String()}
}

// Next produces the next token. Once an ERROR token has been produced the
// lexer is halted: every subsequent call returns the same terminal ERROR
// (spec.md §4.1: "Errors... halt the sequence").
func (l *Lexer) Next() token.Token {
	if l.halted {
		return token.Token{Kind: token.ERROR, Pos: token.Pos{Line: l.line, Col: l.col}, Text: "halted after error"}
	}

	if c := l.skipWhitespaceAndComments(); c.Kind == token.COMMENT || l.halted {
		return c
	}

	pos := token.Pos{Line: l.line, Col: l.col}
	ch := l.peek()

	switch {
	case ch == 0:
		return token.Token{Kind: token.EOS, Pos: pos}
	case isDigit(ch):
		return l.scanNumber(pos)
	case ch == '.' && isDigit(l.peekN(1)):
		return l.scanNumber(pos)
	case isLetter(ch):
		return l.scanIdentifier(pos)
	case ch == '"':
		return l.scanString(pos)
	case ch == '\'':
		return l.scanChar(pos)
	default:
		return l.scanPunct(pos)
	}
}

func (l *Lexer) scanIdentifier(pos token.Pos) token.Token {
	var b strings.Builder
	for isLetter(l.peek()) || isDigit(l.peek()) {
		b.WriteByte(l.advance())
	}
	name := b.String()
	if kind, ok := token.Lookup(name); ok {
		return token.Token{Kind: kind, Pos: pos, Text: name, Value: name}
	}
	return token.Token{Kind: token.IDENT, Pos: pos, Text: name, Value: name}
}

// scanNumber implements spec.md §4.1's integer/float state machine:
// decimal/hex/octal integers, transitioning to float scanning on '.', 'e',
// or 'E'. Any trailing alphabetic suffix is diagnosed as "unknown suffix".
func (l *Lexer) scanNumber(pos token.Pos) token.Token {
	var raw strings.Builder
	isFloat := false

	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		raw.WriteByte(l.advance())
		raw.WriteByte(l.advance())
		var val uint64
		digits := 0
		for isHexDigit(l.peek()) {
			ch := l.advance()
			raw.WriteByte(ch)
			digits++
			val = val*16 + uint64(hexDigitValue(ch))
		}
		if digits == 0 {
			return l.errorf(pos, "bad integer constant")
		}
		return l.finishInt(pos, raw.String(), int64(uint32(val)))
	}

	octal := l.peek() == '0'
	for isDigit(l.peek()) {
		raw.WriteByte(l.advance())
	}

	if l.peek() == '.' {
		isFloat = true
		raw.WriteByte(l.advance())
		for isDigit(l.peek()) {
			raw.WriteByte(l.advance())
		}
	}
	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		raw.WriteByte(l.advance())
		if l.peek() == '+' || l.peek() == '-' {
			raw.WriteByte(l.advance())
		}
		if !isDigit(l.peek()) {
			return l.errorf(pos, "bad floating constant: expected digit in exponent")
		}
		for isDigit(l.peek()) {
			raw.WriteByte(l.advance())
		}
	}

	if isLetter(l.peek()) {
		var suf strings.Builder
		for isLetter(l.peek()) || isDigit(l.peek()) {
			suf.WriteByte(l.advance())
		}
		return l.errorf(pos, "unknown suffix %q on numeric literal", suf.String())
	}

	if isFloat {
		return l.finishFloat(pos, raw.String())
	}

	text := raw.String()
	if octal && len(text) > 1 {
		var val uint64
		for i := 1; i < len(text); i++ {
			if !isOctalDigit(text[i]) {
				return l.errorf(pos, "invalid digit %q in octal constant", text[i])
			}
			val = val*8 + uint64(text[i]-'0')
		}
		return l.finishInt(pos, text, int64(uint32(val)))
	}

	var val uint64
	for i := 0; i < len(text); i++ {
		val = val*10 + uint64(text[i]-'0')
	}
	return l.finishInt(pos, text, int64(uint32(val)))
}

func (l *Lexer) finishInt(pos token.Pos, text string, val int64) token.Token {
	return token.Token{Kind: token.INT_LIT, Pos: pos, Text: text, IntVal: val}
}

func (l *Lexer) finishFloat(pos token.Pos, text string) token.Token {
	var f float64
	_, err := fmt.Sscanf(text, "%g", &f)
	if err != nil {
		return l.errorf(pos, "bad floating constant %q", text)
	}
	return token.Token{Kind: token.FLOAT_LIT, Pos: pos, Text: text, FltVal: f}
}

func hexDigitValue(ch byte) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'f':
		return int(ch-'a') + 10
	default:
		return int(ch-'A') + 10
	}
}

// scanString handles adjacent-literal concatenation ("ab" "cd" -> "abcd")
// per spec.md §8's testable property.
func (l *Lexer) scanString(pos token.Pos) token.Token {
	var value strings.Builder
	var raw strings.Builder
	for {
		l.advance() // opening quote
		raw.WriteByte('"')
		for l.peek() != '"' {
			if l.peek() == 0 || l.peek() == '\n' {
				return l.errorf(pos, "unterminated string literal")
			}
			if l.peek() == '\\' {
				b, ok := l.scanEscape()
				if !ok {
					return token.Token{Kind: token.ERROR, Pos: pos}
				}
				value.WriteByte(b)
				continue
			}
			ch := l.advance()
			raw.WriteByte(ch)
			value.WriteByte(ch)
		}
		l.advance() // closing quote
		raw.WriteByte('"')

		save := l.line
		skipped := l.skipWhitespaceAndComments()
		_ = skipped
		if l.peek() != '"' {
			_ = save
			break
		}
	}
	return token.Token{Kind: token.STRING_LIT, Pos: pos, Text: raw.String(), Value: value.String()}
}

func (l *Lexer) scanChar(pos token.Pos) token.Token {
	l.advance() // opening quote
	if l.peek() == '\'' {
		return l.errorf(pos, "empty character constant")
	}
	var val byte
	if l.peek() == '\\' {
		b, ok := l.scanEscape()
		if !ok {
			return token.Token{Kind: token.ERROR, Pos: pos}
		}
		val = b
	} else {
		val = l.advance()
	}
	if l.peek() != '\'' {
		return l.errorf(pos, "multi-character character constant")
	}
	l.advance()
	return token.Token{Kind: token.INT_LIT, Pos: pos, Text: string(val), IntVal: int64(val)}
}

// scanEscape handles the full escape grammar from spec.md §4.1. It is
// called with the cursor on the backslash.
func (l *Lexer) scanEscape() (byte, bool) {
	pos := token.Pos{Line: l.line, Col: l.col}
	l.advance() // backslash
	ch := l.advance()
	switch ch {
	case '\'':
		return '\'', true
	case '"':
		return '"', true
	case '\\':
		return '\\', true
	case '?':
		return '?', true
	case 'a':
		return '\a', true
	case 'b':
		return '\b', true
	case 'f':
		return '\f', true
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'v':
		return '\v', true
	case 'x':
		if !isHexDigit(l.peek()) {
			l.errorf(pos, "\\x used with no following hex digits")
			return 0, false
		}
		v := 0
		for i := 0; i < 2 && isHexDigit(l.peek()); i++ {
			v = v*16 + hexDigitValue(l.advance())
		}
		return byte(v), true
	default:
		if isOctalDigit(ch) {
			v := int(ch - '0')
			for i := 0; i < 2 && isOctalDigit(l.peek()); i++ {
				v = v*8 + int(l.advance()-'0')
			}
			if v > 255 {
				l.errorf(pos, "octal escape sequence out of range")
				return 0, false
			}
			return byte(v), true
		}
		l.errorf(pos, "unknown escape sequence '\\%c'", ch)
		return 0, false
	}
}

// punctTable3, punctTable2 encode the longest-match punctuator recognizer
// described in spec.md §4.1: single-char consumes one byte; a handful of
// operators look two or three characters ahead for the longest match.
var punctTable3 = map[string]token.Kind{
	"<<=": token.SHL_ASSIGN,
	">>=": token.SHR_ASSIGN,
}

var punctTable2 = map[string]token.Kind{
	"==": token.EQ, "!=": token.NE, "<=": token.LE, ">=": token.GE,
	"&&": token.AND_AND, "||": token.OR_OR, "++": token.INC, "--": token.DEC,
	"<<": token.SHL, ">>": token.SHR, "->": token.ARROW,
	"+=": token.PLUS_ASSIGN, "-=": token.MINUS_ASSIGN, "*=": token.STAR_ASSIGN,
	"/=": token.SLASH_ASSIGN, "%=": token.PERCENT_ASSIGN, "&=": token.AMP_ASSIGN,
	"|=": token.PIPE_ASSIGN, "^=": token.CARET_ASSIGN,
	"..": 0, // not a real token; ".." never matches alone, only "..." does
}

var punctTable1 = map[byte]token.Kind{
	'(': token.LPAREN, ')': token.RPAREN, '{': token.LBRACE, '}': token.RBRACE,
	'[': token.LBRACKET, ']': token.RBRACKET, ';': token.SEMI, ',': token.COMMA,
	':': token.COLON, '.': token.DOT,
	'=': token.ASSIGN, '+': token.PLUS, '-': token.MINUS, '*': token.STAR,
	'/': token.SLASH, '%': token.PERCENT, '&': token.AMP, '|': token.PIPE,
	'^': token.CARET, '~': token.TILDE, '!': token.BANG, '<': token.LT,
	'>': token.GT, '?': token.QUESTION,
}

// digraphs per spec.md §4.1.
var digraphs = map[string]byte{
	"<:": '[', ":>": ']', "<%": '{', "%>": '}',
}

func (l *Lexer) scanPunct(pos token.Pos) token.Token {
	c0 := l.peek()
	c1 := l.peekN(1)
	c2 := l.peekN(2)

	if c0 == '.' && c1 == '.' && c2 == '.' {
		l.advance()
		l.advance()
		l.advance()
		return token.Token{Kind: token.ELLIPSIS, Pos: pos, Text: "..."}
	}

	three := string([]byte{c0, c1, c2})
	if k, ok := punctTable3[three]; ok {
		l.advance()
		l.advance()
		l.advance()
		return token.Token{Kind: k, Pos: pos, Text: three}
	}

	two := string([]byte{c0, c1})
	if dg, ok := digraphs[two]; ok {
		l.advance()
		l.advance()
		return token.Token{Kind: punctTable1[dg], Pos: pos, Text: two}
	}
	if k, ok := punctTable2[two]; ok && k != 0 {
		l.advance()
		l.advance()
		return token.Token{Kind: k, Pos: pos, Text: two}
	}

	if k, ok := punctTable1[c0]; ok {
		l.advance()
		return token.Token{Kind: k, Pos: pos, Text: string(c0)}
	}

	l.advance()
	return l.errorf(pos, "unexpected character %q", c0)
}
