// Package token defines the lexical token kinds and the Token value that
// flows from the lexer into the parser.
package token

import "fmt"

//go:generate go run golang.org/x/tools/cmd/stringer -type Kind -output kind_string.go

// Kind is a closed set of token categories: keywords, literals, punctuators,
// and the two sentinels EOS and ERROR.
type Kind int

const (
	ERROR Kind = iota
	EOS

	// Literals
	IDENT
	INT_LIT
	FLOAT_LIT
	STRING_LIT
	COMMENT

	// Keywords
	BREAK
	CASE
	CHAR
	CONST
	CONTINUE
	DEFAULT
	DO
	DOUBLE
	ELSE
	ENUM
	EXTERN
	FLOAT
	FOR
	GOTO
	IF
	INT
	RETURN
	SIZEOF
	STATIC
	STRUCT
	SWITCH
	TYPEDEF
	UNION
	VOID
	WHILE

	// Punctuators / operators
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	SEMI
	COMMA
	COLON
	ELLIPSIS
	DOT
	ARROW

	ASSIGN
	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	AMP
	PIPE
	CARET
	TILDE
	BANG
	LT
	GT
	QUESTION

	PLUS_ASSIGN
	MINUS_ASSIGN
	STAR_ASSIGN
	SLASH_ASSIGN
	PERCENT_ASSIGN
	AMP_ASSIGN
	PIPE_ASSIGN
	CARET_ASSIGN
	SHL_ASSIGN
	SHR_ASSIGN

	EQ
	NE
	LE
	GE
	AND_AND
	OR_OR
	INC
	DEC
	SHL
	SHR
)

var keywords = map[string]Kind{
	"break": BREAK, "case": CASE, "char": CHAR, "const": CONST,
	"continue": CONTINUE, "default": DEFAULT, "do": DO, "double": DOUBLE,
	"else": ELSE, "enum": ENUM, "extern": EXTERN, "float": FLOAT,
	"for": FOR, "goto": GOTO, "if": IF, "int": INT,
	"return": RETURN, "sizeof": SIZEOF, "static": STATIC, "struct": STRUCT,
	"switch": SWITCH, "typedef": TYPEDEF, "union": UNION, "void": VOID,
	"while": WHILE,
}

// Lookup returns the keyword Kind for name, or (IDENT, false) if name is an
// ordinary identifier. Grounded on the teacher's linear keyword map
// (lang/ylex/lexer.go's `keywords`), generalized to the C keyword set named
// in spec.md §3.
func Lookup(name string) (Kind, bool) {
	if k, ok := keywords[name]; ok {
		return k, true
	}
	return IDENT, false
}

// IsTypeKeyword reports whether k introduces a specifier-qualifier list.
func IsTypeKeyword(k Kind) bool {
	switch k {
	case VOID, CHAR, INT, DOUBLE, FLOAT, STRUCT, UNION, ENUM:
		return true
	}
	return false
}

// Pos is a source position: line and column, both 1-based.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Token carries everything the parser needs: the kind, its source position,
// an optional textual value (identifiers, strings, comments), an optional
// numeric value (integer/float literals), and the original source text —
// used by the CLI's debug dump mode (spec.md §6 `lex`).
type Token struct {
	Kind   Kind
	Pos    Pos
	Text   string  // original source text of the token
	Value  string  // decoded textual value (identifier name, string contents)
	IntVal int64   // for INT_LIT
	FltVal float64 // for FLOAT_LIT
	IsFlt  bool    // INT_LIT came from a literal with float suffix semantics (unused placeholder)
}

func (t Token) String() string {
	return fmt.Sprintf("%s\t%s\t%s\t%s", t.Pos, t.Text, t.Value, t.Kind)
}

// IsKind reports whether the token is of kind k.
func (t Token) IsKind(k Kind) bool { return t.Kind == k }
