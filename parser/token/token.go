// Copyright © 2018 The ELPS authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

type Token struct {
	Type   Type
	Text   string
	Source *Location
}

func (tok *Token) String() string {
	if tok.Type == EOF {
		return "EOF"
	}
	return tok.Text
}

type Type uint

// Type constants produced by the Scanner.
const (
	INVALID Type = iota
	EOF

	// Atomic tokens.  The parser classifies ATOM text further into numbers,
	// keywords, literals and symbols.
	ATOM
	STRING
	COMMENT

	// Reader macros
	QUOTE          // '
	QUASIQUOTE     // `
	UNQUOTE        // ~
	SPLICE_UNQUOTE // ~@
	DEREF          // @
	META           // ^

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	CURLY_L
	CURLY_R

	numTokenTypes
)

func (typ Type) String() string {
	typeStrings := [numTokenTypes]string{
		INVALID:        "invalid",
		EOF:            "EOF",
		ATOM:           "atom",
		STRING:         "string",
		COMMENT:        ";",
		QUOTE:          "'",
		QUASIQUOTE:     "`",
		UNQUOTE:        "~",
		SPLICE_UNQUOTE: "~@",
		DEREF:          "@",
		META:           "^",
		PAREN_L:        "(",
		PAREN_R:        ")",
		BRACE_L:        "[",
		BRACE_R:        "]",
		CURLY_L:        "{",
		CURLY_R:        "}",
	}
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsClose returns true if typ closes a structural form.
func (typ Type) IsClose() bool {
	return typ == PAREN_R || typ == BRACE_R || typ == CURLY_R
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}
