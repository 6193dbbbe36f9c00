// Copyright © 2018 The ELPS authors

package token

import (
	parsec "github.com/prataprc/goparsec"
)

// Patterns handed to the goparsec scanner.  Each is anchored at the scanner
// cursor.  The token pattern is the classic mal tokenizer: the splice-unquote
// pair, single character delimiters, strings (possibly unterminated),
// comments, and runs of anything else.
const (
	separatorPattern = `^[\s,]*`
	tokenPattern     = `^(?:~@|[\[\]{}()'` + "`" + `~^@]|"(?:\\.|[^\\"])*"?|;.*|[^\s\[\]{}('"` + "`" + `,;)]*)`
	anyBytePattern   = `^(?s:.)`
)

var _ Source = (*Scanner)(nil)

// Scanner produces tokens from a source text.  Scanner tracks line and column
// numbers so that every token carries a usable Location.
type Scanner struct {
	file    string
	path    string
	text    []byte
	sc      parsec.Scanner
	pos     int // cursor position that line/linePos describe
	line    int
	linePos int // offset of the first byte of line
	tok     *Token
	peek    *Token
}

// NewScanner returns a Scanner for text.  The file name is used in token
// locations.
func NewScanner(file string, text []byte) *Scanner {
	return &Scanner{
		file: file,
		text: text,
		sc:   parsec.NewScanner(text),
		line: 1,
	}
}

// SetPath sets the physical location of the source, reported in token
// locations alongside the file name.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// Token implements Source.
func (s *Scanner) Token() *Token {
	return s.tok
}

// Peek implements Source.
func (s *Scanner) Peek() *Token {
	if s.peek == nil {
		s.peek = s.next()
	}
	return s.peek
}

// Scan implements Source.
func (s *Scanner) Scan() bool {
	s.tok = s.Peek()
	s.peek = nil
	return s.tok.Type != EOF
}

// ScanAll returns every remaining token.  The final token is always EOF.
func (s *Scanner) ScanAll() []*Token {
	var toks []*Token
	for s.Scan() {
		toks = append(toks, s.tok)
	}
	return append(toks, s.tok)
}

func (s *Scanner) next() *Token {
	for {
		_, s.sc = s.sc.Match(separatorPattern)
		loc := s.location()
		if s.sc.Endof() {
			return &Token{Type: EOF, Source: loc}
		}
		var text []byte
		text, s.sc = s.sc.Match(tokenPattern)
		if len(text) == 0 {
			// Nothing the tokenizer recognizes.  Consume a byte so scanning
			// always makes progress.
			text, s.sc = s.sc.Match(anyBytePattern)
			return &Token{Type: INVALID, Text: string(text), Source: loc}
		}
		typ := classify(text)
		if typ == COMMENT {
			continue
		}
		return &Token{Type: typ, Text: string(text), Source: loc}
	}
}

func (s *Scanner) location() *Location {
	cursor := s.sc.GetCursor()
	for i := s.pos; i < cursor && i < len(s.text); i++ {
		if s.text[i] == '\n' {
			s.line++
			s.linePos = i + 1
		}
	}
	s.pos = cursor
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  cursor,
		Line: s.line,
		Col:  cursor - s.linePos + 1,
	}
}

func classify(text []byte) Type {
	switch string(text) {
	case "~@":
		return SPLICE_UNQUOTE
	case "'":
		return QUOTE
	case "`":
		return QUASIQUOTE
	case "~":
		return UNQUOTE
	case "@":
		return DEREF
	case "^":
		return META
	case "(":
		return PAREN_L
	case ")":
		return PAREN_R
	case "[":
		return BRACE_L
	case "]":
		return BRACE_R
	case "{":
		return CURLY_L
	case "}":
		return CURLY_R
	}
	switch text[0] {
	case '"':
		return STRING
	case ';':
		return COMMENT
	}
	return ATOM
}
