// Copyright © 2018 The ELPS authors

/*
Package parser provides the lisp reader.

	form    := list | vector | hash-map | macro | atom
	list    := '(' form* ')'
	vector  := '[' form* ']'
	hash-map := '{' (key form)* '}'
	macro   := ('\'' | '`' | '~' | '~@' | '@') form | '^' form form
	atom    := integer | string | keyword | 'true' | 'false' | 'nil' | symbol

Whitespace and commas separate forms.  Comments begin with ';' and continue
to the end of the line.
*/
package parser

import (
	"bytes"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser/token"
)

type reader struct{}

// NewReader returns a lisp.Reader to use in a lisp.Runtime.
func NewReader() lisp.Reader {
	return &reader{}
}

// Read implements lisp.Reader.
func (*reader) Read(name string, r io.Reader) ([]*lisp.LVal, error) {
	return read(name, "", r)
}

// ReadLocation implements lisp.LocationReader.
func (*reader) ReadLocation(name string, loc string, r io.Reader) ([]*lisp.LVal, error) {
	return read(name, loc, r)
}

func read(name string, loc string, r io.Reader) ([]*lisp.LVal, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	s := token.NewScanner(name, ignoreHashBang(text))
	s.SetPath(loc)
	return New(s).ParseProgram()
}

// ignoreHashBang turns a leading "#!" line into a comment.  Offsets within
// the text are unchanged.
func ignoreHashBang(text []byte) []byte {
	if !bytes.HasPrefix(text, []byte("#!")) {
		return text
	}
	cp := make([]byte, len(text))
	copy(cp, text)
	cp[0] = ';'
	return cp
}

// ParseString parses the first form in text.  If text contains no forms
// ParseString returns io.EOF.
func ParseString(text string) (*lisp.LVal, error) {
	return New(token.NewScanner("", []byte(text))).Parse()
}

// Parser is a lisp parser.
type Parser struct {
	src token.Source
}

// New initializes and returns a new Parser that reads tokens from src.
func New(src token.Source) *Parser {
	return &Parser{src: src}
}

// Parse reads the next form.  If no tokens remain Parse returns io.EOF.
func (p *Parser) Parse() (*lisp.LVal, error) {
	if p.src.Peek().Type == token.EOF {
		return nil, io.EOF
	}
	return p.ParseForm()
}

// ParseProgram parses every remaining form.
func (p *Parser) ParseProgram() ([]*lisp.LVal, error) {
	var exprs []*lisp.LVal
	for {
		expr, err := p.Parse()
		if errors.Is(err, io.EOF) {
			return exprs, nil
		}
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
}

var readerMacros = map[token.Type]string{
	token.QUOTE:          lisp.QuoteSymbol,
	token.QUASIQUOTE:     lisp.QuasiquoteSymbol,
	token.UNQUOTE:        lisp.UnquoteSymbol,
	token.SPLICE_UNQUOTE: lisp.SpliceUnquoteSymbol,
	token.DEREF:          "deref",
}

// ParseForm reads a single form.  Unlike Parse, running out of tokens is an
// UnexpectedEof error.
func (p *Parser) ParseForm() (*lisp.LVal, error) {
	p.src.Scan()
	tok := p.src.Token()
	switch tok.Type {
	case token.EOF:
		return nil, p.errorEOF(tok, "form")
	case token.PAREN_L:
		return p.parseSeq(tok, token.PAREN_R)
	case token.BRACE_L:
		return p.parseSeq(tok, token.BRACE_R)
	case token.CURLY_L:
		return p.parseSeq(tok, token.CURLY_R)
	case token.PAREN_R, token.BRACE_R, token.CURLY_R, token.INVALID:
		return nil, p.errorToken(tok)
	case token.META:
		meta, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		target, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		return p.located(tok, lisp.List(p.located(tok, lisp.Symbol("with-meta")), target, meta)), nil
	case token.STRING:
		return p.parseString(tok)
	case token.ATOM:
		return p.parseAtom(tok)
	}
	if name, ok := readerMacros[tok.Type]; ok {
		form, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		return p.located(tok, lisp.List(p.located(tok, lisp.Symbol(name)), form)), nil
	}
	return nil, p.errorToken(tok)
}

func (p *Parser) parseSeq(open *token.Token, closer token.Type) (*lisp.LVal, error) {
	var cells []*lisp.LVal
	for {
		next := p.src.Peek()
		switch {
		case next.Type == token.EOF:
			p.src.Scan()
			return nil, p.errorEOF(next, closer.String())
		case next.Type == closer:
			p.src.Scan()
			return p.makeSeq(open, cells)
		case next.Type.IsClose():
			p.src.Scan()
			return nil, p.errorToken(next)
		}
		form, err := p.ParseForm()
		if err != nil {
			return nil, err
		}
		cells = append(cells, form)
	}
}

func (p *Parser) makeSeq(open *token.Token, cells []*lisp.LVal) (*lisp.LVal, error) {
	switch open.Type {
	case token.BRACE_L:
		return p.located(open, lisp.Vector(cells...)), nil
	case token.CURLY_L:
		m, err := lisp.HashMapFromPairs(cells)
		if err != nil {
			lerr := lisp.AsErrorVal(err)
			lerr.Source = open.Source
			return nil, lerr
		}
		return p.located(open, m), nil
	default:
		return p.located(open, lisp.List(cells...)), nil
	}
}

var (
	intRegexp    = regexp.MustCompile(`^-?[0-9]+$`)
	stringRegexp = regexp.MustCompile(`^"(?:\\.|[^\\"])*"$`)
)

func (p *Parser) parseAtom(tok *token.Token) (*lisp.LVal, error) {
	text := tok.Text
	switch {
	case intRegexp.MatchString(text):
		x, err := strconv.Atoi(text)
		if err != nil {
			lerr := p.errorToken(tok)
			lerr.Msg = "integer literal out of range: " + text
			return nil, lerr
		}
		return p.located(tok, lisp.Int(x)), nil
	case strings.HasPrefix(text, ":"):
		return p.located(tok, lisp.Keyword(text[1:])), nil
	case text == lisp.TrueSymbol:
		return lisp.Bool(true), nil
	case text == lisp.FalseSymbol:
		return lisp.Bool(false), nil
	case text == lisp.NilSymbol:
		return lisp.Nil(), nil
	default:
		return p.located(tok, lisp.Symbol(text)), nil
	}
}

func (p *Parser) parseString(tok *token.Token) (*lisp.LVal, error) {
	if !stringRegexp.MatchString(tok.Text) {
		return nil, p.errorEOF(tok, `"`)
	}
	return p.located(tok, lisp.String(unescape(tok.Text[1:len(tok.Text)-1]))), nil
}

// unescape processes backslash escapes in the body of a string literal.
// Escaped characters other than 'n' stand for themselves.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		if s[i] == 'n' {
			b.WriteByte('\n')
		} else {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// located sets the source location of v.  Shared singletons (nil, true and
// false) are never passed to located.
func (p *Parser) located(tok *token.Token, v *lisp.LVal) *lisp.LVal {
	v.Source = tok.Source
	return v
}

func (p *Parser) errorToken(tok *token.Token) *lisp.ErrorVal {
	return &lisp.ErrorVal{
		Kind:   lisp.UnexpectedToken,
		Msg:    "unexpected token: " + strconv.Quote(tok.Text),
		Token:  tok.Text,
		Source: tok.Source,
	}
}

func (p *Parser) errorEOF(tok *token.Token, expected string) *lisp.ErrorVal {
	return &lisp.ErrorVal{
		Kind:     lisp.UnexpectedEof,
		Msg:      "expected " + strconv.Quote(expected) + ", got EOF",
		Expected: expected,
		Source:   tok.Source,
	}
}
