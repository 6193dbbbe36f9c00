// Copyright © 2018 The ELPS authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scanTypes(text string) ([]Type, []string) {
	s := NewScanner("test", []byte(text))
	var types []Type
	var texts []string
	for _, tok := range s.ScanAll() {
		types = append(types, tok.Type)
		texts = append(texts, tok.Text)
	}
	return types, texts
}

func TestScanner(t *testing.T) {
	for i, test := range []struct {
		text  string
		types []Type
		texts []string
	}{
		{"", []Type{EOF}, []string{""}},
		{"  ,, \n\t", []Type{EOF}, []string{""}},
		{"abc", []Type{ATOM, EOF}, []string{"abc", ""}},
		{"(+ 1 2)", []Type{PAREN_L, ATOM, ATOM, ATOM, PAREN_R, EOF}, []string{"(", "+", "1", "2", ")", ""}},
		{"[1,2]", []Type{BRACE_L, ATOM, ATOM, BRACE_R, EOF}, []string{"[", "1", "2", "]", ""}},
		{`{"a" 1}`, []Type{CURLY_L, STRING, ATOM, CURLY_R, EOF}, []string{"{", `"a"`, "1", "}", ""}},
		{"'a `b ~c ~@d @e ^f", []Type{QUOTE, ATOM, QUASIQUOTE, ATOM, UNQUOTE, ATOM, SPLICE_UNQUOTE, ATOM, DEREF, ATOM, META, ATOM, EOF},
			[]string{"'", "a", "`", "b", "~", "c", "~@", "d", "@", "e", "^", "f", ""}},
		{"1 ; comment\n2", []Type{ATOM, ATOM, EOF}, []string{"1", "2", ""}},
		{`"a \" b"`, []Type{STRING, EOF}, []string{`"a \" b"`, ""}},
		{`"abc`, []Type{STRING, EOF}, []string{`"abc`, ""}},
		{":kw nil", []Type{ATOM, ATOM, EOF}, []string{":kw", "nil", ""}},
	} {
		types, texts := scanTypes(test.text)
		assert.Equal(t, test.types, types, "test %d: %q", i, test.text)
		assert.Equal(t, test.texts, texts, "test %d: %q", i, test.text)
	}
}

func TestScannerPeek(t *testing.T) {
	s := NewScanner("test", []byte("(a)"))
	assert.Nil(t, s.Token())
	assert.Equal(t, PAREN_L, s.Peek().Type)
	assert.Equal(t, PAREN_L, s.Peek().Type)
	require.True(t, s.Scan())
	assert.Equal(t, PAREN_L, s.Token().Type)
	assert.Equal(t, ATOM, s.Peek().Type)
	require.True(t, s.Scan())
	require.True(t, s.Scan())
	assert.Equal(t, PAREN_R, s.Token().Type)
	assert.False(t, s.Scan())
	assert.Equal(t, EOF, s.Token().Type)
	assert.False(t, s.Scan())
}

func TestScannerLocation(t *testing.T) {
	s := NewScanner("test.mal", []byte("(a\n  bc)\n\n d"))
	toks := s.ScanAll()
	require.Len(t, toks, 6)
	locs := make([]string, len(toks))
	for i := range toks {
		locs[i] = toks[i].Source.String()
	}
	assert.Equal(t, []string{
		"test.mal:1:1",
		"test.mal:1:2",
		"test.mal:2:3",
		"test.mal:2:5",
		"test.mal:4:2",
		"test.mal:4:3",
	}, locs)
}
