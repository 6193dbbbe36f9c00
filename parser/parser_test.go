// Copyright © 2024 The ELPS authors

package parser

import (
	"io"
	"strings"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseString(t *testing.T) {
	for i, test := range []struct {
		text     string
		rendered string
		typ      lisp.LType
	}{
		{"123", "123", lisp.LInt},
		{"-7", "-7", lisp.LInt},
		{"-", "-", lisp.LSymbol},
		{"abc", "abc", lisp.LSymbol},
		{":kw", ":kw", lisp.LKeyword},
		{"true", "true", lisp.LBool},
		{"false", "false", lisp.LBool},
		{"nil", "nil", lisp.LNil},
		{`"a\nb"`, `"a\nb"`, lisp.LString},
		{`"a\"b\\c"`, `"a\"b\\c"`, lisp.LString},
		{`"\q"`, `"q"`, lisp.LString},
		{"( + 1 , 2 )", "(+ 1 2)", lisp.LList},
		{"()", "()", lisp.LList},
		{"[1 [2 (3)]]", "[1 [2 (3)]]", lisp.LVector},
		{`{"b" 2 :a 1}`, `{"b" 2 :a 1}`, lisp.LHashMap},
		{"'a", "(quote a)", lisp.LList},
		{"`(a ~b ~@c)", "(quasiquote (a (unquote b) (splice-unquote c)))", lisp.LList},
		{"@x", "(deref x)", lisp.LList},
		{"^{:a 1} [1]", "(with-meta [1] {:a 1})", lisp.LList},
		{"; comment\n42 ; trailing", "42", lisp.LInt},
		{"1 2", "1", lisp.LInt},
	} {
		v, err := ParseString(test.text)
		if !assert.NoError(t, err, "test %d: %q", i, test.text) {
			continue
		}
		assert.Equal(t, test.typ, v.Type, "test %d: %q", i, test.text)
		assert.Equal(t, test.rendered, lisp.Render(v, true), "test %d: %q", i, test.text)
	}
}

func TestParseStringEmpty(t *testing.T) {
	for _, text := range []string{"", "  \n,, ", "; only a comment"} {
		_, err := ParseString(text)
		assert.ErrorIs(t, err, io.EOF, "%q", text)
	}
}

func TestParseStringErrors(t *testing.T) {
	for i, test := range []struct {
		text     string
		kind     lisp.ErrorKind
		expected string
		token    string
	}{
		{"(1 2", lisp.UnexpectedEof, ")", ""},
		{"[1 (2]", lisp.UnexpectedToken, "", "]"},
		{"{:a 1", lisp.UnexpectedEof, "}", ""},
		{`"abc`, lisp.UnexpectedEof, `"`, ""},
		{`"abc\"`, lisp.UnexpectedEof, `"`, ""},
		{")", lisp.UnexpectedToken, "", ")"},
		{"'", lisp.UnexpectedEof, "form", ""},
		{"^{:a 1}", lisp.UnexpectedEof, "form", ""},
		{"{:a}", lisp.InvalidHashMap, "", ""},
		{"{1 2}", lisp.InvalidHashMap, "", ""},
		{"99999999999999999999999", lisp.UnexpectedToken, "", "99999999999999999999999"},
	} {
		_, err := ParseString(test.text)
		require.Error(t, err, "test %d: %q", i, test.text)
		var lerr *lisp.ErrorVal
		require.ErrorAs(t, err, &lerr, "test %d: %q", i, test.text)
		assert.Equal(t, test.kind, lerr.Kind, "test %d: %q", i, test.text)
		assert.Equal(t, test.expected, lerr.Expected, "test %d: %q", i, test.text)
		assert.Equal(t, test.token, lerr.Token, "test %d: %q", i, test.text)
		assert.NotNil(t, lerr.Source, "test %d: %q", i, test.text)
	}
}

func TestParseRoundTrip(t *testing.T) {
	for _, v := range []*lisp.LVal{
		lisp.Int(0),
		lisp.Int(-42),
		lisp.String(""),
		lisp.String("line\nbreak \"quoted\" back\\slash"),
		lisp.Keyword("kw"),
		lisp.Bool(true),
		lisp.Bool(false),
		lisp.Nil(),
		lisp.List(lisp.Int(1), lisp.String("x"), lisp.Keyword("y")),
		lisp.Vector(lisp.Nil(), lisp.Bool(false)),
	} {
		text := lisp.Render(v, true)
		parsed, err := ParseString(text)
		if assert.NoError(t, err, text) {
			assert.True(t, v.Equal(parsed), "%s != %s", text, parsed)
		}
	}
}

func TestReader(t *testing.T) {
	r := NewReader()
	exprs, err := r.Read("test", strings.NewReader("(def! x 1)\n\n[x]\n; done\n"))
	require.NoError(t, err)
	require.Len(t, exprs, 2)
	assert.Equal(t, lisp.LList, exprs[0].Type)
	assert.Equal(t, lisp.LVector, exprs[1].Type)
	require.NotNil(t, exprs[1].Source)
	assert.Equal(t, "test:3:1", exprs[1].Source.String())

	exprs, err = r.Read("empty", strings.NewReader(""))
	assert.NoError(t, err)
	assert.Len(t, exprs, 0)

	_, err = r.Read("bad", strings.NewReader("(1 2) (3"))
	assert.True(t, lisp.IsKind(err, lisp.UnexpectedEof))
}

func TestReaderHashBang(t *testing.T) {
	r := NewReader()
	exprs, err := r.Read("script", strings.NewReader("#!/usr/bin/env mal\n(prn 1)"))
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	assert.Equal(t, "(prn 1)", exprs[0].String())
	assert.Equal(t, 2, exprs[0].Source.Line)
}

func TestReaderLocation(t *testing.T) {
	r := NewReader()
	lr, ok := r.(lisp.LocationReader)
	require.True(t, ok, "reader should implement LocationReader")

	exprs, err := lr.ReadLocation("logical", "/path/to/file.mal", strings.NewReader("(foo)"))
	require.NoError(t, err)
	require.Len(t, exprs, 1)
	assert.Equal(t, "logical", exprs[0].Source.File)
	assert.Equal(t, "/path/to/file.mal", exprs[0].Source.Path)
}
