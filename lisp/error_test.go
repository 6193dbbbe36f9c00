// Copyright © 2018 The ELPS authors

package lisp_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib"
	"github.com/luthersystems/mal/maltest"
	"github.com/luthersystems/mal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTryCatch(t *testing.T) {
	tests := maltest.TestSuite{
		{"throw", maltest.TestSequence{
			{`(throw "boom")`, `exception: "boom"`, ""},
			{`(throw {:msg "boom"})`, `exception: {:msg "boom"}`, ""},
			{`(try* (throw "boom") (catch* e e))`, `"boom"`, ""},
			{`(try* (throw (list 1 2)) (catch* e (count e)))`, "2", ""},
			{`(try* (throw {:data 7}) (catch* e (get e :data)))`, "7", ""},
			{`(try* 1 (catch* e 2))`, "1", ""},
			{`(try* (+ 1 2))`, "3", ""},
			{`(try* (throw "x"))`, `exception: "x"`, ""},
			{`(try* (throw "x") (catch* e (str "caught " e)))`, `"caught x"`, ""},
			{`(try* (throw "x") (catch* e (throw (str e "!"))))`, `exception: "x!"`, ""},
			{`(try* (throw "x") (1 2))`, "type-error: malformed catch* clause: (1 2)", ""},
		}},
		{"interpreter errors", maltest.TestSequence{
			{`(try* undefined-thing (catch* e e))`, `"'undefined-thing' not found"`, ""},
			{`(try* (nth (list 1) 5) (catch* e e))`, `"nth: index out of range: 5"`, ""},
			{`(try* (abc 1 2) (catch* e (string? e)))`, "true", ""},
			{`(try* (slurp "/this/file/does/not/exist") (catch* e (string? e)))`, "true", ""},
			{`(try* (read-string "(1 2") (catch* e e))`, `"expected \")\", got EOF"`, ""},
		}},
		{"nested", maltest.TestSequence{
			{`(try* (try* (throw 1) (catch* e (throw (+ e 1)))) (catch* e (+ e 1)))`, "3", ""},
			{`(def! f (fn* (n) (if (= n 0) (throw "bottom") (f (- n 1)))))`, "#<function>", ""},
			{`(try* (f 100) (catch* e e))`, `"bottom"`, ""},
			{`(let* (e 1) (list (try* (throw 2) (catch* e e)) e))`, "(2 1)", ""},
		}},
	}
	maltest.RunTestSuite(t, tests)
}

func newEnv(t *testing.T, config ...lisp.Config) (*lisp.LEnv, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	env := lisp.NewEnv(nil)
	config = append([]lisp.Config{
		lisp.WithReader(parser.NewReader()),
		lisp.WithStdout(&out),
		lisp.WithStderr(io.Discard),
	}, config...)
	require.NoError(t, env.Configure(config...))
	require.NoError(t, lisplib.LoadLibrary(env))
	return env, &out
}

func TestErrorKinds(t *testing.T) {
	env, _ := newEnv(t)
	for _, test := range []struct {
		expr string
		kind lisp.ErrorKind
	}{
		{"(", lisp.UnexpectedEof},
		{")", lisp.UnexpectedToken},
		{"{:a}", lisp.InvalidHashMap},
		{"nope", lisp.SymbolNotFound},
		{"(+ 1 :a)", lisp.TypeError},
		{`(throw "x")`, lisp.Exception},
		{"(hash-map 1 2)", lisp.InvalidHashMap},
	} {
		_, err := env.LoadString("test", test.expr)
		require.Error(t, err, test.expr)
		assert.True(t, lisp.IsKind(err, test.kind), "%s: %v", test.expr, err)
		var lerr *lisp.ErrorVal
		if assert.ErrorAs(t, err, &lerr, test.expr) {
			assert.Equal(t, test.kind, lerr.Kind, test.expr)
			assert.True(t, strings.HasPrefix(err.Error(), test.kind.String()+": "), err.Error())
		}
	}
}

func TestErrorPayload(t *testing.T) {
	thrown := lisp.Keyword("oops")
	assert.Equal(t, thrown, lisp.Throw(thrown).Payload())
	assert.Equal(t, thrown, lisp.ErrorPayload(lisp.Throw(thrown)))

	payload := lisp.Errorf(lisp.TypeError, "bad %s", "thing").Payload()
	assert.Equal(t, lisp.LString, payload.Type)
	assert.Equal(t, "bad thing", payload.Str)

	payload = lisp.ErrorPayload(fmt.Errorf("wrapped: %w", io.ErrUnexpectedEOF))
	assert.Equal(t, lisp.LString, payload.Type)
	assert.Equal(t, "wrapped: unexpected EOF", payload.Str)

	wrapped := fmt.Errorf("context: %w", lisp.SymbolNotFoundError("x"))
	assert.True(t, lisp.IsKind(wrapped, lisp.SymbolNotFound))
	assert.Equal(t, "x", lisp.AsErrorVal(wrapped).Token)
	assert.False(t, lisp.IsKind(errors.New("plain"), lisp.SymbolNotFound))
}

func TestErrorKindString(t *testing.T) {
	assert.Equal(t, "error", lisp.ErrorKind(0).String())
	assert.Equal(t, "stack-overflow", lisp.StackOverflow.String())
	assert.Equal(t, "error", lisp.ErrorKind(100).String())
}

func TestErrorTrace(t *testing.T) {
	env, _ := newEnv(t)
	_, err := env.LoadString("trace.mal", `
(def! inner (fn* (x) (+ x :bad)))
(def! outer (fn* (x) (+ 1 (inner x))))
(outer 1)`)
	require.Error(t, err)
	var lerr *lisp.ErrorVal
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, lisp.TypeError, lerr.Kind)
	require.NotNil(t, lerr.Source)
	assert.Equal(t, "trace.mal", lerr.Source.File)
	assert.Equal(t, 2, lerr.Source.Line)
	assert.Equal(t, "+", lerr.FunName())
	require.NotNil(t, lerr.Stack)
	var names []string
	for _, frame := range lerr.Stack.Frames {
		names = append(names, frame.Name)
	}
	assert.Equal(t, []string{"outer", "inner", "+"}, names)

	var buf bytes.Buffer
	_, err = lerr.WriteTrace(&buf)
	require.NoError(t, err)
	trace := buf.String()
	assert.True(t, strings.HasPrefix(trace, "trace.mal:2:"), trace)
	assert.Contains(t, trace, "type-error: +: argument 1 is not a number: keyword\n")
	assert.Contains(t, trace, "Stack Trace [most recent call first]\n")
	assert.Contains(t, trace, "inner")

	// the runtime stack unwinds after an error
	assert.Equal(t, 0, env.Runtime.Stack.Height())
}
