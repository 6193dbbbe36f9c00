// Copyright © 2018 The ELPS authors

package maltest

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strings"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib"
	"github.com/luthersystems/mal/parser"
)

// DefaultMaxDepth bounds evaluation depth in test environments.
const DefaultMaxDepth = 50000

func BenchmarkParse(path string, r func() lisp.Reader) func(*testing.B) {
	return func(b *testing.B) {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.SetBytes(int64(len(buf)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("test", bytes.NewReader(buf))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// Runner is a test runner for mal test files.
//
// A test file contains forms, each followed by the lines a REPL would show
// when it is evaluated.  A line ";/regexp" must match the next line of
// output written by the form (or the error message when evaluation fails)
// and a line ";=>text" must equal the readable form of the result.  Other
// lines beginning with ';' are comments.
type Runner struct {
	// Loader is the package loader used to initialize the test environment.
	// When Loader is nil lisplib.LoadLibrary is used.
	Loader func(*lisp.LEnv) error
}

func (r *Runner) NewEnv(t testing.TB, stdout io.Writer) (*lisp.LEnv, error) {
	logger := NewLogger(t)
	runtime := &lisp.Runtime{
		Stack:    &lisp.CallStack{},
		Reader:   parser.NewReader(),
		Stdout:   stdout,
		Stderr:   logger,
		MaxDepth: DefaultMaxDepth,
	}
	env := lisp.NewEnvRuntime(runtime)
	loader := r.Loader
	if loader == nil {
		loader = lisplib.LoadLibrary
	}
	err := loader(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load library: %v", err)
	}
	return env, nil
}

// TestCase is a form read from a test file together with its expectations.
type TestCase struct {
	Line   int
	Expr   string
	Output []*regexp.Regexp
	Result string
	// HasResult is false when no ";=>" line followed the form.
	HasResult bool
}

// ReadTestFile splits source into test cases.
func ReadTestFile(source io.Reader) ([]*TestCase, error) {
	var cases []*TestCase
	var cur *TestCase
	var pending []string
	start := 0
	flush := func() {
		if len(pending) == 0 {
			return
		}
		cur = &TestCase{Line: start, Expr: strings.Join(pending, "\n")}
		cases = append(cases, cur)
		pending = nil
	}
	sc := bufio.NewScanner(source)
	lineno := 0
	for sc.Scan() {
		lineno++
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, ";=>"):
			flush()
			if cur == nil {
				return nil, fmt.Errorf("line %d: result without a form", lineno)
			}
			cur.Result = trimmed[len(";=>"):]
			cur.HasResult = true
			cur = nil
		case strings.HasPrefix(trimmed, ";/"):
			flush()
			if cur == nil {
				return nil, fmt.Errorf("line %d: output without a form", lineno)
			}
			re, err := regexp.Compile("^(?:" + trimmed[len(";/"):] + ")$")
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineno, err)
			}
			cur.Output = append(cur.Output, re)
		case trimmed == "", strings.HasPrefix(trimmed, ";"):
			flush()
		default:
			if len(pending) == 0 {
				start = lineno
			}
			pending = append(pending, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	flush()
	return cases, nil
}

// RunTestFile evaluates each form in the test file at path in a single
// environment and checks it against its expectations.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	f, err := os.Open(path) //#nosec G304
	if err != nil {
		t.Errorf("Unable to read test file: %v", err)
		return
	}
	defer f.Close() //nolint:errcheck
	cases, err := ReadTestFile(f)
	if err != nil {
		t.Errorf("%s: %v", path, err)
		return
	}
	var out bytes.Buffer
	env, err := r.NewEnv(t, &out)
	if err != nil {
		t.Error(err.Error())
		return
	}
	defer env.Runtime.Stderr.(*Logger).Flush()
	for _, c := range cases {
		out.Reset()
		r.runCase(t, env, path, c, &out)
	}
}

func (r *Runner) runCase(t *testing.T, env *lisp.LEnv, path string, c *TestCase, out *bytes.Buffer) {
	v, err := env.LoadString(fmt.Sprintf("%s:%d", path, c.Line), c.Expr)
	lines := outputLines(out.String())
	if err != nil {
		lines = append(lines, ErrorString(err))
	}
	if len(lines) != len(c.Output) && (len(c.Output) > 0 || err == nil) {
		t.Errorf("%s:%d: %s: expected %d lines of output (got %q)", path, c.Line, c.Expr, len(c.Output), lines)
		return
	}
	for i, re := range c.Output {
		if !re.MatchString(lines[i]) {
			t.Errorf("%s:%d: %s: output %q does not match %s", path, c.Line, c.Expr, lines[i], re)
		}
	}
	if err != nil {
		if len(c.Output) == 0 {
			r.LispError(t, err)
		}
		return
	}
	if c.HasResult && v.String() != c.Result {
		t.Errorf("%s:%d: %s: expected result %s (got %s)", path, c.Line, c.Expr, c.Result, v)
	}
}

func outputLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

// ErrorString renders err the way the REPL displays it.  Exceptions render
// as the thrown value.
func ErrorString(err error) string {
	var lerr *lisp.ErrorVal
	if errors.As(err, &lerr) && lerr.Kind == lisp.Exception {
		return "Error: " + lerr.Msg
	}
	return "Error: " + err.Error()
}

func (r *Runner) LispError(t testing.TB, err error) {
	var lerr *lisp.ErrorVal
	if !errors.As(err, &lerr) {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	_, ioerr := lerr.WriteTrace(&buf)
	if ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// TestSequence is a sequence of lisp expressions which are evaluated sequentially
// by a lisp.LEnv.
type TestSequence []struct {
	Expr   string // a lisp expression
	Result string // the evaluated result, or the message of the returned error
	Output string // program output written to Runtime.Stdout
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// RunTestSuite runs each TestSequence in tests on isolated lisp.LEnvs.
func RunTestSuite(t *testing.T, tests TestSuite) {
	for i, test := range tests {
		log.Printf("test %d -- %s", i, test.Name)
		var exprBuf bytes.Buffer
		env := lisp.NewEnv(nil)
		err := env.Configure(
			lisp.WithMaxDepth(DefaultMaxDepth),
			lisp.WithReader(parser.NewReader()),
			lisp.WithStdout(&exprBuf),
			lisp.WithStderr(io.Discard),
		)
		if err == nil {
			err = lisplib.LoadLibrary(env)
		}
		if err != nil {
			t.Errorf("test %d %q: %v", i, test.Name, err)
			continue
		}
		for j, expr := range test.TestSequence {
			exprBuf.Reset()
			v, err := env.Runtime.Reader.Read("test", strings.NewReader(expr.Expr))
			if err != nil {
				t.Errorf("test %d %q: expr %d: parse error: %v", i, test.Name, j, err)
				continue
			}
			if len(v) == 0 {
				t.Errorf("test %d %q: expr %d: no expression parsed", i, test.Name, j)
				continue
			}
			if len(v) != 1 {
				t.Errorf("test %d %q: expr %d: more than one expression parsed (%d)", i, test.Name, j, len(v))
				continue
			}
			var result string
			val, err := env.Eval(v[0])
			if err != nil {
				result = err.Error()
			} else {
				result = val.String()
			}
			if result != expr.Result {
				t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, result)
			}
			if exprBuf.String() != expr.Output {
				t.Errorf("test %d %q: expr %d: expected output %q (got %q)", i, test.Name, j, expr.Output, exprBuf.String())
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that executes expressions parsed from
// source.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	p := parser.NewReader()
	exprs, err := p.Read("benchmark", strings.NewReader(source))
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		env := lisp.NewEnv(nil)
		err := env.Configure(
			lisp.WithMaxDepth(DefaultMaxDepth),
			lisp.WithReader(p),
			lisp.WithStdout(io.Discard),
			lisp.WithStderr(io.Discard),
		)
		if err == nil {
			err = lisplib.LoadLibrary(env)
		}
		if err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		for i, expr := range exprs {
			_, err := env.Eval(expr)
			if err != nil {
				b.Fatalf("expr %d: %v", i, err)
			}
		}
		b.StopTimer()
	}
}
