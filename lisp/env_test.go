package lisp_test

import (
	"sort"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/maltest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func symbols(names ...string) []*lisp.LVal {
	cells := make([]*lisp.LVal, len(names))
	for i, name := range names {
		cells[i] = lisp.Symbol(name)
	}
	return cells
}

func TestEnvGetPut(t *testing.T) {
	root := lisp.NewEnv(nil)
	child := lisp.NewEnv(root)
	assert.Same(t, root.Runtime, child.Runtime)
	assert.Same(t, root, child.Root())
	assert.NotEqual(t, root.ID, child.ID)

	root.Put("x", lisp.Int(1))
	v, ok := child.Get("x")
	require.True(t, ok)
	assert.Equal(t, 1, v.Int)

	child.Put("x", lisp.Int(2))
	v, _ = child.Get("x")
	assert.Equal(t, 2, v.Int)
	v, _ = root.Get("x")
	assert.Equal(t, 1, v.Int, "put must not modify the parent scope")

	_, ok = root.Get("y")
	assert.False(t, ok)
	_, err := child.Lookup("y")
	assert.True(t, lisp.IsKind(err, lisp.SymbolNotFound))

	child.Put("y", lisp.Nil())
	names := child.Symbols()
	sort.Strings(names)
	assert.Equal(t, []string{"x", "y"}, names)
}

func TestNewEnvBind(t *testing.T) {
	root := lisp.NewEnv(nil)
	for i, test := range []struct {
		formals []string
		args    []*lisp.LVal
		want    map[string]string
	}{
		{nil, nil, map[string]string{}},
		{[]string{"a", "b"}, []*lisp.LVal{lisp.Int(1), lisp.Int(2)}, map[string]string{"a": "1", "b": "2"}},
		{[]string{"a", "b"}, []*lisp.LVal{lisp.Int(1)}, map[string]string{"a": "1", "b": "nil"}},
		{[]string{"a"}, []*lisp.LVal{lisp.Int(1), lisp.Int(2)}, map[string]string{"a": "1"}},
		{[]string{"a", "&", "rest"}, []*lisp.LVal{lisp.Int(1), lisp.Int(2), lisp.Int(3)}, map[string]string{"a": "1", "rest": "(2 3)"}},
		{[]string{"a", "&", "rest"}, []*lisp.LVal{lisp.Int(1)}, map[string]string{"a": "1", "rest": "()"}},
		{[]string{"&", "rest"}, nil, map[string]string{"rest": "()"}},
	} {
		env, err := lisp.NewEnvBind(root, symbols(test.formals...), test.args)
		if !assert.NoError(t, err, "test %d", i) {
			continue
		}
		assert.Len(t, env.Scope, len(test.want), "test %d", i)
		for k, want := range test.want {
			v, ok := env.Scope[k]
			if assert.True(t, ok, "test %d: %s", i, k) {
				assert.Equal(t, want, v.String(), "test %d: %s", i, k)
			}
		}
	}

	_, err := lisp.NewEnvBind(root, symbols("a", "&"), nil)
	assert.True(t, lisp.IsKind(err, lisp.TypeError))
	_, err = lisp.NewEnvBind(root, []*lisp.LVal{lisp.Int(1)}, nil)
	assert.True(t, lisp.IsKind(err, lisp.TypeError))
}

func TestEnvRestArgsAreCopied(t *testing.T) {
	args := []*lisp.LVal{lisp.Int(1), lisp.Int(2)}
	env, err := lisp.NewEnvBind(lisp.NewEnv(nil), symbols("&", "xs"), args)
	require.NoError(t, err)
	args[0] = lisp.Int(100)
	v, _ := env.Get("xs")
	assert.Equal(t, "(1 2)", v.String())
}

func BenchmarkEnvGet(b *testing.B) {
	maltest.RunBenchmark(b, `
	  (def! f (fn* (n)
	    (if (= n 0) nil
	      (do
	        (let* (a0 0)
	        (let* (a1 1)
	        (let* (a2 2)
	        (let* (a3 3)
	        (let* (a4 4)
	        (+ a0 a1 a2 a3 a4))))))
	        (f (- n 1))))))
	  (f 1000)
	`)
}

func BenchmarkEnvFunCallBuiltin(b *testing.B) {
	maltest.RunBenchmark(b, `
	  (def! f (fn* (n) (if (= n 0) nil (do (+ 0 1 2 3 4 5 6 7 8 9) (f (- n 1))))))
	  (f 1000)
	`)
}

func BenchmarkEnvFunCallRecursion(b *testing.B) {
	maltest.RunBenchmark(b, `
	  (def! loopn (fn* (n fn) (if (<= n 0) ()
	    (do (loopn (- n 1) fn)
	        (fn n)))))
	  (loopn 1000 (fn* (x) x))
	`)
}

func BenchmarkEnvFunCallTailRec(b *testing.B) {
	maltest.RunBenchmark(b, `
	  (def! loopn (fn* (n fn) (if (<= n 0) ()
	    (do (fn n)
	        (loopn (- n 1) fn)))))
	  (loopn 1000 (fn* (x) x))
	`)
}
