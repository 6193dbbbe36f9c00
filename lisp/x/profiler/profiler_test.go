package profiler_test

import (
	"io"
	"testing"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib"
	"github.com/stretchr/testify/require"
)

const testLisp = `
(def! add-it
  (with-meta (fn* (x y) (+ x y))
    {:doc "Adds x and y. @trace{ Add It }"}))
(def! add-it-again
  (with-meta (fn* (x y) (add-it x y))
    {:doc "@trace{Add It Again}"}))
(def! recurse-it
  (fn* (x)
    (if (< x 4)
      (recurse-it (- x 1))
      (add-it x 3))))
(def! print-it (fn* (x) (do (prn x) x)))
(print-it (add-it-again (add-it 3 (recurse-it 5)) 8))
`

// newEnv returns an environment with the standard library loaded.  Profilers
// should be enabled after the library is loaded so the prelude is not traced.
func newEnv(t testing.TB) *lisp.LEnv {
	t.Helper()
	env := lisp.NewEnv(nil)
	require.NoError(t, env.Configure(lisp.WithStdout(io.Discard)))
	require.NoError(t, lisplib.LoadLibrary(env))
	return env
}

func runTestLisp(t testing.TB, env *lisp.LEnv) {
	t.Helper()
	v, err := env.LoadString("test.mal", testLisp)
	require.NoError(t, err)
	require.Equal(t, "19", v.String())
}
