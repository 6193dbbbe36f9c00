// Copyright © 2018 The ELPS authors

// Package lisplib is used to conveniently load the standard library for the
// mal environment
package lisplib

import (
	"bytes"
	"fmt"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib/libcore"
	"github.com/luthersystems/mal/lisp/lisplib/libhelp"
	"github.com/luthersystems/mal/lisp/lisplib/libio"
	"github.com/luthersystems/mal/parser"
)

// HostLanguage is the value of *host-language*.
const HostLanguage = "go"

// prelude is evaluated after the native builtins are installed.
const prelude = `
(def! not
  (with-meta
    (fn* (a) (if a false true))
    {:doc "Returns true if a is nil or false, otherwise false."}))

(def! load-file
  (with-meta
    (fn* (f) (eval (read-string (str "(do " (slurp f) "\nnil)"))))
    {:doc "Evaluates the forms in the named file in the root environment.  Returns nil."}))

(defmacro! cond
  (with-meta
    (fn* (& xs)
      (if (> (count xs) 0)
        (list 'if (first xs)
              (if (> (count xs) 1)
                (nth xs 1)
                (throw "odd number of forms to cond"))
              (cons 'cond (rest (rest xs))))))
    {:doc "Evaluates test and expression pairs in order and returns the value of the expression following the first true test."}))
`

// LoadLibrary installs the native builtins and the prelude into the root of
// env.  A parser is installed as the runtime's Reader if env has none.
func LoadLibrary(env *lisp.LEnv) error {
	root := env.Root()
	if root.Runtime.Reader == nil {
		root.Runtime.Reader = parser.NewReader()
	}
	loaders := []lisp.Loader{
		libcore.LoadPackage,
		libio.LoadPackage,
		libhelp.LoadPackage,
	}
	for _, load := range loaders {
		if err := load(root); err != nil {
			return err
		}
	}
	root.Put("*host-language*", lisp.String(HostLanguage))
	SetArgs(root, nil)
	_, err := root.LoadString("prelude", prelude)
	if err != nil {
		return fmt.Errorf("prelude: %w", err)
	}
	return nil
}

// SetArgs binds *ARGV* to a list of args.
func SetArgs(env *lisp.LEnv, args []string) {
	argv := make([]*lisp.LVal, len(args))
	for i, arg := range args {
		argv[i] = lisp.String(arg)
	}
	env.Root().Put("*ARGV*", lisp.List(argv...))
}

// NewDocEnv creates a standard environment with the library loaded, suitable
// for documentation queries.
func NewDocEnv() (*lisp.LEnv, error) {
	env := lisp.NewEnv(nil)
	err := env.Configure(
		lisp.WithReader(parser.NewReader()),
		lisp.WithStderr(&bytes.Buffer{}),
	)
	if err != nil {
		return nil, err
	}
	if err := LoadLibrary(env); err != nil {
		return nil, err
	}
	return env, nil
}
