// Copyright © 2018 The ELPS authors

package libutil

import (
	"strings"

	"github.com/luthersystems/mal/lisp"
)

// Formals returns a list of formal argument names.  The name "&" marks the
// following name as the variadic tail.
func Formals(names ...string) []string {
	return names
}

func Function(name string, formals []string, fun lisp.LBuiltin) *Builtin {
	return &Builtin{name, formals, fun, ""}
}

func FunctionDoc(name string, formals []string, fun lisp.LBuiltin, docs string) *Builtin {
	return &Builtin{name, formals, fun, docs}
}

type Builtin struct {
	name    string
	formals []string
	fun     lisp.LBuiltin
	docs    string
}

func (fun *Builtin) Name() string {
	return fun.name
}

func (fun *Builtin) Formals() []string {
	return fun.formals
}

func (fun *Builtin) Docstring() string {
	return fun.docs
}

// Eval checks the number of args against the builtin's formals and calls it.
func (fun *Builtin) Eval(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	if err := CheckArity(fun.name, fun.formals, args); err != nil {
		return nil, err
	}
	return fun.fun(env, args)
}

// Value returns the lisp value for fun.
func (fun *Builtin) Value() *lisp.LVal {
	v := lisp.Builtin(fun.name, fun.Eval, fun.docs)
	formals := make([]*lisp.LVal, len(fun.formals))
	for i, name := range fun.formals {
		formals[i] = lisp.Symbol(name)
	}
	v.FunData().Formals = formals
	return v
}

// AddBuiltins binds each of funs in env.
func AddBuiltins(env *lisp.LEnv, funs []*Builtin) {
	for _, fn := range funs {
		env.AddBuiltins(fn.Value())
	}
}

// CheckArity returns a TypeError if args can not be bound to formals.
func CheckArity(name string, formals []string, args []*lisp.LVal) error {
	n, variadic := arity(formals)
	switch {
	case len(args) < n, !variadic && len(args) > n:
		want := "exactly"
		if variadic {
			want = "at least"
		}
		return lisp.Errorf(lisp.TypeError, "%s: expected %s %d arguments (got %d)", name, want, n, len(args))
	}
	return nil
}

func arity(formals []string) (int, bool) {
	for i, f := range formals {
		if f == lisp.VarArgSymbol {
			return i, true
		}
	}
	return len(formals), false
}

// Signature renders a call signature for a function named name.
func Signature(name string, formals []*lisp.LVal) string {
	var b strings.Builder
	b.WriteString("(")
	b.WriteString(name)
	for _, f := range formals {
		b.WriteString(" ")
		b.WriteString(f.Str)
	}
	b.WriteString(")")
	return b.String()
}
