// Copyright © 2018 The ELPS authors

package lisp

import (
	"errors"
	"log"

	"github.com/luthersystems/mal/parser/token"
)

// Special operator symbols
const (
	DefSymbol              = "def!"
	DefMacroSymbol         = "defmacro!"
	LetSymbol              = "let*"
	DoSymbol               = "do"
	IfSymbol               = "if"
	FnSymbol               = "fn*"
	QuoteSymbol            = "quote"
	QuasiquoteSymbol       = "quasiquote"
	QuasiquoteExpandSymbol = "quasiquoteexpand"
	UnquoteSymbol          = "unquote"
	SpliceUnquoteSymbol    = "splice-unquote"
	MacroExpandSymbol      = "macroexpand"
	TrySymbol              = "try*"
	CatchSymbol            = "catch*"
)

// SpecialOps returns the names of all special operators.
func SpecialOps() []string {
	return []string{
		DefSymbol, DefMacroSymbol, LetSymbol, DoSymbol, IfSymbol, FnSymbol,
		QuoteSymbol, QuasiquoteSymbol, QuasiquoteExpandSymbol,
		MacroExpandSymbol, TrySymbol, CatchSymbol,
	}
}

// Eval evaluates ast in env.  Calls in tail position are evaluated without
// nesting so tail recursive functions run in constant stack space.
func (env *LEnv) Eval(ast *LVal) (_ *LVal, err error) {
	rt := env.Runtime
	if rt.MaxDepth > 0 && rt.depth >= rt.MaxDepth {
		lerr := rt.stackOverflow()
		rt.annotate(lerr, ast.Source)
		return nil, lerr
	}
	rt.depth++
	height := rt.Stack.Height()
	defer func() {
		rt.Stack.Truncate(height)
		rt.depth--
	}()
	return eval(env, ast)
}

func eval(env *LEnv, ast *LVal) (_ *LVal, err error) {
	var end func()
	pushed := false
	defer func() {
		if end != nil {
			end()
		}
		if err != nil {
			env.Runtime.annotate(err, ast.Source)
		}
	}()
	for {
		if ast.Type != LList {
			return evalAST(env, ast)
		}
		expanded, err := env.MacroExpand(ast)
		if err != nil {
			return nil, err
		}
		ast = expanded
		if ast.Type != LList {
			continue
		}
		if len(ast.Cells) == 0 {
			return ast, nil
		}
		head, args := ast.Cells[0], ast.Cells[1:]
		if head.Type == LSymbol {
			switch head.Str {
			case DefSymbol:
				return evalDef(env, args, false)
			case DefMacroSymbol:
				return evalDef(env, args, true)
			case LetSymbol:
				lenv, body, err := evalLet(env, args)
				if err != nil {
					return nil, err
				}
				env, ast = lenv, body
				continue
			case DoSymbol:
				if len(args) == 0 {
					return Nil(), nil
				}
				for _, form := range args[:len(args)-1] {
					_, err = env.Eval(form)
					if err != nil {
						return nil, err
					}
				}
				ast = args[len(args)-1]
				continue
			case IfSymbol:
				if len(args) < 2 {
					return nil, Errorf(TypeError, "if requires a condition and a then-branch")
				}
				cond, err := env.Eval(args[0])
				if err != nil {
					return nil, err
				}
				switch {
				case cond.IsTrue():
					ast = args[1]
				case len(args) > 2:
					ast = args[2]
				default:
					return Nil(), nil
				}
				continue
			case FnSymbol:
				return evalFn(env, args)
			case QuoteSymbol:
				if len(args) < 1 {
					return nil, Errorf(TypeError, "quote requires an argument")
				}
				return args[0], nil
			case QuasiquoteExpandSymbol:
				if len(args) < 1 {
					return nil, Errorf(TypeError, "quasiquoteexpand requires an argument")
				}
				return Quasiquote(args[0]), nil
			case QuasiquoteSymbol:
				if len(args) < 1 {
					return nil, Errorf(TypeError, "quasiquote requires an argument")
				}
				ast = Quasiquote(args[0])
				continue
			case MacroExpandSymbol:
				if len(args) < 1 {
					return nil, Errorf(TypeError, "macroexpand requires an argument")
				}
				return env.MacroExpand(args[0])
			case TrySymbol:
				if len(args) < 1 {
					return nil, Errorf(TypeError, "try* requires an argument")
				}
				v, err := env.Eval(args[0])
				if err == nil || len(args) < 2 {
					return v, err
				}
				clause := args[1]
				if !isCatchClause(clause) {
					return nil, Errorf(TypeError, "malformed %s clause: %s", CatchSymbol, Render(clause, true))
				}
				catch := NewEnv(env)
				catch.Put(clause.Cells[1].Str, ErrorPayload(err))
				env, ast = catch, clause.Cells[2]
				continue
			}
		}

		cells := make([]*LVal, len(ast.Cells))
		for i, form := range ast.Cells {
			cells[i], err = env.Eval(form)
			if err != nil {
				return nil, err
			}
		}
		fun, fargs := cells[0], cells[1:]
		switch fun.Type {
		case LNative:
			return env.callBuiltin(ast.Source, fun, fargs)
		case LFun:
			fd := fun.FunData()
			fenv, err := NewEnvBind(fd.Env, fd.Formals, fargs)
			if err != nil {
				return nil, err
			}
			if end != nil {
				end()
			}
			end = env.trace(fun)
			if pushed {
				env.Runtime.Stack.Replace(ast.Source, fun)
			} else {
				env.Runtime.Stack.Push(ast.Source, fun)
				pushed = true
			}
			env, ast = fenv, fd.Body
		default:
			return nil, Errorf(TypeError, "%s is not a function", Render(fun, true))
		}
	}
}

// evalAST evaluates a form which is not a list.
func evalAST(env *LEnv, ast *LVal) (*LVal, error) {
	switch ast.Type {
	case LSymbol:
		return env.Lookup(ast.Str)
	case LVector:
		cells := make([]*LVal, len(ast.Cells))
		for i, form := range ast.Cells {
			var err error
			cells[i], err = env.Eval(form)
			if err != nil {
				return nil, err
			}
		}
		return Vector(cells...), nil
	case LHashMap:
		m := make(map[string]*LVal, len(ast.Map))
		for _, k := range SortedMapKeys(ast) {
			v, err := env.Eval(ast.Map[k])
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
		return HashMap(m), nil
	default:
		return ast, nil
	}
}

func evalDef(env *LEnv, args []*LVal, macro bool) (*LVal, error) {
	op := DefSymbol
	if macro {
		op = DefMacroSymbol
	}
	if len(args) != 2 {
		return nil, Errorf(TypeError, "%s requires a symbol and a value", op)
	}
	if args[0].Type != LSymbol {
		return nil, Errorf(TypeError, "%s key is not a symbol: %v", op, args[0].Type)
	}
	v, err := env.Eval(args[1])
	if err != nil {
		return nil, err
	}
	if macro {
		if v.Type != LFun {
			return nil, Errorf(TypeError, "%s value is not a function: %v", op, v.Type)
		}
		v = v.MacroCopy()
	}
	if fd := v.FunData(); fd != nil && fd.Name == "" {
		fd.Name = args[0].Str
	}
	return env.Put(args[0].Str, v), nil
}

func evalLet(env *LEnv, args []*LVal) (*LEnv, *LVal, error) {
	if len(args) < 2 {
		return nil, nil, Errorf(TypeError, "%s requires bindings and a body", LetSymbol)
	}
	bindings := args[0]
	if !bindings.IsSeq() {
		return nil, nil, Errorf(TypeError, "%s bindings are not a sequence: %v", LetSymbol, bindings.Type)
	}
	if len(bindings.Cells)%2 != 0 {
		return nil, nil, Errorf(TypeError, "%s bindings have an odd number of forms", LetSymbol)
	}
	child := NewEnv(env)
	for i := 0; i < len(bindings.Cells); i += 2 {
		sym := bindings.Cells[i]
		if sym.Type != LSymbol {
			return nil, nil, Errorf(TypeError, "%s binding is not a symbol: %v", LetSymbol, sym.Type)
		}
		v, err := child.Eval(bindings.Cells[i+1])
		if err != nil {
			return nil, nil, err
		}
		child.Put(sym.Str, v)
	}
	return child, args[1], nil
}

func evalFn(env *LEnv, args []*LVal) (*LVal, error) {
	if len(args) < 1 {
		return nil, Errorf(TypeError, "%s requires a parameter list", FnSymbol)
	}
	params := args[0]
	if !params.IsSeq() {
		return nil, Errorf(TypeError, "%s parameters are not a sequence: %v", FnSymbol, params.Type)
	}
	for _, p := range params.Cells {
		if p.Type != LSymbol {
			return nil, Errorf(TypeError, "%s parameter is not a symbol: %v", FnSymbol, p.Type)
		}
	}
	body := Nil()
	if len(args) > 1 {
		body = args[1]
	}
	return Lambda(env, params.Cells, body), nil
}

func isCatchClause(v *LVal) bool {
	return v.Type == LList &&
		len(v.Cells) >= 3 &&
		v.Cells[0].IsSymbol(CatchSymbol) &&
		v.Cells[1].Type == LSymbol
}

// MacroExpand expands ast while it is a call to a macro and returns the
// resulting form unevaluated.
func (env *LEnv) MacroExpand(ast *LVal) (*LVal, error) {
	for {
		mac := env.macroFor(ast)
		if mac == nil {
			return ast, nil
		}
		var err error
		ast, err = env.FunCall(mac, ast.Cells[1:])
		if err != nil {
			return nil, err
		}
	}
}

func (env *LEnv) macroFor(ast *LVal) *LVal {
	if ast.Type != LList || len(ast.Cells) == 0 || ast.Cells[0].Type != LSymbol {
		return nil
	}
	v, ok := env.Get(ast.Cells[0].Str)
	if !ok || !v.IsMacro() {
		return nil
	}
	return v
}

// FunCall invokes fun with args.  Builtins and closures (including macros)
// are supported.  FunCall is the entry point for builtins which call back into
// lisp functions.
func (env *LEnv) FunCall(fun *LVal, args []*LVal) (*LVal, error) {
	switch fun.Type {
	case LNative:
		return env.callBuiltin(nil, fun, args)
	case LFun:
		fd := fun.FunData()
		fenv, err := NewEnvBind(fd.Env, fd.Formals, args)
		if err != nil {
			return nil, err
		}
		stack := env.Runtime.Stack
		height := stack.Height()
		stack.Push(nil, fun)
		defer stack.Truncate(height)
		defer env.trace(fun)()
		return fenv.Eval(fd.Body)
	default:
		return nil, Errorf(TypeError, "%s is not a function", Render(fun, true))
	}
}

func (env *LEnv) callBuiltin(src *token.Location, fun *LVal, args []*LVal) (*LVal, error) {
	fd := fun.FunData()
	stack := env.Runtime.Stack
	height := stack.Height()
	stack.Push(src, fun)
	defer stack.Truncate(height)
	defer env.trace(fun)()
	v, err := fd.Builtin(env, args)
	if err != nil {
		env.Runtime.annotate(err, src)
		return nil, err
	}
	if v == nil {
		log.Panicf("builtin %s returned no value", fd.Name)
	}
	return v, nil
}

// annotate records the location and call stack of an error the first time
// it is seen.
func (r *Runtime) annotate(err error, src *token.Location) {
	var lerr *ErrorVal
	if !errors.As(err, &lerr) {
		return
	}
	if lerr.Source == nil {
		lerr.Source = src
	}
	if lerr.Stack == nil {
		lerr.Stack = r.Stack.Copy()
	}
}
