// Copyright © 2018 The ELPS authors

package lisp

// LEnv is a lisp environment.  An LEnv is a scope mapping names to values
// plus a reference to its parent scope.  Scopes are shared by every closure
// and child scope created in them and are never re-parented, so environment
// chains can not form cycles.
type LEnv struct {
	Scope   map[string]*LVal
	Parent  *LEnv
	Runtime *Runtime
	ID      uint
}

// NewEnvRuntime initializes a new root LEnv using rt.  When rt is nil
// StandardRuntime() called to create a new Runtime for the returned LEnv.
func NewEnvRuntime(rt *Runtime) *LEnv {
	if rt == nil {
		rt = StandardRuntime()
	}
	if rt.Stack == nil {
		rt.Stack = &CallStack{}
	}
	return &LEnv{
		ID:      rt.GenEnvID(),
		Scope:   make(map[string]*LVal),
		Runtime: rt,
	}
}

// NewEnv returns a new LEnv whose parent is parent.  When parent is nil the
// returned LEnv is a root environment with a standard runtime.
func NewEnv(parent *LEnv) *LEnv {
	if parent == nil {
		return NewEnvRuntime(nil)
	}
	return &LEnv{
		ID:      parent.Runtime.GenEnvID(),
		Scope:   make(map[string]*LVal),
		Parent:  parent,
		Runtime: parent.Runtime,
	}
}

// NewEnvBind returns a child of parent binding formals to args positionally.
// The formal "&" binds the formal that follows it to a list of all remaining
// args.  Formals without a corresponding argument are bound to nil.
func NewEnvBind(parent *LEnv, formals []*LVal, args []*LVal) (*LEnv, error) {
	env := NewEnv(parent)
	for i := 0; i < len(formals); i++ {
		name := formals[i]
		if name.Type != LSymbol {
			return nil, Errorf(TypeError, "formal argument is not a symbol: %v", name.Type)
		}
		if name.Str == VarArgSymbol {
			if i+1 >= len(formals) || formals[i+1].Type != LSymbol {
				return nil, Errorf(TypeError, "%s must be followed by a symbol", VarArgSymbol)
			}
			var rest []*LVal
			if i < len(args) {
				rest = make([]*LVal, len(args)-i)
				copy(rest, args[i:])
			}
			env.Put(formals[i+1].Str, List(rest...))
			return env, nil
		}
		if i < len(args) {
			env.Put(name.Str, args[i])
		} else {
			env.Put(name.Str, Nil())
		}
	}
	return env, nil
}

// Put binds k to v in env.  Bindings in parent scopes are never modified.
// Put returns v.
func (env *LEnv) Put(k string, v *LVal) *LVal {
	env.Scope[k] = v
	return v
}

// Get returns the nearest binding of k, searching env and then each of its
// ancestors.
func (env *LEnv) Get(k string) (*LVal, bool) {
	for e := env; e != nil; e = e.Parent {
		if v, ok := e.Scope[k]; ok {
			return v, true
		}
	}
	return nil, false
}

// Lookup is like Get but returns a SymbolNotFound error when k is not bound.
func (env *LEnv) Lookup(k string) (*LVal, error) {
	v, ok := env.Get(k)
	if !ok {
		return nil, SymbolNotFoundError(k)
	}
	return v, nil
}

// Root returns the root environment of env.
func (env *LEnv) Root() *LEnv {
	for env.Parent != nil {
		env = env.Parent
	}
	return env
}

// Symbols returns the names bound in env and its ancestors.  Names shadowed
// by a nearer binding are returned once.
func (env *LEnv) Symbols() []string {
	seen := make(map[string]bool)
	var names []string
	for e := env; e != nil; e = e.Parent {
		for k := range e.Scope {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	return names
}

// AddBuiltins binds each builtin in env under its name.
func (env *LEnv) AddBuiltins(funs ...*LVal) {
	for _, f := range funs {
		env.Put(f.FunData().Name, f)
	}
}
