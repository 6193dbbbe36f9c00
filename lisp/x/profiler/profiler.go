// Package profiler provides lisp.Profiler implementations which annotate
// function application with trace spans, pprof labels or callgrind output.
package profiler

import (
	"fmt"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser/token"
)

// AnonymousFunName labels closures that were never bound with def!.
const AnonymousFunName = "<anonymous>"

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func() {
	return func() {}
}

// defaultFunName returns the name fun was bound to.
func defaultFunName(fun *lisp.LVal) string {
	fd := fun.FunData()
	if fd == nil {
		return ""
	}
	if fd.Name == "" {
		return AnonymousFunName
	}
	return fd.Name
}

// prettyFunName returns a pretty name and original name for a fun. If there is
// no pretty name, then the pretty name is the original name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	origLabel := defaultFunName(fun)
	if origLabel == "" {
		return "", ""
	}
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = p.funLabeler(p.runtime, fun)
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}

	return prettyLabel, origLabel
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(v *lisp.LVal) bool {
	return !p.enabled || defaultSkipFilter(v) || p.skipFilter != nil && p.skipFilter(v)
}

// Function kinds reported by annotators.
const (
	KindBuiltin  = "builtin"
	KindFunction = "function"
	KindMacro    = "macro"
)

// funKind classifies an applied function value.
func funKind(fun *lisp.LVal) string {
	switch {
	case fun.Type == lisp.LNative:
		return KindBuiltin
	case fun.IsMacro():
		return KindMacro
	}
	return KindFunction
}

// closureArity returns the number of fixed parameters of a closure and the
// name bound to its variadic arguments, if any.
func closureArity(fd *lisp.FunData) (int, string) {
	for i, f := range fd.Formals {
		if f.Str == lisp.VarArgSymbol {
			return i, fd.Rest()
		}
	}
	return len(fd.Formals), ""
}

// getSourceLoc returns the location of a closure's body.  Builtins have no
// source.
func getSourceLoc(fun *lisp.LVal) *token.Location {
	if fun.Source != nil {
		return fun.Source
	}
	fd := fun.FunData()
	if fd == nil || fd.Body == nil {
		return nil
	}
	return fd.Body.Source
}
