package profiler

import (
	"regexp"

	"github.com/luthersystems/mal/lisp"
)

type SkipFilter func(fun *lisp.LVal) bool

func defaultSkipFilter(fun *lisp.LVal) bool {
	switch fun.Type {
	case lisp.LFun, lisp.LNative:
		return false
	default:
		return true
	}
}

// SkipBuiltins is a SkipFilter which only traces closures.
func SkipBuiltins(fun *lisp.LVal) bool {
	return fun.Type == lisp.LNative
}

// WithDocFilter filters to only include spans for functions with docs that
// denote tracing.
func WithDocFilter() Option {
	return WithSkipFilter(docSkipFilter)
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// DocTrace is a magic string used to enable tracing in a profiler configured
// WithDocFilter. All functions with a docstring that contains this string
// will be traced.  Closures carry docstrings in their :doc metadata.
const DocTrace = "@trace"

var docTraceRegExp = regexp.MustCompile(DocTrace)

func docSkipFilter(fun *lisp.LVal) bool {
	docStr := fun.Docstring()
	if docStr == "" {
		return true
	}
	// do not skip docs that include trace constant
	return !docTraceRegExp.MatchString(docStr)
}
