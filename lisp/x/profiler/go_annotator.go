package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/mal/lisp"
)

// pprofAnnotator labels the current goroutine with the function being
// applied and its kind, so CPU profiles can be broken down with
// `go tool pprof -tagfocus`.  It does not start pprof itself.  pprof samples
// at a fixed 100Hz so short programs produce few labelled samples.
type pprofAnnotator struct {
	profiler
	root context.Context
	ctx  context.Context
}

var _ lisp.Profiler = &pprofAnnotator{}

// NewPprofAnnotator returns a profiler which sets pprof goroutine labels.
// Labels carried by parentContext are kept; a nil parentContext means
// context.Background.
func NewPprofAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &pprofAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		root: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.root == nil {
		p.root = context.Background()
	}
	p.ctx = p.root
	return p.profiler.Enable()
}

// Complete restores the labels of the parent context.
func (p *pprofAnnotator) Complete() error {
	p.ctx = p.root
	if p.ctx != nil {
		pprof.SetGoroutineLabels(p.ctx)
	}
	return nil
}

func (p *pprofAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, _ := p.prettyFunName(fun)
	parent := p.ctx
	p.ctx = pprof.WithLabels(parent, pprof.Labels(
		"function", label,
		"kind", funKind(fun),
	))
	// the evaluator does not run calls inside pprof.Do callbacks, so the
	// goroutine labels are swapped directly
	pprof.SetGoroutineLabels(p.ctx)
	return func() {
		p.ctx = parent
		pprof.SetGoroutineLabels(parent)
	}
}
