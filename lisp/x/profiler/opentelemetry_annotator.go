package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/mal/lisp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context key.
	ContextOpenTelemetryTracerKey contextKey = "otelParentTracer"

	// DefaultTracerName names the tracer used when the parent context does
	// not carry one.
	DefaultTracerName = "mal"
)

// Span attributes describing the applied function.
const (
	AttrFunctionKind  = attribute.Key("mal.function.kind")
	AttrFunctionArity = attribute.Key("mal.function.arity")
	AttrFunctionRest  = attribute.Key("mal.function.rest")
)

var _ lisp.Profiler = &otelAnnotator{}

// otelAnnotator nests spans the way calls nest during evaluation.  Spans
// still open when the profile completes (after an error unwound the
// evaluator) are ended by Complete.
type otelAnnotator struct {
	profiler
	root context.Context
	ctx  context.Context
	open []trace.Span
}

// NewOpenTelemetryAnnotator returns a profiler which starts a span for each
// function application.  Spans are created by the global tracer provider as
// children of any span in parentContext.
func NewOpenTelemetryAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) lisp.Profiler {
	p := &otelAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		root: parentContext,
		ctx:  parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	p.runtime.Profiler = p
	if p.root == nil {
		return errors.New("opentelemetry annotator needs a parent context")
	}
	return p.profiler.Enable()
}

func (p *otelAnnotator) Complete() error {
	p.closeTo(0)
	p.ctx = p.root
	return nil
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = DefaultTracerName
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (p *otelAnnotator) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, name := p.prettyFunName(fun)
	parent := p.ctx
	ctx, span := contextTracer(parent).Start(parent, label,
		trace.WithAttributes(funAttributes(fun, name)...))
	p.ctx = ctx
	depth := len(p.open)
	p.open = append(p.open, span)
	return func() {
		p.closeTo(depth)
		p.ctx = parent
	}
}

// closeTo ends open spans above depth, innermost first.
func (p *otelAnnotator) closeTo(depth int) {
	for len(p.open) > depth {
		n := len(p.open) - 1
		p.open[n].End()
		p.open[n] = nil
		p.open = p.open[:n]
	}
}

func funAttributes(fun *lisp.LVal, name string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(name),
		AttrFunctionKind.String(funKind(fun)),
	}
	if fun.Type == lisp.LFun {
		arity, rest := closureArity(fun.FunData())
		attrs = append(attrs, AttrFunctionArity.Int(arity))
		if rest != "" {
			attrs = append(attrs, AttrFunctionRest.String(rest))
		}
	}
	if loc := getSourceLoc(fun); loc != nil {
		path := loc.Path
		if path == "" {
			path = loc.File
		}
		attrs = append(attrs,
			semconv.CodeFilepath(path),
			semconv.CodeLineNumber(loc.Line),
			semconv.CodeColumn(loc.Col),
		)
	}
	return attrs
}
