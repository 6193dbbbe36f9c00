package profiler_test

import (
	"context"
	"testing"

	"github.com/luthersystems/mal/lisp/x/profiler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTracing(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()

	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)
	return exporter
}

func TestNewOpenTelemetryAnnotator(t *testing.T) {
	exporter := setupTracing(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	assert.NoError(t, ppa.Enable())
	assert.Same(t, ppa, env.Runtime.Profiler)
	runTestLisp(t, env)
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	assert.GreaterOrEqual(t, len(spans), 3, "Expected at least three spans")

	ids := make(map[string]string)
	for _, span := range spans {
		ids[span.SpanContext.SpanID().String()] = span.Name
	}
	var names []string
	var plusParents []string
	for _, span := range spans {
		names = append(names, span.Name)
		if span.Name == "+" {
			plusParents = append(plusParents, ids[span.Parent.SpanID().String()])
		}
	}
	assert.Contains(t, names, "add-it")
	assert.Contains(t, names, "recurse-it")
	assert.Contains(t, names, "prn")
	assert.NotEmpty(t, plusParents)
	for _, parent := range plusParents {
		assert.Equal(t, "add-it", parent)
	}
}

func spanAttrs(span tracetest.SpanStub) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func findSpan(t *testing.T, spans tracetest.SpanStubs, name string) tracetest.SpanStub {
	t.Helper()
	for _, span := range spans {
		if span.Name == name {
			return span
		}
	}
	require.Failf(t, "span not found", "no span named %q", name)
	return tracetest.SpanStub{}
}

func TestOpenTelemetryAnnotatorAttributes(t *testing.T) {
	exporter := setupTracing(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	runTestLisp(t, env)
	_, err := env.LoadString("rest.mal", `(def! first-of (fn* (a & more) a)) (first-of 1 2 3)`)
	require.NoError(t, err)
	require.NoError(t, ppa.Complete())
	spans := exporter.GetSpans()

	attrs := spanAttrs(findSpan(t, spans, "add-it"))
	assert.Equal(t, profiler.KindFunction, attrs[profiler.AttrFunctionKind].AsString())
	assert.Equal(t, int64(2), attrs[profiler.AttrFunctionArity].AsInt64())
	assert.NotContains(t, attrs, profiler.AttrFunctionRest)
	assert.Equal(t, "test.mal", attrs["code.filepath"].AsString())
	assert.Equal(t, int64(3), attrs["code.lineno"].AsInt64())

	attrs = spanAttrs(findSpan(t, spans, "+"))
	assert.Equal(t, profiler.KindBuiltin, attrs[profiler.AttrFunctionKind].AsString())
	assert.NotContains(t, attrs, profiler.AttrFunctionArity)
	assert.NotContains(t, attrs, attribute.Key("code.filepath"))

	attrs = spanAttrs(findSpan(t, spans, "first-of"))
	assert.Equal(t, int64(1), attrs[profiler.AttrFunctionArity].AsInt64())
	assert.Equal(t, "more", attrs[profiler.AttrFunctionRest].AsString())
}

func TestOpenTelemetryAnnotatorCompleteEndsOpenSpans(t *testing.T) {
	exporter := setupTracing(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	_, err := env.LoadString("test.mal", `(def! f (fn* (x) x))`)
	require.NoError(t, err)
	f, ok := env.Get("f")
	require.True(t, ok)
	plus, ok := env.Get("+")
	require.True(t, ok)

	ppa.Start(f)
	ppa.Start(plus)
	assert.Empty(t, exporter.GetSpans())
	require.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "+", spans[0].Name)
	assert.Equal(t, "f", spans[1].Name)
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func TestNewOpenTelemetryAnnotatorNoContext(t *testing.T) {
	env := newEnv(t)
	//nolint:staticcheck
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, nil)
	assert.Error(t, ppa.Enable())
}

func TestNewOpenTelemetryAnnotatorSkip(t *testing.T) {
	exporter := setupTracing(t)

	env := newEnv(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background(),
		profiler.WithDocFilter(),
		profiler.WithDocLabeler())
	assert.NoError(t, ppa.Enable())
	runTestLisp(t, env)
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Equal(t, 4, len(spans), "Expected selective spans")
	assert.Equal(t, "Add_It", spans[0].Name, "Expected custom label")
	assert.Equal(t, "Add_It", spans[1].Name, "Expected custom label")
	assert.Equal(t, "Add_It_Again", spans[2].Name, "Expected custom label")
	assert.Equal(t, "Add_It", spans[3].Name, "Expected custom label")

	// tail calls replace the span of the caller
	assert.False(t, spans[3].Parent.IsValid())
}
