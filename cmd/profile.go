// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sort"
	"sync"
	"time"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/x/profiler"
	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const (
	profileNone       = "none"
	profileOtel       = "otel"
	profileOpenCensus = "opencensus"
	profilePprof      = "pprof"
	profileCallgrind  = "callgrind"
)

func validProfile(name string) bool {
	switch name {
	case profileNone, profileOtel, profileOpenCensus, profilePprof, profileCallgrind:
		return true
	}
	return false
}

// startProfile enables the configured profiler on env.  The returned function
// completes the profile.  Span based profiles write a summary to w when they
// complete.
func (s *settings) startProfile(env *lisp.LEnv, w io.Writer) (func() error, error) {
	switch s.profile {
	case profileOtel:
		return startOtelProfile(env.Runtime, w)
	case profileOpenCensus:
		return startOpenCensusProfile(env.Runtime, w)
	case profilePprof:
		return startPprofProfile(env.Runtime, s.profileFileOr("mal.pprof"))
	case profileCallgrind:
		return startCallgrindProfile(env.Runtime, s.profileFileOr(fmt.Sprintf("callgrind.out.%d", os.Getpid())))
	}
	return func() error { return nil }, nil
}

func (s *settings) profileFileOr(name string) string {
	if s.profileFile != "" {
		return s.profileFile
	}
	return name
}

func startOtelProfile(rt *lisp.Runtime, w io.Writer) (func() error, error) {
	summary := newSpanSummary("otel")
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithSyncer(&otelSummaryExporter{summary: summary}),
	)
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	p := profiler.NewOpenTelemetryAnnotator(rt, context.Background())
	if err := p.Enable(); err != nil {
		otel.SetTracerProvider(prev)
		return nil, err
	}
	return func() error {
		defer otel.SetTracerProvider(prev)
		if err := p.Complete(); err != nil {
			return err
		}
		if err := tp.Shutdown(context.Background()); err != nil {
			return err
		}
		return summary.write(w)
	}, nil
}

func startOpenCensusProfile(rt *lisp.Runtime, w io.Writer) (func() error, error) {
	summary := newSpanSummary("opencensus")
	exp := &ocSummaryExporter{summary: summary}
	octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
	octrace.RegisterExporter(exp)
	p := profiler.NewOpenCensusAnnotator(rt, context.Background())
	if err := p.Enable(); err != nil {
		octrace.UnregisterExporter(exp)
		return nil, err
	}
	return func() error {
		defer octrace.UnregisterExporter(exp)
		if err := p.Complete(); err != nil {
			return err
		}
		return summary.write(w)
	}, nil
}

func startPprofProfile(rt *lisp.Runtime, path string) (func() error, error) {
	f, err := os.Create(path) //nolint:gosec // user-configured profile output
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	p := profiler.NewPprofAnnotator(rt, context.Background())
	if err := p.Enable(); err != nil {
		pprof.StopCPUProfile()
		_ = f.Close()
		return nil, err
	}
	return func() error {
		err := p.Complete()
		pprof.StopCPUProfile()
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}

func startCallgrindProfile(rt *lisp.Runtime, path string) (func() error, error) {
	p := profiler.NewCallgrindProfiler(rt)
	if err := p.SetFile(path); err != nil {
		return nil, err
	}
	if err := p.Enable(); err != nil {
		return nil, err
	}
	return p.Complete, nil
}

// spanSummary aggregates completed spans by name.
type spanSummary struct {
	mu    sync.Mutex
	name  string
	spans map[string]*spanStat
}

type spanStat struct {
	name  string
	count int
	total time.Duration
}

func newSpanSummary(name string) *spanSummary {
	return &spanSummary{
		name:  name,
		spans: make(map[string]*spanStat),
	}
}

func (s *spanSummary) add(name string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stat, ok := s.spans[name]
	if !ok {
		stat = &spanStat{name: name}
		s.spans[name] = stat
	}
	stat.count++
	stat.total += d
}

// write prints one line per span name ordered by total duration.
func (s *spanSummary) write(w io.Writer) error {
	s.mu.Lock()
	stats := make([]*spanStat, 0, len(s.spans))
	for _, stat := range s.spans {
		stats = append(stats, stat)
	}
	s.mu.Unlock()
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].total != stats[j].total {
			return stats[i].total > stats[j].total
		}
		return stats[i].name < stats[j].name
	})
	if _, err := fmt.Fprintf(w, "%s profile: %d functions\n", s.name, len(stats)); err != nil {
		return err
	}
	for _, stat := range stats {
		_, err := fmt.Fprintf(w, "%8d %12s  %s\n", stat.count, stat.total.Round(time.Microsecond), stat.name)
		if err != nil {
			return err
		}
	}
	return nil
}

type otelSummaryExporter struct {
	summary *spanSummary
}

var _ sdktrace.SpanExporter = (*otelSummaryExporter)(nil)

func (e *otelSummaryExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, span := range spans {
		e.summary.add(span.Name(), span.EndTime().Sub(span.StartTime()))
	}
	return nil
}

func (e *otelSummaryExporter) Shutdown(context.Context) error {
	return nil
}

type ocSummaryExporter struct {
	summary *spanSummary
}

var _ octrace.Exporter = (*ocSummaryExporter)(nil)

func (e *ocSummaryExporter) ExportSpan(s *octrace.SpanData) {
	e.summary.add(s.Name, s.EndTime.Sub(s.StartTime))
}
