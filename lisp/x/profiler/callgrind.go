package profiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/parser/token"
)

// errWriter wraps an io.Writer and captures the first write error,
// short-circuiting subsequent writes after a failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

func (ew *errWriter) print(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprint(ew.w, s)
}

// CallgrindProfiler builds Callgrind files, in the manner of XDebug.  The
// resulting files can be opened in KCacheGrind or QCacheGrind.
type CallgrindProfiler struct {
	profiler
	sync.Mutex
	writer    io.Writer
	closer    io.Closer
	writeErr  error
	startTime time.Time
	refs      map[string]int
	current   *callRef
}

var _ lisp.Profiler = &CallgrindProfiler{}

// NewCallgrindProfiler returns a new Callgrind profiler installed in runtime.
// An output must be set with SetFile or SetWriter before the profiler is
// enabled.
func NewCallgrindProfiler(runtime *lisp.Runtime, opts ...Option) *CallgrindProfiler {
	p := new(CallgrindProfiler)
	p.runtime = runtime
	runtime.Profiler = p

	p.applyConfigs(opts...)
	return p
}

// Represents something that got called
type callRef struct {
	start       time.Time
	prev        *callRef
	name        string
	children    []*callRef
	duration    time.Duration
	startMemory uint64
	endMemory   uint64
	file        string
	line        int
}

func (p *CallgrindProfiler) Enable() error {
	p.Lock()
	if p.writer == nil {
		p.Unlock()
		return errors.New("no output set in profiler")
	}
	w := &errWriter{w: p.writer}
	w.printf("version: 1\ncreator: mal %s (Go %s)\n", lisp.Version, runtime.Version())
	w.printf("cmd: Eval\npart: 1\npositions: line\n\n")
	w.printf("events: Time_(ns) Memory_(bytes)\n\n")
	if w.err != nil {
		p.Unlock()
		return w.err
	}
	p.current = nil
	p.startTime = time.Now()
	p.refs = make(map[string]int)
	p.Unlock()
	p.incrementCallRef("ENTRYPOINT", &token.Location{
		File: "-",
		Path: "-",
	})
	return p.profiler.Enable()
}

// SetFile creates filename and directs profile output to it.
func (p *CallgrindProfiler) SetFile(filename string) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	f, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	p.writer = f
	p.closer = f
	return nil
}

// SetWriter directs profile output to w.  The caller is responsible for
// closing w.
func (p *CallgrindProfiler) SetWriter(w io.Writer) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.writer = w
	p.closer = nil
	return nil
}

func (p *CallgrindProfiler) Complete() error {
	p.Lock()
	defer p.Unlock()
	if !p.enabled {
		return errors.New("profiler not enabled")
	}
	p.enabled = false
	if p.writeErr != nil {
		return p.writeErr
	}
	root := p.current
	for root.prev != nil {
		root = root.prev
	}
	p.current = nil
	root.finish()
	w := &errWriter{w: p.writer}
	p.writeCost(w, root)
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	w.printf("summary %d %d\n\n", time.Since(p.startTime).Nanoseconds(), ms.TotalAlloc)
	if w.err != nil {
		return w.err
	}
	if p.closer != nil {
		return p.closer.Close()
	}
	return nil
}

// writeCost writes the cost block of a completed call followed by the
// inclusive cost of each call it made.
func (p *CallgrindProfiler) writeCost(w *errWriter, ref *callRef) {
	if ref.file != "" {
		w.printf("fl=%s\n", p.getRef(ref.file))
	}
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("%d %d %d\n", ref.line, ref.duration, ref.memory())
	for _, callee := range ref.children {
		w.printf("cfl=%s\n", p.getRef(callee.file))
		w.printf("cfn=%s\n", p.getRef(callee.name))
		w.print("calls=1 0 0\n")
		w.printf("%d %d %d\n", callee.line, callee.duration, callee.memory())
	}
	w.print("\n")
}

func (p *CallgrindProfiler) getRef(name string) string {
	if ref, ok := p.refs[name]; ok {
		return fmt.Sprintf("(%d)", ref)
	}
	n := len(p.refs) + 1
	p.refs[name] = n
	return fmt.Sprintf("(%d) %s", n, name)
}

func (p *CallgrindProfiler) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	prettyLabel, _ := p.prettyFunName(fun)
	// Mark the time and point of entry.  Unlike the runtime's call stack
	// this records callees, not callers.
	p.incrementCallRef(prettyLabel, getSourceLoc(fun))

	return p.end
}

func (p *CallgrindProfiler) incrementCallRef(name string, loc *token.Location) *callRef {
	p.Lock()
	defer p.Unlock()
	frameRef := new(callRef)
	frameRef.name = name
	if loc != nil {
		frameRef.file = loc.File
		frameRef.line = loc.Line
	}
	if p.current != nil {
		frameRef.prev = p.current
		frameRef.prev.children = append(frameRef.prev.children, frameRef)
	}
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	frameRef.startMemory = ms.TotalAlloc
	frameRef.start = time.Now()
	p.current = frameRef
	return frameRef
}

func (p *CallgrindProfiler) end() {
	p.Lock()
	defer p.Unlock()
	if !p.enabled || p.current == nil || p.writeErr != nil {
		return
	}
	ref := p.current
	p.current = ref.prev
	ref.finish()
	w := &errWriter{w: p.writer}
	p.writeCost(w, ref)
	if w.err != nil {
		p.writeErr = w.err
	}
}

// finish records the elapsed time and allocation of a returning call.
func (ref *callRef) finish() {
	ref.duration = time.Since(ref.start)
	if ref.duration == 0 {
		ref.duration = 1
	}
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	ref.endMemory = ms.TotalAlloc
}

func (ref *callRef) memory() uint64 {
	if ref.endMemory < ref.startMemory {
		return 0
	}
	return ref.endMemory - ref.startMemory
}
