// Copyright © 2018 The ELPS authors

package lisp

// Version is the interpreter version reported by profilers and the REPL.
const Version = "1.0"

// Profiler observes function application.
type Profiler interface {
	// Is the profiler enabled?
	IsEnabled() bool
	// Enable the profiler
	Enable() error
	// End the profiling session and output summary lines
	Complete() error
	// Start marks the application of fun and returns a function marking its
	// end.  A tail call ends the span of the call it replaces.
	Start(fun *LVal) func()
}

func (env *LEnv) trace(fun *LVal) func() {
	if env.Runtime.Profiler == nil || !env.Runtime.Profiler.IsEnabled() {
		return func() {}
	}
	return env.Runtime.Profiler.Start(fun)
}
