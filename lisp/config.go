// Copyright © 2018 The ELPS authors

package lisp

import (
	"io"
)

// Config is a function that configures a root environment or its runtime.
type Config func(env *LEnv) error

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *LEnv) error {
		env.Runtime.Reader = r
		return nil
	}
}

// WithStdout returns a Config that makes environments write program output
// to w instead of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(env *LEnv) error {
		env.Runtime.Stdout = w
		return nil
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) error {
		env.Runtime.Stderr = w
		return nil
	}
}

// WithLineReader returns a Config that makes the readline builtin read from
// lr.
func WithLineReader(lr LineReader) Config {
	return func(env *LEnv) error {
		env.Runtime.LineReader = lr
		return nil
	}
}

// WithMaxDepth returns a Config that will prevent an execution environment
// from nesting non-tail evaluation deeper than n.  Tail calls never count
// against the limit.  A value of 0 disables the limit.
func WithMaxDepth(n int) Config {
	return func(env *LEnv) error {
		if n < 0 {
			return Errorf(TypeError, "negative maximum depth: %d", n)
		}
		env.Runtime.MaxDepth = n
		return nil
	}
}

// WithProfiler returns a Config that enables p for the environment's runtime.
func WithProfiler(p Profiler) Config {
	return func(env *LEnv) error {
		env.Runtime.Profiler = p
		if p.IsEnabled() {
			return nil
		}
		return p.Enable()
	}
}

// Configure applies config to env in order, stopping at the first error.
func (env *LEnv) Configure(config ...Config) error {
	for _, fn := range config {
		if err := fn(env); err != nil {
			return err
		}
	}
	return nil
}
