// Copyright © 2018 The ELPS authors

package lisp

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"sync/atomic"
)

// DefaultMaxDepth is the default limit on nested (non-tail) evaluation.
const DefaultMaxDepth = 10000

// Runtime is an object underlying a family of tree of LEnv values.  It is
// responsible for holding shared environment state, generating identifiers,
// and writing program and debugging output to streams (typically os.Stdout
// and os.Stderr).
type Runtime struct {
	Stdout     io.Writer
	Stderr     io.Writer
	Reader     Reader
	LineReader LineReader
	Profiler   Profiler
	Stack      *CallStack
	// MaxDepth bounds the nesting of non-tail evaluation.  Exceeding it
	// produces a StackOverflow error.  A value of 0 means unlimited.
	// MaxDepth counts nested evaluations, not user calls: each non-tail
	// recursive call of a closure nests about two evaluations.
	MaxDepth int
	depth    int
	numenv   atomicCounter
}

// StandardRuntime returns a new Runtime writing to os.Stdout and os.Stderr
// and reading lines from os.Stdin.
func StandardRuntime() *Runtime {
	return &Runtime{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		LineReader: NewLineReader(os.Stdin, os.Stdout),
		Stack:      &CallStack{},
		MaxDepth:   DefaultMaxDepth,
	}
}

func (r *Runtime) GenEnvID() uint {
	return r.numenv.Add(1)
}

// Depth returns the current nesting of evaluation.
func (r *Runtime) Depth() int {
	return r.depth
}

// LineReader reads lines of user input for the readline builtin.
type LineReader interface {
	// ReadLine displays prompt and returns the next line of input without
	// its line terminator.  At the end of input ReadLine returns io.EOF.
	ReadLine(prompt string) (string, error)
}

type bufLineReader struct {
	r *bufio.Reader
	w io.Writer
}

// NewLineReader returns a LineReader which writes prompts to w and reads lines
// from r.
func NewLineReader(r io.Reader, w io.Writer) LineReader {
	return &bufLineReader{r: bufio.NewReader(r), w: w}
}

func (lr *bufLineReader) ReadLine(prompt string) (string, error) {
	if lr.w != nil {
		_, err := io.WriteString(lr.w, prompt)
		if err != nil {
			return "", err
		}
	}
	line, err := lr.r.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		err = nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

type atomicCounter uint64

func (c *atomicCounter) Add(n uint) uint {
	return uint(atomic.AddUint64((*uint64)(c), uint64(n)))
}

func (r *Runtime) stackOverflow() *ErrorVal {
	return Errorf(StackOverflow, "maximum evaluation depth exceeded: %d", r.MaxDepth)
}
