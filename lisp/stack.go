// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"io"

	"github.com/luthersystems/mal/parser/token"
)

// CallStack is a function call stack.  Frames are only used for diagnostics.
// Tail calls replace the frame on the top of the stack instead of pushing a
// new one.
type CallStack struct {
	Frames []CallFrame
}

// CallFrame is one frame in the CallStack
type CallFrame struct {
	Source *token.Location
	Name   string
	// Elided counts tail calls which have replaced this frame.
	Elided int
}

func (f *CallFrame) String() string {
	if f.Source != nil {
		return fmt.Sprintf("%s: %s", f.Source, f.desc())
	}
	return f.desc()
}

func (f *CallFrame) desc() string {
	name := f.Name
	if name == "" {
		name = "<anonymous>"
	}
	if f.Elided > 0 {
		return fmt.Sprintf("%s [%d tail calls]", name, f.Elided)
	}
	return name
}

// Copy creates a copy of the current stack so that it can be attach to a
// runtime error.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{Frames: frames}
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Height returns the number of frames in s.
func (s *CallStack) Height() int {
	return len(s.Frames)
}

// Push pushes a new frame for a call to fun onto s.
func (s *CallStack) Push(src *token.Location, fun *LVal) {
	s.Frames = append(s.Frames, CallFrame{
		Source: src,
		Name:   funName(fun),
	})
}

// Replace replaces the top frame with a tail call to fun.
func (s *CallStack) Replace(src *token.Location, fun *LVal) {
	top := s.Top()
	top.Source = src
	top.Name = funName(fun)
	top.Elided++
}

// Truncate pops frames until s has height n.
func (s *CallStack) Truncate(n int) {
	if n < len(s.Frames) {
		s.Frames = s.Frames[:n]
	}
}

// DebugPrint prints s, most recent call first.
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	var n int
	if len(s.Frames) == 0 {
		return 0, nil
	}
	_n, err := fmt.Fprintln(w, "Stack Trace [most recent call first]")
	n += _n
	if err != nil {
		return n, err
	}
	for i := len(s.Frames) - 1; i >= 0; i-- {
		_n, err := fmt.Fprintf(w, "  %d: %s\n", i, &s.Frames[i])
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

func funName(fun *LVal) string {
	if fd := fun.FunData(); fd != nil {
		return fd.Name
	}
	return ""
}
