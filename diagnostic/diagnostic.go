// Copyright © 2024 The ELPS authors

// Package diagnostic renders errors as annotated source snippets for CLI
// output.
package diagnostic

import (
	"errors"
	"fmt"

	"github.com/luthersystems/mal/lisp"
)

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string // "= note:" lines (stack trace frames, etc.)
}

// FromError converts an error returned by the reader or evaluator into a
// Diagnostic.  The location of the failing form becomes a span and the call
// stack becomes notes, most recent call first.  Other errors produce a bare
// message.
func FromError(err error) Diagnostic {
	var lerr *lisp.ErrorVal
	if !errors.As(err, &lerr) {
		return Diagnostic{Severity: SeverityError, Message: err.Error()}
	}
	d := Diagnostic{
		Severity: SeverityError,
		Message:  lerr.Error(),
	}
	if lerr.Kind == lisp.Exception {
		d.Message = "uncaught exception: " + lerr.Msg
	}
	if name := lerr.FunName(); name != "" {
		d.Message = fmt.Sprintf("%s: %s", name, d.Message)
	}

	if loc := lerr.Source; loc != nil && loc.Pos >= 0 {
		span := Span{
			File: loc.File,
			Line: loc.Line,
			Col:  loc.Col,
		}
		// Prefer physical path for reading source
		if loc.Path != "" {
			span.File = loc.Path
		}
		if lerr.Expected != "" {
			span.Label = "expected " + lerr.Expected
		}
		d.Spans = append(d.Spans, span)
	}

	if lerr.Stack != nil {
		frames := lerr.Stack.Frames
		for i := len(frames) - 1; i >= 0; i-- {
			frame := &frames[i]
			loc := "unknown"
			if frame.Source != nil {
				loc = frame.Source.String()
			}
			d.Notes = append(d.Notes, fmt.Sprintf("in %s at %s", frameName(frame), loc))
		}
	}
	return d
}

func frameName(frame *lisp.CallFrame) string {
	name := frame.Name
	if name == "" {
		name = "<anonymous>"
	}
	if frame.Elided > 0 {
		return fmt.Sprintf("%s [%d tail calls]", name, frame.Elided)
	}
	return name
}
