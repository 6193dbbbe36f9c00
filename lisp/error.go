// Copyright © 2018 The ELPS authors

package lisp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/luthersystems/mal/parser/token"
)

// ErrorKind classifies an ErrorVal.
type ErrorKind uint

// ErrorKind values.
const (
	// UnexpectedToken is a reader error for a delimiter found where a value
	// or a matching closer was expected.
	UnexpectedToken ErrorKind = iota + 1
	// UnexpectedEof is a reader error for input ending inside a form or a
	// string.
	UnexpectedEof
	// InvalidHashMap is an error constructing a hash-map with an odd number
	// of forms or with a key that is neither a string nor a keyword.
	InvalidHashMap
	// SymbolNotFound is an environment lookup failure.
	SymbolNotFound
	// TypeError is an operation applied to a value of the wrong shape.
	TypeError
	// Exception is a value thrown by user code.
	Exception
	// StackOverflow is raised when evaluation nests deeper than the
	// runtime allows.
	StackOverflow
)

var errorKindStrings = []string{
	0:               "error",
	UnexpectedToken: "unexpected-token",
	UnexpectedEof:   "unexpected-eof",
	InvalidHashMap:  "invalid-hash-map",
	SymbolNotFound:  "symbol-not-found",
	TypeError:       "type-error",
	Exception:       "exception",
	StackOverflow:   "stack-overflow",
}

func (k ErrorKind) String() string {
	if int(k) >= len(errorKindStrings) {
		return errorKindStrings[0]
	}
	return errorKindStrings[k]
}

// ErrorVal is the error type returned by the reader and the evaluator.
type ErrorVal struct {
	Kind ErrorKind
	Msg  string
	// Token is the offending token text or symbol name, when known.
	Token string
	// Expected is the closing token a reader wanted before input ended.
	Expected string
	// Data is the value carried by an Exception.
	Data *LVal
	// Source is the location of the innermost form being evaluated (or
	// read) when the error occurred.
	Source *token.Location
	// Stack is a copy of the call stack when the error occurred.
	Stack *CallStack
}

var _ error = (*ErrorVal)(nil)

// Error implements the error interface.
func (e *ErrorVal) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Payload returns the value bound by a catch* clause handling e.  Exceptions
// yield the thrown value.  All other kinds yield their message as a string.
func (e *ErrorVal) Payload() *LVal {
	if e.Kind == Exception && e.Data != nil {
		return e.Data
	}
	return String(e.Msg)
}

// FunName returns the name of the function on the top of the call stack when
// the error occurred.
func (e *ErrorVal) FunName() string {
	top := e.Stack.Top()
	if top == nil {
		return ""
	}
	return top.Name
}

// WriteTrace writes the error and a stack trace to w
func (e *ErrorVal) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if e.Source != nil {
		if !wrote(fmt.Fprintf(bw, "%s: ", e.Source)) {
			return n, err
		}
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if e.Stack != nil {
		if !wrote(e.Stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Errorf returns an ErrorVal of the given kind with a formatted message.
func Errorf(kind ErrorKind, format string, v ...interface{}) *ErrorVal {
	return &ErrorVal{
		Kind: kind,
		Msg:  fmt.Sprintf(format, v...),
	}
}

// Throw returns an Exception carrying v.
func Throw(v *LVal) *ErrorVal {
	return &ErrorVal{
		Kind: Exception,
		Msg:  Render(v, true),
		Data: v,
	}
}

// SymbolNotFoundError returns a SymbolNotFound error for the symbol name.
func SymbolNotFoundError(name string) *ErrorVal {
	return &ErrorVal{
		Kind:  SymbolNotFound,
		Msg:   fmt.Sprintf("'%s' not found", name),
		Token: name,
	}
}

// AsErrorVal returns the ErrorVal wrapped by err.  Errors produced outside of
// the interpreter (e.g. io errors from a builtin) are converted to TypeError
// values so that they can be caught.
func AsErrorVal(err error) *ErrorVal {
	var lerr *ErrorVal
	if errors.As(err, &lerr) {
		return lerr
	}
	return &ErrorVal{
		Kind: TypeError,
		Msg:  err.Error(),
	}
}

// IsKind returns true if err wraps an ErrorVal of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var lerr *ErrorVal
	return errors.As(err, &lerr) && lerr.Kind == kind
}

// ErrorPayload returns the value a catch* clause binds for err.
func ErrorPayload(err error) *LVal {
	return AsErrorVal(err).Payload()
}
