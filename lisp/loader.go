// Copyright © 2018 The ELPS authors

package lisp

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Loader initializes an environment, typically by defining symbols in it.
type Loader func(*LEnv) error

// Reader abstracts a parser implementation so that it may be implemented in a
// separate package as an optional/swappable component.
type Reader interface {
	// Read the contents of r and return the sequence of LVals that it
	// contains.  The returned LVals should be executed as if inside a do.
	Read(name string, r io.Reader) ([]*LVal, error)
}

// LocationReader is like Reader but assigns physical locations to the tokens
// from r.
type LocationReader interface {
	// ReadLocation the contents of r, associated with physical location loc,
	// and return the sequence of LVals that it contains.
	ReadLocation(name string, loc string, r io.Reader) ([]*LVal, error)
}

// TextLoader parses a text stream using r and returns a Loader which evaluates
// the stream's expressions when called.  The reader will be invoked only once.
func TextLoader(r Reader, name string, stream io.Reader) (Loader, error) {
	exprs, err := r.Read(name, stream)
	if err != nil {
		return nil, err
	}
	fn := func(env *LEnv) error {
		_, err := env.load(exprs)
		return err
	}
	return fn, nil
}

// LoadString evaluates the expressions in exprs and returns the value of the
// last one.
func (env *LEnv) LoadString(name, exprs string) (*LVal, error) {
	return env.Load(name, strings.NewReader(exprs))
}

// LoadFile reads a lisp source file and evaluates the expressions it
// contains, returning the value of the last one.
func (env *LEnv) LoadFile(path string) (*LVal, error) {
	src, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, fmt.Errorf("load file: %w", err)
	}
	return env.LoadLocation(filepath.Base(path), path, bytes.NewReader(src))
}

// Load reads LVals from r and evaluates them as if in a do.  The value
// returned by the last evaluated LVal will be returned.  If
// env.Runtime.Reader has not been set then an error will be returned by Load.
func (env *LEnv) Load(name string, r io.Reader) (*LVal, error) {
	if env.Runtime.Reader == nil {
		return nil, Errorf(TypeError, "no reader for environment runtime")
	}
	exprs, err := env.Runtime.Reader.Read(name, r)
	if err != nil {
		return nil, err
	}
	return env.load(exprs)
}

// LoadLocation is like Load but associates the stream with the physical
// location loc when the runtime's Reader supports it.
func (env *LEnv) LoadLocation(name string, loc string, r io.Reader) (*LVal, error) {
	if env.Runtime.Reader == nil {
		return nil, Errorf(TypeError, "no reader for environment runtime")
	}
	reader, ok := env.Runtime.Reader.(LocationReader)
	if !ok {
		return env.Load(name, r)
	}
	exprs, err := reader.ReadLocation(name, loc, r)
	if err != nil {
		return nil, err
	}
	return env.load(exprs)
}

func (env *LEnv) load(exprs []*LVal) (*LVal, error) {
	ret := Nil()
	for _, expr := range exprs {
		var err error
		ret, err = env.Eval(expr)
		if err != nil {
			return nil, err
		}
	}
	return ret, nil
}
