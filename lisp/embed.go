// Copyright © 2018 The ELPS authors

package lisp

import (
	"fmt"
	"sort"
)

// GoValue converts v to its natural representation in Go.  Lists and vectors
// are turned into slices and hash-maps into map[string]interface{} (keyword
// keys keep their leading colon).  Symbols and keywords are converted to
// strings.  The value Nil() is converted to nil.  Functions and atoms are
// returned as is.
func GoValue(v *LVal) interface{} {
	switch v.Type {
	case LNil:
		return nil
	case LBool:
		return v.Int != 0
	case LInt:
		return v.Int
	case LString, LSymbol:
		return v.Str
	case LKeyword:
		return ":" + v.Str
	case LList, LVector:
		s, _ := GoSlice(v)
		return s
	case LHashMap:
		m, _ := GoMap(v)
		return m
	}
	return v
}

// GoString returns the string that v represents and the value true.  If v does
// not represent a string GoString returns a false second argument
func GoString(v *LVal) (string, bool) {
	if v.Type != LString {
		return "", false
	}
	return v.Str, true
}

// SymbolName returns the name of the symbol that v represents and the value
// true.  If v does not represent a symbol SymbolName returns a false second
// argument
func SymbolName(v *LVal) (string, bool) {
	if v.Type != LSymbol {
		return "", false
	}
	return v.Str, true
}

// GoInt returns the number v represents and the value true.  If v does not
// represent a number GoInt returns a false second argument
func GoInt(v *LVal) (int, bool) {
	if v.Type != LInt {
		return 0, false
	}
	return v.Int, true
}

// GoSlice converts the elements of a list or vector to Go values.  If v is
// not a sequence GoSlice returns a false second argument
func GoSlice(v *LVal) ([]interface{}, bool) {
	if !v.IsSeq() {
		return nil, false
	}
	vs := make([]interface{}, len(v.Cells))
	for i := range vs {
		vs[i] = GoValue(v.Cells[i])
	}
	return vs, true
}

// GoMap converts a hash-map to its Go equivalent and returns it with a true
// second argument.  If v does not represent a hash-map GoMap returns a false
// second argument.
func GoMap(v *LVal) (map[string]interface{}, bool) {
	if v.Type != LHashMap {
		return nil, false
	}
	m := make(map[string]interface{}, len(v.Map))
	for k, x := range v.Map {
		key := MapKeyValue(k)
		m[GoValue(key).(string)] = GoValue(x)
	}
	return m, true
}

// Value converts a Go value to an LVal.  It is the inverse of GoValue for
// nil, bool, integers, strings, slices and string keyed maps.  Map keys with
// a leading colon become keywords.  An *LVal is returned unchanged.
func Value(x interface{}) (*LVal, error) {
	switch x := x.(type) {
	case nil:
		return Nil(), nil
	case *LVal:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(x), nil
	case int64:
		return Int(int(x)), nil
	case int32:
		return Int(int(x)), nil
	case string:
		return String(x), nil
	case []interface{}:
		cells := make([]*LVal, len(x))
		for i := range x {
			var err error
			cells[i], err = Value(x[i])
			if err != nil {
				return nil, err
			}
		}
		return List(cells...), nil
	case []string:
		cells := make([]*LVal, len(x))
		for i := range x {
			cells[i] = String(x[i])
		}
		return List(cells...), nil
	case map[string]interface{}:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := make(map[string]*LVal, len(x))
		for _, k := range keys {
			v, err := Value(x[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			var key *LVal
			if len(k) > 1 && k[0] == ':' {
				key = Keyword(k[1:])
			} else {
				key = String(k)
			}
			mk, _ := MapKey(key)
			m[mk] = v
		}
		return HashMap(m), nil
	default:
		return nil, Errorf(TypeError, "cannot convert go value of type %T", x)
	}
}
