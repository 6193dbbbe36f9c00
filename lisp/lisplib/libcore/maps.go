// Copyright © 2018 The ELPS authors

package libcore

import (
	"github.com/luthersystems/mal/lisp"
)

func builtinHashMap(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.HashMapFromPairs(args)
}

// mapArg returns the entries of a hash-map argument.  Nil is treated as an
// empty map.
func mapArg(name string, v *lisp.LVal) (map[string]*lisp.LVal, error) {
	switch v.Type {
	case lisp.LHashMap:
		return v.Map, nil
	case lisp.LNil:
		return nil, nil
	default:
		return nil, typeError("%s: argument is not a hash-map: %v", name, v.Type)
	}
}

func copyMap(m map[string]*lisp.LVal, extra int) map[string]*lisp.LVal {
	cp := make(map[string]*lisp.LVal, len(m)+extra)
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func builtinAssoc(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	m, err := mapArg("assoc", args[0])
	if err != nil {
		return nil, err
	}
	kvs := args[1:]
	if len(kvs)%2 != 0 {
		return nil, lisp.Errorf(lisp.InvalidHashMap, "assoc: odd number of key and value forms: %d", len(kvs))
	}
	cp := copyMap(m, len(kvs)/2)
	for i := 0; i < len(kvs); i += 2 {
		k, err := lisp.MapKey(kvs[i])
		if err != nil {
			return nil, err
		}
		cp[k] = kvs[i+1]
	}
	return lisp.HashMap(cp), nil
}

func builtinDissoc(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	m, err := mapArg("dissoc", args[0])
	if err != nil {
		return nil, err
	}
	cp := copyMap(m, 0)
	for _, key := range args[1:] {
		k, err := lisp.MapKey(key)
		if err != nil {
			return nil, err
		}
		delete(cp, k)
	}
	return lisp.HashMap(cp), nil
}

func builtinGet(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	m, err := mapArg("get", args[0])
	if err != nil {
		return nil, err
	}
	k, err := lisp.MapKey(args[1])
	if err != nil {
		return nil, err
	}
	v, ok := m[k]
	if !ok {
		return lisp.Nil(), nil
	}
	return v, nil
}

func builtinContains(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	m, err := mapArg("contains?", args[0])
	if err != nil {
		return nil, err
	}
	k, err := lisp.MapKey(args[1])
	if err != nil {
		return nil, err
	}
	_, ok := m[k]
	return lisp.Bool(ok), nil
}

func builtinKeys(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	if _, err := mapArg("keys", args[0]); err != nil {
		return nil, err
	}
	keys := lisp.SortedMapKeys(args[0])
	cells := make([]*lisp.LVal, len(keys))
	for i, k := range keys {
		cells[i] = lisp.MapKeyValue(k)
	}
	return lisp.List(cells...), nil
}

func builtinVals(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	if _, err := mapArg("vals", args[0]); err != nil {
		return nil, err
	}
	keys := lisp.SortedMapKeys(args[0])
	cells := make([]*lisp.LVal, len(keys))
	for i, k := range keys {
		cells[i] = args[0].Map[k]
	}
	return lisp.List(cells...), nil
}

func builtinKeyword(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	switch x.Type {
	case lisp.LKeyword:
		return x, nil
	case lisp.LString:
		return lisp.Keyword(x.Str), nil
	default:
		return nil, typeError("keyword: argument is not a string: %v", x.Type)
	}
}

func builtinSymbol(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	if x.Type != lisp.LString {
		return nil, typeError("symbol: argument is not a string: %v", x.Type)
	}
	return lisp.Symbol(x.Str), nil
}
