// Copyright © 2018 The ELPS authors

// Package libcore provides the core builtin functions: arithmetic,
// comparison, sequences, hash-maps, atoms, type predicates and metadata.
package libcore

import (
	"github.com/luthersystems/mal/lisp"
	"github.com/luthersystems/mal/lisp/lisplib/internal/libutil"
)

// LoadPackage adds the core builtins to env
func LoadPackage(env *lisp.LEnv) error {
	libutil.AddBuiltins(env, builtins)
	return nil
}

var builtins = []*libutil.Builtin{
	libutil.FunctionDoc("+", libutil.Formals("x", "&", "xs"), builtinAdd,
		`Returns the sum of its arguments.  At least one integer argument is
		required.`),
	libutil.FunctionDoc("-", libutil.Formals("x", "&", "xs"), builtinSub,
		`Returns the first argument minus the sum of the remaining arguments.
		Given one argument it is returned unchanged.`),
	libutil.FunctionDoc("*", libutil.Formals("x", "&", "xs"), builtinMul,
		`Returns the product of its arguments.`),
	libutil.FunctionDoc("/", libutil.Formals("x", "&", "xs"), builtinDiv,
		`Returns the first argument divided by each remaining argument in
		turn using integer division.  Division by zero is an error.`),
	libutil.FunctionDoc("=", libutil.Formals("a", "b"), builtinEqual,
		`Returns true if a and b are equal.  Lists and vectors with equal
		elements are equal.  Hash-maps are equal when they contain equal
		entries.`),
	libutil.FunctionDoc("<", libutil.Formals("a", "b"), builtinLT,
		`Returns true if integer a is less than integer b.`),
	libutil.FunctionDoc("<=", libutil.Formals("a", "b"), builtinLEQ,
		`Returns true if integer a is less than or equal to integer b.`),
	libutil.FunctionDoc(">", libutil.Formals("a", "b"), builtinGT,
		`Returns true if integer a is greater than integer b.`),
	libutil.FunctionDoc(">=", libutil.Formals("a", "b"), builtinGEQ,
		`Returns true if integer a is greater than or equal to integer b.`),
	libutil.FunctionDoc("list", libutil.Formals("&", "items"), builtinList,
		`Returns a list containing its arguments.`),
	libutil.FunctionDoc("list?", libutil.Formals("x"), typePredicate(lisp.LList),
		`Returns true if x is a list.`),
	libutil.FunctionDoc("vector", libutil.Formals("&", "items"), builtinVector,
		`Returns a vector containing its arguments.`),
	libutil.FunctionDoc("vector?", libutil.Formals("x"), typePredicate(lisp.LVector),
		`Returns true if x is a vector.`),
	libutil.FunctionDoc("vec", libutil.Formals("seq"), builtinVec,
		`Returns a vector containing the elements of seq.`),
	libutil.FunctionDoc("hash-map", libutil.Formals("&", "kvs"), builtinHashMap,
		`Returns a hash-map built from alternating keys and values.  Keys
		must be strings or keywords.`),
	libutil.FunctionDoc("map?", libutil.Formals("x"), typePredicate(lisp.LHashMap),
		`Returns true if x is a hash-map.`),
	libutil.FunctionDoc("assoc", libutil.Formals("m", "&", "kvs"), builtinAssoc,
		`Returns a copy of hash-map m with alternating keys and values
		kvs added.`),
	libutil.FunctionDoc("dissoc", libutil.Formals("m", "&", "keys"), builtinDissoc,
		`Returns a copy of hash-map m without the given keys.`),
	libutil.FunctionDoc("get", libutil.Formals("m", "key"), builtinGet,
		`Returns the value stored under key in hash-map m, or nil.  Getting
		a key from nil returns nil.`),
	libutil.FunctionDoc("contains?", libutil.Formals("m", "key"), builtinContains,
		`Returns true if hash-map m has an entry for key.`),
	libutil.FunctionDoc("keys", libutil.Formals("m"), builtinKeys,
		`Returns a list of the keys in hash-map m.`),
	libutil.FunctionDoc("vals", libutil.Formals("m"), builtinVals,
		`Returns a list of the values in hash-map m, in the same order as
		the list returned by keys.`),
	libutil.FunctionDoc("keyword", libutil.Formals("name"), builtinKeyword,
		`Returns the keyword named by string name.  Keywords are returned
		unchanged.`),
	libutil.FunctionDoc("keyword?", libutil.Formals("x"), typePredicate(lisp.LKeyword),
		`Returns true if x is a keyword.`),
	libutil.FunctionDoc("symbol", libutil.Formals("name"), builtinSymbol,
		`Returns the symbol named by string name.`),
	libutil.FunctionDoc("symbol?", libutil.Formals("x"), typePredicate(lisp.LSymbol),
		`Returns true if x is a symbol.`),
	libutil.FunctionDoc("string?", libutil.Formals("x"), typePredicate(lisp.LString),
		`Returns true if x is a string.`),
	libutil.FunctionDoc("number?", libutil.Formals("x"), typePredicate(lisp.LInt),
		`Returns true if x is a number.`),
	libutil.FunctionDoc("fn?", libutil.Formals("x"), builtinIsFun,
		`Returns true if x is a function.  Macros are not functions.`),
	libutil.FunctionDoc("macro?", libutil.Formals("x"), builtinIsMacro,
		`Returns true if x is a macro.`),
	libutil.FunctionDoc("nil?", libutil.Formals("x"), typePredicate(lisp.LNil),
		`Returns true if x is nil.`),
	libutil.FunctionDoc("true?", libutil.Formals("x"), builtinIsTrue,
		`Returns true if x is the boolean true.`),
	libutil.FunctionDoc("false?", libutil.Formals("x"), builtinIsFalse,
		`Returns true if x is the boolean false.`),
	libutil.FunctionDoc("sequential?", libutil.Formals("x"), builtinIsSeq,
		`Returns true if x is a list or a vector.`),
	libutil.FunctionDoc("empty?", libutil.Formals("coll"), builtinIsEmpty,
		`Returns true if coll has no elements.  Nil is empty.`),
	libutil.FunctionDoc("count", libutil.Formals("coll"), builtinCount,
		`Returns the number of elements in coll.  The count of nil is 0.`),
	libutil.FunctionDoc("cons", libutil.Formals("x", "seq"), builtinCons,
		`Returns a new list with x prepended to the elements of seq.`),
	libutil.FunctionDoc("concat", libutil.Formals("&", "seqs"), builtinConcat,
		`Returns a list containing the elements of each seq in order.`),
	libutil.FunctionDoc("nth", libutil.Formals("seq", "n"), builtinNth,
		`Returns the element of seq at index n.  An index out of range is an
		error.`),
	libutil.FunctionDoc("first", libutil.Formals("seq"), builtinFirst,
		`Returns the first element of seq, or nil if seq is empty or nil.`),
	libutil.FunctionDoc("rest", libutil.Formals("seq"), builtinRest,
		`Returns a list of the elements of seq after the first.`),
	libutil.FunctionDoc("conj", libutil.Formals("coll", "&", "xs"), builtinConj,
		`Returns coll with xs added.  Elements are prepended to lists (so
		they appear in reverse order) and appended to vectors.`),
	libutil.FunctionDoc("seq", libutil.Formals("x"), builtinSeq,
		`Returns a list of the elements of x, or nil if x is empty.  Strings
		produce a list of single character strings.`),
	libutil.FunctionDoc("apply", libutil.Formals("f", "&", "args"), builtinApply,
		`Calls f with args.  The last argument must be a sequence whose
		elements are appended to the other arguments.`),
	libutil.FunctionDoc("map", libutil.Formals("f", "seq"), builtinMap,
		`Returns a list of the results of calling f on each element of seq.`),
	libutil.FunctionDoc("atom", libutil.Formals("x"), builtinAtom,
		`Returns a new atom holding x.`),
	libutil.FunctionDoc("atom?", libutil.Formals("x"), typePredicate(lisp.LAtom),
		`Returns true if x is an atom.`),
	libutil.FunctionDoc("deref", libutil.Formals("atom"), builtinDeref,
		`Returns the value held by atom.`),
	libutil.FunctionDoc("reset!", libutil.Formals("atom", "x"), builtinReset,
		`Replaces the value held by atom with x and returns x.`),
	libutil.FunctionDoc("swap!", libutil.Formals("atom", "f", "&", "args"), builtinSwap,
		`Replaces the value held by atom with the result of calling f with
		the current value followed by args.  Returns the new value.`),
	libutil.FunctionDoc("throw", libutil.Formals("x"), builtinThrow,
		`Raises an exception carrying x.  The exception may be handled by
		try* and catch*.`),
	libutil.FunctionDoc("meta", libutil.Formals("x"), builtinMeta,
		`Returns the metadata attached to x, or nil.`),
	libutil.FunctionDoc("with-meta", libutil.Formals("x", "meta"), builtinWithMeta,
		`Returns a copy of x carrying metadata meta.`),
	libutil.FunctionDoc("type-of", libutil.Formals("x"), builtinTypeOf,
		`Returns a keyword naming the type of x.`),
}

func typeError(format string, v ...interface{}) error {
	return lisp.Errorf(lisp.TypeError, format, v...)
}

func builtinAdd(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return reduceInts("+", args, func(a, b int) (int, error) { return a + b, nil })
}

func builtinSub(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return reduceInts("-", args, func(a, b int) (int, error) { return a - b, nil })
}

func builtinMul(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return reduceInts("*", args, func(a, b int) (int, error) { return a * b, nil })
}

func builtinDiv(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return reduceInts("/", args, func(a, b int) (int, error) {
		if b == 0 {
			return 0, typeError("division by zero")
		}
		return a / b, nil
	})
}

// reduceInts folds op over args from the left, seeded with the first
// argument.  Arity has already been checked so args is not empty.
func reduceInts(name string, args []*lisp.LVal, op func(a, b int) (int, error)) (*lisp.LVal, error) {
	for i, x := range args {
		if x.Type != lisp.LInt {
			return nil, typeError("%s: argument %d is not a number: %v", name, i, x.Type)
		}
	}
	acc := args[0].Int
	for _, x := range args[1:] {
		var err error
		acc, err = op(acc, x.Int)
		if err != nil {
			return nil, err
		}
	}
	return lisp.Int(acc), nil
}

func builtinEqual(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.Bool(args[0].Equal(args[1])), nil
}

func compareInts(name string, args []*lisp.LVal, cmp func(a, b int) bool) (*lisp.LVal, error) {
	a, b := args[0], args[1]
	if a.Type != lisp.LInt || b.Type != lisp.LInt {
		return nil, typeError("%s: arguments are not numbers: %v %v", name, a.Type, b.Type)
	}
	return lisp.Bool(cmp(a.Int, b.Int)), nil
}

func builtinLT(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return compareInts("<", args, func(a, b int) bool { return a < b })
}

func builtinLEQ(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return compareInts("<=", args, func(a, b int) bool { return a <= b })
}

func builtinGT(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return compareInts(">", args, func(a, b int) bool { return a > b })
}

func builtinGEQ(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return compareInts(">=", args, func(a, b int) bool { return a >= b })
}

func typePredicate(typ lisp.LType) lisp.LBuiltin {
	return func(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
		return lisp.Bool(args[0].Type == typ), nil
	}
}

func builtinIsFun(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.Bool(args[0].IsFun()), nil
}

func builtinIsMacro(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.Bool(args[0].IsMacro()), nil
}

func builtinIsTrue(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	return lisp.Bool(x.Type == lisp.LBool && x.Int != 0), nil
}

func builtinIsFalse(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	return lisp.Bool(x.Type == lisp.LBool && x.Int == 0), nil
}

func builtinIsSeq(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.Bool(args[0].IsSeq()), nil
}

// cells returns the elements of a sequence argument.  Nil is treated as an
// empty sequence.
func cells(name string, v *lisp.LVal) ([]*lisp.LVal, error) {
	switch {
	case v.IsSeq():
		return v.Cells, nil
	case v.IsNil():
		return nil, nil
	default:
		return nil, typeError("%s: argument is not a sequence: %v", name, v.Type)
	}
}

func builtinList(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.List(copyCells(args)...), nil
}

func builtinVector(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.Vector(copyCells(args)...), nil
}

func builtinVec(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	if args[0].Type == lisp.LVector {
		return args[0], nil
	}
	c, err := cells("vec", args[0])
	if err != nil {
		return nil, err
	}
	return lisp.Vector(copyCells(c)...), nil
}

func copyCells(c []*lisp.LVal) []*lisp.LVal {
	cp := make([]*lisp.LVal, len(c))
	copy(cp, c)
	return cp
}

func builtinIsEmpty(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	switch x.Type {
	case lisp.LNil, lisp.LList, lisp.LVector, lisp.LHashMap, lisp.LString:
		return lisp.Bool(x.Len() == 0), nil
	default:
		return nil, typeError("empty?: argument is not a collection: %v", x.Type)
	}
}

func builtinCount(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	switch x.Type {
	case lisp.LNil, lisp.LList, lisp.LVector, lisp.LHashMap, lisp.LString:
		return lisp.Int(x.Len()), nil
	default:
		return nil, typeError("count: argument is not a collection: %v", x.Type)
	}
}

func builtinCons(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	c, err := cells("cons", args[1])
	if err != nil {
		return nil, err
	}
	list := make([]*lisp.LVal, 0, len(c)+1)
	list = append(list, args[0])
	list = append(list, c...)
	return lisp.List(list...), nil
}

func builtinConcat(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	var list []*lisp.LVal
	for _, seq := range args {
		c, err := cells("concat", seq)
		if err != nil {
			return nil, err
		}
		list = append(list, c...)
	}
	return lisp.List(list...), nil
}

func builtinNth(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	c, err := cells("nth", args[0])
	if err != nil {
		return nil, err
	}
	n := args[1]
	if n.Type != lisp.LInt {
		return nil, typeError("nth: index is not a number: %v", n.Type)
	}
	if n.Int < 0 || n.Int >= len(c) {
		return nil, typeError("nth: index out of range: %d", n.Int)
	}
	return c[n.Int], nil
}

func builtinFirst(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	c, err := cells("first", args[0])
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return lisp.Nil(), nil
	}
	return c[0], nil
}

func builtinRest(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	c, err := cells("rest", args[0])
	if err != nil {
		return nil, err
	}
	if len(c) == 0 {
		return lisp.List(), nil
	}
	return lisp.List(copyCells(c[1:])...), nil
}

func builtinConj(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	coll, xs := args[0], args[1:]
	switch coll.Type {
	case lisp.LList, lisp.LNil:
		list := make([]*lisp.LVal, 0, len(coll.Cells)+len(xs))
		for i := len(xs) - 1; i >= 0; i-- {
			list = append(list, xs[i])
		}
		list = append(list, coll.Cells...)
		return lisp.List(list...), nil
	case lisp.LVector:
		vec := make([]*lisp.LVal, 0, len(coll.Cells)+len(xs))
		vec = append(vec, coll.Cells...)
		vec = append(vec, xs...)
		return lisp.Vector(vec...), nil
	default:
		return nil, typeError("conj: argument is not a sequence: %v", coll.Type)
	}
}

func builtinSeq(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	switch x.Type {
	case lisp.LNil:
		return lisp.Nil(), nil
	case lisp.LList, lisp.LVector:
		if len(x.Cells) == 0 {
			return lisp.Nil(), nil
		}
		if x.Type == lisp.LList {
			return x, nil
		}
		return lisp.List(copyCells(x.Cells)...), nil
	case lisp.LString:
		if x.Str == "" {
			return lisp.Nil(), nil
		}
		var chars []*lisp.LVal
		for _, c := range x.Str {
			chars = append(chars, lisp.String(string(c)))
		}
		return lisp.List(chars...), nil
	default:
		return nil, typeError("seq: argument is not a sequence: %v", x.Type)
	}
}

func builtinApply(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	fun, rest := args[0], args[1:]
	if len(rest) == 0 {
		return env.FunCall(fun, nil)
	}
	last, err := cells("apply", rest[len(rest)-1])
	if err != nil {
		return nil, err
	}
	fargs := make([]*lisp.LVal, 0, len(rest)-1+len(last))
	fargs = append(fargs, rest[:len(rest)-1]...)
	fargs = append(fargs, last...)
	return env.FunCall(fun, fargs)
}

func builtinMap(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	fun := args[0]
	c, err := cells("map", args[1])
	if err != nil {
		return nil, err
	}
	result := make([]*lisp.LVal, len(c))
	for i, x := range c {
		result[i], err = env.FunCall(fun, []*lisp.LVal{x})
		if err != nil {
			return nil, err
		}
	}
	return lisp.List(result...), nil
}

func builtinAtom(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return lisp.Atom(args[0]), nil
}

func atomArg(name string, v *lisp.LVal) (*lisp.LVal, error) {
	if v.Type != lisp.LAtom {
		return nil, typeError("%s: argument is not an atom: %v", name, v.Type)
	}
	return v, nil
}

func builtinDeref(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	a, err := atomArg("deref", args[0])
	if err != nil {
		return nil, err
	}
	return a.Deref(), nil
}

func builtinReset(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	a, err := atomArg("reset!", args[0])
	if err != nil {
		return nil, err
	}
	return a.Reset(args[1]), nil
}

func builtinSwap(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	a, err := atomArg("swap!", args[0])
	if err != nil {
		return nil, err
	}
	fargs := make([]*lisp.LVal, 0, len(args)-1)
	fargs = append(fargs, a.Deref())
	fargs = append(fargs, args[2:]...)
	v, err := env.FunCall(args[1], fargs)
	if err != nil {
		return nil, err
	}
	return a.Reset(v), nil
}

func builtinThrow(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return nil, lisp.Throw(args[0])
}

func builtinMeta(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	if args[0].Meta == nil {
		return lisp.Nil(), nil
	}
	return args[0].Meta, nil
}

func builtinWithMeta(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	return args[0].WithMeta(args[1]), nil
}

func builtinTypeOf(env *lisp.LEnv, args []*lisp.LVal) (*lisp.LVal, error) {
	x := args[0]
	if x.IsMacro() {
		return lisp.Keyword("macro"), nil
	}
	return lisp.Keyword(x.Type.String()), nil
}
