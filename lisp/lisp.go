// Copyright © 2018 The ELPS authors

package lisp

import (
	"sort"
	"strings"

	"github.com/luthersystems/mal/parser/token"
)

// LType is the type of an LVal
type LType uint

// Possible LType values
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LNil is the type of the nil value.
	LNil
	// LBool values store 1 (true) or 0 (false) in the LVal.Int field.
	LBool
	// LInt values store an int in the LVal.Int field.
	LInt
	// LString values store a string in the LVal.Str field.
	LString
	// LSymbol values store the symbol name in the LVal.Str field.
	LSymbol
	// LKeyword values store the keyword name, without its leading colon, in
	// the LVal.Str field.
	LKeyword
	// LList values store their elements in LVal.Cells.
	LList
	// LVector values store their elements in LVal.Cells.  Vectors share
	// evaluation semantics with lists aside from the evaluation of the
	// vector literal itself.
	LVector
	// LHashMap values store entries in LVal.Map, keyed by MapKey.
	LHashMap
	// LNative values are native go functions.  They store a *FunData in
	// LVal.Native with the FunData.Builtin field set.
	LNative
	// LFun values are closures defined in lisp with fn*.  They store a
	// *FunData in LVal.Native holding formals, body and the captured
	// environment.
	LFun
	// LAtom values are mutable reference cells.  The referenced value is
	// stored in LVal.Cells[0].
	LAtom
	// LTypeMax is not a real type but represents a value numerically greater
	// than all valid LType values.
	LTypeMax
)

var lvalTypeStrings = []string{
	LInvalid: "INVALID",
	LNil:     "nil",
	LBool:    "boolean",
	LInt:     "number",
	LString:  "string",
	LSymbol:  "symbol",
	LKeyword: "keyword",
	LList:    "list",
	LVector:  "vector",
	LHashMap: "hash-map",
	LNative:  "builtin",
	LFun:     "function",
	LAtom:    "atom",
}

func (t LType) String() string {
	if t >= LType(len(lvalTypeStrings)) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// LBuiltin is a function implemented in go.  Builtins receive evaluated
// arguments along with the environment of the caller.
type LBuiltin func(env *LEnv, args []*LVal) (*LVal, error)

// FunData holds the callable portion of LNative and LFun values.
type FunData struct {
	// Name is the symbol the function was first bound to, if any.
	Name string
	// Builtin is the native implementation of an LNative value.
	Builtin LBuiltin
	// Doc describes a builtin function.
	Doc string
	// Formals are the parameter symbols of a closure, including the
	// variadic marker "&".
	Formals []*LVal
	// Body is the single body form of a closure.
	Body *LVal
	// Env is the environment captured by a closure.  It is shared with
	// every other closure created in the same scope.
	Env *LEnv
	// Macro marks a closure that receives unevaluated arguments and whose
	// result is evaluated in place of the call.
	Macro bool
}

// Rest returns the name bound to a closure's variadic arguments, or the empty
// string if the closure takes a fixed number of arguments.
func (fd *FunData) Rest() string {
	for i, f := range fd.Formals {
		if f.Str == VarArgSymbol && i+1 < len(fd.Formals) {
			return fd.Formals[i+1].Str
		}
	}
	return ""
}

// Reserved symbols
const (
	TrueSymbol   = "true"
	FalseSymbol  = "false"
	NilSymbol    = "nil"
	VarArgSymbol = "&"
)

// KeywordPrefix marks keyword keys in a hash-map.  String keys may never begin
// with it because it is not produced by the reader.
const KeywordPrefix = "ʞ"

// LVal is a lisp value
type LVal struct {
	// Native is generic storage for data which cannot be represented as an
	// LVal (and thus can't be stored in Cells).
	Native interface{}

	// Source is the values originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be shared
	// by multiple LVals.
	Source *token.Location

	// Meta is advisory metadata attached with with-meta.  It never
	// participates in equality.
	Meta *LVal

	// Str used by LString, LSymbol and LKeyword values
	Str string

	// Cells used by sequences and atoms as a storage space for lisp objects.
	Cells []*LVal

	// Map stores LHashMap entries.
	Map map[string]*LVal

	// Type is the native type for a value in lisp.
	Type LType

	// Int is used by LInt and LBool values.
	Int int
}

var (
	singletonNil   = &LVal{Type: LNil}
	singletonTrue  = &LVal{Type: LBool, Int: 1}
	singletonFalse = &LVal{Type: LBool}
)

// Nil returns an LVal representing nil.
//
// The returned value is a shared singleton and must not be mutated.
func Nil() *LVal {
	return singletonNil
}

// Bool returns an LVal with truthiness identical to b.
//
// The returned value is a shared singleton and must not be mutated.
func Bool(b bool) *LVal {
	if b {
		return singletonTrue
	}
	return singletonFalse
}

// Int returns an LVal representing the number x.
func Int(x int) *LVal {
	return &LVal{Type: LInt, Int: x}
}

// String returns an LVal representing the string str.
func String(str string) *LVal {
	return &LVal{Type: LString, Str: str}
}

// Symbol returns an LVal representing the symbol s
func Symbol(s string) *LVal {
	return &LVal{Type: LSymbol, Str: s}
}

// Keyword returns an LVal representing the keyword :s.  The name s must not
// include the leading colon.
func Keyword(s string) *LVal {
	return &LVal{Type: LKeyword, Str: s}
}

// List returns an LVal representing a list.  Provided cells are used as
// backing storage for the returned list and are not copied.
func List(cells ...*LVal) *LVal {
	return &LVal{Type: LList, Cells: cells}
}

// Vector returns an LVal representing a vector.  Provided cells are used as
// backing storage for the returned vector and are not copied.
func Vector(cells ...*LVal) *LVal {
	return &LVal{Type: LVector, Cells: cells}
}

// HashMap returns an LVal representing a hash-map with entries m.  Keys of m
// must have been produced by MapKey.  A nil m produces an empty map.
func HashMap(m map[string]*LVal) *LVal {
	if m == nil {
		m = make(map[string]*LVal)
	}
	return &LVal{Type: LHashMap, Map: m}
}

// HashMapFromPairs returns a hash-map built from alternating keys and values.
// An odd number of cells or a key that is neither a string nor a keyword is
// an InvalidHashMap error.
func HashMapFromPairs(cells []*LVal) (*LVal, error) {
	if len(cells)%2 != 0 {
		return nil, Errorf(InvalidHashMap, "odd number of hash-map forms: %d", len(cells))
	}
	m := make(map[string]*LVal, len(cells)/2)
	for i := 0; i < len(cells); i += 2 {
		k, err := MapKey(cells[i])
		if err != nil {
			return nil, err
		}
		m[k] = cells[i+1]
	}
	return HashMap(m), nil
}

// Builtin returns an LVal representing a native function.
func Builtin(name string, fn LBuiltin, doc string) *LVal {
	return &LVal{
		Type: LNative,
		Native: &FunData{
			Name:    name,
			Builtin: fn,
			Doc:     doc,
		},
	}
}

// Lambda returns a closure capturing env.
func Lambda(env *LEnv, formals []*LVal, body *LVal) *LVal {
	return &LVal{
		Type: LFun,
		Native: &FunData{
			Formals: formals,
			Body:    body,
			Env:     env,
		},
	}
}

// Atom returns a new mutable reference cell holding v.
func Atom(v *LVal) *LVal {
	return &LVal{Type: LAtom, Cells: []*LVal{v}}
}

// MapKey returns the key used to store k in a hash-map.
func MapKey(k *LVal) (string, error) {
	switch k.Type {
	case LString:
		return k.Str, nil
	case LKeyword:
		return KeywordPrefix + k.Str, nil
	default:
		return "", Errorf(InvalidHashMap, "hash-map key is not a string or keyword: %v", k.Type)
	}
}

// MapKeyValue returns the string or keyword an encoded hash-map key stands
// for.  MapKeyValue is the inverse of MapKey.
func MapKeyValue(k string) *LVal {
	if strings.HasPrefix(k, KeywordPrefix) {
		return Keyword(k[len(KeywordPrefix):])
	}
	return String(k)
}

// SortedMapKeys returns the encoded keys of hash-map m in sorted order.
func SortedMapKeys(m *LVal) []string {
	keys := make([]string, 0, len(m.Map))
	for k := range m.Map {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FunData returns the function data of an LNative or LFun value.
func (v *LVal) FunData() *FunData {
	fd, _ := v.Native.(*FunData)
	return fd
}

// Deref returns the value held by an LAtom.
func (v *LVal) Deref() *LVal {
	return v.Cells[0]
}

// Reset replaces the value held by an LAtom and returns it.
func (v *LVal) Reset(x *LVal) *LVal {
	v.Cells[0] = x
	return x
}

// Len returns the number of elements in a sequence or hash-map.  The length
// of nil is zero.
func (v *LVal) Len() int {
	switch v.Type {
	case LList, LVector:
		return len(v.Cells)
	case LHashMap:
		return len(v.Map)
	case LString:
		return len(v.Str)
	default:
		return 0
	}
}

// IsNil returns true if v is nil.
func (v *LVal) IsNil() bool {
	return v.Type == LNil
}

// IsTrue returns true if v is neither nil nor false.
func (v *LVal) IsTrue() bool {
	switch v.Type {
	case LNil:
		return false
	case LBool:
		return v.Int != 0
	default:
		return true
	}
}

// IsSeq returns true if v is a list or a vector.
func (v *LVal) IsSeq() bool {
	return v.Type == LList || v.Type == LVector
}

// IsFun returns true if v can be called as a function (macros excluded).
func (v *LVal) IsFun() bool {
	switch v.Type {
	case LNative:
		return true
	case LFun:
		return !v.IsMacro()
	default:
		return false
	}
}

// IsMacro returns true if v is a closure flagged as a macro.
func (v *LVal) IsMacro() bool {
	return v.Type == LFun && v.FunData().Macro
}

// IsSymbol returns true if v is the symbol name.
func (v *LVal) IsSymbol(name string) bool {
	return v.Type == LSymbol && v.Str == name
}

// Docstring returns documentation for a function.  Builtins carry their own
// documentation.  Any value may be documented through a :doc metadata entry.
func (v *LVal) Docstring() string {
	if v.Meta != nil && v.Meta.Type == LHashMap {
		if doc, ok := v.Meta.Map[KeywordPrefix+"doc"]; ok && doc.Type == LString {
			return doc.Str
		}
	}
	if v.Type == LNative {
		return v.FunData().Doc
	}
	return ""
}

// WithMeta returns a shallow copy of v carrying metadata meta.
func (v *LVal) WithMeta(meta *LVal) *LVal {
	cp := &LVal{}
	*cp = *v
	cp.Meta = meta
	return cp
}

// MacroCopy returns a copy of closure v flagged as a macro.  The closure v
// itself is not modified.
func (v *LVal) MacroCopy() *LVal {
	cp := &LVal{}
	*cp = *v
	fd := *v.FunData()
	fd.Macro = true
	cp.Native = &fd
	return cp
}

// Equal returns true if v and other are equal.  Lists and vectors with equal
// elements are equal to each other.  Functions are compared by identity.
func (v *LVal) Equal(other *LVal) bool {
	if v == other {
		return true
	}
	if v.IsSeq() && other.IsSeq() {
		if len(v.Cells) != len(other.Cells) {
			return false
		}
		for i := range v.Cells {
			if !v.Cells[i].Equal(other.Cells[i]) {
				return false
			}
		}
		return true
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LNil:
		return true
	case LBool, LInt:
		return v.Int == other.Int
	case LString, LSymbol, LKeyword:
		return v.Str == other.Str
	case LHashMap:
		if len(v.Map) != len(other.Map) {
			return false
		}
		for k, x := range v.Map {
			y, ok := other.Map[k]
			if !ok || !x.Equal(y) {
				return false
			}
		}
		return true
	case LNative, LFun:
		return v.Native == other.Native
	case LAtom:
		return v.Cells[0].Equal(other.Cells[0])
	default:
		return false
	}
}

func (v *LVal) String() string {
	return Render(v, true)
}
