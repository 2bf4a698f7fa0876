// Package tree implements AYU's immutable tagged-union tree: the textual
// data model that every described value is converted to and from. See
// spec.md §3/§4.1.
package tree

import (
	"math"
)

// Form is the tag of a Tree.
type Form int

const (
	Undefined Form = iota
	Null
	Bool
	Number
	String
	Array
	Object
	ErrorForm
)

func (f Form) String() string {
	switch f {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Bool:
		return "bool"
	case Number:
		return "number"
	case String:
		return "string"
	case Array:
		return "array"
	case Object:
		return "object"
	case ErrorForm:
		return "error"
	default:
		return "unknown"
	}
}

// Flags are presentation hints that influence printing only; they never
// participate in equality.
type Flags uint8

const (
	PreferHex Flags = 1 << iota
	PreferCompact
	PreferExpanded
)

// Pair is one (key, value) entry of an Object-form tree.
type Pair struct {
	Key   string
	Value Tree
}

// Tree is a small value type; copying a Tree shares its string/slice
// backing storage rather than deep-copying, which is the Go-idiomatic
// equivalent of the original's manual reference counting (see DESIGN.md).
type Tree struct {
	form    Form
	flags   Flags
	boolean bool
	isFloat bool
	integer int64
	float   float64
	str     string
	arr     []Tree
	obj     []Pair
	err     error
}

// Undef returns the sentinel undefined tree. The zero Tree is undefined.
func Undef() Tree { return Tree{} }

func NullTree() Tree { return Tree{form: Null} }

func FromBool(b bool) Tree { return Tree{form: Bool, boolean: b} }

func FromInt(i int64) Tree { return Tree{form: Number, integer: i} }

func FromFloat(f float64) Tree { return Tree{form: Number, isFloat: true, float: f} }

func FromString(s string) Tree { return Tree{form: String, str: s} }

func FromArray(items ...Tree) Tree {
	cp := make([]Tree, len(items))
	copy(cp, items)
	return Tree{form: Array, arr: cp}
}

func FromArraySlice(items []Tree) Tree { return Tree{form: Array, arr: items} }

func FromObject(pairs ...Pair) Tree {
	cp := make([]Pair, len(pairs))
	copy(cp, pairs)
	return Tree{form: Object, obj: cp}
}

func FromObjectSlice(pairs []Pair) Tree { return Tree{form: Object, obj: pairs} }

func FromError(err error) Tree { return Tree{form: ErrorForm, err: err} }

// WithFlags returns a copy of t carrying the given presentation flags.
func (t Tree) WithFlags(f Flags) Tree {
	t.flags = f
	return t
}

func (t Tree) Flags() Flags { return t.flags }

func (t Tree) Form() Form { return t.form }

// HasValue reports whether t is anything other than the undefined sentinel.
func (t Tree) HasValue() bool { return t.form != Undefined }

func (t Tree) Is(f Form) bool { return t.form == f }

// IsFloat reports whether a Number-form tree holds a float64 payload
// rather than an int64 one.
func (t Tree) IsFloat() bool { return t.form == Number && t.isFloat }

// ErrorValue returns the wrapped error of an ErrorForm tree.
func (t Tree) ErrorValue() error { return t.err }

// --- coercions ---

func (t Tree) AsBool() (bool, error) {
	if t.form != Bool {
		return false, &WrongForm{Expected: Bool, Got: t}
	}
	return t.boolean, nil
}

func (t Tree) AsString() (string, error) {
	if t.form != String {
		return "", &WrongForm{Expected: String, Got: t}
	}
	return t.str, nil
}

// AsRune implements the "a one-character string converts to a byte-sized
// character" special compatibility of spec.md §4.1.
func (t Tree) AsRune() (rune, error) {
	s, err := t.AsString()
	if err != nil {
		return 0, err
	}
	runes := []rune(s)
	if len(runes) != 1 {
		return 0, &CantRepresent{TypeName: "char", Got: t}
	}
	return runes[0], nil
}

// AsFloat64 implements the null->NaN JSON bridge and the int->float
// widening of spec.md §4.1 (exact up to magnitude 2^53).
func (t Tree) AsFloat64() (float64, error) {
	switch t.form {
	case Null:
		return math.NaN(), nil
	case Number:
		if t.isFloat {
			return t.float, nil
		}
		return float64(t.integer), nil
	default:
		return 0, &WrongForm{Expected: Number, Got: t}
	}
}

// AsInt64 implements the exact-round-trip-only float->int rule of
// spec.md §4.1/§8.
func (t Tree) AsInt64() (int64, error) {
	if t.form != Number {
		return 0, &WrongForm{Expected: Number, Got: t}
	}
	if !t.isFloat {
		return t.integer, nil
	}
	i := int64(t.float)
	if float64(i) != t.float {
		return 0, &CantRepresent{TypeName: "int", Got: t}
	}
	return i, nil
}

// AsIntN converts to a signed integer of the given bit width, raising
// CantRepresent if the value overflows it.
func (t Tree) AsIntN(bits int) (int64, error) {
	i, err := t.AsInt64()
	if err != nil {
		return 0, err
	}
	if bits >= 64 {
		return i, nil
	}
	max := int64(1)<<(bits-1) - 1
	min := -(int64(1) << (bits - 1))
	if i < min || i > max {
		return 0, &CantRepresent{TypeName: signedTypeName(bits), Got: t}
	}
	return i, nil
}

// AsUintN converts to an unsigned integer of the given bit width, raising
// CantRepresent on overflow or on a negative source value.
func (t Tree) AsUintN(bits int) (uint64, error) {
	i, err := t.AsInt64()
	if err != nil {
		return 0, err
	}
	if i < 0 {
		return 0, &CantRepresent{TypeName: unsignedTypeName(bits), Got: t}
	}
	u := uint64(i)
	if bits < 64 && u > (uint64(1)<<bits)-1 {
		return 0, &CantRepresent{TypeName: unsignedTypeName(bits), Got: t}
	}
	return u, nil
}

func signedTypeName(bits int) string {
	switch bits {
	case 8:
		return "int8"
	case 16:
		return "int16"
	case 32:
		return "int32"
	default:
		return "int64"
	}
}

func unsignedTypeName(bits int) string {
	switch bits {
	case 8:
		return "uint8"
	case 16:
		return "uint16"
	case 32:
		return "uint32"
	default:
		return "uint64"
	}
}

func (t Tree) AsArray() ([]Tree, error) {
	if t.form != Array {
		return nil, &WrongForm{Expected: Array, Got: t}
	}
	return t.arr, nil
}

func (t Tree) AsObject() ([]Pair, error) {
	if t.form != Object {
		return nil, &WrongForm{Expected: Object, Got: t}
	}
	return t.obj, nil
}

// Attr returns the value paired with key in an Object-form tree, or
// (Undef(), false) if there is no such pair or t is not Object-form.
func (t Tree) Attr(key string) (Tree, bool) {
	if t.form != Object {
		return Tree{}, false
	}
	for _, p := range t.obj {
		if p.Key == key {
			return p.Value, true
		}
	}
	return Tree{}, false
}

// Elem returns the i'th element of an Array-form tree, or (Undef(), false)
// if i is out of range or t is not Array-form.
func (t Tree) Elem(i int) (Tree, bool) {
	if t.form != Array || i < 0 || i >= len(t.arr) {
		return Tree{}, false
	}
	return t.arr[i], true
}

// Get is the panicking "indexing raises on miss" accessor of spec.md §4.1,
// for callers that have already established the key must exist.
func (t Tree) Get(key string) Tree {
	v, ok := t.Attr(key)
	if !ok {
		panic(&AttrNotFound{Key: key})
	}
	return v
}

// GetElem is Get's array-indexing counterpart.
func (t Tree) GetElem(i int) Tree {
	v, ok := t.Elem(i)
	if !ok {
		panic(&ElemNotFound{Index: i})
	}
	return v
}
