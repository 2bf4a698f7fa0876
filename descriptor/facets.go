// Package descriptor implements AYU's declarative facet tables (spec.md
// §4.4) attached to a typeid.Description at describe time via a generic
// builder, and the upcast/downcast/cast family (spec.md §4.2) that walks
// them. It depends on both typeid and access, which is exactly why the
// cast family lives here rather than in typeid (see DESIGN.md).
package descriptor

import (
	"fmt"
	"unsafe"

	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/tree"
	"github.com/ayu-run/ayu/typeid"
)

// AttrEntry is one entry of an attrs facet: a named, optionally-optional,
// optionally-inherited (include) child accessor (spec.md §4.4).
type AttrEntry struct {
	Key      string
	Acr      access.Accessor
	Optional bool
	Include  bool
}

// Attr builds one AttrEntry.
func Attr(key string, acr access.Accessor, optional, include bool) AttrEntry {
	return AttrEntry{Key: key, Acr: acr, Optional: optional, Include: include}
}

// ElemEntry is one entry of an elems facet: a positional, optionally
// optional child accessor. All optional entries must follow all required
// ones (spec.md §4.4), validated at Describe time.
type ElemEntry struct {
	Acr      access.Accessor
	Optional bool
}

// Elem builds one ElemEntry.
func Elem(acr access.Accessor, optional bool) ElemEntry {
	return ElemEntry{Acr: acr, Optional: optional}
}

// ValueEntry names one enum-like constant for a values facet: a value
// equal (per Eq) to Value prints as Name, and parsing Name assigns Value
// back via Assign (spec.md §4.4).
type ValueEntry struct {
	Name  string
	Value any
}

// Facets is the full set of optional facets a Description may carry, at
// most one of each (spec.md §4.2's Description invariant). Stored behind
// typeid.Description's opaque Facets field and recovered with a type
// assertion by this package only.
type Facets struct {
	ToTree   func(from unsafe.Pointer) (tree.Tree, error)
	FromTree func(from unsafe.Pointer, t tree.Tree) error
	Swizzle  func(from unsafe.Pointer, t tree.Tree) error
	Init     func(from unsafe.Pointer) error

	ValuesEq     func(a, b unsafe.Pointer) bool
	ValuesAssign func(dst unsafe.Pointer, v any)
	Values       []ValueEntry

	Attrs []AttrEntry
	Elems []ElemEntry

	Keys     access.Accessor
	AttrFunc func(from unsafe.Pointer, key string) access.Reference
	Length   func(from unsafe.Pointer) int
	ElemFunc func(from unsafe.Pointer, index int) access.Reference
	Delegate access.Accessor

	// PreferArray records spec.md §4.4's form preference: true when the
	// Elems/Length facet was registered before Attrs/Keys in the Describe
	// call that built this type, so serialize.ToTree knows which shape to
	// prefer when an item could print as either (rare in practice, but
	// arises for e.g. a struct that is both a fixed record and offers a
	// dynamic view).
	PreferArray bool
}

// state accumulates a Description's facets plus its constructor/destructor
// thunks while Describe's options run, before typeid.New is called.
type state[T any] struct {
	facets  *Facets
	ctor    func() T
	destroy func(*T)

	// seq/objectSeq/arraySeq implement spec.md §4.4's "whichever of the
	// object-implying or array-implying facets appears earliest" form
	// preference rule by recording the Option call order.
	seq       int
	objectSeq int
	arraySeq  int
}

// Option configures one facet (or the constructor/destructor) of a
// Description being built for T.
type Option[T any] func(*state[T])

func newState[T any]() *state[T] { return &state[T]{facets: &Facets{}} }

// DefaultConstruct registers T's default-construct thunk.
func DefaultConstruct[T any](fn func() T) Option[T] {
	return func(s *state[T]) { s.ctor = fn }
}

// Destructor registers T's destroy thunk.
func Destructor[T any](fn func(*T)) Option[T] {
	return func(s *state[T]) { s.destroy = fn }
}

// ToTree registers the to_tree facet.
func ToTree[T any](fn func(v *T) (tree.Tree, error)) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.ToTree == nil, "to_tree")
		s.facets.ToTree = func(from unsafe.Pointer) (tree.Tree, error) { return fn((*T)(from)) }
	}
}

// FromTree registers the from_tree facet.
func FromTree[T any](fn func(v *T, t tree.Tree) error) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.FromTree == nil, "from_tree")
		s.facets.FromTree = func(from unsafe.Pointer, t tree.Tree) error { return fn((*T)(from), t) }
	}
}

// Swizzle registers the swizzle facet, run after the whole document has
// structurally finished building (spec.md §4.5/§5).
func Swizzle[T any](fn func(v *T, t tree.Tree) error) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Swizzle == nil, "swizzle")
		s.facets.Swizzle = func(from unsafe.Pointer, t tree.Tree) error { return fn((*T)(from), t) }
	}
}

// Init registers the init facet, run after all swizzling completes.
func Init[T any](fn func(v *T) error) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Init == nil, "init")
		s.facets.Init = func(from unsafe.Pointer) error { return fn((*T)(from)) }
	}
}

// Values registers the values (enum-like) facet: eq compares *v against
// each entry's Value, and assign stores a matching entry's Value back
// into *v.
func Values[T any](eq func(a, b T) bool, assign func(dst *T, v T), entries ...ValueEntry) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Values == nil, "values")
		s.facets.Values = entries
		s.facets.ValuesEq = func(a, b unsafe.Pointer) bool { return eq(*(*T)(a), *(*T)(b)) }
		s.facets.ValuesAssign = func(dst unsafe.Pointer, v any) { assign((*T)(dst), v.(T)) }
	}
}

// Attrs registers the attrs (object-shaped) facet.
func Attrs[T any](entries ...AttrEntry) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Attrs == nil, "attrs")
		s.facets.Attrs = entries
		s.seq++
		if s.objectSeq == 0 {
			s.objectSeq = s.seq
		}
	}
}

// Elems registers the elems (array-shaped, fixed length) facet.
func Elems[T any](entries ...ElemEntry) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Elems == nil, "elems")
		s.facets.Elems = entries
		s.seq++
		if s.arraySeq == 0 {
			s.arraySeq = s.seq
		}
	}
}

// Keys registers the keys facet: acr reads/writes an ordered []string of
// currently-valid attr names for a dynamic object.
func Keys[T any](acr access.Accessor) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Keys == nil, "keys")
		s.facets.Keys = acr
		s.seq++
		if s.objectSeq == 0 {
			s.objectSeq = s.seq
		}
	}
}

// AttrFuncFacet registers the attr_func facet: dynamic attr lookup by key.
func AttrFuncFacet[T any](fn func(v *T, key string) access.Reference) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.AttrFunc == nil, "attr_func")
		s.facets.AttrFunc = func(from unsafe.Pointer, key string) access.Reference { return fn((*T)(from), key) }
	}
}

// Length registers the length facet: dynamic array length.
func Length[T any](fn func(v *T) int) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Length == nil, "length")
		s.facets.Length = func(from unsafe.Pointer) int { return fn((*T)(from)) }
		s.seq++
		if s.arraySeq == 0 {
			s.arraySeq = s.seq
		}
	}
}

// ElemFuncFacet registers the elem_func facet: dynamic elem lookup by
// index.
func ElemFuncFacet[T any](fn func(v *T, index int) access.Reference) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.ElemFunc == nil, "elem_func")
		s.facets.ElemFunc = func(from unsafe.Pointer, index int) access.Reference { return fn((*T)(from), index) }
	}
}

// Delegate registers the delegate facet: the item serializes exactly as
// the pointed-to sub-item.
func Delegate[T any](acr access.Accessor) Option[T] {
	return func(s *state[T]) {
		mustAbsent(s.facets.Delegate == nil, "delegate")
		s.facets.Delegate = acr
	}
}

func mustAbsent(absent bool, facet string) {
	if !absent {
		panic(fmt.Sprintf("descriptor: duplicate %s facet", facet))
	}
}

// Describe builds and registers a Description for T from opts, matching
// the teacher's eager (panic at program init, not at first use) style of
// validating description tables (pkg/ast/limits.go). Panics if the elems
// facet has a required entry after an optional one (spec.md §4.4).
func Describe[T any](name string, opts ...Option[T]) typeid.TypeId {
	st := newState[T]()
	for _, opt := range opts {
		opt(st)
	}
	validateElems(st.facets.Elems)
	if st.arraySeq != 0 && (st.objectSeq == 0 || st.arraySeq < st.objectSeq) {
		st.facets.PreferArray = true
	}
	d := typeid.New[T](name, st.ctor, st.destroy)
	id := typeid.Register(d)
	d.Facets = st.facets
	return id
}

func validateElems(elems []ElemEntry) {
	seenOptional := false
	for i, e := range elems {
		if e.Optional {
			seenOptional = true
			continue
		}
		if seenOptional {
			panic(fmt.Sprintf("descriptor: elems[%d] is required but follows an optional elem", i))
		}
	}
}

// Of returns the Facets stashed in id's Description, or nil if id has
// none (an atomic type with no facets, which may still serialize via
// to_tree/values/delegate individually, or not at all).
func Of(id typeid.TypeId) *Facets {
	d := id.Description()
	if d == nil {
		return nil
	}
	f, _ := d.Facets.(*Facets)
	return f
}
