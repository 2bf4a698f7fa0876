// Package dynamic implements AYU's runtime-typed owned value (Dynamic)
// and borrowed pointer (Pointer). Spec.md §3.
package dynamic

import (
	"reflect"
	"unsafe"

	"github.com/ayu-run/ayu/typeid"
)

// Dynamic is a (TypeId, owned heap slot) pair with value semantics but no
// copy: moves transfer ownership. The empty Dynamic has an empty TypeId
// and nil slot.
//
// Go has no copy constructors to hook, so "no copy" is enforced by
// convention: callers pass/return Dynamic by value and call TakeFrom to
// move it, which clears the source. A Dynamic that is copied by assignment
// without TakeFrom aliases the same boxed value — exactly as copying a raw
// pointer would — so callers must follow the same discipline the original
// asks of its own move-only type.
type Dynamic struct {
	id  typeid.TypeId
	box any // holds *T (a pointer), so Addr has a stable address to return
}

// Empty returns the empty Dynamic.
func Empty() Dynamic { return Dynamic{} }

func (d Dynamic) IsEmpty() bool { return d.id.IsEmpty() }

func (d Dynamic) Type() typeid.TypeId { return d.id }

// New boxes v as a Dynamic of T's registered type.
func New[T any](v T) Dynamic {
	p := new(T)
	*p = v
	return Dynamic{id: typeid.Of[T](), box: p}
}

// FromAny boxes v, whose dynamic type must match id's registered
// reflect.Type, as a Dynamic. For code that only knows a TypeId at
// compile time — package resource constructing a resource's root value
// from typeid.TypeId.DefaultConstruct, where no static T is available to
// call New directly.
func FromAny(id typeid.TypeId, v any) Dynamic {
	rv := reflect.ValueOf(v)
	p := reflect.New(rv.Type())
	p.Elem().Set(rv)
	return Dynamic{id: id, box: p.Interface()}
}

// Value returns the boxed value as T, and whether the Dynamic actually
// held a T.
func Value[T any](d Dynamic) (T, bool) {
	p, ok := d.box.(*T)
	if !ok {
		var zero T
		return zero, false
	}
	return *p, true
}

// Addr returns the stable address of the boxed value, e.g. for wrapping a
// Dynamic as an access.Reference via the identity accessor (package
// resource's Resource.value does this to serialize a resource's root).
// The empty Dynamic returns nil.
func (d Dynamic) Addr() unsafe.Pointer {
	if d.box == nil {
		return nil
	}
	return unsafe.Pointer(reflect.ValueOf(d.box).Pointer())
}

// Take moves d out, returning its value and clearing the receiver's slot
// at the call site (since Go passes Dynamic by value, callers must
// reassign: d = d.Take() is not meaningful; use TakeFrom on an
// addressable variable instead).
func (d Dynamic) Take() Dynamic { return d }

// TakeFrom moves *slot out into the returned Dynamic, zeroing *slot.
func TakeFrom(slot *Dynamic) Dynamic {
	v := *slot
	*slot = Dynamic{}
	return v
}

// Any returns the boxed value (dereferenced) as an untyped any, for
// generic code that must hand it to a facet callback.
func (d Dynamic) Any() any {
	if d.box == nil {
		return nil
	}
	return reflect.ValueOf(d.box).Elem().Interface()
}

// Pointer is a (TypeId, raw address) pair with pointer semantics:
// trivially copyable, does not own. The empty Pointer has an empty TypeId
// and nil address.
type Pointer struct {
	id  typeid.TypeId
	ptr unsafe.Pointer
}

func EmptyPointer() Pointer { return Pointer{} }

func (p Pointer) IsEmpty() bool { return p.id.IsEmpty() }

func (p Pointer) Type() typeid.TypeId { return p.id }

func (p Pointer) Addr() unsafe.Pointer { return p.ptr }

// PointerTo builds a Pointer to an addressable T.
func PointerTo[T any](v *T) Pointer {
	return Pointer{id: typeid.Of[T](), ptr: unsafe.Pointer(v)}
}

// NewPointer builds a Pointer from a raw address and its already-known
// type identity. Used by package access to turn an Accessor's Address()
// result back into a typed, owner-agnostic Pointer.
func NewPointer(id typeid.TypeId, ptr unsafe.Pointer) Pointer {
	return Pointer{id: id, ptr: ptr}
}

// As reinterprets p's address as *T, if p's type is exactly T's registered
// type or its readonly variant; otherwise, including when T has no
// registered type, it returns nil, false. The base/delegate cast chain is
// handled by package descriptor's CastTo instead; this is the "generic
// cast" escape hatch for exact-type reinterpretation only.
func As[T any](p Pointer) (*T, bool) {
	want, err := typeid.Lookup(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, false
	}
	if !p.id.Equal(want) && !p.id.Equal(want.AsReadonly()) {
		return nil, false
	}
	return (*T)(p.ptr), true
}
