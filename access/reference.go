package access

import (
	"unsafe"

	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/typeid"
)

// Reference is a (host address, borrowed accessor) pair (spec.md §3/§3.4):
// host is a raw, owner-agnostic address, and acr projects from it to the
// referred-to item. Copying a Reference is copying two small fields; in
// the original's manual-refcounting design this bumped the accessor's
// refcount, a step Go's GC makes unnecessary (the accessor stays alive as
// long as something, anything, still holds this Reference value).
type Reference struct {
	host dynamic.Pointer
	acr  Accessor
}

// Empty is the distinguished empty Reference.
var Empty Reference

// New builds a Reference from a host pointer and the accessor that
// projects from it.
func New(host dynamic.Pointer, acr Accessor) Reference {
	return Reference{host: host, acr: acr}
}

func (r Reference) IsEmpty() bool { return r.acr == nil }

// Host returns the reference's host pointer. Exposed chiefly for package
// descriptor's cast family, which needs to rebuild a Reference around a
// different accessor over the same or a related host.
func (r Reference) Host() dynamic.Pointer { return r.host }

// Accessor returns the reference's accessor. See Host.
func (r Reference) Accessor() Accessor { return r.acr }

// TypeOf reports the referred-to item's type.
func (r Reference) TypeOf() typeid.TypeId {
	if r.IsEmpty() {
		return typeid.Empty
	}
	return r.acr.TypeOf(r.host.Addr())
}

// Readonly reports whether the accessor chain forbids writes.
func (r Reference) Readonly() bool { return !r.IsEmpty() && r.acr.Readonly() }

// Addressable reports whether Address would succeed.
func (r Reference) Addressable() bool {
	return !r.IsEmpty() && r.acr.Address(r.host.Addr()) != nil
}

// Address returns a Pointer to the referred-to item, and whether the
// accessor chain supports one.
func (r Reference) Address() (dynamic.Pointer, bool) {
	if r.IsEmpty() {
		return dynamic.Pointer{}, false
	}
	addr := r.acr.Address(r.host.Addr())
	if addr == nil {
		return dynamic.Pointer{}, false
	}
	return dynamic.NewPointer(r.TypeOf(), addr), true
}

func (r Reference) rawAccess(op Op, fn func(unsafe.Pointer) error) error {
	if r.IsEmpty() {
		return &UnaddressableReference{}
	}
	return r.acr.Access(op, r.host.Addr(), fn)
}

// Read invokes fn with the referred-to value.
func Read[T any](r Reference, fn func(*T) error) error {
	return r.rawAccess(OpRead, func(to unsafe.Pointer) error { return fn((*T)(to)) })
}

// Write invokes fn to overwrite the referred-to value wholesale.
func Write[T any](r Reference, fn func(*T) error) error {
	return r.rawAccess(OpWrite, func(to unsafe.Pointer) error { return fn((*T)(to)) })
}

// Modify invokes fn to mutate the referred-to value in place.
func Modify[T any](r Reference, fn func(*T) error) error {
	return r.rawAccess(OpModify, func(to unsafe.Pointer) error { return fn((*T)(to)) })
}

// Equal implements spec.md §3's two-branch equality: same host+accessor,
// or both addressable with equal types and the same resolved address.
func (r Reference) Equal(o Reference) bool {
	if r.IsEmpty() || o.IsEmpty() {
		return r.IsEmpty() && o.IsEmpty()
	}
	if r.acr == o.acr && r.host.Addr() == o.host.Addr() {
		return true
	}
	ra, rok := r.Address()
	oa, ook := o.Address()
	if rok && ook && ra.Type().Equal(oa.Type()) && ra.Addr() == oa.Addr() {
		return true
	}
	return false
}
