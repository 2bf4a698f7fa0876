package descriptor

import (
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/typeid"
)

// findBaseChain searches the delegate/Include-attr chain outward from
// "from" looking for "to", returning the composed accessor that projects
// from a from-typed value to a to-typed value. This is the "Include-flag
// + anchored = polymorphic subtyping" mechanism named in spec.md's
// glossary: base/delegate links are how a described type declares "is-a"
// relationships in lieu of language-level inheritance.
//
// Every accessor reachable this way is expected to be one whose TypeOf
// does not actually need a live "from" value (Base, Member, Identity,
// Delegate built from one of those) — true for every accessor a
// description author would reasonably use to declare a static base
// relationship — so calling TypeOf(nil) here to walk the chain is safe.
func findBaseChain(from, to typeid.TypeId) (access.Accessor, bool) {
	if from.Equal(to) {
		return access.Identity(from), true
	}
	f := Of(from)
	if f == nil {
		return nil, false
	}
	if f.Delegate != nil {
		dt := f.Delegate.TypeOf(nil)
		if rest, ok := findBaseChain(dt, to); ok {
			return access.Chain(f.Delegate, rest), true
		}
	}
	for _, a := range f.Attrs {
		if !a.Include {
			continue
		}
		at := a.Acr.TypeOf(nil)
		if rest, ok := findBaseChain(at, to); ok {
			return access.Chain(a.Acr, rest), true
		}
	}
	return nil, false
}

// TryUpcastTo rebuilds ref as a Reference to one of its base types,
// walking the delegate/Include chain. Readonly-ness can only grow (the
// composed chain's readonly is the OR of every hop), matching spec.md
// §4.2's "must refuse to add non-readonly in the up direction." Returns
// false if to is not a base of ref's type.
func TryUpcastTo(ref access.Reference, to typeid.TypeId) (access.Reference, bool) {
	chain, ok := findBaseChain(ref.TypeOf(), to)
	if !ok {
		return access.Empty, false
	}
	return access.New(ref.Host(), access.Chain(ref.Accessor(), chain)), true
}

// UpcastTo is TryUpcastTo but raises CannotCoerce on failure.
func UpcastTo(ref access.Reference, to typeid.TypeId) (access.Reference, error) {
	r, ok := TryUpcastTo(ref, to)
	if !ok {
		return access.Empty, &typeid.CannotCoerce{From: ref.TypeOf(), To: to}
	}
	return r, nil
}

// TryDowncastTo rebuilds ref, whose type is a base of to, as a Reference
// to the more-derived type to. Only possible along a chain whose every
// hop exposes InverseAddress (base and member accessors do; spec.md
// §4.2's "downcasts may only follow accessors that expose
// inverse_address"). Per spec.md, a downcast may silently drop
// readonly-ness: the result is addressed fresh via to's own read-write
// identity accessor rather than inheriting ref's readonly flag.
func TryDowncastTo(ref access.Reference, to typeid.TypeId) (access.Reference, bool) {
	chain, ok := findBaseChain(to, ref.TypeOf())
	if !ok {
		return access.Empty, false
	}
	addr := chain.InverseAddress(ref.Host().Addr())
	if addr == nil {
		return access.Empty, false
	}
	return access.New(dynamic.NewPointer(to, addr), access.Identity(to)), true
}

// DowncastTo is TryDowncastTo but raises CannotCoerce on failure.
func DowncastTo(ref access.Reference, to typeid.TypeId) (access.Reference, error) {
	r, ok := TryDowncastTo(ref, to)
	if !ok {
		return access.Empty, &typeid.CannotCoerce{From: ref.TypeOf(), To: to}
	}
	return r, nil
}

// TryCastTo attempts TryUpcastTo then TryDowncastTo, matching spec.md
// §4.2's generic "cast" operation that works in either direction.
func TryCastTo(ref access.Reference, to typeid.TypeId) (access.Reference, bool) {
	if r, ok := TryUpcastTo(ref, to); ok {
		return r, true
	}
	return TryDowncastTo(ref, to)
}

// CastTo is TryCastTo but raises CannotCoerce on failure.
func CastTo(ref access.Reference, to typeid.TypeId) (access.Reference, error) {
	r, ok := TryCastTo(ref, to)
	if !ok {
		return access.Empty, &typeid.CannotCoerce{From: ref.TypeOf(), To: to}
	}
	return r, nil
}
