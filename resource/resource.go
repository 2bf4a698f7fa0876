package resource

import (
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/typeid"
)

// Resource is one named, typed root value tracked by a Universe, moving
// through the state machine of spec.md §4.7. Every Resource is owned by
// exactly one Universe and reachable only through it (via Use, Get, or a
// batch operation), matching the original's "resources are a flyweight
// keyed by name" design.
type Resource struct {
	name     string
	typ      typeid.TypeId
	universe *Universe
	value    dynamic.Dynamic
	oldValue dynamic.Dynamic
	state    State
}

// Name returns the resource's IRI.
func (r *Resource) Name() string { return r.name }

// Type returns the Go type this resource was declared with.
func (r *Resource) Type() typeid.TypeId { return r.typ }

// State returns the resource's current lifecycle state.
func (r *Resource) State() State { return r.state }

// Loaded reports whether the resource currently holds a live value.
func (r *Resource) Loaded() bool { return r.state == Loaded }

// Empty reports whether the resource has never been given a value
// (spec.md §7's EmptyResourceValue guard).
func (r *Resource) Empty() bool { return r.value.IsEmpty() }

// ref builds an access.Reference to the resource's root value, using the
// identity accessor over the Dynamic's stable boxed address (spec.md
// §3.4's "a resource's root is just another addressable item").
func (r *Resource) ref() access.Reference {
	if r.value.IsEmpty() {
		return access.Empty
	}
	return access.New(dynamic.NewPointer(r.value.Type(), r.value.Addr()), access.Identity(r.value.Type()))
}

// oldRef is ref but over the resource's staged-for-destruction old value,
// used only while reload verification is deciding whether to commit.
func (r *Resource) oldRef() access.Reference {
	if r.oldValue.IsEmpty() {
		return access.Empty
	}
	return access.New(dynamic.NewPointer(r.oldValue.Type(), r.oldValue.Addr()), access.Identity(r.oldValue.Type()))
}

// Value returns the resource's current root value as T, and whether it
// is loaded with exactly that type.
func Value[T any](r *Resource) (T, bool) {
	return dynamic.Value[T](r.value)
}
