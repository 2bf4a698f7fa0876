// Package typeid implements AYU's type registry: a stable identity for a
// described host type, keyed by reflect.Type rather than the original's
// pointer-to-descriptor bit-packing (a GC'd language gets a stable
// identity for free — see DESIGN.md). Facet tables (attrs/elems/keys/...)
// live in package descriptor, which depends on this package; to avoid an
// import cycle, a Description exposes only an opaque Facets slot that
// descriptor populates and reads back via a type assertion.
package typeid

import (
	"reflect"
	"sync"
)

// Description is the static, allocation-stable record for one described
// type. Spec.md §3.
type Description struct {
	rt               reflect.Type
	name             string
	defaultConstruct func() any
	destroy          func(any)

	// Facets holds a *descriptor.Facets, stashed here to avoid a typeid
	// <-> descriptor import cycle (descriptor depends on typeid, not the
	// reverse).
	Facets any
}

// New builds a Description for T. defaultConstruct/destroy may be nil if
// the type has no default constructor / needs no explicit destruction.
func New[T any](name string, defaultConstruct func() T, destroy func(*T)) *Description {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	d := &Description{rt: rt, name: name}
	if defaultConstruct != nil {
		d.defaultConstruct = func() any { v := defaultConstruct(); return v }
	}
	if destroy != nil {
		d.destroy = func(v any) {
			t := v.(T)
			destroy(&t)
		}
	}
	return d
}

// TypeId bit-packs, conceptually, a pointer-to-description with a single
// readonly flag (spec.md §3). Two TypeIds are equal iff they name the same
// description and carry the same readonly flag.
type TypeId struct {
	desc     *Description
	readonly bool
}

// Empty is the distinguished empty TypeId. Using it for anything besides
// equality or IsEmpty is invalid, per spec.md §3.
var Empty TypeId

func (t TypeId) IsEmpty() bool { return t.desc == nil }

func (a TypeId) Equal(b TypeId) bool { return a.desc == b.desc && a.readonly == b.readonly }

func (t TypeId) Readonly() bool { return t.readonly }

// AsReadonly returns the readonly variant of the same type identity.
func (t TypeId) AsReadonly() TypeId { t.readonly = true; return t }

// Writable returns the read-write variant of the same type identity.
func (t TypeId) Writable() TypeId { t.readonly = false; return t }

func (t TypeId) Name() string {
	if t.IsEmpty() {
		return ""
	}
	return t.desc.name
}

func (t TypeId) Size() uintptr {
	if t.IsEmpty() {
		return 0
	}
	return t.desc.rt.Size()
}

func (t TypeId) Align() int {
	if t.IsEmpty() {
		return 0
	}
	return t.desc.rt.Align()
}

func (t TypeId) ReflectType() reflect.Type {
	if t.IsEmpty() {
		return nil
	}
	return t.desc.rt
}

// Description exposes the underlying description, chiefly so package
// descriptor can read/write its Facets slot.
func (t TypeId) Description() *Description { return t.desc }

// DefaultConstruct builds a new zero/default value of t's type.
// CannotDefaultConstruct is raised if no constructor was registered;
// CannotDestroy is raised if a constructor exists but no destructor does,
// since constructing such a value would make it impossible to ever
// release (spec.md §4.2).
func (t TypeId) DefaultConstruct() (any, error) {
	if t.IsEmpty() || t.desc.defaultConstruct == nil {
		return nil, &CannotDefaultConstruct{Type: t}
	}
	if t.desc.destroy == nil {
		return nil, &CannotDestroy{Type: t}
	}
	return t.desc.defaultConstruct(), nil
}

// Destroy runs the type's registered destructor, if any.
func (t TypeId) Destroy(v any) error {
	if t.IsEmpty() || t.desc.destroy == nil {
		return &CannotDestroy{Type: t}
	}
	t.desc.destroy(v)
	return nil
}

// --- registry ---

var (
	mu     sync.Mutex
	byType = map[reflect.Type]*Description{}
	byName = map[string]*Description{}
)

// Register installs d into the process-wide registry under its reflect
// type and, if non-empty, its name. Intended to be called from package
// descriptor's Describe at var-init time.
func Register(d *Description) TypeId {
	mu.Lock()
	defer mu.Unlock()
	byType[d.rt] = d
	if d.name != "" {
		byName[d.name] = d
	}
	return TypeId{desc: d}
}

// Lookup resolves a reflect.Type to its registered TypeId.
func Lookup(rt reflect.Type) (TypeId, error) {
	mu.Lock()
	d, ok := byType[rt]
	mu.Unlock()
	if !ok {
		return Empty, &UnknownType{RType: rt}
	}
	return TypeId{desc: d}, nil
}

// Of resolves T's registered TypeId. Panics if T was never described, on
// the theory that this is always a program-init-time bug (T must be
// described before this is called), matching descriptor's own panicking
// validation of describe-time invariants.
func Of[T any]() TypeId {
	rt := reflect.TypeOf((*T)(nil)).Elem()
	id, err := Lookup(rt)
	if err != nil {
		panic(err)
	}
	return id
}

// ByName resolves a registered type name to its TypeId.
func ByName(name string) (TypeId, error) {
	mu.Lock()
	d, ok := byName[name]
	mu.Unlock()
	if !ok {
		return Empty, &TypeNotFound{Name: name}
	}
	return TypeId{desc: d}, nil
}
