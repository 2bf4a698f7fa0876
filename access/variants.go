package access

import (
	"reflect"
	"unsafe"

	"github.com/ayu-run/ayu/typeid"
)

// baseAcr projects to an embedded base/super-object at a fixed byte
// offset within "from" (spec.md §4.3's "base (upcast)"). Both directions
// are pointer arithmetic, so InverseAddress is always available — this is
// one of the two variants a downcast may follow (spec.md §4.2).
type baseAcr struct {
	typ      typeid.TypeId
	offset   uintptr
	readonly bool
}

// Base builds an upcast accessor to typ, whose value sits offset bytes
// into the containing struct.
func Base(typ typeid.TypeId, offset uintptr, readonly bool) Accessor {
	return &baseAcr{typ: typ, offset: offset, readonly: readonly}
}

func (a *baseAcr) TypeOf(unsafe.Pointer) typeid.TypeId { return a.typ }
func (a *baseAcr) Readonly() bool                      { return a.readonly }
func (a *baseAcr) Anchored() bool                      { return false }
func (a *baseAcr) Address(from unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(from) + a.offset)
}
func (a *baseAcr) InverseAddress(to unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(to) - a.offset)
}
func (a *baseAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	return fn(a.Address(from))
}

// memberAcr projects to a named field at a fixed byte offset (spec.md
// §4.3's "member (pointer-to-member)"). Mechanically identical to baseAcr
// but kept as a distinct kind: a base accessor denotes "from IS-A to", a
// member accessor denotes "from HAS-A to". Package descriptor's cast
// resolution does not look at the kind: it follows the accessor of any
// delegate or included attr, member accessors included.
type memberAcr struct {
	typ      typeid.TypeId
	offset   uintptr
	readonly bool
}

// Member builds a pointer-to-member accessor to typ at offset bytes into
// the containing struct.
func Member(typ typeid.TypeId, offset uintptr, readonly bool) Accessor {
	return &memberAcr{typ: typ, offset: offset, readonly: readonly}
}

func (a *memberAcr) TypeOf(unsafe.Pointer) typeid.TypeId { return a.typ }
func (a *memberAcr) Readonly() bool                      { return a.readonly }
func (a *memberAcr) Anchored() bool                      { return false }
func (a *memberAcr) Address(from unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(from) + a.offset)
}
func (a *memberAcr) InverseAddress(to unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer(uintptr(to) - a.offset)
}
func (a *memberAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	return fn(a.Address(from))
}

// refFuncAcr wraps a single function returning a stable pointer into
// "from" (spec.md §4.3's "ref_func"): reading and writing both go through
// the same returned address, so the accessor is addressable.
type refFuncAcr struct {
	typ  typeid.TypeId
	ref  func(from unsafe.Pointer) unsafe.Pointer
	flag bool // readonly
}

// RefFunc builds a ref_func accessor: ref must return a stable address
// reachable from "from" for the lifetime of that value.
func RefFunc(typ typeid.TypeId, ref func(from unsafe.Pointer) unsafe.Pointer) Accessor {
	return &refFuncAcr{typ: typ, ref: ref}
}

// ConstRefFunc builds the readonly variant ("const_ref_func").
func ConstRefFunc(typ typeid.TypeId, ref func(from unsafe.Pointer) unsafe.Pointer) Accessor {
	return &refFuncAcr{typ: typ, ref: ref, flag: true}
}

func (a *refFuncAcr) TypeOf(unsafe.Pointer) typeid.TypeId             { return a.typ }
func (a *refFuncAcr) Readonly() bool                                  { return a.flag }
func (a *refFuncAcr) Anchored() bool                                  { return false }
func (a *refFuncAcr) Address(from unsafe.Pointer) unsafe.Pointer      { return a.ref(from) }
func (a *refFuncAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer    { return nil }
func (a *refFuncAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	return fn(a.ref(from))
}

// refFuncsAcr pairs an independent getter and setter, each addressing the
// value by reference (spec.md's "ref_funcs"): unlike ref_func, the getter
// and setter need not agree on one stable address (e.g. a getter backed by
// a cache and a setter that invalidates it), so Address is unsupported.
type refFuncsAcr struct {
	typ typeid.TypeId
	get func(from unsafe.Pointer) unsafe.Pointer
	set func(from unsafe.Pointer, value unsafe.Pointer)
}

// RefFuncs builds a ref_funcs accessor from an independent getter/setter
// pair, each given a pointer to the value.
func RefFuncs(typ typeid.TypeId, get func(from unsafe.Pointer) unsafe.Pointer, set func(from, value unsafe.Pointer)) Accessor {
	return &refFuncsAcr{typ: typ, get: get, set: set}
}

func (a *refFuncsAcr) TypeOf(unsafe.Pointer) typeid.TypeId          { return a.typ }
func (a *refFuncsAcr) Readonly() bool                               { return a.set == nil }
func (a *refFuncsAcr) Anchored() bool                               { return false }
func (a *refFuncsAcr) Address(unsafe.Pointer) unsafe.Pointer        { return nil }
func (a *refFuncsAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *refFuncsAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	switch op {
	case OpRead:
		return fn(a.get(from))
	case OpWrite, OpModify:
		ptr := a.get(from)
		if err := fn(ptr); err != nil {
			return err
		}
		a.set(from, ptr)
		return nil
	}
	return nil
}

// valueFuncAcr projects through a getter/setter pair that copy the value
// by Go value rather than pointer (spec.md's "value_func"): used when
// there is no addressable storage at all, e.g. a computed property.
type valueFuncAcr struct {
	typ typeid.TypeId
	get func(from unsafe.Pointer) any
	set func(from unsafe.Pointer, value any)
}

// ValueFunc builds a value_func accessor. set may be nil for a readonly
// computed property.
func ValueFunc(typ typeid.TypeId, get func(from unsafe.Pointer) any, set func(from unsafe.Pointer, value any)) Accessor {
	return &valueFuncAcr{typ: typ, get: get, set: set}
}

func (a *valueFuncAcr) TypeOf(unsafe.Pointer) typeid.TypeId          { return a.typ }
func (a *valueFuncAcr) Readonly() bool                               { return a.set == nil }
func (a *valueFuncAcr) Anchored() bool                               { return false }
func (a *valueFuncAcr) Address(unsafe.Pointer) unsafe.Pointer        { return nil }
func (a *valueFuncAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *valueFuncAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	v := a.get(from)
	box := boxOf(v)
	if err := fn(box); err != nil {
		return err
	}
	if op != OpRead {
		a.set(from, unboxAs(box, v))
	}
	return nil
}

// valueFuncsAcr is value_func with two independently-provided callbacks
// rather than one get paired implicitly with one set — kept as a
// distinct kind because descriptor facets register it separately, though
// its Access behavior is identical to valueFuncAcr.
type valueFuncsAcr struct {
	typ typeid.TypeId
	get func(from unsafe.Pointer) any
	set func(from unsafe.Pointer, value any)
}

// ValueFuncs builds a value_funcs accessor.
func ValueFuncs(typ typeid.TypeId, get func(from unsafe.Pointer) any, set func(from unsafe.Pointer, value any)) Accessor {
	return &valueFuncsAcr{typ: typ, get: get, set: set}
}

func (a *valueFuncsAcr) TypeOf(unsafe.Pointer) typeid.TypeId          { return a.typ }
func (a *valueFuncsAcr) Readonly() bool                               { return a.set == nil }
func (a *valueFuncsAcr) Anchored() bool                               { return false }
func (a *valueFuncsAcr) Address(unsafe.Pointer) unsafe.Pointer        { return nil }
func (a *valueFuncsAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *valueFuncsAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	v := a.get(from)
	box := boxOf(v)
	if err := fn(box); err != nil {
		return err
	}
	if op != OpRead {
		a.set(from, unboxAs(box, v))
	}
	return nil
}

// mixedFuncsAcr reads by value but writes by reference (spec.md's
// "mixed_funcs"): a common shape for types whose getter is cheap to copy
// but whose setter wants to mutate a caller-supplied pointer in place.
type mixedFuncsAcr struct {
	typ typeid.TypeId
	get func(from unsafe.Pointer) any
	set func(from unsafe.Pointer, value unsafe.Pointer)
}

// MixedFuncs builds a mixed_funcs accessor.
func MixedFuncs(typ typeid.TypeId, get func(from unsafe.Pointer) any, set func(from, value unsafe.Pointer)) Accessor {
	return &mixedFuncsAcr{typ: typ, get: get, set: set}
}

func (a *mixedFuncsAcr) TypeOf(unsafe.Pointer) typeid.TypeId          { return a.typ }
func (a *mixedFuncsAcr) Readonly() bool                               { return a.set == nil }
func (a *mixedFuncsAcr) Anchored() bool                               { return false }
func (a *mixedFuncsAcr) Address(unsafe.Pointer) unsafe.Pointer        { return nil }
func (a *mixedFuncsAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *mixedFuncsAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	if op == OpRead {
		v := a.get(from)
		return fn(boxOf(v))
	}
	box := boxOf(a.get(from))
	if err := fn(box); err != nil {
		return err
	}
	a.set(from, box)
	return nil
}

// assignableAcr is the identity accessor for a type whose write must go
// through Go's normal value assignment (the host-language analogue of the
// original's "assignment operator" requirement) rather than a raw byte
// copy; in Go every struct assignment already is a safe value copy, so
// this differs from identityAcr only in documenting that callers must
// write through assignment (fn(*T) = newValue) rather than mutating
// fields one at a time.
type assignableAcr struct {
	typ      typeid.TypeId
	readonly bool
}

// Assignable builds an assignable accessor for typ.
func Assignable(typ typeid.TypeId, readonly bool) Accessor {
	return &assignableAcr{typ: typ, readonly: readonly}
}

func (a *assignableAcr) TypeOf(unsafe.Pointer) typeid.TypeId             { return a.typ }
func (a *assignableAcr) Readonly() bool                                  { return a.readonly }
func (a *assignableAcr) Anchored() bool                                  { return false }
func (a *assignableAcr) Address(from unsafe.Pointer) unsafe.Pointer      { return from }
func (a *assignableAcr) InverseAddress(to unsafe.Pointer) unsafe.Pointer { return to }
func (a *assignableAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	return fn(from)
}

// variableAcr owns its T directly in the accessor object rather than in
// any "from" struct (spec.md's "variable (owns a T)"): from is ignored.
// Address is always nil because the accessor itself may be copied/moved
// (e.g. held in a slice that reallocates on append), so no address into
// it is stable.
type variableAcr struct {
	typ   typeid.TypeId
	value any
}

// Variable builds a variable accessor that owns v.
func Variable(typ typeid.TypeId, v any) Accessor {
	return &variableAcr{typ: typ, value: v}
}

func (a *variableAcr) TypeOf(unsafe.Pointer) typeid.TypeId          { return a.typ }
func (a *variableAcr) Readonly() bool                               { return false }
func (a *variableAcr) Anchored() bool                                { return false }
func (a *variableAcr) Address(unsafe.Pointer) unsafe.Pointer        { return nil }
func (a *variableAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *variableAcr) Access(op Op, _ unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	box := boxOf(a.value)
	if err := fn(box); err != nil {
		return err
	}
	if op != OpRead {
		a.value = unboxAs(box, a.value)
	}
	return nil
}

// constantAcr is variableAcr's readonly counterpart ("constant (owns a T,
// readonly)").
type constantAcr struct {
	typ   typeid.TypeId
	value any
}

// Constant builds a constant accessor that owns v, readonly.
func Constant(typ typeid.TypeId, v any) Accessor {
	return &constantAcr{typ: typ, value: v}
}

func (a *constantAcr) TypeOf(unsafe.Pointer) typeid.TypeId          { return a.typ }
func (a *constantAcr) Readonly() bool                               { return true }
func (a *constantAcr) Anchored() bool                                { return false }
func (a *constantAcr) Address(unsafe.Pointer) unsafe.Pointer        { return nil }
func (a *constantAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *constantAcr) Access(op Op, _ unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	return fn(boxOf(a.value))
}

// constantPointerAcr owns a pointer to an already-allocated, stable T
// (spec.md's "constant_pointer"): unlike constantAcr, Address is
// available because the pointee's storage does not move with the
// accessor.
type constantPointerAcr struct {
	typ typeid.TypeId
	ptr unsafe.Pointer
}

// ConstantPointer builds a constant_pointer accessor over an
// already-stable address.
func ConstantPointer(typ typeid.TypeId, ptr unsafe.Pointer) Accessor {
	return &constantPointerAcr{typ: typ, ptr: ptr}
}

func (a *constantPointerAcr) TypeOf(unsafe.Pointer) typeid.TypeId { return a.typ }
func (a *constantPointerAcr) Readonly() bool                      { return true }
func (a *constantPointerAcr) Anchored() bool                      { return false }
func (a *constantPointerAcr) Address(unsafe.Pointer) unsafe.Pointer {
	return a.ptr
}
func (a *constantPointerAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *constantPointerAcr) Access(op Op, _ unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	return fn(a.ptr)
}

// attrFuncAcr binds a container's dynamic attr-lookup function
// (descriptor's attr_func facet) to one fixed key, so it can be used
// wherever a plain Accessor is expected (e.g. inside a Reference built by
// serialize's item_attr resolution). Access/Address both work by
// resolving the Reference the lookup function returns and forwarding to
// it; an empty Reference means "no such key", surfaced as AttrNotFound.
type attrFuncAcr struct {
	key    string
	lookup func(from unsafe.Pointer, key string) Reference
}

// AttrFunc builds an accessor that looks up key via lookup each time it
// is used.
func AttrFunc(lookup func(from unsafe.Pointer, key string) Reference, key string) Accessor {
	return &attrFuncAcr{key: key, lookup: lookup}
}

func (a *attrFuncAcr) resolve(from unsafe.Pointer) (Reference, error) {
	ref := a.lookup(from, a.key)
	if ref.IsEmpty() {
		return Reference{}, &AttrNotFound{Key: a.key}
	}
	return ref, nil
}

func (a *attrFuncAcr) TypeOf(from unsafe.Pointer) typeid.TypeId {
	ref, err := a.resolve(from)
	if err != nil {
		return typeid.Empty
	}
	return ref.TypeOf()
}
func (a *attrFuncAcr) Readonly() bool { return false }
func (a *attrFuncAcr) Anchored() bool { return false }
func (a *attrFuncAcr) Address(from unsafe.Pointer) unsafe.Pointer {
	ref, err := a.resolve(from)
	if err != nil {
		return nil
	}
	return ref.acr.Address(ref.host.Addr())
}
func (a *attrFuncAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *attrFuncAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	ref, err := a.resolve(from)
	if err != nil {
		return err
	}
	return ref.acr.Access(op, ref.host.Addr(), fn)
}

// elemFuncAcr is attrFuncAcr's array-indexed counterpart ("elem_func").
// An out-of-range lookup (empty Reference) surfaces as ElemNotFound.
type elemFuncAcr struct {
	index  int
	lookup func(from unsafe.Pointer, index int) Reference
}

// ElemFunc builds an accessor that looks up index via lookup each time it
// is used.
func ElemFunc(lookup func(from unsafe.Pointer, index int) Reference, index int) Accessor {
	return &elemFuncAcr{index: index, lookup: lookup}
}

func (a *elemFuncAcr) resolve(from unsafe.Pointer) (Reference, error) {
	ref := a.lookup(from, a.index)
	if ref.IsEmpty() {
		return Reference{}, &ElemNotFound{Index: a.index}
	}
	return ref, nil
}

func (a *elemFuncAcr) TypeOf(from unsafe.Pointer) typeid.TypeId {
	ref, err := a.resolve(from)
	if err != nil {
		return typeid.Empty
	}
	return ref.TypeOf()
}
func (a *elemFuncAcr) Readonly() bool { return false }
func (a *elemFuncAcr) Anchored() bool { return false }
func (a *elemFuncAcr) Address(from unsafe.Pointer) unsafe.Pointer {
	ref, err := a.resolve(from)
	if err != nil {
		return nil
	}
	return ref.acr.Address(ref.host.Addr())
}
func (a *elemFuncAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *elemFuncAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	ref, err := a.resolve(from)
	if err != nil {
		return err
	}
	return ref.acr.Access(op, ref.host.Addr(), fn)
}

// referenceFuncAcr's lookup returns a whole Reference directly from
// "from" with no key/index (spec.md's "reference_func"), used e.g. by a
// map-like container's default/first-element accessor. It is the variant
// that makes this package's accessor/reference merge necessary.
type referenceFuncAcr struct {
	fn func(from unsafe.Pointer) Reference
}

// ReferenceFunc builds a reference_func accessor.
func ReferenceFunc(fn func(from unsafe.Pointer) Reference) Accessor {
	return &referenceFuncAcr{fn: fn}
}

func (a *referenceFuncAcr) TypeOf(from unsafe.Pointer) typeid.TypeId { return a.fn(from).TypeOf() }
func (a *referenceFuncAcr) Readonly() bool                           { return false }
func (a *referenceFuncAcr) Anchored() bool                           { return false }
func (a *referenceFuncAcr) Address(from unsafe.Pointer) unsafe.Pointer {
	ref := a.fn(from)
	if ref.IsEmpty() {
		return nil
	}
	return ref.acr.Address(ref.host.Addr())
}
func (a *referenceFuncAcr) InverseAddress(unsafe.Pointer) unsafe.Pointer { return nil }
func (a *referenceFuncAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	ref := a.fn(from)
	return ref.acr.Access(op, ref.host.Addr(), fn)
}

// boxOf copies v into a freshly heap-allocated slot of its own dynamic
// type and returns its address, so value_func-style accessors can hand
// callers a pointer to read or overwrite even though the underlying
// storage is a plain Go value, not a field.
func boxOf(v any) unsafe.Pointer {
	rt := reflect.TypeOf(v)
	slot := reflect.New(rt)
	slot.Elem().Set(reflect.ValueOf(v))
	return unsafe.Pointer(slot.Pointer())
}

// unboxAs reads *box back as v's concrete type, for handing to a setter
// after a callback has potentially overwritten it in place.
func unboxAs(box unsafe.Pointer, v any) any {
	rt := reflect.TypeOf(v)
	return reflect.NewAt(rt, box).Elem().Interface()
}
