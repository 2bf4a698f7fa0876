// Package access implements AYU's accessor algebra (spec.md §3/§4.3) and
// Reference (spec.md §3/§4.6) in one package. spec.md names these as
// separate "accessor" and "reference" modules, but the reference_func
// accessor variant constructs a Reference and Reference itself embeds an
// Accessor to do its Read/Write/Modify — a genuine mutual dependency that
// Go cannot express across two packages without a cycle (there is no
// forward-declared type the way a C++ header pair can reference each
// other). See DESIGN.md for the full rationale.
package access

import (
	"unsafe"

	"github.com/ayu-run/ayu/typeid"
)

// Op selects how an accessor is invoked: Read hands the callback a
// pointer to inspect, Write hands it a pointer to overwrite wholesale,
// Modify hands it a pointer to mutate in place (and, for a readonly
// accessor, behaves like Write — both are rejected).
type Op int

const (
	OpRead Op = iota
	OpWrite
	OpModify
)

func (op Op) String() string {
	switch op {
	case OpRead:
		return "read"
	case OpWrite:
		return "write"
	case OpModify:
		return "modify"
	default:
		return "op?"
	}
}

// Accessor is a polymorphic projection from a "from" value to a "to"
// value (spec.md §4.3). Every accessor kind in the closed variant set
// named by spec.md §3 implements this interface; package-private structs
// (one per kind, see variants.go) are the only implementations, giving
// the same closed-sum-type property spec.md §9 asks for without a
// v-table-per-kind.
//
// Implementations are always used through a pointer (*identityAcr, etc.)
// so that two Accessor interface values can be compared with == for
// Reference equality without risk of comparing an uncomparable struct
// (several variants embed func fields).
type Accessor interface {
	// TypeOf reports the type of the "to" value reached from the given
	// "from" address.
	TypeOf(from unsafe.Pointer) typeid.TypeId
	// Access invokes fn with a pointer to the "to" value, per op.
	// Returns WriteReadonlyAccessor if op is Write or Modify and the
	// accessor is readonly.
	Access(op Op, from unsafe.Pointer, fn func(to unsafe.Pointer) error) error
	// Address returns a stable pointer to the "to" value if the accessor
	// can guarantee one stays valid, else nil.
	Address(from unsafe.Pointer) unsafe.Pointer
	// InverseAddress returns a stable pointer to the "from" value given a
	// "to" address, if the accessor supports it (base and member do), else
	// nil. Downcasts require this.
	InverseAddress(to unsafe.Pointer) unsafe.Pointer
	// Readonly reports whether Write/Modify always fail.
	Readonly() bool
	// Anchored reports whether Address may be used even when the parent's
	// own accessor is not addressable (spec.md §4.3).
	Anchored() bool
}

// checkWritable is the one piece of logic every accessor variant shares:
// reject Write/Modify against a readonly accessor before doing any work.
func checkWritable(a Accessor, op Op) error {
	if op != OpRead && a.Readonly() {
		return &WriteReadonlyAccessor{Op: op}
	}
	return nil
}

// Chain composes outer then inner: the resulting accessor's "from" is
// outer's "from" and its "to" is inner's "to", with outer's "to" as the
// intermediate value. Per spec.md §4.3: readonly is the OR of the two,
// anchored is the AND; writing through the chain walks outer in Modify
// mode so sibling fields of the intermediate value are not clobbered.
func Chain(outer, inner Accessor) Accessor {
	if c, ok := outer.(*chainAcr); ok {
		// Flatten nested chains so Address/InverseAddress only ever cross
		// one intermediate hop at a time; behaviorally equivalent to
		// chain(chain(a,b),c) but cheaper to walk.
		return &chainAcr{outer: c.outer, inner: Chain(c.inner, inner)}
	}
	return &chainAcr{outer: outer, inner: inner}
}

type chainAcr struct {
	outer, inner Accessor
}

func (c *chainAcr) Readonly() bool { return c.outer.Readonly() || c.inner.Readonly() }
func (c *chainAcr) Anchored() bool { return c.outer.Anchored() && c.inner.Anchored() }

func (c *chainAcr) TypeOf(from unsafe.Pointer) typeid.TypeId {
	if mid := c.outer.Address(from); mid != nil {
		return c.inner.TypeOf(mid)
	}
	var result typeid.TypeId
	_ = c.outer.Access(OpRead, from, func(mid unsafe.Pointer) error {
		result = c.inner.TypeOf(mid)
		return nil
	})
	return result
}

func (c *chainAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(c, op); err != nil {
		return err
	}
	if op == OpRead {
		return c.outer.Access(OpRead, from, func(mid unsafe.Pointer) error {
			return c.inner.Access(OpRead, mid, fn)
		})
	}
	return c.outer.Access(OpModify, from, func(mid unsafe.Pointer) error {
		return c.inner.Access(op, mid, fn)
	})
}

// Address succeeds iff the inner accessor is addressable and the outer is
// either addressable or the inner is anchored-to-parent (spec.md §4.3).
func (c *chainAcr) Address(from unsafe.Pointer) unsafe.Pointer {
	mid := c.outer.Address(from)
	if mid == nil {
		if !c.inner.Anchored() {
			return nil
		}
		mid = from
	}
	return c.inner.Address(mid)
}

func (c *chainAcr) InverseAddress(to unsafe.Pointer) unsafe.Pointer {
	mid := c.inner.InverseAddress(to)
	if mid == nil {
		return nil
	}
	return c.outer.InverseAddress(mid)
}

// identityAcr is the built-in read-write or readonly identity accessor
// every Description carries at a fixed, stable slot (spec.md §4.2/§4.3):
// its "to" is its "from", letting a typed pointer be wrapped as a
// Reference with no extra allocation.
type identityAcr struct {
	typ      typeid.TypeId
	readonly bool
}

// Identity returns the read-write identity accessor for typ.
func Identity(typ typeid.TypeId) Accessor { return &identityAcr{typ: typ} }

// IdentityReadonly returns the readonly identity accessor for typ.
func IdentityReadonly(typ typeid.TypeId) Accessor { return &identityAcr{typ: typ, readonly: true} }

func (a *identityAcr) TypeOf(unsafe.Pointer) typeid.TypeId { return a.typ }
func (a *identityAcr) Readonly() bool                      { return a.readonly }
func (a *identityAcr) Anchored() bool                      { return false }
func (a *identityAcr) Address(from unsafe.Pointer) unsafe.Pointer { return from }
func (a *identityAcr) InverseAddress(to unsafe.Pointer) unsafe.Pointer { return to }

func (a *identityAcr) Access(op Op, from unsafe.Pointer, fn func(unsafe.Pointer) error) error {
	if err := checkWritable(a, op); err != nil {
		return err
	}
	return fn(from)
}
