// Package serialize implements AYU's tree<->value conversion (spec.md
// §4.5): the Traversal stack discipline, item_attr/item_elem lookup, key
// management, and the two-pass swizzle/init completion protocol built on
// top of package ayu's Runtime.
package serialize

import (
	"unsafe"

	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/location"
)

// traversalKind is spec.md §4.5's "variant tag describing how we got
// here."
type traversalKind int

const (
	traversalStart traversalKind = iota
	traversalDelegate
	traversalAttr
	traversalElem
)

// Traversal is the stack-allocated chain node of spec.md §4.5: parent
// pointer, the reference reached at this step, and the identifying data
// (key or index) for how it was reached. Unlike the original's
// address-plus-description-plus-bits tuple, we store the fully-resolved
// access.Reference directly — Go's access.Reference already bundles host
// address and accessor, and building it eagerly costs nothing extra since
// every caller needs it immediately anyway.
type Traversal struct {
	parent *Traversal
	ref    access.Reference
	kind   traversalKind
	key    string
	index  int
}

func start(ref access.Reference) *Traversal {
	return &Traversal{ref: ref, kind: traversalStart}
}

func (tv *Traversal) child(ref access.Reference, kind traversalKind, key string, index int) *Traversal {
	return &Traversal{parent: tv, ref: ref, kind: kind, key: key, index: index}
}

// Reference reconstitutes the Reference for the current traversal step.
func (tv *Traversal) Reference() access.Reference { return tv.ref }

// Location builds the Location for the current traversal step, walking up
// to the root and allocating one Location node per step, rooted at
// rootIRI.
func (tv *Traversal) Location(rootIRI string) location.Location {
	if tv.parent == nil {
		return location.Root(rootIRI)
	}
	parentLoc := tv.parent.Location(rootIRI)
	switch tv.kind {
	case traversalAttr:
		return parentLoc.Attr(tv.key)
	case traversalElem:
		return parentLoc.Elem(tv.index)
	default: // traversalDelegate: delegate is transparent, same location
		return parentLoc
	}
}

// ItemAttr implements spec.md §4.5's item_attr(key): direct attrs, then
// included-child attrs (recursively), then attr_func, then delegate.
func ItemAttr(ref access.Reference, key string) (access.Reference, error) {
	id := ref.TypeOf()
	f := descriptor.Of(id)
	if f == nil {
		return access.Empty, &NoAttrs{Type: id}
	}
	if r, ok, err := lookupDeclaredAttr(ref, f, key); err != nil {
		return access.Empty, err
	} else if ok {
		return r, nil
	}
	if f.AttrFunc != nil {
		var result access.Reference
		err := ref.Accessor().Access(access.OpRead, ref.Host().Addr(), func(p unsafe.Pointer) error {
			result = f.AttrFunc(p, key)
			return nil
		})
		if err != nil {
			return access.Empty, err
		}
		if !result.IsEmpty() {
			return result, nil
		}
	}
	if f.Delegate != nil {
		dref := access.New(ref.Host(), access.Chain(ref.Accessor(), f.Delegate))
		return ItemAttr(dref, key)
	}
	return access.Empty, &access.AttrNotFound{Key: key}
}

func lookupDeclaredAttr(ref access.Reference, f *descriptor.Facets, key string) (access.Reference, bool, error) {
	for _, a := range f.Attrs {
		if a.Include {
			childRef := access.New(ref.Host(), access.Chain(ref.Accessor(), a.Acr))
			childF := descriptor.Of(a.Acr.TypeOf(nil))
			if childF == nil {
				continue
			}
			if r, ok, err := lookupDeclaredAttr(childRef, childF, key); err != nil {
				return access.Empty, false, err
			} else if ok {
				return r, true, nil
			}
			continue
		}
		if a.Key == key {
			return access.New(ref.Host(), access.Chain(ref.Accessor(), a.Acr)), true, nil
		}
	}
	return access.Empty, false, nil
}

// ItemElem implements spec.md §4.5's item_elem(i): fixed elems, then
// elem_func, then delegate.
func ItemElem(ref access.Reference, index int) (access.Reference, error) {
	id := ref.TypeOf()
	f := descriptor.Of(id)
	if f == nil {
		return access.Empty, &NoElems{Type: id}
	}
	if index >= 0 && index < len(f.Elems) {
		return access.New(ref.Host(), access.Chain(ref.Accessor(), f.Elems[index].Acr)), nil
	}
	if f.ElemFunc != nil {
		var result access.Reference
		err := ref.Accessor().Access(access.OpRead, ref.Host().Addr(), func(p unsafe.Pointer) error {
			result = f.ElemFunc(p, index)
			return nil
		})
		if err != nil {
			return access.Empty, err
		}
		if !result.IsEmpty() {
			return result, nil
		}
	}
	if f.Delegate != nil {
		dref := access.New(ref.Host(), access.Chain(ref.Accessor(), f.Delegate))
		return ItemElem(dref, index)
	}
	return access.Empty, &access.ElemNotFound{Index: index}
}

// GetKeys implements spec.md §4.5's item_get_keys: declared attr keys
// (recursing through included children, deduplicated) followed by the
// dynamic keys facet's own entries, also deduplicated against what came
// before.
func GetKeys(ref access.Reference) ([]string, error) {
	id := ref.TypeOf()
	f := descriptor.Of(id)
	if f == nil {
		return nil, &NoAttrs{Type: id}
	}
	var keys []string
	seen := map[string]bool{}
	collectDeclaredKeys(ref, f, &keys, seen)
	if f.Keys != nil {
		keysRef := access.New(ref.Host(), access.Chain(ref.Accessor(), f.Keys))
		var dyn []string
		if err := access.Read[[]string](keysRef, func(v *[]string) error { dyn = *v; return nil }); err != nil {
			return nil, err
		}
		for _, k := range dyn {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

func collectDeclaredKeys(ref access.Reference, f *descriptor.Facets, keys *[]string, seen map[string]bool) {
	for _, a := range f.Attrs {
		if a.Include {
			childRef := access.New(ref.Host(), access.Chain(ref.Accessor(), a.Acr))
			if childF := descriptor.Of(a.Acr.TypeOf(nil)); childF != nil {
				collectDeclaredKeys(childRef, childF, keys, seen)
			}
			continue
		}
		if !seen[a.Key] {
			seen[a.Key] = true
			*keys = append(*keys, a.Key)
		}
	}
}

func itemLength(ref access.Reference, f *descriptor.Facets) (int, error) {
	if f.Elems != nil {
		return len(f.Elems), nil
	}
	if f.Length != nil {
		var n int
		err := ref.Accessor().Access(access.OpRead, ref.Host().Addr(), func(p unsafe.Pointer) error {
			n = f.Length(p)
			return nil
		})
		return n, err
	}
	return 0, &NoElems{Type: ref.TypeOf()}
}

// Scan implements spec.md §4.6's recursive scan: visit the item, then for
// object-preferring items iterate keys and recurse via attr; for
// array-preferring items iterate indices and recurse via elem; otherwise
// follow delegate. Atomic types with no facets are visited once. Used by
// the exhaustive reverse scan that backs location.Cache misses (left to
// package resource, which owns the universe being scanned); Resolve walks
// a Location top-down with ItemAttr/ItemElem and does not call Scan.
func Scan(ref access.Reference, loc location.Location, visit func(access.Reference, location.Location) error) error {
	if err := visit(ref, loc); err != nil {
		return err
	}
	f := descriptor.Of(ref.TypeOf())
	if f == nil {
		return nil
	}
	hasObject := f.Attrs != nil || f.Keys != nil
	hasArray := f.Elems != nil || f.Length != nil
	switch {
	case hasArray && (f.PreferArray || !hasObject):
		n, err := itemLength(ref, f)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			child, err := ItemElem(ref, i)
			if err != nil {
				return err
			}
			if err := Scan(child, loc.Elem(i), visit); err != nil {
				return err
			}
		}
	case hasObject:
		keys, err := GetKeys(ref)
		if err != nil {
			return err
		}
		for _, k := range keys {
			child, err := ItemAttr(ref, k)
			if err != nil {
				return err
			}
			if err := Scan(child, loc.Attr(k), visit); err != nil {
				return err
			}
		}
	default:
		if f.Delegate != nil {
			dref := access.New(ref.Host(), access.Chain(ref.Accessor(), f.Delegate))
			return Scan(dref, loc, visit)
		}
	}
	return nil
}

// Resolve implements spec.md §4.6's "Location → Reference": walk from
// root, following each step's attr or elem through the serialization
// protocol so it works on dynamic containers too.
func Resolve(root access.Reference, loc location.Location) (access.Reference, error) {
	ref := root
	for _, step := range loc.Steps() {
		var err error
		switch step.Kind {
		case location.StepAttr:
			ref, err = ItemAttr(ref, step.Key)
		case location.StepElem:
			ref, err = ItemElem(ref, step.Index)
		}
		if err != nil {
			return access.Empty, err
		}
	}
	return ref, nil
}
