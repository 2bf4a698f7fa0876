package serialize

import (
	"reflect"
	"unsafe"

	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/tree"
)

// boxAny heap-allocates a copy of v and returns its address, the same
// trick package access's boxOf uses internally for value_func-style
// accessors — needed here because a values facet's ValuesEq/ValuesAssign
// callbacks take unsafe.Pointer, not reflect.Value.
func boxAny(v any) unsafe.Pointer {
	rt := reflect.TypeOf(v)
	slot := reflect.New(rt)
	slot.Elem().Set(reflect.ValueOf(v))
	return unsafe.Pointer(slot.Pointer())
}

// valuesToTree implements the values facet's to_tree path: the live value
// equal to a named entry prints as that name.
func valuesToTree(ref access.Reference, f *descriptor.Facets) (tree.Tree, bool, error) {
	var found tree.Tree
	ok := false
	err := ref.Accessor().Access(access.OpRead, ref.Host().Addr(), func(p unsafe.Pointer) error {
		for _, entry := range f.Values {
			if f.ValuesEq(p, boxAny(entry.Value)) {
				found = tree.FromString(entry.Name)
				ok = true
				return nil
			}
		}
		return nil
	})
	return found, ok, err
}

// valuesFromTree implements the values facet's from_tree path: a string
// tree naming a registered entry assigns that entry's value back.
func valuesFromTree(ref access.Reference, f *descriptor.Facets, t tree.Tree) error {
	name, serr := t.AsString()
	if serr != nil {
		return &NoValueForName{Type: ref.TypeOf(), Got: t}
	}
	for _, entry := range f.Values {
		if entry.Name != name {
			continue
		}
		return ref.Accessor().Access(access.OpWrite, ref.Host().Addr(), func(p unsafe.Pointer) error {
			f.ValuesAssign(p, entry.Value)
			return nil
		})
	}
	return &NoValueForName{Type: ref.TypeOf(), Got: t}
}
