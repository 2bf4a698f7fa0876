package serialize

import (
	"unsafe"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/tree"
)

// ToTree converts ref's referred-to value into a Tree, per spec.md §4.5's
// facet priority: to_tree > values match > prefer(object/array) > delegate
// > fallback error. rt carries the diagnostic-serialization scope state
// (spec.md §4.8) and must be non-nil; callers with no other use for a
// Runtime and no need for diagnostics can pass a fresh ayu.NewRuntime().
func ToTree(rt *ayu.Runtime, ref access.Reference) (tree.Tree, error) {
	return toTreeNode(rt, start(ref))
}

func toTreeNode(rt *ayu.Runtime, tv *Traversal) (t tree.Tree, err error) {
	ref := tv.ref
	id := ref.TypeOf()
	f := descriptor.Of(id)

	defer pushLocation(rt, tv)()

	defer func() {
		if err != nil && rt.Diagnosing() {
			t, err = tree.FromError(err), nil
		}
	}()

	if f != nil && f.ToTree != nil {
		err = ref.Accessor().Access(access.OpRead, ref.Host().Addr(), func(p unsafe.Pointer) error {
			var e error
			t, e = f.ToTree(p)
			return e
		})
		return
	}
	if f != nil && f.Values != nil {
		var ok bool
		t, ok, err = valuesToTree(ref, f)
		if err != nil || ok {
			return
		}
	}
	if f != nil {
		hasObject := f.Attrs != nil || f.Keys != nil
		hasArray := f.Elems != nil || f.Length != nil
		if hasArray && (f.PreferArray || !hasObject) {
			t, err = toTreeArray(rt, tv, f)
			return
		}
		if hasObject {
			t, err = toTreeObject(rt, tv, f)
			return
		}
	}
	if f != nil && f.Delegate != nil {
		dref := access.New(ref.Host(), access.Chain(ref.Accessor(), f.Delegate))
		t, err = toTreeNode(rt, tv.child(dref, traversalDelegate, "", 0))
		return
	}
	err = &CannotToTree{Type: id}
	return
}

func toTreeObject(rt *ayu.Runtime, tv *Traversal, f *descriptor.Facets) (tree.Tree, error) {
	ref := tv.ref
	keys, err := GetKeys(ref)
	if err != nil {
		return tree.Tree{}, err
	}
	pairs := make([]tree.Pair, 0, len(keys))
	for _, k := range keys {
		child, err := ItemAttr(ref, k)
		if err != nil {
			return tree.Tree{}, err
		}
		if child.Readonly() {
			// Would fail to round-trip through FromTree, so it is
			// silently dropped rather than emitted (spec.md §4.5).
			continue
		}
		ct, err := toTreeNode(rt, tv.child(child, traversalAttr, k, 0))
		if err != nil {
			return tree.Tree{}, err
		}
		pairs = append(pairs, tree.Pair{Key: k, Value: ct})
	}
	return tree.FromObjectSlice(pairs), nil
}

func toTreeArray(rt *ayu.Runtime, tv *Traversal, f *descriptor.Facets) (tree.Tree, error) {
	ref := tv.ref
	n, err := itemLength(ref, f)
	if err != nil {
		return tree.Tree{}, err
	}
	items := make([]tree.Tree, n)
	for i := 0; i < n; i++ {
		child, err := ItemElem(ref, i)
		if err != nil {
			return tree.Tree{}, err
		}
		ct, err := toTreeNode(rt, tv.child(child, traversalElem, "", i))
		if err != nil {
			return tree.Tree{}, err
		}
		items[i] = ct
	}
	return tree.FromArraySlice(items), nil
}
