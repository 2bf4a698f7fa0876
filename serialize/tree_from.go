package serialize

import (
	"unsafe"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/tree"
)

// FromTree builds ref's referred-to value from t, per spec.md §4.5's facet
// priority: from_tree > form-match-against-accepted-facets > delegate >
// swizzle-alone. delaySwizzle mirrors spec.md §5's DELAY_SWIZZLE: pass
// true when this call is itself made from within a facet callback that
// needs completion deferred to the enclosing top-level invocation (the
// mechanism that supports cyclic references within one resource). rt
// tracks call nesting independently, so only the outermost call ever
// drains the queues regardless of this flag; DELAY_SWIZZLE matters when a
// callback wants to suppress that even for a call rt would otherwise
// consider outermost.
func FromTree(rt *ayu.Runtime, ref access.Reference, t tree.Tree, delaySwizzle bool) (err error) {
	outermost, end := rt.BeginFromTree()
	defer end()

	if err = fromTreeNode(rt, start(ref), t); err != nil {
		if outermost {
			rt.ClearQueue()
		}
		return err
	}
	if outermost && !delaySwizzle {
		return rt.DrainQueues()
	}
	return nil
}

func fromTreeNode(rt *ayu.Runtime, tv *Traversal, t tree.Tree) error {
	defer pushLocation(rt, tv)()

	ref := tv.ref
	id := ref.TypeOf()
	f := descriptor.Of(id)

	if f != nil && f.FromTree != nil {
		if err := ref.Accessor().Access(access.OpWrite, ref.Host().Addr(), func(p unsafe.Pointer) error {
			return f.FromTree(p, t)
		}); err != nil {
			return err
		}
		enqueueCompletion(rt, tv, f, t)
		return nil
	}
	if f != nil && f.Values != nil {
		if err := valuesFromTree(ref, f, t); err != nil {
			return err
		}
		enqueueCompletion(rt, tv, f, t)
		return nil
	}
	if f != nil {
		hasObject := f.Attrs != nil || f.Keys != nil
		hasArray := f.Elems != nil || f.Length != nil
		if hasArray && (f.PreferArray || !hasObject) {
			if !t.Is(tree.Array) {
				return &InvalidForm{Type: id, Expected: tree.Array, Got: t}
			}
			if err := fromTreeArray(rt, tv, f, t); err != nil {
				return err
			}
			enqueueCompletion(rt, tv, f, t)
			return nil
		}
		if hasObject {
			if !t.Is(tree.Object) {
				return &InvalidForm{Type: id, Expected: tree.Object, Got: t}
			}
			if err := fromTreeObject(rt, tv, f, t); err != nil {
				return err
			}
			enqueueCompletion(rt, tv, f, t)
			return nil
		}
	}
	if f != nil && f.Delegate != nil {
		dref := access.New(ref.Host(), access.Chain(ref.Accessor(), f.Delegate))
		if err := fromTreeNode(rt, tv.child(dref, traversalDelegate, "", 0), t); err != nil {
			return err
		}
		enqueueCompletion(rt, tv, f, t)
		return nil
	}
	if f != nil && f.Swizzle != nil {
		// Swizzle present alone means "done for now": nothing to write
		// structurally, just enqueue the completion callback.
		enqueueCompletion(rt, tv, f, t)
		return nil
	}
	return &CannotFromTree{Type: id}
}

func fromTreeObject(rt *ayu.Runtime, tv *Traversal, f *descriptor.Facets, t tree.Tree) error {
	pairs, err := t.AsObject()
	if err != nil {
		return err
	}
	keys := make([]string, len(pairs))
	for i, p := range pairs {
		keys[i] = p.Key
	}
	if err := setKeys(tv.ref, f, keys); err != nil {
		return err
	}
	for _, p := range pairs {
		child, err := ItemAttr(tv.ref, p.Key)
		if err != nil {
			return err
		}
		if err := fromTreeNode(rt, tv.child(child, traversalAttr, p.Key, 0), p.Value); err != nil {
			return err
		}
	}
	return nil
}

func fromTreeArray(rt *ayu.Runtime, tv *Traversal, f *descriptor.Facets, t tree.Tree) error {
	items, err := t.AsArray()
	if err != nil {
		return err
	}
	if f.Elems != nil {
		min := 0
		for _, e := range f.Elems {
			if !e.Optional {
				min++
			}
		}
		max := len(f.Elems)
		if len(items) < min || len(items) > max {
			return &WrongLength{Min: min, Max: max, Got: len(items)}
		}
	}
	// Dynamic (Length/ElemFunc-backed) arrays have no declared set_length
	// facet in this port: ElemFunc is expected to grow the underlying
	// container as needed when asked for an index at or beyond its
	// current length, the same way a map's attr_func mints a new entry
	// on first write.
	for i, it := range items {
		child, err := ItemElem(tv.ref, i)
		if err != nil {
			return err
		}
		if err := fromTreeNode(rt, tv.child(child, traversalElem, "", i), it); err != nil {
			return err
		}
	}
	return nil
}
