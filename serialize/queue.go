package serialize

import (
	"unsafe"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/tree"
)

// enqueueCompletion pushes tv's swizzle and init callbacks (if the type
// has them) onto rt's completion queues, per spec.md §4.5/§5. Called only
// after a node's own structural build (and all of its children's,
// transitively) has finished, so FIFO drain order already respects the
// "children complete before parent's swizzle/init is enqueued" rule
// without any extra bookkeeping here.
func enqueueCompletion(rt *ayu.Runtime, tv *Traversal, f *descriptor.Facets, t tree.Tree) {
	ref := tv.ref
	res := rt.CurrentResource()
	if f.Swizzle != nil {
		rt.EnqueueSwizzle(func() error {
			rt.PushResource(res)
			defer rt.PopResource()
			defer pushLocation(rt, tv)()
			return ref.Accessor().Access(access.OpModify, ref.Host().Addr(), func(p unsafe.Pointer) error {
				return f.Swizzle(p, t)
			})
		})
	}
	if f.Init != nil {
		rt.EnqueueInit(func() error {
			rt.PushResource(res)
			defer rt.PopResource()
			defer pushLocation(rt, tv)()
			return ref.Accessor().Access(access.OpModify, ref.Host().Addr(), func(p unsafe.Pointer) error {
				return f.Init(p)
			})
		})
	}
}

// DiagnosticSerialization opens a diagnostic-serialization scope on rt
// (spec.md §4.8): recursive ToTree failures become error-form trees
// instead of aborting. Callers must invoke the returned function exactly
// once, typically via defer.
func DiagnosticSerialization(rt *ayu.Runtime) func() {
	return rt.BeginDiagnostic()
}
