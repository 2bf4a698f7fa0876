// Package ayu is the module root. It holds Runtime, the single piece of
// process-wide mutable state the rest of the tree shares: the current-
// resource stack (for relative reference resolution during load/save),
// the swizzle/init completion queues (spec.md §5), and a diagnostic-mode
// depth counter. Every other package that needs this state takes a
// *Runtime parameter rather than reaching for a package-level global,
// so tests can run several independent runtimes concurrently.
//
// This package depends on nothing else in the module, by design: it sits
// below serialize and resource in the dependency graph, not beside them.
package ayu

import "sync"

// pendingKind distinguishes the two completion queues of spec.md §5.2.
type pendingKind int

const (
	pendingSwizzle pendingKind = iota
	pendingInit
)

type pending struct {
	kind pendingKind
	run  func() error
}

// Runtime is AYU's process/session context: the current-resource stack
// used to resolve relative references during (de)serialization, and the
// two FIFO completion queues (swizzle then init) that serialize.FromTree
// drains once the top-level value has fully materialized.
type Runtime struct {
	mu sync.Mutex

	resourceStack []string
	queue         []pending
	draining      bool
	diagDepth     int
	fromTreeDepth int
	locationStack []any
}

// NewRuntime returns a fresh, empty Runtime.
func NewRuntime() *Runtime { return &Runtime{} }

// PushResource records name as the resource currently being loaded/saved,
// so that relative reference resolution (location.Parse with an empty
// base) can find it. Callers must pair this with PopResource, typically
// via defer.
func (r *Runtime) PushResource(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resourceStack = append(r.resourceStack, name)
}

// PopResource removes the most recently pushed resource name.
func (r *Runtime) PopResource() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.resourceStack); n > 0 {
		r.resourceStack = r.resourceStack[:n-1]
	}
}

// CurrentResource returns the innermost resource name on the stack, or
// "" if none is active.
func (r *Runtime) CurrentResource() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.resourceStack); n > 0 {
		return r.resourceStack[n-1]
	}
	return ""
}

// EnqueueSwizzle appends fn to the swizzle queue. Per spec.md §5.2, a
// swizzle callback that itself needs another value to finish swizzling
// first (DELAY_SWIZZLE) re-enqueues itself and bubbles to the back, so fn
// must be idempotent-safe to call more than once only if it does that
// re-enqueue itself; DrainQueues does not retry on its own.
func (r *Runtime) EnqueueSwizzle(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, pending{kind: pendingSwizzle, run: fn})
}

// EnqueueInit appends fn to the init queue, which drains only after the
// swizzle queue is completely empty.
func (r *Runtime) EnqueueInit(fn func() error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = append(r.queue, pending{kind: pendingInit, run: fn})
}

// DrainQueues runs every enqueued swizzle callback (FIFO, allowing
// self-re-enqueue to bubble to the back) until none remain, then every
// enqueued init callback the same way. It is re-entrancy-guarded: a
// callback that triggers another FromTree, which would otherwise try to
// drain the same Runtime's queues recursively, instead just enqueues into
// the queue the outermost DrainQueues call is already processing.
//
// On the first error, the remaining queue is cleared (not run) and the
// error is returned; spec.md §5.2 treats a degenerate document as
// unrecoverable rather than attempting partial completion.
func (r *Runtime) DrainQueues() error {
	r.mu.Lock()
	if r.draining {
		r.mu.Unlock()
		return nil
	}
	r.draining = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.draining = false
		r.mu.Unlock()
	}()

	if err := r.drainKind(pendingSwizzle); err != nil {
		r.clearQueue()
		return err
	}
	if err := r.drainKind(pendingInit); err != nil {
		r.clearQueue()
		return err
	}
	return nil
}

func (r *Runtime) drainKind(kind pendingKind) error {
	for {
		fn, ok := r.popFirst(kind)
		if !ok {
			return nil
		}
		if err := fn(); err != nil {
			return err
		}
	}
}

func (r *Runtime) popFirst(kind pendingKind) (func() error, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.queue {
		if p.kind == kind {
			r.queue = append(r.queue[:i:i], r.queue[i+1:]...)
			return p.run, true
		}
	}
	return nil, false
}

func (r *Runtime) clearQueue() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queue = nil
}

// ClearQueue discards every pending swizzle/init callback. Package
// serialize calls this when a top-level FromTree fails before reaching
// DrainQueues, per spec.md §4.5's "on any exception ... both queues are
// cleared before propagating."
func (r *Runtime) ClearQueue() { r.clearQueue() }

// BeginFromTree marks entry into a FromTree call (top-level or nested,
// e.g. a swizzle callback resolving a cyclic reference by constructing
// another value). It reports whether this is the outermost call — the one
// responsible for draining the queues once its structural build finishes
// — and returns the matching end function to defer. Depth tracking is
// independent of the drain re-entrancy guard in DrainQueues: a nested call
// made while the outermost call is already draining its queues must still
// see outermost=false, since fromTreeDepth stays incremented for the whole
// outermost call's lifetime, draining included.
func (r *Runtime) BeginFromTree() (outermost bool, end func()) {
	r.mu.Lock()
	outermost = r.fromTreeDepth == 0
	r.fromTreeDepth++
	r.mu.Unlock()
	return outermost, func() {
		r.mu.Lock()
		r.fromTreeDepth--
		r.mu.Unlock()
	}
}

// PushLocationThunk records an opaque "how to compute my current
// location, lazily" value for the duration of one serialization step.
// Stored as any so this package stays free of a location-package
// dependency; package serialize pushes a typed closure here and
// CurrentLocationThunk's caller (also package serialize) type-asserts it
// back. This lets a facet that needs its own position in the document
// (e.g. a cross-resource reference's to_tree, recording where it was
// found) recover it without every facet signature growing a Location
// parameter, mirroring the original's thread-local current_location().
func (r *Runtime) PushLocationThunk(thunk any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.locationStack = append(r.locationStack, thunk)
}

// PopLocationThunk removes the most recently pushed location thunk.
func (r *Runtime) PopLocationThunk() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.locationStack); n > 0 {
		r.locationStack = r.locationStack[:n-1]
	}
}

// CurrentLocationThunk returns the innermost pushed location thunk, or nil
// if none is active.
func (r *Runtime) CurrentLocationThunk() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.locationStack); n > 0 {
		return r.locationStack[n-1]
	}
	return nil
}

// BeginDiagnostic enters a diagnostic-serialization scope (spec.md §5.3),
// where a failing ToTree on a nested item becomes an error-form tree
// rather than aborting the whole tree. Returns the matching end function.
func (r *Runtime) BeginDiagnostic() func() {
	r.mu.Lock()
	r.diagDepth++
	r.mu.Unlock()
	return func() {
		r.mu.Lock()
		r.diagDepth--
		r.mu.Unlock()
	}
}

// Diagnosing reports whether a diagnostic-serialization scope is active.
func (r *Runtime) Diagnosing() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.diagDepth > 0
}
