package resource

import (
	"errors"
	"os"
	"sync"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/location"
	"github.com/ayu-run/ayu/serialize"
	"github.com/ayu-run/ayu/tree"
	"github.com/ayu-run/ayu/typeid"
	"go.uber.org/multierr"
)

// Config configures a Universe at construction. If Schemes is empty, a
// single default file Scheme rooted at Root is installed, matching the
// original's "just works on the local filesystem" default.
type Config struct {
	Root    string
	Schemes []Scheme
}

// Universe is the root container of spec.md §4.7: a named set of
// Resources, the Schemes that resolve their names to storage, and the
// Runtime shared by every (de)serialization this Universe performs. Only
// one Universe's resource operations can be in flight at a time per
// process — see the package-level activation note on Ref — matching
// spec.md §5's "no internal synchronization; concurrent use of one
// Runtime is undefined."
type Universe struct {
	mu        sync.Mutex
	rt        *ayu.Runtime
	resources map[string]*Resource
	schemes   []Scheme
	cache     *location.Cache
}

// NewUniverse returns a Universe backed by rt and configured per cfg.
func NewUniverse(rt *ayu.Runtime, cfg Config) *Universe {
	u := &Universe{rt: rt, resources: map[string]*Resource{}, cache: location.NewCache()}
	if len(cfg.Schemes) > 0 {
		u.schemes = append(u.schemes, cfg.Schemes...)
	} else {
		u.schemes = append(u.schemes, NewFileScheme(cfg.Root))
	}
	return u
}

// RegisterScheme adds s, ahead of the default file scheme in priority.
// DuplicateResourceScheme is raised if a scheme of the same name is
// already registered.
func (u *Universe) RegisterScheme(s Scheme) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	for _, existing := range u.schemes {
		if existing.Name() == s.Name() {
			return &DuplicateResourceScheme{Scheme: s.Name()}
		}
	}
	u.schemes = append([]Scheme{s}, u.schemes...)
	return nil
}

func (u *Universe) schemeFor(name string) (Scheme, error) {
	for _, s := range u.schemes {
		if s.AcceptsIRI(name) {
			return s, nil
		}
	}
	return nil, &UnknownResourceScheme{IRI: name}
}

func (u *Universe) pathFor(name string) (string, error) {
	s, err := u.schemeFor(name)
	if err != nil {
		return "", err
	}
	return s.Path(name)
}

// Use returns the Resource tracked under name, declaring it with type T
// on first reference. A later Use[T] call for the same name with a
// different T raises UnacceptableResourceType; this is the mechanism by
// which a batch Load/Save/Unload/Reload call (which only takes names)
// learns each resource's Go type, since a facet-style callback has
// nowhere else to carry it.
func Use[T any](u *Universe, name string) (*Resource, error) {
	id := typeid.Of[T]()
	u.mu.Lock()
	defer u.mu.Unlock()
	if r, ok := u.resources[name]; ok {
		if !r.typ.Equal(id) {
			return nil, &UnacceptableResourceType{Name: name, Type: id}
		}
		return r, nil
	}
	s, err := u.schemeFor(name)
	if err != nil {
		return nil, err
	}
	if !s.AcceptsType(id) {
		return nil, &UnacceptableResourceType{Name: name, Type: id}
	}
	if _, err := s.Path(name); err != nil {
		return nil, err
	}
	r := &Resource{name: name, typ: id, universe: u, state: Unloaded}
	u.resources[name] = r
	return r, nil
}

// Get returns the Resource already tracked under name, if any.
func (u *Universe) Get(name string) (*Resource, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	r, ok := u.resources[name]
	return r, ok
}

func (u *Universe) resolve(names []string) ([]*Resource, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]*Resource, 0, len(names))
	for _, name := range names {
		r, ok := u.resources[name]
		if !ok {
			return nil, &UnacceptableResourceName{Name: name}
		}
		out = append(out, r)
	}
	return out, nil
}

func (u *Universe) otherLoaded(excluding map[string]bool) []*Resource {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []*Resource
	for _, r := range u.resources {
		if r.state == Loaded && !excluding[r.name] {
			out = append(out, r)
		}
	}
	return out
}

// activate makes u the package-level "current universe" for the duration
// of one batch operation, so Ref's to_tree/from_tree/swizzle facets (which
// take no Universe parameter) can reach it. See the note on var active in
// ref.go.
func (u *Universe) activate() func() {
	prev := active
	active = u
	return func() { active = prev }
}

// readTree reads and parses the on-disk document for r's name.
func (u *Universe) readTree(r *Resource) (tree.Tree, error) {
	path, err := u.pathFor(r.name)
	if err != nil {
		return tree.Tree{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return tree.Tree{}, &OpenFailed{Filename: path, Err: err}
		}
		return tree.Tree{}, &ReadFailed{Filename: path, Err: err}
	}
	t, err := tree.Parse(path, string(data))
	if err != nil {
		return tree.Tree{}, err
	}
	return t, nil
}

// constructOne reads r's source, default-constructs its Go value, and
// populates it via FromTree with delaySwizzle=true (spec.md §5): the
// caller is responsible for draining the shared Runtime's queues once
// every resource in the batch has reached this point, which is what lets
// references between resources in the same batch resolve cyclically.
func (u *Universe) constructOne(r *Resource) error {
	t, err := u.readTree(r)
	if err != nil {
		return err
	}
	ctor, err := r.typ.DefaultConstruct()
	if err != nil {
		return err
	}
	r.value = dynamic.FromAny(r.typ, ctor)

	u.rt.PushResource(r.name)
	defer u.rt.PopResource()
	return serialize.FromTree(u.rt, r.ref(), t, true)
}

// Load loads every named resource not already loaded, as one all-or-
// nothing batch: if any resource's document fails to parse or construct,
// every resource in the batch is rolled back to Unloaded and the
// aggregate error (via multierr) is returned. Already-loaded resources
// named in the batch are left untouched and do not block the others.
func (u *Universe) Load(names ...string) error {
	resources, err := u.resolve(names)
	if err != nil {
		return err
	}

	var toLoad []*Resource
	for _, r := range resources {
		switch r.state {
		case Loaded:
			continue
		case Unloaded:
			toLoad = append(toLoad, r)
		default:
			return &InvalidResourceState{Op: "load", State: r.state, Resource: r.name}
		}
	}
	if len(toLoad) == 0 {
		return nil
	}
	for _, r := range toLoad {
		r.state = LoadConstructing
	}

	rollback := func() {
		for _, r := range toLoad {
			r.value = dynamic.Dynamic{}
			r.state = Unloaded
		}
	}

	deactivate := u.activate()
	defer deactivate()

	var merr error
	for _, r := range toLoad {
		if err := u.constructOne(r); err != nil {
			merr = multierr.Append(merr, err)
		}
	}
	if merr != nil {
		u.rt.ClearQueue()
		for _, r := range toLoad {
			r.state = LoadRollback
		}
		rollback()
		return merr
	}
	if err := u.rt.DrainQueues(); err != nil {
		for _, r := range toLoad {
			r.state = LoadRollback
		}
		rollback()
		return err
	}

	for _, r := range toLoad {
		r.state = Loaded
	}
	return nil
}

// Save writes every named resource's current value to its source, as one
// batch: every resource is first verified (ToTree'd and printed) before
// any file is written, so a to_tree failure on one resource aborts the
// whole batch without touching disk.
func (u *Universe) Save(names ...string) error {
	resources, err := u.resolve(names)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if r.state != Loaded {
			return &InvalidResourceState{Op: "save", State: r.state, Resource: r.name}
		}
		if r.Empty() {
			return &EmptyResourceValue{Resource: r.name}
		}
	}
	for _, r := range resources {
		r.state = SaveVerifying
	}

	deactivate := u.activate()
	defer deactivate()

	type write struct {
		path string
		text string
	}
	var writes []write
	var merr error
	for _, r := range resources {
		path, err := u.pathFor(r.name)
		if err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		u.rt.PushResource(r.name)
		t, err := serialize.ToTree(u.rt, r.ref())
		u.rt.PopResource()
		if err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		text, err := tree.Print(t, tree.PrintOptions{Mode: tree.Pretty})
		if err != nil {
			merr = multierr.Append(merr, err)
			continue
		}
		writes = append(writes, write{path: path, text: text})
	}
	if merr != nil {
		for _, r := range resources {
			r.state = Loaded
		}
		return merr
	}

	for _, r := range resources {
		r.state = SaveCommitting
	}
	for _, w := range writes {
		if err := os.WriteFile(w.path, []byte(w.text), 0o644); err != nil {
			merr = multierr.Append(merr, &OpenFailed{Filename: w.path, Err: err})
		}
	}
	for _, r := range resources {
		r.state = Loaded
	}
	return merr
}

// errFoundLocation is an internal sentinel used to break out of
// serialize.Scan early once a search target is found.
var errFoundLocation = errors.New("resource: found")

// ReferenceToLocation finds the Location ref was last reached at, among
// every currently loaded resource, those in the middle of a Save included
// (spec.md §4.6's reverse scan). The
// result is cached so repeated lookups of the same reference (e.g.
// serializing the same shared target from several places) are O(1) after
// the first.
func (u *Universe) ReferenceToLocation(ref access.Reference) (location.Location, error) {
	if loc, ok := u.cache.Get(ref); ok {
		return loc, nil
	}
	var found location.Location
	var candidates []*Resource
	u.mu.Lock()
	for _, r := range u.resources {
		if r.state == Loaded || r.state == SaveVerifying {
			candidates = append(candidates, r)
		}
	}
	u.mu.Unlock()
	for _, r := range candidates {
		root := location.Root(r.name)
		err := serialize.Scan(r.ref(), root, func(cur access.Reference, loc location.Location) error {
			u.cache.Put(cur, loc)
			if cur.Equal(ref) {
				found = loc
				return errFoundLocation
			}
			return nil
		})
		if errors.Is(err, errFoundLocation) {
			return found, nil
		}
		if err != nil {
			return location.Location{}, err
		}
	}
	return location.Location{}, &location.UnresolvedReference{TypeName: ref.TypeOf().Name()}
}

// LocationToReference resolves loc against its root resource's current
// value (spec.md §4.6). If the root resource is Unloaded but has been
// declared via Use, it is auto-loaded on the spot (spec.md scenario 3:
// "load(rec1) auto-loads rec2" when rec1 holds a reference into rec2).
// constructOne's FromTree call enqueues the newly-constructed value's own
// swizzle/init callbacks onto the same Runtime queue that the enclosing
// batch's DrainQueues call is already iterating (ayu.Runtime.DrainQueues
// re-queries the queue on every iteration rather than snapshotting it, so
// this is safe to call from inside a Swizzle callback — see ## ayu
// (root)). A resource whose new value is still being built by the
// enclosing batch (LoadConstructing or ReloadConstructing) resolves
// against that value, so references within one batch work, cyclically
// included. A resource in any other non-Loaded state is not auto-loadable
// and still resolves to UnresolvedReference.
func (u *Universe) LocationToReference(loc location.Location) (access.Reference, error) {
	root := loc.RootIRI()
	u.mu.Lock()
	r, ok := u.resources[root]
	u.mu.Unlock()
	if !ok {
		return access.Empty, &location.UnresolvedReference{TypeName: root}
	}
	if r.state == Unloaded {
		r.state = LoadConstructing
		if err := u.constructOne(r); err != nil {
			r.value = dynamic.Dynamic{}
			r.state = Unloaded
			return access.Empty, &location.UnresolvedReference{TypeName: root}
		}
		r.state = Loaded
	}
	if r.state != Loaded && r.state != LoadConstructing && r.state != ReloadConstructing {
		return access.Empty, &location.UnresolvedReference{TypeName: root}
	}
	return serialize.Resolve(r.ref(), loc)
}

// Unload removes every named resource's in-memory value, as one batch.
// First verifies (spec.md §4.7) that no other loaded resource holds a
// live Reference into the set being unloaded; if one is found,
// UnloadWouldBreak aborts the whole batch before anything is destroyed.
func (u *Universe) Unload(names ...string) error {
	resources, err := u.resolve(names)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if r.state != Loaded {
			return &InvalidResourceState{Op: "unload", State: r.state, Resource: r.name}
		}
	}
	for _, r := range resources {
		r.state = UnloadVerifying
	}

	if err := u.verifyUnload(resources); err != nil {
		for _, r := range resources {
			r.state = Loaded
		}
		return err
	}

	for _, r := range resources {
		r.state = UnloadCommitting
	}
	for _, r := range resources {
		r.typ.Destroy(r.value.Any())
		r.value = dynamic.Dynamic{}
		r.state = Unloaded
	}
	return nil
}

// ForceUnload removes every named resource's in-memory value without
// running unload verification, per spec.md §4.7's separate
// LOADED--force_unload-->UNLOAD_COMMITTING transition. Unlike Unload, this
// may leave another loaded resource holding a now-dangling Reference; it
// exists for callers (e.g. process shutdown) that have already established
// by other means that no such reference matters.
func (u *Universe) ForceUnload(names ...string) error {
	resources, err := u.resolve(names)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if r.state != Loaded {
			return &InvalidResourceState{Op: "force_unload", State: r.state, Resource: r.name}
		}
	}
	for _, r := range resources {
		r.state = UnloadCommitting
	}
	for _, r := range resources {
		r.typ.Destroy(r.value.Any())
		r.value = dynamic.Dynamic{}
		r.state = Unloaded
	}
	return nil
}

func (u *Universe) verifyUnload(unloading []*Resource) error {
	names := map[string]bool{}
	for _, r := range unloading {
		names[r.name] = true
	}
	others := u.otherLoaded(names)
	if len(others) == 0 {
		return nil
	}
	refType := typeid.Of[Ref]()
	for _, other := range others {
		root := location.Root(other.name)
		err := serialize.Scan(other.ref(), root, func(cur access.Reference, loc location.Location) error {
			if !cur.TypeOf().Equal(refType) {
				return nil
			}
			var target access.Reference
			if err := access.Read[Ref](cur, func(rf *Ref) error { target = rf.Reference(); return nil }); err != nil {
				return err
			}
			if target.IsEmpty() {
				return nil
			}
			for _, r := range unloading {
				var tloc location.Location
				err := serialize.Scan(r.ref(), location.Root(r.name), func(c access.Reference, l location.Location) error {
					if c.Equal(target) {
						tloc = l
						return errFoundLocation
					}
					return nil
				})
				if errors.Is(err, errFoundLocation) {
					return &UnloadWouldBreak{FoundAt: loc, Target: tloc}
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// Reload re-reads every named resource's source into a fresh value, as
// one batch (spec.md §4.7). Other loaded resources' live References into
// the reloaded set are re-pointed to the corresponding item in the new
// value by structural Location; if a reloaded value no longer has an
// item at some old reference's Location, ReloadWouldBreak aborts the
// whole batch and the old values are restored.
func (u *Universe) Reload(names ...string) error {
	resources, err := u.resolve(names)
	if err != nil {
		return err
	}
	for _, r := range resources {
		if r.state != Loaded {
			return &InvalidResourceState{Op: "reload", State: r.state, Resource: r.name}
		}
	}

	for _, r := range resources {
		r.oldValue = r.value
		r.value = dynamic.Dynamic{}
		r.state = ReloadConstructing
	}

	rollback := func() {
		for _, r := range resources {
			r.value = r.oldValue
			r.oldValue = dynamic.Dynamic{}
			r.state = Loaded
		}
	}

	deactivate := u.activate()
	defer deactivate()

	var merr error
	for _, r := range resources {
		if err := u.constructOne(r); err != nil {
			merr = multierr.Append(merr, err)
		}
	}
	if merr != nil {
		u.rt.ClearQueue()
		rollback()
		return merr
	}
	if err := u.rt.DrainQueues(); err != nil {
		rollback()
		return err
	}

	for _, r := range resources {
		r.state = ReloadVerifying
	}

	byName := map[string]*Resource{}
	type oldLocEntry struct {
		ref access.Reference
		loc location.Location
	}
	var oldLocs []oldLocEntry
	for _, r := range resources {
		byName[r.name] = r
		root := location.Root(r.name)
		serialize.Scan(r.oldRef(), root, func(cur access.Reference, loc location.Location) error {
			oldLocs = append(oldLocs, oldLocEntry{ref: cur, loc: loc})
			return nil
		})
	}

	reloading := map[string]bool{}
	for _, r := range resources {
		reloading[r.name] = true
	}
	others := u.otherLoaded(reloading)

	refType := typeid.Of[Ref]()
	type fix struct {
		cur    access.Reference
		target access.Reference
	}
	var fixes []fix
	var verr error
	for _, other := range others {
		root := location.Root(other.name)
		err := serialize.Scan(other.ref(), root, func(cur access.Reference, loc location.Location) error {
			if !cur.TypeOf().Equal(refType) {
				return nil
			}
			var target access.Reference
			if err := access.Read[Ref](cur, func(rf *Ref) error { target = rf.Reference(); return nil }); err != nil {
				return err
			}
			if target.IsEmpty() {
				return nil
			}
			var oldLoc location.Location
			found := false
			for _, e := range oldLocs {
				if e.ref.Equal(target) {
					oldLoc, found = e.loc, true
					break
				}
			}
			if !found {
				return nil
			}
			newRoot, ok := byName[oldLoc.RootIRI()]
			if !ok {
				return nil
			}
			newTarget, err := serialize.Resolve(newRoot.ref(), oldLoc)
			if err != nil {
				return &ReloadWouldBreak{FoundAt: loc, Target: oldLoc}
			}
			fixes = append(fixes, fix{cur: cur, target: newTarget})
			return nil
		})
		if err != nil {
			verr = multierr.Append(verr, err)
		}
	}
	if verr != nil {
		rollback()
		return verr
	}

	for _, r := range resources {
		r.state = ReloadCommitting
	}
	for _, fx := range fixes {
		target := fx.target
		access.Write[Ref](fx.cur, func(rf *Ref) error { *rf = Ref{ref: target}; return nil })
	}
	for _, r := range resources {
		r.typ.Destroy(r.oldValue.Any())
		r.oldValue = dynamic.Dynamic{}
		r.state = Loaded
	}
	return nil
}
