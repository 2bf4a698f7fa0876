package serialize

import (
	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/location"
)

// locationThunk is the concrete type stashed (as any) on a Runtime's
// location-thunk stack by pushLocation. Kept private so only this package
// ever computes a Location eagerly — a cost paid only by a facet that
// actually calls CurrentLocation, e.g. resource.Ref's to_tree.
type locationThunk func() location.Location

// pushLocation records how to compute tv's own Location, lazily, for the
// duration of processing this traversal step, and returns the matching
// pop function.
func pushLocation(rt *ayu.Runtime, tv *Traversal) func() {
	rootIRI := rt.CurrentResource()
	rt.PushLocationThunk(locationThunk(func() location.Location { return tv.Location(rootIRI) }))
	return rt.PopLocationThunk
}

// CurrentLocation returns the Location of the item ToTree/FromTree is
// currently converting on rt, for use by a facet that needs to record its
// own position in the document (spec.md's current_location()). Returns
// the empty Location if called outside an active ToTree/FromTree call.
func CurrentLocation(rt *ayu.Runtime) location.Location {
	th, ok := rt.CurrentLocationThunk().(locationThunk)
	if !ok {
		return location.Location{}
	}
	return th()
}
