package resource

import (
	"fmt"

	"github.com/ayu-run/ayu/ayuerr"
	"github.com/ayu-run/ayu/location"
	"github.com/ayu-run/ayu/typeid"
)

// InvalidResourceName is raised when a resource name fails canonicalization
// (spec.md §7): illegal characters, an empty segment at the wrong spot, or
// a ".." that would walk outside the root.
type InvalidResourceName struct{ Name string }

func (e *InvalidResourceName) Error() string {
	return fmt.Sprintf("resource: invalid resource name %q", e.Name)
}
func (e *InvalidResourceName) Category() ayuerr.Category { return ayuerr.CategoryResource }

// UnknownResourceScheme is raised when no registered Scheme accepts an IRI.
type UnknownResourceScheme struct{ IRI string }

func (e *UnknownResourceScheme) Error() string {
	return fmt.Sprintf("resource: no scheme accepts %q", e.IRI)
}
func (e *UnknownResourceScheme) Category() ayuerr.Category { return ayuerr.CategoryResource }

// UnacceptableResourceName is raised when a batch operation names a
// resource that was never declared via Use in this Universe.
type UnacceptableResourceName struct{ Name string }

func (e *UnacceptableResourceName) Error() string {
	return fmt.Sprintf("resource: scheme rejects resource name %q", e.Name)
}
func (e *UnacceptableResourceName) Category() ayuerr.Category { return ayuerr.CategoryResource }

// UnacceptableResourceType is raised when a resource is given a root value
// whose type its scheme's AcceptsType refuses.
type UnacceptableResourceType struct {
	Name string
	Type typeid.TypeId
}

func (e *UnacceptableResourceType) Error() string {
	return fmt.Sprintf("resource: scheme rejects type %s for resource %q", e.Type.Name(), e.Name)
}
func (e *UnacceptableResourceType) Category() ayuerr.Category { return ayuerr.CategoryResource }

// DuplicateResourceScheme is raised by Universe.RegisterScheme when name is
// already registered.
type DuplicateResourceScheme struct{ Scheme string }

func (e *DuplicateResourceScheme) Error() string {
	return fmt.Sprintf("resource: scheme %q already registered", e.Scheme)
}
func (e *DuplicateResourceScheme) Category() ayuerr.Category { return ayuerr.CategoryResource }

// InvalidResourceState is raised when an operation is attempted against a
// resource not in a state that permits it (spec.md §4.7's transition
// table).
type InvalidResourceState struct {
	Op       string
	State    State
	Resource string
}

func (e *InvalidResourceState) Error() string {
	return fmt.Sprintf("resource: cannot %s resource %q in state %s", e.Op, e.Resource, e.State)
}
func (e *InvalidResourceState) Category() ayuerr.Category { return ayuerr.CategoryResource }

// EmptyResourceValue is raised by Save when a resource has no value to
// serialize (e.g. never loaded or constructed).
type EmptyResourceValue struct{ Resource string }

func (e *EmptyResourceValue) Error() string {
	return fmt.Sprintf("resource: %q has no value to save", e.Resource)
}
func (e *EmptyResourceValue) Category() ayuerr.Category { return ayuerr.CategoryResource }

// UnloadWouldBreak is raised by unload verification when another loaded
// resource holds a live Reference into the set being unloaded.
type UnloadWouldBreak struct {
	FoundAt location.Location
	Target  location.Location
}

func (e *UnloadWouldBreak) Error() string {
	return fmt.Sprintf("resource: unloading would break reference at %s (points to %s)", e.FoundAt, e.Target)
}
func (e *UnloadWouldBreak) Category() ayuerr.Category { return ayuerr.CategoryResource }

// ReloadWouldBreak is raised by reload verification when an old reference's
// Location cannot be re-resolved against the freshly-constructed value.
type ReloadWouldBreak struct {
	FoundAt location.Location
	Target  location.Location
}

func (e *ReloadWouldBreak) Error() string {
	return fmt.Sprintf("resource: reloading would break reference at %s (points to %s)", e.FoundAt, e.Target)
}
func (e *ReloadWouldBreak) Category() ayuerr.Category { return ayuerr.CategoryResource }

// RemoveSourceFailed is raised when deleting a resource's on-disk source
// fails (used by a future "forget and delete" operation; kept for parity
// with spec.md §7's taxonomy even though no operation currently calls it).
type RemoveSourceFailed struct {
	Resource string
	Err      error
}

func (e *RemoveSourceFailed) Error() string {
	return fmt.Sprintf("resource: failed to remove source of %q: %v", e.Resource, e.Err)
}
func (e *RemoveSourceFailed) Category() ayuerr.Category { return ayuerr.CategoryResource }

// OpenFailed, ReadFailed, CloseFailed are the I/O error trio of spec.md §7.
type OpenFailed struct {
	Filename string
	Err      error
}

func (e *OpenFailed) Error() string { return fmt.Sprintf("io: open %s: %v", e.Filename, e.Err) }
func (e *OpenFailed) Category() ayuerr.Category { return ayuerr.CategoryIO }

type ReadFailed struct {
	Filename string
	Err      error
}

func (e *ReadFailed) Error() string { return fmt.Sprintf("io: read %s: %v", e.Filename, e.Err) }
func (e *ReadFailed) Category() ayuerr.Category { return ayuerr.CategoryIO }

type CloseFailed struct {
	Filename string
	Err      error
}

func (e *CloseFailed) Error() string { return fmt.Sprintf("io: close %s: %v", e.Filename, e.Err) }
func (e *CloseFailed) Category() ayuerr.Category { return ayuerr.CategoryIO }

// NoActiveUniverse is raised by Ref's to_tree and swizzle facets when they
// run outside any Universe operation (ToTree/FromTree called directly on
// a value holding a Ref with no Load/Save/Reload in progress to resolve
// it against). Ref's from_tree only stages the string and never raises it.
type NoActiveUniverse struct{}

func (e *NoActiveUniverse) Error() string {
	return "resource: no active universe to resolve a cross-resource reference"
}
func (e *NoActiveUniverse) Category() ayuerr.Category { return ayuerr.CategoryResource }
