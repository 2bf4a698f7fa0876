package resource

import (
	"strings"

	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/location"
	"github.com/ayu-run/ayu/serialize"
	"github.com/ayu-run/ayu/tree"
)

// active is the Universe currently running a Load/Save/Reload batch, set
// by Universe.activate for the call's duration (Unload and ForceUnload do
// not activate, as they run no facet of Ref). Ref's to_tree/
// from_tree/swizzle facets have no Universe parameter of their own — a
// descriptor.Facets signature is fixed to (pointer, tree), matching every
// other described type — so this is their only way to reach a universe to
// resolve against, mirroring the original's own global current_resource/
// current_location design. Only one Universe's batch can be in flight
// at a time per process as a result; spec.md §5 already disclaims
// concurrent use of one Runtime, so this adds no new restriction beyond
// what single-Runtime callers already accept. See DESIGN.md.
var active *Universe

// Ref is a cross-resource reference: a described value that serializes
// as a Location string (spec.md §4.6) instead of inline content, and
// resolves back to a live access.Reference on load. Embedding a Ref field
// in a described type is how one resource's tree points into another's
// (or into itself, including cyclically) without copying the referent.
type Ref struct {
	ref     access.Reference
	pending string // staged by from_tree, resolved into ref by swizzle
}

// NewRef wraps an already-resolved reference as a Ref, e.g. to build one
// programmatically before the first Save.
func NewRef(ref access.Reference) Ref { return Ref{ref: ref} }

// IsEmpty reports whether the Ref points nowhere.
func (r Ref) IsEmpty() bool { return r.ref.IsEmpty() && r.pending == "" }

// Reference returns the Ref's resolved target. Empty until a swizzle
// pass has run following FromTree (or if NewRef built it directly).
func (r Ref) Reference() access.Reference { return r.ref }

func init() {
	descriptor.Describe[Ref]("ayu.Reference",
		descriptor.ToTree(refToTree),
		descriptor.FromTree(refFromTree),
		descriptor.Swizzle(refSwizzle),
	)
}

func refToTree(v *Ref) (tree.Tree, error) {
	if v.ref.IsEmpty() {
		return tree.NullTree(), nil
	}
	if active == nil {
		return tree.Tree{}, &NoActiveUniverse{}
	}
	loc, err := active.ReferenceToLocation(v.ref)
	if err != nil {
		return tree.Tree{}, err
	}
	return tree.FromString(relativeLocationString(active, loc)), nil
}

// relativeLocationString prints loc as a bare fragment ("#a/b") when it
// shares the current serialization's resource, or a fully-qualified
// "iri#a/b" otherwise, per spec.md §4.6/§6: a reference within the same
// document need not repeat its own resource name.
func relativeLocationString(u *Universe, loc location.Location) string {
	s := loc.String()
	from := serialize.CurrentLocation(u.rt)
	if from.IsEmpty() || from.RootIRI() != loc.RootIRI() {
		return s
	}
	_, frag, hasFrag := strings.Cut(s, "#")
	if !hasFrag {
		return "#"
	}
	return "#" + frag
}

func refFromTree(v *Ref, t tree.Tree) error {
	*v = Ref{}
	if t.Is(tree.Null) {
		return nil
	}
	s, err := t.AsString()
	if err != nil {
		return err
	}
	v.pending = s
	return nil
}

// refSwizzle resolves v.pending into a live reference, deferred until
// every resource in the enclosing batch has finished its structural
// build (spec.md §5's DELAY_SWIZZLE) — the mechanism that lets two
// resources loaded in the same batch reference each other, including
// cyclically.
func refSwizzle(v *Ref, t tree.Tree) error {
	if v.pending == "" {
		return nil
	}
	if active == nil {
		return &NoActiveUniverse{}
	}
	base := serialize.CurrentLocation(active.rt).RootIRI()
	loc, err := location.Parse(base, v.pending)
	if err != nil {
		return err
	}
	ref, err := active.LocationToReference(loc)
	if err != nil {
		return err
	}
	v.ref = ref
	v.pending = ""
	return nil
}
