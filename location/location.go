// Package location implements AYU's symbolic Location chain and its IRI
// fragment syntax (spec.md §3/§4.6/§6), plus the reverse-index cache that
// maps a Reference back to the Location it was reached at.
package location

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ayu-run/ayu/internal/identifier"
)

type kind int

const (
	kindRoot kind = iota
	kindAttr
	kindElem
	kindError
)

type node struct {
	parent *node
	kind   kind
	iri    string // kindRoot
	key    string // kindAttr
	index  int    // kindElem
	err    error  // kindError
}

// Location is an immutable, reference-counted (via Go's GC, sharing
// parent nodes the way the original's intrusive refcount shared them —
// see DESIGN.md) singly-linked chain rooted at a resource IRI. The empty
// Location is distinct from any rooted one (spec.md §3's invariant).
type Location struct {
	n *node
}

func (l Location) IsEmpty() bool { return l.n == nil }

// Root builds the root Location for a resource named by iri.
func Root(iri string) Location {
	return Location{n: &node{kind: kindRoot, iri: iri}}
}

// Attr extends l with an attr-key child node.
func (l Location) Attr(key string) Location {
	return Location{n: &node{parent: l.n, kind: kindAttr, key: key}}
}

// Elem extends l with an elem-index child node.
func (l Location) Elem(index int) Location {
	return Location{n: &node{parent: l.n, kind: kindElem, index: index}}
}

// WithError extends l with a deferred-error node, used when a scan or
// resolution step fails partway through but the partial path is still
// worth reporting (spec.md §3's "deferred-error" kind).
func (l Location) WithError(err error) Location {
	return Location{n: &node{parent: l.n, kind: kindError, err: err}}
}

// Parent returns l's parent Location, or the empty Location at the root.
func (l Location) Parent() Location {
	if l.n == nil || l.n.parent == nil {
		return Location{}
	}
	return Location{n: l.n.parent}
}

// RootIRI returns the resource IRI this Location is rooted at, walking up
// to the root node.
func (l Location) RootIRI() string {
	n := l.n
	for n != nil && n.kind != kindRoot {
		n = n.parent
	}
	if n == nil {
		return ""
	}
	return n.iri
}

// String renders l as an IRI with a fragment per spec.md §6 scenario 4:
// segments joined by '/', integer-shaped or quote-prefixed string
// segments explicitly quoted with a leading `'`.
func (l Location) String() string {
	if l.IsEmpty() {
		return ""
	}
	root, segs := l.flatten()
	if len(segs) == 0 {
		return root
	}
	return root + "#" + strings.Join(segs, "/")
}

// StepKind distinguishes the two addressable child-step kinds a Location
// can walk through. kindError nodes never appear in a Steps() result:
// they are a terminal annotation, not a navigable step.
type StepKind int

const (
	StepAttr StepKind = iota
	StepElem
)

// Step is one root-to-leaf hop of a Location, as consumed by
// serialize.Resolve to walk from a resource's root value down to the
// referred-to item (spec.md §4.6's "Location → Reference").
type Step struct {
	Kind  StepKind
	Key   string
	Index int
}

// Steps returns l's child hops in root-to-leaf order, skipping any
// deferred-error node (which carries no navigable step).
func (l Location) Steps() []Step {
	var rev []Step
	n := l.n
	for n != nil && n.kind != kindRoot {
		switch n.kind {
		case kindAttr:
			rev = append(rev, Step{Kind: StepAttr, Key: n.key})
		case kindElem:
			rev = append(rev, Step{Kind: StepElem, Index: n.index})
		}
		n = n.parent
	}
	for i, j := 0, len(rev)-1; i < j; i, j = i+1, j-1 {
		rev[i], rev[j] = rev[j], rev[i]
	}
	return rev
}

func (l Location) flatten() (string, []string) {
	var segs []string
	n := l.n
	for n != nil && n.kind != kindRoot {
		switch n.kind {
		case kindAttr:
			segs = append(segs, encodeSegment(n.key))
		case kindElem:
			segs = append(segs, strconv.Itoa(n.index))
		case kindError:
			segs = append(segs, "'"+encodeSegment(n.err.Error()))
		}
		n = n.parent
	}
	for i, j := 0, len(segs)-1; i < j; i, j = i+1, j-1 {
		segs[i], segs[j] = segs[j], segs[i]
	}
	root := ""
	if n != nil {
		root = n.iri
	}
	return root, segs
}

func encodeSegment(key string) string {
	escaped := strings.ReplaceAll(key, "%", "%25")
	escaped = strings.ReplaceAll(escaped, "/", "%2F")
	if key == "" || identifier.LooksLikeInteger(key) || strings.HasPrefix(key, "'") {
		return "'" + escaped
	}
	return escaped
}

func decodeSegment(raw string) string {
	s := strings.ReplaceAll(raw, "%2F", "/")
	s = strings.ReplaceAll(s, "%25", "%")
	return s
}

// Parse parses s, an absolute or base-relative IRI with an optional
// fragment, into a Location. base resolves a relative resource IRI (the
// "current resource" of spec.md §4.7 when parsing an in-document
// reference); pass "" to require s be absolute.
//
// Per spec.md §6 scenario 4: fragment segments are split on '/'; a
// completely empty (unquoted) segment is ignored; a segment prefixed with
// `'` is always an attr-key, even if empty or integer-shaped; any other
// integer-shaped segment is an elem-index; anything else is an attr-key.
// This resolves spec.md's own example ambiguously around consecutive
// trailing empty segments — see DESIGN.md's Open Question decision.
func Parse(base, s string) (Location, error) {
	iriPart, fragPart, hasFrag := strings.Cut(s, "#")
	resolved, err := resolveIRI(base, iriPart)
	if err != nil {
		return Location{}, &InvalidLocation{Source: s, Message: err.Error()}
	}
	loc := Root(resolved)
	if !hasFrag || fragPart == "" {
		return loc, nil
	}
	for _, raw := range strings.Split(fragPart, "/") {
		if raw == "" {
			continue
		}
		quoted := strings.HasPrefix(raw, "'")
		content := raw
		if quoted {
			content = raw[1:]
		}
		content = decodeSegment(content)
		if !quoted && identifier.LooksLikeInteger(content) {
			idx, err := strconv.Atoi(content)
			if err != nil {
				return Location{}, &InvalidLocation{Source: s, Message: "bad index segment " + raw}
			}
			loc = loc.Elem(idx)
			continue
		}
		loc = loc.Attr(content)
	}
	return loc, nil
}

func resolveIRI(base, iriPart string) (string, error) {
	if iriPart == "" {
		if base == "" {
			return "", errEmptyIRI
		}
		return base, nil
	}
	if base == "" {
		return iriPart, nil
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return iriPart, nil
	}
	rel, err := url.Parse(iriPart)
	if err != nil {
		return iriPart, nil
	}
	return baseURL.ResolveReference(rel).String(), nil
}

var errEmptyIRI = &InvalidLocation{Message: "empty IRI with no base resource"}
