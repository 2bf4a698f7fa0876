package serialize

import (
	"fmt"

	"github.com/ayu-run/ayu/ayuerr"
	"github.com/ayu-run/ayu/tree"
	"github.com/ayu-run/ayu/typeid"
)

// CannotToTree is raised when an item has none of to_tree, values, attrs,
// elems, or delegate — nothing tells ToTree how to represent it.
type CannotToTree struct{ Type typeid.TypeId }

func (e *CannotToTree) Error() string {
	return fmt.Sprintf("serialize: %s cannot be converted to a tree", e.Type.Name())
}
func (e *CannotToTree) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// CannotFromTree is raised when an item has none of from_tree, values,
// attrs, elems, delegate, or swizzle — nothing tells FromTree how to
// build it.
type CannotFromTree struct{ Type typeid.TypeId }

func (e *CannotFromTree) Error() string {
	return fmt.Sprintf("serialize: %s cannot be built from a tree", e.Type.Name())
}
func (e *CannotFromTree) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// InvalidForm is raised when a tree's form does not match what the
// item's facets require (e.g. an attrs-bearing type fed an array-form
// tree).
type InvalidForm struct {
	Type     typeid.TypeId
	Expected tree.Form
	Got      tree.Tree
}

func (e *InvalidForm) Error() string {
	return fmt.Sprintf("serialize: %s expects %s, got %s", e.Type.Name(), e.Expected, e.Got.Form())
}
func (e *InvalidForm) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// NoNameForValue is raised by a values facet's to_tree path when no
// entry's Value equals the live value.
type NoNameForValue struct{ Type typeid.TypeId }

func (e *NoNameForValue) Error() string {
	return fmt.Sprintf("serialize: %s has no name for this value", e.Type.Name())
}
func (e *NoNameForValue) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// NoValueForName is raised by a values facet's from_tree path when the
// tree names no registered entry.
type NoValueForName struct {
	Type typeid.TypeId
	Got  tree.Tree
}

func (e *NoValueForName) Error() string {
	return fmt.Sprintf("serialize: %s has no value named %v", e.Type.Name(), e.Got)
}
func (e *NoValueForName) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// MissingAttr is raised when a required declared attr has no matching key
// in the input object. Input keys left unclaimed raise UnwantedAttr.
type MissingAttr struct{ Key string }

func (e *MissingAttr) Error() string { return fmt.Sprintf("serialize: missing attr %q", e.Key) }
func (e *MissingAttr) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// UnwantedAttr is raised when an input key has no matching declared or
// dynamic attr.
type UnwantedAttr struct{ Key string }

func (e *UnwantedAttr) Error() string { return fmt.Sprintf("serialize: unwanted attr %q", e.Key) }
func (e *UnwantedAttr) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// WrongLength is raised when an array-form tree's length is outside the
// item's accepted [Min, Max] range (Max == -1 meaning unbounded, for a
// dynamic-length item with a minimum).
type WrongLength struct {
	Min, Max, Got int
}

func (e *WrongLength) Error() string {
	return fmt.Sprintf("serialize: expected between %d and %d elems, got %d", e.Min, e.Max, e.Got)
}
func (e *WrongLength) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// NoAttrs is raised by ItemAttr and GetKeys when the item's type has no
// facets at all. An item with facets but no matching attr yields
// access.AttrNotFound instead.
type NoAttrs struct{ Type typeid.TypeId }

func (e *NoAttrs) Error() string { return fmt.Sprintf("serialize: %s has no attrs", e.Type.Name()) }
func (e *NoAttrs) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// NoElems is raised by ItemElem when the item's type has no facets at all
// (an item with facets but no matching elem yields access.ElemNotFound
// instead), and when an array-form item's length is asked of a type with
// neither an elems nor a length facet.
type NoElems struct{ Type typeid.TypeId }

func (e *NoElems) Error() string { return fmt.Sprintf("serialize: %s has no elems", e.Type.Name()) }
func (e *NoElems) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// InvalidKeysType is raised when a readonly keys accessor's current value
// does not match the key set supplied by an incoming object-form tree.
type InvalidKeysType struct{ Type typeid.TypeId }

func (e *InvalidKeysType) Error() string {
	return fmt.Sprintf("serialize: %s's keys accessor does not accept this key set", e.Type.Name())
}
func (e *InvalidKeysType) Category() ayuerr.Category { return ayuerr.CategorySerialization }
