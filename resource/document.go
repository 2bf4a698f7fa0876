package resource

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/ayuerr"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/serialize"
	"github.com/ayu-run/ayu/tree"
	"github.com/ayu-run/ayu/typeid"
)

// Document is a heterogeneous bag of named dynamic values, suited as a
// resource's top-level item when its shape isn't fixed at describe time
// (recovered from the original's document.h — SPEC_FULL.md §4, a feature
// the distilled spec dropped but no Non-goal excludes). Keys starting
// with "_" are reserved for Document's own auto-generated unnamed-item
// names.
type Document struct {
	mu      sync.Mutex
	items   map[string]dynamic.Dynamic
	order   []string
	unnamed int
}

// NewDocument returns an empty Document.
func NewDocument() *Document {
	return &Document{items: map[string]dynamic.Dynamic{}}
}

// DocumentInvalidName is raised by NewNamedItem when name starts with the
// reserved "_" prefix.
type DocumentInvalidName struct{ Name string }

func (e *DocumentInvalidName) Error() string {
	return fmt.Sprintf("resource: invalid document item name %q", e.Name)
}
func (e *DocumentInvalidName) Category() ayuerr.Category { return ayuerr.CategoryResource }

// DocumentDuplicateName is raised by NewNamedItem when name is already in
// use in the document.
type DocumentDuplicateName struct{ Name string }

func (e *DocumentDuplicateName) Error() string {
	return fmt.Sprintf("resource: document already has an item named %q", e.Name)
}
func (e *DocumentDuplicateName) Category() ayuerr.Category { return ayuerr.CategoryResource }

// DocumentDeleteMissing is raised by Delete when name isn't in the
// document.
type DocumentDeleteMissing struct{ Name string }

func (e *DocumentDeleteMissing) Error() string {
	return fmt.Sprintf("resource: document has no item named %q", e.Name)
}
func (e *DocumentDeleteMissing) Category() ayuerr.Category { return ayuerr.CategoryResource }

// NewItem allocates a new unnamed item holding v, returning its
// auto-generated name ("_0", "_1", ...).
func NewItem[T any](d *Document, v T) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	name := fmt.Sprintf("_%d", d.unnamed)
	d.unnamed++
	d.items[name] = dynamic.New(v)
	d.order = append(d.order, name)
	return name
}

// NewNamedItem allocates a new item called name holding v.
// DocumentInvalidName is raised if name starts with "_";
// DocumentDuplicateName if it is already in use.
func NewNamedItem[T any](d *Document, name string, v T) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if strings.HasPrefix(name, "_") {
		return &DocumentInvalidName{Name: name}
	}
	if _, ok := d.items[name]; ok {
		return &DocumentDuplicateName{Name: name}
	}
	d.items[name] = dynamic.New(v)
	d.order = append(d.order, name)
	return nil
}

// Item returns the value stored under name as T, and whether name exists
// and holds exactly that type.
func Item[T any](d *Document, name string) (T, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.items[name]
	if !ok {
		var zero T
		return zero, false
	}
	return dynamic.Value[T](v)
}

// Delete removes name from the document. DocumentDeleteMissing is raised
// if it isn't present.
func (d *Document) Delete(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.items[name]; !ok {
		return &DocumentDeleteMissing{Name: name}
	}
	delete(d.items, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i:i], d.order[i+1:]...)
			break
		}
	}
	return nil
}

// Names returns the document's item names in insertion order.
func (d *Document) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.order...)
}

func init() {
	descriptor.Describe[Document]("ayu.Document",
		descriptor.ToTree(documentToTree),
		descriptor.FromTree(documentFromTree),
	)
}

// documentRuntime returns the Runtime of the active Universe's batch
// operation, if one is in progress (so nested items' Location/current-
// resource state stays correct), or a fresh throwaway Runtime otherwise,
// since to_tree/from_tree take no Runtime parameter of their own. Ref's
// facets have no such fallback: outside a batch they raise
// NoActiveUniverse.
func documentRuntime() *ayu.Runtime {
	if active != nil {
		return active.rt
	}
	return ayu.NewRuntime()
}

// documentToTree prints each item as a 2-element [type_name, value] pair,
// since a Document's whole point is holding values whose type isn't
// known until read back off the wire.
func documentToTree(v *Document) (tree.Tree, error) {
	v.mu.Lock()
	order := append([]string(nil), v.order...)
	items := make(map[string]dynamic.Dynamic, len(v.items))
	for k, it := range v.items {
		items[k] = it
	}
	v.mu.Unlock()

	rt := documentRuntime()
	pairs := make([]tree.Pair, 0, len(order))
	for _, name := range order {
		it := items[name]
		ref := access.New(dynamic.NewPointer(it.Type(), it.Addr()), access.Identity(it.Type()))
		t, err := serialize.ToTree(rt, ref)
		if err != nil {
			return tree.Tree{}, err
		}
		pairs = append(pairs, tree.Pair{
			Key:   name,
			Value: tree.FromArraySlice([]tree.Tree{tree.FromString(it.Type().Name()), t}),
		})
	}
	return tree.FromObjectSlice(pairs), nil
}

func documentFromTree(v *Document, t tree.Tree) error {
	pairs, err := t.AsObject()
	if err != nil {
		return err
	}
	*v = Document{items: map[string]dynamic.Dynamic{}}
	rt := documentRuntime()
	maxUnnamed := -1
	for _, p := range pairs {
		entry, err := p.Value.AsArray()
		if err != nil || len(entry) != 2 {
			return &serialize.WrongLength{Min: 2, Max: 2, Got: len(entry)}
		}
		typeName, err := entry[0].AsString()
		if err != nil {
			return err
		}
		id, err := typeid.ByName(typeName)
		if err != nil {
			return err
		}
		ctor, err := id.DefaultConstruct()
		if err != nil {
			return err
		}
		dv := dynamic.FromAny(id, ctor)
		ref := access.New(dynamic.NewPointer(dv.Type(), dv.Addr()), access.Identity(dv.Type()))
		if err := serialize.FromTree(rt, ref, entry[1], true); err != nil {
			return err
		}
		v.items[p.Key] = dv
		v.order = append(v.order, p.Key)
		if n, ok := strings.CutPrefix(p.Key, "_"); ok {
			if i, err := strconv.Atoi(n); err == nil && i > maxUnnamed {
				maxUnnamed = i
			}
		}
	}
	v.unnamed = maxUnnamed + 1
	return nil
}
