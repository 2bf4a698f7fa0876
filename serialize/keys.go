package serialize

import (
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
)

// setKeys implements spec.md §4.5's item_set_keys: validate the supplied
// key list against the type's declared attrs (recursing through included
// children) and its dynamic attr_func, then, if a keys facet is present,
// write the key list through it (or, if the accessor is readonly, require
// it already matches exactly).
func setKeys(ref access.Reference, f *descriptor.Facets, keys []string) error {
	provided := make(map[string]bool, len(keys))
	for _, k := range keys {
		provided[k] = true
	}
	claimed := make(map[string]bool, len(keys))
	if err := claimDeclaredAttrs(ref, f, provided, claimed); err != nil {
		return err
	}
	for _, k := range keys {
		if claimed[k] {
			continue
		}
		if f.AttrFunc == nil {
			return &UnwantedAttr{Key: k}
		}
		claimed[k] = true
	}
	if f.Keys == nil {
		return nil
	}
	keysRef := access.New(ref.Host(), access.Chain(ref.Accessor(), f.Keys))
	if keysRef.Readonly() {
		var current []string
		if err := access.Read[[]string](keysRef, func(v *[]string) error { current = *v; return nil }); err != nil {
			return err
		}
		if !sameKeySet(current, keys) {
			return &InvalidKeysType{Type: ref.TypeOf()}
		}
		return nil
	}
	return access.Write[[]string](keysRef, func(v *[]string) error {
		*v = append([]string(nil), keys...)
		return nil
	})
}

// claimDeclaredAttrs walks f's Attrs (recursing through Include entries),
// marking every key present in provided as claimed and raising
// MissingAttr for any required (non-optional, non-included) declared attr
// absent from provided.
func claimDeclaredAttrs(ref access.Reference, f *descriptor.Facets, provided, claimed map[string]bool) error {
	for _, a := range f.Attrs {
		if a.Include {
			childRef := access.New(ref.Host(), access.Chain(ref.Accessor(), a.Acr))
			childF := descriptor.Of(a.Acr.TypeOf(nil))
			if childF == nil {
				continue
			}
			if err := claimDeclaredAttrs(childRef, childF, provided, claimed); err != nil {
				return err
			}
			continue
		}
		if provided[a.Key] {
			claimed[a.Key] = true
			continue
		}
		if !a.Optional {
			return &MissingAttr{Key: a.Key}
		}
	}
	return nil
}

func sameKeySet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	count := map[string]int{}
	for _, k := range a {
		count[k]++
	}
	for _, k := range b {
		count[k]--
		if count[k] < 0 {
			return false
		}
	}
	return true
}
