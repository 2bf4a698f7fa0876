package location

import (
	"fmt"

	"github.com/ayu-run/ayu/ayuerr"
)

// InvalidLocation is raised by Parse when s is not a well-formed IRI (or
// fragment) per spec.md §6.
type InvalidLocation struct {
	Source  string
	Message string
}

func (e *InvalidLocation) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("location: %s", e.Message)
	}
	return fmt.Sprintf("location: %s: %s", e.Source, e.Message)
}
func (e *InvalidLocation) Category() ayuerr.Category { return ayuerr.CategoryReference }

// UnresolvedReference is raised when a Reference → Location scan finds no
// match for the given reference anywhere in the universe (spec.md §4.6).
type UnresolvedReference struct{ TypeName string }

func (e *UnresolvedReference) Error() string {
	return fmt.Sprintf("location: reference of type %s resolves to no location in the universe", e.TypeName)
}
func (e *UnresolvedReference) Category() ayuerr.Category { return ayuerr.CategoryReference }
