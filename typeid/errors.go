package typeid

import (
	"fmt"
	"reflect"

	"github.com/ayu-run/ayu/ayuerr"
)

// UnknownType is raised when a reflect.Type has no registered Description.
type UnknownType struct{ RType reflect.Type }

func (e *UnknownType) Error() string {
	return fmt.Sprintf("typeid: unknown type %v", e.RType)
}
func (e *UnknownType) Category() ayuerr.Category { return ayuerr.CategoryType }

// TypeNotFound is raised when a name has no registered Description.
type TypeNotFound struct{ Name string }

func (e *TypeNotFound) Error() string { return fmt.Sprintf("typeid: no type named %q", e.Name) }
func (e *TypeNotFound) Category() ayuerr.Category { return ayuerr.CategoryType }

// CannotDefaultConstruct is raised by DefaultConstruct when no constructor
// thunk was registered for the type.
type CannotDefaultConstruct struct{ Type TypeId }

func (e *CannotDefaultConstruct) Error() string {
	return fmt.Sprintf("typeid: %s cannot be default-constructed", e.Type.Name())
}
func (e *CannotDefaultConstruct) Category() ayuerr.Category { return ayuerr.CategoryType }

// CannotDestroy is raised by Destroy when no destructor thunk was
// registered, and by DefaultConstruct when a constructor exists but no
// destructor does (constructing such a value would leak it).
type CannotDestroy struct{ Type TypeId }

func (e *CannotDestroy) Error() string {
	return fmt.Sprintf("typeid: %s cannot be destroyed", e.Type.Name())
}
func (e *CannotDestroy) Category() ayuerr.Category { return ayuerr.CategoryType }

// CannotCoerce is raised by a plain (non-Try) cast that fails.
type CannotCoerce struct {
	From TypeId
	To   TypeId
}

func (e *CannotCoerce) Error() string {
	return fmt.Sprintf("typeid: cannot coerce %s to %s", e.From.Name(), e.To.Name())
}
func (e *CannotCoerce) Category() ayuerr.Category { return ayuerr.CategoryType }
