package tree

import (
	"fmt"

	"github.com/ayu-run/ayu/ayuerr"
)

// WrongForm is raised when a conversion expects a different form than the
// tree actually has. Spec.md §7 "Tree errors".
type WrongForm struct {
	Expected Form
	Got      Tree
}

func (e *WrongForm) Error() string {
	return fmt.Sprintf("tree: expected %s, got %s", e.Expected, e.Got.form)
}
func (e *WrongForm) Category() ayuerr.Category { return ayuerr.CategoryTree }

// CantRepresent is raised when a tree's value does not fit the requested
// native type (e.g. 3.5 -> int, 1000 -> int8).
type CantRepresent struct {
	TypeName string
	Got      Tree
}

func (e *CantRepresent) Error() string {
	return fmt.Sprintf("tree: cannot represent as %s: %s", e.TypeName, debugShow(e.Got))
}
func (e *CantRepresent) Category() ayuerr.Category { return ayuerr.CategoryTree }

// ParseError is raised by Parse on malformed input.
type ParseError struct {
	Message  string
	Filename string
	Line     int
	Column   int
}

func (e *ParseError) Error() string {
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Message)
}
func (e *ParseError) Category() ayuerr.Category { return ayuerr.CategoryTree }

// AttrNotFound is the panic value of Get for an attr lookup that misses.
// Package access defines its own AttrNotFound for item-level lookups.
type AttrNotFound struct{ Key string }

func (e *AttrNotFound) Error() string { return fmt.Sprintf("tree: no attr %q", e.Key) }
func (e *AttrNotFound) Category() ayuerr.Category { return ayuerr.CategorySerialization }

// ElemNotFound is the panic value of GetElem for an elem lookup that
// misses. Package access defines its own ElemNotFound for item-level
// lookups.
type ElemNotFound struct{ Index int }

func (e *ElemNotFound) Error() string { return fmt.Sprintf("tree: no elem %d", e.Index) }
func (e *ElemNotFound) Category() ayuerr.Category { return ayuerr.CategorySerialization }

func debugShow(t Tree) string {
	switch t.form {
	case Number:
		if t.isFloat {
			return fmt.Sprintf("%g", t.float)
		}
		return fmt.Sprintf("%d", t.integer)
	case String:
		return fmt.Sprintf("%q", t.str)
	default:
		return t.form.String()
	}
}
