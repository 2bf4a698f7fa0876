package access

import (
	"fmt"

	"github.com/ayu-run/ayu/ayuerr"
)

// WriteReadonlyAccessor is raised when Write or Modify is attempted
// through a readonly accessor (spec.md §4.3).
type WriteReadonlyAccessor struct{ Op Op }

func (e *WriteReadonlyAccessor) Error() string {
	return fmt.Sprintf("access: cannot %s through a readonly accessor", e.Op)
}
func (e *WriteReadonlyAccessor) Category() ayuerr.Category { return ayuerr.CategoryReference }

// UnaddressableReference is raised when an operation that requires a
// stable address is attempted on an empty or non-addressable Reference.
type UnaddressableReference struct{}

func (e *UnaddressableReference) Error() string {
	return "access: reference is not addressable"
}
func (e *UnaddressableReference) Category() ayuerr.Category { return ayuerr.CategoryReference }

// AttrNotFound is raised by an attr_func-backed accessor (or the
// serialization layer's item_attr) when a key has no matching attr, per
// spec.md §4.5/§7.
type AttrNotFound struct{ Key string }

func (e *AttrNotFound) Error() string {
	return fmt.Sprintf("access: no such attr %q", e.Key)
}
func (e *AttrNotFound) Category() ayuerr.Category { return ayuerr.CategoryReference }

// ElemNotFound is raised by an elem_func-backed accessor (or item_elem)
// when an index is out of range.
type ElemNotFound struct{ Index int }

func (e *ElemNotFound) Error() string {
	return fmt.Sprintf("access: no such elem [%d]", e.Index)
}
func (e *ElemNotFound) Category() ayuerr.Category { return ayuerr.CategoryReference }
