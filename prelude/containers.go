package prelude

import (
	"reflect"
	"sync"

	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/typeid"
)

var (
	mu         sync.Mutex
	registered = map[reflect.Type]typeid.TypeId{}
)

// Slice describes []T, the Go-generic stand-in for describe-standard.h's
// std::vector<T> template: length reads the current len, elem_func grows
// the slice with append as indices beyond the current length are asked
// for (the same "ElemFunc is expected to grow the underlying container"
// contract serialize/tree_from.go's fromTreeArray already documents for
// every dynamic array-shaped description in this module). Idempotent:
// calling Slice[T] more than once returns the same TypeId rather than
// registering a second Description, since unlike the original's one-time
// template instantiation per translation unit, a Go generic function body
// runs again on every call.
func Slice[T any]() typeid.TypeId {
	rt := reflect.TypeOf([]T(nil))

	mu.Lock()
	if id, ok := registered[rt]; ok {
		mu.Unlock()
		return id
	}
	mu.Unlock()

	elemID := typeid.Of[T]()
	id := descriptor.Describe[[]T](elemID.Name()+"[]",
		descriptor.Length(func(v *[]T) int { return len(*v) }),
		descriptor.ElemFuncFacet(func(v *[]T, i int) access.Reference {
			for len(*v) <= i {
				var zero T
				*v = append(*v, zero)
			}
			return access.New(dynamic.PointerTo(&(*v)[i]), access.Identity(elemID))
		}),
	)

	mu.Lock()
	registered[rt] = id
	mu.Unlock()
	return id
}
