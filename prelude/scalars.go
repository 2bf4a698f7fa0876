// Package prelude registers descriptions for Go's native scalar and slice
// types, ported from original_source/src/base/ayu/describe-standard.{h,cpp}
// (AYU_DESCRIBE_SCALAR and the std::vector<T> template). Without this
// package, nothing composed of bare ints/strings/slices has a Description
// to serialize through — every described type in this module's examples
// and tests is built out of these.
package prelude

import (
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/tree"
)

func init() {
	descriptor.Describe[bool]("bool",
		descriptor.ToTree(func(v *bool) (tree.Tree, error) { return tree.FromBool(*v), nil }),
		descriptor.FromTree(func(v *bool, t tree.Tree) error {
			b, err := t.AsBool()
			if err != nil {
				return err
			}
			*v = b
			return nil
		}),
	)
	descriptor.Describe[string]("string",
		descriptor.ToTree(func(v *string) (tree.Tree, error) { return tree.FromString(*v), nil }),
		descriptor.FromTree(func(v *string, t tree.Tree) error {
			s, err := t.AsString()
			if err != nil {
				return err
			}
			*v = s
			return nil
		}),
	)
	descriptor.Describe[float32]("float32",
		descriptor.ToTree(func(v *float32) (tree.Tree, error) { return tree.FromFloat(float64(*v)), nil }),
		descriptor.FromTree(func(v *float32, t tree.Tree) error {
			f, err := t.AsFloat64()
			if err != nil {
				return err
			}
			*v = float32(f)
			return nil
		}),
	)
	descriptor.Describe[float64]("float64",
		descriptor.ToTree(func(v *float64) (tree.Tree, error) { return tree.FromFloat(*v), nil }),
		descriptor.FromTree(func(v *float64, t tree.Tree) error {
			f, err := t.AsFloat64()
			if err != nil {
				return err
			}
			*v = f
			return nil
		}),
	)

	describeSigned("int", func(v *int, i int64) { *v = int(i) }, 64)
	describeSigned("int8", func(v *int8, i int64) { *v = int8(i) }, 8)
	describeSigned("int16", func(v *int16, i int64) { *v = int16(i) }, 16)
	describeSigned("int32", func(v *int32, i int64) { *v = int32(i) }, 32)
	describeSigned("int64", func(v *int64, i int64) { *v = i }, 64)

	describeUnsigned("uint", func(v *uint, u uint64) { *v = uint(u) }, 64)
	describeUnsigned("uint8", func(v *uint8, u uint64) { *v = uint8(u) }, 8)
	describeUnsigned("uint16", func(v *uint16, u uint64) { *v = uint16(u) }, 16)
	describeUnsigned("uint32", func(v *uint32, u uint64) { *v = uint32(u) }, 32)
	describeUnsigned("uint64", func(v *uint64, u uint64) { *v = u }, 64)
}

// describeSigned and describeUnsigned can't be generic over the integer
// type itself (Go generics can't abstract over "a numeric kind plus its
// bit width" the way the original's AYU_DESCRIBE_SCALAR macro abstracts
// over a C++ type token), so each width is spelled out once in init above,
// sharing these two helpers for the to_tree/from_tree bodies.
func describeSigned[T ~int | ~int8 | ~int16 | ~int32 | ~int64](name string, assign func(*T, int64), bits int) {
	descriptor.Describe[T](name,
		descriptor.ToTree(func(v *T) (tree.Tree, error) { return tree.FromInt(int64(*v)), nil }),
		descriptor.FromTree(func(v *T, t tree.Tree) error {
			i, err := t.AsIntN(bits)
			if err != nil {
				return err
			}
			assign(v, i)
			return nil
		}),
	)
}

func describeUnsigned[T ~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64](name string, assign func(*T, uint64), bits int) {
	descriptor.Describe[T](name,
		descriptor.ToTree(func(v *T) (tree.Tree, error) { return tree.FromInt(int64(*v)), nil }),
		descriptor.FromTree(func(v *T, t tree.Tree) error {
			u, err := t.AsUintN(bits)
			if err != nil {
				return err
			}
			assign(v, u)
			return nil
		}),
	)
}
