package descriptor

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/tree"
	"github.com/ayu-run/ayu/typeid"
)

type descScalarT struct{ N int32 }

func TestDescribe_ToTreeFromTree(t *testing.T) {
	id := Describe[descScalarT]("descriptor.descScalarT",
		ToTree(func(v *descScalarT) (tree.Tree, error) { return tree.FromInt(int64(v.N)), nil }),
		FromTree(func(v *descScalarT, tr tree.Tree) error {
			i, err := tr.AsInt64()
			if err != nil {
				return err
			}
			v.N = int32(i)
			return nil
		}),
	)

	f := Of(id)
	require.NotNil(t, f)
	require.NotNil(t, f.ToTree)
	require.NotNil(t, f.FromTree)

	v := descScalarT{}
	require.NoError(t, f.FromTree(unsafe.Pointer(&v), tree.FromInt(7)))
	require.Equal(t, int32(7), v.N)

	out, err := f.ToTree(unsafe.Pointer(&v))
	require.NoError(t, err)
	n, err := out.AsInt64()
	require.NoError(t, err)
	require.Equal(t, int64(7), n)
}

type descPairT struct {
	A int32
	B int32
}

func TestDescribe_ElemsPreferArray(t *testing.T) {
	aID := typeid.Register(typeid.New[int32]("descriptor.int32.elems", func() int32 { return 0 }, func(*int32) {}))
	id := Describe[descPairT]("descriptor.descPairT",
		Elems[descPairT](
			Elem(access.Member(aID, unsafe.Offsetof(descPairT{}.A), false), false),
			Elem(access.Member(aID, unsafe.Offsetof(descPairT{}.B), false), false),
		),
	)
	f := Of(id)
	require.Len(t, f.Elems, 2)
	require.True(t, f.PreferArray)
}

func TestDescribe_ElemsRequiredAfterOptionalPanics(t *testing.T) {
	bID := typeid.Register(typeid.New[int32]("descriptor.int32.elems.panic", func() int32 { return 0 }, func(*int32) {}))
	require.Panics(t, func() {
		Describe[descPairT]("descriptor.descPairT.invalid",
			Elems[descPairT](
				Elem(access.Member(bID, unsafe.Offsetof(descPairT{}.A), false), true),
				Elem(access.Member(bID, unsafe.Offsetof(descPairT{}.B), false), false),
			),
		)
	})
}

func TestDescribe_DuplicateFacetPanics(t *testing.T) {
	require.Panics(t, func() {
		Describe[descScalarT]("descriptor.descScalarT.dup",
			ToTree(func(v *descScalarT) (tree.Tree, error) { return tree.Undef(), nil }),
			ToTree(func(v *descScalarT) (tree.Tree, error) { return tree.Undef(), nil }),
		)
	})
}

func TestOf_UndescribedTypeReturnsNil(t *testing.T) {
	id := typeid.Register(typeid.New[struct{ X int }]("descriptor.bare", func() struct{ X int } { return struct{ X int }{} }, func(*struct{ X int }) {}))
	require.Nil(t, Of(id))
}
