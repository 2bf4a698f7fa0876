package prelude

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/serialize"
	"github.com/ayu-run/ayu/tree"
	"github.com/ayu-run/ayu/typeid"
)

func roundtrip[T any](t *testing.T, v T, in tree.Tree) T {
	rt := ayu.NewRuntime()
	var dst T
	ref := access.New(dynamic.PointerTo(&dst), access.Identity(typeid.Of[T]()))
	require.NoError(t, serialize.FromTree(rt, ref, in, false))
	return dst
}

func TestScalars_RoundTrip(t *testing.T) {
	require.Equal(t, true, roundtrip[bool](t, false, tree.FromBool(true)))
	require.Equal(t, "hi", roundtrip[string](t, "", tree.FromString("hi")))
	require.Equal(t, int32(42), roundtrip[int32](t, 0, tree.FromInt(42)))
	require.Equal(t, uint8(200), roundtrip[uint8](t, 0, tree.FromInt(200)))
	require.InDelta(t, 1.5, roundtrip[float64](t, 0, tree.FromFloat(1.5)), 0.0001)
}

func TestSlice_Idempotent(t *testing.T) {
	id1 := Slice[int32]()
	id2 := Slice[int32]()
	require.True(t, id1.Equal(id2))
}

func TestSlice_ElemFuncGrows(t *testing.T) {
	Slice[int32]()
	rt := ayu.NewRuntime()
	var s []int32
	ref := access.New(dynamic.PointerTo(&s), access.Identity(Slice[int32]()))

	in := tree.FromArraySlice([]tree.Tree{tree.FromInt(1), tree.FromInt(2), tree.FromInt(3)})
	require.NoError(t, serialize.FromTree(rt, ref, in, false))
	require.Equal(t, []int32{1, 2, 3}, s)

	out, err := serialize.ToTree(rt, ref)
	require.NoError(t, err)
	items, err := out.AsArray()
	require.NoError(t, err)
	require.Len(t, items, 3)
}
