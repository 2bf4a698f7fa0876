package tree

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAsFloat64_NullBridgesToNaN(t *testing.T) {
	f, err := NullTree().AsFloat64()
	require.NoError(t, err)
	require.True(t, math.IsNaN(f))
}

func TestAsFloat64_IntWidensExactly(t *testing.T) {
	f, err := FromInt(7).AsFloat64()
	require.NoError(t, err)
	require.Equal(t, 7.0, f)
}

func TestAsInt64_ExactFloatRoundTrips(t *testing.T) {
	i, err := FromFloat(3).AsInt64()
	require.NoError(t, err)
	require.Equal(t, int64(3), i)
}

func TestAsInt64_InexactFloatRejected(t *testing.T) {
	_, err := FromFloat(3.5).AsInt64()
	require.Error(t, err)
	var cant *CantRepresent
	require.ErrorAs(t, err, &cant)
}

func TestAsIntN_OverflowRejected(t *testing.T) {
	_, err := FromInt(200).AsIntN(8)
	require.Error(t, err)

	i, err := FromInt(-128).AsIntN(8)
	require.NoError(t, err)
	require.Equal(t, int64(-128), i)
}

func TestAsUintN_NegativeRejected(t *testing.T) {
	_, err := FromInt(-1).AsUintN(8)
	require.Error(t, err)
}

func TestAsRune_SingleCharacter(t *testing.T) {
	r, err := FromString("x").AsRune()
	require.NoError(t, err)
	require.Equal(t, 'x', r)

	_, err = FromString("xy").AsRune()
	require.Error(t, err)
}

func TestAttrAndElem(t *testing.T) {
	obj := FromObject(Pair{Key: "a", Value: FromInt(1)}, Pair{Key: "b", Value: FromInt(2)})
	v, ok := obj.Attr("b")
	require.True(t, ok)
	i, err := v.AsInt64()
	require.NoError(t, err)
	require.Equal(t, int64(2), i)

	_, ok = obj.Attr("missing")
	require.False(t, ok)

	arr := FromArray(FromInt(10), FromInt(20))
	e, ok := arr.Elem(1)
	require.True(t, ok)
	i, err = e.AsInt64()
	require.NoError(t, err)
	require.Equal(t, int64(20), i)

	_, ok = arr.Elem(5)
	require.False(t, ok)
}

func TestGet_PanicsOnMiss(t *testing.T) {
	obj := FromObject(Pair{Key: "a", Value: FromInt(1)})
	require.NotPanics(t, func() { obj.Get("a") })
	require.Panics(t, func() { obj.Get("missing") })
}

func TestWrongFormOnMismatch(t *testing.T) {
	_, err := FromInt(1).AsString()
	var wrongForm *WrongForm
	require.ErrorAs(t, err, &wrongForm)
}
