package dynamic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayu-run/ayu/typeid"
)

type dynWidgetT struct{ N int }

func init() {
	typeid.Register(typeid.New[dynWidgetT]("dynamic.dynWidgetT", func() dynWidgetT { return dynWidgetT{} }, func(*dynWidgetT) {}))
}

func TestNewAndValue(t *testing.T) {
	d := New(dynWidgetT{N: 3})
	require.False(t, d.IsEmpty())
	require.Equal(t, typeid.Of[dynWidgetT](), d.Type())

	v, ok := Value[dynWidgetT](d)
	require.True(t, ok)
	require.Equal(t, 3, v.N)

	_, ok = Value[int](d)
	require.False(t, ok)
}

func TestFromAny(t *testing.T) {
	id := typeid.Of[dynWidgetT]()
	d := FromAny(id, dynWidgetT{N: 9})
	require.Equal(t, id, d.Type())
	v, ok := Value[dynWidgetT](d)
	require.True(t, ok)
	require.Equal(t, 9, v.N)
}

func TestAddr_StableAcrossReads(t *testing.T) {
	d := New(dynWidgetT{N: 1})
	a1 := d.Addr()
	a2 := d.Addr()
	require.Equal(t, a1, a2)
	require.NotNil(t, a1)
}

func TestTakeFrom_ClearsSource(t *testing.T) {
	slot := New(dynWidgetT{N: 5})
	moved := TakeFrom(&slot)
	require.True(t, slot.IsEmpty())
	require.False(t, moved.IsEmpty())
}

func TestPointer_Identity(t *testing.T) {
	var v dynWidgetT
	p := PointerTo(&v)
	require.False(t, p.IsEmpty())
	require.Equal(t, typeid.Of[dynWidgetT](), p.Type())

	got, ok := As[dynWidgetT](p)
	require.True(t, ok)
	require.Same(t, &v, got)

	_, ok = As[int](p)
	require.False(t, ok)
}

func TestEmptyDynamicAndPointer(t *testing.T) {
	require.True(t, Empty().IsEmpty())
	require.True(t, EmptyPointer().IsEmpty())
	require.Nil(t, Empty().Addr())
}
