package typeid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type widgetT struct{ N int }

func TestRegisterAndOf(t *testing.T) {
	id := Register(New[widgetT]("typeid.widgetT", func() widgetT { return widgetT{N: 1} }, func(*widgetT) {}))
	require.False(t, id.IsEmpty())
	require.Equal(t, "typeid.widgetT", id.Name())

	got := Of[widgetT]()
	require.True(t, got.Equal(id))

	byName, err := ByName("typeid.widgetT")
	require.NoError(t, err)
	require.True(t, byName.Equal(id))
}

func TestReadonlyVariant(t *testing.T) {
	id := Register(New[widgetT]("typeid.widgetT.readonly", func() widgetT { return widgetT{} }, func(*widgetT) {}))
	ro := id.AsReadonly()
	require.True(t, ro.Readonly())
	require.False(t, id.Readonly())
	require.False(t, ro.Equal(id))
	require.True(t, ro.Writable().Equal(id))
}

type undestroyableT struct{}

func TestDefaultConstruct_RequiresDestructor(t *testing.T) {
	id := Register(New[undestroyableT]("typeid.undestroyableT", func() undestroyableT { return undestroyableT{} }, nil))
	_, err := id.DefaultConstruct()
	var cannotDestroy *CannotDestroy
	require.ErrorAs(t, err, &cannotDestroy)
}

type unconstructibleT struct{}

func TestDefaultConstruct_NoConstructor(t *testing.T) {
	id := Register(New[unconstructibleT]("typeid.unconstructibleT", nil, nil))
	_, err := id.DefaultConstruct()
	var cannotConstruct *CannotDefaultConstruct
	require.ErrorAs(t, err, &cannotConstruct)
}

func TestOf_PanicsWhenUndescribed(t *testing.T) {
	type neverRegisteredT struct{}
	require.Panics(t, func() { Of[neverRegisteredT]() })
}

func TestEmptyTypeId(t *testing.T) {
	require.True(t, Empty.IsEmpty())
	require.Equal(t, "", Empty.Name())
}
