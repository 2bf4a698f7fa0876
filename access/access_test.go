package access

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/typeid"
)

type accessInner struct{ N int }
type accessOuter struct{ Inner accessInner }

var (
	innerID = typeid.Register(typeid.New[accessInner]("access.accessInner", func() accessInner { return accessInner{} }, func(*accessInner) {}))
	outerID = typeid.Register(typeid.New[accessOuter]("access.accessOuter", func() accessOuter { return accessOuter{} }, func(*accessOuter) {}))
)

func TestIdentity_ReadWrite(t *testing.T) {
	v := accessInner{N: 1}
	ref := New(dynamic.PointerTo(&v), Identity(innerID))

	require.NoError(t, Read(ref, func(got *accessInner) error {
		require.Equal(t, 1, got.N)
		return nil
	}))
	require.NoError(t, Write(ref, func(dst *accessInner) error {
		*dst = accessInner{N: 2}
		return nil
	}))
	require.Equal(t, 2, v.N)
}

func TestIdentityReadonly_RejectsWrite(t *testing.T) {
	v := accessInner{N: 1}
	ref := New(dynamic.PointerTo(&v), IdentityReadonly(innerID))
	require.True(t, ref.Readonly())

	err := Write(ref, func(*accessInner) error { return nil })
	var wr *WriteReadonlyAccessor
	require.ErrorAs(t, err, &wr)
}

func TestMember_ProjectsField(t *testing.T) {
	v := accessOuter{Inner: accessInner{N: 5}}
	memberAcr := Member(innerID, 0, false) // accessOuter's only field sits at offset 0
	ref := New(dynamic.PointerTo(&v), memberAcr)

	require.NoError(t, Read(ref, func(got *accessInner) error {
		require.Equal(t, 5, got.N)
		return nil
	}))
	require.NoError(t, Write(ref, func(dst *accessInner) error {
		dst.N = 9
		return nil
	}))
	require.Equal(t, 9, v.Inner.N)
}

func TestChain_ComposesOuterAndInner(t *testing.T) {
	v := accessOuter{Inner: accessInner{N: 3}}
	outerRef := New(dynamic.PointerTo(&v), Identity(outerID))
	chained := Chain(outerRef.Accessor(), Member(innerID, 0, false))
	ref := New(outerRef.Host(), chained)

	require.NoError(t, Read(ref, func(got *accessInner) error {
		require.Equal(t, 3, got.N)
		return nil
	}))
}

func TestReference_Equal(t *testing.T) {
	v := accessInner{N: 1}
	a := New(dynamic.PointerTo(&v), Identity(innerID))
	b := New(dynamic.PointerTo(&v), Identity(innerID))
	require.True(t, a.Equal(b))
	require.True(t, Empty.Equal(Reference{}))
	require.False(t, a.Equal(Empty))
}

func TestReference_Empty(t *testing.T) {
	require.True(t, Empty.IsEmpty())
	err := Read[accessInner](Empty, func(*accessInner) error { return nil })
	var unaddr *UnaddressableReference
	require.ErrorAs(t, err, &unaddr)
}
