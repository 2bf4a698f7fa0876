package serialize

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	"github.com/ayu-run/ayu/dynamic"
	"github.com/ayu-run/ayu/location"
	"github.com/ayu-run/ayu/tree"
	"github.com/ayu-run/ayu/typeid"
)

type serPoint struct {
	X int32
	Y int32
}

type serConfig struct {
	Name  string
	Debug bool
}

var (
	serInt32ID = descriptor.Describe[int32]("serialize.int32",
		descriptor.ToTree(func(v *int32) (tree.Tree, error) { return tree.FromInt(int64(*v)), nil }),
		descriptor.FromTree(func(v *int32, t tree.Tree) error {
			i, err := t.AsInt64()
			if err != nil {
				return err
			}
			*v = int32(i)
			return nil
		}),
	)
	serStrID = descriptor.Describe[string]("serialize.string",
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
	serBoolID = descriptor.Describe[bool]("serialize.bool",
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

	serPointID = descriptor.Describe[serPoint]("serialize.serPoint",
		descriptor.Elems[serPoint](
			descriptor.Elem(access.Member(serInt32ID, unsafe.Offsetof(serPoint{}.X), false), false),
			descriptor.Elem(access.Member(serInt32ID, unsafe.Offsetof(serPoint{}.Y), false), false),
		),
	)

	serConfigID = descriptor.Describe[serConfig]("serialize.serConfig",
		descriptor.Attrs[serConfig](
			descriptor.Attr("name", access.Member(serStrID, unsafe.Offsetof(serConfig{}.Name), false), false, false),
			descriptor.Attr("debug", access.Member(serBoolID, unsafe.Offsetof(serConfig{}.Debug), false), true, false),
		),
	)
)

func rootRef(id typeid.TypeId, v any) access.Reference {
	switch p := v.(type) {
	case *serPoint:
		return access.New(dynamic.PointerTo(p), access.Identity(id))
	case *serConfig:
		return access.New(dynamic.PointerTo(p), access.Identity(id))
	}
	return access.Empty
}

func TestFromTreeToTree_ElemsRoundTrip(t *testing.T) {
	rt := ayu.NewRuntime()
	var p serPoint
	ref := rootRef(serPointID, &p)

	in := tree.FromArraySlice([]tree.Tree{tree.FromInt(3), tree.FromInt(4)})
	require.NoError(t, FromTree(rt, ref, in, false))
	require.Equal(t, int32(3), p.X)
	require.Equal(t, int32(4), p.Y)

	out, err := ToTree(rt, ref)
	require.NoError(t, err)
	items, err := out.AsArray()
	require.NoError(t, err)
	require.Len(t, items, 2)
	n, _ := items[0].AsInt64()
	require.Equal(t, int64(3), n)
}

func TestFromTree_WrongLength(t *testing.T) {
	rt := ayu.NewRuntime()
	var p serPoint
	ref := rootRef(serPointID, &p)

	in := tree.FromArraySlice([]tree.Tree{tree.FromInt(3)})
	err := FromTree(rt, ref, in, false)
	var wl *WrongLength
	require.ErrorAs(t, err, &wl)
}

func TestFromTreeToTree_AttrsRoundTripWithOptional(t *testing.T) {
	rt := ayu.NewRuntime()
	var c serConfig
	ref := rootRef(serConfigID, &c)

	in := tree.FromObjectSlice([]tree.Pair{{Key: "name", Value: tree.FromString("svc")}})
	require.NoError(t, FromTree(rt, ref, in, false))
	require.Equal(t, "svc", c.Name)
	require.False(t, c.Debug)

	out, err := ToTree(rt, ref)
	require.NoError(t, err)
	pairs, err := out.AsObject()
	require.NoError(t, err)
	require.Len(t, pairs, 2)
	require.Equal(t, "name", pairs[0].Key)
}

func TestFromTree_MissingRequiredAttr(t *testing.T) {
	rt := ayu.NewRuntime()
	var c serConfig
	ref := rootRef(serConfigID, &c)

	in := tree.FromObjectSlice([]tree.Pair{{Key: "debug", Value: tree.FromBool(true)}})
	err := FromTree(rt, ref, in, false)
	var missing *MissingAttr
	require.ErrorAs(t, err, &missing)
	require.Equal(t, "name", missing.Key)
}

func TestFromTree_UnwantedAttr(t *testing.T) {
	rt := ayu.NewRuntime()
	var c serConfig
	ref := rootRef(serConfigID, &c)

	in := tree.FromObjectSlice([]tree.Pair{
		{Key: "name", Value: tree.FromString("svc")},
		{Key: "extra", Value: tree.FromString("oops")},
	})
	err := FromTree(rt, ref, in, false)
	var unwanted *UnwantedAttr
	require.ErrorAs(t, err, &unwanted)
	require.Equal(t, "extra", unwanted.Key)
}

func TestItemAttrAndItemElem(t *testing.T) {
	var c serConfig
	ref := rootRef(serConfigID, &c)
	child, err := ItemAttr(ref, "name")
	require.NoError(t, err)
	require.NoError(t, access.Write[string](child, func(v *string) error { *v = "x"; return nil }))
	require.Equal(t, "x", c.Name)

	var p serPoint
	pref := rootRef(serPointID, &p)
	elem, err := ItemElem(pref, 1)
	require.NoError(t, err)
	require.NoError(t, access.Write[int32](elem, func(v *int32) error { *v = 9; return nil }))
	require.Equal(t, int32(9), p.Y)
}

func TestResolveAndScan(t *testing.T) {
	var p serPoint
	ref := rootRef(serPointID, &p)
	require.NoError(t, access.Write[serPoint](ref, func(v *serPoint) error { *v = serPoint{X: 1, Y: 2}; return nil }))

	loc := location.Root("mem:point").Elem(1)
	resolved, err := Resolve(ref, loc)
	require.NoError(t, err)
	require.NoError(t, access.Read[int32](resolved, func(v *int32) error {
		require.Equal(t, int32(2), *v)
		return nil
	}))

	var visited []string
	err = Scan(ref, location.Root("mem:point"), func(r access.Reference, l location.Location) error {
		visited = append(visited, l.String())
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"mem:point", "mem:point#0", "mem:point#1"}, visited)
}
