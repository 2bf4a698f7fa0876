package resource

import (
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/ayu-run/ayu"
	"github.com/ayu-run/ayu/access"
	"github.com/ayu-run/ayu/descriptor"
	_ "github.com/ayu-run/ayu/prelude"
	"github.com/ayu-run/ayu/typeid"
)

type resNode struct {
	Value int32
	Link  Ref
}

func init() {
	descriptor.Describe[resNode]("resource.resNode",
		descriptor.DefaultConstruct(func() resNode { return resNode{} }),
		descriptor.Destructor(func(*resNode) {}),
		descriptor.Attrs[resNode](
			descriptor.Attr("value", access.Member(typeid.Of[int32](), unsafe.Offsetof(resNode{}.Value), false), false, false),
			descriptor.Attr("link", access.Member(typeid.Of[Ref](), unsafe.Offsetof(resNode{}.Link), false), true, false),
		),
	)
}

func newTestUniverse(t *testing.T) (*Universe, string) {
	dir := t.TempDir()
	return NewUniverse(ayu.NewRuntime(), Config{Root: dir}), dir
}

func TestUse_DeclaresAndValidatesType(t *testing.T) {
	u, _ := newTestUniverse(t)
	r, err := Use[resNode](u, "file:a")
	require.NoError(t, err)
	require.Equal(t, Unloaded, r.State())

	same, err := Use[resNode](u, "file:a")
	require.NoError(t, err)
	require.Same(t, r, same)

	_, err = Use[int32](u, "file:a")
	var bad *UnacceptableResourceType
	require.ErrorAs(t, err, &bad)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	u, dir := newTestUniverse(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte(`{value:5}`), 0o644))

	_, err := Use[resNode](u, "file:a")
	require.NoError(t, err)
	require.NoError(t, u.Load("file:a"))

	r, _ := u.Get("file:a")
	require.True(t, r.Loaded())
	v, ok := Value[resNode](r)
	require.True(t, ok)
	require.Equal(t, int32(5), v.Value)

	require.NoError(t, access.Write[resNode](r.ref(), func(n *resNode) error { n.Value = 7; return nil }))
	require.NoError(t, u.Save("file:a"))

	data, err := os.ReadFile(filepath.Join(dir, "a"))
	require.NoError(t, err)
	require.Contains(t, string(data), "7")
}

func TestLoad_MissingFileErrors(t *testing.T) {
	u, _ := newTestUniverse(t)
	_, err := Use[resNode](u, "file:missing")
	require.NoError(t, err)
	err = u.Load("file:missing")
	require.Error(t, err)

	r, _ := u.Get("file:missing")
	require.Equal(t, Unloaded, r.State())
}

func TestUnload_VerifiesNoDanglingReference(t *testing.T) {
	u, dir := newTestUniverse(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte(`{value:1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte(`{value:2 link:"file:a#value"}`), 0o644))

	_, err := Use[resNode](u, "file:a")
	require.NoError(t, err)
	_, err = Use[resNode](u, "file:b")
	require.NoError(t, err)
	require.NoError(t, u.Load("file:a", "file:b"))

	err = u.Unload("file:a")
	var wouldBreak *UnloadWouldBreak
	require.ErrorAs(t, err, &wouldBreak)

	ra, _ := u.Get("file:a")
	require.True(t, ra.Loaded())
}

func TestForceUnload_SkipsVerification(t *testing.T) {
	u, dir := newTestUniverse(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte(`{value:1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte(`{value:2 link:"file:a#value"}`), 0o644))

	_, err := Use[resNode](u, "file:a")
	require.NoError(t, err)
	_, err = Use[resNode](u, "file:b")
	require.NoError(t, err)
	require.NoError(t, u.Load("file:a", "file:b"))

	require.NoError(t, u.ForceUnload("file:a", "file:b"))

	ra, _ := u.Get("file:a")
	rb, _ := u.Get("file:b")
	require.Equal(t, Unloaded, ra.State())
	require.Equal(t, Unloaded, rb.State())
}

func TestLoad_AutoLoadsCrossResourceTarget(t *testing.T) {
	u, dir := newTestUniverse(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rec1"), []byte(`{value:1 link:"file:rec2#value"}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rec2"), []byte(`{value:2 link:"file:rec1#value"}`), 0o644))

	_, err := Use[resNode](u, "file:rec1")
	require.NoError(t, err)
	_, err = Use[resNode](u, "file:rec2")
	require.NoError(t, err)

	require.NoError(t, u.Load("file:rec1"))

	rec2, ok := u.Get("file:rec2")
	require.True(t, ok)
	require.True(t, rec2.Loaded())

	rec1, _ := u.Get("file:rec1")
	v1, _ := Value[resNode](rec1)
	require.False(t, v1.Link.IsEmpty())
}

func TestReload_RepointsLiveReferences(t *testing.T) {
	u, dir := newTestUniverse(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte(`{value:1}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte(`{value:2 link:"file:a#value"}`), 0o644))

	_, err := Use[resNode](u, "file:a")
	require.NoError(t, err)
	_, err = Use[resNode](u, "file:b")
	require.NoError(t, err)
	require.NoError(t, u.Load("file:a", "file:b"))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte(`{value:99}`), 0o644))
	require.NoError(t, u.Reload("file:a"))

	rb, _ := u.Get("file:b")
	vb, _ := Value[resNode](rb)
	require.False(t, vb.Link.IsEmpty())
	require.NoError(t, access.Read[int32](vb.Link.Reference(), func(v *int32) error {
		require.Equal(t, int32(99), *v)
		return nil
	}))
}

func TestDocument_NewItemNamedItemAndDelete(t *testing.T) {
	d := NewDocument()
	name := NewItem[int32](d, 42)
	require.Equal(t, "_0", name)

	require.NoError(t, NewNamedItem[int32](d, "count", 7))
	err := NewNamedItem[int32](d, "count", 8)
	var dup *DocumentDuplicateName
	require.ErrorAs(t, err, &dup)

	err = NewNamedItem[int32](d, "_bad", 1)
	var invalid *DocumentInvalidName
	require.ErrorAs(t, err, &invalid)

	v, ok := Item[int32](d, "count")
	require.True(t, ok)
	require.Equal(t, int32(7), v)

	require.NoError(t, d.Delete("count"))
	require.ErrorAs(t, d.Delete("count"), new(*DocumentDeleteMissing))
}

func TestCanonicalizeResourceName(t *testing.T) {
	_, err := canonicalizeResourceName("")
	require.Error(t, err)

	_, err = canonicalizeResourceName("a/../../b")
	require.Error(t, err)

	got, err := canonicalizeResourceName("a/./b/../c")
	require.NoError(t, err)
	require.Equal(t, "a/c", got)

	_, err = canonicalizeResourceName(`bad"name`)
	require.Error(t, err)
}
