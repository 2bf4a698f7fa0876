package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse_ArrayOfScalars(t *testing.T) {
	got, err := Parse("<test>", "[45 asdf [3 4 5]]")
	require.NoError(t, err)
	require.True(t, got.Is(Array))

	items, err := got.AsArray()
	require.NoError(t, err)
	require.Len(t, items, 3)

	n, err := items[0].AsInt64()
	require.NoError(t, err)
	require.Equal(t, int64(45), n)

	s, err := items[1].AsString()
	require.NoError(t, err)
	require.Equal(t, "asdf", s)

	require.True(t, items[2].Is(Array))
}

func TestParse_Object(t *testing.T) {
	got, err := Parse("<test>", `{name:svc retries:3}`)
	require.NoError(t, err)
	require.True(t, got.Is(Object))

	v, ok := got.Attr("name")
	require.True(t, ok)
	s, err := v.AsString()
	require.NoError(t, err)
	require.Equal(t, "svc", s)
}

func TestParse_TrailingDataRejected(t *testing.T) {
	_, err := Parse("<test>", "1 2")
	require.Error(t, err)
}

func TestParse_SpecialFloats(t *testing.T) {
	pos, err := Parse("<test>", "+inf")
	require.NoError(t, err)
	f, err := pos.AsFloat64()
	require.NoError(t, err)
	require.True(t, f > 0 && f == f+1) // +inf: any finite offset is a no-op

	neg, err := Parse("<test>", "-inf")
	require.NoError(t, err)
	f, err = neg.AsFloat64()
	require.NoError(t, err)
	require.True(t, f < 0 && f == f-1)
}
