package tree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPrint_CompactRoundTrips(t *testing.T) {
	in := FromArray(FromInt(45), FromString("asdf"), FromArray(FromInt(3), FromInt(4), FromInt(5)))

	s, err := Print(in, PrintOptions{Mode: Compact})
	require.NoError(t, err)

	out, err := Parse("<test>", s)
	require.NoError(t, err)
	require.True(t, out.Is(Array))

	items, err := out.AsArray()
	require.NoError(t, err)
	require.Len(t, items, 3)
	n, err := items[0].AsInt64()
	require.NoError(t, err)
	require.Equal(t, int64(45), n)
}

func TestPrint_UndefinedRejected(t *testing.T) {
	_, err := Print(Tree{}, PrintOptions{Mode: Compact})
	require.Error(t, err)
}

func TestPrint_JSONQuotesStrings(t *testing.T) {
	s, err := Print(FromString("asdf"), PrintOptions{Mode: Compact, JSON: true})
	require.NoError(t, err)
	require.Equal(t, `"asdf"`, s)
}
