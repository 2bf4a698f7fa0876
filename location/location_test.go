package location

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStringAndParse_RoundTrip(t *testing.T) {
	loc := Root("file:rec1").Attr("items").Elem(2)
	s := loc.String()
	require.Equal(t, "file:rec1#items/2", s)

	parsed, err := Parse("", s)
	require.NoError(t, err)
	require.Equal(t, "file:rec1", parsed.RootIRI())

	steps := parsed.Steps()
	require.Len(t, steps, 2)
	require.Equal(t, StepAttr, steps[0].Kind)
	require.Equal(t, "items", steps[0].Key)
	require.Equal(t, StepElem, steps[1].Kind)
	require.Equal(t, 2, steps[1].Index)
}

func TestParse_RelativeToBase(t *testing.T) {
	loc, err := Parse("file:rec1", "file:rec2#value")
	require.NoError(t, err)
	require.Equal(t, "file:rec2", loc.RootIRI())
	require.Len(t, loc.Steps(), 1)
	require.Equal(t, "value", loc.Steps()[0].Key)
}

func TestParse_BareFragmentUsesBase(t *testing.T) {
	loc, err := Parse("file:rec1", "#value")
	require.NoError(t, err)
	require.Equal(t, "file:rec1", loc.RootIRI())
	require.Equal(t, "value", loc.Steps()[0].Key)
}

func TestParse_IntegerShapedKeyQuoted(t *testing.T) {
	loc := Root("file:rec1").Attr("3")
	s := loc.String()
	require.Equal(t, "file:rec1#'3", s)

	parsed, err := Parse("", s)
	require.NoError(t, err)
	require.Equal(t, StepAttr, parsed.Steps()[0].Kind)
	require.Equal(t, "3", parsed.Steps()[0].Key)
}

func TestParse_NoBaseNoIRI_Errors(t *testing.T) {
	_, err := Parse("", "#value")
	require.Error(t, err)
}

func TestEmptyLocation(t *testing.T) {
	require.True(t, Location{}.IsEmpty())
	require.Equal(t, "", Location{}.String())
	require.Equal(t, "", Location{}.RootIRI())
}

func TestParent(t *testing.T) {
	root := Root("file:rec1")
	child := root.Attr("a")
	require.Equal(t, root.String(), child.Parent().String())
	require.True(t, root.Parent().IsEmpty())
}
