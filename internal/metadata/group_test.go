package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loadstone/loadstone/internal/xerr"
)

func TestGroupGraphTransitivePrecedence(t *testing.T) {
	g, err := NewGroupGraph([]Group{
		{Name: "a"},
		{Name: "b", After: []string{"a"}},
		{Name: "c", After: []string{"b"}},
	})
	require.NoError(t, err)

	assert.True(t, g.Precedes("a", "b"))
	assert.True(t, g.Precedes("a", "c"))
	assert.True(t, g.Precedes("b", "c"))
	assert.False(t, g.Precedes("c", "a"))
	assert.False(t, g.Precedes("a", "a"))
}

func TestGroupGraphDeclaresDefault(t *testing.T) {
	g, err := NewGroupGraph(nil)
	require.NoError(t, err)
	assert.True(t, g.IsDeclared(DefaultGroup))

	g, err = NewGroupGraph([]Group{{Name: "late", After: []string{DefaultGroup}}})
	require.NoError(t, err)
	assert.True(t, g.Precedes(DefaultGroup, "late"))
}

func TestGroupGraphUndefinedReference(t *testing.T) {
	_, err := NewGroupGraph([]Group{{Name: "b", After: []string{"ghost"}}})

	var groupErr *xerr.UndefinedGroupError
	require.ErrorAs(t, err, &groupErr)
	assert.Equal(t, "ghost", groupErr.Group)
	assert.Equal(t, xerr.CodeUndefinedGroup, groupErr.Code())
}

func TestGroupGraphRejectsCycles(t *testing.T) {
	_, err := NewGroupGraph([]Group{
		{Name: "a", After: []string{"b"}},
		{Name: "b", After: []string{"a"}},
	})
	require.Error(t, err)

	_, err = NewGroupGraph([]Group{{Name: "a", After: []string{"a"}}})
	require.Error(t, err)
}

func TestGroupGraphRejectsDuplicates(t *testing.T) {
	_, err := NewGroupGraph([]Group{{Name: "a"}, {Name: "a"}})
	require.Error(t, err)
}
