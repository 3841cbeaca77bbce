package xlbridge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTitleText(t *testing.T) {
	name, tags, err := ParseTitleText("items#multi_rows=1&sep=|", "#", "&")
	require.NoError(t, err)
	assert.Equal(t, "items", name)
	assert.Equal(t, map[string]string{"multi_rows": "1", "sep": "|"}, tags)

	name, tags, err = ParseTitleText("  id  ", "#", "&")
	require.NoError(t, err)
	assert.Equal(t, "id", name)
	assert.Empty(t, tags)
}

func TestParseTitleText_Errors(t *testing.T) {
	for _, text := range []string{
		"#sep=,",
		"name#sep",
		"name#a=1=2",
		"name#=1",
		"name#a=1&a=2",
		"name#a=1&",
	} {
		_, _, err := ParseTitleText(text, "#", "&")
		assert.Error(t, err, text)
	}
}

func handBuiltTree(t *testing.T) *Title {
	t.Helper()
	root := NewRootTitle(8)
	pos := &Title{Name: "pos", FromIndex: 2, ToIndex: 2, Tags: map[string]string{"multi_rows": "true"}}
	require.NoError(t, pos.AddSubTitle(&Title{Name: "y", FromIndex: 3, ToIndex: 3}))
	require.NoError(t, pos.AddSubTitle(&Title{Name: "x", FromIndex: 2, ToIndex: 2}))
	require.NoError(t, root.AddSubTitle(&Title{Name: "name", FromIndex: 1, ToIndex: 1, Tags: map[string]string{"sep": ";"}}))
	require.NoError(t, root.AddSubTitle(&Title{Name: "id", FromIndex: 0, ToIndex: 0}))
	require.NoError(t, root.AddSubTitle(pos))
	root.Init()
	return root
}

func TestTitle_Init(t *testing.T) {
	root := handBuiltTree(t)

	assert.Equal(t, 3, root.ToIndex, "root ends at its last child")
	assert.Equal(t, []int{0, 1, 2, 3}, root.LeafIndexes())
	assert.Equal(t, "id", root.SubTitleList[0].Name)

	pos, ok := root.SubTitle("pos")
	require.True(t, ok)
	assert.Equal(t, 3, pos.ToIndex)
	assert.Equal(t, []int{2, 3}, pos.LeafIndexes())
	assert.Equal(t, "x", pos.SubTitleList[0].Name)
	assert.True(t, pos.SelfMultiRows)
	assert.True(t, root.HierarchyMultiRows)
	assert.False(t, root.SelfMultiRows)

	name, _ := root.SubTitle("name")
	assert.Equal(t, ";", name.Sep)
	assert.True(t, name.IsLeaf())

	require.NoError(t, root.Validate())
}

func TestTitle_Invariants(t *testing.T) {
	root := handBuiltTree(t)
	root.Walk(func(n *Title, _ int) {
		if n.IsLeaf() {
			assert.Equal(t, columnRange(n.FromIndex, n.ToIndex), n.LeafIndexes(), n.Name)
			return
		}
		maxTo := -1
		var leaves []int
		for _, sub := range n.SubTitleList {
			maxTo = max(maxTo, sub.ToIndex)
			leaves = append(leaves, sub.LeafIndexes()...)
		}
		assert.Equal(t, maxTo, n.ToIndex, n.Name)
		assert.Equal(t, leaves, n.LeafIndexes(), n.Name)
	})
}

func TestTitle_AddSubTitleDuplicate(t *testing.T) {
	root := NewRootTitle(2)
	require.NoError(t, root.AddSubTitle(&Title{Name: "id", FromIndex: 0, ToIndex: 0}))
	assert.Error(t, root.AddSubTitle(&Title{Name: "id", FromIndex: 1, ToIndex: 1}))
}

func TestTitle_ValidateOverlap(t *testing.T) {
	root := NewRootTitle(4)
	require.NoError(t, root.AddSubTitle(&Title{Name: "a", FromIndex: 0, ToIndex: 1, Tags: map[string]string{}}))
	a, _ := root.SubTitle("a")
	require.NoError(t, a.AddSubTitle(&Title{Name: "a1", FromIndex: 0, ToIndex: 0}))
	require.NoError(t, a.AddSubTitle(&Title{Name: "a2", FromIndex: 1, ToIndex: 2}))
	require.NoError(t, root.AddSubTitle(&Title{Name: "b", FromIndex: 2, ToIndex: 2}))
	root.Init()

	err := root.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"b" overlaps sibling "a"`)
}

func TestTitle_Describe(t *testing.T) {
	root := handBuiltTree(t)
	want := "__root__ A:D\n" +
		"  id A\n" +
		"  name B [sep=;]\n" +
		"  pos C:D [multi_rows=true]\n" +
		"    x C\n" +
		"    y D\n"
	assert.Equal(t, want, root.Describe())
}
