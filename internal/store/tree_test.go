package store

import (
	"testing"

	"storefront-service/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(id uint) *uint { return &id }

// phones(1) > android(2) > foldables(4); phones(1) > iphone(3); laptops(5)
func sampleTree() *CategoryTree {
	return BuildCategoryTree([]model.Category{
		{ID: 2, Slug: "android", ParentID: ptr(1)},
		{ID: 4, Slug: "foldables", ParentID: ptr(2)},
		{ID: 3, Slug: "iphone", ParentID: ptr(1)},
		{ID: 5, Slug: "laptops"},
		{ID: 1, Slug: "phones"},
	})
}

func slugs(categories []model.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.Slug)
	}
	return out
}

func TestCategoryTreeNavigation(t *testing.T) {
	tree := sampleTree()

	assert.True(t, tree.Contains(4))
	assert.False(t, tree.Contains(9))
	assert.Equal(t, []string{"android", "iphone"}, slugs(tree.Children(1)))
	assert.Empty(t, tree.Children(9))
	assert.Equal(t, []string{"android", "phones"}, slugs(tree.Ancestors(4)))
	assert.Empty(t, tree.Ancestors(1))
	assert.ElementsMatch(t, []uint{1, 2, 3, 4}, tree.Subtree(1))
	assert.Nil(t, tree.Subtree(9))
}

func TestCategoryTreeWouldCycle(t *testing.T) {
	tree := sampleTree()

	assert.True(t, tree.WouldCycle(1, 1))
	assert.True(t, tree.WouldCycle(1, 4))
	assert.True(t, tree.WouldCycle(2, 4))
	assert.False(t, tree.WouldCycle(4, 3))
	assert.False(t, tree.WouldCycle(1, 5))
}

func TestCategoryTreeNested(t *testing.T) {
	nested := sampleTree().Nested()

	require.Len(t, nested, 2)
	assert.Equal(t, "laptops", nested[0].Slug)
	assert.NotNil(t, nested[0].Children)
	assert.Equal(t, "phones", nested[1].Slug)
	require.Len(t, nested[1].Children, 2)
	assert.Equal(t, "foldables", nested[1].Children[0].Children[0].Slug)
}

func TestCategoryTreeSurvivesExistingLoop(t *testing.T) {
	// rows written before cycle checks existed
	tree := BuildCategoryTree([]model.Category{
		{ID: 1, Slug: "a", ParentID: ptr(2)},
		{ID: 2, Slug: "b", ParentID: ptr(1)},
	})

	assert.Len(t, tree.Ancestors(1), 1)
	assert.ElementsMatch(t, []uint{1, 2}, tree.Subtree(1))
	assert.True(t, tree.WouldCycle(1, 2))
}
