package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverviewNewestFirstWithinCategory(t *testing.T) {
	env := newTestEnv(t)
	phones := env.category(t, "phones", nil)
	acme := env.brand(t, "acme")
	a := env.product(t, "a", phones.ID, &acme.ID, true)
	b := env.product(t, "b", phones.ID, &acme.ID, true)

	overview, err := env.overview.Overview(context.Background())
	require.NoError(t, err)

	require.Len(t, overview.Catalog, 1)
	section := overview.Catalog[0]
	assert.Equal(t, "phones", section.Slug)
	require.Len(t, section.Products, 2)
	assert.Equal(t, b.ID, section.Products[0].ID)
	assert.Equal(t, a.ID, section.Products[1].ID)
	for _, p := range section.Products {
		require.NotNil(t, p.Category)
		require.NotNil(t, p.Brand)
		assert.Equal(t, "phones", p.Category.Slug)
		assert.Equal(t, "acme", p.Brand.Slug)
	}
	require.Len(t, overview.Brands, 1)
}

func TestOverviewEmptyCategoriesHaveEmptyLists(t *testing.T) {
	env := newTestEnv(t)
	env.category(t, "tablets", nil)

	overview, err := env.overview.Overview(context.Background())
	require.NoError(t, err)
	require.Len(t, overview.Catalog, 1)
	assert.NotNil(t, overview.Catalog[0].Products)

	body, err := json.Marshal(overview)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"brands":[],"categories":[`+string(mustJSON(t, overview.Categories[0]))+`],"catalog":[{"id":1,"name":"tablets","slug":"tablets","products":[]}]}`,
		string(body))
}

func TestOverviewGroupsEachProductUnderItsCategory(t *testing.T) {
	env := newTestEnv(t)
	// created out of name order to check the section order
	zoom := env.category(t, "zoom", nil)
	audio := env.category(t, "audio", nil)
	misc := env.category(t, "misc", nil)
	env.product(t, "z1", zoom.ID, nil, true)
	env.product(t, "a1", audio.ID, nil, true)
	env.product(t, "z2", zoom.ID, nil, true)
	env.product(t, "off", audio.ID, nil, false)

	overview, err := env.overview.Overview(context.Background())
	require.NoError(t, err)

	slugs := make([]string, 0, len(overview.Catalog))
	seen := map[uint]int{}
	for _, section := range overview.Catalog {
		slugs = append(slugs, section.Slug)
		for _, p := range section.Products {
			seen[p.ID]++
			assert.Equal(t, section.ID, p.CategoryID)
		}
	}
	assert.Equal(t, []string{"audio", "misc", "zoom"}, slugs)
	assert.Len(t, seen, 3)
	for id, n := range seen {
		assert.Equal(t, 1, n, "product %d", id)
	}
	assert.Empty(t, overview.Catalog[1].Products)
	assert.Equal(t, misc.ID, overview.Catalog[1].ID)
}

func mustJSON(t *testing.T, v interface{}) []byte {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}
