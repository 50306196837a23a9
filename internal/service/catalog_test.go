package service

import (
	"context"
	"testing"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateProductDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)

	p, err := env.catalog.CreateProduct(ctx, ProductInput{Name: "Pixel", Slug: "pixel", Category: phones.ID})
	require.NoError(t, err)

	assert.True(t, p.IsActive)
	assert.Equal(t, uint16(model.DefaultWarrantyMonths), p.WarrantyMonths)
	assert.Nil(t, p.Brand)
	require.NotNil(t, p.Category)
	assert.Equal(t, "phones", p.Category.Slug)
}

func TestCreateProductValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateProduct(ctx, ProductInput{Name: "Pixel", Slug: "not a slug", Category: 1})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, apperr.From(err).Fields, "slug")

	_, err = env.catalog.CreateProduct(ctx, ProductInput{Name: "Pixel", Slug: "pixel", Category: 42})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestDuplicateSlugConflict(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.brand(t, "acme")

	_, err := env.catalog.CreateBrand(ctx, BrandInput{Name: "Acme 2", Slug: "acme"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestInactiveProductHiddenEverywhere(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	acme := env.brand(t, "acme")
	hidden := env.product(t, "hidden", phones.ID, &acme.ID, false)
	env.variant(t, hidden.ID, "H1", "10.00", true)

	products, err := env.catalog.ListProducts(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, products)

	products, err = env.catalog.CategoryProducts(ctx, "phones")
	require.NoError(t, err)
	assert.Empty(t, products)

	products, err = env.catalog.BrandProducts(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, products)

	variants, err := env.catalog.ListVariants(ctx)
	require.NoError(t, err)
	assert.Empty(t, variants)

	_, err = env.catalog.VariantBySKU(ctx, "H1")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = env.catalog.ProductBySlug(ctx, "hidden")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	overview, err := env.overview.Overview(ctx)
	require.NoError(t, err)
	require.Len(t, overview.Catalog, 1)
	assert.Empty(t, overview.Catalog[0].Products)

	// staff still sees it
	p, err := env.catalog.GetProduct(ctx, hidden.ID)
	require.NoError(t, err)
	assert.Len(t, p.Variants, 1)
}

func TestCustomerProductEmbedsOnlyActiveVariants(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	p := env.product(t, "pixel", phones.ID, nil, true)
	env.variant(t, p.ID, "P-RED", "10.00", true)
	env.variant(t, p.ID, "P-BLUE", "10.00", false)

	got, err := env.catalog.ProductBySlug(ctx, "pixel")
	require.NoError(t, err)
	require.Len(t, got.Variants, 1)
	assert.Equal(t, "P-RED", *got.Variants[0].SKU)

	_, err = env.catalog.VariantBySKU(ctx, "P-BLUE")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestListProductsFilters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	laptops := env.category(t, "laptops", nil)
	acme := env.brand(t, "acme")
	env.product(t, "pixel", phones.ID, &acme.ID, true)
	env.product(t, "galaxy", phones.ID, nil, true)
	env.product(t, "book", laptops.ID, &acme.ID, true)

	products, err := env.catalog.ListProducts(ctx, "phones", "acme")
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "pixel", products[0].Slug)

	products, err = env.catalog.ListProducts(ctx, "phones", "")
	require.NoError(t, err)
	assert.Len(t, products, 2)

	_, err = env.catalog.ListProducts(ctx, "tablets", "")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestDeleteBrandKeepsProducts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	acme := env.brand(t, "acme")
	p := env.product(t, "pixel", phones.ID, &acme.ID, true)

	require.NoError(t, env.catalog.DeleteBrand(ctx, acme.ID))

	got, err := env.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.BrandID)
	assert.Nil(t, got.Brand)
}

func TestDeleteCategoryReferencedByProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	android := env.category(t, "android", &phones.ID)
	env.product(t, "pixel", android.ID, nil, true)

	err := env.catalog.DeleteCategory(ctx, phones.ID)
	assert.Equal(t, apperr.KindReferenced, apperr.KindOf(err))

	_, err = env.catalog.CategoryBySlug(ctx, "android")
	assert.NoError(t, err)
}

func TestDeleteCategoryCascadesToChildren(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	android := env.category(t, "android", &phones.ID)
	env.category(t, "foldables", &android.ID)
	env.category(t, "laptops", nil)

	require.NoError(t, env.catalog.DeleteCategory(ctx, phones.ID))

	categories, err := env.catalog.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "laptops", categories[0].Slug)
}

func TestUpdateCategoryRejectsCycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	android := env.category(t, "android", &phones.ID)

	_, err := env.catalog.UpdateCategory(ctx, phones.ID, CategoryInput{Name: "phones", Slug: "phones", Parent: &android.ID})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Contains(t, apperr.From(err).Fields, "parent")

	_, err = env.catalog.UpdateCategory(ctx, phones.ID, CategoryInput{Name: "phones", Slug: "phones", Parent: &phones.ID})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestCategoryChildrenAndTree(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	env.category(t, "iphone", &phones.ID)
	env.category(t, "android", &phones.ID)
	env.category(t, "laptops", nil)

	children, err := env.catalog.CategoryChildren(ctx, "phones")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "android", children[0].Slug)
	assert.Equal(t, "iphone", children[1].Slug)

	tree, err := env.catalog.CategoryTree(ctx)
	require.NoError(t, err)
	require.Len(t, tree, 2)
	assert.Equal(t, "laptops", tree[0].Slug)
	assert.Equal(t, "phones", tree[1].Slug)
	assert.Len(t, tree[1].Children, 2)
}

func TestAttributeEnumRules(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.catalog.CreateAttribute(ctx, AttributeInput{Name: "Color", Slug: "color", Type: model.AttributeEnum})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.catalog.CreateAttribute(ctx, AttributeInput{Name: "Weight", Slug: "weight", Type: model.AttributeNumber, Values: []string{"1"}})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.catalog.CreateAttribute(ctx, AttributeInput{Name: "Size", Slug: "size", Type: "shape"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	color, err := env.catalog.CreateAttribute(ctx, AttributeInput{Name: "Color", Slug: "color", Type: model.AttributeEnum, Values: []string{"Red", "Blue"}})
	require.NoError(t, err)
	assert.True(t, color.Allows("Red"))
}

func TestVariantAttributesFollowCategory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	p := env.product(t, "pixel", phones.ID, nil, true)

	// no declared attributes: anything goes
	_, err := env.catalog.CreateVariant(ctx, p.ID, VariantInput{Attributes: map[string]string{"finish": "matte"}, Price: money("1")})
	require.NoError(t, err)

	color, err := env.catalog.CreateAttribute(ctx, AttributeInput{Name: "Color", Slug: "color", Type: model.AttributeEnum, Values: []string{"Red", "Blue"}})
	require.NoError(t, err)
	storage, err := env.catalog.CreateAttribute(ctx, AttributeInput{Name: "Storage", Slug: "storage", Type: model.AttributeNumber})
	require.NoError(t, err)
	category, err := env.catalog.SetCategoryAttributes(ctx, phones.ID, []uint{color.ID, storage.ID})
	require.NoError(t, err)
	assert.Len(t, category.Attributes, 2)

	cases := map[string]map[string]string{
		"unknown key":   {"finish": "matte"},
		"enum value":    {"color": "Green"},
		"number format": {"storage": "lots"},
	}
	for name, attrs := range cases {
		_, err := env.catalog.CreateVariant(ctx, p.ID, VariantInput{Attributes: attrs, Price: money("1")})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), name)
	}

	v, err := env.catalog.CreateVariant(ctx, p.ID, VariantInput{Attributes: map[string]string{"color": "Red", "storage": "256"}, Price: money("1")})
	require.NoError(t, err)
	assert.Equal(t, "Red", v.AttributeMap()["color"])
}

func TestVariantPriceValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	p := env.product(t, "pixel", phones.ID, nil, true)

	_, err := env.catalog.CreateVariant(ctx, p.ID, VariantInput{Price: money("-1")})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	old := decimal.NewFromInt(-5)
	_, err = env.catalog.CreateVariant(ctx, p.ID, VariantInput{Price: money("1"), OldPrice: &old})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.catalog.CreateVariant(ctx, p.ID, VariantInput{Price: money("1"), Stock: -1})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = env.catalog.CreateVariant(ctx, p.ID, VariantInput{Stock: 1})
	require.Error(t, err)
	assert.Equal(t, map[string]string{"price": "is required"}, apperr.From(err).Fields)

	_, err = env.catalog.CreateVariant(ctx, p.ID, VariantInput{Price: money("10.005")})
	require.Error(t, err)
	assert.Contains(t, apperr.From(err).Fields, "price")

	old = decimal.RequireFromString("12.345")
	_, err = env.catalog.CreateVariant(ctx, p.ID, VariantInput{Price: money("10"), OldPrice: &old})
	require.Error(t, err)
	assert.Contains(t, apperr.From(err).Fields, "old_price")

	v, err := env.catalog.CreateVariant(ctx, p.ID, VariantInput{Price: money("10.500")})
	require.NoError(t, err)
	assert.True(t, v.Price.Equal(decimal.RequireFromString("10.5")))

	sku := "DUP"
	env.variant(t, p.ID, sku, "1.00", true)
	_, err = env.catalog.CreateVariant(ctx, p.ID, VariantInput{SKU: &sku, Price: money("1")})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSetMainImageLeavesOneMain(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	phones := env.category(t, "phones", nil)
	p := env.product(t, "pixel", phones.ID, nil, true)

	first, err := env.catalog.AddImage(ctx, p.ID, ImageInput{Image: "front.jpg", IsMain: true})
	require.NoError(t, err)
	second, err := env.catalog.AddImage(ctx, p.ID, ImageInput{Image: "back.jpg", Order: 1})
	require.NoError(t, err)

	_, err = env.catalog.SetMainImage(ctx, second.ID)
	require.NoError(t, err)

	got, err := env.catalog.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, got.Images, 2)
	assert.Equal(t, first.ID, got.Images[0].ID)
	assert.False(t, got.Images[0].IsMain)
	assert.True(t, got.Images[1].IsMain)

	_, err = env.catalog.SetMainImage(ctx, 999)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestCatalogWritesAreCounted(t *testing.T) {
	env := newTestEnv(t)
	env.brand(t, "acme")

	_, err := env.catalog.CreateBrand(context.Background(), BrandInput{Name: "acme", Slug: "acme"})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.CatalogOperationsCounter.WithLabelValues("brand", "create")))
}
