package service

import (
	"context"
	"testing"
	"time"

	"storefront-service/internal/model"
	"storefront-service/internal/store"
	"storefront-service/internal/testdb"
	"storefront-service/pkg/jwtutil"
	"storefront-service/prometheus"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type testEnv struct {
	store    *store.Store
	metrics  *prometheus.Metrics
	catalog  *CatalogService
	overview *OverviewService
	orders   *OrderService
	identity *IdentityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := store.New(testdb.Open(t))
	m := prometheus.NewTestMetrics()
	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey: "test-signing-key",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	})

	return &testEnv{
		store:    st,
		metrics:  m,
		catalog:  NewCatalogService(st, m),
		overview: NewOverviewService(st, m),
		orders:   NewOrderService(st, m),
		identity: NewIdentityService(st, jwt, m, WithHashCost(bcrypt.MinCost)),
	}
}

func (e *testEnv) category(t *testing.T, slug string, parent *uint) *model.Category {
	t.Helper()
	c, err := e.catalog.CreateCategory(context.Background(), CategoryInput{Name: slug, Slug: slug, Parent: parent})
	require.NoError(t, err)
	return c
}

func (e *testEnv) brand(t *testing.T, slug string) *model.Brand {
	t.Helper()
	b, err := e.catalog.CreateBrand(context.Background(), BrandInput{Name: slug, Slug: slug})
	require.NoError(t, err)
	return b
}

func (e *testEnv) product(t *testing.T, slug string, categoryID uint, brandID *uint, active bool) *model.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), ProductInput{
		Name:     slug,
		Slug:     slug,
		Category: categoryID,
		Brand:    brandID,
		IsActive: &active,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) variant(t *testing.T, productID uint, sku, price string, active bool) *model.ProductVariant {
	t.Helper()
	v, err := e.catalog.CreateVariant(context.Background(), productID, VariantInput{
		SKU:      &sku,
		Price:    money(price),
		IsActive: &active,
		Stock:    5,
	})
	require.NoError(t, err)
	return v
}

func money(value string) *decimal.Decimal {
	d := decimal.RequireFromString(value)
	return &d
}

func (e *testEnv) user(t *testing.T, username string) Identity {
	t.Helper()
	u, err := e.identity.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	return identityOf(u)
}
