package service

import (
	"context"
	"time"

	"storefront-service/internal/model"
	"storefront-service/internal/store"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// CatalogSection groups the visible products of one category
type CatalogSection struct {
	ID       uint            `json:"id"`
	Name     string          `json:"name"`
	Slug     string          `json:"slug"`
	Products []model.Product `json:"products"`
}

// Overview is the storefront landing payload
type Overview struct {
	Brands     []model.Brand    `json:"brands"`
	Categories []model.Category `json:"categories"`
	Catalog    []CatalogSection `json:"catalog"`
}

type OverviewService struct {
	store   *store.Store
	metrics *prometheus.Metrics
}

func NewOverviewService(s *store.Store, m *prometheus.Metrics) *OverviewService {
	return &OverviewService{store: s, metrics: m}
}

// Overview returns every brand, every category and, per category, its visible products.
// Sections follow category order and keep the product order of the listing query, so
// products inside a section are newest first. Categories without products get an empty section.
func (s *OverviewService) Overview(ctx context.Context) (_ *Overview, err error) {
	ctx, span := tracer.Start(ctx, "OverviewService.Overview")
	defer func() { endSpan(span, err) }()
	defer s.metrics.TrackDBOperation("overview")(time.Now())

	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.store.ListProducts(ctx, store.ProductFilter{Visible: true})
	if err != nil {
		return nil, err
	}
	brands, err := s.store.ListBrands(ctx)
	if err != nil {
		return nil, err
	}

	catalog := make([]CatalogSection, len(categories))
	index := make(map[uint]int, len(categories))
	for i, c := range categories {
		catalog[i] = CatalogSection{ID: c.ID, Name: c.Name, Slug: c.Slug, Products: []model.Product{}}
		index[c.ID] = i
	}
	for _, p := range products {
		if i, ok := index[p.CategoryID]; ok {
			catalog[i].Products = append(catalog[i].Products, p)
		}
	}

	span.SetAttributes(
		attribute.Int("overview.categories", len(categories)),
		attribute.Int("overview.products", len(products)),
	)
	s.metrics.OverviewProductsGauge.Set(float64(len(products)))
	logger.Ctx(ctx).Debug("Overview built",
		zap.Int("categories", len(categories)),
		zap.Int("products", len(products)),
		zap.Int("brands", len(brands)))

	return &Overview{Brands: brands, Categories: categories, Catalog: catalog}, nil
}
