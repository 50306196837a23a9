package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
	"storefront-service/internal/store"
	"storefront-service/internal/validation"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// CatalogService serves the customer-facing catalog and the staff-only catalog writes
type CatalogService struct {
	store   *store.Store
	metrics *prometheus.Metrics
}

func NewCatalogService(s *store.Store, m *prometheus.Metrics) *CatalogService {
	return &CatalogService{store: s, metrics: m}
}

// CategoryInput is the writable part of a category
type CategoryInput struct {
	Name        string `json:"name" validate:"required,max=100"`
	Slug        string `json:"slug" validate:"required,max=100,slug"`
	Parent      *uint  `json:"parent"`
	Description string `json:"description"`
	Image       string `json:"image" validate:"max=255"`
}

// BrandInput is the writable part of a brand
type BrandInput struct {
	Name string `json:"name" validate:"required,max=100"`
	Slug string `json:"slug" validate:"required,max=100,slug"`
	Logo string `json:"logo" validate:"max=255"`
}

// AttributeInput is the writable part of an attribute
type AttributeInput struct {
	Name   string              `json:"name" validate:"required,max=100"`
	Slug   string              `json:"slug" validate:"required,max=100,slug"`
	Type   model.AttributeType `json:"type" validate:"required,oneof=string number enum"`
	Values []string            `json:"values" validate:"omitempty,dive,required,max=100"`
}

// ProductInput is the writable part of a product
type ProductInput struct {
	Name             string  `json:"name" validate:"required,max=200"`
	Slug             string  `json:"slug" validate:"required,max=200,slug"`
	Brand            *uint   `json:"brand"`
	Category         uint    `json:"category" validate:"required"`
	ShortDescription string  `json:"short_description" validate:"max=255"`
	Description      string  `json:"description"`
	SEOTitle         string  `json:"seo_title" validate:"max=150"`
	SEODescription   string  `json:"seo_description" validate:"max=300"`
	IsActive         *bool   `json:"is_active"`
	IsPreorder       bool    `json:"is_preorder"`
	DeliveryText     string  `json:"delivery_text"`
	WarrantyMonths   *uint16 `json:"warranty_months"`
}

// VariantInput is the writable part of a variant
type VariantInput struct {
	SKU        *string           `json:"sku" validate:"omitempty,max=100"`
	Attributes map[string]string `json:"attributes"`
	Price      *decimal.Decimal  `json:"price"`
	OldPrice   *decimal.Decimal  `json:"old_price"`
	IsActive   *bool             `json:"is_active"`
	Stock      int64             `json:"stock" validate:"gte=0"`
}

// ImageInput is the writable part of a product image
type ImageInput struct {
	Image   string `json:"image" validate:"required,max=255"`
	AltText string `json:"alt_text" validate:"max=255"`
	Order   uint   `json:"order"`
	IsMain  bool   `json:"is_main"`
}

// maxPrice is the largest value a decimal(10,2) column holds
var maxPrice = decimal.RequireFromString("99999999.99")

// Customer-facing reads

func (s *CatalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.store.ListCategories(ctx)
}

// CategoryTree returns the category forest with children nested under their parents
func (s *CatalogService) CategoryTree(ctx context.Context) ([]store.CategoryNode, error) {
	tree, err := s.store.CategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Nested(), nil
}

func (s *CatalogService) CategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	return s.store.GetCategoryBySlug(ctx, slug)
}

// CategoryChildren returns the direct subcategories of the category with slug
func (s *CatalogService) CategoryChildren(ctx context.Context, slug string) ([]model.Category, error) {
	category, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	tree, err := s.store.CategoryTree(ctx)
	if err != nil {
		return nil, err
	}
	return tree.Children(category.ID), nil
}

// CategoryProducts returns the visible products of the category with slug
func (s *CatalogService) CategoryProducts(ctx context.Context, slug string) ([]model.Product, error) {
	category, err := s.store.GetCategoryBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.store.ListProducts(ctx, store.ProductFilter{CategoryID: &category.ID, Visible: true})
}

func (s *CatalogService) ListBrands(ctx context.Context) ([]model.Brand, error) {
	return s.store.ListBrands(ctx)
}

func (s *CatalogService) BrandBySlug(ctx context.Context, slug string) (*model.Brand, error) {
	return s.store.GetBrandBySlug(ctx, slug)
}

// BrandProducts returns the visible products of the brand with slug
func (s *CatalogService) BrandProducts(ctx context.Context, slug string) ([]model.Product, error) {
	brand, err := s.store.GetBrandBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return s.store.ListProducts(ctx, store.ProductFilter{BrandID: &brand.ID, Visible: true})
}

// ListProducts returns visible products, optionally narrowed by category and brand slug
func (s *CatalogService) ListProducts(ctx context.Context, categorySlug, brandSlug string) ([]model.Product, error) {
	filter := store.ProductFilter{Visible: true}
	if categorySlug != "" {
		category, err := s.store.GetCategoryBySlug(ctx, categorySlug)
		if err != nil {
			return nil, err
		}
		filter.CategoryID = &category.ID
	}
	if brandSlug != "" {
		brand, err := s.store.GetBrandBySlug(ctx, brandSlug)
		if err != nil {
			return nil, err
		}
		filter.BrandID = &brand.ID
	}
	return s.store.ListProducts(ctx, filter)
}

func (s *CatalogService) ProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	return s.store.GetProductBySlug(ctx, slug, true)
}

func (s *CatalogService) ListVariants(ctx context.Context) ([]model.ProductVariant, error) {
	return s.store.ListVisibleVariants(ctx)
}

func (s *CatalogService) VariantBySKU(ctx context.Context, sku string) (*model.ProductVariant, error) {
	return s.store.GetVisibleVariantBySKU(ctx, sku)
}

func (s *CatalogService) ListAttributes(ctx context.Context) ([]model.Attribute, error) {
	return s.store.ListAttributes(ctx)
}

func (s *CatalogService) AttributeBySlug(ctx context.Context, slug string) (*model.Attribute, error) {
	return s.store.GetAttributeBySlug(ctx, slug)
}

// Staff writes

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*model.Category, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	category := &model.Category{}
	applyCategory(category, in)
	if err := s.write(ctx, "category", "create", func() error { return s.store.CreateCategory(ctx, category) }); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*model.Category, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	applyCategory(category, in)
	if err := s.write(ctx, "category", "update", func() error { return s.store.UpdateCategory(ctx, category) }); err != nil {
		return nil, err
	}
	return category, nil
}

// DeleteCategory deletes a category and its subcategories
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	return s.write(ctx, "category", "delete", func() error { return s.store.DeleteCategory(ctx, id) })
}

// SetCategoryAttributes replaces the attributes a category declares for its variants
func (s *CatalogService) SetCategoryAttributes(ctx context.Context, id uint, attributeIDs []uint) (*model.Category, error) {
	var category *model.Category
	err := s.write(ctx, "category", "set_attributes", func() error {
		var err error
		category, err = s.store.SetCategoryAttributes(ctx, id, attributeIDs)
		return err
	})
	return category, err
}

func (s *CatalogService) CreateBrand(ctx context.Context, in BrandInput) (*model.Brand, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	brand := &model.Brand{Name: in.Name, Slug: in.Slug, Logo: in.Logo}
	if err := s.write(ctx, "brand", "create", func() error { return s.store.CreateBrand(ctx, brand) }); err != nil {
		return nil, err
	}
	return brand, nil
}

func (s *CatalogService) UpdateBrand(ctx context.Context, id uint, in BrandInput) (*model.Brand, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	brand, err := s.store.GetBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	brand.Name, brand.Slug, brand.Logo = in.Name, in.Slug, in.Logo
	if err := s.write(ctx, "brand", "update", func() error { return s.store.UpdateBrand(ctx, brand) }); err != nil {
		return nil, err
	}
	return brand, nil
}

// DeleteBrand deletes a brand; its products lose their brand but stay in the catalog
func (s *CatalogService) DeleteBrand(ctx context.Context, id uint) error {
	return s.write(ctx, "brand", "delete", func() error { return s.store.DeleteBrand(ctx, id) })
}

func (s *CatalogService) CreateAttribute(ctx context.Context, in AttributeInput) (*model.Attribute, error) {
	if err := validateAttribute(&in); err != nil {
		return nil, err
	}
	attribute := &model.Attribute{Name: in.Name, Slug: in.Slug, Type: in.Type, Values: in.Values}
	if err := s.write(ctx, "attribute", "create", func() error { return s.store.CreateAttribute(ctx, attribute) }); err != nil {
		return nil, err
	}
	return attribute, nil
}

func (s *CatalogService) UpdateAttribute(ctx context.Context, id uint, in AttributeInput) (*model.Attribute, error) {
	if err := validateAttribute(&in); err != nil {
		return nil, err
	}
	attribute, err := s.store.GetAttribute(ctx, id)
	if err != nil {
		return nil, err
	}
	attribute.Name, attribute.Slug, attribute.Type, attribute.Values = in.Name, in.Slug, in.Type, in.Values
	if err := s.write(ctx, "attribute", "update", func() error { return s.store.UpdateAttribute(ctx, attribute) }); err != nil {
		return nil, err
	}
	return attribute, nil
}

func (s *CatalogService) DeleteAttribute(ctx context.Context, id uint) error {
	return s.write(ctx, "attribute", "delete", func() error { return s.store.DeleteAttribute(ctx, id) })
}

// GetProduct returns a product by id for staff, including inactive products and variants
func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	return s.store.GetProduct(ctx, id, false)
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	product := &model.Product{IsActive: true, WarrantyMonths: model.DefaultWarrantyMonths}
	applyProduct(product, in)
	if err := s.write(ctx, "product", "create", func() error { return s.store.CreateProduct(ctx, product) }); err != nil {
		return nil, err
	}
	return s.store.GetProduct(ctx, product.ID, false)
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	product, err := s.store.GetProduct(ctx, id, false)
	if err != nil {
		return nil, err
	}
	applyProduct(product, in)
	if err := s.write(ctx, "product", "update", func() error { return s.store.UpdateProduct(ctx, product) }); err != nil {
		return nil, err
	}
	return s.store.GetProduct(ctx, id, false)
}

// DeleteProduct deletes a product with its images and variants
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	return s.write(ctx, "product", "delete", func() error { return s.store.DeleteProduct(ctx, id) })
}

func (s *CatalogService) CreateVariant(ctx context.Context, productID uint, in VariantInput) (*model.ProductVariant, error) {
	product, err := s.store.GetProduct(ctx, productID, false)
	if err != nil {
		return nil, err
	}
	if err := s.validateVariant(ctx, product, &in); err != nil {
		return nil, err
	}
	variant := &model.ProductVariant{ProductID: product.ID, IsActive: true}
	applyVariant(variant, in)
	if err := s.write(ctx, "variant", "create", func() error { return s.store.CreateVariant(ctx, variant) }); err != nil {
		return nil, err
	}
	return variant, nil
}

// UpdateVariant replaces a variant's data. Existing order lines keep their snapshotted price.
func (s *CatalogService) UpdateVariant(ctx context.Context, id uint, in VariantInput) (*model.ProductVariant, error) {
	variant, err := s.store.GetVariant(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateVariant(ctx, variant.Product, &in); err != nil {
		return nil, err
	}
	oldPrice := variant.Price
	applyVariant(variant, in)
	if err := s.write(ctx, "variant", "update", func() error { return s.store.UpdateVariant(ctx, variant) }); err != nil {
		return nil, err
	}
	if !oldPrice.Equal(variant.Price) {
		logger.Ctx(ctx).Info("Variant price changed",
			zap.Uint("variant_id", variant.ID),
			zap.String("old_price", oldPrice.StringFixed(2)),
			zap.String("new_price", variant.Price.StringFixed(2)))
	}
	return variant, nil
}

// DeleteVariant deletes a variant unless an order line references it
func (s *CatalogService) DeleteVariant(ctx context.Context, id uint) error {
	return s.write(ctx, "variant", "delete", func() error { return s.store.DeleteVariant(ctx, id) })
}

// ListImages returns a product's images in display order
func (s *CatalogService) ListImages(ctx context.Context, productID uint) ([]model.ProductImage, error) {
	if _, err := s.store.GetProduct(ctx, productID, false); err != nil {
		return nil, err
	}
	return s.store.ListImages(ctx, productID)
}

func (s *CatalogService) AddImage(ctx context.Context, productID uint, in ImageInput) (*model.ProductImage, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, err
	}
	if _, err := s.store.GetProduct(ctx, productID, false); err != nil {
		return nil, err
	}
	image := &model.ProductImage{ProductID: productID, Image: in.Image, AltText: in.AltText, Order: in.Order, IsMain: in.IsMain}
	if err := s.write(ctx, "image", "create", func() error { return s.store.AddImage(ctx, image) }); err != nil {
		return nil, err
	}
	return image, nil
}

func (s *CatalogService) DeleteImage(ctx context.Context, id uint) error {
	return s.write(ctx, "image", "delete", func() error { return s.store.DeleteImage(ctx, id) })
}

// SetMainImage makes the image the only main image of its product
func (s *CatalogService) SetMainImage(ctx context.Context, id uint) (*model.ProductImage, error) {
	var image *model.ProductImage
	err := s.write(ctx, "image", "set_main", func() error {
		var err error
		image, err = s.store.SetMainImage(ctx, id)
		return err
	})
	return image, err
}

// write runs a store mutation, recording its duration and outcome
func (s *CatalogService) write(ctx context.Context, entity, operation string, fn func() error) error {
	defer s.metrics.TrackDBOperation(entity + "_" + operation)(time.Now())
	if err := fn(); err != nil {
		logger.Ctx(ctx).Warn("Catalog write rejected",
			zap.String("entity", entity),
			zap.String("operation", operation),
			zap.String("kind", string(apperr.KindOf(err))),
			zap.Error(err))
		return err
	}
	s.metrics.RecordCatalogOperation(entity, operation)
	logger.Ctx(ctx).Info("Catalog write applied",
		zap.String("entity", entity),
		zap.String("operation", operation))
	return nil
}

func applyCategory(c *model.Category, in CategoryInput) {
	c.Name = in.Name
	c.Slug = in.Slug
	c.ParentID = in.Parent
	c.Description = in.Description
	c.Image = in.Image
}

func applyProduct(p *model.Product, in ProductInput) {
	p.Name = in.Name
	p.Slug = in.Slug
	p.BrandID = in.Brand
	p.CategoryID = in.Category
	p.ShortDescription = in.ShortDescription
	p.Description = in.Description
	p.SEOTitle = in.SEOTitle
	p.SEODescription = in.SEODescription
	p.IsPreorder = in.IsPreorder
	p.DeliveryText = in.DeliveryText
	if in.IsActive != nil {
		p.IsActive = *in.IsActive
	}
	if in.WarrantyMonths != nil {
		p.WarrantyMonths = *in.WarrantyMonths
	}
	// relations are reloaded after the write
	p.Brand, p.Category = nil, nil
}

func applyVariant(v *model.ProductVariant, in VariantInput) {
	v.SKU = in.SKU
	if v.SKU != nil && *v.SKU == "" {
		v.SKU = nil
	}
	attrs := in.Attributes
	if attrs == nil {
		attrs = map[string]string{}
	}
	v.Attributes = datatypes.NewJSONType(attrs)
	v.Price = *in.Price
	v.OldPrice = decimal.NullDecimal{}
	if in.OldPrice != nil {
		v.OldPrice = decimal.NewNullDecimal(*in.OldPrice)
	}
	if in.IsActive != nil {
		v.IsActive = *in.IsActive
	}
	v.Stock = uint(in.Stock)
}

func validateAttribute(in *AttributeInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.Type == model.AttributeEnum && len(in.Values) == 0 {
		return apperr.InvalidField("values", "enum attributes need at least one value")
	}
	if in.Type != model.AttributeEnum && len(in.Values) > 0 {
		return apperr.InvalidField("values", "only enum attributes take values")
	}
	return nil
}

// checkPrice enforces the range and scale of a decimal(10,2) column
func checkPrice(field string, price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return apperr.InvalidField(field, "must not be negative")
	case price.GreaterThan(maxPrice):
		return apperr.InvalidField(field, "must be at most "+maxPrice.String())
	case price.Exponent() < -2 && !price.Equal(price.Round(2)):
		return apperr.InvalidField(field, "must have at most 2 decimal places")
	}
	return nil
}

// validateVariant checks prices and stock, and the attributes against those the product's
// category declares. Categories without declared attributes accept any attributes.
func (s *CatalogService) validateVariant(ctx context.Context, product *model.Product, in *VariantInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.Price == nil {
		return apperr.InvalidField("price", "is required")
	}
	if err := checkPrice("price", *in.Price); err != nil {
		return err
	}
	if in.OldPrice != nil {
		if err := checkPrice("old_price", *in.OldPrice); err != nil {
			return err
		}
	}
	if product == nil {
		return apperr.Internal("variant has no product", nil)
	}

	category, err := s.store.GetCategory(ctx, product.CategoryID)
	if err != nil {
		return err
	}
	if len(category.Attributes) == 0 {
		return nil
	}

	declared := make(map[string]*model.Attribute, len(category.Attributes))
	for i := range category.Attributes {
		declared[category.Attributes[i].Slug] = &category.Attributes[i]
	}

	keys := make([]string, 0, len(in.Attributes))
	for key := range in.Attributes {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := in.Attributes[key]
		attr, ok := declared[key]
		if !ok {
			return apperr.InvalidField("attributes", fmt.Sprintf("category %q does not declare attribute %q", category.Slug, key))
		}
		switch attr.Type {
		case model.AttributeEnum:
			if !attr.Allows(value) {
				return apperr.InvalidField("attributes", fmt.Sprintf("%q is not an allowed value for %q", value, key))
			}
		case model.AttributeNumber:
			if _, err := decimal.NewFromString(value); err != nil {
				return apperr.InvalidField("attributes", fmt.Sprintf("%q must be a number", key))
			}
		}
	}
	return nil
}
