package store

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/availability"
	"storefront-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// productOrder lists the newest products first
const productOrder = "products.created_at DESC, products.id DESC"

// ProductFilter narrows a product listing
type ProductFilter struct {
	CategoryID *uint
	BrandID    *uint
	Active     *bool
	// Visible restricts the listing to what customers may see, including embedded variants
	Visible bool
}

// withProductRelations eager-loads brand, category, images and variants in batched queries
func withProductRelations(visible bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		variants := func(db *gorm.DB) *gorm.DB {
			return db.Order("product_variants.id ASC")
		}
		if visible {
			variants = func(db *gorm.DB) *gorm.DB {
				return availability.ActiveVariants(db).Order("product_variants.id ASC")
			}
		}
		return db.
			Preload("Brand").
			Preload("Category").
			Preload("Images", orderImages).
			Preload("Variants", variants)
	}
}

func orderImages(db *gorm.DB) *gorm.DB {
	return db.Order("product_images.sort_order ASC, product_images.id ASC")
}

// ListProducts returns products newest first with their relations loaded
func (s *Store) ListProducts(ctx context.Context, f ProductFilter) ([]model.Product, error) {
	query := s.conn(ctx).Model(&model.Product{}).Scopes(withProductRelations(f.Visible))
	if f.Visible {
		query = query.Scopes(availability.VisibleProducts)
	}
	if f.CategoryID != nil {
		query = query.Where("products.category_id = ?", *f.CategoryID)
	}
	if f.BrandID != nil {
		query = query.Where("products.brand_id = ?", *f.BrandID)
	}
	if f.Active != nil {
		query = query.Where("products.is_active = ?", *f.Active)
	}

	products := []model.Product{}
	if err := query.Order(productOrder).Find(&products).Error; err != nil {
		return nil, apperr.Internal("failed to list products", err)
	}
	return products, nil
}

// GetProduct loads a product by id; visible hides inactive products and variants
func (s *Store) GetProduct(ctx context.Context, id uint, visible bool) (*model.Product, error) {
	return s.getProduct(ctx, visible, fmt.Sprint(id), "products.id = ?", id)
}

// GetProductBySlug loads a product by slug; visible hides inactive products and variants
func (s *Store) GetProductBySlug(ctx context.Context, slug string, visible bool) (*model.Product, error) {
	return s.getProduct(ctx, visible, fmt.Sprintf("%q", slug), "products.slug = ?", slug)
}

func (s *Store) getProduct(ctx context.Context, visible bool, key string, query string, arg interface{}) (*model.Product, error) {
	db := s.conn(ctx).Scopes(withProductRelations(visible)).Where(query, arg)
	if visible {
		db = db.Scopes(availability.VisibleProducts)
	}
	var product model.Product
	if err := db.First(&product).Error; err != nil {
		return nil, lookupErr(err, "product", key)
	}
	return &product, nil
}

// CreateProduct inserts a product after checking its slug and references
func (s *Store) CreateProduct(ctx context.Context, p *model.Product) error {
	if err := s.checkProductWrite(ctx, p); err != nil {
		return err
	}
	if err := s.conn(ctx).Omit(clause.Associations).Create(p).Error; err != nil {
		return writeErr(err, "product")
	}
	return nil
}

// UpdateProduct saves the product's own columns; images and variants are managed separately
func (s *Store) UpdateProduct(ctx context.Context, p *model.Product) error {
	if err := s.checkProductWrite(ctx, p); err != nil {
		return err
	}
	if err := s.conn(ctx).Omit(clause.Associations).Save(p).Error; err != nil {
		return writeErr(err, "product")
	}
	return nil
}

// DeleteProduct removes a product with its images and variants. It fails while any of
// its variants is referenced by an order line.
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		var product model.Product
		if err := tx.conn(ctx).First(&product, id).Error; err != nil {
			return lookupErr(err, "product", fmt.Sprint(id))
		}

		var referenced int64
		err := tx.conn(ctx).Model(&model.OrderItem{}).
			Joins("JOIN product_variants ON product_variants.id = order_items.variant_id").
			Where("product_variants.product_id = ?", id).
			Count(&referenced).Error
		if err != nil {
			return apperr.Internal("failed to check product references", err)
		}
		if referenced > 0 {
			return apperr.Referenced("product %d has variants referenced by %d order line(s)", id, referenced)
		}

		if err := tx.conn(ctx).Where("product_id = ?", id).Delete(&model.ProductImage{}).Error; err != nil {
			return apperr.Internal("failed to delete product images", err)
		}
		if err := tx.conn(ctx).Where("product_id = ?", id).Delete(&model.ProductVariant{}).Error; err != nil {
			return apperr.Internal("failed to delete product variants", err)
		}
		if err := tx.conn(ctx).Delete(&model.Product{}, id).Error; err != nil {
			return apperr.Internal("failed to delete product", err)
		}
		return nil
	})
}

func (s *Store) checkProductWrite(ctx context.Context, p *model.Product) error {
	taken, err := s.exists(ctx, &model.Product{}, "slug = ? AND id <> ?", p.Slug, p.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("product with slug %q already exists", p.Slug)
	}
	if _, err := s.GetCategory(ctx, p.CategoryID); err != nil {
		return asFieldError(err, "category")
	}
	if p.BrandID != nil {
		if _, err := s.GetBrand(ctx, *p.BrandID); err != nil {
			return asFieldError(err, "brand")
		}
	}
	return nil
}
