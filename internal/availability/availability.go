// Package availability decides which catalog entries customers may see.
//
// Every customer-facing read path (product listings, category and brand product
// listings, variant listings and the overview) goes through the scopes below so the
// rule is applied identically everywhere.
package availability

import (
	"storefront-service/internal/model"

	"gorm.io/gorm"
)

// ProductVisible reports whether a product may be shown to customers
func ProductVisible(p *model.Product) bool {
	return p != nil && p.IsActive
}

// VariantVisible reports whether a variant may be shown; its product must be visible too
func VariantVisible(v *model.ProductVariant, p *model.Product) bool {
	return v != nil && v.IsActive && ProductVisible(p)
}

// VisibleProducts restricts a products query to visible products
func VisibleProducts(db *gorm.DB) *gorm.DB {
	return db.Where("products.is_active = ?", true)
}

// ActiveVariants restricts a product_variants query to active variants; used for preloads
// where the owning product is already known to be visible
func ActiveVariants(db *gorm.DB) *gorm.DB {
	return db.Where("product_variants.is_active = ?", true)
}

// VisibleVariants restricts a product_variants query to active variants of visible products
func VisibleVariants(db *gorm.DB) *gorm.DB {
	return db.
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("product_variants.is_active = ? AND products.is_active = ?", true, true)
}
