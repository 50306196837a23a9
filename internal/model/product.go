package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// DefaultWarrantyMonths is applied to products created without an explicit warranty
const DefaultWarrantyMonths = 12

// Product is the catalog entry customers browse; purchasable units are its variants
type Product struct {
	ID               uint             `json:"id" gorm:"primarykey"`
	Name             string           `json:"name" gorm:"type:varchar(200);not null"`
	Slug             string           `json:"slug" gorm:"type:varchar(200);not null;uniqueIndex"`
	BrandID          *uint            `json:"-" gorm:"index"`
	Brand            *Brand           `json:"brand" gorm:"constraint:OnDelete:SET NULL"`
	CategoryID       uint             `json:"-" gorm:"index;not null"`
	Category         *Category        `json:"category" gorm:"constraint:OnDelete:RESTRICT"`
	ShortDescription string           `json:"short_description" gorm:"type:varchar(255)"`
	Description      string           `json:"description" gorm:"type:text"`
	SEOTitle         string           `json:"seo_title" gorm:"column:seo_title;type:varchar(150)"`
	SEODescription   string           `json:"seo_description" gorm:"column:seo_description;type:varchar(300)"`
	IsActive         bool             `json:"is_active" gorm:"not null"`
	IsPreorder       bool             `json:"is_preorder" gorm:"not null"`
	DeliveryText     string           `json:"delivery_text" gorm:"type:text"`
	WarrantyMonths   uint16           `json:"warranty_months" gorm:"not null"`
	CreatedAt        time.Time        `json:"created_at" gorm:"index"`
	UpdatedAt        time.Time        `json:"updated_at"`
	Images           []ProductImage   `json:"images" gorm:"constraint:OnDelete:CASCADE"`
	Variants         []ProductVariant `json:"variants" gorm:"constraint:OnDelete:CASCADE"`
}

// ProductImage is a picture attached to a product
type ProductImage struct {
	ID        uint   `json:"id" gorm:"primarykey"`
	ProductID uint   `json:"-" gorm:"index;not null"`
	Image     string `json:"image" gorm:"type:varchar(255);not null"`
	AltText   string `json:"alt_text" gorm:"type:varchar(255)"`
	Order     uint   `json:"order" gorm:"column:sort_order;not null;default:0"`
	IsMain    bool   `json:"is_main" gorm:"not null;default:false"`
}

// ProductVariant is a purchasable SKU of a product, e.g. {"color": "Red", "storage": "256GB"}
type ProductVariant struct {
	ID         uint                                 `json:"id" gorm:"primarykey"`
	ProductID  uint                                 `json:"product_id" gorm:"index;not null"`
	Product    *Product                             `json:"-"`
	SKU        *string                              `json:"sku" gorm:"type:varchar(100);uniqueIndex"`
	Attributes datatypes.JSONType[map[string]string] `json:"attributes"`
	Price      decimal.Decimal                      `json:"price" gorm:"type:decimal(10,2);not null"`
	OldPrice   decimal.NullDecimal                  `json:"old_price" gorm:"type:decimal(10,2)"`
	IsActive   bool                                 `json:"is_active" gorm:"not null"`
	Stock      uint                                 `json:"stock" gorm:"not null;default:0"`
}

// AttributeMap returns the variant attributes, never nil
func (v *ProductVariant) AttributeMap() map[string]string {
	m := v.Attributes.Data()
	if m == nil {
		return map[string]string{}
	}
	return m
}
