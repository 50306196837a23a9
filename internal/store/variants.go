package store

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/availability"
	"storefront-service/internal/model"

	"gorm.io/gorm/clause"
)

// ListVisibleVariants returns the active variants of visible products
func (s *Store) ListVisibleVariants(ctx context.Context) ([]model.ProductVariant, error) {
	variants := []model.ProductVariant{}
	err := s.conn(ctx).
		Scopes(availability.VisibleVariants).
		Order("product_variants.id ASC").
		Find(&variants).Error
	if err != nil {
		return nil, apperr.Internal("failed to list variants", err)
	}
	return variants, nil
}

// GetVisibleVariantBySKU loads a variant customers may see
func (s *Store) GetVisibleVariantBySKU(ctx context.Context, sku string) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	err := s.conn(ctx).
		Scopes(availability.VisibleVariants).
		Where("product_variants.sku = ?", sku).
		First(&variant).Error
	if err != nil {
		return nil, lookupErr(err, "variant", fmt.Sprintf("%q", sku))
	}
	return &variant, nil
}

// GetVariant loads a variant with its product regardless of visibility
func (s *Store) GetVariant(ctx context.Context, id uint) (*model.ProductVariant, error) {
	var variant model.ProductVariant
	if err := s.conn(ctx).Preload("Product").First(&variant, id).Error; err != nil {
		return nil, lookupErr(err, "variant", fmt.Sprint(id))
	}
	return &variant, nil
}

// LockVariant loads a variant with its product and holds a share lock on the variant row
// until the surrounding transaction ends. Exactly one of id or sku must be set.
func (s *Store) LockVariant(ctx context.Context, id uint, sku string) (*model.ProductVariant, error) {
	query := s.conn(ctx).Clauses(clause.Locking{Strength: "SHARE"}).Preload("Product")
	key := fmt.Sprint(id)
	if sku != "" {
		query = query.Where("sku = ?", sku)
		key = fmt.Sprintf("%q", sku)
	} else {
		query = query.Where("id = ?", id)
	}

	var variant model.ProductVariant
	if err := query.First(&variant).Error; err != nil {
		return nil, lookupErr(err, "variant", key)
	}
	return &variant, nil
}

// CreateVariant inserts a variant for an existing product
func (s *Store) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	if err := s.checkVariantSKU(ctx, v); err != nil {
		return err
	}
	if err := s.conn(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return writeErr(err, "variant")
	}
	return nil
}

func (s *Store) UpdateVariant(ctx context.Context, v *model.ProductVariant) error {
	if err := s.checkVariantSKU(ctx, v); err != nil {
		return err
	}
	if err := s.conn(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return writeErr(err, "variant")
	}
	return nil
}

// DeleteVariant removes a variant unless an order line still references it
func (s *Store) DeleteVariant(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.GetVariant(ctx, id); err != nil {
			return err
		}
		var referenced int64
		if err := tx.conn(ctx).Model(&model.OrderItem{}).Where("variant_id = ?", id).Count(&referenced).Error; err != nil {
			return apperr.Internal("failed to check variant references", err)
		}
		if referenced > 0 {
			return apperr.Referenced("variant %d is referenced by %d order line(s)", id, referenced)
		}
		if err := tx.conn(ctx).Delete(&model.ProductVariant{}, id).Error; err != nil {
			return apperr.Internal("failed to delete variant", err)
		}
		return nil
	})
}

func (s *Store) checkVariantSKU(ctx context.Context, v *model.ProductVariant) error {
	if v.SKU == nil {
		return nil
	}
	taken, err := s.exists(ctx, &model.ProductVariant{}, "sku = ? AND id <> ?", *v.SKU, v.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("variant with sku %q already exists", *v.SKU)
	}
	return nil
}
