package store

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
)

// ListBrands returns all brands ordered by name
func (s *Store) ListBrands(ctx context.Context) ([]model.Brand, error) {
	brands := []model.Brand{}
	if err := s.conn(ctx).Order("name ASC, id ASC").Find(&brands).Error; err != nil {
		return nil, apperr.Internal("failed to list brands", err)
	}
	return brands, nil
}

func (s *Store) GetBrand(ctx context.Context, id uint) (*model.Brand, error) {
	var brand model.Brand
	if err := s.conn(ctx).First(&brand, id).Error; err != nil {
		return nil, lookupErr(err, "brand", fmt.Sprint(id))
	}
	return &brand, nil
}

func (s *Store) GetBrandBySlug(ctx context.Context, slug string) (*model.Brand, error) {
	var brand model.Brand
	if err := s.conn(ctx).Where("slug = ?", slug).First(&brand).Error; err != nil {
		return nil, lookupErr(err, "brand", fmt.Sprintf("%q", slug))
	}
	return &brand, nil
}

func (s *Store) CreateBrand(ctx context.Context, b *model.Brand) error {
	if err := s.checkBrandUnique(ctx, b); err != nil {
		return err
	}
	if err := s.conn(ctx).Create(b).Error; err != nil {
		return writeErr(err, "brand")
	}
	return nil
}

func (s *Store) UpdateBrand(ctx context.Context, b *model.Brand) error {
	if err := s.checkBrandUnique(ctx, b); err != nil {
		return err
	}
	if err := s.conn(ctx).Save(b).Error; err != nil {
		return writeErr(err, "brand")
	}
	return nil
}

// DeleteBrand removes a brand; its products stay in the catalog without a brand
func (s *Store) DeleteBrand(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.GetBrand(ctx, id); err != nil {
			return err
		}
		if err := tx.conn(ctx).Model(&model.Product{}).Where("brand_id = ?", id).Update("brand_id", nil).Error; err != nil {
			return apperr.Internal("failed to detach brand products", err)
		}
		if err := tx.conn(ctx).Delete(&model.Brand{}, id).Error; err != nil {
			return apperr.Internal("failed to delete brand", err)
		}
		return nil
	})
}

func (s *Store) checkBrandUnique(ctx context.Context, b *model.Brand) error {
	taken, err := s.exists(ctx, &model.Brand{}, "slug = ? AND id <> ?", b.Slug, b.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("brand with slug %q already exists", b.Slug)
	}
	taken, err = s.exists(ctx, &model.Brand{}, "name = ? AND id <> ?", b.Name, b.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("brand with name %q already exists", b.Name)
	}
	return nil
}
