package store

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
)

// ListImages returns a product's images in display order
func (s *Store) ListImages(ctx context.Context, productID uint) ([]model.ProductImage, error) {
	images := []model.ProductImage{}
	if err := s.conn(ctx).Scopes(orderImages).Where("product_id = ?", productID).Find(&images).Error; err != nil {
		return nil, apperr.Internal("failed to list images", err)
	}
	return images, nil
}

func (s *Store) GetImage(ctx context.Context, id uint) (*model.ProductImage, error) {
	var image model.ProductImage
	if err := s.conn(ctx).First(&image, id).Error; err != nil {
		return nil, lookupErr(err, "image", fmt.Sprint(id))
	}
	return &image, nil
}

// AddImage attaches an image to a product. An image added as main goes through SetMainImage
// so the product keeps a single main image.
func (s *Store) AddImage(ctx context.Context, img *model.ProductImage) error {
	return s.Transaction(ctx, func(tx *Store) error {
		main := img.IsMain
		img.IsMain = false
		if err := tx.conn(ctx).Create(img).Error; err != nil {
			return writeErr(err, "image")
		}
		if main {
			if err := tx.setMain(ctx, img.ProductID, img.ID); err != nil {
				return err
			}
			img.IsMain = true
		}
		return nil
	})
}

func (s *Store) DeleteImage(ctx context.Context, id uint) error {
	result := s.conn(ctx).Delete(&model.ProductImage{}, id)
	if result.Error != nil {
		return apperr.Internal("failed to delete image", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("image %d not found", id)
	}
	return nil
}

// SetMainImage marks an image as its product's main image and clears the flag on every sibling
func (s *Store) SetMainImage(ctx context.Context, imageID uint) (*model.ProductImage, error) {
	var image *model.ProductImage
	err := s.Transaction(ctx, func(tx *Store) error {
		img, err := tx.GetImage(ctx, imageID)
		if err != nil {
			return err
		}
		if err := tx.setMain(ctx, img.ProductID, img.ID); err != nil {
			return err
		}
		img.IsMain = true
		image = img
		return nil
	})
	if err != nil {
		return nil, err
	}
	return image, nil
}

func (s *Store) setMain(ctx context.Context, productID, imageID uint) error {
	err := s.conn(ctx).Model(&model.ProductImage{}).
		Where("product_id = ? AND id <> ?", productID, imageID).
		Update("is_main", false).Error
	if err != nil {
		return apperr.Internal("failed to reset main image", err)
	}
	err = s.conn(ctx).Model(&model.ProductImage{}).
		Where("id = ?", imageID).
		Update("is_main", true).Error
	if err != nil {
		return apperr.Internal("failed to set main image", err)
	}
	return nil
}
