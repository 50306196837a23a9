package store

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"
)

func (s *Store) ListAttributes(ctx context.Context) ([]model.Attribute, error) {
	attributes := []model.Attribute{}
	if err := s.conn(ctx).Scopes(orderAttributes).Find(&attributes).Error; err != nil {
		return nil, apperr.Internal("failed to list attributes", err)
	}
	return attributes, nil
}

func (s *Store) GetAttribute(ctx context.Context, id uint) (*model.Attribute, error) {
	var attribute model.Attribute
	if err := s.conn(ctx).First(&attribute, id).Error; err != nil {
		return nil, lookupErr(err, "attribute", fmt.Sprint(id))
	}
	return &attribute, nil
}

func (s *Store) GetAttributeBySlug(ctx context.Context, slug string) (*model.Attribute, error) {
	var attribute model.Attribute
	if err := s.conn(ctx).Where("slug = ?", slug).First(&attribute).Error; err != nil {
		return nil, lookupErr(err, "attribute", fmt.Sprintf("%q", slug))
	}
	return &attribute, nil
}

func (s *Store) CreateAttribute(ctx context.Context, a *model.Attribute) error {
	if err := s.checkAttributeUnique(ctx, a); err != nil {
		return err
	}
	if err := s.conn(ctx).Create(a).Error; err != nil {
		return writeErr(err, "attribute")
	}
	return nil
}

func (s *Store) UpdateAttribute(ctx context.Context, a *model.Attribute) error {
	if err := s.checkAttributeUnique(ctx, a); err != nil {
		return err
	}
	if err := s.conn(ctx).Save(a).Error; err != nil {
		return writeErr(err, "attribute")
	}
	return nil
}

// DeleteAttribute removes an attribute and detaches it from every category
func (s *Store) DeleteAttribute(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		if _, err := tx.GetAttribute(ctx, id); err != nil {
			return err
		}
		if err := tx.conn(ctx).Exec("DELETE FROM category_attributes WHERE attribute_id = ?", id).Error; err != nil {
			return apperr.Internal("failed to detach attribute", err)
		}
		if err := tx.conn(ctx).Delete(&model.Attribute{}, id).Error; err != nil {
			return apperr.Internal("failed to delete attribute", err)
		}
		return nil
	})
}

func (s *Store) checkAttributeUnique(ctx context.Context, a *model.Attribute) error {
	taken, err := s.exists(ctx, &model.Attribute{}, "slug = ? AND id <> ?", a.Slug, a.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("attribute with slug %q already exists", a.Slug)
	}
	taken, err = s.exists(ctx, &model.Attribute{}, "name = ? AND id <> ?", a.Name, a.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("attribute with name %q already exists", a.Name)
	}
	return nil
}
