package store

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// categoryOrder is the canonical category ordering used by every listing
const categoryOrder = "categories.name ASC, categories.id ASC"

// ListCategories returns every category in canonical order
func (s *Store) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	if err := s.conn(ctx).Order(categoryOrder).Find(&categories).Error; err != nil {
		return nil, apperr.Internal("failed to list categories", err)
	}
	return categories, nil
}

// CategoryTree loads all categories into a tree
func (s *Store) CategoryTree(ctx context.Context) (*CategoryTree, error) {
	categories, err := s.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	return BuildCategoryTree(categories), nil
}

// GetCategory loads a category with its declared attributes
func (s *Store) GetCategory(ctx context.Context, id uint) (*model.Category, error) {
	var category model.Category
	err := s.conn(ctx).Preload("Attributes", orderAttributes).First(&category, id).Error
	if err != nil {
		return nil, lookupErr(err, "category", fmt.Sprint(id))
	}
	return &category, nil
}

// GetCategoryBySlug loads a category by slug with its declared attributes
func (s *Store) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var category model.Category
	err := s.conn(ctx).Preload("Attributes", orderAttributes).Where("slug = ?", slug).First(&category).Error
	if err != nil {
		return nil, lookupErr(err, "category", fmt.Sprintf("%q", slug))
	}
	return &category, nil
}

// CreateCategory inserts a category after checking uniqueness and the parent reference
func (s *Store) CreateCategory(ctx context.Context, c *model.Category) error {
	if err := s.checkCategoryUnique(ctx, c); err != nil {
		return err
	}
	if c.ParentID != nil {
		if _, err := s.GetCategory(ctx, *c.ParentID); err != nil {
			return asFieldError(err, "parent")
		}
	}
	if err := s.conn(ctx).Omit(clause.Associations).Create(c).Error; err != nil {
		return writeErr(err, "category")
	}
	return nil
}

// UpdateCategory saves a category, rejecting parent assignments that would form a loop
func (s *Store) UpdateCategory(ctx context.Context, c *model.Category) error {
	if err := s.checkCategoryUnique(ctx, c); err != nil {
		return err
	}
	if c.ParentID != nil {
		tree, err := s.CategoryTree(ctx)
		if err != nil {
			return err
		}
		if !tree.Contains(*c.ParentID) {
			return apperr.InvalidField("parent", fmt.Sprintf("category %d does not exist", *c.ParentID))
		}
		if tree.WouldCycle(c.ID, *c.ParentID) {
			return apperr.InvalidField("parent", "a category cannot be its own ancestor")
		}
	}
	if err := s.conn(ctx).Omit(clause.Associations).Save(c).Error; err != nil {
		return writeErr(err, "category")
	}
	return nil
}

// DeleteCategory removes a category together with its descendants. It fails while any
// category of the subtree is still referenced by a product.
func (s *Store) DeleteCategory(ctx context.Context, id uint) error {
	return s.Transaction(ctx, func(tx *Store) error {
		tree, err := tx.CategoryTree(ctx)
		if err != nil {
			return err
		}
		ids := tree.Subtree(id)
		if len(ids) == 0 {
			return apperr.NotFound("category %d not found", id)
		}

		var referenced int64
		if err := tx.conn(ctx).Model(&model.Product{}).Where("category_id IN ?", ids).Count(&referenced).Error; err != nil {
			return apperr.Internal("failed to check category references", err)
		}
		if referenced > 0 {
			return apperr.Referenced("category %d is referenced by %d product(s)", id, referenced)
		}

		if err := tx.conn(ctx).Exec("DELETE FROM category_attributes WHERE category_id IN ?", ids).Error; err != nil {
			return apperr.Internal("failed to delete category attributes", err)
		}
		if err := tx.conn(ctx).Where("id IN ?", ids).Delete(&model.Category{}).Error; err != nil {
			return apperr.Internal("failed to delete category", err)
		}
		return nil
	})
}

// SetCategoryAttributes replaces the attributes a category declares
func (s *Store) SetCategoryAttributes(ctx context.Context, id uint, attributeIDs []uint) (*model.Category, error) {
	err := s.Transaction(ctx, func(tx *Store) error {
		category, err := tx.GetCategory(ctx, id)
		if err != nil {
			return err
		}

		attributes := []model.Attribute{}
		if len(attributeIDs) > 0 {
			if err := tx.conn(ctx).Where("id IN ?", attributeIDs).Find(&attributes).Error; err != nil {
				return apperr.Internal("failed to load attributes", err)
			}
			if len(attributes) != len(unique(attributeIDs)) {
				return apperr.InvalidField("attributes", "unknown attribute id")
			}
		}

		if err := tx.conn(ctx).Model(category).Association("Attributes").Replace(attributes); err != nil {
			return apperr.Internal("failed to replace category attributes", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

func (s *Store) checkCategoryUnique(ctx context.Context, c *model.Category) error {
	taken, err := s.exists(ctx, &model.Category{}, "slug = ? AND id <> ?", c.Slug, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("category with slug %q already exists", c.Slug)
	}
	taken, err = s.exists(ctx, &model.Category{}, "name = ? AND id <> ?", c.Name, c.ID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.Conflict("category with name %q already exists", c.Name)
	}
	return nil
}

func orderAttributes(db *gorm.DB) *gorm.DB {
	return db.Order("attributes.name ASC, attributes.id ASC")
}

// asFieldError turns a NotFound on a referenced entity into a validation error on field
func asFieldError(err error, field string) error {
	if apperr.Is(err, apperr.KindNotFound) {
		return apperr.InvalidField(field, apperr.From(err).Message)
	}
	return err
}

func unique(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
