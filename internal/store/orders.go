package store

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func orderItems(db *gorm.DB) *gorm.DB {
	return db.Order("order_items.id ASC")
}

// InsertOrder writes an order and its items; callers run it inside a transaction
func (s *Store) InsertOrder(ctx context.Context, order *model.Order) error {
	items := order.Items
	order.Items = nil
	if err := s.conn(ctx).Omit(clause.Associations).Create(order).Error; err != nil {
		return writeErr(err, "order")
	}
	for i := range items {
		items[i].OrderID = order.ID
		if err := s.conn(ctx).Omit(clause.Associations).Create(&items[i]).Error; err != nil {
			return writeErr(err, "order item")
		}
	}
	order.Items = items
	return nil
}

// ListOrdersByUser returns a user's orders, newest first, with their items
func (s *Store) ListOrdersByUser(ctx context.Context, userID uint) ([]model.Order, error) {
	orders := []model.Order{}
	err := s.conn(ctx).
		Preload("Items", orderItems).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&orders).Error
	if err != nil {
		return nil, apperr.Internal("failed to list orders", err)
	}
	return orders, nil
}

// GetOrder loads an order with its items
func (s *Store) GetOrder(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := s.conn(ctx).Preload("Items", orderItems).First(&order, id).Error; err != nil {
		return nil, lookupErr(err, "order", fmt.Sprint(id))
	}
	return &order, nil
}
