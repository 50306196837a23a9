package service

import (
	"context"
	"fmt"

	"storefront-service/internal/apperr"
	"storefront-service/internal/availability"
	"storefront-service/internal/model"
	"storefront-service/internal/store"
	"storefront-service/internal/validation"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// OrderLine names one variant, by id or by sku, and the quantity ordered
type OrderLine struct {
	VariantID uint   `json:"variant_id"`
	SKU       string `json:"sku" validate:"max=100"`
	Quantity  uint   `json:"quantity" validate:"required,gte=1"`
}

// OrderInput is the checkout request body
type OrderInput struct {
	ContactName  string      `json:"contact_name" validate:"required,max=255"`
	ContactPhone string      `json:"contact_phone" validate:"required,max=20"`
	Items        []OrderLine `json:"items" validate:"required,min=1,dive"`
}

type OrderService struct {
	store   *store.Store
	metrics *prometheus.Metrics
}

func NewOrderService(s *store.Store, m *prometheus.Metrics) *OrderService {
	return &OrderService{store: s, metrics: m}
}

// CreateOrder places an order for the caller. Every line's price is read inside the
// transaction and stored on the line; any invalid line aborts the whole order.
func (s *OrderService) CreateOrder(ctx context.Context, who Identity, in OrderInput) (_ *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "OrderService.CreateOrder")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(attribute.Int("order.lines", len(in.Items)))

	defer func() {
		if err != nil {
			s.metrics.RecordOrderFailure(string(apperr.KindOf(err)))
			logger.Ctx(ctx).Warn("Order rejected",
				zap.Uint("user_id", who.UserID),
				zap.String("kind", string(apperr.KindOf(err))),
				zap.Error(err))
		}
	}()

	if err := validateOrder(&in); err != nil {
		return nil, err
	}

	userID := who.UserID
	order := &model.Order{
		UserID:       &userID,
		ContactName:  in.ContactName,
		ContactPhone: in.ContactPhone,
		Items:        make([]model.OrderItem, 0, len(in.Items)),
	}

	err = s.store.Transaction(ctx, func(tx *store.Store) error {
		for i, line := range in.Items {
			variant, err := tx.LockVariant(ctx, line.VariantID, line.SKU)
			if apperr.Is(err, apperr.KindNotFound) {
				return lineError(i, "variant does not exist")
			}
			if err != nil {
				return err
			}
			if !availability.VariantVisible(variant, variant.Product) {
				return lineError(i, "variant is not available")
			}
			order.Items = append(order.Items, model.OrderItem{
				VariantID:   variant.ID,
				Quantity:    line.Quantity,
				PriceAtTime: variant.Price,
			})
		}
		return tx.InsertOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOrderCreated(len(order.Items))
	span.SetAttributes(attribute.Int64("order.id", int64(order.ID)))
	logger.Ctx(ctx).Info("Order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", who.UserID),
		zap.Int("lines", len(order.Items)),
		zap.String("total", order.Total().StringFixed(2)))
	return order, nil
}

// ListOrders returns the caller's orders, newest first
func (s *OrderService) ListOrders(ctx context.Context, who Identity) ([]model.Order, error) {
	return s.store.ListOrdersByUser(ctx, who.UserID)
}

// GetOrder returns one of the caller's orders
func (s *OrderService) GetOrder(ctx context.Context, who Identity, id uint) (*model.Order, error) {
	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID == nil || *order.UserID != who.UserID {
		return nil, apperr.Forbidden("order %d belongs to another user", id)
	}
	return order, nil
}

func validateOrder(in *OrderInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	for i, line := range in.Items {
		hasID, hasSKU := line.VariantID != 0, line.SKU != ""
		if hasID == hasSKU {
			return lineError(i, "exactly one of variant_id or sku is required")
		}
	}
	return nil
}

func lineError(i int, msg string) error {
	return apperr.InvalidField(fmt.Sprintf("items[%d]", i), msg)
}
