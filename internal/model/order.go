package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is created once per checkout and never mutated afterwards
type Order struct {
	ID           uint        `json:"id" gorm:"primarykey"`
	UserID       *uint       `json:"user" gorm:"index"`
	User         *User       `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ContactPhone string      `json:"contact_phone" gorm:"type:varchar(20);not null"`
	ContactName  string      `json:"contact_name" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time   `json:"created_at"`
	Items        []OrderItem `json:"items" gorm:"constraint:OnDelete:CASCADE"`
}

// OrderItem is an order line; PriceAtTime is the variant price captured when the order was placed
type OrderItem struct {
	ID          uint            `json:"id" gorm:"primarykey"`
	OrderID     uint            `json:"-" gorm:"index;not null"`
	VariantID   uint            `json:"variant" gorm:"index;not null"`
	Variant     *ProductVariant `json:"-" gorm:"constraint:OnDelete:RESTRICT"`
	Quantity    uint            `json:"quantity" gorm:"not null;default:1"`
	PriceAtTime decimal.Decimal `json:"price_at_time" gorm:"type:decimal(10,2);not null"`
}

// Total is the line total at the snapshotted price
func (i OrderItem) Total() decimal.Decimal {
	return i.PriceAtTime.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total sums all order lines
func (o *Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.Total())
	}
	return total
}
