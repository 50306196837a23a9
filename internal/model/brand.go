package model

import "time"

// Brand represents a product manufacturer
type Brand struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex"`
	Logo      string    `json:"logo" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
