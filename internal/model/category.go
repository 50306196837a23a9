package model

import "time"

// Category is a node of the catalog category forest
type Category struct {
	ID          uint        `json:"id" gorm:"primarykey"`
	Name        string      `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug        string      `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex"`
	ParentID    *uint       `json:"parent" gorm:"index"`
	Parent      *Category   `json:"-" gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE"`
	Description string      `json:"description" gorm:"type:text"`
	Image       string      `json:"image" gorm:"type:varchar(255)"`
	Attributes  []Attribute `json:"attributes,omitempty" gorm:"many2many:category_attributes;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}
