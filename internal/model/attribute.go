package model

import "gorm.io/datatypes"

// AttributeType describes how variant values of an attribute are interpreted
type AttributeType string

const (
	AttributeString AttributeType = "string"
	AttributeNumber AttributeType = "number"
	AttributeEnum   AttributeType = "enum"
)

// Valid reports whether t is one of the known attribute types
func (t AttributeType) Valid() bool {
	switch t {
	case AttributeString, AttributeNumber, AttributeEnum:
		return true
	}
	return false
}

// Attribute is a variant characteristic a category can declare, e.g. color or storage
type Attribute struct {
	ID     uint                       `json:"id" gorm:"primarykey"`
	Name   string                     `json:"name" gorm:"type:varchar(100);not null;uniqueIndex"`
	Slug   string                     `json:"slug" gorm:"type:varchar(100);not null;uniqueIndex"`
	Type   AttributeType              `json:"type" gorm:"type:varchar(20);not null;default:'string'"`
	Values datatypes.JSONSlice[string] `json:"values"`
}

// Allows reports whether value is one of the declared enum values
func (a *Attribute) Allows(value string) bool {
	for _, v := range a.Values {
		if v == value {
			return true
		}
	}
	return false
}
