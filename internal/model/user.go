package model

import "time"

// User represents the user model stored in the database
type User struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	Username   string     `json:"username" gorm:"type:varchar(150);not null;uniqueIndex"`
	Email      string     `json:"email" gorm:"type:varchar(254);uniqueIndex"`
	Password   string     `json:"-" gorm:"type:varchar(255);not null"`
	FirstName  string     `json:"first_name" gorm:"type:varchar(150)"`
	LastName   string     `json:"last_name" gorm:"type:varchar(150)"`
	Phone      string     `json:"phone" gorm:"type:varchar(20)"`
	Address    string     `json:"address" gorm:"type:text"`
	IsVendor   bool       `json:"is_vendor" gorm:"not null;default:false"`
	IsStaff    bool       `json:"is_staff" gorm:"not null;default:false"`
	IsActive   bool       `json:"is_active" gorm:"not null"`
	DateJoined time.Time  `json:"date_joined" gorm:"autoCreateTime"`
	LastLogin  *time.Time `json:"last_login"`
	UpdatedAt  time.Time  `json:"-"`
}

// BlacklistedToken records a revoked refresh token by its jti
type BlacklistedToken struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	JTI       string    `json:"jti" gorm:"column:jti;type:varchar(64);not null;uniqueIndex"`
	UserID    uint      `json:"user_id" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every persisted model in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&BlacklistedToken{},
		&Attribute{},
		&Category{},
		&Brand{},
		&Product{},
		&ProductImage{},
		&ProductVariant{},
		&Order{},
		&OrderItem{},
	}
}
