package models

// Category represents a user-defined transaction category.
// Names are free-form; uniqueness per user is deliberately not enforced.
type Category struct {
	Base
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Name   string `gorm:"not null" json:"name"`
}
