package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Username         string        `gorm:"uniqueIndex;not null" json:"username"`
	Password         string        `gorm:"not null" json:"-"`
	Email            string        `json:"email"`
	IsActive         bool          `gorm:"default:true" json:"is_active"`
	RefreshTokenHash string        `gorm:"size:64" json:"-"`
	LastLoginAt      *time.Time    `json:"last_login_at,omitempty"`
	Categories       []Category    `gorm:"foreignKey:UserID" json:"categories,omitempty"`
	Transactions     []Transaction `gorm:"foreignKey:UserID" json:"transactions,omitempty"`
	Budgets          []Budget      `gorm:"foreignKey:UserID" json:"budgets,omitempty"`
}
