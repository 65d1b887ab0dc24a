package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Budget caps expense spending for one user over a date range. A nil
// CategoryID makes it a general budget constraining all expenses in the
// period; otherwise only the referenced category's expenses count.
type Budget struct {
	Base
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	CategoryID  *uint           `gorm:"index" json:"category_id,omitempty"`
	AmountLimit decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount_limit"`
	StartDate   time.Time       `gorm:"not null" json:"start_date"`
	EndDate     time.Time       `gorm:"not null" json:"end_date"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// IsGeneral reports whether the budget applies across all categories.
func (b *Budget) IsGeneral() bool {
	return b.CategoryID == nil
}

// Contains reports whether the given date falls inside the budget period,
// boundaries included.
func (b *Budget) Contains(date time.Time) bool {
	return !date.Before(b.StartDate) && !date.After(b.EndDate)
}
