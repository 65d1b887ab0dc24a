package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// EmotionalTrigger classifies the psychological motive behind a purchase.
type EmotionalTrigger string

const (
	TriggerBasicNeed    EmotionalTrigger = "Basic Need"
	TriggerPlanningGoal EmotionalTrigger = "Planning/Goal"
	TriggerPleasure     EmotionalTrigger = "Pleasure/Entertainment"
	TriggerImpulse      EmotionalTrigger = "Emotional Impulse"
	TriggerSocialStatus EmotionalTrigger = "Social Pressure/Status"
	TriggerComfort      EmotionalTrigger = "Comfort/Compulsion"
	TriggerCuriosity    EmotionalTrigger = "Curiosity/Exploration"
)

// EmotionalTriggers lists every valid trigger value.
func EmotionalTriggers() []EmotionalTrigger {
	return []EmotionalTrigger{
		TriggerBasicNeed,
		TriggerPlanningGoal,
		TriggerPleasure,
		TriggerImpulse,
		TriggerSocialStatus,
		TriggerComfort,
		TriggerCuriosity,
	}
}

// Valid reports whether the trigger is one of the known values.
func (e EmotionalTrigger) Valid() bool {
	for _, t := range EmotionalTriggers() {
		if e == t {
			return true
		}
	}
	return false
}

// IsNeed reports whether the trigger counts as a need rather than a want.
func (e EmotionalTrigger) IsNeed() bool {
	return e == TriggerBasicNeed || e == TriggerPlanningGoal
}

// Transaction represents a single ledger entry. A negative value is an
// expense, a non-negative value is an income.
type Transaction struct {
	Base
	UserID           uint             `gorm:"not null;index" json:"user_id"`
	Value            decimal.Decimal  `gorm:"type:decimal(20,8);not null" json:"value"`
	Date             time.Time        `gorm:"not null;index" json:"date"`
	Description      string           `json:"description"`
	CategoryID       *uint            `gorm:"index" json:"category_id,omitempty"`
	EmotionalTrigger EmotionalTrigger `gorm:"size:30;not null;default:Basic Need" json:"emotional_trigger"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// IsExpense reports whether the transaction is an expense. Zero-value
// transactions are not expenses.
func (t *Transaction) IsExpense() bool {
	return t.Value.IsNegative()
}
