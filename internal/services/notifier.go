package services

import (
	"github.com/shopspring/decimal"

	"fintrack/internal/logger"
	"fintrack/internal/models"
)

// warnThreshold is the budget utilisation at which the default notifier
// starts warning. The guard rejects anything past 100%, so alerting is only
// useful below that.
var warnThreshold = decimal.NewFromFloat(0.8)

// logNotifier warns through the application log when spending inside a
// budget period reaches the warning threshold.
type logNotifier struct{}

// NewLogNotifier creates a BudgetNotifier that logs threshold warnings.
func NewLogNotifier() BudgetNotifier {
	return logNotifier{}
}

func (logNotifier) Notify(userID uint, budget models.Budget, spent decimal.Decimal) {
	if budget.AmountLimit.IsZero() {
		return
	}
	utilisation := spent.Div(budget.AmountLimit)
	if utilisation.LessThan(warnThreshold) {
		return
	}

	logger.Get().Warnw("budget utilisation high",
		"user_id", userID,
		"budget_id", budget.ID,
		"budget", budgetLabel(budget),
		"limit", budget.AmountLimit.StringFixed(2),
		"spent", spent.StringFixed(2),
		"utilisation_pct", utilisation.Mul(decimal.NewFromInt(100)).StringFixed(0),
	)
}
