package services

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// budgetGuard decides whether a proposed expense may be written without
// pushing spending past an applicable budget limit. It is evaluated inside
// the same database transaction as the write so the sum it bases the
// decision on cannot drift before the insert/update commits.
type budgetGuard struct{}

// candidateBudgets returns every budget of the user whose period contains
// the transaction date and whose category either matches the transaction's
// category or is NULL (general). On postgres the rows are locked FOR UPDATE
// so two concurrent guard evaluations against the same budget serialize;
// sqlite allows a single writer anyway and rejects the locking syntax.
func (budgetGuard) candidateBudgets(tx *gorm.DB, userID uint, date time.Time, categoryID *uint) ([]models.Budget, error) {
	q := tx.Preload("Category").
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, date, date)
	if categoryID != nil {
		q = q.Where("category_id = ? OR category_id IS NULL", *categoryID)
	} else {
		q = q.Where("category_id IS NULL")
	}
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var budgets []models.Budget
	if err := q.Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return budgets, nil
}

// spentInPeriod sums the magnitudes of expenses already recorded inside the
// budget's period. A general budget counts every expense of the user in the
// period; a category budget only its own category. excludeID removes the
// transaction being updated so its old value does not double-count.
func (budgetGuard) spentInPeriod(tx *gorm.DB, userID uint, budget models.Budget, excludeID uint) (decimal.Decimal, error) {
	q := tx.Model(&models.Transaction{}).
		Where("user_id = ? AND value < 0 AND date >= ? AND date <= ?", userID, budget.StartDate, budget.EndDate)
	if budget.CategoryID != nil {
		q = q.Where("category_id = ?", *budget.CategoryID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var row struct {
		Total decimal.Decimal
	}
	if err := q.Select("COALESCE(SUM(value), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Total.Abs(), nil
}

// check evaluates every candidate budget independently and fails with a
// budget-exceeded error as soon as one would be overrun by adding the
// expense (a positive magnitude). No candidates means nothing to violate.
func (g budgetGuard) check(tx *gorm.DB, userID uint, date time.Time, categoryID *uint, expense decimal.Decimal, excludeID uint) error {
	budgets, err := g.candidateBudgets(tx, userID, date, categoryID)
	if err != nil {
		return err
	}

	for _, budget := range budgets {
		spent, err := g.spentInPeriod(tx, userID, budget, excludeID)
		if err != nil {
			return err
		}
		if spent.Add(expense).GreaterThan(budget.AmountLimit) {
			return apperrors.WithMessage(apperrors.ErrBudgetExceeded, fmt.Sprintf(
				"This transaction exceeds the budget of %s for '%s' (%s to %s); current spending is %s",
				budget.AmountLimit.StringFixed(2),
				budgetLabel(budget),
				budget.StartDate.Format("2006-01-02"),
				budget.EndDate.Format("2006-01-02"),
				spent.StringFixed(2),
			))
		}
	}
	return nil
}

// budgetLabel names a budget by its category, or "General" for budgets
// without one.
func budgetLabel(budget models.Budget) string {
	if budget.Category != nil && budget.Category.Name != "" {
		return budget.Category.Name
	}
	if budget.CategoryID != nil {
		return fmt.Sprintf("category %d", *budget.CategoryID)
	}
	return "General"
}
