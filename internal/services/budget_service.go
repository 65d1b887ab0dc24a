package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// budgetService handles budget-related business logic.
type budgetService struct {
	db    *gorm.DB
	guard budgetGuard
}

// NewBudgetService creates a new BudgetServicer.
func NewBudgetService(db *gorm.DB) BudgetServicer {
	return &budgetService{db: db}
}

// CreateBudget creates a new budget for a category, or a general budget when
// categoryID is nil. Budgets of the same user and category must not have
// overlapping periods, so "the applicable budget" stays well-defined.
func (s *budgetService) CreateBudget(
	userID uint,
	categoryID *uint,
	amountLimit decimal.Decimal,
	startDate, endDate time.Time,
) (*models.Budget, error) {
	if !amountLimit.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount_limit must be greater than zero")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date and end_date are required")
	}
	startDate, endDate = periodStart(startDate), periodEnd(endDate)
	if endDate.Before(startDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must not be after end_date")
	}

	if categoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *categoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	budget := &models.Budget{
		UserID:      userID,
		CategoryID:  categoryID,
		AmountLimit: amountLimit,
		StartDate:   startDate,
		EndDate:     endDate,
	}

	// Overlap check and insert share one transaction so two concurrent
	// creates cannot both pass the check.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := rejectOverlap(tx, userID, categoryID, startDate, endDate, 0); err != nil {
			return err
		}
		if err := tx.Create(budget).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// GetUserBudgets returns a paginated list of the user's budgets ordered by
// period start.
func (s *budgetService) GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error) {
	page.Defaults()

	base := s.db.Model(&models.Budget{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var budgets []models.Budget
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("start_date").
		Find(&budgets).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(budgets, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetBudgetByID returns a budget by ID if it belongs to the user.
func (s *budgetService) GetBudgetByID(userID, budgetID uint) (*models.Budget, error) {
	var budget models.Budget
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", budgetID, userID).
		First(&budget).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrBudgetNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &budget, nil
}

// UpdateBudget applies the given field changes, re-checking the overlap
// invariant against every other budget of the user.
func (s *budgetService) UpdateBudget(userID, budgetID uint, update BudgetUpdate) (*models.Budget, error) {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return nil, err
	}

	if update.ClearCategory {
		budget.CategoryID = nil
		budget.Category = nil
	} else if update.CategoryID != nil {
		var category models.Category
		if err := s.db.Where("id = ? AND user_id = ?", *update.CategoryID, userID).First(&category).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrCategoryNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		budget.CategoryID = update.CategoryID
		budget.Category = &category
	}
	if update.AmountLimit != nil {
		if !update.AmountLimit.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount_limit must be greater than zero")
		}
		budget.AmountLimit = *update.AmountLimit
	}
	if update.StartDate != nil {
		budget.StartDate = periodStart(*update.StartDate)
	}
	if update.EndDate != nil {
		budget.EndDate = periodEnd(*update.EndDate)
	}
	if budget.EndDate.Before(budget.StartDate) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "start_date must not be after end_date")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := rejectOverlap(tx, userID, budget.CategoryID, budget.StartDate, budget.EndDate, budget.ID); err != nil {
			return err
		}
		if err := tx.Model(budget).
			Select("category_id", "amount_limit", "start_date", "end_date").
			Updates(map[string]any{
				"category_id":  budget.CategoryID,
				"amount_limit": budget.AmountLimit,
				"start_date":   budget.StartDate,
				"end_date":     budget.EndDate,
			}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return budget, nil
}

// DeleteBudget soft-deletes a budget.
func (s *budgetService) DeleteBudget(userID, budgetID uint) error {
	budget, err := s.GetBudgetByID(userID, budgetID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(budget).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// CheckBudget is the ad-hoc pre-check: would spending `amount` in the given
// category today exceed the category's budget covering today? Nothing is
// persisted. Absence of a budget means nothing can be exceeded.
func (s *budgetService) CheckBudget(userID, categoryID uint, amount decimal.Decimal) (*BudgetCheck, error) {
	if amount.IsNegative() {
		amount = amount.Abs()
	}

	today := time.Now()
	var budget models.Budget
	err := s.db.Preload("Category").
		Where("user_id = ? AND category_id = ? AND start_date <= ? AND end_date >= ?", userID, categoryID, today, today).
		First(&budget).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &BudgetCheck{
				Exceeded: false,
				Message:  "No budget defined for this category",
			}, nil
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	spent, err := s.guard.spentInPeriod(s.db, userID, budget, 0)
	if err != nil {
		return nil, err
	}

	check := &BudgetCheck{
		Limit: budget.AmountLimit,
		Spent: spent,
	}
	if spent.Add(amount).GreaterThan(budget.AmountLimit) {
		check.Exceeded = true
		check.Message = fmt.Sprintf(
			"Adding %s would exceed the budget of %s for '%s'; current spending is %s",
			amount.StringFixed(2),
			budget.AmountLimit.StringFixed(2),
			budgetLabel(budget),
			spent.StringFixed(2),
		)
	}
	return check, nil
}

// periodStart truncates a period boundary to the first instant of its day.
func periodStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// periodEnd extends a period boundary to the last instant of its day, so a
// timestamped expense on the final day still falls inside the period.
func periodEnd(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// rejectOverlap enforces the catalog invariant: for one user, two budgets
// with the same category (including two general budgets) must not have
// overlapping periods. excludeID skips the budget being updated. It runs on
// the caller's transaction so check and write are atomic.
func rejectOverlap(tx *gorm.DB, userID uint, categoryID *uint, startDate, endDate time.Time, excludeID uint) error {
	q := tx.Model(&models.Budget{}).
		Where("user_id = ? AND start_date <= ? AND end_date >= ?", userID, endDate, startDate)
	if categoryID != nil {
		q = q.Where("category_id = ?", *categoryID)
	} else {
		q = q.Where("category_id IS NULL")
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var count int64
	if err := q.Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrDuplicateBudget
	}
	return nil
}
