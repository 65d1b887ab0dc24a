package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// transactionService handles transaction-related business logic.
type transactionService struct {
	db       *gorm.DB
	guard    budgetGuard
	notifier BudgetNotifier
}

// NewTransactionService creates a new TransactionServicer. The notifier may
// be nil, in which case no post-commit budget notifications are sent.
func NewTransactionService(db *gorm.DB, notifier BudgetNotifier) TransactionServicer {
	return &transactionService{db: db, notifier: notifier}
}

// CreateTransaction records a new transaction. Expenses (value < 0) pass
// through the budget guard before anything is written; incomes and
// zero-value transactions are persisted unconditionally.
func (s *transactionService) CreateTransaction(
	userID uint,
	value decimal.Decimal,
	date time.Time,
	description string,
	categoryID *uint,
	trigger models.EmotionalTrigger,
) (*models.Transaction, error) {
	if date.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "date is required")
	}
	if trigger == "" {
		trigger = models.TriggerBasicNeed
	}

	if err := s.verifyCategoryOwner(userID, categoryID); err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		UserID:           userID,
		Value:            value,
		Date:             date,
		Description:      description,
		CategoryID:       categoryID,
		EmotionalTrigger: trigger,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if transaction.IsExpense() {
			if err := s.guard.check(tx, userID, date, categoryID, value.Abs(), 0); err != nil {
				return err
			}
		}
		if err := tx.Create(transaction).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBudgets(transaction)
	return transaction, nil
}

// GetUserTransactions returns the user's transactions ordered by date
// descending, with optional date-range, category, and emotion filters.
func (s *transactionService) GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).Where("user_id = ?", userID)
	base = applyTransactionFilters(base, filter)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("date DESC").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// GetTransactionByID returns a transaction by ID if it belongs to the user.
func (s *transactionService) GetTransactionByID(userID, transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").
		Where("id = ? AND user_id = ?", transactionID, userID).
		First(&transaction).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// UpdateTransaction applies the given field changes. When the resulting
// transaction is an expense, the budget guard re-evaluates it with the
// stored row excluded from the sums, so lowering an expense can never trip
// a budget the old value satisfied.
func (s *transactionService) UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return nil, err
	}

	if update.Value != nil {
		transaction.Value = *update.Value
	}
	if update.Date != nil {
		transaction.Date = *update.Date
	}
	if update.Description != nil {
		transaction.Description = *update.Description
	}
	if update.ClearCategory {
		transaction.CategoryID = nil
	} else if update.CategoryID != nil {
		transaction.CategoryID = update.CategoryID
	}
	if update.EmotionalTrigger != nil {
		transaction.EmotionalTrigger = *update.EmotionalTrigger
	}

	if err := s.verifyCategoryOwner(userID, transaction.CategoryID); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if transaction.IsExpense() {
			if err := s.guard.check(tx, userID, transaction.Date, transaction.CategoryID, transaction.Value.Abs(), transaction.ID); err != nil {
				return err
			}
		}
		// Save with Select so a cleared category persists as NULL.
		if err := tx.Model(transaction).
			Select("value", "date", "description", "category_id", "emotional_trigger").
			Updates(map[string]any{
				"value":             transaction.Value,
				"date":              transaction.Date,
				"description":       transaction.Description,
				"category_id":       transaction.CategoryID,
				"emotional_trigger": transaction.EmotionalTrigger,
			}).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyBudgets(transaction)
	return transaction, nil
}

// DeleteTransaction soft-deletes a transaction owned by the user.
func (s *transactionService) DeleteTransaction(userID, transactionID uint) error {
	transaction, err := s.GetTransactionByID(userID, transactionID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(transaction).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// verifyCategoryOwner ensures the referenced category belongs to the user.
// A nil category is always valid (uncategorized).
func (s *transactionService) verifyCategoryOwner(userID uint, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := s.db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", *categoryID, userID).
		Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count == 0 {
		return apperrors.ErrCategoryNotFound
	}
	return nil
}

// notifyBudgets reports post-commit budget utilisation for an expense to
// the configured notifier. Failures here only affect alerting, never the
// already-committed write.
func (s *transactionService) notifyBudgets(transaction *models.Transaction) {
	if s.notifier == nil || !transaction.IsExpense() {
		return
	}

	budgets, err := s.guard.candidateBudgets(s.db, transaction.UserID, transaction.Date, transaction.CategoryID)
	if err != nil {
		return
	}
	for _, budget := range budgets {
		spent, err := s.guard.spentInPeriod(s.db, transaction.UserID, budget, 0)
		if err != nil {
			continue
		}
		s.notifier.Notify(transaction.UserID, budget, spent)
	}
}

func applyTransactionFilters(q *gorm.DB, f TransactionFilter) *gorm.DB {
	if f.FromDate != nil {
		q = q.Where("date >= ?", *f.FromDate)
	}
	if f.ToDate != nil {
		q = q.Where("date <= ?", *f.ToDate)
	}
	if f.CategoryID != nil {
		q = q.Where("category_id = ?", *f.CategoryID)
	}
	if f.Emotion != nil {
		q = q.Where("emotional_trigger = ?", *f.Emotion)
	}
	return q
}
