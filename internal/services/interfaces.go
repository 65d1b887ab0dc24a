package services

import (
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
)

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	Register(username, email, password string) (*models.User, error)
	AttemptLogin(username, password string) (*models.User, error)
	GetUserByID(id uint) (*models.User, error)
	StoreRefreshTokenHash(userID uint, tokenHash string) error
	GetRefreshTokenHash(userID uint) (string, error)
	RevokeRefreshToken(userID uint, tokenHash string, expiresAt time.Time) error
	IsTokenRevoked(tokenHash string) (bool, error)
}

// CategoryServicer defines the contract for category-related business logic.
type CategoryServicer interface {
	CreateCategory(userID uint, name string) (*models.Category, error)
	GetUserCategories(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Category], error)
	GetCategoryByID(userID, categoryID uint) (*models.Category, error)
	UpdateCategory(userID, categoryID uint, name string) (*models.Category, error)
	DeleteCategory(userID, categoryID uint) error
}

// TransactionFilter holds optional filter parameters for listing transactions.
type TransactionFilter struct {
	FromDate   *time.Time
	ToDate     *time.Time
	CategoryID *uint
	Emotion    *models.EmotionalTrigger
}

// TransactionUpdate holds the fields of a transaction that may change on
// update. Nil pointers leave the stored value untouched; ClearCategory
// removes the category reference.
type TransactionUpdate struct {
	Value            *decimal.Decimal
	Date             *time.Time
	Description      *string
	CategoryID       *uint
	ClearCategory    bool
	EmotionalTrigger *models.EmotionalTrigger
}

// TransactionServicer defines the contract for transaction-related business logic.
type TransactionServicer interface {
	CreateTransaction(userID uint, value decimal.Decimal, date time.Time, description string, categoryID *uint, trigger models.EmotionalTrigger) (*models.Transaction, error)
	GetUserTransactions(userID uint, page pagination.PageRequest, filter TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	GetTransactionByID(userID, transactionID uint) (*models.Transaction, error)
	UpdateTransaction(userID, transactionID uint, update TransactionUpdate) (*models.Transaction, error)
	DeleteTransaction(userID, transactionID uint) error
}

// BudgetUpdate holds the fields of a budget that may change on update.
// Nil pointers leave the stored value untouched; ClearCategory turns the
// budget into a general one.
type BudgetUpdate struct {
	CategoryID    *uint
	ClearCategory bool
	AmountLimit   *decimal.Decimal
	StartDate     *time.Time
	EndDate       *time.Time
}

// BudgetCheck is the result of an ad-hoc budget pre-check. Nothing is
// persisted when computing it.
type BudgetCheck struct {
	Exceeded bool            `json:"exceeded"`
	Message  string          `json:"message,omitempty"`
	Limit    decimal.Decimal `json:"limit,omitempty"`
	Spent    decimal.Decimal `json:"spent,omitempty"`
}

// BudgetServicer defines the contract for budget-related business logic.
type BudgetServicer interface {
	CreateBudget(userID uint, categoryID *uint, amountLimit decimal.Decimal, startDate, endDate time.Time) (*models.Budget, error)
	GetUserBudgets(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Budget], error)
	GetBudgetByID(userID, budgetID uint) (*models.Budget, error)
	UpdateBudget(userID, budgetID uint, update BudgetUpdate) (*models.Budget, error)
	DeleteBudget(userID, budgetID uint) error
	CheckBudget(userID, categoryID uint, amount decimal.Decimal) (*BudgetCheck, error)
}

// CategoryExpenses is one row of the expenses-by-category report.
type CategoryExpenses struct {
	Category      string          `json:"category"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
}

// CategoryIncomes is one row of the incomes-by-category report.
type CategoryIncomes struct {
	Category     string          `json:"category"`
	TotalIncomes decimal.Decimal `json:"total_incomes"`
}

// EmotionExpenses is one row of the expenses-by-emotion report.
type EmotionExpenses struct {
	EmotionalTrigger models.EmotionalTrigger `json:"emotional_trigger"`
	TotalExpenses    decimal.Decimal         `json:"total_expenses"`
}

// NeedsVsWants splits expense totals between needs and wants.
type NeedsVsWants struct {
	Needs decimal.Decimal `json:"needs"`
	Wants decimal.Decimal `json:"wants"`
}

// MonthlySummary aggregates the current calendar month. Field names follow
// the public API contract.
type MonthlySummary struct {
	Receitas decimal.Decimal `json:"receitas"`
	Despesas decimal.Decimal `json:"despesas"`
	Saldo    decimal.Decimal `json:"saldo"`
}

// ReportServicer defines the contract for read-only aggregation reports.
type ReportServicer interface {
	ExpensesByCategory(userID uint, start, end *time.Time) ([]CategoryExpenses, error)
	IncomesByCategory(userID uint, start, end *time.Time) ([]CategoryIncomes, error)
	ExpensesByEmotion(userID uint) ([]EmotionExpenses, error)
	NeedsVsWants(userID uint) (*NeedsVsWants, error)
	MonthlySummary(userID uint) (*MonthlySummary, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID uint, action, resourceType string, resourceID uint, ipAddress string, changes map[string]any)
}

// BudgetNotifier receives post-commit notifications about budget utilisation
// after an expense write. Implementations must not block the request path.
type BudgetNotifier interface {
	Notify(userID uint, budget models.Budget, spent decimal.Decimal)
}
