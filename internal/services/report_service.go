package services

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
)

// uncategorizedLabel names the report bucket for transactions without a
// category.
const uncategorizedLabel = "Uncategorized"

// reportService computes read-only aggregations over the user's ledger.
type reportService struct {
	db *gorm.DB
}

// NewReportService creates a new ReportServicer.
func NewReportService(db *gorm.DB) ReportServicer {
	return &reportService{db: db}
}

type categoryTotalRow struct {
	Name  *string
	Total decimal.Decimal
}

// ExpensesByCategory sums expense magnitudes grouped by category name,
// optionally restricted to a date range.
func (s *reportService) ExpensesByCategory(userID uint, start, end *time.Time) ([]CategoryExpenses, error) {
	rows, err := s.totalsByCategory(userID, "value < 0", start, end)
	if err != nil {
		return nil, err
	}

	results := make([]CategoryExpenses, 0, len(rows))
	for _, row := range rows {
		results = append(results, CategoryExpenses{
			Category:      categoryName(row.Name),
			TotalExpenses: row.Total.Abs(),
		})
	}
	return results, nil
}

// IncomesByCategory sums incomes grouped by category name, optionally
// restricted to a date range. Zero-value transactions do not contribute.
func (s *reportService) IncomesByCategory(userID uint, start, end *time.Time) ([]CategoryIncomes, error) {
	rows, err := s.totalsByCategory(userID, "value > 0", start, end)
	if err != nil {
		return nil, err
	}

	results := make([]CategoryIncomes, 0, len(rows))
	for _, row := range rows {
		results = append(results, CategoryIncomes{
			Category:     categoryName(row.Name),
			TotalIncomes: row.Total,
		})
	}
	return results, nil
}

// ExpensesByEmotion sums expense magnitudes grouped by emotional trigger.
func (s *reportService) ExpensesByEmotion(userID uint) ([]EmotionExpenses, error) {
	var rows []struct {
		EmotionalTrigger models.EmotionalTrigger
		Total            decimal.Decimal
	}
	if err := s.db.Model(&models.Transaction{}).
		Select("emotional_trigger, SUM(value) AS total").
		Where("user_id = ? AND value < 0", userID).
		Group("emotional_trigger").
		Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	results := make([]EmotionExpenses, 0, len(rows))
	for _, row := range rows {
		results = append(results, EmotionExpenses{
			EmotionalTrigger: row.EmotionalTrigger,
			TotalExpenses:    row.Total.Abs(),
		})
	}
	return results, nil
}

// NeedsVsWants splits expense magnitudes between needs (Basic Need,
// Planning/Goal) and wants (every other trigger).
func (s *reportService) NeedsVsWants(userID uint) (*NeedsVsWants, error) {
	rows, err := s.ExpensesByEmotion(userID)
	if err != nil {
		return nil, err
	}

	result := &NeedsVsWants{Needs: decimal.Zero, Wants: decimal.Zero}
	for _, row := range rows {
		if row.EmotionalTrigger.IsNeed() {
			result.Needs = result.Needs.Add(row.TotalExpenses)
		} else {
			result.Wants = result.Wants.Add(row.TotalExpenses)
		}
	}
	return result, nil
}

// MonthlySummary totals the current calendar month: incomes, expense
// magnitudes, and the resulting balance.
func (s *reportService) MonthlySummary(userID uint) (*MonthlySummary, error) {
	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)

	incomes, err := s.sumInRange(userID, "value >= 0", monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	expenses, err := s.sumInRange(userID, "value < 0", monthStart, monthEnd)
	if err != nil {
		return nil, err
	}

	despesas := expenses.Abs()
	return &MonthlySummary{
		Receitas: incomes,
		Despesas: despesas,
		Saldo:    incomes.Sub(despesas),
	}, nil
}

func (s *reportService) totalsByCategory(userID uint, signCondition string, start, end *time.Time) ([]categoryTotalRow, error) {
	q := s.db.Model(&models.Transaction{}).
		Select("categories.name AS name, SUM(transactions.value) AS total").
		Joins("LEFT JOIN categories ON categories.id = transactions.category_id AND categories.deleted_at IS NULL").
		Where("transactions.user_id = ? AND transactions."+signCondition, userID).
		Group("categories.name")
	if start != nil && end != nil {
		q = q.Where("transactions.date >= ? AND transactions.date <= ?", *start, *end)
	}

	var rows []categoryTotalRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return rows, nil
}

func (s *reportService) sumInRange(userID uint, signCondition string, start, end time.Time) (decimal.Decimal, error) {
	var row struct {
		Total decimal.Decimal
	}
	if err := s.db.Model(&models.Transaction{}).
		Select("COALESCE(SUM(value), 0) AS total").
		Where("user_id = ? AND date >= ? AND date <= ?", userID, start, end).
		Where(signCondition).
		Scan(&row).Error; err != nil {
		return decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return row.Total, nil
}

func categoryName(name *string) string {
	if name == nil || *name == "" {
		return uncategorizedLabel
	}
	return *name
}
