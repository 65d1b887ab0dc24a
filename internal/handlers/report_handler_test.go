package handlers

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/services"
)

type mockReportService struct {
	expensesByCategoryFn func(userID uint, start, end *time.Time) ([]services.CategoryExpenses, error)
	incomesByCategoryFn  func(userID uint, start, end *time.Time) ([]services.CategoryIncomes, error)
	expensesByEmotionFn  func(userID uint) ([]services.EmotionExpenses, error)
	needsVsWantsFn       func(userID uint) (*services.NeedsVsWants, error)
	monthlySummaryFn     func(userID uint) (*services.MonthlySummary, error)
}

func (m *mockReportService) ExpensesByCategory(userID uint, start, end *time.Time) ([]services.CategoryExpenses, error) {
	if m.expensesByCategoryFn != nil {
		return m.expensesByCategoryFn(userID, start, end)
	}
	return []services.CategoryExpenses{}, nil
}

func (m *mockReportService) IncomesByCategory(userID uint, start, end *time.Time) ([]services.CategoryIncomes, error) {
	if m.incomesByCategoryFn != nil {
		return m.incomesByCategoryFn(userID, start, end)
	}
	return []services.CategoryIncomes{}, nil
}

func (m *mockReportService) ExpensesByEmotion(userID uint) ([]services.EmotionExpenses, error) {
	if m.expensesByEmotionFn != nil {
		return m.expensesByEmotionFn(userID)
	}
	return []services.EmotionExpenses{}, nil
}

func (m *mockReportService) NeedsVsWants(userID uint) (*services.NeedsVsWants, error) {
	if m.needsVsWantsFn != nil {
		return m.needsVsWantsFn(userID)
	}
	return &services.NeedsVsWants{}, nil
}

func (m *mockReportService) MonthlySummary(userID uint) (*services.MonthlySummary, error) {
	if m.monthlySummaryFn != nil {
		return m.monthlySummaryFn(userID)
	}
	return &services.MonthlySummary{}, nil
}

var _ services.ReportServicer = (*mockReportService)(nil)

func setupReportRouter(svc services.ReportServicer) *gin.Engine {
	handler := NewReportHandler(svc)
	r := gin.New()
	g := r.Group("", injectUserID(1))
	g.GET("/reports/expenses-by-category", handler.GetExpensesByCategory)
	g.GET("/reports/incomes-by-category", handler.GetIncomesByCategory)
	g.GET("/reports/expenses-by-emotion", handler.GetExpensesByEmotion)
	g.GET("/reports/needs-vs-wants", handler.GetNeedsVsWants)
	g.GET("/monthly-summary", handler.GetMonthlySummary)
	return r
}

func TestReportHandler_ExpensesByCategory(t *testing.T) {
	t.Run("passes date range to service", func(t *testing.T) {
		var gotStart, gotEnd *time.Time
		svc := &mockReportService{
			expensesByCategoryFn: func(_ uint, start, end *time.Time) ([]services.CategoryExpenses, error) {
				gotStart, gotEnd = start, end
				return []services.CategoryExpenses{
					{Category: "Food", TotalExpenses: decimal.NewFromInt(300)},
				}, nil
			},
		}
		r := setupReportRouter(svc)

		rec := doRequest(r, "GET", "/reports/expenses-by-category?start=2025-03-01&end=2025-03-31", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotStart == nil || gotEnd == nil {
			t.Fatal("expected date range to be forwarded")
		}
		if gotStart.Month() != time.March {
			t.Errorf("expected March start, got %s", gotStart)
		}
	})

	t.Run("range optional", func(t *testing.T) {
		var gotStart *time.Time
		svc := &mockReportService{
			expensesByCategoryFn: func(_ uint, start, _ *time.Time) ([]services.CategoryExpenses, error) {
				gotStart = start
				return []services.CategoryExpenses{}, nil
			},
		}
		r := setupReportRouter(svc)

		rec := doRequest(r, "GET", "/reports/expenses-by-category", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if gotStart != nil {
			t.Errorf("expected nil start, got %v", gotStart)
		}
	})

	t.Run("returns 400 on bad start", func(t *testing.T) {
		r := setupReportRouter(&mockReportService{})

		rec := doRequest(r, "GET", "/reports/expenses-by-category?start=yesterday", "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})
}

func TestReportHandler_IncomesByCategory(t *testing.T) {
	t.Run("returns rows", func(t *testing.T) {
		svc := &mockReportService{
			incomesByCategoryFn: func(_ uint, _, _ *time.Time) ([]services.CategoryIncomes, error) {
				return []services.CategoryIncomes{
					{Category: "Salary", TotalIncomes: decimal.NewFromInt(1500)},
				}, nil
			},
		}
		r := setupReportRouter(svc)

		rec := doRequest(r, "GET", "/reports/incomes-by-category", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var rows []map[string]interface{}
		parseJSONInto(t, rec, &rows)
		if len(rows) != 1 || rows[0]["category"] != "Salary" {
			t.Errorf("unexpected rows: %v", rows)
		}
	})
}

func TestReportHandler_ExpensesByEmotion(t *testing.T) {
	t.Run("returns rows", func(t *testing.T) {
		svc := &mockReportService{
			expensesByEmotionFn: func(_ uint) ([]services.EmotionExpenses, error) {
				return []services.EmotionExpenses{
					{EmotionalTrigger: models.TriggerImpulse, TotalExpenses: decimal.NewFromInt(50)},
				}, nil
			},
		}
		r := setupReportRouter(svc)

		rec := doRequest(r, "GET", "/reports/expenses-by-emotion", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		var rows []map[string]interface{}
		parseJSONInto(t, rec, &rows)
		if len(rows) != 1 || rows[0]["emotional_trigger"] != string(models.TriggerImpulse) {
			t.Errorf("unexpected rows: %v", rows)
		}
	})
}

func TestReportHandler_NeedsVsWants(t *testing.T) {
	t.Run("returns split", func(t *testing.T) {
		svc := &mockReportService{
			needsVsWantsFn: func(_ uint) (*services.NeedsVsWants, error) {
				return &services.NeedsVsWants{
					Needs: decimal.NewFromInt(150),
					Wants: decimal.NewFromInt(50),
				}, nil
			},
		}
		r := setupReportRouter(svc)

		rec := doRequest(r, "GET", "/reports/needs-vs-wants", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["needs"] != "150" {
			t.Errorf("expected needs 150, got %v", result["needs"])
		}
	})
}

func TestReportHandler_MonthlySummary(t *testing.T) {
	t.Run("returns summary keys", func(t *testing.T) {
		svc := &mockReportService{
			monthlySummaryFn: func(_ uint) (*services.MonthlySummary, error) {
				return &services.MonthlySummary{
					Receitas: decimal.NewFromInt(1000),
					Despesas: decimal.NewFromInt(150),
					Saldo:    decimal.NewFromInt(850),
				}, nil
			},
		}
		r := setupReportRouter(svc)

		rec := doRequest(r, "GET", "/monthly-summary", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		result := parseJSON(t, rec)
		if result["receitas"] != "1000" || result["despesas"] != "150" || result["saldo"] != "850" {
			t.Errorf("unexpected summary: %v", result)
		}
	})
}
