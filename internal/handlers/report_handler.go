package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/services"
)

// ReportHandler handles read-only aggregation requests.
type ReportHandler struct {
	reportService services.ReportServicer
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(reportService services.ReportServicer) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// GetExpensesByCategory handles the expenses-by-category report.
// @Summary     Expenses by category
// @Description Get expense magnitudes grouped by category name, optionally restricted to a date range
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       start query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param       end   query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Success     200 {array} services.CategoryExpenses "Expense totals per category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/expenses-by-category [get]
func (h *ReportHandler) GetExpensesByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	start, end, err := parseReportRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.ExpensesByCategory(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetIncomesByCategory handles the incomes-by-category report.
// @Summary     Incomes by category
// @Description Get income totals grouped by category name, optionally restricted to a date range
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       start query string false "Range start (RFC3339 or YYYY-MM-DD)"
// @Param       end   query string false "Range end (RFC3339 or YYYY-MM-DD)"
// @Success     200 {array} services.CategoryIncomes "Income totals per category"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/incomes-by-category [get]
func (h *ReportHandler) GetIncomesByCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	start, end, err := parseReportRange(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.IncomesByCategory(userID, start, end)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetExpensesByEmotion handles the expenses-by-emotion report.
// @Summary     Expenses by emotional trigger
// @Description Get expense magnitudes grouped by emotional trigger
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {array} services.EmotionExpenses "Expense totals per trigger"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/expenses-by-emotion [get]
func (h *ReportHandler) GetExpensesByEmotion(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.ExpensesByEmotion(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetNeedsVsWants handles the needs-vs-wants report.
// @Summary     Needs vs wants
// @Description Split expense magnitudes between needs (Basic Need, Planning/Goal) and wants (all other triggers)
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.NeedsVsWants "Needs and wants totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reports/needs-vs-wants [get]
func (h *ReportHandler) GetNeedsVsWants(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.NeedsVsWants(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetMonthlySummary handles the current-month summary.
// @Summary     Monthly summary
// @Description Get incomes, expense magnitudes, and balance for the current calendar month
// @Tags        reports
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} services.MonthlySummary "Current month totals"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /monthly-summary [get]
func (h *ReportHandler) GetMonthlySummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reportService.MonthlySummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func parseReportRange(c *gin.Context) (start, end *time.Time, err error) {
	if v := c.Query("start"); v != "" {
		t, parseErr := parseFlexibleTime(v)
		if parseErr != nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid start format, use RFC3339 or YYYY-MM-DD")
		}
		start = &t
	}
	if v := c.Query("end"); v != "" {
		t, parseErr := parseFlexibleTime(v)
		if parseErr != nil {
			return nil, nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid end format, use RFC3339 or YYYY-MM-DD")
		}
		end = &t
	}
	return start, end, nil
}
