package services

import (
	"testing"
	"time"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

// nowMidday anchors budgets around the current day so CheckBudget, which
// always evaluates "today", finds them.
func nowMidday() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 12, 0, 0, 0, time.UTC)
}

func TestCreateBudget(t *testing.T) {
	t.Run("valid_category_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		budget, err := svc.CreateBudget(user.ID, &cat.ID, dec(500), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)

		if budget.ID == 0 {
			t.Fatal("expected non-zero budget ID")
		}
		if budget.CategoryID == nil || *budget.CategoryID != cat.ID {
			t.Errorf("expected category %d, got %v", cat.ID, budget.CategoryID)
		}
	})

	t.Run("valid_general_budget", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		budget, err := svc.CreateBudget(user.ID, nil, dec(500), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)

		if !budget.IsGeneral() {
			t.Error("expected a general budget")
		}
	})

	t.Run("rejects_non_positive_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, nil, dec(0), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertAppError(t, err, "INVALID_INPUT")

		_, err = svc.CreateBudget(user.ID, nil, dec(-5), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects_inverted_period", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, nil, dec(100), date(2025, 3, 31), date(2025, 3, 1))
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("rejects_foreign_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		otherCat := testutil.CreateTestCategory(t, db, other.ID)

		_, err := svc.CreateBudget(user.ID, &otherCat.ID, dec(100), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("rejects_overlapping_general_budgets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, nil, dec(200), date(2025, 3, 15), date(2025, 4, 15))
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})

	t.Run("rejects_overlapping_same_category", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		_, err := svc.CreateBudget(user.ID, &cat.ID, dec(100), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, &cat.ID, dec(200), date(2025, 3, 31), date(2025, 4, 30))
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})

	t.Run("allows_overlap_across_categories", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		food := testutil.CreateTestCategoryWithName(t, db, user.ID, "Food")

		_, err := svc.CreateBudget(user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)

		// A category budget may overlap the general one.
		_, err = svc.CreateBudget(user.ID, &food.ID, dec(50), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)
	})

	t.Run("allows_adjacent_periods", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, nil, dec(100), date(2025, 4, 1), date(2025, 4, 30))
		testutil.AssertNoError(t, err)
	})

	t.Run("period_covers_whole_end_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		// Midnight boundaries, as a YYYY-MM-DD request parses to.
		budget, err := svc.CreateBudget(user.ID, nil, dec(100),
			time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC))
		testutil.AssertNoError(t, err)

		if !budget.Contains(time.Date(2025, 3, 31, 12, 0, 0, 0, time.UTC)) {
			t.Error("expected period to contain a timestamp on its final day")
		}
		if budget.Contains(time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)) {
			t.Error("expected period to end before the next day")
		}
	})

	t.Run("rejected_create_persists_nothing", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateBudget(user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))
		testutil.AssertNoError(t, err)

		_, err = svc.CreateBudget(user.ID, nil, dec(200), date(2025, 3, 15), date(2025, 4, 15))
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")

		var count int64
		db.Model(&models.Budget{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 budget after rejection, got %d", count)
		}
	})
}

func TestUpdateBudget(t *testing.T) {
	t.Run("updates_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))

		newLimit := dec(250)
		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{AmountLimit: &newLimit})
		testutil.AssertNoError(t, err)

		if !updated.AmountLimit.Equal(dec(250)) {
			t.Errorf("expected limit 250, got %s", updated.AmountLimit)
		}
	})

	t.Run("overlap_recheck_excludes_self", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))

		// Shifting its own period within itself must not collide with itself.
		newEnd := date(2025, 3, 20)
		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{EndDate: &newEnd})
		testutil.AssertNoError(t, err)
	})

	t.Run("overlap_with_other_budget_rejected", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))
		budget := testutil.CreateTestBudget(t, db, user.ID, nil, dec(100), date(2025, 4, 1), date(2025, 4, 30))

		newStart := date(2025, 3, 20)
		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{StartDate: &newStart})
		testutil.AssertAppError(t, err, "DUPLICATE_BUDGET")
	})

	t.Run("clear_category_makes_general", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)
		budget := testutil.CreateTestBudget(t, db, user.ID, &cat.ID, dec(100), date(2025, 3, 1), date(2025, 3, 31))

		updated, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{ClearCategory: true})
		testutil.AssertNoError(t, err)
		if !updated.IsGeneral() {
			t.Error("expected budget to become general")
		}
	})

	t.Run("not_found_for_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, other.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))

		_, err := svc.UpdateBudget(user.ID, budget.ID, BudgetUpdate{})
		testutil.AssertAppError(t, err, "BUDGET_NOT_FOUND")
	})
}

func TestGetUserBudgets(t *testing.T) {
	t.Run("ordered_by_start_date", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestBudget(t, db, user.ID, nil, dec(100), date(2025, 4, 1), date(2025, 4, 30))
		testutil.CreateTestBudget(t, db, user.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))

		result, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Fatalf("expected 2 budgets, got %d", result.TotalItems)
		}
		if !result.Data[0].StartDate.Before(result.Data[1].StartDate) {
			t.Error("expected budgets ordered by start date")
		}
	})

	t.Run("excludes_other_users", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		testutil.CreateTestBudget(t, db, other.ID, nil, dec(100), date(2025, 3, 1), date(2025, 3, 31))

		result, err := svc.GetUserBudgets(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)
		if result.TotalItems != 0 {
			t.Errorf("expected no budgets, got %d", result.TotalItems)
		}
	})
}

func TestDeleteBudget(t *testing.T) {
	t.Run("deleted_budget_stops_constraining", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		budgetSvc := NewBudgetService(db)
		txSvc := NewTransactionService(db, nil)
		user := testutil.CreateTestUser(t, db)
		budget := testutil.CreateTestBudget(t, db, user.ID, nil, dec(10), date(2025, 3, 1), date(2025, 3, 31))

		_, err := txSvc.CreateTransaction(user.ID, dec(-50), date(2025, 3, 10), "", nil, models.TriggerBasicNeed)
		testutil.AssertAppError(t, err, "BUDGET_EXCEEDED")

		testutil.AssertNoError(t, budgetSvc.DeleteBudget(user.ID, budget.ID))

		_, err = txSvc.CreateTransaction(user.ID, dec(-50), date(2025, 3, 10), "", nil, models.TriggerBasicNeed)
		testutil.AssertNoError(t, err)
	})
}

func TestCheckBudget(t *testing.T) {
	t.Run("no_budget_defined", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		check, err := svc.CheckBudget(user.ID, cat.ID, dec(100))
		testutil.AssertNoError(t, err)

		if check.Exceeded {
			t.Error("expected not exceeded without a budget")
		}
		if check.Message != "No budget defined for this category" {
			t.Errorf("unexpected message: %s", check.Message)
		}
	})

	t.Run("within_limit", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		now := nowMidday()
		testutil.CreateTestBudget(t, db, user.ID, &cat.ID, dec(200), now.AddDate(0, 0, -5), now.AddDate(0, 0, 5))
		testutil.CreateTestTransaction(t, db, user.ID, &cat.ID, dec(-50), now.AddDate(0, 0, -1))

		check, err := svc.CheckBudget(user.ID, cat.ID, dec(100))
		testutil.AssertNoError(t, err)

		if check.Exceeded {
			t.Errorf("expected not exceeded: %s", check.Message)
		}
		if !check.Spent.Equal(dec(50)) {
			t.Errorf("expected spent 50, got %s", check.Spent)
		}
	})

	t.Run("would_exceed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		now := nowMidday()
		testutil.CreateTestBudget(t, db, user.ID, &cat.ID, dec(200), now.AddDate(0, 0, -5), now.AddDate(0, 0, 5))
		testutil.CreateTestTransaction(t, db, user.ID, &cat.ID, dec(-150), now.AddDate(0, 0, -1))

		check, err := svc.CheckBudget(user.ID, cat.ID, dec(100))
		testutil.AssertNoError(t, err)

		if !check.Exceeded {
			t.Fatal("expected exceeded")
		}
		if check.Message == "" {
			t.Error("expected a message explaining the excess")
		}

		// Nothing was persisted by the check.
		var count int64
		db.Model(&models.Transaction{}).Where("user_id = ?", user.ID).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 transaction after check, got %d", count)
		}
	})

	t.Run("found_on_period_last_day", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewBudgetService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		// A period whose end date is today, at midnight as a YYYY-MM-DD
		// request parses to. The budget applies for the whole of today.
		now := time.Now().UTC()
		endToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		_, err := svc.CreateBudget(user.ID, &cat.ID, dec(200), endToday.AddDate(0, 0, -10), endToday)
		testutil.AssertNoError(t, err)

		check, err := svc.CheckBudget(user.ID, cat.ID, dec(300))
		testutil.AssertNoError(t, err)

		if check.Message == "No budget defined for this category" {
			t.Fatal("expected the budget to cover its own last day")
		}
		if !check.Exceeded {
			t.Error("expected exceeded against a 200 limit")
		}
	})
}
