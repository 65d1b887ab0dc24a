package services

import (
	"testing"

	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/testutil"
)

func TestCreateCategory(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "Groceries")
		testutil.AssertNoError(t, err)

		if cat.ID == 0 {
			t.Fatal("expected non-zero category ID")
		}
		if cat.Name != "Groceries" {
			t.Errorf("expected name Groceries, got %s", cat.Name)
		}
	})

	t.Run("trims_whitespace", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		cat, err := svc.CreateCategory(user.ID, "  Rent  ")
		testutil.AssertNoError(t, err)
		if cat.Name != "Rent" {
			t.Errorf("expected trimmed name Rent, got %q", cat.Name)
		}
	})

	t.Run("empty_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "   ")
		testutil.AssertAppError(t, err, "INVALID_INPUT")
	})

	t.Run("duplicate_names_allowed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		_, err := svc.CreateCategory(user.ID, "Food")
		testutil.AssertNoError(t, err)

		_, err = svc.CreateCategory(user.ID, "Food")
		testutil.AssertNoError(t, err)
	})
}

func TestGetUserCategories(t *testing.T) {
	t.Run("returns_user_categories_only", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)

		user1 := testutil.CreateTestUser(t, db)
		user2 := testutil.CreateTestUser(t, db)

		testutil.CreateTestCategory(t, db, user1.ID)
		testutil.CreateTestCategory(t, db, user1.ID)
		testutil.CreateTestCategory(t, db, user2.ID)

		result, err := svc.GetUserCategories(user1.ID, pagination.PageRequest{Page: 1, PageSize: 20})
		testutil.AssertNoError(t, err)

		if result.TotalItems != 2 {
			t.Errorf("expected 2 categories for user1, got %d", result.TotalItems)
		}
	})

	t.Run("ordered_by_name", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestCategoryWithName(t, db, user.ID, "Zoo")
		testutil.CreateTestCategoryWithName(t, db, user.ID, "Apples")

		result, err := svc.GetUserCategories(user.ID, pagination.PageRequest{})
		testutil.AssertNoError(t, err)

		if len(result.Data) != 2 || result.Data[0].Name != "Apples" {
			t.Errorf("expected alphabetical order, got %+v", result.Data)
		}
	})
}

func TestUpdateCategory(t *testing.T) {
	t.Run("renames", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategoryWithName(t, db, user.ID, "Old")

		updated, err := svc.UpdateCategory(user.ID, cat.ID, "New")
		testutil.AssertNoError(t, err)
		if updated.Name != "New" {
			t.Errorf("expected name New, got %s", updated.Name)
		}
	})

	t.Run("not_found_for_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID)

		_, err := svc.UpdateCategory(user.ID, cat.ID, "Stolen")
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestDeleteCategory(t *testing.T) {
	t.Run("nulls_references_never_cascades", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		tx := testutil.CreateTestTransaction(t, db, user.ID, &cat.ID, dec(-10), date(2025, 3, 5))
		budget := testutil.CreateTestBudget(t, db, user.ID, &cat.ID, dec(100), date(2025, 3, 1), date(2025, 3, 31))

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

		var storedTx models.Transaction
		testutil.AssertNoError(t, db.First(&storedTx, tx.ID).Error)
		if storedTx.CategoryID != nil {
			t.Errorf("expected transaction category cleared, got %v", *storedTx.CategoryID)
		}

		var storedBudget models.Budget
		testutil.AssertNoError(t, db.First(&storedBudget, budget.ID).Error)
		if storedBudget.CategoryID != nil {
			t.Errorf("expected budget category cleared, got %v", *storedBudget.CategoryID)
		}
	})

	t.Run("deleted_category_gone", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, user.ID)

		testutil.AssertNoError(t, svc.DeleteCategory(user.ID, cat.ID))

		_, err := svc.GetCategoryByID(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})

	t.Run("not_found_for_other_user", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewCategoryService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)
		cat := testutil.CreateTestCategory(t, db, other.ID)

		err := svc.DeleteCategory(user.ID, cat.ID)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}
