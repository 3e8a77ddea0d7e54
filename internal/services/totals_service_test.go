package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"kopeika/internal/models"
	"kopeika/internal/testutil"
)

func TestRegularTotals(t *testing.T) {
	t.Run("rolls_children_into_parents", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		parent := testutil.CreateTestCategory(t, db, models.DirectionExpense)
		snacks := &models.Category{
			Name:      "Snacks",
			Slug:      "snacks",
			Direction: models.DirectionExpense,
			Order:     2,
			TotalType: models.TotalTypeRegular,
			ParentID:  &parent.ID,
		}
		drinks := &models.Category{
			Name:      "Drinks",
			Slug:      "drinks",
			Direction: models.DirectionExpense,
			Order:     1,
			TotalType: models.TotalTypeRegular,
			ParentID:  &parent.ID,
		}
		for _, c := range []*models.Category{snacks, drinks} {
			if err := db.Create(c).Error; err != nil {
				t.Fatalf("failed to create child category: %v", err)
			}
		}

		month := testutil.CreateTestMonth(t, db, 2025, time.July)
		date := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestTransaction(t, db, parent, month, "100.00", date)
		testutil.CreateTestTransaction(t, db, snacks, month, "10.00", date)
		testutil.CreateTestTransaction(t, db, drinks, month, "5.00", date)

		tree, grandTotal, err := svc.RegularTotals(&month.ID, models.DirectionExpense)
		testutil.AssertNoError(t, err)

		if len(tree) != 1 {
			t.Fatalf("expected 1 top-level entry, got %d", len(tree))
		}
		entry, ok := tree[parent.ID]
		if !ok {
			t.Fatal("expected the parent category as the top-level entry")
		}
		if !entry.Total.Equal(decimal.RequireFromString("115.00")) {
			t.Errorf("expected rolled-up total 115.00, got %s", entry.Total)
		}
		if len(entry.Children) != 2 {
			t.Fatalf("expected 2 children, got %d", len(entry.Children))
		}
		// Children are ordered by display order, then name.
		if entry.Children[0].Name != "Drinks" || entry.Children[1].Name != "Snacks" {
			t.Errorf("unexpected child order: %s, %s", entry.Children[0].Name, entry.Children[1].Name)
		}
		if !entry.Children[0].Total.Equal(decimal.RequireFromString("5.00")) {
			t.Errorf("expected child total 5.00, got %s", entry.Children[0].Total)
		}
		if !grandTotal.Equal(decimal.RequireFromString("115.00")) {
			t.Errorf("expected grand total 115.00, got %s", grandTotal)
		}
	})

	t.Run("scopes_to_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		category := testutil.CreateTestCategory(t, db, models.DirectionExpense)
		july := testutil.CreateTestMonth(t, db, 2025, time.July)
		august := testutil.CreateTestMonth(t, db, 2025, time.August)
		testutil.CreateTestTransaction(t, db, category, july, "10.00", time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC))
		testutil.CreateTestTransaction(t, db, category, august, "25.00", time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC))

		_, julyTotal, err := svc.RegularTotals(&july.ID, models.DirectionExpense)
		testutil.AssertNoError(t, err)
		if !julyTotal.Equal(decimal.RequireFromString("10.00")) {
			t.Errorf("expected July total 10.00, got %s", julyTotal)
		}

		_, allTotal, err := svc.RegularTotals(nil, models.DirectionExpense)
		testutil.AssertNoError(t, err)
		if !allTotal.Equal(decimal.RequireFromString("35.00")) {
			t.Errorf("expected all-months total 35.00, got %s", allTotal)
		}
	})

	t.Run("separates_directions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		expenses := testutil.CreateTestCategory(t, db, models.DirectionExpense)
		earnings := testutil.CreateTestCategory(t, db, models.DirectionEarning)
		month := testutil.CreateTestMonth(t, db, 2025, time.July)
		date := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestTransaction(t, db, expenses, month, "10.00", date)
		testutil.CreateTestTransaction(t, db, earnings, month, "2500.00", date)

		_, expenseTotal, err := svc.RegularTotals(&month.ID, models.DirectionExpense)
		testutil.AssertNoError(t, err)
		if !expenseTotal.Equal(decimal.RequireFromString("10.00")) {
			t.Errorf("expected expense total 10.00, got %s", expenseTotal)
		}

		_, earningTotal, err := svc.RegularTotals(&month.ID, models.DirectionEarning)
		testutil.AssertNoError(t, err)
		if !earningTotal.Equal(decimal.RequireFromString("2500.00")) {
			t.Errorf("expected earning total 2500.00, got %s", earningTotal)
		}
	})

	t.Run("excludes_running_categories", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		regular := testutil.CreateTestCategory(t, db, models.DirectionExpense)
		running := testutil.CreateTestRunningCategory(t, db)
		month := testutil.CreateTestMonth(t, db, 2025, time.July)
		date := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestTransaction(t, db, regular, month, "10.00", date)
		testutil.CreateTestTransaction(t, db, running, month, "999.00", date)

		tree, grandTotal, err := svc.RegularTotals(&month.ID, models.DirectionExpense)
		testutil.AssertNoError(t, err)

		if _, ok := tree[running.ID]; ok {
			t.Error("expected running category to be excluded from the tree")
		}
		if !grandTotal.Equal(decimal.RequireFromString("10.00")) {
			t.Errorf("expected grand total 10.00, got %s", grandTotal)
		}
	})

	t.Run("invalid_direction", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		_, _, err := svc.RegularTotals(nil, "sideways")
		testutil.AssertAppError(t, err, "INVALID_DIRECTION")
	})

	t.Run("no_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		testutil.CreateTestCategory(t, db, models.DirectionExpense)

		tree, grandTotal, err := svc.RegularTotals(nil, models.DirectionExpense)
		testutil.AssertNoError(t, err)

		if len(tree) != 0 {
			t.Errorf("expected empty tree, got %d entries", len(tree))
		}
		if !grandTotal.IsZero() {
			t.Errorf("expected zero grand total, got %s", grandTotal)
		}
	})
}

func TestRunningTransactions(t *testing.T) {
	t.Run("annotates_running_category_amounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		running := testutil.CreateTestRunningCategory(t, db)
		month := testutil.CreateTestMonth(t, db, 2025, time.July)
		tx := testutil.CreateTestTransaction(t, db, running, month, "42.00", time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC))

		annotated, err := svc.RunningTransactions(running.ID)
		testutil.AssertNoError(t, err)

		if len(annotated) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(annotated))
		}
		if annotated[0].RunningTotalAmount == nil {
			t.Fatal("expected a running total annotation")
		}
		if !annotated[0].RunningTotalAmount.Equal(decimal.RequireFromString("-42.00")) {
			t.Errorf("expected annotated amount -42.00, got %s", annotated[0].RunningTotalAmount)
		}

		// The stored amount is never mutated.
		var stored models.Transaction
		db.First(&stored, tx.ID)
		if !stored.Amount.Equal(decimal.RequireFromString("42.00")) {
			t.Errorf("expected stored amount 42.00, got %s", stored.Amount)
		}
	})

	t.Run("regular_category_is_unannotated", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		regular := testutil.CreateTestCategory(t, db, models.DirectionExpense)
		month := testutil.CreateTestMonth(t, db, 2025, time.July)
		testutil.CreateTestTransaction(t, db, regular, month, "42.00", time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC))

		annotated, err := svc.RunningTransactions(regular.ID)
		testutil.AssertNoError(t, err)

		if len(annotated) != 1 {
			t.Fatalf("expected 1 transaction, got %d", len(annotated))
		}
		if annotated[0].RunningTotalAmount != nil {
			t.Error("expected no annotation for a regular category")
		}
	})

	t.Run("category_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		_, err := svc.RunningTransactions(99999)
		testutil.AssertAppError(t, err, "CATEGORY_NOT_FOUND")
	})
}

func TestRunningCategoryTotals(t *testing.T) {
	t.Run("negated_sums", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		running := testutil.CreateTestRunningCategory(t, db)
		month := testutil.CreateTestMonth(t, db, 2025, time.July)
		date := time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC)
		testutil.CreateTestTransaction(t, db, running, month, "30.00", date)
		testutil.CreateTestTransaction(t, db, running, month, "12.00", date)

		totals, err := svc.RunningCategoryTotals()
		testutil.AssertNoError(t, err)

		if len(totals) != 1 {
			t.Fatalf("expected 1 running category, got %d", len(totals))
		}
		if !totals[0].Total.Equal(decimal.RequireFromString("-42.00")) {
			t.Errorf("expected total -42.00, got %s", totals[0].Total)
		}
	})

	t.Run("empty_category_has_zero_total", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTotalsService(db)

		testutil.CreateTestRunningCategory(t, db)

		totals, err := svc.RunningCategoryTotals()
		testutil.AssertNoError(t, err)

		if len(totals) != 1 {
			t.Fatalf("expected 1 running category, got %d", len(totals))
		}
		if !totals[0].Total.IsZero() {
			t.Errorf("expected zero total, got %s", totals[0].Total)
		}
	})
}
