package services

import (
	"testing"
	"time"

	"gorm.io/gorm"

	"kopeika/internal/models"
	"kopeika/internal/testutil"
)

func TestGetOrCreateMonth(t *testing.T) {
	t.Run("creates_on_first_use", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		month, err := svc.GetOrCreate(nil, 2025, time.July)
		testutil.AssertNoError(t, err)

		if month.ID == 0 {
			t.Fatal("expected non-zero month ID")
		}
		if month.Name != "July, 2025" {
			t.Errorf("expected name 'July, 2025', got %q", month.Name)
		}
		if month.Slug != "july-2025" {
			t.Errorf("expected slug 'july-2025', got %q", month.Slug)
		}
		if month.Month != 7 || month.Year != 2025 {
			t.Errorf("expected (7, 2025), got (%d, %d)", month.Month, month.Year)
		}
	})

	t.Run("reuses_existing_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		first, err := svc.GetOrCreate(nil, 2025, time.July)
		testutil.AssertNoError(t, err)

		second, err := svc.GetOrCreate(nil, 2025, time.July)
		testutil.AssertNoError(t, err)

		if first.ID != second.ID {
			t.Errorf("expected same month row, got IDs %d and %d", first.ID, second.ID)
		}

		var count int64
		db.Model(&models.Month{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 month row, got %d", count)
		}
	})

	t.Run("create_conflict_refetches_existing_row", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		// Insert the same (month, year) pair from outside just before the
		// service's own insert runs, so its create hits the unique index and
		// it has to fall back to refetching.
		rivalInserted := false
		err := db.Callback().Create().Before("gorm:create").Register("rival_month_insert", func(tx *gorm.DB) {
			if rivalInserted {
				return
			}
			if _, ok := tx.Statement.Dest.(*models.Month); !ok {
				return
			}
			rivalInserted = true
			now := time.Now()
			tx.Session(&gorm.Session{NewDB: true}).Exec(
				"INSERT INTO months (created_at, updated_at, month, year, name, slug) VALUES (?, ?, 7, 2025, 'July, 2025', 'july-2025')",
				now, now,
			)
		})
		if err != nil {
			t.Fatalf("failed to register callback: %v", err)
		}

		month, err := svc.GetOrCreate(nil, 2025, time.July)
		testutil.AssertNoError(t, err)

		if !rivalInserted {
			t.Fatal("expected the rival insert to run before the service's create")
		}

		var existing models.Month
		if err := db.Where("slug = ?", "july-2025").First(&existing).Error; err != nil {
			t.Fatalf("failed to load month: %v", err)
		}
		if month.ID != existing.ID {
			t.Errorf("expected the rival's row %d, got %d", existing.ID, month.ID)
		}

		var count int64
		db.Model(&models.Month{}).Count(&count)
		if count != 1 {
			t.Errorf("expected 1 month row, got %d", count)
		}
	})

	t.Run("distinct_pairs_get_distinct_rows", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		july, err := svc.GetOrCreate(nil, 2025, time.July)
		testutil.AssertNoError(t, err)

		julyLastYear, err := svc.GetOrCreate(nil, 2024, time.July)
		testutil.AssertNoError(t, err)

		if july.ID == julyLastYear.ID {
			t.Error("expected different rows for the same month of different years")
		}
	})
}

func TestGetMonthBySlug(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		created, err := svc.GetOrCreate(nil, 2025, time.July)
		testutil.AssertNoError(t, err)

		month, err := svc.GetBySlug("july-2025")
		testutil.AssertNoError(t, err)

		if month.ID != created.ID {
			t.Errorf("expected month ID %d, got %d", created.ID, month.ID)
		}
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		_, err := svc.GetBySlug("december-1999")
		testutil.AssertAppError(t, err, "MONTH_NOT_FOUND")
	})
}

func TestListMonths(t *testing.T) {
	t.Run("newest_first", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		for _, pair := range []struct {
			year  int
			month time.Month
		}{
			{2025, time.February},
			{2024, time.December},
			{2025, time.July},
		} {
			_, err := svc.GetOrCreate(nil, pair.year, pair.month)
			testutil.AssertNoError(t, err)
		}

		months, err := svc.ListMonths()
		testutil.AssertNoError(t, err)

		if len(months) != 3 {
			t.Fatalf("expected 3 months, got %d", len(months))
		}
		if months[0].Slug != "july-2025" || months[1].Slug != "february-2025" || months[2].Slug != "december-2024" {
			t.Errorf("unexpected order: %s, %s, %s", months[0].Slug, months[1].Slug, months[2].Slug)
		}
	})
}

func TestDeleteMonth(t *testing.T) {
	t.Run("empty_month", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		month, err := svc.GetOrCreate(nil, 2025, time.July)
		testutil.AssertNoError(t, err)

		err = svc.DeleteMonth(month.ID)
		testutil.AssertNoError(t, err)

		_, err = svc.GetBySlug(month.Slug)
		testutil.AssertAppError(t, err, "MONTH_NOT_FOUND")
	})

	t.Run("month_with_transactions", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		category := testutil.CreateTestCategory(t, db, models.DirectionExpense)
		month := testutil.CreateTestMonth(t, db, 2025, time.July)
		testutil.CreateTestTransaction(t, db, category, month, "12.50", time.Date(2025, 7, 4, 0, 0, 0, 0, time.UTC))

		err := svc.DeleteMonth(month.ID)
		testutil.AssertAppError(t, err, "MONTH_IN_USE")
	})

	t.Run("not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewMonthService(db)

		err := svc.DeleteMonth(99999)
		testutil.AssertAppError(t, err, "MONTH_NOT_FOUND")
	})
}
