package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"kopeika/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestCategory creates a regular-mode category of the given direction.
func CreateTestCategory(t *testing.T, db *gorm.DB, direction models.Direction) *models.Category {
	t.Helper()
	return CreateTestCategoryWithOrder(t, db, direction, 0)
}

// CreateTestCategoryWithOrder creates a regular-mode category with a display order.
func CreateTestCategoryWithOrder(t *testing.T, db *gorm.DB, direction models.Direction, order int) *models.Category {
	t.Helper()

	n := nextID()
	category := &models.Category{
		Name:      fmt.Sprintf("Test Category %d", n),
		Slug:      fmt.Sprintf("test-category-%d", n),
		Direction: direction,
		Order:     order,
		TotalType: models.TotalTypeRegular,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestRunningCategory creates an expense category in running mode.
func CreateTestRunningCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()

	n := nextID()
	category := &models.Category{
		Name:      fmt.Sprintf("Test Running Category %d", n),
		Slug:      fmt.Sprintf("test-running-category-%d", n),
		Direction: models.DirectionExpense,
		TotalType: models.TotalTypeRunning,
	}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test running category: %v", err)
	}
	return category
}

// CreateTestMonth creates the Month bucket for (year, month).
func CreateTestMonth(t *testing.T, db *gorm.DB, year int, month time.Month) *models.Month {
	t.Helper()

	name := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("January, 2006")
	m := &models.Month{
		Month: int(month),
		Year:  year,
		Name:  name,
		Slug:  fmt.Sprintf("test-month-%d", nextID()),
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("failed to create test month: %v", err)
	}
	return m
}

// CreateTestTransaction creates a transaction in the given category and
// month. The direction follows the category; amount is a decimal string.
func CreateTestTransaction(t *testing.T, db *gorm.DB, category *models.Category, month *models.Month, amount string, date time.Time) *models.Transaction {
	t.Helper()

	amt, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("invalid test amount %q: %v", amount, err)
	}

	n := nextID()
	tx := &models.Transaction{
		Direction:  category.Direction,
		Title:      fmt.Sprintf("Test Transaction %d", n),
		Slug:       fmt.Sprintf("test-transaction-%d", n),
		Date:       date,
		MonthID:    month.ID,
		CategoryID: category.ID,
		Amount:     amt,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestImport creates a CSVImport audit row.
func CreateTestImport(t *testing.T, db *gorm.DB) *models.CSVImport {
	t.Helper()

	imp := &models.CSVImport{Filename: fmt.Sprintf("test-%d.csv", nextID())}
	if err := db.Create(imp).Error; err != nil {
		t.Fatalf("failed to create test import: %v", err)
	}
	return imp
}

// CreateTestTitleMapping creates an alias from source to canonical title.
func CreateTestTitleMapping(t *testing.T, db *gorm.DB, source, canonical string) *models.TitleMapping {
	t.Helper()

	mapping := &models.TitleMapping{SourceTitle: source, CanonicalTitle: canonical}
	if err := db.Create(mapping).Error; err != nil {
		t.Fatalf("failed to create test title mapping: %v", err)
	}
	return mapping
}
