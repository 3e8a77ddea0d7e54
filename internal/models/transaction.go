package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction records a single expense or earning. The two variants share
// one table and are distinguished by Direction; Pending is only meaningful
// for expenses.
//
// Amount is always stored positive. Sign semantics (running totals) are
// applied at presentation time, never persisted.
//
// The (direction, title, amount, date) unique index backs the ingestion
// duplicate pre-check at the storage layer, since pre-check-then-insert is
// racy under concurrent imports of overlapping files.
type Transaction struct {
	Base
	Direction   Direction       `gorm:"not null;uniqueIndex:idx_transactions_slug;uniqueIndex:idx_transactions_natural" json:"direction"`
	Title       string          `gorm:"not null;uniqueIndex:idx_transactions_natural" json:"title"`
	Slug        string          `gorm:"not null;uniqueIndex:idx_transactions_slug" json:"slug"`
	Date        time.Time       `gorm:"type:date;not null;uniqueIndex:idx_transactions_natural" json:"date"`
	MonthID     uint            `gorm:"not null" json:"month_id"`
	CategoryID  uint            `gorm:"not null" json:"category_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(10,2);not null;uniqueIndex:idx_transactions_natural" json:"amount"`
	Description string          `json:"description"`
	Pending     bool            `gorm:"not null;default:false" json:"pending"`
	CSVImportID *uint           `json:"csv_import_id,omitempty"`

	// Relationships
	Month     Month      `gorm:"foreignKey:MonthID;constraint:OnDelete:RESTRICT" json:"month,omitempty"`
	Category  Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	CSVImport *CSVImport `gorm:"foreignKey:CSVImportID" json:"csv_import,omitempty"`
}
