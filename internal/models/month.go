package models

// Month is a calendar-month bucket, one row per (month, year) pair.
//
// The data is derivable from transaction dates, but keeping a row per month
// makes monthly filtering and aggregation cheap. Rows are created lazily the
// first time a transaction lands in a month, and are protected from deletion
// while transactions reference them.
type Month struct {
	Base
	Month int    `gorm:"not null;uniqueIndex:idx_months_month_year" json:"month"`
	Year  int    `gorm:"not null;uniqueIndex:idx_months_month_year" json:"year"`
	Name  string `gorm:"not null" json:"name"`
	Slug  string `gorm:"uniqueIndex;not null" json:"slug"`
}
