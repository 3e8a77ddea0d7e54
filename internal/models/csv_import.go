package models

// CSVImport is the audit record for one upload attempt. The row is created
// before the ingestion pipeline runs; RowsCreated and RowsSkipped are
// populated after it completes, whether or not any transactions were kept.
type CSVImport struct {
	Base
	Filename    string `gorm:"not null" json:"filename"`
	RowsCreated int    `gorm:"not null;default:0" json:"rows_created"`
	RowsSkipped int    `gorm:"not null;default:0" json:"rows_skipped"`
}
