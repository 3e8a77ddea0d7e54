package services

import (
	"io"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kopeika/internal/models"
	"kopeika/internal/pagination"
)

// MonthServicer defines the contract for the calendar-month registry.
type MonthServicer interface {
	GetOrCreate(tx *gorm.DB, year int, month time.Month) (*models.Month, error)
	GetForDate(tx *gorm.DB, date time.Time) (*models.Month, error)
	GetBySlug(monthSlug string) (*models.Month, error)
	ListMonths() ([]models.Month, error)
	DeleteMonth(monthID uint) error
}

// CategoryServicer defines the contract for category management and
// free-text category resolution.
type CategoryServicer interface {
	CreateCategory(name string, direction models.Direction, order int, totalType models.TotalType, parentID *uint) (*models.Category, error)
	ListCategories() ([]models.Category, error)
	GetCategoryByID(categoryID uint) (*models.Category, error)
	UpdateCategory(categoryID uint, name string, order *int, totalType models.TotalType, parentID *uint) (*models.Category, error)
	DeleteCategory(categoryID uint) error
	Resolve(name string, direction models.Direction) (*models.Category, error)
	Snapshot() (*CategorySnapshot, error)
}

// TitleMappingServicer defines the contract for the description alias table.
type TitleMappingServicer interface {
	CreateMapping(sourceTitle, canonicalTitle string) (*models.TitleMapping, error)
	ListMappings() ([]models.TitleMapping, error)
	DeleteMapping(mappingID uint) error
	AliasTable() (map[string]string, error)
}

// TransactionServicer defines the contract for the manual transaction write
// path, listings, and copy-forward.
type TransactionServicer interface {
	CreateTransaction(direction models.Direction, title string, amount decimal.Decimal, date time.Time, categoryID uint, description string, pending bool) (*models.Transaction, error)
	UpdateTransaction(transactionID uint, title string, amount decimal.Decimal, date time.Time, categoryID uint, description string, pending bool) (*models.Transaction, error)
	GetTransactionByID(transactionID uint) (*models.Transaction, error)
	GetMonthTransactions(monthID uint, direction models.Direction, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error)
	DistinctTitles(direction models.Direction) ([]string, error)
	DeleteTransaction(transactionID uint) error
	ValidateCopy(direction models.Direction, transactionIDs []uint) ([]models.Transaction, error)
	CopyTransactions(direction models.Direction, transactionIDs []uint, newDate string) (int, error)
}

// IngestServicer defines the contract for the CSV ingestion pipeline and
// its audit trail.
type IngestServicer interface {
	CreateImport(filename string) (*models.CSVImport, error)
	Ingest(imp *models.CSVImport, file io.Reader) (int, []string, error)
	ListImports() ([]models.CSVImport, error)
}

// TotalsServicer defines the contract for the aggregation read path.
type TotalsServicer interface {
	RegularTotals(monthID *uint, direction models.Direction) (map[uint]CategoryTotal, decimal.Decimal, error)
	RunningTransactions(categoryID uint) ([]AnnotatedTransaction, error)
	RunningCategoryTotals() ([]RunningCategoryTotal, error)
}
