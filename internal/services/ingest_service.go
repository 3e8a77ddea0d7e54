package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopeika/internal/errors"
	"kopeika/internal/logger"
	"kopeika/internal/models"
)

// Column names the pipeline reads from a statement export. The header may
// carry additional columns (Post Date, Memo); they are preserved in row
// error messages but otherwise ignored.
const (
	columnTransactionDate = "Transaction Date"
	columnDescription     = "Description"
	columnCategory        = "Category"
	columnType            = "Type"
	columnAmount          = "Amount"
)

// incomeTypeValue routes a row to the earning variant when the Type column
// matches it case-insensitively; every other value is an expense.
const incomeTypeValue = "income"

// ingestService is the CSV ingestion pipeline. It parses, normalizes,
// categorizes, and deduplicates statement rows, and persists them
// all-or-nothing per file.
type ingestService struct {
	db         *gorm.DB
	months     MonthServicer
	categories CategoryServicer
	mappings   TitleMappingServicer
}

// NewIngestService creates a new IngestServicer.
func NewIngestService(db *gorm.DB, months MonthServicer, categories CategoryServicer, mappings TitleMappingServicer) IngestServicer {
	return &ingestService{
		db:         db,
		months:     months,
		categories: categories,
		mappings:   mappings,
	}
}

// stagedRow is a parsed, normalized row waiting for finalization. The Month
// row is resolved only at finalization time, inside the batch transaction,
// so an import that is aborted by row errors creates no Months.
type stagedRow struct {
	transaction *models.Transaction
	year        int
	month       time.Month
}

// Ingest runs the pipeline over one uploaded file. It returns the number of
// transactions created and the collected row-level error messages.
//
// Row scanning continues past unparseable dates so that every bad row is
// reported at once, but persistence is all-or-nothing at the file level: if
// any row-level error occurred, no transactions (and no Months) are created.
// The CSVImport audit counters are updated regardless of outcome.
func (s *ingestService) Ingest(imp *models.CSVImport, file io.Reader) (int, []string, error) {
	log := logger.Get()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		// Nothing at all in the file: nothing to create, nothing to report.
		return 0, nil, s.updateCounters(imp, 0, 0)
	}
	if err != nil {
		return 0, nil, apperrors.Wrap(apperrors.ErrMalformedCSV, err)
	}

	columns, err := columnIndex(header)
	if err != nil {
		return 0, nil, err
	}

	// Reference data snapshots, loaded once per call rather than per row.
	aliases, err := s.mappings.AliasTable()
	if err != nil {
		return 0, nil, err
	}
	snapshot, err := s.categories.Snapshot()
	if err != nil {
		return 0, nil, err
	}

	var (
		staged      []stagedRow
		ingestErrs  []string
		rowsSkipped int
		seen        = make(map[string]bool)
	)

	for rowIndex := 0; ; rowIndex++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, nil, apperrors.Wrap(apperrors.ErrMalformedCSV, err)
		}

		amount, err := decimal.NewFromString(strings.TrimSpace(record[columns[columnAmount]]))
		if err != nil {
			return 0, nil, apperrors.WithMessage(
				apperrors.ErrMalformedCSV,
				fmt.Sprintf("invalid amount %q in row %d", record[columns[columnAmount]], rowIndex),
			)
		}

		date, err := ParseDate(record[columns[columnTransactionDate]])
		if err != nil {
			msg := fmt.Sprintf("Invalid date format for row: %s. Skipping.", formatRow(header, record))
			ingestErrs = append(ingestErrs, msg)
			log.Error(msg)
			rowsSkipped++
			continue
		}

		direction := models.DirectionExpense
		if strings.EqualFold(strings.TrimSpace(record[columns[columnType]]), incomeTypeValue) {
			direction = models.DirectionEarning
		}

		category := snapshot.Resolve(record[columns[columnCategory]], direction)
		if category == nil {
			return 0, nil, apperrors.WithMessage(
				apperrors.ErrCategoryNotFound,
				fmt.Sprintf("no category matches %q and no %q fallback exists", record[columns[columnCategory]], fallbackCategoryName),
			)
		}

		title := MappedTitle(record[columns[columnDescription]], aliases)

		// Duplicates of existing transactions, or of earlier rows in the
		// same file, are skipped without reporting an error.
		duplicate, err := s.transactionExists(direction, title, amount, date)
		if err != nil {
			return 0, nil, err
		}
		key := dedupKey(direction, title, amount, date)
		if duplicate || seen[key] {
			log.Infof("Transaction '%s' already exists. Skipping.", title)
			rowsSkipped++
			continue
		}
		seen[key] = true

		staged = append(staged, stagedRow{
			transaction: &models.Transaction{
				Direction:   direction,
				Title:       title,
				Slug:        ingestionSlug(title, date, rowIndex),
				Date:        date,
				CategoryID:  category.ID,
				Amount:      amount,
				Pending:     direction == models.DirectionExpense,
				CSVImportID: &imp.ID,
			},
			year:  date.Year(),
			month: date.Month(),
		})
	}

	created := 0
	if len(ingestErrs) == 0 && len(staged) > 0 {
		created, err = s.finalize(staged)
		if err != nil {
			return 0, nil, err
		}
	}

	if err := s.updateCounters(imp, created, rowsSkipped); err != nil {
		return created, ingestErrs, err
	}
	return created, ingestErrs, nil
}

// finalize resolves Months and persists all staged rows. Each direction is
// written in one batch insert; both batches and the month creation share a
// single database transaction so a crash cannot leave partial output.
func (s *ingestService) finalize(staged []stagedRow) (int, error) {
	var expenses, earnings []*models.Transaction

	err := s.db.Transaction(func(tx *gorm.DB) error {
		type monthKey struct {
			year  int
			month time.Month
		}
		months := make(map[monthKey]*models.Month)

		for _, row := range staged {
			key := monthKey{row.year, row.month}
			month, ok := months[key]
			if !ok {
				var err error
				month, err = s.months.GetOrCreate(tx, key.year, key.month)
				if err != nil {
					return err
				}
				months[key] = month
			}
			row.transaction.MonthID = month.ID

			if row.transaction.Direction == models.DirectionExpense {
				expenses = append(expenses, row.transaction)
			} else {
				earnings = append(earnings, row.transaction)
			}
		}

		if err := resolveStagedSlugs(tx, models.DirectionExpense, expenses); err != nil {
			return err
		}
		if err := resolveStagedSlugs(tx, models.DirectionEarning, earnings); err != nil {
			return err
		}

		if len(expenses) > 0 {
			if err := tx.Create(&expenses).Error; err != nil {
				return err
			}
		}
		if len(earnings) > 0 {
			if err := tx.Create(&earnings).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, asAppError(err)
	}
	return len(expenses) + len(earnings), nil
}

// transactionExists is the duplicate pre-check on (direction, normalized
// title, amount, date). The matching unique index backstops it under
// concurrent imports.
func (s *ingestService) transactionExists(direction models.Direction, title string, amount decimal.Decimal, date time.Time) (bool, error) {
	var count int64
	if err := s.db.Model(&models.Transaction{}).
		Where("direction = ? AND title = ? AND amount = ? AND date = ?", direction, title, amount, date).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}

// updateCounters writes the audit counters back to the CSVImport row.
func (s *ingestService) updateCounters(imp *models.CSVImport, created, skipped int) error {
	imp.RowsCreated = created
	imp.RowsSkipped = skipped
	if err := s.db.Model(&models.CSVImport{}).
		Where("id = ?", imp.ID).
		Updates(map[string]interface{}{
			"rows_created": created,
			"rows_skipped": skipped,
		}).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// ListImports returns the audit records, newest first.
func (s *ingestService) ListImports() ([]models.CSVImport, error) {
	var imports []models.CSVImport
	if err := s.db.Order("created_at DESC").Find(&imports).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return imports, nil
}

// CreateImport records an upload attempt before the pipeline runs.
func (s *ingestService) CreateImport(filename string) (*models.CSVImport, error) {
	imp := &models.CSVImport{Filename: filename}
	if err := s.db.Create(imp).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return imp, nil
}

// columnIndex maps the columns the pipeline uses to their positions in the
// header row.
func columnIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{columnTransactionDate, columnDescription, columnCategory, columnType, columnAmount} {
		if _, ok := index[required]; !ok {
			return nil, apperrors.WithMessage(
				apperrors.ErrMalformedCSV,
				fmt.Sprintf("missing required column %q", required),
			)
		}
	}
	return index, nil
}

// formatRow renders a record as an ordered key/value mapping for row-level
// error messages, e.g. {Transaction Date: 07/45/2025, Post Date: ...}.
func formatRow(header, record []string) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, name := range header {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strings.TrimSpace(name))
		b.WriteString(": ")
		if i < len(record) {
			b.WriteString(record[i])
		}
	}
	b.WriteByte('}')
	return b.String()
}

// dedupKey identifies a transaction by its natural key within one file.
func dedupKey(direction models.Direction, title string, amount decimal.Decimal, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s", direction, title, amount.String(), date.Format("2006-01-02"))
}
