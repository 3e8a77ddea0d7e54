package services

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopeika/internal/errors"
	"kopeika/internal/models"
	"kopeika/internal/pagination"
)

// transactionService handles the manual write path, listings, and the
// copy-forward operation.
type transactionService struct {
	db     *gorm.DB
	months MonthServicer
}

// NewTransactionService creates a new TransactionServicer.
func NewTransactionService(db *gorm.DB, months MonthServicer) TransactionServicer {
	return &transactionService{db: db, months: months}
}

// CreateTransaction creates a transaction through the manual-edit path.
// Slug and month association are derived here, never taken verbatim from
// the caller.
func (s *transactionService) CreateTransaction(
	direction models.Direction,
	title string,
	amount decimal.Decimal,
	date time.Time,
	categoryID uint,
	description string,
	pending bool,
) (*models.Transaction, error) {
	if !direction.Valid() {
		return nil, apperrors.ErrInvalidDirection
	}
	if title == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if !amount.IsPositive() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
	}
	if date.IsZero() {
		date = time.Now().Truncate(24 * time.Hour)
	}

	category, err := s.categoryForDirection(categoryID, direction)
	if err != nil {
		return nil, err
	}

	transaction := &models.Transaction{
		Direction:   direction,
		Title:       title,
		Date:        date,
		CategoryID:  category.ID,
		Amount:      amount,
		Description: description,
		Pending:     pending && direction == models.DirectionExpense,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyDerivedFields(tx, transaction); err != nil {
			return err
		}
		return tx.Create(transaction).Error
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return transaction, nil
}

// UpdateTransaction edits an existing transaction. The month association is
// re-derived from the (possibly changed) date on every save; the slug is
// kept unless it would now collide, in which case the numeric-increment
// scheme assigns a fresh one.
func (s *transactionService) UpdateTransaction(
	transactionID uint,
	title string,
	amount decimal.Decimal,
	date time.Time,
	categoryID uint,
	description string,
	pending bool,
) (*models.Transaction, error) {
	transaction, err := s.GetTransactionByID(transactionID)
	if err != nil {
		return nil, err
	}

	if title != "" {
		transaction.Title = title
	}
	if !amount.IsZero() {
		if !amount.IsPositive() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "amount must be greater than zero")
		}
		transaction.Amount = amount
	}
	if !date.IsZero() {
		transaction.Date = date
	}
	if categoryID != 0 {
		category, err := s.categoryForDirection(categoryID, transaction.Direction)
		if err != nil {
			return nil, err
		}
		transaction.CategoryID = category.ID
	}
	transaction.Description = description
	transaction.Pending = pending && transaction.Direction == models.DirectionExpense

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.applyDerivedFields(tx, transaction); err != nil {
			return err
		}
		return tx.Save(transaction).Error
	})
	if err != nil {
		return nil, asAppError(err)
	}
	return transaction, nil
}

// applyDerivedFields computes the save-time derived fields shared by both
// transaction variants: a unique slug and the Month matching the date.
func (s *transactionService) applyDerivedFields(tx *gorm.DB, t *models.Transaction) error {
	needsSlug := t.Slug == ""
	if !needsSlug {
		// An edit may have moved another row onto this slug.
		var count int64
		if err := tx.Model(&models.Transaction{}).
			Where("direction = ? AND slug = ? AND id <> ?", t.Direction, t.Slug, t.ID).
			Count(&count).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		needsSlug = count > 0
	}
	if needsSlug {
		unique, err := uniqueManualSlug(tx, t.Direction, t.Title, t.Date, t.ID)
		if err != nil {
			return err
		}
		t.Slug = unique
	}

	month, err := s.months.GetOrCreate(tx, t.Date.Year(), t.Date.Month())
	if err != nil {
		return err
	}
	t.MonthID = month.ID
	return nil
}

// GetTransactionByID retrieves a transaction by ID.
func (s *transactionService) GetTransactionByID(transactionID uint) (*models.Transaction, error) {
	var transaction models.Transaction
	if err := s.db.Preload("Category").First(&transaction, transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTransactionNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &transaction, nil
}

// GetMonthTransactions lists transactions of one direction in a month,
// most recent first.
func (s *transactionService) GetMonthTransactions(monthID uint, direction models.Direction, page pagination.PageRequest) (*pagination.PageResponse[models.Transaction], error) {
	if !direction.Valid() {
		return nil, apperrors.ErrInvalidDirection
	}
	page.Defaults()

	base := s.db.Model(&models.Transaction{}).
		Where("month_id = ? AND direction = ?", monthID, direction)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := base.Preload("Category").
		Scopes(pagination.Paginate(page)).
		Order("date DESC, title, amount").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(transactions, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// DistinctTitles returns the distinct transaction titles for a direction,
// alphabetically. Used as an autocomplete source for the entry form.
func (s *transactionService) DistinctTitles(direction models.Direction) ([]string, error) {
	if !direction.Valid() {
		return nil, apperrors.ErrInvalidDirection
	}
	var titles []string
	if err := s.db.Model(&models.Transaction{}).
		Where("direction = ?", direction).
		Distinct("title").
		Order("title").
		Pluck("title", &titles).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return titles, nil
}

// DeleteTransaction removes a transaction.
func (s *transactionService) DeleteTransaction(transactionID uint) error {
	res := s.db.Delete(&models.Transaction{}, transactionID)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTransactionNotFound
	}
	return nil
}

// ValidateCopy checks a copy request before any write: the direction must
// be known and every selected id must resolve to a transaction of that
// direction. It returns the source transactions for preview rendering.
func (s *transactionService) ValidateCopy(direction models.Direction, transactionIDs []uint) ([]models.Transaction, error) {
	if !direction.Valid() {
		return nil, apperrors.WithMessage(
			apperrors.ErrInvalidDirection,
			"You must choose a valid direction (either 'expense' or 'earning').",
		)
	}

	var transactions []models.Transaction
	if len(transactionIDs) > 0 {
		if err := s.db.Preload("Category").
			Where("direction = ? AND id IN ?", direction, transactionIDs).
			Find(&transactions).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	// A single message covers any number of missing ids.
	if len(transactions) != len(transactionIDs) {
		return nil, apperrors.WithMessage(
			apperrors.ErrTransactionNotFound,
			"One or more of the selected transactions does not exist.",
		)
	}
	return transactions, nil
}

// CopyTransactions clones the selected transactions to a new date, copying
// category, title, amount, and description, deriving a fresh random-suffix
// slug, and associating each copy with the Month for the new date. An empty
// selection is valid and copies nothing.
func (s *transactionService) CopyTransactions(direction models.Direction, transactionIDs []uint, newDate string) (int, error) {
	sources, err := s.ValidateCopy(direction, transactionIDs)
	if err != nil {
		return 0, err
	}

	date, err := ParseDateLax(newDate)
	if err != nil {
		return 0, err
	}

	if len(sources) == 0 {
		return 0, nil
	}

	copies := make([]*models.Transaction, 0, len(sources))
	err = s.db.Transaction(func(tx *gorm.DB) error {
		month, err := s.months.GetOrCreate(tx, date.Year(), date.Month())
		if err != nil {
			return err
		}
		for _, src := range sources {
			copies = append(copies, &models.Transaction{
				Direction:   src.Direction,
				Title:       src.Title,
				Slug:        randomSuffixSlug(src.Title, date),
				Date:        date,
				MonthID:     month.ID,
				CategoryID:  src.CategoryID,
				Amount:      src.Amount,
				Description: src.Description,
			})
		}
		return tx.Create(&copies).Error
	})
	if err != nil {
		return 0, asAppError(err)
	}
	return len(copies), nil
}

// categoryForDirection fetches a category and checks it permits the given
// transaction direction.
func (s *transactionService) categoryForDirection(categoryID uint, direction models.Direction) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if category.Direction != direction {
		return nil, apperrors.WithMessage(
			apperrors.ErrInvalidInput,
			"category direction does not match the transaction direction",
		)
	}
	return &category, nil
}

// asAppError passes AppErrors through and wraps anything else as internal.
func asAppError(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return apperrors.Wrap(apperrors.ErrInternalServer, err)
}
