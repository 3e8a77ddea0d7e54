package services

import (
	"errors"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	apperrors "kopeika/internal/errors"
	"kopeika/internal/models"
)

// monthService maintains the registry of calendar-month buckets.
type monthService struct {
	db *gorm.DB
}

// NewMonthService creates a new MonthServicer.
func NewMonthService(db *gorm.DB) MonthServicer {
	return &monthService{db: db}
}

// GetOrCreate returns the Month row for (year, month), creating it on first
// use. Concurrent first-use of the same pair is resolved by letting the
// unique constraint reject the second insert and refetching, never by
// locking.
func (s *monthService) GetOrCreate(tx *gorm.DB, year int, month time.Month) (*models.Month, error) {
	if tx == nil {
		tx = s.db
	}

	var existing models.Month
	err := tx.Where("month = ? AND year = ?", int(month), year).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	name := MonthName(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC))
	created := models.Month{
		Month: int(month),
		Year:  year,
		Name:  name,
		Slug:  slug.Make(name),
	}
	err = tx.Create(&created).Error
	if err == nil {
		return &created, nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Another caller created the row between our get and create.
	if err := tx.Where("month = ? AND year = ?", int(month), year).First(&existing).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &existing, nil
}

// GetForDate returns the Month row covering the given date, creating it if
// needed.
func (s *monthService) GetForDate(tx *gorm.DB, date time.Time) (*models.Month, error) {
	return s.GetOrCreate(tx, date.Year(), date.Month())
}

// GetBySlug retrieves a Month by its slug.
func (s *monthService) GetBySlug(monthSlug string) (*models.Month, error) {
	var month models.Month
	if err := s.db.Where("slug = ?", monthSlug).First(&month).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMonthNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &month, nil
}

// ListMonths returns all months, newest first.
func (s *monthService) ListMonths() ([]models.Month, error) {
	var months []models.Month
	if err := s.db.Order("year DESC, month DESC").Find(&months).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return months, nil
}

// DeleteMonth removes an empty month bucket. A month that still has
// transactions is delete-protected.
func (s *monthService) DeleteMonth(monthID uint) error {
	var month models.Month
	if err := s.db.First(&month, monthID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrMonthNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	if err := s.db.Model(&models.Transaction{}).Where("month_id = ?", monthID).Count(&count).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return apperrors.ErrMonthInUse
	}

	if err := s.db.Delete(&month).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}
