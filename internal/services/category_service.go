package services

import (
	"errors"
	"strings"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	apperrors "kopeika/internal/errors"
	"kopeika/internal/models"
)

// fallbackCategoryName is the substring that marks a category as the
// catch-all for rows whose category name has no exact match.
const fallbackCategoryName = "Uncategorized"

// categoryService handles category-related business logic.
type categoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a new CategoryServicer.
func NewCategoryService(db *gorm.DB) CategoryServicer {
	return &categoryService{db: db}
}

// CreateCategory creates a new category. The slug is derived from the name.
func (s *categoryService) CreateCategory(
	name string,
	direction models.Direction,
	order int,
	totalType models.TotalType,
	parentID *uint,
) (*models.Category, error) {
	if name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "category name is required")
	}
	if !direction.Valid() {
		return nil, apperrors.ErrInvalidDirection
	}

	// If parentID is provided, check that it exists
	if parentID != nil {
		var parent models.Category
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	category := &models.Category{
		Name:      name,
		Slug:      slug.Make(name),
		Direction: direction,
		Order:     order,
		TotalType: totalType,
		ParentID:  parentID,
	}
	if category.TotalType == "" {
		category.TotalType = models.TotalTypeRegular
	}

	if err := s.db.Create(category).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateCategory
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return category, nil
}

// ListCategories returns all categories in display order.
func (s *categoryService) ListCategories() ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Order("\"order\", name").Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return categories, nil
}

// GetCategoryByID retrieves a category by ID.
func (s *categoryService) GetCategoryByID(categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &category, nil
}

// UpdateCategory updates an existing category.
func (s *categoryService) UpdateCategory(
	categoryID uint,
	name string,
	order *int,
	totalType models.TotalType,
	parentID *uint,
) (*models.Category, error) {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return nil, err
	}

	if parentID != nil {
		if *parentID == categoryID {
			return nil, apperrors.ErrSelfParentCategory
		}
		var parent models.Category
		if err := s.db.First(&parent, *parentID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.WithMessage(apperrors.ErrCategoryNotFound, "parent category not found")
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}

	updates := make(map[string]interface{})
	if name != "" {
		updates["name"] = name
		updates["slug"] = slug.Make(name)
	}
	if order != nil {
		updates["order"] = *order
	}
	if totalType != "" {
		updates["total_type"] = totalType
	}
	if parentID != nil {
		updates["parent_id"] = parentID
	}

	if len(updates) > 0 {
		if err := s.db.Model(category).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperrors.ErrDuplicateCategory
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return category, nil
}

// DeleteCategory deletes a category. Children are never cascade-deleted:
// their parent reference is cleared in the same database transaction.
func (s *categoryService) DeleteCategory(categoryID uint) error {
	category, err := s.GetCategoryByID(categoryID)
	if err != nil {
		return err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Category{}).
			Where("parent_id = ?", categoryID).
			Update("parent_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
	if err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// Resolve maps a free-text category name and direction to a known Category.
// An exact case-insensitive name match wins regardless of direction;
// otherwise the "Uncategorized" fallback for the direction is used. Returns
// nil (and no error) when no fallback category exists at all.
func (s *categoryService) Resolve(name string, direction models.Direction) (*models.Category, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snapshot.Resolve(name, direction), nil
}

// Snapshot loads all categories once for repeated in-memory resolution.
// The ingestion pipeline takes one snapshot per call instead of querying
// per row.
func (s *categoryService) Snapshot() (*CategorySnapshot, error) {
	categories, err := s.ListCategories()
	if err != nil {
		return nil, err
	}
	return &CategorySnapshot{categories: categories}, nil
}

// CategorySnapshot is a read-only view of the category table, ordered by
// (order, name). Safe for concurrent readers.
type CategorySnapshot struct {
	categories []models.Category
}

// Resolve implements the fallback-categorization rules over the snapshot:
// exact case-insensitive match first; then categories whose name contains
// "Uncategorized", preferring one that also names the direction; then the
// first fallback candidate; nil when there is no candidate.
func (cs *CategorySnapshot) Resolve(name string, direction models.Direction) *models.Category {
	for i := range cs.categories {
		if strings.EqualFold(cs.categories[i].Name, name) {
			return &cs.categories[i]
		}
	}

	var candidates []*models.Category
	for i := range cs.categories {
		if containsFold(cs.categories[i].Name, fallbackCategoryName) {
			candidates = append(candidates, &cs.categories[i])
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) > 1 {
		for _, c := range candidates {
			if containsFold(c.Name, string(direction)) {
				return c
			}
		}
	}
	return candidates[0]
}

// containsFold reports whether s contains substr, case-insensitively.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
