package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "kopeika/internal/errors"
	"kopeika/internal/models"
)

// titleMappingService maintains the alias table mapping raw statement
// descriptions to canonical titles. The table is administratively edited
// and read-only during ingestion.
type titleMappingService struct {
	db *gorm.DB
}

// NewTitleMappingService creates a new TitleMappingServicer.
func NewTitleMappingService(db *gorm.DB) TitleMappingServicer {
	return &titleMappingService{db: db}
}

// CreateMapping adds a new source-to-canonical alias.
func (s *titleMappingService) CreateMapping(sourceTitle, canonicalTitle string) (*models.TitleMapping, error) {
	if sourceTitle == "" || canonicalTitle == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "source and canonical titles are required")
	}

	mapping := &models.TitleMapping{
		SourceTitle:    sourceTitle,
		CanonicalTitle: canonicalTitle,
	}
	if err := s.db.Create(mapping).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrDuplicateTitleMapping
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return mapping, nil
}

// ListMappings returns all aliases ordered by source title.
func (s *titleMappingService) ListMappings() ([]models.TitleMapping, error) {
	var mappings []models.TitleMapping
	if err := s.db.Order("source_title").Find(&mappings).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return mappings, nil
}

// DeleteMapping removes an alias.
func (s *titleMappingService) DeleteMapping(mappingID uint) error {
	res := s.db.Delete(&models.TitleMapping{}, mappingID)
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrTitleMappingNotFound
	}
	return nil
}

// AliasTable loads the full alias table into a map for per-ingestion reuse.
func (s *titleMappingService) AliasTable() (map[string]string, error) {
	mappings, err := s.ListMappings()
	if err != nil {
		return nil, err
	}
	table := make(map[string]string, len(mappings))
	for _, m := range mappings {
		table[m.SourceTitle] = m.CanonicalTitle
	}
	return table, nil
}

// MappedTitle returns the canonical title for a raw description, or the
// description unchanged when no alias exists. Lookup is an exact,
// case-sensitive match; no fuzzy matching or case folding.
func MappedTitle(description string, aliases map[string]string) string {
	if canonical, ok := aliases[description]; ok {
		return canonical
	}
	return description
}
