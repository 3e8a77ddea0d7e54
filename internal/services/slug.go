package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/gosimple/slug"
	"gorm.io/gorm"

	apperrors "kopeika/internal/errors"
	"kopeika/internal/models"
)

// transactionSlugBase returns the shared slug prefix for a transaction:
// the slugified title followed by the ISO date.
func transactionSlugBase(title string, date time.Time) string {
	return fmt.Sprintf("%s-%s", slug.Make(title), date.Format("2006-01-02"))
}

// ingestionSlug derives the slug for a row created by the CSV pipeline:
// base plus the row's ordinal position in the file.
func ingestionSlug(title string, date time.Time, rowIndex int) string {
	return fmt.Sprintf("%s-%d", transactionSlugBase(title, date), rowIndex)
}

// randomSuffixSlug derives a slug with a random 10-hex-digit suffix. Used by
// the copy path, and as the ingestion fallback when the ordinal form is
// already taken by an earlier import.
func randomSuffixSlug(title string, date time.Time) string {
	var buf [5]byte
	// rand.Read on crypto/rand never fails on supported platforms
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("%s-%s", transactionSlugBase(title, date), hex.EncodeToString(buf[:]))
}

// uniqueManualSlug derives the slug for a manually saved transaction.
// The base form is used as-is when free; on collision a numeric suffix is
// incremented (_2, _3, ...) against every existing slug containing the base,
// so re-saving an unrelated transaction never reuses a suffix.
//
// excludeID skips the row being updated, so an edit that keeps its own slug
// does not collide with itself.
func uniqueManualSlug(tx *gorm.DB, direction models.Direction, title string, date time.Time, excludeID uint) (string, error) {
	base := transactionSlugBase(title, date)

	var similar []string
	q := tx.Model(&models.Transaction{}).
		Where("direction = ? AND slug LIKE ?", direction, "%"+base+"%")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Pluck("slug", &similar).Error; err != nil {
		return "", apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	taken := make(map[string]bool, len(similar))
	for _, s := range similar {
		taken[s] = true
	}

	if !taken[base] {
		return base, nil
	}
	for i := 2; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !taken[candidate] {
			return candidate, nil
		}
	}
}

// resolveStagedSlugs assigns final slugs to staged ingestion rows. Each row
// gets the ordinal form; rows whose ordinal slug already exists in storage
// (a previous import of an overlapping file can produce the identical base
// and ordinal) fall back to the random-suffix scheme.
func resolveStagedSlugs(tx *gorm.DB, direction models.Direction, staged []*models.Transaction) error {
	if len(staged) == 0 {
		return nil
	}

	candidates := make([]string, len(staged))
	for i, t := range staged {
		candidates[i] = t.Slug
	}

	var existing []string
	if err := tx.Model(&models.Transaction{}).
		Where("direction = ? AND slug IN ?", direction, candidates).
		Pluck("slug", &existing).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if len(existing) == 0 {
		return nil
	}

	taken := make(map[string]bool, len(existing))
	for _, s := range existing {
		taken[s] = true
	}
	for _, t := range staged {
		if taken[t.Slug] {
			t.Slug = randomSuffixSlug(t.Title, t.Date)
		}
	}
	return nil
}
