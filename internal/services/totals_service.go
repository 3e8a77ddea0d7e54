package services

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "kopeika/internal/errors"
	"kopeika/internal/models"
)

// ChildTotal is one child category's contribution under its parent entry.
type ChildTotal struct {
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Order int             `json:"order"`
}

// CategoryTotal is a top-level entry in the totals tree. Total includes the
// rolled-up child contributions; Children lists them in display order.
type CategoryTotal struct {
	Name     string          `json:"name"`
	Total    decimal.Decimal `json:"total"`
	Children []ChildTotal    `json:"children"`
}

// AnnotatedTransaction is an expense transaction optionally annotated with
// its sign-inverted display amount. RunningTotalAmount is present only for
// running-mode categories; the stored amount is never mutated.
type AnnotatedTransaction struct {
	models.Transaction
	RunningTotalAmount *decimal.Decimal `json:"running_total_amount,omitempty"`
}

// RunningCategoryTotal is a running-mode category with its sign-inverted
// total.
type RunningCategoryTotal struct {
	Category models.Category `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// totalsService aggregates transactions into per-category and rolled-up
// monthly totals.
type totalsService struct {
	db *gorm.DB
}

// NewTotalsService creates a new TotalsServicer.
func NewTotalsService(db *gorm.DB) TotalsServicer {
	return &totalsService{db: db}
}

// categorySum is one row of the grouped aggregation query.
type categorySum struct {
	CategoryID uint
	Total      decimal.Decimal
}

// RegularTotals computes the totals tree for one direction, scoped to a
// month when monthID is non-nil and spanning all months otherwise.
//
// Only regular-mode categories participate; running-mode categories have
// their own view. A category with a parent rolls its sum into the parent's
// entry and appears as a child under it (single-level rollup). Children are
// ordered by display order, then name. The grand total sums the top-level
// entries.
func (s *totalsService) RegularTotals(monthID *uint, direction models.Direction) (map[uint]CategoryTotal, decimal.Decimal, error) {
	if !direction.Valid() {
		return nil, decimal.Zero, apperrors.ErrInvalidDirection
	}

	var categories []models.Category
	if err := s.db.Where("total_type = ?", models.TotalTypeRegular).Find(&categories).Error; err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	regular := make(map[uint]models.Category, len(categories))
	for _, c := range categories {
		regular[c.ID] = c
	}

	query := s.db.Model(&models.Transaction{}).
		Select("category_id, SUM(amount) AS total").
		Where("direction = ?", direction).
		Group("category_id")
	if monthID != nil {
		query = query.Where("month_id = ?", *monthID)
	}

	var sums []categorySum
	if err := query.Scan(&sums).Error; err != nil {
		return nil, decimal.Zero, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	tree := make(map[uint]CategoryTotal)
	for _, sum := range sums {
		category, ok := regular[sum.CategoryID]
		if !ok {
			// Running-mode category: excluded from this view entirely.
			continue
		}

		// A category whose parent is regular rolls into the parent; anything
		// else is its own top-level entry.
		if category.ParentID != nil {
			if parent, ok := regular[*category.ParentID]; ok {
				entry := tree[parent.ID]
				entry.Name = parent.Name
				entry.Total = entry.Total.Add(sum.Total)
				entry.Children = append(entry.Children, ChildTotal{
					Name:  category.Name,
					Total: sum.Total,
					Order: category.Order,
				})
				tree[parent.ID] = entry
				continue
			}
		}

		entry := tree[category.ID]
		entry.Name = category.Name
		entry.Total = entry.Total.Add(sum.Total)
		tree[category.ID] = entry
	}

	grandTotal := decimal.Zero
	for id, entry := range tree {
		sort.Slice(entry.Children, func(i, j int) bool {
			if entry.Children[i].Order != entry.Children[j].Order {
				return entry.Children[i].Order < entry.Children[j].Order
			}
			return entry.Children[i].Name < entry.Children[j].Name
		})
		if entry.Children == nil {
			entry.Children = []ChildTotal{}
		}
		tree[id] = entry
		grandTotal = grandTotal.Add(entry.Total)
	}

	return tree, grandTotal, nil
}

// RunningTransactions returns the expense transactions of a category. For a
// running-mode category each transaction carries its negated display
// amount; for any other category the transactions come back unannotated.
func (s *totalsService) RunningTransactions(categoryID uint) ([]AnnotatedTransaction, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCategoryNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var transactions []models.Transaction
	if err := s.db.Where("category_id = ? AND direction = ?", categoryID, models.DirectionExpense).
		Order("date DESC, title, amount").
		Find(&transactions).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	annotated := make([]AnnotatedTransaction, len(transactions))
	for i, t := range transactions {
		annotated[i] = AnnotatedTransaction{Transaction: t}
		if category.TotalType == models.TotalTypeRunning {
			negated := t.Amount.Neg()
			annotated[i].RunningTotalAmount = &negated
		}
	}
	return annotated, nil
}

// RunningCategoryTotals lists every running-mode category with the
// sign-inverted sum of its expense transactions.
func (s *totalsService) RunningCategoryTotals() ([]RunningCategoryTotal, error) {
	var categories []models.Category
	if err := s.db.Where("total_type = ?", models.TotalTypeRunning).
		Order("\"order\", name").
		Find(&categories).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	totals := make([]RunningCategoryTotal, 0, len(categories))
	for _, category := range categories {
		var sums []categorySum
		if err := s.db.Model(&models.Transaction{}).
			Select("category_id, SUM(amount) AS total").
			Where("category_id = ? AND direction = ?", category.ID, models.DirectionExpense).
			Group("category_id").
			Scan(&sums).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		total := decimal.Zero
		if len(sums) > 0 {
			total = sums[0].Total.Neg()
		}
		totals = append(totals, RunningCategoryTotal{Category: category, Total: total})
	}
	return totals, nil
}
