package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"kopeika/internal/models"
	"kopeika/internal/services"
)

// TotalsHandler handles the aggregation read path
type TotalsHandler struct {
	totalsService services.TotalsServicer
	monthService  services.MonthServicer
}

// NewTotalsHandler creates a new TotalsHandler
func NewTotalsHandler(totalsService services.TotalsServicer, monthService services.MonthServicer) *TotalsHandler {
	return &TotalsHandler{totalsService: totalsService, monthService: monthService}
}

// GetTotals computes the monthly totals trees for both directions
// @Summary     Monthly category totals
// @Description Per-category and rolled-up totals for a month; running-mode categories are excluded
// @Tags        totals
// @Produce     json
// @Param       month query string false "Month slug; defaults to the current month"
// @Success     200 {object} map[string]interface{} "Expense and earning totals trees"
// @Failure     404 {object} ErrorResponse "Month not found"
// @Router      /totals [get]
func (h *TotalsHandler) GetTotals(c *gin.Context) {
	var month *models.Month
	var err error
	if slug := c.Query("month"); slug != "" {
		month, err = h.monthService.GetBySlug(slug)
	} else {
		month, err = h.monthService.GetForDate(nil, time.Now())
	}
	if err != nil {
		respondWithError(c, err)
		return
	}

	expenseTree, expenseTotal, err := h.totalsService.RegularTotals(&month.ID, models.DirectionExpense)
	if err != nil {
		respondWithError(c, err)
		return
	}
	earningTree, earningTotal, err := h.totalsService.RegularTotals(&month.ID, models.DirectionEarning)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"month":          month,
		"expense_totals": expenseTree,
		"expense_total":  expenseTotal,
		"earning_totals": earningTree,
		"earning_total":  earningTotal,
		"total":          earningTotal.Sub(expenseTotal),
	})
}

// GetRunningTotals lists running-mode categories with annotated transactions
// @Summary     Running totals
// @Description Running-mode categories with sign-inverted totals and transaction lists
// @Tags        totals
// @Produce     json
// @Success     200 {array} services.RunningCategoryTotal "Running categories"
// @Router      /totals/running [get]
func (h *TotalsHandler) GetRunningTotals(c *gin.Context) {
	categories, err := h.totalsService.RunningCategoryTotals()
	if err != nil {
		respondWithError(c, err)
		return
	}

	type runningCategory struct {
		services.RunningCategoryTotal
		Transactions []services.AnnotatedTransaction `json:"transactions"`
	}

	result := make([]runningCategory, 0, len(categories))
	for _, entry := range categories {
		transactions, err := h.totalsService.RunningTransactions(entry.Category.ID)
		if err != nil {
			respondWithError(c, err)
			return
		}
		result = append(result, runningCategory{RunningCategoryTotal: entry, Transactions: transactions})
	}
	c.JSON(http.StatusOK, gin.H{"categories": result})
}
