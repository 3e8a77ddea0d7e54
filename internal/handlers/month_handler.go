package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kopeika/internal/services"
)

// MonthHandler handles month registry requests
type MonthHandler struct {
	monthService services.MonthServicer
}

// NewMonthHandler creates a new MonthHandler
func NewMonthHandler(monthService services.MonthServicer) *MonthHandler {
	return &MonthHandler{monthService: monthService}
}

// ListMonths handles listing all month buckets
// @Summary     List months
// @Description List all months, newest first
// @Tags        months
// @Produce     json
// @Success     200 {array} models.Month "List of months"
// @Router      /months [get]
func (h *MonthHandler) ListMonths(c *gin.Context) {
	months, err := h.monthService.ListMonths()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"months": months})
}

// DeleteMonth handles deleting an empty month bucket
// @Summary     Delete a month
// @Description Delete a month that has no transactions
// @Tags        months
// @Produce     json
// @Param       id path int true "Month ID"
// @Success     204 "Month deleted"
// @Failure     404 {object} ErrorResponse "Month not found"
// @Failure     409 {object} ErrorResponse "Month has transactions"
// @Router      /months/{id} [delete]
func (h *MonthHandler) DeleteMonth(c *gin.Context) {
	monthID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.monthService.DeleteMonth(monthID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
