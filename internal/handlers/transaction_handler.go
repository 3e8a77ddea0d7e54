package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"kopeika/internal/models"
	"kopeika/internal/pagination"
	"kopeika/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	monthService       services.MonthServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, monthService services.MonthServicer) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		monthService:       monthService,
	}
}

// TransactionRequest represents the payload for creating or updating a
// transaction through the manual-edit path. Slug and month are derived
// server-side and cannot be supplied.
type TransactionRequest struct {
	Direction   models.Direction `json:"direction" binding:"omitempty,direction"`
	Title       string           `json:"title"`
	Amount      decimal.Decimal  `json:"amount"`
	Date        string           `json:"date"`
	CategoryID  uint             `json:"category_id"`
	Description string           `json:"description"`
	Pending     bool             `json:"pending"`
}

// CopyTransactionsRequest represents the payload for copying transactions
// to a new date. IDs are strings to mirror form submissions; non-integer
// values are reported as a validation error.
type CopyTransactionsRequest struct {
	Direction            string   `json:"direction" form:"direction"`
	SelectedTransactions []string `json:"selected_transactions" form:"selected_transactions"`
	Date                 string   `json:"date" form:"date"`
}

// CreateTransaction handles the manual creation of a transaction
// @Summary     Create a transaction
// @Description Create a transaction; slug and month association are derived from title and date
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body TransactionRequest true "Transaction details"
// @Success     201 {object} models.Transaction "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := h.parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.CreateTransaction(
		req.Direction, req.Title, req.Amount, date, req.CategoryID, req.Description, req.Pending)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transaction": transaction})
}

// UpdateTransaction handles editing a transaction
// @Summary     Update a transaction
// @Description Edit a transaction; the month association is re-derived from the date on every save
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Param       request body TransactionRequest true "Fields to update"
// @Success     200 {object} models.Transaction "Updated transaction"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	date, err := h.parseOptionalDate(req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.UpdateTransaction(
		transactionID, req.Title, req.Amount, date, req.CategoryID, req.Description, req.Pending)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// GetTransactionByID handles fetching a single transaction
// @Summary     Get transaction by ID
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     200 {object} models.Transaction "Transaction details"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete a transaction
// @Tags        transactions
// @Produce     json
// @Param       id path int true "Transaction ID"
// @Success     204 "Transaction deleted"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(transactionID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListTransactions handles listing a month's transactions of one direction.
// Without a month parameter it falls back to the current calendar month,
// creating its bucket on first use.
// @Summary     List transactions for a month
// @Tags        transactions
// @Produce     json
// @Param       direction query string true "Transaction direction (expense/earning)"
// @Param       month query string false "Month slug; defaults to the current month"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} pagination.PageResponse[models.Transaction] "Transactions"
// @Failure     400 {object} ErrorResponse "Invalid direction"
// @Failure     404 {object} ErrorResponse "Month not found"
// @Router      /transactions [get]
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	month, err := h.resolveMonth(c.Query("month"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	direction := models.Direction(c.Query("direction"))
	result, err := h.transactionService.GetMonthTransactions(month.ID, direction, page)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"month": month, "transactions": result})
}

// ListTitles handles listing distinct transaction titles for a direction
// @Summary     List distinct transaction titles
// @Description Distinct titles of one direction, used as an autocomplete source
// @Tags        transactions
// @Produce     json
// @Param       direction query string true "Transaction direction (expense/earning)"
// @Success     200 {array} string "Titles"
// @Failure     400 {object} ErrorResponse "Invalid direction"
// @Router      /transactions/titles [get]
func (h *TransactionHandler) ListTitles(c *gin.Context) {
	titles, err := h.transactionService.DistinctTitles(models.Direction(c.Query("direction")))
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"titles": titles})
}

// PreviewCopy validates a copy selection and returns the source
// transactions for confirmation. Validation failures come back as a list
// of user-facing messages.
// @Summary     Preview copying transactions
// @Tags        transactions
// @Produce     json
// @Param       direction query string true "Transaction direction (expense/earning)"
// @Param       selected_transactions query []string false "Transaction IDs"
// @Success     200 {array} models.Transaction "Transactions to copy"
// @Failure     400 {object} ErrorResponse "Validation errors"
// @Router      /transactions/copy [get]
func (h *TransactionHandler) PreviewCopy(c *gin.Context) {
	ids, ok := h.parseSelectedIDs(c, c.QueryArray("selected_transactions"))
	if !ok {
		return
	}

	transactions, err := h.transactionService.ValidateCopy(models.Direction(c.Query("direction")), ids)
	if err != nil {
		h.respondCopyErrors(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": transactions, "errors": []string{}})
}

// CopyTransactions clones the selected transactions to a new date
// @Summary     Copy transactions to a new date
// @Description Create one copy per selected transaction, dated at the given date
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body CopyTransactionsRequest true "Copy request"
// @Success     201 {object} map[string]int "Number of transactions copied"
// @Failure     400 {object} ErrorResponse "Validation errors"
// @Router      /transactions/copy [post]
func (h *TransactionHandler) CopyTransactions(c *gin.Context) {
	var req CopyTransactionsRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ids, ok := h.parseSelectedIDs(c, req.SelectedTransactions)
	if !ok {
		return
	}

	created, err := h.transactionService.CopyTransactions(models.Direction(req.Direction), ids, req.Date)
	if err != nil {
		h.respondCopyErrors(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"transactions_copied": created})
}

// parseSelectedIDs converts the submitted id strings, reporting the
// validation message for non-integer values. The boolean is false when a
// response has already been written.
func (h *TransactionHandler) parseSelectedIDs(c *gin.Context, raw []string) ([]uint, bool) {
	ids := make([]uint, 0, len(raw))
	for _, value := range raw {
		id, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []string{"The selected transaction ids must be integers."}})
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

// respondCopyErrors renders copy validation failures as an itemized error
// list, matching the interactive contract of the copy screen.
func (h *TransactionHandler) respondCopyErrors(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": []string{err.Error()}})
}

// resolveMonth finds the month by slug, or get-or-creates the current
// calendar month when no slug was given.
func (h *TransactionHandler) resolveMonth(monthSlug string) (*models.Month, error) {
	if monthSlug != "" {
		return h.monthService.GetBySlug(monthSlug)
	}
	return h.monthService.GetForDate(nil, time.Now())
}

// parseOptionalDate parses a request date, allowing it to be absent.
func (h *TransactionHandler) parseOptionalDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return services.ParseDate(value)
}
