package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"kopeika/internal/config"
	apperrors "kopeika/internal/errors"
	"kopeika/internal/services"
)

// ImportHandler handles CSV statement uploads and the import audit trail
type ImportHandler struct {
	ingestService services.IngestServicer
}

// NewImportHandler creates a new ImportHandler
func NewImportHandler(ingestService services.IngestServicer) *ImportHandler {
	return &ImportHandler{ingestService: ingestService}
}

// UploadCSV ingests an uploaded bank-statement CSV. The audit row is
// created before the pipeline runs so a failed ingestion still leaves a
// record with its counters.
// @Summary     Upload a statement CSV
// @Description Parse, deduplicate, and persist a CSV export; persistence is all-or-nothing per file
// @Tags        imports
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "CSV file"
// @Success     201 {object} map[string]interface{} "Transactions created"
// @Failure     400 {object} ErrorResponse "Row errors or malformed file"
// @Router      /imports [post]
func (h *ImportHandler) UploadCSV(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A CSV file is required."})
		return
	}
	if fileHeader.Size > config.Get().MaxUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The uploaded file is too large."})
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".csv") {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrMalformedCSV, "Only .csv files can be imported."))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondWithError(c, apperrors.Wrap(apperrors.ErrInternalServer, err))
		return
	}
	defer file.Close()

	imp, err := h.ingestService.CreateImport(fileHeader.Filename)
	if err != nil {
		respondWithError(c, err)
		return
	}

	created, ingestErrs, err := h.ingestService.Ingest(imp, file)
	if err != nil {
		respondWithError(c, err)
		return
	}
	if len(ingestErrs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  fmt.Sprintf("Error(s) processing file: %s", strings.Join(ingestErrs, ", ")),
			"errors": ingestErrs,
			"import": imp,
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":              fmt.Sprintf("CSV file uploaded. %d transaction(s) created.", created),
		"transactions_created": created,
		"import":               imp,
	})
}

// ListImports lists the CSV import audit records
// @Summary     List CSV imports
// @Tags        imports
// @Produce     json
// @Success     200 {array} models.CSVImport "Import audit records"
// @Router      /imports [get]
func (h *ImportHandler) ListImports(c *gin.Context) {
	imports, err := h.ingestService.ListImports()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imports": imports})
}
