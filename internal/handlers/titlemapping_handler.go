package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kopeika/internal/services"
)

// TitleMappingHandler handles the description alias table
type TitleMappingHandler struct {
	mappingService services.TitleMappingServicer
}

// NewTitleMappingHandler creates a new TitleMappingHandler
func NewTitleMappingHandler(mappingService services.TitleMappingServicer) *TitleMappingHandler {
	return &TitleMappingHandler{mappingService: mappingService}
}

// CreateTitleMappingRequest represents the payload for creating an alias
type CreateTitleMappingRequest struct {
	SourceTitle    string `json:"source_title" binding:"required"`
	CanonicalTitle string `json:"canonical_title" binding:"required"`
}

// CreateMapping adds an alias from a raw description to a canonical title
// @Summary     Create a title mapping
// @Tags        title-mappings
// @Accept      json
// @Produce     json
// @Param       request body CreateTitleMappingRequest true "Mapping details"
// @Success     201 {object} models.TitleMapping "Mapping created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     409 {object} ErrorResponse "Duplicate source title"
// @Router      /title-mappings [post]
func (h *TitleMappingHandler) CreateMapping(c *gin.Context) {
	var req CreateTitleMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mapping, err := h.mappingService.CreateMapping(req.SourceTitle, req.CanonicalTitle)
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"mapping": mapping})
}

// ListMappings lists all aliases
// @Summary     List title mappings
// @Tags        title-mappings
// @Produce     json
// @Success     200 {array} models.TitleMapping "Mappings"
// @Router      /title-mappings [get]
func (h *TitleMappingHandler) ListMappings(c *gin.Context) {
	mappings, err := h.mappingService.ListMappings()
	if err != nil {
		respondWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mappings": mappings})
}

// DeleteMapping removes an alias
// @Summary     Delete a title mapping
// @Tags        title-mappings
// @Produce     json
// @Param       id path int true "Mapping ID"
// @Success     204 "Mapping deleted"
// @Failure     404 {object} ErrorResponse "Mapping not found"
// @Router      /title-mappings/{id} [delete]
func (h *TitleMappingHandler) DeleteMapping(c *gin.Context) {
	mappingID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.mappingService.DeleteMapping(mappingID); err != nil {
		respondWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
