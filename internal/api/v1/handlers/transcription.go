package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"media-notes/internal/api/middleware"
	"media-notes/internal/api/v1/dto"
	"media-notes/internal/api/v1/services"
)

// TranscriptionHandler handles transcription-related API endpoints
type TranscriptionHandler struct {
	service services.TranscriptionService
}

// NewTranscriptionHandler creates a new transcription handler
func NewTranscriptionHandler(service services.TranscriptionService) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
	}
}

// Create handles POST /api/v1/transcriptions
//
// @Summary Save a transcription
// @Description Stores the given title, transcript and notes as a new row. Free of charge.
// @Tags transcriptions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param transcription body dto.SaveTranscriptionRequest true "Transcription data"
// @Success 201 {object} dto.TranscriptionResponse "Transcription saved"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 503 {object} errors.APIError "Storage unavailable"
// @Router /transcriptions [post]
func (h *TranscriptionHandler) Create(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}

	var req dto.SaveTranscriptionRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.SaveTranscription(c.Request.Context(), accountID, req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Get handles GET /api/v1/transcriptions/:id
//
// @Summary Get transcription by ID
// @Description Returns the full record when it belongs to the caller
// @Tags transcriptions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transcription ID" minimum(1)
// @Success 200 {object} dto.TranscriptionResponse "Transcription details"
// @Failure 400 {object} errors.APIError "Bad request - invalid ID"
// @Failure 404 {object} errors.APIError "Transcription not found"
// @Router /transcriptions/{id} [get]
func (h *TranscriptionHandler) Get(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	response, err := h.service.GetTranscription(c.Request.Context(), accountID, id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// List handles GET /api/v1/transcriptions
//
// @Summary List saved transcriptions
// @Description Returns id, title and creation time of the caller's transcriptions, newest first
// @Tags transcriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.ListTranscriptionsResponse "History"
// @Header 200 {string} X-Total-Count "Total number of transcriptions"
// @Router /transcriptions [get]
func (h *TranscriptionHandler) List(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}

	response, err := h.service.ListTranscriptions(c.Request.Context(), accountID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(response.Total))
	c.JSON(http.StatusOK, response)
}

// Download handles GET /api/v1/transcriptions/:id/download
//
// @Summary Download the summary file
// @Tags transcriptions
// @Produce plain
// @Security BearerAuth
// @Param id path int true "Transcription ID" minimum(1)
// @Success 200 {string} string "Summary text"
// @Failure 404 {object} errors.APIError "Transcription not found"
// @Router /transcriptions/{id}/download [get]
func (h *TranscriptionHandler) Download(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	file, err := h.service.DownloadSummary(c.Request.Context(), accountID, id)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", file.Content)
}
