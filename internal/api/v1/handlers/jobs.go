package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"media-notes/internal/api/errors"
	"media-notes/internal/api/middleware"
	"media-notes/internal/api/v1/dto"
	"media-notes/internal/api/v1/services"
	"media-notes/internal/app/model"
)

// JobHandler runs transcription and analysis jobs
type JobHandler struct {
	service services.JobService
}

func NewJobHandler(service services.JobService) *JobHandler {
	return &JobHandler{service: service}
}

// Submit handles POST /api/v1/jobs
//
// @Summary Transcribe media and generate notes
// @Description Consumes one credit. The credit is returned when the job fails.
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file false "Audio or video file"
// @Param url formData string false "Remote media URL, used when no file is sent"
// @Param input_language formData string false "Spoken language" Enums(auto,pl,en,de,fr,es)
// @Param output_language formData string false "Notes language" Enums(pl,en,de,fr,es)
// @Param title formData string false "Title of the saved result"
// @Success 200 {object} dto.JobResponse "Job completed"
// @Failure 402 {object} errors.APIError "No credits left"
// @Failure 413 {object} errors.APIError "Media too large"
// @Failure 415 {object} errors.APIError "Unsupported format"
// @Failure 422 {object} errors.APIError "Corrupt media or invalid input"
// @Failure 502 {object} errors.APIError "Fetch, transcription or summarization failed"
// @Router /jobs [post]
func (h *JobHandler) Submit(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}

	var form dto.SubmitJobForm
	if err := middleware.ValidateForm(c, &form); err != nil {
		middleware.HandleError(c, err)
		return
	}

	var source model.MediaSource
	file, header, err := c.Request.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		if strings.TrimSpace(form.URL) != "" {
			middleware.HandleError(c, errors.NewValidationError("Send either a file or a url",
				map[string]string{"url": "must be empty when a file is uploaded"}))
			return
		}
		source = model.UploadSource(&model.Upload{
			Name:      header.Filename,
			Extension: filepath.Ext(header.Filename),
			Size:      header.Size,
			Body:      file,
		})
	case strings.TrimSpace(form.URL) != "":
		source = model.RemoteSource(strings.TrimSpace(form.URL))
	default:
		middleware.HandleError(c, errors.NewValidationError("Media source is required",
			map[string]string{"file": "upload a file or provide a url"}))
		return
	}

	response, err := h.service.Submit(c.Request.Context(), accountID, source, form)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

// Analyze handles POST /api/v1/transcriptions/:id/analyses
//
// @Summary Run a custom instruction over a saved transcription
// @Description Consumes one credit and saves the answer as a new transcription.
// @Tags jobs
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Transcription ID" minimum(1)
// @Param analysis body dto.AnalyzeRequest true "Instruction"
// @Success 200 {object} dto.JobResponse "Analysis completed"
// @Failure 402 {object} errors.APIError "No credits left"
// @Failure 404 {object} errors.APIError "Transcription not found"
// @Failure 422 {object} errors.APIError "Validation error"
// @Failure 502 {object} errors.APIError "Summarization failed"
// @Router /transcriptions/{id}/analyses [post]
func (h *JobHandler) Analyze(c *gin.Context) {
	accountID, ok := accountID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req dto.AnalyzeRequest
	if err := middleware.ValidateRequest(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Analyze(c.Request.Context(), accountID, id, req)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}
