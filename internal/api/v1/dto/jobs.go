package dto

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"media-notes/internal/api/errors"
	"media-notes/internal/app/pipeline"
)

// SubmitJobForm is the non-file part of POST /jobs. Either the multipart
// file or URL must be present.
type SubmitJobForm struct {
	URL            string `form:"url" binding:"omitempty,url"`
	InputLanguage  string `form:"input_language" binding:"omitempty,oneof=auto pl en de fr es"`
	OutputLanguage string `form:"output_language" binding:"omitempty,oneof=pl en de fr es"`
	Title          string `form:"title" binding:"max=200"`
}

// AnalyzeRequest runs a custom instruction over a saved transcription
type AnalyzeRequest struct {
	Instruction          string `json:"instruction" binding:"required,max=4000"`
	IncludePreviousNotes bool   `json:"include_previous_notes"`
	Title                string `json:"title" binding:"max=200"`
}

// Validate performs domain-specific validation
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.Instruction) == "" {
		return errors.NewValidationError("Invalid analysis request", map[string]string{
			"instruction": "must not be blank",
		})
	}
	return nil
}

// JobResponse is the result of a completed job
type JobResponse struct {
	JobID         string               `json:"job_id"`
	State         string               `json:"state"`
	Title         string               `json:"title"`
	Transcript    string               `json:"transcript"`
	Language      string               `json:"language,omitempty"`
	Notes         string               `json:"notes"`
	NotesLanguage string               `json:"notes_language,omitempty"`
	Analysis      string               `json:"analysis,omitempty"`
	SavedID       int64                `json:"saved_id,omitempty"`
	SummaryURL    string               `json:"summary_url,omitempty"`
	Warnings      []string             `json:"warnings,omitempty"`
	Balance       *int                 `json:"balance,omitempty"`
	History       []TransitionResponse `json:"history"`
	FinishedAt    time.Time            `json:"finished_at"`
}

// TransitionResponse is one step of a job's state history
type TransitionResponse struct {
	From string    `json:"from"`
	To   string    `json:"to"`
	At   time.Time `json:"at"`
}

// ToJobResponse converts a pipeline outcome to response DTO
func ToJobResponse(out *pipeline.Outcome) JobResponse {
	resp := JobResponse{
		JobID:         out.JobID,
		State:         string(out.State),
		Title:         out.Title,
		Transcript:    out.Transcript,
		Language:      out.Language,
		Notes:         out.Notes,
		NotesLanguage: out.NotesLanguage,
		Analysis:      out.Analysis,
		SavedID:       out.SavedID,
		SummaryURL:    out.SummaryURL,
		Warnings:      lo.Map(out.Warnings, func(w error, _ int) string { return w.Error() }),
		History: lo.Map(out.History, func(t pipeline.Transition, _ int) TransitionResponse {
			return TransitionResponse{From: string(t.From), To: string(t.To), At: t.At}
		}),
		FinishedAt: out.FinishedAt,
	}
	if out.BalanceKnown {
		balance := out.Balance
		resp.Balance = &balance
	}
	return resp
}
