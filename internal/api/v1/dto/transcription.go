package dto

import (
	"time"

	"github.com/samber/lo"

	"media-notes/internal/app/model"
)

// SaveTranscriptionRequest stores caller-provided results as a new row
type SaveTranscriptionRequest struct {
	Title      string `json:"title" binding:"required,max=200"`
	Transcript string `json:"transcript" binding:"required"`
	Notes      string `json:"notes"`
}

// TranscriptionResponse represents a transcription in API responses
type TranscriptionResponse struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Transcript   string    `json:"transcript"`
	Notes        string    `json:"notes"`
	CustomPrompt *string   `json:"custom_prompt,omitempty"`
	CustomNotes  *string   `json:"custom_notes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TranscriptionSummaryResponse is one history entry
type TranscriptionSummaryResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// ListTranscriptionsResponse is the history of the caller, newest first
type ListTranscriptionsResponse struct {
	Transcriptions []TranscriptionSummaryResponse `json:"transcriptions"`
	Total          int                            `json:"total"`
}

// SummaryFile is the downloadable text of one transcription
type SummaryFile struct {
	Name    string
	Content []byte
}

// ToTranscriptionResponse converts a model to response DTO
func ToTranscriptionResponse(t *model.SavedTranscription) TranscriptionResponse {
	return TranscriptionResponse{
		ID:           t.ID,
		Title:        t.Title,
		Transcript:   t.Transcript,
		Notes:        t.Notes,
		CustomPrompt: t.CustomPrompt,
		CustomNotes:  t.CustomNotes,
		CreatedAt:    t.CreatedAt,
	}
}

// ToListResponse converts history entries to response DTO
func ToListResponse(items []model.TranscriptionSummary) ListTranscriptionsResponse {
	return ListTranscriptionsResponse{
		Transcriptions: lo.Map(items, func(s model.TranscriptionSummary, _ int) TranscriptionSummaryResponse {
			return TranscriptionSummaryResponse{ID: s.ID, Title: s.Title, CreatedAt: s.CreatedAt}
		}),
		Total: len(items),
	}
}
