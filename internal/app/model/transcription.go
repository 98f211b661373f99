package model

import "time"

// LanguageAuto asks the transcription engine to detect the spoken language
const LanguageAuto = "auto"

// TranscriptionResult is the raw text produced by a speech-to-text engine
type TranscriptionResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// NotesResult holds generated meeting notes and the template language used
type NotesResult struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// SavedTranscription is a persisted, immutable job result
type SavedTranscription struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"account_id"`
	Title        string    `json:"title"`
	Transcript   string    `json:"transcript"`
	Notes        string    `json:"notes"`
	CustomNotes  *string   `json:"custom_notes,omitempty"`
	CustomPrompt *string   `json:"custom_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TranscriptionSummary is a history list entry
type TranscriptionSummary struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
