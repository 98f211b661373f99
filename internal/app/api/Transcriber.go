package api

import (
	"context"

	"media-notes/internal/app/model"
)

// Transcriber converts canonical audio to text. language is a concrete
// code or model.LanguageAuto.
type Transcriber interface {
	Transcribe(ctx context.Context, audio *model.AudioArtifact, language string) (*model.TranscriptionResult, error)
}

// Summarizer turns a transcript into structured notes or answers a
// free-form instruction about it.
type Summarizer interface {
	Summarize(ctx context.Context, transcript, language string) (*model.NotesResult, error)
	Analyze(ctx context.Context, transcript, priorNotes, instruction string, includePrior bool) (string, error)
}
