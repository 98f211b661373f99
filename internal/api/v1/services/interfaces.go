package services

import (
	"context"

	"media-notes/internal/api/v1/dto"
	"media-notes/internal/app/model"
)

// JobService runs credit-gated jobs for the authenticated account
type JobService interface {
	Submit(ctx context.Context, accountID int64, source model.MediaSource, form dto.SubmitJobForm) (*dto.JobResponse, error)
	Analyze(ctx context.Context, accountID, transcriptionID int64, req dto.AnalyzeRequest) (*dto.JobResponse, error)
}

// TranscriptionService defines the interface for transcription operations
type TranscriptionService interface {
	SaveTranscription(ctx context.Context, accountID int64, req dto.SaveTranscriptionRequest) (*dto.TranscriptionResponse, error)
	GetTranscription(ctx context.Context, accountID, id int64) (*dto.TranscriptionResponse, error)
	ListTranscriptions(ctx context.Context, accountID int64) (*dto.ListTranscriptionsResponse, error)
	DownloadSummary(ctx context.Context, accountID, id int64) (*dto.SummaryFile, error)
}

// CreditService exposes balances and the payment boundary
type CreditService interface {
	GetCredits(ctx context.Context, accountID int64) (*dto.CreditsResponse, error)
	TopUp(ctx context.Context, req dto.TopUpRequest) (*dto.TopUpResponse, error)
}
