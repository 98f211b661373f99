package services

import (
	"context"
	"strconv"

	"media-notes/internal/api/errors"
	"media-notes/internal/api/v1/dto"
	"media-notes/internal/app/model"
	"media-notes/internal/app/pipeline"
)

// JobRunner is the part of the orchestrator the API needs
type JobRunner interface {
	Submit(ctx context.Context, req pipeline.Request) *pipeline.Outcome
	Analyze(ctx context.Context, req pipeline.AnalyzeRequest) *pipeline.Outcome
}

type jobService struct {
	runner JobRunner
}

func NewJobService(runner JobRunner) JobService {
	return &jobService{runner: runner}
}

func (s *jobService) Submit(ctx context.Context, accountID int64, source model.MediaSource, form dto.SubmitJobForm) (*dto.JobResponse, error) {
	out := s.runner.Submit(ctx, pipeline.Request{
		AccountID:      accountID,
		Source:         source,
		InputLanguage:  form.InputLanguage,
		OutputLanguage: form.OutputLanguage,
		Title:          form.Title,
	})
	return respond(out)
}

func (s *jobService) Analyze(ctx context.Context, accountID, transcriptionID int64, req dto.AnalyzeRequest) (*dto.JobResponse, error) {
	out := s.runner.Analyze(ctx, pipeline.AnalyzeRequest{
		AccountID:         accountID,
		TranscriptionID:   transcriptionID,
		Instruction:       req.Instruction,
		IncludePriorNotes: req.IncludePreviousNotes,
		Title:             req.Title,
	})
	return respond(out)
}

// respond turns a finished outcome into a response or an APIError that
// still tells the client which job failed and what the balance is now
func respond(out *pipeline.Outcome) (*dto.JobResponse, error) {
	if out.Completed() {
		resp := dto.ToJobResponse(out)
		return &resp, nil
	}
	apiErr := errors.FromAppError(out.Err)
	apiErr.WithDetail("job_id", out.JobID).WithDetail("state", string(out.State))
	if out.BalanceKnown {
		apiErr.WithDetail("balance", strconv.Itoa(out.Balance))
	}
	return nil, apiErr
}
