package services

import (
	"context"
	"strings"
	"time"

	"media-notes/internal/api/v1/dto"
	"media-notes/internal/app/export"
	"media-notes/internal/app/model"
	"media-notes/internal/app/repository"
)

type transcriptionService struct {
	dao repository.TranscriptionDAO
	now func() time.Time
}

func NewTranscriptionService(dao repository.TranscriptionDAO) TranscriptionService {
	return &transcriptionService{
		dao: dao,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// SaveTranscription always inserts a new row, even for identical content
func (s *transcriptionService) SaveTranscription(ctx context.Context, accountID int64, req dto.SaveTranscriptionRequest) (*dto.TranscriptionResponse, error) {
	saved := &model.SavedTranscription{
		AccountID:  accountID,
		Title:      strings.TrimSpace(req.Title),
		Transcript: req.Transcript,
		Notes:      req.Notes,
		CreatedAt:  s.now(),
	}
	id, err := s.dao.SaveTranscription(ctx, saved)
	if err != nil {
		return nil, err
	}
	saved.ID = id
	resp := dto.ToTranscriptionResponse(saved)
	return &resp, nil
}

func (s *transcriptionService) GetTranscription(ctx context.Context, accountID, id int64) (*dto.TranscriptionResponse, error) {
	t, err := s.dao.GetTranscription(ctx, id, accountID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToTranscriptionResponse(t)
	return &resp, nil
}

func (s *transcriptionService) ListTranscriptions(ctx context.Context, accountID int64) (*dto.ListTranscriptionsResponse, error) {
	items, err := s.dao.ListTranscriptions(ctx, accountID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToListResponse(items)
	return &resp, nil
}

func (s *transcriptionService) DownloadSummary(ctx context.Context, accountID, id int64) (*dto.SummaryFile, error) {
	t, err := s.dao.GetTranscription(ctx, id, accountID)
	if err != nil {
		return nil, err
	}
	return &dto.SummaryFile{
		Name:    export.SummaryFileName(t.CreatedAt),
		Content: []byte(export.SummaryText(t)),
	}, nil
}
