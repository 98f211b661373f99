package test

import (
	"context"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"media-notes/internal/api/middleware"
	"media-notes/internal/api/v1/dto"
	"media-notes/internal/api/v1/routes"
	"media-notes/internal/app/accounts"
	"media-notes/internal/app/model"
)

const (
	jwtSecret     = "handler-test-secret"
	webhookSecret = "handler-webhook-secret"
)

type MockJobService struct{ mock.Mock }

func (m *MockJobService) Submit(ctx context.Context, accountID int64, source model.MediaSource, form dto.SubmitJobForm) (*dto.JobResponse, error) {
	args := m.Called(ctx, accountID, source, form)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.JobResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockJobService) Analyze(ctx context.Context, accountID, transcriptionID int64, req dto.AnalyzeRequest) (*dto.JobResponse, error) {
	args := m.Called(ctx, accountID, transcriptionID, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.JobResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockTranscriptionService struct{ mock.Mock }

func (m *MockTranscriptionService) SaveTranscription(ctx context.Context, accountID int64, req dto.SaveTranscriptionRequest) (*dto.TranscriptionResponse, error) {
	args := m.Called(ctx, accountID, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.TranscriptionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTranscriptionService) GetTranscription(ctx context.Context, accountID, id int64) (*dto.TranscriptionResponse, error) {
	args := m.Called(ctx, accountID, id)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.TranscriptionResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTranscriptionService) ListTranscriptions(ctx context.Context, accountID int64) (*dto.ListTranscriptionsResponse, error) {
	args := m.Called(ctx, accountID)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.ListTranscriptionsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockTranscriptionService) DownloadSummary(ctx context.Context, accountID, id int64) (*dto.SummaryFile, error) {
	args := m.Called(ctx, accountID, id)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.SummaryFile), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockCreditService struct{ mock.Mock }

func (m *MockCreditService) GetCredits(ctx context.Context, accountID int64) (*dto.CreditsResponse, error) {
	args := m.Called(ctx, accountID)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.CreditsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCreditService) TopUp(ctx context.Context, req dto.TopUpRequest) (*dto.TopUpResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*dto.TopUpResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockServices bundles one mock per service
type MockServices struct {
	JobService           *MockJobService
	TranscriptionService *MockTranscriptionService
	CreditService        *MockCreditService
}

func newMockServices(t *testing.T) *MockServices {
	ms := &MockServices{
		JobService:           &MockJobService{},
		TranscriptionService: &MockTranscriptionService{},
		CreditService:        &MockCreditService{},
	}
	t.Cleanup(func() {
		ms.JobService.AssertExpectations(t)
		ms.TranscriptionService.AssertExpectations(t)
		ms.CreditService.AssertExpectations(t)
	})
	return ms
}

// setupTestRouter mounts the real v1 routes over mocked services
func setupTestRouter(t *testing.T) (*gin.Engine, *MockServices) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.ErrorHandler(zap.NewNop()))

	ms := newMockServices(t)
	routes.RegisterRoutes(router.Group("/api/v1"), &routes.ServiceContainer{
		JobService:           ms.JobService,
		TranscriptionService: ms.TranscriptionService,
		CreditService:        ms.CreditService,
	}, routes.Secrets{JWT: jwtSecret, Webhook: webhookSecret})
	return router, ms
}

func bearer(t *testing.T, accountID int64) string {
	t.Helper()
	token, err := accounts.IssueToken(jwtSecret, accountID, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}
