package test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"media-notes/internal/api/errors"
	"media-notes/internal/api/v1/dto"
)

func TestTranscriptionHandler_Create(t *testing.T) {
	tests := []struct {
		name           string
		request        dto.SaveTranscriptionRequest
		setupMocks     func(*MockServices)
		expectedStatus int
		validateBody   func(*testing.T, map[string]interface{})
	}{
		{
			name: "successful save",
			request: dto.SaveTranscriptionRequest{
				Title:      "Weekly sync",
				Transcript: "we agreed to ship on friday",
				Notes:      "**Key Decisions**\n- ship friday",
			},
			setupMocks: func(ms *MockServices) {
				ms.TranscriptionService.On("SaveTranscription", mock.Anything, int64(2), mock.Anything).
					Return(&dto.TranscriptionResponse{
						ID:         10,
						Title:      "Weekly sync",
						Transcript: "we agreed to ship on friday",
						CreatedAt:  time.Now(),
					}, nil)
			},
			expectedStatus: http.StatusCreated,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, float64(10), body["id"])
				assert.Equal(t, "Weekly sync", body["title"])
			},
		},
		{
			name:           "validation error - missing title",
			request:        dto.SaveTranscriptionRequest{Transcript: "text"},
			setupMocks:     func(ms *MockServices) {},
			expectedStatus: http.StatusUnprocessableEntity,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "validation", body["kind"])
				details := body["details"].(map[string]interface{})
				assert.Equal(t, "is required", details["title"])
			},
		},
		{
			name:    "storage unavailable",
			request: dto.SaveTranscriptionRequest{Title: "t", Transcript: "text"},
			setupMocks: func(ms *MockServices) {
				ms.TranscriptionService.On("SaveTranscription", mock.Anything, int64(2), mock.Anything).
					Return(nil, errors.NewServiceUnavailableError("database is locked"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			validateBody: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "service_unavailable", body["kind"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, ms := setupTestRouter(t)
			tt.setupMocks(ms)

			body, err := json.Marshal(tt.request)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/transcriptions", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", bearer(t, 2))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.validateBody != nil {
				tt.validateBody(t, decodeBody(t, rec))
			}
		})
	}
}

func TestTranscriptionHandler_Get(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		setupMocks     func(*MockServices)
		expectedStatus int
	}{
		{
			name: "own transcription",
			path: "/api/v1/transcriptions/4",
			setupMocks: func(ms *MockServices) {
				ms.TranscriptionService.On("GetTranscription", mock.Anything, int64(2), int64(4)).
					Return(&dto.TranscriptionResponse{ID: 4, Title: "Retro"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "not found",
			path: "/api/v1/transcriptions/5",
			setupMocks: func(ms *MockServices) {
				ms.TranscriptionService.On("GetTranscription", mock.Anything, int64(2), int64(5)).
					Return(nil, errors.NewNotFoundError("Transcription"))
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "invalid id",
			path:           "/api/v1/transcriptions/0",
			setupMocks:     func(ms *MockServices) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, ms := setupTestRouter(t)
			tt.setupMocks(ms)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", bearer(t, 2))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}

func TestTranscriptionHandler_List(t *testing.T) {
	router, ms := setupTestRouter(t)
	ms.TranscriptionService.On("ListTranscriptions", mock.Anything, int64(2)).
		Return(&dto.ListTranscriptionsResponse{
			Transcriptions: []dto.TranscriptionSummaryResponse{
				{ID: 2, Title: "second"},
				{ID: 1, Title: "first"},
			},
			Total: 2,
		}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions", nil)
	req.Header.Set("Authorization", bearer(t, 2))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2", rec.Header().Get("X-Total-Count"))

	var resp dto.ListTranscriptionsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Transcriptions, 2)
	assert.Equal(t, "second", resp.Transcriptions[0].Title)
}

func TestTranscriptionHandler_Download(t *testing.T) {
	router, ms := setupTestRouter(t)
	ms.TranscriptionService.On("DownloadSummary", mock.Anything, int64(2), int64(8)).
		Return(&dto.SummaryFile{Name: "weekly-sync-summary.txt", Content: []byte("Key Decisions")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transcriptions/8/download", nil)
	req.Header.Set("Authorization", bearer(t, 2))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="weekly-sync-summary.txt"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
	assert.Equal(t, "Key Decisions", rec.Body.String())
}

func TestTranscriptionHandler_RequiresToken(t *testing.T) {
	router, _ := setupTestRouter(t)

	for _, path := range []string{"/api/v1/transcriptions", "/api/v1/transcriptions/1", "/api/v1/transcriptions/1/download"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}
