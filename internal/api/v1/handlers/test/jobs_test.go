package test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"media-notes/internal/api/errors"
	"media-notes/internal/api/v1/dto"
	"media-notes/internal/app/model"
)

func multipartBody(t *testing.T, fields map[string]string, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestJobHandler_SubmitUpload(t *testing.T) {
	router, ms := setupTestRouter(t)

	balance := 2
	ms.JobService.On("Submit", mock.Anything, int64(7),
		mock.MatchedBy(func(src model.MediaSource) bool {
			return src.Upload != nil && src.Upload.Name == "standup.mp3" &&
				src.Upload.Extension == ".mp3" && src.Upload.Size == 5
		}),
		dto.SubmitJobForm{InputLanguage: "en", OutputLanguage: "pl", Title: "Standup"},
	).Return(&dto.JobResponse{JobID: "job-1", State: "completed", Title: "Standup", Balance: &balance}, nil)

	body, contentType := multipartBody(t, map[string]string{
		"input_language":  "en",
		"output_language": "pl",
		"title":           "Standup",
	}, "standup.mp3", []byte("audio"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, 7))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody(t, rec)
	assert.Equal(t, "job-1", resp["job_id"])
	assert.Equal(t, float64(2), resp["balance"])
}

func TestJobHandler_SubmitURL(t *testing.T) {
	router, ms := setupTestRouter(t)

	ms.JobService.On("Submit", mock.Anything, int64(3),
		model.RemoteSource("https://media.example.com/talk.mp4"),
		mock.AnythingOfType("dto.SubmitJobForm"),
	).Return(&dto.JobResponse{JobID: "job-2", State: "completed"}, nil)

	form := url.Values{"url": {"https://media.example.com/talk.mp4"}}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", bearer(t, 3))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestJobHandler_SubmitRejected(t *testing.T) {
	tests := []struct {
		name           string
		fields         map[string]string
		fileName       string
		authorized     bool
		expectedStatus int
		detailKey      string
	}{
		{
			name:           "no token",
			fileName:       "a.mp3",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "no source",
			authorized:     true,
			expectedStatus: http.StatusUnprocessableEntity,
			detailKey:      "file",
		},
		{
			name:           "file and url together",
			fields:         map[string]string{"url": "https://media.example.com/a.mp3"},
			fileName:       "a.mp3",
			authorized:     true,
			expectedStatus: http.StatusUnprocessableEntity,
			detailKey:      "url",
		},
		{
			name:           "unknown output language",
			fields:         map[string]string{"output_language": "xx"},
			fileName:       "a.mp3",
			authorized:     true,
			expectedStatus: http.StatusUnprocessableEntity,
			detailKey:      "outputlanguage",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := setupTestRouter(t)

			body, contentType := multipartBody(t, tt.fields, tt.fileName, []byte("audio"))
			req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
			req.Header.Set("Content-Type", contentType)
			if tt.authorized {
				req.Header.Set("Authorization", bearer(t, 1))
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.detailKey != "" {
				details := decodeBody(t, rec)["details"].(map[string]interface{})
				assert.Contains(t, details, tt.detailKey)
			}
		})
	}
}

func TestJobHandler_SubmitFailureCarriesJobDetails(t *testing.T) {
	router, ms := setupTestRouter(t)

	failure := &errors.APIError{Kind: errors.KindPaymentRequired, Message: "no credits left", Code: "insufficient_credit"}
	failure.WithDetail("job_id", "job-9").WithDetail("balance", "0")
	ms.JobService.On("Submit", mock.Anything, int64(4), mock.Anything, mock.Anything).Return(nil, failure)

	body, contentType := multipartBody(t, nil, "a.wav", []byte("RIFF"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", bearer(t, 4))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "insufficient_credit", resp["code"])
	details := resp["details"].(map[string]interface{})
	assert.Equal(t, "job-9", details["job_id"])
	assert.Equal(t, "0", details["balance"])
}

func TestJobHandler_Analyze(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		body           string
		setupMocks     func(*MockServices)
		expectedStatus int
	}{
		{
			name: "successful analysis",
			path: "/api/v1/transcriptions/12/analyses",
			body: `{"instruction":"List every action item","include_previous_notes":true}`,
			setupMocks: func(ms *MockServices) {
				ms.JobService.On("Analyze", mock.Anything, int64(5), int64(12), dto.AnalyzeRequest{
					Instruction:          "List every action item",
					IncludePreviousNotes: true,
				}).Return(&dto.JobResponse{JobID: "job-3", State: "completed", Analysis: "1. ship"}, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "blank instruction",
			path:           "/api/v1/transcriptions/12/analyses",
			body:           `{"instruction":"   "}`,
			setupMocks:     func(ms *MockServices) {},
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "invalid id",
			path:           "/api/v1/transcriptions/abc/analyses",
			body:           `{"instruction":"Summarize"}`,
			setupMocks:     func(ms *MockServices) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "transcription not found",
			path: "/api/v1/transcriptions/99/analyses",
			body: `{"instruction":"Summarize"}`,
			setupMocks: func(ms *MockServices) {
				ms.JobService.On("Analyze", mock.Anything, int64(5), int64(99), mock.Anything).
					Return(nil, errors.NewNotFoundError("Transcription"))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, ms := setupTestRouter(t)
			tt.setupMocks(ms)

			req := httptest.NewRequest(http.MethodPost, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", bearer(t, 5))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code, rec.Body.String())
		})
	}
}
