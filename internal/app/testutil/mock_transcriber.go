package testutil

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"media-notes/internal/app/api"
	"media-notes/internal/app/model"
)

// MockTranscriber is a configurable api.Transcriber. Without testify
// expectations it returns DefaultResponse, or DefaultError when set.
type MockTranscriber struct {
	mock.Mock
	mu sync.RWMutex

	DefaultResponse string
	DefaultLanguage string
	DefaultError    error
	UseExpectations bool

	CallCount   int
	CallHistory []TranscriptionCall
}

// TranscriptionCall represents a single transcription call for tracking
type TranscriptionCall struct {
	AudioPath string
	Language  string
}

// NewMockTranscriber creates a new MockTranscriber with sensible defaults
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{
		DefaultResponse: SampleTranscript,
		DefaultLanguage: "en",
	}
}

// Transcribe implements the api.Transcriber interface
func (m *MockTranscriber) Transcribe(ctx context.Context, audio *model.AudioArtifact, language string) (*model.TranscriptionResult, error) {
	m.mu.Lock()
	m.CallCount++
	path := ""
	if audio != nil {
		path = audio.Path
	}
	m.CallHistory = append(m.CallHistory, TranscriptionCall{AudioPath: path, Language: language})
	useExpectations, response, detected, err := m.UseExpectations, m.DefaultResponse, m.DefaultLanguage, m.DefaultError
	m.mu.Unlock()

	if useExpectations {
		args := m.Called(ctx, audio, language)
		result, _ := args.Get(0).(*model.TranscriptionResult)
		return result, args.Error(1)
	}
	if err != nil {
		return nil, err
	}
	if language != model.LanguageAuto && language != "" {
		detected = language
	}
	return &model.TranscriptionResult{Text: response, Language: detected}, nil
}

// WithDefaultError sets the default error to return
func (m *MockTranscriber) WithDefaultError(err error) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefaultError = err
	return m
}

// WithDefaultResponse sets the default response text
func (m *MockTranscriber) WithDefaultResponse(response string) *MockTranscriber {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DefaultResponse = response
	return m
}

// GetCallCount returns the total number of calls made
func (m *MockTranscriber) GetCallCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.CallCount
}

// GetLastCall returns the last transcription call
func (m *MockTranscriber) GetLastCall() *TranscriptionCall {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.CallHistory) == 0 {
		return nil
	}
	call := m.CallHistory[len(m.CallHistory)-1]
	return &call
}

// ExpectTranscribeCall switches the mock to testify expectations
func (m *MockTranscriber) ExpectTranscribeCall(language string, result *model.TranscriptionResult, err error) *MockTranscriber {
	m.mu.Lock()
	m.UseExpectations = true
	m.mu.Unlock()
	m.On("Transcribe", mock.Anything, mock.Anything, language).Return(result, err)
	return m
}

var _ api.Transcriber = (*MockTranscriber)(nil)
