package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"media-notes/internal/app/model"
)

// MockMediaTool stands in for ffmpeg/ffprobe. ExtractAudio writes a small
// placeholder file so downstream stages see a real path.
type MockMediaTool struct {
	mu sync.RWMutex

	ProbeResult   *model.FFProbeOutput
	ProbeError    error
	ValidateError error
	ExtractError  error

	ProbeCalls    int
	ValidateCalls int
	ExtractCalls  int
}

func NewMockMediaTool() *MockMediaTool {
	return &MockMediaTool{ProbeResult: AudioProbe("mp3", 44100, 2)}
}

func (m *MockMediaTool) Probe(ctx context.Context, filePath string) (*model.FFProbeOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ProbeCalls++
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("ffprobe error: %w", err)
	}
	if m.ProbeError != nil {
		return nil, m.ProbeError
	}
	return m.ProbeResult, nil
}

func (m *MockMediaTool) Validate(ctx context.Context, filePath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidateCalls++
	return m.ValidateError
}

func (m *MockMediaTool) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ExtractCalls++
	if m.ExtractError != nil {
		return m.ExtractError
	}
	return os.WriteFile(outputPath, []byte("RIFF....WAVEfmt mock"), 0o644)
}

// Calls returns the total number of tool invocations
func (m *MockMediaTool) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ProbeCalls + m.ValidateCalls + m.ExtractCalls
}

// MockFetcher writes Content to destDir/source<Extension> for every URL
type MockFetcher struct {
	mu sync.RWMutex

	Content   string
	Extension string
	Error     error

	CallCount int
	LastURL   string
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{Content: "remote media bytes", Extension: ".mp3"}
}

func (m *MockFetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallCount++
	m.LastURL = rawURL
	if m.Error != nil {
		return "", m.Error
	}
	path := filepath.Join(destDir, "source"+m.Extension)
	if err := os.WriteFile(path, []byte(m.Content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
