package testutil

import (
	"context"
	"sync"

	"media-notes/internal/app/api"
	"media-notes/internal/app/api/prompts"
	"media-notes/internal/app/model"
)

// MockSummarizer returns notes carrying the real section markers of the
// requested language so callers can assert on structure.
type MockSummarizer struct {
	mu sync.RWMutex

	SummarizeError error
	AnalyzeError   error
	AnalyzeResult  string
	// PanicWith makes Summarize panic with the given value when non-nil
	PanicWith interface{}

	SummarizeCalls int
	AnalyzeCalls   int
	LastTranscript string
	LastLanguage   string
	LastAnalysis   AnalyzeCall
}

// AnalyzeCall records the arguments of an Analyze call
type AnalyzeCall struct {
	Transcript   string
	PriorNotes   string
	Instruction  string
	IncludePrior bool
}

func NewMockSummarizer() *MockSummarizer {
	return &MockSummarizer{AnalyzeResult: "Custom analysis result."}
}

func (m *MockSummarizer) Summarize(ctx context.Context, transcript, language string) (*model.NotesResult, error) {
	m.mu.Lock()
	m.SummarizeCalls++
	m.LastTranscript = transcript
	m.LastLanguage = language
	panicWith, err := m.PanicWith, m.SummarizeError
	m.mu.Unlock()

	if panicWith != nil {
		panic(panicWith)
	}
	if err != nil {
		return nil, err
	}
	lang := prompts.Default().Resolve(language)
	return &model.NotesResult{Text: SampleNotes(lang), Language: lang}, nil
}

func (m *MockSummarizer) Analyze(ctx context.Context, transcript, priorNotes, instruction string, includePrior bool) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AnalyzeCalls++
	m.LastAnalysis = AnalyzeCall{
		Transcript:   transcript,
		PriorNotes:   priorNotes,
		Instruction:  instruction,
		IncludePrior: includePrior,
	}
	if m.AnalyzeError != nil {
		return "", m.AnalyzeError
	}
	return m.AnalyzeResult, nil
}

// Calls returns the number of Summarize and Analyze calls
func (m *MockSummarizer) Calls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.SummarizeCalls + m.AnalyzeCalls
}

var _ api.Summarizer = (*MockSummarizer)(nil)
