package gemini

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"media-notes/internal/app/api/prompts"
	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
)

// NewClient builds a Gemini API client. baseURL is only set in tests.
func NewClient(ctx context.Context, apiKey, baseURL string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	return genai.NewClient(ctx, cfg)
}

// Summarizer writes meeting notes with Gemini
type Summarizer struct {
	client      *genai.Client
	model       string
	temperature float32
	prompts     *prompts.Set
	logger      *zap.Logger
}

func NewSummarizer(client *genai.Client, model string, temperature float32, set *prompts.Set, logger *zap.Logger) *Summarizer {
	if set == nil {
		set = prompts.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summarizer{
		client:      client,
		model:       model,
		temperature: temperature,
		prompts:     set,
		logger:      logger.Named("gemini"),
	}
}

func (s *Summarizer) Summarize(ctx context.Context, transcript, language string) (*model.NotesResult, error) {
	prompt, resolved := s.prompts.NotesPrompt(transcript, language)
	text, err := s.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &model.NotesResult{Text: text, Language: resolved}, nil
}

func (s *Summarizer) Analyze(ctx context.Context, transcript, priorNotes, instruction string, includePrior bool) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", apperrors.RequiredField("instruction")
	}
	return s.generate(ctx, prompts.AnalysisPrompt(transcript, priorNotes, instruction, includePrior))
}

func (s *Summarizer) generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, s.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr(s.temperature),
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.WithKind(apperrors.KindSummarize, err, "gemini generate content failed")
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", apperrors.NewKind(apperrors.KindSummarize, "gemini returned no candidates")
	}

	s.logger.Debug("gemini generation finished",
		zap.String("model", s.model),
		zap.Duration("took", time.Since(start)))

	return strings.TrimSpace(resp.Text()), nil
}
