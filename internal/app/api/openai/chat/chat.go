package chat

import (
	"context"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"media-notes/internal/app/api/prompts"
	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
)

// Summarizer writes meeting notes with the chat completions API
type Summarizer struct {
	client      *openai.Client
	model       string
	temperature float32
	prompts     *prompts.Set
	logger      *zap.Logger
}

func NewSummarizer(client *openai.Client, model string, temperature float32, set *prompts.Set, logger *zap.Logger) *Summarizer {
	if model == "" {
		model = openai.GPT4oMini
	}
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
		logger:      logger.Named("chat"),
	}
}

// Summarize produces the three-section notes in language
func (s *Summarizer) Summarize(ctx context.Context, transcript, language string) (*model.NotesResult, error) {
	prompt, resolved := s.prompts.NotesPrompt(transcript, language)
	text, err := s.complete(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return &model.NotesResult{Text: text, Language: resolved}, nil
}

// Analyze answers a free-form instruction about the transcript
func (s *Summarizer) Analyze(ctx context.Context, transcript, priorNotes, instruction string, includePrior bool) (string, error) {
	if strings.TrimSpace(instruction) == "" {
		return "", apperrors.RequiredField("instruction")
	}
	return s.complete(ctx, prompts.AnalysisPrompt(transcript, priorNotes, instruction, includePrior))
}

func (s *Summarizer) complete(ctx context.Context, prompt string) (string, error) {
	request := openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, request)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.WithKind(apperrors.KindSummarize, err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewKind(apperrors.KindSummarize, "chat completion returned no choices")
	}

	s.logger.Debug("chat completion finished",
		zap.String("model", resp.Model),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("took", time.Since(start)))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
