package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
)

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewRemoteTranscriber creates a new RemoteTranscriber instance.
func NewRemoteTranscriber(client *openai.Client, model string, logger *zap.Logger) *RemoteTranscriber {
	if model == "" {
		model = openai.Whisper1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteTranscriber{client: client, model: model, logger: logger.Named("whisper")}
}

// Transcribe uploads the audio and returns the recognized text. verbose_json
// is requested so the detected language can be reported.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, audio *model.AudioArtifact, language string) (*model.TranscriptionResult, error) {
	if audio == nil || audio.Path == "" {
		return nil, apperrors.RequiredField("audio")
	}

	req := openai.AudioRequest{
		Model:    rt.model,
		FilePath: audio.Path,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if language != "" && language != model.LanguageAuto {
		req.Language = language
	}

	start := time.Now()
	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.WithKind(apperrors.KindTranscription, describeAPIError(err), "createTranscription failed")
	}

	detected := languageCode(resp.Language)
	if detected == "" {
		detected = req.Language
	}
	rt.logger.Debug("transcription finished",
		zap.String("language", detected),
		zap.Int("chars", len(resp.Text)),
		zap.Duration("took", time.Since(start)))

	return &model.TranscriptionResult{
		Text:     strings.TrimSpace(resp.Text),
		Language: detected,
	}, nil
}

// describeAPIError turns OpenAI status codes into actionable messages
func describeAPIError(err error) error {
	status := 0
	message := err.Error()
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
		message = apiErr.Message
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case 0:
		return err
	case 401:
		return fmt.Errorf("status 401: OpenAI API key is invalid or missing: %w", err)
	case 413:
		return fmt.Errorf("status 413: audio file is too large for the OpenAI API: %w", err)
	case 429:
		return fmt.Errorf("status 429: OpenAI API rate limit exceeded: %w", err)
	case 400:
		return fmt.Errorf("status 400: audio rejected as invalid: %s", message)
	default:
		return fmt.Errorf("status %d: OpenAI API error: %s", status, message)
	}
}

var languageNames = map[string]string{
	"english":    "en",
	"polish":     "pl",
	"german":     "de",
	"french":     "fr",
	"spanish":    "es",
	"italian":    "it",
	"portuguese": "pt",
	"dutch":      "nl",
	"ukrainian":  "uk",
	"russian":    "ru",
	"chinese":    "zh",
	"japanese":   "ja",
}

// languageCode maps the language name reported by verbose_json to an ISO
// code. Unknown names and codes are returned lower-cased.
func languageCode(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := languageNames[name]; ok {
		return code
	}
	return name
}
