package whisper_cpp

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
	"media-notes/internal/app/util/files"
)

var detectedLanguage = regexp.MustCompile(`auto-detected language:\s*([a-z]{2,3})`)

// LocalTranscriber implements local transcription, using local binary commands.
type LocalTranscriber struct {
	binaryPath string
	modelPath  string
	logger     *zap.Logger
}

// NewLocalTranscriber creates a new instance of LocalTranscriber.
func NewLocalTranscriber(binaryPath, modelPath string, logger *zap.Logger) *LocalTranscriber {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalTranscriber{
		binaryPath: binaryPath,
		modelPath:  modelPath,
		logger:     logger.Named("whisper_cpp"),
	}
}

// Transcribe runs whisper.cpp on canonical audio. The transcript is written
// next to the audio so it is removed together with the artifact.
func (lt *LocalTranscriber) Transcribe(ctx context.Context, audio *model.AudioArtifact, language string) (*model.TranscriptionResult, error) {
	if audio == nil || audio.Path == "" {
		return nil, apperrors.RequiredField("audio")
	}
	if language == "" {
		language = model.LanguageAuto
	}

	outputPrefix := filepath.Join(filepath.Dir(audio.Path), "transcript")
	args := []string{
		"-m", lt.modelPath,
		"-l", language,
		"-otxt",
		"-of", outputPrefix,
		"-f", audio.Path,
	}

	command := exec.CommandContext(ctx, lt.binaryPath, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	lt.logger.Debug("running transcription command",
		zap.String("command", lt.binaryPath+" "+strings.Join(args, " ")))

	start := time.Now()
	if err := command.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.WithKind(apperrors.KindTranscription,
			fmt.Errorf("%v, stderr: %s", err, strings.TrimSpace(stderr.String())), "command execution error")
	}

	output, err := files.ReadOutputFile(outputPrefix + ".txt")
	if err != nil {
		return nil, apperrors.WithKind(apperrors.KindTranscription, err, "failed to read output file")
	}

	detected := language
	if language == model.LanguageAuto {
		detected = ""
		if m := detectedLanguage.FindStringSubmatch(stderr.String() + stdout.String()); m != nil {
			detected = m[1]
		}
	}

	lt.logger.Debug("transcription finished",
		zap.String("language", detected),
		zap.Int("chars", len(output)),
		zap.Duration("took", time.Since(start)))

	return &model.TranscriptionResult{Text: output, Language: detected}, nil
}
