package whisper_cpp

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
)

// writeFakeBinary creates a shell script standing in for whisper.cpp. It
// records its arguments and writes body to the -of prefix.
func writeFakeBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts are not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "whisper-main")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

const echoScript = `
echo "$@" > "$(dirname "$0")/args"
prefix=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-of" ]; then prefix="$2"; fi
  shift
done
echo "whisper_full_with_state: auto-detected language: de (p = 0.93)" >&2
printf '\n Guten Morgen zusammen \n' > "$prefix.txt"
`

func newArtifact(t *testing.T) *model.AudioArtifact {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("RIFF"), 0o644))
	return &model.AudioArtifact{Path: path, WorkDir: dir}
}

func TestLocalTranscriber_AutoDetect(t *testing.T) {
	bin := writeFakeBinary(t, echoScript)
	lt := NewLocalTranscriber(bin, "/models/ggml-base.bin", zap.NewNop())
	audio := newArtifact(t)

	result, err := lt.Transcribe(context.Background(), audio, model.LanguageAuto)
	require.NoError(t, err)
	assert.Equal(t, "Guten Morgen zusammen", result.Text)
	assert.Equal(t, "de", result.Language)

	args, err := os.ReadFile(filepath.Join(filepath.Dir(bin), "args"))
	require.NoError(t, err)
	assert.Contains(t, string(args), "-m /models/ggml-base.bin -l auto -otxt")
	assert.FileExists(t, filepath.Join(audio.WorkDir, "transcript.txt"))
}

func TestLocalTranscriber_ExplicitLanguage(t *testing.T) {
	bin := writeFakeBinary(t, echoScript)
	lt := NewLocalTranscriber(bin, "model.bin", nil)

	result, err := lt.Transcribe(context.Background(), newArtifact(t), "fr")
	require.NoError(t, err)
	assert.Equal(t, "fr", result.Language)
}

func TestLocalTranscriber_EmptyTranscription(t *testing.T) {
	bin := writeFakeBinary(t, `
while [ $# -gt 0 ]; do
  if [ "$1" = "-of" ]; then : > "$2.txt"; fi
  shift
done
`)
	lt := NewLocalTranscriber(bin, "model.bin", nil)

	result, err := lt.Transcribe(context.Background(), newArtifact(t), "en")
	require.NoError(t, err)
	assert.Equal(t, "", result.Text)
}

func TestLocalTranscriber_Failures(t *testing.T) {
	tests := []struct {
		name          string
		binary        func(t *testing.T) string
		errorContains string
	}{
		{
			name:          "invalid binary path",
			binary:        func(t *testing.T) string { return "/non/existent/binary" },
			errorContains: "command execution error",
		},
		{
			name: "non-zero exit",
			binary: func(t *testing.T) string {
				return writeFakeBinary(t, "echo 'failed to load model' >&2\nexit 3\n")
			},
			errorContains: "failed to load model",
		},
		{
			name:          "output file not created",
			binary:        func(t *testing.T) string { return writeFakeBinary(t, "exit 0\n") },
			errorContains: "failed to read output file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lt := NewLocalTranscriber(tt.binary(t), "model.bin", nil)
			_, err := lt.Transcribe(context.Background(), newArtifact(t), "en")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorContains)
			assert.True(t, errors.Is(err, apperrors.ErrTranscription))
		})
	}
}

func TestLocalTranscriber_Cancelled(t *testing.T) {
	bin := writeFakeBinary(t, "sleep 5\n")
	lt := NewLocalTranscriber(bin, "model.bin", nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lt.Transcribe(ctx, newArtifact(t), "en")
	assert.ErrorIs(t, err, context.Canceled)
}
