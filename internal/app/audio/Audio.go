package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"media-notes/internal/app/model"
)

// Canonical output format handed to speech-to-text engines
const (
	CanonicalSampleRate = 16000
	CanonicalChannels   = 1
	CanonicalCodec      = "pcm_s16le"
)

// FFmpeg runs the ffmpeg and ffprobe binaries
type FFmpeg struct {
	ffmpegPath  string
	ffprobePath string
}

func NewFFmpeg(ffmpegPath, ffprobePath string) *FFmpeg {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpeg{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// Probe reads stream and container metadata
func (f *FFmpeg) Probe(ctx context.Context, filePath string) (*model.FFProbeOutput, error) {
	cmd := exec.CommandContext(ctx, f.ffprobePath, "-v", "quiet", "-print_format", "json", "-show_streams", "-show_format", filePath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe error: %v, stderr: %s", err, stderr.String())
	}
	return ParseProbe(output)
}

// ParseProbe decodes ffprobe JSON output
func ParseProbe(data []byte) (*model.FFProbeOutput, error) {
	var probeOutput model.FFProbeOutput
	if err := json.Unmarshal(data, &probeOutput); err != nil {
		return nil, fmt.Errorf("invalid ffprobe output: %w", err)
	}
	return &probeOutput, nil
}

// Validate decodes the whole file without writing output. Any decode
// failure makes ffmpeg exit non-zero.
func (f *FFmpeg) Validate(ctx context.Context, filePath string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath, "-v", "error", "-i", filePath, "-f", "null", "-")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("FFmpeg error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// ExtractAudio writes the first audio track of inputPath as 16 kHz mono
// PCM WAV. Video streams are dropped.
func (f *FFmpeg) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, f.ffmpegPath,
		"-y", "-v", "error",
		"-i", inputPath,
		"-vn",
		"-acodec", CanonicalCodec,
		"-ar", fmt.Sprint(CanonicalSampleRate),
		"-ac", fmt.Sprint(CanonicalChannels),
		"-f", "wav",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("FFmpeg error: %v, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// IsCanonical reports whether probe describes audio already in the
// canonical format
func IsCanonical(probe *model.FFProbeOutput) bool {
	for _, stream := range probe.Streams {
		if stream.CodecType == "audio" && stream.CodecName == CanonicalCodec &&
			stream.SampleRate == CanonicalSampleRate && stream.Channels == CanonicalChannels {
			return true
		}
	}
	return false
}
