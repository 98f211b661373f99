package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"media-notes/internal/app/api/prompts"
	"media-notes/internal/app/model"
)

// SampleTranscript is a short meeting used across tests
const SampleTranscript = "Good morning everyone. We agreed to ship the release on Friday. " +
	"Anna will update the changelog and Marek will prepare the demo."

// SampleNotes renders notes carrying the three section markers for lang
func SampleNotes(lang string) string {
	markers := prompts.Default().SectionMarkers(lang)
	var b strings.Builder
	for i, marker := range markers {
		b.WriteString(marker)
		b.WriteString("\n- item ")
		b.WriteString(string(rune('1' + i)))
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// AudioProbe describes a media file with one audio stream
func AudioProbe(codec string, sampleRate, channels int) *model.FFProbeOutput {
	return &model.FFProbeOutput{
		Streams: []model.FFProbeStream{
			{CodecType: "audio", CodecName: codec, SampleRate: sampleRate, Channels: channels},
		},
		Format: model.FFProbeFormat{FormatName: "wav", Duration: "12.5", Size: "400000"},
	}
}

// VideoProbe describes a media file with a video and an audio stream
func VideoProbe() *model.FFProbeOutput {
	return &model.FFProbeOutput{
		Streams: []model.FFProbeStream{
			{CodecType: "video", CodecName: "h264"},
			{CodecType: "audio", CodecName: "aac", SampleRate: 44100, Channels: 2},
		},
		Format: model.FFProbeFormat{FormatName: "mov,mp4,m4a,3gp,3g2,mj2", Duration: "61.0"},
	}
}

// SilentProbe describes a file without any audio stream
func SilentProbe() *model.FFProbeOutput {
	return &model.FFProbeOutput{
		Streams: []model.FFProbeStream{{CodecType: "video", CodecName: "h264"}},
	}
}

// UploadFromString builds an upload whose declared size matches content
func UploadFromString(name, content string) *model.Upload {
	return &model.Upload{
		Name:      name,
		Extension: filepath.Ext(name),
		Size:      int64(len(content)),
		Body:      strings.NewReader(content),
	}
}

// WriteTempFile creates name under a fresh temp dir with content
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
	return path
}

// CountEntries returns the number of entries in dir, 0 when it is missing
func CountEntries(t *testing.T, dir string) int {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read %s: %v", dir, err)
	}
	return len(entries)
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
