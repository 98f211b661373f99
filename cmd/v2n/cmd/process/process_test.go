package process

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-notes/internal/app/pipeline"
	"media-notes/internal/config"
)

func TestScanDirKeepsSupportedMedia(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.MP3", "a.mp4", "notes.txt", "c.wav"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "nested.mp3"), 0o755))

	files, err := scanDir(dir, config.MediaSettings{
		AudioExtensions: []string{".mp3", ".wav"},
		VideoExtensions: []string{".mp4"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.mp4"),
		filepath.Join(dir, "b.MP3"),
		filepath.Join(dir, "c.wav"),
	}, files)
}

func TestOpenSource(t *testing.T) {
	src, closer, err := openSource("https://media.example.com/talk.mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://media.example.com/talk.mp4", src.URL)
	assert.NoError(t, closer.Close())

	path := filepath.Join(t.TempDir(), "standup.m4a")
	require.NoError(t, os.WriteFile(path, []byte("12345"), 0o644))

	src, closer, err = openSource(path)
	require.NoError(t, err)
	defer closer.Close()
	require.NotNil(t, src.Upload)
	assert.Equal(t, "standup.m4a", src.Upload.Name)
	assert.Equal(t, ".m4a", src.Upload.Extension)
	assert.Equal(t, int64(5), src.Upload.Size)

	_, _, err = openSource(filepath.Join(t.TempDir(), "missing.mp3"))
	assert.Error(t, err)

	_, _, err = openSource(t.TempDir())
	assert.ErrorContains(t, err, "use --dir")
}

func TestReportCountsFailures(t *testing.T) {
	var buf bytes.Buffer
	failed := report(&buf, []string{"a.mp3", "b.mp3"}, []*pipeline.Outcome{
		{State: pipeline.StateCompleted, SavedID: 3, Title: "Standup"},
		{State: pipeline.StateRefused, Err: errors.New("insufficient credit")},
	})

	assert.Equal(t, 1, failed)
	assert.Contains(t, buf.String(), `✓ a.mp3 -> #3 "Standup"`)
	assert.Contains(t, buf.String(), "✗ b.mp3: refused (insufficient credit)")
}
