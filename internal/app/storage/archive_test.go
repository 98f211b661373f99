package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"media-notes/internal/app/model"
)

func sampleSaved() *model.SavedTranscription {
	return &model.SavedTranscription{
		ID:         7,
		AccountID:  3,
		Title:      "Weekly sync",
		Transcript: "we ship friday",
		Notes:      "**Key Decisions**\n- ship",
		CreatedAt:  time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
	}
}

// fakeS3 accepts object uploads and remembers the last one
type fakeS3 struct {
	mu          sync.Mutex
	path        string
	body        string
	contentType string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusOK)
		return
	}
	data, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.path = r.URL.Path
	f.body = string(data)
	f.contentType = r.Header.Get("Content-Type")
	f.mu.Unlock()
	w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
	w.WriteHeader(http.StatusOK)
}

func TestMinioArchive(t *testing.T) {
	fake := &fakeS3{}
	server := httptest.NewServer(fake)
	defer server.Close()

	endpoint := strings.TrimPrefix(server.URL, "http://")
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4("access", "secret", ""),
		Region: "us-east-1",
	})
	require.NoError(t, err)

	archive := newMinioArchive(client, MinioConfig{Bucket: "meeting-summaries", URLExpiry: time.Hour}, nil)
	link, err := archive.Archive(context.Background(), sampleSaved())
	require.NoError(t, err)

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.True(t, strings.HasPrefix(fake.path, "/meeting-summaries/summaries/3/"), fake.path)
	assert.True(t, strings.HasSuffix(fake.path, "meeting_summary_20240506_070809.txt"), fake.path)
	assert.Contains(t, fake.body, "we ship friday")
	assert.Equal(t, "text/plain; charset=utf-8", fake.contentType)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, endpoint, u.Host)
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}

func TestLocalArchive(t *testing.T) {
	dir := t.TempDir()
	archive := NewLocalArchive(dir)

	path, err := archive.Archive(context.Background(), sampleSaved())
	require.NoError(t, err)
	assert.Equal(t, "7_meeting_summary_20240506_070809.txt", path[len(dir)+1:])

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "📌 **Transcription:**\nwe ship friday"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = archive.Archive(ctx, sampleSaved())
	assert.ErrorIs(t, err, context.Canceled)
}
