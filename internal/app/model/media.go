package model

import (
	"io"
	"os"
	"sync"
	"time"
)

// SourceKind distinguishes uploaded media from remote URLs
type SourceKind string

const (
	SourceUpload SourceKind = "upload"
	SourceRemote SourceKind = "remote"
)

// Upload is media bytes provided directly by the caller
type Upload struct {
	Name      string
	Extension string
	Size      int64
	Body      io.Reader
}

// MediaSource is either an Upload or a remote URL. Exactly one is set.
type MediaSource struct {
	Upload *Upload
	URL    string
}

// UploadSource builds a MediaSource for uploaded content
func UploadSource(u *Upload) MediaSource {
	return MediaSource{Upload: u}
}

// RemoteSource builds a MediaSource for a URL
func RemoteSource(url string) MediaSource {
	return MediaSource{URL: url}
}

func (s MediaSource) Kind() SourceKind {
	if s.Upload != nil {
		return SourceUpload
	}
	return SourceRemote
}

// Describe returns the file name or URL for logs
func (s MediaSource) Describe() string {
	if s.Upload != nil {
		return s.Upload.Name
	}
	return s.URL
}

// AudioArtifact is decoded audio in the canonical format (16 kHz mono PCM
// WAV). It owns a private working directory which Release removes.
type AudioArtifact struct {
	Path       string
	Size       int64
	Duration   time.Duration
	SampleRate int
	Channels   int
	SourceKind SourceKind
	SourceName string
	WorkDir    string

	once sync.Once
}

// Release removes the artifact and every intermediate file next to it.
// Safe to call more than once.
func (a *AudioArtifact) Release() error {
	if a == nil {
		return nil
	}
	var err error
	a.once.Do(func() {
		if a.WorkDir != "" {
			err = os.RemoveAll(a.WorkDir)
		}
	})
	return err
}
