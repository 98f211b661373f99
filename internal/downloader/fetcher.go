package downloader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
)

var contentTypeExtensions = map[string]string{
	"audio/mpeg":       ".mp3",
	"audio/mp3":        ".mp3",
	"audio/wav":        ".wav",
	"audio/x-wav":      ".wav",
	"audio/wave":       ".wav",
	"audio/mp4":        ".m4a",
	"audio/x-m4a":      ".m4a",
	"audio/flac":       ".flac",
	"audio/x-flac":     ".flac",
	"audio/ogg":        ".ogg",
	"video/mp4":        ".mp4",
	"video/quicktime":  ".mov",
	"video/x-msvideo":  ".avi",
	"video/x-matroska": ".mkv",
	"video/webm":       ".webm",
}

var knownExtensions = []string{".mp3", ".m4a", ".wav", ".flac", ".ogg", ".mp4", ".mov", ".avi", ".mkv", ".webm"}

// Fetcher downloads remote media. When a yt-dlp binary is configured it is
// used for every URL (video platforms need it); otherwise the URL is fetched
// over HTTP, following og:audio / og:video when it points at an HTML page.
type Fetcher struct {
	client    *http.Client
	ytDLPPath string
	maxSize   int64
	logger    *zap.Logger
}

func NewFetcher(client *http.Client, ytDLPPath string, maxSize int64, logger *zap.Logger) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{client: client, ytDLPPath: ytDLPPath, maxSize: maxSize, logger: logger.Named("fetcher")}
}

// Fetch stores the media behind rawURL in destDir and returns its path
func (f *Fetcher) Fetch(ctx context.Context, rawURL, destDir string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", apperrors.Newf(apperrors.KindFetch, "invalid media URL %q", rawURL)
	}

	if f.ytDLPPath != "" {
		return f.fetchWithYTDLP(ctx, u.String(), destDir)
	}
	return f.fetchHTTP(ctx, u, destDir, true)
}

func (f *Fetcher) fetchHTTP(ctx context.Context, u *url.URL, destDir string, followPage bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", apperrors.WithKind(apperrors.KindFetch, err, "build request")
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", apperrors.WithKind(apperrors.KindFetch, err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", apperrors.Newf(apperrors.KindFetch, "remote host answered %s", resp.Status)
	}

	contentType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if contentType == "text/html" {
		if !followPage {
			return "", apperrors.NewKind(apperrors.KindFetch, "media link points to another page")
		}
		mediaURL, err := resolveMediaURL(resp.Body, u)
		if err != nil {
			return "", err
		}
		f.logger.Debug("resolved media from page", zap.String("page", u.String()), zap.String("media", mediaURL.String()))
		return f.fetchHTTP(ctx, mediaURL, destDir, false)
	}

	if resp.ContentLength > f.maxSize {
		return "", f.tooLarge(resp.ContentLength)
	}

	ext := mediaExtension(u.Path)
	if ext == "" {
		ext = contentTypeExtensions[contentType]
	}
	target := filepath.Join(destDir, "source"+ext)
	if err := f.save(resp.Body, target); err != nil {
		return "", err
	}
	return target, nil
}

func (f *Fetcher) save(body io.Reader, target string) error {
	out, err := os.Create(target)
	if err != nil {
		return apperrors.WithKind(apperrors.KindFetch, err, "create download file")
	}
	defer out.Close()

	written, err := io.Copy(out, io.LimitReader(body, f.maxSize+1))
	if err != nil {
		return apperrors.WithKind(apperrors.KindFetch, err, "download interrupted")
	}
	if written > f.maxSize {
		return f.tooLarge(written)
	}
	if written == 0 {
		return apperrors.NewKind(apperrors.KindFetch, "remote media is empty")
	}
	return nil
}

// resolveMediaURL finds the media link of an HTML page
func resolveMediaURL(body io.Reader, base *url.URL) (*url.URL, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, apperrors.WithKind(apperrors.KindFetch, err, "parse page")
	}

	selectors := []struct {
		query string
		attr  string
	}{
		{`meta[property="og:audio"]`, "content"},
		{`meta[property="og:audio:url"]`, "content"},
		{`meta[property="og:video"]`, "content"},
		{`meta[property="og:video:url"]`, "content"},
		{`audio source[src]`, "src"},
		{`audio[src]`, "src"},
		{`video source[src]`, "src"},
		{`video[src]`, "src"},
	}
	for _, s := range selectors {
		value, ok := doc.Find(s.query).First().Attr(s.attr)
		if !ok || strings.TrimSpace(value) == "" {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(value))
		if err != nil {
			continue
		}
		return base.ResolveReference(ref), nil
	}
	return nil, apperrors.NewKind(apperrors.KindFetch, "no audio or video found on page")
}

// mediaExtension returns the lower-case extension of a URL path when it is
// a known media type
func mediaExtension(urlPath string) string {
	ext := strings.ToLower(path.Ext(urlPath))
	for _, known := range knownExtensions {
		if ext == known {
			return ext
		}
	}
	return ""
}

func (f *Fetcher) fetchWithYTDLP(ctx context.Context, rawURL, destDir string) (string, error) {
	cmd := exec.CommandContext(ctx, f.ytDLPPath,
		"-f", "bestaudio/best",
		"--no-playlist",
		"--no-progress",
		"--max-filesize", fmt.Sprint(f.maxSize),
		"-o", filepath.Join(destDir, "source.%(ext)s"),
		rawURL,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", apperrors.Wrapf(apperrors.NewKind(apperrors.KindFetch, strings.TrimSpace(stderr.String())), "yt-dlp failed: %v", err)
	}

	matches, _ := filepath.Glob(filepath.Join(destDir, "source.*"))
	for _, m := range matches {
		if strings.HasSuffix(m, ".part") || strings.HasSuffix(m, ".ytdl") {
			continue
		}
		info, err := os.Stat(m)
		if err != nil || info.Size() == 0 {
			continue
		}
		return m, nil
	}
	// yt-dlp exits 0 when --max-filesize skips the download
	return "", apperrors.NewKind(apperrors.KindFetch, "yt-dlp produced no file (it may exceed the size limit)")
}

func (f *Fetcher) tooLarge(size int64) error {
	return apperrors.Newf(apperrors.KindTooLarge, "remote media is %.1f MB, the limit is %d MB",
		float64(size)/(1024*1024), f.maxSize/(1024*1024))
}
