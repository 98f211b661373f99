package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	apperrors "media-notes/internal/app/errors"
	"media-notes/internal/app/model"
)

// MediaTool probes, validates and converts media files
type MediaTool interface {
	Probe(ctx context.Context, filePath string) (*model.FFProbeOutput, error)
	Validate(ctx context.Context, filePath string) error
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

// Fetcher downloads a remote source into destDir and returns the file path
type Fetcher interface {
	Fetch(ctx context.Context, rawURL, destDir string) (string, error)
}

type Options struct {
	MaxFileSize     int64
	AudioExtensions []string
	VideoExtensions []string
	// WorkDir is the parent of per-job directories; empty means os.TempDir
	WorkDir string
}

// Normalizer turns an upload or URL into a canonical AudioArtifact
type Normalizer struct {
	opts     Options
	audioExt map[string]bool
	videoExt map[string]bool
	tool     MediaTool
	fetcher  Fetcher
	logger   *zap.Logger
}

func NewNormalizer(opts Options, tool MediaTool, fetcher Fetcher, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	set := func(exts []string) map[string]bool {
		return lo.SliceToMap(exts, func(ext string) (string, bool) {
			return normalizeExt(ext), true
		})
	}
	return &Normalizer{
		opts:     opts,
		audioExt: set(opts.AudioExtensions),
		videoExt: set(opts.VideoExtensions),
		tool:     tool,
		fetcher:  fetcher,
		logger:   logger.Named("normalizer"),
	}
}

// SupportedExtensions lists accepted upload extensions, sorted
func (n *Normalizer) SupportedExtensions() []string {
	exts := append(lo.Keys(n.audioExt), lo.Keys(n.videoExt)...)
	sort.Strings(exts)
	return exts
}

// MaxFileSize returns the size ceiling in bytes
func (n *Normalizer) MaxFileSize() int64 {
	return n.opts.MaxFileSize
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Normalize produces canonical audio for src. Every file it creates lives
// in one private directory; on failure the directory is removed before
// returning, on success the caller removes it with AudioArtifact.Release.
func (n *Normalizer) Normalize(ctx context.Context, src model.MediaSource) (artifact *model.AudioArtifact, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if src.Upload == nil && src.URL == "" {
		return nil, apperrors.RequiredField("media source")
	}

	// Cheap checks on uploads run before anything touches the disk.
	if src.Upload != nil {
		if err := n.checkUpload(src.Upload); err != nil {
			return nil, err
		}
	}

	workDir, err := os.MkdirTemp(n.opts.WorkDir, "v2n-job-*")
	if err != nil {
		return nil, apperrors.WithKind(apperrors.KindConversion, err, "create working directory")
	}
	defer func() {
		if artifact == nil {
			if rmErr := os.RemoveAll(workDir); rmErr != nil {
				n.logger.Warn("failed to remove working directory", zap.String("dir", workDir), zap.Error(rmErr))
			}
		}
	}()

	logger := n.logger.With(zap.String("source", src.Describe()), zap.String("kind", string(src.Kind())))

	var sourcePath string
	if src.Upload != nil {
		sourcePath, err = n.stageUpload(src.Upload, workDir)
	} else {
		sourcePath, err = n.fetch(ctx, src.URL, workDir)
	}
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(sourcePath)
	if err != nil {
		return nil, apperrors.WithKind(apperrors.KindCorruptMedia, err, "read staged media")
	}
	if info.Size() > n.opts.MaxFileSize {
		return nil, n.tooLarge(info.Size())
	}

	probe, err := n.tool.Probe(ctx, sourcePath)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.WithKind(apperrors.KindCorruptMedia, err, "media could not be probed")
	}
	if !probe.HasAudio() {
		return nil, apperrors.Newf(apperrors.KindCorruptMedia, "%s contains no audio stream", src.Describe())
	}
	if err := n.tool.Validate(ctx, sourcePath); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, apperrors.WithKind(apperrors.KindCorruptMedia, err, "media failed to decode")
	}

	ext := normalizeExt(filepath.Ext(sourcePath))
	isVideo := n.videoExt[ext] || probe.HasVideo()
	outputPath := filepath.Join(workDir, "audio.wav")

	start := time.Now()
	if !isVideo && ext == ".wav" && IsCanonical(probe) {
		if err := os.Rename(sourcePath, outputPath); err != nil {
			return nil, apperrors.WithKind(apperrors.KindConversion, err, "stage canonical audio")
		}
		logger.Debug("source already canonical, skipping conversion")
	} else {
		if err := n.tool.ExtractAudio(ctx, sourcePath, outputPath); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, apperrors.WithKind(apperrors.KindConversion, err, "audio conversion failed")
		}
		if rmErr := os.Remove(sourcePath); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			logger.Warn("failed to remove source media", zap.Error(rmErr))
		}
	}

	out, err := os.Stat(outputPath)
	if err != nil || out.Size() == 0 {
		if err == nil {
			err = fmt.Errorf("converter produced an empty file")
		}
		return nil, apperrors.WithKind(apperrors.KindConversion, err, "audio conversion failed")
	}

	duration := time.Duration(probe.DurationSeconds() * float64(time.Second))
	logger.Info("media normalized",
		zap.Bool("video", isVideo),
		zap.Int64("bytes", out.Size()),
		zap.Duration("audio_duration", duration),
		zap.Duration("took", time.Since(start)))

	return &model.AudioArtifact{
		Path:       outputPath,
		Size:       out.Size(),
		Duration:   duration,
		SampleRate: CanonicalSampleRate,
		Channels:   CanonicalChannels,
		SourceKind: src.Kind(),
		SourceName: src.Describe(),
		WorkDir:    workDir,
	}, nil
}

func (n *Normalizer) checkUpload(u *model.Upload) error {
	ext := normalizeExt(u.Extension)
	if ext == "" {
		ext = normalizeExt(filepath.Ext(u.Name))
	}
	if !n.audioExt[ext] && !n.videoExt[ext] {
		return apperrors.Newf(apperrors.KindUnsupportedFormat,
			"unsupported file format %q, supported formats: %s", ext, strings.Join(n.SupportedExtensions(), ", "))
	}
	if u.Size > n.opts.MaxFileSize {
		return n.tooLarge(u.Size)
	}
	if u.Body == nil {
		return apperrors.RequiredField("upload body")
	}
	return nil
}

// stageUpload copies the upload into workDir, stopping one byte past the
// ceiling so an understated Size cannot bypass the limit.
func (n *Normalizer) stageUpload(u *model.Upload, workDir string) (string, error) {
	ext := normalizeExt(u.Extension)
	if ext == "" {
		ext = normalizeExt(filepath.Ext(u.Name))
	}
	path := filepath.Join(workDir, "source"+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", apperrors.WithKind(apperrors.KindConversion, err, "stage upload")
	}
	defer f.Close()

	written, err := io.Copy(f, io.LimitReader(u.Body, n.opts.MaxFileSize+1))
	if err != nil {
		return "", apperrors.WithKind(apperrors.KindCorruptMedia, err, "read upload")
	}
	if written > n.opts.MaxFileSize {
		return "", n.tooLarge(written)
	}
	if written == 0 {
		return "", apperrors.Newf(apperrors.KindCorruptMedia, "upload %s is empty", u.Name)
	}
	return path, nil
}

func (n *Normalizer) fetch(ctx context.Context, rawURL, workDir string) (string, error) {
	if n.fetcher == nil {
		return "", apperrors.NewKind(apperrors.KindFetch, "remote sources are not enabled")
	}
	path, err := n.fetcher.Fetch(ctx, rawURL, workDir)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.WithKind(apperrors.KindFetch, err, "failed to fetch media")
	}
	return path, nil
}

func (n *Normalizer) tooLarge(size int64) error {
	return apperrors.Newf(apperrors.KindTooLarge, "media is %.1f MB, the limit is %d MB",
		float64(size)/(1024*1024), n.opts.MaxFileSize/(1024*1024))
}
