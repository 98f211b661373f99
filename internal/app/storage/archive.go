package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"media-notes/internal/app/export"
	"media-notes/internal/app/model"
	"media-notes/internal/app/util/files"
)

// MinioConfig holds the object store connection settings
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	Region    string
	URLExpiry time.Duration
}

// MinioArchive stores summary files of completed jobs in an S3 compatible
// bucket and hands out presigned download links.
type MinioArchive struct {
	client *minio.Client
	bucket string
	expiry time.Duration
	logger *zap.Logger
}

// NewMinioArchive connects to the object store and creates the bucket when
// it does not exist yet.
func NewMinioArchive(ctx context.Context, cfg MinioConfig, logger *zap.Logger) (*MinioArchive, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create MinIO client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket existence: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
	}
	return newMinioArchive(client, cfg, logger), nil
}

func newMinioArchive(client *minio.Client, cfg MinioConfig, logger *zap.Logger) *MinioArchive {
	if logger == nil {
		logger = zap.NewNop()
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &MinioArchive{client: client, bucket: cfg.Bucket, expiry: expiry, logger: logger.Named("archive")}
}

// Archive uploads the summary file of saved and returns a presigned URL
func (a *MinioArchive) Archive(ctx context.Context, saved *model.SavedTranscription) (string, error) {
	name := export.SummaryFileName(saved.CreatedAt)
	key := fmt.Sprintf("summaries/%d/%s-%s", saved.AccountID, uuid.New().String()[:8], name)
	body := []byte(export.SummaryText(saved))

	_, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), int64(len(body)), minio.PutObjectOptions{
		ContentType:        "text/plain; charset=utf-8",
		ContentDisposition: fmt.Sprintf("attachment; filename=%q", name),
		UserMetadata: map[string]string{
			"transcription-id": fmt.Sprint(saved.ID),
			"title":            url.QueryEscape(saved.Title),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload summary to MinIO: %w", err)
	}

	presigned, err := a.client.PresignedGetObject(ctx, a.bucket, key, a.expiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign summary URL: %w", err)
	}
	a.logger.Debug("summary archived", zap.String("key", key), zap.Int64("transcription_id", saved.ID))
	return presigned.String(), nil
}

// LocalArchive writes summary files into a directory. The CLI uses it to
// keep a copy of every processed job next to the database.
type LocalArchive struct {
	dir string
}

func NewLocalArchive(dir string) *LocalArchive {
	return &LocalArchive{dir: dir}
}

// Archive writes the summary file and returns its path
func (a *LocalArchive) Archive(ctx context.Context, saved *model.SavedTranscription) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := export.SummaryFileName(saved.CreatedAt)
	if saved.ID > 0 {
		name = fmt.Sprintf("%d_%s", saved.ID, name)
	}
	path := filepath.Join(a.dir, name)
	if err := files.WriteFileAtomic(path, []byte(export.SummaryText(saved))); err != nil {
		return "", fmt.Errorf("write summary file: %w", err)
	}
	return path, nil
}
