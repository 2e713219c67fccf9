// Package snapshot publishes replica snapshots to S3-compatible storage so a
// new edge node can start from a recent copy instead of an empty replica.
// When no bucket is configured the NoopUploader is used and snapshots stay
// local.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hyperengineering/edgereplica/internal/config"
)

// ErrNotConfigured is returned when snapshot storage is not configured.
var ErrNotConfigured = errors.New("snapshot storage not configured")

// Uploader publishes snapshot files and hands out download links.
type Uploader interface {
	// Upload replaces the published snapshot with the file at filePath.
	Upload(ctx context.Context, filePath string) error

	// PresignedURL returns a time-limited download URL for the published
	// snapshot. Returns ErrNotConfigured when storage is not configured.
	PresignedURL(ctx context.Context) (link string, expiry time.Time, err error)
}

// s3Client is the subset of *minio.Client used by S3Uploader.
type s3Client interface {
	FPutObject(ctx context.Context, bucket, objectName, filePath string) error
	PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration) (*url.URL, error)
}

type minioClient struct {
	client *minio.Client
}

func (c *minioClient) FPutObject(ctx context.Context, bucket, objectName, filePath string) error {
	_, err := c.client.FPutObject(ctx, bucket, objectName, filePath, minio.PutObjectOptions{
		ContentType: "application/vnd.sqlite3",
	})
	return err
}

func (c *minioClient) PresignedGetObject(ctx context.Context, bucket, objectName string, expiry time.Duration) (*url.URL, error) {
	return c.client.PresignedGetObject(ctx, bucket, objectName, expiry, nil)
}

// S3Uploader publishes snapshots to an S3-compatible bucket.
type S3Uploader struct {
	client    s3Client
	bucket    string
	key       string
	urlExpiry time.Duration
}

// Upload uploads the snapshot file at filePath.
func (u *S3Uploader) Upload(ctx context.Context, filePath string) error {
	if err := u.client.FPutObject(ctx, u.bucket, u.key, filePath); err != nil {
		return fmt.Errorf("upload snapshot to %s/%s: %w", u.bucket, u.key, err)
	}
	return nil
}

// PresignedURL returns a pre-signed GET URL for the published snapshot.
func (u *S3Uploader) PresignedURL(ctx context.Context) (string, time.Time, error) {
	presigned, err := u.client.PresignedGetObject(ctx, u.bucket, u.key, u.urlExpiry)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generate pre-signed URL: %w", err)
	}
	return presigned.String(), time.Now().Add(u.urlExpiry), nil
}

// NoopUploader keeps snapshots local.
type NoopUploader struct{}

// Upload does nothing.
func (NoopUploader) Upload(ctx context.Context, filePath string) error {
	return nil
}

// PresignedURL returns ErrNotConfigured.
func (NoopUploader) PresignedURL(ctx context.Context) (string, time.Time, error) {
	return "", time.Time{}, ErrNotConfigured
}

// NewUploader returns NoopUploader when no bucket is configured and an
// S3Uploader otherwise.
func NewUploader(cfg config.SnapshotConfig) (Uploader, error) {
	if cfg.Bucket == "" {
		return NoopUploader{}, nil
	}

	useSSL := true
	if cfg.UseSSL != nil {
		useSSL = *cfg.UseSSL
	}
	endpoint := stripScheme(cfg.Endpoint, &useSSL)

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: useSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create S3 client: %w", err)
	}

	expiry := time.Duration(cfg.URLExpiry)
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}

	return &S3Uploader{
		client:    &minioClient{client: client},
		bucket:    cfg.Bucket,
		key:       objectKey(cfg.Prefix),
		urlExpiry: expiry,
	}, nil
}

// stripScheme accepts endpoints written as URLs. minio wants host[:port];
// an explicit scheme overrides useSSL.
func stripScheme(endpoint string, useSSL *bool) string {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		*useSSL = true
		return strings.TrimPrefix(endpoint, "https://")
	case strings.HasPrefix(endpoint, "http://"):
		*useSSL = false
		return strings.TrimPrefix(endpoint, "http://")
	}
	return endpoint
}

// objectKey returns the object key of the published snapshot:
// {prefix}/snapshot/current.db
func objectKey(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		prefix = "edgereplica"
	}
	return path.Join(prefix, "snapshot", "current.db")
}
