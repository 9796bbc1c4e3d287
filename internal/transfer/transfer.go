// Package transfer ships flat files to S3-compatible object storage.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arovil7777/naver-news-crawling/pkg/common"
)

// ErrDisabled is returned by Transfer when no endpoint is configured.
var ErrDisabled = errors.New("transfer disabled")

// Uploader uploads files to one bucket
type Uploader struct {
	client *miniogo.Client
	config common.TransferConfig
	logger *log.Logger
	now    func() time.Time
}

// New creates an Uploader. A config without endpoint yields a disabled
// uploader whose Transfer returns ErrDisabled.
func New(cfg common.TransferConfig, logger *log.Logger) (*Uploader, error) {
	u := &Uploader{config: cfg, logger: logger, now: time.Now}
	if !cfg.Enabled() {
		logger.Debug("Bulk transfer disabled")
		return u, nil
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	u.client = client
	return u, nil
}

// Enabled reports whether transfers go anywhere
func (u *Uploader) Enabled() bool {
	return u.client != nil
}

// ObjectKey returns the key a file is stored under:
// <prefix>/YYYY/MM/DD/<file name>.
func (u *Uploader) ObjectKey(file string) string {
	now := u.now()
	parts := []string{
		now.Format("2006"),
		now.Format("01"),
		now.Format("02"),
		filepath.Base(file),
	}
	if prefix := strings.Trim(u.config.Prefix, "/"); prefix != "" {
		parts = append([]string{prefix}, parts...)
	}
	return path.Join(parts...)
}

// Transfer uploads the file at file, creating the bucket if it does not
// exist, and returns the object key.
func (u *Uploader) Transfer(ctx context.Context, file string) (string, error) {
	if !u.Enabled() {
		return "", ErrDisabled
	}

	if err := u.ensureBucket(ctx); err != nil {
		return "", err
	}

	key := u.ObjectKey(file)
	info, err := u.client.FPutObject(ctx, u.config.Bucket, key, file, miniogo.PutObjectOptions{
		ContentType: contentType(file),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", file, err)
	}

	u.logger.Info("Transferred file",
		"bucket", u.config.Bucket,
		"object_key", key,
		"size", info.Size)
	return key, nil
}

func (u *Uploader) ensureBucket(ctx context.Context) error {
	exists, err := u.client.BucketExists(ctx, u.config.Bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", u.config.Bucket, err)
	}
	if exists {
		return nil
	}
	if err := u.client.MakeBucket(ctx, u.config.Bucket, miniogo.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %s: %w", u.config.Bucket, err)
	}
	u.logger.Info("Created bucket", "bucket", u.config.Bucket)
	return nil
}

func contentType(file string) string {
	switch strings.ToLower(filepath.Ext(file)) {
	case ".csv":
		return "text/csv; charset=utf-8"
	case ".json":
		return "application/json"
	default:
		return "application/octet-stream"
	}
}
