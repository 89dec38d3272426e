package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/hexsyn/intake/internal/config"
	"github.com/hexsyn/intake/internal/logger"
	"github.com/hexsyn/intake/internal/model"
)

const objectPrefix = "resumes"

// ErrEmptyFile is returned when there is nothing to upload
var ErrEmptyFile = errors.New("storage: file content and name are required")

// objectClient is the subset of *minio.Client used here
type objectClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	PresignedGetObject(ctx context.Context, bucket, object string, expiry time.Duration, params url.Values) (*url.URL, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

// MinIOUploader stores resumes in an S3-compatible bucket and links them
// with pre-signed URLs.
type MinIOUploader struct {
	client objectClient
	bucket string
	expiry time.Duration
	log    *logger.Logger
	now    func() time.Time
}

// NewMinIO connects to the bucket, creating it when missing
func NewMinIO(ctx context.Context, cfg config.MinIOConfig, log *logger.Logger) (*MinIOUploader, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("minio credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	u := newMinIOUploader(cli, cfg.Bucket, cfg.LinkExpiry, log)
	if err := u.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}
	return u, nil
}

func newMinIOUploader(client objectClient, bucket string, expiry time.Duration, log *logger.Logger) *MinIOUploader {
	if expiry <= 0 {
		expiry = 7 * 24 * time.Hour
	}
	return &MinIOUploader{
		client: client,
		bucket: bucket,
		expiry: expiry,
		log:    log.WithComponent("minio"),
		now:    time.Now,
	}
}

func (m *MinIOUploader) ensureBucket(ctx context.Context, region string) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
		m.log.Info().Str("bucket", m.bucket).Msg("Created bucket")
	}
	return nil
}

// Upload stores att under resumes/ and returns a pre-signed link to it
func (m *MinIOUploader) Upload(ctx context.Context, att *model.Attachment, ownerName, label string) (model.UploadResult, error) {
	if att == nil || len(att.Data) == 0 || att.FileName == "" {
		return model.UploadResult{}, ErrEmptyFile
	}

	name := FileName(m.now(), ownerName, label, att.FileName)
	key := path.Join(objectPrefix, name)

	_, err := m.client.PutObject(ctx, m.bucket, key, bytes.NewReader(att.Data), att.Size(), minio.PutObjectOptions{
		ContentType:  att.ContentType,
		UserMetadata: map[string]string{"original-filename": att.FileName},
	})
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("upload to storage: %w", err)
	}

	view, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, url.Values{})
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("presign %s: %w", key, err)
	}

	params := url.Values{}
	params.Set("response-content-disposition", fmt.Sprintf("attachment; filename=%q", name))
	download, err := m.client.PresignedGetObject(ctx, m.bucket, key, m.expiry, params)
	if err != nil {
		return model.UploadResult{}, fmt.Errorf("presign %s: %w", key, err)
	}

	m.log.Info().Str("key", key).Int64("size", att.Size()).Msg("Resume uploaded")

	return model.UploadResult{
		FileID:       key,
		FileName:     name,
		ViewLink:     view.String(),
		DownloadLink: download.String(),
	}, nil
}

// Delete removes a stored object by key
func (m *MinIOUploader) Delete(ctx context.Context, key string) error {
	if err := m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}
