package archive

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	log "github.com/sirupsen/logrus"
)

// MinIOArchiver stores click exports in an S3-compatible bucket.
type MinIOArchiver struct {
	client *minio.Client
	bucket string
}

func NewMinIOArchiver(endpoint, accessKey, secretKey, bucket string, useSSL bool) (*MinIOArchiver, error) {
	if bucket == "" {
		return nil, fmt.Errorf("minio bucket is required")
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	return &MinIOArchiver{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the bucket on first use.
func (m *MinIOArchiver) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("make bucket %s: %w", m.bucket, err)
	}
	log.WithField("bucket", m.bucket).Info("created archive bucket")
	return nil
}

func (m *MinIOArchiver) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	_, err := m.client.PutObject(ctx, m.bucket, key, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return fmt.Errorf("upload to minio: %w", err)
	}
	return nil
}
