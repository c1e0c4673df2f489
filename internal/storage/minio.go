package storage

import (
	"bytes"
	"context"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"server/internal/domain"
)

// MinioOptions configures the S3-compatible object store adapter.
type MinioOptions struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Bucket     string
	UseSSL     bool
	PublicBase string // optional public base URL for served objects
}

// MinioStore stores images in an S3-compatible bucket.
type MinioStore struct {
	client *minio.Client
	opts   MinioOptions
}

func NewMinioStore(opts MinioOptions) (*MinioStore, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
	})
	if err != nil {
		return nil, domain.WrapError(domain.KindStorageError, "failed to initialize object storage client", err)
	}
	return &MinioStore{client: client, opts: opts}, nil
}

func (s *MinioStore) Name() string { return "minio" }

// Upload puts the image into the configured bucket under a
// date-partitioned, uuid-named key and returns the key plus public URL.
func (s *MinioStore) Upload(ctx context.Context, data []byte, filename, folder, contentType string) (string, string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", "", err
	}

	key := buildKey(folder, filename, contentType, time.Now())
	_, err := s.client.PutObject(ctx, s.opts.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", "", domain.WrapError(domain.KindStorageError, "failed to upload image", err)
	}

	return key, s.publicURL(key), nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.opts.Bucket)
	if err != nil {
		return domain.WrapError(domain.KindStorageError, "failed to check bucket", err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, s.opts.Bucket, minio.MakeBucketOptions{}); err != nil {
			return domain.WrapError(domain.KindStorageError, "failed to create bucket", err)
		}
	}
	return nil
}

func (s *MinioStore) publicURL(key string) string {
	if s.opts.PublicBase != "" {
		return strings.TrimRight(s.opts.PublicBase, "/") + "/" + key
	}
	scheme := "http://"
	if s.opts.UseSSL {
		scheme = "https://"
	}
	return scheme + s.opts.Endpoint + "/" + s.opts.Bucket + "/" + key
}

var _ ObjectStore = (*MinioStore)(nil)
