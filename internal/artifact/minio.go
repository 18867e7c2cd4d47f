package artifact

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinioConfig holds object store connection settings.
type MinioConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Secure    bool   `koanf:"secure"`
}

// MinioStore keeps artifacts in a MinIO or S3 compatible object store,
// one store bucket per artifact bucket. Buckets are created on first use.
type MinioStore struct {
	client *minio.Client
	logger *slog.Logger

	mu    sync.Mutex
	ready map[Bucket]bool
}

var _ Store = (*MinioStore)(nil)

// NewMinioStore creates a client for cfg. No request is made until the
// first operation. If logger is nil, a discard logger is used.
func NewMinioStore(cfg MinioConfig, logger *slog.Logger) (*MinioStore, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio: endpoint is required")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: %w", err)
	}
	return &MinioStore{client: client, logger: logger, ready: map[Bucket]bool{}}, nil
}

// Put uploads data.
func (s *MinioStore) Put(ctx context.Context, bucket Bucket, key string, data []byte) error {
	if err := validate(bucket, key); err != nil {
		return fmt.Errorf("put: %w", err)
	}
	if err := s.ensureBucket(ctx, bucket); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, string(bucket), key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("uploading %s/%s: %w", bucket, key, err)
	}
	s.logger.Debug("artifact uploaded", slog.String("bucket", string(bucket)), slog.String("key", key), slog.Int("bytes", len(data)))
	return nil
}

// Get downloads an object.
func (s *MinioStore) Get(ctx context.Context, bucket Bucket, key string) ([]byte, error) {
	if err := validate(bucket, key); err != nil {
		return nil, fmt.Errorf("get: %w", err)
	}
	obj, err := s.client.GetObject(ctx, string(bucket), key, minio.GetObjectOptions{})
	if err != nil {
		return nil, s.mapError(bucket, key, err)
	}
	defer obj.Close()
	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.mapError(bucket, key, err)
	}
	return data, nil
}

// Exists reports whether an object is present.
func (s *MinioStore) Exists(ctx context.Context, bucket Bucket, key string) (bool, error) {
	if err := validate(bucket, key); err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	_, err := s.client.StatObject(ctx, string(bucket), key, minio.StatObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat %s/%s: %w", bucket, key, err)
	}
	return true, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context, bucket Bucket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready[bucket] {
		return nil
	}
	exists, err := s.client.BucketExists(ctx, string(bucket))
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", bucket, err)
	}
	if !exists {
		if err := s.client.MakeBucket(ctx, string(bucket), minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("creating bucket %s: %w", bucket, err)
		}
		s.logger.Info("bucket created", slog.String("bucket", string(bucket)))
	}
	s.ready[bucket] = true
	return nil
}

func (s *MinioStore) mapError(bucket Bucket, key string, err error) error {
	if isNotFound(err) {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, bucket, key)
	}
	return fmt.Errorf("downloading %s/%s: %w", bucket, key, err)
}

func isNotFound(err error) bool {
	switch minio.ToErrorResponse(err).Code {
	case "NoSuchKey", "NoSuchBucket":
		return true
	}
	return false
}
