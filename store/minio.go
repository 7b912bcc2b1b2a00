package store

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStore keeps streams as objects in a MinIO or S3-compatible server,
// addressed by "bucket/key".
type MinIOStore struct {
	client *minio.Client
}

// NewMinIOStore wraps a MinIO client.
func NewMinIOStore(client *minio.Client) *MinIOStore {
	return &MinIOStore{client: client}
}

// DialMinIO creates a client for endpoint with static credentials.
func DialMinIO(endpoint, accessKey, secretKey string, useSSL bool) (*MinIOStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("store: minio client %s: %w", endpoint, err)
	}
	return NewMinIOStore(client), nil
}

// Create streams writes to a background PutObject that completes on Close.
func (s *MinIOStore) Create(ctx context.Context, key string) (io.WriteCloser, error) {
	bucket, object, err := splitBucket(key)
	if err != nil {
		return nil, err
	}
	pr, pw := io.Pipe()
	w := &uploadWriter{pw: pw, done: make(chan error, 1)}
	go func() {
		_, err := s.client.PutObject(ctx, bucket, object, pr, -1, minio.PutObjectOptions{})
		_ = pr.CloseWithError(err)
		w.done <- err
	}()
	return w, nil
}

// Open verifies the object exists and returns it for reading.
func (s *MinIOStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	bucket, object, err := splitBucket(key)
	if err != nil {
		return nil, err
	}
	if _, err := s.client.StatObject(ctx, bucket, object, minio.StatObjectOptions{}); err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
			return nil, errors.Join(ErrNotFound, err)
		}
		return nil, fmt.Errorf("store: stat minio://%s: %w", key, err)
	}
	obj, err := s.client.GetObject(ctx, bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("store: get minio://%s: %w", key, err)
	}
	return obj, nil
}
