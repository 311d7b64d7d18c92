package minio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/adrianliechti/mistral-ocr/pkg/storage"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var _ storage.Sink = &Sink{}

// Sink mirrors artifacts into an S3-compatible bucket.
type Sink struct {
	client *minio.Client

	bucket string
	prefix string
}

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string

	Bucket string
	Prefix string

	UseSSL bool
}

// New connects to the endpoint and creates the bucket when it does not exist.
func New(ctx context.Context, cfg Config) (*Sink, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("minio endpoint is required")
	}

	if cfg.Bucket == "" {
		return nil, errors.New("minio bucket is required")
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})

	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	exists, err := client.BucketExists(ctx, cfg.Bucket)

	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}

	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return &Sink{
		client: client,

		bucket: cfg.Bucket,
		prefix: strings.Trim(cfg.Prefix, "/"),
	}, nil
}

func (s *Sink) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.objectName(key), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})

	return err
}

func (s *Sink) Delete(ctx context.Context, key string) error {
	name := s.objectName(key)

	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    name + "/",
		Recursive: true,
	})

	for object := range objects {
		if object.Err != nil {
			return object.Err
		}

		if err := s.client.RemoveObject(ctx, s.bucket, object.Key, minio.RemoveObjectOptions{}); err != nil {
			return err
		}
	}

	return s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{})
}

func (s *Sink) objectName(key string) string {
	key = strings.Trim(key, "/")

	if s.prefix == "" {
		return key
	}

	return path.Join(s.prefix, key)
}
