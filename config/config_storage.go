package config

import (
	"context"
	"errors"
	"strings"

	"github.com/adrianliechti/mistral-ocr/pkg/storage"
	"github.com/adrianliechti/mistral-ocr/pkg/storage/local"
	"github.com/adrianliechti/mistral-ocr/pkg/storage/minio"
)

// StorageConfig configures an additional sink that receives a copy of every
// artifact written to the output directory.
type StorageConfig struct {
	Type string `yaml:"type"`

	URL       string `yaml:"url"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`

	SSL bool `yaml:"ssl"`
}

func (cfg *StorageConfig) validate() error {
	switch strings.ToLower(cfg.Type) {
	case "minio", "s3":
	default:
		return errors.New("invalid storage type: " + cfg.Type)
	}

	if cfg.URL == "" {
		return errors.New("storage url is required")
	}

	if cfg.Bucket == "" {
		return errors.New("storage bucket is required")
	}

	return nil
}

// Sink returns the local output directory sink, mirrored into object storage
// when a storage section is configured.
func (c *Config) Sink(ctx context.Context) (storage.Sink, error) {
	fs, err := local.New(c.OutputDir())

	if err != nil {
		return nil, err
	}

	if c.Storage == nil {
		return fs, nil
	}

	if err := c.Storage.validate(); err != nil {
		return nil, err
	}

	remote, err := minio.New(ctx, minio.Config{
		Endpoint:  c.Storage.URL,
		AccessKey: c.Storage.AccessKey,
		SecretKey: c.Storage.SecretKey,

		Bucket: c.Storage.Bucket,
		Prefix: c.Storage.Prefix,

		UseSSL: c.Storage.SSL,
	})

	if err != nil {
		return nil, err
	}

	return storage.Multi{fs, remote}, nil
}
