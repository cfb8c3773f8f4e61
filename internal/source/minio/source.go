// Package minio fetches the article snapshot from an S3-compatible object
// store (R2, MinIO, S3). The whole collection lives in one JSON metadata
// object regenerated by the ingestion pipeline.
package minio

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/corvusec/newsdex/internal/domain"
	"github.com/corvusec/newsdex/internal/domain/snapshot"
)

// DefaultObject is the metadata object name used when none is configured.
const DefaultObject = "search_metadata.json"

// Config holds object-store connection parameters.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Object    string
}

// Source reads the snapshot payload from object storage.
type Source struct {
	client *minio.Client
	bucket string
	object string
}

// New creates a Source.
func New(cfg Config) (*Source, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("source endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("source bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create object store client: %w", err)
	}
	object := cfg.Object
	if object == "" {
		object = DefaultObject
	}
	return &Source{client: client, bucket: cfg.Bucket, object: object}, nil
}

// FetchSnapshot downloads and decodes the metadata object. Every failure
// wraps domain.ErrSourceUnavailable so the cache can apply its fallback
// protocol.
func (s *Source) FetchSnapshot(ctx context.Context) (*snapshot.Snapshot, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: get %s/%s: %w", domain.ErrSourceUnavailable, s.bucket, s.object, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s/%s: %w", domain.ErrSourceUnavailable, s.bucket, s.object, err)
	}

	snap, err := snapshot.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrSourceUnavailable, err)
	}
	return snap, nil
}
