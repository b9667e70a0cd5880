// Package publish uploads finished creator reports to object storage.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/mchmarny/cloutcheck/pkg/model"
)

const (
	contentTypeJSON = "application/json"
	defaultRegion   = "us-east-1"
	maxIdleConns    = 10
	idleConnTimeout = 90 * time.Second
)

// Publisher makes a report available outside the local machine.
type Publisher interface {
	Publish(ctx context.Context, r *model.CreatorReport) error
}

// Noop discards reports.
type Noop struct{}

// Publish does nothing.
func (Noop) Publish(context.Context, *model.CreatorReport) error { return nil }

// Config configures the object storage publisher.
type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	Secure    bool
}

// MinIO uploads reports to an S3 compatible bucket.
type MinIO struct {
	client *minio.Client
	bucket string
	region string
}

var (
	_ Publisher = Noop{}
	_ Publisher = (*MinIO)(nil)
)

// NewMinIO creates the publisher. The bucket is created on first use.
func NewMinIO(cfg Config) (*MinIO, error) {
	if cfg.Endpoint == "" || cfg.Bucket == "" {
		return nil, errors.New("object storage endpoint and bucket required")
	}
	if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: cfg.Region,
		Transport: &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			MaxIdleConns:    maxIdleConns,
			IdleConnTimeout: idleConnTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	return &MinIO{client: client, bucket: cfg.Bucket, region: cfg.Region}, nil
}

// EnsureBucket creates the bucket when it does not exist.
func (m *MinIO) EnsureBucket(ctx context.Context) error {
	exists, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %s: %w", m.bucket, err)
	}
	if exists {
		return nil
	}
	if err := m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{Region: m.region}); err != nil {
		return fmt.Errorf("creating bucket %s: %w", m.bucket, err)
	}
	slog.Info("bucket created", "bucket", m.bucket)
	return nil
}

// ObjectName is {handle}/{run_id}.json.
func ObjectName(r *model.CreatorReport) string {
	return path.Join(r.Username, r.RunID+".json")
}

// Publish uploads the report as indented JSON.
func (m *MinIO) Publish(ctx context.Context, r *model.CreatorReport) error {
	if r == nil || r.Username == "" || r.RunID == "" {
		return errors.New("report with username and run id required")
	}
	if err := m.EnsureBucket(ctx); err != nil {
		return err
	}

	b, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	name := ObjectName(r)
	info, err := m.client.PutObject(ctx, m.bucket, name, bytes.NewReader(b), int64(len(b)), minio.PutObjectOptions{
		ContentType: contentTypeJSON,
		UserMetadata: map[string]string{
			"rating":        r.Rating,
			"model-version": r.Model.Version,
		},
	})
	if err != nil {
		return fmt.Errorf("uploading %s: %w", name, err)
	}
	slog.Debug("report published", "bucket", m.bucket, "object", name, "etag", info.ETag)
	return nil
}
