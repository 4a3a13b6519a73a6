// Package s3 stores registry documents in an S3-compatible bucket (AWS S3 or
// MinIO). Containers map to key prefixes.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/vbonduro/pantrysync/internal/docstore"
)

type Store struct {
	client *s3.Client
	bucket string
}

// Config holds explicit construction parameters. Credentials fall back to the
// default AWS chain when not set here.
type Config struct {
	Region    string
	Bucket    string
	Endpoint  string // optional; enables custom endpoints such as MinIO
	PathStyle bool
}

// New creates an S3 document store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket}, nil
}

// OpenFromEnv constructs an S3 store from process environment:
//
//	PANTRYSYNC_S3_BUCKET=<bucket> (required)
//	PANTRYSYNC_S3_REGION=<region> (default us-east-1)
//	PANTRYSYNC_S3_ENDPOINT=<url> (optional, for MinIO)
//	PANTRYSYNC_S3_PATH_STYLE=true|false (default false)
//	AWS_ACCESS_KEY_ID / AWS_SECRET_ACCESS_KEY (optional)
func OpenFromEnv(ctx context.Context) (*Store, error) {
	bucket := os.Getenv("PANTRYSYNC_S3_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("PANTRYSYNC_S3_BUCKET required for s3 backend")
	}
	return New(ctx, Config{
		Bucket:    bucket,
		Region:    os.Getenv("PANTRYSYNC_S3_REGION"),
		Endpoint:  os.Getenv("PANTRYSYNC_S3_ENDPOINT"),
		PathStyle: strings.EqualFold(os.Getenv("PANTRYSYNC_S3_PATH_STYLE"), "true"),
	})
}

func objectKey(name, containerID string) string {
	return path.Join(containerID, name)
}

func (s *Store) Find(ctx context.Context, name, containerID string) (*docstore.Handle, error) {
	key := objectKey(name, containerID)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &key})
	if err != nil {
		if isNotFound(err) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to locate document %s: %w", key, err)
	}
	return &docstore.Handle{ID: key, Name: name}, nil
}

func (s *Store) Read(ctx context.Context, handle *docstore.Handle) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &handle.ID})
	if err != nil {
		if isNotFound(err) {
			return nil, docstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read document %s: %w", handle.ID, err)
	}
	defer func() { _ = out.Body.Close() }()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}
	return content, nil
}

func (s *Store) Create(ctx context.Context, name string, content []byte, containerID string) (*docstore.Handle, error) {
	key := objectKey(name, containerID)
	if err := s.put(ctx, key, content); err != nil {
		return nil, err
	}
	return &docstore.Handle{ID: key, Name: name}, nil
}

func (s *Store) Update(ctx context.Context, handle *docstore.Handle, content []byte) error {
	return s.put(ctx, handle.ID, content)
}

func (s *Store) put(ctx context.Context, key string, content []byte) error {
	contentType := "application/json"
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(content),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", key, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var notFound *types.NotFound
	var noSuchKey *types.NoSuchKey
	return errors.As(err, &notFound) || errors.As(err, &noSuchKey)
}
