// Package s3 uploads output files to Amazon S3 (or any endpoint speaking
// the S3 API) through the SDK's multipart upload manager.
package s3

import (
	"context"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Uploader is the subset of *manager.Uploader used by Store.
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// UploadConfig tunes multipart uploads.
type UploadConfig struct {
	// PartSize is the size of each part. Default: 8MB.
	PartSize int64
	// Concurrency is the number of parts in flight. Default: 5.
	Concurrency int
}

// DefaultUploadConfig returns the settings used by NewClientStore.
func DefaultUploadConfig() UploadConfig {
	return UploadConfig{
		PartSize:    8 * 1024 * 1024,
		Concurrency: 5,
	}
}

// Store implements blobstore.Store on an S3 bucket.
type Store struct {
	uploader Uploader
	bucket   string
	prefix   string
}

// NewStore creates a store that uploads through uploader.
func NewStore(uploader Uploader, bucket, prefix string) *Store {
	return &Store{uploader: uploader, bucket: bucket, prefix: prefix}
}

// NewClientStore creates a store from an S3 client with a multipart uploader.
func NewClientStore(client *s3.Client, bucket, prefix string, cfg UploadConfig) *Store {
	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = cfg.PartSize
		u.Concurrency = cfg.Concurrency
	})
	return NewStore(uploader, bucket, prefix)
}

// NewClient builds an S3 client from the default AWS configuration chain
// (environment, shared config, instance role). A non-empty endpoint selects
// an S3-compatible service with path-style addressing.
func NewClient(ctx context.Context, endpoint string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Put uploads r under the prefixed key.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(key)),
		Body:   r,
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	_, err := s.uploader.Upload(ctx, input)
	return err
}
