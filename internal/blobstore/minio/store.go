// Package minio uploads output files to a MinIO or other S3-compatible
// server with the MinIO client.
package minio

import (
	"context"
	"io"
	"os"
	"path"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Putter is the subset of *minio.Client used by Store.
type Putter interface {
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Store implements blobstore.Store on a MinIO bucket.
type Store struct {
	client Putter
	bucket string
	prefix string
}

// NewStore creates a store writing to bucket under prefix.
func NewStore(client Putter, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// NewClient connects to endpoint (host:port) with credentials read from
// MINIO_ACCESS_KEY and MINIO_SECRET_KEY, falling back to MINIO_ROOT_USER
// and MINIO_ROOT_PASSWORD.
func NewClient(endpoint string, secure bool) (*minio.Client, error) {
	creds := credentials.NewEnvMinio()
	if os.Getenv("MINIO_ACCESS_KEY") == "" && os.Getenv("MINIO_ROOT_USER") != "" {
		creds = credentials.NewStaticV4(os.Getenv("MINIO_ROOT_USER"), os.Getenv("MINIO_ROOT_PASSWORD"), "")
	}
	return minio.New(endpoint, &minio.Options{
		Creds:  creds,
		Secure: secure,
	})
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// Put uploads r under the prefixed key. A negative size streams the object
// in multipart chunks.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, s.key(key), r, size, minio.PutObjectOptions{
		ContentType: "text/plain",
	})
	return err
}
