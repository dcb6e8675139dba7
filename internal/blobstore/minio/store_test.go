package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	bucket, object string
	data           []byte
	err            error
}

func (f *fakePutter) PutObject(_ context.Context, bucket, object string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.err != nil {
		return minio.UploadInfo{}, f.err
	}
	f.bucket, f.object = bucket, object
	data, err := io.ReadAll(r)
	f.data = data
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: int64(len(data))}, err
}

func TestStore_Put(t *testing.T) {
	t.Parallel()
	fp := &fakePutter{}
	store := NewStore(fp, "primes", "2026/")
	require.NoError(t, store.Put(context.Background(), "out.txt.zst", bytes.NewReader([]byte("abc")), 3))
	assert.Equal(t, "primes", fp.bucket)
	assert.Equal(t, "2026/out.txt.zst", fp.object)
	assert.Equal(t, "abc", string(fp.data))

	fp.err = errors.New("no such bucket")
	assert.Error(t, store.Put(context.Background(), "x", bytes.NewReader(nil), 0))
}

func TestMinIOIntegration(t *testing.T) {
	endpoint := os.Getenv("MINIO_ENDPOINT")
	bucket := os.Getenv("MINIO_BUCKET")
	if endpoint == "" || bucket == "" {
		t.Skip("MINIO_ENDPOINT or MINIO_BUCKET not set")
	}
	client, err := NewClient(endpoint, false)
	require.NoError(t, err)

	ctx := context.Background()
	exists, err := client.BucketExists(ctx, bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}
	store := NewStore(client, bucket, "primegen-test")
	require.NoError(t, store.Put(ctx, "primes.txt", bytes.NewReader([]byte("2\n3\n")), 4))
}
