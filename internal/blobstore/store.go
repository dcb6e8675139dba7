// Package blobstore publishes finished output files to a destination: a
// local directory, Amazon S3 or a MinIO (S3-compatible) server.
package blobstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
)

// Store receives whole objects.
type Store interface {
	// Put stores size bytes from r under key, replacing any previous object.
	Put(ctx context.Context, key string, r io.Reader, size int64) error
}

// Target is a parsed upload destination.
//
// Accepted forms:
//
//	file:///var/data/primes       -> Scheme "file", Key "/var/data/primes"
//	/var/data/primes              -> same as above
//	s3://bucket/prefix/           -> Scheme "s3", Bucket "bucket", Key "prefix/"
//	minio://bucket/prefix/name    -> Scheme "minio", Bucket "bucket", Key "prefix/name"
//
// A key ending in "/" is a prefix to which the file's base name is appended.
type Target struct {
	Scheme string
	Bucket string
	Key    string
}

// ParseTarget parses an upload destination.
func ParseTarget(raw string) (Target, error) {
	if raw == "" {
		return Target{}, fmt.Errorf("empty upload target")
	}
	if !strings.Contains(raw, "://") {
		return Target{Scheme: "file", Key: raw}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("invalid upload target %q: %w", raw, err)
	}
	switch u.Scheme {
	case "file":
		return Target{Scheme: "file", Key: u.Path}, nil
	case "s3", "minio":
		if u.Host == "" {
			return Target{}, fmt.Errorf("upload target %q has no bucket", raw)
		}
		return Target{Scheme: u.Scheme, Bucket: u.Host, Key: strings.TrimPrefix(u.Path, "/")}, nil
	default:
		return Target{}, fmt.Errorf("unsupported upload scheme %q (want file, s3 or minio)", u.Scheme)
	}
}

// ObjectKey returns the key for a file named base.
func (t Target) ObjectKey(base string) string {
	if t.Key == "" || strings.HasSuffix(t.Key, "/") {
		return t.Key + base
	}
	return t.Key
}

func (t Target) String() string {
	if t.Scheme == "file" {
		return t.Key
	}
	return t.Scheme + "://" + t.Bucket + "/" + t.Key
}

// UploadFile stores the file at path under key.
func UploadFile(ctx context.Context, store Store, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}
	if err := store.Put(ctx, key, f, info.Size()); err != nil {
		return fmt.Errorf("upload %s: %w", key, err)
	}
	return nil
}
