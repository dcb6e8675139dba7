package output

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const bufferSize = 256 * 1024

// File is an output file committed atomically.
//
// Writes go through a buffer and the optional encoder into a temporary file
// in the destination directory. Commit renames it over the destination;
// Abort removes it. Exactly one of the two must be called.
type File struct {
	path        string
	compression Compression

	mu       sync.Mutex
	tmp      *os.File
	buf      *bufio.Writer
	enc      io.WriteCloser
	finished bool
}

// Create opens a temporary file for path, creating the parent directory
// when needed.
//
// Parameters:
//   - path: The final destination.
//   - c: The encoding applied to everything written.
//
// Returns:
//   - *File: The open file, ready for writes.
//   - error: An error if the directory or temporary file cannot be created.
func Create(path string, c Compression) (*File, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	_ = tmp.Chmod(0644)

	buf := bufio.NewWriterSize(tmp, bufferSize)
	enc, err := NewWriter(buf, c)
	if err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return nil, err
	}
	return &File{path: path, compression: c, tmp: tmp, buf: buf, enc: enc}, nil
}

// Path returns the final destination.
func (f *File) Path() string { return f.path }

// Compression returns the encoding of the file.
func (f *File) Compression() Compression { return f.compression }

// Write implements io.Writer. It is safe for concurrent use, though
// callers normally serialize through a sieve.LockedSink already.
func (f *File) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished {
		return 0, os.ErrClosed
	}
	return f.enc.Write(p)
}

// Commit flushes the encoder and the buffer, syncs the file and renames it
// over the destination.
func (f *File) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished {
		return os.ErrClosed
	}
	f.finished = true

	tmpName := f.tmp.Name()
	err := errors.Join(f.enc.Close(), f.buf.Flush(), f.tmp.Sync())
	if cerr := f.tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to finish output file: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to commit output file: %w", err)
	}
	if d, err := os.Open(filepath.Dir(f.path)); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Abort discards everything written. It is a no-op after Commit.
func (f *File) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.finished {
		return nil
	}
	f.finished = true
	_ = f.tmp.Close()
	if err := os.Remove(f.tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Open opens a committed output file and decodes it according to its
// name suffix.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(bufio.NewReaderSize(f, bufferSize), DetectCompression(path))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &fileReader{ReadCloser: r, file: f}, nil
}

type fileReader struct {
	io.ReadCloser
	file *os.File
}

func (r *fileReader) Close() error {
	return errors.Join(r.ReadCloser.Close(), r.file.Close())
}

// WithExtension appends the suffix of c to path unless path already
// carries it.
func WithExtension(path string, c Compression) string {
	if ext := c.Extension(); ext != "" && DetectCompression(path) != c {
		return path + ext
	}
	return path
}

// Rewrite replaces a committed file with transform(old contents), keeping
// its compression. The original is left untouched if transform fails.
func Rewrite(path string, transform func(r io.Reader, w io.Writer) error) error {
	src, err := Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := Create(path, DetectCompression(path))
	if err != nil {
		return err
	}
	if err := transform(src, dst); err != nil {
		_ = dst.Abort()
		return err
	}
	return dst.Commit()
}
