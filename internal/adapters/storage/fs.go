package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/natefinch/atomic"

	"github.com/okian/convention/pkg/metrics"
)

// FS stores objects as files under root/<bucket>/<key>. Writes go through a
// temporary file and a rename, so readers never observe a partial upload.
type FS struct {
	root string
}

var _ Storage = (*FS)(nil)

// NewFS creates root if needed.
func NewFS(root string) (*FS, error) {
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create root: %w", err)
	}
	return &FS{root: root}, nil
}

func (f *FS) path(bucket, key string) (string, string, error) {
	key, err := CleanKey(bucket, key)
	if err != nil {
		return "", "", err
	}
	return filepath.Join(f.root, bucket, filepath.FromSlash(key)), key, nil
}

func (f *FS) Put(ctx context.Context, bucket, key string, body io.Reader, opts PutOptions) (Object, error) {
	start := time.Now()
	p, key, err := f.path(bucket, key)
	if err != nil {
		return Object{}, err
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if !opts.Upsert {
		if _, err := os.Stat(p); err == nil {
			return Object{}, fmt.Errorf("%w: %s/%s", ErrExists, bucket, key)
		}
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o750); err != nil {
		return Object{}, fmt.Errorf("storage: mkdir: %w", err)
	}

	counted := &countingReader{r: body}
	if err := atomic.WriteFile(p, counted); err != nil {
		return Object{}, fmt.Errorf("storage: write %s/%s: %w", bucket, key, err)
	}
	metrics.RecordUpload(bucket, counted.n, time.Since(start))

	return Object{Bucket: bucket, Key: key, Size: counted.n, ContentType: contentType(key, opts.ContentType)}, nil
}

func (f *FS) Open(_ context.Context, bucket, key string) (io.ReadCloser, Object, error) {
	p, key, err := f.path(bucket, key)
	if err != nil {
		return nil, Object{}, err
	}
	file, err := os.Open(p) //nolint:gosec // path is validated by CleanKey
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Object{}, ErrNotFound
		}
		return nil, Object{}, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, Object{}, err
	}
	return file, Object{Bucket: bucket, Key: key, Size: info.Size(), ContentType: contentType(key, "")}, nil
}

func (f *FS) Delete(_ context.Context, bucket, key string) error {
	p, _, err := f.path(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func contentType(key, given string) string {
	if given != "" {
		return given
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
