// Package storage stores uploaded files in named buckets.
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// Buckets used by the service.
const (
	BucketReceipts = "receipts"
	BucketPitches  = "pitch_vault"
)

// Sentinel kinds for storage errors.
var (
	ErrNotFound   = errors.New("object not found")
	ErrExists     = errors.New("object already exists")
	ErrInvalidKey = errors.New("invalid object key")
)

// Object describes a stored file.
type Object struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type,omitempty"`
}

// Path is bucket/key.
func (o Object) Path() string { return o.Bucket + "/" + o.Key }

// PutOptions controls a write.
type PutOptions struct {
	ContentType string
	// Upsert replaces an existing object instead of failing with ErrExists.
	Upsert bool
}

// Storage is a bucketed blob store.
type Storage interface {
	Put(ctx context.Context, bucket, key string, body io.Reader, opts PutOptions) (Object, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, Object, error)
	Delete(ctx context.Context, bucket, key string) error
}

// CleanKey validates a bucket and key pair and returns the cleaned key.
// Keys are relative slash paths without "." or ".." segments.
func CleanKey(bucket, key string) (string, error) {
	if bucket == "" || strings.ContainsAny(bucket, `/\.`) {
		return "", ErrInvalidKey
	}
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return "", ErrInvalidKey
		}
	}
	return path.Clean(key), nil
}
