package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/okian/convention/pkg/metrics"
)

type memObject struct {
	data []byte
	obj  Object
}

// Memory keeps objects in process memory.
type Memory struct {
	mu      sync.RWMutex
	objects map[string]memObject
}

var _ Storage = (*Memory)(nil)

// NewMemory creates an empty store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Put(ctx context.Context, bucket, key string, body io.Reader, opts PutOptions) (Object, error) {
	start := time.Now()
	key, err := CleanKey(bucket, key)
	if err != nil {
		return Object{}, err
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return Object{}, fmt.Errorf("storage: read body: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	obj := Object{Bucket: bucket, Key: key, Size: int64(len(data)), ContentType: contentType(key, opts.ContentType)}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[obj.Path()]; ok && !opts.Upsert {
		return Object{}, fmt.Errorf("%w: %s", ErrExists, obj.Path())
	}
	m.objects[obj.Path()] = memObject{data: data, obj: obj}
	metrics.RecordUpload(bucket, obj.Size, time.Since(start))
	return obj, nil
}

func (m *Memory) Open(_ context.Context, bucket, key string) (io.ReadCloser, Object, error) {
	key, err := CleanKey(bucket, key)
	if err != nil {
		return nil, Object{}, err
	}
	m.mu.RLock()
	o, ok := m.objects[bucket+"/"+key]
	m.mu.RUnlock()
	if !ok {
		return nil, Object{}, ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(o.data)), o.obj, nil
}

func (m *Memory) Delete(_ context.Context, bucket, key string) error {
	key, err := CleanKey(bucket, key)
	if err != nil {
		return err
	}
	m.mu.Lock()
	delete(m.objects, bucket+"/"+key)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored objects.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}
