package memory

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"io"
	"sync"
	"time"

	"github.com/tendant/studio-site/pkg/studio"
)

type object struct {
	data        []byte
	contentType string
	updatedAt   time.Time
}

// Backend is an in-memory implementation of the studio.BlobStore interface
type Backend struct {
	mu      sync.RWMutex
	objects map[string]object
}

// New creates a new in-memory storage backend
func New() *Backend {
	return &Backend{
		objects: make(map[string]object),
	}
}

// Put stores content under key
func (b *Backend) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = object{data: data, contentType: contentType, updatedAt: time.Now().UTC()}
	return nil
}

// Open returns a reader over the stored bytes
func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, studio.ErrMediaNotFound
	}

	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

// Delete deletes content
func (b *Backend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.objects[key]; !exists {
		return studio.ErrMediaNotFound
	}

	delete(b.objects, key)
	return nil
}

// Stat retrieves metadata for an object in memory
func (b *Backend) Stat(ctx context.Context, key string) (*studio.ObjectMeta, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	obj, exists := b.objects[key]
	if !exists {
		return nil, studio.ErrMediaNotFound
	}

	sum := md5.Sum(obj.data)
	return &studio.ObjectMeta{
		Key:         key,
		Size:        int64(len(obj.data)),
		ContentType: obj.contentType,
		UpdatedAt:   obj.updatedAt,
		ETag:        hex.EncodeToString(sum[:]),
	}, nil
}

// Len returns the number of stored objects
func (b *Backend) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.objects)
}
