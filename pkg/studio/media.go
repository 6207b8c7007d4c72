package studio

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/tendant/studio-site/pkg/studio/mediakey"
)

// DefaultMediaURLPrefix is where stored media is served from.
const DefaultMediaURLPrefix = "/uploads"

// MediaStore persists uploaded files under generated keys and resolves the
// returned references to public URLs.
type MediaStore struct {
	backend   string
	blobs     BlobStore
	keys      mediakey.Generator
	urlPrefix string
	timeout   time.Duration
}

// NewMediaStore wraps a BlobStore. backend is the store's name, used in
// errors; a nil generator selects the timestamp strategy.
func NewMediaStore(backend string, blobs BlobStore, keys mediakey.Generator, urlPrefix string, timeout time.Duration) *MediaStore {
	if keys == nil {
		keys = mediakey.NewTimestampGenerator()
	}
	if urlPrefix == "" {
		urlPrefix = DefaultMediaURLPrefix
	}
	return &MediaStore{
		backend:   backend,
		blobs:     blobs,
		keys:      keys,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		timeout:   timeout,
	}
}

// Store writes the upload and returns its reference. Only the extension of
// the original file name is kept.
func (m *MediaStore) Store(ctx context.Context, kind Kind, upload *Upload) (string, error) {
	ref := m.keys.GenerateKey(string(kind), mediakey.Ext(upload.Filename))

	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	err := m.blobs.Put(ctx, ref, upload.Reader, upload.ContentType)
	observeMedia("store", err)
	if err != nil {
		return "", &StorageError{Backend: m.backend, Key: ref, Op: "store", Err: err}
	}
	return ref, nil
}

// Delete removes the referenced file. A file that is already gone is not an
// error.
func (m *MediaStore) Delete(ctx context.Context, ref string) error {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	err := m.blobs.Delete(ctx, ref)
	if errors.Is(err, ErrMediaNotFound) {
		err = nil
	}
	observeMedia("delete", err)
	if err != nil {
		return &StorageError{Backend: m.backend, Key: ref, Op: "delete", Err: err}
	}
	return nil
}

// Open returns the stored bytes for ref. The caller closes the reader.
// Open is not bounded by the operation timeout since the body is streamed
// after it returns.
func (m *MediaStore) Open(ctx context.Context, ref string) (io.ReadCloser, *ObjectMeta, error) {
	statCtx, cancel := m.withTimeout(ctx)
	meta, err := m.blobs.Stat(statCtx, ref)
	cancel()
	if err != nil {
		return nil, nil, err
	}

	rc, err := m.blobs.Open(ctx, ref)
	if err != nil {
		return nil, nil, err
	}
	return rc, meta, nil
}

// URL resolves a reference to the path it is served under. Empty references
// resolve to "".
func (m *MediaStore) URL(ref string) string {
	if ref == "" {
		return ""
	}
	return m.urlPrefix + "/" + ref
}

func (m *MediaStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if m.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, m.timeout)
}
