package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/tendant/studio-site/pkg/studio"
)

// Backend is a filesystem implementation of the studio.BlobStore interface
type Backend struct {
	baseDir string
}

// Config options for the filesystem backend
type Config struct {
	BaseDir string // Base directory for storing files
}

// New creates a new filesystem storage backend
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}

	baseDir, err := filepath.Abs(config.BaseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	return &Backend{baseDir: baseDir}, nil
}

// path maps a key into baseDir. Keys cannot climb out of it.
func (b *Backend) path(key string) string {
	return filepath.Join(b.baseDir, filepath.Clean("/"+key))
}

// Put writes content to a temporary file and renames it into place
func (b *Backend) Put(ctx context.Context, key string, reader io.Reader, contentType string) error {
	filePath := b.path(key)

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, reader); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), filePath); err != nil {
		return fmt.Errorf("failed to store file: %w", err)
	}
	return nil
}

// Open opens the stored file for reading
func (b *Backend) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	file, err := os.Open(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, studio.ErrMediaNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

// Delete deletes content from the filesystem
func (b *Backend) Delete(ctx context.Context, key string) error {
	filePath := b.path(key)

	if err := os.Remove(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return studio.ErrMediaNotFound
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	b.cleanupEmptyDirectories(filepath.Dir(filePath))
	return nil
}

// Stat retrieves metadata for a stored file. The content type comes from
// the extension, falling back to sniffing the first bytes.
func (b *Backend) Stat(ctx context.Context, key string) (*studio.ObjectMeta, error) {
	filePath := b.path(key)

	info, err := os.Stat(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, studio.ErrMediaNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}
	if info.IsDir() {
		return nil, studio.ErrMediaNotFound
	}

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
		if file, err := os.Open(filePath); err == nil {
			defer file.Close()
			buffer := make([]byte, 512)
			if n, err := file.Read(buffer); err == nil {
				contentType = http.DetectContentType(buffer[:n])
			}
		}
	}

	return &studio.ObjectMeta{
		Key:         key,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime().UTC(),
	}, nil
}

// cleanupEmptyDirectories recursively removes empty directories up to baseDir
func (b *Backend) cleanupEmptyDirectories(dir string) {
	if dir == b.baseDir || len(dir) < len(b.baseDir) {
		return
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) == 0 {
		if os.Remove(dir) == nil {
			b.cleanupEmptyDirectories(filepath.Dir(dir))
		}
	}
}
