package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrObjectNotFound is returned when a key does not exist in the bucket.
var ErrObjectNotFound = errors.New("object not found")

// LocalStorage keeps objects on disk as <baseDir>/<bucket>/<key> and
// serves them under publicBaseURL.
type LocalStorage struct {
	baseDir       string
	publicBaseURL string
}

// NewLocalStorage ensures the base directory exists and returns a handle.
func NewLocalStorage(baseDir, publicBaseURL string) (*LocalStorage, error) {
	if baseDir == "" {
		baseDir = "./storage"
	}
	if publicBaseURL == "" {
		publicBaseURL = "/files"
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	return &LocalStorage{baseDir: baseDir, publicBaseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Upload writes data to bucket/key and returns its public URL.
func (s *LocalStorage) Upload(ctx context.Context, bucket, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	target, err := s.resolve(bucket, key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("prepare bucket %s: %w", bucket, err)
	}
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("write object %s/%s: %w", bucket, key, err)
	}
	return s.PublicURL(bucket, key), nil
}

// Open returns a read-only handle for the stored object.
func (s *LocalStorage) Open(bucket, key string) (*os.File, error) {
	target, err := s.resolve(bucket, key)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(target)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrObjectNotFound
		}
		return nil, fmt.Errorf("open object %s/%s: %w", bucket, key, err)
	}
	return file, nil
}

// Remove deletes an object. Missing objects are not an error.
func (s *LocalStorage) Remove(ctx context.Context, bucket, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(bucket, key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete object %s/%s: %w", bucket, key, err)
	}
	return nil
}

// PublicURL builds the URL an object is served under.
func (s *LocalStorage) PublicURL(bucket, key string) string {
	escaped := make([]string, 0, 4)
	for _, part := range strings.Split(key, "/") {
		escaped = append(escaped, url.PathEscape(part))
	}
	return s.publicBaseURL + "/" + url.PathEscape(bucket) + "/" + strings.Join(escaped, "/")
}

// KeyFromURL reverses PublicURL. ok is false for URLs this store did not issue.
func (s *LocalStorage) KeyFromURL(raw string) (bucket, key string, ok bool) {
	prefix := s.publicBaseURL + "/"
	if !strings.HasPrefix(raw, prefix) {
		return "", "", false
	}
	rest, err := url.PathUnescape(strings.TrimPrefix(raw, prefix))
	if err != nil {
		return "", "", false
	}
	bucket, key, found := strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

// Root exposes the directory served under PublicURL.
func (s *LocalStorage) Root() string {
	return s.baseDir
}

func (s *LocalStorage) resolve(bucket, key string) (string, error) {
	if bucket == "" || key == "" {
		return "", fmt.Errorf("bucket and key required")
	}
	clean := path.Clean("/" + key)
	if strings.Contains(bucket, "/") || strings.Contains(bucket, "..") {
		return "", fmt.Errorf("invalid bucket %q", bucket)
	}
	return filepath.Join(s.baseDir, bucket, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
