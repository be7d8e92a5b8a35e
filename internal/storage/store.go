// Package storage persists binary objects (tie images) and maps object keys
// to publicly fetchable URLs.
package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"strings"
)

// ObjectStore is the persistence boundary for images.
type ObjectStore interface {
	// Put stores size bytes from r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error

	// Delete removes the object at key.
	// Returns domain.ErrObjectNotFound if nothing is stored there.
	Delete(ctx context.Context, key string) error

	// URL returns the public URL of key.
	URL(key string) string

	// KeyFromURL reverses URL. ok is false for URLs this store did not produce.
	KeyFromURL(rawURL string) (key string, ok bool)
}

// urlMapper builds and parses URLs of the form <base>/<key>.
type urlMapper struct {
	base string
}

func (m urlMapper) url(key string) string {
	return m.base + "/" + strings.TrimLeft(key, "/")
}

func (m urlMapper) key(rawURL string) (string, bool) {
	prefix := m.base + "/"
	if !strings.HasPrefix(rawURL, prefix) {
		return "", false
	}
	rest := strings.TrimPrefix(rawURL, prefix)
	if i := strings.IndexAny(rest, "?#"); i >= 0 {
		rest = rest[:i]
	}
	if unescaped, err := url.PathUnescape(rest); err == nil {
		rest = unescaped
	}
	key, ok := cleanKey(rest)
	return key, ok
}

// cleanKey rejects keys that are empty or try to climb out of the store root.
func cleanKey(key string) (string, bool) {
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	cleaned := strings.TrimLeft(path.Clean("/"+key), "/")
	if cleaned == "" {
		return "", false
	}
	return cleaned, true
}
