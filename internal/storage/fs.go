package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/spf13/afero"

	"github.com/pkordes/tie-inventory/internal/domain"
)

// FSStore keeps objects as files under a root directory.
// Production passes afero.NewOsFs(); tests pass afero.NewMemMapFs().
type FSStore struct {
	fs     afero.Fs
	root   string
	mapper urlMapper
}

// NewFSStore creates root if needed. publicBase is the URL prefix that the
// Handler is mounted under, e.g. "http://localhost:8080/images".
func NewFSStore(fsys afero.Fs, root, publicBase string) (*FSStore, error) {
	if root == "" {
		return nil, errors.New("storage.NewFSStore: root cannot be empty")
	}
	if err := fsys.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage.NewFSStore: create %s: %w", root, err)
	}
	return &FSStore{
		fs:     fsys,
		root:   root,
		mapper: urlMapper{base: strings.TrimRight(publicBase, "/")},
	}, nil
}

func (s *FSStore) path(key string) (string, error) {
	k, ok := cleanKey(key)
	if !ok {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	return path.Join(s.root, k), nil
}

// Put writes the object to a temp file and renames it into place, so readers
// never observe a partial image.
func (s *FSStore) Put(ctx context.Context, key string, r io.Reader, size int64, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("storage.FSStore.Put: %w", err)
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return fmt.Errorf("storage.FSStore.Put: mkdir: %w", err)
	}

	tmp := p + ".tmp"
	f, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("storage.FSStore.Put: create: %w", err)
	}
	n, copyErr := io.Copy(f, r)
	closeErr := f.Close()
	if copyErr == nil && size >= 0 && n != size {
		copyErr = fmt.Errorf("short write: %d of %d bytes", n, size)
	}
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("storage.FSStore.Put: write: %w", err)
	}
	if err := s.fs.Rename(tmp, p); err != nil {
		_ = s.fs.Remove(tmp)
		return fmt.Errorf("storage.FSStore.Put: rename: %w", err)
	}
	return nil
}

// Delete removes the file behind key.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p, err := s.path(key)
	if err != nil {
		return fmt.Errorf("storage.FSStore.Delete: %w", err)
	}
	if err := s.fs.Remove(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("storage.FSStore.Delete: %w", domain.ErrObjectNotFound)
		}
		return fmt.Errorf("storage.FSStore.Delete: %w", err)
	}
	return nil
}

// URL returns the public URL of key.
func (s *FSStore) URL(key string) string {
	return s.mapper.url(key)
}

// KeyFromURL reverses URL.
func (s *FSStore) KeyFromURL(rawURL string) (string, bool) {
	return s.mapper.key(rawURL)
}

// Handler serves stored objects. Mount it with the URL prefix stripped.
// Directories are not listed; they answer 404 like a missing object.
func (s *FSStore) Handler() http.Handler {
	return http.FileServer(filesOnly{afero.NewHttpFs(s.fs).Dir(s.root)})
}

// filesOnly hides every directory of the wrapped file system.
type filesOnly struct {
	http.FileSystem
}

func (f filesOnly) Open(name string) (http.File, error) {
	file, err := f.FileSystem.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, fs.ErrNotExist
	}
	return file, nil
}
