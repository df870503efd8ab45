package objectstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// bucket is the part of a provider that differs per backend. Keys are
// already resolved against the configured prefix.
type bucket interface {
	put(ctx context.Context, key string, file *os.File, size int64, contentType string) (etag string, err error)
	get(ctx context.Context, key string, file *os.File) (int64, error)
	list(ctx context.Context, prefix string, visit func(ObjectInfo)) error
	remove(ctx context.Context, key string) error
	close() error
}

// store adapts a bucket to Provider: prefixing, local file handling and
// error context live here once.
type store struct {
	cfg Config
	b   bucket
}

func newStore(cfg Config, b bucket) *store {
	return &store{cfg: cfg, b: b}
}

func (s *store) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	var objects []ObjectInfo
	remotePrefix := ResolveKey(s.cfg.Prefix, prefix)
	if err := s.b.list(ctx, remotePrefix, func(info ObjectInfo) {
		objects = append(objects, info)
	}); err != nil {
		return nil, fmt.Errorf("%s list %s: %w", s.cfg.Provider, remotePrefix, err)
	}
	return objects, nil
}

func (s *store) Upload(ctx context.Context, key string, localPath string) (ObjectInfo, error) {
	remoteKey, err := s.key(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	file, err := os.Open(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	defer file.Close()
	stat, err := file.Stat()
	if err != nil {
		return ObjectInfo{}, err
	}
	etag, err := s.b.put(ctx, remoteKey, file, stat.Size(), ContentType(localPath))
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("%s upload %s: %w", s.cfg.Provider, remoteKey, err)
	}
	return ObjectInfo{Key: remoteKey, Size: stat.Size(), ETag: etag, LastModified: stat.ModTime()}, nil
}

// Download writes to a temporary sibling and renames it into place, so an
// interrupted download never leaves a partial file at localPath.
func (s *store) Download(ctx context.Context, key string, localPath string) (ObjectInfo, error) {
	remoteKey, err := s.key(key)
	if err != nil {
		return ObjectInfo{}, err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return ObjectInfo{}, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(localPath), "."+filepath.Base(localPath)+".*")
	if err != nil {
		return ObjectInfo{}, err
	}
	defer os.Remove(tmp.Name())

	written, err := s.b.get(ctx, remoteKey, tmp)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return ObjectInfo{}, fmt.Errorf("%s download %s: %w", s.cfg.Provider, remoteKey, err)
	}
	if err := os.Rename(tmp.Name(), localPath); err != nil {
		return ObjectInfo{}, err
	}
	return ObjectInfo{Key: remoteKey, Size: written}, nil
}

func (s *store) Delete(ctx context.Context, key string) error {
	remoteKey, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.b.remove(ctx, remoteKey); err != nil {
		return fmt.Errorf("%s delete %s: %w", s.cfg.Provider, remoteKey, err)
	}
	return nil
}

func (s *store) Close() error {
	return s.b.close()
}

// key resolves key against the prefix. An empty key never addresses the
// prefix itself.
func (s *store) key(key string) (string, error) {
	if strings.TrimLeft(strings.TrimSpace(key), "/") == "" {
		return "", fmt.Errorf("object key is required")
	}
	return ResolveKey(s.cfg.Prefix, key), nil
}
