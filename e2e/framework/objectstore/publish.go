package objectstore

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
)

// Publish uploads every regular file under dir, keyed by its path relative
// to dir beneath prefix. It stops at the first failed upload.
func Publish(ctx context.Context, provider Provider, dir string, prefix string) ([]ObjectInfo, error) {
	var uploaded []ObjectInfo
	err := filepath.WalkDir(dir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		info, err := provider.Upload(ctx, ResolveKey(prefix, filepath.ToSlash(rel)), path)
		if err != nil {
			return fmt.Errorf("upload %s: %w", rel, err)
		}
		uploaded = append(uploaded, info)
		return nil
	})
	return uploaded, err
}
