package objectstore

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

type gcsBucket struct {
	client *storage.Client
	handle *storage.BucketHandle
}

func newGCSBucket(ctx context.Context, cfg Config) (*gcsBucket, error) {
	var opts []option.ClientOption
	switch {
	case strings.TrimSpace(cfg.GCPCredentialsJSON) != "":
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.GCPCredentialsJSON)))
	case strings.TrimSpace(cfg.GCPCredentialsFile) != "":
		opts = append(opts, option.WithCredentialsFile(cfg.GCPCredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &gcsBucket{client: client, handle: client.Bucket(cfg.Bucket)}, nil
}

func (b *gcsBucket) put(ctx context.Context, key string, file *os.File, _ int64, contentType string) (string, error) {
	w := b.handle.Object(key).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, file); err != nil {
		return "", errors.Join(err, w.Close())
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return w.Attrs().Etag, nil
}

func (b *gcsBucket) get(ctx context.Context, key string, file *os.File) (int64, error) {
	r, err := b.handle.Object(key).NewReader(ctx)
	if err != nil {
		return 0, err
	}
	defer r.Close()
	return io.Copy(file, r)
}

func (b *gcsBucket) list(ctx context.Context, prefix string, visit func(ObjectInfo)) error {
	it := b.handle.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return err
		}
		visit(ObjectInfo{Key: attrs.Name, Size: attrs.Size, ETag: attrs.Etag, LastModified: attrs.Updated})
	}
}

func (b *gcsBucket) remove(ctx context.Context, key string) error {
	return b.handle.Object(key).Delete(ctx)
}

func (b *gcsBucket) close() error {
	return b.client.Close()
}
