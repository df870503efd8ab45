package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type minioBucket struct {
	name   string
	client *minio.Client
}

func newMinioBucket(cfg Config) (*minioBucket, error) {
	host, secure, err := minioEndpoint(cfg.Endpoint)
	if err != nil {
		return nil, err
	}
	client, err := minio.New(host, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken),
		Secure: secure,
		Region: strings.TrimSpace(cfg.Region),
	})
	if err != nil {
		return nil, err
	}
	return &minioBucket{name: cfg.Bucket, client: client}, nil
}

// minioEndpoint splits an endpoint URL into the host the client expects and
// whether TLS is on. A bare host defaults to TLS.
func minioEndpoint(raw string) (string, bool, error) {
	endpoint := strings.TrimSpace(raw)
	if endpoint == "" {
		return "", false, fmt.Errorf("minio endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		return strings.TrimRight(endpoint, "/"), true, nil
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("parse minio endpoint: %w", err)
	}
	if parsed.Host == "" {
		return "", false, fmt.Errorf("minio endpoint %q has no host", raw)
	}
	return parsed.Host, parsed.Scheme == "https", nil
}

func (b *minioBucket) put(ctx context.Context, key string, file *os.File, size int64, contentType string) (string, error) {
	info, err := b.client.PutObject(ctx, b.name, key, file, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", err
	}
	return info.ETag, nil
}

func (b *minioBucket) get(ctx context.Context, key string, file *os.File) (int64, error) {
	obj, err := b.client.GetObject(ctx, b.name, key, minio.GetObjectOptions{})
	if err != nil {
		return 0, err
	}
	defer obj.Close()
	return io.Copy(file, obj)
}

func (b *minioBucket) list(ctx context.Context, prefix string, visit func(ObjectInfo)) error {
	for obj := range b.client.ListObjects(ctx, b.name, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		visit(ObjectInfo{
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         strings.Trim(obj.ETag, `"`),
			LastModified: obj.LastModified,
		})
	}
	return nil
}

func (b *minioBucket) remove(ctx context.Context, key string) error {
	return b.client.RemoveObject(ctx, b.name, key, minio.RemoveObjectOptions{})
}

func (b *minioBucket) close() error { return nil }
