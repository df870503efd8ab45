package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryProvider struct {
	objects map[string]string
	failOn  string
}

func (m *memoryProvider) List(_ context.Context, prefix string) ([]ObjectInfo, error) {
	var out []ObjectInfo
	for key := range m.objects {
		out = append(out, ObjectInfo{Key: key})
	}
	return out, nil
}

func (m *memoryProvider) Upload(_ context.Context, key string, localPath string) (ObjectInfo, error) {
	if key == m.failOn {
		return ObjectInfo{}, errors.New("access denied")
	}
	payload, err := os.ReadFile(localPath)
	if err != nil {
		return ObjectInfo{}, err
	}
	m.objects[key] = string(payload)
	return ObjectInfo{Key: key, Size: int64(len(payload))}, nil
}

func (m *memoryProvider) Download(context.Context, string, string) (ObjectInfo, error) {
	return ObjectInfo{}, errors.New("not implemented")
}

func (m *memoryProvider) Delete(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memoryProvider) Close() error { return nil }

func writeRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range map[string]string{
		"results.json":                  `{"tests":[]}`,
		"summary.txt":                   "TEST SUMMARY",
		"screenshots/failure-login.png": "png",
	} {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return dir
}

func TestPublishUploadsEveryFile(t *testing.T) {
	dir := writeRun(t)
	store := &memoryProvider{objects: map[string]string{}}

	uploaded, err := Publish(context.Background(), store, dir, "runs/r1/")
	require.NoError(t, err)
	require.Len(t, uploaded, 3)

	keys := make([]string, 0, len(store.objects))
	for key := range store.objects {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	assert.Equal(t, []string{"runs/r1/results.json", "runs/r1/screenshots/failure-login.png", "runs/r1/summary.txt"}, keys)
	assert.Equal(t, "png", store.objects["runs/r1/screenshots/failure-login.png"])
}

func TestPublishStopsOnUploadError(t *testing.T) {
	dir := writeRun(t)
	store := &memoryProvider{objects: map[string]string{}, failOn: "results.json"}

	_, err := Publish(context.Background(), store, dir, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upload results.json: access denied")
}

func TestPublishHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Publish(ctx, &memoryProvider{objects: map[string]string{}}, writeRun(t), "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNormalizeProvider(t *testing.T) {
	cases := map[string]string{
		"AWS":   "s3",
		"s3":    "s3",
		"minio": "minio",
		"gcp":   "gcs",
		"blob":  "azure",
		"nfs":   "nfs",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeProvider(in), in)
	}
}

func TestResolveKey(t *testing.T) {
	assert.Equal(t, "a/b", ResolveKey("a", "b"))
	assert.Equal(t, "a/b", ResolveKey("/a/", "/b"))
	assert.Equal(t, "b", ResolveKey("", "b"))
	assert.Equal(t, "a", ResolveKey("a", ""))
}

func TestNewProviderValidates(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{Bucket: "b"})
	assert.EqualError(t, err, "objectstore provider is required")
	_, err = NewProvider(context.Background(), Config{Provider: "s3"})
	assert.EqualError(t, err, "objectstore bucket is required")
	_, err = NewProvider(context.Background(), Config{Provider: "ftp", Bucket: "b"})
	assert.EqualError(t, err, "unsupported objectstore provider: ftp")
}

func TestMinioEndpoint(t *testing.T) {
	host, secure, err := minioEndpoint("http://localhost:9000")
	require.NoError(t, err)
	assert.Equal(t, "localhost:9000", host)
	assert.False(t, secure)

	host, secure, err = minioEndpoint("play.min.io/")
	require.NoError(t, err)
	assert.Equal(t, "play.min.io", host)
	assert.True(t, secure)

	_, _, err = minioEndpoint(" ")
	assert.Error(t, err)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", ContentType("shot.png"))
	assert.Equal(t, "application/json", ContentType("results.json"))
	assert.Equal(t, "text/plain; charset=utf-8", ContentType("summary.txt"))
	assert.Equal(t, "application/octet-stream", ContentType("blob"))
}

type memBucket struct {
	objects map[string][]byte
	getErr  error
}

func (m *memBucket) put(_ context.Context, key string, file *os.File, _ int64, _ string) (string, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	m.objects[key] = data
	return fmt.Sprintf("etag-%d", len(data)), nil
}

func (m *memBucket) get(_ context.Context, key string, file *os.File) (int64, error) {
	data, ok := m.objects[key]
	if !ok {
		return 0, fmt.Errorf("no such key %s", key)
	}
	n, err := file.Write(data)
	if err != nil {
		return int64(n), err
	}
	return int64(n), m.getErr
}

func (m *memBucket) list(_ context.Context, prefix string, visit func(ObjectInfo)) error {
	for key, data := range m.objects {
		if strings.HasPrefix(key, prefix) {
			visit(ObjectInfo{Key: key, Size: int64(len(data))})
		}
	}
	return nil
}

func (m *memBucket) remove(_ context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memBucket) close() error { return nil }

func TestStorePrefixesKeysAndRoundTrips(t *testing.T) {
	b := &memBucket{objects: map[string][]byte{}}
	s := newStore(Config{Provider: "s3", Prefix: "ui-e2e/"}, b)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "fixtures.yaml")
	require.NoError(t, os.WriteFile(src, []byte("users: {}\n"), 0o644))

	info, err := s.Upload(ctx, "/datasets/fixtures.yaml", src)
	require.NoError(t, err)
	assert.Equal(t, "ui-e2e/datasets/fixtures.yaml", info.Key)
	assert.Equal(t, int64(10), info.Size)
	assert.Equal(t, "etag-10", info.ETag)

	listed, err := s.List(ctx, "datasets")
	require.NoError(t, err)
	require.Len(t, listed, 1)

	dst := filepath.Join(t.TempDir(), "cache", "fixtures.yaml")
	got, err := s.Download(ctx, "datasets/fixtures.yaml", dst)
	require.NoError(t, err)
	assert.Equal(t, int64(10), got.Size)
	content, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "users: {}\n", string(content))

	require.NoError(t, s.Delete(ctx, "datasets/fixtures.yaml"))
	assert.Empty(t, b.objects)
	assert.ErrorContains(t, s.Delete(ctx, ""), "object key is required")
}

func TestStoreRejectsEmptyKeyUnderPrefix(t *testing.T) {
	b := &memBucket{objects: map[string][]byte{"ui-e2e/": []byte("marker")}}
	s := newStore(Config{Provider: "minio", Prefix: "ui-e2e/"}, b)
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "summary.txt")
	require.NoError(t, os.WriteFile(src, []byte("ok"), 0o644))

	for _, key := range []string{"", "/", "  "} {
		assert.ErrorContains(t, s.Delete(ctx, key), "object key is required", "delete %q", key)
		_, err := s.Upload(ctx, key, src)
		assert.ErrorContains(t, err, "object key is required", "upload %q", key)
		_, err = s.Download(ctx, key, filepath.Join(t.TempDir(), "out"))
		assert.ErrorContains(t, err, "object key is required", "download %q", key)
	}
	assert.Equal(t, []byte("marker"), b.objects["ui-e2e/"], "prefix object untouched")
}

func TestStoreDownloadLeavesNoPartialFile(t *testing.T) {
	b := &memBucket{objects: map[string][]byte{"run/results.json": []byte("{}")}, getErr: errors.New("connection reset")}
	s := newStore(Config{Provider: "gcs"}, b)
	dir := t.TempDir()
	dst := filepath.Join(dir, "results.json")

	_, err := s.Download(context.Background(), "run/results.json", dst)
	require.ErrorContains(t, err, "gcs download run/results.json")
	assert.NoFileExists(t, dst)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "temporary file removed")
}
