package data

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/splunk/ui-e2e/e2e/framework/objectstore"
)

// Fetch makes a registry file available locally and returns its path. Local
// sources are returned as is; object store sources are downloaded once into
// cacheDir.
func Fetch(ctx context.Context, src Source, cacheDir string, baseCfg objectstore.Config) (string, error) {
	kind := strings.ToLower(strings.TrimSpace(src.Source))
	if kind == "" || kind == "local" || kind == "file" {
		return src.File, nil
	}
	provider := objectstore.NormalizeProvider(kind)
	if kind == "objectstore" || kind == "auto" {
		provider = objectstore.NormalizeProvider(baseCfg.Provider)
	}
	if provider == "" {
		return "", fmt.Errorf("unsupported fixture source: %s", src.Source)
	}
	key := strings.TrimLeft(src.File, "/")
	if key == "" {
		return "", fmt.Errorf("fixture file is required")
	}
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return "", err
	}
	localPath := filepath.Join(cacheDir, strings.ReplaceAll(key, "/", "_"))
	if _, err := os.Stat(localPath); err == nil {
		return localPath, nil
	}

	cfg := overlaySettings(baseCfg, src.Settings)
	cfg.Provider = provider
	if bucket := strings.TrimSpace(src.Bucket); bucket != "" {
		cfg.Bucket = bucket
	}
	if cfg.Bucket == "" {
		return "", fmt.Errorf("fixture bucket is required for %s source", kind)
	}
	// a key that already carries the prefix must not get it twice
	if prefix := strings.Trim(cfg.Prefix, "/"); prefix != "" && (key == prefix || strings.HasPrefix(key, prefix+"/")) {
		cfg.Prefix = ""
	}

	client, err := objectstore.NewProvider(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if _, err := client.Download(ctx, key, localPath); err != nil {
		return "", fmt.Errorf("download %s: %w", key, err)
	}
	return localPath, nil
}

// LoadSource fetches src and parses it as a registry.
func LoadSource(ctx context.Context, src Source, cacheDir string, baseCfg objectstore.Config) (*Registry, error) {
	path, err := Fetch(ctx, src, cacheDir, baseCfg)
	if err != nil {
		return nil, err
	}
	return LoadRegistry(path)
}

func overlaySettings(cfg objectstore.Config, settings map[string]string) objectstore.Config {
	targets := map[string]*string{
		"region":        &cfg.Region,
		"endpoint":      &cfg.Endpoint,
		"access_key":    &cfg.AccessKey,
		"secret_key":    &cfg.SecretKey,
		"session_token": &cfg.SessionToken,
		"prefix":        &cfg.Prefix,
		"gcp_project":   &cfg.GCPProject,
		"azure_account": &cfg.AzureAccount,
		"azure_key":     &cfg.AzureKey,
	}
	for name, target := range targets {
		if value := strings.TrimSpace(settings[name]); value != "" {
			*target = value
		}
	}
	switch strings.ToLower(strings.TrimSpace(settings["s3_path_style"])) {
	case "true", "1", "yes":
		cfg.S3PathStyle = true
	case "false", "0", "no":
		cfg.S3PathStyle = false
	}
	return cfg
}
