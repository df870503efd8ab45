package objectstore

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
)

type azureBucket struct {
	client *container.Client
}

// newAzureBucket authenticates with, in order of preference, a SAS token in
// the container URL, a shared key, or the default credential chain.
func newAzureBucket(cfg Config) (*azureBucket, error) {
	containerURL, err := azureContainerURL(cfg)
	if err != nil {
		return nil, err
	}
	var client *container.Client
	switch {
	case strings.TrimSpace(cfg.AzureSASToken) != "":
		client, err = container.NewClientWithNoCredential(containerURL, nil)
	case strings.TrimSpace(cfg.AzureKey) != "":
		if strings.TrimSpace(cfg.AzureAccount) == "" {
			return nil, fmt.Errorf("azure account name is required for shared key auth")
		}
		cred, credErr := azblob.NewSharedKeyCredential(cfg.AzureAccount, cfg.AzureKey)
		if credErr != nil {
			return nil, credErr
		}
		client, err = container.NewClientWithSharedKeyCredential(containerURL, cred, nil)
	default:
		cred, credErr := azidentity.NewDefaultAzureCredential(nil)
		if credErr != nil {
			return nil, credErr
		}
		client, err = container.NewClient(containerURL, cred, nil)
	}
	if err != nil {
		return nil, err
	}
	return &azureBucket{client: client}, nil
}

func azureContainerURL(cfg Config) (string, error) {
	service := strings.TrimRight(strings.TrimSpace(cfg.AzureEndpoint), "/")
	if service == "" {
		account := strings.TrimSpace(cfg.AzureAccount)
		if account == "" {
			return "", fmt.Errorf("azure endpoint or account name is required")
		}
		service = "https://" + account + ".blob.core.windows.net"
	}
	u := service + "/" + cfg.Bucket
	if token := strings.TrimPrefix(strings.TrimSpace(cfg.AzureSASToken), "?"); token != "" {
		u += "?" + token
	}
	return u, nil
}

func (b *azureBucket) put(ctx context.Context, key string, file *os.File, _ int64, contentType string) (string, error) {
	resp, err := b.client.NewBlockBlobClient(key).UploadFile(ctx, file, &blockblob.UploadFileOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		return "", err
	}
	if resp.ETag == nil {
		return "", nil
	}
	return string(*resp.ETag), nil
}

func (b *azureBucket) get(ctx context.Context, key string, file *os.File) (int64, error) {
	return b.client.NewBlockBlobClient(key).DownloadFile(ctx, file, nil)
}

func (b *azureBucket) list(ctx context.Context, prefix string, visit func(ObjectInfo)) error {
	opts := &container.ListBlobsFlatOptions{}
	if prefix != "" {
		opts.Prefix = &prefix
	}
	pager := b.client.NewListBlobsFlatPager(opts)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return err
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item == nil || item.Name == nil {
				continue
			}
			info := ObjectInfo{Key: *item.Name}
			if props := item.Properties; props != nil {
				if props.ContentLength != nil {
					info.Size = *props.ContentLength
				}
				if props.LastModified != nil {
					info.LastModified = *props.LastModified
				}
				if props.ETag != nil {
					info.ETag = string(*props.ETag)
				}
			}
			visit(info)
		}
	}
	return nil
}

func (b *azureBucket) remove(ctx context.Context, key string) error {
	_, err := b.client.NewBlobClient(key).Delete(ctx, nil)
	return err
}

func (b *azureBucket) close() error { return nil }
