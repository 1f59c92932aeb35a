package store

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"
	"go.uber.org/zap"
)

// BlobStore keeps each record as a block blob in one Azure Storage container
type BlobStore struct {
	container *container.Client
	logger    *zap.Logger
}

// BlobOptions selects how to authenticate against Azure Blob Storage.
// ConnectionString wins when set (e.g. for Azurite); otherwise shared key credentials are used.
type BlobOptions struct {
	ConnectionString string
	AccountName      string
	AccountKey       string
	ContainerName    string
}

// NewBlobStore creates the container if it does not exist yet
func NewBlobStore(ctx context.Context, opts BlobOptions, logger *zap.Logger) (*BlobStore, error) {
	if opts.ContainerName == "" {
		return nil, fmt.Errorf("containerName is required")
	}

	client, err := newBlobClient(opts)
	if err != nil {
		return nil, err
	}

	_, err = client.CreateContainer(ctx, opts.ContainerName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	return &BlobStore{
		container: client.ServiceClient().NewContainerClient(opts.ContainerName),
		logger:    logger,
	}, nil
}

// blobClientOptions caps retries per blob call
func blobClientOptions() *azblob.ClientOptions {
	return &azblob.ClientOptions{
		ClientOptions: azcore.ClientOptions{
			Retry: policy.RetryOptions{
				MaxRetries: 3,
				TryTimeout: 15 * time.Second,
			},
		},
	}
}

func newBlobClient(opts BlobOptions) (*azblob.Client, error) {
	if opts.ConnectionString != "" {
		client, err := azblob.NewClientFromConnectionString(opts.ConnectionString, blobClientOptions())
		if err != nil {
			return nil, fmt.Errorf("failed to create blob client: %w", err)
		}
		return client, nil
	}

	if opts.AccountName == "" || opts.AccountKey == "" {
		return nil, fmt.Errorf("accountName and accountKey are required")
	}

	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", opts.AccountName)

	credential, err := azblob.NewSharedKeyCredential(opts.AccountName, opts.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create shared key credential: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(serviceURL, credential, blobClientOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}
	return client, nil
}

func blobName(key string) string {
	return fmt.Sprintf("records/%s.json", key)
}

func (s *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	resp, err := s.container.NewBlockBlobClient(blobName(key)).DownloadStream(ctx, nil)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return nil, ErrNotFound
		}
		s.logger.Error("failed to download record", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to download record: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read record data: %w", err)
	}
	return data, nil
}

func (s *BlobStore) Put(ctx context.Context, key string, value []byte) error {
	_, err := s.container.NewBlockBlobClient(blobName(key)).UploadBuffer(ctx, value, &azblob.UploadBufferOptions{
		Metadata: map[string]*string{
			"contenttype": toPtr("application/json"),
		},
	})
	if err != nil {
		s.logger.Error("failed to upload record", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to upload record: %w", err)
	}
	return nil
}

func (s *BlobStore) Delete(ctx context.Context, key string) error {
	_, err := s.container.NewBlockBlobClient(blobName(key)).Delete(ctx, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	return nil
}

func (s *BlobStore) Ping(ctx context.Context) error {
	_, err := s.container.GetProperties(ctx, nil)
	return err
}

func (s *BlobStore) Close() error { return nil }

func toPtr(s string) *string {
	return &s
}
