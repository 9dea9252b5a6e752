package storage

import (
	"bytes"
	"context"
	"net/url"

	"github.com/Azure/azure-storage-blob-go/azblob"
	"github.com/sirupsen/logrus"
)

type azureBlobStore struct {
	serviceURL azblob.ServiceURL
	logContext logrus.FieldLogger
}

func newAzureBlobStore(logContext logrus.FieldLogger, rawURL string, credential azblob.Credential) (*azureBlobStore, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	pipeline := azblob.NewPipeline(credential, azblob.PipelineOptions{})
	return &azureBlobStore{
		serviceURL: azblob.NewServiceURL(*u, pipeline),
		logContext: logContext,
	}, nil
}

// EnsureContainer creates the container, treating one that already exists
// as success.
func (store *azureBlobStore) EnsureContainer(ctx context.Context, container string) error {
	containerURL := store.serviceURL.NewContainerURL(container)

	if _, err := containerURL.Create(ctx, azblob.Metadata{}, azblob.PublicAccessNone); err != nil {
		if storageErr, ok := err.(azblob.StorageError); ok && storageErr.ServiceCode() == azblob.ServiceCodeContainerAlreadyExists {
			return nil
		}
		return err
	}

	store.logContext.WithFields(logrus.Fields{
		"container": container,
	}).Info("container created")
	return nil
}

// UploadBlockBlob uploads the whole buffer as a block blob, replacing any
// previous blob under the same key.
func (store *azureBlobStore) UploadBlockBlob(ctx context.Context, container string, key string, data []byte, contentType string, contentEncoding string) error {
	blockBlobURL := store.serviceURL.NewContainerURL(container).NewBlockBlobURL(key)

	_, err := azblob.UploadBufferToBlockBlob(ctx, data, blockBlobURL, azblob.UploadToBlockBlobOptions{
		BlobHTTPHeaders: azblob.BlobHTTPHeaders{
			ContentType:     contentType,
			ContentEncoding: contentEncoding,
		},
	})
	return err
}

// CreateAppendBlob creates the append blob, treating one that already
// exists as success.
func (store *azureBlobStore) CreateAppendBlob(ctx context.Context, container string, key string) error {
	appendBlobURL := store.serviceURL.NewContainerURL(container).NewAppendBlobURL(key)

	_, err := appendBlobURL.Create(ctx,
		azblob.BlobHTTPHeaders{ContentType: "application/x-ndjson"},
		azblob.Metadata{},
		azblob.BlobAccessConditions{},
		nil,
		azblob.ClientProvidedKeyOptions{},
		azblob.ImmutabilityPolicyOptions{})
	if err != nil {
		if storageErr, ok := err.(azblob.StorageError); ok && storageErr.ServiceCode() == azblob.ServiceCodeBlobAlreadyExists {
			return nil
		}
		return err
	}
	return nil
}

// AppendBlock appends one chunk to an existing append blob.
func (store *azureBlobStore) AppendBlock(ctx context.Context, container string, key string, chunk []byte) error {
	appendBlobURL := store.serviceURL.NewContainerURL(container).NewAppendBlobURL(key)

	_, err := appendBlobURL.AppendBlock(ctx, bytes.NewReader(chunk), azblob.AppendBlobAccessConditions{}, nil, azblob.ClientProvidedKeyOptions{})
	return err
}

// ListObjects returns the names of the blobs in the container, optionally
// narrowed to a key prefix.
func (store *azureBlobStore) ListObjects(ctx context.Context, container string, prefix string) ([]string, error) {
	containerURL := store.serviceURL.NewContainerURL(container)

	objects := make([]string, 0)
	for marker := (azblob.Marker{}); marker.NotDone(); {
		listBlob, err := containerURL.ListBlobsFlatSegment(ctx, marker, azblob.ListBlobsSegmentOptions{
			Prefix: prefix,
		})
		if err != nil {
			return objects, err
		}

		marker = listBlob.NextMarker

		for _, blobInfo := range listBlob.Segment.BlobItems {
			objects = append(objects, blobInfo.Name)
		}
	}
	return objects, nil
}
