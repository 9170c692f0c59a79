// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"fmt"
	"os"
	"sync"

	"dscpack-cli/internal/issue"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// AzureBlobs is the azblob-backed BlobAPI. The SDK client is built
// lazily on first use, so constructing an AzureBlobs is free and never
// touches the connection string.
type AzureBlobs struct {
	connectionString string

	once    sync.Once
	client  *azblob.Client
	initErr error
}

// NewAzureBlobs prepares a client for the given connection string
// without validating it.
func NewAzureBlobs(connectionString string) *AzureBlobs {
	return &AzureBlobs{connectionString: connectionString}
}

func (a *AzureBlobs) load() (*azblob.Client, error) {
	a.once.Do(func() {
		if a.connectionString == "" {
			a.initErr = issue.NewErrorContext().
				WithOperation("connect to storage").
				WithCategory(issue.InvalidArgument).
				WithSuggestion("Pass --connection-string, set DSCPACK_STORAGE_CONNECTION_STRING, or configure storage.connection_string").
				Wrap(fmt.Errorf("no storage connection string provided")).
				BuildError()
			return
		}
		client, err := azblob.NewClientFromConnectionString(a.connectionString, nil)
		if err != nil {
			a.initErr = issue.NewErrorContext().
				WithOperation("connect to storage").
				WithCategory(issue.InvalidArgument).
				Wrap(fmt.Errorf("failed to build storage client: %w", err)).
				BuildError()
			return
		}
		a.client = client
	})
	return a.client, a.initErr
}

// EnsureContainer implements BlobAPI. An already existing container is
// not an error.
func (a *AzureBlobs) EnsureContainer(ctx context.Context, container string) error {
	client, err := a.load()
	if err != nil {
		return err
	}
	if _, err := client.CreateContainer(ctx, container, nil); err != nil {
		if bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			return nil
		}
		return translateStorageError("create container", container, err)
	}
	return nil
}

// BlobExists implements BlobAPI via a properties probe.
func (a *AzureBlobs) BlobExists(ctx context.Context, container, name string) (bool, error) {
	client, err := a.load()
	if err != nil {
		return false, err
	}
	blobClient := client.ServiceClient().NewContainerClient(container).NewBlobClient(name)
	if _, err := blobClient.GetProperties(ctx, nil); err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound) {
			return false, nil
		}
		return false, translateStorageError("check blob", name, err)
	}
	return true, nil
}

// Upload implements BlobAPI. Existing blob content is replaced.
func (a *AzureBlobs) Upload(ctx context.Context, container, name, path string) (uri string, err error) {
	client, err := a.load()
	if err != nil {
		return "", err
	}

	file, err := os.Open(path)
	if err != nil {
		return "", issue.NewErrorContext().
			WithOperation("upload archive").
			WithResource(path).
			WithCategory(issue.PermissionDenied).
			Wrap(err).
			BuildError()
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if _, err := client.UploadFile(ctx, container, name, file, nil); err != nil {
		return "", translateStorageError("upload archive", name, err)
	}
	return client.ServiceClient().NewContainerClient(container).NewBlobClient(name).URL(), nil
}

// translateStorageError maps SDK failures onto the error taxonomy:
// authentication and authorization problems surface as permission
// errors, everything else as a failed storage operation.
func translateStorageError(operation, resource string, err error) error {
	category := issue.InvalidOperation
	if bloberror.HasCode(err,
		bloberror.AuthenticationFailed,
		bloberror.AuthorizationFailure,
		bloberror.InsufficientAccountPermissions,
		bloberror.AccountIsDisabled,
	) {
		category = issue.PermissionDenied
	}
	return issue.NewErrorContext().
		WithOperation(operation).
		WithResource(resource).
		WithCategory(category).
		Wrap(err).
		BuildError()
}
