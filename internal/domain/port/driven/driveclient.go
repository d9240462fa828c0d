package driven

import (
	"context"
	"errors"
	"io"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
)

// ErrNotFound is returned by DriveClient methods when the account does not
// recognize the requested file id. Probing code relies on it to distinguish
// "this account does not own the file" from transport failures, though both
// cause the probe to move on to the next account.
var ErrNotFound = errors.New("file not found in this account")

// DriveClient defines the driven port for one authenticated Drive account.
// A client is scoped to a single account's id namespace; ids obtained from
// one client are meaningless to another.
type DriveClient interface {
	// GetMetadata fetches id, name, MIME type and size for a single file.
	// Returns ErrNotFound when this account cannot see the id.
	GetMetadata(ctx context.Context, fileID string) (*model.RemoteFile, error)

	// ListChildren lists the folders and videos directly inside folderID,
	// ordered folders-first then by name, handling pagination internally.
	ListChildren(ctx context.Context, folderID string) ([]model.RemoteFile, error)

	// SearchFolders returns every folder in this account's namespace whose
	// name exactly equals name.
	SearchFolders(ctx context.Context, name string) ([]model.RemoteFile, error)

	// FetchRange opens a byte stream for the inclusive window [start, end].
	// The caller owns the returned body and must close it.
	FetchRange(ctx context.Context, fileID string, start, end int64) (io.ReadCloser, error)

	// ListPermissions returns the access grants on fileID.
	ListPermissions(ctx context.Context, fileID string) ([]model.Permission, error)

	// AllowPublicRead grants anyone-with-the-link read access to fileID.
	AllowPublicRead(ctx context.Context, fileID string) error
}

// ClientFactory builds authenticated DriveClients from account credentials.
// Building a client performs no network I/O; a malformed credential yields an
// error attributed to that account alone.
type ClientFactory interface {
	// ReadClient returns a client with read-only scope, used for listing,
	// metadata and byte fetches.
	ReadClient(ctx context.Context, account model.ServiceAccount) (DriveClient, error)

	// WriteClient returns a client with full scope, used for permission changes.
	WriteClient(ctx context.Context, account model.ServiceAccount) (DriveClient, error)
}
