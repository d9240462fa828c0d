package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// errClientUnavailable marks an account whose client could not be built this
// request; the account simply contributes nothing to the batch.
var errClientUnavailable = errors.New("drive client unavailable for this account")

// ListingService assembles merged tree levels across every configured
// account. Results are cached per folder key; errors are never cached.
type ListingService struct {
	accounts driven.AccountStore
	factory  driven.ClientFactory
	cache    driven.ListingCache
	logger   *slog.Logger
}

// NewListingService creates a ListingService with all required dependencies.
func NewListingService(accounts driven.AccountStore, factory driven.ClientFactory, cache driven.ListingCache, logger *slog.Logger) *ListingService {
	return &ListingService{
		accounts: accounts,
		factory:  factory,
		cache:    cache,
		logger:   logger,
	}
}

// folderRef pins one matched folder id to the account whose namespace it
// belongs to.
type folderRef struct {
	accountIndex int
	account      model.ServiceAccount
	folderID     string
}

// Browse returns the merged listing for the given folder id, or for every
// account's root folder when folderID is empty. A folder id is only valid in
// the account that produced it; Browse re-resolves it by name against every
// other account so same-named folders contribute their union of children.
//
// Only an unreachable account store fails the request. Individual account
// failures (bad credentials, permissions, provider errors) are logged and
// skipped, narrowing the listing instead of aborting it.
func (s *ListingService) Browse(ctx context.Context, folderID string) (*model.Listing, error) {
	key := cacheKey(folderID)
	if listing, ok := s.cache.Get(key); ok {
		s.logger.Debug("listing cache hit", "key", key)
		return listing, nil
	}

	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}
	clients := s.buildClients(ctx, accounts)

	var files []model.RemoteFile
	if folderID == "" {
		files = s.listRoots(ctx, accounts, clients)
	} else {
		files = s.listAcrossAccounts(ctx, accounts, clients, folderID)
	}

	listing := Merge(files)
	s.cache.Put(key, listing)

	s.logger.Info("listing assembled",
		"key", key,
		"accounts", len(accounts),
		"folders", len(listing.Folders),
		"videos", len(listing.Videos),
	)
	return listing, nil
}

// cacheKey maps the empty folder id to the shared root key.
func cacheKey(folderID string) string {
	if folderID == "" {
		return "root"
	}
	return folderID
}

// buildClients constructs one read-scope client per account. A slot is nil
// when construction failed; the failure stays attributed to that account.
func (s *ListingService) buildClients(ctx context.Context, accounts []model.ServiceAccount) []driven.DriveClient {
	clients := make([]driven.DriveClient, len(accounts))
	for i, account := range accounts {
		client, err := s.factory.ReadClient(ctx, account)
		if err != nil {
			s.logger.Warn("building drive client failed",
				"account", i,
				"email", account.ClientEmail,
				"error", err,
			)
			continue
		}
		clients[i] = client
	}
	return clients
}

// listRoots fans out one root-folder listing per account.
func (s *ListingService) listRoots(ctx context.Context, accounts []model.ServiceAccount, clients []driven.DriveClient) []model.RemoteFile {
	results := FanOut(ctx, accounts, func(ctx context.Context, i int, account model.ServiceAccount) ([]model.RemoteFile, error) {
		if clients[i] == nil {
			return nil, errClientUnavailable
		}
		children, err := clients[i].ListChildren(ctx, account.RootFolderID)
		if err != nil {
			return nil, err
		}
		return tagFiles(children, i, account, account.RootFolderID), nil
	})

	var files []model.RemoteFile
	for _, res := range results {
		if res.Err != nil {
			s.logger.Warn("root listing failed for account", "account", res.Index, "error", res.Err)
			continue
		}
		files = append(files, res.Value...)
	}
	return files
}

// listAcrossAccounts resolves folderID's display name via whichever account
// recognizes it, finds every folder with that name in every account, and
// lists the children of each match.
func (s *ListingService) listAcrossAccounts(ctx context.Context, accounts []model.ServiceAccount, clients []driven.DriveClient, folderID string) []model.RemoteFile {
	name := s.resolveName(ctx, accounts, clients, folderID)

	// Find every matching folder id per account.
	matches := FanOut(ctx, accounts, func(ctx context.Context, i int, account model.ServiceAccount) ([]string, error) {
		if clients[i] == nil {
			return nil, errClientUnavailable
		}
		if name != "" {
			folders, err := clients[i].SearchFolders(ctx, name)
			if err != nil {
				return nil, err
			}
			ids := make([]string, 0, len(folders))
			for _, folder := range folders {
				ids = append(ids, folder.ID)
			}
			return ids, nil
		}
		// No account recognized the id: fall back to a structural query,
		// which only the owning account can answer. The listing comes out
		// narrower; that is accepted degraded behavior.
		children, err := clients[i].ListChildren(ctx, folderID)
		if err != nil {
			return nil, err
		}
		var ids []string
		for _, child := range children {
			if child.Kind() == model.KindFolder {
				ids = append(ids, child.ID)
			}
		}
		return ids, nil
	})

	var refs []folderRef
	for _, res := range matches {
		if res.Err != nil {
			s.logger.Warn("folder search failed for account", "account", res.Index, "error", res.Err)
			continue
		}
		for _, id := range res.Value {
			refs = append(refs, folderRef{accountIndex: res.Index, account: accounts[res.Index], folderID: id})
		}
	}

	// List children of every matched folder concurrently.
	results := FanOut(ctx, refs, func(ctx context.Context, _ int, ref folderRef) ([]model.RemoteFile, error) {
		children, err := clients[ref.accountIndex].ListChildren(ctx, ref.folderID)
		if err != nil {
			return nil, err
		}
		return tagFiles(children, ref.accountIndex, ref.account, ref.folderID), nil
	})

	var files []model.RemoteFile
	for i, res := range results {
		if res.Err != nil {
			s.logger.Warn("child listing failed",
				"account", refs[i].accountIndex,
				"folderId", refs[i].folderID,
				"error", res.Err,
			)
			continue
		}
		files = append(files, res.Value...)
	}
	return files
}

// resolveName probes each account in order for folderID's metadata and stops
// at the first account that recognizes it. An empty return means no account
// did.
func (s *ListingService) resolveName(ctx context.Context, accounts []model.ServiceAccount, clients []driven.DriveClient, folderID string) string {
	meta, winner, err := ProbeFirst(ctx, accounts, func(ctx context.Context, i int, _ model.ServiceAccount) (*model.RemoteFile, error) {
		if clients[i] == nil {
			return nil, errClientUnavailable
		}
		return clients[i].GetMetadata(ctx, folderID)
	})
	if err != nil {
		s.logger.Warn("folder name unresolved", "folderId", folderID, "error", err)
		return ""
	}
	s.logger.Debug("folder name resolved", "folderId", folderID, "name", meta.Name, "account", winner)
	return meta.Name
}

// tagFiles stamps provider entries with their originating account and parent.
func tagFiles(files []model.RemoteFile, accountIndex int, account model.ServiceAccount, parentID string) []model.RemoteFile {
	tagged := make([]model.RemoteFile, len(files))
	for i, file := range files {
		file.AccountIndex = accountIndex
		file.SourceEmail = account.ClientEmail
		file.ParentID = parentID
		tagged[i] = file
	}
	return tagged
}
