// Package googledrive implements the DriveClient and ClientFactory ports
// using the official Google Drive v3 API client.
package googledrive

import (
	"context"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.DriveClient   = (*Client)(nil)
	_ driven.ClientFactory = (*Factory)(nil)
)

// listFields selects the file attributes every listing and search needs.
const listFields = "nextPageToken, files(id, name, mimeType, size, thumbnailLink, iconLink, videoMediaMetadata)"

// Factory builds JWT-authenticated Drive clients from service-account
// credentials. It keeps one httpcache memory cache per account email so
// conditional-request caching survives across requests; caches are never
// shared between accounts because cache keys are URLs, not identities.
type Factory struct {
	mu     sync.Mutex
	caches map[string]*httpcache.MemoryCache
}

// NewFactory creates a Factory.
func NewFactory() *Factory {
	return &Factory{caches: make(map[string]*httpcache.MemoryCache)}
}

// ReadClient returns a client with drive.readonly scope.
func (f *Factory) ReadClient(ctx context.Context, account model.ServiceAccount) (driven.DriveClient, error) {
	return f.newClient(ctx, account, drive.DriveReadonlyScope)
}

// WriteClient returns a client with full drive scope, needed for permission
// changes.
func (f *Factory) WriteClient(ctx context.Context, account model.ServiceAccount) (driven.DriveClient, error) {
	return f.newClient(ctx, account, drive.DriveScope)
}

// newClient constructs the transport stack for one account:
//  1. httpcache (conditional-request caching, per account)
//  2. oauth2 JWT transport (service-account token flow)
//  3. Drive v3 service
//
// No network call happens here; the first token exchange is deferred to the
// first API call.
func (f *Factory) newClient(ctx context.Context, account model.ServiceAccount, scope string) (*Client, error) {
	key, err := normalizePrivateKey(account.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", account.ClientEmail, err)
	}

	cfg := &jwt.Config{
		Email:      account.ClientEmail,
		PrivateKey: []byte(key),
		Scopes:     []string{scope},
		TokenURL:   google.JWTTokenURL,
	}

	base := &http.Client{Transport: &httpcache.Transport{Cache: f.cacheFor(account.ClientEmail), MarkCachedResponses: true}}
	httpClient := cfg.Client(context.WithValue(ctx, oauth2.HTTPClient, base))

	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("account %s: creating drive service: %w", account.ClientEmail, err)
	}

	return &Client{svc: svc}, nil
}

func (f *Factory) cacheFor(email string) *httpcache.MemoryCache {
	f.mu.Lock()
	defer f.mu.Unlock()
	cache, ok := f.caches[email]
	if !ok {
		cache = httpcache.NewMemoryCache()
		f.caches[email] = cache
	}
	return cache
}

// normalizePrivateKey converts the escaped newline sequences that
// service-account JSON commonly arrives with into literal newlines, and
// fails closed when the result is not a usable PEM private key.
func normalizePrivateKey(raw string) (string, error) {
	key := strings.ReplaceAll(raw, `\n`, "\n")

	block, _ := pem.Decode([]byte(key))
	if block == nil || !strings.Contains(block.Type, "PRIVATE KEY") {
		return "", errors.New("credential private key is not a PEM private key block")
	}
	return key, nil
}

// Client implements the driven.DriveClient port for one account using the
// Drive v3 API.
type Client struct {
	svc *drive.Service
}

// NewClientWithHTTPClient creates a Client backed by a custom http.Client and
// base URL. This constructor is intended for testing, allowing injection of
// an httptest server in place of the Drive API.
func NewClientWithHTTPClient(ctx context.Context, httpClient *http.Client, baseURL string) (*Client, error) {
	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient), option.WithEndpoint(baseURL))
	if err != nil {
		return nil, fmt.Errorf("creating drive service: %w", err)
	}
	return &Client{svc: svc}, nil
}

// GetMetadata fetches a single file's identifying attributes.
func (c *Client) GetMetadata(ctx context.Context, fileID string) (*model.RemoteFile, error) {
	file, err := c.svc.Files.Get(fileID).
		Fields("id, name, mimeType, size, thumbnailLink, iconLink, videoMediaMetadata").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}
	return mapFile(file), nil
}

// ListChildren lists the folders and videos directly inside folderID,
// folders first, each group sorted by name. Pagination is followed to the
// end.
func (c *Client) ListChildren(ctx context.Context, folderID string) ([]model.RemoteFile, error) {
	query := fmt.Sprintf("'%s' in parents and (mimeType = '%s' or mimeType contains 'video/')",
		escapeQueryTerm(folderID), model.FolderMIMEType)
	return c.listAll(ctx, query, "folder,name")
}

// SearchFolders returns every folder in this account's namespace whose name
// exactly equals name.
func (c *Client) SearchFolders(ctx context.Context, name string) ([]model.RemoteFile, error) {
	query := fmt.Sprintf("name = '%s' and mimeType = '%s'", escapeQueryTerm(name), model.FolderMIMEType)
	return c.listAll(ctx, query, "")
}

func (c *Client) listAll(ctx context.Context, query, orderBy string) ([]model.RemoteFile, error) {
	var files []model.RemoteFile

	pageToken := ""
	for {
		call := c.svc.Files.List().
			Q(query).
			Fields(googleapi.Field(listFields)).
			PageSize(1000).
			Context(ctx)
		if orderBy != "" {
			call = call.OrderBy(orderBy)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		page, err := call.Do()
		if err != nil {
			return nil, mapError(err)
		}
		for _, file := range page.Files {
			files = append(files, *mapFile(file))
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	if files == nil {
		files = []model.RemoteFile{}
	}
	return files, nil
}

// FetchRange opens a media download for the inclusive byte window
// [start, end]. The Drive API honors the Range header on alt=media requests
// and answers 206 with exactly the requested window.
func (c *Client) FetchRange(ctx context.Context, fileID string, start, end int64) (io.ReadCloser, error) {
	call := c.svc.Files.Get(fileID)
	call.Header().Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := call.Context(ctx).Download()
	if err != nil {
		return nil, mapError(err)
	}
	return resp.Body, nil
}

// ListPermissions returns the access grants on fileID.
func (c *Client) ListPermissions(ctx context.Context, fileID string) ([]model.Permission, error) {
	resp, err := c.svc.Permissions.List(fileID).
		Fields("permissions(id, type, role)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapError(err)
	}

	perms := make([]model.Permission, 0, len(resp.Permissions))
	for _, p := range resp.Permissions {
		perms = append(perms, model.Permission{ID: p.Id, Type: p.Type, Role: p.Role})
	}
	return perms, nil
}

// AllowPublicRead grants anyone-with-the-link read access to fileID.
func (c *Client) AllowPublicRead(ctx context.Context, fileID string) error {
	_, err := c.svc.Permissions.Create(fileID, &drive.Permission{
		Role: "reader",
		Type: "anyone",
	}).Context(ctx).Do()
	if err != nil {
		return mapError(err)
	}
	return nil
}

// mapFile converts a Drive API file to the domain representation. Account
// attribution fields are left zero; the application layer stamps them.
func mapFile(file *drive.File) *model.RemoteFile {
	remote := &model.RemoteFile{
		ID:            file.Id,
		Name:          file.Name,
		MIMEType:      file.MimeType,
		Size:          file.Size,
		ThumbnailLink: file.ThumbnailLink,
		IconLink:      file.IconLink,
	}
	if file.VideoMediaMetadata != nil {
		remote.DurationMillis = file.VideoMediaMetadata.DurationMillis
	}
	return remote
}

// mapError translates Drive API errors, folding 404s into the port's
// ErrNotFound sentinel so probing code can tell "not mine" apart from other
// failures.
func mapError(err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %s", driven.ErrNotFound, apiErr.Message)
	}
	return err
}

// escapeQueryTerm escapes the characters Drive query string literals treat
// specially.
func escapeQueryTerm(term string) string {
	term = strings.ReplaceAll(term, `\`, `\\`)
	return strings.ReplaceAll(term, `'`, `\'`)
}
