package driven

import "github.com/ericfisherdev/drivemux/internal/domain/model"

// ListingCache defines the driven port for the per-folder listing cache.
// Implementations must be safe for concurrent use by request handlers; a
// read must never observe a torn entry. Errors are never cached -- callers
// only Put successful listings.
type ListingCache interface {
	// Get returns the cached listing for key, or false on miss or expiry.
	Get(key string) (*model.Listing, bool)

	// Put stores the listing under key, replacing any previous entry.
	Put(key string, listing *model.Listing)
}
