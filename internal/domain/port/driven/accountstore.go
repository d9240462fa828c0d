package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
)

// ErrAccountNotFound is returned by AccountStore.Remove for an unknown id.
var ErrAccountNotFound = errors.New("account not found")

// AccountStore defines the driven port for service-account credential
// persistence. ListAll's ordering is load-bearing: it fixes the account
// enumeration order used for account indexes, merge output ordering and
// probe order across the whole system.
type AccountStore interface {
	// Add stores a new account and returns it with its assigned id.
	Add(ctx context.Context, account model.ServiceAccount) (model.ServiceAccount, error)

	// ListAll returns every stored account in insertion order.
	ListAll(ctx context.Context) ([]model.ServiceAccount, error)

	// Remove deletes the account with the given id.
	// Returns ErrAccountNotFound if no such account exists.
	Remove(ctx context.Context, id int64) error
}
