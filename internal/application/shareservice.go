package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// ShareService makes files readable by anyone with the link, trying each
// account in order until one can read and set permissions on the file.
type ShareService struct {
	accounts driven.AccountStore
	factory  driven.ClientFactory
	logger   *slog.Logger
}

// NewShareService creates a ShareService with all required dependencies.
func NewShareService(accounts driven.AccountStore, factory driven.ClientFactory, logger *slog.Logger) *ShareService {
	return &ShareService{
		accounts: accounts,
		factory:  factory,
		logger:   logger,
	}
}

// Publish grants public read access to fileID via the first account that can
// manage it. A file already shared with anyone is left untouched. Returns the
// index of the account that handled the file, or an error wrapping the last
// per-account failure once every account has been tried.
func (s *ShareService) Publish(ctx context.Context, fileID string) (int, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return -1, fmt.Errorf("loading accounts: %w", err)
	}

	_, accountIndex, err := ProbeFirst(ctx, accounts, func(ctx context.Context, i int, account model.ServiceAccount) (struct{}, error) {
		client, err := s.factory.WriteClient(ctx, account)
		if err != nil {
			return struct{}{}, err
		}

		perms, err := client.ListPermissions(ctx, fileID)
		if err != nil {
			return struct{}{}, err
		}
		if model.IsPublic(perms) {
			s.logger.Debug("file already public", "fileId", fileID, "account", i)
			return struct{}{}, nil
		}

		if err := client.AllowPublicRead(ctx, fileID); err != nil {
			return struct{}{}, err
		}
		s.logger.Info("file made shareable", "fileId", fileID, "account", i)
		return struct{}{}, nil
	})
	if err != nil {
		return -1, fmt.Errorf("sharing file %s: %w", fileID, err)
	}
	return accountIndex, nil
}
