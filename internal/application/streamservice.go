package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// Stream is an open partial-content byte stream for one file, pinned to the
// account that proved ownership during the metadata probe. Close releases
// both the body and the fetch deadline.
type Stream struct {
	Body         io.ReadCloser
	Start        int64
	End          int64
	Size         int64
	MIMEType     string
	AccountIndex int

	cancel context.CancelFunc
}

// Length returns the byte count of the window, for the Content-Length header.
func (s *Stream) Length() int64 {
	return s.End - s.Start + 1
}

// ContentRange formats the Content-Range header value for the window.
func (s *Stream) ContentRange() string {
	return fmt.Sprintf("bytes %d-%d/%d", s.Start, s.End, s.Size)
}

// Close closes the underlying body and cancels the fetch context.
func (s *Stream) Close() error {
	defer s.cancel()
	return s.Body.Close()
}

// StreamService proxies file bytes with partial-content semantics, without
// knowing in advance which account owns a given file id.
type StreamService struct {
	accounts  driven.AccountStore
	factory   driven.ClientFactory
	chunkSize int64
	timeout   time.Duration
	logger    *slog.Logger
}

// NewStreamService creates a StreamService. chunkSize caps the window served
// when the caller sends no Range header or leaves the range open-ended;
// timeout bounds the fetch and relay of a single window.
func NewStreamService(accounts driven.AccountStore, factory driven.ClientFactory, chunkSize int64, timeout time.Duration, logger *slog.Logger) *StreamService {
	return &StreamService{
		accounts:  accounts,
		factory:   factory,
		chunkSize: chunkSize,
		timeout:   timeout,
		logger:    logger,
	}
}

// Open resolves which account owns fileID by probing each account's metadata
// in order, computes the byte window from rangeHeader, and opens the stream
// from the owning account. Failover across accounts happens only at this
// metadata stage: once an account is pinned, a mid-stream failure is terminal
// for the request, never retried elsewhere -- partial streams cannot be
// spliced across accounts.
func (s *StreamService) Open(ctx context.Context, fileID, rangeHeader string) (*Stream, error) {
	accounts, err := s.accounts.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading accounts: %w", err)
	}

	type owner struct {
		client driven.DriveClient
		meta   *model.RemoteFile
	}

	found, accountIndex, err := ProbeFirst(ctx, accounts, func(ctx context.Context, i int, account model.ServiceAccount) (owner, error) {
		client, err := s.factory.ReadClient(ctx, account)
		if err != nil {
			return owner{}, err
		}
		meta, err := client.GetMetadata(ctx, fileID)
		if err != nil {
			return owner{}, err
		}
		return owner{client: client, meta: meta}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("resolving file %s: %w", fileID, err)
	}

	start, end := ComputeWindow(rangeHeader, found.meta.Size, s.chunkSize)
	s.logger.Debug("stream window computed",
		"fileId", fileID,
		"account", accountIndex,
		"start", start,
		"end", end,
		"size", found.meta.Size,
	)

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	body, err := found.client.FetchRange(fetchCtx, fileID, start, end)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("fetching bytes %d-%d of %s from account %d: %w", start, end, fileID, accountIndex, err)
	}

	mimeType := found.meta.MIMEType
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	return &Stream{
		Body:         body,
		Start:        start,
		End:          end,
		Size:         found.meta.Size,
		MIMEType:     mimeType,
		AccountIndex: accountIndex,
		cancel:       cancel,
	}, nil
}

// ComputeWindow turns an inbound Range header into the inclusive byte window
// to request upstream. The proxy always serves a window, never the whole
// body: with no header (or an unparseable one) the window is the first chunk,
// and an open-ended range is capped at one chunk past its start. Out-of-bounds
// values are re-clamped into [0, size-1] rather than rejected.
func ComputeWindow(rangeHeader string, size, chunkSize int64) (start, end int64) {
	last := size - 1
	if last < 0 {
		last = 0
	}

	start = 0
	end = -1

	const bytesPrefix = "bytes="
	if strings.HasPrefix(rangeHeader, bytesPrefix) {
		startPart, endPart, _ := strings.Cut(strings.TrimPrefix(rangeHeader, bytesPrefix), "-")
		if v, err := strconv.ParseInt(startPart, 10, 64); err == nil && v > 0 {
			start = v
		}
		if v, err := strconv.ParseInt(endPart, 10, 64); err == nil && v >= 0 {
			end = v
		}
	}

	if start > last {
		start = last
	}
	if end < 0 {
		end = start + chunkSize - 1
	}
	if end > last {
		end = last
	}
	if end < start {
		end = start
	}
	return start, end
}
