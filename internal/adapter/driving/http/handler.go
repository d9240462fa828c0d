// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ericfisherdev/drivemux/internal/application"
	"github.com/ericfisherdev/drivemux/internal/domain/model"
	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	listings *application.ListingService
	streams  *application.StreamService
	shares   *application.ShareService
	accounts driven.AccountStore
	logger   *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	listings *application.ListingService,
	streams *application.StreamService,
	shares *application.ShareService,
	accounts driven.AccountStore,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		listings: listings,
		streams:  streams,
		shares:   shares,
		accounts: accounts,
		logger:   logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/drive/files", h.ListFiles)
	mux.HandleFunc("GET /api/v1/drive/stream", h.StreamFile)
	mux.HandleFunc("POST /api/v1/drive/share", h.ShareFile)
	mux.HandleFunc("GET /api/v1/accounts", h.ListAccounts)
	mux.HandleFunc("POST /api/v1/accounts", h.AddAccount)
	mux.HandleFunc("DELETE /api/v1/accounts/{id}", h.RemoveAccount)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListFiles returns the merged listing for the requested folder, or for every
// account's root folder when folderId is absent.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	folderID := r.URL.Query().Get("folderId")

	listing, err := h.listings.Browse(r.Context(), folderID)
	if err != nil {
		h.logger.Error("failed to list drive files", "folderId", folderID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list drive files")
		return
	}

	writeJSON(w, http.StatusOK, toFileListResponse(listing))
}

// StreamFile proxies a partial-content byte stream for the requested file,
// served by whichever account owns it.
func (h *Handler) StreamFile(w http.ResponseWriter, r *http.Request) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		writeError(w, http.StatusBadRequest, "fileId missing")
		return
	}

	stream, err := h.streams.Open(r.Context(), fileID, r.Header.Get("Range"))
	if err != nil {
		h.logger.Error("failed to open stream", "fileId", fileID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not access the file with any account")
		return
	}
	defer stream.Close()

	header := w.Header()
	header.Set("Content-Type", stream.MIMEType)
	header.Set("Accept-Ranges", "bytes")
	header.Set("Content-Range", stream.ContentRange())
	header.Set("Content-Length", strconv.FormatInt(stream.Length(), 10))
	header.Set("Cache-Control", "public, max-age=3600")
	header.Set("Access-Control-Allow-Origin", "*")

	// Always partial content: the proxy serves windows, never whole bodies,
	// so even naive clients end up pull-streaming by range.
	w.WriteHeader(http.StatusPartialContent)

	if _, err := io.Copy(w, stream.Body); err != nil {
		h.logger.Error("stream relay aborted",
			"fileId", fileID,
			"account", stream.AccountIndex,
			"error", err,
		)
		// Kill the connection rather than silently truncating the body.
		panic(http.ErrAbortHandler)
	}
}

// ShareFile makes a file readable by anyone with the link, via the first
// account that can manage it.
func (h *Handler) ShareFile(w http.ResponseWriter, r *http.Request) {
	var req ShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FileID == "" {
		writeError(w, http.StatusBadRequest, "fileId is required")
		return
	}

	accountIndex, err := h.shares.Publish(r.Context(), req.FileID)
	if err != nil {
		h.logger.Error("failed to share file", "fileId", req.FileID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not share the file with any account")
		return
	}

	writeJSON(w, http.StatusOK, ShareResponse{
		Success:      true,
		FileID:       req.FileID,
		AccountIndex: accountIndex,
	})
}

// ListAccounts returns the configured accounts. Key material is never
// included in the response.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAll(r.Context())
	if err != nil {
		h.logger.Error("failed to list accounts", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]AccountResponse, 0, len(accounts))
	for _, account := range accounts {
		resp = append(resp, toAccountResponse(account))
	}

	writeJSON(w, http.StatusOK, resp)
}

// AddAccount registers a new service account from its JSON key file.
func (h *Handler) AddAccount(w http.ResponseWriter, r *http.Request) {
	var req AddAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	account, err := model.AccountFromCredentialsJSON([]byte(req.CredentialsJSON), req.RootFolderID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	account.AddedAt = time.Now().UTC()

	added, err := h.accounts.Add(r.Context(), account)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			writeError(w, http.StatusConflict, "account already exists")
			return
		}
		h.logger.Error("failed to add account", "email", account.ClientEmail, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(added))
}

// RemoveAccount deletes a configured account by id.
func (h *Handler) RemoveAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid account id")
		return
	}

	if err := h.accounts.Remove(r.Context(), id); err != nil {
		if errors.Is(err, driven.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, "account not found")
			return
		}
		h.logger.Error("failed to remove account", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Health returns a simple health check response.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Time:   time.Now().UTC().Format(time.RFC3339),
	})
}
