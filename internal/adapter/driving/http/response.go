package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// FileListResponse is the merged listing body: folders unified across
// accounts first, then every video from every account. Field names follow
// the provider's camelCase wire format so existing grid UIs can consume the
// payload unchanged.
type FileListResponse struct {
	Files []any `json:"files"`
}

// FolderResponse is the JSON representation of a merged folder. The scalar
// fields describe the first-seen folder; the arrays record every
// contributing account/id pair in account enumeration order.
type FolderResponse struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MimeType       string   `json:"mimeType"`
	IconLink       string   `json:"iconLink,omitempty"`
	ParentID       string   `json:"parentId,omitempty"`
	AccountIndex   int      `json:"accountIndex"`
	SourceEmail    string   `json:"sourceEmail"`
	OriginalIDs    []string `json:"originalIds"`
	AccountIndexes []int    `json:"accountIndexes"`
	SourceEmails   []string `json:"sourceEmails"`
}

// VideoResponse is the JSON representation of a single video from a single
// account.
type VideoResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	MimeType       string `json:"mimeType"`
	Size           int64  `json:"size,omitempty"`
	ThumbnailLink  string `json:"thumbnailLink"`
	IconLink       string `json:"iconLink,omitempty"`
	DurationMillis int64  `json:"durationMillis,omitempty"`
	ParentID       string `json:"parentId,omitempty"`
	AccountIndex   int    `json:"accountIndex"`
	SourceEmail    string `json:"sourceEmail"`
	UniqueKey      string `json:"uniqueKey"`
}

// ShareRequest is the JSON body for the share endpoint.
type ShareRequest struct {
	FileID string `json:"fileId"`
}

// ShareResponse is the JSON representation of a successful share.
type ShareResponse struct {
	Success      bool   `json:"success"`
	FileID       string `json:"fileId"`
	AccountIndex int    `json:"accountIndex"`
}

// AddAccountRequest is the JSON body for the add account endpoint.
// CredentialsJSON carries the raw service-account key file contents.
type AddAccountRequest struct {
	CredentialsJSON string `json:"credentialsJson"`
	RootFolderID    string `json:"rootFolderId"`
}

// AccountResponse is the JSON representation of a configured account.
// It never carries private key material.
type AccountResponse struct {
	ID           int64  `json:"id"`
	ClientEmail  string `json:"clientEmail"`
	RootFolderID string `json:"rootFolderId"`
	AddedAt      string `json:"addedAt"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toFileListResponse flattens a listing into the single files array the API
// serves, folders before videos.
func toFileListResponse(listing *model.Listing) FileListResponse {
	files := make([]any, 0, len(listing.Folders)+len(listing.Videos))
	for _, folder := range listing.Folders {
		files = append(files, toFolderResponse(folder))
	}
	for _, video := range listing.Videos {
		files = append(files, toVideoResponse(video))
	}
	return FileListResponse{Files: files}
}

// toFolderResponse converts a merged folder to its JSON representation.
func toFolderResponse(folder model.MergedFolder) FolderResponse {
	return FolderResponse{
		ID:             folder.ID,
		Name:           folder.Name,
		MimeType:       folder.MIMEType,
		IconLink:       folder.IconLink,
		ParentID:       folder.ParentID,
		AccountIndex:   folder.AccountIndex,
		SourceEmail:    folder.SourceEmail,
		OriginalIDs:    folder.OriginalIDs,
		AccountIndexes: folder.AccountIndexes,
		SourceEmails:   folder.SourceEmails,
	}
}

// toVideoResponse converts a merged video to its JSON representation.
func toVideoResponse(video model.MergedVideo) VideoResponse {
	return VideoResponse{
		ID:             video.ID,
		Name:           video.Name,
		MimeType:       video.MIMEType,
		Size:           video.Size,
		ThumbnailLink:  video.ThumbnailLink,
		IconLink:       video.IconLink,
		DurationMillis: video.DurationMillis,
		ParentID:       video.ParentID,
		AccountIndex:   video.AccountIndex,
		SourceEmail:    video.SourceEmail,
		UniqueKey:      video.UniqueKey,
	}
}

// toAccountResponse converts a service account to its JSON representation.
func toAccountResponse(account model.ServiceAccount) AccountResponse {
	return AccountResponse{
		ID:           account.ID,
		ClientEmail:  account.ClientEmail,
		RootFolderID: account.RootFolderID,
		AddedAt:      account.AddedAt.UTC().Format(time.RFC3339),
	}
}
