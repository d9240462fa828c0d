package model

import (
	"fmt"
	"strings"
)

// FolderMIMEType is the Drive MIME type that marks an entry as a folder.
const FolderMIMEType = "application/vnd.google-apps.folder"

// FileKind classifies a RemoteFile by its MIME type.
type FileKind string

const (
	KindFolder FileKind = "folder"
	KindVideo  FileKind = "video"
	KindOther  FileKind = "other"
)

// RemoteFile is one item as reported by one account. ID is meaningful only
// within the namespace of the account identified by AccountIndex; two
// accounts never share an id space, even for folders that represent "the
// same" logical folder.
type RemoteFile struct {
	ID             string
	Name           string
	MIMEType       string
	Size           int64
	ThumbnailLink  string
	IconLink       string
	DurationMillis int64
	ParentID       string
	AccountIndex   int
	SourceEmail    string
}

// Kind derives the file's classification from its MIME type.
func (f RemoteFile) Kind() FileKind {
	switch {
	case f.MIMEType == FolderMIMEType:
		return KindFolder
	case strings.Contains(f.MIMEType, "video"):
		return KindVideo
	default:
		return KindOther
	}
}

// ThumbnailOrDefault returns the account-reported thumbnail link, falling
// back to the provider's standard thumbnail URL templated from the file id
// when the provider omitted one.
func (f RemoteFile) ThumbnailOrDefault() string {
	if f.ThumbnailLink != "" {
		return f.ThumbnailLink
	}
	return fmt.Sprintf("https://drive.google.com/thumbnail?id=%s&sz=w320-h180", f.ID)
}
