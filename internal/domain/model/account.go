package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ServiceAccount is one set of Google Drive service-account credentials.
// Each account has its own file-id namespace and its own root folder; the
// position of an account in the store's enumeration order is its account
// index, which tags every file that account contributes to a listing.
type ServiceAccount struct {
	ID           int64
	ClientEmail  string
	PrivateKey   string
	RootFolderID string
	AddedAt      time.Time
}

// credentialsFile is the subset of a Google service-account JSON key file
// that the system needs.
type credentialsFile struct {
	Type        string `json:"type"`
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// AccountFromCredentialsJSON builds a ServiceAccount from the raw contents of
// a service-account key file. rootFolderID may be empty, in which case the
// provider's "root" alias is used.
func AccountFromCredentialsJSON(data []byte, rootFolderID string) (ServiceAccount, error) {
	var creds credentialsFile
	if err := json.Unmarshal(data, &creds); err != nil {
		return ServiceAccount{}, fmt.Errorf("parsing credentials json: %w", err)
	}
	if creds.ClientEmail == "" || creds.PrivateKey == "" {
		return ServiceAccount{}, errors.New("credentials json is missing client_email or private_key")
	}
	if creds.Type != "" && creds.Type != "service_account" {
		return ServiceAccount{}, fmt.Errorf("unsupported credential type %q", creds.Type)
	}

	if rootFolderID == "" {
		rootFolderID = "root"
	}
	return ServiceAccount{
		ClientEmail:  creds.ClientEmail,
		PrivateKey:   creds.PrivateKey,
		RootFolderID: rootFolderID,
	}, nil
}
