package model

import "fmt"

// MergedFolder is a logical folder unifying same-named folders from several
// accounts. RemoteFile holds the first-seen folder's fields (the template);
// the parallel arrays record every contributing (account, id) pair in account
// enumeration order. Name equality is the only correlation between accounts:
// two unrelated folders that happen to share a name will be merged, and a
// renamed folder splits from its former group. There is no stronger key.
type MergedFolder struct {
	RemoteFile
	OriginalIDs    []string
	AccountIndexes []int
	SourceEmails   []string
}

// MergedVideo is a video passed through from one account. UniqueKey
// disambiguates videos whose ids coincidentally collide across accounts in a
// single flattened listing.
type MergedVideo struct {
	RemoteFile
	UniqueKey string
}

// VideoKey builds the synthetic unique key for a video at the given ordinal
// position within a listing.
func VideoKey(accountIndex int, id string, ordinal int) string {
	return fmt.Sprintf("%d-%s-%d", accountIndex, id, ordinal)
}

// Listing is one merged tree level: folders unified by name followed by every
// video from every account. It is the unit cached per folder key.
type Listing struct {
	Folders []MergedFolder
	Videos  []MergedVideo
}

// Permission is one access grant on a Drive file.
type Permission struct {
	ID   string
	Type string
	Role string
}

// IsPublic reports whether any permission grants access to anyone with the link.
func IsPublic(perms []Permission) bool {
	for _, p := range perms {
		if p.Type == "anyone" {
			return true
		}
	}
	return false
}
