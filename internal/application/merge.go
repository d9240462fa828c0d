package application

import "github.com/ericfisherdev/drivemux/internal/domain/model"

// Merge folds the unioned per-account file set into one tree level: folders
// sharing an exact display name collapse into a single MergedFolder carrying
// every contributing (account, id) pair, while videos pass through untouched,
// one entry per account that reported them.
//
// Ordering is deterministic: folders come out in first-appearance order and
// videos in input order, both of which follow account enumeration order when
// the input is built by FanOut. Entries that are neither folder nor video are
// dropped. An empty input produces an empty listing, not an error.
func Merge(files []model.RemoteFile) *model.Listing {
	listing := &model.Listing{
		Folders: []model.MergedFolder{},
		Videos:  []model.MergedVideo{},
	}

	// Group folders by exact, case-sensitive name. The first folder seen for
	// a name becomes the group's template.
	groupIndex := make(map[string]int)

	for _, file := range files {
		switch file.Kind() {
		case model.KindFolder:
			idx, ok := groupIndex[file.Name]
			if !ok {
				groupIndex[file.Name] = len(listing.Folders)
				listing.Folders = append(listing.Folders, model.MergedFolder{
					RemoteFile:     file,
					OriginalIDs:    []string{file.ID},
					AccountIndexes: []int{file.AccountIndex},
					SourceEmails:   []string{file.SourceEmail},
				})
				continue
			}
			group := &listing.Folders[idx]
			if contributed(group.AccountIndexes, file.AccountIndex) {
				// First folder wins within a single account; a duplicate
				// name inside one account would otherwise make the
				// id-per-account bookkeeping ambiguous.
				continue
			}
			group.OriginalIDs = append(group.OriginalIDs, file.ID)
			group.AccountIndexes = append(group.AccountIndexes, file.AccountIndex)
			group.SourceEmails = append(group.SourceEmails, file.SourceEmail)

		case model.KindVideo:
			video := file
			video.ThumbnailLink = file.ThumbnailOrDefault()
			listing.Videos = append(listing.Videos, model.MergedVideo{
				RemoteFile: video,
				UniqueKey:  model.VideoKey(file.AccountIndex, file.ID, len(listing.Videos)),
			})
		}
	}

	return listing
}

func contributed(indexes []int, accountIndex int) bool {
	for _, idx := range indexes {
		if idx == accountIndex {
			return true
		}
	}
	return false
}
