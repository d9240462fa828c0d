package application_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/drivemux/internal/application"
	"github.com/ericfisherdev/drivemux/internal/domain/model"
)

func folderEntry(id, name string, accountIndex int) model.RemoteFile {
	return model.RemoteFile{
		ID:           id,
		Name:         name,
		MIMEType:     model.FolderMIMEType,
		AccountIndex: accountIndex,
		SourceEmail:  testAccounts(accountIndex + 1)[accountIndex].ClientEmail,
	}
}

func videoEntry(id, name string, accountIndex int) model.RemoteFile {
	return model.RemoteFile{
		ID:           id,
		Name:         name,
		MIMEType:     "video/mp4",
		Size:         1 << 20,
		AccountIndex: accountIndex,
		SourceEmail:  testAccounts(accountIndex + 1)[accountIndex].ClientEmail,
	}
}

func TestMerge_SameNamedFoldersCollapse(t *testing.T) {
	listing := application.Merge([]model.RemoteFile{
		folderEntry("f1", "Movies", 0),
		folderEntry("f2", "Movies", 1),
		folderEntry("f3", "Series", 1),
	})

	require.Len(t, listing.Folders, 2)

	movies := listing.Folders[0]
	assert.Equal(t, "Movies", movies.Name)
	assert.Equal(t, "f1", movies.ID, "first-seen folder is the template")
	assert.Equal(t, []string{"f1", "f2"}, movies.OriginalIDs)
	assert.Equal(t, []int{0, 1}, movies.AccountIndexes)

	series := listing.Folders[1]
	assert.Equal(t, []string{"f3"}, series.OriginalIDs)
	assert.Equal(t, []int{1}, series.AccountIndexes)
}

func TestMerge_IndependentOfInputOrder(t *testing.T) {
	forward := application.Merge([]model.RemoteFile{
		folderEntry("f1", "Movies", 0),
		folderEntry("f2", "Movies", 1),
	})
	reversed := application.Merge([]model.RemoteFile{
		folderEntry("f2", "Movies", 1),
		folderEntry("f1", "Movies", 0),
	})

	require.Len(t, forward.Folders, 1)
	require.Len(t, reversed.Folders, 1)
	assert.ElementsMatch(t, forward.Folders[0].OriginalIDs, reversed.Folders[0].OriginalIDs)
	assert.ElementsMatch(t, forward.Folders[0].AccountIndexes, reversed.Folders[0].AccountIndexes)
}

func TestMerge_NameMatchIsCaseSensitive(t *testing.T) {
	listing := application.Merge([]model.RemoteFile{
		folderEntry("f1", "Movies", 0),
		folderEntry("f2", "movies", 1),
	})

	assert.Len(t, listing.Folders, 2)
}

func TestMerge_DuplicateNameWithinOneAccount_FirstWins(t *testing.T) {
	listing := application.Merge([]model.RemoteFile{
		folderEntry("f1", "Movies", 0),
		folderEntry("f2", "Movies", 0),
		folderEntry("f3", "Movies", 1),
	})

	require.Len(t, listing.Folders, 1)
	assert.Equal(t, []string{"f1", "f3"}, listing.Folders[0].OriginalIDs)
	assert.Equal(t, []int{0, 1}, listing.Folders[0].AccountIndexes)
}

func TestMerge_VideosPassThroughWithoutDeduplication(t *testing.T) {
	// The same id from two accounts stays two entries: ids from different
	// accounts never refer to the same object.
	listing := application.Merge([]model.RemoteFile{
		videoEntry("v1", "intro.mp4", 0),
		videoEntry("v1", "intro.mp4", 1),
	})

	require.Len(t, listing.Videos, 2)
	assert.Equal(t, "0-v1-0", listing.Videos[0].UniqueKey)
	assert.Equal(t, "1-v1-1", listing.Videos[1].UniqueKey)
	assert.Equal(t, 0, listing.Videos[0].AccountIndex)
	assert.Equal(t, 1, listing.Videos[1].AccountIndex)
}

func TestMerge_VideoThumbnailFallback(t *testing.T) {
	withThumb := videoEntry("v1", "a.mp4", 0)
	withThumb.ThumbnailLink = "https://lh3.example.com/thumb-v1"
	withoutThumb := videoEntry("v2", "b.mp4", 0)

	listing := application.Merge([]model.RemoteFile{withThumb, withoutThumb})

	require.Len(t, listing.Videos, 2)
	assert.Equal(t, "https://lh3.example.com/thumb-v1", listing.Videos[0].ThumbnailLink)
	assert.Equal(t, "https://drive.google.com/thumbnail?id=v2&sz=w320-h180", listing.Videos[1].ThumbnailLink)
}

func TestMerge_UnrecognizedKindsAreDropped(t *testing.T) {
	doc := model.RemoteFile{ID: "d1", Name: "notes.txt", MIMEType: "text/plain", AccountIndex: 0}

	listing := application.Merge([]model.RemoteFile{
		doc,
		folderEntry("f1", "Movies", 0),
		videoEntry("v1", "a.mp4", 0),
	})

	assert.Len(t, listing.Folders, 1)
	assert.Len(t, listing.Videos, 1)
}

func TestMerge_EmptyInput(t *testing.T) {
	listing := application.Merge(nil)

	require.NotNil(t, listing)
	assert.Empty(t, listing.Folders)
	assert.Empty(t, listing.Videos)
}
