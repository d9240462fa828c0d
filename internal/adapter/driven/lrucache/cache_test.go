package lrucache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/drivemux/internal/adapter/driven/lrucache"
	"github.com/ericfisherdev/drivemux/internal/domain/model"
)

func listingWithFolder(name string) *model.Listing {
	return &model.Listing{
		Folders: []model.MergedFolder{{RemoteFile: model.RemoteFile{ID: "f1", Name: name, MIMEType: model.FolderMIMEType}}},
		Videos:  []model.MergedVideo{},
	}
}

func TestCache_PutAndGet(t *testing.T) {
	cache := lrucache.New(8, time.Minute)
	listing := listingWithFolder("Movies")

	cache.Put("root", listing)

	got, ok := cache.Get("root")
	require.True(t, ok)
	assert.Same(t, listing, got)
}

func TestCache_MissOnUnknownKey(t *testing.T) {
	cache := lrucache.New(8, time.Minute)

	_, ok := cache.Get("absent")
	assert.False(t, ok)
}

func TestCache_PutReplacesEntry(t *testing.T) {
	cache := lrucache.New(8, time.Minute)

	cache.Put("root", listingWithFolder("old"))
	replacement := listingWithFolder("new")
	cache.Put("root", replacement)

	got, ok := cache.Get("root")
	require.True(t, ok)
	assert.Same(t, replacement, got)
}

func TestCache_EntriesExpireAfterTTL(t *testing.T) {
	cache := lrucache.New(8, 20*time.Millisecond)

	cache.Put("root", listingWithFolder("Movies"))
	_, ok := cache.Get("root")
	require.True(t, ok)

	time.Sleep(50 * time.Millisecond)

	_, ok = cache.Get("root")
	assert.False(t, ok, "entry should expire after the TTL")
}

func TestCache_CapacityEvictsOldestEntries(t *testing.T) {
	cache := lrucache.New(2, time.Minute)

	for i := 0; i < 3; i++ {
		key := fmt.Sprintf("folder-%d", i)
		cache.Put(key, listingWithFolder(key))
	}

	_, ok := cache.Get("folder-0")
	assert.False(t, ok, "oldest entry should be evicted at capacity")

	_, ok = cache.Get("folder-2")
	assert.True(t, ok)
}
