package sidecar

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
)

// DirCache indexes Google Takeout sidecars one directory at a time. Each
// directory is listed and parsed exactly once, with the index keyed by the
// JSON title field (the media filename the sidecar describes). Lookups after
// the first for a directory are map reads.
type DirCache struct {
	mu       sync.Mutex
	dirs     map[string]*dirIndex
	listings atomic.Int64
}

type dirIndex struct {
	once    sync.Once
	byTitle map[string][]Takeout
}

// NewDirCache returns an empty cache ready for concurrent use.
func NewDirCache() *DirCache {
	return &DirCache{dirs: make(map[string]*dirIndex)}
}

var duplicateCounter = regexp.MustCompile(`\(\d+\)$`)

// For returns every sidecar document describing the media file at path.
// Multiple sidecars for one file (photo.jpg.json beside photo(1).json) are
// all returned, in directory-listing order.
func (c *DirCache) For(mediaPath string) []Takeout {
	dir := filepath.Dir(mediaPath)
	name := filepath.Base(mediaPath)

	index := c.indexFor(dir)
	if docs, ok := index.byTitle[name]; ok {
		return docs
	}

	// Edited exports and duplicate-counter copies share the original's
	// sidecar: IMG_0012-edited.jpg and IMG_0012(1).jpg both pair with the
	// sidecar titled IMG_0012.jpg.
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	if trimmed := strings.TrimSuffix(stem, "-edited"); trimmed != stem {
		if docs, ok := index.byTitle[trimmed+ext]; ok {
			return docs
		}
	}
	if trimmed := duplicateCounter.ReplaceAllString(stem, ""); trimmed != stem {
		if docs, ok := index.byTitle[trimmed+ext]; ok {
			return docs
		}
	}
	return nil
}

// Listings reports how many directory scans the cache has performed.
func (c *DirCache) Listings() int {
	return int(c.listings.Load())
}

func (c *DirCache) indexFor(dir string) *dirIndex {
	c.mu.Lock()
	index, ok := c.dirs[dir]
	if !ok {
		index = &dirIndex{}
		c.dirs[dir] = index
	}
	c.mu.Unlock()

	index.once.Do(func() {
		index.byTitle = buildIndex(dir)
		c.listings.Add(1)
	})
	return index
}

func buildIndex(dir string) map[string][]Takeout {
	names, err := os.ReadDir(dir)
	if err != nil {
		return map[string][]Takeout{}
	}

	byTitle := make(map[string][]Takeout)
	for _, entry := range names {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		doc, err := ReadTakeout(filepath.Join(dir, entry.Name()))
		if err != nil || doc.Title == "" {
			continue
		}
		byTitle[doc.Title] = append(byTitle[doc.Title], doc)
	}
	return byTitle
}
