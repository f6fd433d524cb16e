// Package colors assigns Google Calendar event colors to plan buckets.
package colors

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	cacheFile = "bucket_colors.json"

	// Event colors 1 (Lavender) to 11 (Tomato).
	paletteSize = 11
)

type bucketColor struct {
	Bucket  string `json:"bucket"`
	ColorID string `json:"color_id"`
}

// ColorCache hands out one color per bucket. When every color is taken the
// least recently used bucket gives its color up.
type ColorCache struct {
	Path  string
	cache *lru.Cache[string, string]
	dirty bool
}

func NewColorCache(dir string) (*ColorCache, error) {
	cache, err := lru.New[string, string](paletteSize)
	if err != nil {
		return nil, err
	}
	c := &ColorCache{
		Path:  filepath.Join(dir, cacheFile),
		cache: cache,
	}

	if _, err := os.Stat(c.Path); err == nil {
		if err := c.Load(); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load replays the saved buckets oldest first so recency survives restarts.
func (c *ColorCache) Load() error {
	f, err := os.Open(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	var entries []bucketColor
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return err
	}
	c.cache.Purge()
	for _, e := range entries {
		c.cache.Add(e.Bucket, e.ColorID)
	}
	return nil
}

func (c *ColorCache) Save() error {
	if !c.dirty {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0700); err != nil {
		return err
	}

	entries := make([]bucketColor, 0, c.cache.Len())
	for _, bucket := range c.cache.Keys() {
		if id, ok := c.cache.Peek(bucket); ok {
			entries = append(entries, bucketColor{Bucket: bucket, ColorID: id})
		}
	}

	f, err := os.Create(c.Path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(entries); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// GetColorID returns the color for bucket, or "" for tasks without a bucket
// so the calendar's default color applies.
func (c *ColorCache) GetColorID(bucket string) string {
	if bucket == "" {
		return ""
	}
	c.dirty = true
	if id, ok := c.cache.Get(bucket); ok {
		return id
	}
	return c.assignColor(bucket)
}

func (c *ColorCache) assignColor(bucket string) string {
	used := make(map[string]bool, c.cache.Len())
	for _, id := range c.cache.Values() {
		used[id] = true
	}

	for i := 1; i <= paletteSize; i++ {
		id := strconv.Itoa(i)
		if !used[id] {
			c.cache.Add(bucket, id)
			return id
		}
	}

	_, recycled, ok := c.cache.RemoveOldest()
	if !ok {
		recycled = "1"
	}
	c.cache.Add(bucket, recycled)
	return recycled
}
