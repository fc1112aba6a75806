// Package texture counts invalidations of image files pushed by the engine,
// so cached images can be re-fetched under a fresh URL.
package texture

import (
	"net/url"
	"sort"
	"strconv"
	"sync"
)

type Table struct {
	mu     sync.RWMutex
	counts map[string]uint64
}

func NewTable() *Table {
	return &Table{counts: map[string]uint64{}}
}

func (t *Table) Invalidate(path string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.counts[path]++
	return t.counts[path]
}

// Count is zero for paths never invalidated.
func (t *Table) Count(path string) uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.counts[path]
}

// URL is path with the current invalidation count as a query suffix.
func (t *Table) URL(path string) string {
	return path + "?invalidation=" + strconv.FormatUint(t.Count(path), 10)
}

// Query is the suffix of URL as url.Values, for callers building their own
// asset URLs.
func (t *Table) Query(path string) url.Values {
	return url.Values{"invalidation": {strconv.FormatUint(t.Count(path), 10)}}
}

type Entry struct {
	Path  string `json:"path"`
	Count uint64 `json:"count"`
}

// Entries lists every invalidated path, sorted.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	out := make([]Entry, 0, len(t.counts))
	for p, n := range t.counts {
		out = append(out, Entry{Path: p, Count: n})
	}
	t.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}
