// Package index implements the abstract archive-index capability spec.md
// §4.B describes: obtaining the best remote candidate for a requirement,
// listing candidates for a project, and downloading an archive. Concrete
// implementations (findlinks.go, githubindex.go) back this with a flat
// find-links pool or a GitHub releases feed.
package index

import (
	"fmt"
	"path"
	"strings"
	"sync"
)

// RemoteDist is a candidate distribution archive an Index knows how to
// fetch: attributes mirror spec.md §3's Distribution plus the metadata
// the resolver needs to apply zip-safety and namespace-package policy.
type RemoteDist struct {
	Project      string
	Version      string
	URL          string
	Basename     string
	NotZipSafe   bool
	SignatureURL string // optional detached-signature URL; GitHubIndex.Download saves it beside the archive, nothing verifies it
}

// Index is the abstract capability a resolver consults when a
// requirement cannot be satisfied from the local store.
type Index interface {
	// Candidates returns every known RemoteDist for project, in no
	// particular order; the resolver is responsible for version sorting.
	Candidates(project string) ([]RemoteDist, error)

	// Download retrieves dist's archive into destDir and returns the
	// local path to the downloaded file.
	Download(dist RemoteDist, destDir string) (string, error)
}

// AllowHosts wraps an Index, filtering out candidates/downloads whose URL
// host does not match one of patterns (shell-style globs, as the
// `allow-hosts` config option specifies). A file:// URL is always
// allowed regardless of the pattern list.
type AllowHosts struct {
	Index    Index
	Patterns []string
}

func (a AllowHosts) Candidates(project string) ([]RemoteDist, error) {
	all, err := a.Index.Candidates(project)
	if err != nil {
		return nil, err
	}

	if len(a.Patterns) == 0 {
		return all, nil
	}

	var filtered []RemoteDist
	for _, d := range all {
		if a.allowed(d.URL) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

func (a AllowHosts) Download(dist RemoteDist, destDir string) (string, error) {
	if !a.allowed(dist.URL) {
		return "", fmt.Errorf("host for %s is not in allow-hosts", dist.URL)
	}
	return a.Index.Download(dist, destDir)
}

func (a AllowHosts) allowed(rawURL string) bool {
	if strings.HasPrefix(rawURL, "file://") {
		return true
	}

	host := hostOf(rawURL)
	for _, pattern := range a.Patterns {
		if ok, _ := path.Match(pattern, host); ok {
			return true
		}
	}
	return false
}

func hostOf(rawURL string) string {
	rest := rawURL
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.IndexAny(rest, "/:"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}

// Key identifies a memoization slot: an Index is re-scanned at most once
// per distinct (executable, index URL, find-links) combination within a
// process, matching spec.md §4.B.
type Key struct {
	Executable string
	IndexURL   string
	FindLinks  string
}

// Cache memoizes constructed Index values by Key.
type Cache struct {
	mu      sync.Mutex
	entries map[Key]Index
}

// NewCache returns an empty memoization cache.
func NewCache() *Cache {
	return &Cache{entries: map[Key]Index{}}
}

// GetOrBuild returns the cached Index for key, calling build to construct
// and store one if this is the first request for key.
func (c *Cache) GetOrBuild(key Key, build func() (Index, error)) (Index, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.entries[key]; ok {
		return idx, nil
	}

	idx, err := build()
	if err != nil {
		return nil, err
	}
	c.entries[key] = idx
	return idx, nil
}
