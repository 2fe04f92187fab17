package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store scans and holds the two on-disk distribution directories:
// eggs/ (unpacked or zipped archives) and develop-eggs/ (link files
// pointing at local source trees).
type Store struct {
	EggsDir        string
	DevelopEggsDir string

	byProject map[string][]Distribution
}

// New returns a Store rooted at eggsDir/developEggsDir without scanning;
// call Scan to populate it.
func New(eggsDir, developEggsDir string) *Store {
	return &Store{
		EggsDir:        eggsDir,
		DevelopEggsDir: developEggsDir,
		byProject:      map[string][]Distribution{},
	}
}

// Scan rebuilds the store's view of disk: every develop-egg link file in
// developEggsDir, then every archive/directory in eggsDir.
func (s *Store) Scan() error {
	s.byProject = map[string][]Distribution{}

	if err := s.scanDevelopEggs(); err != nil {
		return err
	}
	if err := s.scanEggs(); err != nil {
		return err
	}
	return nil
}

func (s *Store) scanDevelopEggs() error {
	entries, err := os.ReadDir(s.DevelopEggsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		linkPath := filepath.Join(s.DevelopEggsDir, e.Name())
		target, err := os.ReadFile(linkPath)
		if err != nil {
			return fmt.Errorf("reading develop-egg link %s: %w", linkPath, err)
		}

		sourceDir := strings.TrimSpace(string(target))
		meta, err := readMetadata(sourceDir)
		if err != nil {
			// A develop source with no PKG-INFO yet (only a setup script)
			// keeps its link but contributes no distribution to the store.
			continue
		}

		s.add(Distribution{
			Project:           meta.Name,
			Version:           meta.Version,
			Location:          sourceDir,
			Kind:              Develop,
			NamespacePackages: meta.NamespacePackages,
			Requires:          meta.Requires,
			DependencyLinks:   meta.DependencyLinks,
		})
	}
	return nil
}

func (s *Store) scanEggs() error {
	entries, err := os.ReadDir(s.EggsDir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, e := range entries {
		path := filepath.Join(s.EggsDir, e.Name())

		metaDir := path
		if !e.IsDir() {
			// A zipped egg: metadata lives inside the archive under
			// EGG-INFO, which callers of BestMatch don't need pre-unpacked
			// for; treat its basename as authoritative and skip metadata
			// parsing until it is actually unpacked.
			project, version, ok := parseEggBasename(e.Name())
			if !ok {
				continue
			}
			s.add(Distribution{
				Project:  project,
				Version:  version,
				Location: path,
				Kind:     Binary,
			})
			continue
		}

		meta, err := readMetadata(metaDir)
		if err != nil {
			continue
		}
		s.add(Distribution{
			Project:           meta.Name,
			Version:           meta.Version,
			Location:          path,
			Kind:              Binary,
			NamespacePackages: meta.NamespacePackages,
			Requires:          meta.Requires,
			DependencyLinks:   meta.DependencyLinks,
			HasZipSafe:        meta.HasZipSafe,
			NotZipSafe:        meta.NotZipSafe,
		})
	}
	return nil
}

func (s *Store) add(dist Distribution) {
	key := normalizeProject(dist.Project)
	s.byProject[key] = append(s.byProject[key], dist)
}

// Candidates returns every known distribution for project, develop
// distributions first (the resolver prefers them unconditionally), then
// the rest in scan order; versions are not sorted here.
func (s *Store) Candidates(project string) []Distribution {
	all := append([]Distribution(nil), s.byProject[normalizeProject(project)]...)

	sort.SliceStable(all, func(i, j int) bool {
		di, dj := all[i].Kind == Develop, all[j].Kind == Develop
		if di != dj {
			return di
		}
		return false
	})
	return all
}

// BestMatch returns the best distribution for project satisfying
// matches, preferring develop distributions unconditionally and
// otherwise the first candidate (in store order) that matches.
func (s *Store) BestMatch(project string, matches func(version string) bool) (Distribution, bool) {
	for _, dist := range s.Candidates(project) {
		if dist.Kind == Develop || matches == nil || matches(dist.Version) {
			return dist, true
		}
	}
	return Distribution{}, false
}

// Require adds dist to ws, the process's active working set.
func (s *Store) Require(ws *WorkingSet, dist Distribution) error {
	return ws.Add(dist)
}

// parseEggBasename recovers project/version from a zipped egg's file
// name, of the form "<project>-<version>-<tag>.egg" or
// "<project>-<version>.egg".
func parseEggBasename(name string) (project, version string, ok bool) {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	parts := strings.SplitN(name, "-", 3)
	if len(parts) < 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}
