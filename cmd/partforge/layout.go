package main

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/partforge/partforge/internal/buildcfg"
	"github.com/partforge/partforge/internal/cfgfile"
	"github.com/partforge/partforge/internal/dlcache"
	"github.com/partforge/partforge/internal/index"
	"github.com/partforge/partforge/internal/part"
	"github.com/partforge/partforge/internal/resolver"
	"github.com/partforge/partforge/internal/store"
)

// project bundles everything a command needs once the configuration file
// has been loaded and the global flag overrides applied.
type project struct {
	Root string
	Tree *buildcfg.Tree
	Ctrl *part.Controller
}

// loadProject parses configFile, applies every -c/-o/-O/-n/-N override and
// bare section:option=value assignment, and wires a Controller against the
// resulting directory layout.
func loadProject() (*project, error) {
	root, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	ct, err := cfgfile.Parse(configFile)
	if err != nil {
		return nil, err
	}
	tree := buildcfg.FromConfigTree(ct)
	buildoutSec := tree.Section("buildout")

	applyFlagOverrides(buildoutSec)
	for _, ov := range cliAssignments {
		tree.Section(ov.Section).Set(ov.Option, ov.Value)
	}

	layout := resolveLayout(root, buildoutSec)

	st := store.New(layout.eggsDir, layout.developEggsDir)
	if err := st.Scan(); err != nil {
		return nil, err
	}

	idx := buildIndex(buildoutSec)

	cache, err := dlcache.New(dlcache.Config{
		Directory: layout.downloadCache,
	})
	if err != nil {
		return nil, err
	}

	ws := store.NewWorkingSet()
	opts := resolver.Options{
		EggsDir:                layout.eggsDir,
		Newest:                 boolOption(buildoutSec, "newest", true),
		PreferFinal:            boolOption(buildoutSec, "prefer-final", true),
		DisableDependencyLinks: !boolOption(buildoutSec, "use-dependency-links", true),
		Offline:                boolOption(buildoutSec, "offline", false),
	}
	if versionsSection, err := buildoutSec.Get("versions"); err == nil && versionsSection != "" {
		opts.DefaultVersions = pinsFrom(tree, versionsSection)
	}

	res := resolver.New(st, idx, cache, ws, opts)

	ctrl := &part.Controller{
		Root:           root,
		BinDir:         layout.binDir,
		PartsDir:       layout.partsDir,
		EggsDir:        layout.eggsDir,
		DevelopEggsDir: layout.developEggsDir,
		ManifestPath:   layout.manifestPath,
		Executable:     stringOption(buildoutSec, "executable", "python3"),
		Store:          st,
		Resolver:       res,
		WorkingSet:     ws,
	}

	return &project{Root: root, Tree: tree, Ctrl: ctrl}, nil
}

type layout struct {
	eggsDir        string
	developEggsDir string
	binDir         string
	partsDir       string
	manifestPath   string
	downloadCache  string
}

func resolveLayout(root string, buildoutSec *buildcfg.Section) layout {
	return layout{
		eggsDir:        dirOption(root, buildoutSec, "eggs-directory", "eggs"),
		developEggsDir: dirOption(root, buildoutSec, "develop-eggs-directory", "develop-eggs"),
		binDir:         dirOption(root, buildoutSec, "bin-directory", "bin"),
		partsDir:       dirOption(root, buildoutSec, "parts-directory", "parts"),
		manifestPath:   dirOption(root, buildoutSec, "installed", ".installed.cfg"),
		downloadCache:  dirOption(root, buildoutSec, "download-cache", ""),
	}
}

// dirOption resolves a buildout directory-layout option against root,
// falling back to fallback when the option is absent. An option present
// but set to the empty string is left empty rather than defaulted — the
// "installed" option's documented way of disabling the manifest.
func dirOption(root string, sec *buildcfg.Section, option, fallback string) string {
	var v string
	if sec.Has(option) {
		v, _ = sec.Get(option)
	} else {
		v = fallback
	}
	if v == "" || filepath.IsAbs(v) {
		return v
	}
	return filepath.Join(root, v)
}

func stringOption(sec *buildcfg.Section, option, fallback string) string {
	v, err := sec.Get(option)
	if err != nil || v == "" {
		return fallback
	}
	return v
}

func boolOption(sec *buildcfg.Section, option string, fallback bool) bool {
	v, err := sec.Get(option)
	if err != nil || v == "" {
		return fallback
	}
	return strings.EqualFold(strings.TrimSpace(v), "true")
}

// applyFlagOverrides pushes the -o/-O/-n/-N/-t global flags into the
// buildout section, taking precedence over whatever the config file says.
func applyFlagOverrides(sec *buildcfg.Section) {
	if offlineOverride != "" {
		sec.Set("offline", offlineOverride)
	}
	if newestOverride != "" {
		sec.Set("newest", newestOverride)
	}
	if socketTimeout > 0 {
		sec.Set("socket-timeout", strconv.Itoa(socketTimeout))
	}
}

func pinsFrom(tree *buildcfg.Tree, sectionName string) map[string]string {
	pins := map[string]string{}
	sec := tree.Section(sectionName)
	for _, k := range sec.Keys() {
		if v, err := sec.Get(k); err == nil {
			pins[k] = v
		}
	}
	return pins
}

// buildIndex wires the find-links option into an Index, honoring
// allow-hosts. Offline mode is not applied here; the resolver enforces it.
// A project with no find-links configured gets a nil Index, which the
// resolver treats as "store-only."
func buildIndex(sec *buildcfg.Section) index.Index {
	var indexes []index.Index

	if findLinks, err := sec.Get("find-links"); err == nil {
		for _, loc := range strings.Fields(findLinks) {
			indexes = append(indexes, index.NewFindLinksIndex(loc))
		}
	}

	if len(indexes) == 0 {
		return nil
	}

	combined := multiIndex(indexes)

	if allowHosts, err := sec.Get("allow-hosts"); err == nil && allowHosts != "" {
		return index.AllowHosts{Index: combined, Patterns: strings.Fields(allowHosts)}
	}
	return combined
}

// multiIndex concatenates candidates from each underlying Index in order.
// Download tries each underlying Index in turn and returns the first
// success.
type multiIndexes []index.Index

func multiIndex(indexes []index.Index) index.Index {
	if len(indexes) == 1 {
		return indexes[0]
	}
	return multiIndexes(indexes)
}

func (m multiIndexes) Candidates(project string) ([]index.RemoteDist, error) {
	var all []index.RemoteDist
	for _, idx := range m {
		c, err := idx.Candidates(project)
		if err != nil {
			continue
		}
		all = append(all, c...)
	}
	return all, nil
}

func (m multiIndexes) Download(dist index.RemoteDist, destDir string) (string, error) {
	var lastErr error
	for _, idx := range m {
		path, err := idx.Download(dist, destDir)
		if err == nil {
			return path, nil
		}
		lastErr = err
	}
	return "", lastErr
}
