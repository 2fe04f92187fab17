// Package resolver implements requirement resolution and installation:
// given requirement strings, it walks the CONSTRAIN/SATISFY/FETCH/
// UNPACK/RESCAN state machine against a distribution store and a set of
// indices, extending a working set breadth-first.
package resolver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/partforge/partforge/internal/archive"
	"github.com/partforge/partforge/internal/dlcache"
	"github.com/partforge/partforge/internal/errdefs"
	"github.com/partforge/partforge/internal/index"
	"github.com/partforge/partforge/internal/log"
	"github.com/partforge/partforge/internal/store"
)

// Options configures a single resolution call.
type Options struct {
	// EggsDir is where fetched archives are unpacked or copied.
	EggsDir string
	// DefaultVersions pins a project to an exact version, rewriting any
	// requirement for it before lookup.
	DefaultVersions map[string]string
	// Newest, when false, is satisfied by whatever the store already has
	// without consulting the index at all.
	Newest bool
	// PreferFinal filters out non-final (pre-release) versions when at
	// least one final version is available.
	PreferFinal bool
	// AlwaysUnzip forces every fetched archive to be unpacked rather than
	// left zipped.
	AlwaysUnzip bool
	// NamespaceSupportPackage is the project silently added as a
	// dependency when a satisfied distribution declares namespace
	// packages without requiring it (spec.md §4.E's namespace-package
	// heuristic). Defaults to "setuptools" if empty.
	NamespaceSupportPackage string
	// DisableDependencyLinks suppresses the dependency-link recursion
	// step (set when install-from-cache mode is active).
	DisableDependencyLinks bool
	// Offline, when true, never fetches a non-file:// distribution: a
	// requirement already satisfied from the store is used as-is (even
	// under Newest), and one that isn't raises an Offline error naming
	// the URL that would have been fetched.
	Offline bool
}

func (o Options) namespaceSupportPackage() string {
	if o.NamespaceSupportPackage != "" {
		return o.NamespaceSupportPackage
	}
	return "setuptools"
}

// Resolver ties together a distribution store, an archive index, and a
// download cache to satisfy requirement strings into a working set.
type Resolver struct {
	Store *store.Store
	Index index.Index
	Cache *dlcache.Cache
	WS    *store.WorkingSet
	Opts  Options

	links []string // dependency links collected from resolved distributions; no lookup reads them

	// pendingArchive/pendingRemote carry state from the FETCH state to
	// the UNPACK state within a single satisfy() call.
	pendingArchive string
	pendingRemote  *index.RemoteDist
}

// New returns a Resolver. ws is extended in place as requirements are
// satisfied.
func New(st *store.Store, idx index.Index, cache *dlcache.Cache, ws *store.WorkingSet, opts Options) *Resolver {
	return &Resolver{Store: st, Index: idx, Cache: cache, WS: ws, Opts: opts}
}

type queueItem struct {
	raw   string
	chain []string
}

// Resolve satisfies every requirement string in requirements, and
// transitively every requirement their distributions declare,
// breadth-first, extending r.WS. Each requirement is constrained
// against r.Opts.DefaultVersions before lookup.
func (r *Resolver) Resolve(requirements []string) error {
	queue := make([]queueItem, 0, len(requirements))
	for _, s := range requirements {
		queue = append(queue, queueItem{raw: s})
	}

	processed := map[string]bool{}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		req, err := ParseRequirement(item.raw)
		if err != nil {
			return err
		}

		req, err = r.constrain(req)
		if err != nil {
			return err
		}

		key := normalizeKey(req.Project)
		if existing, ok := r.WS.Get(req.Project); ok {
			if !req.Matches(existing.Version) {
				return errdefs.Wrap(errdefs.VersionConflict, r.versionConflict(req, existing.Version, item.chain))
			}
			processed[key] = true
			continue
		}
		if processed[key] {
			continue
		}

		dist, err := r.satisfy(req)
		if err != nil {
			return err
		}
		processed[key] = true

		if err := r.WS.Add(dist); err != nil {
			return err
		}

		r.applyNamespaceHeuristic(&dist)

		for _, sub := range dist.Requires {
			queue = append(queue, queueItem{raw: sub, chain: append(append([]string{}, item.chain...), req.Project)})
		}

		if !r.Opts.DisableDependencyLinks {
			r.links = append(r.links, dist.DependencyLinks...)
		}
	}

	return nil
}

// versionConflict builds a VersionConflictError for req, resolving
// chain's project names against the working set to report each
// requirer's version alongside its name.
func (r *Resolver) versionConflict(req Requirement, chosen string, chain []string) *VersionConflictError {
	err := &VersionConflictError{Requirement: req, Chosen: chosen}
	if len(chain) == 0 {
		return err
	}

	err.Requirer = chain[len(chain)-1]
	if dist, ok := r.WS.Get(err.Requirer); ok {
		err.RequirerVersion = dist.Version
	}

	for i := len(chain) - 1; i >= 0; i-- {
		version := ""
		if dist, ok := r.WS.Get(chain[i]); ok {
			version = dist.Version
		}
		err.Chain = append(err.Chain, RequirerLink{Project: chain[i], Version: version})
	}
	return err
}

// constrain rewrites req to an exact-version pin if its project appears
// in r.Opts.DefaultVersions (spec.md §4.E's "Version pinning" step).
func (r *Resolver) constrain(req Requirement) (Requirement, error) {
	pinned, ok := r.Opts.DefaultVersions[req.Project]
	if !ok {
		return req, nil
	}

	pinnedReq, err := req.Pin(pinned)
	if err != nil {
		return Requirement{}, errdefs.Wrap(errdefs.IncompatibleVersion,
			&IncompatibleVersionError{Project: req.Project, Pinned: pinned, Raw: req.Raw})
	}
	return pinnedReq, nil
}

// satisfy runs the CONSTRAIN->SATISFY/FETCH->UNPACK->RESCAN->SATISFY
// state machine for a single requirement.
func (r *Resolver) satisfy(req Requirement) (store.Distribution, error) {
	st := stateConstrain

	var storeBest store.Distribution
	haveStoreBest := false

	for {
		switch st {
		case stateConstrain:
			// Step 1/2: a develop distribution, or a store match for an
			// exact-pinned requirement, is returned immediately — neither
			// is ever superseded by the index.
			if dist, ok := r.developMatch(req); ok {
				return dist, nil
			}
			if req.Constraint != nil && isExactPin(req) {
				if dist, ok := r.Store.BestMatch(req.Project, req.Matches); ok {
					return dist, nil
				}
			}

			storeBest, haveStoreBest = r.bestFromStore(req)

			switch {
			case (!r.Opts.Newest || r.Opts.Offline) && haveStoreBest:
				return storeBest, nil
			case r.Index == nil:
				if haveStoreBest {
					return storeBest, nil
				}
				st = stateMissing
			default:
				st = stateFetch
			}

		case stateFetch:
			remote, err := r.bestFromIndex(req, storeBest, haveStoreBest)
			if err != nil {
				return store.Distribution{}, err
			}
			if remote == nil {
				if haveStoreBest {
					return storeBest, nil
				}
				st = stateMissing
				continue
			}

			if r.Opts.Offline && !strings.HasPrefix(remote.URL, "file://") {
				return store.Distribution{}, errdefs.New(errdefs.Offline,
					"Couldn't download '%s' in offline mode.", remote.URL)
			}

			archivePath, err := r.fetchRemote(*remote)
			if err != nil {
				return store.Distribution{}, err
			}

			r.pendingArchive = archivePath
			r.pendingRemote = remote
			st = stateUnpack

		case stateUnpack:
			dest := filepath.Join(r.Opts.EggsDir, r.pendingRemote.Basename)
			if err := r.installArchive(r.pendingArchive, dest, *r.pendingRemote); err != nil {
				return store.Distribution{}, err
			}
			st = stateRescan

		case stateRescan:
			if err := r.Store.Scan(); err != nil {
				return store.Distribution{}, err
			}
			st = stateSatisfy

		case stateSatisfy:
			if dist, ok := r.bestFromStore(req); ok {
				return dist, nil
			}
			return store.Distribution{}, errdefs.Wrap(errdefs.MissingDistribution,
				&MissingDistributionError{Requirement: req})

		case stateMissing:
			return store.Distribution{}, errdefs.Wrap(errdefs.MissingDistribution,
				&MissingDistributionError{Requirement: req})
		}
	}
}

// isExactPin reports whether req's constraint admits exactly one
// version (the "==X" / "=X" shape spec.md §4.E's step 3 refers to).
func isExactPin(req Requirement) bool {
	return strings.HasPrefix(strings.TrimSpace(req.Raw[len(req.Project):]), "==")
}

func (r *Resolver) developMatch(req Requirement) (store.Distribution, bool) {
	for _, c := range r.Store.Candidates(req.Project) {
		if c.Kind == store.Develop && req.Matches(c.Version) {
			return c, true
		}
	}
	return store.Distribution{}, false
}

// bestFromStore applies spec.md §4.E's candidate-selection order against
// non-develop distributions already in the store: the newest match,
// filtered to final versions when PreferFinal is set and a final version
// exists among the matches.
func (r *Resolver) bestFromStore(req Requirement) (store.Distribution, bool) {
	candidates := r.Store.Candidates(req.Project)

	haveFinal := false
	for _, c := range candidates {
		if c.Kind != store.Develop && req.Matches(c.Version) && IsFinal(c.Version) {
			haveFinal = true
			break
		}
	}

	var best store.Distribution
	found := false
	for _, c := range candidates {
		if c.Kind == store.Develop || !req.Matches(c.Version) {
			continue
		}
		if r.Opts.PreferFinal && haveFinal && !IsFinal(c.Version) {
			continue
		}
		if !found || CompareVersions(c.Version, best.Version) > 0 {
			best = c
			found = true
		}
	}

	return best, found
}

// bestFromIndex asks r.Index for the best remote candidate strictly
// newer than storeBest (when haveStoreBest), per spec.md §4.E step 6:
// newest mode only installs from the index when it beats what is
// already on disk.
func (r *Resolver) bestFromIndex(req Requirement, storeBest store.Distribution, haveStoreBest bool) (*index.RemoteDist, error) {
	all, err := r.Index.Candidates(req.Project)
	if err != nil {
		return nil, err
	}

	haveFinal := false
	for _, d := range all {
		if req.Matches(d.Version) && IsFinal(d.Version) {
			haveFinal = true
			break
		}
	}

	var best *index.RemoteDist
	for i := range all {
		d := all[i]
		if !req.Matches(d.Version) {
			continue
		}
		if r.Opts.PreferFinal && haveFinal && !IsFinal(d.Version) {
			continue
		}
		if best == nil || CompareVersions(d.Version, best.Version) > 0 {
			best = &all[i]
		}
	}

	if best == nil {
		return nil, nil
	}

	if haveStoreBest && CompareVersions(best.Version, storeBest.Version) <= 0 {
		return nil, nil
	}

	return best, nil
}

func (r *Resolver) fetchRemote(remote index.RemoteDist) (string, error) {
	destDir := r.Opts.EggsDir
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	path, err := r.Index.Download(remote, destDir)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", remote.Project, err)
	}
	return path, nil
}

// installArchive places a fetched archive into dest under EggsDir,
// unpacking it when the unpack policy calls for it.
func (r *Resolver) installArchive(archivePath, dest string, remote index.RemoteDist) error {
	dist := store.Distribution{NotZipSafe: remote.NotZipSafe}

	if dist.ShouldUnpack(r.Opts.AlwaysUnzip) {
		if err := archive.Unpack(archivePath, dest); err != nil {
			return err
		}
		return nil
	}

	if archivePath == dest {
		return nil
	}
	return os.Rename(archivePath, dest)
}

// applyNamespaceHeuristic quietly adds the namespace support package as
// a requirement when dist declares namespace packages but didn't list it
// (spec.md §4.E). Develop distributions get a warning instead, since a
// develop checkout's metadata is trusted less.
func (r *Resolver) applyNamespaceHeuristic(dist *store.Distribution) {
	if len(dist.NamespacePackages) == 0 {
		return
	}

	support := r.Opts.namespaceSupportPackage()
	for _, req := range dist.Requires {
		parsed, err := ParseRequirement(req)
		if err == nil && normalizeKey(parsed.Project) == normalizeKey(support) {
			return
		}
	}

	if dist.Kind == store.Develop {
		log.Default().Warn("distribution declares namespace packages but does not require the namespace support package",
			"project", dist.Project, "support_package", support)
	}
	dist.Requires = append(dist.Requires, support)
}

func normalizeKey(project string) string {
	out := make([]byte, len(project))
	for i := 0; i < len(project); i++ {
		c := project[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c == '_' {
			c = '-'
		}
		out[i] = c
	}
	return string(out)
}
