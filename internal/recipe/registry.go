// Package recipe implements the recipe abstraction: a named factory,
// keyed by distribution project and entry-point name, instantiated
// per-part with that part's resolved options. A recipe's capability is
// install (required), update (optional, falls back to install with a
// warning), and uninstall (optional, best-effort), per spec.md §4.H and
// the DESIGN NOTES on recipes as a registry of factories.
package recipe

import (
	"fmt"
	"sync"

	"github.com/partforge/partforge/internal/resolver"
	"github.com/partforge/partforge/internal/store"
)

// Options is the read/write view over a part's option bag a recipe gets:
// Get/Has/Set mirror internal/buildcfg.Section so a recipe cannot
// tell whether it's backed by a real config tree or a test double.
type Options interface {
	Get(option string) (string, error)
	Has(option string) bool
	Set(option, value string)
}

// Context is what a recipe factory receives to construct a Recipe: the
// part name, its options, the project root, and the name of the part
// buildout itself runs as (so recipes can name deterministic
// sub-locations under parts/<name>).
type Context struct {
	PartName string
	Options  Options
	Root     string

	// Resolver/WorkingSet/BinDir/Executable are only populated for
	// recipes that need to pull in eggs or generate launchers (the
	// "egg"-style recipes); a recipe that only manipulates the
	// filesystem (e.g. mkdir) can ignore them.
	Resolver   *resolver.Resolver
	WorkingSet *store.WorkingSet
	BinDir     string
	Executable string
}

// PartsDir returns the directory a recipe should use for any files it
// owns outside the store (parts/<name>).
func (c Context) PartsDir() string {
	return c.Root + "/parts/" + c.PartName
}

// Recipe is the instantiated, per-part behavior a recipe entry point
// implements.
type Recipe interface {
	// Install performs a fresh install, returning the paths (files or
	// directories, relative to Root where possible) it created.
	Install() ([]string, error)
}

// Updater is implemented by recipes that support incremental update
// instead of uninstall-then-reinstall.
type Updater interface {
	Update(previouslyInstalled []string) ([]string, error)
}

// Uninstaller is implemented by recipes with custom teardown logic
// beyond deleting the recorded files.
type Uninstaller interface {
	Uninstall(installed []string) error
}

// Factory constructs a Recipe for one part.
type Factory func(ctx Context) (Recipe, error)

var (
	registryMu sync.Mutex
	registry   = map[string]Factory{}
)

// Register adds a factory for "<project>:<entryPoint>". Re-registering
// the same key replaces the previous factory, matching how a later
// distribution on the search path shadows an earlier one.
func Register(project, entryPoint string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[key(project, entryPoint)] = factory
}

// Lookup returns the registered factory for project/entryPoint.
func Lookup(project, entryPoint string) (Factory, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	f, ok := registry[key(project, entryPoint)]
	return f, ok
}

func key(project, entryPoint string) string {
	return fmt.Sprintf("%s:%s", project, entryPoint)
}
