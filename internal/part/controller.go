package part

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/partforge/partforge/internal/buildcfg"
	"github.com/partforge/partforge/internal/errdefs"
	"github.com/partforge/partforge/internal/log"
	"github.com/partforge/partforge/internal/recipe"
	"github.com/partforge/partforge/internal/resolver"
	"github.com/partforge/partforge/internal/store"
)

// Controller runs the install protocol from spec.md §4.H against a
// single project root. partforge recipes are Go code registered ahead
// of time through internal/recipe's factory registry rather than
// distributions fetched and imported at run time (there is no Go
// analogue of "pip install the recipe, then import it"); a part's
// signature is therefore computed over the distributions its own
// "eggs" option resolves, not over a distribution backing the recipe
// itself.
type Controller struct {
	Root           string
	BinDir         string
	PartsDir       string
	EggsDir        string
	DevelopEggsDir string
	ManifestPath   string
	Executable     string

	Store      *store.Store
	Resolver   *resolver.Resolver
	WorkingSet *store.WorkingSet
}

// Install runs steps 2-10 of the protocol against tree, installing
// explicitParts (or every part tree's buildout:parts names, if empty).
func (c *Controller) Install(tree *buildcfg.Tree, explicitParts []string) error {
	defer errdefs.Doing("install")()

	if err := c.ensureDirectories(); err != nil {
		return err
	}

	manifest, err := c.loadManifest()
	if err != nil {
		return err
	}

	buildoutSec := tree.Section("buildout")

	if err := c.reconcileDevelopEggs(buildoutSec, manifest); err != nil {
		return err
	}
	if err := c.saveManifest(manifest); err != nil {
		return err
	}

	confPartsRaw, _ := buildoutSec.Get("parts")
	confParts := strings.Fields(confPartsRaw)
	installedParts := manifest.PartNames()

	var targetParts []string
	pruneOmitted := len(explicitParts) == 0
	if len(explicitParts) > 0 {
		targetParts = explicitParts
	} else {
		targetParts = confParts
	}

	// Step 8: uninstall previously installed parts no longer wanted, or
	// whose options/signature/files have drifted, in reverse install
	// order.
	for i := len(installedParts) - 1; i >= 0; i-- {
		name := installedParts[i]
		wanted := contains(targetParts, name)
		if !wanted && !pruneOmitted {
			continue
		}

		recorded, _ := manifest.Part(name)

		if wanted && tree.Has(name) {
			sig, sigErr := c.computeSignature(name, tree.Section(name))
			if sigErr == nil && sig == recorded.Signature &&
				optionsMatch(recorded.Options, snapshotOptions(tree.Section(name))) &&
				filesExist(c.Root, recorded.Installed) {
				continue // unchanged: skip
			}
		}

		c.uninstallPart(name, recorded)
		manifest.RemovePart(name)

		if err := c.saveManifest(manifest); err != nil {
			return err
		}
	}

	// Step 9: install or update every target part, in declared order.
	for _, name := range targetParts {
		if err := c.installOnePart(tree, manifest, name); err != nil {
			return err
		}
	}

	return c.saveManifest(manifest)
}

func (c *Controller) installOnePart(tree *buildcfg.Tree, manifest *Manifest, name string) error {
	defer errdefs.Doing(fmt.Sprintf("installing part %q", name))()

	if !tree.Has(name) {
		return errdefs.New(errdefs.MissingSection, "part %q has no matching section", name)
	}
	sec := tree.Section(name)

	recipeSpec, err := sec.Get("recipe")
	if err != nil {
		return errdefs.New(errdefs.MissingOption, "part %q has no recipe option", name)
	}

	project, entryPoint := Part{Recipe: recipeSpec}.RecipeDistribution()
	factory, ok := recipe.Lookup(project, entryPoint)
	if !ok {
		return errdefs.New(errdefs.MissingDistribution, "no recipe registered for %q", recipeSpec)
	}

	ctx := recipe.Context{
		PartName:   name,
		Options:    sec,
		Root:       c.Root,
		Resolver:   c.Resolver,
		WorkingSet: c.WorkingSet,
		BinDir:     c.BinDir,
		Executable: c.Executable,
	}

	r, err := factory(ctx)
	if err != nil {
		return err
	}

	recorded, alreadyInstalled := manifest.Part(name)

	var installed []string
	if alreadyInstalled {
		if updater, ok := r.(recipe.Updater); ok {
			installed, err = updater.Update(recorded.Installed)
		} else {
			log.Default().Warn("recipe has no update entry point, falling back to install", "part", name)
			installed, err = r.Install()
		}
	} else {
		installed, err = r.Install()
	}

	if err != nil {
		c.rollbackPartial(installed)
		return err
	}

	sig, err := c.computeSignature(name, sec)
	if err != nil {
		return err
	}

	manifest.SetPart(Part{
		Name:      name,
		Recipe:    recipeSpec,
		Options:   snapshotOptions(sec),
		Signature: sig,
		Installed: installed,
	})

	if err := c.saveManifest(manifest); err != nil {
		return err
	}

	for _, unused := range sec.Unused() {
		log.Default().Warn("option was never read by its recipe", "part", name, "option", unused)
	}

	return nil
}

// loadManifest loads the manifest at c.ManifestPath, or returns an empty
// one unconditionally when ManifestPath is "" — the documented way of
// disabling the manifest (spec.md §6: "installed ... empty disables").
func (c *Controller) loadManifest() (*Manifest, error) {
	if c.ManifestPath == "" {
		return NewManifest(), nil
	}
	return LoadManifest(c.ManifestPath)
}

// saveManifest persists manifest, a no-op when the manifest is disabled.
func (c *Controller) saveManifest(manifest *Manifest) error {
	if c.ManifestPath == "" {
		return nil
	}
	return manifest.Save(c.ManifestPath)
}

func (c *Controller) ensureDirectories() error {
	for _, dir := range []string{c.BinDir, c.PartsDir, c.EggsDir, c.DevelopEggsDir} {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	return nil
}

// reconcileDevelopEggs removes develop-egg links for source directories
// no longer listed in buildout:develop, then (re)creates a link for
// every directory currently listed, rolling back any link files it
// created itself if a later directory in the list fails.
func (c *Controller) reconcileDevelopEggs(buildoutSec *buildcfg.Section, manifest *Manifest) error {
	developRaw, _ := buildoutSec.Get("develop")
	wanted := absolutize(c.Root, strings.Fields(developRaw))

	wantedNames := map[string]bool{}
	for _, dir := range wanted {
		wantedNames[filepath.Base(dir)] = true
	}

	for _, name := range manifest.DevelopEggs() {
		if !wantedNames[name] {
			os.Remove(filepath.Join(c.DevelopEggsDir, name+".egg-link"))
		}
	}

	var created []string
	for _, dir := range wanted {
		linkPath := filepath.Join(c.DevelopEggsDir, filepath.Base(dir)+".egg-link")
		if err := os.WriteFile(linkPath, []byte(dir+"\n"), 0644); err != nil {
			for _, p := range created {
				os.Remove(p)
			}
			return fmt.Errorf("creating develop-egg link for %s: %w", dir, err)
		}
		created = append(created, linkPath)
	}

	manifest.SetDevelopEggs(namesOf(wanted))

	if c.Store != nil {
		return c.Store.Scan()
	}
	return nil
}

// absolutize resolves each of dirs against root, the way buildout
// resolves "develop" paths relative to the buildout configuration's own
// directory, so the resulting egg-link files hold absolute paths
// regardless of how the option was written in the config file.
func absolutize(root string, dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		if filepath.IsAbs(d) {
			out[i] = filepath.Clean(d)
		} else {
			out[i] = filepath.Join(root, d)
		}
	}
	return out
}

func namesOf(dirs []string) []string {
	out := make([]string, len(dirs))
	for i, d := range dirs {
		out[i] = filepath.Base(d)
	}
	return out
}

// computeSignature resolves sec's "eggs" option (if any) against the
// controller's working set and folds the resulting distributions into a
// part signature; a recipe with no eggs option signs against its recipe
// name alone, so a config change to an unrelated option doesn't look
// like drift but a change to the recipe itself does.
func (c *Controller) computeSignature(partName string, sec *buildcfg.Section) (string, error) {
	eggsRaw, _ := sec.Get("eggs")
	requirements := strings.Fields(eggsRaw)

	if len(requirements) == 0 || c.Resolver == nil {
		recipeSpec, _ := sec.Get("recipe")
		return recipeSpec, nil
	}

	var dists []store.Distribution
	for _, req := range requirements {
		project, _, _ := strings.Cut(req, ">")
		project, _, _ = strings.Cut(project, "=")
		project = strings.TrimSpace(project)
		if dist, ok := c.WorkingSet.Get(project); ok {
			dists = append(dists, dist)
		}
	}
	return Signature(dists)
}

func (c *Controller) uninstallPart(name string, recorded Part) {
	project, entryPoint := Part{Recipe: recorded.Recipe}.RecipeDistribution()
	if factory, ok := recipe.Lookup(project, entryPoint); ok {
		ctx := recipe.Context{PartName: name, Options: emptyOptions{}, Root: c.Root}
		if r, err := factory(ctx); err == nil {
			if u, ok := r.(recipe.Uninstaller); ok {
				if err := u.Uninstall(recorded.Installed); err != nil {
					log.Default().Warn("recipe uninstall entry point failed",
						"part", name, "error", err)
				}
			}
		}
	}
	// The recipe's own uninstall entry point, if any, runs as a hook for
	// non-file cleanup (services, registrations); every recorded path is
	// always removed afterward regardless of whether that hook ran.
	c.removeRecordedFiles(recorded.Installed)
}

func (c *Controller) rollbackPartial(paths []string) {
	c.removeRecordedFiles(paths)
}

func (c *Controller) removeRecordedFiles(paths []string) {
	for i := len(paths) - 1; i >= 0; i-- {
		p := paths[i]
		if !filepath.IsAbs(p) {
			p = filepath.Join(c.Root, p)
		}
		os.RemoveAll(p)
	}
}

type emptyOptions struct{}

func (emptyOptions) Get(string) (string, error) { return "", fmt.Errorf("no options available during uninstall") }
func (emptyOptions) Has(string) bool             { return false }
func (emptyOptions) Set(string, string)          {}

func contains(xs []string, x string) bool {
	for _, v := range xs {
		if v == x {
			return true
		}
	}
	return false
}

func filesExist(root string, paths []string) bool {
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		if _, err := os.Stat(p); err != nil {
			return false
		}
	}
	return true
}

func snapshotOptions(sec *buildcfg.Section) map[string]string {
	out := map[string]string{}
	for _, k := range sec.Keys() {
		v, err := sec.Get(k)
		if err == nil {
			out[k] = v
		}
	}
	return out
}

func optionsMatch(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
