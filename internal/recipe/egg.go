package recipe

import (
	"fmt"
	"strings"

	"github.com/partforge/partforge/internal/launcher"
)

// eggRecipe resolves a set of egg requirements into the working set and,
// optionally, generates console-script launchers for them: the
// `zc.recipe.egg`-shaped recipe most parts in practice use. Registered
// as "partforge.recipe.egg:default".
type eggRecipe struct {
	ctx Context
}

func init() {
	Register("partforge.recipe.egg", "default", func(ctx Context) (Recipe, error) {
		return &eggRecipe{ctx: ctx}, nil
	})
}

func (r *eggRecipe) Install() ([]string, error) {
	if r.ctx.Resolver == nil || r.ctx.WorkingSet == nil {
		return nil, fmt.Errorf("egg recipe requires a resolver and working set")
	}

	eggsOpt, err := r.ctx.Options.Get("eggs")
	if err != nil {
		return nil, err
	}
	requirements := strings.Fields(eggsOpt)
	if len(requirements) == 0 {
		return nil, fmt.Errorf("egg recipe requires a non-empty eggs option")
	}

	if err := r.ctx.Resolver.Resolve(requirements); err != nil {
		return nil, err
	}

	if !r.ctx.Options.Has("scripts") {
		return nil, nil
	}

	scriptsOpt, err := r.ctx.Options.Get("scripts")
	if err != nil {
		return nil, err
	}

	entryPoints, err := parseScripts(scriptsOpt)
	if err != nil {
		return nil, err
	}

	var searchPaths []string
	for _, dist := range r.ctx.WorkingSet.Distributions() {
		searchPaths = append(searchPaths, dist.Location)
	}

	return launcher.Generate(launcher.Spec{
		EntryPoints:  entryPoints,
		Executable:   r.ctx.Executable,
		DestDir:      r.ctx.BinDir,
		SearchPaths:  searchPaths,
		RelativeRoot: r.ctx.Root,
	})
}

// parseScripts parses a whitespace-separated list of
// "name=module:attr" script declarations.
func parseScripts(raw string) ([]launcher.EntryPoint, error) {
	var eps []launcher.EntryPoint
	for _, field := range strings.Fields(raw) {
		name, rest, ok := strings.Cut(field, "=")
		if !ok {
			return nil, fmt.Errorf("invalid script declaration %q: expected name=module:attr", field)
		}
		module, attr, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("invalid script declaration %q: expected module:attr", field)
		}
		eps = append(eps, launcher.EntryPoint{DisplayName: name, Module: module, Attr: attr})
	}
	return eps, nil
}
