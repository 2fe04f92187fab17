package recipe

import (
	"os"
	"strings"
)

// mkdirRecipe creates one or more directories under its "path"/"paths"
// option, the smallest useful recipe and a common smoke test for the
// install protocol. Registered as "partforge.recipe.mkdir:default".
type mkdirRecipe struct {
	ctx Context
}

func init() {
	Register("partforge.recipe.mkdir", "default", func(ctx Context) (Recipe, error) {
		return &mkdirRecipe{ctx: ctx}, nil
	})
}

func (r *mkdirRecipe) Install() ([]string, error) {
	raw, err := r.pathOption()
	if err != nil {
		return nil, err
	}

	var created []string
	for _, dir := range strings.Fields(raw) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return created, err
		}
		created = append(created, dir)
	}
	return created, nil
}

func (r *mkdirRecipe) pathOption() (string, error) {
	if r.ctx.Options.Has("paths") {
		return r.ctx.Options.Get("paths")
	}
	return r.ctx.Options.Get("path")
}

func (r *mkdirRecipe) Uninstall(installed []string) error {
	for _, dir := range installed {
		if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
