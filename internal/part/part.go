// Package part implements the part lifecycle: signature computation,
// the installed manifest, and the install/update/uninstall controller
// spec.md §4.H describes.
package part

import (
	"fmt"
	"sort"
	"strings"

	"github.com/partforge/partforge/internal/archive"
	"github.com/partforge/partforge/internal/store"
)

// Part is one buildout part: a name, a recipe spec of the form
// "<distribution>[:<entry-point>]", and its resolved option bag.
type Part struct {
	Name    string
	Recipe  string
	Options map[string]string

	// Signature and Installed are set by the controller once the part
	// has been signed/installed.
	Signature string
	Installed []string
}

// RecipeDistribution splits Recipe into the distribution/project name and
// the optional entry-point name (defaulting to "default").
func (p Part) RecipeDistribution() (project, entryPoint string) {
	project, entryPoint, found := strings.Cut(p.Recipe, ":")
	if !found {
		return p.Recipe, "default"
	}
	return project, entryPoint
}

// Signature computes §3's part signature: the space-joined, sorted
// contributions of every distribution (transitively) satisfying the
// recipe requirement. A BINARY/SOURCE distribution contributes its
// archive basename; a DEVELOP distribution contributes
// "<project>-<treehash>".
func Signature(dists []store.Distribution) (string, error) {
	contributions := make([]string, 0, len(dists))

	for _, d := range dists {
		switch d.Kind {
		case store.Develop:
			hash, err := archive.TreeHash(d.Location)
			if err != nil {
				return "", fmt.Errorf("hashing develop egg %s: %w", d.Project, err)
			}
			contributions = append(contributions, fmt.Sprintf("%s-%s", d.Project, hash))
		default:
			contributions = append(contributions, basename(d.Location))
		}
	}

	sort.Strings(contributions)
	return strings.Join(contributions, " "), nil
}

func basename(path string) string {
	path = strings.TrimRight(path, "/")
	if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
		return path[idx+1:]
	}
	return path
}
