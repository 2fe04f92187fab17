package recipe

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// ManifestFile is the name of the entry-point manifest a distribution may
// carry at its root, the TOML analogue of an egg's entry_points.txt.
const ManifestFile = "partforge.toml"

// EntryPointDecl is one recipe entry point a distribution's manifest
// declares, as read by the "describe" command.
type EntryPointDecl struct {
	Name    string `toml:"name"`
	Summary string `toml:"summary"`
}

// Manifest is the parsed contents of a partforge.toml file.
type Manifest struct {
	Project     string           `toml:"project"`
	EntryPoints []EntryPointDecl `toml:"entry_point"`
}

// ReadManifest reads and parses distLocation's partforge.toml, if present.
// A missing manifest is not an error: it returns a zero Manifest with no
// entry points, since not every registered recipe project bothers to
// describe itself.
func ReadManifest(distLocation string) (Manifest, error) {
	path := filepath.Join(distLocation, ManifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Manifest{}, nil
		}
		return Manifest{}, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	return m, nil
}
