package part

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/partforge/partforge/internal/cfgfile"
)

const (
	optInstalled  = "__buildout_installed__"
	optSignature  = "__buildout_signature__"
	buildoutSect  = "buildout"
	optParts      = "parts"
	optDevelopEgg = "installed_develop_eggs"
)

// Manifest is the installed manifest (spec.md §3's "Installed manifest"):
// the single source of truth for what is currently on disk. One section
// per installed part, plus a buildout section recording install order
// and the develop-eggs currently tracked.
type Manifest struct {
	partOrder   []string
	parts       map[string]Part
	developEggs []string
}

// NewManifest returns an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{parts: map[string]Part{}}
}

// LoadManifest reads the manifest at path. A missing file is not an
// error: it yields an empty manifest, matching "may be absent" in
// spec.md §4.H step 4.
func LoadManifest(path string) (*Manifest, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return NewManifest(), nil
	}

	tree, err := cfgfile.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	m := NewManifest()

	if tree.Has(buildoutSect) {
		b := tree.Section(buildoutSect)
		if raw, ok := b.Get(optParts); ok {
			m.partOrder = splitWhitespace(raw)
		}
		if raw, ok := b.Get(optDevelopEgg); ok {
			m.developEggs = splitWhitespace(raw)
		}
	}

	for _, name := range tree.Order {
		if name == buildoutSect {
			continue
		}
		sec := tree.Section(name)

		options := map[string]string{}
		var installed []string
		var signature string
		for _, key := range sec.Keys {
			val, _ := sec.Get(key)
			val = decodeWhitespace(val)
			switch key {
			case optInstalled:
				installed = splitLines(val)
			case optSignature:
				signature = val
			default:
				options[key] = val
			}
		}

		m.parts[name] = Part{Name: name, Recipe: options["recipe"], Options: options, Installed: installed, Signature: signature}
	}

	return m, nil
}

// PartNames returns the installed part names in their recorded order.
func (m *Manifest) PartNames() []string {
	return append([]string(nil), m.partOrder...)
}

// Part returns the recorded state for an installed part.
func (m *Manifest) Part(name string) (Part, bool) {
	p, ok := m.parts[name]
	return p, ok
}

// SetPart records p's current state, appending name to the install order
// if it is not already present.
func (m *Manifest) SetPart(p Part) {
	if _, ok := m.parts[p.Name]; !ok {
		m.partOrder = append(m.partOrder, p.Name)
	}
	m.parts[p.Name] = p
}

// RemovePart drops a part from the manifest entirely.
func (m *Manifest) RemovePart(name string) {
	delete(m.parts, name)
	for i, n := range m.partOrder {
		if n == name {
			m.partOrder = append(m.partOrder[:i], m.partOrder[i+1:]...)
			break
		}
	}
}

// DevelopEggs returns the develop-egg project names the manifest
// currently tracks.
func (m *Manifest) DevelopEggs() []string {
	return append([]string(nil), m.developEggs...)
}

// SetDevelopEggs replaces the tracked develop-egg project names.
func (m *Manifest) SetDevelopEggs(names []string) {
	m.developEggs = append([]string(nil), names...)
}

// Empty reports whether the manifest has no parts and no develop eggs,
// the condition under which spec.md §4.H step 10 deletes the file
// instead of writing it.
func (m *Manifest) Empty() bool {
	return len(m.partOrder) == 0 && len(m.developEggs) == 0
}

// Save persists the manifest atomically: write to a temp file in the
// same directory, flock it during the write, then rename over path. If
// the manifest is empty, the file is removed instead (best-effort).
func (m *Manifest) Save(path string) error {
	if m.Empty() {
		err := os.Remove(path)
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".manifest-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := unix.Flock(int(tmp.Fd()), unix.LOCK_EX); err != nil {
		tmp.Close()
		return fmt.Errorf("locking manifest temp file: %w", err)
	}

	if _, err := tmp.WriteString(m.render()); err != nil {
		unix.Flock(int(tmp.Fd()), unix.LOCK_UN)
		tmp.Close()
		return err
	}

	if err := unix.Flock(int(tmp.Fd()), unix.LOCK_UN); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

func (m *Manifest) render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "[%s]\n", buildoutSect)
	fmt.Fprintf(&b, "%s = %s\n", optParts, strings.Join(m.partOrder, "\n\t"))
	if len(m.developEggs) > 0 {
		fmt.Fprintf(&b, "%s = %s\n", optDevelopEgg, strings.Join(m.developEggs, "\n\t"))
	}
	b.WriteString("\n")

	for _, name := range m.partOrder {
		p := m.parts[name]
		fmt.Fprintf(&b, "[%s]\n", name)
		for _, key := range sortedKeys(p.Options) {
			fmt.Fprintf(&b, "%s = %s\n", key, encodeWhitespace(p.Options[key]))
		}
		fmt.Fprintf(&b, "%s = %s\n", optSignature, encodeWhitespace(p.Signature))
		fmt.Fprintf(&b, "%s = %s\n", optInstalled, encodeLines(p.Installed))
		b.WriteString("\n")
	}

	return b.String()
}

func splitWhitespace(s string) []string {
	return strings.Fields(s)
}

func splitLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
