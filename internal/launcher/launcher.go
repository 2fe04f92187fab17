// Package launcher generates entry-point launcher scripts: small
// executable shims that pin an interpreter's module search path to a
// working set and invoke a named entry point, per spec.md §4.I.
package launcher

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EntryPoint names one launcher to generate: DisplayName becomes the
// file name under the destination directory; Module/Attr name the
// function invoked when the launcher runs as main.
type EntryPoint struct {
	DisplayName string
	Module      string
	Attr        string
}

// Spec configures a batch of launcher generation.
type Spec struct {
	EntryPoints []EntryPoint
	Executable  string   // interpreter/binary invoked by the launcher's header line
	DestDir     string   // where launcher files are written
	SearchPaths []string // absolute directories forming the module search path
	// RelativeRoot, when non-empty, causes SearchPaths entries under it to
	// be emitted as join(base, rel) expressions walking up from DestDir,
	// rather than literal absolute paths — so the project tree can be
	// relocated without regenerating launchers.
	RelativeRoot string
	Prelude      string
	FixedArgs    []string
}

// Generate writes one launcher file per entry point in spec, returning
// the paths written. A launcher is only rewritten if its content
// differs from what is already on disk, preserving mtimes across no-op
// runs (spec.md §4.I).
func Generate(spec Spec) ([]string, error) {
	if err := os.MkdirAll(spec.DestDir, 0755); err != nil {
		return nil, err
	}

	var written []string
	for _, ep := range spec.EntryPoints {
		path := filepath.Join(spec.DestDir, ep.DisplayName)
		content := render(spec, ep)

		if err := writeIfChanged(path, content, 0755); err != nil {
			return nil, fmt.Errorf("writing launcher %s: %w", path, err)
		}
		written = append(written, path)
	}

	return written, nil
}

func render(spec Spec, ep EntryPoint) string {
	var b strings.Builder

	fmt.Fprintf(&b, "#!%s\n", spec.Executable)
	b.WriteString("# generated by partforge; do not edit\n\n")

	writePathSetup(&b, spec)

	if spec.Prelude != "" {
		b.WriteString(spec.Prelude)
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "import %s as _entry_module\n\n", ep.Module)
	fmt.Fprintf(&b, "if __name__ == '__main__':\n")
	args := strings.Join(quoteAll(spec.FixedArgs), ", ")
	fmt.Fprintf(&b, "    _entry_module.%s(%s)\n", ep.Attr, args)

	return b.String()
}

func writePathSetup(b *strings.Builder, spec Spec) {
	b.WriteString("import sys, os\n")
	if spec.RelativeRoot != "" {
		b.WriteString("join = os.path.join\n")
		b.WriteString("base = os.path.dirname(os.path.abspath(os.path.realpath(__file__)))\n")
	}
	for _, p := range spec.SearchPaths {
		if spec.RelativeRoot != "" && strings.HasPrefix(p, spec.RelativeRoot) {
			rel, err := RelativeJoinExpr(spec.DestDir, spec.RelativeRoot, p)
			if err == nil {
				fmt.Fprintf(b, "sys.path.insert(0, join(base, %q))\n", rel)
				continue
			}
		}
		fmt.Fprintf(b, "sys.path.insert(0, %q)\n", p)
	}
	b.WriteString("\n")
}

func quoteAll(args []string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = fmt.Sprintf("%q", a)
	}
	return out
}

// writeIfChanged writes content to path only when the existing file's
// bytes differ (or the file doesn't exist), so repeated generation
// against an unchanged working set doesn't touch the file's mtime.
func writeIfChanged(path, content string, mode os.FileMode) error {
	existing, err := os.ReadFile(path)
	if err == nil && string(existing) == content {
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".launcher-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, path)
}

// RelativeJoinExpr builds the "join(base, rel)" path-walk expression
// spec.md §4.I describes: rel is the relative path from the launcher's
// own directory up to root, then down to target.
func RelativeJoinExpr(launcherDir, root, target string) (string, error) {
	fromLauncherToRoot, err := filepath.Rel(launcherDir, root)
	if err != nil {
		return "", err
	}
	fromRootToTarget, err := filepath.Rel(root, target)
	if err != nil {
		return "", err
	}
	return filepath.Join(fromLauncherToRoot, fromRootToTarget), nil
}
