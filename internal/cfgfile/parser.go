// Package cfgfile parses the sectioned key-value configuration format used
// for both project configuration and the installed manifest: `[section]`
// headers, `key = value` pairs with indented continuation lines, `+`/`-`
// merge-operator keys, and `extends`/`extended-by` file inclusion.
//
// This grammar predates, and is not expressible in terms of, any common
// Go config library (it is neither INI, TOML, nor YAML): the merge
// operators and multi-line continuation rules are load-bearing parts of
// the format itself, so this package is implemented directly against
// bufio/strings rather than adapted from a third-party parser.
package cfgfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/partforge/partforge/internal/errdefs"
)

// Section is an ordered bag of option -> raw-value pairs as they appeared
// in a parsed file (after merge-operator application), before any
// interpolation.
type Section struct {
	Name string
	Keys []string
	vals map[string]string
}

func newSection(name string) *Section {
	return &Section{Name: name, vals: map[string]string{}}
}

// Get returns the raw value for key and whether it is present.
func (s *Section) Get(key string) (string, bool) {
	v, ok := s.vals[key]
	return v, ok
}

// Set assigns key = value, appending key to Keys if it is new.
func (s *Section) Set(key, value string) {
	if _, ok := s.vals[key]; !ok {
		s.Keys = append(s.Keys, key)
	}
	s.vals[key] = value
}

// Delete removes key from the section entirely.
func (s *Section) Delete(key string) {
	if _, ok := s.vals[key]; !ok {
		return
	}
	delete(s.vals, key)
	for i, k := range s.Keys {
		if k == key {
			s.Keys = append(s.Keys[:i], s.Keys[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of s.
func (s *Section) Clone() *Section {
	out := newSection(s.Name)
	out.Keys = append([]string(nil), s.Keys...)
	for k, v := range s.vals {
		out.vals[k] = v
	}
	return out
}

// ConfigTree is a parsed, fully extends-merged configuration file: an
// ordered set of named sections.
type ConfigTree struct {
	Order    []string
	Sections map[string]*Section
}

func newTree() *ConfigTree {
	return &ConfigTree{Sections: map[string]*Section{}}
}

// Section returns the named section, creating an empty one if absent.
func (t *ConfigTree) Section(name string) *Section {
	if s, ok := t.Sections[name]; ok {
		return s
	}
	s := newSection(name)
	t.Sections[name] = s
	t.Order = append(t.Order, name)
	return s
}

// Has reports whether name is a known section.
func (t *ConfigTree) Has(name string) bool {
	_, ok := t.Sections[name]
	return ok
}

// Parse reads path and every file it transitively extends/is extended by,
// applying merge operators, and returns the fully-merged ConfigTree.
func Parse(path string) (*ConfigTree, error) {
	return parseFile(path, map[string]bool{})
}

// ParseString parses raw config text with no file-inclusion support:
// extends/extended-by are kept as ordinary options and the files they
// name are not read. Useful for in-memory fragments such as command-line
// overrides.
func ParseString(name, text string) (*ConfigTree, error) {
	raw, err := parseRaw(strings.NewReader(text), name)
	if err != nil {
		return nil, err
	}
	return rawToTree(raw), nil
}

func parseFile(path string, seen map[string]bool) (*ConfigTree, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	if seen[abs] {
		return nil, errdefs.New(errdefs.RecursiveInclude, "configuration file %s includes itself", path)
	}
	seen[abs] = true
	defer delete(seen, abs)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := parseRaw(f, path)
	if err != nil {
		return nil, err
	}

	base := newTree()

	// extends: depth-first, each listed file merged in order, then the
	// current file's own sections merged on top.
	if buildout, ok := raw.section("buildout"); ok {
		if extends, ok := buildout.entries["extends"]; ok {
			for _, rel := range strings.Fields(extends.value) {
				parentPath := filepath.Join(filepath.Dir(path), rel)
				parent, err := parseFile(parentPath, seen)
				if err != nil {
					return nil, err
				}
				mergeTreeInto(base, parent)
			}
		}
	}

	mergeRawInto(base, raw)

	// extended-by: deprecated, applied last, each listed file's sections
	// override the result so far.
	if buildout, ok := raw.section("buildout"); ok {
		if extendedBy, ok := buildout.entries["extended-by"]; ok {
			for _, rel := range strings.Fields(extendedBy.value) {
				childPath := filepath.Join(filepath.Dir(path), rel)
				child, err := parseFile(childPath, seen)
				if err != nil {
					return nil, err
				}
				mergeTreeInto(base, child)
			}
		}
	}

	return base, nil
}

// rawEntry is one key=value pair as parsed, before merge-operator
// resolution against a base tree.
type rawEntry struct {
	key   string // without trailing +/-
	op    byte   // 0, '+', or '-'
	value string
}

type rawSection struct {
	name    string
	order   []string
	entries map[string]rawEntry
}

// rawFile is a single parsed file: its sections in first-seen order.
type rawFile struct {
	order    []string
	sections map[string]*rawSection
}

func (rf *rawFile) section(name string) (*rawSection, bool) {
	s, ok := rf.sections[name]
	return s, ok
}

// parseRaw lexes a single file's text into an ordered map of sections,
// each an ordered map of (possibly operator-suffixed) keys to values,
// without consulting any other file.
func parseRaw(r io.Reader, source string) (*rawFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	sections := map[string]*rawSection{}
	var order []string
	var cur *rawSection
	var curKey string
	var curVal strings.Builder
	lineNo := 0

	flush := func() {
		if cur == nil || curKey == "" {
			return
		}
		key := curKey
		var op byte
		if strings.HasSuffix(key, "+") {
			op = '+'
			key = key[:len(key)-1]
		} else if strings.HasSuffix(key, "-") {
			op = '-'
			key = key[:len(key)-1]
		}
		cur.order = append(cur.order, curKey)
		cur.entries[curKey] = rawEntry{key: key, op: op, value: strings.TrimRight(curVal.String(), "\n")}
		curKey = ""
		curVal.Reset()
	}

	for scanner.Scan() {
		lineNo++
		line := scanner.Text()

		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			// Continuation of the current value.
			if curKey == "" {
				return nil, fmt.Errorf("%s:%d: continuation line with no preceding key", source, lineNo)
			}
			if curVal.Len() > 0 {
				curVal.WriteByte('\n')
			}
			curVal.WriteString(trimmed)
			continue
		}

		if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, ";") {
			continue
		}

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			flush()
			name := strings.TrimSpace(trimmed[1 : len(trimmed)-1])
			if _, ok := sections[name]; !ok {
				sections[name] = &rawSection{name: name, entries: map[string]rawEntry{}}
				order = append(order, name)
			}
			cur = sections[name]
			continue
		}

		if cur == nil {
			return nil, fmt.Errorf("%s:%d: option outside of any [section]", source, lineNo)
		}

		idx := strings.Index(trimmed, "=")
		if idx < 0 {
			return nil, fmt.Errorf("%s:%d: expected 'key = value'", source, lineNo)
		}

		flush()
		curKey = strings.TrimSpace(trimmed[:idx])
		curVal.WriteString(strings.TrimSpace(trimmed[idx+1:]))
	}
	flush()

	if err := scanErr(scanner); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	return &rawFile{order: order, sections: sections}, nil
}

func scanErr(s *bufio.Scanner) error { return s.Err() }

func rawToTree(raw *rawFile) *ConfigTree {
	t := newTree()
	mergeRawInto(t, raw)
	return t
}

// mergeRawInto applies a parsed file's sections onto base, resolving +/-
// merge operators against whatever base already holds for that key.
func mergeRawInto(base *ConfigTree, raw *rawFile) {
	for _, name := range raw.order {
		rs := raw.sections[name]
		sec := base.Section(name)
		for _, orderedKey := range rs.order {
			entry := rs.entries[orderedKey]
			switch entry.op {
			case '+':
				existing, _ := sec.Get(entry.key)
				sec.Set(entry.key, appendLines(existing, entry.value))
			case '-':
				existing, _ := sec.Get(entry.key)
				sec.Set(entry.key, removeLines(existing, entry.value))
			default:
				sec.Set(entry.key, entry.value)
			}
		}
	}
}

// mergeTreeInto merges an already-resolved ConfigTree (e.g. a fully-parsed
// extends target) onto base, as plain overrides (no operator semantics —
// those only apply within one file's own raw entries).
func mergeTreeInto(base *ConfigTree, other *ConfigTree) {
	for _, name := range other.Order {
		sec := base.Section(name)
		src := other.Sections[name]
		for _, k := range src.Keys {
			v, _ := src.Get(k)
			sec.Set(k, v)
		}
	}
}

func appendLines(base, addition string) string {
	lines := splitNonEmpty(base)
	lines = append(lines, splitNonEmpty(addition)...)
	return strings.Join(lines, "\n")
}

func removeLines(base, removal string) string {
	toRemove := map[string]bool{}
	for _, l := range splitNonEmpty(removal) {
		toRemove[l] = true
	}
	var kept []string
	for _, l := range splitNonEmpty(base) {
		if !toRemove[l] {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, "\n")
}

func splitNonEmpty(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
