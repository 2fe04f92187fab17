// Package buildcfg layers lazy ${section:option} interpolation and
// usage-tracked option access on top of the sections internal/cfgfile
// parses. A Section stores each option in up to three overlays — raw (as
// parsed, may still contain references), cooked (the substituted result,
// memoized), and data (explicit writes from the command line or from
// recipe code) — with reads consulting data, then cooked, then computing
// from raw on demand.
package buildcfg

import (
	"github.com/partforge/partforge/internal/cfgfile"
)

// Section is one [name] block with three-layer option storage.
type Section struct {
	name string
	tree *Tree

	rawOrder []string
	raw      map[string]string
	cooked   map[string]string
	data     map[string]string

	// read records every key ever returned by Get, for the unused-option
	// warning computed after a part finishes installing. Only reads of
	// the public Get path count as usage; a recipe's own Set does not.
	read map[string]bool
}

func newSection(name string, tree *Tree) *Section {
	return &Section{
		name:   name,
		tree:   tree,
		raw:    map[string]string{},
		cooked: map[string]string{},
		data:   map[string]string{},
		read:   map[string]bool{},
	}
}

// fromParsed builds a Section from a cfgfile.Section's raw key/value pairs.
func fromParsed(name string, tree *Tree, parsed *cfgfile.Section) *Section {
	s := newSection(name, tree)
	for _, k := range parsed.Keys {
		v, _ := parsed.Get(k)
		s.raw[k] = v
		s.rawOrder = append(s.rawOrder, k)
	}
	return s
}

// Get resolves option, consulting data, then cooked, then computing from
// raw (interpolating any ${section:option} references it contains). It
// returns MissingOption if option is present in none of the three layers.
func (s *Section) Get(option string) (string, error) {
	s.read[option] = true

	if v, ok := s.data[option]; ok {
		return v, nil
	}
	if v, ok := s.cooked[option]; ok {
		return v, nil
	}
	if raw, ok := s.raw[option]; ok {
		resolved, err := interpolate(s.tree, raw, map[seenKey]bool{})
		if err != nil {
			return "", err
		}
		s.cooked[option] = resolved
		return resolved, nil
	}

	return "", missingOption(s.name, option)
}

// Has reports whether option is present in any of the three layers,
// without marking it as read.
func (s *Section) Has(option string) bool {
	if _, ok := s.data[option]; ok {
		return true
	}
	if _, ok := s.cooked[option]; ok {
		return true
	}
	_, ok := s.raw[option]
	return ok
}

// Set writes option = value into the data overlay. This is how the
// command line and recipe code assign values; it never touches raw, so a
// value only ever written (never read back via Get) is still reported as
// unused if the user supplied it.
func (s *Section) Set(option, value string) {
	s.data[option] = value
}

// Delete removes option from all three layers.
func (s *Section) Delete(option string) {
	delete(s.data, option)
	delete(s.cooked, option)
	if _, ok := s.raw[option]; ok {
		delete(s.raw, option)
		for i, k := range s.rawOrder {
			if k == option {
				s.rawOrder = append(s.rawOrder[:i], s.rawOrder[i+1:]...)
				break
			}
		}
	}
}

// Keys returns option names in "raw keys first, then keys only present in
// an overlay" order, matching the teacher-independent public iteration
// contract this package commits to.
func (s *Section) Keys() []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range s.rawOrder {
		out = append(out, k)
		seen[k] = true
	}
	for k := range s.data {
		if !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	for k := range s.cooked {
		if !seen[k] {
			out = append(out, k)
			seen[k] = true
		}
	}
	return out
}

// Unused returns every raw option that was supplied (present in raw or
// data) but never read through Get.
func (s *Section) Unused() []string {
	var out []string
	for _, k := range s.rawOrder {
		if !s.read[k] {
			out = append(out, k)
		}
	}
	for k := range s.data {
		if _, inRaw := s.raw[k]; !inRaw && !s.read[k] {
			out = append(out, k)
		}
	}
	return out
}

// Name returns the section's name.
func (s *Section) Name() string { return s.name }

// Tree is a fully-loaded configuration: a set of named Sections sharing
// one interpolation namespace.
type Tree struct {
	Order    []string
	Sections map[string]*Section
}

// FromConfigTree builds a Tree from a cfgfile.ConfigTree, preserving
// section order.
func FromConfigTree(ct *cfgfile.ConfigTree) *Tree {
	t := &Tree{Sections: map[string]*Section{}}
	for _, name := range ct.Order {
		t.Order = append(t.Order, name)
		t.Sections[name] = fromParsed(name, t, ct.Sections[name])
	}
	return t
}

// Section returns the named section, creating an empty one if absent.
func (t *Tree) Section(name string) *Section {
	if s, ok := t.Sections[name]; ok {
		return s
	}
	s := newSection(name, t)
	t.Sections[name] = s
	t.Order = append(t.Order, name)
	return s
}

// Has reports whether name is a known section.
func (t *Tree) Has(name string) bool {
	_, ok := t.Sections[name]
	return ok
}
