package buildcfg

import (
	"fmt"
	"strings"

	"github.com/partforge/partforge/internal/errdefs"
)

// tokenChar matches the grammar's `[-\w .]` class for either side of a
// `${section:option}` reference.
func tokenChar(b byte) bool {
	return b == '-' || b == ' ' || b == '.' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

// seenKey is a (section, option) pair used to detect interpolation cycles
// within a single top-level Get call.
type seenKey struct {
	section, option string
}

// interpolate resolves every ${section:option} reference in raw, with $$
// as a literal $. seen accumulates the (section, option) pairs visited on
// the current resolution path so that a re-entrant reference raises
// CircularReference instead of recursing forever.
func interpolate(tree *Tree, raw string, seen map[seenKey]bool) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(raw) {
		c := raw[i]
		if c != '$' {
			out.WriteByte(c)
			i++
			continue
		}

		if i+1 < len(raw) && raw[i+1] == '$' {
			out.WriteByte('$')
			i += 2
			continue
		}

		if i+1 >= len(raw) || raw[i+1] != '{' {
			return "", errdefs.New(errdefs.BadReferenceSyntax,
				"invalid $ in configuration value: %q", raw)
		}

		end := strings.IndexByte(raw[i+2:], '}')
		if end < 0 {
			return "", errdefs.New(errdefs.BadReferenceSyntax,
				"unterminated ${...} reference in %q", raw)
		}
		end += i + 2

		inner := raw[i+2 : end]
		section, option, err := parseReference(inner)
		if err != nil {
			return "", err
		}

		value, err := resolveRef(tree, section, option, seen)
		if err != nil {
			return "", err
		}
		out.WriteString(value)

		i = end + 1
	}

	return out.String(), nil
}

// parseReference splits "section:option" per the grammar: the outer token
// must match `[-\w .]+:[-\w .]+` exactly, nothing else.
func parseReference(inner string) (section, option string, err error) {
	colon := strings.IndexByte(inner, ':')
	if colon < 0 {
		return "", "", errdefs.New(errdefs.BadReferenceSyntax,
			"bad reference syntax: ${%s} is missing a ':'", inner)
	}

	section = inner[:colon]
	option = inner[colon+1:]

	if section == "" || option == "" {
		return "", "", errdefs.New(errdefs.BadReferenceSyntax,
			"bad reference syntax: ${%s}", inner)
	}
	for i := 0; i < len(section); i++ {
		if !tokenChar(section[i]) {
			return "", "", errdefs.New(errdefs.BadReferenceSyntax,
				"bad reference syntax: ${%s}", inner)
		}
	}
	for i := 0; i < len(option); i++ {
		if !tokenChar(option[i]) {
			return "", "", errdefs.New(errdefs.BadReferenceSyntax,
				"bad reference syntax: ${%s}", inner)
		}
	}

	return section, option, nil
}

// resolveRef looks up section:option, detecting cycles via seen and
// recursively interpolating whatever raw value it finds.
func resolveRef(tree *Tree, sectionName, option string, seen map[seenKey]bool) (string, error) {
	key := seenKey{sectionName, option}
	if seen[key] {
		return "", circularReference()
	}
	defer errdefs.Doing(fmt.Sprintf("resolving ${%s:%s}", sectionName, option))()

	sec, ok := tree.Sections[sectionName]
	if !ok {
		return "", errdefs.New(errdefs.MissingSection,
			"section %q referenced in ${%s:%s} does not exist", sectionName, sectionName, option)
	}
	sec.read[option] = true

	if v, ok := sec.data[option]; ok {
		return v, nil
	}
	if v, ok := sec.cooked[option]; ok {
		return v, nil
	}
	raw, ok := sec.raw[option]
	if !ok {
		return "", missingOption(sectionName, option)
	}

	seen2 := make(map[seenKey]bool, len(seen)+1)
	for k := range seen {
		seen2[k] = true
	}
	seen2[key] = true

	resolved, err := interpolate(tree, raw, seen2)
	if err != nil {
		return "", err
	}
	sec.cooked[option] = resolved
	return resolved, nil
}

func missingOption(section, option string) error {
	return errdefs.New(errdefs.MissingOption,
		"option %q not found in section %q", option, section)
}

// circularReference matches spec scenario S4's exact wording; the specific
// options involved are reported via the active "While: resolving ${...}"
// trail rather than folded into the message itself.
func circularReference() error {
	return errdefs.New(errdefs.CircularReference, "Circular reference in substitutions.")
}
