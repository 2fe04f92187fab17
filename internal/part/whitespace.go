package part

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// spaceToken matches an encoded whitespace-only line, as written by
// encodeWhitespace.
var spaceToken = regexp.MustCompile(`^%\(__buildout_space(?:_(\d+))?__\)s$`)

// encodeWhitespace tokenizes blank/whitespace-only lines of v so they
// survive a config-file round trip, and joins the lines back with
// "\n\t" so every continuation line carries the leading whitespace
// cfgfile's parser requires to recognize it as part of the same value.
func encodeWhitespace(v string) string {
	return encodeLines(strings.Split(v, "\n"))
}

// encodeLines is encodeWhitespace for values that are already split into
// logical lines (e.g. a manifest's recorded installed-paths list), so
// callers don't have to join them first only to have encodeWhitespace
// split them apart again.
func encodeLines(lines []string) string {
	encoded := make([]string, len(lines))
	for i, line := range lines {
		switch {
		case line == "":
			encoded[i] = "%(__buildout_space_0__)s"
		case isAllWhitespace(line):
			if len(line) == 1 {
				encoded[i] = "%(__buildout_space__)s"
			} else {
				encoded[i] = fmt.Sprintf("%%(__buildout_space_%d__)s", len(line))
			}
		default:
			encoded[i] = line
		}
	}
	return strings.Join(encoded, "\n\t")
}

// decodeWhitespace reverses encodeWhitespace.
func decodeWhitespace(v string) string {
	lines := strings.Split(v, "\n")
	for i, line := range lines {
		m := spaceToken.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		if m[1] == "" {
			lines[i] = " "
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		lines[i] = strings.Repeat(" ", n)
	}
	return strings.Join(lines, "\n")
}

func isAllWhitespace(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' {
			return false
		}
	}
	return true
}
