package resolver

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// projectNamePattern matches the project-name portion of a requirement
// string: letters, digits, dots, underscores, and hyphens.
var projectNamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+`)

// Requirement is a parsed requirement string: a project name plus an
// optional version constraint.
type Requirement struct {
	Project    string
	Constraint *semver.Constraints
	Raw        string
}

// ParseRequirement parses a requirement string of the form
// "project", "project==1.2.3", "project>=1.0,<2.0". The constraint
// portion, if present, is handed to semver.NewConstraint verbatim after
// translating a bare "==" to a direct equality constraint.
func ParseRequirement(s string) (Requirement, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Requirement{}, fmt.Errorf("empty requirement")
	}

	loc := projectNamePattern.FindStringIndex(s)
	if loc == nil {
		return Requirement{}, fmt.Errorf("invalid requirement %q: no project name", s)
	}
	project := s[loc[0]:loc[1]]
	rest := strings.TrimSpace(s[loc[1]:])

	req := Requirement{Project: project, Raw: s}
	if rest == "" {
		return req, nil
	}

	constraintStr := strings.ReplaceAll(rest, "==", "=")
	c, err := semver.NewConstraint(constraintStr)
	if err != nil {
		return Requirement{}, fmt.Errorf("invalid requirement %q: %w", s, err)
	}
	req.Constraint = c
	return req, nil
}

// Matches reports whether version satisfies the requirement's
// constraint. A requirement with no constraint matches any parseable
// version, and any version that fails to parse as semver is rejected
// rather than silently accepted.
func (r Requirement) Matches(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	if r.Constraint == nil {
		return true
	}
	return r.Constraint.Check(v)
}

// Pin rewrites the requirement to an exact-version constraint for
// version, per spec.md §4.E's default_versions pinning step. It fails if
// the requirement's existing constraint disallows version.
func (r Requirement) Pin(version string) (Requirement, error) {
	if r.Constraint != nil && !r.Matches(version) {
		return Requirement{}, fmt.Errorf("pinned version %s for %s is incompatible with requirement %q",
			version, r.Project, r.Raw)
	}

	c, err := semver.NewConstraint("=" + version)
	if err != nil {
		return Requirement{}, err
	}
	return Requirement{Project: r.Project, Constraint: c, Raw: fmt.Sprintf("%s==%s", r.Project, version)}, nil
}

// IsFinal reports whether version has no pre-release component, per the
// prefer_final policy (spec.md §4.E step 4).
func IsFinal(version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return true
	}
	return v.Prerelease() == ""
}

// CompareVersions orders two version strings, unparseable versions
// sorting before any parseable one.
func CompareVersions(a, b string) int {
	va, aerr := semver.NewVersion(a)
	vb, berr := semver.NewVersion(b)
	switch {
	case aerr != nil && berr != nil:
		return strings.Compare(a, b)
	case aerr != nil:
		return -1
	case berr != nil:
		return 1
	default:
		return va.Compare(vb)
	}
}
