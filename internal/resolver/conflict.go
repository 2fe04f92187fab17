package resolver

import (
	"fmt"
	"strings"
)

// VersionConflictError is raised when a distribution already chosen for a
// project does not satisfy a later requirement for the same project; it
// carries the chain of requirers so a user can trace why each
// requirement was introduced.
type VersionConflictError struct {
	Requirement     Requirement
	Chosen          string // version already in the working set
	Requirer        string // project name of the immediate requirer, "" if top-level
	RequirerVersion string
	Chain           []RequirerLink // full chain, immediate requirer first
}

// RequirerLink names one link in a requirer chain: project and the
// version of it already in the working set.
type RequirerLink struct {
	Project string
	Version string
}

func (e *VersionConflictError) Error() string {
	requirer := "a top-level requirement"
	if e.Requirer != "" {
		requirer = fmt.Sprintf("%s %s", e.Requirer, e.RequirerVersion)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "already have: %s %s but %s requires %s",
		e.Requirement.Project, e.Chosen, requirer, e.Requirement.Raw)
	for i := 0; i+1 < len(e.Chain); i++ {
		fmt.Fprintf(&b, "; %s %s is required by %s %s",
			e.Chain[i].Project, e.Chain[i].Version, e.Chain[i+1].Project, e.Chain[i+1].Version)
	}
	return b.String()
}

// IncompatibleVersionError is raised when a version pin disagrees with
// an existing requirement's constraint.
type IncompatibleVersionError struct {
	Project string
	Pinned  string
	Raw     string
}

func (e *IncompatibleVersionError) Error() string {
	return fmt.Sprintf("the pinned version %s for %s is not allowed by requirement %q",
		e.Pinned, e.Project, e.Raw)
}

// MissingDistributionError is raised when a requirement cannot be
// satisfied from the store or any configured index.
type MissingDistributionError struct {
	Requirement Requirement
}

func (e *MissingDistributionError) Error() string {
	return fmt.Sprintf("couldn't find a distribution for %q", e.Requirement.Raw)
}
