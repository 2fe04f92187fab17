// Package errdefs implements partforge's error taxonomy: UserErr (a
// classified, recoverable failure reported with a "While:" trail of nested
// doings) and RecipeErr (a failure surfaced from recipe code). Anything
// else that escapes cmd/partforge is reported as an internal error.
package errdefs

import (
	"fmt"
	"strings"
	"sync"
)

// Kind classifies a UserErr for callers that want to branch on it (tests,
// exit-code mapping) without string-matching the message.
type Kind string

const (
	MissingSection       Kind = "MissingSection"
	MissingOption        Kind = "MissingOption"
	CircularReference    Kind = "CircularReference"
	BadReferenceSyntax   Kind = "BadReferenceSyntax"
	RecursiveInclude     Kind = "RecursiveInclude"
	BadConfigValue       Kind = "BadConfigValue"
	Offline              Kind = "Offline"
	BadChecksum          Kind = "BadChecksum"
	MissingDistribution  Kind = "MissingDistribution"
	VersionConflict      Kind = "VersionConflict"
	IncompatibleVersion  Kind = "IncompatibleVersion"
	UnusedOptionsWarning Kind = "UnusedOptionsWarning"
)

// UserErr is a classified, user-facing error. It carries the Doing trail
// active at the point it was constructed, most-recently-pushed label
// first, matching spec.md's "While: …" reporting.
type UserErr struct {
	Kind    Kind
	Message string
	Cause   error
	trail   []string
}

func (e *UserErr) Error() string {
	return e.Message
}

// Unwrap exposes Cause to errors.As/errors.Is, so a caller that classified
// a lower-level error (e.g. a resolver conflict type) by wrapping it with
// Wrap can still recover the original concrete type.
func (e *UserErr) Unwrap() error {
	return e.Cause
}

// Doing returns the trail of human-readable labels active when the error
// was raised, most-recently-pushed first.
func (e *UserErr) Doing() []string {
	return e.trail
}

// New constructs a UserErr of the given Kind, capturing a snapshot of the
// process-wide Doing trail.
func New(kind Kind, format string, args ...any) *UserErr {
	return &UserErr{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		trail:   currentTrail(),
	}
}

// Wrap builds a UserErr of the given Kind around cause, keeping cause
// reachable through Unwrap (and so through errors.As) for callers that
// need its concrete type. Use when a lower layer already raised a typed
// error that simply needs classifying at the §7 taxonomy boundary.
func Wrap(kind Kind, cause error) *UserErr {
	return &UserErr{
		Kind:    kind,
		Message: cause.Error(),
		Cause:   cause,
		trail:   currentTrail(),
	}
}

// RecipeErr wraps a panic or error value surfaced from recipe code loaded
// through internal/recipe's entry-point registry.
type RecipeErr struct {
	Recipe string
	Cause  error
	trail  []string
}

func (e *RecipeErr) Error() string {
	return fmt.Sprintf("recipe %s: %s", e.Recipe, e.Cause)
}

func (e *RecipeErr) Unwrap() error { return e.Cause }

func (e *RecipeErr) Doing() []string { return e.trail }

// WrapRecipe builds a RecipeErr for a panic or error recovered while
// invoking recipe-supplied code.
func WrapRecipe(recipeName string, cause error) *RecipeErr {
	return &RecipeErr{Recipe: recipeName, Cause: cause, trail: currentTrail()}
}

// trail is a single process-wide stack of "While: …" labels shared by all
// goroutines. Buildout-style config processing is single-threaded per
// install run, so no per-goroutine separation is kept; callers push/pop
// around a single linear install flow and the mutex only guards the slice.
var (
	trailMu sync.Mutex
	trail   []string
)

// Doing pushes a label onto the active trail and returns a function that
// pops it. Use with defer at section/part boundaries:
//
//	defer errdefs.Doing("installing part " + name)()
func Doing(label string) func() {
	trailMu.Lock()
	trail = append(trail, label)
	trailMu.Unlock()

	return func() {
		trailMu.Lock()
		if n := len(trail); n > 0 && trail[n-1] == label {
			trail = trail[:n-1]
		}
		trailMu.Unlock()
	}
}

// currentTrail returns a snapshot of the active trail, most-recently-pushed
// first (reversed from push order).
func currentTrail() []string {
	trailMu.Lock()
	defer trailMu.Unlock()

	out := make([]string, len(trail))
	for i, label := range trail {
		out[len(trail)-1-i] = label
	}
	return out
}

// Report formats the final "While: …" / "Error: …" block that main prints
// for a UserErr or RecipeErr, matching spec.md §7 and scenario S4.
func Report(err error) string {
	var b strings.Builder

	var doingTrail []string
	switch e := err.(type) {
	case *UserErr:
		doingTrail = e.Doing()
	case *RecipeErr:
		doingTrail = e.Doing()
	}

	for _, label := range doingTrail {
		fmt.Fprintf(&b, "While: %s\n", label)
	}
	fmt.Fprintf(&b, "Error: %s\n", err)

	return b.String()
}

// ReportUnknown formats the catch-all message for an error that escaped
// cmd/partforge without being a UserErr or RecipeErr.
func ReportUnknown(err error) string {
	return fmt.Sprintf("internal error due to a bug in partforge or a recipe: %T: %s\n", err, err)
}
