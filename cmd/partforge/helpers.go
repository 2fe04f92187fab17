package main

import (
	"fmt"
	"os"

	"github.com/partforge/partforge/internal/errdefs"
)

// printError renders err the way spec.md §7 describes: every doing on the
// active trail, most-recently-pushed first, followed by "Error: <message>".
func printError(err error) {
	switch err.(type) {
	case *errdefs.UserErr, *errdefs.RecipeErr:
		fmt.Fprint(os.Stderr, errdefs.Report(err))
	default:
		fmt.Fprint(os.Stderr, errdefs.ReportUnknown(err))
	}
}

// exitCodeFor chooses an exit code by error kind, for scripts that want to
// branch on failure mode; any error surfaces non-zero regardless.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *errdefs.UserErr, *errdefs.RecipeErr:
		return ExitUserErr
	default:
		return ExitInternal
	}
}
