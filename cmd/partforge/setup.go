package main

import (
	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/builder"
)

var setupCmd = &cobra.Command{
	Use:   "setup <path> [args...]",
	Short: "Run an external project's setup script",
	Long: `Setup runs path's setup.go (or <path>/setup.go if path is a
directory) with the resolver's working set exposed on PARTFORGE_EGG_PATH,
the Go analogue of putting setuptools on sys.path before running a
distribution's own build script.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		proj, err := loadProject()
		if err != nil {
			printError(err)
			exitWithCode(exitCodeFor(err))
		}

		var searchPaths []string
		for _, dist := range proj.Ctrl.WorkingSet.Distributions() {
			searchPaths = append(searchPaths, dist.Location)
		}

		if err := builder.RunSetupScript(args[0], args[1:], searchPaths); err != nil {
			printError(err)
			exitWithCode(exitCodeFor(err))
		}
	},
}
