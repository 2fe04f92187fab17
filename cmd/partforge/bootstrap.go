package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/part"
)

var bootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Write a project-local partforge launcher",
	Long: `Bootstrap writes bin/partforge, a wrapper that runs this same
partforge binary with its working directory pinned to the project root,
so subsequent commands can be run as ./bin/partforge install.`,
	Args: cobra.NoArgs,
	Run:  runBootstrap,
}

// initCmd is bootstrap's alias: the original tool treats "init" and
// "bootstrap" as the same operation.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Alias for bootstrap",
	Args:  cobra.NoArgs,
	Run:   runBootstrap,
}

func runBootstrap(cmd *cobra.Command, args []string) {
	proj, err := loadProject()
	if err != nil {
		printError(err)
		exitWithCode(exitCodeFor(err))
	}

	executable, err := os.Executable()
	if err != nil {
		printError(err)
		exitWithCode(ExitInternal)
	}

	path, err := part.Bootstrap(proj.Root, proj.Ctrl.BinDir, executable)
	if err != nil {
		printError(err)
		exitWithCode(exitCodeFor(err))
	}

	fmt.Printf("Generated %s.\n", path)
}
