package main

import (
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install [parts...]",
	Short: "Install the project's parts",
	Long: `Install reads the configuration file and installs every part named
by buildout:parts, or only the named parts when given explicitly. Parts
already installed and unchanged are left alone; parts no longer wanted
are uninstalled.`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		proj, err := loadProject()
		if err != nil {
			printError(err)
			exitWithCode(exitCodeFor(err))
		}

		if err := proj.Ctrl.Install(proj.Tree, args); err != nil {
			printError(err)
			exitWithCode(exitCodeFor(err))
		}

		announce("Installed.")
	},
}
