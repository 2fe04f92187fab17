package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/part"
	"github.com/partforge/partforge/internal/recipe"
)

var describeCmd = &cobra.Command{
	Use:   "describe <recipe>",
	Short: "Describe a recipe's entry points",
	Long: `Describe prints the entry points a recipe's project declares,
either from its installed distribution's partforge.toml manifest or, for
a built-in recipe with no distribution of its own, the bare registration.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		proj, err := loadProject()
		if err != nil {
			printError(err)
			exitWithCode(exitCodeFor(err))
		}

		project, entryPoint := part.Part{Recipe: args[0]}.RecipeDistribution()

		if _, ok := recipe.Lookup(project, entryPoint); !ok {
			fmt.Printf("%s: no recipe registered\n", args[0])
			exitWithCode(ExitUserErr)
		}

		dist, ok := proj.Ctrl.WorkingSet.Get(project)
		if !ok {
			dist, ok = proj.Ctrl.Store.BestMatch(project, func(string) bool { return true })
		}
		if !ok {
			fmt.Printf("%s:%s\n  (built in; no distribution metadata)\n", project, entryPoint)
			return
		}

		manifest, err := recipe.ReadManifest(dist.Location)
		if err != nil {
			printError(err)
			exitWithCode(ExitInternal)
		}

		fmt.Printf("%s:%s\n", project, entryPoint)
		if len(manifest.EntryPoints) == 0 {
			fmt.Println("  (no partforge.toml entry points declared)")
			return
		}
		for _, ep := range manifest.EntryPoints {
			fmt.Printf("  %-20s %s\n", ep.Name, ep.Summary)
		}
	},
}
