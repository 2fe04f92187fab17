package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"regexp"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/partforge/partforge/internal/buildinfo"
	"github.com/partforge/partforge/internal/log"
)

// globalCtx is canceled on SIGINT/SIGTERM; long-running commands should
// watch it to abort the current sub-process cleanly.
var globalCtx context.Context
var globalCancel context.CancelFunc

// configFile, verbosity and the offline/newest tri-states are the global
// flags spec.md §6 names: -c, -v/-q, -t, -U, -o/-O, -n/-N, -D.
var (
	configFile       string
	verboseCount     int
	quietCount       int
	socketTimeout    int
	skipUserDefaults bool
	offlineOverride  string // "", "true" or "false"
	newestOverride   string // "", "true" or "false"
	debugOnError     bool
)

// cliAssignments accumulates bare "section:option=value" tokens, which may
// appear anywhere before the command per spec.md §6.
var cliAssignments []configOverride

type configOverride struct {
	Section, Option, Value string
}

var assignmentPattern = regexp.MustCompile(`^([A-Za-z0-9_.\-]+):([A-Za-z0-9_.\-]+)=(.*)$`)

var rootCmd = &cobra.Command{
	Use:   "partforge",
	Short: "A declarative build-and-install orchestrator",
	Long: `partforge installs a project's parts from a declarative
configuration file, resolving and fetching the distributions each part's
recipe requires and running that recipe's install/update logic.`,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "buildout.cfg", "configuration file to use")
	flags.CountVarP(&verboseCount, "verbose", "v", "increase verbosity (repeatable)")
	flags.CountVarP(&quietCount, "quiet", "q", "decrease verbosity (repeatable)")
	flags.IntVarP(&socketTimeout, "timeout", "t", 0, "socket timeout in seconds")
	flags.BoolVarP(&skipUserDefaults, "no-user-defaults", "U", false, "skip user default options")
	flags.VarP(tristate{&offlineOverride, "true"}, "offline", "o", "force offline mode on")
	flags.VarP(tristate{&offlineOverride, "false"}, "online", "O", "force offline mode off")
	flags.VarP(tristate{&newestOverride, "true"}, "newest", "n", "force newest-version checking on")
	flags.VarP(tristate{&newestOverride, "false"}, "no-newest", "N", "force newest-version checking off")
	flags.BoolVarP(&debugOnError, "debug", "D", false, "enable interactive debugging on recipe error")

	rootCmd.PersistentPreRun = initLogger

	rootCmd.Version = buildinfo.Version()

	rootCmd.AddCommand(installCmd)
	rootCmd.AddCommand(bootstrapCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(describeCmd)
}

func main() {
	globalCtx, globalCancel = context.WithCancel(context.Background())
	defer globalCancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived %s, canceling operation...\n", sig)
		globalCancel()

		<-sigChan
		fmt.Fprintln(os.Stderr, "Forced exit")
		exitWithCode(ExitUsage)
	}()

	os.Args = append(os.Args[:1], extractAssignments(os.Args[1:])...)

	if err := rootCmd.Execute(); err != nil {
		if globalCtx.Err() == context.Canceled {
			exitWithCode(ExitUsage)
		}
		fmt.Fprintln(os.Stderr, err)
		exitWithCode(ExitUsage)
	}
}

// extractAssignments pulls every "section:option=value" token out of args,
// appending it to cliAssignments, and returns what remains for cobra to
// parse as flags/command/positional arguments.
func extractAssignments(args []string) []string {
	rest := make([]string, 0, len(args))
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			rest = append(rest, a)
			continue
		}
		if m := assignmentPattern.FindStringSubmatch(a); m != nil {
			cliAssignments = append(cliAssignments, configOverride{
				Section: strings.TrimSpace(m[1]),
				Option:  strings.TrimSpace(m[2]),
				Value:   strings.TrimSpace(m[3]),
			})
			continue
		}
		rest = append(rest, a)
	}
	return rest
}

// tristate is a no-argument pflag.Value: setting it always writes value
// into *target, so whichever of a pair of opposing flags (-o/-O, -n/-N)
// appears last on the command line wins, matching buildout's left-to-right
// option accumulation.
type tristate struct {
	target *string
	value  string
}

func (t tristate) String() string   { return "" }
func (t tristate) Type() string     { return "bool" }
func (t tristate) IsBoolFlag() bool { return true }
func (t tristate) Set(string) error { *t.target = t.value; return nil }

func initLogger(cmd *cobra.Command, args []string) {
	level := determineLogLevel()
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	log.SetDefault(log.New(handler))
}

// determineLogLevel folds -v/-q counts into a verbosity number the way
// buildout does (each -v/-q is worth 10), mapped onto slog's levels.
func determineLogLevel() slog.Level {
	verbosity := 10*verboseCount - 10*quietCount
	switch {
	case verbosity >= 20:
		return slog.LevelDebug
	case verbosity > 0:
		return slog.LevelInfo
	case verbosity < 0:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
