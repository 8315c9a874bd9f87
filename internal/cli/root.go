// Package cli wires the wvrun command tree: run (supervise a command)
// and parse (classify pre-recorded files), sharing one report pipeline.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wvtest/wvrun/internal/config"
	"github.com/wvtest/wvrun/internal/logging"
)

// Global flag values accessible to all subcommands.
var (
	flagVerbose bool
	flagSummary bool
	flagQuiet   bool
	flagDebug   bool
	flagNoColor bool
	flagJUnit   string
	flagLogDir  string
	flagPrefix  string
)

// cfg is the merged project configuration, loaded in PersistentPreRunE.
var cfg *config.Config

// exitFailed is set by subcommands when at least one test section failed.
var exitFailed bool

var rootCmd = &cobra.Command{
	Use:   "wvrun",
	Short: "Run and summarize WvTest protocol test output",
	Long: `wvrun consumes the line-oriented WvTest test-report protocol -- either by
supervising a child process and reading its merged output, or by reading
pre-recorded files -- and produces a colorized, aligned console report, a
condensed one-line-per-test summary, or a JUnit XML document.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("verbose") && os.Getenv("WVRUN_VERBOSE") != "" {
			flagVerbose = true
		}
		if !cmd.Flags().Changed("no-color") && os.Getenv("NO_COLOR") != "" {
			flagNoColor = true
		}
		if flagQuiet {
			flagSummary = true
		}
		if flagVerbose && flagSummary {
			return fmt.Errorf("--verbose and --summary are mutually exclusive")
		}

		logging.Setup(flagDebug, os.Getenv("WVRUN_LOG_FORMAT") == "json")

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Echo every line as it arrives (env: WVRUN_VERBOSE)")
	pf.BoolVarP(&flagSummary, "summary", "s", false, "One line per test section only")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Alias for --summary")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging on stderr")
	pf.BoolVar(&flagNoColor, "no-color", false, "Disable colored output (env: NO_COLOR)")
	pf.StringVar(&flagJUnit, "junit", "", "Write a JUnit XML report to this path")
	pf.StringVar(&flagLogDir, "logdir", "", "Write one plain-text log file per test section into this directory")
	pf.StringVar(&flagPrefix, "prefix", "", "Regexp matched ahead of structured lines (transport prefixes)")
}

// Execute runs the root command and returns the process exit code:
// 0 when every section passed, 1 when at least one failed, 2 for usage
// and setup errors.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wvrun:", err)
		return 2
	}
	if exitFailed {
		return 1
	}
	return 0
}
