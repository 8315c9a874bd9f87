package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wvtest/wvrun/internal/logging"
	"github.com/wvtest/wvrun/pkg/supervise"
)

var (
	flagTimeout int
	flagExec    []string
)

var runCmd = &cobra.Command{
	Use:   "run [flags] -- command [args...]",
	Short: "Supervise a command and summarize its WvTest output",
	Long: `run launches the command in its own process group, classifies its merged
stdout and stderr line by line, and reports per-section outcomes. An
inactivity watchdog terminates the child when it produces no output for
the configured timeout. Interrupt and terminate signals sent to wvrun are
forwarded to the whole process group.

Several commands can be supervised sequentially against one tally with
repeated -e flags (values are split on whitespace, no shell quoting):

  wvrun run -e "./t/unit.test" -e "./t/integration.test"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 && len(flagExec) == 0 {
			return fmt.Errorf("run: no command given")
		}
		if len(args) > 0 && len(flagExec) > 0 {
			return fmt.Errorf("run: use either a command or -e, not both")
		}

		p, err := newPipeline()
		if err != nil {
			return err
		}

		timeout := flagTimeout
		if !cmd.Flags().Changed("timeout") && cfg.TimeoutSeconds > 0 {
			timeout = cfg.TimeoutSeconds
		}
		sup := supervise.New(p.sess, p.classifier,
			time.Duration(timeout)*time.Second, logging.New("supervise"))

		batch := [][]string{args}
		if len(flagExec) > 0 {
			batch = batch[:0]
			for _, e := range flagExec {
				argv := strings.Fields(e)
				if len(argv) == 0 {
					return fmt.Errorf("run: empty -e command")
				}
				batch = append(batch, argv)
			}
		}

		for _, argv := range batch {
			if err := sup.Run(cmd.Context(), argv); err != nil {
				return err
			}
		}
		return p.finish()
	},
}

func init() {
	runCmd.Flags().IntVarP(&flagTimeout, "timeout", "t", 100,
		"Watchdog timeout in seconds (no output for this long fails the run)")
	runCmd.Flags().StringArrayVarP(&flagExec, "exec", "e", nil,
		"Command to supervise; repeat for a sequential batch")
	rootCmd.AddCommand(runCmd)
}
