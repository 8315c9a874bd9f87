package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wvtest/wvrun/pkg/protocol"
)

// maxLineLength bounds a single scanned input line.
const maxLineLength = 1 << 20

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Summarize pre-recorded WvTest output",
	Long: `parse classifies previously captured WvTest output. Each file is read
line by line; "-" or no arguments reads standard input. Input that does
not open with an explicit Testing marker is treated as a single section
titled after the file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := newPipeline()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			args = []string{"-"}
		}
		for _, name := range args {
			if err := parseFile(p, name); err != nil {
				return err
			}
		}
		return p.finish()
	},
}

func parseFile(p *pipeline, name string) error {
	var r io.Reader
	title := name
	if name == "-" {
		r = os.Stdin
		title = "stdin"
	} else {
		f, err := os.Open(name) // #nosec G304 - user-supplied input file
		if err != nil {
			return fmt.Errorf("parse: %w", err)
		}
		defer f.Close()
		r = f
	}

	p.sess.SetImplicitTitle(protocol.NewTesting(title, "wvrun"))

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxLineLength)
	for scanner.Scan() {
		p.sess.Append(p.classifier.Classify(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("parse: reading %s: %w", title, err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(parseCmd)
}
