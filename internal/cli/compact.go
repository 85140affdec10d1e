package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/gridio"
)

// compactOpts holds the command-line flags for the compact command.
type compactOpts struct {
	output string // output file path; empty rewrites the input in place
	cols   int    // column count to compact against
}

// compactCommand creates the compact command. It reads a layout JSON file,
// eliminates vertical gaps, and writes the result.
func (c *CLI) compactCommand() *cobra.Command {
	var opts compactOpts

	cmd := &cobra.Command{
		Use:   "compact [file]",
		Short: "Eliminate gaps in a layout file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCompact(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: rewrite input)")
	cmd.Flags().IntVar(&opts.cols, "cols", grid.DefaultColNum, "grid column count")

	return cmd
}

func (c *CLI) runCompact(input string, opts *compactOpts) error {
	if opts.cols < 1 {
		return fmt.Errorf("invalid column count: %d", opts.cols)
	}

	p := newProgress(c.Logger)
	items, err := gridio.ReadLayoutFile(input)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded layout: %d cards", len(items))

	compacted := grid.Compact(items, opts.cols)

	output := opts.output
	if output == "" {
		output = input
	}
	if err := gridio.WriteLayoutFile(compacted, output); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Compacted %d cards", len(compacted)))

	printSuccess("Wrote %s", output)
	printLayoutStats(len(compacted), countStatic(compacted), maxRows(compacted))
	return nil
}

func countStatic(items []grid.Item) int {
	n := 0
	for _, it := range items {
		if it.Static {
			n++
		}
	}
	return n
}

func maxRows(items []grid.Item) int {
	rows := 0
	for _, it := range items {
		if bottom := it.Y + it.H; bottom > rows {
			rows = bottom
		}
	}
	return rows
}

// describeLayout summarizes a layout for detail output.
func describeLayout(items []grid.Item) string {
	if len(items) == 0 {
		return "empty layout"
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	const max = 5
	if len(ids) > max {
		return strings.Join(ids[:max], ", ") + fmt.Sprintf(", … (%d more)", len(ids)-max)
	}
	return strings.Join(ids, ", ")
}
