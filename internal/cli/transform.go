package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/responsive"
	"github.com/matzehuels/cardgrid/pkg/gridio"
)

// transformOpts holds the command-line flags for the transform command.
type transformOpts struct {
	output  string
	from    int  // source column count
	to      int  // target column count
	compact bool // compact after scaling
}

// transformCommand creates the transform command. It rescales a layout from
// one column count to another the same way a breakpoint transition does:
// proportional scaling followed by compaction.
func (c *CLI) transformCommand() *cobra.Command {
	opts := transformOpts{compact: true}

	cmd := &cobra.Command{
		Use:   "transform [file]",
		Short: "Rescale a layout to a different column count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTransform(args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: rewrite input)")
	cmd.Flags().IntVar(&opts.from, "from", grid.DefaultColNum, "source column count")
	cmd.Flags().IntVar(&opts.to, "to", 0, "target column count (required)")
	cmd.Flags().BoolVar(&opts.compact, "compact", opts.compact, "compact the layout after scaling")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func (c *CLI) runTransform(input string, opts *transformOpts) error {
	if opts.from < 1 || opts.to < 1 {
		return fmt.Errorf("column counts must be at least 1 (from=%d, to=%d)", opts.from, opts.to)
	}

	p := newProgress(c.Logger)
	items, err := gridio.ReadLayoutFile(input)
	if err != nil {
		return err
	}
	c.Logger.Debugf("Loaded layout: %d cards at %d columns", len(items), opts.from)

	transformed := responsive.Transform(items, opts.from, opts.to)
	if opts.compact {
		transformed = grid.Compact(transformed, opts.to)
	}

	output := opts.output
	if output == "" {
		output = input
	}
	if err := gridio.WriteLayoutFile(transformed, output); err != nil {
		return err
	}
	p.done(fmt.Sprintf("Transformed %d cards from %d to %d columns", len(transformed), opts.from, opts.to))

	printSuccess("Wrote %s", output)
	printLayoutStats(len(transformed), countStatic(transformed), maxRows(transformed))
	return nil
}
