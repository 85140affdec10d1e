package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/gridio"
	"github.com/matzehuels/cardgrid/pkg/render"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string // output file path
	format   string // output format: dot, svg, png
	cols     int    // grid column count for the frame
	detailed bool   // include cell geometry in card labels
}

// validRenderFormats is the set of supported output formats.
var validRenderFormats = map[string]bool{"dot": true, "svg": true, "png": true}

// renderCommand creates the render command for generating layout diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	opts := renderOpts{format: "svg"}

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a layout file as a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validRenderFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'dot', 'svg', or 'png')", opts.format)
			}
			return c.runRender(cmd.Context(), args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: derived from input)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), png, dot")
	cmd.Flags().IntVar(&opts.cols, "cols", grid.DefaultColNum, "grid column count")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include cell geometry in card labels")

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, opts *renderOpts) error {
	c.Logger.Infof("Rendering %s", input)

	items, err := gridio.ReadLayoutFile(input)
	if err != nil {
		return err
	}
	c.Logger.Infof("Loaded layout: %d cards", len(items))

	cfg := grid.DefaultConfig()
	cfg.ColNum = opts.cols

	dot := render.ToDOT(items, cfg, render.Options{Detailed: opts.detailed})

	var data []byte
	switch opts.format {
	case "dot":
		data = []byte(dot)
	case "svg":
		c.Logger.Debug("Rendering SVG")
		data, err = render.RenderSVG(ctx, dot)
	case "png":
		c.Logger.Debug("Rendering PNG")
		data, err = render.RenderPNG(ctx, dot)
	}
	if err != nil {
		return err
	}

	output := opts.output
	if output == "" {
		output = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", output, err)
	}

	printSuccess("Generated %s", output)
	printFile(output)
	return nil
}
