package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/engine"
	"github.com/matzehuels/cardgrid/pkg/gridio"
)

// demoOpts holds the command-line flags for the demo command.
type demoOpts struct {
	configPath string
	layoutPath string
}

// demoCommand creates the demo command: an interactive terminal playground
// that drives a real engine, including undo history and breakpoint
// transitions on terminal resize.
func (c *CLI) demoCommand() *cobra.Command {
	var opts demoOpts

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Interactive grid layout playground",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runDemo(&opts)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config file (default: ~/.config/cardgrid/cardgrid.toml)")
	cmd.Flags().StringVarP(&opts.layoutPath, "layout", "l", "", "initial layout JSON file")

	return cmd
}

func (c *CLI) runDemo(opts *demoOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	initial := demoLayout()
	if opts.layoutPath != "" {
		initial, err = gridio.ReadLayoutFile(opts.layoutPath)
		if err != nil {
			return err
		}
	}

	eng, err := engine.New(cfg.Grid, initial, cfg.engineOptions()...)
	if err != nil {
		return err
	}

	p := tea.NewProgram(NewDemoModel(eng), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run demo: %w", err)
	}
	return nil
}

// demoLayout is the starting layout when no file is given.
func demoLayout() []grid.Item {
	return []grid.Item{
		{ID: "cpu", X: 0, Y: 0, W: 4, H: 2, Type: "chart"},
		{ID: "mem", X: 4, Y: 0, W: 4, H: 2, Type: "gauge"},
		{ID: "net", X: 8, Y: 0, W: 4, H: 2, Type: "chart"},
		{ID: "events", X: 0, Y: 2, W: 8, H: 3, Type: "table"},
		{ID: "sites", X: 8, Y: 2, W: 4, H: 3, Type: "map"},
	}
}
