package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/cardgrid/internal/server"
	"github.com/matzehuels/cardgrid/pkg/grid"
	"github.com/matzehuels/cardgrid/pkg/grid/engine"
	"github.com/matzehuels/cardgrid/pkg/gridio"
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr       string
	configPath string
	layoutPath string // initial layout JSON file
	store      storeFlags
}

// serveCommand creates the serve command, which runs the HTTP API around a
// live engine. The engine starts from an optional layout file and persists
// named layouts through the selected store backend.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "TOML config file (default: ~/.config/cardgrid/cardgrid.toml)")
	cmd.Flags().StringVarP(&opts.layoutPath, "layout", "l", "", "initial layout JSON file")
	opts.store.register(cmd)

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts *serveOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	var initial []grid.Item
	if opts.layoutPath != "" {
		initial, err = gridio.ReadLayoutFile(opts.layoutPath)
		if err != nil {
			return err
		}
		c.Logger.Infof("Loaded initial layout: %d cards", len(initial))
	}

	eng, err := engine.New(cfg.Grid, initial, cfg.engineOptions()...)
	if err != nil {
		return err
	}
	defer eng.Close()

	layouts, err := c.newStore(cmd, &opts.store)
	if err != nil {
		return err
	}
	if layouts != nil {
		defer layouts.Close()
		c.Logger.Debugf("Layout store: %s", opts.store.backend)
	}

	srv := server.New(eng, layouts, c.Logger)
	printInfo("Serving the layout engine")
	printKeyValue("address", opts.addr)
	printKeyValue("store", opts.store.backend)
	return srv.ListenAndServe(cmd.Context(), opts.addr)
}
