// Command board inspects the anchorboard sample diagram from the shell:
// render it, list anchors, and try snapping and waypoint insertion.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha1tch/anchorboard/pkg/config"
	"github.com/ha1tch/anchorboard/pkg/diagram"
	"github.com/ha1tch/anchorboard/pkg/logging"
)

var version = "0.3.0"

// app is the state shared by every subcommand, built once flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
	store      *diagram.Store
}

func (a *app) load(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}

	opts := diagram.DefaultStoreOptions()
	opts.Geometry = cfg.DiagramGeometry()
	opts.Logger = log

	a.cfg = cfg
	a.log = log
	a.store = diagram.NewSampleStore(opts)
	return nil
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "board",
		Short: "board - anchored diagram toolkit",
		Long: brand.Sprint("board") + " - inspect and render the anchorboard sample diagram\n" +
			subtle.Sprint("Anchors, snapping and waypoint insertion from the command line"),
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.load,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	root.SetVersionTemplate("board {{ .Version }}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", config.Path(), "Config file path")

	root.AddCommand(
		renderCmd(a),
		anchorsCmd(a),
		snapCmd(a),
		insertCmd(a),
		configCmd(a),
	)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
