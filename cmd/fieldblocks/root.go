package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fieldblocks "github.com/goliatone/go-fieldblocks"
	"github.com/goliatone/go-fieldblocks/pkg/config"
)

type rootOptions struct {
	cfgFile string
	v       *viper.Viper
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{v: viper.New()}

	root := &cobra.Command{
		Use:   "fieldblocks",
		Short: "Render field-driven content blocks",
		Long: `fieldblocks renders content blocks whose values come from typed field
definitions. Block types are loaded from the blocks directory and rendered with
the templates directory.

Commands:
  fieldblocks render   Render serialized block content
  fieldblocks save     Persist durable block values for an owner
  fieldblocks serve    Serve the editor fetch and render endpoints`,
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.cfgFile, "config", "", "config file (default is ./fieldblocks.yaml or ./configs/fieldblocks.yaml)")
	flags.StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	flags.String("blocks-dir", "", "directory holding block type definitions")
	flags.String("templates-dir", "", "directory holding block templates")
	_ = opts.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = opts.v.BindPFlag("render.blocks_dir", flags.Lookup("blocks-dir"))
	_ = opts.v.BindPFlag("render.templates_dir", flags.Lookup("templates-dir"))

	root.AddCommand(newRenderCmd(opts), newSaveCmd(opts), newServeCmd(opts))
	return root
}

// runtime loads configuration and assembles the engine. reg may be nil.
func (o *rootOptions) runtime(ctx context.Context, reg prometheus.Registerer) (*fieldblocks.Runtime, *config.Config, error) {
	cfg, err := config.Load(config.WithViper(o.v), config.WithFile(o.cfgFile))
	if err != nil {
		return nil, nil, err
	}
	rt, err := fieldblocks.FromConfig(ctx, cfg, reg)
	if err != nil {
		return nil, nil, err
	}
	return rt, cfg, nil
}

// readInput reads the named file, or stdin when args is empty or "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	return data, nil
}
