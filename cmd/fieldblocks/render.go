package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		editing bool
		owner   string
	)
	cmd := &cobra.Command{
		Use:     "render [file]",
		Aliases: []string{"r"},
		Short:   "Render serialized block content",
		Long: `Render reads a JSON list of block descriptors from file (or stdin) and
writes the rendered markup of each top-level block to stdout. Blocks share one
render scope, so a block repeated in the content is executed once.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			rt, _, err := opts.runtime(ctx, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			scope := rt.Engine.NewScope()
			descriptors, err := scope.Parse(ctx, content)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, desc := range descriptors {
				html, err := scope.Render(ctx, desc, "", editing, owner, nil)
				if err != nil {
					return fmt.Errorf("render %s: %w", desc.TypeName, err)
				}
				if _, err := fmt.Fprintln(out, html); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&editing, "editing", false, "render the editor preview instead of the display markup")
	cmd.Flags().StringVar(&owner, "owner", "", "owner id whose stored values durable blocks read")
	return cmd
}

func newSaveCmd(opts *rootOptions) *cobra.Command {
	var owner string
	cmd := &cobra.Command{
		Use:   "save [file]",
		Short: "Persist durable block values for an owner",
		Long: `Save reads serialized block content from file (or stdin) and writes the
values of every block type using durable storage to the configured store under
the given owner.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			content, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			rt, _, err := opts.runtime(ctx, nil)
			if err != nil {
				return err
			}
			defer rt.Close()

			// Parsing stages the durable values the save hook flushes.
			scope := rt.Engine.NewScope()
			if _, err := scope.Parse(ctx, content); err != nil {
				return err
			}
			return scope.OnOwnerSave(ctx, owner, content)
		},
	}
	cmd.Flags().StringVar(&owner, "owner", "", "owner id the values are stored under")
	_ = cmd.MarkFlagRequired("owner")
	return cmd
}
