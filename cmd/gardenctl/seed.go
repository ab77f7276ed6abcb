package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/garden/internal/app"
	"github.com/kailas-cloud/garden/internal/fixtures"
)

func newSeedCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixtures.yaml>",
		Short: "Load content fixtures into the configured store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := fixtures.LoadFile(args[0])
			if err != nil {
				return err
			}

			cfg, logger, err := root.load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			storage, err := app.OpenStorage(ctx, cfg.Storage, logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			n, err := set.Write(ctx, storage.Content)
			if err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d records (%d articles, %d notes, %d projects) into %s\n",
				n, len(set.Articles), len(set.Notes), len(set.Projects), cfg.Storage.Driver)
			return nil
		},
	}
}
