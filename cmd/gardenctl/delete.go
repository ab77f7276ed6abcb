package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/garden/internal/app"
	"github.com/kailas-cloud/garden/internal/domain"
	"github.com/kailas-cloud/garden/internal/domain/content"
)

func newDeleteCmd(root *rootOptions) *cobra.Command {
	var ignoreMissing bool

	cmd := &cobra.Command{
		Use:       "delete <article|note|project> <id>",
		Short:     "Remove one record from the configured store",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{string(content.KindArticle), string(content.KindNote), string(content.KindProject)},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := content.Kind(args[0])
			if !kind.IsValid() {
				return fmt.Errorf("unknown kind %q (want article, note or project)", args[0])
			}
			id := args[1]

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

			err = storage.Content.Delete(ctx, kind, id)
			switch {
			case errors.Is(err, domain.ErrNotFound) && ignoreMissing:
				fmt.Fprintf(cmd.OutOrStdout(), "No %s %q in %s\n", kind, id, cfg.Storage.Driver)
				return nil
			case err != nil:
				return fmt.Errorf("delete: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %q from %s\n", kind, id, cfg.Storage.Driver)
			return nil
		},
	}
	cmd.Flags().BoolVar(&ignoreMissing, "ignore-missing", false, "succeed when the record does not exist")
	return cmd
}
