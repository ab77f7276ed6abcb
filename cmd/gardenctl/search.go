package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/garden/internal/app"
	"github.com/kailas-cloud/garden/internal/domain/search/mode"
	"github.com/kailas-cloud/garden/internal/domain/search/request"
	chiTransport "github.com/kailas-cloud/garden/internal/transport/chi"
	searchuc "github.com/kailas-cloud/garden/internal/usecase/search"
)

func newSearchCmd(root *rootOptions) *cobra.Command {
	var (
		limit  int
		m      string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Ask the garden a question",
		Long: `Run the search pipeline against the configured store and print the answer.

Examples:
  gardenctl search "typescript"
  gardenctl search "what do you grow on the balcony" --limit 3
  gardenctl search rust --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := request.New(strings.Join(args, " "), mode.Mode(m), limit)
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

			comp := app.BuildCompletion(ctx, cfg.Completion, storage.KV, logger)
			svc := searchuc.New(storage.Content, comp.Generator, app.SearchOptions(cfg.Search), logger)

			resp, err := svc.Search(ctx, &req)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			out := chiTransport.NewSearchResponse(&resp)
			if asJSON {
				return outputJSON(cmd.OutOrStdout(), out)
			}
			return outputHuman(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", request.DefaultLimit, "maximum results")
	cmd.Flags().StringVarP(&m, "mode", "m", string(mode.Auto), "search mode (auto, search, ask)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output as JSON")
	return cmd
}

func outputJSON(w io.Writer, resp chiTransport.SearchResponse) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func outputHuman(w io.Writer, resp chiTransport.SearchResponse) error {
	fmt.Fprintln(w, resp.Answer)
	if len(resp.Results) == 0 {
		return nil
	}
	fmt.Fprintln(w)

	for i, r := range resp.Results {
		fmt.Fprintf(w, "%d. [%s] %s  (%d%%)\n", i+1, r.Type, r.Title, r.MatchScore)

		meta := []string{"/" + r.Slug, r.CreatedAt}
		if r.Tags != "" {
			meta = append(meta, "tags: "+r.Tags)
		}
		fmt.Fprintf(w, "   %s\n", strings.Join(meta, " | "))
		if r.Reason != "" {
			fmt.Fprintf(w, "   %s\n", r.Reason)
		}
	}
	if resp.IsFallback {
		fmt.Fprintf(w, "\n(local match scores, %d total)\n", resp.Total)
	}
	return nil
}
