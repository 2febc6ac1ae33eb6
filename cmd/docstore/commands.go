package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/viant/docstore/ingest"
	"github.com/viant/docstore/vector"
)

func newIngestCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest [paths...]",
		Short: "Embed and store content files",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			paths := args
			if len(paths) == 0 {
				paths = a.cfg.Ingest.Paths
			}
			if len(paths) == 0 {
				return fmt.Errorf("no content paths given")
			}
			items, err := ingest.LoadPaths(paths...)
			if err != nil {
				return err
			}
			embedder, err := a.embedder()
			if err != nil {
				return err
			}
			in := &ingest.Ingester{
				Embedder:    embedder,
				Store:       a.store,
				Concurrency: a.cfg.Ingest.Concurrency,
				Retries:     a.cfg.Ingest.Retries,
				Backoff:     a.cfg.Ingest.Backoff(),
				Logger:      a.logger,
			}
			report, err := in.Run(ctx, items)
			fmt.Fprintf(cmd.OutOrStdout(), "ingested %d, skipped %d, failed %d\n", report.Ingested, report.Skipped, report.Failed)
			if err != nil {
				return err
			}
			if report.Failed > 0 {
				return fmt.Errorf("%d items failed: %w", report.Failed, report.Errors[0])
			}
			return nil
		},
	}
}

func newSearchCmd(flags *globalFlags) *cobra.Command {
	var (
		k       int
		filters []string
		asJSON  bool
	)
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Search stored documents by meaning",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(filters)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			a, err := openApp(ctx, cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()

			embedder, err := a.embedder()
			if err != nil {
				return err
			}
			query, err := embedder.Embed(ctx, strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("embed query: %w", err)
			}
			matches, err := a.store.Search(query, k, filter)
			if err != nil {
				return err
			}
			return writeMatches(cmd.OutOrStdout(), matches, asJSON)
		},
	}
	cmd.Flags().IntVarP(&k, "k", "k", 5, "number of results")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "metadata filter key=value (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as JSON")
	return cmd
}

func newRemoveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove documents by id",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := openApp(ctx, cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			for _, id := range args {
				if err := a.store.Remove(ctx, id); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", len(args))
			return nil
		},
	}
}

func newStatsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show document count and dimension",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context(), cmd, flags)
			if err != nil {
				return err
			}
			defer a.Close()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "documents: %d\n", a.store.Len())
			fmt.Fprintf(out, "dimension: %d\n", a.store.Dimension())
			fmt.Fprintf(out, "dsn:       %s\n", a.cfg.Store.DSN)
			return nil
		},
	}
}

// writeMatches prints ranked matches as a numbered list or a JSON array.
func writeMatches(out io.Writer, matches []vector.Match, asJSON bool) error {
	if asJSON {
		type hit struct {
			ID       string            `json:"id"`
			Score    float64           `json:"score"`
			Content  string            `json:"content"`
			Metadata map[string]string `json:"metadata,omitempty"`
		}
		hits := make([]hit, len(matches))
		for i, m := range matches {
			hits[i] = hit{ID: m.Document.ID, Score: m.Score, Content: m.Document.Content, Metadata: m.Document.Metadata}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}
	if len(matches) == 0 {
		fmt.Fprintln(out, "no matches")
		return nil
	}
	for i, m := range matches {
		fmt.Fprintf(out, "%d. %s (%.4f) %s\n", i+1, m.Document.ID, m.Score, m.Document.Content)
	}
	return nil
}

func parseFilter(pairs []string) (vector.Filter, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	f := make(vector.Filter, len(pairs))
	for _, p := range pairs {
		key, value, ok := strings.Cut(p, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q, want key=value", p)
		}
		f[key] = value
	}
	return f, nil
}
