package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmtrack/internal/metadata"
	"filmtrack/internal/tmdb"
)

func newResolveCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "resolve <title>",
		Short: "Find the TMDB record that best matches a local title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := tmdb.ParseMediaKind(kindFlag)
			if err != nil {
				return err
			}
			resolver, err := ctx.openResolver(cmd.Context())
			if err != nil {
				return err
			}
			title := strings.Join(args, " ")
			res, err := resolver.ResolveByTitle(cmd.Context(), title, kind)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, res)
			}
			printResolution(cmd, title, res)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "multi", "Search movie, tv or multi")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printResolution(cmd *cobra.Command, title string, res metadata.Resolution) {
	out := cmd.OutOrStdout()
	if !res.Found() {
		fmt.Fprintf(out, "No match found for %q after %d of %d strategies\n", title, res.Attempts, len(res.Strategies))
		if res.Failures > 0 {
			fmt.Fprintf(out, "%d strategies failed; rerun with --log-level debug for details\n", res.Failures)
		}
		return
	}
	record := res.Record
	label := record.DisplayTitle()
	if year := record.Year(); year != "" {
		label = fmt.Sprintf("%s (%s)", label, year)
	}
	fmt.Fprintf(out, "Status:     %s\n", res.Status)
	fmt.Fprintf(out, "Title:      %s\n", label)
	fmt.Fprintf(out, "Original:   %s\n", orDash(record.DisplayOriginalTitle()))
	fmt.Fprintf(out, "TMDB ID:    %d (%s)\n", record.ID, orDash(record.MediaType))
	fmt.Fprintf(out, "Score:      %.2f via %q\n", res.Score, res.Query)
	fmt.Fprintf(out, "Strategies: %d of %d tried, %d cached\n", res.Attempts, len(res.Strategies), res.CacheHits)
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var page int
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a single cached TMDB search",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := tmdb.ParseMediaKind(kindFlag)
			if err != nil {
				return err
			}
			resolver, err := ctx.openResolver(cmd.Context())
			if err != nil {
				return err
			}
			resp, err := resolver.Search(cmd.Context(), strings.Join(args, " "), kind, page)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, resp)
			}
			out := cmd.OutOrStdout()
			if len(resp.Results) == 0 {
				fmt.Fprintln(out, "No results")
				return nil
			}
			rows := make([][]string, 0, len(resp.Results))
			for _, r := range resp.Results {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					orDash(r.MediaType),
					truncate(r.DisplayTitle(), 40),
					truncate(r.DisplayOriginalTitle(), 40),
					orDash(r.Year()),
					fmt.Sprintf("%.1f", r.VoteAverage),
				})
			}
			tableSpec{
				headers:      []string{"ID", "Kind", "Title", "Original", "Year", "Rating"},
				rows:         rows,
				rightAligned: []int{0, 5},
			}.render(out)
			fmt.Fprintf(out, "Page %d of %d (%d results)\n", resp.Page, resp.TotalPages, resp.TotalResults)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "multi", "Search movie, tv or multi")
	cmd.Flags().IntVar(&page, "page", 1, "Result page")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
