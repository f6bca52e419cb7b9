package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"filmtrack/internal/tmdb"
)

func parseIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid TMDB id %q", arg)
	}
	return id, nil
}

func concreteKind(value string) (tmdb.MediaKind, error) {
	kind, err := tmdb.ParseMediaKind(value)
	if err != nil {
		return "", err
	}
	if !kind.Concrete() {
		return "", fmt.Errorf("--kind must be movie or tv")
	}
	return kind, nil
}

func newDetailsCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "details <id>",
		Short: "Show the full TMDB record for an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			kind, err := concreteKind(kindFlag)
			if err != nil {
				return err
			}
			resolver, err := ctx.openResolver(cmd.Context())
			if err != nil {
				return err
			}
			details, err := resolver.FetchDetails(cmd.Context(), id, kind)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, details)
			}
			cfg, _ := ctx.ensureConfig()
			printDetails(cmd, details, cfg.TMDB.ImageBaseURL)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "movie", "Record kind: movie or tv")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printDetails(cmd *cobra.Command, d *tmdb.Details, imageBase string) {
	out := cmd.OutOrStdout()
	genres := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		genres = append(genres, g.Name)
	}
	var cast []string
	if d.Credits != nil {
		for i, member := range d.Credits.Cast {
			if i == 5 {
				break
			}
			cast = append(cast, member.Name)
		}
	}
	runtime := "-"
	if minutes := d.RuntimeMinutes(); minutes > 0 {
		runtime = fmt.Sprintf("%d min", minutes)
	}

	fmt.Fprintf(out, "Title:    %s\n", d.DisplayTitle())
	fmt.Fprintf(out, "Original: %s\n", orDash(d.DisplayOriginalTitle()))
	fmt.Fprintf(out, "TMDB ID:  %d (%s)\n", d.ID, d.MediaType)
	fmt.Fprintf(out, "Year:     %s\n", orDash(d.Year()))
	fmt.Fprintf(out, "Runtime:  %s\n", runtime)
	fmt.Fprintf(out, "Genres:   %s\n", orDash(strings.Join(genres, ", ")))
	fmt.Fprintf(out, "Rating:   %.1f (%d votes)\n", d.VoteAverage, d.VoteCount)
	fmt.Fprintf(out, "Status:   %s\n", orDash(d.Status))
	if d.NumberOfSeasons > 0 {
		fmt.Fprintf(out, "Seasons:  %d (%d episodes)\n", d.NumberOfSeasons, d.NumberOfEpisodes)
	}
	fmt.Fprintf(out, "Cast:     %s\n", orDash(strings.Join(cast, ", ")))
	fmt.Fprintf(out, "Poster:   %s\n", orDash(tmdb.ImageURL(imageBase, "w500", d.PosterPath)))
	fmt.Fprintf(out, "Overview: %s\n", orDash(truncate(d.Overview, 200)))
}

func newImagesCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var size string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "images <id>",
		Short: "List the top ranked backdrops for an id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseIDArg(args[0])
			if err != nil {
				return err
			}
			kind, err := concreteKind(kindFlag)
			if err != nil {
				return err
			}
			resolver, err := ctx.openResolver(cmd.Context())
			if err != nil {
				return err
			}
			images, err := resolver.FetchImages(cmd.Context(), id, kind)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, images)
			}
			out := cmd.OutOrStdout()
			if len(images) == 0 {
				fmt.Fprintln(out, "No backdrops")
				return nil
			}
			cfg, _ := ctx.ensureConfig()
			rows := make([][]string, 0, len(images))
			for i, img := range images {
				rows = append(rows, []string{
					strconv.Itoa(i + 1),
					fmt.Sprintf("%dx%d", img.Width, img.Height),
					strconv.FormatInt(img.VoteCount, 10),
					fmt.Sprintf("%.1f", img.VoteAverage),
					orDash(img.Language),
					tmdb.ImageURL(cfg.TMDB.ImageBaseURL, size, img.FilePath),
				})
			}
			tableSpec{
				headers:      []string{"#", "Size", "Votes", "Average", "Lang", "URL"},
				rows:         rows,
				rightAligned: []int{0, 2, 3},
			}.render(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "movie", "Record kind: movie or tv")
	cmd.Flags().StringVar(&size, "size", "original", "Image size segment for URLs (w780, w1280, original)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func newGenresCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "genres",
		Short: "List TMDB genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := concreteKind(kindFlag)
			if err != nil {
				return err
			}
			resolver, err := ctx.openResolver(cmd.Context())
			if err != nil {
				return err
			}
			genres, err := resolver.FetchGenres(cmd.Context(), kind)
			if err != nil {
				return err
			}
			if jsonOutput {
				return writeJSON(cmd, genres)
			}
			rows := make([][]string, 0, len(genres))
			for _, g := range genres {
				rows = append(rows, []string{strconv.FormatInt(g.ID, 10), g.Name})
			}
			tableSpec{headers: []string{"ID", "Name"}, rows: rows, rightAligned: []int{0}}.render(cmd.OutOrStdout())
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "movie", "Genre list: movie or tv")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
