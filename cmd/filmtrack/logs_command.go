package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"filmtrack/internal/config"
	"filmtrack/internal/logging"
	"filmtrack/internal/logs"
)

const followWait = 5 * time.Second

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var (
		lines     int
		follow    bool
		component string
		eventType string
		decision  string
		level     string
	)

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Show recent log lines from the configured log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := logFilePath(cfg)
			if err != nil {
				return err
			}
			filter := logs.Filter{
				Component:    strings.TrimSpace(component),
				EventType:    strings.TrimSpace(eventType),
				DecisionType: strings.TrimSpace(decision),
			}
			if level = strings.TrimSpace(level); level != "" {
				minLevel, err := logging.ParseLevel(level)
				if err != nil {
					return fmt.Errorf("invalid --level: %w", err)
				}
				filter.MinLevel, filter.HasLevel = minLevel, true
			}

			out := cmd.OutOrStdout()
			result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{Offset: -1, Limit: lines, Filter: filter})
			if err != nil {
				return err
			}
			for _, line := range result.Lines {
				fmt.Fprintln(out, line)
			}
			if !follow {
				return nil
			}

			offset := result.Offset
			for {
				result, err := logs.Tail(cmd.Context(), path, logs.TailOptions{
					Offset: offset,
					Follow: true,
					Wait:   followWait,
					Filter: filter,
				})
				if err != nil {
					if errors.Is(err, cmd.Context().Err()) {
						return nil
					}
					return err
				}
				for _, line := range result.Lines {
					fmt.Fprintln(out, line)
				}
				offset = result.Offset
			}
		},
	}

	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of matching lines to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new lines")
	cmd.Flags().StringVar(&component, "component", "", "Only lines from this component (metadata, cache, cli)")
	cmd.Flags().StringVar(&eventType, "event", "", "Only lines with this event_type (for example cache_quota)")
	cmd.Flags().StringVar(&decision, "decision", "", "Only lines with this decision_type (for example tmdb_match)")
	cmd.Flags().StringVar(&level, "level", "", "Minimum level (debug, info, warn, error)")
	return cmd
}

// logFilePath returns the first file destination in logging.output_paths.
func logFilePath(cfg *config.Config) (string, error) {
	for _, p := range cfg.Logging.OutputPaths {
		switch strings.ToLower(strings.TrimSpace(p)) {
		case "", "stdout", "stderr":
			continue
		}
		return p, nil
	}
	return "", errors.New("logging.output_paths has no log file; add a file path to read logs back")
}

