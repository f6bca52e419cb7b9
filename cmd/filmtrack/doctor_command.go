package main

import (
	"errors"

	"github.com/spf13/cobra"

	"filmtrack/internal/preflight"
	"filmtrack/internal/tmdb"
)

var errChecksFailed = errors.New("one or more checks failed")

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check TMDB credentials, connectivity and the cache store",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var client tmdb.API
			if cfg.RequireCredentials() == nil {
				c, err := newTMDBClient(cfg)
				if err != nil {
					return err
				}
				client = c
			}
			results := preflight.RunAll(cmd.Context(), cfg, client)

			if jsonOutput {
				if err := writeJSON(cmd, results); err != nil {
					return err
				}
			} else {
				w := newStatusWriter(cmd.OutOrStdout())
				w.section("Readiness")
				for _, r := range results {
					w.check(r)
				}
			}
			if preflight.Failed(results) {
				return errChecksFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
