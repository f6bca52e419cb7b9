package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"filmtrack/internal/blobstore"
	"filmtrack/internal/cache"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and manage the TMDB response cache",
	}

	cacheCmd.AddCommand(newCacheStatsCommand(ctx))
	cacheCmd.AddCommand(newCacheSweepCommand(ctx))
	cacheCmd.AddCommand(newCacheOptimizeCommand(ctx))
	cacheCmd.AddCommand(newCacheClearCommand(ctx))
	cacheCmd.AddCommand(newCacheCleanupCommand(ctx))
	cacheCmd.AddCommand(newCacheKeysCommand(ctx))

	return cacheCmd
}

type bucketView struct {
	Bucket     string    `json:"bucket"`
	Record     string    `json:"record"`
	Items      int       `json:"items"`
	Bytes      int       `json:"bytes"`
	Expired    int       `json:"expired"`
	Oldest     time.Time `json:"oldest,omitzero"`
	Newest     time.Time `json:"newest,omitzero"`
	MaxItems   int       `json:"max_items"`
	MaxBytes   int       `json:"max_bytes"`
	Expiration string    `json:"expiration"`
}

type cacheStatsView struct {
	Backend    string       `json:"backend"`
	Path       string       `json:"path,omitempty"`
	UsedBytes  int64        `json:"used_bytes"`
	QuotaBytes int64        `json:"quota_bytes,omitempty"`
	Buckets    []bucketView `json:"buckets"`
}

func newCacheStatsCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show per-bucket cache usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.openCache(cmd.Context())
			if err != nil {
				return err
			}
			cfg, _ := ctx.ensureConfig()
			view := cacheStatsView{
				Backend:    cfg.Cache.Backend,
				QuotaBytes: cfg.Cache.QuotaBytes,
			}
			if cfg.Cache.Backend == "file" || cfg.Cache.Backend == "sqlite" {
				view.Path = cfg.Cache.Path
			}
			if !cfg.Cache.Enabled {
				view.Backend = "memory (cache disabled)"
			}
			if view.UsedBytes, err = blobstore.Usage(cmd.Context(), ctx.store); err != nil {
				return fmt.Errorf("measure cache store: %w", err)
			}
			for _, s := range c.Stats(cmd.Context()) {
				view.Buckets = append(view.Buckets, bucketView{
					Bucket:     s.Bucket.String(),
					Record:     s.Record,
					Items:      s.Items,
					Bytes:      s.Bytes,
					Expired:    s.Expired,
					Oldest:     s.Oldest,
					Newest:     s.Newest,
					MaxItems:   s.Policy.MaxItems,
					MaxBytes:   s.Policy.MaxBytes,
					Expiration: s.Policy.Expiration.String(),
				})
			}
			if jsonOutput {
				return writeJSON(cmd, view)
			}
			printCacheStats(cmd, view)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

func printCacheStats(cmd *cobra.Command, view cacheStatsView) {
	out := cmd.OutOrStdout()
	now := time.Now()
	fmt.Fprintf(out, "Backend: %s\n", view.Backend)
	if view.Path != "" {
		fmt.Fprintf(out, "Path:    %s\n", view.Path)
	}
	if view.QuotaBytes > 0 {
		fmt.Fprintf(out, "Stored:  %s / %s\n", humanBytes(view.UsedBytes), humanBytes(view.QuotaBytes))
	} else {
		fmt.Fprintf(out, "Stored:  %s\n", humanBytes(view.UsedBytes))
	}

	rows := make([][]string, 0, len(view.Buckets))
	for _, b := range view.Buckets {
		rows = append(rows, []string{
			b.Bucket,
			fmt.Sprintf("%d / %d", b.Items, b.MaxItems),
			fmt.Sprintf("%s / %s", humanBytes(int64(b.Bytes)), humanBytes(int64(b.MaxBytes))),
			strconv.Itoa(b.Expired),
			formatAge(now, b.Oldest),
			formatAge(now, b.Newest),
			b.Expiration,
		})
	}
	tableSpec{
		headers:      []string{"Bucket", "Items", "Size", "Expired", "Oldest", "Newest", "TTL"},
		rows:         rows,
		rightAligned: []int{1, 2, 3},
	}.render(out)
}

func newCacheSweepCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Remove expired entries from every bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.openCache(cmd.Context())
			if err != nil {
				return err
			}
			removed := c.Sweep(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d expired entries\n", removed)
			return nil
		},
	}
}

func newCacheOptimizeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "optimize",
		Short: "Keep only recent listings (2h) and details (7d)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.openCache(cmd.Context())
			if err != nil {
				return err
			}
			removed := c.Optimize(cmd.Context())
			fmt.Fprintf(cmd.OutOrStdout(), "Optimized cache: removed %d entries\n", removed)
			return nil
		},
	}
}

func newCacheClearCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Drop every cache bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := ctx.openCache(cmd.Context())
			if err != nil {
				return err
			}
			c.Clear(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared all cache buckets")
			return nil
		},
	}
}

func newCacheCleanupCommand(ctx *commandContext) *cobra.Command {
	var bucketName string

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Drop a single cache bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := cache.ParseBucket(bucketName)
			if err != nil {
				return err
			}
			c, err := ctx.openCache(cmd.Context())
			if err != nil {
				return err
			}
			c.ClearBucket(cmd.Context(), bucket)
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared bucket %s\n", bucket)
			return nil
		},
	}

	cmd.Flags().StringVar(&bucketName, "bucket", "", "Bucket to drop (for example search-multi)")
	_ = cmd.MarkFlagRequired("bucket")
	return cmd
}

func newCacheKeysCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "keys <bucket>",
		Short: "List live keys of a bucket, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, err := cache.ParseBucket(args[0])
			if err != nil {
				return err
			}
			c, err := ctx.openCache(cmd.Context())
			if err != nil {
				return err
			}
			keys := c.Keys(cmd.Context(), bucket)
			out := cmd.OutOrStdout()
			if len(keys) == 0 {
				fmt.Fprintf(out, "Bucket %s is empty\n", bucket)
				return nil
			}
			for _, key := range keys {
				fmt.Fprintln(out, key)
			}
			return nil
		},
	}
}
