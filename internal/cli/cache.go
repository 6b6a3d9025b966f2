package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lineagekit/lineagekit/pkg/cache"
	lkerr "github.com/lineagekit/lineagekit/pkg/errors"
	"github.com/lineagekit/lineagekit/pkg/pipeline"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the lineage graph cache",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())
	cmd.AddCommand(c.cacheInvalidateCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every cached lineage graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := cache.Open(ctx, cfg.CacheOptions())
			if err != nil {
				return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "open %s cache", cfg.Cache.Backend)
			}
			defer store.Close()

			count, err := cache.Purge(ctx, store, cfg.Cache.Namespace)
			if err != nil {
				return fmt.Errorf("clear cache: %w", err)
			}
			if count == 0 {
				printInfo("Cache is empty")
				return nil
			}

			printSuccess("Cleared %d cached entries", count)
			printDetail("Backend: %s", cfg.Cache.Backend)
			return nil
		},
	}
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Dir)
			return nil
		},
	}
}

// cacheInvalidateCommand creates the "cache invalidate" subcommand.
func (c *CLI) cacheInvalidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "invalidate <entity-id>...",
		Short: "Drop every cached variant of the given entities",
		Long: `Drop every cached variant of the given entities, whatever direction and
depth they were fetched with, plus all merged multi-entity graphs.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: c.completeEntityIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.loadConfig(cmd)
			if err != nil {
				return err
			}
			store, err := cache.Open(ctx, cfg.CacheOptions())
			if err != nil {
				return lkerr.Wrap(lkerr.ErrCodeInvalidConfig, err, "open %s cache", cfg.Cache.Backend)
			}

			// Invalidation never fetches, so no source is needed.
			runner := pipeline.NewRunner(store, cfg.CacheOptions().Keyer(), nil, c.Logger)
			defer runner.Close()

			total := 0
			for _, id := range args {
				n, err := runner.Invalidate(ctx, id)
				if err != nil {
					return err
				}
				total += n
			}
			printSuccess("Invalidated %d cached entries", total)
			return nil
		},
	}
}
