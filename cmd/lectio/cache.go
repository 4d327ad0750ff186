package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lectio-ai/lectio/pkg/cache/sqlite"
	"github.com/lectio-ai/lectio/pkg/config"
)

// newCacheCmd inspects a SQLite plan cache. Only file DSNs outlive the process,
// so this is mainly useful for local debugging.
func newCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the SQLite plan cache",
	}

	openCache := func() (*sqlite.Cache, error) {
		cfg, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		if cfg.Cache.Backend != "sqlite" {
			return nil, fmt.Errorf("cache backend is %q; cache commands need the sqlite backend", cfg.Cache.Backend)
		}
		return sqlite.New(cfg.Cache.DSN)
	}

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the number of live cache entries",
		Long:  "Show the number of unexpired entries in the SQLite plan cache.\n\n" +
			"Hit and miss counters live in the serving process and reset on restart;\n" +
			"query GET /v1/stats or the cache_stats MCP tool for them.",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			stats, err := c.Stats(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Entries: %d\n", stats.Entries)
			return nil
		},
	}

	var expiredOnly bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := openCache()
			if err != nil {
				return err
			}
			defer func() { _ = c.Close() }()

			n, err := c.Clear(cmd.Context(), expiredOnly)
			if err != nil {
				return err
			}
			if expiredOnly {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d expired cache entries.\n", n)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cache entries.\n", n)
			}
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&expiredOnly, "expired", false, "only clear expired entries")

	cmd.AddCommand(statsCmd, clearCmd)
	return cmd
}
