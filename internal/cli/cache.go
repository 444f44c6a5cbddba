package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"quiz-results-service/internal/app"
	"quiz-results-service/internal/config"
)

// NewCacheCmd groups operator commands acting on raw result cache keys.
func NewCacheCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or delete result cache keys",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print the cached document stored under key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, closeFn, err := cacheQueries(cmd, *configPath)
			if err != nil {
				return err
			}
			defer closeFn()
			value, err := queries.RawEntry(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Delete key and print its previous value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			queries, closeFn, err := cacheQueries(cmd, *configPath)
			if err != nil {
				return err
			}
			defer closeFn()
			prev, ok, err := queries.DeleteKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not found\n", args[0])
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), prev)
			return nil
		},
	})
	return cmd
}

func cacheQueries(cmd *cobra.Command, configPath string) (*app.ResultQueryService, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Redis.Addr == "" {
		return nil, nil, fmt.Errorf("redis addr not configured")
	}
	logger := newLogger(cfg)
	b, err := openBackends(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return app.NewResultQueryService(b.directory, b.cache, logger), b.Close, nil
}
