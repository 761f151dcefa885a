package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newSummarizeCmd() *cobra.Command {
	var skipCache bool

	cmd := &cobra.Command{
		Use:   "summarize <alert text>",
		Short: "Summarize one alert and print the record as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, log, shutdownTracing, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(ctx) }()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			record, err := a.service.Summarize(ctx, strings.Join(args, " "), skipCache)
			a.service.Wait()
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")

			return enc.Encode(record)
		},
	}

	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the cache read and overwrite the cached record")

	return cmd
}

func newPrewarmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prewarm",
		Short: "Summarize every active alert once so the cache is warm",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, log, shutdownTracing, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = shutdownTracing(ctx) }()

			a, err := newApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.close() }()

			result, err := a.newPrewarmer().Run(ctx)
			a.service.Wait()

			fmt.Fprintf(os.Stdout, "alerts=%d cached=%d summarized=%d rate_limited=%d failed=%d\n",
				result.Alerts, result.Cached, result.Summarized, result.RateLimited, result.Failed)

			return err
		},
	}
}
