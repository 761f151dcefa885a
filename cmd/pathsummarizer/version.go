package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"pathsummarizer/internal/config"
)

func newVersionTagCmd() *cobra.Command {
	var profilePath string

	cmd := &cobra.Command{
		Use:   "version-tag",
		Short: "Print the cache version tag derived from the active profile",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tag, err := versionTag(cmd.Context(), profilePath)
			if err != nil {
				return err
			}

			fmt.Fprintln(os.Stdout, tag)

			return nil
		},
	}

	cmd.Flags().StringVar(&profilePath, "profile", os.Getenv("PROFILE_PATH"), "YAML profile overriding the embedded one")

	return cmd
}

func versionTag(ctx context.Context, profilePath string) (string, error) {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	var cfg config.Config
	cfg.ProfilePath = profilePath

	p, err := loadProfile(ctx, cfg, log)
	if err != nil {
		return "", err
	}

	return string(newKeyspace(p).VersionTag()), nil
}
