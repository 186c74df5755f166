package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/memohai/formmedia/internal/auth"
	"github.com/memohai/formmedia/internal/boot"
	"github.com/memohai/formmedia/internal/config"
	"github.com/memohai/formmedia/internal/logger"
	"github.com/memohai/formmedia/internal/media"
	"github.com/memohai/formmedia/internal/schedule"
	"github.com/memohai/formmedia/internal/storage/localfs"
	"github.com/memohai/formmedia/internal/version"
)

func newDispersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dispersion NAME...",
		Short: "Print the dispersion path a file name is stored under",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range args {
				corrected := media.CorrectFileName(name)
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s/%s\n", name, media.DispersionPath(corrected), corrected)
			}
			return nil
		},
	}
}

func newTokenCommand(root *rootOptions) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for the media API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			rc, err := boot.ProvideRuntimeConfig(cfg)
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = rc.JwtExpiresIn
			}
			token, expiresAt, err := auth.GenerateToken(subject, rc.JwtSecret, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.jwt_expires_in)")
	return cmd
}

func newPurgeCommand(root *rootOptions) *cobra.Command {
	var olderThan time.Duration
	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Remove stale files from every entity tmp directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(root.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.InitWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			rc, err := boot.ProvideRuntimeConfig(cfg)
			if err != nil {
				return err
			}
			if olderThan <= 0 {
				olderThan = rc.TmpTTL
			}
			dir, err := localfs.New(rc.MediaRoot)
			if err != nil {
				return err
			}
			svc := media.NewService(logger.L, dir, boot.MediaOptions(cfg))
			janitor, err := schedule.NewService(logger.L, svc, "", olderThan)
			if err != nil {
				return err
			}
			removed, err := janitor.RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", removed)
			return nil
		},
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "age threshold (defaults to media.tmp_ttl)")
	return cmd
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "formmedia %s\n", version.GetInfo())
		},
	}
}
