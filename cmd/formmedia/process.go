package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/memohai/formmedia/internal/attachment"
	"github.com/memohai/formmedia/internal/boot"
	"github.com/memohai/formmedia/internal/config"
	"github.com/memohai/formmedia/internal/logger"
	"github.com/memohai/formmedia/internal/media"
	"github.com/memohai/formmedia/internal/storage/localfs"
)

type processOptions struct {
	entity   string
	formCode string
	file     string
	name     string
	mime     string
	size     int64
	output   string
}

func newProcessCommand(root *rootOptions) *cobra.Command {
	opts := &processOptions{}
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Process a file already placed in <media_root>/<entity>/tmp",
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
			dir, err := localfs.New(rc.MediaRoot)
			if err != nil {
				return err
			}
			svc := media.NewService(logger.L, dir, boot.MediaOptions(cfg))
			params := opts.parameters()
			result, err := svc.Process(cmd.Context(), params)
			if err != nil {
				return err
			}
			return writeResult(cmd.OutOrStdout(), opts.output, result)
		},
	}
	cmd.Flags().StringVarP(&opts.entity, "entity", "e", "", "entity type code (e.g. customer_address)")
	cmd.Flags().StringVar(&opts.formCode, "form", "", "form code")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "file path relative to <entity>/tmp")
	cmd.Flags().StringVar(&opts.name, "name", "", "original file name (defaults to --file)")
	cmd.Flags().StringVar(&opts.mime, "type", "", "MIME type (defaults to one derived from the extension)")
	cmd.Flags().Int64Var(&opts.size, "size", 0, "declared size in bytes")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "json", "output format: json or yaml")
	_ = cmd.MarkFlagRequired("entity")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func (o *processOptions) parameters() media.ProcessingParameters {
	name := o.name
	if name == "" {
		name = o.file
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
	}
	mime := o.mime
	if mime == "" {
		mime = attachment.MimeFromExtension(name)
	}
	return media.ProcessingParameters{
		EntityTypeCode: o.entity,
		FormCode:       o.formCode,
		Value: media.UploadDescriptor{
			Name:    name,
			Type:    mime,
			TmpName: o.file,
			File:    o.file,
			Size:    o.size,
		},
	}
}

func writeResult(w io.Writer, format string, result media.Result) error {
	switch strings.ToLower(format) {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(result); err != nil {
			return err
		}
		return enc.Close()
	case "json", "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
