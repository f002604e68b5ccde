package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/starcoin-api/internal/dto"
	"github.com/noah-isme/starcoin-api/internal/service"
)

// dataOpener builds the data service used by every command and returns a
// cleanup func.
type dataOpener func(ctx context.Context) (*service.DataService, func(), error)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func newRootCmd(open dataOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "starcoin",
		Short:         "Maintain the StarCoin data store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.AddCommand(
		newExportCmd(open),
		newImportCmd(open),
		newRestoreCmd(open),
		newClearCmd(open),
		newStatsCmd(open),
		newBackupInfoCmd(open),
	)
	return root
}

// withData opens the data service for the duration of fn.
func withData(cmd *cobra.Command, open dataOpener, fn func(ctx context.Context, data *service.DataService) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	data, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, data)
}

func newExportCmd(open dataOpener) *cobra.Command {
	var (
		out    string
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every collection as a snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format = resolveFormat(format, out)
			return withData(cmd, open, func(ctx context.Context, data *service.DataService) error {
				snapshot, err := data.Export(ctx)
				if err != nil {
					return err
				}
				payload, err := encodeSnapshot(snapshot, format)
				if err != nil {
					return err
				}
				if out == "" || out == "-" {
					_, err = cmd.OutOrStdout().Write(payload)
					return err
				}
				if err := os.WriteFile(out, payload, 0o644); err != nil {
					return fmt.Errorf("write %s: %w", out, err)
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "exported to %s\n", out)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension, else json)")
	return cmd
}

func newImportCmd(open dataOpener) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the collections present in a snapshot file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				raw []byte
				err error
			)
			if args[0] == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read snapshot: %w", err)
			}
			raw, err = snapshotJSON(raw, resolveFormat(format, args[0]))
			if err != nil {
				return err
			}
			return withData(cmd, open, func(ctx context.Context, data *service.DataService) error {
				result, err := data.ImportJSON(ctx, raw)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported: %s\n", strings.Join(result.Replaced, ", "))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "json or yaml (default from the file extension, else json)")
	return cmd
}

func newRestoreCmd(open dataOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the automatic snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withData(cmd, open, func(ctx context.Context, data *service.DataService) error {
				if err := data.Restore(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "automatic snapshot restored")
				return nil
			})
		},
	}
}

func newClearCmd(open dataOpener) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every collection; the automatic snapshot is kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withData(cmd, open, func(ctx context.Context, data *service.DataService) error {
				if err := data.Clear(ctx, dto.ClearDataRequest{Confirm: yes}); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "all data cleared")
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm deleting all data")
	return cmd
}

func newStatsCmd(open dataOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show storage usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withData(cmd, open, func(ctx context.Context, data *service.DataService) error {
				stats, err := data.Stats(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "items: %d\nbytes: %d\navailable: %t\n", stats.ItemsCount, stats.TotalSize, stats.Available)
				return nil
			})
		},
	}
}

func newBackupInfoCmd(open dataOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "backup-info",
		Short: "Describe the automatic snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withData(cmd, open, func(ctx context.Context, data *service.DataService) error {
				info, err := data.BackupInfo(ctx)
				if err != nil {
					return err
				}
				if !info.Exists {
					fmt.Fprintln(cmd.OutOrStdout(), "no automatic snapshot")
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "automatic snapshot from %s\n", info.Date)
				return nil
			})
		},
	}
}

// resolveFormat falls back to the file extension and then to JSON.
func resolveFormat(format, path string) string {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "yml" {
		format = formatYAML
	}
	if format != "" {
		return format
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return formatYAML
	default:
		return formatJSON
	}
}

func encodeSnapshot(snapshot interface{}, format string) ([]byte, error) {
	payload, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	switch format {
	case formatJSON:
		return append(payload, '\n'), nil
	case formatYAML:
		// Round-trip through a generic value so YAML keys follow the JSON names.
		var generic interface{}
		if err := json.Unmarshal(payload, &generic); err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		return yaml.Marshal(generic)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// snapshotJSON normalises a JSON or YAML snapshot file to JSON.
func snapshotJSON(raw []byte, format string) ([]byte, error) {
	switch format {
	case formatJSON:
		return raw, nil
	case formatYAML:
		var generic interface{}
		if err := yaml.Unmarshal(raw, &generic); err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
		payload, err := json.Marshal(generic)
		if err != nil {
			return nil, fmt.Errorf("decode yaml snapshot: %w", err)
		}
		return payload, nil
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
