package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/yeisme/oxygen/pkg/app"
	"github.com/yeisme/oxygen/pkg/client"
	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/service"
)

var (
	remote     bool
	listAll    bool
	exportOut  string
	exportPush bool

	filesCmd = &cobra.Command{
		Use:   "files",
		Short: "manage project file records",
	}

	filesAddCmd = &cobra.Command{
		Use:   "add PATH...",
		Short: "stat host paths and upsert them as project files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, api facade.API, _ *app.Core) error {
				for _, p := range args {
					d, err := facade.AddPath(ctx, api, p)
					if err != nil {
						return fmt.Errorf("add %s: %w", p, err)
					}

					if err := printJSON(cmd.OutOrStdout(), d); err != nil {
						return err
					}
				}

				return nil
			})
		},
	}

	filesRmCmd = &cobra.Command{
		Use:     "rm PATH...",
		Short:   "delete project file records by path",
		Aliases: []string{"delete"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, api facade.API, _ *app.Core) error {
				for _, p := range args {
					if err := api.DeleteFile(ctx, p); err != nil {
						return fmt.Errorf("delete %s: %w", p, err)
					}
				}

				return nil
			})
		},
	}

	filesLsCmd = &cobra.Command{
		Use:     "ls",
		Short:   "list active project files",
		Aliases: []string{"list"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, api facade.API, _ *app.Core) error {
				all, err := api.GetAllFiles(ctx)
				if err != nil {
					return err
				}

				sort.Slice(all, func(i, j int) bool { return all[i].Filename < all[j].Filename })

				w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "FILENAME\tPATH\tDIR")

				for _, d := range all {
					isDir := d.IsDirectory != nil && *d.IsDirectory
					if isDir && !listAll {
						continue
					}

					fmt.Fprintf(w, "%s\t%s\t%t\n", d.Filename, d.Path, isDir)
				}

				return w.Flush()
			})
		},
	}

	filesGetCmd = &cobra.Command{
		Use:   "get PATH",
		Short: "print the record stored for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, api facade.API, _ *app.Core) error {
				d, err := api.GetFileDetails(ctx, args[0])
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), d)
			})
		},
	}

	filesReadCmd = &cobra.Command{
		Use:   "read FILENAME",
		Short: "print the content of a host file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFiles(cmd, func(ctx context.Context, api facade.API, _ *app.Core) error {
				resp, err := api.ReadFile(ctx, args[0])
				if err != nil {
					return err
				}

				_, err = io.WriteString(cmd.OutOrStdout(), resp.Content)

				return err
			})
		},
	}

	filesExportCmd = &cobra.Command{
		Use:   "export",
		Short: "export active records as a JSON snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if exportPush && remote {
				return errors.New("--upload is only supported in local mode")
			}

			return withFiles(cmd, func(ctx context.Context, api facade.API, core *app.Core) error {
				if exportPush {
					key, err := core.Snapshot.Upload(ctx)
					if err != nil {
						return err
					}

					fmt.Fprintln(cmd.OutOrStdout(), key)

					return nil
				}

				snap := service.NewSnapshotService(api, nil)

				if exportOut == "" || exportOut == "-" {
					_, err := snap.WriteTo(ctx, cmd.OutOrStdout())

					return err
				}

				f, err := os.Create(exportOut)
				if err != nil {
					return err
				}

				s, err := snap.WriteTo(ctx, f)
				if cerr := f.Close(); err == nil {
					err = cerr
				}

				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.ErrOrStderr(), "exported %d files to %s\n", len(s.Files), exportOut)

				return nil
			})
		},
	}

	filesAuditCmd = &cobra.Command{
		Use:   "audit",
		Short: "report active records whose host path no longer exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			if remote {
				return errors.New("audit is only supported in local mode")
			}

			return withFiles(cmd, func(ctx context.Context, _ facade.API, core *app.Core) error {
				report, err := core.Audit.Run(ctx)
				if err != nil {
					return err
				}

				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
)

// withFiles 远程模式走 HTTP 客户端，core 为 nil；本地模式直接打开存储并在结束时排空门面.
func withFiles(cmd *cobra.Command, fn func(context.Context, facade.API, *app.Core) error) error {
	ctx := cmd.Context()
	cfg := configs.GetConfig()

	if remote {
		return fn(ctx, client.NewFromConfig(cfg.Client), nil)
	}

	opts := app.CoreOptions(cfg)
	opts.SkipS3 = !exportPush

	core, err := app.NewCore(ctx, cfg, opts)
	if err != nil {
		return err
	}

	runErr := fn(ctx, core.Facade, core)

	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.GetShutdownDuration())
	defer cancel()

	return errors.Join(runErr, core.Close(closeCtx))
}

func printJSON(w io.Writer, v any) error {
	b, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}

func registerFilesCommands() {
	filesCmd.PersistentFlags().BoolVar(&remote, "remote", false, "call a running server (client.base_url) instead of opening storage")
	filesLsCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include directories")
	filesExportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file, stdout when empty")
	filesExportCmd.Flags().BoolVar(&exportPush, "upload", false, "upload the snapshot to s3")

	filesCmd.AddCommand(filesAddCmd, filesRmCmd, filesLsCmd, filesGetCmd, filesReadCmd, filesExportCmd, filesAuditCmd)
	rootCmd.AddCommand(filesCmd)
}
