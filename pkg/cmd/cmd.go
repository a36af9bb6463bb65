// Package cmd contains the command line applications for the project.
package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yeisme/oxygen/pkg/app"
	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/log"
)

var (
	configPath string
	debug      bool

	rootCmd = &cobra.Command{
		Use:           "oxygen",
		Short:         "Project file facade: host filesystem access and project file metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := configs.InitConfig(configPath); err != nil {
				return err
			}

			log.Init()

			return nil
		},
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "start the facade HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := app.NewApp(ctx, configs.GetConfig())
			if err != nil {
				return err
			}

			return a.Run(ctx)
		},
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "oxygen %s (api %s)\n", configs.AppVersion, types.APIVersion)
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", ".", "config file or directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose output")

	rootCmd.AddCommand(serveCmd, versionCmd)

	registerConfigsCommands()
	registerStorageCommands()
	registerFilesCommands()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
