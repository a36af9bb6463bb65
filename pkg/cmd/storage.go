package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yeisme/oxygen/pkg/cache"
	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/storage/db"
	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
	"github.com/yeisme/oxygen/pkg/internal/storage/mq"
)

var (
	dbCmd = &cobra.Command{
		Use:   "db",
		Short: "Database related commands",
	}

	dbListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered database types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0)
			for _, t := range db.GetRegisteredDBTypes() {
				names = append(names, string(t))
			}

			printTypes(cmd.OutOrStdout(), "database", names, string(configs.GetConfig().DB.Type))
		},
	}

	dbMigrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "create or update the project_files table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := configs.GetConfig()

			client, err := db.New(cmd.Context(), &cfg.DB, db.Options{Debug: debug})
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Migrate(cmd.Context()); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrated", cfg.DB.GetDBType())

			return nil
		},
	}

	kvCmd = &cobra.Command{
		Use:     "kv",
		Short:   "Key-Value store related commands",
		Aliases: []string{"keyvalue"},
	}

	kvListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered kv types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			names := make([]string, 0)
			for _, t := range kv.GetRegisteredKVTypes() {
				names = append(names, string(t))
			}

			printTypes(cmd.OutOrStdout(), "kv", names, configs.GetConfig().KV.GetKVType())
		},
	}

	kvKeysCmd = &cobra.Command{
		Use:   "keys [pattern]",
		Short: "list keys of the configured kv store",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}

			return withKV(cmd.Context(), &configs.GetConfig().KV, func(store kv.KVStore) error {
				keys, err := store.Keys(cmd.Context(), pattern)
				if err != nil {
					return err
				}

				for _, k := range keys {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}

				return nil
			})
		},
	}

	cacheCmd = &cobra.Command{
		Use:   "cache",
		Short: "read cache related commands",
	}

	cachePurgeCmd = &cobra.Command{
		Use:   "purge [pattern]",
		Short: "delete cached file records (default file.*)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pattern := cache.Key("file", "*")
			if len(args) == 1 {
				pattern = args[0]
			}

			return withKV(cmd.Context(), &configs.GetConfig().Cache.KV, func(store kv.KVStore) error {
				n, err := cache.NewCache(store).Purge(cmd.Context(), pattern)
				if err != nil {
					return err
				}

				fmt.Fprintf(cmd.OutOrStdout(), "purged %d keys\n", n)

				return nil
			})
		},
	}

	mqCmd = &cobra.Command{
		Use:     "mq",
		Short:   "Message queue related commands",
		Aliases: []string{"messagequeue"},
	}

	mqListCmd = &cobra.Command{
		Use:     "list",
		Short:   "list all registered mq types",
		Aliases: []string{"ls", "l"},
		Run: func(cmd *cobra.Command, args []string) {
			printTypes(cmd.OutOrStdout(), "mq", mq.GetRegisteredTypes(), string(configs.GetConfig().MQ.GetMQType()))
		},
	}
)

// printTypes 列出已注册类型，标记当前配置使用的类型.
func printTypes(w io.Writer, kind string, names []string, current string) {
	fmt.Fprintf(w, "Registered %s types:\n", kind)

	for _, n := range names {
		marker := " "
		if n == current {
			marker = "*"
		}

		fmt.Fprintf(w, " %s %s\n", marker, n)
	}
}

// withKV 按给定配置打开 KV（db 类型时同时打开数据库）.
func withKV(ctx context.Context, kvCfg *configs.KVConfig, fn func(kv.KVStore) error) error {
	cfg := configs.GetConfig()

	var deps kv.Deps

	if kvCfg.Type == configs.KVTypeDB {
		client, err := db.New(ctx, &cfg.DB, db.Options{})
		if err != nil {
			return err
		}
		defer client.Close()

		if err := client.Migrate(ctx); err != nil {
			return err
		}

		deps.DB = client.GetDB()
	}

	store, err := kv.NewKVStore(ctx, kvCfg, deps)
	if err != nil {
		return err
	}
	defer store.Close()

	return fn(store)
}

// registerStorageCommands 注册存储相关命令.
func registerStorageCommands() {
	dbCmd.AddCommand(dbListCmd, dbMigrateCmd)
	kvCmd.AddCommand(kvListCmd, kvKeysCmd)
	cacheCmd.AddCommand(cachePurgeCmd)
	mqCmd.AddCommand(mqListCmd)

	rootCmd.AddCommand(dbCmd, kvCmd, cacheCmd, mqCmd)
}
