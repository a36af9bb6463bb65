package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/model"
	dbc "github.com/yeisme/oxygen/pkg/internal/storage/db"
)

func sqliteConfig(t *testing.T) *configs.DBConfig {
	t.Helper()

	return &configs.DBConfig{
		Type:          configs.SQLite,
		Path:          filepath.Join(t.TempDir(), "nested", "oxygen.db"),
		BusyTimeoutMS: configs.DefaultBusyTimeoutMS,
	}
}

func TestRegisteredDBTypes(t *testing.T) {
	types := dbc.GetRegisteredDBTypes()
	assert.Contains(t, types, configs.SQLite)
	assert.Contains(t, types, configs.PostgreSQL)
	assert.Contains(t, types, configs.MySQL)
}

func TestNewSQLiteAndMigrate(t *testing.T) {
	ctx := context.Background()

	client, err := dbc.New(ctx, sqliteConfig(t), dbc.Options{})
	require.NoError(t, err)

	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.Migrate(ctx))
	// 迁移可重复执行
	require.NoError(t, client.Migrate(ctx))

	migrator := client.Migrator()
	assert.True(t, migrator.HasTable("project_files"))
	assert.True(t, migrator.HasTable("kv_entries"))
	assert.True(t, migrator.HasIndex(&model.ProjectFile{}, "idx_path"))
	assert.True(t, migrator.HasIndex(&model.ProjectFile{}, "idx_filename"))

	sqlDB, err := client.DB.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewUnsupportedType(t *testing.T) {
	_, err := dbc.New(context.Background(), &configs.DBConfig{Type: "duckdb"}, dbc.Options{})
	require.Error(t, err)
}
