package service_test

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	minio "github.com/minio/minio-go/v7"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/hostfs"
	"github.com/yeisme/oxygen/pkg/internal/service"
	dbc "github.com/yeisme/oxygen/pkg/internal/storage/db"
	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
	"github.com/yeisme/oxygen/pkg/internal/types"
)

func ptr[T any](v T) *T { return &v }

func memoryKV(t *testing.T) kv.KVStore {
	t.Helper()

	store, err := kv.NewKVStore(context.Background(), &configs.KVConfig{Type: configs.KVTypeMemory}, kv.Deps{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestSettingsDefaults(t *testing.T) {
	svc := service.NewSettingsService(memoryKV(t))

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, service.DefaultSettings(), got)
	assert.Equal(t, "openai", got.LanguageModelProvider)
	assert.Equal(t, "gpt-4", got.LanguageModelName)
	assert.Empty(t, got.LanguageModelAPIKey)
	assert.Nil(t, got.DefaultPrompt)
}

func TestSettingsPartialUpdate(t *testing.T) {
	ctx := context.Background()
	store := memoryKV(t)
	svc := service.NewSettingsService(store)

	_, err := svc.Update(ctx, types.UpdateSettingsRequest{LanguageModelAPIKey: ptr("sk-test")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, types.UpdateSettingsRequest{
		LanguageModelName: ptr("gpt-4o"),
		DefaultPrompt:     &types.Prompt{ID: 1, Name: "review", Content: "Review this", Token: "tok-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "openai", updated.LanguageModelProvider)
	assert.Equal(t, "gpt-4o", updated.LanguageModelName)
	assert.Equal(t, "sk-test", updated.LanguageModelAPIKey)
	require.NotNil(t, updated.DefaultPrompt)
	assert.NotEmpty(t, updated.DefaultPrompt.CreatedAt)

	// 重新创建服务后仍能读到
	reloaded, err := service.NewSettingsService(store).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, updated, reloaded)

	isDefault, err := svc.IsDefaultPrompt(ctx, types.Prompt{Token: "tok-1"})
	require.NoError(t, err)
	assert.True(t, isDefault)

	isDefault, err = svc.IsDefaultPrompt(ctx, types.Prompt{Token: "other"})
	require.NoError(t, err)
	assert.False(t, isDefault)

	cleared, err := svc.Update(ctx, types.UpdateSettingsRequest{ClearDefaultPrompt: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.DefaultPrompt)
}

func TestSettingsValidation(t *testing.T) {
	svc := service.NewSettingsService(memoryKV(t))

	_, err := svc.Update(context.Background(), types.UpdateSettingsRequest{LanguageModelProvider: ptr("")})
	require.ErrorIs(t, err, service.ErrInvalidSettings)

	_, err = svc.Update(context.Background(), types.UpdateSettingsRequest{DefaultPrompt: &types.Prompt{Name: "no token"}})
	require.ErrorIs(t, err, service.ErrInvalidSettings)
}

// stubFiles 只实现 GetAllFiles 的 facade.API.
type stubFiles struct {
	facade.API
	files []types.FileDetails
	err   error
}

func (s stubFiles) GetAllFiles(context.Context) ([]types.FileDetails, error) {
	return s.files, s.err
}

type recordingPutter struct {
	key  string
	data []byte
}

func (r *recordingPutter) ObjectKey(parts ...string) string {
	return "snapshots/" + strings.Join(parts, "/")
}

func (r *recordingPutter) PutBytes(_ context.Context, key, contentType string, data []byte) (minio.UploadInfo, error) {
	r.key = key
	r.data = data

	return minio.UploadInfo{Key: key, ETag: "etag"}, nil
}

func TestSnapshotWriteTo(t *testing.T) {
	files := stubFiles{files: []types.FileDetails{{Filename: "a.go", Path: "/p/a.go", IsActive: true}}}
	svc := service.NewSnapshotService(files, nil)

	var buf bytes.Buffer

	snap, err := svc.WriteTo(context.Background(), &buf)
	require.NoError(t, err)
	assert.Len(t, snap.ID, 26)

	var decoded service.Snapshot
	require.NoError(t, sonic.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, snap.ID, decoded.ID)
	assert.Equal(t, files.files, decoded.Files)

	_, err = svc.Upload(context.Background())
	require.ErrorIs(t, err, service.ErrS3Disabled)
}

func TestSnapshotUpload(t *testing.T) {
	putter := &recordingPutter{}
	svc := service.NewSnapshotService(stubFiles{files: []types.FileDetails{}}, putter)

	key, err := svc.Upload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, putter.key, key)
	assert.True(t, strings.HasPrefix(key, "snapshots/"))
	assert.True(t, strings.HasSuffix(key, ".json"))
	assert.Contains(t, string(putter.data), `"files":[]`)
}

func TestSnapshotPropagatesListError(t *testing.T) {
	svc := service.NewSnapshotService(stubFiles{err: errors.New("db down")}, &recordingPutter{})

	_, err := svc.Upload(context.Background())
	require.Error(t, err)
}

func TestAuditFindsMissingWithoutMutating(t *testing.T) {
	ctx := context.Background()

	client, err := dbc.New(ctx, &configs.DBConfig{
		Type:          configs.SQLite,
		Path:          filepath.Join(t.TempDir(), "oxygen.db"),
		BusyTimeoutMS: configs.DefaultBusyTimeoutMS,
	}, dbc.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Migrate(ctx))

	store := filestore.New(client.DB)
	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/p/here.md", []byte("x"), 0o644))

	require.NoError(t, store.Upsert(ctx, filestore.Record{Filename: "here.md", Path: "/p/here.md", IsActive: true}))
	require.NoError(t, store.Upsert(ctx, filestore.Record{Filename: "gone.md", Path: "/p/gone.md", IsActive: true}))
	require.NoError(t, store.Upsert(ctx, filestore.Record{Filename: "old.md", Path: "/p/old.md", IsActive: false}))

	report, err := service.NewAuditService(store, hostfs.New(mem)).Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Active)
	assert.Equal(t, int64(3), report.Total)
	assert.Equal(t, []string{"/p/gone.md"}, report.Missing)

	// 巡检不删除缺失的记录
	_, err = store.GetByPath(ctx, "/p/gone.md")
	require.NoError(t, err)
}
