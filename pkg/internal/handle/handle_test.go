package handle_test

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/handle"
	"github.com/yeisme/oxygen/pkg/internal/hostfs"
	"github.com/yeisme/oxygen/pkg/internal/router"
	"github.com/yeisme/oxygen/pkg/internal/service"
	"github.com/yeisme/oxygen/pkg/internal/storage"
	dbc "github.com/yeisme/oxygen/pkg/internal/storage/db"
	"github.com/yeisme/oxygen/pkg/internal/storage/kv"
	"github.com/yeisme/oxygen/pkg/internal/storage/mq"
	"github.com/yeisme/oxygen/pkg/internal/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type env struct {
	engine *gin.Engine
	mgr    *storage.Manager
}

func newEnv(t *testing.T) env {
	t.Helper()

	ctx := context.Background()

	client, err := dbc.New(ctx, &configs.DBConfig{
		Type:          configs.SQLite,
		Path:          filepath.Join(t.TempDir(), "oxygen.db"),
		BusyTimeoutMS: configs.DefaultBusyTimeoutMS,
	}, dbc.Options{})
	require.NoError(t, err)
	require.NoError(t, client.Migrate(ctx))

	store, err := kv.NewKVStore(ctx, &configs.KVConfig{Type: configs.KVTypeMemory}, kv.Deps{})
	require.NoError(t, err)

	bus, err := mq.New(ctx, &configs.MQConfig{
		Type:   configs.MQTypeMemory,
		Memory: configs.MQMemoryConfig{OutputBuffer: 8},
	}, mq.Options{})
	require.NoError(t, err)

	mgr := &storage.Manager{DB: client, KV: store, MQ: bus}
	t.Cleanup(func() { _ = mgr.Close() })

	mem := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(mem, "/proj/notes.md", []byte("hello"), 0o644))

	api := facade.New(filestore.New(client.DB), hostfs.New(mem),
		facade.WithPublisher(bus.Publisher(), configs.EventsConfig{
			Enabled: true,
			File:    configs.FileEventsConfig{Upserted: true, Deleted: true},
		}))
	t.Cleanup(func() { _ = api.Close(context.Background()) })

	h := &handle.Handlers{
		API:      api,
		Settings: service.NewSettingsService(store),
		Snapshot: service.NewSnapshotService(api, nil),
		Storage:  mgr,
	}

	e := gin.New()
	router.Register(e.Group("/api/v1"), h)

	return env{engine: e, mgr: mgr}
}

func (e env) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer

	if body != nil {
		raw, err := sonic.Marshal(body)
		require.NoError(t, err)
		buf.Write(raw)
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &v))

	return v
}

func TestIPCScenario(t *testing.T) {
	e := newEnv(t)
	isDir := false

	w := e.do(t, http.MethodPost, "/api/v1/ipc/upsert-file-details", types.FileDetails{
		Filename: "notes.md", Path: "/proj/notes.md", IsActive: true, IsDirectory: &isDir,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, decode[types.AckResponse](t, w).OK)

	w = e.do(t, http.MethodPost, "/api/v1/ipc/get-all-files", nil)
	require.Equal(t, http.StatusOK, w.Code)
	files := decode[types.FilesResponse](t, w).Files
	require.Len(t, files, 1)
	assert.Equal(t, "/proj/notes.md", files[0].Path)

	w = e.do(t, http.MethodPost, "/api/v1/ipc/read-file", types.ReadFileRequest{Filename: "notes.md"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "hello", decode[types.ReadFileResponse](t, w).Content)

	w = e.do(t, http.MethodPost, "/api/v1/ipc/delete-file", types.PathRequest{Path: "/proj/notes.md"})
	require.Equal(t, http.StatusOK, w.Code)

	w = e.do(t, http.MethodPost, "/api/v1/ipc/get-file-details", types.PathRequest{Path: "/proj/notes.md"})
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(facade.KindNotFound), decode[types.ErrorResponse](t, w).Error)
}

func TestIPCErrorMapping(t *testing.T) {
	e := newEnv(t)

	cases := []struct {
		name   string
		path   string
		body   any
		status int
		kind   facade.Kind
	}{
		{"unknown request", "/api/v1/ipc/format-disk", nil, http.StatusBadRequest, facade.KindInvalidRequest},
		{"missing body", "/api/v1/ipc/stat", nil, http.StatusBadRequest, facade.KindInvalidRequest},
		{"empty path", "/api/v1/ipc/read-dir", types.PathRequest{}, http.StatusBadRequest, facade.KindInvalidRequest},
		{"io error", "/api/v1/ipc/stat", types.PathRequest{Path: "/nope"}, http.StatusUnprocessableEntity, facade.KindIOError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := e.do(t, http.MethodPost, tc.path, tc.body)
			require.Equal(t, tc.status, w.Code, w.Body.String())
			assert.Equal(t, string(tc.kind), decode[types.ErrorResponse](t, w).Error)
		})
	}
}

func TestIPCRequestsAndVersion(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/ipc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"apiVersion":"v1"`)
	assert.Contains(t, w.Body.String(), "get-app-version")

	w = e.do(t, http.MethodPost, "/api/v1/ipc/get-app-version", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, configs.AppVersion, decode[types.AppVersionResponse](t, w).Version)
}

func TestSettingsRoutes(t *testing.T) {
	e := newEnv(t)

	w := e.do(t, http.MethodGet, "/api/v1/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.DefaultSettings(), decode[types.Settings](t, w))

	name := "gpt-4o"
	w = e.do(t, http.MethodPut, "/api/v1/settings", types.UpdateSettingsRequest{LanguageModelName: &name})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "gpt-4o", decode[types.Settings](t, w).LanguageModelName)

	empty := ""
	w = e.do(t, http.MethodPut, "/api/v1/settings", types.UpdateSettingsRequest{LanguageModelProvider: &empty})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthAndDisabledComponents(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/health", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/health/db", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/health/mq", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, http.MethodGet, "/api/v1/health/s3", nil).Code)

	w := e.do(t, http.MethodGet, "/api/v1/scheduler/jobs", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, string(facade.KindUnavailable), decode[types.ErrorResponse](t, w).Error)

	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, http.MethodPost, "/api/v1/snapshots", nil).Code)
	assert.Equal(t, http.StatusServiceUnavailable, e.do(t, http.MethodPost, "/api/v1/audit", nil).Code)
	assert.Equal(t, http.StatusOK, e.do(t, http.MethodGet, "/api/v1/snapshots/export", nil).Code)
}

func TestEventsStream(t *testing.T) {
	e := newEnv(t)

	srv := httptest.NewServer(e.engine)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/event-stream")

	w := e.do(t, http.MethodPost, "/api/v1/ipc/upsert-file-details", types.FileDetails{
		Filename: "notes.md", Path: "/proj/notes.md", IsActive: true,
	})
	require.Equal(t, http.StatusOK, w.Code)

	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}

		var ev types.FileEvent
		require.NoError(t, sonic.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &ev))
		assert.Equal(t, "upserted", ev.Type)
		assert.Equal(t, "/proj/notes.md", ev.Path)

		return
	}

	t.Fatalf("stream ended without event: %v", scanner.Err())
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusGatewayTimeout, handle.StatusOf(facade.KindTimeout))
	assert.Equal(t, http.StatusServiceUnavailable, handle.StatusOf(facade.KindUnavailable))
	assert.Equal(t, http.StatusInternalServerError, handle.StatusOf(facade.KindStorageError))
	assert.Equal(t, http.StatusInternalServerError, handle.StatusOf(facade.KindInternal))
}
