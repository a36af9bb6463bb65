package app_test

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/app"
	"github.com/yeisme/oxygen/pkg/client"
	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
)

func testConfig(t *testing.T) *configs.AppConfig {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, configs.InitConfig(dir))

	cfg := configs.GetConfig()
	cfg.DB.Path = filepath.Join(dir, "oxygen.db")
	cfg.Facade.Token = "secret"
	cfg.Server.ShutdownWait = 5

	return cfg
}

func TestServeAndGracefulShutdown(t *testing.T) {
	cfg := testConfig(t)

	a, err := app.NewApp(context.Background(), cfg)
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() { done <- a.Serve(ctx, ln) }()

	file := filepath.Join(t.TempDir(), "design.md")
	require.NoError(t, os.WriteFile(file, []byte("# design\n"), 0o644))

	c := client.New("http://"+ln.Addr().String(), client.WithToken("secret"), client.WithTimeout(5*time.Second))

	details, err := c.AddDroppedPath(context.Background(), file)
	require.NoError(t, err)
	assert.Equal(t, "design.md", details.Filename)

	files, err := c.ProjectFiles(context.Background())
	require.NoError(t, err)
	require.Len(t, files, 1)

	content, err := c.ResolveMentions(context.Background(), "see @design.md")
	require.NoError(t, err)
	assert.Equal(t, "# design\n", content[0].Content)

	version, err := c.GetAppVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, configs.AppVersion, version.Version)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = c.GetAppVersion(context.Background())
	assert.Equal(t, facade.KindUnavailable, facade.KindOf(err))
}

func TestCoreCloseRejectsNewCalls(t *testing.T) {
	cfg := testConfig(t)

	core, err := app.NewCore(context.Background(), cfg, app.CoreOptions(cfg))
	require.NoError(t, err)

	_, err = core.Facade.GetAllFiles(context.Background())
	require.NoError(t, err)

	require.NoError(t, core.Close(context.Background()))

	_, err = core.Facade.GetAllFiles(context.Background())
	require.ErrorIs(t, err, facade.ErrClosed)
}
