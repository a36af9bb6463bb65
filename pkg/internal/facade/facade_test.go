package facade_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/filestore"
	"github.com/yeisme/oxygen/pkg/internal/hostfs"
	dbc "github.com/yeisme/oxygen/pkg/internal/storage/db"
	"github.com/yeisme/oxygen/pkg/internal/types"
	"github.com/yeisme/oxygen/pkg/queue"
)

// gateFs 在 Stat 时等待 gate 关闭，用于模拟慢速文件系统.
type gateFs struct {
	afero.Fs
	gate    chan struct{}
	entered chan struct{}
}

func (g *gateFs) Stat(name string) (os.FileInfo, error) {
	select {
	case g.entered <- struct{}{}:
	default:
	}

	<-g.gate

	return g.Fs.Stat(name)
}

func memFS(t *testing.T) afero.Fs {
	t.Helper()

	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/proj/docs", 0o755))
	require.NoError(t, afero.WriteFile(mem, "/proj/docs/plan.md", []byte("# plan\n"), 0o644))
	require.NoError(t, afero.WriteFile(mem, "/proj/main.go", []byte("package main\n"), 0o644))

	return mem
}

func newFacade(t *testing.T, fs afero.Fs, opts ...facade.Option) (*facade.Facade, *dbc.Client) {
	t.Helper()

	ctx := context.Background()

	client, err := dbc.New(ctx, &configs.DBConfig{
		Type:          configs.SQLite,
		Path:          filepath.Join(t.TempDir(), "oxygen.db"),
		BusyTimeoutMS: configs.DefaultBusyTimeoutMS,
	}, dbc.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Migrate(ctx))

	f := facade.New(filestore.New(client.DB), hostfs.New(fs), opts...)
	t.Cleanup(func() { _ = f.Close(context.Background()) })

	return f, client
}

func TestFilesystemRequests(t *testing.T) {
	ctx := context.Background()
	f, _ := newFacade(t, memFS(t))

	entries, err := f.ReadDir(ctx, "/proj")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "main.go"}, entries)

	isDir, err := f.IsDirectory(ctx, "/proj/docs")
	require.NoError(t, err)
	assert.True(t, isDir)

	st, err := f.Stat(ctx, "/proj/main.go")
	require.NoError(t, err)
	assert.Equal(t, ".go", st.Extension)
	assert.False(t, st.ModificationTime.IsZero())

	_, err = f.Stat(ctx, "/proj/missing.txt")
	require.Error(t, err)
	assert.Equal(t, facade.KindIOError, facade.KindOf(err))

	_, err = f.ReadDir(ctx, "")
	assert.Equal(t, facade.KindInvalidRequest, facade.KindOf(err))
}

func TestAddListDeleteScenario(t *testing.T) {
	ctx := context.Background()
	f, _ := newFacade(t, memFS(t))

	added, err := facade.AddPath(ctx, f, "/proj/docs/plan.md")
	require.NoError(t, err)
	assert.Equal(t, "plan.md", added.Filename)
	assert.True(t, added.IsActive)
	require.NotNil(t, added.IsDirectory)
	assert.False(t, *added.IsDirectory)
	require.NotNil(t, added.Extension)
	assert.Equal(t, ".md", *added.Extension)

	files, err := f.GetAllFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "/proj/docs/plan.md", files[0].Path)

	got, err := f.GetFileDetails(ctx, "/proj/docs/plan.md")
	require.NoError(t, err)
	assert.Equal(t, "plan.md", got.Filename)

	require.NoError(t, f.DeleteFile(ctx, "/proj/docs/plan.md"))
	// 删除不存在的路径为 no-op
	require.NoError(t, f.DeleteFile(ctx, "/proj/docs/plan.md"))

	_, err = f.GetFileDetails(ctx, "/proj/docs/plan.md")
	require.ErrorIs(t, err, facade.ErrNotFound)
	assert.Equal(t, facade.KindNotFound, facade.KindOf(err))

	files, err = f.GetAllFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestAddPathFailsFastWithoutWriting(t *testing.T) {
	ctx := context.Background()
	f, _ := newFacade(t, memFS(t))

	_, err := facade.AddPath(ctx, f, "/proj/nope.md")
	require.Error(t, err)
	assert.Equal(t, facade.KindIOError, facade.KindOf(err))

	files, err := f.GetAllFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUpsertReplacesAndInactiveHidden(t *testing.T) {
	ctx := context.Background()
	f, _ := newFacade(t, memFS(t))

	ext := ".go"
	require.NoError(t, f.UpsertFileDetails(ctx, types.FileDetails{
		Filename: "main.go", Path: "/proj/main.go", IsActive: true, Extension: &ext,
	}))
	require.NoError(t, f.UpsertFileDetails(ctx, types.FileDetails{
		Filename: "renamed.go", Path: "/proj/main.go", IsActive: false,
	}))

	got, err := f.GetFileDetails(ctx, "/proj/main.go")
	require.NoError(t, err)
	assert.Equal(t, "renamed.go", got.Filename)
	assert.False(t, got.IsActive)
	assert.Nil(t, got.Extension)

	files, err := f.GetAllFiles(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestUpsertValidation(t *testing.T) {
	f, _ := newFacade(t, memFS(t))

	err := f.UpsertFileDetails(context.Background(), types.FileDetails{Path: "/proj/main.go"})
	require.ErrorIs(t, err, facade.ErrInvalidRequest)
	assert.Equal(t, facade.KindInvalidRequest, facade.KindOf(err))
	assert.Contains(t, err.Error(), "Filename: required")

	err = f.UpsertFileDetails(context.Background(), types.FileDetails{Filename: "x", Path: "/proj/x\x00y"})
	assert.Equal(t, facade.KindInvalidRequest, facade.KindOf(err))
	assert.Contains(t, err.Error(), "Path: hostpath")
}

func TestReadFile(t *testing.T) {
	ctx := context.Background()
	f, _ := newFacade(t, memFS(t), facade.WithMaxReadBytes(1024))

	_, err := facade.AddPath(ctx, f, "/proj/docs/plan.md")
	require.NoError(t, err)

	resp, err := f.ReadFile(ctx, "plan.md")
	require.NoError(t, err)
	assert.Equal(t, "# plan\n", resp.Content)
	assert.Equal(t, "/proj/docs/plan.md", resp.Path)

	_, err = f.ReadFile(ctx, "unknown.md")
	assert.Equal(t, facade.KindNotFound, facade.KindOf(err))
}

func TestGetAppVersion(t *testing.T) {
	f, _ := newFacade(t, memFS(t), facade.WithVersion("1.2.3"))

	v, err := f.GetAppVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", v.Version)
	assert.Equal(t, types.APIVersion, v.APIVersion)
}

func TestStorageErrorAfterDatabaseClosed(t *testing.T) {
	f, client := newFacade(t, memFS(t))
	require.NoError(t, client.Close())

	_, err := f.GetAllFiles(context.Background())
	require.Error(t, err)
	assert.Equal(t, facade.KindStorageError, facade.KindOf(err))
}

func TestCallTimeout(t *testing.T) {
	gate := &gateFs{Fs: memFS(t), gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	defer close(gate.gate)

	f, _ := newFacade(t, gate, facade.WithTimeout(30*time.Millisecond))

	_, err := f.Stat(context.Background(), "/proj/main.go")
	require.Error(t, err)
	assert.Equal(t, facade.KindTimeout, facade.KindOf(err))
}

// gatePublisher 在 Publish 时等待 gate 关闭，用于让提交后的步骤拖过调用超时.
type gatePublisher struct {
	gate chan struct{}
}

func (g *gatePublisher) Publish(string, ...*message.Message) error {
	<-g.gate
	return nil
}

func (g *gatePublisher) Close() error { return nil }

func TestTimedOutUpsertMayStillCommit(t *testing.T) {
	pub := &gatePublisher{gate: make(chan struct{})}
	events := configs.EventsConfig{Enabled: true, File: configs.FileEventsConfig{Upserted: true}}

	f, _ := newFacade(t, memFS(t), facade.WithTimeout(50*time.Millisecond), facade.WithPublisher(pub, events))
	defer close(pub.gate)

	ctx := context.Background()
	err := f.UpsertFileDetails(ctx, types.FileDetails{Filename: "late.go", Path: "/proj/late.go", IsActive: true})
	require.Error(t, err)
	assert.Equal(t, facade.KindTimeout, facade.KindOf(err))

	// 超时只代表调用方不再等待，写入已经提交
	assert.Eventually(t, func() bool {
		got, err := f.GetFileDetails(ctx, "/proj/late.go")
		return err == nil && got.Filename == "late.go"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestCloseDrainsInflightCalls(t *testing.T) {
	gate := &gateFs{Fs: memFS(t), gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	f, _ := newFacade(t, gate, facade.WithTimeout(0))

	result := make(chan error, 1)

	go func() {
		_, err := f.IsDirectory(context.Background(), "/proj/docs")
		result <- err
	}()

	<-gate.entered

	closed := make(chan error, 1)

	go func() { closed <- f.Close(context.Background()) }()

	// 新请求立即被拒绝
	require.Eventually(t, func() bool {
		_, err := f.GetAppVersion(context.Background())
		return errors.Is(err, facade.ErrClosed)
	}, time.Second, 5*time.Millisecond)

	select {
	case <-closed:
		t.Fatal("close returned before in-flight call finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.gate)

	require.NoError(t, <-result)
	require.NoError(t, <-closed)

	_, err := f.GetAllFiles(context.Background())
	assert.Equal(t, facade.KindUnavailable, facade.KindOf(err))
}

func TestCloseHonorsContext(t *testing.T) {
	gate := &gateFs{Fs: memFS(t), gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	defer close(gate.gate)

	f, _ := newFacade(t, gate, facade.WithTimeout(0))

	go func() { _, _ = f.Stat(context.Background(), "/proj/main.go") }()

	<-gate.entered

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	require.ErrorIs(t, f.Close(ctx), context.DeadlineExceeded)
}

func TestChangeEventsPublished(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 4}, watermill.NopLogger{})
	defer ch.Close()

	upserted, err := ch.Subscribe(ctx, queue.TopicFileUpserted)
	require.NoError(t, err)
	deleted, err := ch.Subscribe(ctx, queue.TopicFileDeleted)
	require.NoError(t, err)

	events := configs.EventsConfig{Enabled: true, File: configs.FileEventsConfig{Upserted: true, Deleted: true}}
	f, _ := newFacade(t, memFS(t), facade.WithPublisher(ch, events))

	_, err = facade.AddPath(ctx, f, "/proj/main.go")
	require.NoError(t, err)
	require.NoError(t, f.DeleteFile(ctx, "/proj/main.go"))

	for _, sub := range []<-chan *message.Message{upserted, deleted} {
		select {
		case m := <-sub:
			env, err := queue.ParseFileEvent(m)
			require.NoError(t, err)
			assert.Equal(t, "/proj/main.go", env.Payload.Path)
			assert.Equal(t, "oxygen", env.Header.Producer)
			m.Ack()
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	ch := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	require.NoError(t, ch.Close())

	events := configs.EventsConfig{Enabled: true, File: configs.FileEventsConfig{Upserted: true, Deleted: true}}
	f, _ := newFacade(t, memFS(t), facade.WithPublisher(ch, events))

	ctx := context.Background()
	require.NoError(t, f.UpsertFileDetails(ctx, types.FileDetails{Filename: "a", Path: "/a", IsActive: true}))
	require.NoError(t, f.DeleteFile(ctx, "/a"))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, facade.Kind(""), facade.KindOf(nil))
	assert.Equal(t, facade.KindTimeout, facade.KindOf(&hostfs.IOError{Op: "stat", Path: "/x", Err: context.DeadlineExceeded}))
	assert.Equal(t, facade.KindStorageError, facade.KindOf(&filestore.StorageError{Op: "get", Err: errors.New("disk")}))
	assert.Equal(t, facade.KindInternal, facade.KindOf(errors.New("boom")))
	assert.Equal(t, facade.KindUnavailable, facade.KindOf(facade.ErrClosed))
}
