package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bytedance/sonic"
	minio "github.com/minio/minio-go/v7"

	"github.com/yeisme/oxygen/pkg/configs"
	"github.com/yeisme/oxygen/pkg/internal/facade"
	"github.com/yeisme/oxygen/pkg/internal/ids"
	"github.com/yeisme/oxygen/pkg/internal/types"
	nlog "github.com/yeisme/oxygen/pkg/log"
)

const snapshotContentType = "application/json"

// ErrS3Disabled 未配置对象存储时无法上传快照.
var ErrS3Disabled = errors.New("snapshot upload requires s3.enabled")

// Snapshot 活跃项目文件的导出快照.
type Snapshot struct {
	ID          string              `json:"id"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Version     string              `json:"version"`
	APIVersion  string              `json:"apiVersion"`
	Files       []types.FileDetails `json:"files"`
}

// ObjectPutter 快照上传所需的对象存储能力，由 s3.Client 实现.
type ObjectPutter interface {
	ObjectKey(parts ...string) string
	PutBytes(ctx context.Context, key, contentType string, data []byte) (minio.UploadInfo, error)
}

// SnapshotService 将活跃记录导出为 JSON，可写入本地流或上传对象存储.
type SnapshotService struct {
	files   facade.API
	objects ObjectPutter
	now     func() time.Time
}

// NewSnapshotService 创建快照服务，objects 为 nil 时只支持写入本地流.
func NewSnapshotService(files facade.API, objects ObjectPutter) *SnapshotService {
	return &SnapshotService{files: files, objects: objects, now: time.Now}
}

// Build 读取全部活跃记录生成快照.
func (s *SnapshotService) Build(ctx context.Context) (Snapshot, error) {
	files, err := s.files.GetAllFiles(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list files: %w", err)
	}

	now := s.now().UTC()

	return Snapshot{
		ID:          ids.NewAt(now),
		GeneratedAt: now,
		Version:     configs.AppVersion,
		APIVersion:  types.APIVersion,
		Files:       files,
	}, nil
}

// WriteTo 将快照以 JSON 写入 w.
func (s *SnapshotService) WriteTo(ctx context.Context, w io.Writer) (Snapshot, error) {
	snap, err := s.Build(ctx)
	if err != nil {
		return Snapshot{}, err
	}

	data, err := sonic.ConfigStd.MarshalIndent(snap, "", "  ")
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode snapshot: %w", err)
	}

	if _, err := w.Write(append(data, '\n')); err != nil {
		return Snapshot{}, fmt.Errorf("write snapshot: %w", err)
	}

	return snap, nil
}

// Upload 生成快照并上传到 <prefix>/YYYY/MM/DD/<id>.json，返回对象键.
func (s *SnapshotService) Upload(ctx context.Context) (string, error) {
	if s.objects == nil {
		return "", ErrS3Disabled
	}

	snap, err := s.Build(ctx)
	if err != nil {
		return "", err
	}

	data, err := sonic.Marshal(snap)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	key := s.objects.ObjectKey(snap.GeneratedAt.Format("2006/01/02"), snap.ID+".json")

	info, err := s.objects.PutBytes(ctx, key, snapshotContentType, data)
	if err != nil {
		return "", err
	}

	nlog.Logger().Info().
		Str("key", key).
		Str("etag", info.ETag).
		Int("files", len(snap.Files)).
		Msg("snapshot uploaded")

	return key, nil
}
